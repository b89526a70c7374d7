// Package router turns addressed chat messages into handler invocations.
//
// Commands are registered under dot-paths ("challenge", "challenge.start") in
// an explicit Registry. For each message the Router strips the addressing
// token, splits the rest on whitespace, separates flags from positional
// tokens, and then tries the first n, n-1, ..., 0 positional tokens joined
// with "." until a registered path matches. The longest match wins and its
// tokens are removed before the handler runs. Input that matches nothing is
// ignored without a reply.
//
// Handler failures never escape the Router: they are logged, answered with a
// generic acknowledgement, and handed to an optional FailureHook. The
// Dispatcher runs handlers concurrently up to a fixed bound so one slow
// command does not hold up the rest.
package router
