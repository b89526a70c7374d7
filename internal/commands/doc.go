// Package commands binds the bot's chat command surface to the router.
//
// Register installs help, challenge, challenge.start, challenge.submit,
// challenge.submissions, challenge.end, challenges, samples, samples.add, and
// samples.random. Handlers translate lifecycle and sample outcomes into the
// replies and reactions users see; storage failures are returned to the
// router, which answers with its generic failure reply.
package commands
