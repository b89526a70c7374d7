// Package challenge persists sample challenges and their submissions in
// SQLite.
//
// The Store is the only component that touches the challenges and
// submissions tables. Two invariants are enforced by the database itself so
// they hold across goroutines and processes:
//   - at most one challenge is active (partial unique index on active = 1,
//     plus a single INSERT ... WHERE NOT EXISTS for creation);
//   - at most one submission per (challenge, owner) (UNIQUE constraint, written
//     with a single INSERT ... ON CONFLICT DO UPDATE).
//
// Every error returned by the Store wraps ErrStorage. Constraint violations
// additionally wrap ErrIntegrity.
package challenge
