package challenge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	_ "modernc.org/sqlite"

	"samplebot/internal/config"
)

// Store manages challenge persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

const (
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
	busyTimeoutMillis       = 5000
)

const challengeColumns = "id, owner_id, sample_url, active, created_at"

const submissionColumns = "id, challenge_id, owner_id, track_url, created_at"

// Open initializes or connects to the challenge database under the configured data directory.
func Open(cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is required", ErrStorage)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("%w: ensure directories: %w", ErrStorage, err)
	}
	return OpenPath(cfg.DatabasePath())
}

// OpenPath opens the database file at path, creating the schema if needed.
func OpenPath(path string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, storageError("open sqlite db", err)
	}
	// One connection serializes every statement issued by this process; the
	// pragmas in the DSN are applied to it on connect.
	db.SetMaxOpenConns(1)

	store := &Store{db: db, path: path, now: time.Now}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func dsn(path string) string {
	params := url.Values{}
	params.Add("_pragma", "journal_mode(WAL)")
	params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeoutMillis))
	params.Add("_pragma", "foreign_keys(1)")
	return "file:" + path + "?" + params.Encode()
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// GetActiveChallenge returns the active challenge, or nil when the slot is idle.
func (s *Store) GetActiveChallenge(ctx context.Context) (*Challenge, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+challengeColumns+` FROM challenges WHERE active = 1 LIMIT 1`)
	challenge, err := scanChallenge(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError("get active challenge", err)
	}
	return challenge, nil
}

// GetChallenge fetches a challenge by identifier, or nil when it does not exist.
func (s *Store) GetChallenge(ctx context.Context, id int64) (*Challenge, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+challengeColumns+` FROM challenges WHERE id = ?`, id)
	challenge, err := scanChallenge(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError("get challenge", err)
	}
	return challenge, nil
}

// CreateChallenge inserts a new active challenge unless one is already
// active. The check and the insert are one statement, so concurrent callers
// cannot both succeed.
func (s *Store) CreateChallenge(ctx context.Context, ownerID, sampleURL string) (CreateResult, error) {
	res, err := s.execWithRetry(ctx,
		`INSERT INTO challenges (owner_id, sample_url, active, created_at)
        SELECT ?, ?, 1, ?
        WHERE NOT EXISTS (SELECT 1 FROM challenges WHERE active = 1)`,
		ownerID,
		sampleURL,
		s.timestamp(),
	)
	if err != nil {
		return CreateResult{}, storageError("insert challenge", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return CreateResult{}, storageError("insert challenge rows affected", err)
	}
	if affected == 0 {
		active, err := s.GetActiveChallenge(ctx)
		if err != nil {
			return CreateResult{}, err
		}
		return CreateResult{Rejected: true, Active: active}, nil
	}

	id, err := res.LastInsertId()
	if err != nil {
		return CreateResult{}, storageError("last insert id", err)
	}
	created, err := s.GetChallenge(ctx, id)
	if err != nil {
		return CreateResult{}, err
	}
	if created == nil {
		return CreateResult{}, fmt.Errorf("%w: challenge %d vanished after insert", ErrStorage, id)
	}
	return CreateResult{Challenge: created}, nil
}

// EndChallenge marks a challenge inactive. Ending an inactive or unknown
// challenge is a no-op.
func (s *Store) EndChallenge(ctx context.Context, id int64) error {
	if _, err := s.execWithRetry(ctx, `UPDATE challenges SET active = 0 WHERE id = ?`, id); err != nil {
		return storageError("end challenge", err)
	}
	return nil
}

// UpsertSubmission records ownerID's entry for a challenge, overwriting the
// track URL and timestamp of an earlier entry in place.
func (s *Store) UpsertSubmission(ctx context.Context, challengeID int64, ownerID, trackURL string) (*Submission, error) {
	ctx = ensureContext(ctx)
	var submission *Submission
	err := retryOnBusy(ctx, func() error {
		row := s.db.QueryRowContext(ctx,
			`INSERT INTO submissions (challenge_id, owner_id, track_url, created_at)
            VALUES (?, ?, ?, ?)
            ON CONFLICT (challenge_id, owner_id) DO UPDATE SET
                track_url = excluded.track_url,
                created_at = excluded.created_at
            RETURNING `+submissionColumns,
			challengeID,
			ownerID,
			trackURL,
			s.timestamp(),
		)
		var scanErr error
		submission, scanErr = scanSubmission(row)
		return scanErr
	})
	if err != nil {
		return nil, storageError("upsert submission", err)
	}
	return submission, nil
}

// ListSubmissions returns every submission for a challenge in first-insertion order.
func (s *Store) ListSubmissions(ctx context.Context, challengeID int64) ([]Submission, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE challenge_id = ? ORDER BY id`,
		challengeID,
	)
	if err != nil {
		return nil, storageError("list submissions", err)
	}
	defer rows.Close()

	var submissions []Submission
	for rows.Next() {
		submission, err := scanSubmission(rows)
		if err != nil {
			return nil, storageError("scan submission", err)
		}
		submissions = append(submissions, *submission)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterate submissions", err)
	}
	return submissions, nil
}

// ListChallenges returns challenges newest first. A non-positive limit returns all of them.
func (s *Store) ListChallenges(ctx context.Context, limit int) ([]Challenge, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+challengeColumns+` FROM challenges ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, storageError("list challenges", err)
	}
	defer rows.Close()

	var challenges []Challenge
	for rows.Next() {
		challenge, err := scanChallenge(rows)
		if err != nil {
			return nil, storageError("scan challenge", err)
		}
		challenges = append(challenges, *challenge)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterate challenges", err)
	}
	return challenges, nil
}

// Stats counts challenges, active challenges, and submissions.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	ctx = ensureContext(ctx)
	var stats Stats
	err := s.db.QueryRowContext(ctx,
		`SELECT
            (SELECT COUNT(1) FROM challenges),
            (SELECT COUNT(1) FROM challenges WHERE active = 1),
            (SELECT COUNT(1) FROM submissions)`,
	).Scan(&stats.Challenges, &stats.Active, &stats.Submissions)
	if err != nil {
		return Stats{}, storageError("stats", err)
	}
	return stats, nil
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}
