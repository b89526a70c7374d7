package challenge

import "time"

// Challenge is one round, identified by its owner and sample link.
type Challenge struct {
	ID        int64
	OwnerID   string
	SampleURL string
	Active    bool
	CreatedAt time.Time
}

// Submission is one user's entry for a challenge. TrackURL and CreatedAt are
// overwritten on resubmission.
type Submission struct {
	ID          int64
	ChallengeID int64
	OwnerID     string
	TrackURL    string
	CreatedAt   time.Time
}

// CreateResult is the outcome of CreateChallenge. Exactly one of Challenge or
// Rejected is set; when Rejected, Active holds the challenge that blocked the
// insert if it was still active when looked up.
type CreateResult struct {
	Challenge *Challenge
	Rejected  bool
	Active    *Challenge
}

// Stats summarises the store contents.
type Stats struct {
	Challenges  int
	Active      int
	Submissions int
}
