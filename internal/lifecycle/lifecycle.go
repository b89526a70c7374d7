// Package lifecycle implements the challenge slot state machine on top of the
// challenge store.
//
// The slot is Idle when no challenge is active and Running while one is.
// Start moves Idle to Running, End moves Running back to Idle, and every other
// operation leaves the slot unchanged. Expected conflicts come back as Result
// outcomes; only storage failures are returned as errors.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"samplebot/internal/challenge"
	"samplebot/internal/logging"
	"samplebot/internal/notifications"
	"samplebot/internal/services"
)

// Store is the subset of challenge.Store the lifecycle needs.
type Store interface {
	GetActiveChallenge(ctx context.Context) (*challenge.Challenge, error)
	CreateChallenge(ctx context.Context, ownerID, sampleURL string) (challenge.CreateResult, error)
	EndChallenge(ctx context.Context, id int64) error
	ListSubmissions(ctx context.Context, challengeID int64) ([]challenge.Submission, error)
	UpsertSubmission(ctx context.Context, challengeID int64, ownerID, trackURL string) (*challenge.Submission, error)
}

// Outcome classifies a lifecycle result.
type Outcome int

const (
	// OK means the operation took effect or the query found an active challenge.
	OK Outcome = iota
	// AlreadyActive means Start found the slot Running.
	AlreadyActive
	// NoChallenge means the slot is Idle.
	NoChallenge
	// NotOwner means End was requested by someone other than the owner.
	NotOwner
	// Invalid means a required argument was missing.
	Invalid
)

func (o Outcome) String() string {
	switch o {
	case OK:
		return "ok"
	case AlreadyActive:
		return "already_active"
	case NoChallenge:
		return "no_challenge"
	case NotOwner:
		return "not_owner"
	case Invalid:
		return "invalid"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the value every lifecycle operation returns.
type Result struct {
	Outcome Outcome
	// Challenge is the started, ended, or active challenge. For AlreadyActive
	// it is the challenge occupying the slot.
	Challenge *challenge.Challenge
	// Owner is the actual owner for AlreadyActive and NotOwner.
	Owner string
	// Submission is the stored entry after a successful Submit.
	Submission *challenge.Submission
	// Submissions is populated by End and Submissions, in submission order.
	Submissions []challenge.Submission
}

// Report formats submissions as "owner: trackUrl" lines in submission order.
// mention renders an owner identifier; nil leaves identifiers untouched.
func (r Result) Report(mention func(string) string) []string {
	if mention == nil {
		mention = func(id string) string { return id }
	}
	lines := make([]string, 0, len(r.Submissions))
	for _, sub := range r.Submissions {
		lines = append(lines, fmt.Sprintf("%s: %s", mention(sub.OwnerID), sub.TrackURL))
	}
	return lines
}

// Service drives the challenge slot.
type Service struct {
	store    Store
	notifier notifications.Service
	logger   *slog.Logger
}

// New constructs a lifecycle service. A nil notifier disables notifications.
func New(store Store, notifier notifications.Service, logger *slog.Logger) *Service {
	if notifier == nil {
		notifier = notifications.NewService(nil)
	}
	return &Service{
		store:    store,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "lifecycle"),
	}
}

// Start opens a new challenge owned by ownerID. A concurrent start that won
// the slot first yields AlreadyActive.
func (s *Service) Start(ctx context.Context, ownerID, sampleURL string) (Result, error) {
	if strings.TrimSpace(sampleURL) == "" || strings.TrimSpace(ownerID) == "" {
		return Result{Outcome: Invalid}, nil
	}
	res, err := s.store.CreateChallenge(ctx, ownerID, sampleURL)
	if err != nil {
		return Result{}, fmt.Errorf("start challenge: %w", err)
	}
	logger := logging.WithContext(ctx, s.logger)
	if res.Rejected {
		out := Result{Outcome: AlreadyActive, Challenge: res.Active}
		if res.Active != nil {
			out.Owner = res.Active.OwnerID
		}
		logger.Debug("challenge start rejected",
			logging.String(logging.FieldEventType, "challenge_start_rejected"),
			logging.String("active_owner", out.Owner),
		)
		return out, nil
	}

	created := res.Challenge
	logger.Info("challenge started",
		logging.String(logging.FieldEventType, "challenge_started"),
		logging.Int64(logging.FieldChallengeID, created.ID),
		logging.String("owner_id", created.OwnerID),
		logging.String("sample_url", created.SampleURL),
	)
	s.notify(ctx, notifications.EventChallengeStarted, notifications.Payload{
		"challengeID": created.ID,
		"ownerID":     created.OwnerID,
		"sampleURL":   created.SampleURL,
	})
	return Result{Outcome: OK, Challenge: created}, nil
}

// Submit records or replaces ownerID's entry for the active challenge.
func (s *Service) Submit(ctx context.Context, ownerID, trackURL string) (Result, error) {
	active, err := s.store.GetActiveChallenge(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("submit: %w", err)
	}
	if active == nil {
		return Result{Outcome: NoChallenge}, nil
	}
	if strings.TrimSpace(trackURL) == "" {
		return Result{Outcome: Invalid, Challenge: active}, nil
	}
	sub, err := s.store.UpsertSubmission(ctx, active.ID, ownerID, trackURL)
	if err != nil {
		return Result{}, fmt.Errorf("submit: %w", err)
	}
	logging.WithContext(services.WithChallengeID(ctx, active.ID), s.logger).Info("submission recorded",
		logging.String(logging.FieldEventType, "submission_recorded"),
		logging.String("owner_id", ownerID),
		logging.Int64("submission_id", sub.ID),
	)
	return Result{Outcome: OK, Challenge: active, Submission: sub}, nil
}

// End closes the active challenge when requesterID owns it and returns the
// final submissions.
func (s *Service) End(ctx context.Context, requesterID string) (Result, error) {
	active, err := s.store.GetActiveChallenge(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("end challenge: %w", err)
	}
	if active == nil {
		return Result{Outcome: NoChallenge}, nil
	}
	ctx = services.WithChallengeID(ctx, active.ID)
	logger := logging.WithContext(ctx, s.logger)
	if requesterID != active.OwnerID {
		logger.Debug("challenge end rejected",
			logging.String(logging.FieldEventType, "challenge_end_rejected"),
			logging.String("owner_id", active.OwnerID),
		)
		return Result{Outcome: NotOwner, Challenge: active, Owner: active.OwnerID}, nil
	}

	if err := s.store.EndChallenge(ctx, active.ID); err != nil {
		return Result{}, fmt.Errorf("end challenge: %w", err)
	}
	subs, err := s.store.ListSubmissions(ctx, active.ID)
	if err != nil {
		return Result{}, fmt.Errorf("end challenge: %w", err)
	}
	ended := *active
	ended.Active = false
	logger.Info("challenge ended",
		logging.String(logging.FieldEventType, "challenge_ended"),
		logging.Int("submission_count", len(subs)),
	)
	s.notify(ctx, notifications.EventChallengeEnded, notifications.Payload{
		"challengeID": active.ID,
		"submissions": len(subs),
	})
	return Result{Outcome: OK, Challenge: &ended, Submissions: subs}, nil
}

// Status reports the active challenge, if any.
func (s *Service) Status(ctx context.Context) (Result, error) {
	active, err := s.store.GetActiveChallenge(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("challenge status: %w", err)
	}
	if active == nil {
		return Result{Outcome: NoChallenge}, nil
	}
	return Result{Outcome: OK, Challenge: active, Owner: active.OwnerID}, nil
}

// Submissions lists entries for the active challenge.
func (s *Service) Submissions(ctx context.Context) (Result, error) {
	active, err := s.store.GetActiveChallenge(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list submissions: %w", err)
	}
	if active == nil {
		return Result{Outcome: NoChallenge}, nil
	}
	subs, err := s.store.ListSubmissions(ctx, active.ID)
	if err != nil {
		return Result{}, fmt.Errorf("list submissions: %w", err)
	}
	return Result{Outcome: OK, Challenge: active, Submissions: subs}, nil
}

func (s *Service) notify(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if err := s.notifier.Publish(ctx, event, payload); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "notification failed", "notification_failed",
			logging.String("event", string(event)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic reachability"),
			logging.String(logging.FieldImpact, "operator was not notified; challenge state is unaffected"),
		)
	}
}
