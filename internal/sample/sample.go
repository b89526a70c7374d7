package sample

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"path"
	"slices"
	"strings"

	"samplebot/internal/config"
	"samplebot/internal/logging"
	"samplebot/internal/services"
	"samplebot/internal/textutil"
)

// fallbackTitle names uploads whose title sanitizes to nothing.
const fallbackTitle = "sample"

// ReasonNoSamples is the rejection reason when the samples folder is empty.
const ReasonNoSamples = "no samples available"

var (
	// ErrUnsupportedFormat marks a request for a format outside audio.allowed_formats.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrHostNotAllowed marks a source URL outside audio.allowed_hosts.
	ErrHostNotAllowed = errors.New("host not allowed")
)

// Entry is one item of an ObjectStore listing.
type Entry struct {
	Path  string
	IsDir bool
}

// Audio is the result of an acquisition.
type Audio struct {
	Title string
	Data  []byte
}

// AudioSource turns a media URL into audio bytes in the requested format.
type AudioSource interface {
	Fetch(ctx context.Context, sourceURL, format string) (Audio, error)
}

// ObjectStore is the shared storage samples are published to. Upload returns
// the path that was actually written, which may differ from the requested
// one when the store renames on conflict. List accumulates every page.
type ObjectStore interface {
	Upload(ctx context.Context, path string, data []byte) (string, error)
	CreateSharedLink(ctx context.Context, path string) (string, error)
	List(ctx context.Context, path string) ([]Entry, error)
}

// Outcome is the result of AddSample and PickRandom. Exactly one of Link and
// Rejected is set.
type Outcome struct {
	Link     string
	Rejected bool
	Reason   string
	// Cause is the collaborator error behind a rejection, if any.
	Cause error
}

func rejected(reason string, cause error) Outcome {
	return Outcome{Rejected: true, Reason: reason, Cause: cause}
}

// Option customizes a Service.
type Option func(*Service)

// WithRandom replaces the source used by PickRandom. intN must return a value
// in [0, n).
func WithRandom(intN func(n int) int) Option {
	return func(s *Service) {
		if intN != nil {
			s.intN = intN
		}
	}
}

// Service orchestrates sample acquisition.
type Service struct {
	source         AudioSource
	store          ObjectStore
	logger         *slog.Logger
	defaultFormat  string
	formats        []string
	hosts          []string
	samplesPath    string
	challengesPath string
	intN           func(n int) int
}

// NewService builds a Service using the audio and dropbox sections of cfg.
func NewService(cfg *config.Config, source AudioSource, store ObjectStore, logger *slog.Logger, opts ...Option) *Service {
	defaults := config.Default()
	if cfg == nil {
		cfg = &defaults
	}
	s := &Service{
		source:         source,
		store:          store,
		logger:         logging.NewComponentLogger(logger, "sample"),
		defaultFormat:  cfg.Audio.DefaultFormat,
		formats:        cfg.Audio.AllowedFormats,
		hosts:          cfg.Audio.AllowedHosts,
		samplesPath:    cfg.Dropbox.SamplesPath,
		challengesPath: cfg.Dropbox.ChallengesPath,
		intN:           rand.IntN,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultFormat returns the format used when a request names none.
func (s *Service) DefaultFormat() string {
	return s.defaultFormat
}

// AddSample acquires sourceURL as format and publishes it. An empty format
// selects the default. ack, when non-nil, runs once validation has passed and
// before acquisition starts.
func (s *Service) AddSample(ctx context.Context, sourceURL, format string, ack func(context.Context)) Outcome {
	logger := logging.WithContext(ctx, s.logger)
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = s.defaultFormat
	}
	if err := s.validate(sourceURL, format); err != nil {
		logger.Debug("sample request rejected",
			logging.String(logging.FieldEventType, "sample_rejected"),
			logging.Error(err),
		)
		return rejected(err.Error(), err)
	}
	if ack != nil {
		ack(ctx)
	}

	audio, err := s.source.Fetch(ctx, sourceURL, format)
	if err != nil {
		return s.collaboratorFailure(logger, "sample acquisition failed", "fetch", err)
	}
	name := textutil.SanitizeFileName(audio.Title)
	if name == "" {
		name = fallbackTitle
	}
	target := path.Join(s.samplesPath, name+"."+format)
	written, err := s.store.Upload(ctx, target, audio.Data)
	if err != nil {
		return s.collaboratorFailure(logger, "sample upload failed", "upload", err)
	}
	if written == "" {
		written = target
	}
	link, err := s.store.CreateSharedLink(ctx, written)
	if err != nil {
		return s.collaboratorFailure(logger, "sample share failed", "share", err)
	}
	logger.Info("sample added",
		logging.String(logging.FieldEventType, "sample_added"),
		logging.String("path", written),
		logging.Int("bytes", len(audio.Data)),
		logging.String("format", format),
	)
	return Outcome{Link: link}
}

// PickRandom links one file from the samples folder chosen uniformly at
// random. Directories are skipped; an empty folder is rejected with
// ReasonNoSamples.
func (s *Service) PickRandom(ctx context.Context) Outcome {
	logger := logging.WithContext(ctx, s.logger)
	entries, err := s.store.List(ctx, s.samplesPath)
	if err != nil {
		return s.collaboratorFailure(logger, "sample listing failed", "list", err)
	}
	files := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir {
			files = append(files, entry)
		}
	}
	if len(files) == 0 {
		logger.Debug("no samples to pick from",
			logging.String(logging.FieldEventType, "sample_pick_empty"),
			logging.String("path", s.samplesPath),
		)
		return rejected(ReasonNoSamples, nil)
	}
	picked := files[s.intN(len(files))]
	link, err := s.store.CreateSharedLink(ctx, picked.Path)
	if err != nil {
		return s.collaboratorFailure(logger, "sample share failed", "share", err)
	}
	logger.Info("random sample picked",
		logging.String(logging.FieldEventType, "sample_picked"),
		logging.String("path", picked.Path),
		logging.Int("candidates", len(files)),
	)
	return Outcome{Link: link}
}

// SamplesLink returns the shared link of the samples folder.
func (s *Service) SamplesLink(ctx context.Context) (string, error) {
	return s.folderLink(ctx, s.samplesPath)
}

// ChallengesLink returns the shared link of the challenges folder.
func (s *Service) ChallengesLink(ctx context.Context) (string, error) {
	return s.folderLink(ctx, s.challengesPath)
}

func (s *Service) folderLink(ctx context.Context, folder string) (string, error) {
	link, err := s.store.CreateSharedLink(ctx, folder)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "sample", "folder link", folder, err)
	}
	return link, nil
}

func (s *Service) validate(sourceURL, format string) error {
	if !slices.Contains(s.formats, format) {
		return services.Wrap(services.ErrValidation, "sample", "validate",
			fmt.Sprintf("%q (allowed: %s)", format, strings.Join(s.formats, ", ")), ErrUnsupportedFormat)
	}
	if strings.TrimSpace(sourceURL) == "" {
		return services.Wrap(services.ErrValidation, "sample", "validate", "url is required", nil)
	}
	parsed, err := url.Parse(strings.TrimSpace(sourceURL))
	if err != nil || parsed.Hostname() == "" {
		return services.Wrap(services.ErrValidation, "sample", "validate", fmt.Sprintf("invalid url %q", sourceURL), nil)
	}
	host := strings.ToLower(parsed.Hostname())
	if !slices.Contains(s.hosts, host) {
		return services.Wrap(services.ErrValidation, "sample", "validate", fmt.Sprintf("%q", host), ErrHostNotAllowed)
	}
	return nil
}

func (s *Service) collaboratorFailure(logger *slog.Logger, msg, stage string, err error) Outcome {
	logging.WarnWithContext(logger, msg, "sample_"+stage+"_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, services.Hint(err)),
		logging.String(logging.FieldImpact, "sample request was rejected"),
	)
	if errors.Is(err, context.DeadlineExceeded) {
		return rejected("timed out", err)
	}
	return rejected(err.Error(), err)
}
