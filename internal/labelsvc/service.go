// Package labelsvc coordinates label issuance end to end: render the QR
// artifact, store it in the configured sink, and record the event in the
// issuance archive. Observability hooks (logger, metrics, tracer) are
// optional collaborators supplied through functional options.
package labelsvc

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"wols/internal/archive"
	"wols/internal/labelsink"
	"wols/pkg/label"
	"wols/pkg/wols"

	"github.com/google/uuid"
)

// Operation names used for metrics, traces, and log lines.
const (
	opIssueLabel  = "issue_label"
	opHistory     = "specimen_history"
	opRecent      = "recent_issuances"
	opArtifactURL = "artifact_url"
)

// Logger matches the log/slog surface the service emits to; *slog.Logger
// satisfies it directly.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// MetricsRecorder observes service operation outcomes.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Tracer opens spans around service operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan terminates a traced operation.
type TraceSpan interface {
	End(err error)
}

type noopSpan struct{}

func (noopSpan) End(error) {}

// Issued describes a completed label issuance.
type Issued struct {
	Issuance archive.Issuance
	Artifact labelsink.Info
	Caption  string
}

// Service issues specimen labels over a sink and an archive.
type Service struct {
	sink     labelsink.Store
	archive  archive.Store
	logger   Logger
	metrics  MetricsRecorder
	tracer   Tracer
	validate wols.ValidateOptions
	now      func() time.Time
	newID    func() uuid.UUID
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithLogger routes service log lines to l.
func WithLogger(l Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetricsRecorder publishes operation metrics to m.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTracer wraps operations in spans from t.
func WithTracer(t Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithValidateOptions sets the validation policy applied before issuing.
// The default is the zero value: strict level, strict id mode.
func WithValidateOptions(opts wols.ValidateOptions) Option {
	return func(s *Service) { s.validate = opts }
}

// New wires a label service over the sink and archive.
func New(sink labelsink.Store, arch archive.Store, opts ...Option) (*Service, error) {
	if sink == nil {
		return nil, fmt.Errorf("labelsvc: sink is required")
	}
	if arch == nil {
		return nil, fmt.Errorf("labelsvc: archive is required")
	}
	s := &Service{
		sink:    sink,
		archive: arch,
		logger:  noopLogger{},
		now:     time.Now,
		newID:   uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue validates the specimen, renders its label, stores the PNG artifact,
// and records the issuance. Records that fail validation are refused: the
// archive only ever holds labels for conforming specimens.
func (s *Service) Issue(ctx context.Context, specimen wols.Specimen, opts label.Options) (Issued, error) {
	start := s.now()
	ctx, span := s.startSpan(ctx, opIssueLabel)
	issued, err := s.issue(ctx, specimen, opts)
	span.End(err)
	s.observe(ctx, opIssueLabel, err == nil, s.now().Sub(start))
	if err != nil {
		s.logger.Error("label issuance failed", "specimen", specimen.ID.String(), "error", err)
		return Issued{}, err
	}
	s.logger.Info("label issued",
		"specimen", specimen.ID.String(),
		"issuance", issued.Issuance.ID.String(),
		"artifact", issued.Artifact.Key)
	return issued, nil
}

func (s *Service) issue(ctx context.Context, specimen wols.Specimen, opts label.Options) (Issued, error) {
	if res := wols.ValidateSpecimen(specimen, s.validate); !res.Valid {
		return Issued{}, validationError(res)
	}
	png, err := label.Render(specimen, opts)
	if err != nil {
		return Issued{}, fmt.Errorf("render label: %w", err)
	}
	id := s.newID()
	key := artifactKey(specimen.ID, id)
	caption := label.Caption(specimen)

	info, err := s.sink.Put(ctx, key, bytes.NewReader(png), labelsink.PutOptions{
		ContentType: "image/png",
		Metadata: map[string]string{
			"specimen": specimen.ID.String(),
			"caption":  caption,
		},
	})
	if err != nil {
		return Issued{}, fmt.Errorf("store label artifact: %w", err)
	}

	iss := archive.Issuance{
		ID:          id,
		SpecimenID:  specimen.ID.String(),
		Species:     specimen.Species,
		Format:      string(effectiveFormat(opts.Format)),
		ArtifactKey: info.Key,
		IssuedAt:    s.now().UTC(),
	}
	if err := s.archive.Record(ctx, iss); err != nil {
		// Remove the artifact so the sink never holds unrecorded labels.
		if _, delErr := s.sink.Delete(ctx, info.Key); delErr != nil {
			s.logger.Warn("orphaned label artifact", "key", info.Key, "error", delErr)
		}
		return Issued{}, fmt.Errorf("record issuance: %w", err)
	}
	return Issued{Issuance: iss, Artifact: info, Caption: caption}, nil
}

// History returns the issuances recorded for one specimen, newest first.
func (s *Service) History(ctx context.Context, specimenID string) ([]archive.Issuance, error) {
	start := s.now()
	ctx, span := s.startSpan(ctx, opHistory)
	out, err := s.archive.FindBySpecimen(ctx, specimenID)
	span.End(err)
	s.observe(ctx, opHistory, err == nil, s.now().Sub(start))
	if err != nil {
		return nil, fmt.Errorf("specimen history: %w", err)
	}
	return out, nil
}

// Recent returns the latest issuances across all specimens; limit <= 0
// returns everything.
func (s *Service) Recent(ctx context.Context, limit int) ([]archive.Issuance, error) {
	start := s.now()
	ctx, span := s.startSpan(ctx, opRecent)
	out, err := s.archive.List(ctx, limit)
	span.End(err)
	s.observe(ctx, opRecent, err == nil, s.now().Sub(start))
	if err != nil {
		return nil, fmt.Errorf("recent issuances: %w", err)
	}
	return out, nil
}

// ArtifactURL returns a time-limited download URL for a stored artifact.
// Sinks without URL support surface labelsink.ErrUnsupported.
func (s *Service) ArtifactURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	start := s.now()
	ctx, span := s.startSpan(ctx, opArtifactURL)
	url, err := s.sink.PresignURL(ctx, key, labelsink.SignedURLOptions{Method: "GET", Expiry: expiry})
	span.End(err)
	s.observe(ctx, opArtifactURL, err == nil, s.now().Sub(start))
	if err != nil {
		return "", fmt.Errorf("artifact url: %w", err)
	}
	return url, nil
}

func (s *Service) startSpan(ctx context.Context, operation string) (context.Context, TraceSpan) {
	if s.tracer == nil {
		return ctx, noopSpan{}
	}
	return s.tracer.Start(ctx, operation)
}

func (s *Service) observe(ctx context.Context, operation string, success bool, duration time.Duration) {
	if s.metrics != nil {
		s.metrics.Observe(ctx, operation, success, duration)
	}
}

func effectiveFormat(format label.PayloadFormat) label.PayloadFormat {
	if format == "" {
		return label.FormatCompact
	}
	return format
}

// validationError surfaces the first accumulated issue; the full list is a
// concern for the validate operation, not for issuance.
func validationError(res wols.ValidationResult) error {
	first := res.Errors[0]
	if first.Path == "" {
		return fmt.Errorf("validate specimen: %s", first.Message)
	}
	return fmt.Errorf("validate specimen: %s: %s", first.Path, first.Message)
}

// artifactKey shapes sink keys as labels/<specimen suffix>/<issuance>.png
// so one specimen's artifacts list under a common prefix.
func artifactKey(specimenID wols.SpecimenID, issuanceID uuid.UUID) string {
	return fmt.Sprintf("labels/%s/%s.png", specimenID.Suffix(), issuanceID)
}
