package availability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrUpstream        = errors.New("busy-interval provider failed")
	ErrInvalidTemplate = errors.New("invalid availability template")
)

// TemplateStore loads availability templates. Missing templates are reported as ErrNotFound.
type TemplateStore interface {
	GetTemplate(ctx context.Context, ownerID, templateID string) (Template, error)
}

// BusyProvider returns the occupied intervals of an owner inside [start, end].
type BusyProvider interface {
	BusyIntervals(ctx context.Context, ownerID string, start, end time.Time) ([]Interval, error)
}

type Config struct {
	// Step is the distance between candidate slot starts.
	Step time.Duration
	// LegacyFixedGranularity ignores the event duration and uses 15 minute slots.
	LegacyFixedGranularity bool
	HorizonWeeks           int
	Now                    func() time.Time
}

type Service struct {
	templates TemplateStore
	busy      BusyProvider
	logger    *slog.Logger
	tracer    trace.Tracer
	cfg       Config
}

func NewService(templates TemplateStore, busy BusyProvider, logger *slog.Logger, cfg Config) *Service {
	if cfg.Step <= 0 {
		cfg.Step = DefaultGranularity
	}
	if cfg.HorizonWeeks <= 0 {
		cfg.HorizonWeeks = DefaultHorizonWeeks
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		templates: templates,
		busy:      busy,
		logger:    logger,
		tracer:    otel.Tracer("github.com/md-rashed-zaman/meetings/availability"),
		cfg:       cfg,
	}
}

type Request struct {
	OwnerID    string
	TemplateID string
	// Duration is the event type's configured length.
	Duration time.Duration
}

// SlotLength is the length of each candidate slot for an event of duration d.
func (s *Service) SlotLength(d time.Duration) time.Duration {
	if s.cfg.LegacyFixedGranularity || d <= 0 {
		return DefaultGranularity
	}
	return d
}

func (s *Service) GetAvailabilities(ctx context.Context, req Request) (FreeSlotsByDate, error) {
	ctx, span := s.tracer.Start(ctx, "availability.GetAvailabilities", trace.WithAttributes(
		attribute.String("owner.id", req.OwnerID),
		attribute.String("availability.id", req.TemplateID),
	))
	defer span.End()

	tmpl, err := s.templates.GetTemplate(ctx, req.OwnerID, req.TemplateID)
	if err != nil {
		span.SetStatus(codes.Error, "template lookup failed")
		if errors.Is(err, ErrInvalidTemplate) {
			s.logger.Error("stored availability template is invalid", "owner_id", req.OwnerID, "availability_id", req.TemplateID, "err", err)
		}
		return nil, err
	}

	horizon := HorizonFor(s.cfg.Now(), tmpl.Location, s.cfg.HorizonWeeks)

	busy, err := s.busy.BusyIntervals(ctx, req.OwnerID, horizon.Start.UTC(), horizon.End.UTC())
	if err != nil {
		span.SetStatus(codes.Error, "busy intervals fetch failed")
		s.logger.Error("busy intervals fetch failed", "owner_id", req.OwnerID, "err", err)
		if errors.Is(err, ErrUpstream) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	length := s.SlotLength(req.Duration)
	step := s.cfg.Step
	if s.cfg.LegacyFixedGranularity {
		step = DefaultGranularity
	}
	free := Enumerate(tmpl.Week, busy, horizon, length, step)

	span.SetAttributes(attribute.Int("slots.count", free.Count()), attribute.Int("busy.count", len(busy)))
	s.logger.Debug("availability computed",
		"owner_id", req.OwnerID,
		"availability_id", req.TemplateID,
		"horizon_start", horizon.Start,
		"horizon_end", horizon.End,
		"busy", len(busy),
		"slots", free.Count(),
	)
	return free, nil
}
