package audit

import (
	"context"

	"go.uber.org/zap"
)

// Service fans audit events out to all configured sinks. A nil *Service is
// valid and records nothing, so callers never need to guard their Record
// calls.
type Service struct {
	sinks  []Sink
	logger *zap.SugaredLogger
}

// NewService creates a Service writing to the given sinks.
func NewService(logger *zap.SugaredLogger, sinks ...Sink) *Service {
	return &Service{sinks: sinks, logger: logger}
}

// Record delivers the event to every sink. Sink failures are logged, not
// propagated: auditing must never fail an admission decision.
func (s *Service) Record(ctx context.Context, event *Event) {
	if s == nil {
		return
	}
	for _, sink := range s.sinks {
		if err := sink.Write(ctx, event); err != nil {
			s.logger.Warnw("Failed to write audit event",
				"sink", sink.Name(), "event_id", event.ID, "error", err)
		}
	}
}

// Close closes all sinks.
func (s *Service) Close() error {
	if s == nil {
		return nil
	}
	var firstErr error
	for _, sink := range s.sinks {
		if err := sink.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
