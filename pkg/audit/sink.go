package audit

import (
	"context"

	"go.uber.org/zap"
)

// Sink is a destination for audit events.
type Sink interface {
	// Write sends an audit event to the sink.
	Write(ctx context.Context, event *Event) error

	// Close releases any resources held by the sink.
	Close() error

	// Name returns the sink's identifier.
	Name() string
}

// LogSink writes audit events to a structured logger.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a new LogSink.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger.Named("audit")}
}

// Write logs the audit event.
func (s *LogSink) Write(_ context.Context, event *Event) error {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.Time("timestamp", event.Timestamp),
		zap.String("actor_user", event.Actor.User),
		zap.String("target_namespace", event.Target.Namespace),
	}
	if len(event.Actor.Groups) > 0 {
		fields = append(fields, zap.Strings("actor_groups", event.Actor.Groups))
	}
	if event.Target.Pod != "" {
		fields = append(fields, zap.String("target_pod", event.Target.Pod))
	}
	if event.SelectedPolicy != "" {
		fields = append(fields, zap.String("selected_policy", event.SelectedPolicy))
	}
	if event.Reason != "" {
		fields = append(fields, zap.String("reason", event.Reason))
	}
	for _, f := range event.Failures {
		fields = append(fields, zap.Strings("failed_"+f.Policy, f.Reasons))
	}
	s.logger.Info("audit event", fields...)
	return nil
}

// Close implements Sink.
func (s *LogSink) Close() error { return nil }

// Name implements Sink.
func (s *LogSink) Name() string { return "log" }
