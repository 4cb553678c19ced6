package notify

import (
	"context"

	"tax-filing-service/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

var _ adapter.Notifier = (*NoopNotifier)(nil)

// NoopNotifier logs instead of delivering; used when no webhook is configured.
type NoopNotifier struct {
	log *zerolog.Logger
}

func NewNoopNotifier(logger *zerolog.Logger) *NoopNotifier {
	return &NoopNotifier{log: logger}
}

func (n *NoopNotifier) NotifySubmission(ctx context.Context, event adapter.OperatorEvent, submissionID, userID, detail string) error {
	n.log.Info().
		Str("event", string(event)).
		Str("submission_id", submissionID).
		Str("user_id", userID).
		Str("detail", detail).
		Msg("operator notification (noop)")
	return nil
}
