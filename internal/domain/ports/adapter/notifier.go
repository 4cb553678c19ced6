package adapter

import "context"

// OperatorEvent identifies why operators are being pinged about a submission.
type OperatorEvent string

const (
	// EventStuckProcessing means a processor call failed and the submission
	// was deliberately left in processing for manual review.
	EventStuckProcessing OperatorEvent = "stuck_processing"
	// EventValidationFailed means the submission was rejected upfront and
	// moved to failed.
	EventValidationFailed OperatorEvent = "validation_failed"
)

// Notifier is the fire-and-forget operator channel (Slack/email). Failures
// must never block or fail the calling operation.
type Notifier interface {
	NotifySubmission(ctx context.Context, event OperatorEvent, submissionID, userID, detail string) error
}
