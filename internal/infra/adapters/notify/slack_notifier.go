// File: internal/infra/adapters/notify/slack_notifier.go
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"tax-filing-service/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*SlackNotifier)(nil)

// SlackNotifier posts operator events to an incoming-webhook channel.
type SlackNotifier struct {
	webhookURL string
	client     *http.Client
}

func NewSlackNotifier(webhookURL string) (*SlackNotifier, error) {
	if webhookURL == "" {
		return nil, errors.New("slack webhook url empty")
	}
	return &SlackNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (n *SlackNotifier) NotifySubmission(ctx context.Context, event adapter.OperatorEvent, submissionID, userID, detail string) error {
	var text string
	switch event {
	case adapter.EventStuckProcessing:
		text = fmt.Sprintf(":warning: submission %s (user %s) needs manual review: %s", submissionID, userID, detail)
	case adapter.EventValidationFailed:
		text = fmt.Sprintf(":x: submission %s (user %s) failed validation: %s", submissionID, userID, detail)
	default:
		text = fmt.Sprintf("submission %s (user %s): %s", submissionID, userID, detail)
	}

	b, _ := json.Marshal(map[string]string{"text": text})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack webhook returned %d", resp.StatusCode)
	}
	return nil
}
