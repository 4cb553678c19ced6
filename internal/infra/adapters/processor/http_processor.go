// File: internal/infra/adapters/processor/http_processor.go
package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"tax-filing-service/internal/domain/ports/adapter"
)

var _ adapter.TaxProcessor = (*HTTPProcessor)(nil)

// HTTPProcessor implements adapter.TaxProcessor against the remote
// tax-calculation service's REST API. The client timeout doubles as the
// calculation deadline: a timed-out call is reported as a failed call, never
// as success.
type HTTPProcessor struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPProcessor(baseURL, apiKey string, timeout time.Duration) (*HTTPProcessor, error) {
	if baseURL == "" {
		return nil, errors.New("processor base url empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid processor url: %w", err)
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &HTTPProcessor{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

func (p *HTTPProcessor) Name() string { return "http" }

func (p *HTTPProcessor) endpoint(path string) string { return p.baseURL + path }

func (p *HTTPProcessor) do(req *http.Request) (*http.Response, error) {
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}
	return p.client.Do(req)
}

// UploadFiles posts the raw files as multipart form data. The processor
// answers per file: accepted files carry the storage path it filed them
// under, rejected ones carry an error message.
func (p *HTTPProcessor) UploadFiles(ctx context.Context, userID, brokerID string, files []adapter.BrokerUpload) ([]adapter.UploadOutcome, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("user_id", userID); err != nil {
		return nil, err
	}
	if err := mw.WriteField("broker_id", brokerID); err != nil {
		return nil, err
	}
	for _, f := range files {
		part, err := mw.CreateFormFile("files", f.FileName)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint("/v1/files"), &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := p.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("processor upload returned %d", resp.StatusCode)
	}

	var out struct {
		Files []struct {
			FileName     string `json:"file_name"`
			Path         string `json:"path"`
			DocumentType string `json:"document_type"`
			ErrorMessage string `json:"error_message"`
		} `json:"files"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	outcomes := make([]adapter.UploadOutcome, 0, len(out.Files))
	for _, f := range out.Files {
		outcomes = append(outcomes, adapter.UploadOutcome{
			FileName:     f.FileName,
			Path:         f.Path,
			DocumentType: f.DocumentType,
			ErrorMessage: f.ErrorMessage,
		})
	}
	return outcomes, nil
}

func (p *HTTPProcessor) DeleteFile(ctx context.Context, userID, brokerID, fileType, fileName string) error {
	payload := map[string]string{
		"user_id":   userID,
		"broker_id": brokerID,
		"file_type": fileType,
		"file_name": fileName,
	}
	return p.deleteCall(ctx, "/v1/files/delete", payload)
}

func (p *HTTPProcessor) DeleteAllFiles(ctx context.Context, userID, brokerID string) error {
	payload := map[string]string{
		"user_id":   userID,
		"broker_id": brokerID,
	}
	return p.deleteCall(ctx, "/v1/files/delete-all", payload)
}

func (p *HTTPProcessor) deleteCall(ctx context.Context, path string, payload map[string]string) error {
	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(path), bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("processor delete returned %d", resp.StatusCode)
	}
	return nil
}

// CalculateTaxes runs the remote computation. The raw response body is
// returned verbatim so the caller can persist it unchanged.
func (p *HTTPProcessor) CalculateTaxes(ctx context.Context, creq adapter.CalculationRequest) (adapter.CalculationResult, error) {
	payload := map[string]any{
		"user_id":         creq.UserID,
		"submission_id":   creq.SubmissionID,
		"submission_type": creq.SubmissionType,
		"fiscal_number":   creq.FiscalNumber,
		"year":            creq.Year,
		"base_irs_path":   creq.BaseIrsPath,
		"premium":         creq.Premium,
	}
	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint("/v1/calculate"), bytes.NewReader(b))
	if err != nil {
		return adapter.CalculationResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.do(req)
	if err != nil {
		return adapter.CalculationResult{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return adapter.CalculationResult{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return adapter.CalculationResult{}, fmt.Errorf("processor calculate returned %d", resp.StatusCode)
	}

	var envelope struct {
		Status       string `json:"status"`
		ErrorMessage string `json:"error_message"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return adapter.CalculationResult{}, fmt.Errorf("malformed processor response: %w", err)
	}
	return adapter.CalculationResult{
		Status:       envelope.Status,
		ErrorMessage: envelope.ErrorMessage,
		RawPayload:   raw,
	}, nil
}

func (p *HTTPProcessor) ListSupportedBrokers(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint("/v1/brokers"), nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("processor brokers returned %d", resp.StatusCode)
	}
	var out struct {
		Brokers []string `json:"brokers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Brokers, nil
}
