package adapter

import "context"

// BrokerUpload is one raw file handed to the processor's upload endpoint.
type BrokerUpload struct {
	FileName string
	Content  []byte
}

// UploadOutcome is the processor's per-file verdict. Exactly one of Path or
// ErrorMessage is meaningful: an accepted file carries the storage key the
// processor filed it under, a rejected file carries the reason.
type UploadOutcome struct {
	FileName     string
	Path         string
	DocumentType string
	ErrorMessage string
}

func (o UploadOutcome) Accepted() bool { return o.ErrorMessage == "" && o.Path != "" }

// CalculationRequest carries the submission parameters the processor needs.
type CalculationRequest struct {
	UserID         string
	SubmissionID   string
	SubmissionType string
	FiscalNumber   string
	Year           int
	BaseIrsPath    string
	Premium        bool
}

// CalculationResult is the processor's response envelope. RawPayload is the
// verbatim response body and is persisted as-is; Status and ErrorMessage are
// extracted for the orchestrator's success/failure decision.
type CalculationResult struct {
	Status       string // "ok" on success, processor-defined otherwise
	ErrorMessage string
	RawPayload   []byte
}

func (r CalculationResult) Succeeded() bool { return r.Status == "ok" && r.ErrorMessage == "" }

// TaxProcessor is the hex port for the external tax-calculation service. The
// service owns both the broker-file storage and the computation itself; this
// system only orchestrates calls against it.
type TaxProcessor interface {
	Name() string

	UploadFiles(ctx context.Context, userID, brokerID string, files []BrokerUpload) ([]UploadOutcome, error)
	DeleteFile(ctx context.Context, userID, brokerID, fileType, fileName string) error
	DeleteAllFiles(ctx context.Context, userID, brokerID string) error
	CalculateTaxes(ctx context.Context, req CalculationRequest) (CalculationResult, error)
	ListSupportedBrokers(ctx context.Context) ([]string, error)
}
