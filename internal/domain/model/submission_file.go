package model

import (
	"time"

	"tax-filing-service/internal/domain"
)

// SubmissionFile mirrors one broker file the external processor accepted for
// a submission. A row exists only after a successful remote upload; FilePath
// is the processor's storage key, not a local path.
type SubmissionFile struct {
	ID           string
	SubmissionID string
	BrokerName   string
	FileType     string
	FilePath     string
	CreatedAt    time.Time
}

// NewSubmissionFile records a remotely accepted broker file.
func NewSubmissionFile(id, submissionID, brokerName, fileType, filePath string) (*SubmissionFile, error) {
	if id == "" || submissionID == "" || brokerName == "" || filePath == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &SubmissionFile{
		ID:           id,
		SubmissionID: submissionID,
		BrokerName:   brokerName,
		FileType:     fileType,
		FilePath:     filePath,
		CreatedAt:    time.Now(),
	}, nil
}

// PlatformFiles groups a submission's files by broker for display.
type PlatformFiles struct {
	BrokerName string
	Files      []*SubmissionFile
}

// GroupFilesByBroker clusters files into platform groups, preserving the
// order brokers first appear in.
func GroupFilesByBroker(files []*SubmissionFile) []PlatformFiles {
	var out []PlatformFiles
	index := make(map[string]int)
	for _, f := range files {
		i, ok := index[f.BrokerName]
		if !ok {
			i = len(out)
			index[f.BrokerName] = i
			out = append(out, PlatformFiles{BrokerName: f.BrokerName})
		}
		out[i].Files = append(out[i].Files, f)
	}
	return out
}
