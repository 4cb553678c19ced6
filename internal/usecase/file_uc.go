package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tax-filing-service/internal/domain"
	"tax-filing-service/internal/domain/model"
	"tax-filing-service/internal/domain/ports/adapter"
	"tax-filing-service/internal/domain/ports/repository"
	"tax-filing-service/internal/infra/metrics"
)

// Compile-time check
var _ FileUseCase = (*fileUC)(nil)

// BrokerCache caches the processor's supported broker list.
type BrokerCache interface {
	Get(ctx context.Context) ([]string, error)
	Set(ctx context.Context, brokers []string) error
}

// FileUseCase keeps the local file-metadata mirror consistent with the
// external processor's broker-file storage. The processor is the source of
// truth: rows exist only for files it accepted, and local deletes happen only
// after the remote delete succeeded.
type FileUseCase interface {
	// Upload sends raw files to the processor and persists the accepted ones.
	// On partial rejection the accepted files are still persisted and
	// returned; the rejected ones are reported in a single aggregated error.
	Upload(ctx context.Context, submissionID, brokerID string, files []adapter.BrokerUpload) ([]*model.SubmissionFile, error)
	// Remove deletes one of the submission's files remotely, then locally.
	// A file belonging to a different submission reads as not found.
	Remove(ctx context.Context, submissionID, fileID string) error
	// RemoveBroker deletes all of a submission's files for one broker,
	// remote first.
	RemoveBroker(ctx context.Context, submissionID, brokerID string) error
	// ListGrouped returns the submission's files clustered by broker.
	ListGrouped(ctx context.Context, submissionID string) ([]model.PlatformFiles, error)
	// SupportedBrokers lists broker codes the processor accepts, cached.
	SupportedBrokers(ctx context.Context) ([]string, error)
}

type fileUC struct {
	subs      repository.SubmissionRepository
	files     repository.SubmissionFileRepository
	processor adapter.TaxProcessor
	brokers   BrokerCache

	log *zerolog.Logger
}

func NewFileUseCase(
	subs repository.SubmissionRepository,
	files repository.SubmissionFileRepository,
	processor adapter.TaxProcessor,
	brokers BrokerCache,
	logger *zerolog.Logger,
) *fileUC {
	return &fileUC{subs: subs, files: files, processor: processor, brokers: brokers, log: logger}
}

func (uc *fileUC) Upload(ctx context.Context, submissionID, brokerID string, files []adapter.BrokerUpload) ([]*model.SubmissionFile, error) {
	if len(files) == 0 {
		return nil, domain.ErrInvalidArgument
	}
	s, err := uc.subs.FindByID(ctx, repository.NoTX, submissionID)
	if err != nil {
		return nil, err
	}

	outcomes, err := uc.processor.UploadFiles(ctx, s.UserID, brokerID, files)
	if err != nil {
		metrics.IncUploads(brokerID, 0, len(files))
		return nil, fmt.Errorf("%w: %v", domain.ErrProcessorFailure, err)
	}

	var accepted []*model.SubmissionFile
	var rejections []string
	for _, o := range outcomes {
		if !o.Accepted() {
			rejections = append(rejections, fmt.Sprintf("%s: %s", o.FileName, o.ErrorMessage))
			continue
		}
		f, err := model.NewSubmissionFile(uuid.NewString(), s.ID, brokerID, o.DocumentType, o.Path)
		if err != nil {
			return nil, err
		}
		accepted = append(accepted, f)
	}

	if len(accepted) > 0 {
		if err := uc.files.SaveBatch(ctx, repository.NoTX, accepted); err != nil {
			return nil, err
		}
	}
	metrics.IncUploads(brokerID, len(accepted), len(rejections))

	if len(rejections) > 0 {
		uc.log.Warn().Str("submission_id", s.ID).Str("broker", brokerID).
			Int("accepted", len(accepted)).Int("rejected", len(rejections)).Msg("upload partially rejected")
		return accepted, fmt.Errorf("some files were rejected: %s", strings.Join(rejections, "; "))
	}
	return accepted, nil
}

func (uc *fileUC) Remove(ctx context.Context, submissionID, fileID string) error {
	f, err := uc.files.FindByID(ctx, repository.NoTX, fileID)
	if err != nil {
		return err
	}
	if f.SubmissionID != submissionID {
		// The file exists but under another submission. Treated the same as
		// a missing file so ids cannot be enumerated across submissions.
		return domain.ErrNotFound
	}
	s, err := uc.subs.FindByID(ctx, repository.NoTX, f.SubmissionID)
	if err != nil {
		return err
	}
	// Remote first. If the processor still holds the file the local mirror
	// must keep pointing at it.
	if err := uc.processor.DeleteFile(ctx, s.UserID, f.BrokerName, f.FileType, f.FilePath); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProcessorFailure, err)
	}
	return uc.files.Delete(ctx, repository.NoTX, f.ID)
}

func (uc *fileUC) RemoveBroker(ctx context.Context, submissionID, brokerID string) error {
	s, err := uc.subs.FindByID(ctx, repository.NoTX, submissionID)
	if err != nil {
		return err
	}
	if err := uc.processor.DeleteAllFiles(ctx, s.UserID, brokerID); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProcessorFailure, err)
	}
	return uc.files.DeleteBySubmissionAndBroker(ctx, repository.NoTX, submissionID, brokerID)
}

func (uc *fileUC) ListGrouped(ctx context.Context, submissionID string) ([]model.PlatformFiles, error) {
	files, err := uc.files.FindBySubmission(ctx, repository.NoTX, submissionID)
	if err != nil {
		return nil, err
	}
	return model.GroupFilesByBroker(files), nil
}

func (uc *fileUC) SupportedBrokers(ctx context.Context) ([]string, error) {
	if uc.brokers != nil {
		if cached, err := uc.brokers.Get(ctx); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}
	brokers, err := uc.processor.ListSupportedBrokers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProcessorFailure, err)
	}
	if uc.brokers != nil {
		if err := uc.brokers.Set(ctx, brokers); err != nil {
			uc.log.Warn().Err(err).Msg("broker cache write failed")
		}
	}
	return brokers, nil
}
