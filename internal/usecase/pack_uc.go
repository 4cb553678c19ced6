package usecase

import (
	"context"

	"github.com/google/uuid"

	"tax-filing-service/internal/domain/model"
	"tax-filing-service/internal/domain/ports/repository"
)

// PackUseCase manages the submission pack catalog.
type PackUseCase struct {
	repo repository.PackRepository
}

func NewPackUseCase(repo repository.PackRepository) *PackUseCase {
	return &PackUseCase{repo: repo}
}

// Create seeds a new catalog pack (admin surface).
func (uc *PackUseCase) Create(ctx context.Context, name, description string, priceCents int64, quota int, premium bool) (*model.Pack, error) {
	pack, err := model.NewPack(uuid.NewString(), name, description, priceCents, quota, premium, true)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Save(ctx, repository.NoTX, pack); err != nil {
		return nil, err
	}
	return pack, nil
}

// Deactivate removes a pack from the purchasable set without deleting it.
func (uc *PackUseCase) Deactivate(ctx context.Context, id string) error {
	pack, err := uc.repo.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return err
	}
	pack.IsActive = false
	return uc.repo.Save(ctx, repository.NoTX, pack)
}

// Get retrieves a pack by ID.
func (uc *PackUseCase) Get(ctx context.Context, id string) (*model.Pack, error) {
	return uc.repo.FindByID(ctx, repository.NoTX, id)
}

// GetByName retrieves a pack by its catalog name.
func (uc *PackUseCase) GetByName(ctx context.Context, name string) (*model.Pack, error) {
	return uc.repo.FindByName(ctx, repository.NoTX, name)
}

// List returns all packs, active or not.
func (uc *PackUseCase) List(ctx context.Context) ([]*model.Pack, error) {
	return uc.repo.ListAll(ctx, repository.NoTX)
}

// ListPurchasable returns the packs offered at checkout.
func (uc *PackUseCase) ListPurchasable(ctx context.Context) ([]*model.Pack, error) {
	return uc.repo.ListPurchasable(ctx, repository.NoTX)
}
