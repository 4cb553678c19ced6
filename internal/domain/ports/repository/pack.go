package repository

import (
	"context"

	"tax-filing-service/internal/domain/model"
)

// PackRepository is the port for the read-mostly pack catalog.
type PackRepository interface {
	Save(ctx context.Context, tx Tx, pack *model.Pack) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Pack, error)
	FindByName(ctx context.Context, tx Tx, name string) (*model.Pack, error)
	// FindFree returns the zero-price pack used for the registration grant.
	FindFree(ctx context.Context, tx Tx) (*model.Pack, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Pack, error)
	// ListPurchasable returns active packs with a price greater than zero.
	ListPurchasable(ctx context.Context, tx Tx) ([]*model.Pack, error)
}
