package ports

import (
	"context"

	"github.com/bnema/blum-farm-cli/internal/domain"
)

type AccountRepository interface {
	GetByID(ctx context.Context, id domain.AccountID) (domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
	Save(ctx context.Context, account domain.Account) error
	Delete(ctx context.Context, id domain.AccountID) error
}
