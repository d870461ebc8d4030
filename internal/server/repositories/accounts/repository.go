package accounts

import (
	"context"

	"github.com/dmitrijs2005/fitkeeper/internal/server/models"
)

// Repository persists accounts. Lookups that match nothing return
// common.ErrorNotFound; a taken email returns common.ErrorAlreadyExists.
type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	SetAdmin(ctx context.Context, id int64, admin bool) (*models.Account, error)
	SetActive(ctx context.Context, id int64, active bool) (*models.Account, error)
}
