package memberships

import (
	"context"

	"github.com/dmitrijs2005/fitkeeper/internal/server/models"
)

// Repository persists memberships. The Lock* variants take a row lock and
// are only meaningful on a transactional handle.
type Repository interface {
	Create(ctx context.Context, m *models.Membership) (*models.Membership, error)
	GetByID(ctx context.Context, id int64) (*models.Membership, error)
	GetByAccountID(ctx context.Context, accountID int64) (*models.Membership, error)
	LockByID(ctx context.Context, id int64) (*models.Membership, error)
	LockByAccountID(ctx context.Context, accountID int64) (*models.Membership, error)
	Update(ctx context.Context, m *models.Membership) (*models.Membership, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, offset, limit int, activeOnly bool) ([]*models.Membership, error)
}
