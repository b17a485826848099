package repositories

import (
	"context"

	"fulfillment/internal/models"
)

// OperatorRepository defines the interface for back-office account data access.
type OperatorRepository interface {
	Create(ctx context.Context, operator *models.Operator) error
	GetByUsername(ctx context.Context, username string) (*models.Operator, error)
}
