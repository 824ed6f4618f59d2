package autorelease

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/savelyev-an/packmart/internal/domain"
)

type Servicer interface {
	DueForAutoRelease(ctx context.Context, limit uint) ([]domain.Order, error)
	ExpiredOrders(ctx context.Context, limit uint) ([]domain.Order, error)
	AutoRelease(ctx context.Context, orderID int64) error
	Timeout(ctx context.Context, orderID int64) error
}
