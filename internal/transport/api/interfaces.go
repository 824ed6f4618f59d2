package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/savelyev-an/packmart/internal/domain"
	"github.com/savelyev-an/packmart/internal/service"
)

// UserServicer интерфейс исключительно для моков.
type UserServicer interface {
	Register(ctx context.Context, args service.RegisterUserArgs) (*domain.User, string, error)
	Login(ctx context.Context, args service.LoginUserArgs) (*domain.User, string, error)
}

type WalletServicer interface {
	GetBalance(ctx context.Context, userID int64) (*domain.Wallet, error)
	Tip(ctx context.Context, args service.TipArgs) error
}

type OrderServicer interface {
	Create(ctx context.Context, args service.CreateOrderArgs) (*domain.Order, error)
	GetByParticipant(ctx context.Context, userID int64) ([]domain.Order, error)
	Accept(ctx context.Context, orderID, actorID int64) (*domain.Order, error)
	Decline(ctx context.Context, orderID, actorID int64, reason string) (*domain.Order, error)
	MarkDelivered(ctx context.Context, orderID, actorID int64, notes string) (*domain.Order, error)
	Confirm(ctx context.Context, orderID, actorID int64, feedback string) (*domain.Order, error)
	OpenDispute(ctx context.Context, orderID, actorID int64, reason string) (*domain.Order, error)
	ResolveDispute(ctx context.Context, orderID, actorID int64, outcome domain.DisputeOutcome) (*domain.Order, error)
}

type XPServicer interface {
	GetScore(ctx context.Context, userID int64) (*service.ScoreView, error)
	GetHistory(ctx context.Context, userID int64) ([]domain.XPTransaction, error)
}

type PaymentServicer interface {
	OnPaymentCompleted(ctx context.Context, args service.PaymentCompletedArgs) (bool, error)
}
