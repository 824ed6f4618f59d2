package service

import (
	"context"
	"time"

	"github.com/savelyev-an/packmart/internal/domain"
	"github.com/savelyev-an/packmart/internal/repository/repoargs"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type PasswordHasher interface {
	HashPassword(password string) (string, error)
	ComparePassword(password string, hashedPassword string) bool
}

type WalletRepository interface {
	CreateIfAbsent(ctx context.Context, userID int64) (*domain.Wallet, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Wallet, error)
	Adjust(ctx context.Context, args repoargs.BalanceAdjust) (*domain.Wallet, error)
	AdjustPending(ctx context.Context, userID int64, delta int64) (*domain.Wallet, error)
}

type HoldRepository interface {
	Create(ctx context.Context, args repoargs.HoldCreate) (*domain.EscrowHold, error)
	Delete(ctx context.Context, orderID int64) (*domain.EscrowHold, error)
	GetByOrderID(ctx context.Context, orderID int64) (*domain.EscrowHold, error)
}

type OrderRepository interface {
	Create(ctx context.Context, args repoargs.OrderCreate) (*domain.Order, error)
	GetByID(ctx context.Context, orderID int64) (*domain.Order, error)
	GetByIDForUpdate(ctx context.Context, orderID int64) (*domain.Order, error)
	Transition(ctx context.Context, args repoargs.OrderTransition) (*domain.Order, error)
	GetByParticipant(ctx context.Context, userID int64) ([]domain.Order, error)
	GetDeliveredBefore(ctx context.Context, deliveredBefore time.Time, limit uint) ([]domain.Order, error)
	GetExpiredBefore(ctx context.Context, createdBefore time.Time, limit uint) ([]domain.Order, error)
}

type XPTransactionRepository interface {
	Create(ctx context.Context, args repoargs.XPTransactionCreate) (*domain.XPTransaction, error)
	SumByUserID(ctx context.Context, userID int64) (int64, error)
	GetByUserID(ctx context.Context, userID int64) ([]domain.XPTransaction, error)
}

type ScoreRepository interface {
	Upsert(ctx context.Context, args repoargs.ScoreUpsert) (*domain.UserScore, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.UserScore, error)
}

type TierRepository interface {
	GetAll(ctx context.Context) ([]domain.EloTier, error)
}

type PaymentEventRepository interface {
	CreateIfAbsent(ctx context.Context, args repoargs.PaymentEventCreate) (bool, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, args repoargs.CreateUser) (*domain.User, error)
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, userID int64) (*domain.User, error)
}
