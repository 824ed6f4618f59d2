package domain

import (
	"time"
)

type User struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Username  string
	Password  string
	Role      RoleType
}

// Wallet кошелек юзера. Все суммы хранятся в минорных единицах (int64),
// дробная арифметика с деньгами запрещена.
type Wallet struct {
	UserID    int64
	CreatedAt time.Time
	UpdatedAt time.Time
	VP        int64
	VC        int64
	VBP       int64
	// VCPending информационное зеркало открытых холдов продавца.
	VCPending int64
}

// EscrowHold замороженная сумма по заказу. Пока холд существует, средства
// не принадлежат ни покупателю ни продавцу.
type EscrowHold struct {
	OrderID   int64
	CreatedAt time.Time
	BuyerID   int64
	SellerID  int64
	VPAmount  int64
	// VCPending сумма VC которую получит продавец при релизе. Считается один раз
	// при создании холда, чтобы зеркало VCPending в кошельке сходилось точно.
	VCPending int64
}

type Order struct {
	ID                 int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Kind               OrderKind
	BuyerID            int64
	SellerID           int64
	ItemID             int64
	VPAmount           int64
	Status             OrderStatusType
	DeliveredAt        *time.Time
	CancellationReason *string
	DeliveryNotes      *string
	BuyerFeedback      *string
}

// XPTransaction неизменяемая запись о начислении опыта. Для расчета заказа
// создается ровно одна запись на участника; у чаевых источника-заказа нет.
type XPTransaction struct {
	ID            int64
	CreatedAt     time.Time
	UserID        int64
	XPAmount      int64
	SourceOrderID *int64
	Kind          XPTransactionKind
}

// UserScore кешированная проекция {xp, tier}. История xp_transactions
// никогда не пересчитывается.
type UserScore struct {
	UserID    int64
	UpdatedAt time.Time
	XP        int64
	TierKey   string
}

type EloTier struct {
	Key         string
	Name        string
	Order       int32
	XPThreshold int64
	BadgeColor  string
	Description string
	Version     int32
}

// PaymentEvent обработанное событие платежного шлюза. Первичный ключ -
// внешний идентификатор события, он же ключ дедупликации вебхука.
type PaymentEvent struct {
	ExternalEventID string
	ProcessedAt     time.Time
	UserID          int64
	VPAmount        int64
	VBPAmount       int64
}
