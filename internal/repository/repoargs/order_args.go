package repoargs

import (
	"time"

	"github.com/savelyev-an/packmart/internal/domain"
)

type OrderCreate struct {
	Kind     domain.OrderKind
	BuyerID  int64
	SellerID int64
	ItemID   int64
	VPAmount int64
}

// OrderTransition условный перевод заказа из ожидаемого статуса в новый.
// Если текущий статус заказа не совпадает с Expected, обновления не происходит.
type OrderTransition struct {
	OrderID  int64
	Expected domain.OrderStatusType
	To       domain.OrderStatusType

	// опциональные поля, заполняемые конкретными переходами
	DeliveredAt        *time.Time
	CancellationReason *string
	DeliveryNotes      *string
	BuyerFeedback      *string
}
