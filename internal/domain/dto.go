package domain

type OrderStatusType string

const (
	OrderStatusPendingAcceptance OrderStatusType = "PENDING_ACCEPTANCE"
	OrderStatusAccepted          OrderStatusType = "ACCEPTED"
	OrderStatusDelivered         OrderStatusType = "DELIVERED"
	OrderStatusConfirmed         OrderStatusType = "CONFIRMED"
	OrderStatusAutoReleased      OrderStatusType = "AUTO_RELEASED"
	OrderStatusCompleted         OrderStatusType = "COMPLETED"
	OrderStatusCancelled         OrderStatusType = "CANCELLED"
	OrderStatusDisputed          OrderStatusType = "DISPUTED"
	OrderStatusTimeout           OrderStatusType = "TIMEOUT"
)

// IsTerminal сообщает, покинул ли заказ активный жизненный цикл.
// DISPUTED формально терминален для участников, но может быть разрешен админом.
func (s OrderStatusType) IsTerminal() bool {
	switch s {
	case OrderStatusCompleted, OrderStatusCancelled, OrderStatusTimeout:
		return true
	default:
		return false
	}
}

type OrderKind string

const (
	OrderKindPack    OrderKind = "PACK"
	OrderKindService OrderKind = "SERVICE"
)

// RequiresDelivery различает два подпотока одной машины состояний: сервисный
// заказ проходит через ACCEPTED/DELIVERED, пак рассчитывается сразу при акцепте.
func (k OrderKind) RequiresDelivery() bool {
	return k == OrderKindService
}

type CurrencyType string

const (
	CurrencyVP  CurrencyType = "VP"
	CurrencyVC  CurrencyType = "VC"
	CurrencyVBP CurrencyType = "VBP"
)

type HoldDestination string

const (
	HoldDestinationSellerCredit HoldDestination = "SELLER_CREDIT"
	HoldDestinationBuyerRefund  HoldDestination = "BUYER_REFUND"
)

type XPTransactionKind string

const (
	XPKindTip             XPTransactionKind = "TIP"
	XPKindPackPurchase    XPTransactionKind = "PACK_PURCHASE"
	XPKindServicePurchase XPTransactionKind = "SERVICE_PURCHASE"
)

type RoleType string

const (
	RoleUser  RoleType = "user"
	RoleAdmin RoleType = "admin"
)

type DisputeOutcome string

const (
	DisputeOutcomeRelease DisputeOutcome = "RELEASE"
	DisputeOutcomeRefund  DisputeOutcome = "REFUND"
)
