package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key")
	ErrUnknown        = errors.New("unknown error")

	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrDuplicateHold     = errors.New("duplicate hold")
	ErrHoldNotFound      = errors.New("hold not found")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrSelfPurchase      = errors.New("self purchase")
	ErrOrderNotFound     = errors.New("order not found")

	ErrPaymentVerificationFailed = errors.New("payment verification failed")
	ErrPasswordMissMatch         = errors.New("password mismatch")

	// ErrUnavailable возвращается после исчерпания локальных ретраев на
	// транзиентных ошибках хранилища.
	ErrUnavailable = errors.New("storage unavailable")
)

// StateConflictError попытка перевести заказ из статуса, в котором он уже
// не находится. Конкурирующая транзакция успела раньше - перезаписи не происходит.
type StateConflictError struct {
	OrderID  int64
	Expected OrderStatusType
	Actual   OrderStatusType
}

func NewStateConflictError(orderID int64, expected, actual OrderStatusType) error {
	return &StateConflictError{OrderID: orderID, Expected: expected, Actual: actual}
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf(
		"order %d: expected status %s, got %s",
		e.OrderID,
		e.Expected,
		e.Actual,
	)
}
