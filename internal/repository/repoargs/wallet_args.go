package repoargs

import "github.com/savelyev-an/packmart/internal/domain"

// BalanceAdjust атомарное изменение одного поля кошелька. Отрицательный
// Delta - списание; репозиторий гарантирует, что баланс не уйдет в минус.
type BalanceAdjust struct {
	UserID   int64
	Currency domain.CurrencyType
	Delta    int64
}

type HoldCreate struct {
	OrderID   int64
	BuyerID   int64
	SellerID  int64
	VPAmount  int64
	VCPending int64
}
