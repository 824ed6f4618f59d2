package service

import (
	"context"
	"fmt"

	"github.com/savelyev-an/packmart/internal/domain"
	"github.com/savelyev-an/packmart/internal/repository/repoargs"
	"github.com/savelyev-an/packmart/pkg/uow"
)

// PaymentService принимает подтвержденные события платежного шлюза и минтит
// валюту. Проверка подписи вебхука - забота транспортного слоя; здесь только
// идемпотентное зачисление.
type PaymentService struct {
	uow uow.UOW
}

func NewPaymentService(u uow.UOW) *PaymentService {
	return &PaymentService{uow: u}
}

type PaymentCompletedArgs struct {
	ExternalEventID string
	UserID          int64
	VPAmount        int64
	VBPAmount       int64
}

// OnPaymentCompleted зачисляет VP (и бонусные VBP) за оплаченный платеж.
// Отметка "событие обработано" и зачисление происходят в одной транзакции,
// поэтому повторная доставка того же события - no-op: возвращается
// processed=false без изменения кошелька.
func (p *PaymentService) OnPaymentCompleted(ctx context.Context, args PaymentCompletedArgs) (bool, error) {
	if args.ExternalEventID == "" {
		return false, fmt.Errorf("payment completed: empty external event id")
	}
	if args.VPAmount <= 0 && args.VBPAmount <= 0 {
		return false, fmt.Errorf("payment completed: event %s carries no amount", args.ExternalEventID)
	}

	var processed bool
	txErr := withRetry(ctx, func() error {
		processed = false
		return p.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
			eventRepo, eventErr := uow.GetAs[PaymentEventRepository](tx, uow.RepositoryName(repoargs.PaymentEventRepoName))
			if eventErr != nil {
				return eventErr //nolint:wrapcheck
			}
			walletRepo, walletErr := uow.GetAs[WalletRepository](tx, uow.RepositoryName(repoargs.WalletRepoName))
			if walletErr != nil {
				return walletErr //nolint:wrapcheck
			}

			inserted, insErr := eventRepo.CreateIfAbsent(c, repoargs.PaymentEventCreate{
				ExternalEventID: args.ExternalEventID,
				UserID:          args.UserID,
				VPAmount:        args.VPAmount,
				VBPAmount:       args.VBPAmount,
			})
			if insErr != nil {
				return insErr //nolint:wrapcheck
			}
			if !inserted {
				// событие уже обработано, повтор доставки.
				return nil
			}

			if _, initErr := walletRepo.CreateIfAbsent(c, args.UserID); initErr != nil {
				return initErr //nolint:wrapcheck
			}
			if args.VPAmount > 0 {
				if _, err := walletRepo.Adjust(c, repoargs.BalanceAdjust{
					UserID:   args.UserID,
					Currency: domain.CurrencyVP,
					Delta:    args.VPAmount,
				}); err != nil {
					return err //nolint:wrapcheck
				}
			}
			if args.VBPAmount > 0 {
				if _, err := walletRepo.Adjust(c, repoargs.BalanceAdjust{
					UserID:   args.UserID,
					Currency: domain.CurrencyVBP,
					Delta:    args.VBPAmount,
				}); err != nil {
					return err //nolint:wrapcheck
				}
			}
			processed = true
			return nil
		})
	})
	if txErr != nil {
		return false, fmt.Errorf("processing payment event %s: %w", args.ExternalEventID, txErr)
	}
	return processed, nil
}
