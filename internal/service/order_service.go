package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/savelyev-an/packmart/internal/domain"
	"github.com/savelyev-an/packmart/internal/repository/repoargs"
	"github.com/savelyev-an/packmart/pkg/uow"
)

// OrderService машина состояний заказа и эскроу-координатор в одном лице:
// каждый переход - одна транзакция БД, внутри которой условное обновление
// статуса и, где положено, движение холда через WalletService.
type OrderService struct {
	uow               uow.UOW
	orderRepo         OrderRepository
	walletSvs         *WalletService
	xpSvs             *XPService
	autoReleaseWindow time.Duration
	timeoutCeiling    time.Duration
}

type OrderServiceArgs struct {
	UOW               uow.UOW
	WalletService     *WalletService
	XPService         *XPService
	AutoReleaseWindow time.Duration
	TimeoutCeiling    time.Duration
}

func NewOrderService(args OrderServiceArgs) (*OrderService, error) {
	orderRepo, repoErr := uow.GetRepositoryAs[OrderRepository](args.UOW, uow.RepositoryName(repoargs.OrderRepoName))
	if repoErr != nil {
		return nil, repoErr
	}
	return &OrderService{
		uow:               args.UOW,
		orderRepo:         orderRepo,
		walletSvs:         args.WalletService,
		xpSvs:             args.XPService,
		autoReleaseWindow: args.AutoReleaseWindow,
		timeoutCeiling:    args.TimeoutCeiling,
	}, nil
}

type CreateOrderArgs struct {
	Kind     domain.OrderKind
	BuyerID  int64
	SellerID int64
	ItemID   int64
	VPAmount int64
}

// Create заводит заказ и в той же транзакции замораживает VP покупателя.
// Ошибки: domain.ErrSelfPurchase, domain.ErrInsufficientFunds. Неудавшаяся
// покупка не оставляет ни заказа, ни холда.
func (o *OrderService) Create(ctx context.Context, args CreateOrderArgs) (*domain.Order, error) {
	if args.BuyerID == args.SellerID {
		return nil, domain.ErrSelfPurchase
	}
	if args.VPAmount <= 0 {
		return nil, fmt.Errorf("creating order: amount %d must be positive", args.VPAmount)
	}

	var order *domain.Order
	txErr := withRetry(ctx, func() error {
		return o.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
			orderRepo, repoErr := uow.GetAs[OrderRepository](tx, uow.RepositoryName(repoargs.OrderRepoName))
			if repoErr != nil {
				return repoErr //nolint:wrapcheck
			}

			var createErr error
			order, createErr = orderRepo.Create(c, repoargs.OrderCreate{
				Kind:     args.Kind,
				BuyerID:  args.BuyerID,
				SellerID: args.SellerID,
				ItemID:   args.ItemID,
				VPAmount: args.VPAmount,
			})
			if createErr != nil {
				return createErr //nolint:wrapcheck
			}

			_, holdErr := o.walletSvs.PlaceHold(c, tx, PlaceHoldArgs{
				OrderID:  order.ID,
				BuyerID:  args.BuyerID,
				SellerID: args.SellerID,
				VPAmount: args.VPAmount,
			})
			return holdErr
		})
	})
	if txErr != nil {
		return nil, fmt.Errorf("creating order: %w", txErr)
	}
	return order, nil
}

// Accept акцепт заказа продавцом. Пак доставляется в момент акцепта, поэтому
// минует ACCEPTED/DELIVERED и рассчитывается сразу; сервисный заказ переходит
// в ACCEPTED и ждет доставки.
func (o *OrderService) Accept(ctx context.Context, orderID, actorID int64) (*domain.Order, error) {
	return o.transition(ctx, orderID, func(c context.Context, tx uow.TX, order *domain.Order) (*domain.Order, error) {
		if order.SellerID != actorID {
			return nil, domain.ErrPermissionDenied
		}
		if order.Status != domain.OrderStatusPendingAcceptance {
			return nil, domain.NewStateConflictError(orderID, domain.OrderStatusPendingAcceptance, order.Status)
		}

		if !order.Kind.RequiresDelivery() {
			// быстрый путь пака: акцепт и есть доставка.
			confirmed, confErr := o.applyTransition(c, tx, repoargs.OrderTransition{
				OrderID:  orderID,
				Expected: domain.OrderStatusPendingAcceptance,
				To:       domain.OrderStatusConfirmed,
			})
			if confErr != nil {
				return nil, confErr
			}
			return o.settle(c, tx, confirmed)
		}

		return o.applyTransition(c, tx, repoargs.OrderTransition{
			OrderID:  orderID,
			Expected: domain.OrderStatusPendingAcceptance,
			To:       domain.OrderStatusAccepted,
		})
	})
}

// Decline отказ продавца от заказа: холд возвращается покупателю целиком.
func (o *OrderService) Decline(ctx context.Context, orderID, actorID int64, reason string) (*domain.Order, error) {
	return o.transition(ctx, orderID, func(c context.Context, tx uow.TX, order *domain.Order) (*domain.Order, error) {
		if order.SellerID != actorID {
			return nil, domain.ErrPermissionDenied
		}
		if order.Status != domain.OrderStatusPendingAcceptance {
			return nil, domain.NewStateConflictError(orderID, domain.OrderStatusPendingAcceptance, order.Status)
		}

		cancelled, trErr := o.applyTransition(c, tx, repoargs.OrderTransition{
			OrderID:            orderID,
			Expected:           domain.OrderStatusPendingAcceptance,
			To:                 domain.OrderStatusCancelled,
			CancellationReason: &reason,
		})
		if trErr != nil {
			return nil, trErr
		}
		if _, relErr := o.walletSvs.ReleaseHold(c, tx, orderID, domain.HoldDestinationBuyerRefund); relErr != nil {
			return nil, relErr
		}
		return cancelled, nil
	})
}

// MarkDelivered отметка о доставке сервисного заказа. С этого момента тикают
// часы авторелиза.
func (o *OrderService) MarkDelivered(
	ctx context.Context,
	orderID, actorID int64,
	notes string,
) (*domain.Order, error) {
	return o.transition(ctx, orderID, func(c context.Context, tx uow.TX, order *domain.Order) (*domain.Order, error) {
		if order.SellerID != actorID {
			return nil, domain.ErrPermissionDenied
		}
		if order.Status != domain.OrderStatusAccepted {
			return nil, domain.NewStateConflictError(orderID, domain.OrderStatusAccepted, order.Status)
		}

		now := time.Now()
		var notesPtr *string
		if notes != "" {
			notesPtr = &notes
		}
		return o.applyTransition(c, tx, repoargs.OrderTransition{
			OrderID:       orderID,
			Expected:      domain.OrderStatusAccepted,
			To:            domain.OrderStatusDelivered,
			DeliveredAt:   &now,
			DeliveryNotes: notesPtr,
		})
	})
}

// Confirm подтверждение покупателем: заказ рассчитывается немедленно.
func (o *OrderService) Confirm(
	ctx context.Context,
	orderID, actorID int64,
	feedback string,
) (*domain.Order, error) {
	return o.transition(ctx, orderID, func(c context.Context, tx uow.TX, order *domain.Order) (*domain.Order, error) {
		if order.BuyerID != actorID {
			return nil, domain.ErrPermissionDenied
		}
		if order.Status != domain.OrderStatusDelivered {
			return nil, domain.NewStateConflictError(orderID, domain.OrderStatusDelivered, order.Status)
		}

		var feedbackPtr *string
		if feedback != "" {
			feedbackPtr = &feedback
		}
		confirmed, trErr := o.applyTransition(c, tx, repoargs.OrderTransition{
			OrderID:       orderID,
			Expected:      domain.OrderStatusDelivered,
			To:            domain.OrderStatusConfirmed,
			BuyerFeedback: feedbackPtr,
		})
		if trErr != nil {
			return nil, trErr
		}
		return o.settle(c, tx, confirmed)
	})
}

// OpenDispute спор покупателя по доставленному заказу. Холд остается на месте
// до решения админа.
func (o *OrderService) OpenDispute(
	ctx context.Context,
	orderID, actorID int64,
	reason string,
) (*domain.Order, error) {
	return o.transition(ctx, orderID, func(c context.Context, tx uow.TX, order *domain.Order) (*domain.Order, error) {
		if order.BuyerID != actorID {
			return nil, domain.ErrPermissionDenied
		}
		if order.Status != domain.OrderStatusDelivered {
			return nil, domain.NewStateConflictError(orderID, domain.OrderStatusDelivered, order.Status)
		}
		return o.applyTransition(c, tx, repoargs.OrderTransition{
			OrderID:            orderID,
			Expected:           domain.OrderStatusDelivered,
			To:                 domain.OrderStatusDisputed,
			CancellationReason: &reason,
		})
	})
}

// ResolveDispute решение спора. Право на операцию определяется ролью юзера
// в базе, а не списком привилегированных id. RELEASE рассчитывает заказ
// в пользу продавца, REFUND возвращает средства покупателю без начисления опыта.
func (o *OrderService) ResolveDispute(
	ctx context.Context,
	orderID, actorID int64,
	outcome domain.DisputeOutcome,
) (*domain.Order, error) {
	return o.transition(ctx, orderID, func(c context.Context, tx uow.TX, order *domain.Order) (*domain.Order, error) {
		userRepo, userErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if userErr != nil {
			return nil, userErr //nolint:wrapcheck
		}
		actor, actorErr := userRepo.GetByID(c, actorID)
		if actorErr != nil {
			return nil, actorErr //nolint:wrapcheck
		}
		if actor.Role != domain.RoleAdmin {
			return nil, domain.ErrPermissionDenied
		}
		if order.Status != domain.OrderStatusDisputed {
			return nil, domain.NewStateConflictError(orderID, domain.OrderStatusDisputed, order.Status)
		}

		switch outcome {
		case domain.DisputeOutcomeRelease:
			confirmed, trErr := o.applyTransition(c, tx, repoargs.OrderTransition{
				OrderID:  orderID,
				Expected: domain.OrderStatusDisputed,
				To:       domain.OrderStatusConfirmed,
			})
			if trErr != nil {
				return nil, trErr
			}
			return o.settle(c, tx, confirmed)
		case domain.DisputeOutcomeRefund:
			cancelled, trErr := o.applyTransition(c, tx, repoargs.OrderTransition{
				OrderID:  orderID,
				Expected: domain.OrderStatusDisputed,
				To:       domain.OrderStatusCancelled,
			})
			if trErr != nil {
				return nil, trErr
			}
			if _, relErr := o.walletSvs.ReleaseHold(c, tx, orderID, domain.HoldDestinationBuyerRefund); relErr != nil {
				return nil, relErr
			}
			return cancelled, nil
		default:
			return nil, fmt.Errorf("resolving dispute for order %d: unknown outcome %q", orderID, outcome)
		}
	})
}

// AutoRelease системный перевод доставленного заказа в расчет по истечении
// окна подтверждения. Идемпотентен: если покупатель успел подтвердить (или
// открыть спор) раньше планировщика, вызов - no-op, а не ошибка.
func (o *OrderService) AutoRelease(ctx context.Context, orderID int64) error {
	txErr := withRetry(ctx, func() error {
		return o.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
			orderRepo, repoErr := uow.GetAs[OrderRepository](tx, uow.RepositoryName(repoargs.OrderRepoName))
			if repoErr != nil {
				return repoErr //nolint:wrapcheck
			}
			order, lockErr := orderRepo.GetByIDForUpdate(c, orderID)
			if lockErr != nil {
				if errors.Is(lockErr, domain.ErrRecordNotFound) {
					return domain.ErrOrderNotFound
				}
				return lockErr //nolint:wrapcheck
			}
			if order.Status != domain.OrderStatusDelivered {
				return nil
			}
			if order.DeliveredAt == nil || time.Since(*order.DeliveredAt) < o.autoReleaseWindow {
				return nil
			}

			released, trErr := o.applyTransition(c, tx, repoargs.OrderTransition{
				OrderID:  orderID,
				Expected: domain.OrderStatusDelivered,
				To:       domain.OrderStatusAutoReleased,
			})
			if trErr != nil {
				return trErr
			}
			_, settleErr := o.settle(c, tx, released)
			return settleErr
		})
	})
	if txErr != nil {
		return fmt.Errorf("auto-releasing order %d: %w", orderID, txErr)
	}
	return nil
}

// Timeout жесткий потолок жизни заказа: любой нетерминальный заказ старше
// абсолютного дедлайна закрывается с возвратом средств покупателю.
// Идемпотентен по той же схеме, что и AutoRelease.
func (o *OrderService) Timeout(ctx context.Context, orderID int64) error {
	txErr := withRetry(ctx, func() error {
		return o.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
			orderRepo, repoErr := uow.GetAs[OrderRepository](tx, uow.RepositoryName(repoargs.OrderRepoName))
			if repoErr != nil {
				return repoErr //nolint:wrapcheck
			}
			order, lockErr := orderRepo.GetByIDForUpdate(c, orderID)
			if lockErr != nil {
				if errors.Is(lockErr, domain.ErrRecordNotFound) {
					return domain.ErrOrderNotFound
				}
				return lockErr //nolint:wrapcheck
			}
			if order.Status.IsTerminal() {
				return nil
			}
			if time.Since(order.CreatedAt) < o.timeoutCeiling {
				return nil
			}

			if _, trErr := o.applyTransition(c, tx, repoargs.OrderTransition{
				OrderID:  orderID,
				Expected: order.Status,
				To:       domain.OrderStatusTimeout,
			}); trErr != nil {
				return trErr
			}

			_, relErr := o.walletSvs.ReleaseHold(c, tx, orderID, domain.HoldDestinationBuyerRefund)
			if relErr != nil && !errors.Is(relErr, domain.ErrHoldNotFound) {
				return relErr
			}
			return nil
		})
	})
	if txErr != nil {
		return fmt.Errorf("timing out order %d: %w", orderID, txErr)
	}
	return nil
}

// DueForAutoRelease возвращает доставленные заказы с истекшим окном
// подтверждения для планировщика.
func (o *OrderService) DueForAutoRelease(ctx context.Context, limit uint) ([]domain.Order, error) {
	orders, err := o.orderRepo.GetDeliveredBefore(ctx, time.Now().Add(-o.autoReleaseWindow), limit)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return orders, nil
}

// ExpiredOrders возвращает нетерминальные заказы старше абсолютного потолка.
func (o *OrderService) ExpiredOrders(ctx context.Context, limit uint) ([]domain.Order, error) {
	orders, err := o.orderRepo.GetExpiredBefore(ctx, time.Now().Add(-o.timeoutCeiling), limit)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return orders, nil
}

// GetByParticipant возвращает заказы юзера (как покупателя и как продавца)
// от новых к старым.
func (o *OrderService) GetByParticipant(ctx context.Context, userID int64) ([]domain.Order, error) {
	orders, err := o.orderRepo.GetByParticipant(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return orders, nil
}

// transition общий каркас пользовательского перехода: транзакция, блокировка
// заказа, проверка существования - затем конкретная логика fn.
func (o *OrderService) transition(
	ctx context.Context,
	orderID int64,
	fn func(c context.Context, tx uow.TX, order *domain.Order) (*domain.Order, error),
) (*domain.Order, error) {
	var result *domain.Order
	txErr := withRetry(ctx, func() error {
		return o.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
			orderRepo, repoErr := uow.GetAs[OrderRepository](tx, uow.RepositoryName(repoargs.OrderRepoName))
			if repoErr != nil {
				return repoErr //nolint:wrapcheck
			}
			order, lockErr := orderRepo.GetByIDForUpdate(c, orderID)
			if lockErr != nil {
				if errors.Is(lockErr, domain.ErrRecordNotFound) {
					return domain.ErrOrderNotFound
				}
				return lockErr //nolint:wrapcheck
			}

			var fnErr error
			result, fnErr = fn(c, tx, order)
			return fnErr
		})
	})
	if txErr != nil {
		return nil, fmt.Errorf("order %d transition: %w", orderID, txErr)
	}
	return result, nil
}

// applyTransition условное обновление статуса. Строка под блокировкой FOR
// UPDATE, так что промах по ожидаемому статусу здесь - всегда конфликт
// конкурирующего перехода.
func (o *OrderService) applyTransition(
	ctx context.Context,
	tx uow.TX,
	args repoargs.OrderTransition,
) (*domain.Order, error) {
	orderRepo, repoErr := uow.GetAs[OrderRepository](tx, uow.RepositoryName(repoargs.OrderRepoName))
	if repoErr != nil {
		return nil, repoErr //nolint:wrapcheck
	}
	order, trErr := orderRepo.Transition(ctx, args)
	if trErr != nil {
		if errors.Is(trErr, domain.ErrRecordNotFound) {
			current, getErr := orderRepo.GetByID(ctx, args.OrderID)
			if getErr != nil {
				return nil, domain.ErrOrderNotFound
			}
			return nil, domain.NewStateConflictError(args.OrderID, args.Expected, current.Status)
		}
		return nil, trErr //nolint:wrapcheck
	}
	return order, nil
}

// settle общий финал CONFIRMED/AUTO_RELEASED/быстрого пути пака: релиз холда
// продавцу, перевод заказа в COMPLETED и начисление опыта обеим сторонам.
// Ровно один расчет на заказ гарантирует удаление холда: повторная попытка
// упадет на ErrHoldNotFound до каких-либо изменений балансов.
func (o *OrderService) settle(ctx context.Context, tx uow.TX, order *domain.Order) (*domain.Order, error) {
	if _, relErr := o.walletSvs.ReleaseHold(ctx, tx, order.ID, domain.HoldDestinationSellerCredit); relErr != nil {
		return nil, relErr
	}

	completed, trErr := o.applyTransition(ctx, tx, repoargs.OrderTransition{
		OrderID:  order.ID,
		Expected: order.Status,
		To:       domain.OrderStatusCompleted,
	})
	if trErr != nil {
		return nil, trErr
	}

	if xpErr := o.xpSvs.AwardSettlement(ctx, tx, completed); xpErr != nil {
		return nil, xpErr
	}
	return completed, nil
}
