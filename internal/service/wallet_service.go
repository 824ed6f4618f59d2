package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/savelyev-an/packmart/internal/domain"
	"github.com/savelyev-an/packmart/internal/repository/repoargs"
	"github.com/savelyev-an/packmart/pkg/uow"
)

// WalletService владеет кошельками и эскроу-холдами. Никто кроме него
// кошельки не трогает: заказы и платежи работают через его методы.
type WalletService struct {
	uow        uow.UOW
	walletRepo WalletRepository
	xpSvs      *XPService
}

func NewWalletService(u uow.UOW, xpSvs *XPService) (*WalletService, error) {
	walletRepo, repoErr := uow.GetRepositoryAs[WalletRepository](u, uow.RepositoryName(repoargs.WalletRepoName))
	if repoErr != nil {
		return nil, repoErr
	}
	return &WalletService{
		uow:        u,
		walletRepo: walletRepo,
		xpSvs:      xpSvs,
	}, nil
}

// Initialize создает нулевой кошелек юзера. Идемпотентен: существующий
// кошелек возвращается как есть.
func (w *WalletService) Initialize(ctx context.Context, userID int64) (*domain.Wallet, error) {
	var wallet *domain.Wallet
	err := withRetry(ctx, func() error {
		return w.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
			repo, repoErr := uow.GetAs[WalletRepository](tx, uow.RepositoryName(repoargs.WalletRepoName))
			if repoErr != nil {
				return repoErr //nolint:wrapcheck
			}
			var createErr error
			wallet, createErr = repo.CreateIfAbsent(c, userID)
			return createErr //nolint:wrapcheck
		})
	})
	if err != nil {
		return nil, fmt.Errorf("initializing wallet: %w", err)
	}
	return wallet, nil
}

func (w *WalletService) GetBalance(ctx context.Context, userID int64) (*domain.Wallet, error) {
	wallet, err := w.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return wallet, nil
}

// Credit увеличивает именованный баланс. amount строго положительный.
func (w *WalletService) Credit(
	ctx context.Context,
	userID int64,
	currency domain.CurrencyType,
	amount int64,
) (*domain.Wallet, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("crediting wallet: amount %d must be positive", amount)
	}
	return w.adjust(ctx, repoargs.BalanceAdjust{UserID: userID, Currency: currency, Delta: amount})
}

// Debit уменьшает именованный баланс. Возвращает domain.ErrInsufficientFunds,
// если средств не хватает - кошелек при этом не меняется.
func (w *WalletService) Debit(
	ctx context.Context,
	userID int64,
	currency domain.CurrencyType,
	amount int64,
) (*domain.Wallet, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("debiting wallet: amount %d must be positive", amount)
	}
	return w.adjust(ctx, repoargs.BalanceAdjust{UserID: userID, Currency: currency, Delta: -amount})
}

func (w *WalletService) adjust(ctx context.Context, args repoargs.BalanceAdjust) (*domain.Wallet, error) {
	var wallet *domain.Wallet
	err := withRetry(ctx, func() error {
		var adjErr error
		wallet, adjErr = w.walletRepo.Adjust(ctx, args)
		return adjErr
	})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return wallet, nil
}

type PlaceHoldArgs struct {
	OrderID  int64
	BuyerID  int64
	SellerID int64
	VPAmount int64
}

// PlaceHold атомарно списывает VP покупателя и создает эскроу-холд по заказу.
// Выполняется внутри переданной транзакции tx - вызывающая сторона (машина
// состояний заказа) отвечает за ее границы.
//
// Ошибки: domain.ErrInsufficientFunds, domain.ErrDuplicateHold (холд по заказу
// уже существует - защита от повторного списания).
func (w *WalletService) PlaceHold(
	ctx context.Context,
	tx uow.TX,
	args PlaceHoldArgs,
) (*domain.EscrowHold, error) {
	walletRepo, holdRepo, reposErr := txLedgerRepos(tx)
	if reposErr != nil {
		return nil, reposErr
	}

	if _, debitErr := walletRepo.Adjust(ctx, repoargs.BalanceAdjust{
		UserID:   args.BuyerID,
		Currency: domain.CurrencyVP,
		Delta:    -args.VPAmount,
	}); debitErr != nil {
		return nil, fmt.Errorf("placing hold for order %d: %w", args.OrderID, debitErr)
	}

	vcPending := domain.SellerCreditVC(args.VPAmount)
	hold, createErr := holdRepo.Create(ctx, repoargs.HoldCreate{
		OrderID:   args.OrderID,
		BuyerID:   args.BuyerID,
		SellerID:  args.SellerID,
		VPAmount:  args.VPAmount,
		VCPending: vcPending,
	})
	if createErr != nil {
		if errors.Is(createErr, domain.ErrDuplicateKey) {
			return nil, fmt.Errorf("placing hold for order %d: %w", args.OrderID, domain.ErrDuplicateHold)
		}
		return nil, fmt.Errorf("placing hold for order %d: %w", args.OrderID, createErr)
	}

	// кошелек продавца мог еще не существовать - зеркало vc_pending требует строку.
	if _, initErr := walletRepo.CreateIfAbsent(ctx, args.SellerID); initErr != nil {
		return nil, fmt.Errorf("placing hold for order %d: %w", args.OrderID, initErr)
	}
	if _, pendErr := walletRepo.AdjustPending(ctx, args.SellerID, vcPending); pendErr != nil {
		return nil, fmt.Errorf("placing hold for order %d: %w", args.OrderID, pendErr)
	}
	return hold, nil
}

// ReleaseHold снимает холд по заказу и зачисляет средства получателю:
// SELLER_CREDIT конвертирует VP в VC продавцу (округление вниз зафиксировано
// при создании холда), BUYER_REFUND возвращает исходные VP покупателю.
// Удаление холда и зачисление происходят в одной транзакции; отсутствие холда
// (domain.ErrHoldNotFound) означает, что релиз уже состоялся.
func (w *WalletService) ReleaseHold(
	ctx context.Context,
	tx uow.TX,
	orderID int64,
	destination domain.HoldDestination,
) (*domain.EscrowHold, error) {
	walletRepo, holdRepo, reposErr := txLedgerRepos(tx)
	if reposErr != nil {
		return nil, reposErr
	}

	hold, delErr := holdRepo.Delete(ctx, orderID)
	if delErr != nil {
		if errors.Is(delErr, domain.ErrRecordNotFound) {
			return nil, fmt.Errorf("releasing hold for order %d: %w", orderID, domain.ErrHoldNotFound)
		}
		return nil, fmt.Errorf("releasing hold for order %d: %w", orderID, delErr)
	}

	switch destination {
	case domain.HoldDestinationSellerCredit:
		if _, err := walletRepo.Adjust(ctx, repoargs.BalanceAdjust{
			UserID:   hold.SellerID,
			Currency: domain.CurrencyVC,
			Delta:    hold.VCPending,
		}); err != nil {
			return nil, fmt.Errorf("releasing hold for order %d: %w", orderID, err)
		}
	case domain.HoldDestinationBuyerRefund:
		if _, err := walletRepo.Adjust(ctx, repoargs.BalanceAdjust{
			UserID:   hold.BuyerID,
			Currency: domain.CurrencyVP,
			Delta:    hold.VPAmount,
		}); err != nil {
			return nil, fmt.Errorf("releasing hold for order %d: %w", orderID, err)
		}
	default:
		return nil, fmt.Errorf("releasing hold for order %d: unknown destination %q", orderID, destination)
	}

	if _, pendErr := walletRepo.AdjustPending(ctx, hold.SellerID, -hold.VCPending); pendErr != nil {
		return nil, fmt.Errorf("releasing hold for order %d: %w", orderID, pendErr)
	}
	return hold, nil
}

type TipArgs struct {
	FromUserID int64
	ToUserID   int64
	VPAmount   int64
}

// Tip прямой перевод VP между юзерами, минуя эскроу. Отправителю начисляется
// опыт по ставке чаевых.
func (w *WalletService) Tip(ctx context.Context, args TipArgs) error {
	if args.FromUserID == args.ToUserID {
		return domain.ErrSelfPurchase
	}
	if args.VPAmount <= 0 {
		return fmt.Errorf("tipping: amount %d must be positive", args.VPAmount)
	}

	txErr := withRetry(ctx, func() error {
		return w.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
			walletRepo, _, reposErr := txLedgerRepos(tx)
			if reposErr != nil {
				return reposErr
			}
			if _, err := walletRepo.Adjust(c, repoargs.BalanceAdjust{
				UserID:   args.FromUserID,
				Currency: domain.CurrencyVP,
				Delta:    -args.VPAmount,
			}); err != nil {
				return err //nolint:wrapcheck
			}
			if _, err := walletRepo.CreateIfAbsent(c, args.ToUserID); err != nil {
				return err //nolint:wrapcheck
			}
			if _, err := walletRepo.Adjust(c, repoargs.BalanceAdjust{
				UserID:   args.ToUserID,
				Currency: domain.CurrencyVP,
				Delta:    args.VPAmount,
			}); err != nil {
				return err //nolint:wrapcheck
			}
			return w.xpSvs.AwardTip(c, tx, args.FromUserID, args.VPAmount)
		})
	})
	if txErr != nil {
		return fmt.Errorf("tipping from %d to %d: %w", args.FromUserID, args.ToUserID, txErr)
	}
	return nil
}

func txLedgerRepos(tx uow.TX) (WalletRepository, HoldRepository, error) {
	walletRepo, walletErr := uow.GetAs[WalletRepository](tx, uow.RepositoryName(repoargs.WalletRepoName))
	if walletErr != nil {
		return nil, nil, walletErr //nolint:wrapcheck
	}
	holdRepo, holdErr := uow.GetAs[HoldRepository](tx, uow.RepositoryName(repoargs.HoldRepoName))
	if holdErr != nil {
		return nil, nil, holdErr //nolint:wrapcheck
	}
	return walletRepo, holdRepo, nil
}
