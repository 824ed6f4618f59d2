package pgrepo

import (
	"context"
	"fmt"

	"github.com/savelyev-an/packmart/internal/domain"
	"github.com/savelyev-an/packmart/internal/repository/repoargs"
	"github.com/savelyev-an/packmart/pkg/uow"
)

const walletColumns = "user_id, created_at, updated_at, vp, vc, vbp, vc_pending"

type WalletRepository struct {
	conn uow.DBTX
}

func NewWalletRepository(conn uow.DBTX) *WalletRepository {
	return &WalletRepository{conn: conn}
}

// CreateIfAbsent создает нулевой кошелек, если его еще нет. Идемпотентен:
// существующий кошелек возвращается без изменений.
func (w *WalletRepository) CreateIfAbsent(ctx context.Context, userID int64) (*domain.Wallet, error) {
	row := w.conn.QueryRow(ctx,
		`INSERT INTO wallets (user_id) VALUES ($1)
		 ON CONFLICT (user_id) DO NOTHING
		 RETURNING `+walletColumns,
		userID,
	)
	wallet, scanErr := scanWallet(row)
	if scanErr == nil {
		return wallet, nil
	}
	// конфликт вставки - кошелек уже существует, читаем его.
	return w.GetByUserID(ctx, userID)
}

func (w *WalletRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Wallet, error) {
	row := w.conn.QueryRow(ctx,
		`SELECT `+walletColumns+` FROM wallets WHERE user_id = $1`,
		userID,
	)
	wallet, err := scanWallet(row)
	if err != nil {
		return nil, convertErr(err, "getting wallet for user %d", userID)
	}
	return wallet, nil
}

// Adjust атомарно изменяет один из балансов кошелька. Условие в WHERE не дает
// балансу уйти в минус: если строки не вернулось, а кошелек существует,
// значит средств не хватает.
func (w *WalletRepository) Adjust(
	ctx context.Context,
	args repoargs.BalanceAdjust,
) (*domain.Wallet, error) {
	column, colErr := currencyColumn(args.Currency)
	if colErr != nil {
		return nil, convertErr(colErr, "adjusting balance for user %d", args.UserID)
	}

	query := fmt.Sprintf(
		`UPDATE wallets SET %[1]s = %[1]s + $2, updated_at = now()
		 WHERE user_id = $1 AND %[1]s + $2 >= 0
		 RETURNING `+walletColumns,
		column,
	)
	row := w.conn.QueryRow(ctx, query, args.UserID, args.Delta)
	wallet, err := scanWallet(row)
	if err == nil {
		return wallet, nil
	}

	if _, getErr := w.GetByUserID(ctx, args.UserID); getErr != nil {
		return nil, getErr
	}
	return nil, fmt.Errorf(
		"[repository/adjusting %s balance for user %d] %w",
		args.Currency, args.UserID, domain.ErrInsufficientFunds,
	)
}

// AdjustPending изменяет информационное зеркало vc_pending. Зажимается в нуле
// на случай рассинхронизации, но при корректной работе холдов минуса не бывает.
func (w *WalletRepository) AdjustPending(
	ctx context.Context,
	userID int64,
	delta int64,
) (*domain.Wallet, error) {
	row := w.conn.QueryRow(ctx,
		`UPDATE wallets
		 SET vc_pending = GREATEST(vc_pending + $2, 0), updated_at = now()
		 WHERE user_id = $1
		 RETURNING `+walletColumns,
		userID, delta,
	)
	wallet, err := scanWallet(row)
	if err != nil {
		return nil, convertErr(err, "adjusting pending for user %d", userID)
	}
	return wallet, nil
}

func currencyColumn(currency domain.CurrencyType) (string, error) {
	switch currency {
	case domain.CurrencyVP:
		return "vp", nil
	case domain.CurrencyVC:
		return "vc", nil
	case domain.CurrencyVBP:
		return "vbp", nil
	default:
		return "", fmt.Errorf("unknown currency %q", currency)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWallet(row rowScanner) (*domain.Wallet, error) {
	var wallet domain.Wallet
	err := row.Scan(
		&wallet.UserID,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
		&wallet.VP,
		&wallet.VC,
		&wallet.VBP,
		&wallet.VCPending,
	)
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}
