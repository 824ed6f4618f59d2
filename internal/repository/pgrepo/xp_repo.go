package pgrepo

import (
	"context"

	"github.com/savelyev-an/packmart/internal/domain"
	"github.com/savelyev-an/packmart/internal/repository/repoargs"
	"github.com/savelyev-an/packmart/pkg/uow"
)

const xpColumns = "id, created_at, user_id, xp_amount, source_order_id, kind"

type XPTransactionRepository struct {
	conn uow.DBTX
}

func NewXPTransactionRepository(conn uow.DBTX) *XPTransactionRepository {
	return &XPTransactionRepository{conn: conn}
}

// Create добавляет запись в append-only журнал опыта. Уникальный индекс
// (source_order_id, user_id) не дает начислить опыт за один заказ дважды.
func (x *XPTransactionRepository) Create(
	ctx context.Context,
	args repoargs.XPTransactionCreate,
) (*domain.XPTransaction, error) {
	row := x.conn.QueryRow(ctx,
		`INSERT INTO xp_transactions (user_id, xp_amount, source_order_id, kind)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+xpColumns,
		args.UserID, args.XPAmount, args.SourceOrderID, args.Kind,
	)
	trans, err := scanXPTransaction(row)
	if err != nil {
		return nil, convertErr(err, "creating xp transaction for user %d", args.UserID)
	}
	return trans, nil
}

func (x *XPTransactionRepository) SumByUserID(ctx context.Context, userID int64) (int64, error) {
	row := x.conn.QueryRow(ctx,
		`SELECT COALESCE(SUM(xp_amount), 0) FROM xp_transactions WHERE user_id = $1`,
		userID,
	)
	var sum int64
	if err := row.Scan(&sum); err != nil {
		return 0, convertErr(err, "summing xp for user %d", userID)
	}
	return sum, nil
}

func (x *XPTransactionRepository) GetByUserID(
	ctx context.Context,
	userID int64,
) ([]domain.XPTransaction, error) {
	rows, err := x.conn.Query(ctx,
		`SELECT `+xpColumns+` FROM xp_transactions
		 WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, convertErr(err, "getting xp transactions for user %d", userID)
	}
	defer rows.Close()

	var transactions []domain.XPTransaction
	for rows.Next() {
		trans, scanErr := scanXPTransaction(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning xp transactions for user %d", userID)
		}
		transactions = append(transactions, *trans)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "scanning xp transactions for user %d", userID)
	}
	return transactions, nil
}

func scanXPTransaction(row rowScanner) (*domain.XPTransaction, error) {
	var trans domain.XPTransaction
	err := row.Scan(
		&trans.ID,
		&trans.CreatedAt,
		&trans.UserID,
		&trans.XPAmount,
		&trans.SourceOrderID,
		&trans.Kind,
	)
	if err != nil {
		return nil, err
	}
	return &trans, nil
}
