package pgrepo

import (
	"context"

	"github.com/savelyev-an/packmart/internal/domain"
	"github.com/savelyev-an/packmart/internal/repository/repoargs"
	"github.com/savelyev-an/packmart/pkg/uow"
)

const holdColumns = "order_id, created_at, buyer_id, seller_id, vp_amount, vc_pending"

type HoldRepository struct {
	conn uow.DBTX
}

func NewHoldRepository(conn uow.DBTX) *HoldRepository {
	return &HoldRepository{conn: conn}
}

// Create вставляет холд. order_id - первичный ключ, поэтому повторная вставка
// по тому же заказу вернет domain.ErrDuplicateKey.
func (h *HoldRepository) Create(
	ctx context.Context,
	args repoargs.HoldCreate,
) (*domain.EscrowHold, error) {
	row := h.conn.QueryRow(ctx,
		`INSERT INTO escrow_holds (order_id, buyer_id, seller_id, vp_amount, vc_pending)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+holdColumns,
		args.OrderID, args.BuyerID, args.SellerID, args.VPAmount, args.VCPending,
	)
	hold, err := scanHold(row)
	if err != nil {
		return nil, convertErr(err, "creating hold for order %d", args.OrderID)
	}
	return hold, nil
}

// Delete удаляет холд и возвращает удаленную запись. Отсутствие строки
// (domain.ErrRecordNotFound) означает, что релиз уже состоялся - это и есть
// гарантия не-более-одного релиза на заказ.
func (h *HoldRepository) Delete(ctx context.Context, orderID int64) (*domain.EscrowHold, error) {
	row := h.conn.QueryRow(ctx,
		`DELETE FROM escrow_holds WHERE order_id = $1 RETURNING `+holdColumns,
		orderID,
	)
	hold, err := scanHold(row)
	if err != nil {
		return nil, convertErr(err, "deleting hold for order %d", orderID)
	}
	return hold, nil
}

func (h *HoldRepository) GetByOrderID(ctx context.Context, orderID int64) (*domain.EscrowHold, error) {
	row := h.conn.QueryRow(ctx,
		`SELECT `+holdColumns+` FROM escrow_holds WHERE order_id = $1`,
		orderID,
	)
	hold, err := scanHold(row)
	if err != nil {
		return nil, convertErr(err, "getting hold for order %d", orderID)
	}
	return hold, nil
}

func scanHold(row rowScanner) (*domain.EscrowHold, error) {
	var hold domain.EscrowHold
	err := row.Scan(
		&hold.OrderID,
		&hold.CreatedAt,
		&hold.BuyerID,
		&hold.SellerID,
		&hold.VPAmount,
		&hold.VCPending,
	)
	if err != nil {
		return nil, err
	}
	return &hold, nil
}
