package pgrepo

import (
	"context"
	"time"

	"github.com/savelyev-an/packmart/internal/domain"
	"github.com/savelyev-an/packmart/internal/repository/repoargs"
	"github.com/savelyev-an/packmart/pkg/uow"
)

const orderColumns = `id, created_at, updated_at, kind, buyer_id, seller_id, item_id,
	vp_amount, status, delivered_at, cancellation_reason, delivery_notes, buyer_feedback`

type OrderRepository struct {
	conn uow.DBTX
}

func NewOrderRepository(conn uow.DBTX) *OrderRepository {
	return &OrderRepository{conn: conn}
}

func (o *OrderRepository) Create(ctx context.Context, args repoargs.OrderCreate) (*domain.Order, error) {
	row := o.conn.QueryRow(ctx,
		`INSERT INTO orders (kind, buyer_id, seller_id, item_id, vp_amount, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+orderColumns,
		args.Kind, args.BuyerID, args.SellerID, args.ItemID, args.VPAmount,
		domain.OrderStatusPendingAcceptance,
	)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "creating order for item %d", args.ItemID)
	}
	return order, nil
}

func (o *OrderRepository) GetByID(ctx context.Context, orderID int64) (*domain.Order, error) {
	row := o.conn.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`,
		orderID,
	)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "getting order %d", orderID)
	}
	return order, nil
}

// GetByIDForUpdate читает заказ с блокировкой строки. Вызывается первым шагом
// транзакции перехода, чтобы проверки актора и статуса не гонялись
// с конкурирующими переходами.
func (o *OrderRepository) GetByIDForUpdate(ctx context.Context, orderID int64) (*domain.Order, error) {
	row := o.conn.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`,
		orderID,
	)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "locking order %d", orderID)
	}
	return order, nil
}

// Transition условный перевод статуса: обновление происходит только если
// текущий статус равен ожидаемому. Отсутствие строки в результате
// (domain.ErrRecordNotFound) означает, что заказ уже ушел из ожидаемого статуса.
func (o *OrderRepository) Transition(
	ctx context.Context,
	args repoargs.OrderTransition,
) (*domain.Order, error) {
	row := o.conn.QueryRow(ctx,
		`UPDATE orders SET
			status = $3,
			updated_at = now(),
			delivered_at = COALESCE($4, delivered_at),
			cancellation_reason = COALESCE($5, cancellation_reason),
			delivery_notes = COALESCE($6, delivery_notes),
			buyer_feedback = COALESCE($7, buyer_feedback)
		 WHERE id = $1 AND status = $2
		 RETURNING `+orderColumns,
		args.OrderID, args.Expected, args.To,
		args.DeliveredAt, args.CancellationReason, args.DeliveryNotes, args.BuyerFeedback,
	)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "transitioning order %d to %s", args.OrderID, args.To)
	}
	return order, nil
}

// GetByParticipant возвращает заказы, где юзер выступает покупателем или
// продавцом, от новых к старым.
func (o *OrderRepository) GetByParticipant(ctx context.Context, userID int64) ([]domain.Order, error) {
	rows, err := o.conn.Query(ctx,
		`SELECT `+orderColumns+` FROM orders
		 WHERE buyer_id = $1 OR seller_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, convertErr(err, "getting orders for user %d", userID)
	}
	defer rows.Close()
	return scanOrders(rows, userID)
}

// GetDeliveredBefore возвращает доставленные заказы, чей дедлайн подтверждения
// уже прошел. Кандидаты на авторелиз.
func (o *OrderRepository) GetDeliveredBefore(
	ctx context.Context,
	deliveredBefore time.Time,
	limit uint,
) ([]domain.Order, error) {
	safeLimit, limitErr := safeConvertUintToInt32(limit)
	if limitErr != nil {
		return nil, convertErr(limitErr, "converting limit to int32")
	}
	rows, err := o.conn.Query(ctx,
		`SELECT `+orderColumns+` FROM orders
		 WHERE status = $1 AND delivered_at <= $2
		 ORDER BY delivered_at ASC
		 LIMIT $3`,
		domain.OrderStatusDelivered, deliveredBefore, safeLimit,
	)
	if err != nil {
		return nil, convertErr(err, "getting delivered orders before %s", deliveredBefore)
	}
	defer rows.Close()
	return scanOrders(rows, 0)
}

// GetExpiredBefore возвращает нетерминальные заказы, созданные раньше
// абсолютного потолка. Кандидаты на TIMEOUT.
func (o *OrderRepository) GetExpiredBefore(
	ctx context.Context,
	createdBefore time.Time,
	limit uint,
) ([]domain.Order, error) {
	safeLimit, limitErr := safeConvertUintToInt32(limit)
	if limitErr != nil {
		return nil, convertErr(limitErr, "converting limit to int32")
	}
	rows, err := o.conn.Query(ctx,
		`SELECT `+orderColumns+` FROM orders
		 WHERE status NOT IN ($1, $2, $3) AND created_at <= $4
		 ORDER BY created_at ASC
		 LIMIT $5`,
		domain.OrderStatusCompleted, domain.OrderStatusCancelled, domain.OrderStatusTimeout,
		createdBefore, safeLimit,
	)
	if err != nil {
		return nil, convertErr(err, "getting expired orders before %s", createdBefore)
	}
	defer rows.Close()
	return scanOrders(rows, 0)
}

type rowsScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanOrders(rows rowsScanner, userID int64) ([]domain.Order, error) {
	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, convertErr(err, "scanning orders for user %d", userID)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, convertErr(err, "scanning orders for user %d", userID)
	}
	return orders, nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	err := row.Scan(
		&order.ID,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.Kind,
		&order.BuyerID,
		&order.SellerID,
		&order.ItemID,
		&order.VPAmount,
		&order.Status,
		&order.DeliveredAt,
		&order.CancellationReason,
		&order.DeliveryNotes,
		&order.BuyerFeedback,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}
