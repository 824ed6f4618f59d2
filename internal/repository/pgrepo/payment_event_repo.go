package pgrepo

import (
	"context"

	"github.com/savelyev-an/packmart/internal/repository/repoargs"
	"github.com/savelyev-an/packmart/pkg/uow"
)

type PaymentEventRepository struct {
	conn uow.DBTX
}

func NewPaymentEventRepository(conn uow.DBTX) *PaymentEventRepository {
	return &PaymentEventRepository{conn: conn}
}

// CreateIfAbsent помечает внешнее событие обработанным. Возвращает false,
// если событие уже было обработано - доставка вебхука at-least-once,
// повтор должен стать no-op'ом.
func (p *PaymentEventRepository) CreateIfAbsent(
	ctx context.Context,
	args repoargs.PaymentEventCreate,
) (bool, error) {
	tag, err := p.conn.Exec(ctx,
		`INSERT INTO payment_events (external_event_id, user_id, vp_amount, vbp_amount)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (external_event_id) DO NOTHING`,
		args.ExternalEventID, args.UserID, args.VPAmount, args.VBPAmount,
	)
	if err != nil {
		return false, convertErr(err, "recording payment event %s", args.ExternalEventID)
	}
	return tag.RowsAffected() > 0, nil
}
