package pgrepo

import (
	"context"

	"github.com/savelyev-an/packmart/internal/domain"
	"github.com/savelyev-an/packmart/pkg/uow"
)

type TierRepository struct {
	conn uow.DBTX
}

func NewTierRepository(conn uow.DBTX) *TierRepository {
	return &TierRepository{conn: conn}
}

// GetAll возвращает таблицу тиров по возрастанию порядка.
func (t *TierRepository) GetAll(ctx context.Context) ([]domain.EloTier, error) {
	rows, err := t.conn.Query(ctx,
		`SELECT key, name, tier_order, xp_threshold, badge_color, description, version
		 FROM elo_tiers ORDER BY tier_order ASC`,
	)
	if err != nil {
		return nil, convertErr(err, "getting elo tiers")
	}
	defer rows.Close()

	var tiers []domain.EloTier
	for rows.Next() {
		var tier domain.EloTier
		scanErr := rows.Scan(
			&tier.Key,
			&tier.Name,
			&tier.Order,
			&tier.XPThreshold,
			&tier.BadgeColor,
			&tier.Description,
			&tier.Version,
		)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning elo tiers")
		}
		tiers = append(tiers, tier)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "scanning elo tiers")
	}
	return tiers, nil
}
