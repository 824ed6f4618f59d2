package pgrepo

import (
	"context"

	"github.com/savelyev-an/packmart/internal/domain"
	"github.com/savelyev-an/packmart/internal/repository/repoargs"
	"github.com/savelyev-an/packmart/pkg/uow"
)

type ScoreRepository struct {
	conn uow.DBTX
}

func NewScoreRepository(conn uow.DBTX) *ScoreRepository {
	return &ScoreRepository{conn: conn}
}

// Upsert обновляет кешированную проекцию {xp, tier} юзера.
func (s *ScoreRepository) Upsert(
	ctx context.Context,
	args repoargs.ScoreUpsert,
) (*domain.UserScore, error) {
	row := s.conn.QueryRow(ctx,
		`INSERT INTO user_scores (user_id, xp, tier_key)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE
		 SET xp = EXCLUDED.xp, tier_key = EXCLUDED.tier_key, updated_at = now()
		 RETURNING user_id, updated_at, xp, tier_key`,
		args.UserID, args.XP, args.TierKey,
	)
	var score domain.UserScore
	if err := row.Scan(&score.UserID, &score.UpdatedAt, &score.XP, &score.TierKey); err != nil {
		return nil, convertErr(err, "upserting score for user %d", args.UserID)
	}
	return &score, nil
}

func (s *ScoreRepository) GetByUserID(ctx context.Context, userID int64) (*domain.UserScore, error) {
	row := s.conn.QueryRow(ctx,
		`SELECT user_id, updated_at, xp, tier_key FROM user_scores WHERE user_id = $1`,
		userID,
	)
	var score domain.UserScore
	if err := row.Scan(&score.UserID, &score.UpdatedAt, &score.XP, &score.TierKey); err != nil {
		return nil, convertErr(err, "getting score for user %d", userID)
	}
	return &score, nil
}
