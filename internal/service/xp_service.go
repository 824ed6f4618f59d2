package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/savelyev-an/packmart/internal/domain"
	"github.com/savelyev-an/packmart/internal/repository/repoargs"
	"github.com/savelyev-an/packmart/pkg/uow"
)

// XPService владеет журналом опыта и кешированной проекцией {xp, tier}.
// Сами формулы (domain.ComputeXP и компания) чистые и живут в domain.
type XPService struct {
	uow       uow.UOW
	xpRepo    XPTransactionRepository
	scoreRepo ScoreRepository
	tierRepo  TierRepository
}

func NewXPService(u uow.UOW) (*XPService, error) {
	xpRepo, xpErr := uow.GetRepositoryAs[XPTransactionRepository](u, uow.RepositoryName(repoargs.XPTransactionRepoName))
	if xpErr != nil {
		return nil, xpErr
	}
	scoreRepo, scoreErr := uow.GetRepositoryAs[ScoreRepository](u, uow.RepositoryName(repoargs.ScoreRepoName))
	if scoreErr != nil {
		return nil, scoreErr
	}
	tierRepo, tierErr := uow.GetRepositoryAs[TierRepository](u, uow.RepositoryName(repoargs.TierRepoName))
	if tierErr != nil {
		return nil, tierErr
	}
	return &XPService{
		uow:       u,
		xpRepo:    xpRepo,
		scoreRepo: scoreRepo,
		tierRepo:  tierRepo,
	}, nil
}

// AwardSettlement начисляет опыт обеим сторонам рассчитанного заказа внутри
// транзакции расчета: покупателю от суммы VP, продавцу от полученного VC.
// Повторное начисление по тому же заказу блокируется уникальным индексом
// журнала и превращается в no-op.
func (x *XPService) AwardSettlement(ctx context.Context, tx uow.TX, order *domain.Order) error {
	kind := domain.XPKindPackPurchase
	if order.Kind.RequiresDelivery() {
		kind = domain.XPKindServicePurchase
	}

	orderID := order.ID
	awards := []repoargs.XPTransactionCreate{
		{
			UserID:        order.BuyerID,
			XPAmount:      domain.ComputeXP(kind, order.VPAmount, nil),
			SourceOrderID: &orderID,
			Kind:          kind,
		},
		{
			UserID:        order.SellerID,
			XPAmount:      domain.ComputeXP(kind, domain.SellerCreditVC(order.VPAmount), nil),
			SourceOrderID: &orderID,
			Kind:          kind,
		},
	}

	for _, award := range awards {
		if err := x.award(ctx, tx, award); err != nil {
			return fmt.Errorf("awarding settlement xp for order %d: %w", order.ID, err)
		}
	}
	return nil
}

// AwardTip начисляет отправителю чаевых опыт по ставке TIP.
func (x *XPService) AwardTip(ctx context.Context, tx uow.TX, userID int64, vpAmount int64) error {
	err := x.award(ctx, tx, repoargs.XPTransactionCreate{
		UserID:   userID,
		XPAmount: domain.ComputeXP(domain.XPKindTip, vpAmount, nil),
		Kind:     domain.XPKindTip,
	})
	if err != nil {
		return fmt.Errorf("awarding tip xp for user %d: %w", userID, err)
	}
	return nil
}

// award пишет запись журнала и пересчитывает кешированную проекцию юзера.
func (x *XPService) award(ctx context.Context, tx uow.TX, args repoargs.XPTransactionCreate) error {
	xpRepo, xpErr := uow.GetAs[XPTransactionRepository](tx, uow.RepositoryName(repoargs.XPTransactionRepoName))
	if xpErr != nil {
		return xpErr //nolint:wrapcheck
	}
	scoreRepo, scoreErr := uow.GetAs[ScoreRepository](tx, uow.RepositoryName(repoargs.ScoreRepoName))
	if scoreErr != nil {
		return scoreErr //nolint:wrapcheck
	}
	tierRepo, tierErr := uow.GetAs[TierRepository](tx, uow.RepositoryName(repoargs.TierRepoName))
	if tierErr != nil {
		return tierErr //nolint:wrapcheck
	}

	if _, createErr := xpRepo.Create(ctx, args); createErr != nil {
		// дубликат по (заказ, юзер) - опыт уже начислен, выходим молча.
		if errors.Is(createErr, domain.ErrDuplicateKey) {
			return nil
		}
		return createErr //nolint:wrapcheck
	}

	sum, sumErr := xpRepo.SumByUserID(ctx, args.UserID)
	if sumErr != nil {
		return sumErr //nolint:wrapcheck
	}
	tiers, tiersErr := tierRepo.GetAll(ctx)
	if tiersErr != nil {
		return tiersErr //nolint:wrapcheck
	}
	tier := domain.ResolveTier(sum, tiers)
	if tier == nil {
		return fmt.Errorf("empty elo tier table")
	}

	_, upsertErr := scoreRepo.Upsert(ctx, repoargs.ScoreUpsert{
		UserID:  args.UserID,
		XP:      sum,
		TierKey: tier.Key,
	})
	return upsertErr //nolint:wrapcheck
}

// ScoreView агрегированное представление счета юзера для выдачи наружу.
type ScoreView struct {
	XP       int64
	Tier     domain.EloTier
	NextTier *domain.EloTier
	// Progress процент до следующего тира, nil на максимальном тире.
	Progress *float64
}

// GetScore возвращает кешированный счет юзера вместе с разрешенным тиром
// и прогрессом до следующего. Юзер без начислений получает нулевой счет
// на младшем тире.
func (x *XPService) GetScore(ctx context.Context, userID int64) (*ScoreView, error) {
	var xp int64
	score, scoreErr := x.scoreRepo.GetByUserID(ctx, userID)
	if scoreErr != nil {
		if !errors.Is(scoreErr, domain.ErrRecordNotFound) {
			return nil, scoreErr //nolint:wrapcheck
		}
	} else {
		xp = score.XP
	}

	tiers, tiersErr := x.tierRepo.GetAll(ctx)
	if tiersErr != nil {
		return nil, tiersErr //nolint:wrapcheck
	}
	tier := domain.ResolveTier(xp, tiers)
	if tier == nil {
		return nil, fmt.Errorf("empty elo tier table")
	}
	next := domain.NextTier(tier, tiers)

	return &ScoreView{
		XP:       xp,
		Tier:     *tier,
		NextTier: next,
		Progress: domain.ComputeProgress(xp, tier, next),
	}, nil
}

// GetHistory возвращает журнал начислений опыта от новых к старым.
func (x *XPService) GetHistory(ctx context.Context, userID int64) ([]domain.XPTransaction, error) {
	transactions, err := x.xpRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return transactions, nil
}
