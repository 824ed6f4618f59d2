package service

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"

	"github.com/savelyev-an/packmart/internal/domain"
	"github.com/savelyev-an/packmart/internal/repository/repoargs"
	"github.com/savelyev-an/packmart/internal/service/mocks"
	"github.com/savelyev-an/packmart/pkg/uow"
	uowmocks "github.com/savelyev-an/packmart/pkg/uow/mocks"
)

type WalletServiceTestSuite struct {
	suite.Suite
	mockCtrl       *gomock.Controller
	mockUOW        *uowmocks.MockUOW
	mockTX         *uowmocks.MockTX
	mockWalletRepo *mocks.MockWalletRepository
	mockHoldRepo   *mocks.MockHoldRepository
	mockXPRepo     *mocks.MockXPTransactionRepository
	mockScoreRepo  *mocks.MockScoreRepository
	mockTierRepo   *mocks.MockTierRepository
	walletService  *WalletService
}

func TestWalletServiceSuite(t *testing.T) {
	suite.Run(t, new(WalletServiceTestSuite))
}

func (s *WalletServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockWalletRepo = mocks.NewMockWalletRepository(s.mockCtrl)
	s.mockHoldRepo = mocks.NewMockHoldRepository(s.mockCtrl)
	s.mockXPRepo = mocks.NewMockXPTransactionRepository(s.mockCtrl)
	s.mockScoreRepo = mocks.NewMockScoreRepository(s.mockCtrl)
	s.mockTierRepo = mocks.NewMockTierRepository(s.mockCtrl)

	// Мок получения репозиториев из uow. Выполняется в инициализации сервисов.
	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.WalletRepoName)).
		Return(s.mockWalletRepo, nil).AnyTimes()
	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.XPTransactionRepoName)).
		Return(s.mockXPRepo, nil).AnyTimes()
	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.ScoreRepoName)).
		Return(s.mockScoreRepo, nil).AnyTimes()
	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.TierRepoName)).
		Return(s.mockTierRepo, nil).AnyTimes()

	// Мок получения репозиториев внутри транзакции.
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.WalletRepoName)).
		Return(s.mockWalletRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.HoldRepoName)).
		Return(s.mockHoldRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.XPTransactionRepoName)).
		Return(s.mockXPRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.ScoreRepoName)).
		Return(s.mockScoreRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.TierRepoName)).
		Return(s.mockTierRepo, nil).AnyTimes()

	// Инициализация сервисов.
	xpService, xpErr := NewXPService(s.mockUOW)
	s.Require().NoError(xpErr)

	walletService, servErr := NewWalletService(s.mockUOW, xpService)
	s.Require().NoError(servErr)
	s.walletService = walletService
}

func (s *WalletServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

// expectDoPassthrough мок uow.Do - прогоняет замыкание через mockTX.
func (s *WalletServiceTestSuite) expectDoPassthrough() {
	s.mockUOW.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(ctx, s.mockTX)
		}).AnyTimes()
}

func (s *WalletServiceTestSuite) TestDebitInsufficientFunds() {
	var userID int64 = 1

	s.mockWalletRepo.EXPECT().
		Adjust(gomock.Any(), repoargs.BalanceAdjust{UserID: userID, Currency: domain.CurrencyVP, Delta: -500}).
		Return(nil, domain.ErrInsufficientFunds)

	_, err := s.walletService.Debit(s.T().Context(), userID, domain.CurrencyVP, 500)
	s.Require().ErrorIs(err, domain.ErrInsufficientFunds)
}

func (s *WalletServiceTestSuite) TestDebitRejectsNonPositiveAmount() {
	_, err := s.walletService.Debit(s.T().Context(), 1, domain.CurrencyVP, 0)
	s.Require().Error(err)

	_, negErr := s.walletService.Debit(s.T().Context(), 1, domain.CurrencyVP, -10)
	s.Require().Error(negErr)
}

func (s *WalletServiceTestSuite) TestPlaceHold() {
	args := PlaceHoldArgs{OrderID: 10, BuyerID: 1, SellerID: 2, VPAmount: 100}
	wantVCPending := int64(75) // 100 * 0.75

	hold := domain.EscrowHold{
		OrderID:   args.OrderID,
		BuyerID:   args.BuyerID,
		SellerID:  args.SellerID,
		VPAmount:  args.VPAmount,
		VCPending: wantVCPending,
	}

	// списание VP покупателя.
	s.mockWalletRepo.EXPECT().
		Adjust(gomock.Any(), repoargs.BalanceAdjust{UserID: args.BuyerID, Currency: domain.CurrencyVP, Delta: -100}).
		Return(&domain.Wallet{UserID: args.BuyerID}, nil)

	// создание холда с предрассчитанным кредитом продавца.
	s.mockHoldRepo.EXPECT().
		Create(gomock.Any(), repoargs.HoldCreate{
			OrderID:   args.OrderID,
			BuyerID:   args.BuyerID,
			SellerID:  args.SellerID,
			VPAmount:  args.VPAmount,
			VCPending: wantVCPending,
		}).
		Return(&hold, nil)

	// зеркало vc_pending продавца.
	s.mockWalletRepo.EXPECT().
		CreateIfAbsent(gomock.Any(), args.SellerID).
		Return(&domain.Wallet{UserID: args.SellerID}, nil)
	s.mockWalletRepo.EXPECT().
		AdjustPending(gomock.Any(), args.SellerID, wantVCPending).
		Return(&domain.Wallet{UserID: args.SellerID, VCPending: wantVCPending}, nil)

	created, err := s.walletService.PlaceHold(s.T().Context(), s.mockTX, args)
	s.Require().NoError(err)
	s.Equal(&hold, created)
}

func (s *WalletServiceTestSuite) TestPlaceHoldDuplicate() {
	args := PlaceHoldArgs{OrderID: 10, BuyerID: 1, SellerID: 2, VPAmount: 100}

	s.mockWalletRepo.EXPECT().
		Adjust(gomock.Any(), gomock.Any()).
		Return(&domain.Wallet{UserID: args.BuyerID}, nil)

	s.mockHoldRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrDuplicateKey)

	_, err := s.walletService.PlaceHold(s.T().Context(), s.mockTX, args)
	s.Require().ErrorIs(err, domain.ErrDuplicateHold)
}

func (s *WalletServiceTestSuite) TestPlaceHoldInsufficientFunds() {
	args := PlaceHoldArgs{OrderID: 10, BuyerID: 1, SellerID: 2, VPAmount: 100}

	s.mockWalletRepo.EXPECT().
		Adjust(gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrInsufficientFunds)

	_, err := s.walletService.PlaceHold(s.T().Context(), s.mockTX, args)
	s.Require().ErrorIs(err, domain.ErrInsufficientFunds)
}

func (s *WalletServiceTestSuite) TestReleaseHoldSellerCredit() {
	hold := domain.EscrowHold{OrderID: 10, BuyerID: 1, SellerID: 2, VPAmount: 100, VCPending: 75}

	s.mockHoldRepo.EXPECT().
		Delete(gomock.Any(), hold.OrderID).
		Return(&hold, nil)

	s.mockWalletRepo.EXPECT().
		Adjust(gomock.Any(), repoargs.BalanceAdjust{UserID: hold.SellerID, Currency: domain.CurrencyVC, Delta: 75}).
		Return(&domain.Wallet{UserID: hold.SellerID, VC: 75}, nil)

	s.mockWalletRepo.EXPECT().
		AdjustPending(gomock.Any(), hold.SellerID, int64(-75)).
		Return(&domain.Wallet{UserID: hold.SellerID}, nil)

	released, err := s.walletService.ReleaseHold(s.T().Context(), s.mockTX, hold.OrderID, domain.HoldDestinationSellerCredit)
	s.Require().NoError(err)
	s.Equal(&hold, released)
}

func (s *WalletServiceTestSuite) TestReleaseHoldBuyerRefund() {
	hold := domain.EscrowHold{OrderID: 10, BuyerID: 1, SellerID: 2, VPAmount: 100, VCPending: 75}

	s.mockHoldRepo.EXPECT().
		Delete(gomock.Any(), hold.OrderID).
		Return(&hold, nil)

	// возврат не конвертируется: покупатель получает исходные VP.
	s.mockWalletRepo.EXPECT().
		Adjust(gomock.Any(), repoargs.BalanceAdjust{UserID: hold.BuyerID, Currency: domain.CurrencyVP, Delta: 100}).
		Return(&domain.Wallet{UserID: hold.BuyerID, VP: 100}, nil)

	s.mockWalletRepo.EXPECT().
		AdjustPending(gomock.Any(), hold.SellerID, int64(-75)).
		Return(&domain.Wallet{UserID: hold.SellerID}, nil)

	_, err := s.walletService.ReleaseHold(s.T().Context(), s.mockTX, hold.OrderID, domain.HoldDestinationBuyerRefund)
	s.Require().NoError(err)
}

// TestReleaseHoldExactlyOnce повторный релиз не находит холда и не трогает
// балансы: ровно один расчет на заказ.
func (s *WalletServiceTestSuite) TestReleaseHoldExactlyOnce() {
	var orderID int64 = 10

	s.mockHoldRepo.EXPECT().
		Delete(gomock.Any(), orderID).
		Return(nil, domain.ErrRecordNotFound)

	_, err := s.walletService.ReleaseHold(s.T().Context(), s.mockTX, orderID, domain.HoldDestinationSellerCredit)
	s.Require().ErrorIs(err, domain.ErrHoldNotFound)
}

func (s *WalletServiceTestSuite) TestTipSelf() {
	err := s.walletService.Tip(s.T().Context(), TipArgs{FromUserID: 1, ToUserID: 1, VPAmount: 50})
	s.Require().ErrorIs(err, domain.ErrSelfPurchase)
}

func (s *WalletServiceTestSuite) TestTip() {
	args := TipArgs{FromUserID: 1, ToUserID: 2, VPAmount: 100}

	s.expectDoPassthrough()

	s.mockWalletRepo.EXPECT().
		Adjust(gomock.Any(), repoargs.BalanceAdjust{UserID: args.FromUserID, Currency: domain.CurrencyVP, Delta: -100}).
		Return(&domain.Wallet{UserID: args.FromUserID}, nil)
	s.mockWalletRepo.EXPECT().
		CreateIfAbsent(gomock.Any(), args.ToUserID).
		Return(&domain.Wallet{UserID: args.ToUserID}, nil)
	s.mockWalletRepo.EXPECT().
		Adjust(gomock.Any(), repoargs.BalanceAdjust{UserID: args.ToUserID, Currency: domain.CurrencyVP, Delta: 100}).
		Return(&domain.Wallet{UserID: args.ToUserID, VP: 100}, nil)

	// начисление опыта отправителю: 100 * 1.34 = 134.
	s.mockXPRepo.EXPECT().
		Create(gomock.Any(), repoargs.XPTransactionCreate{
			UserID:   args.FromUserID,
			XPAmount: 134,
			Kind:     domain.XPKindTip,
		}).
		Return(&domain.XPTransaction{ID: 1, UserID: args.FromUserID, XPAmount: 134}, nil)
	s.mockXPRepo.EXPECT().
		SumByUserID(gomock.Any(), args.FromUserID).
		Return(int64(134), nil)
	s.mockTierRepo.EXPECT().
		GetAll(gomock.Any()).
		Return([]domain.EloTier{{Key: "bronze", Order: 1, XPThreshold: 0}}, nil)
	s.mockScoreRepo.EXPECT().
		Upsert(gomock.Any(), repoargs.ScoreUpsert{UserID: args.FromUserID, XP: 134, TierKey: "bronze"}).
		Return(&domain.UserScore{UserID: args.FromUserID, XP: 134, TierKey: "bronze"}, nil)

	err := s.walletService.Tip(s.T().Context(), args)
	s.Require().NoError(err)
}
