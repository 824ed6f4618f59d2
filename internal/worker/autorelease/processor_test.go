package autorelease

import (
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/savelyev-an/packmart/internal/domain"
	"github.com/savelyev-an/packmart/internal/worker/autorelease/mocks"
)

type ProcessorTestSuite struct {
	suite.Suite
	processor   *Processor
	mockService *mocks.MockServicer
	ctrl        *gomock.Controller
}

func (s *ProcessorTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockService = mocks.NewMockServicer(s.ctrl)

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	s.processor = New(s.mockService, logger)
}

func (s *ProcessorTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestProcessorSuite(t *testing.T) {
	suite.Run(t, new(ProcessorTestSuite))
}

// TestSweep_NoOrders Тест на случай, когда нет заказов для обработки.
func (s *ProcessorTestSuite) TestSweep_NoOrders() {
	s.mockService.EXPECT().
		DueForAutoRelease(gomock.Any(), s.processor.limitPerSweep).
		Return([]domain.Order{}, nil)
	s.mockService.EXPECT().
		ExpiredOrders(gomock.Any(), s.processor.limitPerSweep).
		Return([]domain.Order{}, nil)

	// ни AutoRelease, ни Timeout вызываться не должны.
	s.processor.sweep(s.T().Context())
}

// TestSweep_Success Тест на успешную обработку обоих проходов.
func (s *ProcessorTestSuite) TestSweep_Success() {
	dueOrders := []domain.Order{
		{ID: 1, Status: domain.OrderStatusDelivered},
		{ID: 2, Status: domain.OrderStatusDelivered},
	}
	expiredOrders := []domain.Order{
		{ID: 3, Status: domain.OrderStatusPendingAcceptance},
	}

	s.mockService.EXPECT().
		DueForAutoRelease(gomock.Any(), s.processor.limitPerSweep).
		Return(dueOrders, nil)
	s.mockService.EXPECT().
		ExpiredOrders(gomock.Any(), s.processor.limitPerSweep).
		Return(expiredOrders, nil)

	s.mockService.EXPECT().AutoRelease(gomock.Any(), int64(1)).Return(nil)
	s.mockService.EXPECT().AutoRelease(gomock.Any(), int64(2)).Return(nil)
	s.mockService.EXPECT().Timeout(gomock.Any(), int64(3)).Return(nil)

	s.processor.sweep(s.T().Context())
}

// TestSweep_FailureIsolation Ошибка одного заказа не останавливает проход.
func (s *ProcessorTestSuite) TestSweep_FailureIsolation() {
	dueOrders := []domain.Order{
		{ID: 1, Status: domain.OrderStatusDelivered},
		{ID: 2, Status: domain.OrderStatusDelivered},
	}

	s.mockService.EXPECT().
		DueForAutoRelease(gomock.Any(), s.processor.limitPerSweep).
		Return(dueOrders, nil)
	s.mockService.EXPECT().
		ExpiredOrders(gomock.Any(), s.processor.limitPerSweep).
		Return([]domain.Order{}, nil)

	s.mockService.EXPECT().
		AutoRelease(gomock.Any(), int64(1)).
		Return(errors.New("deadlock detected"))
	// второй заказ обрабатывается несмотря на ошибку первого.
	s.mockService.EXPECT().AutoRelease(gomock.Any(), int64(2)).Return(nil)

	s.processor.sweep(s.T().Context())
}

// TestSweep_ProduceError Ошибка выборки авторелиза не блокирует проход таймаутов.
func (s *ProcessorTestSuite) TestSweep_ProduceError() {
	expiredOrders := []domain.Order{
		{ID: 5, Status: domain.OrderStatusAccepted},
	}

	s.mockService.EXPECT().
		DueForAutoRelease(gomock.Any(), s.processor.limitPerSweep).
		Return(nil, errors.New("connection refused"))
	s.mockService.EXPECT().
		ExpiredOrders(gomock.Any(), s.processor.limitPerSweep).
		Return(expiredOrders, nil)

	s.mockService.EXPECT().Timeout(gomock.Any(), int64(5)).Return(nil)

	s.processor.sweep(s.T().Context())
}

func (s *ProcessorTestSuite) TestSetters() {
	p := s.processor.SetLimitPerSweep(10)
	s.Same(s.processor, p)
	s.Equal(uint(10), s.processor.limitPerSweep)
}
