package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/savelyev-an/packmart/internal/domain"
	"github.com/savelyev-an/packmart/internal/logger"
	"github.com/savelyev-an/packmart/internal/service"
	"github.com/savelyev-an/packmart/internal/service/tokens"
	"github.com/savelyev-an/packmart/internal/transport/api/mocks"
	"github.com/savelyev-an/packmart/internal/transport/api/testutils"
)

const testUserID int64 = 1

type OrdersHandlerTestSuite struct {
	suite.Suite
	mockOrderService *mocks.MockOrderServicer
	router           *gin.Engine
	jwtSecret        []byte
	authHeader       string
}

func (s *OrdersHandlerTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())
	defer mockCtrl.Finish()

	s.mockOrderService = mocks.NewMockOrderServicer(mockCtrl)
	s.jwtSecret = []byte("super secret key")

	jwtTokenStr, jwtErr := tokens.GenerateUserJWT(testUserID, time.Hour, s.jwtSecret)
	s.Require().NoError(jwtErr)
	s.authHeader = fmt.Sprintf("Bearer %s", jwtTokenStr)

	s.router = New(RouterArgs{
		Logger:       logger.New(os.Stdout),
		OrderService: s.mockOrderService,
		JWTSecretKey: s.jwtSecret,
	})
}

func TestOrdersHandlerSuite(t *testing.T) {
	suite.Run(t, new(OrdersHandlerTestSuite))
}

func (s *OrdersHandlerTestSuite) makeRequest(method, url string, payload []byte) *http.Response {
	res, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: method,
		URL:    url,
		Body:   bytes.NewReader(payload),
	}, testutils.WithHeader("Authorization", s.authHeader))
	s.Require().NoError(err)
	return res
}

func (s *OrdersHandlerTestSuite) TestCreate() {
	argsOk := service.CreateOrderArgs{
		Kind:     domain.OrderKindPack,
		BuyerID:  testUserID,
		SellerID: 2,
		ItemID:   5,
		VPAmount: 100,
	}
	argsSelf := service.CreateOrderArgs{
		Kind:     domain.OrderKindPack,
		BuyerID:  testUserID,
		SellerID: testUserID,
		ItemID:   5,
		VPAmount: 100,
	}
	argsPoor := service.CreateOrderArgs{
		Kind:     domain.OrderKindService,
		BuyerID:  testUserID,
		SellerID: 3,
		ItemID:   5,
		VPAmount: 100500,
	}

	created := domain.Order{
		ID:       10,
		Kind:     argsOk.Kind,
		BuyerID:  argsOk.BuyerID,
		SellerID: argsOk.SellerID,
		ItemID:   argsOk.ItemID,
		VPAmount: argsOk.VPAmount,
		Status:   domain.OrderStatusPendingAcceptance,
	}

	s.mockOrderService.EXPECT().Create(gomock.Any(), argsOk).Return(&created, nil)
	s.mockOrderService.EXPECT().Create(gomock.Any(), argsSelf).Return(nil, domain.ErrSelfPurchase)
	s.mockOrderService.EXPECT().Create(gomock.Any(), argsPoor).Return(nil, domain.ErrInsufficientFunds)

	cases := []struct {
		name       string
		params     *OrderCreateParams
		wantStatus int
	}{
		{
			name: "created",
			params: &OrderCreateParams{
				Kind: argsOk.Kind, SellerID: argsOk.SellerID, ItemID: argsOk.ItemID,
				Amount: decimal.NewFromInt(argsOk.VPAmount),
			},
			wantStatus: http.StatusCreated,
		}, {
			name: "self purchase",
			params: &OrderCreateParams{
				Kind: argsSelf.Kind, SellerID: argsSelf.SellerID, ItemID: argsSelf.ItemID,
				Amount: decimal.NewFromInt(argsSelf.VPAmount),
			},
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name: "insufficient funds",
			params: &OrderCreateParams{
				Kind: argsPoor.Kind, SellerID: argsPoor.SellerID, ItemID: argsPoor.ItemID,
				Amount: decimal.NewFromInt(argsPoor.VPAmount),
			},
			wantStatus: http.StatusPaymentRequired,
		}, {
			// VP неделимы.
			name: "fractional amount",
			params: &OrderCreateParams{
				Kind: domain.OrderKindPack, SellerID: 2, ItemID: 5,
				Amount: decimal.NewFromFloat(10.5),
			},
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name: "unknown kind",
			params: &OrderCreateParams{
				Kind: "LOOTBOX", SellerID: 2, ItemID: 5,
				Amount: decimal.NewFromInt(100),
			},
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "bad request",
			params:     nil,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			var payload []byte
			if t.params != nil {
				payload, _ = json.Marshal(t.params)
			}

			res := s.makeRequest(http.MethodPost, RouteGroup+OrdersRoute, payload)
			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}

func (s *OrdersHandlerTestSuite) TestCreate_Unauthorized() {
	res, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    RouteGroup + OrdersRoute,
		Body:   bytes.NewReader(nil),
	})
	s.Require().NoError(err)
	s.Equal(http.StatusUnauthorized, res.StatusCode)
}

func (s *OrdersHandlerTestSuite) TestIndex_NoOrders() {
	s.mockOrderService.EXPECT().
		GetByParticipant(gomock.Any(), testUserID).
		Return([]domain.Order{}, nil)

	res := s.makeRequest(http.MethodGet, RouteGroup+OrdersRoute, nil)
	s.Equal(http.StatusNoContent, res.StatusCode)
}

func (s *OrdersHandlerTestSuite) TestIndex() {
	orders := []domain.Order{
		{ID: 2, Kind: domain.OrderKindService, BuyerID: testUserID, SellerID: 3, VPAmount: 200},
		{ID: 1, Kind: domain.OrderKindPack, BuyerID: 4, SellerID: testUserID, VPAmount: 100},
	}

	s.mockOrderService.EXPECT().
		GetByParticipant(gomock.Any(), testUserID).
		Return(orders, nil)

	res := s.makeRequest(http.MethodGet, RouteGroup+OrdersRoute, nil)
	s.Equal(http.StatusOK, res.StatusCode)

	var response []OrderResponse
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&response))
	s.Require().Len(response, 2)
	s.Equal(int64(2), response[0].ID)
	s.InDelta(200.0, response[0].Amount, 0.0001)
}

func (s *OrdersHandlerTestSuite) TestAccept() {
	accepted := domain.Order{
		ID:       10,
		Kind:     domain.OrderKindService,
		BuyerID:  2,
		SellerID: testUserID,
		VPAmount: 100,
		Status:   domain.OrderStatusAccepted,
	}

	s.mockOrderService.EXPECT().
		Accept(gomock.Any(), int64(10), testUserID).
		Return(&accepted, nil)
	s.mockOrderService.EXPECT().
		Accept(gomock.Any(), int64(404), testUserID).
		Return(nil, domain.ErrOrderNotFound)
	s.mockOrderService.EXPECT().
		Accept(gomock.Any(), int64(403), testUserID).
		Return(nil, domain.ErrPermissionDenied)
	s.mockOrderService.EXPECT().
		Accept(gomock.Any(), int64(409), testUserID).
		Return(nil, domain.NewStateConflictError(409, domain.OrderStatusPendingAcceptance, domain.OrderStatusCancelled))

	cases := []struct {
		name       string
		orderID    string
		wantStatus int
	}{
		{name: "accepted", orderID: "10", wantStatus: http.StatusOK},
		{name: "not found", orderID: "404", wantStatus: http.StatusNotFound},
		{name: "not a seller", orderID: "403", wantStatus: http.StatusForbidden},
		{name: "already cancelled", orderID: "409", wantStatus: http.StatusConflict},
		{name: "bad order id", orderID: "abc", wantStatus: http.StatusBadRequest},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			url := fmt.Sprintf("%s/orders/%s/accept", RouteGroup, t.orderID)
			res := s.makeRequest(http.MethodPost, url, nil)
			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}

func (s *OrdersHandlerTestSuite) TestConflictResponseCarriesActualStatus() {
	s.mockOrderService.EXPECT().
		Confirm(gomock.Any(), int64(10), testUserID, "").
		Return(nil, domain.NewStateConflictError(10, domain.OrderStatusDelivered, domain.OrderStatusDisputed))

	res := s.makeRequest(http.MethodPost, RouteGroup+"/orders/10/confirm", nil)
	s.Equal(http.StatusConflict, res.StatusCode)

	var response struct {
		Status domain.OrderStatusType `json:"status"`
	}
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&response))
	s.Equal(domain.OrderStatusDisputed, response.Status)
}

func (s *OrdersHandlerTestSuite) TestDispute() {
	disputed := domain.Order{
		ID:       10,
		Kind:     domain.OrderKindService,
		BuyerID:  testUserID,
		SellerID: 2,
		Status:   domain.OrderStatusDisputed,
	}

	s.mockOrderService.EXPECT().
		OpenDispute(gomock.Any(), int64(10), testUserID, "item never arrived").
		Return(&disputed, nil)

	payload, _ := json.Marshal(DisputeParams{Reason: "item never arrived"})
	res := s.makeRequest(http.MethodPost, RouteGroup+"/orders/10/dispute", payload)
	s.Equal(http.StatusOK, res.StatusCode)
}

// TestDispute_ReasonRequired спор без причины не открывается.
func (s *OrdersHandlerTestSuite) TestDispute_ReasonRequired() {
	payload, _ := json.Marshal(DisputeParams{})
	res := s.makeRequest(http.MethodPost, RouteGroup+"/orders/10/dispute", payload)
	s.Equal(http.StatusBadRequest, res.StatusCode)
}

func (s *OrdersHandlerTestSuite) TestResolve() {
	completed := domain.Order{
		ID:       10,
		Kind:     domain.OrderKindService,
		BuyerID:  2,
		SellerID: 3,
		Status:   domain.OrderStatusCompleted,
	}

	s.mockOrderService.EXPECT().
		ResolveDispute(gomock.Any(), int64(10), testUserID, domain.DisputeOutcomeRelease).
		Return(&completed, nil)

	payload, _ := json.Marshal(ResolveParams{Outcome: domain.DisputeOutcomeRelease})
	res := s.makeRequest(http.MethodPost, RouteGroup+"/admin/orders/10/resolve", payload)
	s.Equal(http.StatusOK, res.StatusCode)
}

func (s *OrdersHandlerTestSuite) TestResolve_UnknownOutcome() {
	payload := []byte(`{"outcome":"SPLIT"}`)
	res := s.makeRequest(http.MethodPost, RouteGroup+"/admin/orders/10/resolve", payload)
	s.Equal(http.StatusUnprocessableEntity, res.StatusCode)
}
