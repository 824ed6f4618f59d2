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
	"github.com/stretchr/testify/suite"

	"github.com/savelyev-an/packmart/internal/domain"
	"github.com/savelyev-an/packmart/internal/logger"
	"github.com/savelyev-an/packmart/internal/service"
	"github.com/savelyev-an/packmart/internal/service/tokens"
	"github.com/savelyev-an/packmart/internal/transport/api/mocks"
	"github.com/savelyev-an/packmart/internal/transport/api/testutils"
)

type ScoreHandlerTestSuite struct {
	suite.Suite
	mockXPService *mocks.MockXPServicer
	router        *gin.Engine
	authHeader    string
}

func (s *ScoreHandlerTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())
	defer mockCtrl.Finish()

	s.mockXPService = mocks.NewMockXPServicer(mockCtrl)
	jwtSecret := []byte("super secret key")

	jwtTokenStr, jwtErr := tokens.GenerateUserJWT(testUserID, time.Hour, jwtSecret)
	s.Require().NoError(jwtErr)
	s.authHeader = fmt.Sprintf("Bearer %s", jwtTokenStr)

	s.router = New(RouterArgs{
		Logger:       logger.New(os.Stdout),
		XPService:    s.mockXPService,
		JWTSecretKey: jwtSecret,
	})
}

func TestScoreHandlerSuite(t *testing.T) {
	suite.Run(t, new(ScoreHandlerTestSuite))
}

func (s *ScoreHandlerTestSuite) makeRequest(url string) *http.Response {
	res, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    url,
		Body:   bytes.NewReader(nil),
	}, testutils.WithHeader("Authorization", s.authHeader))
	s.Require().NoError(err)
	return res
}

func (s *ScoreHandlerTestSuite) TestIndex() {
	progress := 6.84
	s.mockXPService.EXPECT().
		GetScore(gomock.Any(), testUserID).
		Return(&service.ScoreView{
			XP:       15000,
			Tier:     domain.EloTier{Key: "ouro", Name: "Ouro", Order: 3, XPThreshold: 13950, BadgeColor: "#FFD700"},
			NextTier: &domain.EloTier{Key: "platina", Name: "Platina", Order: 4, XPThreshold: 29300},
			Progress: &progress,
		}, nil)

	res := s.makeRequest(RouteGroup + ScoreRoute)
	s.Equal(http.StatusOK, res.StatusCode)

	var response ScoreResponse
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&response))
	s.Equal(int64(15000), response.XP)
	s.Equal("ouro", response.Tier.Key)
	s.Require().NotNil(response.NextTier)
	s.Equal("platina", response.NextTier.Key)
	s.Require().NotNil(response.Progress)
	s.InDelta(6.84, *response.Progress, 0.001)
}

// TestIndex_MaxTier на максимальном тире next_tier и progress опускаются.
func (s *ScoreHandlerTestSuite) TestIndex_MaxTier() {
	s.mockXPService.EXPECT().
		GetScore(gomock.Any(), testUserID).
		Return(&service.ScoreView{
			XP:   100000,
			Tier: domain.EloTier{Key: "diamante", Name: "Diamante", Order: 5, XPThreshold: 48800},
		}, nil)

	res := s.makeRequest(RouteGroup + ScoreRoute)
	s.Equal(http.StatusOK, res.StatusCode)

	var response map[string]any
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&response))
	s.NotContains(response, "next_tier")
	s.NotContains(response, "progress")
}

func (s *ScoreHandlerTestSuite) TestHistory() {
	orderID := int64(10)
	now := time.Now()
	s.mockXPService.EXPECT().
		GetHistory(gomock.Any(), testUserID).
		Return([]domain.XPTransaction{
			{ID: 2, CreatedAt: now, UserID: testUserID, XPAmount: 201, SourceOrderID: &orderID, Kind: domain.XPKindPackPurchase},
			{ID: 1, CreatedAt: now.Add(-time.Hour), UserID: testUserID, XPAmount: 134, Kind: domain.XPKindTip},
		}, nil)

	res := s.makeRequest(RouteGroup + XPHistoryRoute)
	s.Equal(http.StatusOK, res.StatusCode)

	var response []XPHistoryResponseItem
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&response))
	s.Require().Len(response, 2)
	s.Equal(int64(201), response[0].XPAmount)
	s.Require().NotNil(response[0].SourceOrderID)
	s.Equal(orderID, *response[0].SourceOrderID)
	// у чаевых источника-заказа нет.
	s.Nil(response[1].SourceOrderID)
}

func (s *ScoreHandlerTestSuite) TestHistory_Empty() {
	s.mockXPService.EXPECT().
		GetHistory(gomock.Any(), testUserID).
		Return([]domain.XPTransaction{}, nil)

	res := s.makeRequest(RouteGroup + XPHistoryRoute)
	s.Equal(http.StatusNoContent, res.StatusCode)
}
