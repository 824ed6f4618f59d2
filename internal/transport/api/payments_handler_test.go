package api

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"

	"github.com/savelyev-an/packmart/internal/logger"
	"github.com/savelyev-an/packmart/internal/service"
	"github.com/savelyev-an/packmart/internal/transport/api/mocks"
	"github.com/savelyev-an/packmart/internal/transport/api/testutils"
)

type PaymentsHandlerTestSuite struct {
	suite.Suite
	mockPaymentService *mocks.MockPaymentServicer
	router             *gin.Engine
	webhookSecret      []byte
}

func (s *PaymentsHandlerTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())
	defer mockCtrl.Finish()

	s.mockPaymentService = mocks.NewMockPaymentServicer(mockCtrl)
	s.webhookSecret = []byte("webhook secret")

	s.router = New(RouterArgs{
		Logger:               logger.New(os.Stdout),
		PaymentService:       s.mockPaymentService,
		JWTSecretKey:         []byte("jwt secret"),
		PaymentWebhookSecret: s.webhookSecret,
	})
}

func TestPaymentsHandlerSuite(t *testing.T) {
	suite.Run(t, new(PaymentsHandlerTestSuite))
}

// sign возвращает hex-кодированную HMAC-SHA256 подпись тела.
func (s *PaymentsHandlerTestSuite) sign(body []byte) string {
	mac := hmac.New(sha256.New, s.webhookSecret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *PaymentsHandlerTestSuite) makeWebhookRequest(body []byte, signature string) *http.Response {
	res, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    RouteGroup + PaymentsWebhookR,
		Body:   bytes.NewReader(body),
	}, testutils.WithHeader(SignatureHeader, signature))
	s.Require().NoError(err)
	return res
}

func (s *PaymentsHandlerTestSuite) TestWebhook() {
	body, _ := json.Marshal(map[string]any{
		"event_id":   "evt-001",
		"user_id":    1,
		"vp_amount":  500,
		"vbp_amount": 50,
	})

	s.mockPaymentService.EXPECT().
		OnPaymentCompleted(gomock.Any(), service.PaymentCompletedArgs{
			ExternalEventID: "evt-001",
			UserID:          1,
			VPAmount:        500,
			VBPAmount:       50,
		}).
		Return(true, nil)

	res := s.makeWebhookRequest(body, s.sign(body))
	s.Equal(http.StatusOK, res.StatusCode)

	var response PaymentWebhookResponse
	raw, _ := io.ReadAll(res.Body)
	s.Require().NoError(json.Unmarshal(raw, &response))
	s.True(response.Processed)
}

// TestWebhook_Replay повторная доставка: 200, чтобы шлюз перестал ретраить.
func (s *PaymentsHandlerTestSuite) TestWebhook_Replay() {
	body, _ := json.Marshal(map[string]any{
		"event_id":  "evt-001",
		"user_id":   1,
		"vp_amount": 500,
	})

	s.mockPaymentService.EXPECT().
		OnPaymentCompleted(gomock.Any(), gomock.Any()).
		Return(false, nil)

	res := s.makeWebhookRequest(body, s.sign(body))
	s.Equal(http.StatusOK, res.StatusCode)

	var response PaymentWebhookResponse
	raw, _ := io.ReadAll(res.Body)
	s.Require().NoError(json.Unmarshal(raw, &response))
	s.False(response.Processed)
}

func (s *PaymentsHandlerTestSuite) TestWebhook_BadSignature() {
	body, _ := json.Marshal(map[string]any{
		"event_id":  "evt-001",
		"user_id":   1,
		"vp_amount": 500,
	})

	cases := []struct {
		name      string
		signature string
	}{
		{name: "missing signature", signature: ""},
		{name: "not hex", signature: "zzzz"},
		{name: "wrong key", signature: hex.EncodeToString([]byte("forged signature bytes aaaaaaaaa"))},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			// сервис не должен вызываться при невалидной подписи.
			res := s.makeWebhookRequest(body, t.signature)
			s.Equal(http.StatusUnauthorized, res.StatusCode)
		})
	}
}

func (s *PaymentsHandlerTestSuite) TestWebhook_InvalidPayload() {
	cases := []struct {
		name       string
		payload    map[string]any
		wantStatus int
	}{
		{
			name:       "empty event id",
			payload:    map[string]any{"user_id": 1, "vp_amount": 100},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "zero user id",
			payload:    map[string]any{"event_id": "evt-002", "vp_amount": 100},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			// VP неделимы.
			name:       "fractional amount",
			payload:    map[string]any{"event_id": "evt-003", "user_id": 1, "vp_amount": 10.5},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "negative amount",
			payload:    map[string]any{"event_id": "evt-004", "user_id": 1, "vp_amount": -10},
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			body, _ := json.Marshal(t.payload)
			res := s.makeWebhookRequest(body, s.sign(body))
			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}

// TestWebhook_ServiceError 5xx заставит шлюз повторить доставку.
func (s *PaymentsHandlerTestSuite) TestWebhook_ServiceError() {
	body, _ := json.Marshal(map[string]any{
		"event_id":  "evt-005",
		"user_id":   1,
		"vp_amount": 100,
	})

	s.mockPaymentService.EXPECT().
		OnPaymentCompleted(gomock.Any(), gomock.Any()).
		Return(false, errors.New("connection refused"))

	res := s.makeWebhookRequest(body, s.sign(body))
	s.Equal(http.StatusInternalServerError, res.StatusCode)
}
