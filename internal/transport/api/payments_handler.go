package api

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/savelyev-an/packmart/internal/domain"
	"github.com/savelyev-an/packmart/internal/service"
)

// SignatureHeader заголовок с hex-кодированной HMAC-SHA256 подписью тела
// запроса. Ключ согласован с платежным шлюзом заранее.
const SignatureHeader = "X-Payment-Signature"

type PaymentsHandler struct {
	svs    PaymentServicer
	secret []byte
}

func NewPaymentsHandler(svs PaymentServicer, secret []byte) *PaymentsHandler {
	return &PaymentsHandler{
		svs:    svs,
		secret: secret,
	}
}

type PaymentWebhookParams struct {
	EventID   string          `json:"event_id"`
	UserID    int64           `json:"user_id"`
	VPAmount  decimal.Decimal `json:"vp_amount"`
	VBPAmount decimal.Decimal `json:"vbp_amount"`
}

type PaymentWebhookResponse struct {
	Processed bool `json:"processed"`
}

// Webhook POST RouteGroup + PaymentsWebhookR. Прием события "платеж завершен"
// от платежного шлюза. Подпись проверяется по сырому телу до любого парсинга;
// повторная доставка события отвечает 200 с processed=false, чтобы шлюз
// перестал ретраить.
func (p *PaymentsHandler) Webhook(c *gin.Context) {
	body, bodyErr := c.GetRawData()
	if bodyErr != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, bodyErr).SetType(gin.ErrorTypePrivate)
		return
	}

	if !p.verifySignature(body, c.GetHeader(SignatureHeader)) {
		_ = c.Error(domain.ErrPaymentVerificationFailed).SetType(gin.ErrorTypePrivate)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var params PaymentWebhookParams
	if jsonErr := json.Unmarshal(body, &params); jsonErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, jsonErr).SetType(gin.ErrorTypeBind)
		return
	}
	if params.EventID == "" || params.UserID <= 0 {
		c.AbortWithStatus(http.StatusUnprocessableEntity)
		return
	}
	if !params.VPAmount.IsInteger() || !params.VBPAmount.IsInteger() ||
		params.VPAmount.IsNegative() || params.VBPAmount.IsNegative() {
		c.AbortWithStatus(http.StatusUnprocessableEntity)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	processed, err := p.svs.OnPaymentCompleted(reqCtx, service.PaymentCompletedArgs{
		ExternalEventID: params.EventID,
		UserID:          params.UserID,
		VPAmount:        params.VPAmount.IntPart(),
		VBPAmount:       params.VBPAmount.IntPart(),
	})
	if err != nil {
		// 5xx заставит шлюз повторить доставку, дедупликация это переживет.
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, PaymentWebhookResponse{Processed: processed})
}

func (p *PaymentsHandler) verifySignature(body []byte, signatureHex string) bool {
	if signatureHex == "" {
		return false
	}
	signature, decodeErr := hex.DecodeString(signatureHex)
	if decodeErr != nil {
		return false
	}

	mac := hmac.New(sha256.New, p.secret)
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), signature)
}
