package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/savelyev-an/packmart/internal/domain"
	"github.com/savelyev-an/packmart/internal/service"
)

type WalletHandler struct {
	svs WalletServicer
}

func NewWalletHandler(svs WalletServicer) *WalletHandler {
	return &WalletHandler{
		svs: svs,
	}
}

type WalletResponse struct {
	VP        float64 `json:"vp"`
	VC        float64 `json:"vc"`
	VBP       float64 `json:"vbp"`
	VCPending float64 `json:"vc_pending"`
}

// Index GET RouteGroup + WalletRoute. Балансы текущего юзера.
func (w *WalletHandler) Index(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	wallet, err := w.svs.GetBalance(reqCtx, currentUserID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, &WalletResponse{
		VP:        decimal.NewFromInt(wallet.VP).InexactFloat64(),
		VC:        decimal.NewFromInt(wallet.VC).InexactFloat64(),
		VBP:       decimal.NewFromInt(wallet.VBP).InexactFloat64(),
		VCPending: decimal.NewFromInt(wallet.VCPending).InexactFloat64(),
	})
}

type TipParams struct {
	ToUserID int64           `binding:"required,gt=0" json:"to_user_id"`
	Amount   decimal.Decimal `binding:"required"      json:"amount"`
}

// Tip POST RouteGroup + TipRoute. Прямой перевод VP другому юзеру.
func (w *WalletHandler) Tip(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params TipParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	// VP неделимы: дробные суммы отклоняются, а не округляются.
	if !params.Amount.IsInteger() || !params.Amount.IsPositive() {
		c.AbortWithStatus(http.StatusUnprocessableEntity)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	err := w.svs.Tip(reqCtx, service.TipArgs{
		FromUserID: currentUserID,
		ToUserID:   params.ToUserID,
		VPAmount:   params.Amount.IntPart(),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientFunds):
			c.AbortWithStatus(http.StatusPaymentRequired)
		case errors.Is(err, domain.ErrSelfPurchase):
			_ = c.AbortWithError(http.StatusUnprocessableEntity, errors.New("tipping yourself is not allowed")).
				SetType(gin.ErrorTypePublic)
		case errors.Is(err, domain.ErrRecordNotFound):
			c.AbortWithStatus(http.StatusNotFound)
		default:
			_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		}
		return
	}

	c.AbortWithStatus(http.StatusOK)
}
