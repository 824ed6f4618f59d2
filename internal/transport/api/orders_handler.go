package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/savelyev-an/packmart/internal/domain"
	"github.com/savelyev-an/packmart/internal/service"
)

type OrdersHandler struct {
	orderSvs OrderServicer
}

func NewOrdersHandler(orderSvs OrderServicer) *OrdersHandler {
	return &OrdersHandler{
		orderSvs: orderSvs,
	}
}

type OrderResponse struct {
	ID          int64                  `json:"id"`
	Kind        domain.OrderKind       `json:"kind"`
	Status      domain.OrderStatusType `json:"status"`
	BuyerID     int64                  `json:"buyer_id"`
	SellerID    int64                  `json:"seller_id"`
	ItemID      int64                  `json:"item_id"`
	Amount      float64                `json:"amount"`
	CreatedAt   time.Time              `json:"created_at"`
	DeliveredAt *time.Time             `json:"delivered_at,omitempty"`
}

func newOrderResponse(order *domain.Order) OrderResponse {
	return OrderResponse{
		ID:          order.ID,
		Kind:        order.Kind,
		Status:      order.Status,
		BuyerID:     order.BuyerID,
		SellerID:    order.SellerID,
		ItemID:      order.ItemID,
		Amount:      decimal.NewFromInt(order.VPAmount).InexactFloat64(),
		CreatedAt:   order.CreatedAt,
		DeliveredAt: order.DeliveredAt,
	}
}

type OrderCreateParams struct {
	Kind     domain.OrderKind `binding:"required,oneof=PACK SERVICE" json:"kind"`
	SellerID int64            `binding:"required,gt=0"               json:"seller_id"`
	ItemID   int64            `binding:"required,gt=0"               json:"item_id"`
	Amount   decimal.Decimal  `binding:"required"                    json:"amount"`
}

// Create POST RouteGroup + OrdersRoute. Создает заказ и замораживает VP
// покупателя.
func (o *OrdersHandler) Create(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params OrderCreateParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		var valErrs validator.ValidationErrors
		if errors.As(bindErr, &valErrs) {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": valErrs})
			return
		}
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	if !params.Amount.IsInteger() || !params.Amount.IsPositive() {
		c.AbortWithStatus(http.StatusUnprocessableEntity)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, createErr := o.orderSvs.Create(reqCtx, service.CreateOrderArgs{
		Kind:     params.Kind,
		BuyerID:  currentUserID,
		SellerID: params.SellerID,
		ItemID:   params.ItemID,
		VPAmount: params.Amount.IntPart(),
	})
	if createErr != nil {
		switch {
		case errors.Is(createErr, domain.ErrSelfPurchase):
			_ = c.AbortWithError(http.StatusUnprocessableEntity, errors.New("buying from yourself is not allowed")).
				SetType(gin.ErrorTypePublic)
		case errors.Is(createErr, domain.ErrInsufficientFunds):
			c.AbortWithStatus(http.StatusPaymentRequired)
		default:
			_ = c.AbortWithError(http.StatusInternalServerError, createErr).
				SetType(gin.ErrorTypePrivate)
		}
		return
	}

	c.JSON(http.StatusCreated, newOrderResponse(order))
}

// Index GET RouteGroup + OrdersRoute. Заказы текущего юзера в обеих ролях.
func (o *OrdersHandler) Index(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()
	orders, err := o.orderSvs.GetByParticipant(reqCtx, currentUserID)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).
			SetType(gin.ErrorTypePrivate)
		return
	}

	if len(orders) == 0 {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}

	var response = make([]OrderResponse, len(orders))
	for i := range orders {
		response[i] = newOrderResponse(&orders[i])
	}

	c.JSON(http.StatusOK, response)
}

type orderActionFn func(ctx context.Context, orderID, actorID int64) (*domain.Order, error)

// action общий каркас перехода по заказу: парсинг :id, вызов сервиса,
// маппинг доменных ошибок на http статусы.
func (o *OrdersHandler) action(c *gin.Context, fn orderActionFn) {
	currentUserID := getUserIDFromContext(c)

	orderID, idErr := getOrderIDParam(c)
	if idErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, idErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, err := fn(reqCtx, orderID, currentUserID)
	if err != nil {
		var conflictErr *domain.StateConflictError
		switch {
		case errors.Is(err, domain.ErrOrderNotFound):
			c.AbortWithStatus(http.StatusNotFound)
		case errors.Is(err, domain.ErrPermissionDenied):
			c.AbortWithStatus(http.StatusForbidden)
		case errors.As(err, &conflictErr):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"error":  "order is not in the required status",
				"status": conflictErr.Actual,
			})
		default:
			_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		}
		return
	}

	c.JSON(http.StatusOK, newOrderResponse(order))
}

// Accept POST RouteGroup + OrderAcceptRoute.
func (o *OrdersHandler) Accept(c *gin.Context) {
	o.action(c, o.orderSvs.Accept)
}

type ReasonParams struct {
	Reason string `binding:"max=500" json:"reason"`
}

// Decline POST RouteGroup + OrderDeclineR.
func (o *OrdersHandler) Decline(c *gin.Context) {
	var params ReasonParams
	if c.Request.ContentLength > 0 {
		if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
			_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
			return
		}
	}
	o.action(c, func(ctx context.Context, orderID, actorID int64) (*domain.Order, error) {
		return o.orderSvs.Decline(ctx, orderID, actorID, params.Reason)
	})
}

type DeliverParams struct {
	Notes string `binding:"max=1000" json:"notes"`
}

// Deliver POST RouteGroup + OrderDeliverR.
func (o *OrdersHandler) Deliver(c *gin.Context) {
	var params DeliverParams
	if c.Request.ContentLength > 0 {
		if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
			_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
			return
		}
	}
	o.action(c, func(ctx context.Context, orderID, actorID int64) (*domain.Order, error) {
		return o.orderSvs.MarkDelivered(ctx, orderID, actorID, params.Notes)
	})
}

type ConfirmParams struct {
	Feedback string `binding:"max=1000" json:"feedback"`
}

// Confirm POST RouteGroup + OrderConfirmR.
func (o *OrdersHandler) Confirm(c *gin.Context) {
	var params ConfirmParams
	if c.Request.ContentLength > 0 {
		if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
			_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
			return
		}
	}
	o.action(c, func(ctx context.Context, orderID, actorID int64) (*domain.Order, error) {
		return o.orderSvs.Confirm(ctx, orderID, actorID, params.Feedback)
	})
}

type DisputeParams struct {
	Reason string `binding:"required,max=500" json:"reason"`
}

// Dispute POST RouteGroup + OrderDisputeR.
func (o *OrdersHandler) Dispute(c *gin.Context) {
	var params DisputeParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}
	o.action(c, func(ctx context.Context, orderID, actorID int64) (*domain.Order, error) {
		return o.orderSvs.OpenDispute(ctx, orderID, actorID, params.Reason)
	})
}

type ResolveParams struct {
	Outcome domain.DisputeOutcome `binding:"required,oneof=RELEASE REFUND" json:"outcome"`
}

// Resolve POST RouteGroup + OrderResolveR. Только для админов, право
// проверяется сервисным слоем по роли юзера.
func (o *OrdersHandler) Resolve(c *gin.Context) {
	var params ResolveParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		var valErrs validator.ValidationErrors
		if errors.As(bindErr, &valErrs) {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": valErrs})
			return
		}
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}
	o.action(c, func(ctx context.Context, orderID, actorID int64) (*domain.Order, error) {
		return o.orderSvs.ResolveDispute(ctx, orderID, actorID, params.Outcome)
	})
}
