package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/savelyev-an/packmart/internal/transport/api/middlewares"
)

const (
	DefaultServiceTimeout = 3 * time.Second
)

const (
	RouteGroup       = "/api"
	RegisterRoute    = "/user/register"
	LoginRoute       = "/user/login"
	WalletRoute      = "/user/wallet"
	TipRoute         = "/user/tip"
	ScoreRoute       = "/user/score"
	XPHistoryRoute   = "/user/score/history"
	OrdersRoute      = "/orders"
	OrderAcceptRoute = "/orders/:id/accept"
	OrderDeclineR    = "/orders/:id/decline"
	OrderDeliverR    = "/orders/:id/deliver"
	OrderConfirmR    = "/orders/:id/confirm"
	OrderDisputeR    = "/orders/:id/dispute"
	OrderResolveR    = "/admin/orders/:id/resolve"
	PaymentsWebhookR = "/payments/webhook"
)

type RouterArgs struct {
	Logger               *logrus.Logger
	UserService          UserServicer
	WalletService        WalletServicer
	OrderService         OrderServicer
	XPService            XPServicer
	PaymentService       PaymentServicer
	JWTSecretKey         []byte
	PaymentWebhookSecret []byte
}

func New(args RouterArgs) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())

	authHandler := NewAuthHandler(args.UserService)
	walletHandler := NewWalletHandler(args.WalletService)
	ordersHandler := NewOrdersHandler(args.OrderService)
	scoreHandler := NewScoreHandler(args.XPService)
	paymentsHandler := NewPaymentsHandler(args.PaymentService, args.PaymentWebhookSecret)

	api := r.Group(RouteGroup)

	api.POST(RegisterRoute, middlewares.NonAuthRequired(args.JWTSecretKey), authHandler.Register)
	api.POST(LoginRoute, middlewares.NonAuthRequired(args.JWTSecretKey), authHandler.Login)

	// вебхук платежного шлюза аутентифицируется подписью, а не jwt.
	api.POST(PaymentsWebhookR, paymentsHandler.Webhook)

	api.Use(middlewares.AuthRequired(args.JWTSecretKey))
	// ниже все роуты группы требуют авторизованного пользователя.
	api.GET(WalletRoute, walletHandler.Index)
	api.POST(TipRoute, walletHandler.Tip)

	api.POST(OrdersRoute, ordersHandler.Create)
	api.GET(OrdersRoute, ordersHandler.Index)
	api.POST(OrderAcceptRoute, ordersHandler.Accept)
	api.POST(OrderDeclineR, ordersHandler.Decline)
	api.POST(OrderDeliverR, ordersHandler.Deliver)
	api.POST(OrderConfirmR, ordersHandler.Confirm)
	api.POST(OrderDisputeR, ordersHandler.Dispute)
	api.POST(OrderResolveR, ordersHandler.Resolve)

	api.GET(ScoreRoute, scoreHandler.Index)
	api.GET(XPHistoryRoute, scoreHandler.History)
	return r
}
