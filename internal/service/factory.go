package service

import (
	"fmt"
	"time"

	"github.com/savelyev-an/packmart/internal/service/psswd"
	"github.com/savelyev-an/packmart/pkg/uow"
)

type AppServices struct {
	UserService    *UserService
	WalletService  *WalletService
	OrderService   *OrderService
	XPService      *XPService
	PaymentService *PaymentService
}

type FactoryArgs struct {
	UOW               uow.UOW
	JWTSecret         []byte
	AutoReleaseWindow time.Duration
	TimeoutCeiling    time.Duration
}

func Factory(args FactoryArgs) (*AppServices, error) {
	userService, userErr := NewUserService(args.UOW, psswd.PasswordHash(""), args.JWTSecret)
	if userErr != nil {
		return nil, fmt.Errorf("service factory: %s", userErr.Error())
	}

	xpService, xpErr := NewXPService(args.UOW)
	if xpErr != nil {
		return nil, fmt.Errorf("service factory: %s", xpErr.Error())
	}

	walletService, walletErr := NewWalletService(args.UOW, xpService)
	if walletErr != nil {
		return nil, fmt.Errorf("service factory: %s", walletErr.Error())
	}

	orderService, orderErr := NewOrderService(OrderServiceArgs{
		UOW:               args.UOW,
		WalletService:     walletService,
		XPService:         xpService,
		AutoReleaseWindow: args.AutoReleaseWindow,
		TimeoutCeiling:    args.TimeoutCeiling,
	})
	if orderErr != nil {
		return nil, fmt.Errorf("service factory: %s", orderErr.Error())
	}

	return &AppServices{
		UserService:    userService,
		WalletService:  walletService,
		OrderService:   orderService,
		XPService:      xpService,
		PaymentService: NewPaymentService(args.UOW),
	}, nil
}
