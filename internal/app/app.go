package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/savelyev-an/packmart/internal/config"
	"github.com/savelyev-an/packmart/internal/repository/pgrepo"
	"github.com/savelyev-an/packmart/internal/repository/repoargs"
	"github.com/savelyev-an/packmart/internal/service"
	"github.com/savelyev-an/packmart/internal/transport/api"
	"github.com/savelyev-an/packmart/internal/worker/autorelease"
	"github.com/savelyev-an/packmart/pkg/uow"

	// driver for migration applying postgres.
	_ "github.com/golang-migrate/migrate/v4/database/postgres" //nolint:revive
	// driver to get migrations from files (*.sql in our case).
	_ "github.com/golang-migrate/migrate/v4/source/file" //nolint:revive
)

type App struct {
	Config *config.Config
	Logger *logrus.Logger
}

func New(conf *config.Config, l *logrus.Logger) *App {
	return &App{
		Config: conf,
		Logger: l,
	}
}

func (a *App) Run() error {
	notifyCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.Infof("Starting app on %s", a.Config.RunAddress)
	conn, connErr := pgrepo.Connect(notifyCtx, a.Config.MigrationsDir, a.Config.DatabaseDSN, a.Logger)
	if connErr != nil {
		return fmt.Errorf("app run: %s", connErr.Error())
	}
	defer conn.Close()

	unitOfWork, uowErr := initUOW(conn)
	if uowErr != nil {
		return fmt.Errorf("app run: %s", uowErr.Error())
	}

	services, sErr := service.Factory(service.FactoryArgs{
		UOW:               unitOfWork,
		JWTSecret:         []byte(a.Config.JWTUserSecret),
		AutoReleaseWindow: a.Config.AutoReleaseWindow,
		TimeoutCeiling:    a.Config.TimeoutCeiling,
	})
	if sErr != nil {
		return fmt.Errorf("app run: %s", sErr.Error())
	}

	router := api.New(api.RouterArgs{
		Logger:               a.Logger,
		UserService:          services.UserService,
		WalletService:        services.WalletService,
		OrderService:         services.OrderService,
		XPService:            services.XPService,
		PaymentService:       services.PaymentService,
		JWTSecretKey:         []byte(a.Config.JWTUserSecret),
		PaymentWebhookSecret: []byte(a.Config.PaymentWebhookSecret),
	})

	errChan := make(chan error, 1)

	go func() {
		if runErr := router.Run(a.Config.RunAddress); runErr != nil {
			errChan <- runErr
		}
	}()

	processor := autorelease.New(services.OrderService, a.Logger).
		SetSweepInterval(a.Config.SweepInterval).
		SetLimitPerSweep(100) //nolint:mnd

	go processor.Run(notifyCtx)

	select {
	case <-notifyCtx.Done():
		return notifyCtx.Err() //nolint:wrapcheck
	case err := <-errChan:
		return err
	}
}

func initUOW(conn *pgxpool.Pool) (*uow.UnitOfWork, error) {
	unitOfWork := uow.NewUnitOfWork(conn)

	factories := map[repoargs.RepositoryName]uow.RepositoryFactory{
		repoargs.UserRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewUserRepository(dbtx)
		},
		repoargs.WalletRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewWalletRepository(dbtx)
		},
		repoargs.HoldRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewHoldRepository(dbtx)
		},
		repoargs.OrderRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewOrderRepository(dbtx)
		},
		repoargs.XPTransactionRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewXPTransactionRepository(dbtx)
		},
		repoargs.ScoreRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewScoreRepository(dbtx)
		},
		repoargs.TierRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewTierRepository(dbtx)
		},
		repoargs.PaymentEventRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewPaymentEventRepository(dbtx)
		},
	}

	for name, factoryFn := range factories {
		if regErr := unitOfWork.Register(uow.RepositoryName(name), factoryFn); regErr != nil {
			return nil, fmt.Errorf("init UOW: %s", regErr.Error())
		}
	}

	return unitOfWork, nil
}
