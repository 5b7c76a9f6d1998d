package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsdevblog/groph-points/internal/config"
	"github.com/fsdevblog/groph-points/internal/repository/pgrepo"
	"github.com/fsdevblog/groph-points/internal/repository/repoargs"
	"github.com/fsdevblog/groph-points/internal/service"
	"github.com/fsdevblog/groph-points/internal/service/noncestore"
	"github.com/fsdevblog/groph-points/internal/service/psswd"
	"github.com/fsdevblog/groph-points/internal/service/qrtoken"
	"github.com/fsdevblog/groph-points/internal/transport/api"
	"github.com/fsdevblog/groph-points/pkg/uow"
	"github.com/sirupsen/logrus"

	// driver for migration applying postgres.
	_ "github.com/golang-migrate/migrate/v4/database/postgres" //nolint:revive
	// driver to get migrations from files (*.sql in our case).
	_ "github.com/golang-migrate/migrate/v4/source/file" //nolint:revive
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
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

	redisClient := redis.NewClient(&redis.Options{Addr: a.Config.RedisAddress})
	if pingErr := redisClient.Ping(notifyCtx).Err(); pingErr != nil {
		return fmt.Errorf("app run: redis ping: %s", pingErr.Error())
	}
	defer redisClient.Close() //nolint:errcheck

	unitOfWork, uowErr := initUOW(conn)
	if uowErr != nil {
		return fmt.Errorf("app run: %s", uowErr.Error())
	}

	qrSigner := qrtoken.NewSigner(
		[]byte(a.Config.QRSecret),
		time.Duration(a.Config.QRTokenTTLSeconds)*time.Second,
	)

	services, sErr := service.Factory(unitOfWork, service.FactoryArgs{
		JWTSecret: []byte(a.Config.JWTUserSecret),
		Hasher:    psswd.PasswordHash(""),
		QRSigner:  qrSigner,
		Nonces:    noncestore.New(redisClient),
	})
	if sErr != nil {
		return fmt.Errorf("app run: %s", sErr.Error())
	}

	router := api.New(api.RouterArgs{
		Logger:             a.Logger,
		UserService:        services.UserService,
		LedgerService:      services.LedgerService,
		TransactionService: services.TransactionService,
		JWTSecretKey:       []byte(a.Config.JWTUserSecret),
	})

	errChan := make(chan error, 1)

	go func() {
		if runErr := router.Run(a.Config.RunAddress); runErr != nil {
			errChan <- runErr
		}
	}()

	select {
	case <-notifyCtx.Done():
		return notifyCtx.Err() //nolint:wrapcheck
	case err := <-errChan:
		return err
	}
}

func initUOW(conn *pgxpool.Pool) (*uow.UnitOfWork, error) {
	unitOfWork := uow.NewUnitOfWork(conn)

	// user repo
	userRepoFactoryFn := func(dbtx uow.DBTX) uow.Repository {
		return pgrepo.NewUserRepository(dbtx)
	}
	if regErr := unitOfWork.Register(uow.RepositoryName(repoargs.UserRepoName), userRepoFactoryFn); regErr != nil {
		return nil, fmt.Errorf("init UOW: %s", regErr.Error())
	}

	// transaction repo
	transactionRepoFactoryFn := func(dbtx uow.DBTX) uow.Repository {
		return pgrepo.NewTransactionRepository(dbtx)
	}
	if regErr := unitOfWork.Register(
		uow.RepositoryName(repoargs.TransactionRepoName),
		transactionRepoFactoryFn,
	); regErr != nil {
		return nil, fmt.Errorf("init UOW: %s", regErr.Error())
	}

	// voucher repo
	voucherRepoFactoryFn := func(dbtx uow.DBTX) uow.Repository {
		return pgrepo.NewVoucherRepository(dbtx)
	}
	if regErr := unitOfWork.Register(uow.RepositoryName(repoargs.VoucherRepoName), voucherRepoFactoryFn); regErr != nil {
		return nil, fmt.Errorf("init UOW: %s", regErr.Error())
	}

	return unitOfWork, nil
}
