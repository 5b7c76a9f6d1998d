// Команда seed наполняет базу демо-данными: несколько мерчантов, кастомеры и
// пачка ваучеров на каждого мерчанта. Предназначена только для дев окружения.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/fsdevblog/groph-points/internal/config"
	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/fsdevblog/groph-points/internal/logger"
	"github.com/fsdevblog/groph-points/internal/repository/pgrepo"
	"github.com/fsdevblog/groph-points/internal/repository/repoargs"
	"github.com/fsdevblog/groph-points/internal/service"
	"github.com/fsdevblog/groph-points/internal/service/psswd"
	"github.com/fsdevblog/groph-points/pkg/uow"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	_ "github.com/golang-migrate/migrate/v4/database/postgres" //nolint:revive
	_ "github.com/golang-migrate/migrate/v4/source/file"       //nolint:revive
)

const (
	merchantsCount       = 3
	customersCount       = 10
	vouchersPerMerchant  = 5
	seedPassword         = "password123"
	maxVoucherPoints     = 500
	minVoucherPoints     = 10
	voucherIssueMessages = "Seed voucher"
)

func main() {
	conf := config.MustLoadConfig()
	l := logger.New(os.Stdout)

	if err := run(conf, l); err != nil {
		panic(err)
	}
}

func run(conf *config.Config, l *logrus.Logger) error {
	ctx := context.Background()

	conn, connErr := pgrepo.Connect(ctx, conf.MigrationsDir, conf.DatabaseDSN, l)
	if connErr != nil {
		return fmt.Errorf("seed: %s", connErr.Error())
	}
	defer conn.Close()

	unitOfWork := uow.NewUnitOfWork(conn)
	for name, factory := range map[repoargs.RepositoryName]uow.RepositoryFactory{
		repoargs.UserRepoName:        func(dbtx uow.DBTX) uow.Repository { return pgrepo.NewUserRepository(dbtx) },
		repoargs.TransactionRepoName: func(dbtx uow.DBTX) uow.Repository { return pgrepo.NewTransactionRepository(dbtx) },
		repoargs.VoucherRepoName:     func(dbtx uow.DBTX) uow.Repository { return pgrepo.NewVoucherRepository(dbtx) },
	} {
		if regErr := unitOfWork.Register(uow.RepositoryName(name), factory); regErr != nil {
			return fmt.Errorf("seed: %s", regErr.Error())
		}
	}

	userService, userServiceErr := service.NewUserService(unitOfWork, []byte(conf.JWTUserSecret), psswd.PasswordHash(""))
	if userServiceErr != nil {
		return fmt.Errorf("seed: %s", userServiceErr.Error())
	}

	var merchantIDs []int64
	for range merchantsCount {
		merchant, _, registerErr := userService.Register(ctx, service.RegisterUserArgs{
			Username:     gofakeit.Username(),
			Email:        gofakeit.Email(),
			Phone:        gofakeit.Phone(),
			Password:     seedPassword,
			Role:         domain.RoleMerchant,
			BusinessName: gofakeit.Company(),
			Address:      gofakeit.Address().Address,
		})
		if registerErr != nil {
			return fmt.Errorf("seed merchant: %s", registerErr.Error())
		}
		merchantIDs = append(merchantIDs, merchant.ID)
		l.Infof("seeded merchant id=%d business=%q", merchant.ID, merchant.BusinessName)
	}

	for range customersCount {
		customer, _, registerErr := userService.Register(ctx, service.RegisterUserArgs{
			Username: gofakeit.Username(),
			Email:    gofakeit.Email(),
			Phone:    gofakeit.Phone(),
			Password: seedPassword,
			Role:     domain.RoleCustomer,
		})
		if registerErr != nil {
			return fmt.Errorf("seed customer: %s", registerErr.Error())
		}
		l.Infof("seeded customer id=%d", customer.ID)
	}

	ledgerService, ledgerServiceErr := service.NewLedgerService(unitOfWork, nil, nil)
	if ledgerServiceErr != nil {
		return fmt.Errorf("seed: %s", ledgerServiceErr.Error())
	}

	for _, merchantID := range merchantIDs {
		for range vouchersPerMerchant {
			points := decimal.NewFromInt(int64(gofakeit.Number(minVoucherPoints, maxVoucherPoints)))
			voucher, issueErr := ledgerService.IssueVoucher(ctx, merchantID, points, voucherIssueMessages)
			if issueErr != nil {
				return fmt.Errorf("seed voucher: %s", issueErr.Error())
			}
			l.Infof("seeded voucher code=%s merchant=%d points=%s", voucher.Code, merchantID, points)
		}
	}

	return nil
}
