package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/fsdevblog/groph-points/internal/service"
)

// UserServicer интерфейс исключительно для моков.
type UserServicer interface {
	Register(ctx context.Context, args service.RegisterUserArgs) (*domain.User, string, error)
	Login(ctx context.Context, args service.LoginUserArgs) (*domain.User, string, error)
}

type LedgerServicer interface {
	IssueVoucher(
		ctx context.Context,
		merchantID int64,
		points decimal.Decimal,
		description string,
	) (*domain.Voucher, error)
	IssueQR(ctx context.Context, merchantID int64, points decimal.Decimal, description string) (string, error)
	RedeemQR(ctx context.Context, customerID int64, token string) (*domain.Transaction, error)
	Airdrop(
		ctx context.Context,
		merchantID int64,
		customerEmail string,
		points decimal.Decimal,
		description string,
	) (*domain.Transaction, error)
	Transfer(
		ctx context.Context,
		senderID int64,
		recipientEmail string,
		points decimal.Decimal,
		description string,
	) (*domain.Transaction, error)
	RedeemVoucher(ctx context.Context, customerID int64, code string) (*domain.Transaction, error)
	ListVouchers(ctx context.Context, merchantID int64) ([]domain.Voucher, error)
}

type TransactionServicer interface {
	GetByUserID(ctx context.Context, userID int64) ([]domain.Transaction, error)
	GetUserBalance(ctx context.Context, userID int64) (*service.UserBalance, error)
}
