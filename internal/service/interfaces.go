package service

import (
	"context"
	"time"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/fsdevblog/groph-points/internal/repository/repoargs"
	"github.com/fsdevblog/groph-points/internal/service/qrtoken"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type PasswordHasher interface {
	HashPassword(password string) (string, error)
	ComparePassword(password string, hashedPassword string) bool
}

// QRSigner контракт подписи QR пейлоадов (см. qrtoken.Signer).
type QRSigner interface {
	TTL() time.Duration
	Sign(merchantID int64, points decimal.Decimal, description string) (*qrtoken.Claims, string, error)
	Verify(tokenString string) (*qrtoken.Claims, error)
}

// NonceStore реестр потребленных QR nonce. Защита от повторного погашения одного
// пейлоада внутри окна валидности.
type NonceStore interface {
	Reserve(ctx context.Context, nonce string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, nonce string)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user repoargs.CreateUser) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	LockByIDs(ctx context.Context, ids []int64) ([]domain.User, error)
	AddToBalance(ctx context.Context, id int64, delta decimal.Decimal) (*domain.User, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, transaction repoargs.TransactionCreate) (*domain.Transaction, error)
	GetByUserID(ctx context.Context, userID int64) ([]domain.Transaction, error)
	SumByUserID(ctx context.Context, userID int64) (*repoargs.BalanceAggregation, error)
}

type VoucherRepository interface {
	Create(ctx context.Context, voucher repoargs.VoucherCreate) (*domain.Voucher, error)
	FindByCodeForUpdate(ctx context.Context, code string) (*domain.Voucher, error)
	MarkRedeemed(ctx context.Context, id int64, redeemedBy int64) (*domain.Voucher, error)
	GetByMerchantID(ctx context.Context, merchantID int64) ([]domain.Voucher, error)
}
