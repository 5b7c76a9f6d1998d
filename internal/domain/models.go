package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID                int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Username          string
	Email             string
	Phone             string
	EncryptedPassword string
	Role              RoleType
	BusinessName      string
	Address           string
	Balance           decimal.Decimal
}

// Transaction неизменяемая запись журнала. Создается единожды внутри атомарной
// операции леджера, не обновляется и не удаляется.
type Transaction struct {
	ID          int64
	CreatedAt   time.Time
	Kind        TransactionKind
	SenderID    *int64
	ReceiverID  *int64
	Points      decimal.Decimal
	Description string
	VoucherCode string
	QRPayload   string
}

type Voucher struct {
	ID          int64
	CreatedAt   time.Time
	Code        string
	MerchantID  int64
	PointsValue decimal.Decimal
	Redeemed    bool
	RedeemedBy  *int64
	RedeemedAt  *time.Time
}
