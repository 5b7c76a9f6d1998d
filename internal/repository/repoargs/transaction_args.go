package repoargs

import (
	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/shopspring/decimal"
)

type TransactionCreate struct {
	Kind        domain.TransactionKind
	SenderID    *int64
	ReceiverID  *int64
	Points      decimal.Decimal
	Description string
	VoucherCode string
	QRPayload   string
}

// BalanceAggregation суммы по журналу транзакций для одного аккаунта.
// Received — все зачисления (аккаунт получатель), Sent — все списания
// (аккаунт отправитель перевода). Инвариант: balance == Received - Sent.
type BalanceAggregation struct {
	ReceivedAmount decimal.Decimal
	SentAmount     decimal.Decimal
}
