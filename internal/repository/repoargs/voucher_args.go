package repoargs

import "github.com/shopspring/decimal"

type VoucherCreate struct {
	Code        string
	MerchantID  int64
	PointsValue decimal.Decimal
}
