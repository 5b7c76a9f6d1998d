package domain

import "errors"

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrPasswordMissMatch = errors.New("password mismatch")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrUnknown           = errors.New("unknown error")

	// Ошибки операций леджера. Возвращаются сервисным слоем, транспорт
	// мапит их на http статусы.
	ErrUnauthorized           = errors.New("merchant role required")
	ErrInvalidAmount          = errors.New("points amount must be positive")
	ErrNotEnoughBalance       = errors.New("not enough balance")
	ErrRecipientNotFound      = errors.New("recipient not found")
	ErrSelfTransfer           = errors.New("transfer to yourself is not allowed")
	ErrVoucherNotFound        = errors.New("voucher not found")
	ErrVoucherAlreadyRedeemed = errors.New("voucher already redeemed")
	ErrCodeExpired            = errors.New("code expired")
	ErrInvalidSignature       = errors.New("invalid signature")
	ErrMalformedPayload       = errors.New("malformed payload")
	ErrQRAlreadyRedeemed      = errors.New("qr payload already redeemed")
)
