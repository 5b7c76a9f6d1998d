package qrtoken

import "errors"

var (
	ErrExpired   = errors.New("qr token expired")
	ErrInvalid   = errors.New("qr token invalid")
	ErrMalformed = errors.New("qr token malformed")
)
