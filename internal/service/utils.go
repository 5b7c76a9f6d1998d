package service

import (
	"errors"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/fsdevblog/groph-points/internal/service/qrtoken"
)

// convertQRTokenErr маппит ошибки пакета qrtoken на бизнес-ошибки domain.
// Неизвестная ошибка трактуется как невалидная подпись (fail closed).
func convertQRTokenErr(err error) error {
	switch {
	case errors.Is(err, qrtoken.ErrExpired):
		return domain.ErrCodeExpired
	case errors.Is(err, qrtoken.ErrMalformed):
		return domain.ErrMalformedPayload
	default:
		return domain.ErrInvalidSignature
	}
}
