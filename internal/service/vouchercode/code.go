package vouchercode

import (
	"crypto/rand"
	"fmt"
)

// alphabet 36 символов: латинские заглавные и цифры.
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const Length = 8

// Generate возвращает случайный код фиксированной длины. Уникальность здесь не
// гарантируется — ее обеспечивает уникальный индекс по колонке code, а леджер
// перегенерирует код при коллизии.
func Generate() (string, error) {
	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating voucher code: %s", err.Error())
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf), nil
}
