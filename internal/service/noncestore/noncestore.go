package noncestore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "qr_nonce:v1:"

// Store реестр потребленных QR nonce поверх redis. Запись живет столько же,
// сколько окно валидности пейлоада — дольше хранить незачем, просроченный токен
// не пройдет проверку подписи по exp.
type Store struct {
	client *redis.Client
}

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// Reserve помечает nonce потребленным. Возвращает false, если nonce уже был
// потреблен ранее (повторное сканирование того же QR).
func (s *Store) Reserve(ctx context.Context, nonce string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, keyPrefix+nonce, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("reserving nonce: %s", err.Error())
	}
	return ok, nil
}

// Release снимает резерв. Вызывается best effort при откате атомарной операции,
// чтобы не «сжечь» пейлоад, который так и не был зачислен.
func (s *Store) Release(ctx context.Context, nonce string) {
	s.client.Del(ctx, keyPrefix+nonce)
}
