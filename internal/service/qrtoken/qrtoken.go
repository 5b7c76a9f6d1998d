package qrtoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const PayloadType = "points_issue"

// Claims подписанный QR пейлоад: кому принадлежит грант (merchant), сколько баллов
// и одноразовый nonce. Данных достаточно, чтобы восстановить транзакцию при
// погашении без похода к мерчанту.
type Claims struct {
	jwt.RegisteredClaims
	Type        string          `json:"type"`
	MerchantID  int64           `json:"merchant_id"`
	Points      decimal.Decimal `json:"points"`
	Description string          `json:"description,omitempty"`
	Nonce       string          `json:"nonce"`
}

// Signer подписывает и проверяет QR пейлоады симметричным секретом процесса.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

func NewSigner(secret []byte, ttl time.Duration) *Signer {
	return &Signer{secret: secret, ttl: ttl}
}

func (s *Signer) TTL() time.Duration {
	return s.ttl
}

// Sign выпускает подписанный пейлоад с окном валидности ttl и свежим nonce.
func (s *Signer) Sign(merchantID int64, points decimal.Decimal, description string) (*Claims, string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Type:        PayloadType,
		MerchantID:  merchantID,
		Points:      points,
		Description: description,
		Nonce:       uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return nil, "", errors.Join(ErrInvalid, err)
	}
	return &claims, tokenString, nil
}

// Verify проверяет подпись и срок жизни пейлоада. Проверка закрыта по умолчанию:
// любая ошибка разбора трактуется как невалидный токен, никогда как валидный.
// Возвращает ошибки ErrExpired, ErrInvalid и ErrMalformed.
func (s *Signer) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, new(Claims), func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalid
	}
	if claims.Type != PayloadType || claims.MerchantID <= 0 ||
		!claims.Points.IsPositive() || claims.Nonce == "" {
		return nil, ErrMalformed
	}
	return claims, nil
}
