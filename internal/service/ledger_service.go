package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/fsdevblog/groph-points/internal/repository/repoargs"
	"github.com/fsdevblog/groph-points/internal/service/vouchercode"
	"github.com/fsdevblog/groph-points/pkg/uow"
	"github.com/shopspring/decimal"
)

// maxVoucherCodeAttempts число перегенераций кода при коллизии уникального индекса.
const maxVoucherCodeAttempts = 5

// LedgerService единственный код, которому разрешено менять балансы. Каждая
// операция выполняется как одна атомарная единица: блокировка строк (всегда по
// возрастанию id), авторитетные проверки под блокировкой, изменение балансов,
// запись в журнал транзакций — все коммитится вместе либо откатывается целиком.
type LedgerService struct {
	uow         uow.UOW
	userRepo    UserRepository
	voucherRepo VoucherRepository
	signer      QRSigner
	nonces      NonceStore
}

func NewLedgerService(u uow.UOW, signer QRSigner, nonces NonceStore) (*LedgerService, error) {
	userRepo, userRepoErr := uow.GetRepositoryAs[UserRepository](u, uow.RepositoryName(repoargs.UserRepoName))
	if userRepoErr != nil {
		return nil, userRepoErr
	}
	voucherRepo, voucherRepoErr := uow.GetRepositoryAs[VoucherRepository](u, uow.RepositoryName(repoargs.VoucherRepoName))
	if voucherRepoErr != nil {
		return nil, voucherRepoErr
	}
	return &LedgerService{
		uow:         u,
		userRepo:    userRepo,
		voucherRepo: voucherRepo,
		signer:      signer,
		nonces:      nonces,
	}, nil
}

// IssueVoucher создает ваучер мерчанта и запись VOUCHER_ISSUE в журнале. Балансы
// не меняются — зачисление случится при погашении. Возвращает ошибки
// domain.ErrInvalidAmount и domain.ErrUnauthorized.
func (l *LedgerService) IssueVoucher(
	ctx context.Context,
	merchantID int64,
	points decimal.Decimal,
	description string,
) (*domain.Voucher, error) {
	if !points.IsPositive() {
		return nil, fmt.Errorf("issuing voucher: %w", domain.ErrInvalidAmount)
	}
	merchant, merchantErr := l.requireMerchant(ctx, merchantID)
	if merchantErr != nil {
		return nil, fmt.Errorf("issuing voucher: %w", merchantErr)
	}

	// Генератор кодов уникальность не гарантирует, поэтому при коллизии
	// уникального индекса пробуем заново с новым кодом.
	var lastErr error
	for range maxVoucherCodeAttempts {
		code, codeErr := vouchercode.Generate()
		if codeErr != nil {
			return nil, fmt.Errorf("issuing voucher: %s", codeErr.Error())
		}

		var voucher *domain.Voucher
		txErr := l.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
			voucherRepo, repoErr := uow.GetAs[VoucherRepository](tx, uow.RepositoryName(repoargs.VoucherRepoName))
			if repoErr != nil {
				return repoErr //nolint:wrapcheck
			}
			transRepo, repoErr := uow.GetAs[TransactionRepository](tx, uow.RepositoryName(repoargs.TransactionRepoName))
			if repoErr != nil {
				return repoErr //nolint:wrapcheck
			}

			var createErr error
			voucher, createErr = voucherRepo.Create(c, repoargs.VoucherCreate{
				Code:        code,
				MerchantID:  merchant.ID,
				PointsValue: points,
			})
			if createErr != nil {
				return createErr //nolint:wrapcheck
			}

			_, transErr := transRepo.Create(c, repoargs.TransactionCreate{
				Kind:        domain.KindVoucherIssue,
				SenderID:    int64Ptr(merchant.ID),
				Points:      points,
				Description: description,
				VoucherCode: code,
			})
			return transErr //nolint:wrapcheck
		})

		if txErr == nil {
			return voucher, nil
		}
		if !errors.Is(txErr, domain.ErrDuplicateKey) {
			return nil, fmt.Errorf("issuing voucher: %w", txErr)
		}
		lastErr = txErr
	}
	return nil, fmt.Errorf("issuing voucher: code collisions exhausted: %w", lastErr)
}

// IssueQR выпускает подписанный time-limited пейлоад и логирует запись QR_ISSUE.
// Строки с содержимым QR в базе нет — только журнал; зачисление произойдет в
// RedeemQR. Возвращает ошибки domain.ErrInvalidAmount и domain.ErrUnauthorized.
func (l *LedgerService) IssueQR(
	ctx context.Context,
	merchantID int64,
	points decimal.Decimal,
	description string,
) (string, error) {
	if !points.IsPositive() {
		return "", fmt.Errorf("issuing qr: %w", domain.ErrInvalidAmount)
	}
	merchant, merchantErr := l.requireMerchant(ctx, merchantID)
	if merchantErr != nil {
		return "", fmt.Errorf("issuing qr: %w", merchantErr)
	}

	_, token, signErr := l.signer.Sign(merchant.ID, points, description)
	if signErr != nil {
		return "", fmt.Errorf("issuing qr: %s", signErr.Error())
	}

	txErr := l.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		transRepo, repoErr := uow.GetAs[TransactionRepository](tx, uow.RepositoryName(repoargs.TransactionRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}
		_, transErr := transRepo.Create(c, repoargs.TransactionCreate{
			Kind:        domain.KindQRIssue,
			SenderID:    int64Ptr(merchant.ID),
			Points:      points,
			Description: description,
			QRPayload:   token,
		})
		return transErr //nolint:wrapcheck
	})
	if txErr != nil {
		return "", fmt.Errorf("issuing qr: %w", txErr)
	}
	return token, nil
}

// RedeemQR проверяет подписанный пейлоад и зачисляет баллы кастомеру. Повторное
// погашение того же пейлоада внутри окна валидности отсекается по nonce.
// Возвращает ошибки domain.ErrCodeExpired, domain.ErrInvalidSignature,
// domain.ErrMalformedPayload и domain.ErrQRAlreadyRedeemed.
func (l *LedgerService) RedeemQR(ctx context.Context, customerID int64, token string) (*domain.Transaction, error) {
	claims, verifyErr := l.signer.Verify(token)
	if verifyErr != nil {
		return nil, fmt.Errorf("redeeming qr: %w", convertQRTokenErr(verifyErr))
	}

	merchant, merchantErr := l.userRepo.FindByID(ctx, claims.MerchantID)
	if merchantErr != nil {
		if errors.Is(merchantErr, domain.ErrRecordNotFound) {
			return nil, fmt.Errorf("redeeming qr: %w", domain.ErrMalformedPayload)
		}
		return nil, fmt.Errorf("redeeming qr: %w", merchantErr)
	}
	if merchant.Role != domain.RoleMerchant {
		return nil, fmt.Errorf("redeeming qr: %w", domain.ErrMalformedPayload)
	}

	// Nonce резервируется до атомарной единицы: второй скан того же QR упрется
	// в резерв даже пока первый еще в полете.
	reserved, reserveErr := l.nonces.Reserve(ctx, claims.Nonce, l.signer.TTL())
	if reserveErr != nil {
		return nil, fmt.Errorf("redeeming qr: %s", reserveErr.Error())
	}
	if !reserved {
		return nil, fmt.Errorf("redeeming qr: %w", domain.ErrQRAlreadyRedeemed)
	}

	var transaction *domain.Transaction
	txErr := l.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		userRepo, repoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}
		transRepo, repoErr := uow.GetAs[TransactionRepository](tx, uow.RepositoryName(repoargs.TransactionRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}

		if _, lockErr := userRepo.LockByIDs(c, []int64{customerID}); lockErr != nil {
			return lockErr //nolint:wrapcheck
		}
		if _, balanceErr := userRepo.AddToBalance(c, customerID, claims.Points); balanceErr != nil {
			return balanceErr //nolint:wrapcheck
		}

		var transErr error
		transaction, transErr = transRepo.Create(c, repoargs.TransactionCreate{
			Kind:        domain.KindQRIssue,
			SenderID:    int64Ptr(merchant.ID),
			ReceiverID:  int64Ptr(customerID),
			Points:      claims.Points,
			Description: claims.Description,
			QRPayload:   token,
		})
		return transErr //nolint:wrapcheck
	})
	if txErr != nil {
		// Откат единицы не должен «сжигать» пейлоад: снимаем резерв nonce.
		l.nonces.Release(ctx, claims.Nonce)
		return nil, fmt.Errorf("redeeming qr: %w", txErr)
	}
	return transaction, nil
}

// Airdrop прямое зачисление баллов кастомеру по email. Баланс мерчанта не
// меняется. Возвращает ошибки domain.ErrInvalidAmount, domain.ErrUnauthorized и
// domain.ErrRecipientNotFound.
func (l *LedgerService) Airdrop(
	ctx context.Context,
	merchantID int64,
	customerEmail string,
	points decimal.Decimal,
	description string,
) (*domain.Transaction, error) {
	if !points.IsPositive() {
		return nil, fmt.Errorf("airdropping points: %w", domain.ErrInvalidAmount)
	}
	merchant, merchantErr := l.requireMerchant(ctx, merchantID)
	if merchantErr != nil {
		return nil, fmt.Errorf("airdropping points: %w", merchantErr)
	}

	customer, customerErr := l.findCustomerByEmail(ctx, customerEmail)
	if customerErr != nil {
		return nil, fmt.Errorf("airdropping points: %w", customerErr)
	}

	var transaction *domain.Transaction
	txErr := l.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		userRepo, repoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}
		transRepo, repoErr := uow.GetAs[TransactionRepository](tx, uow.RepositoryName(repoargs.TransactionRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}

		if _, lockErr := userRepo.LockByIDs(c, []int64{customer.ID}); lockErr != nil {
			return lockErr //nolint:wrapcheck
		}
		if _, balanceErr := userRepo.AddToBalance(c, customer.ID, points); balanceErr != nil {
			return balanceErr //nolint:wrapcheck
		}

		var transErr error
		transaction, transErr = transRepo.Create(c, repoargs.TransactionCreate{
			Kind:        domain.KindAirdrop,
			SenderID:    int64Ptr(merchant.ID),
			ReceiverID:  int64Ptr(customer.ID),
			Points:      points,
			Description: description,
		})
		return transErr //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, fmt.Errorf("airdropping points: %w", txErr)
	}
	return transaction, nil
}

// Transfer переводит баллы между юзерами. Баланс отправителя проверяется дважды:
// оптимистично до транзакции и авторитетно под блокировкой строки — закрывает
// гонку, когда баланс изменился между проверкой и захватом блокировки.
// Возвращает ошибки domain.ErrInvalidAmount, domain.ErrRecipientNotFound,
// domain.ErrSelfTransfer и domain.ErrNotEnoughBalance.
func (l *LedgerService) Transfer(
	ctx context.Context,
	senderID int64,
	recipientEmail string,
	points decimal.Decimal,
	description string,
) (*domain.Transaction, error) {
	if !points.IsPositive() {
		return nil, fmt.Errorf("transferring points: %w", domain.ErrInvalidAmount)
	}

	recipient, recipientErr := l.userRepo.FindByEmail(ctx, recipientEmail)
	if recipientErr != nil {
		if errors.Is(recipientErr, domain.ErrRecordNotFound) {
			return nil, fmt.Errorf("transferring points: %w", domain.ErrRecipientNotFound)
		}
		return nil, fmt.Errorf("transferring points: %w", recipientErr)
	}
	if recipient.ID == senderID {
		return nil, fmt.Errorf("transferring points: %w", domain.ErrSelfTransfer)
	}

	sender, senderErr := l.userRepo.FindByID(ctx, senderID)
	if senderErr != nil {
		return nil, fmt.Errorf("transferring points: %w", senderErr)
	}
	if sender.Balance.LessThan(points) {
		return nil, fmt.Errorf("transferring points: %w", domain.ErrNotEnoughBalance)
	}

	var transaction *domain.Transaction
	txErr := l.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		userRepo, repoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}
		transRepo, repoErr := uow.GetAs[TransactionRepository](tx, uow.RepositoryName(repoargs.TransactionRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}

		locked, lockErr := userRepo.LockByIDs(c, []int64{sender.ID, recipient.ID})
		if lockErr != nil {
			return lockErr //nolint:wrapcheck
		}
		// Авторитетная проверка по заблокированной строке отправителя.
		for _, user := range locked {
			if user.ID == sender.ID && user.Balance.LessThan(points) {
				return domain.ErrNotEnoughBalance
			}
		}

		if _, balanceErr := userRepo.AddToBalance(c, sender.ID, points.Neg()); balanceErr != nil {
			return balanceErr //nolint:wrapcheck
		}
		if _, balanceErr := userRepo.AddToBalance(c, recipient.ID, points); balanceErr != nil {
			return balanceErr //nolint:wrapcheck
		}

		var transErr error
		transaction, transErr = transRepo.Create(c, repoargs.TransactionCreate{
			Kind:        domain.KindTransfer,
			SenderID:    int64Ptr(sender.ID),
			ReceiverID:  int64Ptr(recipient.ID),
			Points:      points,
			Description: description,
		})
		return transErr //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, fmt.Errorf("transferring points: %w", txErr)
	}
	return transaction, nil
}

// RedeemVoucher погашает ваучер: строка ваучера берется под блокировку, проверка
// состояния и зачисление происходят в одной атомарной единице, поэтому два
// конкурентных погашения одного кода дают ровно одно зачисление. Возвращает
// ошибки domain.ErrVoucherNotFound и domain.ErrVoucherAlreadyRedeemed.
func (l *LedgerService) RedeemVoucher(ctx context.Context, customerID int64, code string) (*domain.Transaction, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	var transaction *domain.Transaction
	txErr := l.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		voucherRepo, repoErr := uow.GetAs[VoucherRepository](tx, uow.RepositoryName(repoargs.VoucherRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}
		userRepo, repoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}
		transRepo, repoErr := uow.GetAs[TransactionRepository](tx, uow.RepositoryName(repoargs.TransactionRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}

		// Ваучер блокируется раньше строк юзеров — порядок одинаков во всех
		// операциях и не создает циклов ожидания.
		voucher, findErr := voucherRepo.FindByCodeForUpdate(c, code)
		if findErr != nil {
			if errors.Is(findErr, domain.ErrRecordNotFound) {
				return domain.ErrVoucherNotFound
			}
			return findErr //nolint:wrapcheck
		}
		if voucher.Redeemed {
			return domain.ErrVoucherAlreadyRedeemed
		}

		if _, lockErr := userRepo.LockByIDs(c, []int64{customerID}); lockErr != nil {
			return lockErr //nolint:wrapcheck
		}
		if _, balanceErr := userRepo.AddToBalance(c, customerID, voucher.PointsValue); balanceErr != nil {
			return balanceErr //nolint:wrapcheck
		}
		if _, redeemErr := voucherRepo.MarkRedeemed(c, voucher.ID, customerID); redeemErr != nil {
			return redeemErr //nolint:wrapcheck
		}

		var transErr error
		transaction, transErr = transRepo.Create(c, repoargs.TransactionCreate{
			Kind:        domain.KindRedemption,
			SenderID:    int64Ptr(voucher.MerchantID),
			ReceiverID:  int64Ptr(customerID),
			Points:      voucher.PointsValue,
			Description: "Voucher redemption: " + code,
			VoucherCode: code,
		})
		return transErr //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, fmt.Errorf("redeeming voucher: %w", txErr)
	}
	return transaction, nil
}

// ListVouchers возвращает ваучеры мерчанта. Возвращает ошибку domain.ErrUnauthorized
// для не-мерчанта.
func (l *LedgerService) ListVouchers(ctx context.Context, merchantID int64) ([]domain.Voucher, error) {
	merchant, merchantErr := l.requireMerchant(ctx, merchantID)
	if merchantErr != nil {
		return nil, fmt.Errorf("listing vouchers: %w", merchantErr)
	}
	vouchers, err := l.voucherRepo.GetByMerchantID(ctx, merchant.ID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return vouchers, nil
}

// requireMerchant загружает юзера и убеждается что он мерчант. Роль перечитывается
// из строки, а не берется из клеймов токена.
func (l *LedgerService) requireMerchant(ctx context.Context, id int64) (*domain.User, error) {
	user, err := l.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	if user.Role != domain.RoleMerchant {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}

// findCustomerByEmail резолвит получателя airdrop'а. Отсутствие записи и
// не-кастомерская роль неразличимы для вызывающего — обе дают ErrRecipientNotFound.
func (l *LedgerService) findCustomerByEmail(ctx context.Context, email string) (*domain.User, error) {
	customer, err := l.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrRecipientNotFound
		}
		return nil, err //nolint:wrapcheck
	}
	if customer.Role != domain.RoleCustomer {
		return nil, domain.ErrRecipientNotFound
	}
	return customer, nil
}

func int64Ptr(v int64) *int64 {
	return &v
}
