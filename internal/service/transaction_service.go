package service

import (
	"context"
	"fmt"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/fsdevblog/groph-points/internal/repository/repoargs"
	"github.com/fsdevblog/groph-points/pkg/uow"
	"github.com/shopspring/decimal"
)

// UserBalance текущий баланс вместе с агрегатами журнала. Current всегда равен
// Received - Sent — это проверяемый инвариант леджера.
type UserBalance struct {
	UserID   int64
	Current  decimal.Decimal
	Received decimal.Decimal
	Sent     decimal.Decimal
}

type TransactionService struct {
	uow       uow.UOW
	transRepo TransactionRepository
	userRepo  UserRepository
}

func NewTransactionService(u uow.UOW) (*TransactionService, error) {
	transRepo, transRepoErr := uow.GetRepositoryAs[TransactionRepository](u, uow.RepositoryName(repoargs.TransactionRepoName))
	if transRepoErr != nil {
		return nil, transRepoErr
	}
	userRepo, userRepoErr := uow.GetRepositoryAs[UserRepository](u, uow.RepositoryName(repoargs.UserRepoName))
	if userRepoErr != nil {
		return nil, userRepoErr
	}
	return &TransactionService{
		uow:       u,
		transRepo: transRepo,
		userRepo:  userRepo,
	}, nil
}

// GetByUserID возвращает транзакции юзера (входящие и исходящие), новые первыми.
func (t *TransactionService) GetByUserID(ctx context.Context, userID int64) ([]domain.Transaction, error) {
	transactions, err := t.transRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return transactions, nil
}

// GetUserBalance возвращает текущий баланс из строки юзера и агрегаты журнала.
func (t *TransactionService) GetUserBalance(ctx context.Context, userID int64) (*UserBalance, error) {
	user, userErr := t.userRepo.FindByID(ctx, userID)
	if userErr != nil {
		return nil, fmt.Errorf("getting user balance: %w", userErr)
	}
	agr, agrErr := t.transRepo.SumByUserID(ctx, userID)
	if agrErr != nil {
		return nil, fmt.Errorf("getting user balance: %w", agrErr)
	}
	return &UserBalance{
		UserID:   userID,
		Current:  user.Balance,
		Received: agr.ReceivedAmount,
		Sent:     agr.SentAmount,
	}, nil
}
