package service

import (
	"testing"
	"time"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/fsdevblog/groph-points/internal/repository/repoargs"
	"github.com/fsdevblog/groph-points/internal/service/mocks"
	"github.com/fsdevblog/groph-points/pkg/uow"
	uowmocks "github.com/fsdevblog/groph-points/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type TransactionServiceTestSuite struct {
	suite.Suite
	mockCtrl      *gomock.Controller
	mockUOW       *uowmocks.MockUOW
	mockTransRepo *mocks.MockTransactionRepository
	mockUserRepo  *mocks.MockUserRepository
	service       *TransactionService
}

func TestTransactionServiceSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}

func (s *TransactionServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTransRepo = mocks.NewMockTransactionRepository(s.mockCtrl)
	s.mockUserRepo = mocks.NewMockUserRepository(s.mockCtrl)

	s.mockUOW.EXPECT().
		GetRepository(uow.RepositoryName(repoargs.TransactionRepoName)).
		Return(s.mockTransRepo, nil).AnyTimes()
	s.mockUOW.EXPECT().
		GetRepository(uow.RepositoryName(repoargs.UserRepoName)).
		Return(s.mockUserRepo, nil).AnyTimes()

	var err error
	s.service, err = NewTransactionService(s.mockUOW)
	s.Require().NoError(err)
}

func (s *TransactionServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *TransactionServiceTestSuite) TestGetUserBalance() {
	received := decimal.NewFromInt(150) // всего зачислений
	sent := decimal.NewFromInt(20)      // ушло переводами

	expected := &UserBalance{
		UserID:   123,
		Current:  received.Sub(sent),
		Received: received,
		Sent:     sent,
	}

	s.mockUserRepo.EXPECT().
		FindByID(gomock.Any(), expected.UserID).
		Return(&domain.User{ID: expected.UserID, Balance: expected.Current}, nil)
	s.mockTransRepo.EXPECT().
		SumByUserID(gomock.Any(), expected.UserID).
		Return(&repoargs.BalanceAggregation{
			ReceivedAmount: received,
			SentAmount:     sent,
		}, nil)

	balance, err := s.service.GetUserBalance(s.T().Context(), expected.UserID)
	s.Require().NoError(err)

	s.Equal(expected.Current, balance.Current)
	s.Equal(expected.Received, balance.Received)
	s.Equal(expected.Sent, balance.Sent)
	// Баланс из строки юзера сходится с агрегатами журнала.
	s.True(balance.Current.Equal(balance.Received.Sub(balance.Sent)))
}

func (s *TransactionServiceTestSuite) TestGetUserBalance_UnknownUser() {
	s.mockUserRepo.EXPECT().
		FindByID(gomock.Any(), int64(404)).
		Return(nil, domain.ErrRecordNotFound)

	_, err := s.service.GetUserBalance(s.T().Context(), 404)
	s.Require().ErrorIs(err, domain.ErrRecordNotFound)
}

func (s *TransactionServiceTestSuite) TestGetByUserID() {
	userID := int64(123)
	senderID := int64(10)
	transactions := []domain.Transaction{
		{
			ID:         2,
			CreatedAt:  time.Now(),
			Kind:       domain.KindTransfer,
			SenderID:   &userID,
			ReceiverID: &senderID,
			Points:     decimal.NewFromInt(5),
		},
		{
			ID:         1,
			CreatedAt:  time.Now().Add(-time.Hour),
			Kind:       domain.KindAirdrop,
			SenderID:   &senderID,
			ReceiverID: &userID,
			Points:     decimal.NewFromInt(100),
		},
	}

	s.mockTransRepo.EXPECT().
		GetByUserID(gomock.Any(), userID).
		Return(transactions, nil)

	got, err := s.service.GetByUserID(s.T().Context(), userID)
	s.Require().NoError(err)
	s.Equal(transactions, got)
}
