package api

import (
	"encoding/json"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/fsdevblog/groph-points/internal/logger"
	"github.com/fsdevblog/groph-points/internal/service"
	"github.com/fsdevblog/groph-points/internal/service/tokens"
	"github.com/fsdevblog/groph-points/internal/transport/api/mocks"
	"github.com/fsdevblog/groph-points/internal/transport/api/testutils"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type TransactionsHandlerTestSuite struct {
	suite.Suite
	router                 *gin.Engine
	mockTransactionService *mocks.MockTransactionServicer
	jwtSecret              []byte
	userID                 int64
	userToken              string
}

func TestTransactionsHandlerSuite(t *testing.T) {
	suite.Run(t, new(TransactionsHandlerTestSuite))
}

func (s *TransactionsHandlerTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())
	defer mockCtrl.Finish()

	s.mockTransactionService = mocks.NewMockTransactionServicer(mockCtrl)
	s.jwtSecret = []byte("super secret key")
	s.userID = 20

	var tokenErr error
	s.userToken, tokenErr = tokens.GenerateUserJWT(s.userID, domain.RoleCustomer, time.Hour, s.jwtSecret)
	s.Require().NoError(tokenErr)

	s.router = New(RouterArgs{
		Logger:             logger.New(os.Stdout),
		TransactionService: s.mockTransactionService,
		JWTSecretKey:       s.jwtSecret,
	})
}

func (s *TransactionsHandlerTestSuite) TestBalance() {
	s.mockTransactionService.EXPECT().
		GetUserBalance(gomock.Any(), s.userID).
		Return(&service.UserBalance{
			UserID:   s.userID,
			Current:  decimal.NewFromInt(130),
			Received: decimal.NewFromInt(150),
			Sent:     decimal.NewFromInt(20),
		}, nil)

	response, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    RouteGroup + BalanceRoute,
	}, testutils.WithBearer(s.userToken))
	s.Require().NoError(err)
	defer response.Body.Close() //nolint:errcheck

	s.Equal(http.StatusOK, response.StatusCode)

	var body BalanceResponse
	s.Require().NoError(json.NewDecoder(response.Body).Decode(&body))
	s.InDelta(130, body.Current, 0.0001)
	s.InDelta(150, body.Received, 0.0001)
	s.InDelta(20, body.Sent, 0.0001)
}

func (s *TransactionsHandlerTestSuite) TestBalance_Unauthorized() {
	response, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    RouteGroup + BalanceRoute,
	})
	s.Require().NoError(err)
	defer response.Body.Close() //nolint:errcheck

	s.Equal(http.StatusUnauthorized, response.StatusCode)
}

func (s *TransactionsHandlerTestSuite) TestIndex() {
	senderID := int64(10)
	transactions := []domain.Transaction{
		{
			ID:         2,
			CreatedAt:  time.Now(),
			Kind:       domain.KindAirdrop,
			SenderID:   &senderID,
			ReceiverID: &s.userID,
			Points:     decimal.NewFromInt(100),
		},
		{
			ID:          1,
			CreatedAt:   time.Now().Add(-time.Hour),
			Kind:        domain.KindRedemption,
			SenderID:    &senderID,
			ReceiverID:  &s.userID,
			Points:      decimal.NewFromInt(50),
			VoucherCode: "AB12CD34",
		},
	}

	s.mockTransactionService.EXPECT().
		GetByUserID(gomock.Any(), s.userID).
		Return(transactions, nil)

	response, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    RouteGroup + TransactionsRoute,
	}, testutils.WithBearer(s.userToken))
	s.Require().NoError(err)
	defer response.Body.Close() //nolint:errcheck

	s.Equal(http.StatusOK, response.StatusCode)

	var body []TransactionResponse
	s.Require().NoError(json.NewDecoder(response.Body).Decode(&body))
	s.Require().Len(body, 2)
	s.Equal(domain.KindAirdrop, body[0].Kind)
	s.Equal("AB12CD34", body[1].VoucherCode)
}

func (s *TransactionsHandlerTestSuite) TestIndex_Empty() {
	s.mockTransactionService.EXPECT().
		GetByUserID(gomock.Any(), s.userID).
		Return(nil, nil)

	response, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    RouteGroup + TransactionsRoute,
	}, testutils.WithBearer(s.userToken))
	s.Require().NoError(err)
	defer response.Body.Close() //nolint:errcheck

	s.Equal(http.StatusNoContent, response.StatusCode)
}
