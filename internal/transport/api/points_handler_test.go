package api

import (
	"encoding/json"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/fsdevblog/groph-points/internal/logger"
	"github.com/fsdevblog/groph-points/internal/service/tokens"
	"github.com/fsdevblog/groph-points/internal/transport/api/mocks"
	"github.com/fsdevblog/groph-points/internal/transport/api/testutils"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PointsHandlerTestSuite struct {
	suite.Suite
	router            *gin.Engine
	mockLedgerService *mocks.MockLedgerServicer
	jwtSecret         []byte
	merchantToken     string
	customerToken     string
	merchantID        int64
	customerID        int64
}

func TestPointsHandlerSuite(t *testing.T) {
	suite.Run(t, new(PointsHandlerTestSuite))
}

func (s *PointsHandlerTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())
	defer mockCtrl.Finish()

	s.mockLedgerService = mocks.NewMockLedgerServicer(mockCtrl)
	s.jwtSecret = []byte("super secret key")
	s.merchantID = 10
	s.customerID = 20

	var tokenErr error
	s.merchantToken, tokenErr = tokens.GenerateUserJWT(s.merchantID, domain.RoleMerchant, time.Hour, s.jwtSecret)
	s.Require().NoError(tokenErr)
	s.customerToken, tokenErr = tokens.GenerateUserJWT(s.customerID, domain.RoleCustomer, time.Hour, s.jwtSecret)
	s.Require().NoError(tokenErr)

	s.router = New(RouterArgs{
		Logger:        logger.New(os.Stdout),
		LedgerService: s.mockLedgerService,
		JWTSecretKey:  s.jwtSecret,
	})
}

func (s *PointsHandlerTestSuite) TestIssueVoucher() {
	points := decimal.NewFromInt(50)
	voucher := &domain.Voucher{
		ID:          1,
		CreatedAt:   time.Now(),
		Code:        "AB12CD34",
		MerchantID:  s.merchantID,
		PointsValue: points,
	}

	s.mockLedgerService.EXPECT().
		IssueVoucher(gomock.Any(), s.merchantID, points, "welcome").
		Return(voucher, nil)
	// Кастомеру операция запрещена.
	s.mockLedgerService.EXPECT().
		IssueVoucher(gomock.Any(), s.customerID, points, "welcome").
		Return(nil, domain.ErrUnauthorized)

	cases := []struct {
		name       string
		jwtToken   string
		wantStatus int
	}{
		{name: "merchant ok", jwtToken: s.merchantToken, wantStatus: http.StatusCreated},
		{name: "customer forbidden", jwtToken: s.customerToken, wantStatus: http.StatusForbidden},
		{name: "not authorized", wantStatus: http.StatusUnauthorized},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			response, err := testutils.MakeJSONRequest(testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + PointsVoucherRoute,
			}, gin.H{"points": points, "description": "welcome"}, testutils.WithBearer(t.jwtToken))
			s.Require().NoError(err)
			defer response.Body.Close() //nolint:errcheck

			s.Equal(t.wantStatus, response.StatusCode)

			if t.wantStatus == http.StatusCreated {
				var body struct {
					Voucher VoucherResponse `json:"voucher"`
				}
				s.Require().NoError(json.NewDecoder(response.Body).Decode(&body))
				s.Equal(voucher.Code, body.Voucher.Code)
				s.InDelta(points.InexactFloat64(), body.Voucher.Points, 0.0001)
			}
		})
	}
}

func (s *PointsHandlerTestSuite) TestIssueQR() {
	points := decimal.NewFromInt(25)

	s.mockLedgerService.EXPECT().
		IssueQR(gomock.Any(), s.merchantID, points, "coffee").
		Return("signed.qr.token", nil)

	response, err := testutils.MakeJSONRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    RouteGroup + PointsQRRoute,
	}, gin.H{"points": points, "description": "coffee"}, testutils.WithBearer(s.merchantToken))
	s.Require().NoError(err)
	defer response.Body.Close() //nolint:errcheck

	s.Equal(http.StatusCreated, response.StatusCode)

	var body struct {
		QR string `json:"qr"`
	}
	s.Require().NoError(json.NewDecoder(response.Body).Decode(&body))
	s.Equal("signed.qr.token", body.QR)
}

func (s *PointsHandlerTestSuite) TestRedeemQR() {
	receiverID := s.customerID
	transaction := &domain.Transaction{
		ID:         1,
		CreatedAt:  time.Now(),
		Kind:       domain.KindQRIssue,
		ReceiverID: &receiverID,
		Points:     decimal.NewFromInt(25),
	}

	s.mockLedgerService.EXPECT().
		RedeemQR(gomock.Any(), s.customerID, "valid.token").
		Return(transaction, nil)
	s.mockLedgerService.EXPECT().
		RedeemQR(gomock.Any(), s.customerID, "expired.token").
		Return(nil, domain.ErrCodeExpired)
	s.mockLedgerService.EXPECT().
		RedeemQR(gomock.Any(), s.customerID, "forged.token").
		Return(nil, domain.ErrInvalidSignature)
	s.mockLedgerService.EXPECT().
		RedeemQR(gomock.Any(), s.customerID, "replayed.token").
		Return(nil, domain.ErrQRAlreadyRedeemed)
	s.mockLedgerService.EXPECT().
		RedeemQR(gomock.Any(), s.customerID, "garbage.token").
		Return(nil, domain.ErrMalformedPayload)

	cases := []struct {
		name       string
		qr         string
		wantStatus int
	}{
		{name: "ok", qr: "valid.token", wantStatus: http.StatusOK},
		{name: "expired", qr: "expired.token", wantStatus: http.StatusGone},
		{name: "bad signature", qr: "forged.token", wantStatus: http.StatusUnauthorized},
		{name: "replayed", qr: "replayed.token", wantStatus: http.StatusConflict},
		{name: "malformed", qr: "garbage.token", wantStatus: http.StatusUnprocessableEntity},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			response, err := testutils.MakeJSONRequest(testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + PointsQRRedeemRoute,
			}, gin.H{"qr": t.qr}, testutils.WithBearer(s.customerToken))
			s.Require().NoError(err)
			defer response.Body.Close() //nolint:errcheck

			s.Equal(t.wantStatus, response.StatusCode)
		})
	}
}

func (s *PointsHandlerTestSuite) TestAirdrop() {
	points := decimal.NewFromInt(100)

	s.mockLedgerService.EXPECT().
		Airdrop(gomock.Any(), s.merchantID, "customer@example.com", points, "promo").
		Return(&domain.Transaction{ID: 1, Kind: domain.KindAirdrop, Points: points}, nil)
	s.mockLedgerService.EXPECT().
		Airdrop(gomock.Any(), s.merchantID, "missing@example.com", points, "promo").
		Return(nil, domain.ErrRecipientNotFound)

	cases := []struct {
		name       string
		email      string
		wantStatus int
	}{
		{name: "ok", email: "customer@example.com", wantStatus: http.StatusOK},
		{name: "unknown recipient", email: "missing@example.com", wantStatus: http.StatusNotFound},
		{name: "invalid email", email: "not-an-email", wantStatus: http.StatusBadRequest},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			response, err := testutils.MakeJSONRequest(testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + PointsAirdropRoute,
			}, gin.H{"email": t.email, "points": points, "description": "promo"},
				testutils.WithBearer(s.merchantToken))
			s.Require().NoError(err)
			defer response.Body.Close() //nolint:errcheck

			s.Equal(t.wantStatus, response.StatusCode)
		})
	}
}

func (s *PointsHandlerTestSuite) TestTransfer() {
	points := decimal.NewFromInt(30)

	s.mockLedgerService.EXPECT().
		Transfer(gomock.Any(), s.customerID, "friend@example.com", points, "").
		Return(&domain.Transaction{ID: 1, Kind: domain.KindTransfer, Points: points}, nil)
	s.mockLedgerService.EXPECT().
		Transfer(gomock.Any(), s.customerID, "rich@example.com", points, "").
		Return(nil, domain.ErrNotEnoughBalance)
	s.mockLedgerService.EXPECT().
		Transfer(gomock.Any(), s.customerID, "customer@example.com", points, "").
		Return(nil, domain.ErrSelfTransfer)

	cases := []struct {
		name       string
		email      string
		wantStatus int
	}{
		{name: "ok", email: "friend@example.com", wantStatus: http.StatusOK},
		{name: "not enough balance", email: "rich@example.com", wantStatus: http.StatusPaymentRequired},
		{name: "self transfer", email: "customer@example.com", wantStatus: http.StatusUnprocessableEntity},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			response, err := testutils.MakeJSONRequest(testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + PointsTransferRoute,
			}, gin.H{"email": t.email, "points": points}, testutils.WithBearer(s.customerToken))
			s.Require().NoError(err)
			defer response.Body.Close() //nolint:errcheck

			s.Equal(t.wantStatus, response.StatusCode)
		})
	}
}

func (s *PointsHandlerTestSuite) TestRedeemVoucher() {
	points := decimal.NewFromInt(50)

	s.mockLedgerService.EXPECT().
		RedeemVoucher(gomock.Any(), s.customerID, "AB12CD34").
		Return(&domain.Transaction{ID: 1, Kind: domain.KindRedemption, Points: points}, nil)
	s.mockLedgerService.EXPECT().
		RedeemVoucher(gomock.Any(), s.customerID, "USED0000").
		Return(nil, domain.ErrVoucherAlreadyRedeemed)
	s.mockLedgerService.EXPECT().
		RedeemVoucher(gomock.Any(), s.customerID, "MISSING0").
		Return(nil, domain.ErrVoucherNotFound)

	cases := []struct {
		name       string
		code       string
		wantStatus int
	}{
		{name: "ok", code: "AB12CD34", wantStatus: http.StatusOK},
		{name: "already redeemed", code: "USED0000", wantStatus: http.StatusConflict},
		{name: "not found", code: "MISSING0", wantStatus: http.StatusNotFound},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			response, err := testutils.MakeJSONRequest(testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + PointsRedeemRoute,
			}, gin.H{"code": t.code}, testutils.WithBearer(s.customerToken))
			s.Require().NoError(err)
			defer response.Body.Close() //nolint:errcheck

			s.Equal(t.wantStatus, response.StatusCode)
		})
	}
}

func (s *PointsHandlerTestSuite) TestListVouchers() {
	vouchers := []domain.Voucher{
		{ID: 1, Code: "AB12CD34", MerchantID: s.merchantID, PointsValue: decimal.NewFromInt(50)},
	}

	s.mockLedgerService.EXPECT().
		ListVouchers(gomock.Any(), s.merchantID).
		Return(vouchers, nil)
	s.mockLedgerService.EXPECT().
		ListVouchers(gomock.Any(), s.customerID).
		Return(nil, domain.ErrUnauthorized)

	cases := []struct {
		name       string
		jwtToken   string
		wantStatus int
	}{
		{name: "merchant ok", jwtToken: s.merchantToken, wantStatus: http.StatusOK},
		{name: "customer forbidden", jwtToken: s.customerToken, wantStatus: http.StatusForbidden},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			response, err := testutils.MakeRequest(testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodGet,
				URL:    RouteGroup + VouchersRoute,
			}, testutils.WithBearer(t.jwtToken))
			s.Require().NoError(err)
			defer response.Body.Close() //nolint:errcheck

			s.Equal(t.wantStatus, response.StatusCode)
		})
	}
}
