package api

import (
	"net/http"
	"os"
	"testing"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/fsdevblog/groph-points/internal/logger"
	"github.com/fsdevblog/groph-points/internal/service"
	"github.com/fsdevblog/groph-points/internal/transport/api/mocks"
	"github.com/fsdevblog/groph-points/internal/transport/api/testutils"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

type AuthHandlerTestSuite struct {
	suite.Suite
	router          *gin.Engine
	mockUserService *mocks.MockUserServicer
	jwtSecret       []byte
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}

func (s *AuthHandlerTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())
	defer mockCtrl.Finish()

	s.mockUserService = mocks.NewMockUserServicer(mockCtrl)
	s.jwtSecret = []byte("super secret key")

	s.router = New(RouterArgs{
		Logger:       logger.New(os.Stdout),
		UserService:  s.mockUserService,
		JWTSecretKey: s.jwtSecret,
	})
}

func (s *AuthHandlerTestSuite) TestRegister() {
	validCustomer := gin.H{
		"login":    "customer",
		"email":    "customer@example.com",
		"password": "secret123",
		"role":     "CUSTOMER",
	}
	validMerchant := gin.H{
		"login":        "merchant",
		"email":        "merchant@example.com",
		"password":     "secret123",
		"role":         "MERCHANT",
		"businessName": "Coffee Corner",
		"address":      "12 Main St",
	}
	// Мерчант без названия бизнеса не проходит валидацию.
	merchantNoBusiness := gin.H{
		"login":    "merchant2",
		"email":    "merchant2@example.com",
		"password": "secret123",
		"role":     "MERCHANT",
	}
	badRole := gin.H{
		"login":    "someone",
		"email":    "someone@example.com",
		"password": "secret123",
		"role":     "ADMIN",
	}
	duplicate := gin.H{
		"login":    "taken",
		"email":    "taken@example.com",
		"password": "secret123",
		"role":     "CUSTOMER",
	}

	s.mockUserService.EXPECT().
		Register(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, args service.RegisterUserArgs) (*domain.User, string, error) {
			switch args.Username {
			case "taken":
				return nil, "", domain.ErrDuplicateKey
			default:
				return &domain.User{ID: 1, Username: args.Username, Email: args.Email, Role: args.Role}, "jwt-token", nil
			}
		}).AnyTimes()

	cases := []struct {
		name       string
		payload    gin.H
		wantStatus int
		wantToken  bool
	}{
		{name: "customer ok", payload: validCustomer, wantStatus: http.StatusOK, wantToken: true},
		{name: "merchant ok", payload: validMerchant, wantStatus: http.StatusOK, wantToken: true},
		{name: "merchant without business name", payload: merchantNoBusiness, wantStatus: http.StatusUnprocessableEntity},
		{name: "unknown role", payload: badRole, wantStatus: http.StatusUnprocessableEntity},
		{name: "duplicate", payload: duplicate, wantStatus: http.StatusConflict},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			response, err := testutils.MakeJSONRequest(testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + RegisterRoute,
			}, t.payload)
			s.Require().NoError(err)
			defer response.Body.Close() //nolint:errcheck

			s.Equal(t.wantStatus, response.StatusCode)
			if t.wantToken {
				s.Equal("Bearer jwt-token", response.Header.Get("Authorization"))
			}
		})
	}
}

func (s *AuthHandlerTestSuite) TestLogin() {
	s.mockUserService.EXPECT().
		Login(gomock.Any(), service.LoginUserArgs{Username: "customer", Password: "secret123"}).
		Return(&domain.User{ID: 1, Username: "customer", Role: domain.RoleCustomer}, "jwt-token", nil)
	s.mockUserService.EXPECT().
		Login(gomock.Any(), service.LoginUserArgs{Username: "customer", Password: "wrongpass"}).
		Return(nil, "", domain.ErrPasswordMissMatch)
	s.mockUserService.EXPECT().
		Login(gomock.Any(), service.LoginUserArgs{Username: "nobody", Password: "secret123"}).
		Return(nil, "", domain.ErrRecordNotFound)

	cases := []struct {
		name       string
		login      string
		password   string
		wantStatus int
	}{
		{name: "ok", login: "customer", password: "secret123", wantStatus: http.StatusOK},
		{name: "wrong password", login: "customer", password: "wrongpass", wantStatus: http.StatusUnauthorized},
		{name: "unknown login", login: "nobody", password: "secret123", wantStatus: http.StatusUnauthorized},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			response, err := testutils.MakeJSONRequest(testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + LoginRoute,
			}, gin.H{"login": t.login, "password": t.password})
			s.Require().NoError(err)
			defer response.Body.Close() //nolint:errcheck

			s.Equal(t.wantStatus, response.StatusCode)
			if t.wantStatus == http.StatusOK {
				s.Equal("Bearer jwt-token", response.Header.Get("Authorization"))
			}
		})
	}
}
