package service

import (
	"context"
	"testing"
	"time"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/fsdevblog/groph-points/internal/repository/repoargs"
	"github.com/fsdevblog/groph-points/internal/service/mocks"
	"github.com/fsdevblog/groph-points/internal/service/tokens"
	"github.com/fsdevblog/groph-points/pkg/uow"
	uowmocks "github.com/fsdevblog/groph-points/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

type UserServiceTestSuite struct {
	suite.Suite
	mockUOW      *uowmocks.MockUOW
	mockTX       *uowmocks.MockTX
	mockUserRepo *mocks.MockUserRepository
	mockPsswd    *mocks.MockPasswordHasher
	jwtSecret    []byte
	userService  *UserService
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

func (s *UserServiceTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(mockCtrl)
	s.mockUserRepo = mocks.NewMockUserRepository(mockCtrl)
	s.mockPsswd = mocks.NewMockPasswordHasher(mockCtrl)
	s.mockTX = uowmocks.NewMockTX(mockCtrl)

	s.jwtSecret = []byte("secret")

	// Мок получения репозитория из uow. Выполняется в инициализации сервиса.
	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.UserRepoName)).
		Return(s.mockUserRepo, nil).AnyTimes()

	// Инициализация сервиса.
	userService, servErr := NewUserService(s.mockUOW, s.jwtSecret, s.mockPsswd)
	s.Require().NoError(servErr)
	s.userService = userService
}

func (s *UserServiceTestSuite) TestLogin() {
	savedUserUsername := "test"
	// аргументы вызовов для кейсов ниже.
	argsOk := LoginUserArgs{
		Username: savedUserUsername,
		Password: "<PASSWORD>",
	}
	argsWrongUsername := LoginUserArgs{
		Username: "wrong",
		Password: "<PASSWORD>",
	}
	argsWrongPass := LoginUserArgs{
		Username: savedUserUsername,
		Password: "wrong pass",
	}

	validHashPassword := "hash ok"

	savedUser := domain.User{
		ID:                1,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
		Username:          savedUserUsername,
		Email:             "test@example.com",
		EncryptedPassword: validHashPassword,
		Role:              domain.RoleCustomer,
	}

	// Мок для сравнения пароля.
	s.mockPsswd.EXPECT().ComparePassword(argsOk.Password, validHashPassword).Return(true)
	s.mockPsswd.EXPECT().ComparePassword(argsWrongUsername.Password, validHashPassword).Times(0)
	s.mockPsswd.EXPECT().ComparePassword(argsWrongPass.Password, validHashPassword).Return(false)

	// Мок репозитория.
	s.mockUserRepo.EXPECT().
		FindByUsername(gomock.Any(), savedUserUsername).
		Return(&savedUser, nil).Times(2)

	s.mockUserRepo.EXPECT().
		FindByUsername(gomock.Any(), argsWrongUsername.Username).
		Return(nil, domain.ErrRecordNotFound)

	cases := []struct {
		name               string
		args               LoginUserArgs
		wantErr            error
		wantHashedPassword string
	}{
		{name: "ok", args: argsOk, wantErr: nil, wantHashedPassword: validHashPassword},
		{name: "wrong username", args: argsWrongUsername, wantErr: domain.ErrRecordNotFound},
		{name: "wrong password", args: argsWrongPass, wantErr: domain.ErrPasswordMissMatch},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			user, tokenStr, err := s.userService.Login(s.T().Context(), t.args)
			s.Require().ErrorIs(err, t.wantErr)

			if t.wantErr == nil {
				s.Equal(t.wantHashedPassword, user.EncryptedPassword)
				s.NotEmpty(tokenStr)

				token, tokenErr := tokens.ValidateUserJWT(tokenStr, s.jwtSecret)
				s.Require().NoError(tokenErr)
				claims := token.Claims.(*tokens.UserClaims) //nolint:errcheck
				s.Equal(claims.ID, savedUser.ID)
				s.Equal(claims.Role, savedUser.Role)
				s.NotNil(user)
			}
		})
	}
}

func (s *UserServiceTestSuite) TestRegister() {
	argsOk := RegisterUserArgs{
		Username: "validUser",
		Email:    "valid@example.com",
		Phone:    "+15550001122",
		Password: "<PASSWORD>",
		Role:     domain.RoleCustomer,
	}
	argsMerchant := RegisterUserArgs{
		Username:     "validMerchant",
		Email:        "merchant@example.com",
		Password:     "<PASSWORD>",
		Role:         domain.RoleMerchant,
		BusinessName: "Coffee Corner",
		Address:      "12 Main St",
	}
	argsDuplicateUsername := RegisterUserArgs{
		Username: "duplicateUser",
		Email:    "dup@example.com",
		Password: "<PASSWORD>",
		Role:     domain.RoleCustomer,
	}

	validHashedPassword := "hashedPassword"

	createdCustomer := domain.User{
		ID:                1,
		Username:          argsOk.Username,
		Email:             argsOk.Email,
		EncryptedPassword: validHashedPassword,
		Role:              domain.RoleCustomer,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	createdMerchant := domain.User{
		ID:                2,
		Username:          argsMerchant.Username,
		Email:             argsMerchant.Email,
		EncryptedPassword: validHashedPassword,
		Role:              domain.RoleMerchant,
		BusinessName:      argsMerchant.BusinessName,
		Address:           argsMerchant.Address,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}

	// Мок транзакции uow.
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.UserRepoName)).
		Return(s.mockUserRepo, nil).MinTimes(1)

	// Мок хеширования пароля.
	s.mockPsswd.EXPECT().HashPassword(gomock.Any()).Return(validHashedPassword, nil).Times(3)

	// Мок репозитория.
	s.mockUserRepo.EXPECT().
		CreateUser(gomock.Any(), gomock.Eq(repoargs.CreateUser{
			Username: argsOk.Username,
			Email:    argsOk.Email,
			Phone:    argsOk.Phone,
			Password: validHashedPassword,
			Role:     domain.RoleCustomer,
		})).
		Return(&createdCustomer, nil)

	s.mockUserRepo.EXPECT().
		CreateUser(gomock.Any(), gomock.Eq(repoargs.CreateUser{
			Username:     argsMerchant.Username,
			Email:        argsMerchant.Email,
			Password:     validHashedPassword,
			Role:         domain.RoleMerchant,
			BusinessName: argsMerchant.BusinessName,
			Address:      argsMerchant.Address,
		})).
		Return(&createdMerchant, nil)

	s.mockUserRepo.EXPECT().
		CreateUser(gomock.Any(), gomock.Eq(repoargs.CreateUser{
			Username: argsDuplicateUsername.Username,
			Email:    argsDuplicateUsername.Email,
			Password: validHashedPassword,
			Role:     domain.RoleCustomer,
		})).
		Return(nil, domain.ErrDuplicateKey)

	// Мок uow.
	s.mockUOW.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(ctx, s.mockTX)
		}).AnyTimes()

	cases := []struct {
		name      string
		args      RegisterUserArgs
		wantErr   error
		wantUser  *domain.User
		wantToken bool
	}{
		{
			name:      "customer ok",
			args:      argsOk,
			wantUser:  &createdCustomer,
			wantToken: true,
		},
		{
			name:      "merchant ok",
			args:      argsMerchant,
			wantUser:  &createdMerchant,
			wantToken: true,
		},
		{
			name:    "duplicate username",
			args:    argsDuplicateUsername,
			wantErr: domain.ErrDuplicateKey,
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			user, tokenStr, err := s.userService.Register(s.T().Context(), t.args)

			s.Require().ErrorIs(err, t.wantErr)
			s.Equal(t.wantUser, user)

			if t.wantToken {
				s.Require().NotEmpty(tokenStr)

				token, tokenErr := tokens.ValidateUserJWT(tokenStr, s.jwtSecret)
				s.Require().NoError(tokenErr)
				claims := token.Claims.(*tokens.UserClaims) //nolint:errcheck
				s.Equal(claims.ID, user.ID)
				s.Equal(claims.Role, user.Role)
			} else {
				s.Empty(tokenStr)
			}
		})
	}
}
