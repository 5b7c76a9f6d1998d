package service

import (
	"fmt"

	"github.com/fsdevblog/groph-points/pkg/uow"
)

type AppServices struct {
	UserService        *UserService
	LedgerService      *LedgerService
	TransactionService *TransactionService
}

type FactoryArgs struct {
	JWTSecret []byte
	Hasher    PasswordHasher
	QRSigner  QRSigner
	Nonces    NonceStore
}

func Factory(unitOfWork uow.UOW, args FactoryArgs) (*AppServices, error) {
	userService, userServiceErr := NewUserService(unitOfWork, args.JWTSecret, args.Hasher)
	if userServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", userServiceErr.Error())
	}

	ledgerService, ledgerServiceErr := NewLedgerService(unitOfWork, args.QRSigner, args.Nonces)
	if ledgerServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", ledgerServiceErr.Error())
	}

	transactionService, transactionServiceErr := NewTransactionService(unitOfWork)
	if transactionServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", transactionServiceErr.Error())
	}

	return &AppServices{
		UserService:        userService,
		LedgerService:      ledgerService,
		TransactionService: transactionService,
	}, nil
}
