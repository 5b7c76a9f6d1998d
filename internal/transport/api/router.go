package api

import (
	"time"

	"github.com/fsdevblog/groph-points/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	DefaultServiceTimeout = 3 * time.Second
)

const (
	RouteGroup          = "/api"
	RegisterRoute       = "/user/register"
	LoginRoute          = "/user/login"
	BalanceRoute        = "/user/balance"
	TransactionsRoute   = "/user/transactions"
	VouchersRoute       = "/user/vouchers"
	PointsVoucherRoute  = "/points/voucher"
	PointsQRRoute       = "/points/qr"
	PointsQRRedeemRoute = "/points/qr/redeem"
	PointsAirdropRoute  = "/points/airdrop"
	PointsTransferRoute = "/points/transfer"
	PointsRedeemRoute   = "/points/redeem"
)

type RouterArgs struct {
	Logger             *logrus.Logger
	UserService        UserServicer
	LedgerService      LedgerServicer
	TransactionService TransactionServicer
	JWTSecretKey       []byte
}

func New(args RouterArgs) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())

	authHandler := NewAuthHandler(args.UserService)
	pointsHandler := NewPointsHandler(args.LedgerService)
	transactionsHandler := NewTransactionsHandler(args.TransactionService)
	vouchersHandler := NewVouchersHandler(args.LedgerService)

	api := r.Group(RouteGroup)

	api.POST(RegisterRoute, middlewares.NonAuthRequired(args.JWTSecretKey), authHandler.Register)
	api.POST(LoginRoute, middlewares.NonAuthRequired(args.JWTSecretKey), authHandler.Login)

	api.Use(middlewares.AuthRequired(args.JWTSecretKey))
	// ниже все роуты группы требуют авторизованного пользователя.
	api.GET(BalanceRoute, transactionsHandler.Balance)
	api.GET(TransactionsRoute, transactionsHandler.Index)
	api.GET(VouchersRoute, vouchersHandler.Index)

	api.POST(PointsVoucherRoute, pointsHandler.IssueVoucher)
	api.POST(PointsQRRoute, pointsHandler.IssueQR)
	api.POST(PointsQRRedeemRoute, pointsHandler.RedeemQR)
	api.POST(PointsAirdropRoute, pointsHandler.Airdrop)
	api.POST(PointsTransferRoute, pointsHandler.Transfer)
	api.POST(PointsRedeemRoute, pointsHandler.RedeemVoucher)
	return r
}
