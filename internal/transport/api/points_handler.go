package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type PointsHandler struct {
	ledgerSvs LedgerServicer
}

func NewPointsHandler(ledgerSvs LedgerServicer) *PointsHandler {
	return &PointsHandler{
		ledgerSvs: ledgerSvs,
	}
}

// abortWithLedgerError транслирует бизнес-ошибки начислений в http статусы.
// Неизвестная ошибка уходит в лог приватной и наружу отдается 500.
func abortWithLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		_ = c.AbortWithError(http.StatusForbidden, err).SetType(gin.ErrorTypePublic)
	case errors.Is(err, domain.ErrVoucherNotFound),
		errors.Is(err, domain.ErrRecipientNotFound):
		_ = c.AbortWithError(http.StatusNotFound, err).SetType(gin.ErrorTypePublic)
	case errors.Is(err, domain.ErrNotEnoughBalance):
		_ = c.AbortWithError(http.StatusPaymentRequired, err).SetType(gin.ErrorTypePublic)
	case errors.Is(err, domain.ErrVoucherAlreadyRedeemed),
		errors.Is(err, domain.ErrQRAlreadyRedeemed):
		_ = c.AbortWithError(http.StatusConflict, err).SetType(gin.ErrorTypePublic)
	case errors.Is(err, domain.ErrCodeExpired):
		_ = c.AbortWithError(http.StatusGone, err).SetType(gin.ErrorTypePublic)
	case errors.Is(err, domain.ErrInvalidSignature):
		_ = c.AbortWithError(http.StatusUnauthorized, err).SetType(gin.ErrorTypePublic)
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrSelfTransfer),
		errors.Is(err, domain.ErrMalformedPayload):
		_ = c.AbortWithError(http.StatusUnprocessableEntity, err).SetType(gin.ErrorTypePublic)
	default:
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
	}
}

type VoucherResponse struct {
	Code       string     `json:"code"`
	Points     float64    `json:"points"`
	Redeemed   bool       `json:"redeemed"`
	CreatedAt  time.Time  `json:"createdAt"`
	RedeemedAt *time.Time `json:"redeemedAt,omitempty"`
}

func newVoucherResponse(voucher *domain.Voucher) VoucherResponse {
	return VoucherResponse{
		Code:       voucher.Code,
		Points:     voucher.PointsValue.InexactFloat64(),
		Redeemed:   voucher.Redeemed,
		CreatedAt:  voucher.CreatedAt,
		RedeemedAt: voucher.RedeemedAt,
	}
}

type IssuePointsParams struct {
	Points      decimal.Decimal `json:"points"`
	Description string          `binding:"max=255" json:"description"`
}

// IssueVoucher POST RouteGroup + PointsVoucherRoute. Мерчант выпускает погашаемый код.
func (p *PointsHandler) IssueVoucher(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params IssuePointsParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	voucher, err := p.ledgerSvs.IssueVoucher(reqCtx, currentUserID, params.Points, params.Description)
	if err != nil {
		abortWithLedgerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"voucher": newVoucherResponse(voucher)})
}

// IssueQR POST RouteGroup + PointsQRRoute. Мерчант выпускает подписанный QR пейлоад.
func (p *PointsHandler) IssueQR(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params IssuePointsParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	token, err := p.ledgerSvs.IssueQR(reqCtx, currentUserID, params.Points, params.Description)
	if err != nil {
		abortWithLedgerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"qr": token})
}

type RedeemQRParams struct {
	QR string `binding:"required" json:"qr"`
}

// RedeemQR POST RouteGroup + PointsQRRedeemRoute. Кастомер предъявляет отсканированный
// пейлоад и получает баллы.
func (p *PointsHandler) RedeemQR(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params RedeemQRParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	transaction, err := p.ledgerSvs.RedeemQR(reqCtx, currentUserID, params.QR)
	if err != nil {
		abortWithLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": newTransactionResponse(transaction)})
}

type AirdropParams struct {
	Email       string          `binding:"required,email" json:"email"`
	Points      decimal.Decimal `json:"points"`
	Description string          `binding:"max=255"        json:"description"`
}

// Airdrop POST RouteGroup + PointsAirdropRoute. Мерчант зачисляет баллы кастомеру напрямую.
func (p *PointsHandler) Airdrop(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params AirdropParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	transaction, err := p.ledgerSvs.Airdrop(reqCtx, currentUserID, params.Email, params.Points, params.Description)
	if err != nil {
		abortWithLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": newTransactionResponse(transaction)})
}

type TransferParams struct {
	Email       string          `binding:"required,email" json:"email"`
	Points      decimal.Decimal `json:"points"`
	Description string          `binding:"max=255"        json:"description"`
}

// Transfer POST RouteGroup + PointsTransferRoute. Перевод баллов получателю по email.
func (p *PointsHandler) Transfer(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params TransferParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	transaction, err := p.ledgerSvs.Transfer(reqCtx, currentUserID, params.Email, params.Points, params.Description)
	if err != nil {
		abortWithLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": newTransactionResponse(transaction)})
}

type RedeemVoucherParams struct {
	Code string `binding:"required,min=1,max=50" json:"code"`
}

// RedeemVoucher POST RouteGroup + PointsRedeemRoute. Кастомер погашает код ваучера.
func (p *PointsHandler) RedeemVoucher(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params RedeemVoucherParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	transaction, err := p.ledgerSvs.RedeemVoucher(reqCtx, currentUserID, params.Code)
	if err != nil {
		abortWithLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": newTransactionResponse(transaction)})
}
