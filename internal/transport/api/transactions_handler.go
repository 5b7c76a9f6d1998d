package api

import (
	"context"
	"net/http"
	"time"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/gin-gonic/gin"
)

type TransactionsHandler struct {
	svs TransactionServicer
}

func NewTransactionsHandler(svs TransactionServicer) *TransactionsHandler {
	return &TransactionsHandler{
		svs: svs,
	}
}

type BalanceResponse struct {
	Current  float64 `json:"current"`
	Received float64 `json:"received"`
	Sent     float64 `json:"sent"`
}

// Balance GET RouteGroup + BalanceRoute. Текущий баланс и агрегаты журнала.
func (t *TransactionsHandler) Balance(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	balance, err := t.svs.GetUserBalance(reqCtx, currentUserID)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, &BalanceResponse{
		Current:  balance.Current.InexactFloat64(),
		Received: balance.Received.InexactFloat64(),
		Sent:     balance.Sent.InexactFloat64(),
	})
}

type TransactionResponse struct {
	ID          int64                  `json:"ID"`
	Kind        domain.TransactionKind `json:"kind"`
	SenderID    *int64                 `json:"senderID,omitempty"`
	ReceiverID  *int64                 `json:"receiverID,omitempty"`
	Points      float64                `json:"points"`
	Description string                 `json:"description,omitempty"`
	VoucherCode string                 `json:"voucherCode,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
}

func newTransactionResponse(transaction *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          transaction.ID,
		Kind:        transaction.Kind,
		SenderID:    transaction.SenderID,
		ReceiverID:  transaction.ReceiverID,
		Points:      transaction.Points.InexactFloat64(),
		Description: transaction.Description,
		VoucherCode: transaction.VoucherCode,
		CreatedAt:   transaction.CreatedAt,
	}
}

// Index GET RouteGroup + TransactionsRoute. История операций юзера, новые первыми.
func (t *TransactionsHandler) Index(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	transactions, err := t.svs.GetByUserID(reqCtx, currentUserID)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	if len(transactions) == 0 {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}

	response := make([]TransactionResponse, len(transactions))
	for i := range transactions {
		response[i] = newTransactionResponse(&transactions[i])
	}

	c.JSON(http.StatusOK, response)
}
