package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type VouchersHandler struct {
	ledgerSvs LedgerServicer
}

func NewVouchersHandler(ledgerSvs LedgerServicer) *VouchersHandler {
	return &VouchersHandler{
		ledgerSvs: ledgerSvs,
	}
}

// Index GET RouteGroup + VouchersRoute. Ваучеры текущего мерчанта, включая погашенные.
func (v *VouchersHandler) Index(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	vouchers, err := v.ledgerSvs.ListVouchers(reqCtx, currentUserID)
	if err != nil {
		abortWithLedgerError(c, err)
		return
	}

	if len(vouchers) == 0 {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}

	response := make([]VoucherResponse, len(vouchers))
	for i := range vouchers {
		response[i] = newVoucherResponse(&vouchers[i])
	}

	c.JSON(http.StatusOK, response)
}
