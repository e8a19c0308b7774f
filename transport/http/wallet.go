package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vu-thanh-do/blockchain-todu/core"
	"github.com/vu-thanh-do/blockchain-todu/service"
)

type WalletHandlers struct {
	wallet *service.WalletService
	log    zerolog.Logger
}

func NewWalletHandlers(wallet *service.WalletService, log zerolog.Logger) *WalletHandlers {
	return &WalletHandlers{wallet: wallet, log: log}
}

// Balance never fails on upstream errors; available=false is reported instead
func (h *WalletHandlers) Balance(c *gin.Context) {
	principal, _ := currentPrincipal(c)
	balance := h.wallet.Balance(c.Request.Context(), principal)

	c.JSON(http.StatusOK, ok(balanceView{
		Address:   balance.Address,
		Balance:   balance.Amount.String(),
		Available: balance.Available,
	}))
}

func (h *WalletHandlers) Transactions(c *gin.Context) {
	principal, _ := currentPrincipal(c)
	result, err := h.wallet.Transactions(c.Request.Context(), principal, queryPage(c))
	if err != nil {
		abortWithError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, ok(newTransactionsView(result)))
}

func queryPage(c *gin.Context) core.Page {
	return core.Page{
		Number: queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
	}
}

// queryInt returns 0 for missing or malformed values so that paging falls back to defaults
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}
