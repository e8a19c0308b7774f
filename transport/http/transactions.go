package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vu-thanh-do/blockchain-todu/service"
)

// TransactionHandlers serves the transaction log to authenticated principals
type TransactionHandlers struct {
	transactions *service.TransactionService
	log          zerolog.Logger
}

func NewTransactionHandlers(transactions *service.TransactionService, log zerolog.Logger) *TransactionHandlers {
	return &TransactionHandlers{transactions: transactions, log: log}
}

// Save records a transaction the caller sent
func (h *TransactionHandlers) Save(c *gin.Context) {
	var req struct {
		TxHash    string            `json:"txHash"`
		From      string            `json:"from"`
		To        string            `json:"to"`
		Value     string            `json:"value"`
		Type      string            `json:"type"`
		Status    string            `json:"status"`
		Metadata  map[string]string `json:"metadata"`
		Timestamp time.Time         `json:"timestamp"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	actor, _ := currentPrincipal(c)
	tx, err := h.transactions.Save(c.Request.Context(), actor, service.SaveTransactionInput{
		TxHash:    req.TxHash,
		From:      req.From,
		To:        req.To,
		Value:     req.Value,
		Type:      req.Type,
		Status:    req.Status,
		Metadata:  req.Metadata,
		Timestamp: req.Timestamp,
	})
	if err != nil {
		abortWithError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, ok(tx))
}

func (h *TransactionHandlers) Get(c *gin.Context) {
	tx, err := h.transactions.Get(c.Request.Context(), c.Param("txHash"))
	if err != nil {
		abortWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ok(tx))
}

// ListByAddress accepts optional type and status query filters
func (h *TransactionHandlers) ListByAddress(c *gin.Context) {
	result, err := h.transactions.ListByAddress(
		c.Request.Context(),
		c.Param("address"),
		c.Query("type"),
		c.Query("status"),
		queryPage(c),
	)
	if err != nil {
		abortWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ok(newTransactionsView(result)))
}

func (h *TransactionHandlers) ListByType(c *gin.Context) {
	result, err := h.transactions.ListByType(c.Request.Context(), c.Param("type"), c.Query("status"), queryPage(c))
	if err != nil {
		abortWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ok(newTransactionsView(result)))
}
