package http

import (
	"time"

	"github.com/vu-thanh-do/blockchain-todu/core"
	"github.com/vu-thanh-do/blockchain-todu/service"
)

type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Count   *int        `json:"count,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func ok(data interface{}) envelope {
	return envelope{Success: true, Data: data}
}

// sessionView is returned by every login variant
type sessionView struct {
	ID            string    `json:"_id"`
	WalletAddress string    `json:"walletAddress"`
	Username      string    `json:"username"`
	Role          core.Role `json:"role"`
	Token         string    `json:"token"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// registrationView is the only response that ever carries a private key
type registrationView struct {
	ID            string    `json:"_id"`
	WalletAddress string    `json:"walletAddress"`
	PrivateKey    string    `json:"privateKey"`
	Username      string    `json:"username"`
	Role          core.Role `json:"role"`
	Token         string    `json:"token,omitempty"`
}

type principalView struct {
	ID            string      `json:"_id"`
	WalletAddress string      `json:"walletAddress"`
	Username      string      `json:"username"`
	Role          core.Role   `json:"role"`
	Status        core.Status `json:"status"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

type nonceView struct {
	Nonce     string    `json:"nonce"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type balanceView struct {
	Address   string `json:"address"`
	Balance   string `json:"balance"`
	Available bool   `json:"available"`
}

type transactionsView struct {
	Transactions []core.Transaction `json:"transactions"`
	Total        int                `json:"total"`
	Page         int                `json:"page"`
	Limit        int                `json:"limit"`
	Pages        int                `json:"pages"`
}

func newTransactionsView(result service.TransactionPage) transactionsView {
	items := result.Items
	if items == nil {
		items = []core.Transaction{}
	}
	return transactionsView{
		Transactions: items,
		Total:        result.Total,
		Page:         result.Page.Number,
		Limit:        result.Page.Limit,
		Pages:        (result.Total + result.Page.Limit - 1) / result.Page.Limit,
	}
}

func newSessionView(res service.LoginResult) sessionView {
	return sessionView{
		ID:            res.Principal.ID,
		WalletAddress: res.Principal.Address,
		Username:      res.Principal.Username,
		Role:          res.Principal.Role,
		Token:         res.Session.Token,
		ExpiresAt:     res.Session.ExpiresAt,
	}
}

func newPrincipalView(p core.Principal) principalView {
	return principalView{
		ID:            p.ID,
		WalletAddress: p.Address,
		Username:      p.Username,
		Role:          p.Role,
		Status:        p.Status,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
