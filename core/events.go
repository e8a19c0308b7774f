package core

import (
	"fmt"
	"strings"
	"time"
)

// AuthEventType names what happened to a principal.
type AuthEventType string

const (
	EventRegistered          AuthEventType = "register"
	EventSecretLogin         AuthEventType = "secret_login"
	EventSignatureLogin      AuthEventType = "signature_login"
	EventTrustedAddressLogin AuthEventType = "metamask_login"
	EventStatusChanged       AuthEventType = "status_change"
	EventPrincipalUpdated    AuthEventType = "user_update"
	EventPrincipalDeleted    AuthEventType = "user_delete"
)

// AuthEvent is published after a successful identity or session operation.
type AuthEvent struct {
	Type        AuthEventType `json:"type"`
	PrincipalID string        `json:"principal_id"`
	Address     string        `json:"address"`
	Username    string        `json:"username"`
	ActorID     string        `json:"actor_id,omitempty"`
	Signature   string        `json:"signature,omitempty"`
	OccurredAt  time.Time     `json:"occurred_at"`
}

// TxStatus mirrors the audit table's status column.
type TxStatus string

const (
	TxSuccess TxStatus = "success"
	TxPending TxStatus = "pending"
	TxFailed  TxStatus = "failed"
)

// ParseTxStatus returns the status named by s. An empty string yields pending.
func ParseTxStatus(s string) (TxStatus, error) {
	switch TxStatus(strings.TrimSpace(s)) {
	case "", TxPending:
		return TxPending, nil
	case TxSuccess:
		return TxSuccess, nil
	case TxFailed:
		return TxFailed, nil
	default:
		return "", ErrInvalidTxStatus
	}
}

// Transaction is one row of the audit log. Despite the name nothing here touches a chain.
type Transaction struct {
	ID        string            `json:"_id"`
	TxHash    string            `json:"txHash"`
	From      string            `json:"from"`
	To        string            `json:"to"`
	Value     string            `json:"value"`
	Type      AuthEventType     `json:"type"`
	Status    TxStatus          `json:"status"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// TransactionFilter narrows a transaction listing. Zero fields match everything.
type TransactionFilter struct {
	// Address matches either side of the transaction, ignoring case
	Address string
	Type    AuthEventType
	Status  TxStatus
}

// Matches reports whether tx passes the filter.
func (f TransactionFilter) Matches(tx Transaction) bool {
	if f.Address != "" && !strings.EqualFold(tx.From, f.Address) && !strings.EqualFold(tx.To, f.Address) {
		return false
	}
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	if f.Status != "" && tx.Status != f.Status {
		return false
	}
	return true
}

// TransactionFromEvent builds the audit row recorded for an auth event.
func TransactionFromEvent(id string, e AuthEvent) Transaction {
	meta := map[string]string{
		"userId":        e.PrincipalID,
		"username":      e.Username,
		"walletAddress": e.Address,
	}
	if e.ActorID != "" {
		meta["actorId"] = e.ActorID
	}
	if e.Signature != "" {
		meta["signature"] = e.Signature
	}
	return Transaction{
		ID:        id,
		TxHash:    fmt.Sprintf("%s_%d_%s", e.Type, e.OccurredAt.UnixNano(), e.PrincipalID),
		From:      e.Address,
		To:        "system",
		Value:     "0",
		Type:      e.Type,
		Status:    TxSuccess,
		Metadata:  meta,
		Timestamp: e.OccurredAt,
	}
}

// Page selects a window of a listing. Pages are 1-based.
type Page struct {
	Number int
	Limit  int
}

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100

	// MaxPageOffset bounds Offset so it stays valid as a SQL OFFSET on every platform
	MaxPageOffset = 1 << 30
)

// Normalize applies defaults and caps.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Number-1 > MaxPageOffset/p.Limit {
		p.Number = MaxPageOffset/p.Limit + 1
	}
	return p
}

// Offset is the number of rows to skip.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}
