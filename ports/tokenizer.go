package ports

import "github.com/vu-thanh-do/blockchain-todu/core"

// Tokenizer issues and validates session tokens
type Tokenizer interface {
	Issue(principalID string) (core.Session, error)
	Validate(token string) (principalID string, err error)
}
