package model

import (
	"time"
)

// Token is a ledger entry for an issued verification token.
// Rows are kept after use so a replayed token can be told apart from an unknown one.
type Token struct {
	ID        string     `db:"id"`
	UserID    string     `db:"user_id"`
	Type      string     `db:"type"`
	Token     string     `db:"token"`
	UsedAt    *time.Time `db:"used_at"`
	CreatedAt time.Time  `db:"created_at"`
}

const (
	TokenTypeEmailVerify = "email_verify"
)

func (t *Token) IsUsed() bool {
	return t.UsedAt != nil
}
