package models

import "time"

// AuditStatus is the outcome of an attempted posting
type AuditStatus string

const (
	AuditStatusCommitted AuditStatus = "COMMITTED"
	AuditStatusFailed    AuditStatus = "FAILED"
)

// PostingAudit is a durable record of every attempted ledger posting, written
// whether or not the posting committed. Failed rows keep the error message so
// operators can trace what a user tried to do when a posting was rejected.
type PostingAudit struct {
	ID            int             `json:"id"`
	CustomerID    int             `json:"customer_id"`
	Type          TransactionType `json:"type"`
	Amount        float64         `json:"amount"`
	Currency      Currency        `json:"currency"`
	Status        AuditStatus     `json:"status"`
	Error         string          `json:"error,omitempty"`
	ActorUserID   int             `json:"actor_user_id"`
	TransactionID *int            `json:"transaction_id"`
	CreatedAt     time.Time       `json:"created_at"`
}
