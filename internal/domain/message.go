package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// MessageType identifies the ISO 20022 variant a message body conforms to.
type MessageType string

const (
	MessageCreditTransfer MessageType = "pacs.008" // FI-to-FI customer credit transfer
	MessageNotification   MessageType = "camt.054" // debit/credit notification
	MessageStatement      MessageType = "camt.053" // account statement
)

// FinancialMessage is a persisted, schema-conformant XML document derived
// from one settlement fact, or, for statements, from a set of them.
// Bodies are immutable once created; a new statement supersedes, never
// edits, a prior one.
type FinancialMessage struct {
	ID           string
	SettlementID string   // empty for statements
	Type         MessageType
	UETR         string   // empty for statements
	References   []string // UETRs summarized by a statement
	Party        string   // statement subject party, empty otherwise
	Body         []byte
	Checksum     string
	CreatedAt    time.Time
}

// BodyChecksum computes the content checksum stored next to each body.
func BodyChecksum(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// VerifyChecksum reports whether the stored body still matches its checksum.
func (m *FinancialMessage) VerifyChecksum() bool {
	return BodyChecksum(m.Body) == m.Checksum
}
