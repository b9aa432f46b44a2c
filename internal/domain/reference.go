package domain

import (
	"regexp"
	"time"
)

// TransactionReference correlates every message describing one settlement.
// The UETR is a globally unique end-to-end reference in canonical
// 8-4-4-4-12 form; the sequence is a monotonic local tie-break for ordering
// within an export batch. References are never reused or mutated.
type TransactionReference struct {
	UETR       string
	Sequence   uint64
	AssignedAt time.Time
}

var uetrRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ValidUETR reports whether s is a canonical 36-character reference.
func ValidUETR(s string) bool {
	return uetrRegex.MatchString(s)
}

// RecordedSettlement pairs a persisted fact with its assigned reference.
type RecordedSettlement struct {
	Fact      SettlementFact
	Reference TransactionReference
}
