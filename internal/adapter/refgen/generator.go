// Package refgen assigns transaction references: a UETR in canonical
// 8-4-4-4-12 form combined with a process-local monotonic sequence used as
// an ordering tie-break within export batches.
package refgen

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/iho/isobridge/internal/domain"
)

// UETRGenerator implements usecase.ReferenceGenerator. It is safe for
// concurrent use. A randomness failure is a defect in the platform's
// entropy source and is returned to fail the enclosing operation; there
// are no retries.
type UETRGenerator struct {
	sequence atomic.Uint64
}

// NewUETRGenerator creates a new UETRGenerator.
func NewUETRGenerator() *UETRGenerator {
	return &UETRGenerator{}
}

// Generate draws a fresh reference.
func (g *UETRGenerator) Generate() (domain.TransactionReference, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return domain.TransactionReference{}, fmt.Errorf("uetr generation: %w", err)
	}

	return domain.TransactionReference{
		UETR:       id.String(),
		Sequence:   g.sequence.Add(1),
		AssignedAt: time.Now().UTC(),
	}, nil
}
