package domain_test

import (
	"testing"

	"github.com/iho/isobridge/internal/domain"
)

func TestBodyChecksum(t *testing.T) {
	body := []byte("<Document/>")

	first := domain.BodyChecksum(body)
	second := domain.BodyChecksum(body)

	if first != second {
		t.Errorf("checksum not deterministic: %q vs %q", first, second)
	}

	if len(first) != 64 {
		t.Errorf("expected 64 hex characters, got %d", len(first))
	}

	if first == domain.BodyChecksum([]byte("<Document />")) {
		t.Error("distinct bodies share a checksum")
	}
}

func TestFinancialMessage_VerifyChecksum(t *testing.T) {
	body := []byte("<Document/>")
	msg := &domain.FinancialMessage{
		Body:     body,
		Checksum: domain.BodyChecksum(body),
	}

	if !msg.VerifyChecksum() {
		t.Error("checksum verification failed for intact body")
	}

	msg.Body = []byte("<Tampered/>")
	if msg.VerifyChecksum() {
		t.Error("checksum verification passed for tampered body")
	}
}

func TestValidUETR(t *testing.T) {
	tests := []struct {
		uetr string
		want bool
	}{
		{"eb6305c9-1f7f-49de-aed0-16487c27b42d", true},
		{"EB6305C9-1F7F-49DE-AED0-16487C27B42D", false},
		{"eb6305c91f7f49deaed016487c27b42d", false},
		{"eb6305c9-1f7f-49de-aed0", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := domain.ValidUETR(tt.uetr); got != tt.want {
			t.Errorf("ValidUETR(%q) = %v, want %v", tt.uetr, got, tt.want)
		}
	}
}
