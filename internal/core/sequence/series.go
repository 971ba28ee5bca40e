// Package sequence provides domain contracts for gap-tolerant document numbering.
// Implementations live in infrastructure layer.
package sequence

import (
	"fmt"
	"time"

	"clinova/internal/core/id"
)

// ResetPolicy controls when a series counter starts over from 1.
type ResetPolicy string

const (
	// ResetNever keeps one counter for the lifetime of the series.
	ResetNever ResetPolicy = "never"
	// ResetYearly starts over on the first allocation of a new calendar year.
	ResetYearly ResetPolicy = "yearly"
	// ResetMonthly starts over on the first allocation of a new month.
	ResetMonthly ResetPolicy = "monthly"
)

// Valid reports whether the policy is one of the known values.
func (p ResetPolicy) Valid() bool {
	switch p {
	case ResetNever, ResetYearly, ResetMonthly:
		return true
	}
	return false
}

// Series is a named counter scoped to (scope, document type, code). The scope
// is the clinic for business documents and the legal entity for journal
// entry numbers. Numbers drawn from a series never repeat; gaps are
// acceptable and expected when an allocation is consumed by a failed attempt.
type Series struct {
	ID           id.ID       `db:"id" json:"id"`
	ScopeID      id.ID       `db:"scope_id" json:"scopeId"`
	DocumentType string      `db:"document_type" json:"documentType"`
	Code         string      `db:"code" json:"code"`
	Prefix       string      `db:"prefix" json:"prefix"`
	Padding      int         `db:"padding" json:"padding"`
	NextNumber   int64       `db:"next_number" json:"nextNumber"`
	ResetPolicy  ResetPolicy `db:"reset_policy" json:"resetPolicy"`
	LastResetAt  time.Time   `db:"last_reset_at" json:"lastResetAt"`
	CreatedAt    time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updatedAt"`
}

// Format renders a counter value as the outward document number.
func (s *Series) Format(n int64) string {
	padding := s.Padding
	if padding <= 0 {
		padding = 6
	}
	return fmt.Sprintf("%s%0*d", s.Prefix, padding, n)
}

// ParseTrailing extracts the trailing digit run from a formatted number.
// Used to seed a new series from legacy numbers ("T-000123" -> 123).
// Returns -1 when the string does not end in a digit.
func ParseTrailing(formatted string) int64 {
	end := len(formatted)
	start := end
	for start > 0 && formatted[start-1] >= '0' && formatted[start-1] <= '9' {
		start--
	}
	if start == end {
		return -1
	}
	var n int64
	for _, c := range formatted[start:end] {
		n = n*10 + int64(c-'0')
	}
	return n
}
