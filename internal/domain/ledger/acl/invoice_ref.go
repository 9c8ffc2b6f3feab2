package acl

import (
	"github.com/goldledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceID is a value object representing an invoice identifier within the
// ledger context. It prevents accidental mixing with other UUID-based IDs and
// isolates the ledger from the invoicing context's identifier representation.
type InvoiceID struct {
	value uuid.UUID
}

// NewInvoiceID creates a new InvoiceID from a UUID.
func NewInvoiceID(id uuid.UUID) (InvoiceID, error) {
	if id == uuid.Nil {
		return InvoiceID{}, shared.NewValidationError("invoice ID cannot be empty")
	}
	return InvoiceID{value: id}, nil
}

// MustNewInvoiceID creates a new InvoiceID, panicking if the ID is invalid.
// Use only when the ID is guaranteed to be valid (e.g., from database).
func MustNewInvoiceID(id uuid.UUID) InvoiceID {
	iid, err := NewInvoiceID(id)
	if err != nil {
		panic(err)
	}
	return iid
}

// ParseInvoiceID parses a string into an InvoiceID.
func ParseInvoiceID(s string) (InvoiceID, error) {
	if s == "" {
		return InvoiceID{}, shared.NewValidationError("invoice ID cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return InvoiceID{}, shared.NewValidationError("invoice ID is not a valid UUID")
	}
	return NewInvoiceID(id)
}

// UUID returns the underlying UUID value.
func (i InvoiceID) UUID() uuid.UUID {
	return i.value
}

// String returns the string representation of the InvoiceID.
func (i InvoiceID) String() string {
	return i.value.String()
}

// IsEmpty returns true if the InvoiceID is empty (nil UUID).
func (i InvoiceID) IsEmpty() bool {
	return i.value == uuid.Nil
}

// InvoiceKind discriminates how the invoicing context denominates an invoice.
type InvoiceKind string

const (
	InvoiceKindGold     InvoiceKind = "GOLD"
	InvoiceKindCurrency InvoiceKind = "CURRENCY"
)

// InvoiceRef is a read-only snapshot of the obligation fields the ledger
// needs from an invoice. It carries the minimal information for plan building
// and rollups; everything else about the invoice stays in the invoicing
// context.
type InvoiceRef struct {
	ID              InvoiceID
	Number          string
	Kind            InvoiceKind
	TotalWeightDue  decimal.Decimal // grams owed in total
	RemainingWeight decimal.Decimal // cached, maintained by the settlement engine
	HasInstallments bool
}

// IsGold returns true if the invoice is gold-denominated.
func (r InvoiceRef) IsGold() bool {
	return r.Kind == InvoiceKindGold
}
