package domain

import "time"

// Producer is a rural producer identified by CPF or CNPJ. The document is
// unique among non-deleted producers only; a soft-deleted producer's
// identifier may be reused by a new record.
type Producer struct {
	ID        string
	CPFCNPJ   TaxID
	Name      string
	IsDeleted bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
