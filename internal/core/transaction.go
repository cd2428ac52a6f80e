package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// DateLayout is the calendar date format used for bucketing and filtering.
// Zero-padded so lexicographic order equals chronological order.
const DateLayout = "2006-01-02"

type (
	TransactionType string

	// Transaction is a single income or expense record. Amount is always
	// positive; direction is carried by Type.
	Transaction struct {
		ID          string          `json:"id"`
		Type        TransactionType `json:"type"`
		Amount      float64         `json:"amount"`
		Description string          `json:"description"`
		Date        string          `json:"date"`
		CreatedAt   string          `json:"createdAt"`
	}

	// Draft holds the user-supplied fields of a new transaction. ID and
	// CreatedAt are assigned by the repository.
	Draft struct {
		Type        TransactionType `json:"type"`
		Amount      float64         `json:"amount"`
		Description string          `json:"description"`
		Date        string          `json:"date"`
	}

	// Patch is a partial update. Nil fields are preserved.
	Patch struct {
		Type        *TransactionType `json:"type,omitempty"`
		Amount      *float64         `json:"amount,omitempty"`
		Description *string          `json:"description,omitempty"`
		Date        *string          `json:"date,omitempty"`
	}
)

var (
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
)

func (t TransactionType) IsValid() bool {
	switch t {
	case Income, Expense:
		return true
	default:
		return false
	}
}

// ValidDate reports whether s is a well-formed YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	if len(s) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

func (d Draft) Validate() error {
	if !d.Type.IsValid() {
		return ErrInvalidType
	}
	if d.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !ValidDate(d.Date) {
		return ErrInvalidDate
	}
	if len(d.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

// Validate checks a full record, used when deserializing stored data.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("empty id")
	}
	return Draft{
		Type:        t.Type,
		Amount:      t.Amount,
		Description: t.Description,
		Date:        t.Date,
	}.Validate()
}

func (p Patch) Validate() error {
	if p.Type != nil && !p.Type.IsValid() {
		return ErrInvalidType
	}
	if p.Amount != nil && *p.Amount <= 0 {
		return ErrInvalidAmount
	}
	if p.Date != nil && !ValidDate(*p.Date) {
		return ErrInvalidDate
	}
	if p.Description != nil && len(*p.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

// ApplyTo merges the patch into tx, preserving unset fields.
func (p Patch) ApplyTo(tx Transaction) Transaction {
	if p.Type != nil {
		tx.Type = *p.Type
	}
	if p.Amount != nil {
		tx.Amount = *p.Amount
	}
	if p.Description != nil {
		tx.Description = *p.Description
	}
	if p.Date != nil {
		tx.Date = *p.Date
	}
	return tx
}
