package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	Expense TransactionType = 1
	Income  TransactionType = 2

	PurposeExpense CategoryPurpose = 1
	PurposeIncome  CategoryPurpose = 2
	PurposeBoth    CategoryPurpose = 3
)

const adultAge = 18

type (
	// TransactionType classifies a transaction as an expense or an income.
	// Stored and serialized as its integer code.
	TransactionType int

	// CategoryPurpose restricts which transaction types a category accepts.
	CategoryPurpose int

	Money struct {
		Cents int64
	}

	Person struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
		Age  int    `json:"age"`
	}

	Category struct {
		ID          int64           `json:"id"`
		Name        string          `json:"name"`
		Description string          `json:"description,omitempty"`
		Purpose     CategoryPurpose `json:"purpose"`
	}

	Transaction struct {
		ID          int64           `json:"id"`
		Description string          `json:"description"`
		Amount      Money           `json:"amount"`
		Type        TransactionType `json:"type"`
		CategoryID  int64           `json:"categoryId"`
		PersonID    int64           `json:"personId"`
	}
)

// Error kinds. Field-level failures wrap ErrValidation, missing references on
// transaction writes wrap ErrReferenceNotFound, and the transaction rules in
// rules.go wrap ErrBusinessRule, so callers can branch on the kind with
// errors.Is while still reporting the specific failure.
var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrBusinessRule      = errors.New("business rule violation")
	ErrReferenceNotFound = errors.New("reference not found")
	ErrCategoryInUse     = errors.New("category is referenced by transactions")

	ErrPersonNotFound   = fmt.Errorf("%w: person", ErrReferenceNotFound)
	ErrCategoryNotFound = fmt.Errorf("%w: category", ErrReferenceNotFound)

	ErrEmptyName          = fmt.Errorf("%w: name is required", ErrValidation)
	ErrNameTooLong        = fmt.Errorf("%w: name too long", ErrValidation)
	ErrAgeOutOfRange      = fmt.Errorf("%w: age must be between 0 and 150", ErrValidation)
	ErrEmptyDescription   = fmt.Errorf("%w: description is required", ErrValidation)
	ErrDescriptionTooLong = fmt.Errorf("%w: description too long", ErrValidation)
	ErrInvalidAmount      = fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
	ErrInvalidType        = fmt.Errorf("%w: invalid transaction type", ErrValidation)
	ErrInvalidPurpose     = fmt.Errorf("%w: invalid category purpose", ErrValidation)
	ErrInvalidAgeRange    = fmt.Errorf("%w: minimum age must not exceed maximum age", ErrValidation)
)

func (t TransactionType) IsValid() bool {
	return t == Expense || t == Income
}

func (t TransactionType) String() string {
	switch t {
	case Expense:
		return "expense"
	case Income:
		return "income"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

func (p CategoryPurpose) IsValid() bool {
	return p == PurposeExpense || p == PurposeIncome || p == PurposeBoth
}

func (p CategoryPurpose) String() string {
	switch p {
	case PurposeExpense:
		return "expense"
	case PurposeIncome:
		return "income"
	case PurposeBoth:
		return "both"
	default:
		return fmt.Sprintf("unknown(%d)", int(p))
	}
}

// IsMinor reports whether the person is under 18.
func (p Person) IsMinor() bool {
	return p.Age < adultAge
}

// MarshalJSON includes the derived isMinor flag so clients do not have to
// duplicate the age cutoff.
func (p Person) MarshalJSON() ([]byte, error) {
	type person Person
	return json.Marshal(struct {
		person
		IsMinor bool `json:"isMinor"`
	}{person(p), p.IsMinor()})
}

func (p Person) Validate() error {
	if len(strings.TrimSpace(p.Name)) == 0 {
		return ErrEmptyName
	}
	if len(p.Name) > 150 {
		return ErrNameTooLong
	}
	if p.Age < 0 || p.Age > 150 {
		return ErrAgeOutOfRange
	}
	return nil
}

func (c Category) Validate() error {
	if len(strings.TrimSpace(c.Name)) == 0 {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return ErrNameTooLong
	}
	if len(c.Description) > 500 {
		return ErrDescriptionTooLong
	}
	if !c.Purpose.IsValid() {
		return ErrInvalidPurpose
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if t.CategoryID <= 0 {
		return ErrCategoryNotFound
	}
	if t.PersonID <= 0 {
		return ErrPersonNotFound
	}
	return nil
}
