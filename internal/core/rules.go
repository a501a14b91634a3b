package core

import "fmt"

// Transaction write rules. Both checks run on every create and every update:
// an update can swap person, category, or type, so the rules are always
// re-evaluated against the post-edit values.
var (
	ErrMinorIncomeNotAllowed   = fmt.Errorf("%w: minors cannot register income transactions", ErrBusinessRule)
	ErrCategoryPurposeMismatch = fmt.Errorf("%w: category purpose does not allow this transaction type", ErrBusinessRule)
)

// CanPersonHoldTransactionType reports whether the person may register a
// transaction of the given type. Expenses are permitted at any age; income
// requires an adult.
func CanPersonHoldTransactionType(p Person, t TransactionType) bool {
	if t == Income && p.IsMinor() {
		return false
	}
	return true
}

// CanCategoryBeUsedForType reports whether the category's purpose is
// compatible with the transaction type. A Both-purpose category accepts
// either type; otherwise purpose and type must match.
func CanCategoryBeUsedForType(c Category, t TransactionType) bool {
	switch t {
	case Expense:
		return c.Purpose == PurposeExpense || c.Purpose == PurposeBoth
	case Income:
		return c.Purpose == PurposeIncome || c.Purpose == PurposeBoth
	default:
		return false
	}
}

// ValidateTransactionWrite gatekeeps a transaction create or update given
// already-resolved snapshots of its person and category. Both checks are
// evaluated; the person-age check is reported first when both fail.
func ValidateTransactionWrite(t Transaction, p Person, c Category) error {
	personOK := CanPersonHoldTransactionType(p, t.Type)
	categoryOK := CanCategoryBeUsedForType(c, t.Type)
	if !personOK {
		return ErrMinorIncomeNotAllowed
	}
	if !categoryOK {
		return ErrCategoryPurposeMismatch
	}
	return nil
}
