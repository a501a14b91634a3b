package core

// PersonTotals is one row of the per-person aggregate report.
type PersonTotals struct {
	PersonID     int64  `json:"personId"`
	PersonName   string `json:"personName"`
	PersonAge    int    `json:"personAge"`
	TotalIncome  Money  `json:"totalIncome"`
	TotalExpense Money  `json:"totalExpense"`
	Balance      Money  `json:"balance"`
}

// CategoryTotals is one row of the per-category aggregate report.
type CategoryTotals struct {
	CategoryID   int64           `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	Purpose      CategoryPurpose `json:"purpose"`
	TotalIncome  Money           `json:"totalIncome"`
	TotalExpense Money           `json:"totalExpense"`
	Balance      Money           `json:"balance"`
}

// OverallTotals sums every transaction. The zero value is the correct
// result for an empty ledger.
type OverallTotals struct {
	TotalIncome  Money `json:"totalIncome"`
	TotalExpense Money `json:"totalExpense"`
	NetBalance   Money `json:"netBalance"`
}
