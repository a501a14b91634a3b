package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"gastos/internal/core"
	"gastos/internal/services"
	"gastos/internal/storage"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	srv := NewServer(":0", services.NewLedgerService(repo, nil), repo)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func request(t *testing.T, method, url, body string, out any) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && resp.StatusCode != http.StatusNoContent {
			t.Fatalf("%s %s: decode body: %v", method, url, err)
		}
	}
	return resp
}

func createPerson(t *testing.T, base, name string, age int) core.Person {
	t.Helper()
	var p core.Person
	resp := request(t, http.MethodPost, base+"/api/people",
		fmt.Sprintf(`{"name":%q,"age":%d}`, name, age), &p)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create person: status %d", resp.StatusCode)
	}
	return p
}

func createCategory(t *testing.T, base, name string, purpose int) core.Category {
	t.Helper()
	var c core.Category
	resp := request(t, http.MethodPost, base+"/api/categories",
		fmt.Sprintf(`{"name":%q,"purpose":%d}`, name, purpose), &c)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create category: status %d", resp.StatusCode)
	}
	return c
}

func createTransaction(t *testing.T, base, desc string, amount string, txType int, catID, personID int64) core.Transaction {
	t.Helper()
	var tx core.Transaction
	resp := request(t, http.MethodPost, base+"/api/transactions",
		fmt.Sprintf(`{"description":%q,"amount":%s,"type":%d,"categoryId":%d,"personId":%d}`,
			desc, amount, txType, catID, personID), &tx)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create transaction: status %d", resp.StatusCode)
	}
	return tx
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz: status %d", resp.StatusCode)
	}

	var health struct {
		Status      string `json:"status"`
		Database    string `json:"database"`
		Connected   bool   `json:"connected"`
		PeopleCount int64  `json:"peopleCount"`
	}
	r2 := request(t, http.MethodGet, ts.URL+"/api/health", "", &health)
	if r2.StatusCode != http.StatusOK {
		t.Fatalf("api health: status %d", r2.StatusCode)
	}
	if health.Status != "healthy" || !health.Connected || health.Database != "sqlite" {
		t.Fatalf("unexpected health payload: %+v", health)
	}

	createPerson(t, ts.URL, "Bob", 30)
	request(t, http.MethodGet, ts.URL+"/api/health", "", &health)
	if health.PeopleCount != 1 {
		t.Fatalf("expected 1 person in health payload, got %d", health.PeopleCount)
	}
}

func TestPersonEndpoints(t *testing.T) {
	ts := newTestServer(t)

	created := createPerson(t, ts.URL, "Ana", 17)
	if created.ID == 0 {
		t.Fatal("expected assigned ID")
	}

	var got core.Person
	resp := request(t, http.MethodGet, fmt.Sprintf("%s/api/people/%d", ts.URL, created.ID), "", &got)
	if resp.StatusCode != http.StatusOK || got != created {
		t.Fatalf("get: status %d, %+v", resp.StatusCode, got)
	}

	resp = request(t, http.MethodGet, ts.URL+"/api/people/999", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing person: expected 404, got %d", resp.StatusCode)
	}

	resp = request(t, http.MethodPost, ts.URL+"/api/people", `{"name":"","age":20}`, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty name: expected 400, got %d", resp.StatusCode)
	}
	resp = request(t, http.MethodPost, ts.URL+"/api/people", `{"name":"X","age":151}`, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("age out of range: expected 400, got %d", resp.StatusCode)
	}
	resp = request(t, http.MethodPost, ts.URL+"/api/people", `{"name":"X"}`, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing age: expected 400, got %d", resp.StatusCode)
	}

	var updated core.Person
	resp = request(t, http.MethodPut, fmt.Sprintf("%s/api/people/%d", ts.URL, created.ID),
		`{"name":"Ana Maria","age":18}`, &updated)
	if resp.StatusCode != http.StatusOK || updated.Name != "Ana Maria" {
		t.Fatalf("update: status %d, %+v", resp.StatusCode, updated)
	}

	createPerson(t, ts.URL, "Mariana", 25)
	var found []core.Person
	request(t, http.MethodGet, ts.URL+"/api/people/search?name=ana", "", &found)
	if len(found) != 2 {
		t.Fatalf("search: expected 2, got %d", len(found))
	}

	var inRange []core.Person
	request(t, http.MethodGet, ts.URL+"/api/people/age/18/30", "", &inRange)
	if len(inRange) != 2 {
		t.Fatalf("age range: expected 2, got %d", len(inRange))
	}
	resp = request(t, http.MethodGet, ts.URL+"/api/people/age/30/18", "", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("inverted range: expected 400, got %d", resp.StatusCode)
	}

	resp = request(t, http.MethodDelete, fmt.Sprintf("%s/api/people/%d", ts.URL, created.ID), "", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", resp.StatusCode)
	}
	resp = request(t, http.MethodDelete, fmt.Sprintf("%s/api/people/%d", ts.URL, created.ID), "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", resp.StatusCode)
	}
}

func TestCategoryEndpoints(t *testing.T) {
	ts := newTestServer(t)

	food := createCategory(t, ts.URL, "Food", int(core.PurposeExpense))
	createCategory(t, ts.URL, "Salary", int(core.PurposeIncome))
	createCategory(t, ts.URL, "Misc", int(core.PurposeBoth))

	resp := request(t, http.MethodPost, ts.URL+"/api/categories", `{"name":"Bad","purpose":7}`, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid purpose: expected 400, got %d", resp.StatusCode)
	}

	var all []core.Category
	request(t, http.MethodGet, ts.URL+"/api/categories", "", &all)
	if len(all) != 3 {
		t.Fatalf("list: expected 3, got %d", len(all))
	}

	var byPurpose []core.Category
	request(t, http.MethodGet, ts.URL+"/api/categories/purpose/1", "", &byPurpose)
	if len(byPurpose) != 2 { // Food plus Misc (Both)
		t.Fatalf("purpose filter: expected 2, got %d", len(byPurpose))
	}

	// Deleting a category with transactions is refused with 409.
	bob := createPerson(t, ts.URL, "Bob", 30)
	createTransaction(t, ts.URL, "lunch", "12.00", int(core.Expense), food.ID, bob.ID)
	resp = request(t, http.MethodDelete, fmt.Sprintf("%s/api/categories/%d", ts.URL, food.ID), "", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("in-use delete: expected 409, got %d", resp.StatusCode)
	}
}

func TestTransactionEndpoints(t *testing.T) {
	ts := newTestServer(t)

	bob := createPerson(t, ts.URL, "Bob", 30)
	ana := createPerson(t, ts.URL, "Ana", 17)
	food := createCategory(t, ts.URL, "Food", int(core.PurposeExpense))
	salary := createCategory(t, ts.URL, "Salary", int(core.PurposeIncome))

	created := createTransaction(t, ts.URL, "lunch", "12.34", int(core.Expense), food.ID, bob.ID)
	if created.Amount.Cents != 1234 {
		t.Fatalf("expected 1234 cents, got %d", created.Amount.Cents)
	}
	createTransaction(t, ts.URL, "pay", "1000.00", int(core.Income), salary.ID, bob.ID)

	// Minor income is a business-rule 400.
	resp := request(t, http.MethodPost, ts.URL+"/api/transactions",
		fmt.Sprintf(`{"description":"allowance","amount":50,"type":2,"categoryId":%d,"personId":%d}`, salary.ID, ana.ID), nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("minor income: expected 400, got %d", resp.StatusCode)
	}

	// Purpose mismatch likewise.
	resp = request(t, http.MethodPost, ts.URL+"/api/transactions",
		fmt.Sprintf(`{"description":"refund","amount":9,"type":2,"categoryId":%d,"personId":%d}`, food.ID, bob.ID), nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("purpose mismatch: expected 400, got %d", resp.StatusCode)
	}

	// Unknown references are 400, not 404: the transaction itself exists or
	// will exist, the payload is what is wrong.
	resp = request(t, http.MethodPost, ts.URL+"/api/transactions",
		fmt.Sprintf(`{"description":"x","amount":1,"type":1,"categoryId":%d,"personId":999}`, food.ID), nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing person ref: expected 400, got %d", resp.StatusCode)
	}

	resp = request(t, http.MethodGet, ts.URL+"/api/transactions/999", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing transaction: expected 404, got %d", resp.StatusCode)
	}

	var byPerson []core.Transaction
	request(t, http.MethodGet, fmt.Sprintf("%s/api/transactions/person/%d", ts.URL, bob.ID), "", &byPerson)
	if len(byPerson) != 2 {
		t.Fatalf("by person: expected 2, got %d", len(byPerson))
	}
	var byType []core.Transaction
	request(t, http.MethodGet, ts.URL+"/api/transactions/type/2", "", &byType)
	if len(byType) != 1 {
		t.Fatalf("by type: expected 1, got %d", len(byType))
	}

	resp = request(t, http.MethodDelete, fmt.Sprintf("%s/api/transactions/%d", ts.URL, created.ID), "", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", resp.StatusCode)
	}
}

func TestTotalsEndpoints(t *testing.T) {
	ts := newTestServer(t)

	bob := createPerson(t, ts.URL, "Bob", 30)
	salary := createCategory(t, ts.URL, "Salary", int(core.PurposeIncome))
	food := createCategory(t, ts.URL, "Food", int(core.PurposeExpense))

	createTransaction(t, ts.URL, "pay", "1000.00", int(core.Income), salary.ID, bob.ID)
	createTransaction(t, ts.URL, "groceries", "300.50", int(core.Expense), food.ID, bob.ID)

	var people struct {
		People       []core.PersonTotals `json:"people"`
		TotalGeneral core.Money          `json:"totalGeneral"`
	}
	resp := request(t, http.MethodGet, ts.URL+"/api/transactions/totals/people", "", &people)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("totals people: status %d", resp.StatusCode)
	}
	if len(people.People) != 1 {
		t.Fatalf("expected 1 row, got %d", len(people.People))
	}
	row := people.People[0]
	if row.TotalIncome.Cents != 100000 || row.TotalExpense.Cents != 30050 || row.Balance.Cents != 69950 {
		t.Fatalf("unexpected person totals: %+v", row)
	}
	if people.TotalGeneral.Cents != 69950 {
		t.Fatalf("expected general total 699.50, got %s", core.FormatCents(people.TotalGeneral.Cents))
	}

	var categories struct {
		Categories   []core.CategoryTotals `json:"categories"`
		TotalGeneral core.Money            `json:"totalGeneral"`
	}
	request(t, http.MethodGet, ts.URL+"/api/transactions/totals/categories", "", &categories)
	if len(categories.Categories) != 2 {
		t.Fatalf("expected 2 category rows, got %d", len(categories.Categories))
	}

	var overall core.OverallTotals
	request(t, http.MethodGet, ts.URL+"/api/transactions/total-general", "", &overall)
	if overall.TotalIncome.Cents != 100000 || overall.TotalExpense.Cents != 30050 || overall.NetBalance.Cents != 69950 {
		t.Fatalf("unexpected overall totals: %+v", overall)
	}
}

func TestAmountSerializedAsExactDecimal(t *testing.T) {
	ts := newTestServer(t)

	bob := createPerson(t, ts.URL, "Bob", 30)
	food := createCategory(t, ts.URL, "Food", int(core.PurposeExpense))
	created := createTransaction(t, ts.URL, "coffee", "0.10", int(core.Expense), food.ID, bob.ID)

	resp, err := http.Get(fmt.Sprintf("%s/api/transactions/%d", ts.URL, created.ID))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(raw["amount"]) != "0.10" {
		t.Fatalf("expected amount rendered as 0.10, got %s", raw["amount"])
	}
}

func TestMalformedBodyIsBadRequest(t *testing.T) {
	ts := newTestServer(t)

	resp := request(t, http.MethodPost, ts.URL+"/api/people", `{not json`, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", resp.StatusCode)
	}
	resp = request(t, http.MethodGet, ts.URL+"/api/people/abc", "", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %d", resp.StatusCode)
	}
}

func TestInvalidAmountMessageSurfaced(t *testing.T) {
	ts := newTestServer(t)

	var e errorResponse
	resp := request(t, http.MethodPost, ts.URL+"/api/transactions",
		`{"description":"lunch","amount":-5,"type":1,"categoryId":1,"personId":1}`, &e)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative amount, got %d", resp.StatusCode)
	}
	if !strings.Contains(e.Error, "amount") {
		t.Fatalf("expected the amount-specific message, got %q", e.Error)
	}
}
