package amqp

import (
	"testing"

	"github.com/shopspring/decimal"

	"gastos/internal/core"
)

func TestLedgerEventRoundTrip(t *testing.T) {
	e := core.Expense{
		ID:            7,
		Category:      "Food",
		Description:   "groceries",
		PaymentMethod: "cash",
		Amount:        decimal.RequireFromString("12.5"),
		Date:          core.NewDate(2024, 1, 1),
	}

	body, err := NewExpenseCreatedEvent(e, 3).ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := LedgerEventFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Kind != EventExpenseCreated || got.ID != 7 || got.Version != 3 {
		t.Fatalf("unexpected event: %+v", got)
	}
	if got.Expense == nil {
		t.Fatalf("created event must embed the record")
	}
	if !got.Expense.Amount.Equal(e.Amount) || got.Expense.Date.String() != "2024-01-01" {
		t.Fatalf("embedded record mangled: %+v", got.Expense)
	}
}

func TestDeleteAndRenameEvents(t *testing.T) {
	del, err := LedgerEventFromJSON(mustJSON(t, NewExpenseDeletedEvent(9, 4)))
	if err != nil {
		t.Fatalf("unmarshal delete: %v", err)
	}
	if del.Kind != EventExpenseDeleted || del.ID != 9 || del.Expense != nil {
		t.Fatalf("unexpected delete event: %+v", del)
	}

	ren, err := LedgerEventFromJSON(mustJSON(t, NewCategoryRenamedEvent("Food", "Groceries", 2, 5)))
	if err != nil {
		t.Fatalf("unmarshal rename: %v", err)
	}
	if ren.Kind != EventCategoryRenamed || ren.OldName != "Food" || ren.NewName != "Groceries" || ren.Affected != 2 {
		t.Fatalf("unexpected rename event: %+v", ren)
	}
}

func TestLedgerEventFromJSONRejectsGarbage(t *testing.T) {
	if _, err := LedgerEventFromJSON([]byte("not json")); err == nil {
		t.Fatalf("expected error for invalid payload")
	}
}

func mustJSON(t *testing.T, e *LedgerEvent) []byte {
	t.Helper()
	body, err := e.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return body
}
