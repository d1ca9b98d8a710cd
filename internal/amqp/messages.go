package amqp

import (
	"encoding/json"
	"time"

	"gastos/internal/core"
)

// Ledger event kinds.
const (
	EventExpenseCreated  = "expense_created"
	EventExpenseDeleted  = "expense_deleted"
	EventCategoryRenamed = "category_renamed"
)

// LedgerEvent announces a completed ledger mutation. Version is the ledger
// version counter after the mutation; a consumer holding a snapshot keyed by
// an older version knows it is stale. Created events embed the full record so
// consumers never need to read the database back.
type LedgerEvent struct {
	Kind      string        `json:"kind"`
	Version   int64         `json:"version"`
	ID        int64         `json:"id,omitempty"`
	Expense   *core.Expense `json:"expense,omitempty"`
	OldName   string        `json:"old_name,omitempty"`
	NewName   string        `json:"new_name,omitempty"`
	Affected  int64         `json:"affected,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewExpenseCreatedEvent builds the event for a freshly persisted expense.
func NewExpenseCreatedEvent(e core.Expense, version int64) *LedgerEvent {
	return &LedgerEvent{
		Kind:      EventExpenseCreated,
		Version:   version,
		ID:        e.ID,
		Expense:   &e,
		Timestamp: time.Now(),
	}
}

// NewExpenseDeletedEvent builds the event for a removed expense.
func NewExpenseDeletedEvent(id, version int64) *LedgerEvent {
	return &LedgerEvent{
		Kind:      EventExpenseDeleted,
		Version:   version,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// NewCategoryRenamedEvent builds the event for a bulk category rename.
func NewCategoryRenamedEvent(oldName, newName string, affected, version int64) *LedgerEvent {
	return &LedgerEvent{
		Kind:      EventCategoryRenamed,
		Version:   version,
		OldName:   oldName,
		NewName:   newName,
		Affected:  affected,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes an event from JSON bytes.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var event LedgerEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
