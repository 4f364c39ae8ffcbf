package board

import (
	"context"
	"strconv"
	"sync"
)

// Call records one request made against a Memory board.
type Call struct {
	Op     string
	ID     string
	Title  string
	Body   string
	Fields Fields
}

// Memory is an in-process board. It is used by tests and by the "memory"
// backend for trying the tool without a real board. Safe for concurrent use.
type Memory struct {
	mu     sync.Mutex
	items  []RemoteItem
	nextID int
	calls  []Call

	// DefaultColumn is the column newly created items land in.
	DefaultColumn string

	listErr    error
	createErrs map[string]error
	updateErrs map[string]error
}

// NewMemory returns a board seeded with items, in board order.
func NewMemory(items ...RemoteItem) *Memory {
	m := &Memory{
		createErrs: make(map[string]error),
		updateErrs: make(map[string]error),
		nextID:     1,
	}
	for _, item := range items {
		m.items = append(m.items, item)
		if n, err := strconv.Atoi(item.ID); err == nil && n >= m.nextID {
			m.nextID = n + 1
		}
	}
	return m
}

// List returns a snapshot of the board in board order.
func (m *Memory) List(ctx context.Context) ([]RemoteItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, Call{Op: "list"})
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]RemoteItem, len(m.items))
	copy(out, m.items)
	return out, nil
}

// Create appends a new item with a fresh numeric id.
func (m *Memory) Create(ctx context.Context, title, body string) (RemoteItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, Call{Op: "create", Title: title, Body: body})
	if err := m.createErrs[title]; err != nil {
		return RemoteItem{}, err
	}

	item := RemoteItem{
		ID:     strconv.Itoa(m.nextID),
		Title:  title,
		Body:   body,
		Column: m.DefaultColumn,
	}
	m.nextID++
	m.items = append(m.items, item)
	return item, nil
}

// Update applies fields to the item with id.
func (m *Memory) Update(ctx context.Context, id string, fields Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, Call{Op: "update", ID: id, Fields: fields})
	if err := m.updateErrs[id]; err != nil {
		return err
	}
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i] = fields.Apply(m.items[i])
			return nil
		}
	}
	return &NotFoundError{ID: id}
}

// FailList makes List return err.
func (m *Memory) FailList(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr = err
}

// FailCreate makes Create return err for the given title.
func (m *Memory) FailCreate(title string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createErrs[title] = err
}

// FailUpdate makes Update return err for the given id.
func (m *Memory) FailUpdate(id string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateErrs[id] = err
}

// SetColumn moves an item as if someone dragged it on the board.
func (m *Memory) SetColumn(id, column string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].Column = column
			return true
		}
	}
	return false
}

// Remove deletes an item as if it were removed upstream.
func (m *Memory) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return true
		}
	}
	return false
}

// Items returns a snapshot of the board without recording a call.
func (m *Memory) Items() []RemoteItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RemoteItem, len(m.items))
	copy(out, m.items)
	return out
}

// Calls returns every recorded call in order.
func (m *Memory) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallsOf returns the recorded calls for one operation.
func (m *Memory) CallsOf(op string) []Call {
	var out []Call
	for _, c := range m.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// ResetCalls clears the call log.
func (m *Memory) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}
