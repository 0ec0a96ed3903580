package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	ports "financas/internal/sheets"
)

// Mirror keeps appended rows in memory.
type Mirror struct {
	mu           sync.Mutex
	transactions []ports.TransactionRow
	deletions    []ports.DeletionRow
	failNext     error
}

var _ ports.LedgerMirror = (*Mirror)(nil)

func NewMirror() *Mirror {
	return &Mirror{}
}

func (m *Mirror) AppendTransaction(_ context.Context, row ports.TransactionRow) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return "", err
	}
	m.transactions = append(m.transactions, row)
	return fmt.Sprintf("memory!L%d", len(m.transactions)+1), nil
}

func (m *Mirror) AppendDeletion(_ context.Context, row ports.DeletionRow) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return "", err
	}
	m.deletions = append(m.deletions, row)
	return fmt.Sprintf("memory!D%d", len(m.deletions)+1), nil
}

// FailNext makes the next append return err.
func (m *Mirror) FailNext(err error) {
	if err == nil {
		err = errors.New("mirror unavailable")
	}
	m.mu.Lock()
	m.failNext = err
	m.mu.Unlock()
}

func (m *Mirror) takeFailure() error {
	err := m.failNext
	m.failNext = nil
	return err
}

func (m *Mirror) Transactions() []ports.TransactionRow {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.TransactionRow(nil), m.transactions...)
}

func (m *Mirror) Deletions() []ports.DeletionRow {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.DeletionRow(nil), m.deletions...)
}
