package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type memoryDoc struct {
	key string
	pdf []byte
}

// MemoryStore keeps documents in process. Each stored invoice gets a
// random share key; the returned URL points at the API's unauthenticated
// /public/invoices/:key route so a plain PDF viewer can open it.
type MemoryStore struct {
	mu      sync.RWMutex
	baseURL string
	docs    map[string]memoryDoc
	keys    map[string]string
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		docs:    make(map[string]memoryDoc),
		keys:    make(map[string]string),
	}
}

func (m *MemoryStore) Put(ctx context.Context, invoiceID string, pdf []byte) (string, error) {
	if _, err := ObjectKey(invoiceID); err != nil {
		return "", err
	}

	buf := make([]byte, len(pdf))
	copy(buf, pdf)
	key := uuid.NewString()

	m.mu.Lock()
	if old, ok := m.docs[invoiceID]; ok {
		delete(m.keys, old.key)
	}
	m.docs[invoiceID] = memoryDoc{key: key, pdf: buf}
	m.keys[key] = invoiceID
	m.mu.Unlock()

	return fmt.Sprintf("%s/public/invoices/%s", m.baseURL, key), nil
}

func (m *MemoryStore) Get(ctx context.Context, invoiceID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[invoiceID]
	if !ok {
		return nil, ErrNotFound
	}
	return doc.pdf, nil
}

// GetShared resolves a share key handed out by Put.
func (m *MemoryStore) GetShared(ctx context.Context, key string) (string, []byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	invoiceID, ok := m.keys[key]
	if !ok {
		return "", nil, ErrNotFound
	}
	return invoiceID, m.docs[invoiceID].pdf, nil
}

func (m *MemoryStore) Release(ctx context.Context, invoiceID string) error {
	m.mu.Lock()
	if doc, ok := m.docs[invoiceID]; ok {
		delete(m.keys, doc.key)
		delete(m.docs, invoiceID)
	}
	m.mu.Unlock()
	return nil
}
