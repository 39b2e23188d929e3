package media

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// Memory keeps objects in a map. It backs service tests.
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte
	BaseURL string
}

func NewMemory(baseURL string) *Memory {
	return &Memory{objects: map[string][]byte{}, BaseURL: baseURL}
}

func (m *Memory) Save(_ context.Context, key string, r io.Reader, _ string) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = buf.Bytes()
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *Memory) URL(key string) string {
	return m.BaseURL + "/" + key
}

// Get returns a stored object.
func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	return b, ok
}

// Len is the number of stored objects.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
