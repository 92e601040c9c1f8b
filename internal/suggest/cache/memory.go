// Package cache holds suggest.Cache implementations.
package cache

import (
	"container/list"
	"context"
	"sync"
)

const defaultMemoryEntries = 4096

type entry struct {
	key  string
	move string
}

// Memory is a bounded LRU used when no Redis is configured.
type Memory struct {
	mu    sync.Mutex
	max   int
	order *list.List
	items map[string]*list.Element
}

func NewMemory(maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = defaultMemoryEntries
	}
	return &Memory{max: maxEntries, order: list.New(), items: make(map[string]*list.Element)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	el, ok := m.items[key]
	if !ok {
		return "", false, nil
	}
	m.order.MoveToFront(el)
	return el.Value.(*entry).move, true, nil
}

func (m *Memory) Set(_ context.Context, key, move string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if el, ok := m.items[key]; ok {
		el.Value.(*entry).move = move
		m.order.MoveToFront(el)
		return nil
	}
	m.items[key] = m.order.PushFront(&entry{key: key, move: move})
	for m.order.Len() > m.max {
		oldest := m.order.Back()
		m.order.Remove(oldest)
		delete(m.items, oldest.Value.(*entry).key)
	}
	return nil
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}
