package infrastructure

import (
	"context"
	"sort"
	"sync"
	"time"

	"ticketing/internal/service/inventory/domain"
)

// MemoryActivityRepository 是进程内实现，用于本地开发与测试。
// 每个 Key 一把互斥锁保证 Mutate 的原子性，RWMutex 只保护 map 本身。
type MemoryActivityRepository struct {
	mu      sync.RWMutex
	records map[string]*domain.Activity
	names   map[string]string
	locks   map[string]*sync.Mutex
	seq     int64
}

func NewMemoryActivityRepository() *MemoryActivityRepository {
	return &MemoryActivityRepository{
		records: make(map[string]*domain.Activity),
		names:   make(map[string]string),
		locks:   make(map[string]*sync.Mutex),
	}
}

func (r *MemoryActivityRepository) Create(_ context.Context, a *domain.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[a.Key]; ok {
		return domain.ErrActivityExists
	}
	if _, ok := r.names[a.Name]; ok {
		return domain.ErrActivityExists
	}
	r.seq++
	a.ID = r.seq
	r.records[a.Key] = a.Clone()
	r.names[a.Name] = a.Key
	r.locks[a.Key] = &sync.Mutex{}
	return nil
}

func (r *MemoryActivityRepository) FindByKey(_ context.Context, key string) (*domain.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.records[key]
	if !ok {
		return nil, domain.ErrActivityNotFound
	}
	return a.Clone(), nil
}

func (r *MemoryActivityRepository) List(_ context.Context, filter domain.ListFilter) ([]*domain.Activity, error) {
	r.mu.RLock()
	out := make([]*domain.Activity, 0, len(r.records))
	for _, a := range r.records {
		if filter.Matches(a) {
			out = append(out, a.Clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (r *MemoryActivityRepository) Mutate(_ context.Context, key string, fn domain.MutateFunc) (*domain.Activity, error) {
	r.mu.RLock()
	lock, ok := r.locks[key]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrActivityNotFound
	}

	lock.Lock()
	defer lock.Unlock()

	r.mu.RLock()
	current := r.records[key].Clone()
	r.mu.RUnlock()

	next := current.Clone()
	if err := fn(next); err != nil {
		return current, err
	}
	next.Version = current.Version + 1
	next.UpdatedAt = time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()
	if next.Name != current.Name {
		if _, taken := r.names[next.Name]; taken {
			return current, domain.ErrActivityExists
		}
		delete(r.names, current.Name)
		r.names[next.Name] = key
	}
	r.records[key] = next.Clone()
	return next, nil
}
