package localstore

import (
	"fmt"
	"sync"

	"github.com/peterbourgon/diskv/v3"

	"github.com/yourname/habittracker/internal"
)

// KV is the persistence boundary: a synchronous string key-value store with
// a capacity limit. Set reports internal.ErrQuotaExceeded on overflow.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string)
}

// MemoryKV is an in-process KV with an optional byte capacity, mirroring a
// browser localStorage quota. A capacity of 0 means unbounded.
type MemoryKV struct {
	mu       sync.Mutex
	data     map[string]string
	capacity int
}

func NewMemoryKV(capacity int) *MemoryKV {
	return &MemoryKV{data: make(map[string]string), capacity: capacity}
}

func (m *MemoryKV) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *MemoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.capacity > 0 {
		total := len(value)
		for k, v := range m.data {
			if k == key {
				continue
			}
			total += len(v)
		}
		if total > m.capacity {
			return fmt.Errorf("%w: %d bytes over capacity %d", internal.ErrQuotaExceeded, total, m.capacity)
		}
	}
	m.data[key] = value
	return nil
}

func (m *MemoryKV) Remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

// DiskKV persists values as flat files under a base directory via diskv.
type DiskKV struct {
	d *diskv.Diskv
}

func NewDiskKV(basePath string) *DiskKV {
	return &DiskKV{d: diskv.New(diskv.Options{
		BasePath:     basePath,
		Transform:    func(string) []string { return []string{} },
		CacheSizeMax: 1024 * 1024, // 1MB
	})}
}

func (k *DiskKV) Get(key string) (string, bool) {
	val, err := k.d.Read(key)
	if err != nil {
		return "", false
	}
	return string(val), true
}

func (k *DiskKV) Set(key, value string) error {
	return k.d.Write(key, []byte(value))
}

func (k *DiskKV) Remove(key string) {
	_ = k.d.Erase(key)
}

var (
	_ KV = (*MemoryKV)(nil)
	_ KV = (*DiskKV)(nil)
)
