package blackboard

import (
	"sync"
	"time"
)

// Store 产物存储接口（对外导出）
// 同一次运行中的任务通过产物存储交换中间结果：上游写入，下游按key读取
type Store interface {
	// Put 写入产物
	// key: 产物key
	// value: 产物内容
	// ttl: 有效期，<=0表示不过期
	Put(key string, value interface{}, ttl time.Duration) error

	// Get 读取产物
	// 返回: 产物内容和是否存在（过期视为不存在）
	Get(key string) (interface{}, bool)

	// Delete 删除产物
	Delete(key string) error

	// Clear 清空所有产物
	Clear() error
}

// memoryEntry 内存产物条目（内部使用）
type memoryEntry struct {
	value      interface{}
	expireTime time.Time // 零值表示不过期
}

// MemoryStore 进程内内存产物存储实现（对外导出）
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	done    chan struct{}
	janitor sync.Once
}

// NewMemoryStore 创建内存产物存储实例（对外导出）
// 清理协程在首次写入带TTL的产物时才启动；
// 只存不过期产物的实例（如降级替代场景）不占用协程
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		done:    make(chan struct{}),
	}
}

// Put 写入产物
func (s *MemoryStore) Put(key string, value interface{}, ttl time.Duration) error {
	if key == "" {
		return nil // 空key，忽略
	}

	if ttl > 0 {
		s.janitor.Do(func() {
			go s.cleanupExpired()
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := &memoryEntry{value: value}
	if ttl > 0 {
		entry.expireTime = time.Now().Add(ttl)
	}
	s.entries[key] = entry

	return nil
}

// Get 读取产物
func (s *MemoryStore) Get(key string) (interface{}, bool) {
	if key == "" {
		return nil, false
	}

	s.mu.RLock()
	entry, exists := s.entries[key]
	s.mu.RUnlock()

	if !exists {
		return nil, false
	}

	// 检查是否过期
	if !entry.expireTime.IsZero() && time.Now().After(entry.expireTime) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false
	}

	return entry.value, true
}

// Delete 删除产物
func (s *MemoryStore) Delete(key string) error {
	if key == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Clear 清空所有产物
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*memoryEntry)
	return nil
}

// Close 停止清理协程（对外导出）
// 从未写入过TTL产物时清理协程不存在，Close仍然安全
func (s *MemoryStore) Close() {
	close(s.done)
}

// cleanupExpired 清理过期产物（内部方法）
func (s *MemoryStore) cleanupExpired() {
	ticker := time.NewTicker(1 * time.Minute) // 每分钟清理一次
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			now := time.Now()
			for key, entry := range s.entries {
				if !entry.expireTime.IsZero() && now.After(entry.expireTime) {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		case <-s.done:
			return
		}
	}
}
