package logging

import "sync"

const defaultHistoryCapacity = 1000

// History 日志页的有界行缓冲，超出容量时丢弃最早的行
type History struct {
	mu       sync.RWMutex
	entries  []LogEntry
	capacity int
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = defaultHistoryCapacity
	}
	return &History{capacity: capacity}
}

func (h *History) Append(entry LogEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) >= h.capacity {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:len(h.entries)-1]
	}
	h.entries = append(h.entries, entry)
}

// Entries 返回副本，按写入顺序
func (h *History) Entries() []LogEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]LogEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Lines 返回已格式化的行
func (h *History) Lines() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]string, 0, len(h.entries))
	for _, e := range h.entries {
		out = append(out, e.Line)
	}
	return out
}

func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}
