package whatsapp

import (
	"sync"

	"github.com/jobh/imoveis/internal/domain/models"
)

// MonitorSize is how many inbound messages the monitor keeps.
const MonitorSize = 20

// Monitor is a bounded log of inbound messages, newest first.
type Monitor struct {
	mu      sync.RWMutex
	entries []models.ChatLogEntry
	size    int
}

// NewMonitor creates a monitor keeping at most size entries.
func NewMonitor(size int) *Monitor {
	if size <= 0 {
		size = MonitorSize
	}
	return &Monitor{size: size}
}

// Record adds an entry at the front, dropping the oldest beyond the limit.
func (m *Monitor) Record(entry models.ChatLogEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append([]models.ChatLogEntry{entry}, m.entries...)
	if len(m.entries) > m.size {
		m.entries = m.entries[:m.size]
	}
}

// Entries returns a copy of the log, newest first.
func (m *Monitor) Entries() []models.ChatLogEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.ChatLogEntry, len(m.entries))
	copy(out, m.entries)
	return out
}
