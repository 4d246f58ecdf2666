package display

import (
	"sync"

	"github.com/pako-23/typing-rate/internal/queue"
)

// StatusBar keeps the latest formatted rate. Text may be called from other
// goroutines while the observer renders.
type StatusBar struct {
	mu   sync.RWMutex
	text string
	unit string
}

func NewStatusBar(unit string) *StatusBar {
	return &StatusBar{
		text: queue.FormatRate(queue.NoData, unit),
		unit: unit,
	}
}

func (s *StatusBar) Render(rate int64) error {
	text := queue.FormatRate(rate, s.unit)

	s.mu.Lock()
	s.text = text
	s.mu.Unlock()

	return nil
}

func (s *StatusBar) Text() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.text
}
