package service

import (
	"sync"

	"kc-mini-app-backend/internal/features/simulation/models"
)

const defaultWindowSize = 100

// Window keeps the most recent points in a fixed-size ring.
type Window struct {
	mu       sync.RWMutex
	capacity int
	items    []models.DataPoint
	start    int
	size     int
}

func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		capacity = defaultWindowSize
	}
	return &Window{
		capacity: capacity,
		items:    make([]models.DataPoint, capacity),
	}
}

func (w *Window) Push(points ...models.DataPoint) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, p := range points {
		if w.size < w.capacity {
			w.items[(w.start+w.size)%w.capacity] = p
			w.size++
			continue
		}
		w.items[w.start] = p
		w.start = (w.start + 1) % w.capacity
	}
}

// Points returns the window oldest first.
func (w *Window) Points() []models.DataPoint {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]models.DataPoint, 0, w.size)
	for i := 0; i < w.size; i++ {
		out = append(out, w.items[(w.start+i)%w.capacity])
	}
	return out
}

func (w *Window) Capacity() int {
	return w.capacity
}
