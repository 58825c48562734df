package orientation

import (
	"sync"
	"time"

	"mihrab.noorapp.org/internal/qibla"
)

// MockSource emits a compass heading that turns by Step degrees every
// Interval. It stands in for a sensor during development.
type MockSource struct {
	Interval time.Duration
	Step     float64
	Start    float64
}

func NewMockSource(interval time.Duration) *MockSource {
	return &MockSource{Interval: interval, Step: 5}
}

func (m *MockSource) Subscribe(handler func(qibla.Event)) (func(), error) {
	interval := m.Interval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}

	quit := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		heading := m.Start
		for {
			select {
			case <-quit:
				return
			case <-ticker.C:
				handler(qibla.CompassHeadingEvent{Heading: heading})
				heading = qibla.Normalize360(heading + m.Step)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(quit)
			wg.Wait()
		})
	}, nil
}
