package audit

import "sync"

// ringBuffer is a bounded, thread-safe buffer for security events. When full,
// the oldest events are dropped to make room for new ones so the decision
// path never blocks on a slow sink.
type ringBuffer struct {
	mu       sync.Mutex
	events   []SecurityEvent
	head     int // next write position
	tail     int // next read position
	count    int
	capacity int

	dropped int64
}

func newRingBuffer(capacity int) *ringBuffer {
	if capacity <= 0 {
		capacity = 4096
	}
	return &ringBuffer{
		events:   make([]SecurityEvent, capacity),
		capacity: capacity,
	}
}

// enqueue adds an event, dropping the oldest if necessary. Reports whether an
// event was dropped.
func (b *ringBuffer) enqueue(event SecurityEvent) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	droppedOne := false
	if b.count >= b.capacity {
		b.tail = (b.tail + 1) % b.capacity
		b.count--
		b.dropped++
		droppedOne = true
	}

	b.events[b.head] = event
	b.head = (b.head + 1) % b.capacity
	b.count++
	return droppedOne
}

// dequeueBatch removes up to n events from the buffer.
func (b *ringBuffer) dequeueBatch(n int) []SecurityEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == 0 {
		return nil
	}
	if n > b.count {
		n = b.count
	}

	result := make([]SecurityEvent, n)
	for i := 0; i < n; i++ {
		result[i] = b.events[b.tail]
		b.tail = (b.tail + 1) % b.capacity
	}
	b.count -= n
	return result
}

// len returns the current number of buffered events.
func (b *ringBuffer) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// droppedTotal returns the total number of dropped events.
func (b *ringBuffer) droppedTotal() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
