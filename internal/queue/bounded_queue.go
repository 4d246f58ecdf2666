package queue

// Unbounded disables the capacity ceiling of a BoundedQueue.
const Unbounded = -1

const initialSlots = 16

// BoundedQueue is a FIFO backed by a ring buffer that grows on demand up to
// its capacity. Once full, every Enqueue evicts the oldest element before
// storing the new one, so Size never exceeds Capacity.
type BoundedQueue[T any] struct {
	items    []T
	head     int
	count    int
	capacity int
}

func NewBoundedQueue[T any](capacity int) *BoundedQueue[T] {
	if capacity < 0 {
		capacity = Unbounded
	}

	return &BoundedQueue[T]{capacity: capacity}
}

// Enqueue appends item at the back. A queue with capacity 0 stays empty:
// the eviction happens before the insert and leaves no slot for it.
func (q *BoundedQueue[T]) Enqueue(item T) {
	if q.capacity != Unbounded && q.count == q.capacity {
		q.Dequeue()
	}

	if q.capacity == 0 {
		return
	}

	if q.count == len(q.items) {
		q.grow()
	}

	q.items[(q.head+q.count)%len(q.items)] = item
	q.count++
}

func (q *BoundedQueue[T]) Dequeue() (T, bool) {
	var zero T

	if q.count == 0 {
		return zero, false
	}

	item := q.items[q.head]
	q.items[q.head] = zero
	q.head = (q.head + 1) % len(q.items)
	q.count--

	return item, true
}

func (q *BoundedQueue[T]) First() (T, bool) {
	if q.count == 0 {
		var zero T
		return zero, false
	}

	return q.items[q.head], true
}

func (q *BoundedQueue[T]) Size() int {
	return q.count
}

func (q *BoundedQueue[T]) Capacity() int {
	return q.capacity
}

func (q *BoundedQueue[T]) Clear() {
	clear(q.items)
	q.head = 0
	q.count = 0
}

// Items returns a copy of the queue contents, oldest first.
func (q *BoundedQueue[T]) Items() []T {
	out := make([]T, q.count)
	for i := 0; i < q.count; i++ {
		out[i] = q.items[(q.head+i)%len(q.items)]
	}

	return out
}

func (q *BoundedQueue[T]) grow() {
	size := 2 * len(q.items)
	if size == 0 {
		size = initialSlots
	}

	if q.capacity != Unbounded && size > q.capacity {
		size = q.capacity
	}

	items := make([]T, size)
	for i := 0; i < q.count; i++ {
		items[i] = q.items[(q.head+i)%len(q.items)]
	}

	q.items = items
	q.head = 0
}
