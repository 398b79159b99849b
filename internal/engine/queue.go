package engine

// LotQueue is a FIFO of player ids backed by a growable ring buffer:
// PopFront and PushBack are O(1) (amortized for PushBack).
type LotQueue struct {
	buf  []string
	head int
	size int
}

// NewLotQueue creates a queue holding ids in order.
func NewLotQueue(ids []string) *LotQueue {
	q := &LotQueue{buf: make([]string, max(len(ids), 4))}
	for _, id := range ids {
		q.PushBack(id)
	}
	return q
}

// Len returns the number of queued ids.
func (q *LotQueue) Len() int {
	return q.size
}

// PushBack appends id to the tail of the queue.
func (q *LotQueue) PushBack(id string) {
	if q.size == len(q.buf) {
		q.grow()
	}
	q.buf[(q.head+q.size)%len(q.buf)] = id
	q.size++
}

// PopFront removes and returns the head of the queue.
func (q *LotQueue) PopFront() (string, bool) {
	if q.size == 0 {
		return "", false
	}
	id := q.buf[q.head]
	q.buf[q.head] = ""
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	return id, true
}

// Peek returns up to n ids from the head without removing them.
func (q *LotQueue) Peek(n int) []string {
	if n > q.size {
		n = q.size
	}
	if n <= 0 {
		return []string{}
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	return out
}

// Items returns every queued id in order.
func (q *LotQueue) Items() []string {
	return q.Peek(q.size)
}

// Contains reports whether id is queued.
func (q *LotQueue) Contains(id string) bool {
	for i := 0; i < q.size; i++ {
		if q.buf[(q.head+i)%len(q.buf)] == id {
			return true
		}
	}
	return false
}

func (q *LotQueue) grow() {
	next := make([]string, max(2*len(q.buf), 4))
	for i := 0; i < q.size; i++ {
		next[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	q.buf = next
	q.head = 0
}
