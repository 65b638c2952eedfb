package depot

type operation struct {
	typ    operationType
	entity Entity
}

type operationType int

const (
	opAdd operationType = iota
	opRemove
)

// opQueue holds membership changes that reached a filter while it was
// locked. Order matters: the same entity may be added and removed several
// times during one iteration.
type opQueue struct {
	ops     []operation
	pending []operation
}

func newOpQueue() opQueue {
	return opQueue{}
}

func (q *opQueue) enqueue(typ operationType, e Entity) {
	q.ops = append(q.ops, operation{typ: typ, entity: e})
}

func (q *opQueue) len() int {
	return len(q.ops)
}

// drain replays queued operations against f. The queue is swapped out
// first so f can be locked again by whatever the replay triggers.
func (q *opQueue) drain(f *Filter) {
	if len(q.ops) == 0 {
		return
	}
	q.pending, q.ops = q.ops, q.pending[:0]
	for _, op := range q.pending {
		switch op.typ {
		case opAdd:
			f.onAdd(op.entity)
		case opRemove:
			f.onRemove(op.entity)
		}
	}
	clear(q.pending)
	q.pending = q.pending[:0]
}
