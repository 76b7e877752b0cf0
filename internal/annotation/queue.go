package annotation

import (
	"reflect"
)

// Queue collects annotations declared ahead of the type or member they
// decorate. Captures move the whole queue, in order, into a Store and leave
// it empty, so a pending annotation applies to the next capture only.
type Queue struct {
	pending []Record
}

// MarkPending appends a record to the queue.
func (q *Queue) MarkPending(r Record) {
	q.pending = append(q.pending, r)
}

// Mark resolves an annotation by name and queues it.
func (q *Queue) Mark(name string, args ...any) error {
	r, err := Resolve(name, args...)
	if err != nil {
		return err
	}
	q.MarkPending(r)
	return nil
}

// Pending returns a copy of the queued records.
func (q *Queue) Pending() []Record {
	return append([]Record(nil), q.pending...)
}

// Len is the number of queued records.
func (q *Queue) Len() int { return len(q.pending) }

// CaptureForType moves the queue into the class annotations of t. It is a
// no-op on an empty queue.
func (q *Queue) CaptureForType(s *Store, t reflect.Type) {
	if len(q.pending) == 0 {
		return
	}
	s.Declare(t, q.drain()...)
}

// CaptureForMember moves the queue into the annotations of member of t. It
// is a no-op on an empty queue.
func (q *Queue) CaptureForMember(s *Store, t reflect.Type, member string) {
	if len(q.pending) == 0 {
		return
	}
	s.DeclareMember(t, member, q.drain()...)
}

func (q *Queue) drain() []Record {
	out := q.pending
	q.pending = nil
	return out
}
