package approval

import (
	"context"

	"github.com/puzpuzpuz/xsync/v3"
)

// courseLocks serialises mutations per course. Each course gets a single slot
// channel; acquiring it honours context cancellation so waiters never block
// past their deadline. A slot is dropped once no holder or waiter refers to it.
type courseLocks struct {
	slots *xsync.MapOf[string, *courseSlot]
}

// refs is only read or written inside Compute, under the bucket lock.
type courseSlot struct {
	ch   chan struct{}
	refs int
}

func newCourseLocks() *courseLocks {
	return &courseLocks{slots: xsync.NewMapOf[string, *courseSlot]()}
}

func (l *courseLocks) acquire(ctx context.Context, courseID string) (func(), error) {
	slot, _ := l.slots.Compute(courseID, func(current *courseSlot, loaded bool) (*courseSlot, bool) {
		if !loaded {
			current = &courseSlot{ch: make(chan struct{}, 1)}
		}
		current.refs++
		return current, false
	})
	select {
	case slot.ch <- struct{}{}:
		return func() {
			<-slot.ch
			l.release(courseID)
		}, nil
	case <-ctx.Done():
		l.release(courseID)
		return nil, ctx.Err()
	}
}

func (l *courseLocks) release(courseID string) {
	l.slots.Compute(courseID, func(current *courseSlot, loaded bool) (*courseSlot, bool) {
		if !loaded {
			return current, true
		}
		current.refs--
		return current, current.refs == 0
	})
}

func (l *courseLocks) size() int {
	return l.slots.Size()
}
