package device

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Queue issues commands against a context's device: blocking buffer
// transfers and asynchronous kernel launches, both gated on explicit
// wait-lists. Profiling is on by default so kernel events carry start/end
// timestamps.
type Queue struct {
	ctx       *Context
	profiling bool
}

type QueueOption func(*Queue)

// WithProfiling controls whether kernel events record timestamps.
func WithProfiling(enabled bool) QueueOption {
	return func(q *Queue) {
		q.profiling = enabled
	}
}

// NewQueue creates a command queue on this context.
func (self *Context) NewQueue(opts ...QueueOption) (*Queue, error) {
	if self.isClosed() {
		return nil, ErrContextClosed
	}
	q := &Queue{
		ctx:       self,
		profiling: true,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q, nil
}

// EnqueueWrite copies src into b after every wait event has completed. The
// call blocks until the copy is done; the returned event is already
// complete and exists to gate later commands.
func (self *Queue) EnqueueWrite(b *Buffer, src []int32, waits ...*Event) (*Event, error) {
	if self.ctx.isClosed() {
		return nil, ErrContextClosed
	}
	if len(src) != b.Len() {
		return nil, errors.Wrapf(ErrLengthMismatch, "Write of %v elements to buffer of %v", len(src), b.Len())
	}
	if err := WaitAll(waits...); err != nil {
		return nil, errors.Wrap(err, "Wait-list failure before buffer write")
	}

	// Slot-atomic stores keep host transfers coherent with any concurrent
	// atomic readers.
	for i, v := range src {
		b.Store(i, v)
	}

	ev := newEvent("write")
	ev.complete(nil)
	return ev, nil
}

// EnqueueRead copies b into dst after every wait event has completed. Like
// EnqueueWrite it blocks until the copy is done.
func (self *Queue) EnqueueRead(b *Buffer, dst []int32, waits ...*Event) (*Event, error) {
	if self.ctx.isClosed() {
		return nil, ErrContextClosed
	}
	if len(dst) != b.Len() {
		return nil, errors.Wrapf(ErrLengthMismatch, "Read of %v elements from buffer of %v", len(dst), b.Len())
	}
	if err := WaitAll(waits...); err != nil {
		return nil, errors.Wrap(err, "Wait-list failure before buffer read")
	}

	for i := range dst {
		dst[i] = b.Load(i)
	}

	ev := newEvent("read")
	ev.complete(nil)
	return ev, nil
}

func (self *Queue) enqueueKernel(l *Launch) (*Event, error) {
	if self.ctx.isClosed() {
		return nil, ErrContextClosed
	}
	if l.kernel == nil {
		return nil, errors.New("Launch has no kernel")
	}
	if len(l.args) != l.kernel.nargs {
		return nil, errors.Wrapf(ErrBadArgCount,
			"Kernel %v wants %v arguments, launch bound %v", l.kernel.name, l.kernel.nargs, len(l.args))
	}
	if len(l.sizes) < 1 || len(l.sizes) > 2 {
		return nil, errors.Wrapf(ErrBadWorkSize, "Kernel %v launched with %v dimensions", l.kernel.name, len(l.sizes))
	}
	for _, s := range l.sizes {
		if s <= 0 {
			return nil, errors.Wrapf(ErrBadWorkSize, "Kernel %v launched with dimension of size %v", l.kernel.name, s)
		}
	}

	ev := newEvent(l.kernel.name)

	self.ctx.log.WithFields(logrus.Fields{
		"kernel": l.kernel.name,
		"sizes":  l.sizes,
		"waits":  len(l.waits),
	}).Debug("Enqueued kernel")

	go func() {
		if err := WaitAll(l.waits...); err != nil {
			ev.complete(errors.Wrapf(err, "Wait-list failure before kernel %v", l.kernel.name))
			return
		}

		if self.profiling {
			ev.markStart()
		}
		err := self.runGrid(l)
		if self.profiling {
			ev.markEnd()
		}
		if err != nil {
			ev.complete(errors.Wrapf(err, "Kernel %v failed", l.kernel.name))
			return
		}
		ev.complete(nil)
	}()

	return ev, nil
}

// runGrid executes the launch's full global range on the context pool,
// chunked so each worker gets a contiguous run of flattened indices.
func (self *Queue) runGrid(l *Launch) error {
	dims := len(l.sizes)
	rowLen := 1
	if dims == 2 {
		rowLen = l.sizes[1]
	}

	total := l.sizes[0] * rowLen

	// Oversubscribe slightly so uneven kernel bodies balance across the
	// pool.
	nchunk := self.ctx.device.Cores * 4
	if nchunk > total {
		nchunk = total
	}
	chunkLen := (total + nchunk - 1) / nchunk

	var wg sync.WaitGroup
	var submitErr error
	for start := 0; start < total; start += chunkLen {
		end := start + chunkLen
		if end > total {
			end = total
		}

		lo, hi := start, end
		wg.Add(1)
		err := self.ctx.pool.Submit(func() {
			defer wg.Done()
			item := WorkItem{dims: dims}
			item.size[0] = l.sizes[0]
			if dims == 2 {
				item.size[1] = l.sizes[1]
			}
			for flat := lo; flat < hi; flat++ {
				item.id[0] = flat / rowLen
				if dims == 2 {
					item.id[1] = flat % rowLen
				}
				l.kernel.fn(item, l.args)
			}
		})
		if err != nil {
			wg.Done()
			submitErr = errors.Wrap(err, "Failed to submit kernel chunk")
			break
		}
	}

	wg.Wait()
	return submitErr
}
