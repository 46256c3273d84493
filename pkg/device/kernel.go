package device

// WorkItem identifies one point in a kernel launch's global ND-range and
// carries the range's shape.
type WorkItem struct {
	id   [2]int
	size [2]int
	dims int
}

// GlobalID returns this work item's index in the given dimension.
func (self WorkItem) GlobalID(dim int) int {
	return self.id[dim]
}

// GlobalSize returns the launch's global work size in the given dimension.
func (self WorkItem) GlobalSize(dim int) int {
	return self.size[dim]
}

// Dims returns the number of dimensions in the launch's range (1 or 2).
func (self WorkItem) Dims() int {
	return self.dims
}

// KernelFunc is a kernel body, invoked once per work item. Bodies run
// concurrently and may only communicate through the atomic Buffer
// accessors.
type KernelFunc func(item WorkItem, args []*Buffer)

// Kernel is a compiled kernel: a named entry point with a fixed buffer
// argument count. Building one is cheap; the same kernel may be launched
// any number of times.
type Kernel struct {
	name  string
	nargs int
	fn    KernelFunc
}

// NewKernel builds a kernel from its entry point name, declared argument
// count, and body.
func NewKernel(name string, nargs int, fn KernelFunc) *Kernel {
	return &Kernel{
		name:  name,
		nargs: nargs,
		fn:    fn,
	}
}

// Name returns the kernel's entry point name.
func (self *Kernel) Name() string {
	return self.name
}

// Launch accumulates the arguments, global work sizes, and wait-list for
// one kernel enqueue, mirroring how an ND-range launch is assembled on a
// real accelerator API.
type Launch struct {
	kernel *Kernel
	args   []*Buffer
	sizes  []int
	waits  []*Event
}

// NewLaunch starts a launch of k.
func NewLaunch(k *Kernel) *Launch {
	return &Launch{kernel: k}
}

// SetArg appends the next buffer argument.
func (self *Launch) SetArg(b *Buffer) *Launch {
	self.args = append(self.args, b)
	return self
}

// SetGlobalWorkSizes sets the global range shape (1 or 2 dimensions).
func (self *Launch) SetGlobalWorkSizes(sizes ...int) *Launch {
	self.sizes = sizes
	return self
}

// SetWaitEvents appends events that must complete before the kernel runs.
func (self *Launch) SetWaitEvents(events ...*Event) *Launch {
	self.waits = append(self.waits, events...)
	return self
}

// EnqueueNDRange submits the launch to q. The returned event completes
// when the kernel has run over its whole range (or when a wait-list
// predecessor has failed).
func (self *Launch) EnqueueNDRange(q *Queue) (*Event, error) {
	return q.enqueueKernel(self)
}
