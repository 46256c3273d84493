package device

import "sync/atomic"

// MemFlag declares how kernels are expected to access a buffer. Like the
// CL_MEM_* flags it mirrors, it is a declaration of intent recorded at
// allocation time, not an enforced permission.
type MemFlag uint32

const (
	MemReadWrite MemFlag = iota
	MemReadOnly
	MemWriteOnly
)

// Buffer is a fixed-length device allocation of 32-bit signed integers.
// All slot accessors are atomic at single-slot granularity, which is the
// only synchronization kernels may rely on.
type Buffer struct {
	flags MemFlag
	data  []int32
}

// NewBuffer allocates a zeroed device buffer of n elements.
func (self *Context) NewBuffer(n int, flags MemFlag) (*Buffer, error) {
	if self.isClosed() {
		return nil, ErrContextClosed
	}
	if n < 0 {
		return nil, ErrInvalidLength
	}
	return &Buffer{
		flags: flags,
		data:  make([]int32, n),
	}, nil
}

// Len returns the number of elements in the buffer.
func (self *Buffer) Len() int {
	return len(self.data)
}

// Flags returns the access intent declared at allocation.
func (self *Buffer) Flags() MemFlag {
	return self.flags
}

// Load atomically reads slot i.
func (self *Buffer) Load(i int) int32 {
	return atomic.LoadInt32(&self.data[i])
}

// Store atomically writes slot i.
func (self *Buffer) Store(i int, v int32) {
	atomic.StoreInt32(&self.data[i], v)
}

// Inc atomically increments slot i, returning the new value.
func (self *Buffer) Inc(i int) int32 {
	return atomic.AddInt32(&self.data[i], 1)
}

// CompareAndSwap atomically replaces slot i with new if it currently holds
// old, reporting whether the swap happened.
func (self *Buffer) CompareAndSwap(i int, old, new int32) bool {
	return atomic.CompareAndSwapInt32(&self.data[i], old, new)
}
