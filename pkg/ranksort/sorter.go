package ranksort

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/nathantp/gpu-rank-sort/pkg/device"
)

// Sorter sorts arrays of non-negative int32s on a device using a two-stage
// rank sort: an NxN comparison kernel derives each element's rank, then a
// scatter kernel places each element at its rank, resolving duplicate
// collisions by atomic forward probing.
//
// A Sorter owns one command queue and reuses its kernels across calls, but
// every Sort call allocates fresh buffers, so calls are independent.
// Concurrent calls on one Sorter are not supported. Equal elements come
// out in unspecified relative order; use MergeSort if stability matters.
type Sorter struct {
	ctx     *device.Context
	queue   *device.Queue
	compare *device.Kernel
	assign  *device.Kernel

	compareTime time.Duration
	assignTime  time.Duration
}

// NewSorter creates a sorter on the given context.
func NewSorter(ctx *device.Context) (*Sorter, error) {
	queue, err := ctx.NewQueue()
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create command queue")
	}

	return &Sorter{
		ctx:     ctx,
		queue:   queue,
		compare: NewCompareKernel(),
		assign:  NewAssignKernel(),
	}, nil
}

// Sort returns an ascending sorted permutation of src. src is not
// modified. Every value must be non-negative (EmptySlot is reserved).
//
// The device-side stages form a strict chain: source and count uploads
// precede the compare kernel; the result-buffer fill and the compare
// kernel precede the assign kernel; both kernels precede the read-back.
// Any stage failure aborts the whole sort.
func (self *Sorter) Sort(src []int32) ([]int32, error) {
	self.compareTime = 0
	self.assignTime = 0

	n := len(src)
	if n == 0 {
		return []int32{}, nil
	}
	for i, v := range src {
		if v < 0 {
			return nil, fmt.Errorf("Negative value %v at index %v: inputs must be in [0, MaxInt32)", v, i)
		}
	}

	sourceBuf, err := self.ctx.NewBuffer(n, device.MemReadOnly)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to allocate source buffer")
	}
	countBuf, err := self.ctx.NewBuffer(n, device.MemReadWrite)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to allocate count buffer")
	}
	resultBuf, err := self.ctx.NewBuffer(n, device.MemReadWrite)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to allocate result buffer")
	}

	sourceEv, err := self.queue.EnqueueWrite(sourceBuf, src)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to upload source buffer")
	}
	countEv, err := self.queue.EnqueueWrite(countBuf, make([]int32, n))
	if err != nil {
		return nil, errors.Wrap(err, "Failed to upload count buffer")
	}

	sentinels := make([]int32, n)
	for i := range sentinels {
		sentinels[i] = EmptySlot
	}
	resultEv, err := self.queue.EnqueueWrite(resultBuf, sentinels)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to upload result buffer")
	}

	compareEv, err := device.NewLaunch(self.compare).
		SetArg(sourceBuf).
		SetArg(countBuf).
		SetGlobalWorkSizes(n, n).
		SetWaitEvents(sourceEv, countEv).
		EnqueueNDRange(self.queue)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to launch compare kernel")
	}

	assignEv, err := device.NewLaunch(self.assign).
		SetArg(sourceBuf).
		SetArg(countBuf).
		SetArg(resultBuf).
		SetGlobalWorkSizes(n).
		SetWaitEvents(resultEv, compareEv).
		EnqueueNDRange(self.queue)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to launch assign kernel")
	}

	out := make([]int32, n)
	readEv, err := self.queue.EnqueueRead(resultBuf, out, compareEv, assignEv)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to read back results")
	}
	if err := readEv.Wait(); err != nil {
		return nil, errors.Wrap(err, "Failed to synchronize on result read")
	}

	if self.compareTime, err = compareEv.Duration(); err != nil {
		return nil, errors.Wrap(err, "Failed to profile compare kernel")
	}
	if self.assignTime, err = assignEv.Duration(); err != nil {
		return nil, errors.Wrap(err, "Failed to profile assign kernel")
	}

	return out, nil
}

// CompareTime returns the device time of the compare kernel from the last
// Sort call.
func (self *Sorter) CompareTime() time.Duration {
	return self.compareTime
}

// AssignTime returns the device time of the assign kernel from the last
// Sort call.
func (self *Sorter) AssignTime() time.Duration {
	return self.assignTime
}

// DeviceTime returns the summed device time of both kernels from the last
// Sort call.
func (self *Sorter) DeviceTime() time.Duration {
	return self.compareTime + self.assignTime
}
