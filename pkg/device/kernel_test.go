package device

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestContext(t *testing.T) *Context {
	t.Helper()

	ctx, err := Discover().Open()
	require.Nil(t, err, "Couldn't open test context")
	t.Cleanup(func() { ctx.Close() })
	return ctx
}

func TestWriteReadRoundTrip(t *testing.T) {
	ctx := openTestContext(t)

	q, err := ctx.NewQueue()
	require.Nil(t, err)

	buf, err := ctx.NewBuffer(8, MemReadWrite)
	require.Nil(t, err)

	src := []int32{3, 1, 4, 1, 5, 9, 2, 6}
	wEv, err := q.EnqueueWrite(buf, src)
	require.Nil(t, err)
	require.Nil(t, wEv.Wait())

	dst := make([]int32, 8)
	rEv, err := q.EnqueueRead(buf, dst, wEv)
	require.Nil(t, err)
	require.Nil(t, rEv.Wait())

	require.Equal(t, src, dst)
}

func TestTransferLengthMismatch(t *testing.T) {
	ctx := openTestContext(t)

	q, err := ctx.NewQueue()
	require.Nil(t, err)

	buf, err := ctx.NewBuffer(8, MemReadWrite)
	require.Nil(t, err)

	_, err = q.EnqueueWrite(buf, make([]int32, 4))
	require.ErrorIs(t, err, ErrLengthMismatch)

	_, err = q.EnqueueRead(buf, make([]int32, 16))
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestKernelLaunch1D(t *testing.T) {
	ctx := openTestContext(t)

	q, err := ctx.NewQueue()
	require.Nil(t, err)

	n := 1000
	buf, err := ctx.NewBuffer(n, MemReadWrite)
	require.Nil(t, err)

	// Every work item writes its own global id into its slot.
	k := NewKernel("iota", 1, func(item WorkItem, args []*Buffer) {
		id := item.GlobalID(0)
		args[0].Store(id, (int32)(id))
	})

	ev, err := NewLaunch(k).
		SetArg(buf).
		SetGlobalWorkSizes(n).
		EnqueueNDRange(q)
	require.Nil(t, err)
	require.Nil(t, ev.Wait())

	out := make([]int32, n)
	_, err = q.EnqueueRead(buf, out, ev)
	require.Nil(t, err)
	for i := 0; i < n; i++ {
		require.Equal(t, (int32)(i), out[i], "Work item %v did not run exactly once", i)
	}
}

func TestKernelLaunch2D(t *testing.T) {
	ctx := openTestContext(t)

	q, err := ctx.NewQueue()
	require.Nil(t, err)

	rows, cols := 13, 7
	buf, err := ctx.NewBuffer(rows*cols, MemReadWrite)
	require.Nil(t, err)

	// Every (i, j) increments its flattened slot: afterwards every slot
	// must hold exactly one if the grid covered each pair exactly once.
	k := NewKernel("gridcheck", 1, func(item WorkItem, args []*Buffer) {
		i := item.GlobalID(0)
		j := item.GlobalID(1)
		args[0].Inc(i*item.GlobalSize(1) + j)
	})

	ev, err := NewLaunch(k).
		SetArg(buf).
		SetGlobalWorkSizes(rows, cols).
		EnqueueNDRange(q)
	require.Nil(t, err)
	require.Nil(t, ev.Wait())

	for i := 0; i < rows*cols; i++ {
		require.Equal(t, (int32)(1), buf.Load(i), "Grid point %v visited wrong number of times", i)
	}
}

func TestWorkItemShape(t *testing.T) {
	item := WorkItem{id: [2]int{3, 4}, size: [2]int{10, 20}, dims: 2}
	require.Equal(t, 2, item.Dims())
	require.Equal(t, 3, item.GlobalID(0))
	require.Equal(t, 4, item.GlobalID(1))
	require.Equal(t, 10, item.GlobalSize(0))
	require.Equal(t, 20, item.GlobalSize(1))
}

func TestLaunchValidation(t *testing.T) {
	ctx := openTestContext(t)

	q, err := ctx.NewQueue()
	require.Nil(t, err)

	buf, err := ctx.NewBuffer(4, MemReadWrite)
	require.Nil(t, err)

	nop := NewKernel("nop", 1, func(WorkItem, []*Buffer) {})

	_, err = NewLaunch(nop).SetGlobalWorkSizes(4).EnqueueNDRange(q)
	require.ErrorIs(t, err, ErrBadArgCount, "Missing argument should fail the launch")

	_, err = NewLaunch(nop).SetArg(buf).SetArg(buf).SetGlobalWorkSizes(4).EnqueueNDRange(q)
	require.ErrorIs(t, err, ErrBadArgCount, "Extra argument should fail the launch")

	_, err = NewLaunch(nop).SetArg(buf).EnqueueNDRange(q)
	require.ErrorIs(t, err, ErrBadWorkSize, "Missing work size should fail the launch")

	_, err = NewLaunch(nop).SetArg(buf).SetGlobalWorkSizes(0).EnqueueNDRange(q)
	require.ErrorIs(t, err, ErrBadWorkSize, "Zero work size should fail the launch")

	_, err = NewLaunch(nop).SetArg(buf).SetGlobalWorkSizes(2, 2, 2).EnqueueNDRange(q)
	require.ErrorIs(t, err, ErrBadWorkSize, "Three dimensions should fail the launch")
}

func TestWaitEventOrdering(t *testing.T) {
	ctx := openTestContext(t)

	q, err := ctx.NewQueue()
	require.Nil(t, err)

	n := 512
	buf, err := ctx.NewBuffer(n, MemReadWrite)
	require.Nil(t, err)

	fill := NewKernel("fill", 1, func(item WorkItem, args []*Buffer) {
		args[0].Store(item.GlobalID(0), (int32)(item.GlobalID(0)))
	})
	double := NewKernel("double", 1, func(item WorkItem, args []*Buffer) {
		id := item.GlobalID(0)
		args[0].Store(id, 2*args[0].Load(id))
	})

	fillEv, err := NewLaunch(fill).SetArg(buf).SetGlobalWorkSizes(n).EnqueueNDRange(q)
	require.Nil(t, err)

	doubleEv, err := NewLaunch(double).
		SetArg(buf).
		SetGlobalWorkSizes(n).
		SetWaitEvents(fillEv).
		EnqueueNDRange(q)
	require.Nil(t, err)

	out := make([]int32, n)
	_, err = q.EnqueueRead(buf, out, fillEv, doubleEv)
	require.Nil(t, err)

	for i := 0; i < n; i++ {
		require.Equal(t, (int32)(2*i), out[i], "Second kernel ran before the first completed")
	}
}

func TestPoisonedWaitList(t *testing.T) {
	ctx := openTestContext(t)

	q, err := ctx.NewQueue()
	require.Nil(t, err)

	bad := newEvent("bad")
	bad.complete(fmt.Errorf("Upstream failure"))

	nop := NewKernel("nop", 0, func(WorkItem, []*Buffer) {})
	ev, err := NewLaunch(nop).
		SetGlobalWorkSizes(4).
		SetWaitEvents(bad).
		EnqueueNDRange(q)
	require.Nil(t, err, "Enqueue itself should succeed; the failure surfaces on the event")

	err = ev.Wait()
	require.Error(t, err, "Poisoned wait-list must fail the dependent event")
	require.Contains(t, err.Error(), "Upstream failure")

	_, err = ev.Duration()
	require.Error(t, err, "Profiling a failed event must error")

	buf, err := ctx.NewBuffer(4, MemReadWrite)
	require.Nil(t, err)
	_, err = q.EnqueueRead(buf, make([]int32, 4), ev)
	require.Error(t, err, "Poisoned wait-list must fail a dependent read")
}

func TestKernelProfiling(t *testing.T) {
	ctx := openTestContext(t)

	q, err := ctx.NewQueue()
	require.Nil(t, err)

	buf, err := ctx.NewBuffer(64, MemReadWrite)
	require.Nil(t, err)

	spin := NewKernel("spin", 1, func(item WorkItem, args []*Buffer) {
		for k := 0; k < 1000; k++ {
			args[0].Inc(item.GlobalID(0))
		}
	})

	ev, err := NewLaunch(spin).SetArg(buf).SetGlobalWorkSizes(64).EnqueueNDRange(q)
	require.Nil(t, err)

	d, err := ev.Duration()
	require.Nil(t, err)
	require.Greater(t, d.Nanoseconds(), (int64)(0), "Profiled kernel should report a positive duration")

	// Profiling disabled: Duration must refuse.
	qNoProf, err := ctx.NewQueue(WithProfiling(false))
	require.Nil(t, err)

	ev2, err := NewLaunch(spin).SetArg(buf).SetGlobalWorkSizes(64).EnqueueNDRange(qNoProf)
	require.Nil(t, err)
	require.Nil(t, ev2.Wait())

	_, err = ev2.Duration()
	require.ErrorIs(t, err, ErrNotProfiled)
}
