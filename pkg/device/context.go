package device

import (
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Context is an execution context bound to one reserved device. It owns the
// worker pool that runs kernel grids and is the allocator for device
// buffers and command queues. Contexts are not safe for use after Close.
type Context struct {
	platform *Platform
	device   DeviceInfo
	pool     *ants.Pool
	log      *logrus.Logger
	closed   uint32
}

type ContextOption func(*Context)

// WithLogger sets the logger used for launch tracing. The default logger
// only emits warnings.
func WithLogger(log *logrus.Logger) ContextOption {
	return func(c *Context) {
		c.log = log
	}
}

func newContext(p *Platform, dev DeviceInfo, opts ...ContextOption) (*Context, error) {
	ctx := &Context{
		platform: p,
		device:   dev,
	}
	for _, opt := range opts {
		opt(ctx)
	}

	if ctx.log == nil {
		ctx.log = logrus.New()
		ctx.log.SetLevel(logrus.WarnLevel)
	}

	pool, err := ants.NewPool(dev.Cores)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create worker pool")
	}
	ctx.pool = pool

	return ctx, nil
}

// Device returns the device this context is bound to.
func (self *Context) Device() DeviceInfo {
	return self.device
}

// Close releases the worker pool and the device reservation. Close is
// idempotent; only the first call does anything.
func (self *Context) Close() error {
	if !atomic.CompareAndSwapUint32(&self.closed, 0, 1) {
		return nil
	}
	self.pool.Release()
	self.platform.release(self.device.Index)
	return nil
}

func (self *Context) isClosed() bool {
	return atomic.LoadUint32(&self.closed) != 0
}
