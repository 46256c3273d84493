package device

import (
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// DeviceInfo describes one simulated compute device.
type DeviceInfo struct {
	Index   int
	Name    string
	Vendor  string
	Version string
	Type    string

	// Cores is the number of hardware threads backing the device. Kernel
	// launches on a context for this device run on a pool of this size.
	Cores int
}

// String renders a capability dump in the style of a platform query tool,
// one attribute per line.
func (self DeviceInfo) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\tDEVICE_VENDOR: %v\n", self.Vendor)
	fmt.Fprintf(&b, "\tDEVICE_NAME: %v\n", self.Name)
	fmt.Fprintf(&b, "\tDEVICE_VERSION: %v\n", self.Version)
	fmt.Fprintf(&b, "\tDEVICE_TYPE: %v\n", self.Type)
	fmt.Fprintf(&b, "\tDEVICE_MAX_COMPUTE_UNITS: %v", self.Cores)
	return b.String()
}

// Platform owns the set of simulated devices and hands out at most one live
// Context per device. It must be constructed explicitly (Discover) and
// passed to whoever needs a context; there is no package-level instance.
type Platform struct {
	devices []DeviceInfo

	// Reservation state: the semaphore counts free devices, claimed marks
	// which specific device a context holds.
	devSemaphore *semaphore.Weighted
	claimed      []uint32
}

// Discover enumerates the simulated devices available to this process.
// There is currently one device, backed by the host CPU.
func Discover() *Platform {
	devs := []DeviceInfo{
		{
			Index:   0,
			Name:    "Simulated Accelerator",
			Vendor:  "gpu-rank-sort",
			Version: "1.0",
			Type:    "CPU",
			Cores:   runtime.NumCPU(),
		},
	}

	return &Platform{
		devices:      devs,
		devSemaphore: semaphore.NewWeighted((int64)(len(devs))),
		claimed:      make([]uint32, len(devs)),
	}
}

// Devices returns the discovered devices in index order.
func (self *Platform) Devices() []DeviceInfo {
	out := make([]DeviceInfo, len(self.devices))
	copy(out, self.devices)
	return out
}

// Open reserves a free device and returns a context bound to it. It fails
// with ErrDeviceBusy rather than blocking when no device is free. The
// reservation is released by Context.Close().
func (self *Platform) Open(opts ...ContextOption) (*Context, error) {
	if !self.devSemaphore.TryAcquire(1) {
		return nil, ErrDeviceBusy
	}

	devId := -1
	for i := 0; i < len(self.claimed); i++ {
		if atomic.CompareAndSwapUint32(&self.claimed[i], (uint32)(0), (uint32)(1)) {
			devId = i
			break
		}
	}

	// The semaphore ensures the above loop will succeed. This check should
	// never fail.
	if devId == -1 {
		self.devSemaphore.Release(1)
		return nil, fmt.Errorf("Failed to find free device. This shouldn't happen!")
	}

	ctx, err := newContext(self, self.devices[devId], opts...)
	if err != nil {
		self.release(devId)
		return nil, err
	}
	return ctx, nil
}

func (self *Platform) release(devId int) {
	atomic.StoreUint32(&self.claimed[devId], 0)
	self.devSemaphore.Release(1)
}
