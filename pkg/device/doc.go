// Package device is a simulated accelerator runtime. It models the pieces
// of an OpenCL-style platform that a sort kernel needs (devices, contexts,
// profiling command queues, integer buffers, ND-range kernel launches, and
// completion events) while executing everything on the host CPU. Kernels
// are plain Go functions invoked once per work item; atomicity is provided
// at single-slot granularity by the Buffer type.
package device
