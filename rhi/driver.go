// Copyright 2026 The mini-engine authors. All rights reserved.

// Package rhi defines a set of interfaces encompassing common
// GPU functionality.
// It is designed so that very different native APIs — explicit
// ones with manual synchronization as well as queue-based ones
// with automatic tracking — can implement the same contract.
package rhi

import (
	"errors"
	"sync"
)

// Driver is the interface that provides methods for
// loading and unloading an underlying implementation.
type Driver interface {
	// Open initializes the driver.
	// If it succeeds, further calls with the same receiver
	// have no effect and must return the same Device.
	// Callers should assume that Open is not safe for
	// parallel execution.
	Open() (Device, error)

	// Name returns the name of the driver.
	// It must not cause the driver to be opened.
	Name() string

	// Close deinitializes the driver.
	// Closing a driver that is not open has no effect.
	// All objects created from the driver's Device must be
	// destroyed beforehand.
	Close()
}

// ErrNotInstalled means that a platform-specific library
// required for the driver to work is not present in the
// system.
var ErrNotInstalled = errors.New("rhi: missing required library")

// ErrNoDevice means that no suitable device could be found.
var ErrNoDevice = errors.New("rhi: no suitable device found")

// ErrNoHostMemory means that host memory could not be
// allocated.
var ErrNoHostMemory = errors.New("rhi: out of host memory")

// ErrNoDeviceMemory means that device memory could not
// be allocated.
var ErrNoDeviceMemory = errors.New("rhi: out of device memory")

// ErrInvalidDesc means that a descriptor passed to one of the
// Device's creation methods does not describe a creatable
// object (zero size, malformed range, mismatched layout and
// so on).
var ErrInvalidDesc = errors.New("rhi: invalid descriptor")

// ErrUsage means that an operation was called outside its
// legal state, such as mapping a non-mappable buffer or
// recording a draw outside an open pass.
// It indicates a programmer error and is reported at call
// time, never deferred to the GPU.
var ErrUsage = errors.New("rhi: invalid usage")

// ErrUnsupportedFormat means that a requested format, or a
// format/usage combination, is not supported by the active
// backend. The caller may retry with an alternative format.
var ErrUnsupportedFormat = errors.New("rhi: unsupported format")

// ErrShaderLanguage means that the backend cannot consume the
// supplied shader language and has no internal translation
// for it.
var ErrShaderLanguage = errors.New("rhi: unsupported shader language")

// ErrDeviceLost means that the device is in an unrecoverable
// state. Upon encountering such an error, the application
// must destroy everything that it created using the Device
// and then call the driver's Close method. It may call Open
// again to reinitialize the driver for further use.
var ErrDeviceLost = errors.New("rhi: device lost")

// Drivers returns the registered Drivers.
// Client code imports specific backend packages, and then
// calls this function to select one. Backends that do not
// register themselves on init will not be considered for
// selection.
func Drivers() []Driver {
	mu.Lock()
	defer mu.Unlock()
	drv := make([]Driver, len(drivers))
	copy(drv, drivers)
	return drv
}

// Register registers a Driver.
// Driver implementations are expected to call Register
// exactly once, from an init function.
// If a driver with the same name has already been
// registered, it will be replaced by drv.
func Register(drv Driver) {
	mu.Lock()
	defer mu.Unlock()
	name := drv.Name()
	for i := range drivers {
		if drivers[i].Name() == name {
			drivers[i] = drv
			return
		}
	}
	drivers = append(drivers, drv)
}

var (
	mu      sync.Mutex
	drivers []Driver
)
