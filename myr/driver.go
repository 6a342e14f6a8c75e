package myr

import (
	"strings"

	"github.com/perlw/abyssal_drifter/gpumem"
)

// Loader resolves the driver entry points needed before an instance exists.
type Loader interface {
	Load() (Entry, error)
}

type Entry interface {
	InstanceLayers() ([]string, error)
	CreateInstance(info InstanceInfo) (Instance, error)
}

type InstanceInfo struct {
	AppName       string
	AppVersion    Version
	EngineName    string
	EngineVersion Version
	APIVersion    Version
	Extensions    []string
	Layers        []string

	// DebugCallback, when set, also receives messages emitted while the
	// instance itself is created and destroyed.
	DebugCallback DebugCallback
}

type Instance interface {
	CreateDebugReporter(cb DebugCallback) (DebugReporter, error)
	PhysicalDevices() ([]PhysicalDevice, error)
	Destroy()
}

// Window is a native window that can host a presentation surface.
type Window interface {
	RequiredInstanceExtensions() ([]string, error)
	CreateSurface(instance Instance) (Surface, error)
}

type Surface interface {
	Destroy()
}

type DebugReporter interface {
	Destroy()
}

type PhysicalDevice interface {
	Properties() DeviceProperties
	QueueFamilies() []QueueFamilyProperties
	SurfaceSupport(family int, surface Surface) (bool, error)
	MemoryProperties() gpumem.MemoryProperties
	CreateDevice(info DeviceInfo) (Device, error)
}

type QueueFlags uint32

const (
	QueueGraphics QueueFlags = 1 << iota
	QueueCompute
	QueueTransfer
	QueueSparseBinding
)

func (f QueueFlags) Has(flag QueueFlags) bool {
	return f&flag == flag
}

func (f QueueFlags) String() string {
	var names []string
	if f.Has(QueueGraphics) {
		names = append(names, "graphics")
	}
	if f.Has(QueueCompute) {
		names = append(names, "compute")
	}
	if f.Has(QueueTransfer) {
		names = append(names, "transfer")
	}
	if f.Has(QueueSparseBinding) {
		names = append(names, "sparse")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

type QueueFamilyProperties struct {
	Flags QueueFlags
	Count int
}

type QueueRequest struct {
	Family     int
	Priorities []float32
}

type Features struct {
	SampleRateShading bool
	SamplerAnisotropy bool
}

type DeviceInfo struct {
	Queues     []QueueRequest
	Extensions []string
	Layers     []string
	Features   Features
	// DynamicRendering chains the dynamic rendering feature struct.
	DynamicRendering bool
}

type Device interface {
	gpumem.Device
	Queue(family int) Queue
	WaitIdle() error
	Destroy()
}

type Queue interface {
	Family() int
	WaitIdle() error
}

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	}
	return "unknown"
}

type MessageType int

const (
	MessageGeneral MessageType = iota
	MessageValidation
	MessagePerformance
)

func (m MessageType) String() string {
	switch m {
	case MessageGeneral:
		return "general"
	case MessageValidation:
		return "validation"
	case MessagePerformance:
		return "performance"
	}
	return "unknown"
}

type DebugCallback func(severity Severity, kind MessageType, message string)
