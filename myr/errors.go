package myr

import (
	stderrors "errors"
	"fmt"

	"github.com/pkg/errors"
)

// Result is a driver status code.
type Result int32

const (
	Success                   Result = 0
	NotReady                  Result = 1
	Timeout                   Result = 2
	EventSet                  Result = 3
	EventReset                Result = 4
	Incomplete                Result = 5
	ErrorOutOfHostMemory      Result = -1
	ErrorOutOfDeviceMemory    Result = -2
	ErrorInitializationFailed Result = -3
	ErrorDeviceLost           Result = -4
	ErrorMemoryMapFailed      Result = -5
	ErrorLayerNotPresent      Result = -6
	ErrorExtensionNotPresent  Result = -7
	ErrorFeatureNotPresent    Result = -8
	ErrorIncompatibleDriver   Result = -9
	ErrorTooManyObjects       Result = -10
	ErrorFormatNotSupported   Result = -11
	ErrorFragmentedPool       Result = -12
	ErrorSurfaceLost          Result = -1000000000
	ErrorNativeWindowInUse    Result = -1000000001
)

var resultNames = map[Result]string{
	Success:                   "VK_SUCCESS",
	NotReady:                  "VK_NOT_READY",
	Timeout:                   "VK_TIMEOUT",
	EventSet:                  "VK_EVENT_SET",
	EventReset:                "VK_EVENT_RESET",
	Incomplete:                "VK_INCOMPLETE",
	ErrorOutOfHostMemory:      "VK_ERROR_OUT_OF_HOST_MEMORY",
	ErrorOutOfDeviceMemory:    "VK_ERROR_OUT_OF_DEVICE_MEMORY",
	ErrorInitializationFailed: "VK_ERROR_INITIALIZATION_FAILED",
	ErrorDeviceLost:           "VK_ERROR_DEVICE_LOST",
	ErrorMemoryMapFailed:      "VK_ERROR_MEMORY_MAP_FAILED",
	ErrorLayerNotPresent:      "VK_ERROR_LAYER_NOT_PRESENT",
	ErrorExtensionNotPresent:  "VK_ERROR_EXTENSION_NOT_PRESENT",
	ErrorFeatureNotPresent:    "VK_ERROR_FEATURE_NOT_PRESENT",
	ErrorIncompatibleDriver:   "VK_ERROR_INCOMPATIBLE_DRIVER",
	ErrorTooManyObjects:       "VK_ERROR_TOO_MANY_OBJECTS",
	ErrorFormatNotSupported:   "VK_ERROR_FORMAT_NOT_SUPPORTED",
	ErrorFragmentedPool:       "VK_ERROR_FRAGMENTED_POOL",
	ErrorSurfaceLost:          "VK_ERROR_SURFACE_LOST_KHR",
	ErrorNativeWindowInUse:    "VK_ERROR_NATIVE_WINDOW_IN_USE_KHR",
}

func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return fmt.Sprintf("VkResult(%d)", int32(r))
}

func (r Result) Error() string {
	return r.String()
}

// ResultOf digs a Result out of a wrapped error chain. It returns Success
// when there is none.
func ResultOf(err error) Result {
	var r Result
	if stderrors.As(err, &r) {
		return r
	}
	return Success
}

type Stage int

const (
	StageInstance Stage = iota
	StageDebug
	StageSurface
	StageDevice
	StageQueues
	StageLogicalDevice
	StageAllocator
	StageAssembled
)

func (s Stage) String() string {
	switch s {
	case StageInstance:
		return "instance"
	case StageDebug:
		return "debug"
	case StageSurface:
		return "surface"
	case StageDevice:
		return "device"
	case StageQueues:
		return "queues"
	case StageLogicalDevice:
		return "logical device"
	case StageAllocator:
		return "allocator"
	case StageAssembled:
		return "assembled"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

var (
	ErrNoPhysicalDevice = errors.New("no physical devices")
	ErrNoEligibleDevice = errors.New("no eligible physical device")
	ErrNoGraphicsQueue  = errors.New("no graphics queue family")
	ErrNoPresentQueue   = errors.New("no present queue family")
)

// Error is returned by New when a stage fails. Result is Success for policy
// failures that have no driver status.
type Error struct {
	Stage  Stage
	Result Result
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func stageError(stage Stage, err error) *Error {
	var e *Error
	if stderrors.As(err, &e) {
		return e
	}
	return &Error{Stage: stage, Result: ResultOf(err), Err: err}
}
