package pompeii

import (
	"fmt"
	"sync"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"github.com/perlw/abyssal_drifter/myr"
)

const debugReportFlags = vk.DebugReportFlags(vk.DebugReportErrorBit |
	vk.DebugReportWarningBit |
	vk.DebugReportPerformanceWarningBit |
	vk.DebugReportInformationBit)

// vulkan-go keeps a single Go callback for every debug report, so all
// reporters share debugTrampoline and are told apart by pUserData.
var debugSinks = debugRegistry{sinks: map[unsafe.Pointer]myr.DebugCallback{}}

type debugRegistry struct {
	mu    sync.Mutex
	sinks map[unsafe.Pointer]myr.DebugCallback
}

func (r *debugRegistry) register(key unsafe.Pointer, cb myr.DebugCallback) {
	r.mu.Lock()
	r.sinks[key] = cb
	r.mu.Unlock()
}

func (r *debugRegistry) unregister(key unsafe.Pointer) {
	r.mu.Lock()
	delete(r.sinks, key)
	r.mu.Unlock()
}

func (r *debugRegistry) dispatch(key unsafe.Pointer, severity myr.Severity, kind myr.MessageType, msg string) {
	r.mu.Lock()
	cb := r.sinks[key]
	r.mu.Unlock()
	if cb != nil {
		cb(severity, kind, msg)
	}
}

func debugTrampoline(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
	object uint64, location uint, messageCode int32, pLayerPrefix string,
	pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	severity, kind := classify(flags)
	debugSinks.dispatch(pUserData, severity, kind, fmt.Sprintf("%s %d: %s", pLayerPrefix, messageCode, pMessage))
	return vk.Bool32(vk.False)
}

// debugSink ties a callback to a C allocated key that Vulkan hands back as
// pUserData.
type debugSink struct {
	key unsafe.Pointer
}

func newDebugSink(cb myr.DebugCallback) debugSink {
	s := debugSink{key: newDebugKey()}
	debugSinks.register(s.key, cb)
	return s
}

func (s *debugSink) createInfo() *vk.DebugReportCallbackCreateInfo {
	return &vk.DebugReportCallbackCreateInfo{
		SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags:       debugReportFlags,
		PfnCallback: debugTrampoline,
		PUserData:   s.key,
	}
}

// release must only run once Vulkan can no longer report through the key.
func (s *debugSink) release() {
	if s.key == nil {
		return
	}
	debugSinks.unregister(s.key)
	freeDebugKey(s.key)
	s.key = nil
}

type DebugReporter struct {
	instance vk.Instance
	callback vk.DebugReportCallback
	sink     debugSink
}

func newDebugReporter(i *Instance, cb myr.DebugCallback) (*DebugReporter, error) {
	d := DebugReporter{
		instance: i.instance,
		sink:     newDebugSink(cb),
	}
	if result := vk.CreateDebugReportCallback(i.instance, d.sink.createInfo(), nil, &d.callback); result != vk.Success {
		d.sink.release()
		return nil, vkError(result, "creating debug report")
	}
	return &d, nil
}

func (d *DebugReporter) Destroy() {
	if d.callback != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(d.instance, d.callback, nil)
		d.callback = vk.NullDebugReportCallback
	}
	d.sink.release()
}

func classify(flags vk.DebugReportFlags) (myr.Severity, myr.MessageType) {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		return myr.SeverityError, myr.MessageValidation
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		return myr.SeverityWarning, myr.MessagePerformance
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		return myr.SeverityWarning, myr.MessageValidation
	default:
		return myr.SeverityInfo, myr.MessageGeneral
	}
}
