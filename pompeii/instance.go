package pompeii

import (
	"unsafe"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/perlw/abyssal_drifter/myr"
)

type Instance struct {
	instance vk.Instance
	sink     debugSink
}

func NewInstance(info myr.InstanceInfo) (*Instance, error) {
	i := Instance{}

	layers := vkStrings(info.Layers)
	extensions := vkStrings(info.Extensions)
	instanceInfo := vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			PApplicationName:   vkString(info.AppName),
			ApplicationVersion: info.AppVersion.Encode(),
			PEngineName:        vkString(info.EngineName),
			EngineVersion:      info.EngineVersion.Encode(),
			ApiVersion:         info.APIVersion.Encode(),
		},
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
	}

	// Chained so instance creation and destruction are reported too.
	if info.DebugCallback != nil {
		i.sink = newDebugSink(info.DebugCallback)
		ref, allocs := i.sink.createInfo().PassRef()
		defer allocs.Free()
		instanceInfo.PNext = unsafe.Pointer(ref)
	}

	if result := vk.CreateInstance(&instanceInfo, nil, &i.instance); result != vk.Success {
		i.sink.release()
		return nil, vkError(result, "could not create instance")
	}
	vk.InitInstance(i.instance)

	return &i, nil
}

func (i *Instance) CreateDebugReporter(cb myr.DebugCallback) (myr.DebugReporter, error) {
	return newDebugReporter(i, cb)
}

func (i *Instance) PhysicalDevices() ([]myr.PhysicalDevice, error) {
	var gpuCount uint32
	if result := vk.EnumeratePhysicalDevices(i.instance, &gpuCount, nil); result != vk.Success {
		return nil, vkError(result, "could not count gpus")
	}
	if gpuCount == 0 {
		return nil, nil
	}
	vkGPUs := make([]vk.PhysicalDevice, gpuCount)
	if result := vk.EnumeratePhysicalDevices(i.instance, &gpuCount, vkGPUs); result != vk.Success {
		return nil, vkError(result, "could not enumerate gpus")
	}

	gpus := make([]myr.PhysicalDevice, gpuCount)
	for t, gpu := range vkGPUs[:gpuCount] {
		gpus[t] = newGPU(gpu)
	}

	return gpus, nil
}

func (i *Instance) Destroy() {
	vk.DestroyInstance(i.instance, nil)
	i.instance = nil
	i.sink.release()
}

func (i *Instance) Handle() vk.Instance {
	return i.instance
}

func instanceHandle(instance myr.Instance) (vk.Instance, error) {
	i, ok := instance.(*Instance)
	if !ok {
		return nil, errors.Errorf("foreign instance %T", instance)
	}
	return i.instance, nil
}
