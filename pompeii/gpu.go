package pompeii

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/perlw/abyssal_drifter/gpumem"
	"github.com/perlw/abyssal_drifter/myr"
)

type GPU struct {
	Name string
	Type myr.GPUType

	physicalDevice vk.PhysicalDevice
	props          vk.PhysicalDeviceProperties
	memProps       vk.PhysicalDeviceMemoryProperties
}

func newGPU(physicalDevice vk.PhysicalDevice) *GPU {
	g := GPU{
		physicalDevice: physicalDevice,
	}

	vk.GetPhysicalDeviceProperties(g.physicalDevice, &g.props)
	g.props.Deref()
	g.props.Limits.Deref()

	vk.GetPhysicalDeviceMemoryProperties(g.physicalDevice, &g.memProps)
	g.memProps.Deref()

	g.Name = vk.ToString(g.props.DeviceName[:])
	g.Type = myr.GPUType(g.props.DeviceType)

	return &g
}

func (g *GPU) Properties() myr.DeviceProperties {
	return myr.DeviceProperties{
		VendorID:      g.props.VendorID,
		DeviceID:      g.props.DeviceID,
		Type:          g.Type,
		APIVersion:    myr.DecodeVersion(g.props.ApiVersion),
		DriverVersion: myr.DecodeVersion(g.props.DriverVersion),
		Name:          g.Name,
	}
}

func (g *GPU) Debug() string {
	buffer := bytes.Buffer{}

	buffer.WriteString(fmt.Sprintln("Device Name:", g.Name))
	buffer.WriteString(fmt.Sprintln("Device Type:", g.Type))
	buffer.WriteString(fmt.Sprintf("Vulkan v%s\n", myr.DecodeVersion(g.props.ApiVersion)))
	buffer.WriteString(fmt.Sprintf("Driver v%s\n", myr.DecodeVersion(g.props.DriverVersion)))
	buffer.WriteString(fmt.Sprintln("Max Image Dimension:", g.props.Limits.MaxImageDimension2D))
	buffer.WriteString(fmt.Sprintln("Max Sampler Anisotropy:", g.props.Limits.MaxSamplerAnisotropy))
	for t, heap := range g.MemoryProperties().Heaps {
		buffer.WriteString(fmt.Sprintf("Heap %d: %d MiB (device local %t)\n", t, heap.Size>>20, heap.DeviceLocal))
	}

	return buffer.String()
}

func (g *GPU) QueueFamilies() []myr.QueueFamilyProperties {
	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(g.physicalDevice, &queueFamilyCount, nil)
	if queueFamilyCount == 0 {
		return nil
	}

	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(g.physicalDevice, &queueFamilyCount, queueFamilies)

	families := make([]myr.QueueFamilyProperties, 0, queueFamilyCount)
	for _, family := range queueFamilies[:queueFamilyCount] {
		family.Deref()
		families = append(families, myr.QueueFamilyProperties{
			Flags: queueFlags(family.QueueFlags),
			Count: int(family.QueueCount),
		})
	}

	return families
}

func queueFlags(flags vk.QueueFlags) myr.QueueFlags {
	var f myr.QueueFlags
	if flags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
		f |= myr.QueueGraphics
	}
	if flags&vk.QueueFlags(vk.QueueComputeBit) != 0 {
		f |= myr.QueueCompute
	}
	if flags&vk.QueueFlags(vk.QueueTransferBit) != 0 {
		f |= myr.QueueTransfer
	}
	if flags&vk.QueueFlags(vk.QueueSparseBindingBit) != 0 {
		f |= myr.QueueSparseBinding
	}
	return f
}

func (g *GPU) SurfaceSupport(family int, surface myr.Surface) (bool, error) {
	handle, err := surfaceHandle(surface)
	if err != nil {
		return false, err
	}
	var presentSupport vk.Bool32
	if result := vk.GetPhysicalDeviceSurfaceSupport(g.physicalDevice, uint32(family), handle, &presentSupport); result != vk.Success {
		return false, vkError(result, "surface support")
	}
	return presentSupport == vk.True, nil
}

func (g *GPU) MemoryProperties() gpumem.MemoryProperties {
	props := gpumem.MemoryProperties{}
	for t := uint32(0); t < g.memProps.MemoryTypeCount; t++ {
		memoryType := g.memProps.MemoryTypes[t]
		memoryType.Deref()
		props.Types = append(props.Types, gpumem.MemoryType{
			Flags: memoryFlags(memoryType.PropertyFlags),
			Heap:  int(memoryType.HeapIndex),
		})
	}
	for t := uint32(0); t < g.memProps.MemoryHeapCount; t++ {
		heap := g.memProps.MemoryHeaps[t]
		heap.Deref()
		props.Heaps = append(props.Heaps, gpumem.MemoryHeap{
			Size:        uint64(heap.Size),
			DeviceLocal: heap.Flags&vk.MemoryHeapFlags(vk.MemoryHeapDeviceLocalBit) != 0,
		})
	}
	return props
}

func memoryFlags(flags vk.MemoryPropertyFlags) gpumem.MemoryPropertyFlags {
	var f gpumem.MemoryPropertyFlags
	if flags&vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit) != 0 {
		f |= gpumem.DeviceLocal
	}
	if flags&vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit) != 0 {
		f |= gpumem.HostVisible
	}
	if flags&vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit) != 0 {
		f |= gpumem.HostCoherent
	}
	if flags&vk.MemoryPropertyFlags(vk.MemoryPropertyHostCachedBit) != 0 {
		f |= gpumem.HostCached
	}
	if flags&vk.MemoryPropertyFlags(vk.MemoryPropertyLazilyAllocatedBit) != 0 {
		f |= gpumem.LazilyAllocated
	}
	return f
}

func (g *GPU) CreateDevice(info myr.DeviceInfo) (myr.Device, error) {
	d, err := NewDevice(g, info)
	if err != nil {
		return nil, errors.Wrapf(err, "on %s", g.Name)
	}
	return d, nil
}

func (g *GPU) Handle() vk.PhysicalDevice {
	return g.physicalDevice
}
