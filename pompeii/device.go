package pompeii

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/perlw/abyssal_drifter/gpumem"
	"github.com/perlw/abyssal_drifter/myr"
)

type Device struct {
	logicalDevice vk.Device
	queues        map[int]*Queue
}

func NewDevice(g *GPU, info myr.DeviceInfo) (*Device, error) {
	d := Device{
		queues: map[int]*Queue{},
	}

	queueInfos := make([]vk.DeviceQueueCreateInfo, len(info.Queues))
	for t, q := range info.Queues {
		queueInfos[t] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: uint32(q.Family),
			QueueCount:       uint32(len(q.Priorities)),
			PQueuePriorities: q.Priorities,
		}
	}

	layers := vkStrings(info.Layers)
	extensions := vkStrings(info.Extensions)
	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		PEnabledFeatures: []vk.PhysicalDeviceFeatures{{
			SampleRateShading: vkBool(info.Features.SampleRateShading),
			SamplerAnisotropy: vkBool(info.Features.SamplerAnisotropy),
		}},
	}
	if info.DynamicRendering {
		next, free := newDynamicRenderingFeatures(nil)
		defer free()
		deviceCreateInfo.PNext = next
	}

	if result := vk.CreateDevice(g.Handle(), &deviceCreateInfo, nil, &d.logicalDevice); result != vk.Success {
		return nil, vkError(result, "create device")
	}

	return &d, nil
}

func (d *Device) Queue(family int) myr.Queue {
	if q, ok := d.queues[family]; ok {
		return q
	}
	q := &Queue{family: family}
	vk.GetDeviceQueue(d.logicalDevice, uint32(family), 0, &q.queue)
	d.queues[family] = q
	return q
}

type Memory struct {
	memory vk.DeviceMemory
	size   uint64
}

func (m *Memory) Size() uint64 {
	return m.size
}

func (m *Memory) Handle() vk.DeviceMemory {
	return m.memory
}

func (d *Device) AllocateMemory(size uint64, memoryType int) (gpumem.Memory, error) {
	m := Memory{size: size}
	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  vk.DeviceSize(size),
		MemoryTypeIndex: uint32(memoryType),
	}
	if result := vk.AllocateMemory(d.logicalDevice, &allocateInfo, nil, &m.memory); result != vk.Success {
		return nil, vkError(result, "allocate memory")
	}
	return &m, nil
}

func (d *Device) FreeMemory(mem gpumem.Memory) {
	m, ok := mem.(*Memory)
	if !ok {
		panic(errors.Errorf("foreign memory %T", mem))
	}
	vk.FreeMemory(d.logicalDevice, m.memory, nil)
}

func (d *Device) WaitIdle() error {
	if result := vk.DeviceWaitIdle(d.logicalDevice); result != vk.Success {
		return vkError(result, "device wait idle")
	}
	return nil
}

func (d *Device) Destroy() {
	vk.DestroyDevice(d.logicalDevice, nil)
	d.logicalDevice = nil
}

func (d *Device) Handle() vk.Device {
	return d.logicalDevice
}

type Queue struct {
	family int
	queue  vk.Queue
}

func (q *Queue) Family() int {
	return q.family
}

func (q *Queue) WaitIdle() error {
	if result := vk.QueueWaitIdle(q.queue); result != vk.Success {
		return vkError(result, "queue wait idle")
	}
	return nil
}

func (q *Queue) Handle() vk.Queue {
	return q.queue
}
