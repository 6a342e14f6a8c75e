package pompeii

import (
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"
	vk "github.com/vulkan-go/vulkan"

	"github.com/perlw/abyssal_drifter/myr"
)

type loader struct {
	name     string
	procAddr func() error
}

// NewLoader resolves vkGetInstanceProcAddr from the system Vulkan loader.
func NewLoader() myr.Loader {
	return &loader{
		name:     "default",
		procAddr: vk.SetDefaultGetInstanceProcAddr,
	}
}

// GLFWLoader uses the entry point GLFW found. glfw.Init must have been called.
func GLFWLoader() myr.Loader {
	return &loader{
		name: "glfw",
		procAddr: func() error {
			if !glfw.VulkanSupported() {
				return errors.New("glfw reports no vulkan support")
			}
			return setProcAddr(glfw.GetVulkanGetInstanceProcAddress())
		},
	}
}

// SDLLoader loads the Vulkan library through SDL. The video subsystem must
// be initialized.
func SDLLoader() myr.Loader {
	return &loader{
		name: "sdl",
		procAddr: func() error {
			if err := sdl.VulkanLoadLibrary(""); err != nil {
				return errors.Wrap(err, "sdl vulkan library")
			}
			return setProcAddr(sdl.VulkanGetVkGetInstanceProcAddr())
		},
	}
}

func setProcAddr(p unsafe.Pointer) error {
	if p == nil {
		return errors.New("no vkGetInstanceProcAddr")
	}
	vk.SetGetInstanceProcAddr(p)
	return nil
}

func (l *loader) Load() (myr.Entry, error) {
	if err := l.procAddr(); err != nil {
		return nil, errors.Wrapf(err, "%s loader", l.name)
	}
	if err := vk.Init(); err != nil {
		return nil, errors.Wrap(err, "could not initialize vulkan")
	}
	return entry{}, nil
}

type entry struct{}

func (entry) InstanceLayers() ([]string, error) {
	var count uint32
	if result := vk.EnumerateInstanceLayerProperties(&count, nil); result != vk.Success {
		return nil, vkError(result, "could not count instance layers")
	}
	layers := make([]vk.LayerProperties, count)
	if result := vk.EnumerateInstanceLayerProperties(&count, layers); result != vk.Success {
		return nil, vkError(result, "could not get instance layers")
	}

	names := make([]string, 0, count)
	for _, layer := range layers[:count] {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, nil
}

func (entry) CreateInstance(info myr.InstanceInfo) (myr.Instance, error) {
	return NewInstance(info)
}
