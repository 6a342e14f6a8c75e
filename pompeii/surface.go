package pompeii

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"
	vk "github.com/vulkan-go/vulkan"

	"github.com/perlw/abyssal_drifter/myr"
)

type Surface struct {
	instance vk.Instance
	surface  vk.Surface
}

func (s *Surface) Destroy() {
	if s.surface != vk.NullSurface {
		vk.DestroySurface(s.instance, s.surface, nil)
		s.surface = vk.NullSurface
	}
}

func (s *Surface) Handle() vk.Surface {
	return s.surface
}

func surfaceHandle(surface myr.Surface) (vk.Surface, error) {
	s, ok := surface.(*Surface)
	if !ok {
		return vk.NullSurface, errors.Errorf("foreign surface %T", surface)
	}
	return s.surface, nil
}

// GLFWWindow must be created with the glfw.NoAPI client hint.
type GLFWWindow struct {
	window *glfw.Window
}

func NewGLFWWindow(window *glfw.Window) *GLFWWindow {
	return &GLFWWindow{window: window}
}

func (w *GLFWWindow) RequiredInstanceExtensions() ([]string, error) {
	exts := w.window.GetRequiredInstanceExtensions()
	if len(exts) == 0 {
		return nil, errors.New("glfw has no instance extensions for this window")
	}
	return exts, nil
}

func (w *GLFWWindow) CreateSurface(instance myr.Instance) (myr.Surface, error) {
	handle, err := instanceHandle(instance)
	if err != nil {
		return nil, err
	}
	addr, err := w.window.CreateWindowSurface(handle, nil)
	if err != nil {
		return nil, glfwSurfaceError(err)
	}
	return &Surface{instance: handle, surface: vk.SurfaceFromPointer(addr)}, nil
}

// SDLWindow must be created with the sdl.WINDOW_VULKAN flag.
type SDLWindow struct {
	window *sdl.Window
}

func NewSDLWindow(window *sdl.Window) *SDLWindow {
	return &SDLWindow{window: window}
}

func (w *SDLWindow) RequiredInstanceExtensions() ([]string, error) {
	exts := w.window.VulkanGetInstanceExtensions()
	if len(exts) == 0 {
		if err := sdl.GetError(); err != nil {
			return nil, errors.Wrap(err, "sdl instance extensions")
		}
		return nil, errors.New("sdl has no instance extensions for this window")
	}
	return exts, nil
}

func (w *SDLWindow) CreateSurface(instance myr.Instance) (myr.Surface, error) {
	handle, err := instanceHandle(instance)
	if err != nil {
		return nil, err
	}
	ptr, err := w.window.VulkanCreateSurface(handle)
	if err != nil {
		return nil, sdlSurfaceError(err)
	}
	return &Surface{instance: handle, surface: vk.SurfaceFromPointer(uintptr(ptr))}, nil
}

// glfwSurfaceError recovers the VkResult that GLFW only formats into the
// message.
func glfwSurfaceError(err error) error {
	var code int32
	if _, scanErr := fmt.Sscanf(err.Error(), "vulkan: error creating window surface: %d", &code); scanErr == nil {
		return errors.Wrap(myr.Result(code), "glfw")
	}
	return errors.Wrapf(myr.ErrorInitializationFailed, "glfw: %v", err)
}

// sdlSurfaceError tags SDL failures, which carry no VkResult.
func sdlSurfaceError(err error) error {
	return errors.Wrapf(myr.ErrorInitializationFailed, "sdl: %v", err)
}
