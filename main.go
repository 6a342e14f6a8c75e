package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/joho/godotenv"
	"github.com/mattn/go-runewidth"
	"github.com/nsf/termbox-go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/perlw/abyssal_drifter/logger"
	"github.com/perlw/abyssal_drifter/myr"
	"github.com/perlw/abyssal_drifter/pompeii"
)

const appName = "abyssal_drifter"

func init() {
	runtime.LockOSThread()
}

func envBool(key string) bool {
	v, _ := strconv.ParseBool(os.Getenv(key))
	return v
}

type platform struct {
	loader  myr.Loader
	window  myr.Window
	closed  func() bool
	destroy func()
}

func headless() (*platform, error) {
	return &platform{
		loader:  pompeii.NewLoader(),
		closed:  func() bool { return false },
		destroy: func() {},
	}, nil
}

func glfwPlatform(w, h int) (*platform, error) {
	if err := glfw.Init(); err != nil {
		return nil, errors.Wrap(err, "glfw init")
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	window, err := glfw.CreateWindow(w, h, appName, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrap(err, "create window")
	}

	return &platform{
		loader: pompeii.GLFWLoader(),
		window: pompeii.NewGLFWWindow(window),
		closed: func() bool {
			glfw.PollEvents()
			return window.ShouldClose()
		},
		destroy: func() {
			window.Destroy()
			glfw.Terminate()
		},
	}, nil
}

func sdlPlatform(w, h int) (*platform, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, errors.Wrap(err, "sdl init")
	}
	window, err := sdl.CreateWindow(appName, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(w), int32(h), sdl.WINDOW_VULKAN|sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return nil, errors.Wrap(err, "create window")
	}

	return &platform{
		loader: pompeii.SDLLoader(),
		window: pompeii.NewSDLWindow(window),
		closed: func() bool {
			for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
				if _, ok := event.(*sdl.QuitEvent); ok {
					return true
				}
			}
			return false
		},
		destroy: func() {
			window.Destroy()
			sdl.VulkanUnloadLibrary()
			sdl.Quit()
		},
	}, nil
}

func main() {
	// A missing .env is fine, the environment and flags still apply.
	_ = godotenv.Load()

	var (
		noWindow  = flag.Bool("headless", envBool("MYR_HEADLESS"), "run without a window")
		useSDL    = flag.Bool("sdl", envBool("MYR_SDL"), "use SDL2 instead of GLFW")
		debug     = flag.Bool("debug", envBool("MYR_DEBUG"), "enable validation layers")
		aniso     = flag.Bool("aniso", envBool("MYR_ANISO"), "enable anisotropic filtering")
		hostCopy  = flag.Bool("hostcopy", envBool("MYR_HOST_COPY"), "enable host image copy extensions")
		noXfer    = flag.Bool("no-transfer", envBool("MYR_NO_TRANSFER"), "skip the dedicated transfer queue")
		noCompute = flag.Bool("no-compute", envBool("MYR_NO_COMPUTE"), "skip the dedicated compute queue")
		verbose   = flag.Bool("v", envBool("MYR_VERBOSE"), "trace logging")
		width     = flag.Int("width", 1280, "window width")
		height    = flag.Int("height", 720, "window height")
	)
	flag.Parse()

	log := logger.New("main")
	if *verbose {
		logger.SetLevel(logrus.TraceLevel)
	}

	var (
		p   *platform
		err error
	)
	switch {
	case *noWindow:
		p, err = headless()
	case *useSDL:
		p, err = sdlPlatform(*width, *height)
	default:
		p, err = glfwPlatform(*width, *height)
	}
	if err != nil {
		log.Err(err, "platform")
		os.Exit(1)
	}
	defer p.destroy()

	cfg := myr.DefaultConfig(appName)
	cfg.Validation = *debug
	cfg.AnisotropicFiltering = *aniso
	cfg.HostImageCopy = *hostCopy
	cfg.NoTransferQueue = *noXfer
	cfg.NoComputeQueue = *noCompute

	ctx, err := myr.New(p.loader, p.window, cfg)
	if err != nil {
		log.Err(err, "could not create render context")
		p.destroy()
		os.Exit(1)
	}
	defer ctx.Destroy()

	if err := showReport(ctx, p.closed); err != nil {
		log.Err(err, "report")
	}
}

func showReport(ctx *myr.RenderContext, closed func() bool) error {
	if err := termbox.Init(); err != nil {
		return errors.Wrap(err, "termbox init")
	}
	defer termbox.Close()

	events := make(chan termbox.Event, 1)
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		for {
			ev := termbox.PollEvent()
			if ev.Type == termbox.EventInterrupt {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()
	// Runs before termbox.Close.
	defer func() {
		close(done)
		termbox.Interrupt()
		<-stopped
	}()

	drawReport(ctx)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case ev := <-events:
			switch {
			case ev.Type == termbox.EventKey && (ev.Key == termbox.KeyEsc || ev.Ch == 'q'):
				return nil
			case ev.Type == termbox.EventResize:
				drawReport(ctx)
			case ev.Type == termbox.EventError:
				return ev.Err
			}
		case <-tick.C:
			if closed() {
				return nil
			}
		}
	}
}

func family(o interface{ Get() (int, bool) }) string {
	if i, ok := o.Get(); ok {
		return strconv.Itoa(i)
	}
	return "-"
}

func drawReport(ctx *myr.RenderContext) {
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)

	p := ctx.Properties
	stats := ctx.Allocator.Stats()
	lines := []struct {
		label string
		value string
	}{
		{"context", ctx.ID.String()},
		{"device", p.Name},
		{"type", p.Type.String()},
		{"id", fmt.Sprintf("%04x:%04x", p.VendorID, p.DeviceID)},
		{"vulkan", p.APIVersion.String()},
		{"driver", p.DriverVersion.String()},
		{"validation", strconv.FormatBool(ctx.Validation)},
		{"debug report", strconv.FormatBool(ctx.DebugReporter.HasValue())},
		{"surface", strconv.FormatBool(ctx.Surface.HasValue())},
		{"graphics", strconv.Itoa(ctx.Families.Graphics)},
		{"present", family(ctx.Families.Present)},
		{"transfer", family(ctx.Families.Transfer)},
		{"compute", family(ctx.Families.Compute)},
		{"gpu memory", fmt.Sprintf("%d blocks, %d bytes reserved", stats.Blocks, stats.Reserved)},
	}

	y := 0
	drawText(0, y, termbox.ColorYellow|termbox.AttrBold, "abyssal drifter: render context")
	y += 2
	for _, l := range lines {
		drawText(0, y, termbox.ColorCyan, l.label)
		drawText(14, y, termbox.ColorDefault, l.value)
		y++
	}
	if gpu, ok := ctx.PhysicalDevice.(*pompeii.GPU); ok {
		y++
		for _, line := range strings.Split(strings.TrimSpace(gpu.Debug()), "\n") {
			drawText(0, y, termbox.ColorWhite, line)
			y++
		}
	}
	y++
	drawText(0, y, termbox.ColorGreen, "esc/q to quit")

	termbox.Flush()
}

// drawText writes s at x,y and returns the column after it. Wide runes take
// two cells.
func drawText(x, y int, fg termbox.Attribute, s string) int {
	w, _ := termbox.Size()
	for _, r := range s {
		if x >= w {
			break
		}
		termbox.SetCell(x, y, r, fg, termbox.ColorDefault)
		x += runewidth.RuneWidth(r)
	}
	return x
}
