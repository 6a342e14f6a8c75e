package myr

import (
	"sync"

	"github.com/google/uuid"
	"github.com/loov/hrtime"
	"github.com/pkg/errors"

	"github.com/perlw/abyssal_drifter/gpumem"
	"github.com/perlw/abyssal_drifter/logger"
	"github.com/perlw/abyssal_drifter/optional"
)

// RenderContext owns every handle created by New. Handles must not be
// destroyed individually; call Destroy.
type RenderContext struct {
	ID         uuid.UUID
	Config     RenderConfig
	Validation bool

	Instance       Instance
	DebugReporter  optional.Optional[DebugReporter]
	Surface        optional.Optional[Surface]
	PhysicalDevice PhysicalDevice
	Properties     DeviceProperties
	Families       QueueFamilies
	Device         Device
	Queues         Queues
	Allocator      *gpumem.Allocator

	log         logger.Logger
	destroyOnce sync.Once
}

type options struct {
	log logger.Logger
}

type Option func(*options)

func WithLogger(log logger.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// initState carries everything built so far by one New call.
type initState struct {
	log    logger.Logger
	cfg    RenderConfig
	window Window
	entry  Entry

	validation bool
	instance   Instance
	debug      optional.Optional[DebugReporter]
	surface    optional.Optional[Surface]
	physical   PhysicalDevice
	props      DeviceProperties
	families   QueueFamilies
	device     Device
	queues     Queues
	allocator  *gpumem.Allocator
}

var stages = []struct {
	stage Stage
	run   func(*initState) error
}{
	{StageInstance, createInstance},
	{StageDebug, installDebugReporter},
	{StageSurface, createSurface},
	{StageDevice, selectPhysicalDevice},
	{StageQueues, resolveQueues},
	{StageLogicalDevice, createLogicalDevice},
	{StageAllocator, createAllocator},
}

// New bootstraps a render context. window may be nil for headless use. On
// failure everything created so far is destroyed and a *Error is returned.
func New(loader Loader, window Window, cfg RenderConfig, opts ...Option) (*RenderContext, error) {
	o := options{
		log: logger.New(engineName),
	}
	for _, opt := range opts {
		opt(&o)
	}

	id := uuid.New()
	s := &initState{
		log:    o.log.With("context", id.String()),
		cfg:    cfg.clone(),
		window: window,
	}
	s.log.Log("init: %s", s.cfg)

	entry, err := loader.Load()
	if err != nil {
		return nil, stageError(StageInstance, errors.Wrap(err, "load vulkan"))
	}
	s.entry = entry

	total := hrtime.Now()
	for _, st := range stages {
		start := hrtime.Now()
		err := st.run(s)
		s.log.Trace("%s stage took %v", st.stage, hrtime.Since(start))
		if err != nil {
			e := stageError(st.stage, err)
			s.log.Err(e, "init failed, tearing down")
			s.teardown()
			return nil, e
		}
	}
	s.log.Log("assembled in %v", hrtime.Since(total))

	return &RenderContext{
		ID:             id,
		Config:         s.cfg,
		Validation:     s.validation,
		Instance:       s.instance,
		DebugReporter:  s.debug,
		Surface:        s.surface,
		PhysicalDevice: s.physical,
		Properties:     s.props,
		Families:       s.families,
		Device:         s.device,
		Queues:         s.queues,
		Allocator:      s.allocator,
		log:            s.log,
	}, nil
}

// teardown destroys whatever was created, newest first.
func (s *initState) teardown() {
	if s.allocator != nil {
		s.log.Trace("destroy allocator")
		s.allocator.Destroy()
		s.allocator = nil
	}
	if s.device != nil {
		s.log.Trace("destroy device")
		s.device.Destroy()
		s.device = nil
	}
	if surface, ok := s.surface.Get(); ok {
		s.log.Trace("destroy surface")
		surface.Destroy()
		s.surface = optional.None[Surface]()
	}
	if debug, ok := s.debug.Get(); ok {
		s.log.Trace("destroy debug reporter")
		debug.Destroy()
		s.debug = optional.None[DebugReporter]()
	}
	if s.instance != nil {
		s.log.Trace("destroy instance")
		s.instance.Destroy()
		s.instance = nil
	}
}

// Destroy waits for the device to go idle and releases every handle. GPU
// work using the context must be finished. Safe to call more than once.
func (c *RenderContext) Destroy() {
	c.destroyOnce.Do(func() {
		if err := c.Device.WaitIdle(); err != nil {
			c.log.Warn("wait idle before destroy: %v", err)
		}

		s := initState{
			log:       c.log,
			instance:  c.Instance,
			debug:     c.DebugReporter,
			surface:   c.Surface,
			device:    c.Device,
			allocator: c.Allocator,
		}
		s.teardown()
		c.log.Log("destroyed")
	})
}
