package myr

import (
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/perlw/abyssal_drifter/gpumem"
	"github.com/perlw/abyssal_drifter/logger"
)

// recorder tracks creation and destruction of every fake handle.
type recorder struct {
	events []string
	live   map[string]int
	total  map[string]int
}

func newRecorder() *recorder {
	return &recorder{
		live:  map[string]int{},
		total: map[string]int{},
	}
}

func (r *recorder) create(kind string) {
	r.events = append(r.events, "create "+kind)
	r.live[kind]++
	r.total[kind]++
}

func (r *recorder) destroy(kind string) {
	r.events = append(r.events, "destroy "+kind)
	r.live[kind]--
}

func (r *recorder) leaked() map[string]int {
	out := map[string]int{}
	for kind, n := range r.live {
		if n != 0 {
			out[kind] = n
		}
	}
	return out
}

// destroyed lists destroy events in order.
func (r *recorder) destroyed() []string {
	var out []string
	for _, e := range r.events {
		if strings.HasPrefix(e, "destroy ") {
			out = append(out, strings.TrimPrefix(e, "destroy "))
		}
	}
	return out
}

type fakeDriver struct {
	rec *recorder

	loadErr     error
	layers      []string
	layersErr   error
	instanceErr error
	debugErr    error
	enumErr     error
	devices     []*fakePhysical

	instanceInfo InstanceInfo
}

func newFakeDriver(devices ...*fakePhysical) *fakeDriver {
	d := &fakeDriver{
		rec:    newRecorder(),
		layers: []string{validationLayer},
	}
	for _, p := range devices {
		p.rec = d.rec
	}
	d.devices = devices
	return d
}

func (d *fakeDriver) Load() (Entry, error) {
	if d.loadErr != nil {
		return nil, d.loadErr
	}
	return d, nil
}

func (d *fakeDriver) InstanceLayers() ([]string, error) {
	return d.layers, d.layersErr
}

func (d *fakeDriver) CreateInstance(info InstanceInfo) (Instance, error) {
	d.instanceInfo = info
	if d.instanceErr != nil {
		return nil, d.instanceErr
	}
	d.rec.create("instance")
	return &fakeInstance{driver: d}, nil
}

type fakeInstance struct {
	driver *fakeDriver
}

func (i *fakeInstance) CreateDebugReporter(cb DebugCallback) (DebugReporter, error) {
	if i.driver.debugErr != nil {
		return nil, i.driver.debugErr
	}
	i.driver.rec.create("debug")
	return &fakeHandle{rec: i.driver.rec, kind: "debug"}, nil
}

func (i *fakeInstance) PhysicalDevices() ([]PhysicalDevice, error) {
	if i.driver.enumErr != nil {
		return nil, i.driver.enumErr
	}
	out := make([]PhysicalDevice, len(i.driver.devices))
	for t, p := range i.driver.devices {
		out[t] = p
	}
	return out, nil
}

func (i *fakeInstance) Destroy() {
	i.driver.rec.destroy("instance")
}

type fakeHandle struct {
	rec  *recorder
	kind string
}

func (h *fakeHandle) Destroy() {
	h.rec.destroy(h.kind)
}

type fakeWindow struct {
	rec        *recorder
	extensions []string
	extErr     error
	surfaceErr error
}

func (w *fakeWindow) RequiredInstanceExtensions() ([]string, error) {
	return w.extensions, w.extErr
}

func (w *fakeWindow) CreateSurface(instance Instance) (Surface, error) {
	if w.surfaceErr != nil {
		return nil, w.surfaceErr
	}
	w.rec.create("surface")
	return &fakeHandle{rec: w.rec, kind: "surface"}, nil
}

type fakePhysical struct {
	rec *recorder

	props    DeviceProperties
	families []QueueFamilyProperties
	// nil means every family can present
	present      map[int]bool
	presentErr   error
	presentCalls int
	memory       gpumem.MemoryProperties
	deviceErr    error

	deviceInfo *DeviceInfo
	device     *fakeDevice
}

func newFakePhysical(name string, families ...QueueFlags) *fakePhysical {
	p := &fakePhysical{
		props: DeviceProperties{
			Name:       name,
			Type:       GPUTypeDiscrete,
			APIVersion: Version{1, 3, 0},
		},
		memory: gpumem.MemoryProperties{
			Types: []gpumem.MemoryType{{Flags: gpumem.DeviceLocal}},
			Heaps: []gpumem.MemoryHeap{{Size: 4 << 30, DeviceLocal: true}},
		},
	}
	for _, f := range families {
		p.families = append(p.families, QueueFamilyProperties{Flags: f, Count: 1})
	}
	return p
}

func (p *fakePhysical) Properties() DeviceProperties {
	return p.props
}

func (p *fakePhysical) QueueFamilies() []QueueFamilyProperties {
	return p.families
}

func (p *fakePhysical) SurfaceSupport(family int, surface Surface) (bool, error) {
	p.presentCalls++
	if p.presentErr != nil {
		return false, p.presentErr
	}
	if p.present == nil {
		return true, nil
	}
	return p.present[family], nil
}

func (p *fakePhysical) MemoryProperties() gpumem.MemoryProperties {
	return p.memory
}

func (p *fakePhysical) CreateDevice(info DeviceInfo) (Device, error) {
	p.deviceInfo = &info
	if p.deviceErr != nil {
		return nil, p.deviceErr
	}
	p.rec.create("device")
	p.device = &fakeDevice{rec: p.rec, queues: map[int]*fakeQueue{}}
	return p.device, nil
}

type fakeMemory struct {
	size uint64
}

func (m *fakeMemory) Size() uint64 { return m.size }

type fakeDevice struct {
	rec       *recorder
	queues    map[int]*fakeQueue
	waitIdles int
}

func (d *fakeDevice) AllocateMemory(size uint64, memoryType int) (gpumem.Memory, error) {
	d.rec.create("memory")
	return &fakeMemory{size: size}, nil
}

func (d *fakeDevice) FreeMemory(mem gpumem.Memory) {
	d.rec.destroy("memory")
}

func (d *fakeDevice) Queue(family int) Queue {
	q, ok := d.queues[family]
	if !ok {
		q = &fakeQueue{family: family}
		d.queues[family] = q
	}
	return q
}

func (d *fakeDevice) WaitIdle() error {
	d.waitIdles++
	return nil
}

func (d *fakeDevice) Destroy() {
	d.rec.destroy("device")
}

type fakeQueue struct {
	family int
}

func (q *fakeQueue) Family() int     { return q.family }
func (q *fakeQueue) WaitIdle() error { return nil }

func testLogger(t *testing.T) (logger.Logger, *test.Hook) {
	t.Helper()
	l, hook := test.NewNullLogger()
	l.SetLevel(logrus.TraceLevel)
	return logger.NewWithLogrus("myr", l), hook
}

func hasWarning(hook *test.Hook, substr string) bool {
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func gpumemRequirements(size uint64) gpumem.Requirements {
	return gpumem.Requirements{Size: size, Alignment: 16, TypeBits: 0x1}
}
