// Package gpumem sub-allocates device memory. Small requests share large
// per-type blocks and big ones get a dedicated device allocation.
package gpumem

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/perlw/abyssal_drifter/logger"
)

const (
	DefaultBlockSize = 64 << 20
	smallHeapLimit   = 1 << 30
)

var (
	ErrNoMemoryTypes  = errors.New("device reports no memory types")
	ErrNoSuitableType = errors.New("no suitable memory type")
	ErrZeroSize       = errors.New("zero sized allocation")
	ErrDestroyed      = errors.New("allocator destroyed")
	ErrBadAlignment   = errors.New("alignment is not a power of two")
)

type MemoryPropertyFlags uint32

const (
	DeviceLocal MemoryPropertyFlags = 1 << iota
	HostVisible
	HostCoherent
	HostCached
	LazilyAllocated
)

func (f MemoryPropertyFlags) String() string {
	names := []string{"DeviceLocal", "HostVisible", "HostCoherent", "HostCached", "LazilyAllocated"}
	s := ""
	for i, name := range names {
		if f&(1<<uint(i)) != 0 {
			if s != "" {
				s += "|"
			}
			s += name
		}
	}
	if s == "" {
		return "None"
	}
	return s
}

type MemoryType struct {
	Flags MemoryPropertyFlags
	Heap  int
}

type MemoryHeap struct {
	Size        uint64
	DeviceLocal bool
}

type MemoryProperties struct {
	Types []MemoryType
	Heaps []MemoryHeap
}

// Memory is a device memory object owned by the allocator.
type Memory interface {
	Size() uint64
}

type Device interface {
	AllocateMemory(size uint64, memoryType int) (Memory, error)
	FreeMemory(mem Memory)
}

type Requirements struct {
	Size      uint64
	Alignment uint64
	TypeBits  uint32
}

type Allocation struct {
	Memory     Memory
	Offset     uint64
	Size       uint64
	MemoryType int
	Dedicated  bool

	block *block
}

func (a *Allocation) String() string {
	return fmt.Sprintf("[type %d %d+%d]", a.MemoryType, a.Offset, a.Size)
}

type Stats struct {
	Blocks      int
	Dedicated   int
	Allocations int
	Reserved    uint64
	Used        uint64
}

type Option func(*Allocator)

func WithBlockSize(size uint64) Option {
	return func(a *Allocator) {
		a.blockSize = size
	}
}

func WithLogger(log logger.Logger) Option {
	return func(a *Allocator) {
		a.log = log
	}
}

type Allocator struct {
	log       logger.Logger
	device    Device
	props     MemoryProperties
	blockSize uint64

	mu        sync.Mutex
	blocks    [][]*block
	dedicated map[*Allocation]struct{}
	destroyed bool
}

func New(device Device, props MemoryProperties, opts ...Option) (*Allocator, error) {
	if len(props.Types) == 0 || len(props.Heaps) == 0 {
		return nil, ErrNoMemoryTypes
	}
	for i, t := range props.Types {
		if t.Heap < 0 || t.Heap >= len(props.Heaps) {
			return nil, errors.Errorf("memory type %d references missing heap %d", i, t.Heap)
		}
	}

	a := &Allocator{
		log:       logger.New("gpumem"),
		device:    device,
		props:     props,
		blocks:    make([][]*block, len(props.Types)),
		dedicated: make(map[*Allocation]struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.log.Fine("%d memory types, %d heaps", len(props.Types), len(props.Heaps))
	return a, nil
}

func (a *Allocator) preferredBlockSize(memoryType int) uint64 {
	if a.blockSize > 0 {
		return a.blockSize
	}
	heap := a.props.Heaps[a.props.Types[memoryType].Heap]
	if heap.Size <= smallHeapLimit {
		return alignUp(heap.Size/8, 32)
	}
	return DefaultBlockSize
}

// FindMemoryType returns the first type allowed by typeBits that has every
// required flag.
func (a *Allocator) FindMemoryType(typeBits uint32, required MemoryPropertyFlags) (int, error) {
	for i, t := range a.props.Types {
		if i >= 32 {
			break
		}
		if typeBits&(1<<uint(i)) != 0 && t.Flags&required == required {
			return i, nil
		}
	}
	return -1, errors.Wrapf(ErrNoSuitableType, "bits %#x, flags %s", typeBits, required)
}

func (a *Allocator) Allocate(req Requirements, required MemoryPropertyFlags) (*Allocation, error) {
	if req.Size == 0 {
		return nil, ErrZeroSize
	}
	if req.Alignment&(req.Alignment-1) != 0 {
		return nil, errors.Wrapf(ErrBadAlignment, "alignment %d", req.Alignment)
	}
	memoryType, err := a.FindMemoryType(req.TypeBits, required)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.destroyed {
		return nil, ErrDestroyed
	}

	blockSize := a.preferredBlockSize(memoryType)
	if req.Size > blockSize/2 {
		return a.allocateDedicated(req.Size, memoryType)
	}

	for _, b := range a.blocks[memoryType] {
		if alloc := b.allocate(req.Size, req.Alignment); alloc != nil {
			alloc.MemoryType = memoryType
			return alloc, nil
		}
	}

	mem, err := a.device.AllocateMemory(blockSize, memoryType)
	if err != nil {
		return nil, errors.Wrapf(err, "allocate %d byte block", blockSize)
	}
	b := &block{memory: mem, size: blockSize}
	a.blocks[memoryType] = append(a.blocks[memoryType], b)
	a.log.Trace("new block of %d bytes for type %d", blockSize, memoryType)

	alloc := b.allocate(req.Size, req.Alignment)
	alloc.MemoryType = memoryType
	return alloc, nil
}

func (a *Allocator) allocateDedicated(size uint64, memoryType int) (*Allocation, error) {
	mem, err := a.device.AllocateMemory(size, memoryType)
	if err != nil {
		return nil, errors.Wrapf(err, "allocate %d dedicated bytes", size)
	}
	alloc := &Allocation{
		Memory:     mem,
		Size:       size,
		MemoryType: memoryType,
		Dedicated:  true,
	}
	a.dedicated[alloc] = struct{}{}
	return alloc, nil
}

// Free releases alloc. Blocks left empty are returned to the device, except
// the first block of each type.
func (a *Allocator) Free(alloc *Allocation) {
	if alloc == nil {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.destroyed {
		return
	}

	if alloc.Dedicated {
		if _, ok := a.dedicated[alloc]; !ok {
			a.log.Warn("free of unknown allocation %s", alloc)
			return
		}
		delete(a.dedicated, alloc)
		a.device.FreeMemory(alloc.Memory)
		return
	}

	b := alloc.block
	if b == nil || !b.free(alloc) {
		a.log.Warn("free of unknown allocation %s", alloc)
		return
	}
	alloc.block = nil

	blocks := a.blocks[alloc.MemoryType]
	if len(b.allocs) > 0 || len(blocks) < 2 || blocks[0] == b {
		return
	}
	for i, c := range blocks {
		if c == b {
			a.blocks[alloc.MemoryType] = append(blocks[:i], blocks[i+1:]...)
			break
		}
	}
	a.device.FreeMemory(b.memory)
}

func (a *Allocator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := Stats{}
	for _, blocks := range a.blocks {
		for _, b := range blocks {
			s.Blocks++
			s.Reserved += b.size
			s.Allocations += len(b.allocs)
			for _, alloc := range b.allocs {
				s.Used += alloc.Size
			}
		}
	}
	for alloc := range a.dedicated {
		s.Dedicated++
		s.Allocations++
		s.Reserved += alloc.Size
		s.Used += alloc.Size
	}
	return s
}

// Destroy returns all device memory. Outstanding allocations become invalid.
func (a *Allocator) Destroy() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.destroyed {
		return
	}
	a.destroyed = true

	for alloc := range a.dedicated {
		a.device.FreeMemory(alloc.Memory)
	}
	a.dedicated = nil
	for t, blocks := range a.blocks {
		for _, b := range blocks {
			a.device.FreeMemory(b.memory)
		}
		a.blocks[t] = nil
	}
}
