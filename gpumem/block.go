package gpumem

type block struct {
	memory Memory
	size   uint64
	// sorted by offset
	allocs []*Allocation
}

func alignUp(v, align uint64) uint64 {
	if align <= 1 {
		return v
	}
	m := v % align
	if m == 0 {
		return v
	}
	return v - m + align
}

// fits reports whether size bytes at l end at or before limit without
// wrapping.
func fits(offset, l, size, limit uint64) bool {
	return l >= offset && l+size >= l && l+size <= limit
}

// allocate places size bytes in the first gap that fits, or returns nil.
func (b *block) allocate(size, align uint64) *Allocation {
	offset := uint64(0)
	for i, c := range b.allocs {
		l := alignUp(offset, align)
		if fits(offset, l, size, c.Offset) {
			return b.insert(i, l, size)
		}
		offset = c.Offset + c.Size
	}
	l := alignUp(offset, align)
	if !fits(offset, l, size, b.size) {
		return nil
	}
	return b.insert(len(b.allocs), l, size)
}

func (b *block) insert(i int, offset, size uint64) *Allocation {
	na := &Allocation{
		Memory: b.memory,
		Offset: offset,
		Size:   size,
		block:  b,
	}
	b.allocs = append(b.allocs, nil)
	copy(b.allocs[i+1:], b.allocs[i:])
	b.allocs[i] = na
	return na
}

func (b *block) free(alloc *Allocation) bool {
	for i, a := range b.allocs {
		if a == alloc {
			b.allocs = append(b.allocs[:i], b.allocs[i+1:]...)
			return true
		}
	}
	return false
}
