// Package regmap holds the fixed-capacity register table built once from
// the decoder's register list, and the offset/width lookup (with
// sub-width fallback) that every register VarReference resolves through.
package regmap

// Descriptor is one entry of the decoder's register table: a name, the
// (offset, width) key the decoder uses to address it, and a scratch value
// slot the runtime may stash a live value into. Descriptors are populated
// once after the decoder starts and never mutated again except for Value.
type Descriptor struct {
	Name   string
	Offset uint64
	Width  uint64
	Value  uint64
}

// Map is a linear, deterministic register table. The register count per
// architecture is in the hundreds, so a linear scan per lookup is cheap
// relative to one decoded instruction.
type Map struct {
	regs []Descriptor
}

// New builds a Map from the decoder's register table. The slice is copied;
// callers may discard their copy afterward.
func New(descs []Descriptor) *Map {
	cp := make([]Descriptor, len(descs))
	copy(cp, descs)
	return &Map{regs: cp}
}

// Len reports the number of registers in the map.
func (m *Map) Len() int { return len(m.regs) }

// subWidthDivisors is the fallback order from §4.D: a queried width may
// match a wider register declared at the same offset, at 1/2, 1/4, or 1/8
// of its stored width, in that order.
var subWidthDivisors = [...]uint64{2, 4, 8}

// Lookup resolves (offset, width) to a register descriptor. It first tries
// an exact (offset, width) match; failing that, it looks for a register at
// the same offset whose stored width divided by 2, 4, or 8 equals width —
// compensating for architectures (e.g. RISC-V) that don't expose sub-width
// register varnodes directly.
func (m *Map) Lookup(offset, width uint64) (Descriptor, bool) {
	for _, r := range m.regs {
		if r.Offset == offset && r.Width == width {
			return r, true
		}
	}
	for _, div := range subWidthDivisors {
		for _, r := range m.regs {
			if r.Offset == offset && r.Width == width*div {
				return r, true
			}
		}
	}
	return Descriptor{}, false
}
