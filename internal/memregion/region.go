// Package memregion defines a named byte span with a base offset and
// containment tests. A Region is a view over bytes owned elsewhere — its
// lifecycle is tied to whatever assembled it (the loader, the target).
package memregion

// Region is a named byte span at a region-local base offset.
type Region struct {
	Name string
	Base uint64
	Data []byte
}

// New constructs a Region. Data is not copied.
func New(name string, base uint64, data []byte) Region {
	return Region{Name: name, Base: base, Data: data}
}

// Len reports the region's byte length.
func (r Region) Len() uint64 {
	return uint64(len(r.Data))
}

// End returns the address one past the region's last byte.
func (r Region) End() uint64 {
	return r.Base + r.Len()
}

// Contains reports whether address a falls within the region. An empty
// region contains nothing, including its own base address.
func (r Region) Contains(a uint64) bool {
	if r.Len() == 0 {
		return false
	}
	return a >= r.Base && a < r.End()
}

// ContainsRange reports whether the half-open range [a, a+n) is entirely
// contained in the region. A zero-length query range is never contained,
// matching Contains' treatment of an empty region. Addresses up to
// ^uint64(0) are accepted; a+n is checked for overflow rather than
// silently wrapping.
func (r Region) ContainsRange(a, n uint64) bool {
	if n == 0 {
		return false
	}
	if a < r.Base {
		return false
	}
	end := a + n
	if end < a {
		return false // overflow
	}
	return end <= r.End()
}

// Rebase returns a copy of the region with its base shifted by delta.
func (r Region) Rebase(delta uint64) Region {
	return Region{Name: r.Name, Base: r.Base + delta, Data: r.Data}
}
