// Package target holds the input target model: a set of disjoint memory
// regions rebased against a chosen load address, plus the SLEIGH context
// and processor-spec path the decoder needs to interpret them.
package target

import (
	"gadgetlift/internal/memregion"
)

// ContextPair is one SLEIGH context variable assignment, name to value.
type ContextPair struct {
	Name  string
	Value uint64
}

// Target is an ordered collection of regions sharing a load base, plus the
// decoder inputs needed to lift them. Regions are stored with their
// region-local bases; rebasing happens on read via RegionsRebased.
type Target struct {
	baseAddress uint64
	regions     []memregion.Region
	context     []ContextPair
	specPath    string
	alignment   uint64
}

// defaultAlignment matches the runtime's fallback advance when the decoder
// cannot lift at the current cursor.
const defaultAlignment = 2

// FromRegions builds a Target from an unordered slice of region-local
// regions. Size is derivable on demand from the region list; it is not
// cached because SetSpecPath/SetContextPairs never change it and adding a
// cached field would just be one more thing that could go stale.
func FromRegions(regions []memregion.Region) *Target {
	cp := make([]memregion.Region, len(regions))
	copy(cp, regions)
	return &Target{regions: cp, alignment: defaultAlignment}
}

// SetBaseAddress sets the load base address applied to every region.
func (t *Target) SetBaseAddress(addr uint64) { t.baseAddress = addr }

// BaseAddress returns the target's load base address.
func (t *Target) BaseAddress() uint64 { return t.baseAddress }

// SetContextPairs replaces the target's SLEIGH context assignments.
func (t *Target) SetContextPairs(pairs []ContextPair) {
	cp := make([]ContextPair, len(pairs))
	copy(cp, pairs)
	t.context = cp
}

// ContextPairs returns the target's SLEIGH context assignments.
func (t *Target) ContextPairs() []ContextPair { return t.context }

// SetSpecPath sets the filesystem path to the .sla processor spec.
func (t *Target) SetSpecPath(path string) { t.specPath = path }

// SpecPath returns the filesystem path to the .sla processor spec.
func (t *Target) SpecPath() string { return t.specPath }

// SetAlignment overrides the lift loop's recovery step. Zero is rejected in
// favor of the default, since a zero step would not advance the cursor.
func (t *Target) SetAlignment(n uint64) {
	if n == 0 {
		n = defaultAlignment
	}
	t.alignment = n
}

// Alignment returns the lift loop's recovery advance, in bytes.
func (t *Target) Alignment() uint64 {
	if t.alignment == 0 {
		return defaultAlignment
	}
	return t.alignment
}

// Regions returns the target's region-local (un-rebased) regions.
func (t *Target) Regions() []memregion.Region { return t.regions }

// Size reports the span covered by the regions: the distance from the
// lowest region-local base to the highest region-local end.
func (t *Target) Size() uint64 {
	if len(t.regions) == 0 {
		return 0
	}
	lo, hi := t.regions[0].Base, t.regions[0].End()
	for _, r := range t.regions[1:] {
		if r.Base < lo {
			lo = r.Base
		}
		if r.End() > hi {
			hi = r.End()
		}
	}
	return hi - lo
}

// MaxAddress reports the highest rebased address one past the target's
// span: load base plus size.
func (t *Target) MaxAddress() uint64 {
	return t.baseAddress + t.Size()
}

// RegionsRebased returns a new slice of the target's regions, each shifted
// by the load base. The caller owns the returned slice.
func (t *Target) RegionsRebased() []memregion.Region {
	out := make([]memregion.Region, len(t.regions))
	for i, r := range t.regions {
		out[i] = r.Rebase(t.baseAddress)
	}
	return out
}

// OwningRegion returns the first un-rebased region containing address,
// after translating address back into region-local space by subtracting
// the load base. It returns false if no region contains it.
func (t *Target) OwningRegion(address uint64) (memregion.Region, bool) {
	if address < t.baseAddress {
		return memregion.Region{}, false
	}
	local := address - t.baseAddress
	for _, r := range t.regions {
		if r.Contains(local) {
			return r, true
		}
	}
	return memregion.Region{}, false
}

// NextAddress is the canonical sparse-address cursor advance. It returns:
//   - (0, false) if a exceeds MaxAddress().
//   - (a, true) if some rebased region already contains a.
//   - otherwise the smallest rebased region base that is >= a, or
//     (0, false) if no such region exists.
func (t *Target) NextAddress(a uint64) (uint64, bool) {
	if a > t.MaxAddress() {
		return 0, false
	}

	rebased := t.RegionsRebased()
	for _, r := range rebased {
		if r.Contains(a) {
			return a, true
		}
	}

	best := uint64(0)
	found := false
	for _, r := range rebased {
		if r.Base >= a && (!found || r.Base < best) {
			best = r.Base
			found = true
		}
	}
	if !found {
		return 0, false
	}
	return best, true
}
