// Package runtime drives one lift pass: load a target into the decoder,
// walk its address space, and emit the resulting instruction blocks.
package runtime

import (
	"gadgetlift/internal/apperr"
	"gadgetlift/internal/decoder"
	"gadgetlift/internal/il"
	"gadgetlift/internal/regmap"
	"gadgetlift/internal/target"
)

// State mirrors the three-stage lifecycle from empty runtime to a
// finished lift pass.
type State int

const (
	Empty State = iota
	Loaded
	Lifted
)

// nativeDecoder is the subset of *decoder.Decoder the runtime drives.
// Depending on the interface rather than the concrete cgo type lets the
// lift loop be exercised by tests without a linked native library.
type nativeDecoder interface {
	LoadSpec(path string) error
	Begin() error
	SetContextDefault(name string, value uint32) error
	LoadBytes(address uint64, data []byte) error
	LiftAt(address uint64) (decoder.RawInsn, bool, error)
	Registers() ([]decoder.RawRegister, error)
	Close()
}

// Runtime owns one decoder instance and, once loaded, the register map
// built from its register table. It is not reusable across targets: a
// second LoadTarget call fails with apperr.TargetPresent.
type Runtime struct {
	dec    nativeDecoder
	state  State
	target *target.Target
	regs   *regmap.Map
}

// New creates a Runtime backed by a fresh decoder handle, with no target
// loaded yet.
func New() (*Runtime, error) {
	dec, err := decoder.New()
	if err != nil {
		return nil, err
	}
	return &Runtime{dec: dec, state: Empty}, nil
}

// newWithDecoder builds a Runtime around an already-constructed decoder.
// It exists so tests can drive the lift loop against a fake nativeDecoder
// without linking the real cgo shim.
func newWithDecoder(dec nativeDecoder) *Runtime {
	return &Runtime{dec: dec, state: Empty}
}

// Close releases the underlying decoder handle.
func (r *Runtime) Close() {
	r.dec.Close()
}

// LoadTarget transitions Empty to Loaded: it loads the target's spec,
// begins the decoder, applies every context pair, builds the register
// map, and stages the target's rebased regions.
func (r *Runtime) LoadTarget(t *target.Target) error {
	if r.state != Empty {
		return apperr.New(apperr.TargetPresent, "a target is already loaded")
	}

	if err := r.dec.LoadSpec(t.SpecPath()); err != nil {
		return err
	}
	if err := r.dec.Begin(); err != nil {
		return err
	}

	for _, pair := range t.ContextPairs() {
		// Context values are truncated to 32 bits by the native ABI.
		if err := r.dec.SetContextDefault(pair.Name, uint32(pair.Value)); err != nil {
			if kind, ok := apperr.Of(err); ok && kind == apperr.BadContextVariable {
				continue // unknown key: skipped without a warning, the load goes on
			}
			return err
		}
	}

	rawRegs, err := r.dec.Registers()
	if err != nil {
		return err
	}
	descs := make([]regmap.Descriptor, len(rawRegs))
	for i, rr := range rawRegs {
		descs[i] = regmap.Descriptor{Name: rr.Name, Offset: rr.Offset, Width: rr.Width}
	}
	r.regs = regmap.New(descs)

	for _, region := range t.RegionsRebased() {
		if err := r.dec.LoadBytes(region.Base, region.Data); err != nil {
			return err
		}
	}

	r.target = t
	r.state = Loaded
	return nil
}

// PerformLift walks the target's address space from its base address,
// lifting every decodable instruction into an il.Block. Undecodable
// bytes and blocks that fail to construct are both recovered locally by
// advancing the cursor and continuing, per the error-handling policy:
// only UnableToLift and malformed individual instructions are handled
// inside this loop.
func (r *Runtime) PerformLift() ([]il.Block, error) {
	if r.state != Loaded {
		return nil, apperr.New(apperr.NoTarget, "perform_lift called without a loaded target")
	}

	var out []il.Block
	cursor := r.target.BaseAddress()

	for {
		next, ok := r.target.NextAddress(cursor)
		if !ok {
			break
		}
		cursor = next

		raw, ok, err := r.dec.LiftAt(cursor)
		if err != nil {
			return nil, err
		}
		if !ok {
			cursor += r.target.Alignment()
			continue
		}

		block, err := il.NewBlock(raw, r.regs)
		if err != nil {
			cursor += raw.Size
			continue
		}

		out = append(out, block)
		cursor += raw.Size
	}

	r.state = Lifted
	return out, nil
}

// RegisterMap returns the register map built during LoadTarget, or nil
// if no target has been loaded yet.
func (r *Runtime) RegisterMap() *regmap.Map { return r.regs }

// State reports the runtime's current lifecycle stage.
func (r *Runtime) State() State { return r.state }
