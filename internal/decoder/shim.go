// Package decoder is the typed Go shim over the external SLEIGH-based
// lifter's C ABI. It never lets a raw C pointer escape: every returned
// struct is copied into plain Go data (see raw.go) before the call
// returns, and every native failure code becomes a *apperr.Error.
package decoder

/*
#cgo LDFLAGS: -lsleigh_shim
#include <stdlib.h>
#include <string.h>
#include "sleigh_shim.h"
*/
import "C"

import (
	"fmt"
	"unsafe"

	"gadgetlift/internal/apperr"
)

// state tracks the native handle's lifecycle. Operations other than
// LoadSpec, Begin and Close from Created or SpecLoaded fail with
// apperr.CallBeginFirst; Begin itself fails that way from Created.
type state int

const (
	stateCreated state = iota
	stateSpecLoaded
	stateStarted
)

// Decoder wraps one native sleigh_handle. It is not safe for concurrent
// use; callers that need parallel lifting should create one Decoder per
// goroutine.
type Decoder struct {
	handle *C.sleigh_handle
	state  state
}

// New allocates a native decoder handle in the Created state.
func New() (*Decoder, error) {
	h := C.sleigh_new()
	if h == nil {
		return nil, apperr.New(apperr.Fail, "sleigh_new returned nil")
	}
	return &Decoder{handle: h, state: stateCreated}, nil
}

// Close releases the native handle. It is safe to call from any state.
func (d *Decoder) Close() {
	if d.handle != nil {
		C.sleigh_free(d.handle)
		d.handle = nil
	}
}

// shim return codes, matching the native library's error enum.
const (
	codeOK = iota
	codeUninit
	codeBadOperation
	codeFail
	codeCallBeginFirst
	codeUnableToLift
	codeInvalidSpec
	codeBadContextVariable
	codeInsnDecodeError
)

// shimErrorForTest is a plain-int wrapper around shimError for use by
// shim_test.go, which cannot import "C" itself (unsupported by the go
// tool for _test.go files).
func shimErrorForTest(code int, msg string) error {
	return shimError(C.int(code), msg)
}

func shimError(code C.int, msg string) error {
	switch int(code) {
	case codeOK:
		return nil
	case codeUninit:
		return apperr.New(apperr.Uninit, msg)
	case codeBadOperation:
		return apperr.New(apperr.BadOperation, msg)
	case codeCallBeginFirst:
		return apperr.New(apperr.CallBeginFirst, msg)
	case codeUnableToLift:
		return apperr.New(apperr.UnableToLift, msg)
	case codeInvalidSpec:
		return apperr.New(apperr.InvalidSpec, msg)
	case codeBadContextVariable:
		return apperr.New(apperr.BadContextVariable, msg)
	case codeInsnDecodeError:
		return apperr.New(apperr.InsnDecodeError, msg)
	default:
		return apperr.New(apperr.Fail, fmt.Sprintf("%s (unknown native code %d)", msg, int(code)))
	}
}

// LoadSpec parses the .sla processor spec at path. It must be called
// before Begin, from the Created state.
func (d *Decoder) LoadSpec(path string) error {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	code := C.sleigh_load_specfile(d.handle, cpath)
	if err := shimError(code, "load_specfile"); err != nil {
		return err
	}
	d.state = stateSpecLoaded
	return nil
}

// Begin transitions the decoder into the Started state. All operations
// below require this to have succeeded first.
func (d *Decoder) Begin() error {
	if d.state == stateCreated {
		return apperr.New(apperr.CallBeginFirst, "load_spec must precede begin")
	}
	code := C.sleigh_begin(d.handle)
	if err := shimError(code, "begin"); err != nil {
		return err
	}
	d.state = stateStarted
	return nil
}

func (d *Decoder) requireStarted(op string) error {
	if d.state != stateStarted {
		return apperr.New(apperr.CallBeginFirst, op+" called before begin")
	}
	return nil
}

// SetContextDefault assigns one SLEIGH context variable. Values are
// truncated to 32 bits by the native ABI.
func (d *Decoder) SetContextDefault(name string, value uint32) error {
	if err := d.requireStarted("set_context_default"); err != nil {
		return err
	}
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	code := C.sleigh_context_var_set_default(d.handle, cname, C.uint32_t(value))
	return shimError(code, "set_context_default("+name+")")
}

// LoadBytes stages one region of bytes inside the decoder's address
// space at the given address.
func (d *Decoder) LoadBytes(address uint64, data []byte) error {
	if err := d.requireStarted("load_region"); err != nil {
		return err
	}
	var ptr *C.uint8_t
	if len(data) > 0 {
		ptr = (*C.uint8_t)(unsafe.Pointer(&data[0]))
	}
	code := C.sleigh_load_region(d.handle, C.uint64_t(address), ptr, C.uint64_t(len(data)))
	return shimError(code, fmt.Sprintf("load_region(%#x)", address))
}

// LiftAt decodes and lifts the instruction at address. It returns
// (RawInsn{}, false, nil) on undecodable bytes rather than an error —
// that case is the runtime's local-recovery path, not a failure.
func (d *Decoder) LiftAt(address uint64) (RawInsn, bool, error) {
	if err := d.requireStarted("next_insn"); err != nil {
		return RawInsn{}, false, err
	}

	var desc C.struct_InsnDesc
	code := C.sleigh_next_insn(d.handle, C.uint64_t(address), &desc)
	if int(code) == codeUnableToLift {
		return RawInsn{}, false, nil
	}
	if err := shimError(code, fmt.Sprintf("next_insn(%#x)", address)); err != nil {
		return RawInsn{}, false, err
	}

	code = C.sleigh_lift_insn(d.handle, &desc)
	if err := shimError(code, fmt.Sprintf("lift_insn(%#x)", address)); err != nil {
		C.sleigh_free_insn_desc(&desc)
		return RawInsn{}, false, err
	}
	defer C.sleigh_free_insn_desc(&desc)

	insn, err := copyInsnDesc(&desc)
	if err != nil {
		return RawInsn{}, false, err
	}
	return insn, true, nil
}

// Registers returns the decoder's full register table, copied out of the
// native library's borrowed buffer.
func (d *Decoder) Registers() ([]RawRegister, error) {
	if err := d.requireStarted("get_all_registers"); err != nil {
		return nil, err
	}

	var list C.struct_RegisterList
	code := C.sleigh_get_all_registers(d.handle, &list)
	if err := shimError(code, "get_all_registers"); err != nil {
		return nil, err
	}
	defer C.sleigh_free_register_list(&list)

	out := make([]RawRegister, 0, int(list.count))
	items := unsafe.Slice(list.items, int(list.count))
	for _, it := range items {
		out = append(out, RawRegister{
			Name:   cCharArrayToString(it.name[:]),
			Offset: uint64(it.varnode.offset),
			Width:  uint64(it.varnode.size),
		})
	}
	return out, nil
}

// UserOps returns the decoder's CALLOTHER pseudo-op names.
func (d *Decoder) UserOps() ([]string, error) {
	if err := d.requireStarted("get_user_ops"); err != nil {
		return nil, err
	}

	var list C.struct_UserOpList
	code := C.sleigh_get_user_ops(d.handle, &list)
	if err := shimError(code, "get_user_ops"); err != nil {
		return nil, err
	}
	defer C.sleigh_free_user_op_list(&list)

	count := int(list.count)
	lens := unsafe.Slice(list.name_lens, count)
	names := unsafe.Slice(list.names, count)

	out := make([]string, count)
	for i := 0; i < count; i++ {
		out[i] = C.GoStringN(names[i], C.int(lens[i]))
	}
	return out, nil
}

// copyInsnDesc copies a borrowed C.InsnDesc into a plain RawInsn. The
// native struct is only valid for the duration of the call that
// populated it; nothing here retains a C pointer afterward.
func copyInsnDesc(desc *C.struct_InsnDesc) (RawInsn, error) {
	ops := make([]RawPcodeOp, int(desc.op_count))
	rawOps := unsafe.Slice(desc.ops, int(desc.op_count))
	for i, raw := range rawOps {
		op, err := copyPcodeOp(&raw)
		if err != nil {
			return RawInsn{}, err
		}
		ops[i] = op
	}

	return RawInsn{
		Address:  uint64(desc.address),
		Size:     uint64(desc.size),
		Mnemonic: C.GoStringN(desc.mnemonic, C.int(desc.mnemonic_len)),
		Body:     C.GoStringN(desc.body, C.int(desc.body_len)),
		Ops:      ops,
	}, nil
}

func copyPcodeOp(op *C.struct_PcodeOp) (RawPcodeOp, error) {
	inputs := make([]RawVarnode, int(op.input_len))
	rawInputs := unsafe.Slice(op.inputs, int(op.input_len))
	for i, v := range rawInputs {
		inputs[i] = copyVarnode(&v)
	}

	out := RawPcodeOp{
		Opcode: uint32(op.opcode),
		Inputs: inputs,
	}
	if op.output != nil {
		out.Output = copyVarnode(op.output)
		out.OutputValid = true
	}
	return out, nil
}

func copyVarnode(v *C.struct_VarnodeDesc) RawVarnode {
	return RawVarnode{
		Space:  cCharArrayToString(v.space[:]),
		Offset: uint64(v.offset),
		Size:   uint64(v.size),
	}
}

// cCharArrayToString trims a fixed-width, NUL-padded C char array down
// to its Go string contents.
func cCharArrayToString(buf []C.char) string {
	n := 0
	for n < len(buf) && buf[n] != 0 {
		n++
	}
	b := make([]byte, n)
	for i := 0; i < n; i++ {
		b[i] = byte(buf[i])
	}
	return string(b)
}
