// Package apperr defines the typed failure taxonomy shared by the decoder
// shim, the loader, and the runtime. Every kind is a distinct sentinel so
// callers can branch with errors.Is instead of parsing messages.
package apperr

import "errors"

// Kind identifies one row of the failure taxonomy.
type Kind int

const (
	// Uninit is returned by a decoder call made before new().
	Uninit Kind = iota
	// BadVarSpace is an unrecognised P-code address-space tag.
	BadVarSpace
	// BadOperation is a decoder call rejected by the native library.
	BadOperation
	// Fail is a generic native-library failure with no more specific kind.
	Fail
	// CallBeginFirst is any op attempted before begin() has completed.
	CallBeginFirst
	// UnableToLift means the decoder could not decode bytes at an address.
	UnableToLift
	// InvalidSpec means the .sla processor spec could not be parsed.
	InvalidSpec
	// InvalidPspec means the .pspec processor spec could not be parsed.
	InvalidPspec
	// InsnDecodeError is a malformed instruction returned by the decoder.
	InsnDecodeError
	// BadContextVariable names an unknown SLEIGH context key.
	BadContextVariable
	// NoTarget means a lift was requested with no target loaded.
	NoTarget
	// NoInputMode means configuration lacks an input mode.
	NoInputMode
	// TargetPresent means a second target load was attempted.
	TargetPresent
	// UnableToLoadFile is an I/O error opening a dump, spec, or raw file.
	UnableToLoadFile
	// InvalidRegisterLookup means a VarReference named a register the
	// current spec's register table does not declare.
	InvalidRegisterLookup
)

var names = map[Kind]string{
	Uninit:                 "uninit",
	BadVarSpace:            "bad_var_space",
	BadOperation:           "bad_operation",
	Fail:                   "fail",
	CallBeginFirst:         "call_begin_first",
	UnableToLift:           "unable_to_lift",
	InvalidSpec:            "invalid_spec",
	InvalidPspec:           "invalid_pspec",
	InsnDecodeError:        "insn_decode_error",
	BadContextVariable:     "bad_context_variable",
	NoTarget:               "no_target",
	NoInputMode:            "no_input_mode",
	TargetPresent:          "target_present",
	UnableToLoadFile:       "unable_to_load_file",
	InvalidRegisterLookup:  "invalid_register_lookup",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return "unknown"
}

// Error wraps a Kind with context-specific detail.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Msg + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, so callers
// can write errors.Is(err, apperr.New(apperr.UnableToLift, "")).
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

// New builds an *Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds an *Error of the given kind around a lower-level cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Of reports the Kind of err if err is (or wraps) an *Error, and false
// otherwise.
func Of(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
