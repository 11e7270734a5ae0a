package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLoad     Phase = "load"     // schema intermediate loading
	PhaseVerify   Phase = "verify"   // schema verification
	PhaseCompile  Phase = "compile"  // layout calculation
	PhaseEncode   Phase = "encode"   // children to buffer
	PhaseDecode   Phase = "decode"   // buffer validation
	PhaseImport   Phase = "import"   // foreign type system mapping
	PhaseGuest    Phase = "guest"    // guest linear memory access
	PhaseGenerate Phase = "generate" // accessor fact derivation
)

// Kind categorizes the error
type Kind string

// Structural decode failures.
const (
	KindHeaderTooShort      Kind = "header_too_short"
	KindSizeMismatch        Kind = "size_mismatch"
	KindOffsetMisaligned    Kind = "offset_misaligned"
	KindOffsetNotMonotonic  Kind = "offset_not_monotonic"
	KindFieldCountMismatch  Kind = "field_count_mismatch"
	KindUnknownDiscriminant Kind = "unknown_discriminant"
)

const (
	KindInvalidSchema Kind = "invalid_schema"
	KindNotFound      Kind = "not_found"
	KindDuplicate     Kind = "duplicate"
	KindUnsupported   Kind = "unsupported"
	KindOverflow      Kind = "overflow"
	KindOutOfBounds   Kind = "out_of_bounds"
	KindInvalidInput  Kind = "invalid_input"
	KindArity         Kind = "arity"
	KindNilPointer    Kind = "nil_pointer"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Type   string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Type != "" {
		b.WriteString(": type ")
		b.WriteString(e.Type)
	}

	if e.Detail != "" {
		if e.Type != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Sentinels for errors.Is checks against decode failures.
var (
	ErrHeaderTooShort      = &Error{Phase: PhaseDecode, Kind: KindHeaderTooShort}
	ErrSizeMismatch        = &Error{Phase: PhaseDecode, Kind: KindSizeMismatch}
	ErrOffsetMisaligned    = &Error{Phase: PhaseDecode, Kind: KindOffsetMisaligned}
	ErrOffsetNotMonotonic  = &Error{Phase: PhaseDecode, Kind: KindOffsetNotMonotonic}
	ErrFieldCountMismatch  = &Error{Phase: PhaseDecode, Kind: KindFieldCountMismatch}
	ErrUnknownDiscriminant = &Error{Phase: PhaseDecode, Kind: KindUnknownDiscriminant}
)

// Is forwards to the standard library errors.Is.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As forwards to the standard library errors.As.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// KindOf returns the Kind of err if it is an *Error, or "" otherwise.
func KindOf(err error) Kind {
	var e *Error
	if As(err, &e) {
		return e.Kind
	}
	return ""
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the member path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Type sets the schema type name
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for the decode taxonomy

// HeaderTooShort creates an error for a slice shorter than its header region
func HeaderTooShort(path []string, typeName string, got, want int) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindHeaderTooShort,
		Path:   path,
		Type:   typeName,
		Detail: fmt.Sprintf("%d < %d", got, want),
		Value:  got,
	}
}

// SizeMismatch creates an error for a total size that disagrees with the slice length
func SizeMismatch(path []string, typeName string, got, want int) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindSizeMismatch,
		Path:   path,
		Type:   typeName,
		Detail: fmt.Sprintf("%d != %d", got, want),
		Value:  got,
	}
}

// OffsetMisaligned creates an error for a bad first offset-table entry
func OffsetMisaligned(path []string, typeName string, first uint32) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindOffsetMisaligned,
		Path:   path,
		Type:   typeName,
		Detail: fmt.Sprintf("first offset %d must be a multiple of 4 and >= 8", first),
		Value:  first,
	}
}

// OffsetNotMonotonic creates an error for a decreasing offset pair
func OffsetNotMonotonic(path []string, typeName string, index int, prev, next uint32) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindOffsetNotMonotonic,
		Path:   path,
		Type:   typeName,
		Detail: fmt.Sprintf("offset[%d]=%d > offset[%d]=%d", index-1, prev, index, next),
		Value:  index,
	}
}

// FieldCountMismatch creates an error for a table whose field count is not acceptable
func FieldCountMismatch(path []string, typeName string, got, want int, compatible bool) *Error {
	detail := fmt.Sprintf("%d fields, schema declares %d", got, want)
	if got > want && !compatible {
		detail += " (compatible mode disabled)"
	}
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindFieldCountMismatch,
		Path:   path,
		Type:   typeName,
		Detail: detail,
		Value:  got,
	}
}

// UnknownDiscriminant creates an error for an undeclared union item id
func UnknownDiscriminant(path []string, typeName string, id uint32) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindUnknownDiscriminant,
		Path:   path,
		Type:   typeName,
		Detail: fmt.Sprintf("item id %d", id),
		Value:  id,
	}
}

// Other convenience constructors

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
		Value:  name,
	}
}

// InvalidSchema creates a schema verification error
func InvalidSchema(path []string, typeName, detail string) *Error {
	return &Error{
		Phase:  PhaseVerify,
		Kind:   KindInvalidSchema,
		Path:   path,
		Type:   typeName,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, typeName string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Type:   typeName,
		Detail: detail,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, offset, length, size int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("range [%d, %d) out of bounds (size %d)", offset, offset+length, size),
		Value:  offset,
	}
}

// Arity creates an error for a wrong number of encode children
func Arity(typeName string, got, want int) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindArity,
		Type:   typeName,
		Detail: fmt.Sprintf("got %d children, want %d", got, want),
		Value:  got,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
