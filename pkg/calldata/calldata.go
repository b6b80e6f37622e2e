// Package calldata defines CallData, the immutable descriptor of a call
// site shared by every call-like opcode (send, invokesuper,
// invokeblock, and the opt_* fast-path specializations).
package calldata

// Flag bits. Bit position and meaning are fixed by the
// wire format and must not be renumbered.
const (
	FlagArgsSplat    uint16 = 1 << 0 // splat (*args) in the argument list
	FlagBlockarg     uint16 = 1 << 1 // explicit &block argument
	FlagFCall        uint16 = 1 << 2 // function-style call (no explicit receiver)
	FlagVCall        uint16 = 1 << 3 // bare identifier that might be a method call
	FlagArgsSimple   uint16 = 1 << 4 // no splat, no block, no kwargs
	FlagBlockiseq    uint16 = 1 << 5 // call carries a literal block (do/end or {})
	FlagKwarg        uint16 = 1 << 6 // keyword arguments present
	FlagKwSplat      uint16 = 1 << 7 // **kwargs splat
	FlagTailcall     uint16 = 1 << 8 // call is in tail position
	FlagSuper        uint16 = 1 << 9 // explicit super(...) call
	FlagZSuper       uint16 = 1 << 10 // bare super (forwards caller's args)
	FlagOptSend      uint16 = 1 << 11 // compiler-synthesized send (e.g. []=)
	FlagKwSplatMut   uint16 = 1 << 12 // kwsplat hash may be mutated in place
)

// CallData is the immutable descriptor of a call site. It is created by
// the compiler or deserializer, referenced by call-like opcodes, and
// never mutated after construction.
type CallData struct {
	Method string
	Argc   uint16
	Flags  uint16
	KwArg  []string // nil unless FlagKwarg is set
}

// New constructs a CallData with no keyword names.
func New(method string, argc uint16, flags uint16) CallData {
	return CallData{Method: method, Argc: argc, Flags: flags}
}

// NewWithKwargs constructs a CallData carrying keyword argument names.
// FlagKwarg is set automatically.
func NewWithKwargs(method string, argc uint16, flags uint16, kwArg []string) CallData {
	return CallData{Method: method, Argc: argc, Flags: flags | FlagKwarg, KwArg: kwArg}
}

// HasFlag reports whether every bit in mask is set.
func (cd CallData) HasFlag(mask uint16) bool {
	return cd.Flags&mask == mask
}

// Equal reports structural equality, used by canonicalization
// idempotence checks that compare embedded CallData operands.
func (cd CallData) Equal(other CallData) bool {
	if cd.Method != other.Method || cd.Argc != other.Argc || cd.Flags != other.Flags {
		return false
	}
	if len(cd.KwArg) != len(other.KwArg) {
		return false
	}
	for i, n := range cd.KwArg {
		if other.KwArg[i] != n {
			return false
		}
	}
	return true
}

// Builder incrementally assembles a CallData; intended for use by an
// external compiler lowering a call expression.
type Builder struct {
	cd CallData
}

func NewBuilder(method string) *Builder {
	return &Builder{cd: CallData{Method: method}}
}

func (b *Builder) Argc(n uint16) *Builder {
	b.cd.Argc = n
	return b
}

func (b *Builder) WithFlag(mask uint16) *Builder {
	b.cd.Flags |= mask
	return b
}

func (b *Builder) Kwargs(names []string) *Builder {
	b.cd.KwArg = names
	b.cd.Flags |= FlagKwarg
	return b
}

func (b *Builder) Build() CallData {
	return b.cd
}
