// Package scope implements compile-time Scope records of parameter/local
// names and their register indices, and the per-invocation Frame register
// vector built from a Scope. This avoids allocating a fresh hash map per
// call: the parser assigns register indices once, up front, and the
// interpreter indexes a flat slice.
package scope

import "github.com/cwbudde/go-jexl/internal/types"

// Scope is an immutable, insertion-ordered record of parameter and local
// names to register indices. Indices [0, ParamCount) are parameters; the
// rest are locals declared during parsing.
type Scope struct {
	names      []string
	index      map[string]int
	paramCount int
}

// New creates a Scope whose leading names are parameters.
func New(params []string) *Scope {
	s := &Scope{index: make(map[string]int, len(params))}
	for _, p := range params {
		s.declare(p)
	}
	s.paramCount = len(s.names)
	return s
}

func (s *Scope) declare(name string) int {
	if idx, ok := s.index[name]; ok {
		return idx
	}
	idx := len(s.names)
	s.names = append(s.names, name)
	s.index[name] = idx
	return idx
}

// DeclareVariable extends the scope with a local variable name, returning
// its register index. Declaring the same name twice returns the existing
// index (matching the parser's one-pass construction).
func (s *Scope) DeclareVariable(name string) int {
	return s.declare(name)
}

// Resolve returns the register index for name, or -1 if name is not
// lexically bound in this scope.
func (s *Scope) Resolve(name string) int {
	if idx, ok := s.index[name]; ok {
		return idx
	}
	return -1
}

// Size returns the number of registers (parameters + locals) this scope
// requires.
func (s *Scope) Size() int { return len(s.names) }

// ParamCount returns the number of leading parameter registers.
func (s *Scope) ParamCount() int { return s.paramCount }

// Names returns the declared register names in index order.
func (s *Scope) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Frame is a per-invocation fixed-size register vector bound to a Scope.
// Frames are cheap to allocate and are never shared across goroutines.
type Frame struct {
	scope     *Scope
	registers []types.Value
}

// NewFrame allocates a Frame for scope, copying up to ParamCount() values
// from args into the leading registers; remaining registers (including any
// missing trailing arguments) are types.Null.
func NewFrame(s *Scope, args ...types.Value) *Frame {
	regs := make([]types.Value, s.Size())
	for i := range regs {
		regs[i] = types.Null
	}
	n := s.ParamCount()
	if len(args) < n {
		n = len(args)
	}
	copy(regs[:n], args[:n])
	return &Frame{scope: s, registers: regs}
}

// Get reads register idx.
func (f *Frame) Get(idx int) types.Value { return f.registers[idx] }

// Set writes value into register idx.
func (f *Frame) Set(idx int, value types.Value) { f.registers[idx] = value }

// Scope returns the Scope this Frame was built from.
func (f *Frame) Scope() *Scope { return f.scope }
