// Package symbols implements Slang's scoped symbol table: resolution of
// variables, functions, and type names, with duplicate-symbol detection
// within a scope, via a push/pop stack of symbol maps.
package symbols

import "github.com/FrederikTobner/slang/pkg/span"

// Kind distinguishes what a Symbol names.
type Kind int

const (
	KindType Kind = iota
	KindVariable
	KindFunction
)

// Symbol is one named entity visible in some scope.
type Symbol struct {
	Name    string
	Kind    Kind
	TypeID  uint32
	Mutable bool
	Span    span.Span
	Slot    int // local-variable slot, meaningful for KindVariable
}

type scope struct {
	names map[string]*Symbol
}

func newScope() *scope {
	return &scope{names: make(map[string]*Symbol)}
}

// Table is a stack of scopes. The outermost scope (index 0) holds
// top-level declarations (struct types, function signatures); each nested
// block, function body, or parameter list pushes a fresh scope.
type Table struct {
	scopes []*scope
}

// NewTable returns a Table with a single, open global scope.
func NewTable() *Table {
	t := &Table{}
	t.Push()
	return t
}

// Push opens a new innermost scope.
func (t *Table) Push() {
	t.scopes = append(t.scopes, newScope())
}

// Pop closes the innermost scope, discarding its symbols.
func (t *Table) Pop() {
	if len(t.scopes) == 0 {
		return
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// Depth reports how many scopes are currently open.
func (t *Table) Depth() int { return len(t.scopes) }

// Declare inserts sym into the innermost scope. It returns false without
// modifying the table if a symbol with the same name already exists in
// that scope (spec.md invariant 2).
func (t *Table) Declare(sym *Symbol) bool {
	cur := t.scopes[len(t.scopes)-1]
	if _, exists := cur.names[sym.Name]; exists {
		return false
	}
	cur.names[sym.Name] = sym
	return true
}

// Lookup searches from the innermost scope outward and returns the first
// match, or nil.
func (t *Table) Lookup(name string) *Symbol {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if sym, ok := t.scopes[i].names[name]; ok {
			return sym
		}
	}
	return nil
}

// LookupLocal searches only the innermost scope.
func (t *Table) LookupLocal(name string) *Symbol {
	cur := t.scopes[len(t.scopes)-1]
	return cur.names[name]
}
