package vm

// ---------------------------------------------------------------------------
// SymbolTable: Interned symbols
// ---------------------------------------------------------------------------

// SymbolTable interns symbol names to heap symbol Objects. Two symbols with
// the same name are the same Object. Symbol blocks are exempt from sweeping,
// so interned Objects stay valid for the life of the runtime.
type SymbolTable struct {
	byName map[string]Object
	names  []string // in interning order
}

// NewSymbolTable creates a new empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		byName: make(map[string]Object),
		names:  make([]string, 0, 256),
	}
}

// Lookup returns the symbol for name, or Undefined and false if it has not
// been interned.
func (st *SymbolTable) Lookup(name string) (Object, bool) {
	sym, ok := st.byName[name]
	if !ok {
		return Undefined, false
	}
	return sym, true
}

// Len returns the number of interned symbols.
func (st *SymbolTable) Len() int {
	return len(st.names)
}

// All returns all symbol names in interning order.
func (st *SymbolTable) All() []string {
	result := make([]string, len(st.names))
	copy(result, st.names)
	return result
}

func (st *SymbolTable) add(name string, sym Object) {
	st.byName[name] = sym
	st.names = append(st.names, name)
}

// Symbol returns the interned symbol for name, allocating it on first use.
// The result is not pushed onto any frame; symbols need no rooting.
func (rt *Runtime) Symbol(name string) Object {
	if sym, ok := rt.symbols.Lookup(name); ok {
		return sym
	}
	sym := rt.gc.allocate(TypeSymbol, &symbolBlock{name: name})
	rt.symbols.add(name, sym)
	return sym
}

// Symbols returns the runtime's symbol table.
func (rt *Runtime) Symbols() *SymbolTable {
	return rt.symbols
}
