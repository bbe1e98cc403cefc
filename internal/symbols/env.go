package symbols

// CallEnv is a symbol table mapping a fully qualified source name (e.g.
// "A", "A.x", "A.B.x") to a LinkedVar (spec §3). It grows monotonically as
// the workflow backbone is assembled; insertion order is tracked only so
// debug dumps can iterate deterministically, never as an externally
// observable property.
//
// Grounded on the teacher's SymbolTable (internal/semantic/symbol_table.go):
// a flat map plus an explicit insertion-order slice, without the teacher's
// case-insensitivity (WDL identifiers are case-sensitive) or scope nesting
// (the lowering pass threads one flat environment per block, spec §4.9).
type CallEnv struct {
	vars  map[string]LinkedVar
	order []string
}

// NewCallEnv returns an empty environment.
func NewCallEnv() *CallEnv {
	return &CallEnv{vars: make(map[string]LinkedVar)}
}

// Clone returns a shallow copy so a block compiler can extend the
// environment it was given without mutating the caller's view — the
// assembler threads the *new* returned environment forward instead (spec
// §4.9: "env-threaded").
func (e *CallEnv) Clone() *CallEnv {
	cp := &CallEnv{
		vars:  make(map[string]LinkedVar, len(e.vars)),
		order: append([]string{}, e.order...),
	}
	for k, v := range e.vars {
		cp.vars[k] = v
	}
	return cp
}

// Define binds name to lv. Redefining an existing name overwrites it but
// keeps its original position in iteration order.
func (e *CallEnv) Define(name string, lv LinkedVar) {
	if _, exists := e.vars[name]; !exists {
		e.order = append(e.order, name)
	}
	e.vars[name] = lv
}

// Lookup returns the LinkedVar bound to the exact fully qualified name, if
// any.
func (e *CallEnv) Lookup(name string) (LinkedVar, bool) {
	lv, ok := e.vars[name]
	return lv, ok
}

// Has reports whether name is bound.
func (e *CallEnv) Has(name string) bool {
	_, ok := e.vars[name]
	return ok
}

// Names returns every bound name in insertion order.
func (e *CallEnv) Names() []string {
	return append([]string{}, e.order...)
}

// Len reports the number of bindings.
func (e *CallEnv) Len() int { return len(e.vars) }

// TrailSearch implements the prefix-stripping lookup of spec §4.3 point 2
// and §9 "Trail search vs. full AST walk": look up the full dotted chain;
// if absent, strip one trailing component and retry, until a prefix hits or
// the chain is exhausted. Returns the matched key (the full FQN actually
// bound in the environment) alongside its LinkedVar.
func (e *CallEnv) TrailSearch(chain []string) (matchedKey string, lv LinkedVar, ok bool) {
	for n := len(chain); n >= 1; n-- {
		key := joinChain(chain[:n])
		if found, has := e.vars[key]; has {
			return key, found, true
		}
	}
	return "", LinkedVar{}, false
}

func joinChain(parts []string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		out := parts[0]
		for _, p := range parts[1:] {
			out += "." + p
		}
		return out
	}
}
