package calc

import (
	"sort"
)

// Env is a lexical scope mapping names to values. Lookups walk from an Env up
// through its parents; writes always go to the Env itself. A child holds a
// plain pointer to its parent and never the reverse, so closures capturing an
// Env cannot form an ownership cycle.
type Env struct {
	// Name is a display name for the scope.
	Name string
	// Val is a boxed value, letting the Env act as a namespace attached to a
	// non-environment value. Val is nil for ordinary scopes.
	Val any

	binds  map[string]any
	parent *Env
	depth  int
}

// NewEnv creates a root environment holding a copy of binds.
func NewEnv(binds map[string]any) *Env {
	e := &Env{binds: make(map[string]any, len(binds))}
	for k, v := range binds {
		e.binds[k] = v
	}
	return e
}

// Child creates a new environment whose parent is e. Its depth is one more
// than e's.
func (e *Env) Child(binds map[string]any) *Env {
	c := NewEnv(binds)
	c.parent = e
	c.depth = e.depth + 1
	return c
}

// Parent returns the environment's parent, or nil for a root.
func (e *Env) Parent() *Env {
	return e.parent
}

// Depth is the number of ancestors of the environment. It is used only for
// display.
func (e *Env) Depth() int {
	return e.depth
}

// Get looks up a name, walking the chain to the root.
func (e *Env) Get(name string) (any, bool) {
	for s := e; s != nil; s = s.parent {
		if v, ok := s.binds[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Lookup is like Get, but returns a *NameError if the name is unbound.
func (e *Env) Lookup(name string) (any, error) {
	v, ok := e.Get(name)
	if !ok {
		return nil, &NameError{Name: name}
	}
	return v, nil
}

// Local looks up a name in e only.
func (e *Env) Local(name string) (any, bool) {
	v, ok := e.binds[name]
	return v, ok
}

// Define binds a name in e, replacing any existing local binding. Ancestors
// are never modified.
func (e *Env) Define(name string, val any) {
	e.binds[name] = val
}

// Delete removes a local binding. It is an error if e does not bind the name
// itself, even if an ancestor does.
func (e *Env) Delete(name string) error {
	if _, ok := e.binds[name]; !ok {
		return &NameError{Name: name}
	}
	delete(e.binds, name)
	return nil
}

// Names returns the sorted names bound locally in e.
func (e *Env) Names() []string {
	r := make([]string, 0, len(e.binds))
	for k := range e.binds {
		r = append(r, k)
	}
	sort.Strings(r)
	return r
}

// AllNames returns the sorted names visible from e, including those of its
// ancestors.
func (e *Env) AllNames() []string {
	seen := make(map[string]bool)
	var r []string
	for s := e; s != nil; s = s.parent {
		for k := range s.binds {
			if !seen[k] {
				seen[k] = true
				r = append(r, k)
			}
		}
	}
	sort.Strings(r)
	return r
}

// Len returns the number of local bindings.
func (e *Env) Len() int {
	return len(e.binds)
}

// Merge copies the local bindings of from into e. With overwrite, bindings in
// from replace those already in e; otherwise existing bindings win and the
// names that were not copied are returned, sorted.
func (e *Env) Merge(from *Env, overwrite bool) (skipped []string) {
	for _, k := range from.Names() {
		if _, ok := e.binds[k]; ok && !overwrite {
			skipped = append(skipped, k)
			continue
		}
		e.binds[k] = from.binds[k]
	}
	return skipped
}

// Attr looks up a field of the environment. Fields are the names visible from
// e; if none matches and e boxes a value, the lookup falls through to the
// boxed value's own attributes.
func (e *Env) Attr(name string) (any, bool) {
	if v, ok := e.Get(name); ok {
		return v, true
	}
	if e.Val != nil {
		return attr(e.Val, name)
	}
	return nil, false
}

// Attributer is implemented by values that have named fields.
type Attributer interface {
	Attr(name string) (any, bool)
}

// attr gets a named field of a value.
func attr(v any, name string) (any, bool) {
	switch v := v.(type) {
	case Attributer:
		return v.Attr(name)
	case complex128:
		switch name {
		case "real":
			return floatOf(real(v)), true
		case "imag":
			return floatOf(imag(v)), true
		}
	case List:
		if name == "len" {
			return intOf(int64(len(v))), true
		}
	case string:
		if name == "len" {
			return intOf(int64(len([]rune(v)))), true
		}
	}
	return nil, false
}

// GetAttr gets a named field of a value, dispatching to the value's own
// attributes when it is not an environment.
func GetAttr(v any, name string) (any, error) {
	if r, ok := attr(v, name); ok {
		return r, nil
	}
	if _, ok := v.(*Env); ok {
		return nil, &NameError{Name: name}
	}
	return nil, typeErr(TypeName(v) + " has no field " + name)
}

// unbox returns the boxed value of an environment that has one, or v itself.
func unbox(v any) any {
	if e, ok := v.(*Env); ok && e.Val != nil {
		return e.Val
	}
	return v
}
