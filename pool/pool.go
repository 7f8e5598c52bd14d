// Package pool implements the string-interning table shared by every stage
// of the parser-generator pipeline: grammar rule and terminal names are
// interned once here and referred to everywhere else as small integer IDs.
package pool

import "fmt"

// ID is an opaque handle for an interned name. IDs are stable for the
// lifetime of the Pool that produced them and are never destroyed during a
// run; they are only ever compared, never dereferenced without the owning
// Pool.
type ID int

// String satisfies fmt.Stringer for debug output; it does not look up the
// owning Pool (IDs alone don't know which Pool they came from).
func (id ID) String() string {
	return fmt.Sprintf("#%d", int(id))
}

// Less gives IDs a total order, used throughout the pipeline wherever a set
// or map must be iterated deterministically.
func (id ID) Less(other ID) bool {
	return id < other
}

// Pool is a growing, append-only, order-preserving table of unique strings.
// The zero value is ready to use.
type Pool struct {
	names  []string
	lookup map[string]ID
}

// New constructs an empty Pool.
func New() *Pool {
	return &Pool{lookup: make(map[string]ID)}
}

// Add interns name, returning its existing ID if the name has already been
// added (value-equal) or a freshly minted one otherwise.
func (p *Pool) Add(name string) ID {
	if p.lookup == nil {
		p.lookup = make(map[string]ID)
	}
	if id, ok := p.lookup[name]; ok {
		return id
	}
	id := ID(len(p.names))
	p.names = append(p.names, name)
	p.lookup[name] = id
	return id
}

// Get returns the name interned under id. It is a programmer error to pass
// an id that this Pool never minted; Get panics in that case rather than
// returning a recoverable error, since a foreign ID always indicates a bug
// in the caller, not bad input.
func (p *Pool) Get(id ID) string {
	if int(id) < 0 || int(id) >= len(p.names) {
		panic(fmt.Sprintf("pool: BadId %v is not known to this pool", id))
	}
	return p.names[id]
}

// ReverseLookup returns the ID already assigned to name, if any.
func (p *Pool) ReverseLookup(name string) (ID, bool) {
	id, ok := p.lookup[name]
	return id, ok
}

// Len returns the number of distinct interned names.
func (p *Pool) Len() int {
	return len(p.names)
}
