package rdf

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// Prefix is a namespace prefix binding
type Prefix struct {
	Name string
	URI  URI
}

// Env is a lexical environment: an optional base URI and a table of
// namespace prefixes. It expands CURIEs and relative URIs, and qualifies
// URIs into CURIEs.
type Env struct {
	base     *URI
	prefixes []Prefix
}

// NewEnv creates an empty environment
func NewEnv() *Env {
	return &Env{}
}

// NewEnvWithBase creates an environment with a base URI
func NewEnvWithBase(base URI) (*Env, error) {
	env := NewEnv()
	if err := env.SetBaseURI(base); err != nil {
		return nil, err
	}
	return env, nil
}

// BaseURI returns the base URI, or nil if none is set
func (e *Env) BaseURI() Node {
	if e.base == nil {
		return nil
	}
	return *e.base
}

// SetBaseURI sets the base URI. A relative URI is resolved against the
// current base. A nil node clears the base.
func (e *Env) SetBaseURI(uri Node) error {
	if uri == nil {
		e.base = nil
		return nil
	}

	u, ok := uri.(URI)
	if !ok {
		return fmt.Errorf("base %v is not a URI: %w", uri, ErrBadArg)
	}

	resolved := NewURI(ResolveURI(u.IRI, e.baseIRI()))
	if !resolved.IsAbsolute() {
		return fmt.Errorf("base <%s> cannot be resolved: %w", u.IRI, ErrBadURI)
	}

	e.base = &resolved
	return nil
}

func (e *Env) baseIRI() string {
	if e.base == nil {
		return ""
	}
	return e.base.IRI
}

// SetPrefix binds a prefix name to a namespace URI. A relative namespace
// is resolved against the base URI. Setting an existing name replaces it.
func (e *Env) SetPrefix(name string, uri Node) error {
	u, ok := uri.(URI)
	if !ok {
		return fmt.Errorf("namespace %v for prefix %q is not a URI: %w", uri, name, ErrBadArg)
	}

	if !u.IsAbsolute() {
		if e.base == nil {
			return fmt.Errorf("relative namespace <%s> with no base URI: %w", u.IRI, ErrBadURI)
		}
		u = NewURI(ResolveURI(u.IRI, e.base.IRI))
	}

	for i := range e.prefixes {
		if e.prefixes[i].Name == name {
			e.prefixes[i].URI = u
			return nil
		}
	}

	e.prefixes = append(e.prefixes, Prefix{Name: name, URI: u})
	return nil
}

// Prefix returns the namespace bound to a prefix name
func (e *Env) Prefix(name string) (URI, bool) {
	for _, p := range e.prefixes {
		if p.Name == name {
			return p.URI, true
		}
	}
	return URI{}, false
}

// Prefixes returns the prefix bindings in the order they were first set
func (e *Env) Prefixes() []Prefix {
	return slices.Clone(e.prefixes)
}

// Qualify abbreviates a URI to a CURIE using the first registered prefix
// whose namespace is a proper prefix of the URI.
func (e *Env) Qualify(uri URI) (CURIE, bool) {
	for _, p := range e.prefixes {
		ns := p.URI.IRI
		if len(uri.IRI) > len(ns) && uri.IRI[:len(ns)] == ns {
			return NewCURIE(p.Name, uri.IRI[len(ns):]), true
		}
	}
	return CURIE{}, false
}

// Expand expands a CURIE to a URI, or returns false if its prefix is not bound
func (e *Env) Expand(curie CURIE) (URI, bool) {
	ns, ok := e.Prefix(curie.Prefix())
	if !ok {
		return URI{}, false
	}
	return NewURI(ns.IRI + curie.Name()), true
}

// ExpandNode makes a node context-free: CURIEs are expanded, relative URIs
// resolved against the base, and literal datatypes expanded the same way.
// Other nodes are returned unchanged.
func (e *Env) ExpandNode(n Node) (Node, error) {
	switch t := n.(type) {
	case CURIE:
		u, ok := e.Expand(t)
		if !ok {
			return nil, fmt.Errorf("undefined namespace prefix in %s: %w", t.Text, ErrBadCurie)
		}
		return u, nil
	case URI:
		if t.IsAbsolute() || e.base == nil {
			return t, nil
		}
		return NewURI(ResolveURI(t.IRI, e.base.IRI)), nil
	case Literal:
		if t.DatatypeIRI == "" {
			return t, nil
		}
		dt, err := e.ExpandNode(e.datatypeNode(t.DatatypeIRI))
		if err != nil {
			return nil, err
		}
		t.DatatypeIRI = dt.Value()
		return t, nil
	default:
		return n, nil
	}
}

// datatypeNode interprets a datatype string as a CURIE if its prefix is bound
func (e *Env) datatypeNode(iri string) Node {
	c := CURIE{Text: iri}
	if _, bound := e.Prefix(c.Prefix()); bound && strings.Contains(iri, ":") {
		return c
	}
	return NewURI(iri)
}

// Describe writes the base and every prefix binding to a sink as events
func (e *Env) Describe(sink Sink) error {
	if e.base != nil {
		if err := sink.OnEvent(BaseEvent(*e.base)); err != nil {
			return err
		}
	}

	for _, p := range e.prefixes {
		if err := sink.OnEvent(PrefixEvent(p.Name, p.URI)); err != nil {
			return err
		}
	}
	return nil
}

// Equal returns true if both environments have the same base and prefixes
func (e *Env) Equal(other *Env) bool {
	if e == nil || other == nil {
		return e == other
	}

	if !Equal(e.BaseURI(), other.BaseURI()) || len(e.prefixes) != len(other.prefixes) {
		return false
	}

	byName := func(a, b Prefix) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	}

	mine := e.Prefixes()
	theirs := other.Prefixes()
	slices.SortFunc(mine, byName)
	slices.SortFunc(theirs, byName)
	return slices.Equal(mine, theirs)
}
