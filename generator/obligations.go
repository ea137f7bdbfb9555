package generator

import (
	"sort"
	"strings"

	"github.com/dhamidi/implgen/java"
)

// identity is the override key of a method: its name and the canonical names
// of its parameter types. Return and thrown types do not take part, so
// methods that collide after erasure share one identity.
type identity struct {
	name   string
	params string
}

func identityOf(m java.Method) identity {
	params := make([]string, len(m.ParameterTypes))
	for i, p := range m.ParameterTypes {
		params[i] = p.String()
	}
	return identity{name: m.Name, params: strings.Join(params, ",")}
}

// resolver accumulates the methods a subtype must override.
type resolver struct {
	set     map[identity]java.Method
	visited map[string]bool
}

// Obligations computes the methods a concrete subtype of c must override, in
// a stable order: by name, then by parameter list.
//
// Every interface in c's closure is visited first, each after its own
// superinterfaces, then the superclass chain from the root down to c. A
// method from an interface or an abstract method is recorded under its
// identity, replacing what was there; a concrete class method removes the
// entry it implements.
func Obligations(c *java.Class) ([]java.Method, error) {
	r := &resolver{
		set:     make(map[identity]java.Method),
		visited: make(map[string]bool),
	}

	chain, err := superclassChain(c)
	if err != nil {
		return nil, err
	}

	for i := len(chain) - 1; i >= 0; i-- {
		if err := r.visitInterfaces(chain[i]); err != nil {
			return nil, err
		}
	}
	if c.IsInterface() {
		if err := r.visitInterface(c); err != nil {
			return nil, err
		}
	}
	for i := len(chain) - 1; i >= 0; i-- {
		if err := r.visitDeclared(chain[i]); err != nil {
			return nil, err
		}
	}

	return r.sorted(), nil
}

// superclassChain returns c followed by its superclasses, or nothing for an
// interface.
func superclassChain(c *java.Class) ([]*java.Class, error) {
	if c.IsInterface() {
		return nil, nil
	}
	var chain []*java.Class
	seen := make(map[string]bool)
	for u := c; u != nil; {
		if seen[u.Name()] {
			break
		}
		seen[u.Name()] = true
		chain = append(chain, u)
		super, err := u.Superclass()
		if err != nil {
			return nil, err
		}
		u = super
	}
	return chain, nil
}

func (r *resolver) visitInterfaces(c *java.Class) error {
	ifaces, err := c.Interfaces()
	if err != nil {
		return err
	}
	for _, iface := range ifaces {
		if err := r.visitInterface(iface); err != nil {
			return err
		}
	}
	return nil
}

// visitInterface walks superinterfaces before the interface itself. An
// interface reached twice through a diamond is only walked the first time.
func (r *resolver) visitInterface(iface *java.Class) error {
	if r.visited[iface.Name()] {
		return nil
	}
	r.visited[iface.Name()] = true
	if err := r.visitInterfaces(iface); err != nil {
		return err
	}
	return r.visitDeclared(iface)
}

func (r *resolver) visitDeclared(u *java.Class) error {
	methods, err := u.DeclaredMethods()
	if err != nil {
		return err
	}
	declared := make(map[identity]bool)
	for _, m := range methods {
		if !m.IsBridge && !m.IsSynthetic {
			declared[identityOf(m)] = true
		}
	}
	for _, m := range methods {
		r.consider(u, m, declared)
	}
	return nil
}

// consider applies one declared method of u. declared holds the identities
// of the non-bridge methods u declares.
func (r *resolver) consider(u *java.Class, m java.Method, declared map[identity]bool) {
	if !m.Modifiers.IsPublic() && !m.Modifiers.IsProtected() {
		return
	}
	if m.Modifiers.IsStatic() {
		return
	}
	if m.IsBridge {
		// A concrete bridge on a class implements the erased signature it
		// adapts, unless it only narrows the return type of a method u
		// declares itself.
		id := identityOf(m)
		if !u.IsInterface() && !m.Modifiers.IsAbstract() && !declared[id] {
			delete(r.set, id)
		}
		return
	}
	if m.IsSynthetic {
		return
	}

	id := identityOf(m)
	delete(r.set, id)
	if m.Modifiers.IsAbstract() || u.IsInterface() {
		r.set[id] = m
	}
}

func (r *resolver) sorted() []java.Method {
	ids := make([]identity, 0, len(r.set))
	for id := range r.set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if ids[i].name != ids[j].name {
			return ids[i].name < ids[j].name
		}
		return ids[i].params < ids[j].params
	})
	methods := make([]java.Method, len(ids))
	for i, id := range ids {
		methods[i] = r.set[id]
	}
	return methods
}
