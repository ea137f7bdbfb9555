package generator

import (
	"github.com/dhamidi/implgen/java"
)

// SelectConstructor picks the parent constructor a stub delegates to: the
// first public or protected constructor, in class file order, that takes at
// least one parameter. It returns nil when the implicit no-argument
// constructor will do, and for interfaces.
func SelectConstructor(c *java.Class) (*java.Method, error) {
	if c.IsInterface() {
		return nil, nil
	}
	ctors, err := c.DeclaredConstructors()
	if err != nil {
		return nil, err
	}
	for i := range ctors {
		k := &ctors[i]
		if !k.Modifiers.IsPublic() && !k.Modifiers.IsProtected() {
			continue
		}
		if len(k.ParameterTypes) == 0 {
			continue
		}
		return k, nil
	}
	return nil, nil
}

// allConstructorsPrivate reports whether no subclass can call any
// constructor of c.
func allConstructorsPrivate(c *java.Class) (bool, error) {
	ctors, err := c.DeclaredConstructors()
	if err != nil || len(ctors) == 0 {
		return false, err
	}
	for _, k := range ctors {
		if !k.Modifiers.IsPrivate() {
			return false, nil
		}
	}
	return true, nil
}
