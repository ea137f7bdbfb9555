package java

import "github.com/cockroachdb/errors"

// ErrClassNotFound is returned, possibly wrapped, by loaders that have no
// class file for the requested name.
var ErrClassNotFound = errors.New("class not found")

// Loader resolves binary names ("java.util.Map$Entry") to classes.
type Loader interface {
	LoadClass(name string) (*Class, error)
}

type LoaderFunc func(name string) (*Class, error)

func (f LoaderFunc) LoadClass(name string) (*Class, error) {
	return f(name)
}

// IsNotFound reports whether err means a class could not be located.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrClassNotFound)
}
