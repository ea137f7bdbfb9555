package format

import (
	"encoding"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(stub *Stub) error
}
