package java

// DefaultValue returns the Java literal for the zero value of t: "false" for
// boolean, "0" for the other primitives, "null" for references and arrays,
// and "" for void.
func DefaultValue(t TypeRef) string {
	switch {
	case t.IsVoid():
		return ""
	case !t.IsPrimitive():
		return "null"
	case t.Name == "boolean":
		return "false"
	default:
		return "0"
	}
}
