package rdf

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Common namespaces
const (
	NSXSD = "http://www.w3.org/2001/XMLSchema#"
	NSRDF = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
)

// Helper values for common XSD datatypes and RDF terms
var (
	XSDString       = NewURI(NSXSD + "string")
	XSDInteger      = NewURI(NSXSD + "integer")
	XSDDecimal      = NewURI(NSXSD + "decimal")
	XSDDouble       = NewURI(NSXSD + "double")
	XSDFloat        = NewURI(NSXSD + "float")
	XSDBoolean      = NewURI(NSXSD + "boolean")
	XSDBase64Binary = NewURI(NSXSD + "base64Binary")

	RDFType  = NewURI(NSRDF + "type")
	RDFFirst = NewURI(NSRDF + "first")
	RDFRest  = NewURI(NSRDF + "rest")
	RDFNil   = NewURI(NSRDF + "nil")
)

// NewInteger creates an xsd:integer literal
func NewInteger(value int64) Literal {
	return NewTypedLiteral(strconv.FormatInt(value, 10), XSDInteger)
}

// ParseInteger creates an xsd:integer literal from decimal text.
// Values outside the signed 64-bit range fail with ErrOutOfRange.
func ParseInteger(text string) (Literal, error) {
	value, err := strconv.ParseInt(strings.TrimPrefix(text, "+"), 10, 64)
	if err != nil {
		if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
			return Literal{}, fmt.Errorf("integer %s: %w", text, ErrOutOfRange)
		}
		return Literal{}, fmt.Errorf("invalid integer %q: %w", text, ErrBadArg)
	}
	return NewInteger(value), nil
}

// NewDouble creates an xsd:double literal in canonical scientific form, like "1.234E1"
func NewDouble(value float64) Literal {
	return NewTypedLiteral(formatScientific(value, 64), XSDDouble)
}

// NewFloat creates an xsd:float literal in canonical scientific form, like "2.345E2"
func NewFloat(value float32) Literal {
	return NewTypedLiteral(formatScientific(float64(value), 32), XSDFloat)
}

// NewDecimal creates an xsd:decimal literal, like "12.34" or "1234.0"
func NewDecimal(value float64) (Literal, error) {
	return NewDecimalWithDatatype(value, XSDDecimal)
}

// NewDecimalWithDatatype creates a decimal literal with a custom datatype
func NewDecimalWithDatatype(value float64, datatype URI) (Literal, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Literal{}, fmt.Errorf("decimal %v: %w", value, ErrBadArg)
	}

	text := strconv.FormatFloat(value, 'f', -1, 64)
	if !strings.Contains(text, ".") {
		text += ".0"
	}
	return NewTypedLiteral(text, datatype), nil
}

// NewBoolean creates an xsd:boolean literal
func NewBoolean(value bool) Literal {
	return NewTypedLiteral(strconv.FormatBool(value), XSDBoolean)
}

// NewBase64 creates an xsd:base64Binary literal
func NewBase64(data []byte) Literal {
	return NewBase64WithDatatype(data, XSDBase64Binary)
}

// NewBase64WithDatatype creates a base64-encoded literal with a custom datatype
func NewBase64WithDatatype(data []byte, datatype URI) Literal {
	return NewTypedLiteral(base64.StdEncoding.EncodeToString(data), datatype)
}

// formatScientific writes a float as mantissa and exponent with no
// exponent sign padding, keeping at least one fractional digit.
func formatScientific(value float64, bitSize int) string {
	switch {
	case math.IsNaN(value):
		return "NaN"
	case math.IsInf(value, 1):
		return "INF"
	case math.IsInf(value, -1):
		return "-INF"
	case value == 0:
		if math.Signbit(value) {
			return "-0.0E0"
		}
		return "0.0E0"
	}

	text := strconv.FormatFloat(value, 'E', -1, bitSize)
	mantissa, exponent, _ := strings.Cut(text, "E")
	if !strings.Contains(mantissa, ".") {
		mantissa += ".0"
	}

	exp, err := strconv.Atoi(exponent)
	if err != nil {
		return text
	}
	return mantissa + "E" + strconv.Itoa(exp)
}

// NewFileURI creates a file URI from an absolute path and optional hostname.
// Characters that are not valid in a URI path are percent-encoded.
func NewFileURI(path, hostname string) URI {
	var sb strings.Builder
	sb.WriteString("file://")
	sb.WriteString(hostname)

	// Windows paths like C:\foo become /C:/foo
	if len(path) >= 2 && path[1] == ':' && isAlpha(rune(path[0])) {
		sb.WriteByte('/')
	}

	for i := 0; i < len(path); i++ {
		c := path[i]
		switch {
		case c == '\\':
			sb.WriteByte('/')
		case isUnreservedPathByte(c):
			sb.WriteByte(c)
		default:
			fmt.Fprintf(&sb, "%%%02X", c)
		}
	}

	return NewURI(sb.String())
}

func isUnreservedPathByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.IndexByte("-._~/:@!$&'()*+,;=", c) >= 0
}
