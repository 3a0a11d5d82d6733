package rdf

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/go-kit/log/level"
)

// CanonFlags control a canonicalising sink
type CanonFlags uint32

const (
	// CanonLax passes invalid literals through unchanged instead of failing
	CanonLax CanonFlags = 1 << iota
)

// integerBounds are the inclusive bounds of the XSD integer types. An
// empty bound is unlimited.
var integerBounds = map[string][2]string{
	"integer":            {"", ""},
	"long":               {"-9223372036854775808", "9223372036854775807"},
	"int":                {"-2147483648", "2147483647"},
	"short":              {"-32768", "32767"},
	"byte":               {"-128", "127"},
	"nonNegativeInteger": {"0", ""},
	"positiveInteger":    {"1", ""},
	"nonPositiveInteger": {"", "0"},
	"negativeInteger":    {"", "-1"},
	"unsignedLong":       {"0", "18446744073709551615"},
	"unsignedInt":        {"0", "4294967295"},
	"unsignedShort":      {"0", "65535"},
	"unsignedByte":       {"0", "255"},
}

type canon struct {
	world  *World
	target Sink
	flags  CanonFlags
}

// NewCanon returns a sink that rewrites literal objects to their canonical
// form before forwarding them to target. Numbers and booleans get their
// canonical XSD lexical form and language tags are lower-cased. Other
// literals and events are forwarded as they are.
func NewCanon(world *World, target Sink, flags CanonFlags) Sink {
	return &canon{world: world, target: target, flags: flags}
}

func (c *canon) OnEvent(event Event) error {
	if event.Type != EventStatement {
		return c.target.OnEvent(event)
	}

	st := event.Statement
	lit, ok := st.Object().(Literal)
	if !ok {
		return c.target.OnEvent(event)
	}

	out, err := CanonicalLiteral(lit)
	if err != nil {
		cur, _ := st.Cursor()
		level.Warn(c.world.Logger()).Log("msg", "invalid literal", "cursor", cur, "literal", lit, "err", err)
		if c.flags&CanonLax != 0 {
			return c.target.OnEvent(event)
		}
		return newCursorError(ErrBadSyntax, cur, "invalid literal %s (%v)", lit, err)
	}

	st.nodes[FieldObject] = out
	event.Statement = st
	return c.target.OnEvent(event)
}

// CanonicalLiteral returns l in canonical form. Literals of datatypes
// without a known canonical form are returned as they are.
func CanonicalLiteral(l Literal) (Literal, error) {
	if l.Lang != "" {
		l.Lang = strings.ToLower(l.Lang)
		return l, nil
	}

	name, ok := strings.CutPrefix(l.DatatypeIRI, NSXSD)
	if !ok {
		return l, nil
	}

	text := strings.TrimSpace(l.Lexical)
	var err error
	switch name {
	case "boolean":
		text, err = canonicalBoolean(text)
	case "decimal":
		text, err = canonicalDecimal(text)
	case "double":
		text, err = canonicalFloat(text, 64)
	case "float":
		text, err = canonicalFloat(text, 32)
	default:
		bounds, ok := integerBounds[name]
		if !ok {
			return l, nil
		}
		text, err = canonicalInteger(text, bounds)
	}
	if err != nil {
		return l, err
	}

	l.Lexical = text
	return l, nil
}

func canonicalBoolean(text string) (string, error) {
	switch text {
	case "true", "1":
		return "true", nil
	case "false", "0":
		return "false", nil
	}
	return "", fmt.Errorf("expected boolean, found %q: %w", text, ErrBadArg)
}

func canonicalInteger(text string, bounds [2]string) (string, error) {
	if !isDigits(trimSign(text)) {
		return "", fmt.Errorf("expected integer, found %q: %w", text, ErrBadArg)
	}

	var value big.Int
	value.SetString(text, 10)
	for i, bound := range bounds {
		if bound == "" {
			continue
		}

		var limit big.Int
		limit.SetString(bound, 10)
		if c := value.Cmp(&limit); (i == 0 && c < 0) || (i == 1 && c > 0) {
			return "", fmt.Errorf("integer %s: %w", text, ErrOutOfRange)
		}
	}
	return value.String(), nil
}

func canonicalDecimal(text string) (string, error) {
	body := trimSign(text)
	whole, fraction, _ := strings.Cut(body, ".")
	if !isDecimalParts(whole, fraction) {
		return "", fmt.Errorf("expected decimal, found %q: %w", text, ErrBadArg)
	}

	if whole = strings.TrimLeft(whole, "0"); whole == "" {
		whole = "0"
	}
	if fraction = strings.TrimRight(fraction, "0"); fraction == "" {
		fraction = "0"
	}

	sign := ""
	if strings.HasPrefix(text, "-") && (whole != "0" || fraction != "0") {
		sign = "-"
	}
	return sign + whole + "." + fraction, nil
}

func canonicalFloat(text string, bitSize int) (string, error) {
	switch text {
	case "INF", "+INF", "-INF", "NaN":
		value, _ := strconv.ParseFloat(text, bitSize)
		return formatScientific(value, bitSize), nil
	}

	mantissa, exponent := text, ""
	if i := strings.IndexAny(text, "eE"); i >= 0 {
		mantissa, exponent = text[:i], text[i+1:]
		if !isDigits(trimSign(exponent)) {
			return "", fmt.Errorf("expected number, found %q: %w", text, ErrBadArg)
		}
	}

	whole, fraction, _ := strings.Cut(trimSign(mantissa), ".")
	if !isDecimalParts(whole, fraction) {
		return "", fmt.Errorf("expected number, found %q: %w", text, ErrBadArg)
	}

	// Overflow rounds to infinity, which is a valid value
	value, err := strconv.ParseFloat(text, bitSize)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return "", fmt.Errorf("expected number, found %q: %w", text, ErrBadArg)
	}
	return formatScientific(value, bitSize), nil
}

// isDecimalParts returns true if the parts around a decimal point are
// digits, with at least one digit in total
func isDecimalParts(whole, fraction string) bool {
	return whole+fraction != "" &&
		(whole == "" || isDigits(whole)) &&
		(fraction == "" || isDigits(fraction))
}
