package encoding

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/aleksaelezovic/tristore/pkg/rdf"
)

var ErrCorrupt = errors.New("corrupt encoded data")

// NodeDecoder decodes nodes encoded by a NodeEncoder
type NodeDecoder struct{}

// NewNodeDecoder creates a new node decoder
func NewNodeDecoder() *NodeDecoder {
	return &NodeDecoder{}
}

// DecodeNode decodes the node at the start of src and returns it with the
// remaining bytes
func (d *NodeDecoder) DecodeNode(src []byte) (rdf.Node, []byte, error) {
	if len(src) == 0 {
		return nil, nil, fmt.Errorf("missing node tag: %w", ErrCorrupt)
	}

	tag, rest := src[0], src[1:]
	if tag == TagNone {
		return nil, rest, nil
	}

	value, rest, err := readField(rest)
	if err != nil {
		return nil, nil, err
	}

	switch rdf.NodeType(tag) {
	case rdf.NodeTypeLiteral:
		datatype, rest, err := readField(rest)
		if err != nil {
			return nil, nil, err
		}
		lang, rest, err := readField(rest)
		if err != nil {
			return nil, nil, err
		}
		return rdf.Literal{Lexical: value, DatatypeIRI: datatype, Lang: lang}, rest, nil
	case rdf.NodeTypeURI:
		return rdf.NewURI(value), rest, nil
	case rdf.NodeTypeCURIE:
		return rdf.CURIE{Text: value}, rest, nil
	case rdf.NodeTypeBlank:
		return rdf.NewBlank(value), rest, nil
	case rdf.NodeTypeVariable:
		return rdf.NewVariable(value), rest, nil
	default:
		return nil, nil, fmt.Errorf("unknown node tag %d: %w", tag, ErrCorrupt)
	}
}

// DecodeKey decodes a key of exactly n nodes
func (d *NodeDecoder) DecodeKey(key []byte, n int) ([]rdf.Node, error) {
	nodes := make([]rdf.Node, n)
	rest := key
	for i := range nodes {
		var err error
		if nodes[i], rest, err = d.DecodeNode(rest); err != nil {
			return nil, err
		}
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%d trailing bytes in key: %w", len(rest), ErrCorrupt)
	}
	return nodes, nil
}

// DecodeCursor decodes a cursor encoded by NodeEncoder.EncodeCursor
func (d *NodeDecoder) DecodeCursor(value []byte) (rdf.Cursor, error) {
	line, n := binary.Uvarint(value)
	if n <= 0 {
		return rdf.Cursor{}, fmt.Errorf("invalid cursor line: %w", ErrCorrupt)
	}
	value = value[n:]

	col, n := binary.Uvarint(value)
	if n <= 0 {
		return rdf.Cursor{}, fmt.Errorf("invalid cursor column: %w", ErrCorrupt)
	}

	return rdf.NewCursor(string(value[n:]), uint(line), uint(col)), nil
}

func readField(src []byte) (string, []byte, error) {
	var sb strings.Builder
	for i := 0; i < len(src); i++ {
		if src[i] != escapeByte {
			sb.WriteByte(src[i])
			continue
		}
		if i+1 == len(src) {
			break
		}
		switch src[i+1] {
		case terminator:
			return sb.String(), src[i+2:], nil
		case escapedNul:
			sb.WriteByte(escapeByte)
			i++
		default:
			return "", nil, fmt.Errorf("invalid escape 0x%02X: %w", src[i+1], ErrCorrupt)
		}
	}
	return "", nil, fmt.Errorf("unterminated field: %w", ErrCorrupt)
}
