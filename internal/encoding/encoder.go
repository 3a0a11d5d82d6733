package encoding

import (
	"encoding/binary"
	"fmt"

	"github.com/aleksaelezovic/tristore/pkg/rdf"
)

// TagNone encodes a nil node. Other tags are the rdf.NodeType of the node,
// so encoded keys sort in rdf.Compare order.
const TagNone byte = 0

const (
	escapeByte = 0x00 // introduces an escape or a terminator
	escapedNul = 0xFF // 0x00 0xFF is a literal 0x00 byte
	terminator = 0x01 // 0x00 0x01 ends a field
)

// NodeEncoder encodes nodes into byte strings whose lexicographic order
// matches rdf.Compare. Each node is a tag byte followed by its fields,
// and each field is escaped and terminated so that concatenated nodes
// still compare field by field.
type NodeEncoder struct{}

func NewNodeEncoder() *NodeEncoder {
	return &NodeEncoder{}
}

// AppendNode appends the encoding of n to dst. A nil node is encoded as
// the single byte TagNone.
func (e *NodeEncoder) AppendNode(dst []byte, n rdf.Node) ([]byte, error) {
	switch t := n.(type) {
	case nil:
		return append(dst, TagNone), nil
	case rdf.Literal:
		dst = append(dst, byte(rdf.NodeTypeLiteral))
		dst = appendField(dst, t.Lexical)
		dst = appendField(dst, t.DatatypeIRI)
		return appendField(dst, t.Lang), nil
	case rdf.URI:
		return appendField(append(dst, byte(rdf.NodeTypeURI)), t.IRI), nil
	case rdf.CURIE:
		return appendField(append(dst, byte(rdf.NodeTypeCURIE)), t.Text), nil
	case rdf.Blank:
		return appendField(append(dst, byte(rdf.NodeTypeBlank)), t.ID), nil
	case rdf.Variable:
		return appendField(append(dst, byte(rdf.NodeTypeVariable)), t.Name), nil
	default:
		return dst, fmt.Errorf("unknown node type: %T", n)
	}
}

// EncodeKey concatenates the encodings of nodes into a single key
func (e *NodeEncoder) EncodeKey(nodes ...rdf.Node) ([]byte, error) {
	key := make([]byte, 0, 64*len(nodes))
	for _, n := range nodes {
		var err error
		if key, err = e.AppendNode(key, n); err != nil {
			return nil, err
		}
	}
	return key, nil
}

// EncodeCursor encodes a cursor as a value. The encoding is not ordered.
func (e *NodeEncoder) EncodeCursor(cur rdf.Cursor) []byte {
	buf := make([]byte, 0, 2*binary.MaxVarintLen64+len(cur.Name))
	buf = binary.AppendUvarint(buf, uint64(cur.Line))
	buf = binary.AppendUvarint(buf, uint64(cur.Column))
	return append(buf, cur.Name...)
}

func appendField(dst []byte, s string) []byte {
	for i := 0; i < len(s); i++ {
		if s[i] == escapeByte {
			dst = append(dst, escapeByte, escapedNul)
		} else {
			dst = append(dst, s[i])
		}
	}
	return append(dst, escapeByte, terminator)
}

// PrefixEnd returns the smallest key greater than every key starting with
// prefix, or nil if there is none
func PrefixEnd(prefix []byte) []byte {
	for i := len(prefix) - 1; i >= 0; i-- {
		if prefix[i] < 0xFF {
			end := make([]byte, i+1)
			copy(end, prefix)
			end[i]++
			return end
		}
	}
	return nil
}
