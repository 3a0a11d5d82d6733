package store

import (
	"fmt"

	"github.com/aleksaelezovic/tristore/internal/encoding"
	"github.com/aleksaelezovic/tristore/pkg/rdf"
)

// tableOrders maps each table to the statement fields of its keys, most
// significant first
var tableOrders = [TableCount][4]rdf.Field{
	TableSPO:  {rdf.FieldSubject, rdf.FieldPredicate, rdf.FieldObject, rdf.FieldGraph},
	TableSOP:  {rdf.FieldSubject, rdf.FieldObject, rdf.FieldPredicate, rdf.FieldGraph},
	TableOPS:  {rdf.FieldObject, rdf.FieldPredicate, rdf.FieldSubject, rdf.FieldGraph},
	TableOSP:  {rdf.FieldObject, rdf.FieldSubject, rdf.FieldPredicate, rdf.FieldGraph},
	TablePSO:  {rdf.FieldPredicate, rdf.FieldSubject, rdf.FieldObject, rdf.FieldGraph},
	TablePOS:  {rdf.FieldPredicate, rdf.FieldObject, rdf.FieldSubject, rdf.FieldGraph},
	TableGSPO: {rdf.FieldGraph, rdf.FieldSubject, rdf.FieldPredicate, rdf.FieldObject},
	TableGSOP: {rdf.FieldGraph, rdf.FieldSubject, rdf.FieldObject, rdf.FieldPredicate},
	TableGOPS: {rdf.FieldGraph, rdf.FieldObject, rdf.FieldPredicate, rdf.FieldSubject},
	TableGOSP: {rdf.FieldGraph, rdf.FieldObject, rdf.FieldSubject, rdf.FieldPredicate},
	TableGPSO: {rdf.FieldGraph, rdf.FieldPredicate, rdf.FieldSubject, rdf.FieldObject},
	TableGPOS: {rdf.FieldGraph, rdf.FieldPredicate, rdf.FieldObject, rdf.FieldSubject},
}

// keyCodec builds and parses table keys
type keyCodec struct {
	encoder *encoding.NodeEncoder
	decoder *encoding.NodeDecoder
}

func newKeyCodec() keyCodec {
	return keyCodec{
		encoder: encoding.NewNodeEncoder(),
		decoder: encoding.NewNodeDecoder(),
	}
}

// encodeKey encodes a full statement key for table
func (c keyCodec) encodeKey(table Table, quad [4]rdf.Node) ([]byte, error) {
	key := make([]byte, 0, 128)
	for _, field := range tableOrders[table] {
		var err error
		if key, err = c.encoder.AppendNode(key, quad[field]); err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", field, err)
		}
	}
	return key, nil
}

// encodePrefix encodes the leading pinned fields of pattern in the order of
// table and returns the prefix with the number of fields it covers
func (c keyCodec) encodePrefix(table Table, pattern [4]rdf.Node) ([]byte, int, error) {
	var prefix []byte
	n := 0
	for _, field := range tableOrders[table] {
		if pattern[field] == nil {
			break
		}

		var err error
		if prefix, err = c.encoder.AppendNode(prefix, pattern[field]); err != nil {
			return nil, 0, fmt.Errorf("failed to encode %s: %w", field, err)
		}
		n++
	}
	return prefix, n, nil
}

// decodeKey decodes a table key back into statement field order
func (c keyCodec) decodeKey(table Table, key []byte) ([4]rdf.Node, error) {
	var quad [4]rdf.Node

	nodes, err := c.decoder.DecodeKey(key, 4)
	if err != nil {
		return quad, fmt.Errorf("failed to decode %s key: %w", table, err)
	}
	for i, field := range tableOrders[table] {
		quad[field] = nodes[i]
	}
	return quad, nil
}
