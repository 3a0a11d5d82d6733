package rdf

import (
	"encoding/binary"
	"sort"

	"github.com/zeebo/xxh3"
)

// Isomorphic returns true if there is a bijection between the blank nodes
// of a and b that makes both sets of statements identical. Graph names
// take part in the mapping. Duplicate statements are ignored.
func Isomorphic(a, b []Statement) bool {
	expected, actual := quadSet(a), quadSet(b)
	if len(expected) != len(actual) {
		return false
	}

	expectedBlanks := blanksByDegree(expected)
	actualBlanks := blanksByDegree(actual)
	if len(expectedBlanks) != len(actualBlanks) {
		return false
	}

	if len(expectedBlanks) == 0 {
		for quad := range expected {
			if !actual[quad] {
				return false
			}
		}
		return true
	}

	m := &blankMatcher{
		expected:       expected,
		actual:         actual,
		expectedBlanks: expectedBlanks,
		actualBlanks:   actualBlanks,
		expectedSigs:   blankSignatures(expected),
		actualSigs:     blankSignatures(actual),
		mapping:        make(map[Blank]Blank),
		used:           make(map[Blank]bool),
	}
	return m.backtrack(0)
}

func quadSet(statements []Statement) map[[4]Node]bool {
	set := make(map[[4]Node]bool, len(statements))
	for _, st := range statements {
		set[st.Quad()] = true
	}
	return set
}

// blanksByDegree returns the blank nodes of a set, most used first so that
// highly connected nodes are matched early
func blanksByDegree(set map[[4]Node]bool) []Blank {
	degrees := make(map[Blank]int)
	for quad := range set {
		for _, n := range quad {
			if b, ok := n.(Blank); ok {
				degrees[b]++
			}
		}
	}

	blanks := make([]Blank, 0, len(degrees))
	for b := range degrees {
		blanks = append(blanks, b)
	}
	sort.Slice(blanks, func(i, j int) bool {
		if degrees[blanks[i]] != degrees[blanks[j]] {
			return degrees[blanks[i]] > degrees[blanks[j]]
		}
		return blanks[i].ID < blanks[j].ID
	})
	return blanks
}

// blankSignatures hashes the statements around each blank node with the
// node itself and other blank nodes replaced by markers. Nodes that can be
// mapped to each other have equal signatures.
func blankSignatures(set map[[4]Node]bool) map[Blank]uint64 {
	const (
		self  = 1
		other = 2
	)

	sigs := make(map[Blank]uint64)
	var buf [4 * 8]byte
	for quad := range set {
		for _, n := range quad {
			b, ok := n.(Blank)
			if !ok {
				continue
			}

			for i, m := range quad {
				var h uint64
				switch mb, isBlank := m.(Blank); {
				case isBlank && mb == b:
					h = self
				case isBlank:
					h = other
				default:
					h = Hash(m)
				}
				binary.LittleEndian.PutUint64(buf[i*8:], h)
			}
			sigs[b] += xxh3.Hash(buf[:])
		}
	}
	return sigs
}

type blankMatcher struct {
	expected, actual             map[[4]Node]bool
	expectedBlanks, actualBlanks []Blank
	expectedSigs, actualSigs     map[Blank]uint64
	mapping                      map[Blank]Blank
	used                         map[Blank]bool
}

func (m *blankMatcher) backtrack(index int) bool {
	if index == len(m.expectedBlanks) {
		return m.consistent()
	}

	current := m.expectedBlanks[index]
	for _, candidate := range m.actualBlanks {
		if m.used[candidate] || m.expectedSigs[current] != m.actualSigs[candidate] {
			continue
		}

		m.mapping[current] = candidate
		m.used[candidate] = true

		if m.consistent() && m.backtrack(index+1) {
			return true
		}

		delete(m.mapping, current)
		delete(m.used, candidate)
	}
	return false
}

// consistent checks every expected statement whose blank nodes are all
// mapped. Once every blank node is mapped this is the full check, since
// both sets have the same size.
func (m *blankMatcher) consistent() bool {
	for quad := range m.expected {
		mapped, ok := m.apply(quad)
		if ok && !m.actual[mapped] {
			return false
		}
	}
	return true
}

// apply maps the blank nodes of quad, or returns false if one is unmapped
func (m *blankMatcher) apply(quad [4]Node) ([4]Node, bool) {
	for i, n := range quad {
		b, ok := n.(Blank)
		if !ok {
			continue
		}

		target, ok := m.mapping[b]
		if !ok {
			return quad, false
		}
		quad[i] = target
	}
	return quad, true
}
