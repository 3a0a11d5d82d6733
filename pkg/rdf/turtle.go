package rdf

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// readStatement reads one top-level production in the reader's syntax
func (r *Reader) readStatement() error {
	switch r.syntax {
	case Turtle, TriG:
		return r.readTurtleStatement()
	case NTriples, NQuads:
		return r.readNTriplesStatement()
	default:
		return Failure
	}
}

// skipWhitespaceAndComments skips whitespace and comments
func (r *Reader) skipWhitespaceAndComments() {
	for {
		switch r.src.peek() {
		case ' ', '\t', '\n', '\r':
			r.src.advance(1)
		case '#':
			for c := r.src.peek(); c >= 0 && c != '\n'; c = r.src.peek() {
				r.src.advance(1)
			}
		default:
			return
		}
	}
}

// eat consumes an expected byte
func (r *Reader) eat(b byte) error {
	if c := r.src.peek(); c != int(b) {
		if c < 0 {
			return newCursorError(ErrNoData, r.src.cur, "expected '%c', found end of input", b)
		}
		return r.syntaxError("expected '%c', found '%c'", b, c)
	}
	r.src.advance(1)
	return nil
}

// matchExactKeyword consumes a case-sensitive keyword not followed by a name character
func (r *Reader) matchExactKeyword(keyword string) bool {
	if !r.src.hasPrefix(keyword) || isNameByte(r.src.peekAt(len(keyword))) {
		return false
	}
	r.src.advance(len(keyword))
	return true
}

// readTurtleStatement reads a directive, a triple block, or in TriG a graph block
func (r *Reader) readTurtleStatement() error {
	r.skipWhitespaceAndComments()

	var flags StatementFlags
	ctx := readContext{flags: &flags}

	switch c := r.src.peek(); {
	case c < 0:
		return Failure
	case c == 0:
		r.src.advance(1)
		return Failure
	case c == '@':
		return r.parseDirective()
	case c == '{' && r.syntax == TriG:
		return r.parseWrappedGraph(ctx)
	case isAlpha(rune(c)):
		return r.parseBareWordStatement(ctx)
	}

	return r.parseTripleBlock(ctx)
}

// parseDirective parses @prefix or @base
func (r *Reader) parseDirective() error {
	r.src.advance(1) // '@'

	switch {
	case r.matchExactKeyword("prefix"):
		return r.parsePrefix(false)
	case r.matchExactKeyword("base"):
		return r.parseBase(false)
	}
	return r.syntaxError("expected \"base\" or \"prefix\"")
}

// parseBareWordStatement handles a statement starting with a letter: a
// SPARQL-style directive, a TriG GRAPH block, or a prefixed name subject.
func (r *Reader) parseBareWordStatement(ctx readContext) error {
	word := r.readPNPrefix()
	if r.src.peek() == ':' {
		r.src.advance(1)
		subject, err := r.parsePrefixedNameAfter(word)
		if err != nil {
			return err
		}
		return r.parseTriplesOrGraph(ctx, subject, 0)
	}

	switch strings.ToLower(word) {
	case "prefix":
		return r.parsePrefix(true)
	case "base":
		return r.parseBase(true)
	case "graph":
		if r.syntax == TriG {
			r.skipWhitespaceAndComments()
			graph, err := r.parseGraphName(ctx)
			if err != nil {
				return err
			}
			r.skipWhitespaceAndComments()
			ctx.graph = graph
			return r.parseWrappedGraph(ctx)
		}
	}

	return r.syntaxError("expected directive or subject, found %q", word)
}

// parsePrefix parses the rest of a prefix directive
func (r *Reader) parsePrefix(sparql bool) error {
	r.skipWhitespaceAndComments()

	name := r.readPNPrefix()
	if err := r.eat(':'); err != nil {
		return err
	}
	r.skipWhitespaceAndComments()

	iri, err := r.parseIRI()
	if err != nil {
		return err
	}
	if err := r.setPrefix(name, iri); err != nil {
		return err
	}

	if sparql {
		return nil
	}
	r.skipWhitespaceAndComments()
	return r.eat('.')
}

// parseBase parses the rest of a base directive
func (r *Reader) parseBase(sparql bool) error {
	r.skipWhitespaceAndComments()

	iri, err := r.parseIRI()
	if err != nil {
		return err
	}
	if err := r.setBase(iri); err != nil {
		return err
	}

	r.skipWhitespaceAndComments()
	if !sparql {
		return r.eat('.')
	}
	if r.src.peek() == '.' {
		return r.syntaxError("full stop after SPARQL BASE")
	}
	return nil
}

// parseGraphName parses the label of a TriG graph
func (r *Reader) parseGraphName(ctx readContext) (Node, error) {
	switch c := r.src.peek(); {
	case c == '<':
		return r.parseIRINode()
	case c == '_':
		return r.parseBlankNode()
	case c == '[':
		r.src.advance(1)
		r.skipWhitespaceAndComments()
		if err := r.eat(']'); err != nil {
			return nil, err
		}
		*ctx.flags |= EmptyG
		return r.freshBlank(), nil
	case c == ':' || isAlpha(rune(c)):
		return r.parsePrefixedName()
	}
	return nil, r.syntaxError("expected graph name")
}

// parseWrappedGraph parses a TriG block of statements in braces
func (r *Reader) parseWrappedGraph(ctx readContext) error {
	if err := r.eat('{'); err != nil {
		return err
	}

	for {
		r.skipWhitespaceAndComments()
		switch c := r.src.peek(); {
		case c < 0:
			return newCursorError(ErrNoData, r.src.cur, "unexpected end of input in graph")
		case c == '}':
			r.src.advance(1)
			return nil
		}

		subject, sType, err := r.parseSubject(ctx)
		if err != nil {
			return err
		}

		end, err := r.parseTriples(ctx, subject, sType, true)
		if err != nil {
			return err
		}
		if end {
			r.src.advance(1)
			return nil
		}
	}
}

// parseTripleBlock parses a subject and its predicate object list.
// In TriG the subject may turn out to be the name of a graph.
func (r *Reader) parseTripleBlock(ctx readContext) error {
	subject, sType, err := r.parseSubject(ctx)
	if err != nil {
		return err
	}
	return r.parseTriplesOrGraph(ctx, subject, sType)
}

func (r *Reader) parseTriplesOrGraph(ctx readContext, subject Node, sType int) error {
	r.skipWhitespaceAndComments()
	if r.syntax == TriG && r.src.peek() == '{' {
		if sType == '(' || (sType == '[' && *ctx.flags&EmptyS == 0) {
			return r.syntaxError("invalid graph name")
		}
		if sType == '[' {
			*ctx.flags = *ctx.flags&^EmptyS | EmptyG
		}
		ctx.graph = subject
		return r.parseWrappedGraph(ctx)
	}

	_, err := r.parseTriples(ctx, subject, sType, false)
	return err
}

// parseTriples parses the predicate object list of a subject and the
// terminating '.'. Inside a TriG graph the '.' may be omitted before the
// closing brace, in which case end is true and the brace is not consumed.
func (r *Reader) parseTriples(ctx readContext, subject Node, sType int, inGraph bool) (end bool, err error) {
	ctx.subject = subject
	r.skipWhitespaceAndComments()

	switch c := r.src.peek(); {
	case c == '.' && sType == '[':
		r.src.advance(1)
		return false, nil
	case c == '}' && inGraph && sType == '[':
		return true, nil
	}

	if err := r.parsePredicateObjectList(ctx); err != nil {
		return false, err
	}

	r.skipWhitespaceAndComments()
	if inGraph && r.src.peek() == '}' {
		return true, nil
	}
	return false, r.eat('.')
}

// parseSubject parses a subject, returning the byte it started with
func (r *Reader) parseSubject(ctx readContext) (Node, int, error) {
	sType := r.src.peek()

	var node Node
	var err error
	switch sType {
	case '[':
		node, err = r.parseAnon(ctx, true)
	case '(':
		node, err = r.parseCollection(ctx, true)
	case '_':
		node, err = r.parseBlankNode()
	case '<':
		node, err = r.parseIRINode()
	case '?', '$':
		node, err = r.parseVariable()
	case '"', '\'':
		err = r.syntaxError("literals cannot be used as subjects")
	default:
		node, err = r.parsePrefixedName()
	}
	return node, sType, err
}

// parsePredicateObjectList parses predicates and objects separated by ';' and ','
func (r *Reader) parsePredicateObjectList(ctx readContext) error {
	for {
		r.skipWhitespaceAndComments()

		predicate, err := r.parseVerb()
		if err != nil {
			return err
		}
		ctx.predicate = predicate

		if err := r.parseObjectList(ctx); err != nil {
			return err
		}

		ateSemi := false
		for {
			r.skipWhitespaceAndComments()
			c := r.src.peek()
			if c < 0 || c == '.' || c == ']' || c == '}' {
				return nil
			}
			if c != ';' {
				break
			}
			r.src.advance(1)
			ateSemi = true
		}

		if !ateSemi {
			return r.syntaxError("missing ';' or '.'")
		}
	}
}

func (r *Reader) parseObjectList(ctx readContext) error {
	if err := r.parseObject(ctx); err != nil {
		return err
	}

	for {
		r.skipWhitespaceAndComments()
		if r.src.peek() != ',' {
			return nil
		}
		r.src.advance(1)
		if err := r.parseObject(ctx); err != nil {
			return err
		}
	}
}

// parseVerb parses a predicate, which may be the keyword 'a'
func (r *Reader) parseVerb() (Node, error) {
	switch c := r.src.peek(); {
	case c == '<':
		return r.parseIRINode()
	case c == '?' || c == '$':
		return r.parseVariable()
	case c == ':' || isAlpha(rune(c)) || c >= 0x80:
		word := r.readPNPrefix()
		if r.src.peek() == ':' {
			r.src.advance(1)
			return r.parsePrefixedNameAfter(word)
		}
		if word == "a" {
			return RDFType, nil
		}
		return nil, r.syntaxError("expected verb, found %q", word)
	case c < 0:
		return nil, newCursorError(ErrNoData, r.src.cur, "expected verb, found end of input")
	}
	return nil, r.syntaxError("expected verb")
}

// parseObject parses an object and emits the statement it completes.
// Anonymous nodes and collections emit their own statements.
func (r *Reader) parseObject(ctx readContext) error {
	r.skipWhitespaceAndComments()
	cur := r.src.cur

	var node Node
	var err error
	switch c := r.src.peek(); {
	case c < 0:
		return newCursorError(ErrNoData, cur, "expected object, found end of input")
	case c == ')':
		return r.syntaxError("expected object")
	case c == '[':
		_, err = r.parseAnon(ctx, false)
		return err
	case c == '(':
		_, err = r.parseCollection(ctx, false)
		return err
	case c == '_':
		node, err = r.parseBlankNode()
	case c == '<':
		node, err = r.parseIRINode()
	case c == '?' || c == '$':
		node, err = r.parseVariable()
	case c == '"' || c == '\'':
		node, err = r.parseLiteral()
	case c == '+' || c == '-' || c == '.' || isDigit(rune(c)):
		node, err = r.parseNumber()
	default:
		node, err = r.parseNamedObject()
	}
	if err != nil {
		return err
	}

	return r.emitStatement(ctx, node, cur)
}

// parseNamedObject parses a boolean literal or a prefixed name
func (r *Reader) parseNamedObject() (Node, error) {
	word := r.readPNPrefix()
	if r.src.peek() == ':' {
		r.src.advance(1)
		return r.parsePrefixedNameAfter(word)
	}

	switch word {
	case "true", "false":
		return NewTypedLiteral(word, XSDBoolean), nil
	case "":
		return nil, r.syntaxError("expected object")
	}
	return nil, r.syntaxError("expected prefixed name or boolean, found %q", word)
}

// parseAnon parses a blank node property list or [].
// As an object, the statement linking it is emitted first.
func (r *Reader) parseAnon(ctx readContext, subject bool) (Node, error) {
	oldFlags := *ctx.flags
	cur := r.src.cur

	r.src.advance(1) // '['
	if err := r.push(); err != nil {
		return nil, err
	}
	defer r.pop()

	r.skipWhitespaceAndComments()
	empty := r.src.peek() == ']'
	switch {
	case subject && empty:
		*ctx.flags |= EmptyS
	case subject:
		*ctx.flags |= AnonS
	case empty:
		*ctx.flags |= EmptyO
	default:
		*ctx.flags |= AnonO
	}

	node := r.freshBlank()
	if !subject {
		if err := r.emitStatement(ctx, node, cur); err != nil {
			return nil, err
		}
	}

	if !empty {
		ctx.subject = node
		if err := r.parsePredicateObjectList(ctx); err != nil {
			return nil, err
		}

		r.skipWhitespaceAndComments()
		if r.src.peek() == '.' {
			return nil, r.syntaxError("'.' inside blank")
		}

		*ctx.flags = oldFlags
		if err := r.emitEnd(node); err != nil {
			return nil, err
		}
	}

	return node, r.eat(']')
}

// parseCollection parses a list like (a b c) into rdf:first and rdf:rest statements
func (r *Reader) parseCollection(ctx readContext, subject bool) (Node, error) {
	cur := r.src.cur
	r.src.advance(1) // '('
	r.skipWhitespaceAndComments()

	end := r.src.peek() == ')'
	var head Node = RDFNil
	if !end {
		head = r.freshBlank()
	}

	if !subject {
		if !end {
			*ctx.flags |= ListO
		}
		if err := r.emitStatement(ctx, head, cur); err != nil {
			return nil, err
		}
		*ctx.flags &^= ListO
	} else if !end {
		*ctx.flags |= ListS
	}

	if end {
		r.src.advance(1)
		return head, nil
	}

	if err := r.push(); err != nil {
		return nil, err
	}
	defer r.pop()

	ctx.subject = head
	for r.src.peek() != ')' {
		ctx.predicate = RDFFirst
		if err := r.parseObject(ctx); err != nil {
			return nil, err
		}

		r.skipWhitespaceAndComments()
		end = r.src.peek() == ')'

		var rest Node = RDFNil
		if !end {
			rest = r.freshBlank()
		}

		ctx.predicate = RDFRest
		if err := r.emitStatement(ctx, rest, r.src.cur); err != nil {
			return nil, err
		}
		ctx.subject = rest
	}

	r.src.advance(1) // ')'
	return head, nil
}

// parseIRI parses an IRI in angle brackets and returns its unresolved text
func (r *Reader) parseIRI() (string, error) {
	if err := r.eat('<'); err != nil {
		return "", err
	}

	var result strings.Builder
	for {
		c := r.src.peek()
		switch {
		case c < 0:
			return "", newCursorError(ErrNoData, r.src.cur, "unclosed IRI")
		case c == '>':
			r.src.advance(1)
			return result.String(), nil
		case c == '\\':
			if next := r.src.peekAt(1); next != 'u' && next != 'U' {
				return "", r.syntaxError("invalid escape sequence in IRI")
			}
			escaped, err := r.processUnicodeEscape()
			if err != nil {
				return "", err
			}
			result.WriteString(escaped)
		case c == ' ' || c == '<' || c == '"' || c <= 0x1F:
			return "", r.syntaxError("invalid character %q in IRI", rune(c))
		case c < 0x80:
			result.WriteByte(byte(c))
			r.src.advance(1)
		default:
			if err := r.readUTF8(&result); err != nil {
				return "", err
			}
		}
	}
}

func (r *Reader) parseIRINode() (Node, error) {
	iri, err := r.parseIRI()
	if err != nil {
		return nil, err
	}
	return r.resolveIRI(iri)
}

// readUTF8 copies one multi-byte character, checking that it is valid
func (r *Reader) readUTF8(out *strings.Builder) error {
	ch, size := r.src.peekRune()
	if ch == utf8.RuneError && size <= 1 {
		if r.flags&ReadLax == 0 {
			return newCursorError(ErrBadText, r.src.cur, "invalid UTF-8 byte 0x%02X", r.src.peek())
		}
		out.WriteRune(utf8.RuneError)
		r.src.advance(1)
		return nil
	}
	out.WriteRune(ch)
	r.src.advance(size)
	return nil
}

// processUnicodeEscape reads \uXXXX or \UXXXXXXXX
func (r *Reader) processUnicodeEscape() (string, error) {
	r.src.advance(1) // '\'

	var digits int
	switch r.src.peek() {
	case 'u':
		digits = 4
	case 'U':
		digits = 8
	default:
		return "", r.syntaxError("invalid escape sequence")
	}
	r.src.advance(1)

	var hex strings.Builder
	for i := 0; i < digits; i++ {
		c := r.src.peek()
		if c < 0 || !isHexDigit(byte(c)) {
			return "", r.syntaxError("invalid hex digit in Unicode escape")
		}
		hex.WriteByte(byte(c))
		r.src.advance(1)
	}

	code, err := strconv.ParseUint(hex.String(), 16, 32)
	if err != nil || code > utf8.MaxRune || (code >= 0xD800 && code <= 0xDFFF) {
		return "", newCursorError(ErrBadText, r.src.cur, "invalid code point U+%s", hex.String())
	}
	return string(rune(code)), nil
}

// readPNPrefix reads a prefix name, which may be empty
func (r *Reader) readPNPrefix() string {
	var sb strings.Builder

	ch, size := r.src.peekRune()
	if size == 0 || !isPN_CHARS_BASE(ch) {
		return ""
	}
	sb.WriteRune(ch)
	r.src.advance(size)

	for {
		ch, size = r.src.peekRune()
		switch {
		case size == 0:
			return sb.String()
		case ch == '.':
			if !r.dotContinuesName() {
				return sb.String()
			}
		case !isPN_CHARS(ch):
			return sb.String()
		}
		sb.WriteRune(ch)
		r.src.advance(size)
	}
}

// dotContinuesName returns true if the '.' at the read position is inside a
// name rather than ending a statement
func (r *Reader) dotContinuesName() bool {
	i := 1
	for r.src.peekAt(i) == '.' {
		i++
	}
	next := r.src.peekAt(i)
	return next >= 0x80 || isNameByte(next) || next == ':' || next == '%' || next == '\\'
}

func (r *Reader) parsePrefixedName() (Node, error) {
	prefix := r.readPNPrefix()
	if err := r.eat(':'); err != nil {
		return nil, err
	}
	return r.parsePrefixedNameAfter(prefix)
}

// parsePrefixedNameAfter reads the local part of a prefixed name whose
// prefix and ':' have been consumed
func (r *Reader) parsePrefixedNameAfter(prefix string) (Node, error) {
	var local strings.Builder

	first := true
	for {
		c := r.src.peek()
		if c < 0 {
			break
		}

		if c == '%' {
			h1, h2 := r.src.peekAt(1), r.src.peekAt(2)
			if h1 < 0 || h2 < 0 || !isHexDigit(byte(h1)) || !isHexDigit(byte(h2)) {
				return nil, r.syntaxError("invalid percent escape in prefixed name")
			}
			local.WriteByte('%')
			local.WriteByte(byte(h1))
			local.WriteByte(byte(h2))
			r.src.advance(3)
			first = false
			continue
		}

		if c == '\\' {
			next := r.src.peekAt(1)
			if next < 0 || !strings.ContainsRune("_~.-!$&'()*+,;=/?#@%", rune(next)) {
				return nil, r.syntaxError("invalid escape sequence in prefixed name")
			}
			local.WriteByte(byte(next))
			r.src.advance(2)
			first = false
			continue
		}

		ch, size := r.src.peekRune()
		switch {
		case ch == ':':
		case ch == '.':
			if first || !r.dotContinuesName() {
				return r.expandCURIE(prefix, local.String())
			}
		case first && !(isPN_CHARS_U(ch) || isDigit(ch)):
			return r.expandCURIE(prefix, local.String())
		case !isPN_CHARS(ch):
			return r.expandCURIE(prefix, local.String())
		}

		local.WriteRune(ch)
		r.src.advance(size)
		first = false
	}

	return r.expandCURIE(prefix, local.String())
}

// parseBlankNode parses a labelled blank node like _:b0
func (r *Reader) parseBlankNode() (Node, error) {
	if !r.src.hasPrefix("_:") {
		return nil, r.syntaxError("expected '_:' at start of blank node")
	}
	r.src.advance(2)

	ch, size := r.src.peekRune()
	if size == 0 || !(isPN_CHARS_U(ch) || isDigit(ch)) {
		return nil, r.syntaxError("invalid blank node label")
	}

	var label strings.Builder
	label.WriteRune(ch)
	r.src.advance(size)

	for {
		ch, size = r.src.peekRune()
		if size == 0 {
			break
		}
		if ch == '.' {
			if !r.dotContinuesName() {
				break
			}
		} else if !isPN_CHARS(ch) {
			break
		}
		label.WriteRune(ch)
		r.src.advance(size)
	}

	return r.labelledBlank(label.String())
}

// parseVariable parses ?name or $name
func (r *Reader) parseVariable() (Node, error) {
	if r.flags&ReadVariables == 0 {
		return nil, r.syntaxError("syntax does not support variables")
	}
	r.src.advance(1) // '?' or '$'

	var name strings.Builder
	for {
		ch, size := r.src.peekRune()
		if size == 0 || !(isPN_CHARS_U(ch) || isDigit(ch) || ch == 0x00B7 ||
			(ch >= 0x0300 && ch <= 0x036F) || (ch >= 0x203F && ch <= 0x2040)) {
			break
		}
		name.WriteRune(ch)
		r.src.advance(size)
	}

	if name.Len() == 0 {
		return nil, r.syntaxError("invalid variable name")
	}
	return NewVariable(name.String()), nil
}

// parseLiteral parses a quoted string with an optional language tag or datatype
func (r *Reader) parseLiteral() (Node, error) {
	quote := byte(r.src.peek())
	long := r.src.hasPrefix(strings.Repeat(string(quote), 3))

	if quote == '\'' && (r.syntax == NTriples || r.syntax == NQuads) {
		return nil, r.syntaxError("single-quoted literals not allowed in N-Triples")
	}

	var value string
	var err error
	if long {
		if r.syntax == NTriples || r.syntax == NQuads {
			return nil, r.syntaxError("triple-quoted literals not allowed in N-Triples")
		}
		value, err = r.parseLongString(quote)
	} else {
		value, err = r.parseShortString(quote)
	}
	if err != nil {
		return nil, err
	}

	switch {
	case r.src.peek() == '@':
		r.src.advance(1)
		lang, err := r.parseLangTag()
		if err != nil {
			return nil, err
		}
		return NewPlainLiteral(value, lang), nil

	case r.src.hasPrefix("^^"):
		r.src.advance(2)
		datatype, err := r.parseDatatype()
		if err != nil {
			return nil, err
		}
		return Literal{Lexical: value, DatatypeIRI: datatype.Value()}, nil
	}

	return NewString(value), nil
}

func (r *Reader) parseDatatype() (Node, error) {
	switch c := r.src.peek(); {
	case c == '<':
		return r.parseIRINode()
	case r.syntax == NTriples || r.syntax == NQuads:
		return nil, r.syntaxError("expected datatype IRI")
	}
	return r.parsePrefixedName()
}

// parseLangTag parses [a-zA-Z]+ ('-' [a-zA-Z0-9]+)*
func (r *Reader) parseLangTag() (string, error) {
	var tag strings.Builder
	for c := r.src.peek(); c >= 0 && isAlpha(rune(c)); c = r.src.peek() {
		tag.WriteByte(byte(c))
		r.src.advance(1)
	}
	if tag.Len() == 0 {
		return "", r.syntaxError("invalid language tag")
	}

	for r.src.peek() == '-' {
		tag.WriteByte('-')
		r.src.advance(1)

		n := 0
		for c := r.src.peek(); c >= 0 && (isAlpha(rune(c)) || isDigit(rune(c))); c = r.src.peek() {
			tag.WriteByte(byte(c))
			r.src.advance(1)
			n++
		}
		if n == 0 {
			return "", r.syntaxError("invalid language tag subtag")
		}
	}
	return tag.String(), nil
}

// parseShortString parses a string delimited by single quote characters
func (r *Reader) parseShortString(quote byte) (string, error) {
	r.src.advance(1)

	var value strings.Builder
	for {
		c := r.src.peek()
		switch {
		case c < 0:
			return "", newCursorError(ErrNoData, r.src.cur, "unclosed string literal")
		case c == int(quote):
			r.src.advance(1)
			return value.String(), nil
		case c == '\n' || c == '\r':
			return "", r.syntaxError("line end in short string")
		case c == '\\':
			if err := r.parseStringEscape(&value); err != nil {
				return "", err
			}
		case c < 0x80:
			value.WriteByte(byte(c))
			r.src.advance(1)
		default:
			if err := r.readUTF8(&value); err != nil {
				return "", err
			}
		}
	}
}

// parseLongString parses a string delimited by three quote characters
func (r *Reader) parseLongString(quote byte) (string, error) {
	delimiter := strings.Repeat(string(quote), 3)
	r.src.advance(3)

	var value strings.Builder
	for {
		c := r.src.peek()
		switch {
		case c < 0:
			return "", newCursorError(ErrNoData, r.src.cur, "unclosed long string literal")
		case r.src.hasPrefix(delimiter):
			r.src.advance(3)
			return value.String(), nil
		case c == '\\':
			if err := r.parseStringEscape(&value); err != nil {
				return "", err
			}
		case c < 0x80:
			value.WriteByte(byte(c))
			r.src.advance(1)
		default:
			if err := r.readUTF8(&value); err != nil {
				return "", err
			}
		}
	}
}

// parseStringEscape reads an escape sequence inside a string
func (r *Reader) parseStringEscape(value *strings.Builder) error {
	next := r.src.peekAt(1)
	if next == 'u' || next == 'U' {
		escaped, err := r.processUnicodeEscape()
		if err != nil {
			return err
		}
		value.WriteString(escaped)
		return nil
	}

	switch next {
	case 'n':
		value.WriteByte('\n')
	case 't':
		value.WriteByte('\t')
	case 'r':
		value.WriteByte('\r')
	case 'b':
		value.WriteByte('\b')
	case 'f':
		value.WriteByte('\f')
	case '"', '\'', '\\':
		value.WriteByte(byte(next))
	default:
		return r.syntaxError("invalid escape sequence \\%c", rune(next))
	}
	r.src.advance(2)
	return nil
}

// parseNumber parses an integer, decimal or double literal, keeping its lexical form
func (r *Reader) parseNumber() (Node, error) {
	var num strings.Builder
	readDigits := func() int {
		n := 0
		for c := r.src.peek(); c >= 0 && isDigit(rune(c)); c = r.src.peek() {
			num.WriteByte(byte(c))
			r.src.advance(1)
			n++
		}
		return n
	}

	if c := r.src.peek(); c == '+' || c == '-' {
		num.WriteByte(byte(c))
		r.src.advance(1)
	}

	intDigits := readDigits()
	isDecimal := false
	if r.src.peek() == '.' {
		next := r.src.peekAt(1)
		switch {
		case next >= 0 && isDigit(rune(next)):
			isDecimal = true
			num.WriteByte('.')
			r.src.advance(1)
			readDigits()
		case (next == 'e' || next == 'E') && intDigits > 0:
			isDecimal = true
			num.WriteByte('.')
			r.src.advance(1)
		}
	}

	if intDigits == 0 && !isDecimal {
		return nil, r.syntaxError("expected digits in number")
	}

	if c := r.src.peek(); c == 'e' || c == 'E' {
		num.WriteByte(byte(c))
		r.src.advance(1)
		if c := r.src.peek(); c == '+' || c == '-' {
			num.WriteByte(byte(c))
			r.src.advance(1)
		}
		if readDigits() == 0 {
			return nil, r.syntaxError("expected digits in exponent")
		}
		return NewTypedLiteral(num.String(), XSDDouble), nil
	}

	if isDecimal {
		return NewTypedLiteral(num.String(), XSDDecimal), nil
	}
	return NewTypedLiteral(num.String(), XSDInteger), nil
}

// readNTriplesStatement reads one line-based statement, with a graph in N-Quads
func (r *Reader) readNTriplesStatement() error {
	r.skipWhitespaceAndComments()
	if r.src.atEnd() {
		return Failure
	}

	var flags StatementFlags
	ctx := readContext{flags: &flags}

	var err error
	switch r.src.peek() {
	case '<':
		ctx.subject, err = r.parseIRINode()
	case '_':
		ctx.subject, err = r.parseBlankNode()
	case '?', '$':
		ctx.subject, err = r.parseVariable()
	default:
		err = r.syntaxError("expected subject")
	}
	if err != nil {
		return err
	}

	r.skipWhitespaceAndComments()
	switch r.src.peek() {
	case '<':
		ctx.predicate, err = r.parseIRINode()
	case '?', '$':
		ctx.predicate, err = r.parseVariable()
	default:
		err = r.syntaxError("expected predicate")
	}
	if err != nil {
		return err
	}

	r.skipWhitespaceAndComments()
	cur := r.src.cur
	var object Node
	switch r.src.peek() {
	case '<':
		object, err = r.parseIRINode()
	case '_':
		object, err = r.parseBlankNode()
	case '"':
		object, err = r.parseLiteral()
	case '?', '$':
		object, err = r.parseVariable()
	default:
		err = r.syntaxError("expected object")
	}
	if err != nil {
		return err
	}

	r.skipWhitespaceAndComments()
	if r.syntax == NQuads {
		switch r.src.peek() {
		case '<':
			ctx.graph, err = r.parseIRINode()
		case '_':
			ctx.graph, err = r.parseBlankNode()
		}
		if err != nil {
			return err
		}
		r.skipWhitespaceAndComments()
	}

	if err := r.eat('.'); err != nil {
		return err
	}
	return r.emitStatement(ctx, object, cur)
}

func isAlpha(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

// isNameByte returns true for ASCII bytes that can continue a name
func isNameByte(c int) bool {
	return c >= 0 && c < 0x80 && (isAlpha(rune(c)) || isDigit(rune(c)) || c == '_' || c == '-')
}

// isPN_CHARS_BASE checks if a rune is a PN_CHARS_BASE character
func isPN_CHARS_BASE(r rune) bool {
	return (r >= 'A' && r <= 'Z') ||
		(r >= 'a' && r <= 'z') ||
		(r >= 0x00C0 && r <= 0x00D6) ||
		(r >= 0x00D8 && r <= 0x00F6) ||
		(r >= 0x00F8 && r <= 0x02FF) ||
		(r >= 0x0370 && r <= 0x037D) ||
		(r >= 0x037F && r <= 0x1FFF) ||
		(r >= 0x200C && r <= 0x200D) ||
		(r >= 0x2070 && r <= 0x218F) ||
		(r >= 0x2C00 && r <= 0x2FEF) ||
		(r >= 0x3001 && r <= 0xD7FF) ||
		(r >= 0xF900 && r <= 0xFDCF) ||
		(r >= 0xFDF0 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0xEFFFF)
}

// isPN_CHARS_U checks if a rune is a PN_CHARS_BASE character or '_'
func isPN_CHARS_U(r rune) bool {
	return isPN_CHARS_BASE(r) || r == '_'
}

// isPN_CHARS checks if a rune can continue a prefixed name
func isPN_CHARS(r rune) bool {
	return isPN_CHARS_U(r) ||
		r == '-' ||
		(r >= '0' && r <= '9') ||
		r == 0x00B7 ||
		(r >= 0x0300 && r <= 0x036F) ||
		(r >= 0x203F && r <= 0x2040)
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
