package rdf

import "strings"

// URIParts is a URI reference split into its RFC 3986 components.
// The Has* flags distinguish an empty component from an absent one.
type URIParts struct {
	Scheme       string
	Authority    string
	Path         string
	Query        string
	Fragment     string
	HasAuthority bool
	HasQuery     bool
	HasFragment  bool
}

// HasScheme returns true if s starts with a URI scheme followed by ':'
func HasScheme(s string) bool {
	if s == "" || !isAlpha(rune(s[0])) {
		return false
	}

	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ':':
			return true
		case isAlpha(rune(c)), isDigit(rune(c)), c == '+', c == '-', c == '.':
		default:
			return false
		}
	}
	return false
}

// ParseURI splits a URI reference into components
func ParseURI(s string) URIParts {
	var u URIParts

	if HasScheme(s) {
		i := strings.IndexByte(s, ':')
		u.Scheme = s[:i]
		s = s[i+1:]
	}

	if strings.HasPrefix(s, "//") {
		s = s[2:]
		end := strings.IndexAny(s, "/?#")
		if end < 0 {
			end = len(s)
		}
		u.Authority = s[:end]
		u.HasAuthority = true
		s = s[end:]
	}

	if i := strings.IndexByte(s, '#'); i >= 0 {
		u.Fragment = s[i+1:]
		u.HasFragment = true
		s = s[:i]
	}

	if i := strings.IndexByte(s, '?'); i >= 0 {
		u.Query = s[i+1:]
		u.HasQuery = true
		s = s[:i]
	}

	u.Path = s
	return u
}

func (u URIParts) String() string {
	var sb strings.Builder
	if u.Scheme != "" {
		sb.WriteString(u.Scheme)
		sb.WriteByte(':')
	}
	if u.HasAuthority {
		sb.WriteString("//")
		sb.WriteString(u.Authority)
	}
	sb.WriteString(u.Path)
	if u.HasQuery {
		sb.WriteByte('?')
		sb.WriteString(u.Query)
	}
	if u.HasFragment {
		sb.WriteByte('#')
		sb.WriteString(u.Fragment)
	}
	return sb.String()
}

// ResolveURI resolves a URI reference against a base URI (RFC 3986 section 5.2.2).
// If the base has no scheme, the reference is returned unchanged.
func ResolveURI(ref, base string) string {
	if base == "" || HasScheme(ref) {
		if HasScheme(ref) {
			r := ParseURI(ref)
			r.Path = removeDotSegments(r.Path)
			return r.String()
		}
		return ref
	}

	b := ParseURI(base)
	if b.Scheme == "" {
		return ref
	}

	r := ParseURI(ref)
	t := URIParts{Scheme: b.Scheme}

	switch {
	case r.HasAuthority:
		t.Authority, t.HasAuthority = r.Authority, true
		t.Path = removeDotSegments(r.Path)
		t.Query, t.HasQuery = r.Query, r.HasQuery
	case r.Path == "":
		t.Authority, t.HasAuthority = b.Authority, b.HasAuthority
		t.Path = b.Path
		if r.HasQuery {
			t.Query, t.HasQuery = r.Query, true
		} else {
			t.Query, t.HasQuery = b.Query, b.HasQuery
		}
	default:
		t.Authority, t.HasAuthority = b.Authority, b.HasAuthority
		if strings.HasPrefix(r.Path, "/") {
			t.Path = removeDotSegments(r.Path)
		} else {
			t.Path = removeDotSegments(mergePaths(b, r.Path))
		}
		t.Query, t.HasQuery = r.Query, r.HasQuery
	}

	t.Fragment, t.HasFragment = r.Fragment, r.HasFragment
	return t.String()
}

// mergePaths implements RFC 3986 section 5.2.3
func mergePaths(base URIParts, ref string) string {
	if base.HasAuthority && base.Path == "" {
		return "/" + ref
	}
	if i := strings.LastIndexByte(base.Path, '/'); i >= 0 {
		return base.Path[:i+1] + ref
	}
	return ref
}

// removeDotSegments removes . and .. segments from a path (RFC 3986 section 5.2.4)
func removeDotSegments(path string) string {
	if !strings.Contains(path, ".") {
		return path
	}

	in := path
	var out []string
	for in != "" {
		switch {
		case strings.HasPrefix(in, "../"):
			in = in[3:]
		case strings.HasPrefix(in, "./"):
			in = in[2:]
		case strings.HasPrefix(in, "/./"):
			in = in[2:]
		case in == "/.":
			in = "/"
		case strings.HasPrefix(in, "/../"):
			in = in[3:]
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		case in == "/..":
			in = "/"
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		case in == "." || in == "..":
			in = ""
		default:
			start := 0
			if in[0] == '/' {
				start = 1
			}
			end := strings.IndexByte(in[start:], '/')
			if end < 0 {
				end = len(in)
			} else {
				end += start
			}
			out = append(out, in[:end])
			in = in[end:]
		}
	}

	return strings.Join(out, "")
}

// RelativeURI returns uri written relative to base if uri is under the
// directory of base, or uri unchanged otherwise.
func RelativeURI(uri, base string) string {
	b := ParseURI(base)
	if b.Scheme == "" {
		return uri
	}

	b.Query, b.HasQuery = "", false
	b.Fragment, b.HasFragment = "", false
	if i := strings.LastIndexByte(b.Path, '/'); i >= 0 {
		b.Path = b.Path[:i+1]
	}

	root := b.String()
	if !strings.HasPrefix(uri, root) {
		return uri
	}

	rel := uri[len(root):]
	if rel == "" || HasScheme(rel) || strings.HasPrefix(rel, "/") {
		return uri
	}
	return rel
}
