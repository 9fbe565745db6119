package content

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// DefaultDocsBase is the documentation origin relative citation paths
	// resolve against.
	DefaultDocsBase = "https://docs.cow.fi"

	// FallbackAnswer is shown in place of an empty assistant answer.
	FallbackAnswer = "An error occurred while fetching the answer."

	referencesLabel = "References: "
)

// DefaultPrefixFixes maps misspelled leading path segments the retriever is
// known to produce onto the segment the live site serves.
var DefaultPrefixFixes = map[string]string{
	"ow-protocol": "cow-protocol",
}

// Resolver canonicalizes citation URLs against one documentation site and
// builds the trailing references block of an answer.
type Resolver struct {
	origin string
	host   string
	fixes  map[string]string
}

var defaultResolver = MustResolver(DefaultDocsBase, DefaultPrefixFixes)

// DefaultResolver returns the resolver for DefaultDocsBase
func DefaultResolver() *Resolver {
	return defaultResolver
}

// NewResolver creates a resolver for the documentation site at base, which
// must be an absolute URL with a host. Only its scheme and host are used.
func NewResolver(base string, fixes map[string]string) (*Resolver, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return nil, fmt.Errorf("invalid docs base %q: %w", base, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid docs base %q: must be an absolute URL", base)
	}

	normalized := make(map[string]string, len(fixes))
	for from, to := range fixes {
		normalized[canonicalSegment(from)] = canonicalSegment(to)
	}

	return &Resolver{
		origin: strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host),
		host:   u.Hostname(),
		fixes:  normalized,
	}, nil
}

// MustResolver is like NewResolver but panics on an invalid base
func MustResolver(base string, fixes map[string]string) *Resolver {
	r, err := NewResolver(base, fixes)
	if err != nil {
		panic(err)
	}
	return r
}

// Origin returns the canonical origin, e.g. https://docs.cow.fi
func (r *Resolver) Origin() string {
	return r.origin
}

// ToAbsoluteURL turns a citation into an absolute, canonical URL. Relative
// paths resolve against the documentation origin. Blank input yields "".
func (r *Resolver) ToAbsoluteURL(raw string) string {
	u := trim(raw)
	if u == "" {
		return ""
	}
	if hasScheme(u) {
		return r.Canonicalize(u)
	}
	if !strings.HasPrefix(u, "/") {
		u = "/" + u
	}
	return r.Canonicalize(r.origin + u)
}

// Canonicalize rewrites URLs on the documentation host to the form the site
// serves: lowercase hyphenated segments, corrected prefixes, no trailing
// slash. Query and fragment are dropped. URLs on other hosts and URLs that do
// not parse are returned unchanged.
func (r *Resolver) Canonicalize(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || !strings.EqualFold(u.Hostname(), r.host) {
		return raw
	}

	var segs []string
	for _, seg := range dotResolved(u.Path) {
		if seg == "" {
			continue
		}
		segs = append(segs, canonicalSegment(seg))
	}
	// the last segment is a page name, never a section prefix
	for i := 0; i < len(segs)-1; i++ {
		if fixed, ok := r.fixes[segs[i]]; ok {
			segs[i] = fixed
		}
	}

	if len(segs) == 0 {
		return r.origin
	}
	return r.origin + (&url.URL{Path: "/" + strings.Join(segs, "/")}).EscapedPath()
}

// FormatAnswerWithReferences normalizes an answer and appends numbered
// reference links for its supporting URLs.
func (r *Resolver) FormatAnswerWithReferences(answer string, urls []string) string {
	if answer == "" {
		return FallbackAnswer
	}
	normalized := NormalizeLineBreaks(trim(answer))

	var refs []string
	for _, raw := range urls {
		if raw == "" {
			continue
		}
		abs := r.ToAbsoluteURL(raw)
		if abs == "" {
			continue
		}
		refs = append(refs, fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener noreferrer">[%d]</a>`,
			strings.ReplaceAll(abs, `"`, "%22"), len(refs)+1))
	}

	if len(refs) == 0 {
		return normalized
	}
	// the references must not end up inside a fence the answer left open
	if toks := ScanFences(normalized); len(toks) > 0 {
		if last := toks[len(toks)-1]; last.Kind == TokenCodeFence && !last.Closed {
			normalized += "\n" + fence
		}
	}
	return normalized + "\n\n" + referencesLabel + strings.Join(refs, " ")
}

// FormatAnswerWithReferences formats against the default documentation site
func FormatAnswerWithReferences(answer string, urls []string) string {
	return defaultResolver.FormatAnswerWithReferences(answer, urls)
}

// ToAbsoluteURL resolves against the default documentation site
func ToAbsoluteURL(raw string) string {
	return defaultResolver.ToAbsoluteURL(raw)
}

// dotResolved splits a path into segments and resolves "." and ".." the way
// browsers do. Empty segments are kept; ".." above the root is dropped.
func dotResolved(path string) []string {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	segs := make([]string, 0, len(parts))
	for _, seg := range parts {
		switch seg {
		case ".":
		case "..":
			if len(segs) > 0 {
				segs = segs[:len(segs)-1]
			}
		default:
			segs = append(segs, seg)
		}
	}
	return segs
}

func canonicalSegment(seg string) string {
	// a Caser carries state, so one per call
	lower := cases.Lower(language.Und).String(seg)
	return strings.ReplaceAll(lower, "_", "-")
}

// hasScheme reports whether s starts with "scheme://"
func hasScheme(s string) bool {
	i := strings.Index(s, "://")
	if i <= 0 {
		return false
	}
	for j := 0; j < i; j++ {
		c := s[j]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case j > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}
