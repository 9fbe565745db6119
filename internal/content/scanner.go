package content

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenKind identifies a lexical unit produced by the scanner
type TokenKind int

const (
	TokenText TokenKind = iota
	TokenCodeFence
	TokenInlineCode
	TokenBold
	TokenAnchor
)

// String returns the token kind name
func (k TokenKind) String() string {
	switch k {
	case TokenText:
		return "TEXT"
	case TokenCodeFence:
		return "CODE_FENCE"
	case TokenInlineCode:
		return "INLINE_CODE"
	case TokenBold:
		return "BOLD_MARK"
	case TokenAnchor:
		return "ANCHOR"
	default:
		return "UNKNOWN"
	}
}

// Token is a classified span of the input.
//
// Text holds the payload: the literal text for TokenText, the fence body for
// TokenCodeFence, the span content for TokenInlineCode and TokenBold, and the
// link text for TokenAnchor. Raw is the exact source slice the token covers.
type Token struct {
	Kind   TokenKind
	Text   string
	Raw    string
	Lang   string // fences only
	Href   string // anchors only
	Closed bool   // fences only; false while the closing fence has not arrived
}

const fence = "```"

// ScanFences splits s into TokenText and TokenCodeFence tokens.
//
// A fence opens at "```", may carry a language tag of word characters, an
// optional newline, and runs to the next "```". A fence that is never closed
// runs to the end of the input and is reported with Closed=false, which keeps
// partially streamed code rendering as code.
func ScanFences(s string) []Token {
	var toks []Token
	pos := 0
	for pos < len(s) {
		rel := strings.Index(s[pos:], fence)
		if rel < 0 {
			break
		}
		open := pos + rel
		toks = appendText(toks, s[pos:open])

		bodyStart := open + len(fence)
		langEnd := bodyStart
		for langEnd < len(s) && isWordByte(s[langEnd]) {
			langEnd++
		}
		contentStart := langEnd
		if contentStart < len(s) && s[contentStart] == '\n' {
			contentStart++
		}

		tok := Token{Kind: TokenCodeFence, Lang: s[bodyStart:langEnd]}
		if rel := strings.Index(s[bodyStart:], fence); rel >= 0 {
			closeAt := bodyStart + rel
			end := closeAt + len(fence)
			tok.Text = s[contentStart:closeAt]
			tok.Raw = s[open:end]
			tok.Closed = true
			pos = end
		} else {
			tok.Text = s[contentStart:]
			tok.Raw = s[open:]
			pos = len(s)
		}
		toks = append(toks, tok)
	}
	return appendText(toks, s[pos:])
}

// ScanInline tokenizes one prose segment.
//
// Stages run strictly in order: anchors, then inline code inside the text
// between anchors, then bold inside the text between code spans. Text
// consumed by an earlier stage is never rescanned by a later one.
func ScanInline(s string) []Token {
	var out []Token
	for _, a := range scanAnchors(s) {
		if a.Kind != TokenText {
			out = append(out, a)
			continue
		}
		for _, c := range scanInlineCode(a.Text) {
			if c.Kind != TokenText {
				out = append(out, c)
				continue
			}
			for _, b := range scanBold(c.Text) {
				out = appendToken(out, b)
			}
		}
	}
	return out
}

// scanAnchors finds <a href="URL" ...>TEXT</a> spans, case-insensitively.
func scanAnchors(s string) []Token {
	if !strings.Contains(s, "<") {
		return appendText(nil, s)
	}
	idx := newAnchorIndex(s)

	var toks []Token
	last := 0
	for i := 0; i < len(s); {
		rel := strings.IndexByte(s[i:], '<')
		if rel < 0 {
			break
		}
		i += rel
		if href, text, end, ok := idx.match(i); ok {
			toks = appendText(toks, s[last:i])
			toks = append(toks, Token{Kind: TokenAnchor, Href: href, Text: text, Raw: s[i:end]})
			i, last = end, end
			continue
		}
		i++
	}
	return appendText(toks, s[last:])
}

// anchorIndex precomputes next-occurrence tables so every match attempt is
// constant time past the "<a href=" prefix, keeping the scan linear on
// adversarial input such as thousands of unterminated anchors.
type anchorIndex struct {
	s         string
	nextQuote []int
	nextGT    []int
	nextClose []int
}

func newAnchorIndex(s string) *anchorIndex {
	n := len(s)
	idx := &anchorIndex{
		s:         s,
		nextQuote: make([]int, n+1),
		nextGT:    make([]int, n+1),
		nextClose: make([]int, n+1),
	}
	idx.nextQuote[n], idx.nextGT[n], idx.nextClose[n] = -1, -1, -1
	for i := n - 1; i >= 0; i-- {
		idx.nextQuote[i], idx.nextGT[i], idx.nextClose[i] = idx.nextQuote[i+1], idx.nextGT[i+1], idx.nextClose[i+1]
		switch s[i] {
		case '"':
			idx.nextQuote[i] = i
		case '>':
			idx.nextGT[i] = i
		case '<':
			if i+4 <= n && strings.EqualFold(s[i:i+4], "</a>") {
				idx.nextClose[i] = i
			}
		}
	}
	return idx
}

func (x *anchorIndex) match(i int) (href, text string, end int, ok bool) {
	s := x.s
	if i+2 > len(s) || s[i] != '<' || (s[i+1] != 'a' && s[i+1] != 'A') {
		return "", "", 0, false
	}
	j := i + 2
	spaces := 0
	for j < len(s) {
		r, size := utf8.DecodeRuneInString(s[j:])
		if !isSpace(r) {
			break
		}
		j += size
		spaces++
	}
	if spaces == 0 {
		return "", "", 0, false
	}
	if j+6 > len(s) || !strings.EqualFold(s[j:j+6], `href="`) {
		return "", "", 0, false
	}
	hrefStart := j + 6
	quote := x.nextQuote[hrefStart]
	if quote < 0 {
		return "", "", 0, false
	}
	gt := x.nextGT[quote+1]
	if gt < 0 {
		return "", "", 0, false
	}
	closeAt := x.nextClose[gt+1]
	if closeAt < 0 {
		return "", "", 0, false
	}
	return s[hrefStart:quote], s[gt+1 : closeAt], closeAt + len("</a>"), true
}

// scanInlineCode finds `code` spans with at least one character and no
// backticks inside.
func scanInlineCode(s string) []Token {
	var toks []Token
	last := 0
	for i := 0; i < len(s); {
		rel := strings.IndexByte(s[i:], '`')
		if rel < 0 {
			break
		}
		open := i + rel
		next := strings.IndexByte(s[open+1:], '`')
		if next < 0 {
			break
		}
		if next == 0 {
			i = open + 1
			continue
		}
		closeAt := open + 1 + next
		toks = appendText(toks, s[last:open])
		toks = append(toks, Token{Kind: TokenInlineCode, Text: s[open+1 : closeAt], Raw: s[open : closeAt+1]})
		i, last = closeAt+1, closeAt+1
	}
	return appendText(toks, s[last:])
}

// scanBold finds **bold** spans with at least one character and no
// asterisks inside.
func scanBold(s string) []Token {
	var toks []Token
	last := 0
	for i := 0; i < len(s); {
		rel := strings.Index(s[i:], "**")
		if rel < 0 {
			break
		}
		open := i + rel
		star := strings.IndexByte(s[open+2:], '*')
		if star < 0 {
			break
		}
		closeAt := open + 2 + star
		if star == 0 || closeAt+1 >= len(s) || s[closeAt+1] != '*' {
			i = open + 1
			continue
		}
		toks = appendText(toks, s[last:open])
		toks = append(toks, Token{Kind: TokenBold, Text: s[open+2 : closeAt], Raw: s[open : closeAt+2]})
		i, last = closeAt+2, closeAt+2
	}
	return appendText(toks, s[last:])
}

// appendText adds a text token, merging with a preceding text token
func appendText(toks []Token, text string) []Token {
	if text == "" {
		return toks
	}
	return appendToken(toks, Token{Kind: TokenText, Text: text, Raw: text})
}

func appendToken(toks []Token, tok Token) []Token {
	if tok.Kind == TokenText {
		if tok.Text == "" {
			return toks
		}
		if n := len(toks); n > 0 && toks[n-1].Kind == TokenText {
			toks[n-1].Text += tok.Text
			toks[n-1].Raw += tok.Raw
			return toks
		}
	}
	return append(toks, tok)
}

func isWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

// isSpace matches the whitespace set browsers use for \s and String.trim
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

func trim(s string) string {
	return strings.TrimFunc(s, isSpace)
}
