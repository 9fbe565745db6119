package predict

import (
	"bytes"
	"unicode/utf8"
)

// DoneSentinel ends a prediction stream. It is never part of the answer.
const DoneSentinel = "[DONE]"

// sentinelFilter turns raw stream reads into answer text. Bytes that could
// be the start of the sentinel or of a multi-byte character are held back
// until the next read decides them.
type sentinelFilter struct {
	pending []byte
	done    bool
}

// write consumes one read and returns the text that is safe to forward
func (f *sentinelFilter) write(p []byte) string {
	if f.done {
		return ""
	}
	f.pending = append(f.pending, p...)

	if i := bytes.Index(f.pending, []byte(DoneSentinel)); i >= 0 {
		out := string(f.pending[:i])
		f.pending = nil
		f.done = true
		return out
	}

	hold := sentinelPrefixLen(f.pending)
	if n := incompleteRuneLen(f.pending); n > hold {
		hold = n
	}
	emit := len(f.pending) - hold
	out := string(f.pending[:emit])
	f.pending = append(f.pending[:0], f.pending[emit:]...)
	return out
}

// flush returns whatever is still held back once the stream has ended
func (f *sentinelFilter) flush() string {
	out := string(f.pending)
	f.pending = nil
	return out
}

// sentinelPrefixLen returns the length of the longest suffix of b that is a
// proper prefix of the sentinel
func sentinelPrefixLen(b []byte) int {
	limit := len(DoneSentinel) - 1
	if len(b) < limit {
		limit = len(b)
	}
	for n := limit; n > 0; n-- {
		if bytes.HasSuffix(b, []byte(DoneSentinel[:n])) {
			return n
		}
	}
	return 0
}

// incompleteRuneLen returns how many trailing bytes of b form the start of a
// UTF-8 sequence that is not complete yet
func incompleteRuneLen(b []byte) int {
	for n := 1; n < utf8.UTFMax && n <= len(b); n++ {
		c := b[len(b)-n]
		if utf8.RuneStart(c) {
			if utf8.FullRune(b[len(b)-n:]) {
				return 0
			}
			return n
		}
	}
	return 0
}
