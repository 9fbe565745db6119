package content

// SegmentKind tells prose and code segments apart
type SegmentKind string

const (
	SegmentProse SegmentKind = "prose"
	SegmentCode  SegmentKind = "code"
)

// Segment is one ordered piece of a rendered answer.
type Segment struct {
	Kind SegmentKind `json:"type"`
	Lang string      `json:"lang,omitempty"`
	Text string      `json:"text"`
	// Provisional marks a code segment whose closing fence has not been
	// received yet.
	Provisional bool `json:"provisional,omitempty"`
}

// SplitSegments splits normalized text into prose and code segments in source
// order. Segments whose trimmed text is empty are dropped.
func SplitSegments(normalized string) []Segment {
	var segs []Segment
	for _, tok := range ScanFences(normalized) {
		text := trim(tok.Text)
		if text == "" {
			continue
		}
		if tok.Kind == TokenCodeFence {
			segs = append(segs, Segment{
				Kind:        SegmentCode,
				Lang:        tok.Lang,
				Text:        text,
				Provisional: !tok.Closed,
			})
			continue
		}
		segs = append(segs, Segment{Kind: SegmentProse, Text: text})
	}
	return segs
}
