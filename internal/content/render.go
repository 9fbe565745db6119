package content

// Block is a segment together with its inline nodes. Code blocks carry no
// nodes; their Text is shown verbatim.
type Block struct {
	Segment
	Nodes []Node `json:"nodes,omitempty"`
}

// Render runs the full pipeline over answer text: normalize, segment, and
// format every prose segment. It accepts partial streamed text.
func Render(text string) []Block {
	segs := SplitSegments(NormalizeLineBreaks(text))
	blocks := make([]Block, 0, len(segs))
	for _, seg := range segs {
		b := Block{Segment: seg}
		if seg.Kind == SegmentProse {
			b.Nodes = FormatInline(seg.Text)
		}
		blocks = append(blocks, b)
	}
	return blocks
}
