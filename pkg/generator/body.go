package generator

import "strings"

const bodyChunk = "lorem ipsum dolor sit amet consectetur adipiscing elit " +
	"sed do eiusmod tempor incididunt ut labore et dolore magna aliqua. "

// PadBody returns exactly floor(kb*1024) bytes made of repeated copies of a
// fixed ASCII chunk, the last copy truncated.
func PadBody(kb float64) string {
	target := int(kb * 1024)
	if target <= 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(target + len(bodyChunk))
	for b.Len() < target {
		b.WriteString(bodyChunk)
	}
	return b.String()[:target]
}
