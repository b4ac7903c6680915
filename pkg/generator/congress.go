package generator

import (
	"fmt"

	"pkg.jsn.cam/bulkgen/pkg/bulkgen"
)

// Congresses yields n congresses. Deadlines are offsets from a random start:
// submission closes 10-60 days before the start, the event lasts 2-5 days
// and reviews are due 5-20 days after it ends.
func (g *Generator) Congresses(n int) bulkgen.Rows {
	return func(yield func(bulkgen.Row) bool) {
		for i := 1; i <= n; i++ {
			minReviews := g.intIn(2, 3)
			maxReviews := g.intIn(4, 6)
			start := g.pastTime()
			end := start.AddDate(0, 0, g.intIn(2, 5))
			reviewDeadline := end.AddDate(0, 0, g.intIn(5, 20))
			submissionDeadline := start.AddDate(0, 0, -g.intIn(10, 60))
			modality := pick(g.rand, g.vocab.Modalities)
			place := pick(g.rand, g.vocab.Cities)

			row := bulkgen.Row{
				itoa(i),
				itoa(maxReviews),
				itoa(minReviews),
				formatTime(end),
				formatTime(reviewDeadline),
				formatTime(start),
				formatTime(submissionDeadline),
				modality,
				fmt.Sprintf("Congresso %d sobre IA e Medicina", i),
				fmt.Sprintf("Congresso %d", i),
				"", // image_thumbnail
				fmt.Sprintf("CG-%04d", i),
				place,
			}
			if !yield(row) {
				return
			}
		}
	}
}
