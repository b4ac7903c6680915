package generator

import (
	"fmt"
	"math"
	"slices"
	"strconv"

	"pkg.jsn.cam/bulkgen/pkg/bulkgen"
)

const (
	articleFormat   = "PDF"
	reviewEvalRatio = 0.70
	maxReviewScore  = 10
	maxFinalScore   = 10.0
	maxEvalReviews  = 8
)

// Articles yields n articles, each attached to a congress in [1, maxCongressID]
// (left empty when there are none) and carrying the padded body.
func (g *Generator) Articles(n, maxCongressID int) bulkgen.Rows {
	return func(yield func(bulkgen.Row) bool) {
		if g.body == "" {
			g.body = PadBody(g.bodyKB)
		}
		for i := 1; i <= n; i++ {
			status := pick(g.rand, g.vocab.Statuses)
			publishedAt := formatTime(g.pastTime())
			congressID := ""
			if maxCongressID > 0 {
				congressID = itoa(g.intIn(1, maxCongressID))
			}

			row := bulkgen.Row{
				itoa(i),
				congressID,
				publishedAt,
				fmt.Sprintf("Resumo do artigo %d", i),
				articleFormat,
				status,
				fmt.Sprintf("Article %d: Advances in AI", i),
				g.body,
			}
			if !yield(row) {
				return
			}
		}
	}
}

// ArticlesUsers yields the authorship join table: for every article,
// min(authorsPerArticle, nUsers) distinct users.
func (g *Generator) ArticlesUsers(nArticles, nUsers, authorsPerArticle int) bulkgen.Rows {
	return func(yield func(bulkgen.Row) bool) {
		for a := 1; a <= nArticles; a++ {
			article := itoa(a)
			for _, u := range SampleDistinct(g.rand, nUsers, authorsPerArticle) {
				if !yield(bulkgen.Row{article, itoa(u)}) {
					return
				}
			}
		}
	}
}

// EvaluationCount is the number of evaluations generated for nArticles at ratio.
func EvaluationCount(nArticles int, ratio float64) int {
	return max(int(float64(nArticles)*ratio), 0)
}

// Evaluations picks EvaluationCount(nArticles, ratio) distinct articles and
// returns one evaluation per article, ids 1..K in ascending article order.
// Unlike the other tables the rows are built eagerly: the sorted sample has to
// exist before the first id can be assigned, and the caller needs K before it
// can generate reviews.
func (g *Generator) Evaluations(nArticles int, ratio float64) []bulkgen.Row {
	chosen := SampleDistinct(g.rand, nArticles, EvaluationCount(nArticles, ratio))
	slices.Sort(chosen)

	rows := make([]bulkgen.Row, 0, len(chosen))
	for idx, a := range chosen {
		score := math.Round(g.rand.Float64()*maxFinalScore*100) / 100
		reviews := g.intIn(1, maxEvalReviews)
		rows = append(rows, bulkgen.Row{
			itoa(idx + 1),
			strconv.FormatFloat(score, 'f', -1, 64),
			itoa(reviews),
			itoa(a),
		})
	}
	return rows
}

// Reviews yields perArticle reviews for every article, ids sequential across
// the whole table. Reviewers are any user; the evaluation reference is set
// with probability 0.7 to a random id in [1, maxEvalID] and is unrelated to
// the article being reviewed.
func (g *Generator) Reviews(nArticles, perArticle, nUsers, maxEvalID int) bulkgen.Rows {
	return func(yield func(bulkgen.Row) bool) {
		rid := 0
		for a := 1; a <= nArticles; a++ {
			article := itoa(a)
			for range perArticle {
				rid++
				score := g.intIn(0, maxReviewScore)
				createdAt := formatTime(g.pastTime())
				reviewer := ""
				if nUsers > 0 {
					reviewer = itoa(g.intIn(1, nUsers))
				}
				evaluation := g.optionalID(maxEvalID, reviewEvalRatio)

				row := bulkgen.Row{
					itoa(rid),
					itoa(score),
					article,
					createdAt,
					evaluation,
					reviewer,
					fmt.Sprintf("Review %d do artigo %d", rid, a),
				}
				if !yield(row) {
					return
				}
			}
		}
	}
}
