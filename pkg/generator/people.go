package generator

import (
	"fmt"
	"strconv"
	"strings"

	"pkg.jsn.cam/bulkgen/pkg/bulkgen"
)

// Probabilities of the optional user attributes.
const (
	reviewerRatio       = 0.35
	userCongressRatio   = 0.30
	reviewerRoleRatio   = 0.35
	adminRoleRatio      = 0.02
	placeholderPassword = "hashed_pwd"
)

// Addresses yields n address rows with ids 1..n. Address ids double as user ids.
func (g *Generator) Addresses(n int) bulkgen.Rows {
	return func(yield func(bulkgen.Row) bool) {
		for i := 1; i <= n; i++ {
			city := pick(g.rand, g.vocab.Cities)
			state := pick(g.rand, g.vocab.States)
			number := g.intIn(1, 9999)
			street := pick(g.rand, g.vocab.Streets)
			zip := fmt.Sprintf("%d-%d", g.intIn(10000, 99999), g.intIn(100, 999))

			row := bulkgen.Row{
				itoa(i),
				city,
				"Comp " + itoa(i%100),
				g.vocab.Country,
				itoa(number),
				state,
				street,
				zip,
			}
			if !yield(row) {
				return
			}
		}
	}
}

// Cards yields n card rows with ids 1..n and expiry dates in the future.
func (g *Generator) Cards(n int) bulkgen.Rows {
	return func(yield func(bulkgen.Row) bool) {
		for i := 1; i <= n; i++ {
			cvv := g.intIn(100, 999)
			expired := g.now.AddDate(0, 0, g.intIn(30, 365*5)).Format(DateLayout)
			number := fmt.Sprintf("%d-%d-%d-%d",
				g.intIn(4000, 4999), g.intIn(1000, 9999), g.intIn(1000, 9999), g.intIn(1000, 9999))

			if !yield(bulkgen.Row{itoa(i), itoa(cvv), expired, number}) {
				return
			}
		}
	}
}

// Roles yields one row per authority, ids starting at 1.
func (g *Generator) Roles() bulkgen.Rows {
	return func(yield func(bulkgen.Row) bool) {
		for i, authority := range g.vocab.Authorities {
			if !yield(bulkgen.Row{itoa(i + 1), authority}) {
				return
			}
		}
	}
}

// Users yields n users. address_id and card_id equal the user id, which keeps
// them unique without any bookkeeping. maxCongressID of 0 leaves every user
// without a congress.
func (g *Generator) Users(n, maxCongressID int) bulkgen.Rows {
	return func(yield func(bulkgen.Row) bool) {
		for i := 1; i <= n; i++ {
			first := pick(g.rand, g.vocab.FirstNames)
			last := pick(g.rand, g.vocab.LastNames)
			login := strings.ToLower(first) + "." + strings.ToLower(last) + "." + itoa(i)
			isReviewer := g.chance(reviewerRatio)
			membership := g.newUUID()
			workPlace := pick(g.rand, g.vocab.WorkPlaces)
			congressID := g.optionalID(maxCongressID, userCongressRatio)

			id := itoa(i)
			row := bulkgen.Row{
				id,
				strconv.FormatBool(isReviewer),
				id,
				id,
				congressID,
				membership,
				login,
				placeholderPassword,
				first + " " + last,
				workPlace,
				"",
			}
			if !yield(row) {
				return
			}
		}
	}
}

// UserRoles yields the role assignments of users 1..nUsers. Every user gets
// role 1; roles 2 and 3 are added by independent coin flips, so the row count
// is at least nUsers.
func (g *Generator) UserRoles(nUsers int) bulkgen.Rows {
	return func(yield func(bulkgen.Row) bool) {
		for u := 1; u <= nUsers; u++ {
			user := itoa(u)
			if !yield(bulkgen.Row{"1", user}) {
				return
			}
			if g.chance(reviewerRoleRatio) {
				if !yield(bulkgen.Row{"2", user}) {
					return
				}
			}
			if g.chance(adminRoleRatio) {
				if !yield(bulkgen.Row{"3", user}) {
					return
				}
			}
		}
	}
}
