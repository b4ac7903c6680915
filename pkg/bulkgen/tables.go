package bulkgen

import "fmt"

var (
	AddressTable = Table{
		Name:   "tb_address",
		Header: []string{"id", "city", "complement", "country", "number", "state", "street", "zip_code"},
	}
	CardTable = Table{
		Name:   "tb_card",
		Header: []string{"id", "cvv", "expired", "number"},
	}
	RoleTable = Table{
		Name:   "tb_role",
		Header: []string{"id", "authority"},
	}
	// Column order matches the COPY column list used by the loader scripts.
	CongressTable = Table{
		Name: "tb_congresso",
		Header: []string{
			"id", "max_reviews_per_article", "min_reviews_per_article", "end_date", "review_deadline",
			"start_date", "submission_deadline", "congresso_modality", "description", "description_title",
			"image_thumbnail", "name", "place",
		},
	}
	UserTable = Table{
		Name: "tb_user",
		Header: []string{
			"id", "is_reviewer", "address_id", "card_id", "congresso_id", "membership_number",
			"login", "password", "username_user", "work_place", "profile_image",
		},
	}
	UserRoleTable = Table{
		Name:   "tb_user_role",
		Header: []string{"role_id", "user_id"},
	}
	ArticleTable = Table{
		Name:   "tb_article",
		Header: []string{"id", "congresso_id", "published_at", "description", "format", "status", "title", "body"},
	}
	ArticlesUsersTable = Table{
		Name:   "tb_articles_users",
		Header: []string{"article_id", "user_id"},
	}
	EvaluationTable = Table{
		Name:   "tb_evaluation",
		Header: []string{"id", "final_score", "number_of_reviews", "article_id"},
	}
	ReviewTable = Table{
		Name:   "tb_review",
		Header: []string{"id", "score", "article_id", "create_at", "evaluation_id", "reviewer_id", "comment"},
	}
)

// Tables lists every table in generation order. Parents always precede
// the tables that reference them.
var Tables = []Table{
	AddressTable,
	CardTable,
	RoleTable,
	CongressTable,
	UserTable,
	UserRoleTable,
	ArticleTable,
	ArticlesUsersTable,
	EvaluationTable,
	ReviewTable,
}

// LookupTable returns a table by name
func LookupTable(name string) (Table, error) {
	for _, t := range Tables {
		if t.Name == name {
			return t, nil
		}
	}
	return Table{}, fmt.Errorf("%w: %s", ErrUnknownTable, name)
}
