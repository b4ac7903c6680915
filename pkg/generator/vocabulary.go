package generator

// Vocabulary holds the fixed word lists the generators draw from.
// Tests swap in smaller lists to make assertions on exact values.
type Vocabulary struct {
	FirstNames  []string
	LastNames   []string
	Cities      []string
	States      []string
	Streets     []string
	WorkPlaces  []string
	Country     string
	Authorities []string // role names; position+1 is the role id
	Statuses    []string // article statuses
	Modalities  []string // congress modalities
}

// DefaultVocabulary returns the vocabulary used for bulk runs.
func DefaultVocabulary() *Vocabulary {
	return &Vocabulary{
		FirstNames: []string{
			"Ana", "Carlos", "Mariana", "Felipe", "João", "Beatriz", "Lucas", "Julia",
			"Pedro", "Larissa", "Paulo", "Rafaela", "Renata", "Miguel", "Sofia", "Mateus",
			"Isabela", "Gustavo", "Camila", "André",
		},
		LastNames: []string{
			"Silva", "Souza", "Oliveira", "Santos", "Pereira", "Costa", "Rocha", "Almeida",
			"Ribeiro", "Gomes", "Carvalho", "Araújo", "Lima", "Barbosa", "Castro", "Teixeira",
		},
		Cities: []string{
			"São Paulo", "Salvador", "Rio de Janeiro", "Fortaleza", "Curitiba",
			"Manaus", "Recife", "Belo Horizonte", "Porto Alegre", "Florianópolis", "Vitória",
		},
		States: []string{"SP", "BA", "RJ", "CE", "PR", "AM", "PE", "MG", "RS", "SC", "ES"},
		Streets: []string{
			"Rua das Flores", "Av. Central", "Rua Bahia", "Rua da Paz", "Av. Atlântica",
			"Rua Projetada", "Av. Brasil", "Rua Sete", "Rua das Palmeiras",
		},
		WorkPlaces: []string{
			"USP", "UFBA", "UFRJ", "Hospital Municipal", "Clínica Central",
			"UESC", "Laboratório Next", "SUSConecta Org", "IFBA", "Unicamp",
		},
		Country:     "Brasil",
		Authorities: []string{"ROLE_USER", "ROLE_REVIEWER", "ROLE_ADMIN"},
		Statuses:    []string{"PENDING", "VALID", "EXPIRED"},
		Modalities:  []string{"ONLINE", "IN_PERSON", "HYBRID"},
	}
}

// Validate reports whether every list the generators sample from is non-empty.
func (v *Vocabulary) Validate() error {
	lists := []struct {
		name  string
		words []string
	}{
		{"first names", v.FirstNames},
		{"last names", v.LastNames},
		{"cities", v.Cities},
		{"states", v.States},
		{"streets", v.Streets},
		{"work places", v.WorkPlaces},
		{"authorities", v.Authorities},
		{"statuses", v.Statuses},
		{"modalities", v.Modalities},
	}
	for _, l := range lists {
		if len(l.words) == 0 {
			return &EmptyListError{List: l.name}
		}
	}
	return nil
}

// EmptyListError is returned by Validate for an empty vocabulary list.
type EmptyListError struct {
	List string
}

func (e *EmptyListError) Error() string {
	return "vocabulary list is empty: " + e.List
}
