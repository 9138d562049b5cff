package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"orderledger/internal/util"
)

var ErrEmptyVocabulary = errors.New("product vocabulary is empty")

// DefaultProducts is the product line sold through the store, most specific names first
// so that "Urocianina Gotas" is preferred over "Urocianina" on containment.
var DefaultProducts = []string{
	"Urocianina Gotas", "Insufree Gotas", "L-Nicotinina", "Evo Prost Gotas",
	"Fortisol", "Urocianina", "Insufree", "Lutrazina", "Viriforte",
	"Condroczol", "Revert Vision", "Next Vision", "Prostatina", "Prostzol",
	"Gliconix", "Maxprost", "Antocionidinol", "Glicofree",
}

// Vocabulary is the ordered set of canonical product names.
type Vocabulary struct {
	names []string
}

type vocabularyFile struct {
	Products []string `yaml:"products"`
}

func NewVocabulary(names []string) (Vocabulary, error) {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		key := util.Fold(name)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	if len(out) == 0 {
		return Vocabulary{}, ErrEmptyVocabulary
	}
	return Vocabulary{names: out}, nil
}

// Load reads a YAML vocabulary file; an empty path yields DefaultProducts.
func Load(path string) (Vocabulary, error) {
	if strings.TrimSpace(path) == "" {
		return NewVocabulary(DefaultProducts)
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, err
	}
	var file vocabularyFile
	if err := yaml.Unmarshal(blob, &file); err != nil {
		return Vocabulary{}, fmt.Errorf("parse vocabulary %s: %w", path, err)
	}
	return NewVocabulary(file.Products)
}

func (v Vocabulary) Names() []string {
	out := make([]string, len(v.names))
	copy(out, v.names)
	return out
}

func (v Vocabulary) Len() int { return len(v.names) }
