package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"orderledger/internal/catalog"
	"orderledger/internal/util"
)

var ErrUnresolved = errors.New("product unresolved")

// Classifier maps a prompt to a short free-text answer.
type Classifier interface {
	Classify(ctx context.Context, prompt string) (string, error)
}

// Resolver maps a product description to one vocabulary entry through a Classifier.
type Resolver struct {
	classifier Classifier
	names      []string
}

func NewResolver(classifier Classifier, vocab catalog.Vocabulary) *Resolver {
	return &Resolver{classifier: classifier, names: vocab.Names()}
}

func (r *Resolver) Prompt(description string) string {
	return fmt.Sprintf(
		"Extraia APENAS o nome correto do produto dentre os seguintes:\n%s.\nDescrição: %q.\nRetorne somente o nome do produto.",
		strings.Join(r.names, ", "), description,
	)
}

func (r *Resolver) Resolve(ctx context.Context, description string) (string, error) {
	output, err := r.classifier.Classify(ctx, r.Prompt(description))
	if err != nil {
		return "", fmt.Errorf("%w: classifier: %v", ErrUnresolved, err)
	}
	name, ok := Reconcile(output, r.names)
	if !ok {
		return "", fmt.Errorf("%w: classifier answered %q", ErrUnresolved, output)
	}
	return name, nil
}

// Reconcile matches a classifier answer to the first vocabulary entry it equals, or
// failing that the first entry it contains or is contained by, ignoring case.
func Reconcile(output string, names []string) (string, bool) {
	answer := util.Fold(output)
	if answer == "" {
		return "", false
	}
	for _, name := range names {
		if util.Fold(name) == answer {
			return name, true
		}
	}
	for _, name := range names {
		candidate := util.Fold(name)
		if candidate == "" {
			continue
		}
		if strings.Contains(answer, candidate) || strings.Contains(candidate, answer) {
			return name, true
		}
	}
	return "", false
}
