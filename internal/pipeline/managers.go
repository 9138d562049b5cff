package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"orderledger/internal"
)

const (
	ManagerSourcePattern = "pattern"
	ManagerSourceFixed   = "fixed"
	ManagerSourceBatch   = "batch"
)

// fallbackManagerCode stands in when a batch carries no recognisable codes at all.
const fallbackManagerCode = "XX"

const (
	managerPrefix = `(?:[(\-]|\s-\s*)`
	managerSuffix = `(?:[)\-]|\s|$)`
)

var (
	managerTrailing = regexp.MustCompile(managerPrefix + `([A-Z]{2})[)\-]?\s*$`)
	managerAnywhere = regexp.MustCompile(managerPrefix + `([A-Z]{2})` + managerSuffix)
)

// ManagerMatcher finds the sales manager initials embedded in a product description.
type ManagerMatcher interface {
	Match(description string) string
}

type patternMatcher struct {
	trailing *regexp.Regexp
	anywhere *regexp.Regexp
}

func (m patternMatcher) Match(description string) string {
	if sub := m.trailing.FindStringSubmatch(description); len(sub) > 1 {
		return strings.ToUpper(sub[1])
	}
	all := m.anywhere.FindAllStringSubmatch(description, -1)
	if len(all) > 0 {
		return strings.ToUpper(all[len(all)-1][1])
	}
	return internal.UnknownManager
}

// NewPatternMatcher accepts any two uppercase letters in manager position.
func NewPatternMatcher() ManagerMatcher {
	return patternMatcher{trailing: managerTrailing, anywhere: managerAnywhere}
}

// NewListMatcher accepts only the given codes, matched case-insensitively.
func NewListMatcher(codes []string) (ManagerMatcher, error) {
	quoted := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(strings.ToUpper(c)))
	}
	if len(quoted) == 0 {
		return nil, fmt.Errorf("manager code list is empty")
	}
	alt := "(" + strings.Join(quoted, "|") + ")"
	return patternMatcher{
		trailing: regexp.MustCompile(`(?i)` + managerPrefix + alt + `[)\-]?\s*$`),
		anywhere: regexp.MustCompile(`(?i)` + managerPrefix + alt + managerSuffix),
	}, nil
}

// DeriveManagerCodes collects the distinct codes present across a batch, in first-seen order.
func DeriveManagerCodes(descriptions []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, d := range descriptions {
		for _, m := range managerAnywhere.FindAllStringSubmatch(d, -1) {
			code := m[1]
			if _, ok := seen[code]; ok {
				continue
			}
			seen[code] = struct{}{}
			out = append(out, code)
		}
	}
	if len(out) == 0 {
		return []string{fallbackManagerCode}
	}
	return out
}

// NewManagerMatcher picks the matcher for source. descriptions feed the batch strategy.
func NewManagerMatcher(source string, codes []string, descriptions []string) (ManagerMatcher, error) {
	switch strings.ToLower(strings.TrimSpace(source)) {
	case "", ManagerSourcePattern:
		return NewPatternMatcher(), nil
	case ManagerSourceFixed:
		return NewListMatcher(codes)
	case ManagerSourceBatch:
		return NewListMatcher(DeriveManagerCodes(descriptions))
	default:
		return nil, fmt.Errorf("unsupported manager code source: %s", source)
	}
}
