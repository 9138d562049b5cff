package util

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var ErrInvalidQuantity = errors.New("invalid quantity")

var integralPattern = regexp.MustCompile(`^(\d+)(?:[.,]0+)?$`)

// ParseQuantity parses an integer-valued quantity cell such as "2", " 2 " or "2,0".
func ParseQuantity(raw string) (int, error) {
	token := strings.TrimSpace(strings.ReplaceAll(raw, "\u00A0", " "))
	m := integralPattern.FindStringSubmatch(token)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuantity, raw)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuantity, raw)
	}
	return n, nil
}
