package pipeline

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"orderledger/internal"
	"orderledger/internal/util"
)

var (
	ErrMissingProduct = errors.New("missing product description")
	ErrBadQuantity    = errors.New("non-positive quantity in description")
)

var (
	leveQtyPattern    = regexp.MustCompile(`(?i)Leve\s*(\d+)`)
	genericQtyPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:frasco|pote|unidade)`)
)

// Extractor derives manager, sale type, quantity and order-bump from a description.
type Extractor struct {
	managers ManagerMatcher
}

func NewExtractor(managers ManagerMatcher) *Extractor {
	if managers == nil {
		managers = NewPatternMatcher()
	}
	return &Extractor{managers: managers}
}

func (e *Extractor) Extract(description, rawQuantity string) (internal.Attributes, error) {
	if strings.TrimSpace(description) == "" {
		return internal.Attributes{}, ErrMissingProduct
	}
	rawQty, err := util.ParseQuantity(rawQuantity)
	if err != nil {
		return internal.Attributes{}, err
	}
	qty, err := ExtractQuantity(description)
	if err != nil {
		return internal.Attributes{}, err
	}

	attrs := internal.Attributes{
		Manager:  e.managers.Match(description),
		SaleType: ClassifySaleType(description),
		Quantity: qty,
	}

	if strings.Contains(description, "|") && rawQty >= 2 {
		attrs.OrderBump = true
		attrs.Quantity++
	}
	// Callcenter and recovery sales never carry a bump; the extra unit stays.
	if attrs.SaleType == internal.SaleCallcenter || attrs.SaleType == internal.SaleRecuperation {
		attrs.OrderBump = false
	}
	return attrs, nil
}

func ClassifySaleType(description string) internal.SaleType {
	switch {
	case strings.Contains(description, "CALL"):
		return internal.SaleCallcenter
	case strings.Contains(description, "REC"):
		return internal.SaleRecuperation
	case strings.Contains(strings.ToLower(description), "upsell"):
		return internal.SaleUpsell
	default:
		return internal.SaleNormal
	}
}

// ExtractQuantity reads "Leve N" first, then "N frasco/pote/unidade", defaulting to 1.
func ExtractQuantity(description string) (int, error) {
	var token string
	if m := leveQtyPattern.FindStringSubmatch(description); len(m) > 1 {
		token = m[1]
	} else if m := genericQtyPattern.FindStringSubmatch(description); len(m) > 1 {
		token = m[1]
	}
	if token == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(token)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q", ErrBadQuantity, token)
	}
	return n, nil
}

func UpsellFlag(saleType internal.SaleType, orderBump bool) bool {
	return saleType == internal.SaleUpsell && !orderBump
}
