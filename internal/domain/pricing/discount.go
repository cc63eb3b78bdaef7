package pricing

import (
	"context"
	"sort"
)

// Rule is one step of a category's discount staircase: products with at most
// DaysToExpiry days left get DiscountPercent off.
type Rule struct {
	DaysToExpiry    int
	DiscountPercent int
}

type RuleStore interface {
	// RulesFor returns the rules configured for a category. Order is not
	// relied upon; the resolver sorts.
	RulesFor(ctx context.Context, category string) ([]Rule, error)
}

// Resolver picks the discount for a (category, daysToExpiry) pair.
type Resolver struct {
	rules RuleStore
}

func NewResolver(rules RuleStore) *Resolver { return &Resolver{rules: rules} }

// Resolve scans the category's rules ascending by threshold and returns the
// first whose threshold is >= daysToExpiry. With no configured rules, or with
// more days left than any threshold covers, the built-in ladder applies.
func (r *Resolver) Resolve(ctx context.Context, category string, daysToExpiry int) (int, error) {
	rules, err := r.rules.RulesFor(ctx, category)
	if err != nil {
		return 0, err
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].DaysToExpiry < rules[j].DaysToExpiry })
	for _, rule := range rules {
		if rule.DaysToExpiry >= daysToExpiry {
			return rule.DiscountPercent, nil
		}
	}
	return DefaultDiscount(daysToExpiry), nil
}

// DefaultDiscount is the fallback ladder used when a category has no matching
// rule. It is also the ladder seeded for new categories.
func DefaultDiscount(daysToExpiry int) int {
	switch {
	case daysToExpiry >= 5:
		return 0
	case daysToExpiry >= 3:
		return 15
	case daysToExpiry == 2:
		return 30
	case daysToExpiry == 1:
		return 50
	default:
		return 70
	}
}
