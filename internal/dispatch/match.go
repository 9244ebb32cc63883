package dispatch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/appetiteclub/apt"
)

var ErrUnsupportedDrink = errors.New("no call matches drink")

// matchRule is one row of the rule table. A rule either names an exact
// literal description, or describes where the drink name must sit relative
// to a required fragment: start/end anchor the drink at the description
// boundaries, before requires the fragment somewhere ahead of the drink,
// after requires it somewhere behind.
type matchRule struct {
	name    string
	start   bool
	end     bool
	before  string
	after   string
	literal string
}

// matchRules is evaluated in order, most to least specific: vocabulary-paired
// matches first, then a bare substring hit, then the generic catch-all call
// names. The first rule with at least one candidate decides the outcome.
var matchRules = []matchRule{
	{name: "beverage-drink-anchored", before: "beverage", end: true},
	{name: "request-drink-anchored", before: "request", end: true},
	{name: "drink-beverage-anchored", start: true, after: "beverage", end: true},
	{name: "drink-request-anchored", start: true, after: "request", end: true},
	{name: "beverage-drink", before: "beverage"},
	{name: "request-drink", before: "request"},
	{name: "drink-beverage", start: true, after: "beverage"},
	{name: "drink-request", start: true, after: "request"},
	{name: "drink-anywhere"},
	{name: "generic-drink-request", literal: "drink request"},
	{name: "generic-beverage-request", literal: "beverage request"},
	{name: "generic-service", literal: "service"},
}

// matches reports whether a case-folded description satisfies the rule for a
// case-folded drink name.
func (r matchRule) matches(drink, description string) bool {
	if r.literal != "" {
		return description == r.literal
	}

	tail := description
	if r.start {
		if !strings.HasPrefix(description, drink) {
			return false
		}
		tail = description[len(drink):]
	}

	switch {
	case r.before != "":
		if r.end {
			if !strings.HasSuffix(description, drink) {
				return false
			}
			return strings.Contains(description[:len(description)-len(drink)], r.before)
		}
		idx := strings.Index(description, r.before)
		return idx >= 0 && strings.Contains(description[idx+len(r.before):], drink)
	case r.after != "":
		if r.end {
			return strings.HasSuffix(tail, r.after)
		}
		return strings.Contains(tail, r.after)
	default:
		return strings.Contains(description, drink)
	}
}

// Matcher selects the call definition that best fits a drink name. Matching
// is pure string work against a caller-supplied snapshot; the matcher holds
// no state besides its logger.
type Matcher struct {
	logger apt.Logger
}

func NewMatcher(logger apt.Logger) *Matcher {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Matcher{logger: logger}
}

// Match evaluates the rule table in order against every call description,
// case-folded on both sides. The first rule with a non-empty candidate set
// wins, and within that set the call with the highest ID is selected so the
// most recently added matching call takes precedence. Returns
// ErrUnsupportedDrink when the table is exhausted.
func (m *Matcher) Match(drink string, calls []CallDefinition) (CallDefinition, error) {
	folded := strings.ToLower(drink)
	for _, rule := range matchRules {
		var candidates []CallDefinition
		for _, call := range calls {
			if rule.matches(folded, strings.ToLower(call.Description)) {
				candidates = append(candidates, call)
			}
		}
		if len(candidates) == 0 {
			continue
		}

		selected := candidates[0]
		for _, call := range candidates[1:] {
			if call.ID > selected.ID {
				selected = call
			}
		}
		m.logger.Debug("call rule matched",
			"rule", rule.name,
			"drink", drink,
			"candidates", len(candidates),
			"selected_id", selected.ID,
		)
		return selected, nil
	}
	return CallDefinition{}, fmt.Errorf("%w: %q", ErrUnsupportedDrink, drink)
}
