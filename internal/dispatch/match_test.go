package dispatch

import (
	"errors"
	"testing"

	"github.com/appetiteclub/apt"
)

func TestMatchRuleMatches(t *testing.T) {
	tests := []struct {
		name        string
		rule        matchRule
		drink       string
		description string
		want        bool
	}{
		{
			name:        "beforeAnchoredEndHit",
			rule:        matchRule{before: "beverage", end: true},
			drink:       "coffee",
			description: "beverage station coffee",
			want:        true,
		},
		{
			name:        "beforeAnchoredEndNotAtEnd",
			rule:        matchRule{before: "beverage", end: true},
			drink:       "coffee",
			description: "beverage coffee station",
			want:        false,
		},
		{
			name:        "beforeAnchoredEndFragmentAfterDrink",
			rule:        matchRule{before: "beverage", end: true},
			drink:       "coffee",
			description: "coffee beverage",
			want:        false,
		},
		{
			name:        "startAfterAnchoredHit",
			rule:        matchRule{start: true, after: "beverage", end: true},
			drink:       "coffee",
			description: "coffee morning beverage",
			want:        true,
		},
		{
			name:        "startAfterAnchoredNoPrefix",
			rule:        matchRule{start: true, after: "beverage", end: true},
			drink:       "coffee",
			description: "iced coffee beverage",
			want:        false,
		},
		{
			name:        "startAfterAnchoredDrinkIsFragment",
			rule:        matchRule{start: true, after: "beverage", end: true},
			drink:       "beverage",
			description: "beverage",
			want:        false,
		},
		{
			name:        "beforeUnanchoredHit",
			rule:        matchRule{before: "request"},
			drink:       "coffee",
			description: "request a coffee now",
			want:        true,
		},
		{
			name:        "beforeUnanchoredFragmentAfterDrink",
			rule:        matchRule{before: "request"},
			drink:       "coffee",
			description: "coffee request",
			want:        false,
		},
		{
			name:        "startAfterUnanchoredHit",
			rule:        matchRule{start: true, after: "request"},
			drink:       "coffee",
			description: "coffee request line two",
			want:        true,
		},
		{
			name:        "bareSubstringHit",
			rule:        matchRule{},
			drink:       "coffee",
			description: "morning coffee time",
			want:        true,
		},
		{
			name:        "bareSubstringMiss",
			rule:        matchRule{},
			drink:       "coffee",
			description: "tea",
			want:        false,
		},
		{
			name:        "literalExact",
			rule:        matchRule{literal: "service"},
			drink:       "coffee",
			description: "service",
			want:        true,
		},
		{
			name:        "literalNotExact",
			rule:        matchRule{literal: "service"},
			drink:       "coffee",
			description: "room service",
			want:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rule.matches(tt.drink, tt.description)
			if got != tt.want {
				t.Errorf("matches(%q, %q) = %v, want %v", tt.drink, tt.description, got, tt.want)
			}
		})
	}
}

func TestMatcherMatch(t *testing.T) {
	tests := []struct {
		name   string
		drink  string
		calls  []CallDefinition
		wantID int
	}{
		{
			name:  "exactNameBeatsGenericService",
			drink: "Coffee",
			calls: []CallDefinition{
				{ID: 481, Description: "Coffee"},
				{ID: 12, Description: "Service"},
			},
			wantID: 481,
		},
		{
			name:  "caseFoldedDescriptions",
			drink: "coffee",
			calls: []CallDefinition{
				{ID: 3, Description: "MORNING COFFEE"},
			},
			wantID: 3,
		},
		{
			name:  "highestIDWinsWithinRule",
			drink: "Coffee",
			calls: []CallDefinition{
				{ID: 10, Description: "coffee counter"},
				{ID: 42, Description: "coffee corner"},
				{ID: 7, Description: "coffee cart"},
			},
			wantID: 42,
		},
		{
			name:  "vocabularyRuleBeatsBareSubstring",
			drink: "Coffee",
			calls: []CallDefinition{
				{ID: 99, Description: "morning coffee"},
				{ID: 10, Description: "coffee beverage"},
			},
			wantID: 10,
		},
		{
			name:  "anchoredEndBeatsAnchoredStart",
			drink: "Coffee",
			calls: []CallDefinition{
				{ID: 50, Description: "coffee beverage"},
				{ID: 5, Description: "beverage station coffee"},
			},
			wantID: 5,
		},
		{
			name:  "requestVocabularyMatch",
			drink: "Matcha",
			calls: []CallDefinition{
				{ID: 21, Description: "matcha request"},
				{ID: 30, Description: "espresso request"},
			},
			wantID: 21,
		},
		{
			name:  "genericDrinkRequestFallback",
			drink: "Kombucha",
			calls: []CallDefinition{
				{ID: 3, Description: "Drink Request"},
				{ID: 4, Description: "Beverage Request"},
				{ID: 5, Description: "Service"},
			},
			wantID: 3,
		},
		{
			name:  "serviceFallbackLast",
			drink: "Kombucha",
			calls: []CallDefinition{
				{ID: 5, Description: "Service"},
			},
			wantID: 5,
		},
	}

	m := NewMatcher(apt.NewNoopLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call, err := m.Match(tt.drink, tt.calls)
			if err != nil {
				t.Fatalf("Match() error = %v", err)
			}
			if call.ID != tt.wantID {
				t.Errorf("Match() id = %d, want %d", call.ID, tt.wantID)
			}
		})
	}
}

func TestMatcherMatchUnsupportedDrink(t *testing.T) {
	tests := []struct {
		name  string
		drink string
		calls []CallDefinition
	}{
		{
			name:  "emptyCallList",
			drink: "Coffee",
			calls: nil,
		},
		{
			name:  "noRuleHits",
			drink: "Coffee",
			calls: []CallDefinition{
				{ID: 7, Description: "sandwich"},
				{ID: 8, Description: "cleanup"},
			},
		},
	}

	m := NewMatcher(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Match(tt.drink, tt.calls)
			if !errors.Is(err, ErrUnsupportedDrink) {
				t.Errorf("Match() error = %v, want ErrUnsupportedDrink", err)
			}
		})
	}
}
