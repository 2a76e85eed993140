/*
 *  Copyright (c) 2021 Neil Alexander
 *
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package filter classifies mail bodies into categories using an ordered
// list of keyword rules.
package filter

import (
	"errors"
	"fmt"
	"strings"
)

// None is returned by Classify when no rule matches.
const None = "none"

var ErrInvalidRule = errors.New("invalid filter rule")

// Names that a category may not take because mailboxes already use them.
var reserved = []string{None, "inbox", "sent", "urgent"}

// Rule files mail containing any of Keywords under Category.
type Rule struct {
	Category string
	Keywords []string
}

// Engine holds the configured rules. It is read-only after New and is shared
// by every mailbox in a network.
type Engine struct {
	rules []Rule
}

// DefaultRules returns the stock promotions, work and personal rules.
func DefaultRules() []Rule {
	return []Rule{
		{Category: "promotions", Keywords: []string{"oferta", "rebaja", "promo"}},
		{Category: "work", Keywords: []string{"curriculum", "empleo", "entrevista"}},
		{Category: "personal", Keywords: []string{"hola", "como estas", "familia"}},
	}
}

// New validates the rules and returns an engine that applies them in the
// given order. Keywords are matched case-insensitively.
func New(rules []Rule) (*Engine, error) {
	e := &Engine{
		rules: make([]Rule, 0, len(rules)),
	}
	seen := make(map[string]struct{}, len(rules))
	for i, rule := range rules {
		category := strings.TrimSpace(rule.Category)
		if category == "" {
			return nil, fmt.Errorf("%w: rule %d has no category", ErrInvalidRule, i)
		}
		key := strings.ToLower(category)
		for _, name := range reserved {
			if key == name {
				return nil, fmt.Errorf("%w: category %q is a reserved name", ErrInvalidRule, category)
			}
		}
		if _, ok := seen[key]; ok {
			return nil, fmt.Errorf("%w: category %q appears twice", ErrInvalidRule, category)
		}
		seen[key] = struct{}{}
		if len(rule.Keywords) == 0 {
			return nil, fmt.Errorf("%w: category %q has no keywords", ErrInvalidRule, category)
		}
		keywords := make([]string, 0, len(rule.Keywords))
		for _, keyword := range rule.Keywords {
			if keyword == "" {
				return nil, fmt.Errorf("%w: category %q has an empty keyword", ErrInvalidRule, category)
			}
			keywords = append(keywords, strings.ToLower(keyword))
		}
		e.rules = append(e.rules, Rule{Category: category, Keywords: keywords})
	}
	return e, nil
}

// MustNew is New for rule sets known to be valid, such as DefaultRules.
func MustNew(rules []Rule) *Engine {
	e, err := New(rules)
	if err != nil {
		panic(err)
	}
	return e
}

// Classify returns the category of the first rule with a keyword contained
// anywhere in body, or None. Matching is on substrings, so "hola" matches
// inside "holaquetal".
func (e *Engine) Classify(body string) string {
	body = strings.ToLower(body)
	for _, rule := range e.rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(body, keyword) {
				return rule.Category
			}
		}
	}
	return None
}

// Categories returns the category names in rule order.
func (e *Engine) Categories() []string {
	categories := make([]string, 0, len(e.rules))
	for _, rule := range e.rules {
		categories = append(categories, rule.Category)
	}
	return categories
}

// Rules returns a copy of the normalised rules.
func (e *Engine) Rules() []Rule {
	rules := make([]Rule, 0, len(e.rules))
	for _, rule := range e.rules {
		rules = append(rules, Rule{
			Category: rule.Category,
			Keywords: append([]string(nil), rule.Keywords...),
		})
	}
	return rules
}
