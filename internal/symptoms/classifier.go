// Package symptoms maps free-text complaints to suggested lab test codes.
package symptoms

import (
	"sort"
	"strings"
)

type rule struct {
	keywords []string
	codes    []string
}

var directRules = []rule{
	{keywords: []string{"dizzy"}, codes: []string{"CBC", "IRON"}},
	{keywords: []string{"fever"}, codes: []string{"CBC", "CRP"}},
	{keywords: []string{"fatigue"}, codes: []string{"IRON", "B12"}},
	{keywords: []string{"jaundice"}, codes: []string{"LFT"}},
	{keywords: []string{"diabetes"}, codes: []string{"FBS", "HBA1C"}},
}

// Heuristics only run when no direct keyword matched and one of these
// appears in the text.
var heuristicTriggers = []string{"tired", "weak", "cold", "cough", "pain", "yellow", "sugar"}

var heuristicRules = []rule{
	{keywords: []string{"tired", "weak"}, codes: []string{"CBC", "IRON", "B12"}},
	{keywords: []string{"fever", "cold", "cough"}, codes: []string{"CBC", "CRP"}},
	{keywords: []string{"yellow"}, codes: []string{"LFT"}},
	{keywords: []string{"sugar"}, codes: []string{"FBS", "HBA1C"}},
}

// Set is an unordered collection of test codes.
type Set map[string]struct{}

func (s Set) add(codes ...string) {
	for _, c := range codes {
		s[c] = struct{}{}
	}
}

func (s Set) Has(code string) bool {
	_, ok := s[code]
	return ok
}

// Codes returns the members sorted, for stable output.
func (s Set) Codes() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Classify returns the union of tests suggested by every keyword in text.
func Classify(text string) Set {
	text = strings.ToLower(text)
	suggested := Set{}

	for _, r := range directRules {
		if containsAny(text, r.keywords) {
			suggested.add(r.codes...)
		}
	}
	if len(suggested) > 0 || !containsAny(text, heuristicTriggers) {
		return suggested
	}

	for _, r := range heuristicRules {
		if containsAny(text, r.keywords) {
			suggested.add(r.codes...)
		}
	}
	return suggested
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
