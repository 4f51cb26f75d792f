package checker

import (
	"mlccheck/internal/annotation"
)

// ModeSet is one effective (mode, tokens) pair to validate.
type ModeSet struct {
	Mode   string
	Tokens []annotation.Token
}

// MergeModes expands deinit buckets into the execution paths to check.
// Tokens under the default mode "" apply to every path. When named modes
// exist, each yields its own set prefixed by the default-mode tokens, in the
// order the modes first appeared; otherwise a single default-mode set is
// returned. The result is never empty.
func MergeModes(b *ModeBuckets) []ModeSet {
	always, _ := b.Get("")

	var sets []ModeSet
	for _, mode := range b.Modes() {
		if mode == "" {
			continue
		}
		own, _ := b.Get(mode)
		merged := make([]annotation.Token, 0, len(always)+len(own))
		merged = append(merged, always...)
		merged = append(merged, own...)
		sets = append(sets, ModeSet{Mode: mode, Tokens: merged})
	}
	if len(sets) == 0 {
		sets = append(sets, ModeSet{Mode: "", Tokens: append([]annotation.Token(nil), always...)})
	}
	return sets
}

// checkMatch requires a and b to hold the same distinct payload values.
// Checks run in a fixed order: uniqueness of a, uniqueness of b, the first b
// value missing from a, the first a value missing from b.
func checkMatch(a []annotation.Token, aName string, b []annotation.Token, bName string, anchor annotation.Token, mode string) *Diagnostic {
	aSet, dup, ok := valueSet(a)
	if !ok {
		return errorAt(ClassMatch, anchor, "%s not unique (repeating \"%s\")", aName, dup).inMode(mode)
	}
	bSet, dup, ok := valueSet(b)
	if !ok {
		return errorAt(ClassMatch, anchor, "%s not unique (repeating \"%s\")", bName, dup).inMode(mode)
	}
	for _, t := range b {
		if _, found := aSet[t.Value]; !found {
			return errorAt(ClassMatch, anchor, "\"%s\": %s, but not %s", t.Value, bName, aName).inMode(mode)
		}
	}
	for _, t := range a {
		if _, found := bSet[t.Value]; !found {
			return errorAt(ClassMatch, anchor, "\"%s\": %s, but not %s", t.Value, aName, bName).inMode(mode)
		}
	}
	return nil
}

// valueSet collects payload values, reporting the first repeated one.
func valueSet(tokens []annotation.Token) (map[string]struct{}, string, bool) {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, seen := set[t.Value]; seen {
			return nil, t.Value, false
		}
		set[t.Value] = struct{}{}
	}
	return set, "", true
}
