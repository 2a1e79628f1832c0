// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package kb

import (
	"sort"
	"strings"

	"github.com/agext/levenshtein"
)

// maxSuggestions bounds the names returned by Suggest.
const maxSuggestions = 3

// Suggest returns the candidates closest to name, best first. A candidate
// qualifies when its edit distance is at most a third of the longer name,
// or when one name contains the other.
func Suggest(name string, candidates []string) []string {
	if name == "" || len(candidates) == 0 {
		return nil
	}
	target := strings.ToLower(name)

	type match struct {
		name string
		dist int
	}
	var matches []match
	for _, c := range candidates {
		lc := strings.ToLower(c)
		if lc == target {
			continue
		}
		dist := levenshtein.Distance(target, lc, nil)
		maxLen := len(target)
		if len(lc) > maxLen {
			maxLen = len(lc)
		}
		if dist*3 <= maxLen || strings.Contains(lc, target) || strings.Contains(target, lc) {
			matches = append(matches, match{name: c, dist: dist})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].dist < matches[j].dist
	})
	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.name
	}
	return out
}
