package core

import (
	"sort"
	"strings"
)

// DefaultCategories is the seed set offered before any expense exists.
// Categories are an open string domain: the ledger never constrains the
// values, it only remembers what has been used.
var DefaultCategories = []string{
	"Food",
	"Home",
	"Transport",
	"Entertainment",
	"Health",
	"Education",
	"Other",
}

// DefaultCategory is the value assigned to records adopted from a legacy
// store that predates the category column.
const DefaultCategory = "Other"

// SuggestedCategories merges the default seed set with the categories
// observed in the ledger, deduplicated and sorted.
func SuggestedCategories(observed []string) []string {
	seen := make(map[string]struct{}, len(DefaultCategories)+len(observed))
	out := make([]string, 0, len(DefaultCategories)+len(observed))
	for _, c := range DefaultCategories {
		seen[c] = struct{}{}
		out = append(out, c)
	}
	for _, c := range observed {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
