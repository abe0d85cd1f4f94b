package pitch

import (
	"sort"
	"strings"
)

// CategorySet is an unordered set of active pitch categories.
type CategorySet map[string]struct{}

// NewCategorySet builds a set from codes. Blank codes are ignored.
func NewCategorySet(codes ...string) CategorySet {
	s := make(CategorySet, len(codes))
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		s[c] = struct{}{}
	}
	return s
}

// ParseCategorySet parses a comma separated list such as "FF,SL".
func ParseCategorySet(list string) CategorySet {
	if list == "" {
		return CategorySet{}
	}
	return NewCategorySet(strings.Split(list, ",")...)
}

// Contains reports whether code is active.
func (s CategorySet) Contains(code string) bool {
	_, ok := s[code]
	return ok
}

// Sorted returns the members in ascending order.
func (s CategorySet) Sorted() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Key is a canonical string for the set, independent of insertion order.
func (s CategorySet) Key() string {
	return strings.Join(s.Sorted(), ",")
}

// Categories returns every distinct category in recs, sorted.
func Categories(recs []PitchRecord) []string {
	seen := make(CategorySet)
	for _, r := range recs {
		seen[r.CategoryOrUnknown()] = struct{}{}
	}
	return seen.Sorted()
}
