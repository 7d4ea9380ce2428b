package services

import (
	"path"
	"strings"
)

// EntityFilter restricts detect/fill processing to entities matching any
// include substring and no exclude substring. Matching is case-insensitive.
type EntityFilter struct {
	Include []string
	Exclude []string
}

// Empty reports whether the filter passes everything.
func (f EntityFilter) Empty() bool {
	return len(f.Include) == 0 && len(f.Exclude) == 0
}

// Match reports whether the entity passes the filter.
func (f EntityFilter) Match(entity string) bool {
	lower := strings.ToLower(entity)
	if len(f.Include) > 0 {
		ok := false
		for _, p := range f.Include {
			if strings.Contains(lower, strings.ToLower(p)) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, p := range f.Exclude {
		if strings.Contains(lower, strings.ToLower(p)) {
			return false
		}
	}
	return true
}

// String describes the filter for logs.
func (f EntityFilter) String() string {
	var parts []string
	if len(f.Include) > 0 {
		parts = append(parts, "include: "+strings.Join(f.Include, ", "))
	}
	if len(f.Exclude) > 0 {
		parts = append(parts, "exclude: "+strings.Join(f.Exclude, ", "))
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, "; ") + ")"
}

// GlobFilter restricts transform inference by shell-style entity patterns.
type GlobFilter struct {
	Include []string
	Exclude []string
}

// Match reports whether the entity passes the glob filter.
func (f GlobFilter) Match(entity string) bool {
	if len(f.Include) > 0 {
		ok := false
		for _, p := range f.Include {
			if matched, err := path.Match(p, entity); err == nil && matched {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, p := range f.Exclude {
		if matched, err := path.Match(p, entity); err == nil && matched {
			return false
		}
	}
	return true
}
