package tiling

import "strings"

// Rule controls how windows of a given class are managed. Rules apply
// at manage time only; changing them does not re-evaluate existing
// tiles.
type Rule struct {
	// Class is the window class to match. An empty class never matches.
	Class string `yaml:"class"`

	// Ignore prevents matching windows from being managed at all.
	Ignore bool `yaml:"ignore"`

	// Floating starts matching windows in floating mode.
	Floating bool `yaml:"floating"`
}

// Matches reports whether the rule applies to the given window class.
// Matching is case-insensitive; X11 clients are not consistent about
// class capitalization.
func (r Rule) Matches(class string) bool {
	return r.Class != "" && strings.EqualFold(r.Class, class)
}
