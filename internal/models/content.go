package models

import (
	"regexp"
	"time"
)

// Known site sections. Other section names are accepted; these are the ones
// the site renders.
const (
	SectionHomepage = "homepage"
	SectionAbout    = "about"
	SectionContact  = "contact"
	SectionShop     = "shop"
	SectionEvents   = "events"
)

var sectionPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// ValidSection reports whether name can be used as a section key.
func ValidSection(name string) bool {
	return sectionPattern.MatchString(name)
}

// AdminContent is the free-form content blob of one site section. No schema
// is enforced; consumers substitute defaults for absent keys.
type AdminContent struct {
	Section   string         `json:"section" db:"section"`
	Content   map[string]any `json:"content" db:"content"`
	UpdatedAt time.Time      `json:"updatedAt" db:"updated_at"`
}
