package utils

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile("[^a-z0-9]+")

// Slugify turns a display name into a machine key, e.g.
// "Form Template" + "approve" -> "form-template". Permission names use
// underscore joining via MachineKey below.
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// MachineKey builds a resource_action permission key.
func MachineKey(resource, action string) string {
	return strings.ReplaceAll(Slugify(resource), "-", "_") + "_" + strings.ReplaceAll(Slugify(action), "-", "_")
}
