package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Capitalize turns the provider's all-caps owner names into something
// presentable, e.g. "JOHN DOE" -> "John Doe".
func Capitalize(s string) string {
	return cases.Title(language.English).String(strings.ToLower(s))
}
