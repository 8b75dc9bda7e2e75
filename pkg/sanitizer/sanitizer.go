package sanitizer

import (
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

func trim(s string) string {
	return strings.TrimSpace(s)
}

func lower(s string) string {
	return strings.ToLower(s)
}

func SanitizeEmail(input string) string {
	return Pipeline{trim, lower}.Apply(input)
}

// SanitizeSlot trims a slot or date identifier. The value is otherwise opaque.
func SanitizeSlot(input string) string {
	return Pipeline{trim}.Apply(input)
}

func SanitizeText(input string) string {
	return Pipeline{TrimAndNormalize}.Apply(input)
}
