package render

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gogetdata/ggd-docs/internal/models"
)

var (
	rstSymbolsRe = regexp.MustCompile("([!-\\-/:-@\\[-`{-~])")
	leadingDotRe = regexp.MustCompile(`^\.`)
)

// Underline turns text into a reST level 1 headline
func Underline(text string) string {
	return text + "\n" + strings.Repeat("=", utf8.RuneCountInString(text))
}

// EscapeMarkup escapes reST special characters in text
func EscapeMarkup(text string) string {
	if text == "" {
		return text
	}
	text = rstSymbolsRe.ReplaceAllString(text, `\$1`)
	return leadingDotRe.ReplaceAllString(text, `\.`)
}

// FormatIdentifiers converts "prefix:value" identifiers into extlink
// references of the form "prefix: :prefix:`value`". The input must be a list
// of strings each holding at least one colon.
func FormatIdentifiers(v any) ([]string, error) {
	var items []any
	switch list := v.(type) {
	case []string:
		for _, s := range list {
			items = append(items, s)
		}
	case []any:
		items = list
	default:
		return nil, contractError("identifiers have to be given as list, got %T", v)
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, contractError("identifier has to be a string, got %T", item)
		}
		prefix, value, found := strings.Cut(s, ":")
		if !found {
			return nil, contractError("identifier %q needs at least one colon", s)
		}
		out = append(out, fmt.Sprintf("%s: :%s:`%s`", prefix, prefix, value))
	}
	return out, nil
}

func contractError(format string, args ...any) error {
	return models.NewError(models.ErrContract, "", fmt.Errorf(format, args...))
}

// escapeFilter is the template form of EscapeMarkup; absent values render empty
func escapeFilter(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return EscapeMarkup(s)
	default:
		return EscapeMarkup(fmt.Sprint(s))
	}
}
