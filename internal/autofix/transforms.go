package autofix

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ginjaninja78/gridcheck/internal/dateutil"
	"github.com/ginjaninja78/gridcheck/internal/template"
)

// currencySymbols are stripped from numeric columns.
const currencySymbols = "$€£¥₹₽¢₱₩₦₴₿"

var (
	whitespaceRun    = regexp.MustCompile(`\s+`)
	thousandsPattern = regexp.MustCompile(`^-?[\d,]+\.?\d*$`)
)

// =============================================================================
// VALUE TRANSFORMS
// =============================================================================

func trimWhitespace(v string) string {
	return strings.TrimSpace(v)
}

// normalizeLineBreaks collapses CR, LF and any whitespace run to one space.
func normalizeLineBreaks(v string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(v, " "))
}

// removeSpecialChars deletes control characters other than tab, LF and CR.
func removeSpecialChars(v string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r <= 0x08, r == 0x0B, r == 0x0C, r >= 0x0E && r <= 0x1F, r == 0x7F:
			return -1
		}
		return r
	}, v)
}

func uppercase(v string) string {
	return strings.ToUpper(v)
}

// titleCase lowercases v and capitalizes the first letter of every
// whitespace-delimited word. Whitespace is kept as is.
func titleCase(v string) string {
	var b strings.Builder
	b.Grow(len(v))
	atWordStart := true
	for _, r := range strings.ToLower(v) {
		if unicode.IsSpace(r) {
			atWordStart = true
			b.WriteRune(r)
			continue
		}
		if atWordStart {
			r = unicode.ToUpper(r)
			atWordStart = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func removeCurrencySymbols(v string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if strings.ContainsRune(currencySymbols, r) {
			return -1
		}
		return r
	}, v))
}

func standardizeDate(v string) string {
	return dateutil.Standardize(v)
}

func removeThousandSeparators(v string) string {
	if !thousandsPattern.MatchString(v) {
		return v
	}
	return strings.ReplaceAll(v, ",", "")
}

// applyAlternativeLabels maps a synonym to its canonical value. Only synonym
// keys match; a case variant of a canonical value is left for validation to
// flag.
func applyAlternativeLabels(labels map[string]string, v string) string {
	if canonical, ok := labels[strings.ToLower(strings.TrimSpace(v))]; ok {
		return canonical
	}
	return v
}

// isCanonicalLabel reports whether v is exactly one of the column's
// synonym targets. Case steps skip such values so a mapped value is stable.
func isCanonicalLabel(col *template.ColumnRule, v string) bool {
	for _, canonical := range col.AlternativeLabels {
		if canonical == v {
			return true
		}
	}
	return false
}

// CleanText removes control characters and collapses whitespace, the
// rewrites every column gets.
func CleanText(v string) string {
	return normalizeLineBreaks(removeSpecialChars(v))
}

// CleanNumber strips currency symbols, thousand separators and whitespace.
// The validation engine uses it to decide whether a bad number is
// auto-fixable.
func CleanNumber(v string) string {
	v = removeCurrencySymbols(CleanText(v))
	v = strings.ReplaceAll(v, " ", "")
	return strings.ReplaceAll(v, ",", "")
}

// =============================================================================
// COLUMN PREDICATES
// =============================================================================

// IsCountryColumn reports whether a column holds country or region codes.
func IsCountryColumn(col *template.ColumnRule) bool {
	name := strings.ToLower(col.FieldName)
	if strings.Contains(name, "country") || strings.Contains(name, "nation") || strings.Contains(name, "region") {
		return true
	}
	key := template.CanonicalName(col.FieldName)
	if key == "cc" || key == "iso" {
		return true
	}

	if col.Type != template.TypeList || len(col.AllowedValues) == 0 {
		return false
	}
	for _, v := range col.AllowedValues {
		if n := utf8.RuneCountInString(strings.TrimSpace(v)); n < 2 || n > 3 {
			return false
		}
	}
	return true
}

// IsNameColumn reports whether a column holds personal or company names.
func IsNameColumn(col *template.ColumnRule) bool {
	name := strings.ToLower(col.FieldName)
	for _, w := range []string{"name", "first", "last", "middle"} {
		if strings.Contains(name, w) {
			return true
		}
	}
	switch template.CanonicalName(col.FieldName) {
	case "fname", "lname", "mname":
		return true
	}
	return false
}
