// Package textnorm canonicalizes spreadsheet cell values and column labels.
//
// Uploaded class forms decorate headers and cells with stray line breaks and
// runs of spaces ("Class\n記入例）2-1"). Every comparison in saiten goes
// through Text or Identity so that those variants collapse to one key.
package textnorm

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/width"
)

var lower = cases.Lower(language.Und)

// Text renders any cell value as a canonical string: nil becomes "", CR and
// LF become spaces, whitespace runs collapse to one space, and the result is
// trimmed. It never fails.
func Text(v any) string {
	s := raw(v)
	if s == "" {
		return ""
	}
	s = strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// Identity normalizes a value used as a matching key (email or student
// number): Text followed by Unicode lower-casing.
func Identity(v any) string {
	return lower.String(Text(v))
}

// Lower lower-cases s with the same Unicode rules Identity uses.
func Lower(s string) string {
	return lower.String(s)
}

// FoldedIdentity is Identity with full-width letters and digits folded to
// their ASCII forms first ("ＡＢＣ＠ｅｘ．ｊｐ" matches "abc@ex.jp").
func FoldedIdentity(v any) string {
	return lower.String(width.Fold.String(Text(v)))
}

// Columns normalizes every column label of a table, preserving order.
func Columns(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = Text(c)
	}
	return out
}

// raw stringifies a cell before normalization. Floats that hold whole
// numbers print without a fraction so a student number read as 1234.0
// still matches "1234".
func raw(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case float64:
		if math.IsNaN(t) {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return raw(float64(t))
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02 15:04:05")
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
