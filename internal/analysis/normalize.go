package analysis

import (
	"fmt"
	"strconv"
	"strings"
)

// Normalize coerces a raw field value to a trimmed string. Nil yields "".
func Normalize(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// DedupeNonEmpty normalizes each value, drops blanks and removes exact
// (case-sensitive) duplicates, keeping first-seen order.
func DedupeNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		n := Normalize(v)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// labelSet is the distinct, non-blank labels of one garment field.
func labelSet(values []string) []Label {
	deduped := DedupeNonEmpty(values)
	labels := make([]Label, len(deduped))
	for i, v := range deduped {
		labels[i] = Label(v)
	}
	return labels
}
