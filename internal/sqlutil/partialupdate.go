// Package sqlutil provides helpers for composing parameterized SQL fragments.
package sqlutil

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNoFields is returned when a partial update carries no fields.
var ErrNoFields = errors.New("no fields to update")

// PartialUpdate builds a SET clause for a partial update from a sparse
// field-map. columns maps field names to their target column names; fields
// missing from it keep their name as-is. Placeholders are numbered from $1
// and values are returned in placeholder order. Field names are sorted so
// the output is deterministic.
func PartialUpdate(fields map[string]any, columns map[string]string) (string, []any, error) {
	if len(fields) == 0 {
		return "", nil, ErrNoFields
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	assignments := make([]string, 0, len(names))
	values := make([]any, 0, len(names))
	for _, name := range names {
		column, ok := columns[name]
		if !ok {
			column = name
		}
		values = append(values, fields[name])
		assignments = append(assignments, fmt.Sprintf("%q = $%d", column, len(values)))
	}

	return strings.Join(assignments, ", "), values, nil
}
