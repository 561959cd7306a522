package db

import (
	"fmt"
	"strings"

	"github.com/trainhub/trainhub/internal/rbac"
)

// Columns maps scope fields to qualified column names for one query.
type Columns map[rbac.Field]string

// WhereClause renders scope as " WHERE a = $n AND b = $m", numbering
// placeholders after the arguments already present in args. An empty scope
// renders as an empty string.
func WhereClause(scope rbac.Scope, columns Columns, args []any) (string, []any) {
	conds := scope.Conditions()
	if len(conds) == 0 {
		return "", args
	}
	parts := make([]string, 0, len(conds))
	for _, c := range conds {
		column, ok := columns[c.Field]
		if !ok {
			column = string(c.Field)
		}
		args = append(args, c.Value)
		parts = append(parts, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}
