package rbac

// Field names a column a scope may constrain.
type Field string

const (
	FieldID     Field = "id"
	FieldUserID Field = "user_id"
)

// Condition is a single equality predicate.
type Condition struct {
	Field Field
	Value int64
}

// Scope is an AND-composed set of equality predicates restricting which
// records an operation may see. The zero Scope matches everything.
type Scope struct {
	conds []Condition
}

// Where returns a copy of s narrowed by field = value.
func (s Scope) Where(field Field, value int64) Scope {
	conds := make([]Condition, len(s.conds), len(s.conds)+1)
	copy(conds, s.conds)
	return Scope{conds: append(conds, Condition{Field: field, Value: value})}
}

// WhereOptional narrows s only when value is set.
func (s Scope) WhereOptional(field Field, value *int64) Scope {
	if value == nil {
		return s
	}
	return s.Where(field, *value)
}

// Conditions lists the predicates in the order they were added.
func (s Scope) Conditions() []Condition {
	out := make([]Condition, len(s.conds))
	copy(out, s.conds)
	return out
}

// Matches evaluates the scope against a record's id and owner.
func (s Scope) Matches(id, userID int64) bool {
	for _, c := range s.conds {
		switch c.Field {
		case FieldID:
			if id != c.Value {
				return false
			}
		case FieldUserID:
			if userID != c.Value {
				return false
			}
		}
	}
	return true
}

// Filters are the optional list query parameters shared by contracts and schedules.
type Filters struct {
	ID   *int64
	User *int64
}
