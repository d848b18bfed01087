package pipeline

import (
	"strings"

	"github.com/edukita/gametrack/internal/apperr"
)

// Predicate is a tagged filter expression. Each variant is validated against
// the base table's field whitelist when the view is composed; the compiled
// SQL is bound parameters only.
type Predicate interface {
	pred()
}

// Eq matches documents whose field equals the value.
type Eq struct {
	Field string
	Value interface{}
}

// In matches documents whose field is a member of the set.
type In struct {
	Field  string
	Values []interface{}
}

// Contains matches documents whose text field contains the value,
// case-insensitively. Used for search boxes.
type Contains struct {
	Field string
	Value string
}

// Range matches documents whose field lies between Min and Max inclusive.
// A nil bound is open.
type Range struct {
	Field string
	Min   interface{}
	Max   interface{}
}

// And matches documents satisfying every sub-predicate.
type And []Predicate

// Or matches documents satisfying at least one sub-predicate.
type Or []Predicate

func (Eq) pred()       {}
func (In) pred()       {}
func (Contains) pred() {}
func (Range) pred()    {}
func (And) pred()      {}
func (Or) pred()       {}

func compile(p Predicate, t *Table) (string, []interface{}, error) {
	switch q := p.(type) {
	case Eq:
		col, err := t.column(q.Field)
		if err != nil {
			return "", nil, err
		}
		if q.Value == nil {
			return col + " IS NULL", nil, nil
		}
		return col + " = ?", []interface{}{q.Value}, nil

	case In:
		col, err := t.column(q.Field)
		if err != nil {
			return "", nil, err
		}
		return col + " IN ?", []interface{}{q.Values}, nil

	case Contains:
		col, err := t.column(q.Field)
		if err != nil {
			return "", nil, err
		}
		pattern := "%" + strings.ToLower(q.Value) + "%"
		return "LOWER(" + col + ") LIKE ?", []interface{}{pattern}, nil

	case Range:
		col, err := t.column(q.Field)
		if err != nil {
			return "", nil, err
		}
		var parts []string
		var args []interface{}
		if q.Min != nil {
			parts = append(parts, col+" >= ?")
			args = append(args, q.Min)
		}
		if q.Max != nil {
			parts = append(parts, col+" <= ?")
			args = append(args, q.Max)
		}
		if len(parts) == 0 {
			return "", nil, apperr.Configuration("range on %q has no bounds", q.Field)
		}
		return strings.Join(parts, " AND "), args, nil

	case And:
		return compileGroup([]Predicate(q), t, " AND ")

	case Or:
		return compileGroup([]Predicate(q), t, " OR ")

	default:
		return "", nil, apperr.Configuration("unknown predicate %T", p)
	}
}

func compileGroup(ps []Predicate, t *Table, sep string) (string, []interface{}, error) {
	if len(ps) == 0 {
		return "", nil, apperr.Configuration("empty predicate group")
	}
	var parts []string
	var args []interface{}
	for _, p := range ps {
		sql, a, err := compile(p, t)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		args = append(args, a...)
	}
	return "(" + strings.Join(parts, sep) + ")", args, nil
}

func (t *Table) column(field string) (string, error) {
	col, ok := t.Fields[field]
	if !ok {
		return "", apperr.Configuration("table %s has no matchable field %q", t.Name, field)
	}
	return col, nil
}
