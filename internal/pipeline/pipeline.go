// Package pipeline builds the denormalized, soft-delete-aware, paginated
// views used by every listing endpoint. A view is an ordered list of pure
// query stages; composing one is side-effect-free and the result can be run
// both for a page and for the matching total count, sharing every filter
// stage so the two never disagree.
package pipeline

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/edukita/gametrack/internal/apperr"
	"gorm.io/gorm"
)

// Stage is one composable step of a view. Stages never mutate shared state;
// each application derives a new query from its input.
type Stage func(*gorm.DB) *gorm.DB

// Relation describes a join target reachable from a base table. JoinSQL
// carries the soft-delete guard in its ON clause so deleted relations are
// invisible to match and sort stages as well.
type Relation struct {
	Assoc      string // gorm association name used for hydration
	Table      string // joined table name
	JoinSQL    string
	SoftDelete bool
}

// Table names a base collection and whitelists its joinable relations and
// matchable fields. Referencing anything outside the whitelist is a
// configuration error at composition time, not a per-query failure.
type Table struct {
	Name      string
	Model     interface{}
	PK        string              // qualified primary key column, sort tiebreak
	Relations map[string]Relation // join name -> relation
	Fields    map[string]string   // predicate field -> qualified column
}

// SoftDeleteFilter excludes documents whose deleted_at is set. The composer
// injects it unconditionally as the first stage of every view so counts and
// pages can never see deleted rows.
func SoftDeleteFilter(table string) Stage {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(table + ".deleted_at IS NULL")
	}
}

// Hydrate loads a relation alongside each document. To-one relations are
// pointer fields, so an absent relation is null rather than an empty array.
func Hydrate(rel Relation) Stage {
	if rel.SoftDelete {
		return func(db *gorm.DB) *gorm.DB {
			return db.Preload(rel.Assoc, func(tx *gorm.DB) *gorm.DB {
				return tx.Where("deleted_at IS NULL")
			})
		}
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Preload(rel.Assoc)
	}
}

// View is a composed, immutable query plan.
type View struct {
	base   *Table
	joins  []Stage
	match  []Stage
	sort   Stage
	layout string
}

// Option configures a view during composition.
type Option func(*View) error

// WithJoin joins and hydrates a registered relation. The SQL join makes the
// relation's columns available to Match and Sort; the hydration fills the
// association on the scanned documents.
func WithJoin(name string) Option {
	return func(v *View) error {
		rel, ok := v.base.Relations[name]
		if !ok {
			return apperr.Configuration("table %s has no relation %q", v.base.Name, name)
		}
		join := rel.JoinSQL
		v.joins = append(v.joins, func(db *gorm.DB) *gorm.DB {
			return db.Joins(join)
		})
		v.joins = append(v.joins, Hydrate(rel))
		return nil
	}
}

// WithMatch appends a filter over the whitelisted fields. Match stages always
// run after every join stage so predicates can reference joined columns.
func WithMatch(p Predicate) Option {
	return func(v *View) error {
		sql, args, err := compile(p, v.base)
		if err != nil {
			return err
		}
		v.match = append(v.match, func(db *gorm.DB) *gorm.DB {
			return db.Where(sql, args...)
		})
		return nil
	}
}

// WithSort orders the page. The composer suffixes the base table's primary
// key ascending so pagination is stable across repeated calls.
func WithSort(field string, desc bool) Option {
	return func(v *View) error {
		col, ok := v.base.Fields[field]
		if !ok {
			return apperr.Configuration("table %s has no sortable field %q", v.base.Name, field)
		}
		dir := "ASC"
		if desc {
			dir = "DESC"
		}
		order := fmt.Sprintf("%s %s", col, dir)
		v.sort = func(db *gorm.DB) *gorm.DB {
			return db.Order(order)
		}
		return nil
	}
}

// WithDateFormat sets the layout used by Render to stringify timestamps,
// hydrated sub-documents included.
func WithDateFormat(layout string) Option {
	return func(v *View) error {
		v.layout = layout
		return nil
	}
}

// Compose assembles a view for a base table. The stage order is fixed:
// soft-delete filter, joins and hydration, match, then sort and the terminal
// paginate or count.
func Compose(base *Table, opts ...Option) (*View, error) {
	v := &View{base: base}
	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// prefix applies every stage shared by Page and Count.
func (v *View) prefix(db *gorm.DB) *gorm.DB {
	q := db.Model(v.base.Model)
	q = SoftDeleteFilter(v.base.Name)(q)
	for _, s := range v.joins {
		q = s(q)
	}
	for _, s := range v.match {
		q = s(q)
	}
	return q
}

// Page runs the view and scans one page into dest. Pages are 1-based; a
// perPage of zero disables pagination and returns everything.
func (v *View) Page(db *gorm.DB, page, perPage int, dest interface{}) error {
	q := v.prefix(db)
	if v.sort != nil {
		q = v.sort(q)
	}
	q = q.Order(v.base.PK + " ASC")
	if perPage > 0 {
		if page < 1 {
			page = 1
		}
		q = q.Offset((page - 1) * perPage).Limit(perPage)
	}
	return q.Find(dest).Error
}

// Count runs the view's shared stage prefix with a count terminal, so the
// total is always consistent with the pages Page returns.
func (v *View) Count(db *gorm.DB) (int64, error) {
	var n int64
	err := v.prefix(db).Count(&n).Error
	return n, err
}

// Render applies the view's date format to already-scanned documents and
// returns JSON-ready data. Without a configured layout it returns items
// untouched.
func (v *View) Render(items interface{}) interface{} {
	if v.layout == "" {
		return items
	}
	b, err := json.Marshal(items)
	if err != nil {
		return items
	}
	var doc interface{}
	if err := json.Unmarshal(b, &doc); err != nil {
		return items
	}
	return reformat(doc, v.layout)
}

// timestampKeys names the document fields Render may reformat. Free-text
// fields are never touched, even when their content happens to parse as a
// timestamp.
var timestampKeys = map[string]bool{
	"CreatedAt":  true,
	"UpdatedAt":  true,
	"created_at": true,
	"updated_at": true,
}

func reformat(doc interface{}, layout string) interface{} {
	switch d := doc.(type) {
	case map[string]interface{}:
		for k, val := range d {
			if s, ok := val.(string); ok {
				if timestampKeys[k] {
					if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
						d[k] = t.Format(layout)
					}
				}
				continue
			}
			d[k] = reformat(val, layout)
		}
		return d
	case []interface{}:
		for i := range d {
			d[i] = reformat(d[i], layout)
		}
		return d
	default:
		return doc
	}
}
