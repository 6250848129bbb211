package orm

import (
	"fmt"
	"sort"
)

// App identifies the Quickbase application a table lives in.
type App struct {
	ID            string `json:"id"`
	Name          string `json:"name,omitempty"`
	RealmHostname string `json:"realmHostname"`
}

// Report is a saved report on a table.
type Report struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Table is an immutable table definition: remote id, owning app, schema and
// saved reports.
type Table struct {
	id      string
	name    string
	app     App
	schema  *Schema
	reports map[string]Report
}

// TableOption configures a table definition.
type TableOption func(*Table)

// WithTableName sets the display name of the table.
func WithTableName(name string) TableOption {
	return func(t *Table) {
		t.name = name
	}
}

// WithReports registers saved reports on the table, keyed by report name.
func WithReports(reports ...Report) TableOption {
	return func(t *Table) {
		for _, r := range reports {
			t.reports[r.Name] = r
		}
	}
}

// NewTable creates a table definition.
func NewTable(id string, app App, schema *Schema, opts ...TableOption) (*Table, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: table id is required", ErrInvalidSchema)
	}
	if schema == nil {
		return nil, fmt.Errorf("%w: table %s has no schema", ErrInvalidSchema, id)
	}

	t := &Table{
		id:      id,
		name:    id,
		app:     app,
		schema:  schema,
		reports: make(map[string]Report),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// MustTable is like NewTable but panics on error.
func MustTable(id string, app App, schema *Schema, opts ...TableOption) *Table {
	t, err := NewTable(id, app, schema, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// ID returns the remote table id (dbid).
func (t *Table) ID() string { return t.id }

// Name returns the table's display name.
func (t *Table) Name() string { return t.name }

// App returns the owning application.
func (t *Table) App() App { return t.app }

// AppID returns the owning application's id.
func (t *Table) AppID() string { return t.app.ID }

// RealmHostname returns the realm the table's app belongs to.
func (t *Table) RealmHostname() string { return t.app.RealmHostname }

// Schema returns the table schema.
func (t *Table) Schema() *Schema { return t.schema }

// Field returns the field declared under the attribute name.
func (t *Table) Field(name string) (Field, error) {
	f, err := t.schema.Field(name)
	if err != nil {
		return Field{}, &UnknownFieldError{Table: t.id, Attribute: name}
	}
	return f, nil
}

// Attr returns the attribute name bound to a field id.
func (t *Table) Attr(id int) (string, error) {
	name, err := t.schema.Attr(id)
	if err != nil {
		return "", &UnknownFieldIDError{Table: t.id, FieldID: id}
	}
	return name, nil
}

// Report returns a saved report by name.
func (t *Table) Report(name string) (Report, error) {
	r, ok := t.reports[name]
	if !ok {
		return Report{}, &UnknownReportError{Table: t.id, Report: name}
	}
	return r, nil
}

// Reports returns the saved reports sorted by name.
func (t *Table) Reports() []Report {
	out := make([]Report, 0, len(t.reports))
	for _, r := range t.reports {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (t *Table) String() string {
	return fmt.Sprintf("table %s (%s) in app %s", t.name, t.id, t.app.ID)
}
