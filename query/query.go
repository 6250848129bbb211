package query

// SortOrder is the direction of a sort field.
type SortOrder string

const (
	Asc  SortOrder = "ASC"
	Desc SortOrder = "DESC"
)

// Grouping is how a group-by field buckets values.
type Grouping string

const (
	GroupEqualValues Grouping = "equal-values"
	GroupFirstWord   Grouping = "first-word"
	GroupFirstLetter Grouping = "first-letter"
)

// SortField orders results by one field.
type SortField struct {
	FieldID int       `json:"fieldId"`
	Order   SortOrder `json:"order"`
}

// GroupField groups results by one field.
type GroupField struct {
	FieldID  int      `json:"fieldId"`
	Grouping Grouping `json:"grouping"`
}

// Options controls paging and time comparison of a query.
type Options struct {
	Skip                    int  `json:"skip,omitempty"`
	Top                     int  `json:"top,omitempty"`
	CompareWithAppLocalTime bool `json:"compareWithAppLocalTime,omitempty"`
}

// Request is the body of POST /records/query.
type Request struct {
	From    string       `json:"from"`
	Where   string       `json:"where,omitempty"`
	Select  []int        `json:"select,omitempty"`
	SortBy  []SortField  `json:"sortBy,omitempty"`
	GroupBy []GroupField `json:"groupBy,omitempty"`
	Options *Options     `json:"options,omitempty"`
}

// Query is an immutable query description. Every builder method returns a
// modified copy.
type Query struct {
	where   string
	selects []int
	sortBy  []SortField
	groupBy []GroupField
	options Options
}

// New creates a query filtered by a where-string.
func New(where string) Query {
	return Query{where: where}
}

// Raw wraps a hand-written where-string without validating it.
func Raw(where string) Query {
	return New(where)
}

// FromFunc wraps the where-string produced by fn.
func FromFunc(fn func() string) Query {
	return New(fn())
}

// Where returns the where-string.
func (q Query) Where() string { return q.where }

// Fields returns the selected field ids.
func (q Query) Fields() []int { return append([]int(nil), q.selects...) }

// Sorting returns the sort fields.
func (q Query) Sorting() []SortField { return append([]SortField(nil), q.sortBy...) }

// Grouping returns the group-by fields.
func (q Query) Grouping() []GroupField { return append([]GroupField(nil), q.groupBy...) }

// Options returns the query options.
func (q Query) Options() Options { return q.options }

// IsEmpty reports whether the query has neither a filter nor a select list.
func (q Query) IsEmpty() bool {
	return q.where == "" && len(q.selects) == 0
}

func (q Query) clone() Query {
	q.selects = append([]int(nil), q.selects...)
	q.sortBy = append([]SortField(nil), q.sortBy...)
	q.groupBy = append([]GroupField(nil), q.groupBy...)
	return q
}

// Filter returns a copy with the where-string replaced.
func (q Query) Filter(where string) Query {
	c := q.clone()
	c.where = where
	return c
}

// Select returns a copy selecting the given field ids in addition to any
// already selected.
func (q Query) Select(ids ...int) Query {
	c := q.clone()
	c.selects = append(c.selects, ids...)
	return c
}

// SortBy returns a copy that also sorts by field id.
func (q Query) SortBy(id int, order SortOrder) Query {
	c := q.clone()
	c.sortBy = append(c.sortBy, SortField{FieldID: id, Order: order})
	return c
}

// GroupBy returns a copy that also groups by field id.
func (q Query) GroupBy(id int, grouping Grouping) Query {
	c := q.clone()
	c.groupBy = append(c.groupBy, GroupField{FieldID: id, Grouping: grouping})
	return c
}

// Skip returns a copy that skips the first n records.
func (q Query) Skip(n int) Query {
	c := q.clone()
	c.options.Skip = n
	return c
}

// Top returns a copy returning at most n records.
func (q Query) Top(n int) Query {
	c := q.clone()
	c.options.Top = n
	return c
}

// CompareWithAppLocalTime returns a copy with app-local date comparison set.
func (q Query) CompareWithAppLocalTime(v bool) Query {
	c := q.clone()
	c.options.CompareWithAppLocalTime = v
	return c
}

// Request builds the POST /records/query body for the table id.
func (q Query) Request(from string) *Request {
	c := q.clone()
	req := &Request{
		From:  from,
		Where: c.where,
	}
	if len(c.selects) > 0 {
		req.Select = c.selects
	}
	if len(c.sortBy) > 0 {
		req.SortBy = c.sortBy
	}
	if len(c.groupBy) > 0 {
		req.GroupBy = c.groupBy
	}
	if c.options != (Options{}) {
		opts := c.options
		req.Options = &opts
	}
	return req
}
