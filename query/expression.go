// Package query builds Quickbase where-strings and query requests.
//
// Comparisons render as {'<field id>'.<operator>.<literal>} and combine with
// And and Or:
//
//	expr := query.And(
//		query.Or(query.Eq(count, 19), query.Eq(count, 21)),
//		query.OnOrBefore(due, time.Date(2020, 2, 7, 0, 0, 0, 0, time.UTC)),
//	)
//	expr.Where() // (({'18'.EX.19}OR{'18'.EX.21})AND{'19'.OBF.'02-07-2020'})
package query

import (
	"sort"
	"strconv"
	"strings"

	"github.com/BrobridgeOrg/go-quickbase/orm"
)

// ExprOp represents an expression operator.
type ExprOp int

const (
	OpAnd ExprOp = iota
	OpOr
	OpContains
	OpNotContains
	OpHas
	OpNotHas
	OpEq
	OpNotEq
	OpTrue
	OpStartsWith
	OpNotStartsWith
	OpBefore
	OpOnOrBefore
	OpAfter
	OpOnOrAfter
	OpDuring
	OpNotDuring
	OpLt
	OpLte
	OpGt
	OpGte
)

var opCodes = map[ExprOp]string{
	OpAnd:           "AND",
	OpOr:            "OR",
	OpContains:      "CT",
	OpNotContains:   "XCT",
	OpHas:           "HAS",
	OpNotHas:        "XHAS",
	OpEq:            "EX",
	OpNotEq:         "XEX",
	OpTrue:          "TV",
	OpStartsWith:    "SW",
	OpNotStartsWith: "XSW",
	OpBefore:        "BF",
	OpOnOrBefore:    "OBF",
	OpAfter:         "AF",
	OpOnOrAfter:     "OAF",
	OpDuring:        "IR",
	OpNotDuring:     "XIR",
	OpLt:            "LT",
	OpLte:           "LTE",
	OpGt:            "GT",
	OpGte:           "GTE",
}

// String returns the operator code used in where-strings.
func (op ExprOp) String() string {
	if code, ok := opCodes[op]; ok {
		return code
	}
	return "UNKNOWN"
}

// IsConjunction reports whether op combines child expressions.
func (op ExprOp) IsConjunction() bool {
	return op == OpAnd || op == OpOr
}

// Expression is a node of a where-string expression tree: either a
// comparison of one field against a value, or a conjunction of children.
type Expression struct {
	Op       ExprOp
	Field    orm.Field
	Value    any
	Children []*Expression
}

// Where renders the expression as a Quickbase where-string. Nil children of
// a conjunction are skipped; a conjunction left with one child renders as
// that child.
func (e *Expression) Where() string {
	s, _ := e.render()
	return s
}

type rendering int

const (
	renderLeaf    rendering = iota // a single {...} comparison, or nothing
	renderBare                     // children joined without parentheses
	renderWrapped                  // already enclosed in parentheses
)

// render returns the where-string and its shape. A bare child conjunction
// is wrapped once; a conjunction with any conjunction child is itself
// wrapped.
func (e *Expression) render() (string, rendering) {
	if e == nil {
		return "", renderLeaf
	}
	if !e.Op.IsConjunction() {
		return "{'" + strconv.Itoa(e.Field.ID) + "'." + e.Op.String() + "." + e.Field.Literal(e.Value) + "}", renderLeaf
	}

	parts := make([]string, 0, len(e.Children))
	shapes := make([]rendering, 0, len(e.Children))
	for _, child := range e.Children {
		s, shape := child.render()
		if s == "" {
			continue
		}
		parts = append(parts, s)
		shapes = append(shapes, shape)
	}
	switch len(parts) {
	case 0:
		return "", renderLeaf
	case 1:
		return parts[0], shapes[0]
	}

	wrapped := false
	for i, shape := range shapes {
		switch shape {
		case renderBare:
			parts[i] = "(" + parts[i] + ")"
			wrapped = true
		case renderWrapped:
			wrapped = true
		}
	}
	joined := strings.Join(parts, e.Op.String())
	if wrapped {
		return "(" + joined + ")", renderWrapped
	}
	return joined, renderBare
}

// String returns the where-string.
func (e *Expression) String() string {
	return e.Where()
}

// Query returns a query filtered by the expression.
func (e *Expression) Query() Query {
	return New(e.Where())
}

// FieldIDs returns the sorted ids of every field the expression references.
func (e *Expression) FieldIDs() []int {
	seen := make(map[int]struct{})
	e.collect(seen)

	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (e *Expression) collect(seen map[int]struct{}) {
	if e == nil {
		return
	}
	if !e.Op.IsConjunction() {
		seen[e.Field.ID] = struct{}{}
		return
	}
	for _, c := range e.Children {
		c.collect(seen)
	}
}

// Clone creates a deep copy of the expression.
func (e *Expression) Clone() *Expression {
	if e == nil {
		return nil
	}

	clone := &Expression{
		Op:    e.Op,
		Field: e.Field,
		Value: e.Value,
	}
	if len(e.Children) > 0 {
		clone.Children = make([]*Expression, len(e.Children))
		for i, c := range e.Children {
			clone.Children[i] = c.Clone()
		}
	}
	return clone
}

func compare(op ExprOp, field orm.Field, value any) *Expression {
	return &Expression{Op: op, Field: field, Value: value}
}

func conjunction(op ExprOp, a, b *Expression, more []*Expression) *Expression {
	children := make([]*Expression, 0, 2+len(more))
	children = append(children, a, b)
	children = append(children, more...)
	return &Expression{Op: op, Children: children}
}

// And combines two or more expressions with AND.
func And(a, b *Expression, more ...*Expression) *Expression {
	return conjunction(OpAnd, a, b, more)
}

// Or combines two or more expressions with OR.
func Or(a, b *Expression, more ...*Expression) *Expression {
	return conjunction(OpOr, a, b, more)
}

// Contains matches fields containing value (CT).
func Contains(f orm.Field, value any) *Expression { return compare(OpContains, f, value) }

// NotContains matches fields not containing value (XCT).
func NotContains(f orm.Field, value any) *Expression { return compare(OpNotContains, f, value) }

// Has matches list fields holding value (HAS).
func Has(f orm.Field, value any) *Expression { return compare(OpHas, f, value) }

// NotHas matches list fields not holding value (XHAS).
func NotHas(f orm.Field, value any) *Expression { return compare(OpNotHas, f, value) }

// Eq matches fields equal to value (EX).
func Eq(f orm.Field, value any) *Expression { return compare(OpEq, f, value) }

// NotEq matches fields not equal to value (XEX).
func NotEq(f orm.Field, value any) *Expression { return compare(OpNotEq, f, value) }

// True matches fields whose value is true (TV).
func True(f orm.Field, value any) *Expression { return compare(OpTrue, f, value) }

// StartsWith matches fields starting with value (SW).
func StartsWith(f orm.Field, value any) *Expression { return compare(OpStartsWith, f, value) }

// NotStartsWith matches fields not starting with value (XSW).
func NotStartsWith(f orm.Field, value any) *Expression { return compare(OpNotStartsWith, f, value) }

// Before matches dates before value (BF).
func Before(f orm.Field, value any) *Expression { return compare(OpBefore, f, value) }

// OnOrBefore matches dates on or before value (OBF).
func OnOrBefore(f orm.Field, value any) *Expression { return compare(OpOnOrBefore, f, value) }

// After matches dates after value (AF).
func After(f orm.Field, value any) *Expression { return compare(OpAfter, f, value) }

// OnOrAfter matches dates on or after value (OAF).
func OnOrAfter(f orm.Field, value any) *Expression { return compare(OpOnOrAfter, f, value) }

// During matches dates within the named range (IR).
func During(f orm.Field, value any) *Expression { return compare(OpDuring, f, value) }

// NotDuring matches dates outside the named range (XIR).
func NotDuring(f orm.Field, value any) *Expression { return compare(OpNotDuring, f, value) }

// Lt matches values less than value (LT).
func Lt(f orm.Field, value any) *Expression { return compare(OpLt, f, value) }

// Lte matches values less than or equal to value (LTE).
func Lte(f orm.Field, value any) *Expression { return compare(OpLte, f, value) }

// Gt matches values greater than value (GT).
func Gt(f orm.Field, value any) *Expression { return compare(OpGt, f, value) }

// Gte matches values greater than or equal to value (GTE).
func Gte(f orm.Field, value any) *Expression { return compare(OpGte, f, value) }

// ExprBuilder builds comparisons against one field.
type ExprBuilder struct {
	field orm.Field
}

// On creates an expression builder for the given field.
func On(f orm.Field) *ExprBuilder {
	return &ExprBuilder{field: f}
}

func (b *ExprBuilder) Contains(v any) *Expression      { return Contains(b.field, v) }
func (b *ExprBuilder) NotContains(v any) *Expression   { return NotContains(b.field, v) }
func (b *ExprBuilder) Has(v any) *Expression           { return Has(b.field, v) }
func (b *ExprBuilder) NotHas(v any) *Expression        { return NotHas(b.field, v) }
func (b *ExprBuilder) Eq(v any) *Expression            { return Eq(b.field, v) }
func (b *ExprBuilder) NotEq(v any) *Expression         { return NotEq(b.field, v) }
func (b *ExprBuilder) True(v any) *Expression          { return True(b.field, v) }
func (b *ExprBuilder) StartsWith(v any) *Expression    { return StartsWith(b.field, v) }
func (b *ExprBuilder) NotStartsWith(v any) *Expression { return NotStartsWith(b.field, v) }
func (b *ExprBuilder) Before(v any) *Expression        { return Before(b.field, v) }
func (b *ExprBuilder) OnOrBefore(v any) *Expression    { return OnOrBefore(b.field, v) }
func (b *ExprBuilder) After(v any) *Expression         { return After(b.field, v) }
func (b *ExprBuilder) OnOrAfter(v any) *Expression     { return OnOrAfter(b.field, v) }
func (b *ExprBuilder) During(v any) *Expression        { return During(b.field, v) }
func (b *ExprBuilder) NotDuring(v any) *Expression     { return NotDuring(b.field, v) }
func (b *ExprBuilder) Lt(v any) *Expression            { return Lt(b.field, v) }
func (b *ExprBuilder) Lte(v any) *Expression           { return Lte(b.field, v) }
func (b *ExprBuilder) Gt(v any) *Expression            { return Gt(b.field, v) }
func (b *ExprBuilder) Gte(v any) *Expression           { return Gte(b.field, v) }
