package orm

import (
	"fmt"
	"strings"
)

// Attribute binds an attribute name to a field descriptor.
type Attribute struct {
	Name  string
	Field Field
}

// Define declares an attribute for NewSchema.
func Define(name string, field Field) Attribute {
	return Attribute{Name: name, Field: field}
}

// Schema is an ordered, immutable mapping from attribute names to fields.
type Schema struct {
	attrs  []Attribute
	byName map[string]int
	byID   map[int]int
}

// NewSchema creates a schema from the given attributes. Attribute names and
// field ids must both be unique.
func NewSchema(attrs ...Attribute) (*Schema, error) {
	s := &Schema{
		attrs:  make([]Attribute, 0, len(attrs)),
		byName: make(map[string]int, len(attrs)),
		byID:   make(map[int]int, len(attrs)),
	}

	for _, a := range attrs {
		if strings.TrimSpace(a.Name) == "" {
			return nil, &InvalidFieldError{Attribute: a.Name, Message: "empty attribute name"}
		}
		if a.Field.ID <= 0 {
			return nil, &InvalidFieldError{Attribute: a.Name, Message: fmt.Sprintf("field id must be positive, got %d", a.Field.ID)}
		}
		if _, ok := s.byName[a.Name]; ok {
			return nil, &DuplicateFieldError{Attribute: a.Name}
		}
		if i, ok := s.byID[a.Field.ID]; ok {
			return nil, &DuplicateFieldIDError{FieldID: a.Field.ID, Attributes: [2]string{s.attrs[i].Name, a.Name}}
		}
		s.byName[a.Name] = len(s.attrs)
		s.byID[a.Field.ID] = len(s.attrs)
		s.attrs = append(s.attrs, a)
	}

	return s, nil
}

// MustSchema is like NewSchema but panics on error.
func MustSchema(attrs ...Attribute) *Schema {
	s, err := NewSchema(attrs...)
	if err != nil {
		panic(err)
	}
	return s
}

// Field returns the field declared under name.
func (s *Schema) Field(name string) (Field, error) {
	i, ok := s.byName[name]
	if !ok {
		return Field{}, &UnknownFieldError{Attribute: name}
	}
	return s.attrs[i].Field, nil
}

// Attr returns the attribute name of the field with the given id.
func (s *Schema) Attr(id int) (string, error) {
	i, ok := s.byID[id]
	if !ok {
		return "", &UnknownFieldIDError{FieldID: id}
	}
	return s.attrs[i].Name, nil
}

// Has reports whether name is declared in the schema.
func (s *Schema) Has(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// Attributes returns the attribute names in declaration order.
func (s *Schema) Attributes() []string {
	names := make([]string, len(s.attrs))
	for i, a := range s.attrs {
		names[i] = a.Name
	}
	return names
}

// Fields returns the field descriptors in declaration order.
func (s *Schema) Fields() []Field {
	fields := make([]Field, len(s.attrs))
	for i, a := range s.attrs {
		fields[i] = a.Field
	}
	return fields
}

// FieldIDs returns the field ids in declaration order.
func (s *Schema) FieldIDs() []int {
	ids := make([]int, len(s.attrs))
	for i, a := range s.attrs {
		ids[i] = a.Field.ID
	}
	return ids
}

// Len returns the number of attributes.
func (s *Schema) Len() int {
	return len(s.attrs)
}

func (s *Schema) String() string {
	parts := make([]string, len(s.attrs))
	for i, a := range s.attrs {
		parts[i] = a.Name + " " + a.Field.String()
	}
	return "schema<" + strings.Join(parts, ", ") + ">"
}
