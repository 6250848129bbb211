// Package orm implements the Quickbase table model: field types, field
// descriptors, schemas, table definitions, records and their wire format.
package orm

import (
	"fmt"
	"strings"
)

// FieldType is the declared type of a Quickbase field. Its value is the field
// type name used by the Quickbase JSON API.
type FieldType string

const (
	TypeText               FieldType = "text"
	TypeTextMultiLine      FieldType = "text-multi-line"
	TypeTextMultipleChoice FieldType = "text-multiple-choice"
	TypeRichText           FieldType = "rich-text"
	TypeMultiSelectText    FieldType = "multitext"
	TypeEmail              FieldType = "email"
	TypeURL                FieldType = "url"
	TypePhone              FieldType = "phone"
	TypeNumeric            FieldType = "numeric"
	TypeCurrency           FieldType = "currency"
	TypePercent            FieldType = "percent"
	TypeRating             FieldType = "rating"
	TypeDate               FieldType = "date"
	TypeDateTime           FieldType = "timestamp"
	TypeTimeOfDay          FieldType = "timeofday"
	TypeDuration           FieldType = "duration"
	TypeCheckbox           FieldType = "checkbox"
	TypeUser               FieldType = "user"
	TypeMultiUser          FieldType = "multiuser"
	TypeAddress            FieldType = "address"
	TypeFile               FieldType = "file"
	TypeRecordID           FieldType = "recordid"
)

// ValueKind groups field types that share value handling: literal formatting,
// validation and JSON conversion all dispatch on it.
type ValueKind int

const (
	KindOpaque ValueKind = iota
	KindText
	KindNumeric
	KindDate
	KindDateTime
	KindDuration
	KindBoolean
	KindList
)

// String returns the string representation of the kind.
func (k ValueKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumeric:
		return "numeric"
	case KindDate:
		return "date"
	case KindDateTime:
		return "datetime"
	case KindDuration:
		return "duration"
	case KindBoolean:
		return "boolean"
	case KindList:
		return "list"
	default:
		return "opaque"
	}
}

var fieldKinds = map[FieldType]ValueKind{
	TypeText:               KindText,
	TypeTextMultiLine:      KindText,
	TypeTextMultipleChoice: KindText,
	TypeRichText:           KindText,
	TypeMultiSelectText:    KindList,
	TypeEmail:              KindText,
	TypeURL:                KindText,
	TypePhone:              KindText,
	TypeNumeric:            KindNumeric,
	TypeCurrency:           KindNumeric,
	TypePercent:            KindNumeric,
	TypeRating:             KindNumeric,
	TypeDate:               KindDate,
	TypeDateTime:           KindDateTime,
	TypeTimeOfDay:          KindText,
	TypeDuration:           KindDuration,
	TypeCheckbox:           KindBoolean,
	TypeUser:               KindOpaque,
	TypeMultiUser:          KindOpaque,
	TypeAddress:            KindOpaque,
	TypeFile:               KindOpaque,
	TypeRecordID:           KindNumeric,
}

// Kind returns the value kind of the field type. Unknown types are opaque.
func (t FieldType) Kind() ValueKind {
	if k, ok := fieldKinds[t]; ok {
		return k
	}
	return KindOpaque
}

// Valid reports whether t is one of the declared field types.
func (t FieldType) Valid() bool {
	_, ok := fieldKinds[t]
	return ok
}

func (t FieldType) String() string {
	return string(t)
}

// ParseFieldType parses a Quickbase API field type name.
func ParseFieldType(s string) (FieldType, error) {
	t := FieldType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown field type: %s", s)
	}
	return t, nil
}
