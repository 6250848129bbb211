package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/BrobridgeOrg/go-quickbase/orm"
)

// Response is a raw API response.
type Response struct {
	Method     string
	Path       string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Err returns nil for a successful response, otherwise a *TransportError
// carrying the message and description Quickbase sent.
func (r *Response) Err() error {
	if r.OK() {
		return nil
	}

	te := &TransportError{Method: r.Method, Path: r.Path, StatusCode: r.StatusCode}
	var body struct {
		Message     string `json:"message"`
		Description string `json:"description"`
	}
	if json.Unmarshal(r.Body, &body) == nil && body.Message != "" {
		te.Message = body.Message
		te.Description = body.Description
	} else {
		te.Message = strings.TrimSpace(string(r.Body))
	}
	return te
}

// JSON decodes the body into v. Numbers are kept as json.Number when v
// holds interface values.
func (r *Response) JSON(v any) error {
	dec := json.NewDecoder(bytes.NewReader(r.Body))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// ResultMetadata describes the page a query returned.
type ResultMetadata struct {
	TotalRecords int `json:"totalRecords"`
	NumRecords   int `json:"numRecords"`
	NumFields    int `json:"numFields"`
	Skip         int `json:"skip"`
	Top          int `json:"top,omitempty"`
}

// FieldInfo is a field as described by the fields endpoints and query
// responses.
type FieldInfo struct {
	ID        int    `json:"id"`
	Label     string `json:"label"`
	FieldType string `json:"fieldType"`
	Type      string `json:"type,omitempty"`
}

// TypeName returns the field type, whichever key the endpoint used.
func (f FieldInfo) TypeName() string {
	if f.FieldType != "" {
		return f.FieldType
	}
	return f.Type
}

// TableInfo is a table as described by the tables endpoints.
type TableInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Alias       string `json:"alias,omitempty"`
	Description string `json:"description,omitempty"`
	KeyFieldID  int    `json:"keyFieldId,omitempty"`
}

// AppInfo is an app as described by the apps endpoint.
type AppInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// QueryResult is the body of a successful POST /records/query.
type QueryResult struct {
	Data     []orm.WireRecord `json:"data"`
	Fields   []FieldInfo      `json:"fields"`
	Metadata ResultMetadata   `json:"metadata"`
}

// UpsertMetadata summarizes a POST /records call.
type UpsertMetadata struct {
	CreatedRecordIDs              []int               `json:"createdRecordIds"`
	UpdatedRecordIDs              []int               `json:"updatedRecordIds"`
	UnchangedRecordIDs            []int               `json:"unchangedRecordIds"`
	LineErrors                    map[string][]string `json:"lineErrors,omitempty"`
	TotalNumberOfRecordsProcessed int                 `json:"totalNumberOfRecordsProcessed"`
}

// UpsertResult is the body of a successful POST /records.
type UpsertResult struct {
	Data     []orm.WireRecord `json:"data"`
	Metadata UpsertMetadata   `json:"metadata"`
}

// DeleteResult is the body of a successful DELETE /records.
type DeleteResult struct {
	NumberDeleted int `json:"numberDeleted"`
}

const queryResultSchema = `{
	"type": "object",
	"required": ["data", "metadata"],
	"properties": {
		"data": {
			"type": "array",
			"items": {
				"type": "object",
				"additionalProperties": {
					"type": "object",
					"required": ["value"]
				}
			}
		},
		"fields": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id"],
				"properties": {"id": {"type": "integer"}}
			}
		},
		"metadata": {
			"type": "object",
			"required": ["totalRecords", "numRecords"],
			"properties": {
				"totalRecords": {"type": "integer", "minimum": 0},
				"numRecords": {"type": "integer", "minimum": 0},
				"numFields": {"type": "integer"},
				"skip": {"type": "integer", "minimum": 0}
			}
		}
	}
}`

var querySchema = mustCompile(queryResultSchema)

func mustCompile(schema string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("invalid json schema: %v", err))
	}
	return s
}

// QueryResult validates the body against the query response shape and
// decodes it. A body of the wrong shape yields ErrMalformedResponse.
func (r *Response) QueryResult() (*QueryResult, error) {
	result, err := querySchema.Validate(gojsonschema.NewBytesLoader(r.Body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if !result.Valid() {
		errs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			errs = append(errs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, strings.Join(errs, "; "))
	}

	var qr QueryResult
	if err := r.JSON(&qr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &qr, nil
}
