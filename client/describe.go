package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/BrobridgeOrg/go-quickbase/api"
	"github.com/BrobridgeOrg/go-quickbase/orm"
)

// DescribeTable builds a table definition from the live table metadata.
// Attribute names are the snake_cased field labels; fields of types this
// package does not model are skipped.
func DescribeTable(ctx context.Context, transport *api.Client, app orm.App, tableID string) (*orm.Table, error) {
	var info api.TableInfo
	if err := fetch(ctx, &info, func() (*api.Response, error) {
		return transport.GetTable(ctx, app.ID, tableID)
	}); err != nil {
		return nil, fmt.Errorf("failed to get table %s: %w", tableID, err)
	}

	var fields []api.FieldInfo
	if err := fetch(ctx, &fields, func() (*api.Response, error) {
		return transport.GetFields(ctx, tableID)
	}); err != nil {
		return nil, fmt.Errorf("failed to get fields of %s: %w", tableID, err)
	}

	var reports []struct {
		ID   json.Number `json:"id"`
		Name string      `json:"name"`
	}
	if err := fetch(ctx, &reports, func() (*api.Response, error) {
		return transport.GetReports(ctx, tableID)
	}); err != nil {
		return nil, fmt.Errorf("failed to get reports of %s: %w", tableID, err)
	}

	attrs := make([]orm.Attribute, 0, len(fields))
	used := make(map[string]bool, len(fields))
	for _, f := range fields {
		typ, err := orm.ParseFieldType(f.TypeName())
		if err != nil {
			continue
		}
		name := SnakeCase(f.Label)
		if name == "" || used[name] {
			name = strings.TrimPrefix(name+"_"+strconv.Itoa(f.ID), "_")
			if name[0] >= '0' && name[0] <= '9' {
				name = "field_" + name
			}
		}
		name = uniqueName(name, used)
		attrs = append(attrs, orm.Define(name, orm.NewField(f.ID, typ).WithLabel(f.Label)))
	}

	schema, err := orm.NewSchema(attrs...)
	if err != nil {
		return nil, err
	}

	opts := []orm.TableOption{}
	if info.Name != "" {
		opts = append(opts, orm.WithTableName(info.Name))
	}
	for _, r := range reports {
		id, err := strconv.Atoi(r.ID.String())
		if err != nil {
			continue
		}
		opts = append(opts, orm.WithReports(orm.Report{ID: id, Name: r.Name}))
	}

	if app.RealmHostname == "" {
		app.RealmHostname = transport.RealmHostname()
	}
	return orm.NewTable(tableID, app, schema, opts...)
}

func fetch(ctx context.Context, v any, call func() (*api.Response, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	resp, err := call()
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}
	if err := resp.JSON(v); err != nil {
		return fmt.Errorf("%w: %v", api.ErrMalformedResponse, err)
	}
	return nil
}

// SnakeCase converts a field label to a lower snake_case identifier.
// Characters other than letters and digits separate words; a leading digit
// gets an "f_" prefix.
func SnakeCase(label string) string {
	var sb strings.Builder
	pendingSep := false
	for _, r := range label {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			pendingSep = sb.Len() > 0
			continue
		}
		if r > unicode.MaxASCII {
			pendingSep = sb.Len() > 0
			continue
		}
		if pendingSep {
			sb.WriteByte('_')
			pendingSep = false
		}
		sb.WriteRune(unicode.ToLower(r))
	}

	out := sb.String()
	if out != "" && out[0] >= '0' && out[0] <= '9' {
		out = "f_" + out
	}
	return out
}

// uniqueName marks name as used, suffixing _2, _3, ... until it is free.
func uniqueName(name string, used map[string]bool) string {
	candidate := name
	for n := 2; used[candidate]; n++ {
		candidate = name + "_" + strconv.Itoa(n)
	}
	used[candidate] = true
	return candidate
}
