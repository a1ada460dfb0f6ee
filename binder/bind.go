// Package binder fills request structs from form bodies and query strings.
//
// Fields are matched by struct tag (`form:"name"` or `query:"name"`), or by
// the lower-cased field name when untagged. A `,required` option fails the
// bind with ErrMissingField when the value is absent, which is different
// from an empty value sent on purpose.
//
//	type publishForm struct {
//		Title string `form:"title,required"`
//		Key   string `form:"idempotency_key,required"`
//	}
package binder

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

func bindValues(v any, tag string, values url.Values, bindErr error) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: target must be a non-nil pointer to struct", bindErr)
	}
	rv = rv.Elem()
	rt := rv.Type()

	for i := range rt.NumField() {
		field := rv.Field(i)
		sf := rt.Field(i)
		if !field.CanSet() {
			continue
		}

		name, required, skip := parseTag(sf, tag)
		if skip {
			continue
		}

		vals, ok := values[name]
		if !ok || len(vals) == 0 {
			if required {
				return fmt.Errorf("%w: %s", ErrMissingField, name)
			}
			continue
		}

		if err := setField(field, vals); err != nil {
			return fmt.Errorf("%w: field %s: %v", bindErr, name, err)
		}
	}
	return nil
}

func parseTag(sf reflect.StructField, tag string) (name string, required, skip bool) {
	raw := sf.Tag.Get(tag)
	if raw == "-" {
		return "", false, true
	}
	name, opts, _ := strings.Cut(raw, ",")
	if name == "" {
		name = strings.ToLower(sf.Name)
	}
	for opt := range strings.SplitSeq(opts, ",") {
		if opt == "required" {
			required = true
		}
	}
	return name, required, false
}

func setField(field reflect.Value, vals []string) error {
	if field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.String {
		field.Set(reflect.ValueOf(append([]string(nil), vals...)))
		return nil
	}

	value := vals[0]
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid int value %q", value)
		}
		field.SetInt(n)
	case reflect.Bool:
		switch strings.ToLower(value) {
		case "on", "yes", "1", "true":
			field.SetBool(true)
		case "off", "no", "0", "false", "":
			field.SetBool(false)
		default:
			return fmt.Errorf("invalid bool value %q", value)
		}
	default:
		return fmt.Errorf("unsupported kind %s", field.Kind())
	}
	return nil
}
