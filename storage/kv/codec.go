package kv

import (
	"encoding/json"
	"reflect"
	"regexp"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var isoDateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T`)

func init() {
	// amounts are persisted as JSON numbers, as every other client reads them
	decimal.MarshalJSONWithoutQuotes = true
}

func Encode(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "encoding")
	}
	return data, nil
}

// Decode unmarshals data into v, then revives ISO-8601 date strings held in untyped values.
func Decode(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrap(err, "decoding")
	}
	ReviveDates(v)
	return nil
}

// Document deep-clones v into a plain JSON document. Dates stay ISO-8601 strings.
func Document(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "encoding document")
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "decoding document")
	}
	return doc, nil
}

// ReviveDates walks v and replaces every string stored in an interface value
// (struct field, map value, slice element) that looks like an ISO-8601
// date-time with the parsed time.Time. Typed string fields are left alone.
func ReviveDates(v interface{}) {
	revive(reflect.ValueOf(v))
}

func revive(v reflect.Value) {
	switch v.Kind() {
	case reflect.Ptr:
		if !v.IsNil() {
			revive(v.Elem())
		}
	case reflect.Interface:
		if v.IsNil() {
			return
		}
		if t, ok := parseDate(v.Elem()); ok {
			if v.CanSet() {
				v.Set(reflect.ValueOf(t))
			}
			return
		}
		revive(v.Elem())
	case reflect.Struct:
		typ := v.Type()
		for i := 0; i < v.NumField(); i++ {
			if typ.Field(i).PkgPath != "" { // unexported
				continue
			}
			revive(v.Field(i))
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			revive(v.Index(i))
		}
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			val := iter.Value()
			if val.Kind() == reflect.Interface && !val.IsNil() {
				if t, ok := parseDate(val.Elem()); ok {
					v.SetMapIndex(iter.Key(), reflect.ValueOf(t))
					continue
				}
				val = val.Elem()
			}
			// map values are not addressable: only containers can be revived in place
			switch val.Kind() {
			case reflect.Map, reflect.Slice, reflect.Ptr:
				revive(val)
			}
		}
	}
}

func parseDate(v reflect.Value) (time.Time, bool) {
	if v.Kind() != reflect.String {
		return time.Time{}, false
	}
	s := v.String()
	if !isoDateRegex.MatchString(s) {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
