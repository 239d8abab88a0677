package model

import (
	"reflect"
	"sort"
)

// Recipe is a single recipe record.
// Keys are schema.org property names and the bookkeeping fields defined in
// this package. The zero value is not usable; use NewRecipe or make.
type Recipe map[string]any

// NewRecipe returns an empty record.
func NewRecipe() Recipe {
	return make(Recipe)
}

// URL returns the record's url field, or "" if it is missing or not a string.
func (r Recipe) URL() string {
	s, _ := r[FieldURL].(string)
	return s
}

// Has reports whether key is present in the record.
func (r Recipe) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Keys returns the record's keys in sorted order.
func (r Recipe) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Filter returns a new record holding only keys present in allowed.
func (r Recipe) Filter(allowed FieldSet) Recipe {
	out := make(Recipe, len(r))
	for k, v := range r {
		if allowed.Contains(k) {
			out[k] = v
		}
	}
	return out
}

// StripEmpty deletes every key whose value is empty and returns the
// number of keys removed.
func (r Recipe) StripEmpty() int {
	removed := 0
	for k, v := range r {
		if IsEmpty(v) {
			delete(r, k)
			removed++
		}
	}
	return removed
}

// Missing returns the names in required that are absent from the record,
// preserving the order of required.
func (r Recipe) Missing(required []string) []string {
	var missing []string
	for _, field := range required {
		if !r.Has(field) {
			missing = append(missing, field)
		}
	}
	return missing
}

// IsEmpty reports whether v counts as an absent value: nil, an empty
// string, an empty slice or array, or an empty map.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case string:
		return t == ""
	case []string:
		return len(t) == 0
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

// FieldSet is an allow-list of field names.
type FieldSet map[string]struct{}

// NewFieldSet builds a FieldSet from names.
func NewFieldSet(names ...string) FieldSet {
	fs := make(FieldSet, len(names))
	for _, n := range names {
		fs[n] = struct{}{}
	}
	return fs
}

// Contains reports whether name is in the set.
func (fs FieldSet) Contains(name string) bool {
	_, ok := fs[name]
	return ok
}

// Names returns the set's members in sorted order.
func (fs FieldSet) Names() []string {
	names := make([]string, 0, len(fs))
	for n := range fs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
