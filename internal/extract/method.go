package extract

import (
	"errors"
	"fmt"
	"strings"
)

// Method names a markup scheme.
type Method string

// Supported markup schemes. The string values match the extract_method
// setting of a site profile.
const (
	MethodJSONLD    Method = "json-ld"
	MethodMicrodata Method = "microdata"
	MethodRDFa      Method = "RDFa"
)

// ErrUnknownMethod is returned for an extract_method that is not one of
// the supported schemes.
var ErrUnknownMethod = errors.New("invalid extraction method, valid methods: json-ld, microdata, RDFa")

// Methods lists the supported schemes in detection order.
func Methods() []Method {
	return []Method{MethodJSONLD, MethodMicrodata, MethodRDFa}
}

// ParseMethod converts a profile setting to a Method.
// Matching is case-insensitive so "rdfa" and "JSON-LD" are accepted.
func ParseMethod(s string) (Method, error) {
	for _, m := range Methods() {
		if strings.EqualFold(strings.TrimSpace(s), string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// String implements fmt.Stringer.
func (m Method) String() string {
	return string(m)
}
