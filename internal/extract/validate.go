package extract

import "github.com/nao1215/recipescan/internal/model"

// Validate removes empty-valued keys from rec in place and reports whether
// every name in required is still present. The second return value lists
// the missing names in the order given by required.
//
// Validate is idempotent: running it again on the stripped record yields
// the same result and leaves the record unchanged.
func Validate(rec model.Recipe, required []string) (bool, []string) {
	rec.StripEmpty()
	missing := rec.Missing(required)
	return len(missing) == 0, missing
}
