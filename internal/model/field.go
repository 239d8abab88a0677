package model

// Canonical schema.org/Recipe property names.
const (
	FieldName               = "name"
	FieldRecipeYield        = "recipeYield"
	FieldAuthor             = "author"
	FieldImage              = "image"
	FieldTotalTime          = "totalTime"
	FieldPrepTime           = "prepTime"
	FieldCookTime           = "cookTime"
	FieldDatePublished      = "datePublished"
	FieldRecipeIngredient   = "recipeIngredient"
	FieldRecipeInstructions = "recipeInstructions"
	FieldCookingMethod      = "cookingMethod"
	FieldRecipeCategory     = "recipeCategory"
	FieldRecipeCuisine      = "recipeCuisine"

	// FieldIngredients is the property name used by older versions of the
	// schema before it was renamed to recipeIngredient.
	FieldIngredients = "ingredients"
)

// Bookkeeping fields set by the collector rather than read from a page.
const (
	FieldURL         = "url"
	FieldCollectTime = "collect_time"
	FieldUpdateTime  = "update_time"
)

// TextFields are single-valued properties read from element text.
var TextFields = []string{FieldName, FieldRecipeYield, FieldAuthor}

// TimeFields are properties usually carried in a content attribute as an
// ISO-8601 duration or date.
var TimeFields = []string{FieldTotalTime, FieldPrepTime, FieldCookTime, FieldDatePublished}

// ListFields are multi-valued properties.
var ListFields = []string{
	FieldRecipeIngredient,
	FieldRecipeInstructions,
	FieldCookingMethod,
	FieldRecipeCategory,
	FieldRecipeCuisine,
}

// DefaultStoreFields returns every canonical field plus the bookkeeping
// fields. It is used when the configuration does not list store fields.
func DefaultStoreFields() []string {
	fields := make([]string, 0, 16)
	fields = append(fields, TextFields...)
	fields = append(fields, FieldImage)
	fields = append(fields, TimeFields...)
	fields = append(fields, ListFields...)
	fields = append(fields, FieldURL, FieldCollectTime, FieldUpdateTime)
	return fields
}

// DefaultRequiredFields returns the fields a record needs to be stored
// when the configuration does not say otherwise.
func DefaultRequiredFields() []string {
	return []string{FieldName, FieldRecipeIngredient, FieldURL}
}
