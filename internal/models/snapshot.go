package models

// Section: kalıcı durumun ayrı ayrı yazılabilen parçaları
type Section string

const (
	SectionRawIngredients       Section = "raw_ingredients"
	SectionIntermediateProducts Section = "intermediate_products"
	SectionRecipes              Section = "recipes"
	SectionRecipeCategories     Section = "recipe_categories"
	SectionIngredientCategories Section = "ingredient_categories"
	SectionExpenses             Section = "expenses"
	SectionSalesTargets         Section = "sales_targets"
	SectionSettings             Section = "settings"
)

var AllSections = []Section{
	SectionRawIngredients,
	SectionIntermediateProducts,
	SectionRecipes,
	SectionRecipeCategories,
	SectionIngredientCategories,
	SectionExpenses,
	SectionSalesTargets,
	SectionSettings,
}

// Snapshot: kullanıcı başına saklanan durum belgesi
type Snapshot struct {
	RawIngredients       []RawIngredient       `json:"rawIngredients" bson:"raw_ingredients"`
	IntermediateProducts []IntermediateProduct `json:"intermediateProducts" bson:"intermediate_products"`
	Recipes              []Recipe              `json:"recipes" bson:"recipes"`
	RecipeCategories     []Category            `json:"recipeCategories" bson:"recipe_categories"`
	IngredientCategories []Category            `json:"ingredientCategories" bson:"ingredient_categories"`
	Expenses             []Expense             `json:"expenses" bson:"expenses"`
	SalesTargets         []SalesTarget         `json:"salesTargets" bson:"sales_targets"`
	Settings             Settings              `json:"settings" bson:"settings"`
}
