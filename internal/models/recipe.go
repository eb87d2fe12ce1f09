package models

// Recipe: satışa sunulan ürün. CalculatedPrice KDV dahil satış fiyatıdır ve
// her zaman TotalCost * CostMultiplier'a eşittir.
type Recipe struct {
	ID              string           `json:"id" bson:"id"`
	Name            string           `json:"name" bson:"name"`
	CategoryID      string           `json:"categoryId,omitempty" bson:"category_id,omitempty"`
	Ingredients     []IngredientLine `json:"ingredients" bson:"ingredients"`
	TotalCost       float64          `json:"totalCost" bson:"total_cost"`
	CostMultiplier  float64          `json:"costMultiplier" bson:"cost_multiplier"`
	CalculatedPrice float64          `json:"calculatedPrice" bson:"calculated_price"`
}

// SalesTarget: reçete başına günlük satış hedefi
type SalesTarget struct {
	RecipeID        string `json:"recipeId" bson:"recipe_id"`
	DailyRestaurant int    `json:"dailyRestaurant" bson:"daily_restaurant"`
	DailyTakeaway   int    `json:"dailyTakeaway" bson:"daily_takeaway"`
}

func (t SalesTarget) Daily() int {
	return t.DailyRestaurant + t.DailyTakeaway
}
