package models

import "time"

// RecipeIngredient is one input of a recipe.
type RecipeIngredient struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name,omitempty"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit,omitempty"`
}

// Recipe describes how a product is produced.
type Recipe struct {
	ID          int64              `json:"recipe_id"`
	ProductID   int64              `json:"product_id"`
	ProductName string             `json:"product_name"`
	Ingredients []RecipeIngredient `json:"ingredients"`
}

// ProductionPlanDetail is one planned output line.
type ProductionPlanDetail struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name,omitempty"`
	Quantity    int    `json:"quantity"`
}

// ProductionPlan schedules kitchen output over a date window.
type ProductionPlan struct {
	ID        int64                  `json:"plan_id"`
	PlanDate  time.Time              `json:"plan_date"`
	StartDate time.Time              `json:"start_date"`
	EndDate   time.Time              `json:"end_date"`
	Note      string                 `json:"note,omitempty"`
	Status    string                 `json:"status"`
	Details   []ProductionPlanDetail `json:"details"`
}

// ProductionPlanPayload is the create form.
type ProductionPlanPayload struct {
	StartDate time.Time              `json:"start_date" binding:"required"`
	EndDate   time.Time              `json:"end_date" binding:"required"`
	Note      string                 `json:"note"`
	Details   []ProductionPlanDetail `json:"details" binding:"required,min=1,dive"`
}
