package repositories

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"kitchen_control/internal/models"
	"kitchen_control/pkg/utils"
)

// RecipeRepository reads recipes. The endpoints may be missing on older
// backends, which surfaces as KindNotImplemented.
type RecipeRepository interface {
	List(ctx context.Context) ([]models.Recipe, error)
	Search(ctx context.Context, keyword string) ([]models.Recipe, error)
}

type recipeRepository struct {
	api *APIClient
}

// NewRecipeRepository creates a new instance of RecipeRepository.
func NewRecipeRepository(api *APIClient) RecipeRepository {
	return &recipeRepository{api: api}
}

func (r *recipeRepository) List(ctx context.Context) ([]models.Recipe, error) {
	return fetchList(ctx, r.api, "/recipes", nil, mapRecipe, PendingWhenMissing())
}

func (r *recipeRepository) Search(ctx context.Context, keyword string) ([]models.Recipe, error) {
	return fetchList(ctx, r.api, "/recipes/search/"+url.PathEscape(keyword), nil, mapRecipe, PendingWhenMissing())
}

// PlanRepository defines the production plan calls.
type PlanRepository interface {
	List(ctx context.Context) ([]models.ProductionPlan, error)
	GetByID(ctx context.Context, id int64) (*models.ProductionPlan, error)
	Create(ctx context.Context, payload models.ProductionPlanPayload, planDate time.Time) (*models.ProductionPlan, error)
}

type planRepository struct {
	api *APIClient
}

// NewPlanRepository creates a new instance of PlanRepository.
func NewPlanRepository(api *APIClient) PlanRepository {
	return &planRepository{api: api}
}

// List accepts both a list and a single plan object, which some backends return.
func (r *planRepository) List(ctx context.Context) ([]models.ProductionPlan, error) {
	return fetchList(ctx, r.api, "/production-plans", nil, mapPlan, PendingWhenMissing())
}

func (r *planRepository) GetByID(ctx context.Context, id int64) (*models.ProductionPlan, error) {
	return fetchOne(ctx, r.api, http.MethodGet, "/production-plans/"+utils.Int64ToStr(id), nil, nil, mapPlan, PendingWhenMissing())
}

func (r *planRepository) Create(ctx context.Context, payload models.ProductionPlanPayload, planDate time.Time) (*models.ProductionPlan, error) {
	created, err := sendOptional(ctx, r.api, http.MethodPost, "/production-plans", nil, toPlanBody(payload, planDate), mapPlan, PendingWhenMissing())
	if err != nil {
		return nil, err
	}
	if created == nil {
		return &models.ProductionPlan{
			PlanDate:  planDate,
			StartDate: payload.StartDate,
			EndDate:   payload.EndDate,
			Note:      payload.Note,
			Details:   payload.Details,
		}, nil
	}
	return created, nil
}
