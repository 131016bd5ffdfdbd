package repositories

import (
	"context"
	"net/http"

	"kitchen_control/internal/models"
	"kitchen_control/pkg/utils"
)

// StoreRepository defines the remote franchise store calls.
type StoreRepository interface {
	List(ctx context.Context) ([]models.Store, error)
	GetByID(ctx context.Context, id int64) (*models.Store, error)
	Create(ctx context.Context, payload models.StorePayload) (*models.Store, error)
	Update(ctx context.Context, id int64, payload models.StorePayload) (*models.Store, error)
	Delete(ctx context.Context, id int64) error
}

type storeRepository struct {
	api *APIClient
}

// NewStoreRepository creates a new instance of StoreRepository.
func NewStoreRepository(api *APIClient) StoreRepository {
	return &storeRepository{api: api}
}

func (r *storeRepository) List(ctx context.Context) ([]models.Store, error) {
	return fetchList(ctx, r.api, "/stores", nil, mapStore)
}

func (r *storeRepository) GetByID(ctx context.Context, id int64) (*models.Store, error) {
	return fetchOne(ctx, r.api, http.MethodGet, "/stores/"+utils.Int64ToStr(id), nil, nil, mapStore)
}

func (r *storeRepository) Create(ctx context.Context, payload models.StorePayload) (*models.Store, error) {
	return sendOptional(ctx, r.api, http.MethodPost, "/stores", nil, toStoreBody(payload), mapStore)
}

func (r *storeRepository) Update(ctx context.Context, id int64, payload models.StorePayload) (*models.Store, error) {
	return sendOptional(ctx, r.api, http.MethodPut, "/stores/"+utils.Int64ToStr(id), nil, toStoreBody(payload), mapStore)
}

func (r *storeRepository) Delete(ctx context.Context, id int64) error {
	return r.api.Do(ctx, http.MethodDelete, "/stores/"+utils.Int64ToStr(id), nil, nil, nil)
}
