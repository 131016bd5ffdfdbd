package repositories

import (
	"context"
	"net/http"
	"net/url"

	"kitchen_control/internal/models"
	"kitchen_control/pkg/utils"
)

// ProductRepository defines the remote catalog calls.
type ProductRepository interface {
	List(ctx context.Context) ([]models.Product, error)
	ListByType(ctx context.Context, productType models.ProductType) ([]models.Product, error)
	Create(ctx context.Context, payload models.ProductPayload) (*models.Product, error)
	Update(ctx context.Context, id int64, payload models.ProductPayload) (*models.Product, error)
}

type productRepository struct {
	api *APIClient
}

// NewProductRepository creates a new instance of ProductRepository.
func NewProductRepository(api *APIClient) ProductRepository {
	return &productRepository{api: api}
}

func (r *productRepository) List(ctx context.Context) ([]models.Product, error) {
	return fetchList(ctx, r.api, "/products", nil, mapProduct)
}

func (r *productRepository) ListByType(ctx context.Context, productType models.ProductType) ([]models.Product, error) {
	return fetchList(ctx, r.api, "/products/get-by-type/"+url.PathEscape(string(productType)), nil, mapProduct)
}

func (r *productRepository) Create(ctx context.Context, payload models.ProductPayload) (*models.Product, error) {
	return sendOptional(ctx, r.api, http.MethodPost, "/products", nil, toProductBody(payload), mapProduct)
}

func (r *productRepository) Update(ctx context.Context, id int64, payload models.ProductPayload) (*models.Product, error) {
	return sendOptional(ctx, r.api, http.MethodPut, "/products/"+utils.Int64ToStr(id), nil, toProductBody(payload), mapProduct)
}
