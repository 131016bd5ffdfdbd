package repositories

import (
	"context"
	"net/http"
	"net/url"

	"kitchen_control/internal/models"
	"kitchen_control/pkg/utils"
)

// OrderRepository defines the remote order calls.
type OrderRepository interface {
	List(ctx context.Context) ([]models.Order, error)
	ListByStore(ctx context.Context, storeID int64) ([]models.Order, error)
	Create(ctx context.Context, order models.OrderCreate) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status models.OrderStatus) error
}

type orderRepository struct {
	api *APIClient
}

// NewOrderRepository creates a new instance of OrderRepository.
func NewOrderRepository(api *APIClient) OrderRepository {
	return &orderRepository{api: api}
}

func (r *orderRepository) List(ctx context.Context) ([]models.Order, error) {
	return fetchList(ctx, r.api, "/orders", nil, mapOrder)
}

func (r *orderRepository) ListByStore(ctx context.Context, storeID int64) ([]models.Order, error) {
	return fetchList(ctx, r.api, "/orders/get-by-store/"+utils.Int64ToStr(storeID), nil, mapOrder)
}

// Create submits a new order. A server that answers without a body still
// created the order; the returned record then only carries what was sent.
func (r *orderRepository) Create(ctx context.Context, order models.OrderCreate) (*models.Order, error) {
	created, err := sendOptional(ctx, r.api, http.MethodPost, "/orders", nil, toOrderBody(order), mapOrder)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return &models.Order{StoreID: order.StoreID, Status: models.OrderWaiting, Lines: order.Lines, Comment: order.Comment}, nil
	}
	return created, nil
}

// UpdateStatus sends the backend spelling of status.
func (r *orderRepository) UpdateStatus(ctx context.Context, orderID int64, status models.OrderStatus) error {
	query := url.Values{}
	query.Set("orderId", utils.Int64ToStr(orderID))
	query.Set("status", status.Wire())
	return r.api.Do(ctx, http.MethodPatch, "/orders/update-status", query, nil, nil)
}
