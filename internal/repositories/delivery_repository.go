package repositories

import (
	"context"
	"net/http"

	"kitchen_control/internal/models"
	"kitchen_control/pkg/utils"
)

// DeliveryRepository defines the remote delivery trip calls.
type DeliveryRepository interface {
	List(ctx context.Context) ([]models.Delivery, error)
	ListByShipper(ctx context.Context, shipperID int64) ([]models.Delivery, error)
	Create(ctx context.Context, d models.DeliveryCreate) (*models.Delivery, error)
	AssignShipper(ctx context.Context, deliveryID, shipperID int64) error
}

type deliveryRepository struct {
	api *APIClient
}

// NewDeliveryRepository creates a new instance of DeliveryRepository.
func NewDeliveryRepository(api *APIClient) DeliveryRepository {
	return &deliveryRepository{api: api}
}

func (r *deliveryRepository) List(ctx context.Context) ([]models.Delivery, error) {
	return fetchList(ctx, r.api, "/deliveries", nil, mapDelivery)
}

func (r *deliveryRepository) ListByShipper(ctx context.Context, shipperID int64) ([]models.Delivery, error) {
	return fetchList(ctx, r.api, "/deliveries/get-by-shipper/"+utils.Int64ToStr(shipperID), nil, mapDelivery)
}

func (r *deliveryRepository) Create(ctx context.Context, d models.DeliveryCreate) (*models.Delivery, error) {
	created, err := sendOptional(ctx, r.api, http.MethodPost, "/deliveries", nil, toDeliveryBody(d), mapDelivery)
	if err != nil {
		return nil, err
	}
	if created == nil {
		shipperID := d.ShipperID
		return &models.Delivery{Date: d.DeliveryDate, ShipperID: &shipperID, Status: models.DeliveryWaiting}, nil
	}
	return created, nil
}

func (r *deliveryRepository) AssignShipper(ctx context.Context, deliveryID, shipperID int64) error {
	path := "/deliveries/" + utils.Int64ToStr(deliveryID) + "/assign-shipper/" + utils.Int64ToStr(shipperID)
	return r.api.Do(ctx, http.MethodPatch, path, nil, nil, nil)
}
