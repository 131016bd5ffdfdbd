package repositories

import (
	"context"
	"net/http"
	"net/url"

	"kitchen_control/internal/models"
	"kitchen_control/pkg/utils"
)

// InventoryRepository reads the batch-level inventory. The client never
// writes quantities directly; see TransactionRepository.
type InventoryRepository interface {
	List(ctx context.Context) ([]models.InventoryRecord, error)
	GetByID(ctx context.Context, id int64) (*models.InventoryRecord, error)
}

type inventoryRepository struct {
	api *APIClient
}

// NewInventoryRepository creates a new instance of InventoryRepository.
func NewInventoryRepository(api *APIClient) InventoryRepository {
	return &inventoryRepository{api: api}
}

func (r *inventoryRepository) List(ctx context.Context) ([]models.InventoryRecord, error) {
	return fetchList(ctx, r.api, "/inventories", nil, mapInventory)
}

func (r *inventoryRepository) GetByID(ctx context.Context, id int64) (*models.InventoryRecord, error) {
	return fetchOne(ctx, r.api, http.MethodGet, "/inventories/get-by-id/"+utils.Int64ToStr(id), nil, nil, mapInventory)
}

// TransactionRepository appends to and reads the inventory ledger.
type TransactionRepository interface {
	List(ctx context.Context) ([]models.InventoryTransaction, error)
	ListByProduct(ctx context.Context, productID int64) ([]models.InventoryTransaction, error)
	ListByBatch(ctx context.Context, batchID string) ([]models.InventoryTransaction, error)
	Create(ctx context.Context, tx models.InventoryTransaction) (*models.InventoryTransaction, error)
}

type transactionRepository struct {
	api *APIClient
}

// NewTransactionRepository creates a new instance of TransactionRepository.
func NewTransactionRepository(api *APIClient) TransactionRepository {
	return &transactionRepository{api: api}
}

func (r *transactionRepository) List(ctx context.Context) ([]models.InventoryTransaction, error) {
	return fetchList(ctx, r.api, "/inventory-transactions", nil, mapTransaction)
}

func (r *transactionRepository) ListByProduct(ctx context.Context, productID int64) ([]models.InventoryTransaction, error) {
	return fetchList(ctx, r.api, "/inventory-transactions/product/"+utils.Int64ToStr(productID), nil, mapTransaction)
}

func (r *transactionRepository) ListByBatch(ctx context.Context, batchID string) ([]models.InventoryTransaction, error) {
	return fetchList(ctx, r.api, "/inventory-transactions/batch/"+url.PathEscape(batchID), nil, mapTransaction)
}

// Create records one ledger entry. When the server echoes nothing back the
// submitted entry is returned as-is.
func (r *transactionRepository) Create(ctx context.Context, tx models.InventoryTransaction) (*models.InventoryTransaction, error) {
	created, err := sendOptional(ctx, r.api, http.MethodPost, "/inventory-transactions", nil, toTransactionBody(tx), mapTransaction)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return &tx, nil
	}
	return created, nil
}
