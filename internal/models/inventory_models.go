package models

import "time"

// InventoryRecord is one physical batch lot of a product.
type InventoryRecord struct {
	ID          int64     `json:"inventory_id"`
	ProductID   int64     `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
	BatchID     string    `json:"batch"`
	Quantity    int       `json:"quantity"`
	ExpiryDate  time.Time `json:"expiry_date"`
}

// TransactionType is the direction of a ledger entry.
type TransactionType string

const (
	TransactionImport TransactionType = "IMPORT"
	TransactionExport TransactionType = "EXPORT"
)

// Reasons attached to export transactions.
const (
	ReasonDispatch     = "DISPATCH"
	ReasonWasteExpired = "WASTE_EXPIRED"
	ReasonPurchase     = "PURCHASE"
)

// InventoryTransaction is an append-only ledger entry. Every inventory
// mutation is expressed as one or more of these.
type InventoryTransaction struct {
	ID          int64           `json:"transaction_id,omitempty"`
	InventoryID int64           `json:"inventory_id,omitempty"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	BatchID     string          `json:"batch"`
	Type        TransactionType `json:"type"`
	Quantity    int             `json:"quantity"`
	Note        string          `json:"note,omitempty"`
	Reason      string          `json:"reason,omitempty"`
	ExpiryDate  *time.Time      `json:"expiry_date,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
