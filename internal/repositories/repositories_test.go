package repositories

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"kitchen_control/internal/apperr"
	"kitchen_control/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeListShapes(t *testing.T) {
	cases := map[string]int{
		`[{"id":1},{"id":2}]`:             2,
		`{"data":[{"id":1}]}`:             1,
		`{"content":[{"id":1},{"id":2}]}`: 2,
		`{"id":7}`:                        1,
		`null`:                            0,
		``:                                0,
	}
	for body, want := range cases {
		list, err := decodeList(json.RawMessage(body))
		require.NoError(t, err, body)
		assert.Len(t, list, want, body)
	}
	_, err := decodeList(json.RawMessage(`"text"`))
	assert.Error(t, err)
}

func TestDecodeObjectUnwrapsEnvelopeOnly(t *testing.T) {
	obj, err := decodeObject(json.RawMessage(`{"status":200,"message":"ok","data":{"orderId":5}}`))
	require.NoError(t, err)
	assert.Equal(t, int64(5), obj.Int64("orderId"))

	obj, err = decodeObject(json.RawMessage(`{"orderId":9,"data":{"orderId":5}}`))
	require.NoError(t, err)
	assert.Equal(t, int64(9), obj.Int64("orderId"))
}

func TestMapOrderMixedShapes(t *testing.T) {
	obj, err := decodeObject(json.RawMessage(`{
		"orderId": "12",
		"store": {"storeId": 3, "storeName": "District 1"},
		"status": "WAITTING",
		"orderDate": [2025, 3, 9, 14, 5],
		"delivery": 44,
		"orderDetails": [
			{"product": {"productId": 7, "productName": "Croissant", "unit": "pcs"}, "quantity": 4},
			{"product_id": 8, "product_name": "Baguette", "qty": "2"}
		],
		"feedback": {"feedbackId": 1, "rating": 5}
	}`))
	require.NoError(t, err)

	o := mapOrder(obj)
	assert.Equal(t, int64(12), o.ID)
	assert.Equal(t, int64(3), o.StoreID)
	assert.Equal(t, "District 1", o.StoreName)
	assert.Equal(t, models.OrderWaiting, o.Status)
	assert.Equal(t, time.Date(2025, 3, 9, 14, 5, 0, 0, time.UTC), o.OrderDate)
	require.NotNil(t, o.DeliveryID)
	assert.Equal(t, int64(44), *o.DeliveryID)
	require.Len(t, o.Lines, 2)
	assert.Equal(t, models.OrderLine{ProductID: 7, ProductName: "Croissant", Unit: "pcs", Quantity: 4}, o.Lines[0])
	assert.Equal(t, 2, o.Lines[1].Quantity)
	require.NotNil(t, o.Feedback)
	assert.Equal(t, 5, o.Feedback.Rating)
	assert.Equal(t, 6, o.TotalQuantity())
}

func TestMapInventoryNestedBatch(t *testing.T) {
	obj, err := decodeObject(json.RawMessage(`{
		"inventoryId": 3,
		"product": {"productId": 7, "productName": "Croissant"},
		"batch": {"batchId": "B-20250301", "expiryDate": "2025-03-12"},
		"quantity": 40
	}`))
	require.NoError(t, err)

	rec := mapInventory(obj)
	assert.Equal(t, int64(7), rec.ProductID)
	assert.Equal(t, "Croissant", rec.ProductName)
	assert.Equal(t, "B-20250301", rec.BatchID)
	assert.Equal(t, 40, rec.Quantity)
	assert.Equal(t, time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), rec.ExpiryDate)
}

func TestMapDeliveryBackfillsOrderDeliveryID(t *testing.T) {
	obj, err := decodeObject(json.RawMessage(`{
		"deliveryId": 9,
		"deliveryDate": "2025-03-10",
		"shipper": {"userId": 6, "fullName": "Minh"},
		"status": "in_progress",
		"orders": [{"orderId": 1, "status": "PROCESSING"}]
	}`))
	require.NoError(t, err)

	d := mapDelivery(obj)
	assert.Equal(t, models.DeliveryProcessing, d.Status)
	require.NotNil(t, d.ShipperID)
	assert.Equal(t, int64(6), *d.ShipperID)
	assert.Equal(t, "Minh", d.ShipperName)
	require.Len(t, d.Orders, 1)
	require.NotNil(t, d.Orders[0].DeliveryID)
	assert.Equal(t, int64(9), *d.Orders[0].DeliveryID)
}

func TestMapProductAndUser(t *testing.T) {
	p := mapProduct(wireObject{
		"productId":   json.RawMessage(`5`),
		"productName": json.RawMessage(`"Pho base"`),
		"productType": json.RawMessage(`"semi_finished"`),
		"price":       json.RawMessage(`"45000.50"`),
	})
	assert.Equal(t, models.ProductSemiFinished, p.Type)
	assert.True(t, decimal.RequireFromString("45000.50").Equal(p.Price))

	u := mapUser(wireObject{
		"userId":   json.RawMessage(`3`),
		"username": json.RawMessage(`"kitchen1"`),
		"role":     json.RawMessage(`{"roleId":4,"roleName":"Kitchen Manager"}`),
		"store":    json.RawMessage(`null`),
	})
	assert.Equal(t, models.RoleKitchenManager, u.Role)
	assert.Equal(t, "Kitchen Manager", u.RoleName)
	assert.Nil(t, u.StoreID)
	assert.True(t, u.Active)

	odd := mapUser(wireObject{"userId": json.RawMessage(`4`), "roleName": json.RawMessage(`"Auditor"`)})
	assert.Equal(t, models.RoleUnresolved, odd.Role)
	assert.Equal(t, "Auditor", odd.RoleName)
}

func TestLoginResolvesRoleNextToUser(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		respondJSON(w, http.StatusOK, `{"accessToken":"jwt-1","roleName":"ROLE_SUPPLY_COORDINATOR","user":{"userId":8,"fullName":"Thu"}}`)
	})
	res, err := NewAuthRepository(api).Login(context.Background(), models.Credentials{Username: "thu", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "jwt-1", res.Token)
	assert.Equal(t, int64(8), res.User.ID)
	assert.Equal(t, "thu", res.User.Username)
	assert.Equal(t, models.RoleSupplyCoordinator, res.User.Role)
}

func TestLoginBadCredentialsUseFixedMessage(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusUnauthorized, `{"message":"User thu not found in table users"}`)
	})
	_, err := NewAuthRepository(api).Login(context.Background(), models.Credentials{Username: "thu", Password: "x"})
	assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))
	assert.Equal(t, apperr.MsgInvalidCredentials, apperr.MessageOf(err))
}

func TestLoginWithoutUserIDIsInternal(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, `{"token":"t"}`)
	})
	_, err := NewAuthRepository(api).Login(context.Background(), models.Credentials{Username: "a", Password: "b"})
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestOrderUpdateStatusUsesBackendSpelling(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/orders/update-status", r.URL.Path)
		assert.Equal(t, "15", r.URL.Query().Get("orderId"))
		assert.Equal(t, "CANCLED", r.URL.Query().Get("status"))
		w.WriteHeader(http.StatusOK)
	})
	require.NoError(t, NewOrderRepository(api).UpdateStatus(context.Background(), 15, models.OrderCancelled))
}

func TestOrderCreateWithoutBodyEchoesSubmission(t *testing.T) {
	var got orderBody
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	})
	order, err := NewOrderRepository(api).Create(context.Background(), models.OrderCreate{
		StoreID: 3,
		Lines:   []models.OrderLine{{ProductID: 7, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderWaiting, order.Status)
	assert.Equal(t, int64(3), got.StoreID)
	assert.Equal(t, []orderLineBody{{ProductID: 7, Quantity: 2}}, got.OrderDetails)
}

func TestTransactionCreateBody(t *testing.T) {
	var got transactionBody
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		respondJSON(w, http.StatusOK, `{"transactionId":77,"productId":7,"type":"export","quantity":4,"batchId":"B1"}`)
	})
	expiry := time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)
	tx, err := NewTransactionRepository(api).Create(context.Background(), models.InventoryTransaction{
		ProductID:  7,
		BatchID:    "B1",
		Type:       models.TransactionExport,
		Quantity:   4,
		Reason:     models.ReasonDispatch,
		ExpiryDate: &expiry,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(77), tx.ID)
	assert.Equal(t, models.TransactionExport, tx.Type)
	assert.Equal(t, "2025-03-20", got.ExpiryDate)
	assert.Equal(t, "DISPATCH", got.Reason)
}

func TestRecipesPendingWhenEndpointMissing(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	_, err := NewRecipeRepository(api).List(context.Background())
	assert.Equal(t, apperr.KindNotImplemented, apperr.KindOf(err))

	_, err = NewStoreRepository(api).GetByID(context.Background(), 1)
	assert.True(t, IsNotFound(err))
}

func TestPlanListAcceptsSingleObject(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, `{"planId":2,"startDate":"2025-04-01","details":[{"productId":7,"quantity":30}]}`)
	})
	plans, err := NewPlanRepository(api).List(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, int64(2), plans[0].ID)
	assert.Equal(t, 30, plans[0].Details[0].Quantity)
}

func TestFilterByRole(t *testing.T) {
	users := []models.User{{ID: 1, Role: models.RoleShipper}, {ID: 2, Role: models.RoleAdmin}, {ID: 3, Role: models.RoleShipper}}
	shippers := FilterByRole(users, models.RoleShipper)
	require.Len(t, shippers, 2)
	assert.Equal(t, int64(3), shippers[1].ID)
}
