package repositories

import (
	"strings"
	"time"

	"kitchen_control/internal/auth"
	"kitchen_control/internal/models"

	"github.com/shopspring/decimal"
)

// Inbound mappers: wire object -> internal record.

func mapUser(w wireObject) models.User {
	role := auth.ResolveRole(w["role"], w["roleId"], w["role_id"], w["roleName"], w["role_name"], w["roles"], w["authorities"])
	roleName := role.DisplayName()
	if !role.Valid() {
		roleName = w.String("roleName", "role_name")
		if nested := w.Object("role"); nested != nil && roleName == "" {
			roleName = nested.String("roleName", "role_name", "name")
		}
	}
	return models.User{
		ID:       w.Int64("userId", "user_id", "id"),
		Username: w.String("username", "userName", "user_name"),
		FullName: w.String("fullName", "full_name", "name"),
		Email:    w.String("email"),
		Phone:    w.String("phone", "phoneNumber", "phone_number"),
		Role:     role,
		RoleName: roleName,
		StoreID:  w.RefID([]string{"storeId", "store_id"}, "store", "storeId", "store_id", "id"),
		Active:   w.Bool(true, "active", "isActive", "is_active", "enabled"),
	}
}

func mapStore(w wireObject) models.Store {
	return models.Store{
		ID:      w.Int64("storeId", "store_id", "id"),
		Name:    w.String("storeName", "store_name", "name"),
		Address: w.String("address", "location"),
		Phone:   w.String("phone", "phoneNumber", "phone_number"),
	}
}

func mapProduct(w wireObject) models.Product {
	pt, _ := models.ParseProductType(w.String("productType", "product_type", "type"))
	return models.Product{
		ID:            w.Int64("productId", "product_id", "id"),
		Name:          w.String("productName", "product_name", "name"),
		Type:          pt,
		Unit:          w.String("unit"),
		ShelfLifeDays: w.Int("shelfLifeDays", "shelf_life_days", "shelfLife", "shelf_life"),
		Price:         w.Decimal("price", "unitPrice", "unit_price"),
		ImageGlyph:    w.String("image", "imageUrl", "image_url", "icon"),
	}
}

// nestedName reads a display name that may be flat or inside a nested object.
func nestedName(w wireObject, flatKeys []string, nestedKey string, nestedNameKeys ...string) string {
	if s := w.String(flatKeys...); s != "" {
		return s
	}
	if nested := w.Object(nestedKey); nested != nil {
		return nested.String(nestedNameKeys...)
	}
	return ""
}

func refInt64(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

func mapInventory(w wireObject) models.InventoryRecord {
	expiry := w.Time("expiryDate", "expiry_date", "expirationDate", "expiration_date")
	if expiry.IsZero() {
		if batch := w.Object("batch"); batch != nil {
			expiry = batch.Time("expiryDate", "expiry_date", "expirationDate")
		}
	}
	return models.InventoryRecord{
		ID:          w.Int64("inventoryId", "inventory_id", "id"),
		ProductID:   refInt64(w.RefID([]string{"productId", "product_id"}, "product", "productId", "product_id", "id")),
		ProductName: nestedName(w, []string{"productName", "product_name"}, "product", "productName", "product_name", "name"),
		BatchID:     w.RefString([]string{"batchId", "batch_id"}, "batch", "batchId", "batch_id", "batchCode", "id"),
		Quantity:    w.Int("quantity", "qty"),
		ExpiryDate:  expiry,
	}
}

func mapTransaction(w wireObject) models.InventoryTransaction {
	return models.InventoryTransaction{
		ID:          w.Int64("transactionId", "transaction_id", "id"),
		InventoryID: refInt64(w.RefID([]string{"inventoryId", "inventory_id"}, "inventory", "inventoryId", "inventory_id", "id")),
		ProductID:   refInt64(w.RefID([]string{"productId", "product_id"}, "product", "productId", "product_id", "id")),
		ProductName: nestedName(w, []string{"productName", "product_name"}, "product", "productName", "product_name", "name"),
		BatchID:     w.RefString([]string{"batchId", "batch_id"}, "batch", "batchId", "batch_id", "batchCode", "id"),
		Type:        models.TransactionType(strings.ToUpper(w.String("type", "transactionType", "transaction_type"))),
		Quantity:    w.Int("quantity", "qty"),
		Note:        w.String("note", "notes", "description"),
		Reason:      w.String("reason"),
		ExpiryDate:  w.OptTime("expiryDate", "expiry_date"),
		CreatedAt:   w.Time("createdAt", "created_at", "transactionDate", "transaction_date"),
	}
}

func mapOrderLine(w wireObject) models.OrderLine {
	return models.OrderLine{
		ProductID:   refInt64(w.RefID([]string{"productId", "product_id"}, "product", "productId", "product_id", "id")),
		ProductName: nestedName(w, []string{"productName", "product_name"}, "product", "productName", "product_name", "name"),
		Unit:        nestedName(w, []string{"unit"}, "product", "unit"),
		Quantity:    w.Int("quantity", "qty"),
	}
}

func mapOrder(w wireObject) models.Order {
	rawStatus := w.String("status", "orderStatus", "order_status")
	status, ok := models.ParseOrderStatus(rawStatus)
	if !ok {
		status = models.OrderStatus(strings.ToUpper(rawStatus))
	}

	details := w.List("orderDetails", "order_details", "details", "items", "lines")
	lines := make([]models.OrderLine, 0, len(details))
	for _, d := range details {
		lines = append(lines, mapOrderLine(d))
	}

	var feedback *models.Feedback
	if fw := w.Object("feedback"); fw != nil {
		f := mapFeedback(fw)
		feedback = &f
	}

	return models.Order{
		ID:         w.Int64("orderId", "order_id", "id"),
		StoreID:    refInt64(w.RefID([]string{"storeId", "store_id"}, "store", "storeId", "store_id", "id")),
		StoreName:  nestedName(w, []string{"storeName", "store_name"}, "store", "storeName", "store_name", "name"),
		Status:     status,
		OrderDate:  w.Time("orderDate", "order_date", "createdAt", "created_at"),
		DeliveryID: w.RefID([]string{"deliveryId", "delivery_id"}, "delivery", "deliveryId", "delivery_id", "id"),
		Lines:      lines,
		Comment:    w.String("comment", "note"),
		Feedback:   feedback,
	}
}

func mapDelivery(w wireObject) models.Delivery {
	status, ok := models.ParseDeliveryStatus(w.String("status", "deliveryStatus", "delivery_status"))
	if !ok {
		status = models.DeliveryWaiting
	}
	rawOrders := w.List("orders", "orderList", "order_list")
	orders := make([]models.Order, 0, len(rawOrders))
	for _, o := range rawOrders {
		orders = append(orders, mapOrder(o))
	}
	d := models.Delivery{
		ID:          w.Int64("deliveryId", "delivery_id", "id"),
		Date:        w.Time("deliveryDate", "delivery_date", "date"),
		ShipperID:   w.RefID([]string{"shipperId", "shipper_id"}, "shipper", "userId", "user_id", "id"),
		ShipperName: nestedName(w, []string{"shipperName", "shipper_name"}, "shipper", "fullName", "full_name", "username"),
		Status:      status,
		Orders:      orders,
	}
	for i := range d.Orders {
		if d.Orders[i].DeliveryID == nil {
			id := d.ID
			d.Orders[i].DeliveryID = &id
		}
	}
	return d
}

func mapFeedback(w wireObject) models.Feedback {
	return models.Feedback{
		ID:        w.Int64("feedbackId", "feedback_id", "id"),
		OrderID:   refInt64(w.RefID([]string{"orderId", "order_id"}, "order", "orderId", "order_id", "id")),
		Rating:    w.Int("rating", "score"),
		Comment:   w.String("comment", "content"),
		CreatedAt: w.Time("createdAt", "created_at"),
	}
}

func mapRecipe(w wireObject) models.Recipe {
	rawIngredients := w.List("ingredients", "recipeDetails", "recipe_details", "details")
	ingredients := make([]models.RecipeIngredient, 0, len(rawIngredients))
	for _, iw := range rawIngredients {
		productID := iw.RefID([]string{"productId", "product_id", "rawMaterialId", "raw_material_id"}, "product", "productId", "product_id", "id")
		if productID == nil {
			productID = iw.RefID(nil, "rawMaterial", "productId", "product_id", "id")
		}
		ingredients = append(ingredients, models.RecipeIngredient{
			ProductID:   refInt64(productID),
			ProductName: nestedName(iw, []string{"productName", "product_name", "rawMaterialName", "raw_material_name"}, "rawMaterial", "productName", "product_name", "name"),
			Quantity:    iw.Float("quantity", "qty", "amount"),
			Unit:        iw.String("unit"),
		})
	}
	return models.Recipe{
		ID:          w.Int64("recipeId", "recipe_id", "id"),
		ProductID:   refInt64(w.RefID([]string{"productId", "product_id"}, "product", "productId", "product_id", "id")),
		ProductName: nestedName(w, []string{"productName", "product_name", "recipeName", "recipe_name", "name"}, "product", "productName", "product_name", "name"),
		Ingredients: ingredients,
	}
}

func mapPlan(w wireObject) models.ProductionPlan {
	rawDetails := w.List("details", "planDetails", "plan_details", "productionPlanDetails")
	details := make([]models.ProductionPlanDetail, 0, len(rawDetails))
	for _, dw := range rawDetails {
		details = append(details, models.ProductionPlanDetail{
			ProductID:   refInt64(dw.RefID([]string{"productId", "product_id"}, "product", "productId", "product_id", "id")),
			ProductName: nestedName(dw, []string{"productName", "product_name"}, "product", "productName", "product_name", "name"),
			Quantity:    dw.Int("quantity", "qty"),
		})
	}
	return models.ProductionPlan{
		ID:        w.Int64("planId", "plan_id", "productionPlanId", "production_plan_id", "id"),
		PlanDate:  w.Time("planDate", "plan_date", "createdAt"),
		StartDate: w.Time("startDate", "start_date"),
		EndDate:   w.Time("endDate", "end_date"),
		Note:      w.String("note", "notes"),
		Status:    w.String("status"),
		Details:   details,
	}
}

// Outbound bodies: internal record -> wire payload.

type orderLineBody struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type orderBody struct {
	StoreID      int64           `json:"storeId"`
	Comment      string          `json:"comment"`
	OrderDetails []orderLineBody `json:"orderDetails"`
}

func toOrderBody(o models.OrderCreate) orderBody {
	lines := make([]orderLineBody, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, orderLineBody{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return orderBody{StoreID: o.StoreID, Comment: o.Comment, OrderDetails: lines}
}

type transactionBody struct {
	InventoryID int64  `json:"inventoryId,omitempty"`
	ProductID   int64  `json:"productId"`
	BatchID     string `json:"batchId,omitempty"`
	Type        string `json:"type"`
	Quantity    int    `json:"quantity"`
	Note        string `json:"note,omitempty"`
	Reason      string `json:"reason,omitempty"`
	ExpiryDate  string `json:"expiryDate,omitempty"`
}

func toTransactionBody(t models.InventoryTransaction) transactionBody {
	body := transactionBody{
		InventoryID: t.InventoryID,
		ProductID:   t.ProductID,
		BatchID:     t.BatchID,
		Type:        string(t.Type),
		Quantity:    t.Quantity,
		Note:        t.Note,
		Reason:      t.Reason,
	}
	if t.ExpiryDate != nil {
		body.ExpiryDate = wireDate(*t.ExpiryDate)
	}
	return body
}

type productBody struct {
	ProductName   string          `json:"productName"`
	ProductType   string          `json:"productType"`
	Unit          string          `json:"unit"`
	ShelfLifeDays int             `json:"shelfLifeDays"`
	Price         decimal.Decimal `json:"price"`
	Image         string          `json:"image,omitempty"`
}

func toProductBody(p models.ProductPayload) productBody {
	return productBody{
		ProductName:   p.Name,
		ProductType:   string(p.Type),
		Unit:          p.Unit,
		ShelfLifeDays: p.ShelfLifeDays,
		Price:         p.Price,
		Image:         p.ImageGlyph,
	}
}

type userBody struct {
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
	FullName string `json:"fullName"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	RoleID   int    `json:"roleId"`
	StoreID  *int64 `json:"storeId,omitempty"`
}

func toUserBody(u models.UserPayload) userBody {
	return userBody{
		Username: u.Username,
		Password: u.Password,
		FullName: u.FullName,
		Email:    u.Email,
		Phone:    u.Phone,
		RoleID:   int(u.RoleID),
		StoreID:  u.StoreID,
	}
}

type storeBody struct {
	StoreName string `json:"storeName"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

func toStoreBody(s models.StorePayload) storeBody {
	return storeBody{StoreName: s.Name, Address: s.Address, Phone: s.Phone}
}

type deliveryBody struct {
	ShipperID    int64   `json:"shipperId"`
	DeliveryDate string  `json:"deliveryDate"`
	OrderIDs     []int64 `json:"orderIds"`
}

func toDeliveryBody(d models.DeliveryCreate) deliveryBody {
	return deliveryBody{ShipperID: d.ShipperID, DeliveryDate: wireDate(d.DeliveryDate), OrderIDs: d.OrderIDs}
}

type feedbackBody struct {
	OrderID int64  `json:"orderId"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

type planDetailBody struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type planBody struct {
	PlanDate  string           `json:"planDate"`
	StartDate string           `json:"startDate"`
	EndDate   string           `json:"endDate"`
	Note      string           `json:"note,omitempty"`
	Details   []planDetailBody `json:"details"`
}

func toPlanBody(p models.ProductionPlanPayload, planDate time.Time) planBody {
	details := make([]planDetailBody, 0, len(p.Details))
	for _, d := range p.Details {
		details = append(details, planDetailBody{ProductID: d.ProductID, Quantity: d.Quantity})
	}
	return planBody{
		PlanDate:  wireDate(planDate),
		StartDate: wireDate(p.StartDate),
		EndDate:   wireDate(p.EndDate),
		Note:      p.Note,
		Details:   details,
	}
}
