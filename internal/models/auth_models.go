package models

// RoleID is the canonical role of a principal. The numeric values match the
// remote API's role ids.
type RoleID int

const (
	RoleUnresolved        RoleID = 0
	RoleAdmin             RoleID = 1
	RoleManager           RoleID = 2
	RoleStoreStaff        RoleID = 3
	RoleKitchenManager    RoleID = 4
	RoleSupplyCoordinator RoleID = 5
	RoleShipper           RoleID = 6
)

// AllRoles lists every resolvable role in id order.
var AllRoles = []RoleID{
	RoleAdmin,
	RoleManager,
	RoleStoreStaff,
	RoleKitchenManager,
	RoleSupplyCoordinator,
	RoleShipper,
}

// RoleFromID maps a remote role id to a RoleID.
func RoleFromID(id int64) (RoleID, bool) {
	r := RoleID(id)
	return r, r.Valid()
}

// Valid reports whether r is one of the six known roles.
func (r RoleID) Valid() bool {
	return r >= RoleAdmin && r <= RoleShipper
}

// String returns the upper-snake name used by the remote API.
func (r RoleID) String() string {
	switch r {
	case RoleAdmin:
		return "ADMIN"
	case RoleManager:
		return "MANAGER"
	case RoleStoreStaff:
		return "STORE_STAFF"
	case RoleKitchenManager:
		return "KITCHEN_MANAGER"
	case RoleSupplyCoordinator:
		return "SUPPLY_COORDINATOR"
	case RoleShipper:
		return "SHIPPER"
	default:
		return "UNRESOLVED"
	}
}

// DisplayName is the human label shown in user lists.
func (r RoleID) DisplayName() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleManager:
		return "Manager"
	case RoleStoreStaff:
		return "Store Staff"
	case RoleKitchenManager:
		return "Kitchen Manager"
	case RoleSupplyCoordinator:
		return "Supply Coordinator"
	case RoleShipper:
		return "Shipper"
	default:
		return "Unknown"
	}
}

// Principal is the authenticated user of one browser session.
type Principal struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Role        RoleID `json:"role_id"`
	// StoreID is only set for store staff.
	StoreID *int64 `json:"store_id,omitempty"`
	// SessionToken is the bearer token issued by the remote API. It stays
	// server-side.
	SessionToken string `json:"-"`
}

// Credentials for the login form.
type Credentials struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}
