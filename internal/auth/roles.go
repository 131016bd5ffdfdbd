package auth

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"kitchen_control/internal/models"
)

// roleNames maps normalized role names (and the aliases older backend builds
// used) to roles.
var roleNames = map[string]models.RoleID{
	"ADMIN":                 models.RoleAdmin,
	"ADMINISTRATOR":         models.RoleAdmin,
	"MANAGER":               models.RoleManager,
	"STORE_STAFF":           models.RoleStoreStaff,
	"STORESTAFF":            models.RoleStoreStaff,
	"STAFF":                 models.RoleStoreStaff,
	"FRANCHISE_STORE_STAFF": models.RoleStoreStaff,
	"KITCHEN_MANAGER":       models.RoleKitchenManager,
	"KITCHENMANAGER":        models.RoleKitchenManager,
	"CENTRAL_KITCHEN_STAFF": models.RoleKitchenManager,
	"SUPPLY_COORDINATOR":    models.RoleSupplyCoordinator,
	"SUPPLYCOORDINATOR":     models.RoleSupplyCoordinator,
	"COORDINATOR":           models.RoleSupplyCoordinator,
	"SHIPPER":               models.RoleShipper,
	"DRIVER":                models.RoleShipper,
}

// RoleByName resolves a role name such as "Kitchen Manager", "ROLE_SHIPPER"
// or "store-staff". Unknown names yield RoleUnresolved.
func RoleByName(name string) models.RoleID {
	n := strings.ToUpper(strings.TrimSpace(name))
	n = strings.TrimPrefix(n, "ROLE_")
	n = strings.NewReplacer(" ", "_", "-", "_").Replace(n)
	if r, ok := roleNames[n]; ok {
		return r
	}
	return models.RoleUnresolved
}

// ResolveRole normalizes the role hints of a user payload into a RoleID.
// Each hint may be a numeric id, a numeric string, a role name, an object
// carrying an id or name, or an array of any of those. The first hint that
// resolves wins; if none does the result is RoleUnresolved. It never guesses.
func ResolveRole(hints ...json.RawMessage) models.RoleID {
	for _, h := range hints {
		if r := resolveHint(h, 0); r.Valid() {
			return r
		}
	}
	return models.RoleUnresolved
}

// maxHintDepth stops pathological nesting.
const maxHintDepth = 4

func resolveHint(raw json.RawMessage, depth int) models.RoleID {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || depth > maxHintDepth {
		return models.RoleUnresolved
	}

	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return models.RoleUnresolved
		}
		for _, item := range items {
			if r := resolveHint(item, depth+1); r.Valid() {
				return r
			}
		}
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return models.RoleUnresolved
		}
		for _, key := range []string{"roleId", "role_id", "id", "roleName", "role_name", "name", "authority", "role"} {
			if v, ok := obj[key]; ok {
				if r := resolveHint(v, depth+1); r.Valid() {
					return r
				}
			}
		}
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return models.RoleUnresolved
		}
		if id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			r, _ := models.RoleFromID(id)
			return validOrUnresolved(r)
		}
		return RoleByName(s)
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return models.RoleUnresolved
		}
		id, err := n.Int64()
		if err != nil {
			return models.RoleUnresolved
		}
		r, _ := models.RoleFromID(id)
		return validOrUnresolved(r)
	}
	return models.RoleUnresolved
}

func validOrUnresolved(r models.RoleID) models.RoleID {
	if r.Valid() {
		return r
	}
	return models.RoleUnresolved
}
