package models

// User as managed by the admin screens.
type User struct {
	ID       int64  `json:"user_id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Role     RoleID `json:"role_id"`
	RoleName string `json:"role_name"`
	StoreID  *int64 `json:"store_id,omitempty"`
	Active   bool   `json:"active"`
}

// UserPayload is the admin create/update form. Password is only required on create.
type UserPayload struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password,omitempty"`
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	RoleID   RoleID `json:"role_id" binding:"required,gte=1,lte=6"`
	StoreID  *int64 `json:"store_id"`
}

// Store is a franchise outlet.
type Store struct {
	ID      int64  `json:"store_id"`
	Name    string `json:"store_name"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// StorePayload is the admin create/update form.
type StorePayload struct {
	Name    string `json:"store_name" binding:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}
