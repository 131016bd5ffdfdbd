package repositories

import (
	"context"
	"net/http"

	"kitchen_control/internal/models"
	"kitchen_control/pkg/utils"
)

// UserRepository defines the remote user calls.
type UserRepository interface {
	List(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, payload models.UserPayload) (*models.User, error)
	Update(ctx context.Context, id int64, payload models.UserPayload) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

type userRepository struct {
	api *APIClient
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(api *APIClient) UserRepository {
	return &userRepository{api: api}
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	return fetchList(ctx, r.api, "/users", nil, mapUser)
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return fetchOne(ctx, r.api, http.MethodGet, "/users/"+utils.Int64ToStr(id), nil, nil, mapUser)
}

func (r *userRepository) Create(ctx context.Context, payload models.UserPayload) (*models.User, error) {
	return sendOptional(ctx, r.api, http.MethodPost, "/users", nil, toUserBody(payload), mapUser)
}

func (r *userRepository) Update(ctx context.Context, id int64, payload models.UserPayload) (*models.User, error) {
	return sendOptional(ctx, r.api, http.MethodPut, "/users/"+utils.Int64ToStr(id), nil, toUserBody(payload), mapUser)
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	return r.api.Do(ctx, http.MethodDelete, "/users/"+utils.Int64ToStr(id), nil, nil, nil)
}

// FilterByRole keeps the users holding role.
func FilterByRole(users []models.User, role models.RoleID) []models.User {
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out
}
