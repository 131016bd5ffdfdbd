package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"kitchen_control/internal/apperr"
	"kitchen_control/internal/auth"
	"kitchen_control/internal/models"
)

// LoginResult is what the remote login endpoint hands back.
type LoginResult struct {
	Token string
	User  models.User
}

// AuthRepository defines the remote authentication calls.
type AuthRepository interface {
	Login(ctx context.Context, creds models.Credentials) (*LoginResult, error)
}

type authRepository struct {
	api *APIClient
}

// NewAuthRepository creates a new instance of AuthRepository.
func NewAuthRepository(api *APIClient) AuthRepository {
	return &authRepository{api: api}
}

type loginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *authRepository) Login(ctx context.Context, creds models.Credentials) (*LoginResult, error) {
	var raw json.RawMessage
	err := r.api.Do(ctx, http.MethodPost, "/auth/login", nil, loginBody{Username: creds.Username, Password: creds.Password}, &raw)
	if err != nil {
		return nil, loginError(err)
	}

	top, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	userObj := top.Object("user", "userInfo", "account")
	if userObj == nil {
		userObj = top
	}
	user := mapUser(userObj)
	if !user.Role.Valid() {
		// Some backend builds put the role next to the user, not inside it.
		user.Role = auth.ResolveRole(top["role"], top["roleId"], top["role_id"], top["roleName"], top["roles"], top["authorities"])
		if user.Role.Valid() {
			user.RoleName = user.Role.DisplayName()
		}
	}
	if user.Username == "" {
		user.Username = creds.Username
	}

	token := top.String("token", "accessToken", "access_token", "jwt")
	if token == "" {
		token = userObj.String("token", "accessToken")
	}
	if user.ID == 0 {
		return nil, apperr.New(apperr.KindInternal, "The server returned an unexpected login response.")
	}
	return &LoginResult{Token: token, User: user}, nil
}

// loginError collapses bad-credential responses into one message so the
// server's wording never reaches the login form.
func loginError(err error) error {
	var e *apperr.Error
	if !errors.As(err, &e) {
		return err
	}
	switch {
	case e.Status == http.StatusBadRequest || e.Status == http.StatusUnauthorized:
		return &apperr.Error{Kind: apperr.KindAuthentication, Message: apperr.MsgInvalidCredentials, Status: e.Status, Err: e}
	case e.Kind == apperr.KindNetwork:
		return e
	case e.Kind == apperr.KindAuthorization:
		return &apperr.Error{Kind: apperr.KindAuthentication, Message: apperr.MsgInvalidCredentials, Status: e.Status, Err: e}
	}
	return e
}
