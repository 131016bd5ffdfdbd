package services

import (
	"context"
	"strings"

	"kitchen_control/internal/apperr"
	"kitchen_control/internal/auth"
	"kitchen_control/internal/models"
	"kitchen_control/internal/repositories"
	"kitchen_control/internal/session"
	"kitchen_control/pkg/utils"
)

// ErrRoleUnresolved is returned when neither the login response nor the user
// profile names a known role. No session is created in that case.
var ErrRoleUnresolved = apperr.New(apperr.KindAuthentication, apperr.MsgRoleUnresolved)

// LoginResponse is what the login view hands back to the browser.
type LoginResponse struct {
	Principal models.Principal `json:"principal"`
	Redirect  string           `json:"redirect"`
	// Token is the session cookie value; it is set as a cookie, never rendered.
	Token string `json:"-"`
}

// AuthService defines the interface for login and logout.
type AuthService interface {
	Login(ctx context.Context, creds models.Credentials, from string) (*LoginResponse, error)
	Logout(ctx context.Context, rec *session.Record) error
}

type authService struct {
	authRepo repositories.AuthRepository
	userRepo repositories.UserRepository
	sessions *session.Manager
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(authRepo repositories.AuthRepository, userRepo repositories.UserRepository, sessions *session.Manager) AuthService {
	return &authService{authRepo: authRepo, userRepo: userRepo, sessions: sessions}
}

// Login authenticates against the remote API, resolves the canonical role and
// opens a session. The redirect honours from only when it is a local path.
func (s *authService) Login(ctx context.Context, creds models.Credentials, from string) (*LoginResponse, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	if creds.Username == "" || creds.Password == "" {
		return nil, apperr.Validation("username", "Username and password are required.")
	}

	result, err := s.authRepo.Login(ctx, creds)
	if err != nil {
		return nil, err
	}

	user := result.User
	if !user.Role.Valid() {
		// The login payload did not carry a usable role; ask the profile.
		profile, err := s.userRepo.GetByID(repositories.ContextWithToken(ctx, result.Token), user.ID)
		if err != nil {
			if apperr.Is(err, apperr.KindNetwork) {
				return nil, err
			}
			utils.LogWarn(err, "Login: profile lookup for role failed", map[string]interface{}{"user_id": user.ID})
		} else if profile != nil {
			user.Role = profile.Role
			if user.StoreID == nil {
				user.StoreID = profile.StoreID
			}
			if user.FullName == "" {
				user.FullName = profile.FullName
			}
		}
	}
	if !user.Role.Valid() {
		utils.LogWarn(ErrRoleUnresolved, "Login rejected: role unresolved", map[string]interface{}{"user_id": user.ID})
		return nil, ErrRoleUnresolved
	}

	principal := models.Principal{
		ID:           user.ID,
		Username:     user.Username,
		DisplayName:  utils.FirstNonEmpty(user.FullName, user.Username),
		Role:         user.Role,
		SessionToken: result.Token,
	}
	if user.Role == models.RoleStoreStaff {
		principal.StoreID = user.StoreID
	}

	rec, token, err := s.sessions.Create(ctx, principal)
	if err != nil {
		return nil, err
	}
	utils.LogInfo("User signed in", map[string]interface{}{
		"user_id":    principal.ID,
		"role":       principal.Role.String(),
		"session_id": rec.ID,
	})
	return &LoginResponse{
		Principal: rec.Principal,
		Redirect:  auth.SafeReturnPath(from, principal.Role),
		Token:     token,
	}, nil
}

// Logout destroys the session, its cart and its inactivity timer.
func (s *authService) Logout(ctx context.Context, rec *session.Record) error {
	if rec == nil {
		return nil
	}
	if err := s.sessions.Destroy(ctx, rec.ID); err != nil {
		return apperr.Wrap(apperr.KindInternal, "Could not end the session.", err)
	}
	utils.LogInfo("User signed out", map[string]interface{}{"user_id": rec.Principal.ID, "session_id": rec.ID})
	return nil
}
