package v1

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/chatassist/chatassist/internal/util"
	"github.com/chatassist/chatassist/server/auth"
	"github.com/chatassist/chatassist/server/internal/apierrors"
	"github.com/chatassist/chatassist/store"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	User *User `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse keeps the field casing existing clients depend on.
type LoginResponse struct {
	Token        string           `json:"token"`
	RefreshToken string           `json:"refreshToken"`
	UserID       int32            `json:"userId"`
	Email        string           `json:"email"`
	Preferences  *UserPreferences `json:"preferences"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type RefreshTokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

type CurrentUserResponse struct {
	User        *User            `json:"user"`
	Preferences *UserPreferences `json:"preferences"`
}

type UpdatePreferencesRequest struct {
	SelectedCreatorID *string `json:"selected_creator_id"`
	OpenAIAPIKey      *string `json:"openai_api_key"`
	ModelName         *string `json:"model_name"`
	NumSuggestions    *int32  `json:"num_suggestions"`
}

type PreferencesResponse struct {
	Preferences *UserPreferences `json:"preferences"`
}

// Register creates an account plus its default preference row.
func (s *APIV1Service) Register(c echo.Context) error {
	ctx := c.Request().Context()
	request := &RegisterRequest{}
	if err := c.Bind(request); err != nil {
		return apierrors.InvalidArgument("malformed request body")
	}
	request.Email = strings.TrimSpace(strings.ToLower(request.Email))
	if request.Email == "" || request.Password == "" {
		return apierrors.InvalidArgument("email and password are required")
	}
	if !util.ValidateEmail(request.Email) {
		return apierrors.InvalidArgument("invalid email address")
	}
	if len(request.Password) < 6 {
		return apierrors.InvalidArgument("password must be at least 6 characters")
	}

	existing, err := s.Store.GetUser(ctx, &store.FindUser{Email: &request.Email})
	if err != nil {
		return apierrors.Internal("failed to look up user", err)
	}
	if existing != nil {
		return apierrors.AlreadyExists("Email already registered")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		return apierrors.Internal("failed to hash password", err)
	}
	user, err := s.Store.CreateUser(ctx, &store.User{
		Email:        request.Email,
		PasswordHash: string(passwordHash),
	})
	if err != nil {
		// Concurrent registration of the same address loses the race at
		// the unique index.
		if strings.Contains(err.Error(), "duplicate key") {
			return apierrors.AlreadyExists("Email already registered")
		}
		return apierrors.Internal("failed to create user", err)
	}
	if _, err := s.Store.CreateUserPreferences(ctx, &store.UserPreferences{UserID: user.ID}); err != nil {
		return apierrors.Internal("failed to create user preferences", err)
	}

	return c.JSON(http.StatusCreated, &RegisterResponse{User: convertUserFromStore(user)})
}

// Login verifies the credentials and issues an access/refresh token pair.
// Unknown email and wrong password produce the same message so the endpoint
// cannot be used to enumerate accounts.
func (s *APIV1Service) Login(c echo.Context) error {
	ctx := c.Request().Context()
	request := &LoginRequest{}
	if err := c.Bind(request); err != nil {
		return apierrors.InvalidArgument("malformed request body")
	}
	request.Email = strings.TrimSpace(strings.ToLower(request.Email))
	if request.Email == "" || request.Password == "" {
		return apierrors.InvalidArgument("email and password are required")
	}

	user, err := s.Store.GetUser(ctx, &store.FindUser{Email: &request.Email})
	if err != nil {
		return apierrors.Internal("failed to look up user", err)
	}
	if user == nil {
		return apierrors.Unauthenticated("Incorrect email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(request.Password)); err != nil {
		return apierrors.Unauthenticated("Incorrect email or password")
	}

	accessToken, refreshToken, err := s.generateTokenPair(user)
	if err != nil {
		return apierrors.Internal("failed to generate tokens", err)
	}

	now := time.Now().Unix()
	if _, err := s.Store.UpdateUser(ctx, &store.UpdateUser{ID: user.ID, LastLoginTs: &now}); err != nil {
		slog.Warn("failed to update last login", "user_id", user.ID, "error", err)
	}

	preferences, err := s.getOrCreatePreferences(ctx, user.ID)
	if err != nil {
		return apierrors.Internal("failed to load user preferences", err)
	}

	return c.JSON(http.StatusOK, &LoginResponse{
		Token:        accessToken,
		RefreshToken: refreshToken,
		UserID:       user.ID,
		Email:        user.Email,
		Preferences:  convertUserPreferencesFromStore(preferences),
	})
}

// RefreshToken exchanges a valid refresh token for a fresh token pair. The
// old refresh token is superseded rather than revoked; tokens are stateless.
func (s *APIV1Service) RefreshToken(c echo.Context) error {
	ctx := c.Request().Context()
	request := &RefreshTokenRequest{}
	if err := c.Bind(request); err != nil {
		return apierrors.InvalidArgument("malformed request body")
	}
	if request.RefreshToken == "" {
		return apierrors.InvalidArgument("refreshToken is required")
	}

	claims, err := auth.ParseToken(request.RefreshToken, auth.RefreshTokenAudienceName, []byte(s.Secret))
	if err != nil {
		return apierrors.Unauthenticated("invalid refresh token")
	}
	userID, err := claims.UserID()
	if err != nil {
		return apierrors.Unauthenticated("invalid refresh token")
	}
	user, err := s.Store.GetUser(ctx, &store.FindUser{ID: &userID})
	if err != nil {
		return apierrors.Internal("failed to look up user", err)
	}
	if user == nil {
		return apierrors.Unauthenticated("invalid refresh token")
	}

	accessToken, refreshToken, err := s.generateTokenPair(user)
	if err != nil {
		return apierrors.Internal("failed to generate tokens", err)
	}
	return c.JSON(http.StatusOK, &RefreshTokenResponse{
		Token:        accessToken,
		RefreshToken: refreshToken,
	})
}

// GetCurrentUser returns the authenticated user's profile and preferences.
func (s *APIV1Service) GetCurrentUser(c echo.Context) error {
	ctx := c.Request().Context()
	userID := auth.GetUserID(ctx)
	user, err := s.Store.GetUser(ctx, &store.FindUser{ID: &userID})
	if err != nil {
		return apierrors.Internal("failed to get user", err)
	}
	if user == nil {
		return apierrors.NotFound("User not found")
	}
	preferences, err := s.getOrCreatePreferences(ctx, userID)
	if err != nil {
		return apierrors.Internal("failed to load user preferences", err)
	}
	return c.JSON(http.StatusOK, &CurrentUserResponse{
		User:        convertUserFromStore(user),
		Preferences: convertUserPreferencesFromStore(preferences),
	})
}

// GetPreferences returns the caller's preference row, creating it with
// defaults when absent.
func (s *APIV1Service) GetPreferences(c echo.Context) error {
	ctx := c.Request().Context()
	preferences, err := s.getOrCreatePreferences(ctx, auth.GetUserID(ctx))
	if err != nil {
		return apierrors.Internal("failed to load user preferences", err)
	}
	return c.JSON(http.StatusOK, &PreferencesResponse{Preferences: convertUserPreferencesFromStore(preferences)})
}

// UpdatePreferences applies a partial update. Absent fields keep their
// stored value; selected_creator_id set to the empty string clears the
// selection.
func (s *APIV1Service) UpdatePreferences(c echo.Context) error {
	ctx := c.Request().Context()
	userID := auth.GetUserID(ctx)
	request := &UpdatePreferencesRequest{}
	if err := c.Bind(request); err != nil {
		return apierrors.InvalidArgument("malformed request body")
	}
	if request.NumSuggestions != nil && *request.NumSuggestions < 1 {
		return apierrors.InvalidArgument("num_suggestions must be at least 1")
	}
	if request.SelectedCreatorID != nil && *request.SelectedCreatorID != "" {
		if !util.ValidateUUID(*request.SelectedCreatorID) {
			return apierrors.InvalidArgument("invalid creator id")
		}
		creator, err := s.Store.GetCreator(ctx, &store.FindCreator{ID: request.SelectedCreatorID})
		if err != nil {
			return apierrors.Internal("failed to get creator", err)
		}
		if creator == nil {
			return apierrors.NotFound("Creator not found")
		}
	}

	// The row may not exist yet for accounts created before preferences
	// were introduced.
	if _, err := s.getOrCreatePreferences(ctx, userID); err != nil {
		return apierrors.Internal("failed to load user preferences", err)
	}
	preferences, err := s.Store.UpdateUserPreferences(ctx, &store.UpdateUserPreferences{
		UserID:            userID,
		SelectedCreatorID: request.SelectedCreatorID,
		OpenAIAPIKey:      request.OpenAIAPIKey,
		ModelName:         request.ModelName,
		NumSuggestions:    request.NumSuggestions,
	})
	if err != nil {
		return apierrors.Internal("failed to update user preferences", err)
	}
	return c.JSON(http.StatusOK, &PreferencesResponse{Preferences: convertUserPreferencesFromStore(preferences)})
}

func (s *APIV1Service) generateTokenPair(user *store.User) (accessToken, refreshToken string, err error) {
	accessExpiry := time.Now().Add(time.Duration(s.Profile.AccessTokenTTLMinutes) * time.Minute)
	accessToken, err = auth.GenerateAccessToken(user.Email, user.ID, accessExpiry, []byte(s.Secret))
	if err != nil {
		return "", "", err
	}
	refreshExpiry := time.Now().Add(time.Duration(s.Profile.RefreshTokenTTLHours) * time.Hour)
	refreshToken, err = auth.GenerateRefreshToken(user.Email, user.ID, refreshExpiry, []byte(s.Secret))
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (s *APIV1Service) getOrCreatePreferences(ctx context.Context, userID int32) (*store.UserPreferences, error) {
	preferences, err := s.Store.GetUserPreferences(ctx, &store.FindUserPreferences{UserID: &userID})
	if err != nil {
		return nil, err
	}
	if preferences != nil {
		return preferences, nil
	}
	return s.Store.CreateUserPreferences(ctx, &store.UserPreferences{UserID: userID})
}
