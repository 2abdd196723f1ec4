package services

import (
	"context"
	"net/http"
	"strings"

	"github.com/desertthunder/resonate/internal/models"
)

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (models.Session, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		return models.Session{}, NewValidationError("Email and password are required")
	}

	body := map[string]string{"email": creds.Email, "password": creds.Password}
	return c.authenticate(ctx, "/api/auth/login", body, "Failed to login")
}

// Signup creates an account and returns its session.
//
// A blank username defaults to the local part of the email, or "user".
func (c *Client) Signup(ctx context.Context, creds models.Credentials) (models.Session, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		return models.Session{}, NewValidationError("Email and password are required")
	}

	body := map[string]string{
		"username": DefaultUsername(creds.Username, creds.Email),
		"email":    creds.Email,
		"password": creds.Password,
	}
	return c.authenticate(ctx, "/api/auth/signup", body, "Failed to create user")
}

// DefaultUsername returns username, or a name derived from email when it is blank.
func DefaultUsername(username, email string) string {
	if u := strings.TrimSpace(username); u != "" {
		return u
	}
	if local, _, ok := strings.Cut(strings.TrimSpace(email), "@"); ok && local != "" {
		return local
	}
	return "user"
}

func (c *Client) authenticate(ctx context.Context, path string, body any, fallback string) (models.Session, error) {
	payload, err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     path,
		body:     body,
		fallback: fallback,
	})
	if err != nil {
		return models.Session{}, err
	}

	user := asObject(payload["user"])
	sess := models.Session{
		User: models.AuthUser{
			UID:      asString(user["uid"]),
			Username: asString(user["username"]),
			Email:    asString(user["email"]),
			IsVIP:    asBool(user["isvip"]),
		},
		Token: asString(payload["token"]),
	}

	if !sess.Valid() {
		return models.Session{}, httpError(http.StatusOK, fallback)
	}
	return sess, nil
}

// Profile fetches a user's profile.
func (c *Client) Profile(ctx context.Context, uid string) (models.UserProfile, error) {
	if err := requireUser(uid, "Login required"); err != nil {
		return models.UserProfile{}, err
	}

	payload, err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/api/users/" + escape(uid),
		fallback: "Unable to load user " + uid,
	})
	if err != nil {
		return models.UserProfile{}, err
	}

	return normalizeProfile(payload, uid), nil
}

// UpdateProfile sends the set fields of update and returns the profile the server echoes back.
func (c *Client) UpdateProfile(ctx context.Context, uid string, update models.ProfileUpdate) (models.UserProfile, error) {
	if err := requireUser(uid, "Login required"); err != nil {
		return models.UserProfile{}, err
	}
	if err := update.Validate(); err != nil {
		return models.UserProfile{}, NewValidationError("%s", capitalize(err.Error()))
	}

	payload, err := c.do(ctx, call{
		method:   http.MethodPut,
		path:     "/api/users/" + escape(uid),
		body:     update,
		fallback: "Failed to update user " + uid,
	})
	if err != nil {
		return models.UserProfile{}, err
	}

	return normalizeProfile(payload, uid), nil
}

// UpgradeVIP promotes uid to the VIP tier. The session token authorizes the call.
func (c *Client) UpgradeVIP(ctx context.Context, uid, token string) error {
	if err := requireUser(uid, "Login required"); err != nil {
		return err
	}
	if strings.TrimSpace(token) == "" {
		return NewValidationError("Login required")
	}

	_, err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/api/users/" + escape(uid) + "/vip",
		token:    token,
		fallback: "Failed to promote to VIP",
	})
	return err
}

func normalizeProfile(m map[string]any, uid string) models.UserProfile {
	if s := asString(m["uid"]); s != "" {
		uid = s
	}

	return models.UserProfile{
		UID:          uid,
		Username:     asString(m["username"]),
		Email:        asString(m["email"]),
		Gender:       asOptString(m["gender"]),
		Age:          asOptInt(m["age"]),
		Street:       asOptString(m["street"]),
		City:         asOptString(m["city"]),
		Province:     asOptString(m["province"]),
		MBTI:         asOptString(m["mbti"]),
		Hobbies:      asStrings(m["hobbies"]),
		IsVIP:        asBool(m["isvip"]),
		NumPlaylists: asIntOr(m["num_playlists"], 0),
		NumFavorites: asIntOr(m["num_favorites"], 0),
		CreatedAt:    asString(m["created_at"]),
		UpdatedAt:    asString(m["updated_at"]),
	}
}
