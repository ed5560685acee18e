package handlers

import (
	"net/http"
	"testing"
)

func TestAuthEndpoints(t *testing.T) {
	env := setupTestEnv(t)

	var token string

	t.Run("POST /api/auth/register creates user and returns token", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/auth/register", map[string]any{
			"email":    "alice@test.com",
			"username": "alice",
			"password": "password123",
		}, nil)
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusCreated)

		data := body["data"].(map[string]any)
		token = data["token"].(string)
		if token == "" {
			t.Fatal("expected a non-empty token")
		}
		user := data["user"].(map[string]any)
		if user["username"] != "alice" {
			t.Fatalf("expected username alice, got %v", user["username"])
		}
		if _, exposed := user["passwordHash"]; exposed {
			t.Fatal("password hash must not appear in responses")
		}
	})

	t.Run("POST /api/auth/register rejects short password", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/auth/register", map[string]any{
			"email":    "bob@test.com",
			"username": "bob",
			"password": "short",
		}, nil)
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusBadRequest)
		assertEnvelopeError(t, body, "password must be at least 8 characters")
	})

	t.Run("POST /api/auth/register rejects duplicate email", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/auth/register", map[string]any{
			"email":    "alice@test.com",
			"username": "alice2",
			"password": "password123",
		}, nil)
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusConflict)
		assertEnvelopeError(t, body, "email or username already taken")
	})

	t.Run("POST /api/auth/login with valid credentials", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/auth/login", map[string]any{
			"email":    "alice@test.com",
			"password": "password123",
		}, nil)
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusOK)
		data := body["data"].(map[string]any)
		if data["token"] == "" {
			t.Fatal("expected a token on login")
		}
	})

	t.Run("POST /api/auth/login with wrong password", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/auth/login", map[string]any{
			"email":    "alice@test.com",
			"password": "wrong-password",
		}, nil)
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusUnauthorized)
		assertEnvelopeError(t, body, "invalid credentials")
	})

	t.Run("GET /api/auth/me requires a token", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/auth/me", nil, nil)
		assertStatus(t, resp, http.StatusUnauthorized)
	})

	t.Run("GET /api/auth/me returns current user", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/auth/me", nil, authHeaders(token))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusOK)
		data := body["data"].(map[string]any)
		if data["email"] != "alice@test.com" {
			t.Fatalf("expected alice@test.com, got %v", data["email"])
		}
	})

	t.Run("PUT /api/auth/me updates username and avatar", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPut, "/api/auth/me", map[string]any{
			"username":  "alice-renamed",
			"avatarUrl": "https://cdn.test/avatar.png",
		}, authHeaders(token))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusOK)
		data := body["data"].(map[string]any)
		if data["username"] != "alice-renamed" {
			t.Fatalf("expected renamed user, got %v", data["username"])
		}
		if data["avatarUrl"] != "https://cdn.test/avatar.png" {
			t.Fatalf("expected avatar url, got %v", data["avatarUrl"])
		}
	})

	t.Run("PUT /api/auth/me with no fields", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPut, "/api/auth/me", map[string]any{}, authHeaders(token))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusBadRequest)
		assertEnvelopeError(t, body, "no valid fields to update")
	})

	t.Run("PUT /api/auth/password rejects wrong current password", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPut, "/api/auth/password", map[string]any{
			"oldPassword": "not-the-password",
			"newPassword": "password456",
		}, authHeaders(token))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusUnauthorized)
		assertEnvelopeError(t, body, "current password is incorrect")
	})

	t.Run("PUT /api/auth/password rotates the password", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPut, "/api/auth/password", map[string]any{
			"oldPassword": "password123",
			"newPassword": "password456",
		}, authHeaders(token))
		assertStatus(t, resp, http.StatusOK)

		resp = performJSONRequest(t, env.app, http.MethodPost, "/api/auth/login", map[string]any{
			"email":    "alice@test.com",
			"password": "password456",
		}, nil)
		assertStatus(t, resp, http.StatusOK)
	})
}
