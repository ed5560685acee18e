package handlers

import (
	"net/http"
	"testing"

	"github.com/spacehub/backend/internal/models"
)

func TestDirectMessagesEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	alice, aliceToken := createTestUser(t, env.db, "dm-alice@test.com", "dm-alice", "password123")
	bob, bobToken := createTestUser(t, env.db, "dm-bob@test.com", "dm-bob", "password123")
	stranger, _ := createTestUser(t, env.db, "dm-stranger@test.com", "dm-stranger", "password123")
	makeFriends(t, env.db, alice, bob)

	t.Run("POST /api/direct-messages/ non-friend forbidden", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/direct-messages/", map[string]any{
			"receiverId": stranger.ID.String(),
			"content":    "hey",
		}, authHeaders(aliceToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusForbidden)
		assertEnvelopeError(t, body, "you can only message friends")
	})

	t.Run("POST /api/direct-messages/ empty content rejected", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/direct-messages/", map[string]any{
			"receiverId": bob.ID.String(),
			"content":    "  ",
		}, authHeaders(aliceToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusBadRequest)
		assertEnvelopeError(t, body, "message content is required")
	})

	t.Run("POST /api/direct-messages/ delivers unread message", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/direct-messages/", map[string]any{
			"receiverId": bob.ID.String(),
			"content":    "hello bob",
		}, authHeaders(aliceToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusCreated)
		data := body["data"].(map[string]any)
		if data["read"] != false {
			t.Fatal("new messages must start unread")
		}
	})

	t.Run("GET /api/direct-messages/ summarizes conversations with unread count", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/direct-messages/", map[string]any{
			"receiverId": bob.ID.String(),
			"content":    "still there?",
		}, authHeaders(aliceToken))
		assertStatus(t, resp, http.StatusCreated)

		resp = performRequest(t, env.app, http.MethodGet, "/api/direct-messages/", nil, authHeaders(bobToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusOK)
		data := body["data"].([]any)
		if len(data) != 1 {
			t.Fatalf("expected one conversation, got %d", len(data))
		}
		summary := data[0].(map[string]any)
		if summary["unreadCount"].(float64) != 2 {
			t.Fatalf("expected 2 unread, got %v", summary["unreadCount"])
		}
		partner := summary["partner"].(map[string]any)
		if partner["username"] != "dm-alice" {
			t.Fatalf("expected dm-alice as partner, got %v", partner["username"])
		}
		last := summary["lastMessage"].(map[string]any)
		if last["content"] != "still there?" {
			t.Fatalf("expected newest message as lastMessage, got %v", last["content"])
		}
	})

	t.Run("GET /api/direct-messages/:partnerId non-friend forbidden", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/direct-messages/"+stranger.ID.String(), nil, authHeaders(aliceToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusForbidden)
		assertEnvelopeError(t, body, "you can only view messages with friends")
	})

	t.Run("GET /api/direct-messages/:partnerId marks thread read", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/direct-messages/"+alice.ID.String(), nil, authHeaders(bobToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusOK)
		data := body["data"].([]any)
		if len(data) != 2 {
			t.Fatalf("expected 2 messages in thread, got %d", len(data))
		}
		if data[0].(map[string]any)["content"] != "hello bob" {
			t.Fatal("thread must be oldest-first")
		}

		var unread int64
		err := env.db.Model(&models.DirectMessage{}).
			Where("receiver_id = ? AND read = ?", bob.ID, false).
			Count(&unread).Error
		if err != nil {
			t.Fatalf("failed counting unread: %v", err)
		}
		if unread != 0 {
			t.Fatalf("expected thread marked read, %d unread left", unread)
		}
	})

	t.Run("reading a thread leaves own sent messages untouched", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/direct-messages/", map[string]any{
			"receiverId": alice.ID.String(),
			"content":    "yes, here",
		}, authHeaders(bobToken))
		assertStatus(t, resp, http.StatusCreated)

		resp = performRequest(t, env.app, http.MethodGet, "/api/direct-messages/"+alice.ID.String(), nil, authHeaders(bobToken))
		assertStatus(t, resp, http.StatusOK)

		var unread int64
		err := env.db.Model(&models.DirectMessage{}).
			Where("receiver_id = ? AND read = ?", alice.ID, false).
			Count(&unread).Error
		if err != nil {
			t.Fatalf("failed counting unread: %v", err)
		}
		if unread != 1 {
			t.Fatalf("bob reading the thread must not mark alice's copy, got %d unread", unread)
		}
	})
}
