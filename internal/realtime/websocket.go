package realtime

import (
	"strings"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spacehub/backend/internal/middleware"
	"github.com/spacehub/backend/internal/models"
	"github.com/spacehub/backend/internal/services"
	"github.com/spacehub/backend/pkg/logger"
)

type clientFrame struct {
	Type    string `json:"type"`
	Channel string `json:"channel"`
}

type ackFrame struct {
	Type    string `json:"type"`
	Channel string `json:"channel,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Handler owns the websocket endpoint: it authenticates the connection,
// enforces the membership guard at subscribe time, and pumps hub events to
// the client.
type Handler struct {
	Hub    *Hub
	Auth   *middleware.AuthMiddleware
	Access *services.AccessService
}

func NewHandler(hub *Hub, auth *middleware.AuthMiddleware, access *services.AccessService) *Handler {
	return &Handler{Hub: hub, Auth: auth, Access: access}
}

// Upgrade gates the HTTP-to-websocket transition and resolves the user from
// the token query parameter before the protocol switch.
func (h *Handler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	user, err := h.Auth.ResolveToken(c.Query("token"))
	if err != nil {
		return fiber.ErrUnauthorized
	}

	c.Locals("wsUser", user)
	return c.Next()
}

func (h *Handler) Serve() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		user, ok := conn.Locals("wsUser").(*models.User)
		if !ok {
			_ = conn.Close()
			return
		}

		sub := h.Hub.NewSubscription()
		defer sub.Close()

		// The actor always receives their own events.
		sub.Subscribe(UserChannel(user.ID))

		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				var frame clientFrame
				if err := conn.ReadJSON(&frame); err != nil {
					return
				}
				h.handleFrame(conn, sub, user, frame)
			}
		}()

		for {
			select {
			case event, open := <-sub.Events():
				if !open {
					return
				}
				if err := conn.WriteJSON(event); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	})
}

func (h *Handler) handleFrame(conn *websocket.Conn, sub *Subscription, user *models.User, frame clientFrame) {
	switch frame.Type {
	case "subscribe":
		if err := h.authorizeChannel(user, frame.Channel); err != nil {
			_ = conn.WriteJSON(ackFrame{Type: "error", Channel: frame.Channel, Error: err.Error()})
			return
		}
		sub.Subscribe(frame.Channel)
		_ = conn.WriteJSON(ackFrame{Type: "subscribed", Channel: frame.Channel})
	case "unsubscribe":
		sub.Unsubscribe(frame.Channel)
		_ = conn.WriteJSON(ackFrame{Type: "unsubscribed", Channel: frame.Channel})
	default:
		logger.WarnWithUser(user.ID.String(), "ws_unknown_frame", map[string]interface{}{
			"type": frame.Type,
		})
	}
}

func (h *Handler) authorizeChannel(user *models.User, channel string) error {
	kind, rawID, found := strings.Cut(channel, ":")
	if !found {
		return errInvalidChannel
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return errInvalidChannel
	}

	switch kind {
	case "user":
		if id != user.ID {
			return services.ErrNotMember
		}
		return nil
	case "group":
		_, err := h.Access.RequireMember(id, user.ID)
		return err
	case "note":
		note, err := h.Access.NoteGroup(id)
		if err != nil {
			return errInvalidChannel
		}
		_, err = h.Access.RequireMember(note.GroupID, user.ID)
		return err
	default:
		return errInvalidChannel
	}
}

var errInvalidChannel = fiber.NewError(fiber.StatusBadRequest, "invalid channel")
