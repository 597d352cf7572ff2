package handler

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/classpulse/grading-gateway/internal/notify"
)

// EventsHandler streams grading lifecycle events to connected gradebook
// clients over a websocket.
type EventsHandler struct {
	broker *notify.Broker
	logger zerolog.Logger
}

// NewEventsHandler constructs the handler.
func NewEventsHandler(broker *notify.Broker, logger zerolog.Logger) *EventsHandler {
	return &EventsHandler{
		broker: broker,
		logger: logger.With().Str("component", "events_handler").Logger(),
	}
}

// Register binds the websocket upgrade under the provided router group.
func (h *EventsHandler) Register(router fiber.Router) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	router.Get("/ws", websocket.New(h.handleConnection))
}

func (h *EventsHandler) handleConnection(conn *websocket.Conn) {
	userID := websocketUserID(conn)
	if userID == "" {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "user id missing"))
		_ = conn.Close()
		return
	}

	events, cancel := h.broker.Subscribe()
	defer cancel()

	h.logger.Info().Str("user_id", userID).Msg("grading events websocket connected")
	defer h.logger.Info().Str("user_id", userID).Msg("grading events websocket disconnected")

	done := make(chan struct{})

	// Read pump: we never expect client payloads, but reading is required to
	// process control frames and detect disconnects.
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				h.logger.Debug().Err(err).Str("user_id", userID).Msg("failed to deliver grading event")
				return
			}
		}
	}
}

func websocketUserID(conn *websocket.Conn) string {
	if value := conn.Locals("user_id"); value != nil {
		switch v := value.(type) {
		case float64:
			return fmt.Sprintf("%d", uint(v))
		case uint:
			return fmt.Sprintf("%d", v)
		case int:
			return fmt.Sprintf("%d", v)
		case string:
			return strings.TrimSpace(v)
		}
	}
	return ""
}
