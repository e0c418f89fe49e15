package ws

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/saturnino-fabrica-de-software/chamada/internal/session"
)

// Handler joins the connection to the room of the class meeting named by the
// subject, semester and branch query parameters.
func Handler(hub *Hub) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		room, ok := roomFromLocals(c)
		if !ok {
			_ = c.Close()
			return
		}

		client := &Client{
			hub:  hub,
			conn: c,
			room: room,
			send: make(chan []byte, 256),
		}

		hub.register <- client

		go client.WritePump()
		client.ReadPump()
	})
}

// UpgradeMiddleware rejects plain HTTP requests and validates the room
// parameters before the upgrade.
func UpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		subject := c.Query("subject")
		branch := c.Query("branch")
		semester, err := strconv.Atoi(c.Query("semester"))
		if subject == "" || branch == "" || err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "subject, semester and branch are required")
		}

		c.Locals("room", session.Room(subject, semester, branch))
		return c.Next()
	}
}

func roomFromLocals(c *websocket.Conn) (string, bool) {
	room, ok := c.Locals("room").(string)
	return room, ok && room != ""
}
