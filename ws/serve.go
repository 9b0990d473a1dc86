package ws

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/waylines/waylines/models"
	"github.com/waylines/waylines/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServePrivateChat upgrades the connection and starts a private chat session.
// The caller has already authenticated the user and verified conversation
// membership; access is not re-checked per message, so a participant removed
// mid-session keeps the open socket until disconnect.
func ServePrivateChat(hub Broadcaster, chat services.ChatService, user *models.User, conversationID uint, w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	client := newClient(hub, conn, user, &privateSession{
		conversationID: conversationID,
		user:           user,
		chat:           chat,
	})
	go client.run()
	return nil
}

// ServeRouteChat upgrades the connection and starts a route chat session.
// The caller has already evaluated the route visibility gate.
func ServeRouteChat(hub Broadcaster, chat services.ChatService, user *models.User, routeID uint, w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	client := newClient(hub, conn, user, &routeSession{
		routeID: routeID,
		user:    user,
		chat:    chat,
	})
	go client.run()
	return nil
}
