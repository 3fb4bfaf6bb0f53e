package http

import (
	"encoding/json"
	"log"
	"net/http"

	"classroom-live-service/internal/realtime"
	"github.com/gorilla/websocket"
)

// WSHandler upgrades HTTP requests to websockets and feeds inbound control
// messages into the gateway.
type WSHandler struct {
	gateway  *realtime.Gateway
	upgrader websocket.Upgrader
}

func NewWSHandler(gateway *realtime.Gateway) *WSHandler {
	return &WSHandler{
		gateway: gateway,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// controlMessage is the inbound wire format: an action plus one entity id.
type controlMessage struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type connectedPayload struct {
	SessionID string `json:"sessionId"`
}

// ServeWS runs one session: upgrade, register, then read control messages
// until the connection drops.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}

	sess := h.gateway.Connect(conn)
	h.gateway.Push(sess.ID, "connected", connectedPayload{SessionID: sess.ID})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			h.gateway.Disconnect(sess, "read: "+err.Error())
			return
		}
		var msg controlMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			// Malformed frames are dropped; the connection stays open.
			log.Printf("ws session %s sent malformed control message: %v", sess.ID, err)
			continue
		}
		h.gateway.HandleControl(sess, msg.Type, msg.ID)
	}
}
