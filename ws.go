package main

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/Eshwarpawanpeddi/Jetbot-os/comms"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ControlHandler runs the websocket command channel: one JSON envelope in,
// one reply out.
func ControlHandler(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Print("upgrade:", err)
		return
	}
	defer c.Close()

	for {
		_, msg, err := c.ReadMessage()
		if err != nil {
			log.Println("read:", err)
			break
		}

		var cmd comms.Cmd
		if err := json.Unmarshal(msg, &cmd); err != nil {
			c.WriteJSON(comms.Reply{Error: "invalid json"})
			continue
		}

		if err := c.WriteJSON(ENV.Conductor.ProcessCommand(cmd)); err != nil {
			log.Println("write:", err)
			break
		}
	}
}

// TelemetryHandler registers the client for periodic state snapshots. The
// read loop only exists to notice the close.
func TelemetryHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Print("upgrade:", err)
		return
	}

	ENV.Conductor.AddClient(conn)
	log.Printf("telemetry client connected from %s (%d active)", r.RemoteAddr, ENV.Conductor.ClientCount())
	defer func() {
		ENV.Conductor.RemoveClient(conn)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
