package ws

import "github.com/gorilla/websocket"

// Client is one connected feed viewer. The feed is read-only: inbound
// messages are drained and discarded.
type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		Conn: conn,
		Send: make(chan []byte, 8),
	}
}
