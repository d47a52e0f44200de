package server

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// wsClient is one preview connection. Reads happen on the connection's own
// goroutine; writes are serialized.
type wsClient struct {
	conn *websocket.Conn
	ip   string
	mu   sync.Mutex
}

func newWSClient(conn *websocket.Conn, ip string, readLimit int64) *wsClient {
	if readLimit > 0 {
		conn.SetReadLimit(readLimit)
	}
	return &wsClient{conn: conn, ip: ip}
}

// ReadRequest blocks until the next JSON request arrives. Blank messages are
// skipped. A malformed request returns a *json.SyntaxError or
// *json.UnmarshalTypeError and leaves the connection usable.
func (c *wsClient) ReadRequest() (Request, error) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return Request{}, err
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}

		var req Request
		if err := json.Unmarshal(data, &req); err != nil {
			return Request{}, err
		}
		return req, nil
	}
}

// WriteResponse sends resp as one JSON text message.
func (c *wsClient) WriteResponse(resp Response) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(resp)
}

func (c *wsClient) Close() error {
	return c.conn.Close()
}

func (c *wsClient) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
