// Package status publishes the state of the control loop to WebSocket clients and accepts the
// reset action from them.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/robmorgan/kinetic/engine"
	"github.com/robmorgan/kinetic/logger"
	"github.com/robmorgan/kinetic/protocol"
)

// Controller is the part of the engine the status server needs.
type Controller interface {
	LastStatus() engine.Status
	Reset()
}

// Config for the server
type Config struct {
	ListenAddr string
}

// Server broadcasts a status message to every connected client after each cycle.
type Server struct {
	cfg       Config
	ctrl      Controller
	clients   map[*Client]bool
	clientsMu sync.RWMutex
	upgrader  websocket.Upgrader
}

// Client represents a connected WebSocket client
type Client struct {
	conn   *websocket.Conn
	server *Server
	send   chan []byte
	mu     sync.Mutex
	closed bool
}

// New creates a new server instance
func New(cfg Config, ctrl Controller) *Server {
	return &Server{
		cfg:     cfg,
		ctrl:    ctrl,
		clients: make(map[*Client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // monitors run on the local network
			},
		},
	}
}

// Handler returns the HTTP handler serving /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		s.Stop()
	}()

	logger.GetProjectLogger().WithField("addr", s.cfg.ListenAddr).Info("status server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop closes every client connection.
func (s *Server) Stop() {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for client := range s.clients {
		client.Close()
	}
}

// Publish sends status to every client. It never blocks, a client with a full buffer misses the
// update. Register it with Engine.AddListener.
func (s *Server) Publish(status engine.Status) {
	data, err := encode(protocol.TypeStatus, statusPayload(status))
	if err != nil {
		logger.GetProjectLogger().WithError(err).Error("encoding status")
		return
	}

	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for client := range s.clients {
		client.sendRaw(data)
	}
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

func statusPayload(status engine.Status) protocol.StatusPayload {
	p := protocol.StatusPayload{
		Info:     make([]protocol.InfoChannel, 0, len(status.Info)),
		Table:    make([]protocol.InfoRow, 0, len(status.Table)),
		Channels: []float32(status.Output),
	}
	for _, c := range status.Info {
		p.Info = append(p.Info, protocol.InfoChannel{Name: c.Name, Value: c.Value})
	}
	for _, row := range status.Table {
		p.Table = append(p.Table, protocol.InfoRow{Name: row[0], Value: row[1]})
	}
	if p.Channels == nil {
		p.Channels = []float32{}
	}
	if status.Err != nil {
		p.Error = status.Err.Error()
	}
	return p
}

func encode(msgType string, payload any) ([]byte, error) {
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(msg)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	log := logger.GetProjectLogger()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := &Client{
		conn:   conn,
		server: s,
		send:   make(chan []byte, 64),
	}

	s.clientsMu.Lock()
	s.clients[client] = true
	s.clientsMu.Unlock()
	log.WithField("remote", r.RemoteAddr).Info("status client connected")

	go client.writePump()
	go client.readPump()

	client.sendMessage(protocol.TypeStatus, statusPayload(s.ctrl.LastStatus()))
}

func (c *Client) sendMessage(msgType string, payload any) {
	data, err := encode(msgType, payload)
	if err != nil {
		logger.GetProjectLogger().WithError(err).Error("encoding message")
		return
	}
	c.sendRaw(data)
}

func (c *Client) sendRaw(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	select {
	case c.send <- data:
	default:
		logger.GetProjectLogger().Debug("client send buffer full, dropping message")
	}
}

func (c *Client) readPump() {
	defer func() {
		c.server.clientsMu.Lock()
		delete(c.server.clients, c)
		c.server.clientsMu.Unlock()
		c.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.GetProjectLogger().WithError(err).Warn("websocket error")
			}
			return
		}

		c.handleMessage(data)
	}
}

func (c *Client) handleMessage(data []byte) {
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendMessage(protocol.TypeError, protocol.ErrorPayload{
			Code:    protocol.ErrInvalidMessage,
			Message: "Failed to parse message",
		})
		return
	}

	switch msg.Type {
	case protocol.TypePing:
		var payload protocol.PingPayload
		if err := msg.ParsePayload(&payload); err != nil {
			return
		}
		c.sendMessage(protocol.TypePong, protocol.PongPayload{
			ClientTimestamp: payload.Timestamp,
			ServerTimestamp: time.Now().UnixMilli(),
		})

	case protocol.TypeReset:
		c.server.ctrl.Reset()
		logger.GetProjectLogger().Info("reset requested by status client")
		c.sendMessage(protocol.TypeStatus, statusPayload(c.server.ctrl.LastStatus()))

	default:
		c.sendMessage(protocol.TypeError, protocol.ErrorPayload{
			Code:    protocol.ErrUnknownType,
			Message: "Unknown message type: " + msg.Type,
		})
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close closes the client connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}
