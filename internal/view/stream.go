package view

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 8
	maxClients = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

// StreamServer serves sorted frames to websocket spectators as msgpack
// binary messages. It implements Renderer, so attaching it as the view's
// renderer streams every tick. Slow clients lose frames rather than
// stalling the loop; a client that cannot keep a single frame buffered
// is disconnected by its own write pump timing out.
type StreamServer struct {
	log  *zap.Logger
	addr string

	mu      sync.Mutex
	clients map[*streamClient]struct{}

	srv *http.Server
}

type streamClient struct {
	conn *websocket.Conn
	send chan []byte
}

func NewStreamServer(addr string, log *zap.Logger) *StreamServer {
	if log == nil {
		log = zap.NewNop()
	}
	return &StreamServer{
		log:     log,
		addr:    addr,
		clients: make(map[*streamClient]struct{}),
	}
}

// Render marshals the frame once and fans it out. Runs on the game loop
// goroutine and never blocks: full client buffers drop the frame.
func (s *StreamServer) Render(f Frame) {
	s.mu.Lock()
	n := len(s.clients)
	s.mu.Unlock()
	if n == 0 {
		return
	}
	buf, err := msgpack.Marshal(f)
	if err != nil {
		s.log.Error("frame encode failed", zap.Error(err))
		return
	}
	s.mu.Lock()
	for c := range s.clients {
		select {
		case c.send <- buf:
		default: // viewer lagging, skip this frame for it
		}
	}
	s.mu.Unlock()
}

// ListenAndServe runs the HTTP listener until ctx is cancelled.
func (s *StreamServer) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/view", s.handleView)
	s.srv = &http.Server{Addr: s.addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.ListenAndServe() }()
	s.log.Info("view stream listening", zap.String("addr", s.addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(shutdownCtx)
		s.closeAll()
		return nil
	case err := <-errCh:
		return err
	}
}

// ClientCount returns the number of connected spectators.
func (s *StreamServer) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *StreamServer) handleView(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	full := len(s.clients) >= maxClients
	s.mu.Unlock()
	if full {
		http.Error(w, "too many viewers", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	c := &streamClient{conn: conn, send: make(chan []byte, sendBuffer)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.log.Info("viewer connected", zap.String("remote", remoteIP(r)))

	go s.writePump(c)
	go s.readPump(c)
}

func (s *StreamServer) writePump(c *streamClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case buf, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.BinaryMessage, buf); err != nil {
				s.drop(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.drop(c)
				return
			}
		}
	}
}

// readPump discards inbound messages; spectators are read-only. It exists
// to service close frames and pong timing.
func (s *StreamServer) readPump(c *streamClient) {
	defer func() {
		s.drop(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *StreamServer) drop(c *streamClient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
}

func (s *StreamServer) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		close(c.send)
		c.conn.Close()
		delete(s.clients, c)
	}
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
