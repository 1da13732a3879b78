package transport

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/hearthmud/internal/config"
)

// ListenWebSocket serves WebSocket clients on cfg.Address at cfg.Path and
// returns the bound address. Each text frame is one line of input.
func (t *Transport) ListenWebSocket(cfg config.WebSocketConfig) (net.Addr, error) {
	ln, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.HandleFunc(cfg.Path, t.handleUpgrade(cfg))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.shutdown.Load() {
		ln.Close()
		return nil, ErrClosed
	}
	t.servers = append(t.servers, srv)
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.log.Error("WebSocket server stopped", "error", err)
		}
	}()

	t.log.Info("WebSocket listening", "address", ln.Addr().String(), "path", cfg.Path)
	return ln.Addr(), nil
}

func (t *Transport) handleUpgrade(cfg config.WebSocketConfig) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			allowed := cfg.IsOriginAllowed(origin, r.Host)
			if !allowed {
				t.log.Warn("WebSocket connection rejected - origin not allowed",
					"origin", origin,
					"host", r.Host,
					"remote_addr", r.RemoteAddr)
			}
			return allowed
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if t.shutdown.Load() {
			http.Error(w, "Server shutting down.", http.StatusServiceUnavailable)
			return
		}
		slot, err := t.limiter.Admit(realIP(r))
		if err != nil {
			t.log.Warn("WebSocket connection rejected",
				"remote_addr", r.RemoteAddr,
				"client_ip", realIP(r),
				"reason", err)
			http.Error(w, strings.TrimSpace(RejectMessage), http.StatusTooManyRequests)
			return
		}

		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.log.Debug("WebSocket upgrade failed", "error", err)
			slot.Release()
			return
		}
		if cfg.MaxMessageSize > 0 {
			ws.SetReadLimit(cfg.MaxMessageSize)
		}
		t.admit(&wsWire{conn: ws}, slot)
	}
}

// realIP prefers X-Forwarded-For, then X-Real-IP, then the socket address.
func realIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return remoteHost(r.RemoteAddr)
}
