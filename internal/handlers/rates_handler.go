package handlers

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"retail-backend/internal/auth"
	"retail-backend/internal/fx"
	"retail-backend/pkg/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// RatesHandler serves the current exchange rate table and pushes refreshes to
// connected dashboards over websocket.
type RatesHandler struct {
	Fx         *fx.Provider
	JWT        *auth.JWTManager
	clients    map[*websocket.Conn]bool
	clientsMux sync.Mutex
}

func NewRatesHandler(fxp *fx.Provider, jwtManager *auth.JWTManager) *RatesHandler {
	h := &RatesHandler{
		Fx:      fxp,
		JWT:     jwtManager,
		clients: make(map[*websocket.Conn]bool),
	}
	fxp.SetOnUpdate(h.broadcast)
	return h
}

func (h *RatesHandler) GetRates(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, h.Fx.Current())
}

// Refresh forces an immediate source-chain walk, for the dashboard's refresh
// button.
func (h *RatesHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, h.Fx.Refresh(r.Context()))
}

// Subscribe upgrades to websocket and streams rate snapshots until the client
// goes away. Browsers cannot set headers on a websocket handshake, so the JWT
// arrives as a query parameter and is validated here.
func (h *RatesHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Authorization token required", http.StatusUnauthorized)
		return
	}
	if _, err := h.JWT.ValidateToken(token); err != nil {
		http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Rates] websocket upgrade failed: %v", err)
		return
	}

	h.clientsMux.Lock()
	h.clients[conn] = true
	h.clientsMux.Unlock()

	// Send the current snapshot immediately so the dashboard renders
	// without waiting for the next refresh.
	if err := conn.WriteJSON(h.Fx.Current()); err != nil {
		h.drop(conn)
		return
	}

	// Reader loop exists only to detect disconnects.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.drop(conn)
				return
			}
		}
	}()
}

func (h *RatesHandler) broadcast(rates fx.Rates) {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()

	for conn := range h.clients {
		if err := conn.WriteJSON(rates); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

func (h *RatesHandler) drop(conn *websocket.Conn) {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()
	conn.Close()
	delete(h.clients, conn)
}
