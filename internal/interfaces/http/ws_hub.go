package http

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/aikasir-api/internal/application/terminal"
	"github.com/jhoicas/aikasir-api/pkg/logger"
)

// wsConn lo mínimo de una conexión que usa el hub; lo implementa *websocket.Conn.
type wsConn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type wsClient struct {
	conn     wsConn
	tenantID string
}

// Hub reparte los eventos de mutación a los terminales conectados del mismo tenant,
// para que refresquen catálogo, historial o stock sin recargar.
type Hub struct {
	clients    map[wsConn]string
	register   chan wsClient
	unregister chan wsConn
	broadcast  chan terminal.Event
	done       chan struct{}
	mutex      sync.Mutex
	log        *logger.Logger
}

// NewHub crea el hub. buffer acota los eventos pendientes; si se llena, se descartan.
func NewHub(buffer int, log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[wsConn]string),
		register:   make(chan wsClient),
		unregister: make(chan wsConn),
		broadcast:  make(chan terminal.Event, buffer),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Publish encola el evento sin bloquear la operación que lo originó.
func (h *Hub) Publish(e terminal.Event) {
	select {
	case h.broadcast <- e:
	default:
		h.log.Warn().Str("type", e.Type).Str("tenant_id", e.TenantID).Msg("ws: cola llena, evento descartado")
	}
}

// Run atiende altas, bajas y difusión hasta que ctx termina; entonces cierra todas las conexiones.
// Se llama una sola vez.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for conn := range h.clients {
				_ = conn.Close()
				delete(h.clients, conn)
			}
			h.mutex.Unlock()
			return

		case cl := <-h.register:
			h.mutex.Lock()
			h.clients[cl.conn] = cl.tenantID
			h.mutex.Unlock()
			h.log.Debug().Str("tenant_id", cl.tenantID).Msg("ws: cliente conectado")

		case conn := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				_ = conn.Close()
			}
			h.mutex.Unlock()

		case e := <-h.broadcast:
			message, err := json.Marshal(e)
			if err != nil {
				h.log.Error().Err(err).Msg("ws: serializar evento")
				continue
			}
			h.mutex.Lock()
			for conn, tenantID := range h.clients {
				if tenantID != e.TenantID {
					continue
				}
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					_ = conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Clients cantidad de conexiones activas.
func (h *Hub) Clients() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Attach registra la conexión para el tenant y la mantiene hasta que el cliente se desconecta.
// Con el hub detenido cierra la conexión y retorna.
func (h *Hub) Attach(conn wsConn, tenantID string, read func() error) {
	select {
	case h.register <- wsClient{conn: conn, tenantID: tenantID}:
	case <-h.done:
		_ = conn.Close()
		return
	}
	defer func() {
		select {
		case h.unregister <- conn:
		case <-h.done:
		}
	}()
	for {
		if err := read(); err != nil {
			return
		}
	}
}

// upgradeOnly rechaza con 426 lo que no sea un upgrade de websocket.
func upgradeOnly(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return c.SendStatus(fiber.StatusUpgradeRequired)
}

// Handler endpoint /ws; debe ir después de AuthMiddleware, que carga el tenant en Locals.
func (h *Hub) Handler() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		tenantID, _ := c.Locals(LocalTenantID).(string)
		h.Attach(c, tenantID, func() error {
			_, _, err := c.ReadMessage()
			return err
		})
	})
}
