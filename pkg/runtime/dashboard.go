// ruleflow/pkg/runtime/dashboard.go

package runtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"rulehub/ruleflow/pkg/logging"
	"rulehub/ruleflow/pkg/model"
)

// Dashboard serves a live view of the engine: a stats endpoint, and a
// websocket feed carrying every finalized execution record plus periodic
// stats snapshots.
type Dashboard struct {
	engine         *Engine
	port           int
	clients        map[*websocket.Conn]bool
	clientsMutex   sync.Mutex
	updateInterval time.Duration
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now. In production, this should be more restrictive.
	},
}

func NewDashboard(engine *Engine, port int, updateInterval time.Duration) *Dashboard {
	d := &Dashboard{
		engine:         engine,
		port:           port,
		clients:        make(map[*websocket.Conn]bool),
		updateInterval: updateInterval,
	}
	engine.AddRecordListener(d.broadcastRecord)
	return d
}

func (d *Dashboard) Start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/", d.handleHome)
	mux.HandleFunc("/api/stats", d.handleStats)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "Server is running")
	})
	mux.HandleFunc("/events", d.handleWebSocket)

	go d.broadcastUpdates()

	addr := fmt.Sprintf(":%d", d.port)
	logging.Logger.Info().Str("addr", addr).Msg("Dashboard starting")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logging.Logger.Error().Err(err).Msg("Dashboard error")
	}
}

func (d *Dashboard) handleHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, `<html><head><title>Ruleflow Dashboard</title></head>
<body><h1>Ruleflow Dashboard</h1>
<p>Execution feed: <code>ws://host/events</code> &mdash; stats: <a href="/api/stats">/api/stats</a></p>
</body></html>`)
}

func (d *Dashboard) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(d.engine.GetStats()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (d *Dashboard) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Logger.Error().Err(err).Msg("Error upgrading to WebSocket")
		return
	}
	defer conn.Close()

	logging.Logger.Debug().Str("remote", conn.RemoteAddr().String()).Msg("Dashboard client connected")

	d.clientsMutex.Lock()
	d.clients[conn] = true
	d.clientsMutex.Unlock()

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			break
		}
	}

	d.clientsMutex.Lock()
	delete(d.clients, conn)
	d.clientsMutex.Unlock()

	logging.Logger.Debug().Str("remote", conn.RemoteAddr().String()).Msg("Dashboard client disconnected")
}

// broadcastRecord pushes one finalized execution record to every client.
func (d *Dashboard) broadcastRecord(record model.ExecutionRecord) {
	payload := map[string]interface{}{
		"type":   "execution",
		"record": record,
	}
	d.broadcast(payload)
}

func (d *Dashboard) broadcastUpdates() {
	ticker := time.NewTicker(d.updateInterval)
	defer ticker.Stop()

	for range ticker.C {
		d.broadcast(map[string]interface{}{
			"type":  "stats",
			"stats": d.engine.GetStats(),
		})
	}
}

func (d *Dashboard) broadcast(payload interface{}) {
	message, err := json.Marshal(payload)
	if err != nil {
		logging.Logger.Error().Err(err).Msg("Error marshaling dashboard payload")
		return
	}

	d.clientsMutex.Lock()
	for client := range d.clients {
		if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
			logging.Logger.Warn().Err(err).Msg("Dropping dashboard client")
			client.Close()
			delete(d.clients, client)
		}
	}
	d.clientsMutex.Unlock()
}
