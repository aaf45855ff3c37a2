package telemetry

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"worldgenerator/runtime"
	"worldgenerator/stream"
)

// StatusFrame is the JSON payload broadcast to connected debug clients,
// mirroring the teacher's server.go MeshData frame but carrying
// StreamStatus/CameraSnapshot telemetry instead of plate-simulation mesh
// data (spec.md §6: the runtime's read-only snapshot operations).
type StatusFrame struct {
	Type     string              `json:"type"`
	Stream   stream.StreamStatus `json:"stream"`
	Camera   runtime.CameraSnapshot `json:"camera"`
	ChunkCnt int                 `json:"chunkCount"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StatusServer streams StreamStatus/CameraSnapshot JSON frames to any
// connected client over a websocket, using the same upgrader-with-
// CheckOrigin and per-connection-mutex pattern as the teacher's
// server.go (spec.md §6 telemetry surface).
type StatusServer struct {
	log *Logger

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex
}

// NewStatusServer constructs a server ready to Handler() and Broadcast().
func NewStatusServer(l *Logger) *StatusServer {
	return &StatusServer{log: l, clients: make(map[*websocket.Conn]*sync.Mutex)}
}

// Handler returns an http.HandlerFunc suitable for mux.HandleFunc("/ws", ...).
func (s *StatusServer) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.log.Errorf("websocket upgrade: %v", err)
			return
		}
		defer conn.Close()

		connMutex := &sync.Mutex{}
		s.mu.Lock()
		s.clients[conn] = connMutex
		s.mu.Unlock()
		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}
}

// Broadcast sends frame to every connected client, dropping any that
// error (mirrors the teacher's broadcastMeshData client-eviction loop).
func (s *StatusServer) Broadcast(frame StatusFrame) {
	s.mu.RLock()
	dead := make([]*websocket.Conn, 0)
	for conn, mutex := range s.clients {
		mutex.Lock()
		err := conn.WriteJSON(frame)
		mutex.Unlock()
		if err != nil {
			log.Println("telemetry: websocket write error:", err)
			conn.Close()
			dead = append(dead, conn)
		}
	}
	s.mu.RUnlock()

	if len(dead) == 0 {
		return
	}
	s.mu.Lock()
	for _, conn := range dead {
		delete(s.clients, conn)
	}
	s.mu.Unlock()
}
