package handlers

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"huntian-backend/models"

	"github.com/gofiber/websocket/v2"
)

type Client struct {
	Conn       *websocket.Conn
	ClientType string // "web" 또는 "observer"
}

// ClientHub - WebSocket 클라이언트 관리자
//
// 등록/해제/브로드캐스트는 모두 Run 고루틴에서 처리한다. 소켓 쓰기도 Run 에서만 한다.
type ClientHub struct {
	clients    map[*websocket.Conn]*Client
	broadcast  chan models.WebSocketMessage
	register   chan *Client
	unregister chan *websocket.Conn
	done       chan struct{}
	mutex      sync.RWMutex
}

// NewClientHub - 클라이언트 관리자 생성
func NewClientHub() *ClientHub {
	return &ClientHub{
		clients:    make(map[*websocket.Conn]*Client),
		broadcast:  make(chan models.WebSocketMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
	}
}

// Run - 클라이언트 관리 루프. ctx 가 취소되면 모든 연결을 닫고 반환한다.
func (hub *ClientHub) Run(ctx context.Context) {
	defer close(hub.done)
	for {
		select {
		case <-ctx.Done():
			hub.closeAll()
			return

		case client := <-hub.register:
			hub.mutex.Lock()
			hub.clients[client.Conn] = client
			hub.mutex.Unlock()
			log.Printf("클라이언트 등록: %s (%s)", client.ClientType, client.Conn.RemoteAddr())

		case conn := <-hub.unregister:
			hub.remove(conn)

		case message := <-hub.broadcast:
			hub.handleBroadcast(message)
		}
	}
}

func (hub *ClientHub) handleBroadcast(message models.WebSocketMessage) {
	hub.mutex.RLock()
	var failed []*websocket.Conn
	for conn, client := range hub.clients {
		// observer 는 스냅샷만 받는다
		if client.ClientType == "observer" && message.Type != models.MessageTypeSnapshot {
			continue
		}
		if err := conn.WriteJSON(message); err != nil {
			log.Printf("전송 실패 (%s): %v", client.ClientType, err)
			failed = append(failed, conn)
		}
	}
	hub.mutex.RUnlock()

	for _, conn := range failed {
		hub.remove(conn)
	}
}

func (hub *ClientHub) remove(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	if client, ok := hub.clients[conn]; ok {
		delete(hub.clients, conn)
		_ = conn.Close()
		log.Printf("클라이언트 해제: %s (%s)", client.ClientType, conn.RemoteAddr())
	}
}

func (hub *ClientHub) closeAll() {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	for conn := range hub.clients {
		_ = conn.Close()
		delete(hub.clients, conn)
	}
	log.Println("🛑 WebSocket 허브 종료")
}

// BroadcastMessage - 모든 클라이언트에게 전송 (큐가 가득 차면 폐기)
func (hub *ClientHub) BroadcastMessage(msg models.WebSocketMessage) {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}
	select {
	case hub.broadcast <- msg:
	default:
		log.Printf("⚠️ broadcast 채널 가득 참 (%s 폐기)", msg.Type)
	}
}

// BroadcastSnapshot - TimelineController.OnTick 에 연결해서 사용
func (hub *ClientHub) BroadcastSnapshot(snap models.Snapshot) {
	hub.BroadcastMessage(models.WebSocketMessage{Type: models.MessageTypeSnapshot, Data: snap})
}

// BroadcastEvent - 타임라인 이벤트 전송
func (hub *ClientHub) BroadcastEvent(ev models.TimelineEvent) {
	hub.BroadcastMessage(models.WebSocketMessage{Type: models.MessageTypeTimelineEvent, Data: ev})
}

func (hub *ClientHub) GetClientCount() map[string]int {
	hub.mutex.RLock()
	defer hub.mutex.RUnlock()

	count := map[string]int{
		"web":      0,
		"observer": 0,
	}
	for _, client := range hub.clients {
		count[client.ClientType]++
	}
	return count
}

func (hub *ClientHub) totalClients() int {
	hub.mutex.RLock()
	defer hub.mutex.RUnlock()
	return len(hub.clients)
}

// HandleWebClientWebSocket - 웹 클라이언트 (스냅샷 수신 + 제어 명령)
func (h *SimulationHandler) HandleWebClientWebSocket(c *websocket.Conn) {
	h.serveClient(c, "web")
}

// HandleObserverWebSocket - 읽기 전용 클라이언트 (스냅샷만 수신)
func (h *SimulationHandler) HandleObserverWebSocket(c *websocket.Conn) {
	h.serveClient(c, "observer")
}

func (h *SimulationHandler) serveClient(c *websocket.Conn, clientType string) {
	snap := h.ctrl.Snapshot()

	// 등록 전에 보내야 허브의 쓰기와 겹치지 않는다
	welcomeMsg := models.WebSocketMessage{
		Type: models.MessageTypeSystemInfo,
		Data: models.SystemInfo{
			ConnectedClients: h.hub.totalClients() + 1,
			RunID:            snap.RunID,
			ServerTime:       time.Now().Format(time.RFC3339),
			Message:          "웹 클라이언트 연결됨",
		},
		Timestamp: time.Now().UnixMilli(),
	}
	_ = c.WriteJSON(welcomeMsg)
	_ = c.WriteJSON(models.WebSocketMessage{
		Type:      models.MessageTypeSnapshot,
		Data:      snap,
		Timestamp: time.Now().UnixMilli(),
	})

	select {
	case h.hub.register <- &Client{Conn: c, ClientType: clientType}:
	case <-h.hub.done:
		return
	}
	defer func() {
		select {
		case h.hub.unregister <- c:
		case <-h.hub.done:
		}
	}()

	for {
		var msg struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := c.ReadJSON(&msg); err != nil {
			log.Printf("웹 메시지 읽기 오류: %v", err)
			break
		}
		if clientType != "web" {
			continue
		}

		switch msg.Type {
		case models.MessageTypeControl:
			var cmd models.ControlCommand
			err := json.Unmarshal(msg.Data, &cmd)
			if err == nil {
				_, err = h.applyControl(cmd)
			}
			if err != nil {
				h.hub.BroadcastMessage(models.WebSocketMessage{
					Type: models.MessageTypeError,
					Data: map[string]interface{}{"error": err.Error(), "action": cmd.Action},
				})
			}
		default:
			log.Printf("알 수 없는 메시지 타입: %s", msg.Type)
		}
	}
}
