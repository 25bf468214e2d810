package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"dispatch-backend/internal/logger"
)

// Константы для типов сообщений WebSocket
const (
	TenderStatusUpdateType  = "TENDER_STATUS_UPDATE"
	TripStatusUpdateType    = "TRIP_STATUS_UPDATE"
	PaymentStatusUpdateType = "PAYMENT_STATUS_UPDATE"
)

var log = logger.New("websocket")

// WebSocketMessage представляет формат сообщения WebSocket
type WebSocketMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// session — одно подключение диспетчерской. Gorilla допускает только
// одного пишущего на соединение, поэтому все записи (рассылки и pong)
// сериализуются через мьютекс сессии.
type session struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (s *session) write(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// WebSocketManager управляет подключениями диспетчерских сессий.
// Аутентификации нет: каждое подключение — вкладка диспетчерской,
// все события рассылаются всем.
type WebSocketManager struct {
	clients    map[*session]bool
	register   chan *session
	unregister chan *session
	mutex      sync.RWMutex
}

// Глобальный менеджер WebSocket
var wsManager = NewWebSocketManager()

func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[*session]bool),
		register:   make(chan *session),
		unregister: make(chan *session),
	}
}

// Start запускает обработку регистраций подключений
func (manager *WebSocketManager) Start() {
	go func() {
		for {
			select {
			case s := <-manager.register:
				manager.mutex.Lock()
				manager.clients[s] = true
				manager.mutex.Unlock()
				log.Info("диспетчерская сессия подключена", logger.Int("clients", manager.ClientCount()))

			case s := <-manager.unregister:
				manager.mutex.Lock()
				if _, ok := manager.clients[s]; ok {
					delete(manager.clients, s)
					s.conn.Close()
				}
				manager.mutex.Unlock()
				log.Info("диспетчерская сессия отключена", logger.Int("clients", manager.ClientCount()))
			}
		}
	}()
}

// ClientCount возвращает число активных подключений
func (manager *WebSocketManager) ClientCount() int {
	manager.mutex.RLock()
	defer manager.mutex.RUnlock()
	return len(manager.clients)
}

// Broadcast отправляет сообщение всем подключенным сессиям
func (manager *WebSocketManager) Broadcast(message *WebSocketMessage) {
	jsonMessage, err := json.Marshal(message)
	if err != nil {
		log.Error("ошибка при кодировании сообщения", logger.Error(err))
		return
	}

	manager.mutex.RLock()
	sessions := make([]*session, 0, len(manager.clients))
	for s := range manager.clients {
		sessions = append(sessions, s)
	}
	manager.mutex.RUnlock()

	for _, s := range sessions {
		go func(s *session) {
			if err := s.write(jsonMessage); err != nil {
				log.Warning("ошибка при отправке сообщения, отключаем сессию", logger.Error(err))
				manager.unregister <- s
			}
		}(s)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Подключения принимаются с любых источников
	},
}

// Handler обрабатывает подключения WebSocket
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Upgrade") != "websocket" {
			c.String(http.StatusBadRequest, "Требуется WebSocket соединение")
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Error("ошибка обновления соединения до WebSocket", logger.Error(err))
			c.String(http.StatusInternalServerError, "Не удалось установить WebSocket соединение")
			return
		}

		s := &session{conn: conn}
		wsManager.register <- s

		go handleMessages(s)
	}
}

// handleMessages обрабатывает входящие сообщения сессии (только ping)
func handleMessages(s *session) {
	defer func() {
		wsManager.unregister <- s
	}()

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			break
		}

		var data map[string]interface{}
		if err := json.Unmarshal(message, &data); err != nil {
			continue
		}

		if msgType, ok := data["type"].(string); ok && msgType == "ping" {
			pongMsg := map[string]interface{}{
				"type": "pong",
				"time": time.Now().Unix(),
			}
			pongJSON, _ := json.Marshal(pongMsg)
			if err := s.write(pongJSON); err != nil {
				log.Warning("ошибка при отправке pong", logger.Error(err))
			}
		}
	}
}

// SendTenderStatusUpdate рассылает обновление статуса тендера
func SendTenderStatusUpdate(tenderID uint, status string) {
	wsManager.Broadcast(&WebSocketMessage{
		Type: TenderStatusUpdateType,
		Payload: map[string]interface{}{
			"tender_id": tenderID,
			"status":    status,
		},
	})
}

// SendTripStatusUpdate рассылает обновление статуса рейса
func SendTripStatusUpdate(tripID uint, status string) {
	wsManager.Broadcast(&WebSocketMessage{
		Type: TripStatusUpdateType,
		Payload: map[string]interface{}{
			"trip_id": tripID,
			"status":  status,
		},
	})
}

// SendPaymentStatusUpdate рассылает обновление статуса платежа
func SendPaymentStatusUpdate(paymentID uint, status string) {
	wsManager.Broadcast(&WebSocketMessage{
		Type: PaymentStatusUpdateType,
		Payload: map[string]interface{}{
			"payment_id": paymentID,
			"status":     status,
		},
	})
}

// GetManager возвращает глобальный экземпляр менеджера WebSocket
func GetManager() *WebSocketManager {
	return wsManager
}

// StartManager запускает менеджер WebSocket
func StartManager() {
	wsManager.Start()
}
