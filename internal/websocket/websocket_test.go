package websocket

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Рассылки из разных горутин обработчиков и pong должны проходить через
// одно соединение без порчи кадров.
func TestConcurrentBroadcastsDeliverIntactFrames(t *testing.T) {
	StartManager()

	r := gin.New()
	r.GET("/ws", Handler())
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("не удалось подключиться к %s: %v", url, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for GetManager().ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("сессия не зарегистрировалась в менеджере")
		}
		time.Sleep(10 * time.Millisecond)
	}

	const rounds = 50
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 1; i <= rounds; i++ {
			SendTenderStatusUpdate(uint(i), "completed")
		}
	}()
	go func() {
		defer wg.Done()
		for i := 1; i <= rounds; i++ {
			SendTripStatusUpdate(uint(i), "scheduled")
		}
	}()
	wg.Wait()

	if err := conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		t.Fatalf("не удалось установить дедлайн чтения: %v", err)
	}
	for i := 0; i < rounds*2; i++ {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("ошибка чтения сообщения %d: %v", i, err)
		}
		var msg WebSocketMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("кадр %d не является корректным JSON: %v", i, err)
		}
		if msg.Type != TenderStatusUpdateType && msg.Type != TripStatusUpdateType {
			t.Fatalf("неожиданный тип сообщения %q в кадре %d", msg.Type, i)
		}
	}

	// pong идет тем же путем записи, что и рассылки
	ping, _ := json.Marshal(map[string]string{"type": "ping"})
	if err := conn.WriteMessage(gorilla.TextMessage, ping); err != nil {
		t.Fatalf("не удалось отправить ping: %v", err)
	}
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("pong не получен: %v", err)
	}
	var pong map[string]interface{}
	if err := json.Unmarshal(raw, &pong); err != nil {
		t.Fatalf("pong не является корректным JSON: %v", err)
	}
	if pong["type"] != "pong" {
		t.Fatalf("ожидался pong, получено %v", pong["type"])
	}
}
