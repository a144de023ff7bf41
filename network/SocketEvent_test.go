package network

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadCastClientsNeverBlocks(t *testing.T) {
	done := make(chan struct{})
	go func() {
		for i := 0; i < cap(broadCastChannel)+10; i++ {
			BroadCastClients(JobLogEvent, i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("BroadCastClients blocked on a full queue")
	}

	// Drain for the following tests.
	for len(broadCastChannel) > 0 {
		<-broadCastChannel
	}
}

func TestWsHandlerReceivesEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ws", WsHandler)

	server := httptest.NewServer(router)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go WsListen(ctx)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return dispatcher.count() == 1 }, 5*time.Second, 10*time.Millisecond)

	BroadCastClients(JobDoneEvent, map[string]string{"jobId": "abc"})

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	event := SocketEvent{}
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, JobDoneEvent, event.Name)
	assert.Equal(t, map[string]interface{}{"jobId": "abc"}, event.Data)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	require.Eventually(t, func() bool { return dispatcher.count() == 0 }, 5*time.Second, 10*time.Millisecond)
}
