package network

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

type SocketEventName string

const (
	JobCreateEvent SocketEventName = "job:create"
	JobStartEvent  SocketEventName = "job:start"
	JobLogEvent    SocketEventName = "job:log"
	JobDoneEvent   SocketEventName = "job:done"
	JobErrorEvent  SocketEventName = "job:error"

	HeartbeatEvent SocketEventName = "heartbeat"
)

var (
	// Queue size.
	broadCastChannel = make(chan SocketEvent, 1000)
	upGrader         = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool {
		return true
	}}
	dispatcher = &wsDispatcher{}
)

type SocketEvent struct {
	Name SocketEventName `json:"name"`
	Data interface{}     `json:"data"`
}

// BroadCastClients Queues the event for all websocket clients. Never blocks,
// events are dropped while the queue is full.
func BroadCastClients(name SocketEventName, data interface{}) {
	select {
	case broadCastChannel <- SocketEvent{Name: name, Data: data}:
	default:
		log.Debugf("[BroadCastClients] Queue full, dropping event '%s'", name)
	}
}

type wsConnection struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (p *wsConnection) send(v interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.ws.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return p.ws.WriteJSON(v)
}

type wsDispatcher struct {
	mu        sync.RWMutex
	listeners []*wsConnection
}

func (d *wsDispatcher) addWs(conn *wsConnection) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, conn)
}

func (d *wsDispatcher) rmWs(ws *websocket.Conn) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, l := range d.listeners {
		if l.ws == ws {
			d.listeners = append(d.listeners[:i], d.listeners[i+1:]...)
			break
		}
	}
}

func (d *wsDispatcher) count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners)
}

func (d *wsDispatcher) broadCast(msg SocketEvent) {
	d.mu.RLock()
	listeners := append([]*wsConnection{}, d.listeners...)
	d.mu.RUnlock()

	for _, l := range listeners {
		if err := l.send(msg); err != nil {
			log.Errorf("[broadCast] %s", err)
		}
	}
}

// WsListen Delivers queued events until ctx ends.
func WsListen(ctx context.Context) {
	log.Infoln("[WsListen] Starting websocket dispatcher ...")
	heartbeat := time.NewTicker(10 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Infoln("[WsListen] stopped")
			return
		case <-heartbeat.C:
			dispatcher.broadCast(SocketEvent{Name: HeartbeatEvent, Data: 10})
		case m := <-broadCastChannel:
			dispatcher.broadCast(m)
		}
	}
}

func WsHandler(c *gin.Context) {
	ws, err := upGrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Errorf("error get connection: %s", err)
		return
	}
	defer ws.Close()

	dispatcher.addWs(&wsConnection{ws: ws})
	defer dispatcher.rmWs(ws)

	for {
		msg := &SocketEvent{}
		if err := ws.ReadJSON(msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Errorf("[WsHandler] error read message: %s", err)
			}
			return
		}
		log.Debugf("[Socket] %v", msg)
	}
}
