package bridge

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/fasthttp/websocket"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fleetgen/backend/usecase"
)

// FilterAny is the wildcard sentinel: a client subscribed with it
// receives every materialized-view update regardless of vehicle id.
const FilterAny = "ANY"

// Bridge fans broker topics out to websocket subscribers. The
// materialized-view stream is filtered per client by exact vehicle id
// or the ANY wildcard; generation messages reach every client.
type Bridge struct {
	redis  *redislib.Client
	logger *zap.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	cancel  context.CancelFunc
}

type client struct {
	conn   *websocket.Conn
	filter string
	send   chan []byte
}

func New(redisClient *redislib.Client, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{
		redis:   redisClient,
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// Start subscribes the broker topics and begins dispatching.
func (b *Bridge) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel

	pubsub := b.redis.Subscribe(ctx,
		usecase.TopicMaterializedView,
		usecase.TopicVehicleGenerated,
		usecase.TopicWebsocketUpdates,
	)

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				b.dispatch(msg.Channel, []byte(msg.Payload))
			}
		}
	}()

	b.logger.Info("websocket bridge started")
}

// Stop halts dispatching and disconnects all clients.
func (b *Bridge) Stop() {
	if b.cancel != nil {
		b.cancel()
	}

	b.mu.Lock()
	for c := range b.clients {
		close(c.send)
		delete(b.clients, c)
	}
	b.mu.Unlock()

	b.logger.Info("websocket bridge stopped")
}

// Handle serves one websocket client until it disconnects. filter is an
// exact vehicle id or FilterAny.
func (b *Bridge) Handle(conn *websocket.Conn, filter string) {
	c := &client{
		conn:   conn,
		filter: filter,
		send:   make(chan []byte, 64),
	}

	b.mu.Lock()
	b.clients[c] = struct{}{}
	b.mu.Unlock()

	go func() {
		for payload := range c.send {
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				b.logger.Debug("websocket write failed", zap.Error(err))
				break
			}
		}
		conn.Close()
	}()

	// Reads only detect disconnection; clients never send data.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	b.remove(c)
}

func (b *Bridge) remove(c *client) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[c]; ok {
		close(c.send)
		delete(b.clients, c)
	}
}

func (b *Bridge) dispatch(topic string, payload []byte) {
	if topic != usecase.TopicMaterializedView {
		b.broadcast(payload, func(*client) bool { return true })
		return
	}

	var update struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &update); err != nil {
		b.logger.Warn("undecodable materialized view update", zap.Error(err))
		return
	}

	b.broadcast(payload, func(c *client) bool {
		return c.filter == FilterAny || c.filter == update.Data.ID
	})
}

func (b *Bridge) broadcast(payload []byte, match func(*client) bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for c := range b.clients {
		if !match(c) {
			continue
		}
		select {
		case c.send <- payload:
		default:
			// Slow consumer; drop rather than block the dispatcher.
		}
	}
}
