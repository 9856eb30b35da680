package communication

import (
	"encoding/json"
	"fmt"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	"github.com/m-mizutani/goerr/v2"

	"github.com/vestalabs/habitat/logging"
)

const (
	eventSubjectPrefix   = "habitat.events."
	eventSubjectWildcard = "habitat.events.>"
	entitySubjectFormat  = "habitat.entity.%s.private"

	busStartTimeout = 10 * time.Second
)

// Bus is the internal event spine: a NATS connection, backed by an
// embedded broker unless an external one is configured. Services
// publish events here; the websocket hub bridges them out to clients.
type Bus struct {
	server *natsserver.Server
	conn   *nats.Conn
	url    string
}

// NewBus connects to the broker at url, or starts an embedded broker
// on a random localhost port when url is empty.
func NewBus(url string) (*Bus, error) {
	if url != "" {
		conn, err := nats.Connect(url, nats.Timeout(busStartTimeout))
		if err != nil {
			return nil, goerr.Wrap(err, "connect to nats", goerr.V("url", url))
		}
		return &Bus{conn: conn, url: url}, nil
	}

	opts := &natsserver.Options{
		Host:   "127.0.0.1",
		Port:   natsserver.RANDOM_PORT,
		NoLog:  true,
		NoSigs: true,
	}
	srv, err := natsserver.NewServer(opts)
	if err != nil {
		return nil, goerr.Wrap(err, "configure embedded nats server")
	}
	go srv.Start()
	if !srv.ReadyForConnections(busStartTimeout) {
		srv.Shutdown()
		return nil, goerr.New("embedded nats server did not come up")
	}

	conn, err := nats.Connect(srv.ClientURL())
	if err != nil {
		srv.Shutdown()
		return nil, goerr.Wrap(err, "connect to embedded nats", goerr.V("url", srv.ClientURL()))
	}
	return &Bus{server: srv, conn: conn, url: srv.ClientURL()}, nil
}

// ClientURL reports the broker address the bus is connected to.
func (b *Bus) ClientURL() string { return b.url }

// Embedded reports whether the bus runs its own broker.
func (b *Bus) Embedded() bool { return b.server != nil }

// Publish sends the event on its type subject, stamping the timestamp
// if the caller left it zero.
func (b *Bus) Publish(event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return goerr.Wrap(err, "marshal event", goerr.V("type", event.Type))
	}
	if err := b.conn.Publish(eventSubjectPrefix+event.Type, data); err != nil {
		return goerr.Wrap(err, "publish event", goerr.V("type", event.Type))
	}
	return nil
}

// Broadcast is fire-and-forget Publish, satisfying Sink for the
// handlers that emit events.
func (b *Bus) Broadcast(event Event) {
	if err := b.Publish(event); err != nil {
		logging.Default().Warn("event publish failed", "type", event.Type, "error", err)
	}
}

// SubscribeEvents delivers every habitat event to the handler. Frames
// that fail to decode are dropped.
func (b *Bus) SubscribeEvents(handler func(Event)) (*nats.Subscription, error) {
	sub, err := b.conn.Subscribe(eventSubjectWildcard, func(msg *nats.Msg) {
		var event Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			logging.Default().Warn("dropping undecodable event frame", "subject", msg.Subject, "error", err)
			return
		}
		handler(event)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "subscribe events", goerr.V("subject", eventSubjectWildcard))
	}
	return sub, nil
}

// PublishEntity sends an event on the entity's private subject.
func (b *Bus) PublishEntity(entityID string, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return goerr.Wrap(err, "marshal event", goerr.V("type", event.Type))
	}
	subject := fmt.Sprintf(entitySubjectFormat, entityID)
	if err := b.conn.Publish(subject, data); err != nil {
		return goerr.Wrap(err, "publish entity event",
			goerr.V("entity_id", entityID), goerr.V("type", event.Type))
	}
	return nil
}

// SubscribeEntity delivers an entity's private events to the handler.
func (b *Bus) SubscribeEntity(entityID string, handler func(Event)) (*nats.Subscription, error) {
	subject := fmt.Sprintf(entitySubjectFormat, entityID)
	sub, err := b.conn.Subscribe(subject, func(msg *nats.Msg) {
		var event Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			return
		}
		handler(event)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "subscribe entity events", goerr.V("entity_id", entityID))
	}
	return sub, nil
}

// BridgeTo forwards every habitat event to the hub's clients.
func (b *Bus) BridgeTo(hub *Hub) (*nats.Subscription, error) {
	return b.SubscribeEvents(hub.Broadcast)
}

// Flush waits until published events have reached the broker.
func (b *Bus) Flush() error {
	return b.conn.Flush()
}

// Close tears the connection down and, for an embedded broker, shuts
// the server down too.
func (b *Bus) Close() {
	b.conn.Close()
	if b.server != nil {
		b.server.Shutdown()
		b.server.WaitForShutdown()
	}
}
