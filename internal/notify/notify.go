// Package notify publishes finished simulations on NATS so other services can
// react to DANGER verdicts without polling the run history.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"

	"StructFlow/internal/sim"
)

type Event struct {
	RunID  string     `json:"run_id,omitempty"`
	UserID string     `json:"user_id,omitempty"`
	Result sim.Result `json:"result"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close()
}

// Nop discards events; used when no NATS URL is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close()                               {}

type NATS struct {
	nc      *nats.Conn
	subject string
}

func Connect(url, subject string) (*NATS, error) {
	nc, err := nats.Connect(url,
		nats.Name("structflow"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect %s: %w", url, err)
	}
	return &NATS{nc: nc, subject: subject}, nil
}

func NewNATS(nc *nats.Conn, subject string) *NATS {
	return &NATS{nc: nc, subject: subject}
}

// Publish sends ev to the configured subject, appending the overall status
// ("structflow.results.DANGER") so consumers can filter on it.
func (n *NATS) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	msg := &nats.Msg{
		Subject: n.subject + "." + string(ev.Result.OverallStatus),
		Data:    data,
	}
	otel.GetTextMapPropagator().Inject(ctx, (*headerCarrier)(msg))
	return n.nc.PublishMsg(msg)
}

func (n *NATS) Close() { n.nc.Close() }

// Subscribe decodes events published under subject.>; malformed messages are dropped.
func Subscribe(nc *nats.Conn, subject string, handler func(context.Context, Event)) (*nats.Subscription, error) {
	return nc.Subscribe(subject+".>", func(msg *nats.Msg) {
		var ev Event
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			return
		}
		ctx := otel.GetTextMapPropagator().Extract(context.Background(), (*headerCarrier)(msg))
		handler(ctx, ev)
	})
}

type headerCarrier nats.Msg

func (c *headerCarrier) Get(key string) string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get(key)
}

func (c *headerCarrier) Set(key, val string) {
	if c.Header == nil {
		c.Header = make(nats.Header)
	}
	c.Header.Set(key, val)
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	return keys
}
