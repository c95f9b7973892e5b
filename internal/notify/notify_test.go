package notify

import (
	"context"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StructFlow/internal/sim"
	"StructFlow/internal/status"
)

func startNATS(t *testing.T) *natsserver.Server {
	t.Helper()
	ns, err := natsserver.NewServer(&natsserver.Options{Port: -1})
	require.NoError(t, err)
	ns.Start()
	if !ns.ReadyForConnections(2 * time.Second) {
		t.Fatal("nats not ready")
	}
	t.Cleanup(ns.Shutdown)
	return ns
}

func TestPublishSubscribe(t *testing.T) {
	ns := startNATS(t)

	sub, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)
	defer sub.Close()

	got := make(chan Event, 1)
	_, err = Subscribe(sub, "structflow.results", func(_ context.Context, ev Event) { got <- ev })
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	pub, err := Connect(ns.ClientURL(), "structflow.results")
	require.NoError(t, err)
	defer pub.Close()

	res := sim.Error("P-1", "boom", time.Now())
	require.NoError(t, pub.Publish(context.Background(), Event{RunID: "r-1", UserID: "u-1", Result: res}))

	select {
	case ev := <-got:
		assert.Equal(t, "r-1", ev.RunID)
		assert.Equal(t, status.Error, ev.Result.OverallStatus)
		assert.Equal(t, "boom", ev.Result.ErrorReason)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestStatusSubject(t *testing.T) {
	ns := startNATS(t)
	nc, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)
	defer nc.Close()

	s, err := nc.SubscribeSync("structflow.results.DANGER")
	require.NoError(t, err)
	require.NoError(t, nc.Flush())

	pub := NewNATS(nc, "structflow.results")
	require.NoError(t, pub.Publish(context.Background(), Event{Result: sim.Result{OverallStatus: status.Danger}}))
	msg, err := s.NextMsg(2 * time.Second)
	require.NoError(t, err)
	assert.Contains(t, string(msg.Data), `"overall_status":"DANGER"`)
}

func TestConnectFails(t *testing.T) {
	_, err := Connect("nats://127.0.0.1:1", "x")
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), Event{}))
	p.Close()
}

func TestHeaderCarrier(t *testing.T) {
	c := (*headerCarrier)(&nats.Msg{})
	assert.Empty(t, c.Get("traceparent"))
	assert.Empty(t, c.Keys())
	c.Set("traceparent", "00-abc")
	assert.Equal(t, "00-abc", c.Get("traceparent"))
	assert.Len(t, c.Keys(), 1)
}
