package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"talenthub/internal/domain/job"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return h
}

func testClient(buffer int) *Client {
	return &Client{send: make(chan []byte, buffer)}
}

func TestHub_BroadcastReachesClients(t *testing.T) {
	h := startHub(t)
	a, b := testClient(4), testClient(4)
	h.Register(a)
	h.Register(b)
	require.Eventually(t, func() bool { return h.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	h.Broadcast([]byte("hello"))

	for _, c := range []*Client{a, b} {
		select {
		case msg := <-c.send:
			assert.Equal(t, "hello", string(msg))
		case <-time.After(time.Second):
			t.Fatal("message not delivered")
		}
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	h := startHub(t)
	slow := testClient(0)
	h.Register(slow)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	h.Broadcast([]byte("x"))

	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-slow.send
	assert.False(t, open)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	h := startHub(t)
	c := testClient(1)
	h.Register(c)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	h.Unregister(c)
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-c.send
	assert.False(t, open)
}

func TestNotifier_PublishJobEvent(t *testing.T) {
	h := startHub(t)
	c := testClient(1)
	h.Register(c)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	n := NewNotifier(h)
	n.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	id := uuid.New()
	n.PublishJobEvent(job.EventPublished, job.Posting{ID: id, Title: "Backend Engineer"})

	select {
	case msg := <-c.send:
		assert.Contains(t, string(msg), `"type":"job_posted"`)
		var evt JobEvent
		require.NoError(t, json.Unmarshal(msg, &evt))
		assert.Equal(t, "job_posted", evt.Type)
		assert.Equal(t, id, evt.JobID)
		assert.Equal(t, "Backend Engineer", evt.Title)
		assert.Equal(t, "2026-03-01T10:00:00Z", evt.Timestamp)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestNotifier_NilHub(t *testing.T) {
	var n *Notifier
	assert.NotPanics(t, func() { n.PublishJobEvent(job.EventClosed, job.Posting{}) })
	assert.NotPanics(t, func() { NewNotifier(nil).PublishJobEvent(job.EventClosed, job.Posting{}) })
}
