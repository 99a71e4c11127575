package ws

import (
	"encoding/json"
	"time"

	"talenthub/internal/domain/job"

	"github.com/google/uuid"
)

type JobEvent struct {
	Type      string    `json:"type"`
	JobID     uuid.UUID `json:"job_id"`
	Title     string    `json:"title"`
	Timestamp string    `json:"timestamp"`
}

// Notifier turns posting changes into hub broadcasts.
type Notifier struct {
	hub *Hub
	now func() time.Time
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub, now: time.Now}
}

func (n *Notifier) PublishJobEvent(eventType string, p job.Posting) {
	if n == nil || n.hub == nil {
		return
	}
	b, err := json.Marshal(JobEvent{
		Type:      eventType,
		JobID:     p.ID,
		Title:     p.Title,
		Timestamp: n.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}
	n.hub.Broadcast(b)
}
