package notify

import (
	"context"
	"encoding/json"
	"time"

	"ai-notetaking-session/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// TopicStatus carries the user-facing status stream.
const TopicStatus = "session.status"

type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelSuccess Level = "success"
)

// StatusMessage is a human-readable status line for the notification surface.
// Sticky messages must not auto-dismiss: they flag conditions like "switched
// with unsaved changes" that the user has to acknowledge.
type StatusMessage struct {
	Level      Level     `json:"level"`
	Text       string    `json:"text"`
	Sticky     bool      `json:"sticky"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Notifier publishes status messages on an in-process pubsub. Publishing is
// best-effort: a broken bus is logged, never propagated. All methods are safe
// on a nil receiver so callers don't have to guard optional wiring.
type Notifier struct {
	pubSub *gochannel.GoChannel
	log    logger.ILogger
}

func NewNotifier(log logger.ILogger) *Notifier {
	return &Notifier{
		pubSub: gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false)),
		log:    log,
	}
}

func (n *Notifier) Publish(level Level, text string) {
	n.publish(StatusMessage{Level: level, Text: text, OccurredAt: time.Now()})
}

// Sticky publishes a persistent, non-auto-dismissing message.
func (n *Notifier) Sticky(level Level, text string) {
	n.publish(StatusMessage{Level: level, Text: text, Sticky: true, OccurredAt: time.Now()})
}

func (n *Notifier) publish(status StatusMessage) {
	if n == nil {
		return
	}
	payload, err := json.Marshal(status)
	if err != nil {
		n.log.Warn("notify", "failed to marshal status message", map[string]interface{}{"error": err.Error()})
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := n.pubSub.Publish(TopicStatus, msg); err != nil {
		n.log.Warn("notify", "failed to publish status message", map[string]interface{}{"error": err.Error()})
	}
}

// Subscribe returns a decoded status stream. The channel closes when ctx is
// cancelled or the notifier is closed.
func (n *Notifier) Subscribe(ctx context.Context) (<-chan StatusMessage, error) {
	if n == nil {
		ch := make(chan StatusMessage)
		close(ch)
		return ch, nil
	}

	messages, err := n.pubSub.Subscribe(ctx, TopicStatus)
	if err != nil {
		return nil, err
	}

	out := make(chan StatusMessage)
	go func() {
		defer close(out)
		for msg := range messages {
			var status StatusMessage
			if err := json.Unmarshal(msg.Payload, &status); err != nil {
				n.log.Warn("notify", "dropping malformed status message", map[string]interface{}{"error": err.Error()})
				msg.Ack()
				continue
			}
			msg.Ack()
			select {
			case out <- status:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (n *Notifier) Close() error {
	if n == nil {
		return nil
	}
	return n.pubSub.Close()
}
