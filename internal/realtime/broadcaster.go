package realtime

import (
	"context"
	"fmt"

	"ieum/internal/metrics"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const topicPrefix = "/topic/couple/"

// TopicFor names the destination for a couple, optionally narrowed to one feature area.
func TopicFor(coupleID uuid.UUID, area string) string {
	if area == "" {
		return topicPrefix + coupleID.String()
	}
	return topicPrefix + coupleID.String() + "/" + area
}

// Broadcaster fans envelopes out to every subscriber of a couple topic.
type Broadcaster struct {
	pubsub *gochannel.GoChannel
	log    *zap.SugaredLogger
}

func NewBroadcaster(log *zap.SugaredLogger, buffer int64) *Broadcaster {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if buffer <= 0 {
		buffer = 64
	}
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: buffer,
		Persistent:          false,
	}, NewWatermillLogger(log))
	return &Broadcaster{pubsub: pubsub, log: log}
}

// Broadcast serializes envelope and publishes it on the couple topic for area.
func (b *Broadcaster) Broadcast(_ context.Context, coupleID uuid.UUID, area string, envelope any) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	topic := TopicFor(coupleID, area)
	if err := b.pubsub.Publish(topic, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	label := area
	if label == "" {
		label = "chat"
	}
	metrics.Broadcasts.WithLabelValues(label).Inc()
	return nil
}

// Subscribe returns the message stream of topic. The channel closes when ctx is done.
func (b *Broadcaster) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

func (b *Broadcaster) Close() error {
	return b.pubsub.Close()
}

// WatermillLogger adapts a zap logger to watermill.
type WatermillLogger struct {
	log *zap.SugaredLogger
}

func NewWatermillLogger(log *zap.SugaredLogger) *WatermillLogger {
	return &WatermillLogger{log: log}
}

func fieldArgs(fields watermill.LogFields) []any {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}

func (l *WatermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	l.log.Errorw(msg, append(fieldArgs(fields), "error", err)...)
}

func (l *WatermillLogger) Info(msg string, fields watermill.LogFields) {
	l.log.Infow(msg, fieldArgs(fields)...)
}

func (l *WatermillLogger) Debug(msg string, fields watermill.LogFields) {
	l.log.Debugw(msg, fieldArgs(fields)...)
}

// Trace is folded into debug; zap has no lower level.
func (l *WatermillLogger) Trace(msg string, fields watermill.LogFields) {
	l.log.Debugw(msg, fieldArgs(fields)...)
}

func (l *WatermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &WatermillLogger{log: l.log.With(fieldArgs(fields)...)}
}
