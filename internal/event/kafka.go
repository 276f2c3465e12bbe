package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// KafkaClient publishes and consumes events on one topic. The message key
// is the event name, the value its JSON payload.
type KafkaClient struct {
	writer *kafka.Writer
	reader *kafka.Reader
}

func NewKafkaClient(host string, port string, topic string, group string) (*KafkaClient, error) {
	address := fmt.Sprintf("%s:%s", host, port)

	writer := &kafka.Writer{
		Addr:     kafka.TCP(address),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{address},
		GroupID: group,
		Topic:   topic,
	})

	return &KafkaClient{
		writer: writer,
		reader: reader,
	}, nil
}

func (c *KafkaClient) WriteMessage(ctx context.Context, event string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return c.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event),
		Value: value,
	})
}

func (c *KafkaClient) ReadMessage(ctx context.Context) (string, string, error) {
	message, err := c.reader.ReadMessage(ctx)
	if err != nil {
		return "", "", err
	}
	return string(message.Key), string(message.Value), nil
}

func (c *KafkaClient) Close() error {
	writerErr := c.writer.Close()
	readerErr := c.reader.Close()
	if writerErr != nil {
		return writerErr
	}
	return readerErr
}
