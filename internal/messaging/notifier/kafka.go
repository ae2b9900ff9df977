package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"permission-engine/internal/config"
)

const topic = "permission-engine"

const (
	messageTypeGroupUpdate = "GroupUpdateMessage"
	messageTypeUserUpdate  = "UserUpdateMessage"
)

type kafkaNotifier struct {
	logger *zap.SugaredLogger
	w      *kafka.Writer
}

func NewKafkaNotifier(ctx context.Context, wg *sync.WaitGroup, logger *zap.SugaredLogger, cfg config.KafkaConfig) Notifier {
	w := &kafka.Writer{
		Addr:        kafka.TCP(fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		Topic:       topic,
		Async:       true,
		Balancer:    &kafka.LeastBytes{},
		ErrorLogger: zap.NewStdLog(zap.L()),
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		logger.Info("shutting down kafka writer")
		if err := w.Close(); err != nil {
			logger.Errorw("failed to close kafka writer", "error", err)
		}
	}()

	return &kafkaNotifier{
		logger: logger,
		w:      w,
	}
}

func (k *kafkaNotifier) GroupUpdate(ctx context.Context, groupName string, changeType ChangeType) error {
	msg := GroupUpdateMessage{GroupName: groupName, ChangeType: changeType}
	if err := k.publishMessage(ctx, messageTypeGroupUpdate, groupName, msg); err != nil {
		return fmt.Errorf("failed to publish group update: %w", err)
	}
	return nil
}

func (k *kafkaNotifier) UserUpdate(ctx context.Context, userId uuid.UUID, changeType ChangeType) error {
	msg := UserUpdateMessage{UserId: userId.String(), ChangeType: changeType}
	if err := k.publishMessage(ctx, messageTypeUserUpdate, userId.String(), msg); err != nil {
		return fmt.Errorf("failed to publish user update: %w", err)
	}
	return nil
}

func (k *kafkaNotifier) publishMessage(ctx context.Context, messageType string, key string, message any) error {
	bytes, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := k.w.WriteMessages(ctx, kafka.Message{
		Key:     []byte(key),
		Value:   bytes,
		Headers: []kafka.Header{{Key: "X-Message-Type", Value: []byte(messageType)}},
	}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}
