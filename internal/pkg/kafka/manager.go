package kafka

import (
	"Keystone/internal/api/config"
	"context"
	log "log/slog"
	"time"

	"github.com/IBM/sarama"
)

// ConsumerManager 管理 Kafka 消费者
type ConsumerManager struct {
	userFollowsTopic    string
	userFollowsConsumer sarama.ConsumerGroup
	userFollowsHandler  sarama.ConsumerGroupHandler
}

func NewConsumerManager(cfg *config.Config, cache FollowCacheInvalidator) (*ConsumerManager, error) {
	saramaCfg := newSaramaConfig(cfg.Kafka)

	userFollowsConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaUserFollowsConsumer.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}

	return &ConsumerManager{
		userFollowsTopic:    cfg.KafkaUserFollowsConsumer.Topic,
		userFollowsConsumer: userFollowsConsumer,
		userFollowsHandler:  NewUserFollowsHandler(cache),
	}, nil
}

// Start 阻塞直到 ctx 结束
func (m *ConsumerManager) Start(ctx context.Context) error {
	go func() {
		for err := range m.userFollowsConsumer.Errors() {
			log.Error("user follows consumer error", "err", err)
		}
	}()

	go func() {
		log.Info("User Follows consumer started", "topic", m.userFollowsTopic)
		for {
			if err := m.userFollowsConsumer.Consume(ctx, []string{m.userFollowsTopic}, m.userFollowsHandler); err != nil {
				log.Error("Error from consumer", "err", err)
				select {
				case <-ctx.Done():
				case <-time.After(time.Second):
				}
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	<-ctx.Done()
	log.Info("Kafka Manager shutting down...")

	if err := m.userFollowsConsumer.Close(); err != nil {
		log.Error("Failed to close user follows consumer", "err", err)
	}
	return nil
}
