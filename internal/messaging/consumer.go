package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/IBM/sarama"

	"github.com/banking/sanctions-screening/internal/domain"
	"github.com/banking/sanctions-screening/internal/pkg/logger"
)

// PaymentScreener screens one payment message
type PaymentScreener interface {
	ScreenPayment(ctx context.Context, msg domain.PaymentMessage) (*domain.PaymentScreeningResult, error)
}

// Consumer feeds payment messages from a Kafka consumer group to the screener.
// Each claimed partition is processed by its own goroutine.
type Consumer struct {
	group    sarama.ConsumerGroup
	topics   []string
	screener PaymentScreener
	log      *logger.Logger
}

// NewConsumerGroup creates a consumer group starting at the newest offset
// for groups without committed offsets.
func NewConsumerGroup(brokers []string, groupID, clientID string) (sarama.ConsumerGroup, error) {
	cfg := sarama.NewConfig()
	cfg.ClientID = clientID
	cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	cfg.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer group: %w", err)
	}
	return group, nil
}

// NewConsumer creates a consumer on an existing consumer group
func NewConsumer(group sarama.ConsumerGroup, topics []string, screener PaymentScreener, log *logger.Logger) *Consumer {
	return &Consumer{
		group:    group,
		topics:   topics,
		screener: screener,
		log:      log.Named("payment_consumer"),
	}
}

// Run consumes until ctx is done, rejoining the group after every rebalance
func (c *Consumer) Run(ctx context.Context) error {
	go c.logErrors(ctx)

	for {
		if err := c.group.Consume(ctx, c.topics, c); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			c.log.Error("payment consume error", logger.ErrorField(err))
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// Close leaves the consumer group
func (c *Consumer) Close() error {
	return c.group.Close()
}

func (c *Consumer) logErrors(ctx context.Context) {
	for {
		select {
		case err, ok := <-c.group.Errors():
			if !ok {
				return
			}
			c.log.Warn("consumer group error", logger.ErrorField(err))
		case <-ctx.Done():
			return
		}
	}
}

// Setup implements sarama.ConsumerGroupHandler
func (c *Consumer) Setup(sess sarama.ConsumerGroupSession) error {
	c.log.Info("partitions assigned",
		logger.StringField("member_id", sess.MemberID()),
		logger.IntField("generation", int(sess.GenerationID())),
	)
	return nil
}

// Cleanup implements sarama.ConsumerGroupHandler
func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim implements sarama.ConsumerGroupHandler
func (c *Consumer) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	ctx := sess.Context()
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if c.handleMessage(ctx, msg) {
				sess.MarkMessage(msg, "")
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// handleMessage screens one message and reports whether its offset may be marked.
// Undecodable and invalid messages are marked so they cannot block the partition.
// Screenings aborted by shutdown are left unmarked and redelivered.
func (c *Consumer) handleMessage(ctx context.Context, msg *sarama.ConsumerMessage) bool {
	log := c.log.With(
		logger.StringField("topic", msg.Topic),
		logger.IntField("partition", int(msg.Partition)),
		logger.IntField("offset", int(msg.Offset)),
	)

	var payment domain.PaymentMessage
	if err := json.Unmarshal(msg.Value, &payment); err != nil {
		log.Error("undecodable payment message", logger.ErrorField(err))
		return true
	}
	if payment.PaymentID == "" && len(msg.Key) > 0 {
		payment.PaymentID = string(msg.Key)
	}

	result, err := c.screener.ScreenPayment(ctx, payment)
	switch {
	case err == nil:
		switch {
		case result.IsBlocked():
			log.Warn("payment blocked",
				logger.StringField("payment_id", payment.PaymentID),
				logger.StringField("flagged_side", string(result.FlaggedSide)),
			)
		case result.NeedsReview():
			log.Info("payment held for review",
				logger.StringField("payment_id", payment.PaymentID),
				logger.StringField("review_priority", string(result.ReviewPriority)),
			)
		}
		if result.AuditWarning != "" {
			log.Warn("payment screened without audit record",
				logger.StringField("payment_id", payment.PaymentID),
				logger.StringField("audit_warning", result.AuditWarning),
			)
		}
		return true
	case ctx.Err() != nil:
		log.Info("screening aborted, message will be redelivered",
			logger.StringField("payment_id", payment.PaymentID))
		return false
	case errors.Is(err, domain.ErrInvalidInput):
		log.Error("invalid payment message",
			logger.StringField("payment_id", payment.PaymentID),
			logger.ErrorField(err))
		return true
	default:
		log.Error("payment screening failed",
			logger.StringField("payment_id", payment.PaymentID),
			logger.ErrorField(err))
		return true
	}
}
