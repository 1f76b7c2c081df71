package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/banking/sanctions-screening/internal/domain"
	"github.com/banking/sanctions-screening/internal/pkg/logger"
)

func newMockProducer(t *testing.T) *mocks.SyncProducer {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	return mocks.NewSyncProducer(t, cfg)
}

func TestKafkaSink_PublishesKeyedEnvelope(t *testing.T) {
	producer := newMockProducer(t)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "screening_results" {
			return errors.New("unexpected topic " + msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "pay-1" {
			return errors.New("unexpected key " + string(key))
		}
		return nil
	})
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event Event
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.EventType != EventPaymentScreened || event.EventID == "" {
			return errors.New("bad envelope")
		}
		if event.Result.Decision != domain.DecisionBlock {
			return errors.New("unexpected decision")
		}
		return nil
	})

	sink := NewKafkaSink(producer, "screening_results", "sanctions-screening", logger.FromZap(zaptest.NewLogger(t), "test"))
	require.NoError(t, sink.RecordPayment(context.Background(), blockedResult()))
	require.NoError(t, sink.RecordPayment(context.Background(), blockedResult()))
	require.NoError(t, sink.Close())
}

func TestKafkaSink_SendFailure(t *testing.T) {
	producer := newMockProducer(t)
	producer.ExpectSendMessageAndFail(sarama.ErrNotLeaderForPartition)

	sink := NewKafkaSink(producer, "screening_results", "sanctions-screening", logger.FromZap(zaptest.NewLogger(t), "test"))
	err := sink.RecordPayment(context.Background(), blockedResult())
	assert.ErrorIs(t, err, sarama.ErrNotLeaderForPartition)
	require.NoError(t, sink.Close())
}

func TestKafkaSink_CancelledContext(t *testing.T) {
	producer := newMockProducer(t)
	sink := NewKafkaSink(producer, "screening_results", "sanctions-screening", logger.FromZap(zaptest.NewLogger(t), "test"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sink.RecordPayment(ctx, blockedResult()), context.Canceled)
	require.NoError(t, sink.Close())
}
