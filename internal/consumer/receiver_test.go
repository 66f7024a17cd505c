package consumer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func TestReceiver_ForwardsMessages(t *testing.T) {
	queue := new(MockQueueConsumer)
	queue.On("QueueURL").Return(testQueueURL)

	messages := []types.Message{
		{MessageId: aws.String("msg-1"), Body: aws.String(`{}`)},
		{MessageId: aws.String("msg-2"), Body: aws.String(`{}`)},
	}

	queue.On("ReceiveMessages", mock.Anything, mock.MatchedBy(func(in *sqs.ReceiveMessageInput) bool {
		return aws.ToString(in.QueueUrl) == testQueueURL && in.MaxNumberOfMessages == 10
	})).Return(&sqs.ReceiveMessageOutput{Messages: messages}, nil).Once()
	queue.On("ReceiveMessages", mock.Anything, mock.Anything).
		Return(&sqs.ReceiveMessageOutput{}, nil).Maybe()

	receiver := NewReceiver(queue, ReceiverConfig{MaxMessages: 10, WaitTimeSeconds: 20}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	out := make(chan types.Message, 10)
	receiver.Start(ctx, out)

	var got []string
	for msg := range out {
		got = append(got, aws.ToString(msg.MessageId))
	}
	assert.Equal(t, []string{"msg-1", "msg-2"}, got)
}

func TestReceiver_BacksOffOnError(t *testing.T) {
	queue := new(MockQueueConsumer)
	queue.On("QueueURL").Return(testQueueURL)
	queue.On("ReceiveMessages", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	receiver := NewReceiver(queue, ReceiverConfig{
		MaxMessages:  10,
		ErrorBackoff: 50 * time.Millisecond,
	}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	out := make(chan types.Message)
	receiver.Start(ctx, out)

	_, open := <-out
	assert.False(t, open)

	calls := 0
	for _, call := range queue.Calls {
		if call.Method == "ReceiveMessages" {
			calls++
		}
	}
	assert.LessOrEqual(t, calls, 3)
}

func TestReceiver_StopsWhileForwarding(t *testing.T) {
	queue := new(MockQueueConsumer)
	queue.On("QueueURL").Return(testQueueURL)
	queue.On("ReceiveMessages", mock.Anything, mock.Anything).
		Return(&sqs.ReceiveMessageOutput{Messages: []types.Message{{MessageId: aws.String("msg-1")}}}, nil)

	receiver := NewReceiver(queue, ReceiverConfig{MaxMessages: 10}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// nobody reads, so the receiver blocks on the send until ctx expires
	out := make(chan types.Message)
	done := make(chan struct{})
	go func() {
		receiver.Start(ctx, out)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("receiver did not stop")
	}
}
