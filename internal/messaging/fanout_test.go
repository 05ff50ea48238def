package messaging

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDispatcher struct {
	sendFn func(ctx context.Context, msg Message) error
	calls  atomic.Int64
}

func (s *stubDispatcher) Send(ctx context.Context, msg Message) error {
	s.calls.Add(1)
	if s.sendFn != nil {
		return s.sendFn(ctx, msg)
	}
	return nil
}

func makeMessages(n int) []Message {
	msgs := make([]Message, 0, n)
	for i := 0; i < n; i++ {
		msgs = append(msgs, Message{
			MemberID: uuid.New(),
			Phone:    "9876543210",
			Body:     "pay up",
		})
	}
	return msgs
}

func TestFanOutOneFailureDoesNotBlockOthers(t *testing.T) {
	msgs := makeMessages(5)
	failing := msgs[2].MemberID

	dispatcher := &stubDispatcher{
		sendFn: func(ctx context.Context, msg Message) error {
			if msg.MemberID == failing {
				return errors.New("gateway down")
			}
			return nil
		},
	}

	results, combined := FanOut(context.Background(), dispatcher, msgs, FanOutOptions{})
	require.Len(t, results, 5)
	assert.Error(t, combined)
	assert.EqualValues(t, 5, dispatcher.calls.Load())

	failures := 0
	for i, res := range results {
		assert.Equal(t, msgs[i].MemberID, res.MemberID)
		if res.Err != nil {
			failures++
			assert.Equal(t, failing, res.MemberID)
		}
	}
	assert.Equal(t, 1, failures)
}

func TestFanOutAllSucceed(t *testing.T) {
	dispatcher := &stubDispatcher{}
	results, combined := FanOut(context.Background(), dispatcher, makeMessages(3), FanOutOptions{Concurrency: 2})
	require.Len(t, results, 3)
	assert.NoError(t, combined)
	for _, res := range results {
		assert.NoError(t, res.Err)
	}
}

func TestFanOutRecipientTimeout(t *testing.T) {
	dispatcher := &stubDispatcher{
		sendFn: func(ctx context.Context, msg Message) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
				return nil
			}
		},
	}

	start := time.Now()
	results, combined := FanOut(context.Background(), dispatcher, makeMessages(2), FanOutOptions{
		Concurrency:      2,
		RecipientTimeout: 20 * time.Millisecond,
	})
	require.Len(t, results, 2)
	assert.Error(t, combined)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	for _, res := range results {
		assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
	}
}

func TestFanOutEmptyBatch(t *testing.T) {
	results, combined := FanOut(context.Background(), &stubDispatcher{}, nil, FanOutOptions{})
	assert.Nil(t, results)
	assert.NoError(t, combined)
}

func TestRenderTemplate(t *testing.T) {
	body := RenderTemplate("Hey {playerName}, Rs {dueAmount} due", "Rahul", "334")
	assert.Equal(t, "Hey Rahul, Rs 334 due", body)
}

func TestRenderTemplateDefault(t *testing.T) {
	body := RenderTemplate("", "Rahul", "500")
	assert.Contains(t, body, "Rahul")
	assert.Contains(t, body, "500")
}
