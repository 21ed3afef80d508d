package worker

import (
	"context"
	"testing"

	"storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) Send(toEmail, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, toEmail+"|"+subject+"|"+body)
	return nil
}

func statusEvent() *models.OrderStatusChangedEvent {
	return &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   "evt-1",
			EventType: models.EventTypeOrderStatusChanged,
		},
		OrderID:    "o1",
		BuyerEmail: "buyer@example.com",
		NewStatus:  models.OrderStatusShipped,
	}
}

func TestHandleStatusChangedSendsEmail(t *testing.T) {
	sender := &fakeSender{}
	w := NewNotificationWorker(nil, sender)

	err := w.handleStatusChanged(context.Background(), statusEvent())
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "buyer@example.com")
	assert.Contains(t, sender.sent[0], "Order #o1 Status Update")
	assert.Contains(t, sender.sent[0], models.OrderStatusShipped)
}

func TestHandleStatusChangedSwallowsSendFailure(t *testing.T) {
	sender := &fakeSender{err: assert.AnError}
	w := NewNotificationWorker(nil, sender)

	// A failed send must not surface: the status change already committed
	// and the event should be acknowledged, not redelivered.
	err := w.handleStatusChanged(context.Background(), statusEvent())
	assert.NoError(t, err)
	assert.Empty(t, sender.sent)
}
