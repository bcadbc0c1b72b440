package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"building_monitor/internal/notify"
)

// channelStub captures sent notifications.
type channelStub struct {
	mu      sync.Mutex
	sendErr error
	sent    []notify.Notification
}

func (c *channelStub) Send(ctx context.Context, n notify.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, n)
	return nil
}

func (c *channelStub) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

// newTestNotifier returns a notifier with a controllable clock.
func newTestNotifier(ch notify.Channel) (*NotifierService, *time.Time) {
	svc := NewNotifierService(ch, nil)
	now := time.Now().UTC()
	svc.now = func() time.Time { return now }
	return svc, &now
}

func TestNotifier_CooldownSuppressesRepeat(t *testing.T) {
	t.Parallel()

	ch := &channelStub{}
	svc, now := newTestNotifier(ch)
	ctx := context.Background()

	if got := svc.NotifyIfDue(ctx, "d1", ClassWarning, 45, 40, "Lobby"); !got {
		t.Fatalf("first call: want true")
	}
	if got := svc.NotifyIfDue(ctx, "d1", ClassWarning, 46, 40, "Lobby"); got {
		t.Fatalf("second call within cooldown: want false")
	}
	if ch.count() != 1 {
		t.Fatalf("want 1 send, got %d", ch.count())
	}

	// after the cooldown elapses, due again
	*now = now.Add(NotifyCooldown + time.Second)
	if got := svc.NotifyIfDue(ctx, "d1", ClassWarning, 47, 40, "Lobby"); !got {
		t.Fatalf("call after cooldown: want true")
	}
	if ch.count() != 2 {
		t.Fatalf("want 2 sends, got %d", ch.count())
	}
}

func TestNotifier_EscalationBypassesCooldown(t *testing.T) {
	t.Parallel()

	ch := &channelStub{}
	svc, _ := newTestNotifier(ch)
	ctx := context.Background()

	if !svc.NotifyIfDue(ctx, "d1", ClassWarning, 45, 40, "") {
		t.Fatalf("warning: want true")
	}
	// same window, but severity escalated
	if !svc.NotifyIfDue(ctx, "d1", ClassCritical, 60, 40, "") {
		t.Fatalf("critical escalation within cooldown: want true")
	}
	// critical repeat stays suppressed
	if svc.NotifyIfDue(ctx, "d1", ClassCritical, 61, 40, "") {
		t.Fatalf("critical repeat within cooldown: want false")
	}

	if ch.count() != 2 {
		t.Fatalf("want 2 sends, got %d", ch.count())
	}
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.sent[1].Priority != notify.PriorityHigh {
		t.Fatalf("critical must be high priority: %+v", ch.sent[1])
	}
}

func TestNotifier_DevicesAreIndependent(t *testing.T) {
	t.Parallel()

	ch := &channelStub{}
	svc, _ := newTestNotifier(ch)
	ctx := context.Background()

	if !svc.NotifyIfDue(ctx, "d1", ClassWarning, 45, 40, "") {
		t.Fatalf("d1: want true")
	}
	if !svc.NotifyIfDue(ctx, "d2", ClassWarning, 45, 40, "") {
		t.Fatalf("d2: want true despite d1 cooldown")
	}
}

func TestNotifier_DisabledIsSilentlySkipped(t *testing.T) {
	t.Parallel()

	ch := &channelStub{}
	svc, _ := newTestNotifier(ch)
	svc.SetEnabled(false)

	if svc.NotifyIfDue(context.Background(), "d1", ClassCritical, 90, 40, "") {
		t.Fatalf("disabled notifier must return false")
	}
	if ch.count() != 0 {
		t.Fatalf("disabled notifier must not send")
	}
}

func TestNotifier_NilChannelIsDisabled(t *testing.T) {
	t.Parallel()

	svc := NewNotifierService(nil, nil)
	if svc.Enabled() {
		t.Fatalf("nil channel must report disabled")
	}
	if svc.NotifyIfDue(context.Background(), "d1", ClassWarning, 45, 40, "") {
		t.Fatalf("nil channel must not notify")
	}
}

func TestNotifier_NominalNeverNotifies(t *testing.T) {
	t.Parallel()

	ch := &channelStub{}
	svc, _ := newTestNotifier(ch)

	if svc.NotifyIfDue(context.Background(), "d1", ClassNominal, 30, 40, "") {
		t.Fatalf("nominal must not notify")
	}
}

func TestNotifier_SendFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	ch := &channelStub{sendErr: errors.New("endpoint down")}
	svc, _ := newTestNotifier(ch)

	if svc.NotifyIfDue(context.Background(), "d1", ClassWarning, 45, 40, "") {
		t.Fatalf("failed send must report false")
	}
	// no record kept, so the next attempt is not cooled down
	ch.mu.Lock()
	ch.sendErr = nil
	ch.mu.Unlock()
	if !svc.NotifyIfDue(context.Background(), "d1", ClassWarning, 45, 40, "") {
		t.Fatalf("retry after failed send: want true")
	}
}
