// Package bot implements the WhatsApp conversation engine: a per-user
// state machine that turns inbound messages into replies, database writes
// and admin notifications.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/m3rciful/iptvbot/core/logger"
	"github.com/m3rciful/iptvbot/internal/models"
	"github.com/m3rciful/iptvbot/internal/session"
	"github.com/m3rciful/iptvbot/internal/storage"
)

// Store is the persistence surface the engine needs.
type Store interface {
	FindUserByPhone(ctx context.Context, phone string) (*models.User, error)
	CreateUser(ctx context.Context, phone string) (*models.User, error)
	UpdateUserState(ctx context.Context, phone, state string) error
	UpdateUserProfile(ctx context.Context, phone string, name, city, device *string) error
	TouchInteraction(ctx context.Context, phone string) error
	CreateFreeTest(ctx context.Context, userID int64, name, city, device string) (int64, error)
	CreateSubscription(ctx context.Context, userID int64, plan string, price float64) (int64, error)
	CreateRenewal(ctx context.Context, userID int64, currentLogin, plan string, price float64, proof string) (int64, error)
	CreatePaymentProof(ctx context.Context, phone, requestType string, requestID int64, proof string) error
	CreateSupportRequest(ctx context.Context, userID int64, problem string) (int64, error)
	LogMessage(ctx context.Context, userID int64, content, msgType string) error
	Settings(ctx context.Context) (map[string]string, error)
}

// Sender delivers outbound WhatsApp messages.
type Sender interface {
	SendText(ctx context.Context, phone, text string) error
}

// AdminNotifier pushes events to the operator console. Implementations must
// tolerate being called when no console is configured.
type AdminNotifier interface {
	NotifyNewUser(ctx context.Context, phone, name string)
	NotifyTestRequest(ctx context.Context, phone, name, city, device string, testID int64)
	NotifyPlanPayment(ctx context.Context, phone, plan string, price float64, proof string, subscriptionID int64)
	NotifyRenewalPayment(ctx context.Context, phone, login, plan string, price float64, proof string, renewalID int64)
	NotifySupportRequest(ctx context.Context, phone, problem string)
	NotifyHumanRequest(ctx context.Context, phone, message string)
}

// NopNotifier satisfies AdminNotifier when no admin console is configured.
type NopNotifier struct{}

func (NopNotifier) NotifyNewUser(context.Context, string, string)                            {}
func (NopNotifier) NotifyTestRequest(context.Context, string, string, string, string, int64) {}
func (NopNotifier) NotifyPlanPayment(context.Context, string, string, float64, string, int64) {
}
func (NopNotifier) NotifyRenewalPayment(context.Context, string, string, string, float64, string, int64) {
}
func (NopNotifier) NotifySupportRequest(context.Context, string, string) {}
func (NopNotifier) NotifyHumanRequest(context.Context, string, string)   {}

type sessionData = session.Data

// Bot is the conversation engine.
type Bot struct {
	store    Store
	sessions *session.Manager
	sender   Sender
	admin    AdminNotifier

	mu    sync.Mutex
	locks map[string]*phoneLock

	now func() time.Time
}

// phoneLock serializes processing for one phone. refs counts in-flight
// messages so the entry can be evicted once the last one finishes.
type phoneLock struct {
	sync.Mutex
	refs int
}

// New wires the engine. A nil notifier disables admin pushes.
func New(store Store, sessions *session.Manager, sender Sender, admin AdminNotifier) *Bot {
	if admin == nil {
		admin = NopNotifier{}
	}
	return &Bot{
		store:    store,
		sessions: sessions,
		sender:   sender,
		admin:    admin,
		locks:    make(map[string]*phoneLock),
		now:      time.Now,
	}
}

// SetAdmin swaps the admin notifier after construction. The engine and the
// console reference each other, so one side is wired late.
func (b *Bot) SetAdmin(admin AdminNotifier) {
	if admin != nil {
		b.admin = admin
	}
}

// acquirePhone blocks until this goroutine owns the phone's lock. Two
// messages from the same user cannot interleave state transitions.
func (b *Bot) acquirePhone(phone string) *phoneLock {
	b.mu.Lock()
	l, ok := b.locks[phone]
	if !ok {
		l = &phoneLock{}
		b.locks[phone] = l
	}
	l.refs++
	b.mu.Unlock()

	l.Lock()
	return l
}

// releasePhone drops the caller's hold and evicts the map entry once no
// message is in flight for the phone, so the map only tracks active chats.
func (b *Bot) releasePhone(phone string, l *phoneLock) {
	l.Unlock()

	b.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(b.locks, phone)
	}
	b.mu.Unlock()
}

// HandleIncomingMessage runs one inbound message through the state machine.
func (b *Bot) HandleIncomingMessage(ctx context.Context, phone, text string) error {
	lock := b.acquirePhone(phone)
	defer b.releasePhone(phone, lock)

	ctx = logger.WithPhone(ctx, phone)
	start := b.now()

	user, created, err := b.getOrCreateUser(ctx, phone)
	if err != nil {
		return err
	}

	if lerr := b.store.LogMessage(ctx, user.ID, text, models.MessageReceived); lerr != nil {
		logger.Warn(ctx, "bot", "log_message_failed", logger.Err(lerr))
	}

	var reply, nextState string
	first := created || user.MessageCount == 0
	if first {
		reply = welcomeMessage()
		nextState = models.StateMainMenu
		b.admin.NotifyNewUser(ctx, phone, displayName(user))
	} else {
		reply, nextState, err = b.dispatch(ctx, user, text)
		if err != nil {
			logger.Error(ctx, "bot", "handler_failed",
				slog.String("state", user.CurrentState),
				logger.Err(err),
			)
			b.reply(ctx, user, internalErrorMessage)
			return err
		}
	}

	if nextState != user.CurrentState {
		if serr := b.store.UpdateUserState(ctx, phone, nextState); serr != nil {
			return fmt.Errorf("bot: persist state: %w", serr)
		}
		logger.Debug(ctx, "bot", "state_transition",
			slog.String("from", user.CurrentState),
			slog.String("state", nextState),
		)
	}
	if terr := b.store.TouchInteraction(ctx, phone); terr != nil {
		logger.Warn(ctx, "bot", "touch_failed", logger.Err(terr))
	}

	if reply != "" {
		b.reply(ctx, user, reply)
	}

	logger.Info(ctx, "bot", "message_handled",
		slog.String("state", nextState),
		slog.Float64("duration_ms", logger.RoundMS(b.now().Sub(start))),
	)
	return nil
}

func (b *Bot) getOrCreateUser(ctx context.Context, phone string) (*models.User, bool, error) {
	user, err := b.store.FindUserByPhone(ctx, phone)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, false, fmt.Errorf("bot: lookup user: %w", err)
	}
	user, err = b.store.CreateUser(ctx, phone)
	if err != nil {
		return nil, false, fmt.Errorf("bot: register user: %w", err)
	}
	return user, true, nil
}

// reply sends the response and logs it. Send failures are logged, not
// propagated: the state transition already happened.
func (b *Bot) reply(ctx context.Context, user *models.User, text string) {
	if err := b.sender.SendText(ctx, user.Phone, text); err != nil {
		logger.Error(ctx, "bot", "reply_failed", logger.Err(err))
		return
	}
	if err := b.store.LogMessage(ctx, user.ID, text, models.MessageSent); err != nil {
		logger.Warn(ctx, "bot", "log_message_failed", logger.Err(err))
	}
}

func displayName(u *models.User) string {
	if u.Name.Valid && strings.TrimSpace(u.Name.String) != "" {
		return u.Name.String
	}
	return "Não informado"
}
