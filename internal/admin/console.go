// Package admin runs the Telegram operator console: approval of pending
// requests, dashboards and credential delivery commands.
package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/iptvbot/core/logger"
	"github.com/m3rciful/iptvbot/internal/models"
)

// Store is the persistence surface the console needs.
type Store interface {
	Stats(ctx context.Context) (*models.Stats, error)
	RecentUsers(ctx context.Context, limit int) ([]models.User, error)
	RecentMessages(ctx context.Context, limit int) ([]models.MessageLog, error)
	OpenSupportRequests(ctx context.Context, limit int) ([]models.SupportRequest, error)
	PendingTests(ctx context.Context) ([]models.FreeTest, error)
	PendingSubscriptions(ctx context.Context) ([]models.Subscription, error)
	PendingRenewals(ctx context.Context) ([]models.Renewal, error)
	GetFreeTest(ctx context.Context, id int64) (*models.FreeTest, error)
	GetSubscription(ctx context.Context, id int64) (*models.Subscription, error)
	GetRenewal(ctx context.Context, id int64) (*models.Renewal, error)
	ApproveTest(ctx context.Context, id int64, login, password string, expiresAt time.Time) error
	RejectTest(ctx context.Context, id int64) error
	ApproveSubscription(ctx context.Context, id int64, login, password string, expiresAt time.Time) error
	RejectSubscription(ctx context.Context, id int64) error
	ApproveRenewal(ctx context.Context, id int64, expiresAt time.Time) error
	RejectRenewal(ctx context.Context, id int64) error
	Settings(ctx context.Context) (map[string]string, error)
}

// Engine is the conversation-engine surface the console pushes results into.
type Engine interface {
	NotifyTestApproved(ctx context.Context, phone, login, password string, expiresAt time.Time) error
	NotifyPlanApproved(ctx context.Context, phone, login, password, plan string, expiresAt time.Time) error
	NotifyRenewalApproved(ctx context.Context, phone, login, plan string, expiresAt time.Time) error
	NotifyTestRejected(ctx context.Context, phone string) error
	NotifyPlanRejected(ctx context.Context, phone string) error
	NotifyRenewalRejected(ctx context.Context, phone string) error
}

// Options configures the console connection.
type Options struct {
	Token           string
	AdminID         int64
	LongPollTimeout time.Duration
}

// Console is the Telegram-side operator interface.
type Console struct {
	bot     *tele.Bot
	store   Store
	engine  Engine
	adminID int64

	baseCtx context.Context
	now     func() time.Time
}

// New connects the console bot and registers its handlers.
func New(opts Options, store Store, engine Engine) (*Console, error) {
	if strings.TrimSpace(opts.Token) == "" {
		return nil, fmt.Errorf("admin: token is required")
	}
	if opts.AdminID == 0 {
		return nil, fmt.Errorf("admin: admin id is required")
	}
	timeout := opts.LongPollTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	bot, err := tele.NewBot(tele.Settings{
		Token:  opts.Token,
		Poller: &tele.LongPoller{Timeout: timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("admin: bot init: %w", err)
	}

	c := &Console{
		bot:     bot,
		store:   store,
		engine:  engine,
		adminID: opts.AdminID,
		baseCtx: context.Background(),
		now:     time.Now,
	}
	c.register()
	return c, nil
}

func (c *Console) register() {
	c.bot.Use(c.adminOnly)

	c.bot.Handle("/start", c.cmdMenu)
	c.bot.Handle("/menu", c.cmdMenu)
	c.bot.Handle("/debug", c.cmdDebug)
	c.bot.Handle("/logs", c.cmdLogs)
	c.bot.Handle("/settest", c.cmdSetTest)
	c.bot.Handle("/setplan", c.cmdSetPlan)
	c.bot.Handle(tele.OnCallback, c.onCallback)
}

// adminOnly drops every update that does not come from the operator chat.
func (c *Console) adminOnly(next tele.HandlerFunc) tele.HandlerFunc {
	return func(tc tele.Context) error {
		chat := tc.Chat()
		if chat == nil || chat.ID != c.adminID {
			return nil
		}
		return next(tc)
	}
}

// Run serves the console until the context is canceled.
func (c *Console) Run(ctx context.Context) error {
	c.baseCtx = ctx

	if err := c.sendMainMenu("🚀 IPTV Bot Admin iniciado!\n\nSistema de gestão ativo."); err != nil {
		logger.Warn(ctx, "admin", "startup_message_failed", logger.Err(err))
	}

	done := make(chan struct{})
	go func() {
		c.bot.Start()
		close(done)
	}()

	select {
	case <-ctx.Done():
		c.bot.Stop()
		<-done
		return nil
	case <-done:
		return nil
	}
}

func (c *Console) ctx() context.Context {
	if c.baseCtx != nil {
		return c.baseCtx
	}
	return context.Background()
}

func (c *Console) sendMainMenu(text string) error {
	_, err := c.bot.Send(tele.ChatID(c.adminID), text, &tele.SendOptions{
		ParseMode:   tele.ModeMarkdown,
		ReplyMarkup: mainMenuMarkup(),
	})
	return err
}

// sendToAdmin pushes a markdown message to the operator chat.
func (c *Console) sendToAdmin(ctx context.Context, text string, rm *tele.ReplyMarkup) {
	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdown}
	if rm != nil {
		opts.ReplyMarkup = rm
	}
	if _, err := c.bot.Send(tele.ChatID(c.adminID), text, opts); err != nil {
		logger.Error(ctx, "admin", "send_failed", logger.Err(err))
	}
}
