package admin

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/iptvbot/core/logger"
	"github.com/m3rciful/iptvbot/internal/plans"
	"github.com/m3rciful/iptvbot/internal/storage"
)

// parseCallback splits Telebot's \f<unique>|<payload> callback encoding.
func parseCallback(data string) (string, string) {
	raw := strings.TrimPrefix(data, "\f")
	raw = strings.TrimPrefix(raw, "\\f")
	parts := strings.SplitN(raw, "|", 2)
	unique := strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		return unique, strings.TrimSpace(parts[1])
	}
	return unique, ""
}

func (c *Console) cmdMenu(tc tele.Context) error {
	return tc.Send("🎛️ *IPTV Bot Admin*", &tele.SendOptions{
		ParseMode:   tele.ModeMarkdown,
		ReplyMarkup: mainMenuMarkup(),
	})
}

func (c *Console) onCallback(tc tele.Context) error {
	cb := tc.Callback()
	if cb == nil {
		return nil
	}
	_ = tc.Respond()

	key, payload := parseCallback(cb.Data)
	ctx := c.ctx()

	switch key {
	case "dashboard", "refresh":
		st, err := c.store.Stats(ctx)
		if err != nil {
			return c.editError(tc, err)
		}
		return c.edit(tc, dashboardText(st, c.now()), navMarkup())

	case "back_main":
		return c.edit(tc, "🎛️ *IPTV Bot Admin*", mainMenuMarkup())

	case "users_menu":
		st, err := c.store.Stats(ctx)
		if err != nil {
			return c.editError(tc, err)
		}
		users, err := c.store.RecentUsers(ctx, 10)
		if err != nil {
			return c.editError(tc, err)
		}
		return c.edit(tc, usersText(users, st), navMarkup())

	case "pending_tests":
		tests, err := c.store.PendingTests(ctx)
		if err != nil {
			return c.editError(tc, err)
		}
		if len(tests) > pendingListLimit {
			tests = tests[:pendingListLimit]
		}
		ids := make([]int64, len(tests))
		for i, t := range tests {
			ids[i] = t.ID
		}
		return c.edit(tc, pendingTestsText(tests), pendingMarkup("test", ids))

	case "pending_plans":
		subs, err := c.store.PendingSubscriptions(ctx)
		if err != nil {
			return c.editError(tc, err)
		}
		if len(subs) > pendingListLimit {
			subs = subs[:pendingListLimit]
		}
		ids := make([]int64, len(subs))
		for i, s := range subs {
			ids[i] = s.ID
		}
		return c.edit(tc, pendingPlansText(subs), pendingMarkup("plan", ids))

	case "pending_renewals":
		renewals, err := c.store.PendingRenewals(ctx)
		if err != nil {
			return c.editError(tc, err)
		}
		if len(renewals) > pendingListLimit {
			renewals = renewals[:pendingListLimit]
		}
		ids := make([]int64, len(renewals))
		for i, r := range renewals {
			ids[i] = r.ID
		}
		return c.edit(tc, pendingRenewalsText(renewals), pendingMarkup("renewal", ids))

	case "support_menu":
		tickets, err := c.store.OpenSupportRequests(ctx, 5)
		if err != nil {
			return c.editError(tc, err)
		}
		return c.edit(tc, supportText(tickets), navMarkup())

	case "approve_test":
		id, err := parseID(payload)
		if err != nil {
			return nil
		}
		return tc.Send(fmt.Sprintf("🎯 *Aprovar Teste ID: %d*\n\nEnvie o comando no formato:\n\n`/settest %d LOGIN SENHA`", id, id),
			&tele.SendOptions{ParseMode: tele.ModeMarkdown})

	case "approve_plan":
		id, err := parseID(payload)
		if err != nil {
			return nil
		}
		return tc.Send(fmt.Sprintf("💎 *Aprovar Plano ID: %d*\n\nEnvie o comando no formato:\n\n`/setplan %d LOGIN SENHA`", id, id),
			&tele.SendOptions{ParseMode: tele.ModeMarkdown})

	case "approve_renewal":
		id, err := parseID(payload)
		if err != nil {
			return nil
		}
		return c.approveRenewal(tc, id)

	case "reject_test":
		id, err := parseID(payload)
		if err != nil {
			return nil
		}
		return c.rejectTest(tc, id)

	case "reject_plan":
		id, err := parseID(payload)
		if err != nil {
			return nil
		}
		return c.rejectPlan(tc, id)

	case "reject_renewal":
		id, err := parseID(payload)
		if err != nil {
			return nil
		}
		return c.rejectRenewal(tc, id)
	}

	return nil
}

func parseID(payload string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(payload), 10, 64)
}

func (c *Console) edit(tc tele.Context, text string, rm *tele.ReplyMarkup) error {
	err := tc.Edit(text, &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: rm})
	if err != nil {
		// Callbacks from pushed notifications have no editable menu message.
		return tc.Send(text, &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: rm})
	}
	return nil
}

func (c *Console) editError(tc tele.Context, err error) error {
	logger.Error(c.ctx(), "admin", "view_failed", logger.Err(err))
	return tc.Send(fmt.Sprintf("❌ Erro ao processar comando: %v", err))
}

// cmdSetTest approves a trial and delivers credentials: /settest <id> <login> <senha>.
func (c *Console) cmdSetTest(tc tele.Context) error {
	args := tc.Args()
	if len(args) != 3 {
		return tc.Send("Uso: `/settest ID LOGIN SENHA`", &tele.SendOptions{ParseMode: tele.ModeMarkdown})
	}
	id, err := parseID(args[0])
	if err != nil {
		return tc.Send("❌ ID inválido.")
	}
	login, password := args[1], args[2]
	ctx := c.ctx()

	test, err := c.store.GetFreeTest(ctx, id)
	if err != nil {
		return c.decisionError(tc, "Teste", id, err)
	}

	settings, err := c.store.Settings(ctx)
	if err != nil {
		return c.editError(tc, err)
	}
	expiresAt := c.now().Add(plans.TestDuration(settings))

	if err := c.store.ApproveTest(ctx, id, login, password, expiresAt); err != nil {
		return c.decisionError(tc, "Teste", id, err)
	}
	if err := c.engine.NotifyTestApproved(ctx, test.Phone, login, password, expiresAt); err != nil {
		logger.Warn(ctx, "admin", "user_notify_failed", logger.Err(err))
	}

	return tc.Send(fmt.Sprintf("✅ *Teste aprovado com sucesso!*\n\n👤 Usuário: %s\n🔐 Login: %s\n🔐 Senha: %s\n⏰ Expira: %s\n\n📱 Usuário foi notificado automaticamente!",
		test.Phone, login, password, expiresAt.Format(fullStamp)),
		&tele.SendOptions{ParseMode: tele.ModeMarkdown})
}

// cmdSetPlan approves a purchase and delivers credentials: /setplan <id> <login> <senha>.
func (c *Console) cmdSetPlan(tc tele.Context) error {
	args := tc.Args()
	if len(args) != 3 {
		return tc.Send("Uso: `/setplan ID LOGIN SENHA`", &tele.SendOptions{ParseMode: tele.ModeMarkdown})
	}
	id, err := parseID(args[0])
	if err != nil {
		return tc.Send("❌ ID inválido.")
	}
	login, password := args[1], args[2]
	ctx := c.ctx()

	sub, err := c.store.GetSubscription(ctx, id)
	if err != nil {
		return c.decisionError(tc, "Plano", id, err)
	}

	expiresAt := plans.SubscriptionExpiry(c.now(), sub.Plan)
	if err := c.store.ApproveSubscription(ctx, id, login, password, expiresAt); err != nil {
		return c.decisionError(tc, "Plano", id, err)
	}
	if err := c.engine.NotifyPlanApproved(ctx, sub.Phone, login, password, sub.Plan, expiresAt); err != nil {
		logger.Warn(ctx, "admin", "user_notify_failed", logger.Err(err))
	}

	return tc.Send(fmt.Sprintf("✅ *Plano aprovado com sucesso!*\n\n👤 Usuário: %s\n📦 Plano: %s\n🔐 Login: %s\n🔐 Senha: %s\n⏰ Expira: %s\n\n📱 Usuário foi notificado automaticamente!",
		sub.Phone, sub.Plan, login, password, expiresAt.Format(fullStamp)),
		&tele.SendOptions{ParseMode: tele.ModeMarkdown})
}

func (c *Console) approveRenewal(tc tele.Context, id int64) error {
	ctx := c.ctx()

	renewal, err := c.store.GetRenewal(ctx, id)
	if err != nil {
		return c.decisionError(tc, "Renovação", id, err)
	}

	expiresAt := plans.SubscriptionExpiry(c.now(), renewal.Plan)
	if err := c.store.ApproveRenewal(ctx, id, expiresAt); err != nil {
		return c.decisionError(tc, "Renovação", id, err)
	}
	if err := c.engine.NotifyRenewalApproved(ctx, renewal.Phone, renewal.CurrentLogin, renewal.Plan, expiresAt); err != nil {
		logger.Warn(ctx, "admin", "user_notify_failed", logger.Err(err))
	}

	return tc.Send(fmt.Sprintf("✅ *Renovação aprovada com sucesso!*\n\n👤 Usuário: %s\n👤 Login: %s\n📦 Plano: %s\n⏰ Nova expiração: %s\n\n📱 Usuário foi notificado automaticamente!",
		renewal.Phone, renewal.CurrentLogin, renewal.Plan, expiresAt.Format(fullStamp)),
		&tele.SendOptions{ParseMode: tele.ModeMarkdown})
}

func (c *Console) rejectTest(tc tele.Context, id int64) error {
	ctx := c.ctx()
	test, err := c.store.GetFreeTest(ctx, id)
	if err != nil {
		return c.decisionError(tc, "Teste", id, err)
	}
	if err := c.store.RejectTest(ctx, id); err != nil {
		return c.decisionError(tc, "Teste", id, err)
	}
	if err := c.engine.NotifyTestRejected(ctx, test.Phone); err != nil {
		logger.Warn(ctx, "admin", "user_notify_failed", logger.Err(err))
	}
	return tc.Send(fmt.Sprintf("❌ *Teste rejeitado!*\n\n👤 Usuário: %s\n📅 %s\n\n📱 Usuário foi notificado.",
		test.Phone, c.now().Format(fullStamp)),
		&tele.SendOptions{ParseMode: tele.ModeMarkdown})
}

func (c *Console) rejectPlan(tc tele.Context, id int64) error {
	ctx := c.ctx()
	sub, err := c.store.GetSubscription(ctx, id)
	if err != nil {
		return c.decisionError(tc, "Plano", id, err)
	}
	if err := c.store.RejectSubscription(ctx, id); err != nil {
		return c.decisionError(tc, "Plano", id, err)
	}
	if err := c.engine.NotifyPlanRejected(ctx, sub.Phone); err != nil {
		logger.Warn(ctx, "admin", "user_notify_failed", logger.Err(err))
	}
	return tc.Send(fmt.Sprintf("❌ *Plano rejeitado!*\n\n👤 Usuário: %s\n📦 Plano: %s\n📅 %s\n\n📱 Usuário foi notificado.",
		sub.Phone, sub.Plan, c.now().Format(fullStamp)),
		&tele.SendOptions{ParseMode: tele.ModeMarkdown})
}

func (c *Console) rejectRenewal(tc tele.Context, id int64) error {
	ctx := c.ctx()
	renewal, err := c.store.GetRenewal(ctx, id)
	if err != nil {
		return c.decisionError(tc, "Renovação", id, err)
	}
	if err := c.store.RejectRenewal(ctx, id); err != nil {
		return c.decisionError(tc, "Renovação", id, err)
	}
	if err := c.engine.NotifyRenewalRejected(ctx, renewal.Phone); err != nil {
		logger.Warn(ctx, "admin", "user_notify_failed", logger.Err(err))
	}
	return tc.Send(fmt.Sprintf("❌ *Renovação rejeitada!*\n\n👤 Usuário: %s\n👤 Login: %s\n📅 %s\n\n📱 Usuário foi notificado.",
		renewal.Phone, renewal.CurrentLogin, c.now().Format(fullStamp)),
		&tele.SendOptions{ParseMode: tele.ModeMarkdown})
}

func (c *Console) decisionError(tc tele.Context, kind string, id int64, err error) error {
	switch {
	case errors.Is(err, storage.ErrAlreadyProcessed), errors.Is(err, storage.ErrNotFound):
		return tc.Send(fmt.Sprintf("❌ %s ID %d não encontrado ou já processado.", kind, id))
	default:
		logger.Error(c.ctx(), "admin", "decision_failed", logger.Err(err))
		return tc.Send(fmt.Sprintf("❌ Erro ao processar %s ID %d: %v", strings.ToLower(kind), id, err))
	}
}

func (c *Console) cmdDebug(tc tele.Context) error {
	ctx := c.ctx()
	st, err := c.store.Stats(ctx)
	if err != nil {
		return c.editError(tc, err)
	}
	settings, err := c.store.Settings(ctx)
	if err != nil {
		return c.editError(tc, err)
	}

	text := fmt.Sprintf(`🔧 *INFORMAÇÕES DE DEBUG*

🌐 *Configurações:*
├ Servidor IPTV: %s
├ Chave PIX: %s
└ Duração do teste: %sh

📊 *Estatísticas:*
├ Total usuários: %d
├ Testes pendentes: %d
├ Planos pendentes: %d
└ Renovações pendentes: %d

⏰ *Timestamp:* %s`,
		settings[storage.SettingServerURL],
		settings[storage.SettingPixKey],
		settings[storage.SettingTestDuration],
		st.Users, st.PendingTests, st.PendingSubscriptions, st.PendingRenewals,
		c.now().Format(fullStamp))

	return tc.Send(text, &tele.SendOptions{ParseMode: tele.ModeMarkdown})
}

func (c *Console) cmdLogs(tc tele.Context) error {
	messages, err := c.store.RecentMessages(c.ctx(), 10)
	if err != nil {
		return c.editError(tc, err)
	}
	return tc.Send(logsText(messages, c.now()), &tele.SendOptions{ParseMode: tele.ModeMarkdown})
}
