package admin

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/iptvbot/core/logger"
	"github.com/m3rciful/iptvbot/internal/models"
)

const (
	shortStamp = "02/01 15:04"
	fullStamp  = "02/01/2006 15:04"
)

// pendingListLimit caps how many requests one message shows; one approve and
// one reject button per entry.
const pendingListLimit = 5

func mainMenuMarkup() *tele.ReplyMarkup {
	rm := &tele.ReplyMarkup{}
	rm.Inline(
		rm.Row(
			rm.Data("📊 Dashboard", "dashboard"),
			rm.Data("👥 Usuários", "users_menu"),
		),
		rm.Row(
			rm.Data("🎯 Testes Pendentes", "pending_tests"),
			rm.Data("💎 Planos Pendentes", "pending_plans"),
		),
		rm.Row(
			rm.Data("🔄 Renovações Pendentes", "pending_renewals"),
			rm.Data("🛠️ Suporte", "support_menu"),
		),
	)
	return rm
}

func navMarkup() *tele.ReplyMarkup {
	rm := &tele.ReplyMarkup{}
	rm.Inline(rm.Row(
		rm.Data("🔄 Atualizar", "refresh"),
		rm.Data("🏠 Menu Principal", "back_main"),
	))
	return rm
}

func decisionMarkup(kind string, id int64) *tele.ReplyMarkup {
	ref := strconv.FormatInt(id, 10)
	rm := &tele.ReplyMarkup{}
	rm.Inline(
		rm.Row(
			rm.Data("✅ Aprovar", "approve_"+kind, ref),
			rm.Data("❌ Rejeitar", "reject_"+kind, ref),
		),
		rm.Row(rm.Data("📊 Ver Dashboard", "dashboard")),
	)
	return rm
}

func pendingMarkup(kind string, ids []int64) *tele.ReplyMarkup {
	rm := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(ids)+1)
	for i, id := range ids {
		ref := strconv.FormatInt(id, 10)
		rows = append(rows, rm.Row(
			rm.Data(fmt.Sprintf("✅ Aprovar %d", i+1), "approve_"+kind, ref),
			rm.Data(fmt.Sprintf("❌ Rejeitar %d", i+1), "reject_"+kind, ref),
		))
	}
	rows = append(rows, rm.Row(
		rm.Data("🔄 Atualizar", "refresh"),
		rm.Data("🏠 Menu Principal", "back_main"),
	))
	rm.Inline(rows...)
	return rm
}

func dashboardText(st *models.Stats, now time.Time) string {
	alert := "✅ *Tudo em dia!*"
	if st.PendingTests > 0 || st.PendingSubscriptions > 0 || st.PendingRenewals > 0 {
		alert = "🚨 *Atenção:* Existem solicitações pendentes!"
	}

	return fmt.Sprintf(`📊 *Dashboard - IPTV Bot*

👥 *Usuários:*
├ Total: %d
├ Mensagens hoje: %d
└ Suporte aberto: %d

🎯 *Testes pendentes:* %d
💎 *Planos pendentes:* %d
🔄 *Renovações pendentes:* %d

✅ *Testes ativos:* %d
📺 *Assinaturas ativas:* %d

⏰ *Última atualização:* %s

%s`,
		st.Users, st.MessagesToday, st.OpenSupport,
		st.PendingTests, st.PendingSubscriptions, st.PendingRenewals,
		st.ActiveTests, st.ActiveSubscriptions,
		now.Format(fullStamp), alert)
}

func usersText(users []models.User, st *models.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👥 *GERENCIAMENTO DE USUÁRIOS*\n\n📊 Total de usuários: %d\n\n👤 *USUÁRIOS RECENTES:*\n", st.Users)

	if len(users) == 0 {
		b.WriteString("\n📭 Nenhum usuário cadastrado ainda.")
		return b.String()
	}
	for i, u := range users {
		fmt.Fprintf(&b, "\n%d. 📱 %s", i+1, u.Phone)
		if u.Name.Valid && u.Name.String != "" {
			fmt.Fprintf(&b, "\n   👤 %s", u.Name.String)
		}
		if u.City.Valid && u.City.String != "" {
			fmt.Fprintf(&b, "\n   🏙️ %s", u.City.String)
		}
		fmt.Fprintf(&b, "\n   📅 Cadastro: %s", u.CreatedAt.Format(shortStamp))
		fmt.Fprintf(&b, "\n   ⏰ Última atividade: %s\n", u.LastInteraction.Format(shortStamp))
	}
	return b.String()
}

func pendingTestsText(tests []models.FreeTest) string {
	var b strings.Builder
	b.WriteString("🎯 *Testes Grátis Pendentes*\n\n")
	if len(tests) == 0 {
		b.WriteString("✅ Nenhum teste pendente!")
		return b.String()
	}
	for i, t := range tests {
		fmt.Fprintf(&b, "%d. 📱 *%s*\n", i+1, t.Phone)
		fmt.Fprintf(&b, "   👤 %s\n", t.Name)
		fmt.Fprintf(&b, "   🏙️ %s | 📺 %s\n", t.City, t.Device)
		fmt.Fprintf(&b, "   📅 %s\n\n", t.CreatedAt.Format(shortStamp))
	}
	return b.String()
}

func pendingPlansText(subs []models.Subscription) string {
	var b strings.Builder
	b.WriteString("💎 *Planos Pendentes*\n\n")
	if len(subs) == 0 {
		b.WriteString("✅ Nenhum plano pendente!")
		return b.String()
	}
	for i, s := range subs {
		fmt.Fprintf(&b, "%d. 📱 *%s*\n", i+1, s.Phone)
		fmt.Fprintf(&b, "   📦 %s - R$ %.2f\n", s.Plan, s.Price)
		fmt.Fprintf(&b, "   📅 %s\n\n", s.CreatedAt.Format(shortStamp))
	}
	return b.String()
}

func pendingRenewalsText(renewals []models.Renewal) string {
	var b strings.Builder
	b.WriteString("🔄 *Renovações Pendentes*\n\n")
	if len(renewals) == 0 {
		b.WriteString("✅ Nenhuma renovação pendente!")
		return b.String()
	}
	for i, r := range renewals {
		fmt.Fprintf(&b, "%d. 📱 *%s*\n", i+1, r.Phone)
		fmt.Fprintf(&b, "   👤 Login: %s\n", r.CurrentLogin)
		fmt.Fprintf(&b, "   📦 %s - R$ %.2f\n", r.Plan, r.Price)
		if r.PaymentProof.Valid && r.PaymentProof.String != "" {
			b.WriteString("   💳 Comprovante enviado\n")
		}
		fmt.Fprintf(&b, "   📅 %s\n\n", r.CreatedAt.Format(shortStamp))
	}
	return b.String()
}

func supportText(tickets []models.SupportRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🛠️ *SUPORTE TÉCNICO*\n\n📊 *Chamados abertos:* %d\n", len(tickets))
	if len(tickets) == 0 {
		b.WriteString("\n✅ *Nenhum chamado de suporte aberto!*")
		return b.String()
	}
	b.WriteString("\n🎫 *CHAMADOS RECENTES:*\n")
	for i, t := range tickets {
		fmt.Fprintf(&b, "\n%d. 📱 %s", i+1, t.Phone)
		fmt.Fprintf(&b, "\n   ❓ %s", logger.SanitizeLimit(t.ProblemDescription, 80))
		fmt.Fprintf(&b, "\n   📅 %s\n", t.CreatedAt.Format(shortStamp))
	}
	return b.String()
}

func logsText(messages []models.MessageLog, now time.Time) string {
	var b strings.Builder
	b.WriteString("📋 *LOGS RECENTES (10 últimas mensagens)*\n\n")
	if len(messages) == 0 {
		b.WriteString("📭 Nenhuma mensagem registrada ainda.\n\n")
	}
	for i, m := range messages {
		icon := "📤"
		if m.MessageType == models.MessageReceived {
			icon = "📨"
		}
		fmt.Fprintf(&b, "%d. %s %s (%s)\n", i+1, icon, m.Phone, m.CreatedAt.Format(shortStamp))
		if m.Name.Valid && m.Name.String != "" {
			fmt.Fprintf(&b, "   👤 %s\n", m.Name.String)
		}
		fmt.Fprintf(&b, "   💬 %s\n\n", logger.SanitizeLimit(m.MessageContent, 50))
	}
	fmt.Fprintf(&b, "⏰ *Gerado em:* %s", now.Format(fullStamp))
	return b.String()
}

func newUserText(phone, name string, now time.Time) string {
	return fmt.Sprintf("👤 *Novo Usuário*\n\n📱 Telefone: %s\n👤 Nome: %s\n⏰ %s", phone, name, now.Format(fullStamp))
}

func testRequestText(phone, name, city, device string, testID int64, now time.Time) string {
	return fmt.Sprintf(`🎯 *Novo Teste Solicitado*

📱 *Telefone:* %s
👤 *Nome:* %s
🏙️ *Cidade:* %s
📺 *Dispositivo:* %s
⏰ *Solicitado:* %s

ID do Teste: `+"`%d`", phone, name, city, device, now.Format(fullStamp), testID)
}

func planPaymentText(phone, plan string, price float64, proof string, subID int64, now time.Time) string {
	return fmt.Sprintf(`💎 *Novo Plano com Pagamento*

📱 *Telefone:* %s
📦 *Plano:* %s
💰 *Valor:* R$ %.2f
⏰ *Solicitado:* %s

ID do Plano: `+"`%d`"+`
💳 *Comprovante:* %s`,
		phone, plan, price, now.Format(fullStamp), subID, logger.SanitizeLimit(proof, 100))
}

func renewalPaymentText(phone, login, plan string, price float64, proof string, renewalID int64, now time.Time) string {
	return fmt.Sprintf(`🔄 *Nova Renovação com Pagamento*

📱 *Telefone:* %s
👤 *Login Atual:* %s
📦 *Plano:* %s
💰 *Valor:* R$ %.2f
⏰ *Solicitado:* %s

ID da Renovação: `+"`%d`"+`
💳 *Comprovante:* %s`,
		phone, login, plan, price, now.Format(fullStamp), renewalID, logger.SanitizeLimit(proof, 100))
}

func supportRequestText(phone, problem string, now time.Time) string {
	return fmt.Sprintf("🛠️ *Suporte Solicitado*\n\n📱 Telefone: %s\n❓ Problema: %s\n⏰ %s", phone, problem, now.Format(fullStamp))
}

func humanRequestText(phone, message string, now time.Time) string {
	return fmt.Sprintf("👥 *Atendente Solicitado*\n\n📱 Telefone: %s\n💬 Mensagem: %s\n⏰ %s", phone, message, now.Format(fullStamp))
}
