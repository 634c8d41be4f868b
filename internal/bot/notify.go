package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/m3rciful/iptvbot/core/logger"
	"github.com/m3rciful/iptvbot/internal/models"
	"github.com/m3rciful/iptvbot/internal/plans"
	"github.com/m3rciful/iptvbot/internal/storage"
)

// SendMessage delivers an out-of-band message to a phone and logs it against
// the user's history when the user is known.
func (b *Bot) SendMessage(ctx context.Context, phone, text string) error {
	ctx = logger.WithPhone(ctx, phone)
	if err := b.sender.SendText(ctx, phone, text); err != nil {
		return fmt.Errorf("bot: send: %w", err)
	}
	if user, err := b.store.FindUserByPhone(ctx, phone); err == nil {
		if lerr := b.store.LogMessage(ctx, user.ID, text, models.MessageSent); lerr != nil {
			logger.Warn(ctx, "bot", "log_message_failed", logger.Err(lerr))
		}
	}
	return nil
}

// NotifyTestApproved delivers trial credentials after admin approval.
func (b *Bot) NotifyTestApproved(ctx context.Context, phone, login, password string, expiresAt time.Time) error {
	settings, err := b.store.Settings(ctx)
	if err != nil {
		return err
	}

	text := fmt.Sprintf(`🎉 *TESTE APROVADO E LIBERADO!* 🎉

📡 *SEUS DADOS DE ACESSO:*
🌐 *URL:* %s
👤 *Usuário:* %s
🔐 *Senha:* %s
⏰ *Válido até:* %s

📲 *APPS RECOMENDADOS:*
%s

📋 *COMO USAR:*
1️⃣ Baixe o app recomendado
2️⃣ Adicione nova conexão/playlist
3️⃣ Cole os dados acima
4️⃣ Aproveite seu teste!

✨ *Gostou?* Digite *2* para ver nossos planos!
🏠 Digite *MENU* para voltar ao início`,
		settings[storage.SettingServerURL], login, password,
		plans.FormatExpiry(expiresAt), recommendedApps)

	return b.SendMessage(ctx, phone, text)
}

// NotifyPlanApproved delivers subscription credentials after admin approval.
func (b *Bot) NotifyPlanApproved(ctx context.Context, phone, login, password, plan string, expiresAt time.Time) error {
	settings, err := b.store.Settings(ctx)
	if err != nil {
		return err
	}

	text := fmt.Sprintf(`🎉 *PLANO APROVADO E ATIVADO!* 🎉

📦 *PLANO:* %s
⏰ *Válido até:* %s

📡 *SEUS DADOS DE ACESSO:*
🌐 *URL:* %s
👤 *Usuário:* %s
🔐 *Senha:* %s

📺 *APROVEITE:*
✅ 2000+ canais HD/4K/8K
✅ 5 dispositivos simultâneos
✅ Filmes, séries e documentários
✅ Esportes Premium + PPV

📲 *BAIXE O APLICATIVO:*
%s

🎊 *PARABÉNS!* Sua assinatura está ativa!
🏠 Digite *MENU* se precisar de ajuda`,
		plan, plans.FormatExpiry(expiresAt),
		settings[storage.SettingServerURL], login, password, recommendedApps)

	return b.SendMessage(ctx, phone, text)
}

// NotifyRenewalApproved confirms a renewal after admin approval.
func (b *Bot) NotifyRenewalApproved(ctx context.Context, phone, login, plan string, expiresAt time.Time) error {
	text := fmt.Sprintf(`🔄 *RENOVAÇÃO APROVADA!* 🔄

👤 *Login:* %s
📅 *Plano:* %s
⏰ *Válida até:* %s

✅ *RENOVAÇÃO CONCLUÍDA COM SUCESSO!*

Sua conta foi renovada e permanece ativa sem interrupções.
Continue aproveitando todo o conteúdo IPTV Premium!

📺 Mais de 2000 canais disponíveis
🎬 Filmes, séries e documentários
⚽ Esportes Premium + PPV

🏠 Digite *MENU* se precisar de ajuda`,
		login, plan, plans.FormatExpiry(expiresAt))

	return b.SendMessage(ctx, phone, text)
}

// NotifyTestRejected tells the user the trial request was declined.
func (b *Bot) NotifyTestRejected(ctx context.Context, phone string) error {
	return b.SendMessage(ctx, phone, "❌ *TESTE RECUSADO*\n\nSua solicitação de teste foi recusada. Entre em contato com o suporte para mais informações.\n\n🏠 Digite *MENU* para outras opções.")
}

// NotifyPlanRejected tells the user the subscription payment was declined.
func (b *Bot) NotifyPlanRejected(ctx context.Context, phone string) error {
	return b.SendMessage(ctx, phone, "❌ *PLANO RECUSADO*\n\nSeu pagamento foi recusado. Verifique os dados e tente novamente ou entre em contato com o suporte.\n\n🏠 Digite *MENU* para outras opções.")
}

// NotifyRenewalRejected tells the user the renewal payment was declined.
func (b *Bot) NotifyRenewalRejected(ctx context.Context, phone string) error {
	return b.SendMessage(ctx, phone, "❌ *RENOVAÇÃO RECUSADA*\n\nSeu pagamento foi recusado. Verifique os dados e tente novamente ou entre em contato com o suporte.\n\n🏠 Digite *MENU* para outras opções.")
}
