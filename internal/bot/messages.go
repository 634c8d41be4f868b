package bot

import (
	"fmt"
	"strings"

	"github.com/m3rciful/iptvbot/internal/plans"
	"github.com/m3rciful/iptvbot/internal/storage"
)

const internalErrorMessage = "❌ Erro interno. Tente novamente ou digite MENU."

const recommendedApps = `• 📱 Android: IPTV Smarters Pro
• 🍎 iPhone: GSE Smart IPTV
• 📺 Smart TV: Smart IPTV
• 💻 PC: VLC Player`

func welcomeMessage() string {
	return `📺 *IPTV PREMIUM* - Bem-vindo! 📺

🏆 *Mais de 2000 canais em HD/4K*
⚡ *Melhor qualidade do Brasil*
💰 *Preços imbatíveis*

📋 *MENU PRINCIPAL:*
1️⃣ 🎯 Teste Grátis (6h)
2️⃣ 💎 Ver Planos e Preços
3️⃣ 🔄 Renovar Assinatura
4️⃣ 🛠️ Suporte Técnico
5️⃣ 👥 Falar com Atendente

👆 *Digite o número da opção desejada!*`
}

func testIntroMessage() string {
	return "🎯 *TESTE GRÁTIS - 6 HORAS*\n\n🆓 *Totalmente gratuito e sem compromisso!*\n\n📋 Para liberar seu teste, preciso de alguns dados:\n\n👤 Digite seu *nome completo*:\n\n_Digite MENU a qualquer momento para voltar_"
}

func devicePromptMessage(city string) string {
	return fmt.Sprintf("✅ Cidade registrada: *%s*\n\n📱 Qual dispositivo você vai usar?\n\n1️⃣ Celular Android\n2️⃣ Celular iPhone\n3️⃣ Smart TV Samsung/LG\n4️⃣ TV Box Android\n5️⃣ Computador/Notebook\n6️⃣ Outro\n\nDigite o número ou nome:\n\n_Digite MENU para voltar_", city)
}

func testRequestedMessage(name, city, device string) string {
	return fmt.Sprintf(`🎯 *SOLICITAÇÃO DE TESTE ENVIADA!*

👤 *Nome:* %s
📍 *Cidade:* %s
📱 *Dispositivo:* %s

⏳ *Aguarde a aprovação*
Sua solicitação foi enviada para nossa equipe. Você receberá as credenciais de acesso em até 10 minutos.

📲 *Enquanto isso, baixe o aplicativo:*
%s

🏠 Digite *MENU* para voltar ao início`, name, city, device, recommendedApps)
}

func plansMessage(settings map[string]string) string {
	catalog := plans.Catalog(settings)
	monthly, quarterly, semiannual, annual := catalog[0], catalog[1], catalog[2], catalog[3]

	return fmt.Sprintf(`💎 *NOSSOS PLANOS IPTV* 📺

🎯 *TODOS OS PLANOS INCLUEM:*
📺 2000+ canais HD/4K/8K
📱 5 dispositivos simultâneos
🌍 Canais nacionais e internacionais
🎬 Filmes, séries e documentários
⚽ Esportes Premium + PPV
👨‍💻 Suporte técnico 24h
📶 Instalação rápida
🚫 Sem travamentos

💰 *ESCOLHA SEU PERÍODO:*

📅 *MENSAL* - R$ %s
💳 Renovação mensal
🔄 Cancelamento livre

📊 *TRIMESTRAL* - R$ %s ⭐ *POPULAR*
📉 Economia de R$ %s

📈 *SEMESTRAL* - R$ %s 💎 *ECONÔMICO*
📉 Economia de R$ %s

🏆 *ANUAL* - R$ %s 🔥 *MELHOR CUSTO*
📉 Economia de R$ %s

💳 *FORMAS DE PAGAMENTO:*
🔥 PIX (5%% desconto adicional)
💳 Cartão/Boleto

Para contratar, digite: *1*, *2*, *3* ou *4*
🏠 Digite *MENU* para voltar`,
		plans.FormatPrice(monthly.Price),
		plans.FormatPrice(quarterly.Price),
		plans.FormatPrice(monthly.Price*3-quarterly.Price),
		plans.FormatPrice(semiannual.Price),
		plans.FormatPrice(monthly.Price*6-semiannual.Price),
		plans.FormatPrice(annual.Price),
		plans.FormatPrice(monthly.Price*12-annual.Price),
	)
}

func planNotRecognizedMessage(settings map[string]string) string {
	catalog := plans.Catalog(settings)
	return fmt.Sprintf("❌ Plano não reconhecido.\n\nDigite:\n• *1* para Mensal (R$ %s)\n• *2* para Trimestral (R$ %s)\n• *3* para Semestral (R$ %s)\n• *4* para Anual (R$ %s)\n\nOu *MENU* para voltar",
		plans.FormatPrice(catalog[0].Price),
		plans.FormatPrice(catalog[1].Price),
		plans.FormatPrice(catalog[2].Price),
		plans.FormatPrice(catalog[3].Price),
	)
}

func pixName(settings map[string]string) string {
	if name := strings.TrimSpace(settings[storage.SettingPixName]); name != "" {
		return name
	}
	return "IPTV Premium"
}

func planPaymentMessage(plan plans.Plan, settings map[string]string) string {
	discount := plans.FormatPrice(plans.PixDiscount(plan.Price))

	return fmt.Sprintf(`💎 *PLANO %s SELECIONADO!*

📦 *DETALHES DO PLANO:*
📅 Duração: %s
📺 2000+ canais HD/4K/8K
📱 5 dispositivos simultâneos
🌍 Conteúdo nacional + internacional
🎬 Filmes, séries e documentários
⚽ Esportes Premium + PPV

💰 *VALORES:*
💳 Cartão/Boleto: R$ %s
🔥 PIX (5%% OFF): R$ %s

💳 *DADOS PARA PAGAMENTO PIX:*
🔑 *Chave PIX:* %s
👤 *Nome:* %s
💰 *Valor com desconto:* R$ %s

📋 *COMO PROCEDER:*
1️⃣ Faça o PIX no valor com desconto
2️⃣ **ENVIE O COMPROVANTE AQUI NO CHAT**
3️⃣ Aguarde aprovação (até 30 minutos)
4️⃣ Receba login e senha automaticamente

⚡ **IMPORTANTE:** Envie uma foto ou print do comprovante na próxima mensagem!

🏠 Digite *MENU* para cancelar`,
		strings.ToUpper(plan.Label),
		plans.DurationLabel(plan.Key),
		plans.FormatPrice(plan.Price),
		discount,
		settings[storage.SettingPixKey],
		pixName(settings),
		discount,
	)
}

func planProofReceivedMessage(planLabel string, price float64) string {
	return fmt.Sprintf(`✅ *COMPROVANTE RECEBIDO!*

📦 *Plano:* %s (%s)
💰 *Valor:* R$ %s

⏳ *Status:* Aguardando aprovação
📋 *Comprovante:* Registrado com sucesso

🔄 *Próximos passos:*
1️⃣ Nossa equipe analisará seu pagamento
2️⃣ Você receberá login e senha em até 30 minutos
3️⃣ Comece a assistir imediatamente!

📱 *Importante:* Mantenha este número ativo para receber suas credenciais.

🏠 Digite *MENU* para voltar ao início`,
		planLabel, plans.DurationLabel(planLabel), plans.FormatPrice(price))
}

func renewalIntroMessage() string {
	return `🔄 *RENOVAÇÃO DE ASSINATURA*

Para renovar sua assinatura existente, preciso do seu login atual.

👤 Digite seu *login/usuário*:

_Digite MENU para voltar ao início_`
}

func renewalPlanPromptMessage(login string, settings map[string]string) string {
	catalog := plans.Catalog(settings)
	return fmt.Sprintf("✅ Login registrado: *%s*\n\n💎 Qual período deseja renovar?\n\n1️⃣ Mensal - R$ %s\n2️⃣ Trimestral - R$ %s\n3️⃣ Semestral - R$ %s\n4️⃣ Anual - R$ %s\n\nDigite o número:\n\n_Digite MENU para voltar_",
		login,
		plans.FormatPrice(catalog[0].Price),
		plans.FormatPrice(catalog[1].Price),
		plans.FormatPrice(catalog[2].Price),
		plans.FormatPrice(catalog[3].Price),
	)
}

func renewalPaymentMessage(plan plans.Plan, settings map[string]string) string {
	discount := plans.FormatPrice(plans.PixDiscount(plan.Price))

	return fmt.Sprintf(`🔄 *DADOS PARA RENOVAÇÃO*

📅 *Plano:* %s (%s)
💰 *Valor com PIX:* R$ %s

💳 *DADOS PARA PAGAMENTO PIX:*
🔑 *Chave PIX:* %s
👤 *Nome:* %s
💰 *Valor:* R$ %s

📋 *PRÓXIMOS PASSOS:*
1️⃣ Faça o PIX no valor acima
2️⃣ **ENVIE O COMPROVANTE AQUI NO CHAT**
3️⃣ Aguarde aprovação (até 30 minutos)
4️⃣ Sua conta será renovada automaticamente

⚡ **IMPORTANTE:** Envie uma foto ou print do comprovante na próxima mensagem!

🏠 Digite *MENU* para cancelar`,
		plan.Label,
		plans.DurationLabel(plan.Key),
		discount,
		settings[storage.SettingPixKey],
		pixName(settings),
		discount,
	)
}

func renewalRequestedMessage(login, planLabel string, price float64) string {
	return fmt.Sprintf(`✅ *RENOVAÇÃO SOLICITADA!*

👤 *Login atual:* %s
📅 *Novo plano:* %s (%s)
💰 *Valor:* R$ %s

⏳ *Status:* Aguardando aprovação
📋 *Comprovante:* Registrado com sucesso

🔄 *Próximos passos:*
1️⃣ Nossa equipe analisará seu pagamento
2️⃣ Sua conta será renovada em até 30 minutos
3️⃣ Continue assistindo sem interrupção!

📱 *Importante:* Você será notificado quando a renovação for aprovada.

🏠 Digite *MENU* para voltar ao início`,
		login, planLabel, plans.DurationLabel(planLabel), plans.FormatPrice(price))
}

func supportIntroMessage() string {
	return `🛠️ *SUPORTE TÉCNICO IPTV*

🔍 *PROBLEMAS MAIS COMUNS:*

📱 *Travando/Lento:*
• Verifique internet (mín 10MB)
• Feche outros apps
• Reinicie o aplicativo

📺 *Não conecta:*
• Confira login e senha
• Teste outro servidor
• Reinstale o app

💬 *DESCREVA SEU PROBLEMA:*
Digite detalhes do que está acontecendo...

🚨 Ou digite *ATENDENTE* para suporte humano
🏠 Digite *MENU* para voltar`
}

func supportRegisteredMessage(problem string) string {
	return fmt.Sprintf("🛠️ *PROBLEMA REGISTRADO!*\n\nSua solicitação foi registrada:\n\"%s\"\n\n👨‍💻 Nossa equipe técnica analisará seu caso e retornará em breve.\n\n📱 Para urgências, digite *5* para falar com atendente.\n\n🏠 Digite *MENU* para voltar", problem)
}

func attendantIntroMessage() string {
	return `👥 *ATENDIMENTO HUMANO*

🔄 Você será transferido para nosso suporte especializado.

⏰ *HORÁRIOS DE ATENDIMENTO:*
🕐 Segunda à Sexta: 8h às 18h
🕐 Sábado: 8h às 12h
🕐 Domingo: Emergências apenas

👨‍💻 *STATUS:* Aguardando atendente...
⏱️ *Tempo médio:* 5-10 minutos

💬 *ENVIE SUA DÚVIDA:*
Descreva seu problema que nosso atendente responderá em breve.

🏠 Digite *MENU* para voltar ao início`
}

func queuedMessage(text string) string {
	return fmt.Sprintf("⏳ *VOCÊ ESTÁ NA FILA DE ATENDIMENTO*\n\nSua mensagem foi registrada:\n\"%s\"\n\n🕐 Tempo médio de espera: 5-10 minutos\n👨‍💻 Um atendente entrará em contato em breve\n\n🏠 Digite *MENU* para voltar ao início", text)
}
