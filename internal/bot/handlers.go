package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/m3rciful/iptvbot/internal/models"
	"github.com/m3rciful/iptvbot/internal/plans"
)

// dispatch routes the message to the handler for the user's current state.
// It returns the reply and the state the user ends up in.
func (b *Bot) dispatch(ctx context.Context, user *models.User, text string) (string, string, error) {
	switch user.CurrentState {
	case models.StateMainMenu:
		return b.handleMainMenu(ctx, user, text)
	case models.StateTestName:
		return b.handleTestName(ctx, user, text)
	case models.StateTestCity:
		return b.handleTestCity(ctx, user, text)
	case models.StateTestDevice:
		return b.handleTestDevice(ctx, user, text)
	case models.StatePlanChoice:
		return b.handlePlanChoice(ctx, user, text)
	case models.StatePlanProof:
		return b.handlePlanProof(ctx, user, text)
	case models.StateRenewalLogin:
		return b.handleRenewalLogin(ctx, user, text)
	case models.StateRenewalPlan:
		return b.handleRenewalPlan(ctx, user, text)
	case models.StateRenewalProof:
		return b.handleRenewalProof(ctx, user, text)
	case models.StateSupportProblem:
		return b.handleSupportProblem(ctx, user, text)
	case models.StateAwaitingAttendant:
		return b.handleWaitingAttendant(ctx, user, text)
	default:
		// Unknown state in the database, recover to the main menu.
		return welcomeMessage(), models.StateMainMenu, nil
	}
}

func normalized(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func wantsMenu(msg string) bool {
	return msg == "menu" || msg == "voltar"
}

// menuRoute pairs an input predicate with the action a main-menu option
// runs. Routes are matched in order, first hit wins.
type menuRoute struct {
	match  func(msg string) bool
	action func(ctx context.Context, b *Bot, user *models.User) (string, string, error)
}

func exact(tokens ...string) func(string) bool {
	return func(msg string) bool {
		for _, t := range tokens {
			if msg == t {
				return true
			}
		}
		return false
	}
}

func option(number, kw string) func(string) bool {
	return func(msg string) bool {
		return msg == number || strings.Contains(msg, kw)
	}
}

var mainMenuRoutes = []menuRoute{
	{exact("0", "menu", "voltar"), func(_ context.Context, _ *Bot, _ *models.User) (string, string, error) {
		return welcomeMessage(), models.StateMainMenu, nil
	}},
	{option("1", "teste"), func(_ context.Context, b *Bot, user *models.User) (string, string, error) {
		b.sessions.Begin(user.Phone)
		return testIntroMessage(), models.StateTestName, nil
	}},
	{option("2", "plano"), func(ctx context.Context, b *Bot, _ *models.User) (string, string, error) {
		settings, err := b.store.Settings(ctx)
		if err != nil {
			return "", "", err
		}
		return plansMessage(settings), models.StatePlanChoice, nil
	}},
	{option("3", "renovar"), func(_ context.Context, b *Bot, user *models.User) (string, string, error) {
		b.sessions.Begin(user.Phone)
		return renewalIntroMessage(), models.StateRenewalLogin, nil
	}},
	{option("4", "suporte"), func(_ context.Context, _ *Bot, _ *models.User) (string, string, error) {
		return supportIntroMessage(), models.StateSupportProblem, nil
	}},
	{option("5", "atendente"), func(ctx context.Context, b *Bot, user *models.User) (string, string, error) {
		b.admin.NotifyHumanRequest(ctx, user.Phone, "Usuário solicitou atendente")
		return attendantIntroMessage(), models.StateAwaitingAttendant, nil
	}},
}

func (b *Bot) handleMainMenu(ctx context.Context, user *models.User, text string) (string, string, error) {
	msg := normalized(text)
	for _, route := range mainMenuRoutes {
		if route.match(msg) {
			return route.action(ctx, b, user)
		}
	}
	return "❌ Opção não reconhecida.\n\n" + welcomeMessage(), models.StateMainMenu, nil
}

func (b *Bot) handleTestName(ctx context.Context, user *models.User, text string) (string, string, error) {
	msg := normalized(text)
	if wantsMenu(msg) {
		b.sessions.Clear(user.Phone)
		return welcomeMessage(), models.StateMainMenu, nil
	}

	name := strings.TrimSpace(text)
	if len([]rune(name)) < 2 {
		return "❌ Nome muito curto. Digite seu nome completo:", models.StateTestName, nil
	}

	b.sessions.Update(user.Phone, func(d *sessionData) { d.Name = name })
	if err := b.store.UpdateUserProfile(ctx, user.Phone, &name, nil, nil); err != nil {
		return "", "", err
	}

	reply := fmt.Sprintf("✅ Nome registrado: *%s*\n\n📍 Agora informe sua cidade:\n\n_Digite MENU para voltar_", name)
	return reply, models.StateTestCity, nil
}

func (b *Bot) handleTestCity(ctx context.Context, user *models.User, text string) (string, string, error) {
	msg := normalized(text)
	if wantsMenu(msg) {
		b.sessions.Clear(user.Phone)
		return welcomeMessage(), models.StateMainMenu, nil
	}

	city := strings.TrimSpace(text)
	if len([]rune(city)) < 2 {
		return "❌ Cidade muito curta. Digite sua cidade:", models.StateTestCity, nil
	}

	b.sessions.Update(user.Phone, func(d *sessionData) { d.City = city })
	if err := b.store.UpdateUserProfile(ctx, user.Phone, nil, &city, nil); err != nil {
		return "", "", err
	}

	return devicePromptMessage(city), models.StateTestDevice, nil
}

func (b *Bot) handleTestDevice(ctx context.Context, user *models.User, text string) (string, string, error) {
	msg := normalized(text)
	if wantsMenu(msg) {
		b.sessions.Clear(user.Phone)
		return welcomeMessage(), models.StateMainMenu, nil
	}

	device := plans.DeviceLabel(text)

	data, _ := b.sessions.Get(user.Phone)
	name := data.Name
	if name == "" {
		name = displayName(user)
	}
	city := data.City
	if city == "" {
		if user.City.Valid && user.City.String != "" {
			city = user.City.String
		} else {
			city = "Não informada"
		}
	}

	if err := b.store.UpdateUserProfile(ctx, user.Phone, nil, nil, &device); err != nil {
		return "", "", err
	}
	testID, err := b.store.CreateFreeTest(ctx, user.ID, name, city, device)
	if err != nil {
		return "", "", err
	}

	b.sessions.Clear(user.Phone)
	b.admin.NotifyTestRequest(ctx, user.Phone, name, city, device, testID)

	return testRequestedMessage(name, city, device), models.StateMainMenu, nil
}

func (b *Bot) handlePlanChoice(ctx context.Context, user *models.User, text string) (string, string, error) {
	msg := normalized(text)
	if strings.Contains(msg, "menu") || msg == "voltar" || msg == "0" {
		return welcomeMessage(), models.StateMainMenu, nil
	}

	settings, err := b.store.Settings(ctx)
	if err != nil {
		return "", "", err
	}

	plan, ok := plans.Resolve(text, settings)
	if !ok {
		return planNotRecognizedMessage(settings), models.StatePlanChoice, nil
	}

	b.sessions.Update(user.Phone, func(d *sessionData) {
		d.Plan = plan.Key
		d.PlanLabel = plan.Label
		d.Price = plan.Price
		d.Months = plan.Months
	})

	return planPaymentMessage(plan, settings), models.StatePlanProof, nil
}

func (b *Bot) handlePlanProof(ctx context.Context, user *models.User, text string) (string, string, error) {
	msg := normalized(text)
	if wantsMenu(msg) {
		b.sessions.Clear(user.Phone)
		return welcomeMessage(), models.StateMainMenu, nil
	}

	data, ok := b.sessions.Get(user.Phone)
	if !ok || data.PlanLabel == "" {
		// Scratch data expired mid-flow, restart the plan choice.
		settings, err := b.store.Settings(ctx)
		if err != nil {
			return "", "", err
		}
		return plansMessage(settings), models.StatePlanChoice, nil
	}

	subID, err := b.store.CreateSubscription(ctx, user.ID, data.PlanLabel, data.Price)
	if err != nil {
		return "", "", err
	}
	if err := b.store.CreatePaymentProof(ctx, user.Phone, models.RequestTypeSubscription, subID, text); err != nil {
		return "", "", err
	}

	b.sessions.Clear(user.Phone)
	b.admin.NotifyPlanPayment(ctx, user.Phone, data.PlanLabel, data.Price, text, subID)

	return planProofReceivedMessage(data.PlanLabel, data.Price), models.StateMainMenu, nil
}

func (b *Bot) handleRenewalLogin(ctx context.Context, user *models.User, text string) (string, string, error) {
	msg := normalized(text)
	if wantsMenu(msg) {
		b.sessions.Clear(user.Phone)
		return welcomeMessage(), models.StateMainMenu, nil
	}

	login := strings.TrimSpace(text)
	if len([]rune(login)) < 3 {
		return "❌ Login muito curto. Digite seu login atual:\n\n_Digite MENU para voltar_", models.StateRenewalLogin, nil
	}

	b.sessions.Update(user.Phone, func(d *sessionData) { d.CurrentLogin = login })

	settings, err := b.store.Settings(ctx)
	if err != nil {
		return "", "", err
	}
	return renewalPlanPromptMessage(login, settings), models.StateRenewalPlan, nil
}

func (b *Bot) handleRenewalPlan(ctx context.Context, user *models.User, text string) (string, string, error) {
	msg := normalized(text)
	if wantsMenu(msg) {
		b.sessions.Clear(user.Phone)
		return welcomeMessage(), models.StateMainMenu, nil
	}

	settings, err := b.store.Settings(ctx)
	if err != nil {
		return "", "", err
	}

	plan, ok := plans.Resolve(text, settings)
	if !ok {
		return "❌ Opção inválida. Digite:\n• *1* para Mensal\n• *2* para Trimestral\n• *3* para Semestral\n• *4* para Anual\n\nOu *MENU* para voltar", models.StateRenewalPlan, nil
	}

	b.sessions.Update(user.Phone, func(d *sessionData) {
		d.Plan = plan.Key
		d.PlanLabel = plan.Label
		d.Price = plan.Price
		d.Months = plan.Months
	})

	return renewalPaymentMessage(plan, settings), models.StateRenewalProof, nil
}

func (b *Bot) handleRenewalProof(ctx context.Context, user *models.User, text string) (string, string, error) {
	msg := normalized(text)
	if wantsMenu(msg) {
		b.sessions.Clear(user.Phone)
		return welcomeMessage(), models.StateMainMenu, nil
	}

	data, ok := b.sessions.Get(user.Phone)
	if !ok || data.CurrentLogin == "" || data.PlanLabel == "" {
		return renewalIntroMessage(), models.StateRenewalLogin, nil
	}

	renewalID, err := b.store.CreateRenewal(ctx, user.ID, data.CurrentLogin, data.PlanLabel, data.Price, text)
	if err != nil {
		return "", "", err
	}

	b.sessions.Clear(user.Phone)
	b.admin.NotifyRenewalPayment(ctx, user.Phone, data.CurrentLogin, data.PlanLabel, data.Price, text, renewalID)

	return renewalRequestedMessage(data.CurrentLogin, data.PlanLabel, data.Price), models.StateMainMenu, nil
}

func (b *Bot) handleSupportProblem(ctx context.Context, user *models.User, text string) (string, string, error) {
	msg := normalized(text)

	if strings.Contains(msg, "atendente") {
		b.admin.NotifyHumanRequest(ctx, user.Phone, text)
		return attendantIntroMessage(), models.StateAwaitingAttendant, nil
	}
	if wantsMenu(msg) {
		return welcomeMessage(), models.StateMainMenu, nil
	}

	if _, err := b.store.CreateSupportRequest(ctx, user.ID, text); err != nil {
		return "", "", err
	}
	b.admin.NotifySupportRequest(ctx, user.Phone, text)

	return supportRegisteredMessage(text), models.StateMainMenu, nil
}

func (b *Bot) handleWaitingAttendant(ctx context.Context, user *models.User, text string) (string, string, error) {
	msg := normalized(text)
	if wantsMenu(msg) {
		return welcomeMessage(), models.StateMainMenu, nil
	}

	b.admin.NotifyHumanRequest(ctx, user.Phone, text)
	return queuedMessage(text), models.StateAwaitingAttendant, nil
}
