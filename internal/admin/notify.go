package admin

import "context"

// The console doubles as the admin notifier for the conversation engine:
// each event becomes a pushed Telegram message, decision events carry
// inline approve/reject keyboards.

func (c *Console) NotifyNewUser(ctx context.Context, phone, name string) {
	c.sendToAdmin(ctx, newUserText(phone, name, c.now()), nil)
}

func (c *Console) NotifyTestRequest(ctx context.Context, phone, name, city, device string, testID int64) {
	c.sendToAdmin(ctx, testRequestText(phone, name, city, device, testID, c.now()), decisionMarkup("test", testID))
}

func (c *Console) NotifyPlanPayment(ctx context.Context, phone, plan string, price float64, proof string, subscriptionID int64) {
	c.sendToAdmin(ctx, planPaymentText(phone, plan, price, proof, subscriptionID, c.now()), decisionMarkup("plan", subscriptionID))
}

func (c *Console) NotifyRenewalPayment(ctx context.Context, phone, login, plan string, price float64, proof string, renewalID int64) {
	c.sendToAdmin(ctx, renewalPaymentText(phone, login, plan, price, proof, renewalID, c.now()), decisionMarkup("renewal", renewalID))
}

func (c *Console) NotifySupportRequest(ctx context.Context, phone, problem string) {
	c.sendToAdmin(ctx, supportRequestText(phone, problem, c.now()), nil)
}

func (c *Console) NotifyHumanRequest(ctx context.Context, phone, message string) {
	c.sendToAdmin(ctx, humanRequestText(phone, message, c.now()), nil)
}
