package bot

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/iptvbot/internal/models"
	"github.com/m3rciful/iptvbot/internal/session"
	"github.com/m3rciful/iptvbot/internal/storage"
)

type freeTestRow struct {
	id                 int64
	name, city, device string
}

type subscriptionRow struct {
	id    int64
	plan  string
	price float64
}

type renewalRow struct {
	id          int64
	login, plan string
	price       float64
	proof       string
}

type proofRow struct {
	requestType string
	requestID   int64
	proof       string
}

type fakeStore struct {
	users    map[string]*models.User
	nextID   int64
	tests    []freeTestRow
	subs     []subscriptionRow
	renewals []renewalRow
	proofs   []proofRow
	support  []string
	logged   []models.Message
	settings map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: make(map[string]*models.User),
		settings: map[string]string{
			storage.SettingPixKey:          "pix@exemplo.com",
			storage.SettingPixName:         "IPTV Premium",
			storage.SettingServerURL:       "http://tv.exemplo.com:8080",
			storage.SettingTestDuration:    "6",
			storage.SettingMonthlyPrice:    "45.00",
			storage.SettingQuarterlyPrice:  "120.00",
			storage.SettingSemiannualPrice: "210.00",
			storage.SettingAnnualPrice:     "420.00",
		},
	}
}

func (f *fakeStore) FindUserByPhone(_ context.Context, phone string) (*models.User, error) {
	u, ok := f.users[phone]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) CreateUser(_ context.Context, phone string) (*models.User, error) {
	f.nextID++
	u := &models.User{ID: f.nextID, Phone: phone, CurrentState: models.StateMainMenu}
	f.users[phone] = u
	cp := *u
	return &cp, nil
}

func (f *fakeStore) UpdateUserState(_ context.Context, phone, state string) error {
	u, ok := f.users[phone]
	if !ok {
		return storage.ErrNotFound
	}
	u.CurrentState = state
	return nil
}

func (f *fakeStore) UpdateUserProfile(_ context.Context, phone string, name, city, device *string) error {
	u, ok := f.users[phone]
	if !ok {
		return storage.ErrNotFound
	}
	if name != nil {
		u.Name = sql.NullString{String: *name, Valid: true}
	}
	if city != nil {
		u.City = sql.NullString{String: *city, Valid: true}
	}
	if device != nil {
		u.Device = sql.NullString{String: *device, Valid: true}
	}
	return nil
}

func (f *fakeStore) TouchInteraction(_ context.Context, phone string) error {
	u, ok := f.users[phone]
	if !ok {
		return storage.ErrNotFound
	}
	u.MessageCount++
	return nil
}

func (f *fakeStore) CreateFreeTest(_ context.Context, _ int64, name, city, device string) (int64, error) {
	f.nextID++
	f.tests = append(f.tests, freeTestRow{id: f.nextID, name: name, city: city, device: device})
	return f.nextID, nil
}

func (f *fakeStore) CreateSubscription(_ context.Context, _ int64, plan string, price float64) (int64, error) {
	f.nextID++
	f.subs = append(f.subs, subscriptionRow{id: f.nextID, plan: plan, price: price})
	return f.nextID, nil
}

func (f *fakeStore) CreateRenewal(_ context.Context, _ int64, login, plan string, price float64, proof string) (int64, error) {
	f.nextID++
	f.renewals = append(f.renewals, renewalRow{id: f.nextID, login: login, plan: plan, price: price, proof: proof})
	return f.nextID, nil
}

func (f *fakeStore) CreatePaymentProof(_ context.Context, _, requestType string, requestID int64, proof string) error {
	f.proofs = append(f.proofs, proofRow{requestType: requestType, requestID: requestID, proof: proof})
	return nil
}

func (f *fakeStore) CreateSupportRequest(_ context.Context, _ int64, problem string) (int64, error) {
	f.nextID++
	f.support = append(f.support, problem)
	return f.nextID, nil
}

func (f *fakeStore) LogMessage(_ context.Context, userID int64, content, msgType string) error {
	f.logged = append(f.logged, models.Message{UserID: userID, MessageContent: content, MessageType: msgType})
	return nil
}

func (f *fakeStore) Settings(context.Context) (map[string]string, error) {
	return f.settings, nil
}

type fakeSender struct {
	sent []string
}

func (f *fakeSender) SendText(_ context.Context, _, text string) error {
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeSender) last() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}

type adminCall struct {
	kind string
	args []any
}

type fakeAdmin struct {
	calls []adminCall
}

func (f *fakeAdmin) NotifyNewUser(_ context.Context, phone, name string) {
	f.calls = append(f.calls, adminCall{"new_user", []any{phone, name}})
}

func (f *fakeAdmin) NotifyTestRequest(_ context.Context, phone, name, city, device string, id int64) {
	f.calls = append(f.calls, adminCall{"test_request", []any{phone, name, city, device, id}})
}

func (f *fakeAdmin) NotifyPlanPayment(_ context.Context, phone, plan string, price float64, proof string, id int64) {
	f.calls = append(f.calls, adminCall{"plan_payment", []any{phone, plan, price, proof, id}})
}

func (f *fakeAdmin) NotifyRenewalPayment(_ context.Context, phone, login, plan string, price float64, proof string, id int64) {
	f.calls = append(f.calls, adminCall{"renewal_payment", []any{phone, login, plan, price, proof, id}})
}

func (f *fakeAdmin) NotifySupportRequest(_ context.Context, phone, problem string) {
	f.calls = append(f.calls, adminCall{"support_request", []any{phone, problem}})
}

func (f *fakeAdmin) NotifyHumanRequest(_ context.Context, phone, message string) {
	f.calls = append(f.calls, adminCall{"human_request", []any{phone, message}})
}

func (f *fakeAdmin) kinds() []string {
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.kind
	}
	return out
}

const phone = "5511999999999"

func newTestBot(t *testing.T) (*Bot, *fakeStore, *fakeSender, *fakeAdmin) {
	t.Helper()
	store := newFakeStore()
	sender := &fakeSender{}
	admin := &fakeAdmin{}
	b := New(store, session.NewManager(session.Options{}), sender, admin)
	return b, store, sender, admin
}

func send(t *testing.T, b *Bot, text string) {
	t.Helper()
	require.NoError(t, b.HandleIncomingMessage(context.Background(), phone, text))
}

func TestFirstContactSendsWelcome(t *testing.T) {
	b, store, sender, admin := newTestBot(t)

	send(t, b, "oi")

	assert.Contains(t, sender.last(), "MENU PRINCIPAL")
	assert.Equal(t, models.StateMainMenu, store.users[phone].CurrentState)
	assert.Equal(t, 1, store.users[phone].MessageCount)
	assert.Equal(t, []string{"new_user"}, admin.kinds())

	// inbound and outbound both logged
	require.Len(t, store.logged, 2)
	assert.Equal(t, models.MessageReceived, store.logged[0].MessageType)
	assert.Equal(t, models.MessageSent, store.logged[1].MessageType)
}

func TestPhoneLocksEvictedAfterHandling(t *testing.T) {
	b, _, _, _ := newTestBot(t)

	send(t, b, "oi")
	send(t, b, "1")

	other := "5521988887777"
	require.NoError(t, b.HandleIncomingMessage(context.Background(), other, "oi"))

	// the lock map only tracks in-flight messages, so it must be empty
	// between messages no matter how many phones have been seen
	b.mu.Lock()
	defer b.mu.Unlock()
	assert.Empty(t, b.locks)
}

func TestFreeTestFlow(t *testing.T) {
	b, store, sender, admin := newTestBot(t)

	send(t, b, "oi")
	send(t, b, "1")
	assert.Contains(t, sender.last(), "TESTE GRÁTIS")
	assert.Equal(t, models.StateTestName, store.users[phone].CurrentState)

	send(t, b, "Maria Silva")
	assert.Contains(t, sender.last(), "Maria Silva")
	assert.Equal(t, models.StateTestCity, store.users[phone].CurrentState)

	send(t, b, "Campinas")
	assert.Contains(t, sender.last(), "Qual dispositivo")
	assert.Equal(t, models.StateTestDevice, store.users[phone].CurrentState)

	send(t, b, "3")
	assert.Contains(t, sender.last(), "SOLICITAÇÃO DE TESTE ENVIADA")
	assert.Equal(t, models.StateMainMenu, store.users[phone].CurrentState)

	require.Len(t, store.tests, 1)
	assert.Equal(t, "Maria Silva", store.tests[0].name)
	assert.Equal(t, "Campinas", store.tests[0].city)
	assert.Equal(t, "Smart TV", store.tests[0].device)
	assert.Equal(t, "Smart TV", store.users[phone].Device.String)
	assert.Contains(t, admin.kinds(), "test_request")
}

func TestTooShortAnswersStayInState(t *testing.T) {
	b, store, sender, _ := newTestBot(t)

	send(t, b, "oi")
	send(t, b, "1")
	send(t, b, "M")
	assert.Contains(t, sender.last(), "Nome muito curto")
	assert.Equal(t, models.StateTestName, store.users[phone].CurrentState)

	send(t, b, "Maria")
	send(t, b, "S")
	assert.Contains(t, sender.last(), "Cidade muito curta")
	assert.Equal(t, models.StateTestCity, store.users[phone].CurrentState)
}

func TestTooShortRenewalLoginStaysInState(t *testing.T) {
	b, store, sender, _ := newTestBot(t)

	send(t, b, "oi")
	send(t, b, "3")
	require.Equal(t, models.StateRenewalLogin, store.users[phone].CurrentState)

	for _, login := range []string{"", "a", "ab"} {
		send(t, b, login)
		assert.Contains(t, sender.last(), "Login muito curto", "login %q", login)
		assert.Equal(t, models.StateRenewalLogin, store.users[phone].CurrentState)
	}
}

func TestPlanPurchaseFlow(t *testing.T) {
	b, store, sender, admin := newTestBot(t)

	send(t, b, "oi")
	send(t, b, "2")
	assert.Contains(t, sender.last(), "NOSSOS PLANOS")
	assert.Equal(t, models.StatePlanChoice, store.users[phone].CurrentState)

	send(t, b, "2")
	last := sender.last()
	assert.Contains(t, last, "PLANO TRIMESTRAL SELECIONADO")
	assert.Contains(t, last, "R$ 114.00")
	assert.Contains(t, last, "pix@exemplo.com")
	assert.Equal(t, models.StatePlanProof, store.users[phone].CurrentState)

	send(t, b, "[Imagem]")
	assert.Contains(t, sender.last(), "COMPROVANTE RECEBIDO")
	assert.Equal(t, models.StateMainMenu, store.users[phone].CurrentState)

	require.Len(t, store.subs, 1)
	assert.Equal(t, "Trimestral", store.subs[0].plan)
	assert.Equal(t, 120.00, store.subs[0].price)
	require.Len(t, store.proofs, 1)
	assert.Equal(t, models.RequestTypeSubscription, store.proofs[0].requestType)
	assert.Equal(t, store.subs[0].id, store.proofs[0].requestID)
	assert.Equal(t, "[Imagem]", store.proofs[0].proof)
	assert.Contains(t, admin.kinds(), "plan_payment")
}

func TestPlanProofWithoutSessionRestartsChoice(t *testing.T) {
	b, store, sender, _ := newTestBot(t)

	send(t, b, "oi")
	send(t, b, "2")
	send(t, b, "1")
	// scratch data swept between messages
	b.sessions.Clear(phone)

	send(t, b, "[Imagem]")
	assert.Contains(t, sender.last(), "NOSSOS PLANOS")
	assert.Equal(t, models.StatePlanChoice, store.users[phone].CurrentState)
	assert.Empty(t, store.subs)
}

func TestRenewalFlow(t *testing.T) {
	b, store, sender, admin := newTestBot(t)

	send(t, b, "oi")
	send(t, b, "3")
	assert.Contains(t, sender.last(), "RENOVAÇÃO DE ASSINATURA")

	send(t, b, "usuario123")
	assert.Contains(t, sender.last(), "usuario123")
	assert.Equal(t, models.StateRenewalPlan, store.users[phone].CurrentState)

	send(t, b, "4")
	assert.Contains(t, sender.last(), "R$ 399.00")
	assert.Equal(t, models.StateRenewalProof, store.users[phone].CurrentState)

	send(t, b, "segue o comprovante")
	assert.Contains(t, sender.last(), "RENOVAÇÃO SOLICITADA")
	assert.Equal(t, models.StateMainMenu, store.users[phone].CurrentState)

	require.Len(t, store.renewals, 1)
	assert.Equal(t, "usuario123", store.renewals[0].login)
	assert.Equal(t, "Anual", store.renewals[0].plan)
	assert.Equal(t, 420.00, store.renewals[0].price)
	assert.Equal(t, "segue o comprovante", store.renewals[0].proof)
	assert.Contains(t, admin.kinds(), "renewal_payment")
}

func TestSupportFlow(t *testing.T) {
	b, store, sender, admin := newTestBot(t)

	send(t, b, "oi")
	send(t, b, "4")
	assert.Contains(t, sender.last(), "SUPORTE TÉCNICO")

	send(t, b, "o app trava toda hora")
	assert.Contains(t, sender.last(), "PROBLEMA REGISTRADO")
	assert.Equal(t, models.StateMainMenu, store.users[phone].CurrentState)
	require.Len(t, store.support, 1)
	assert.Equal(t, "o app trava toda hora", store.support[0])
	assert.Contains(t, admin.kinds(), "support_request")
}

func TestSupportEscalatesToAttendant(t *testing.T) {
	b, store, sender, admin := newTestBot(t)

	send(t, b, "oi")
	send(t, b, "4")
	send(t, b, "quero falar com atendente")
	assert.Contains(t, sender.last(), "ATENDIMENTO HUMANO")
	assert.Equal(t, models.StateAwaitingAttendant, store.users[phone].CurrentState)
	assert.Contains(t, admin.kinds(), "human_request")

	// further messages stay queued with the attendant
	send(t, b, "ainda com problema")
	assert.Contains(t, sender.last(), "FILA DE ATENDIMENTO")
	assert.Equal(t, models.StateAwaitingAttendant, store.users[phone].CurrentState)
}

func TestMenuResetsMidFlow(t *testing.T) {
	b, store, sender, _ := newTestBot(t)

	send(t, b, "oi")
	send(t, b, "1")
	send(t, b, "menu")
	assert.Contains(t, sender.last(), "MENU PRINCIPAL")
	assert.Equal(t, models.StateMainMenu, store.users[phone].CurrentState)
	_, ok := b.sessions.Get(phone)
	assert.False(t, ok, "scratch data must be dropped on reset")
}

func TestUnknownOptionRepeatsMenu(t *testing.T) {
	b, store, sender, _ := newTestBot(t)

	send(t, b, "oi")
	send(t, b, "xyz")
	assert.Contains(t, sender.last(), "Opção não reconhecida")
	assert.Equal(t, models.StateMainMenu, store.users[phone].CurrentState)
}

func TestApprovalNotifications(t *testing.T) {
	b, store, sender, _ := newTestBot(t)
	send(t, b, "oi")

	expires := mustParse(t, "15/06/2025 18:30")
	require.NoError(t, b.NotifyTestApproved(context.Background(), phone, "teste123", "abc456", expires))
	last := sender.last()
	assert.Contains(t, last, "TESTE APROVADO")
	assert.Contains(t, last, "teste123")
	assert.Contains(t, last, "15/06/2025 18:30")
	assert.Contains(t, last, store.settings[storage.SettingServerURL])

	require.NoError(t, b.NotifyPlanApproved(context.Background(), phone, "user1", "pass1", "Mensal", expires))
	assert.Contains(t, sender.last(), "PLANO APROVADO")

	require.NoError(t, b.NotifyRenewalApproved(context.Background(), phone, "user1", "Anual", expires))
	assert.Contains(t, sender.last(), "RENOVAÇÃO APROVADA")

	require.NoError(t, b.NotifyTestRejected(context.Background(), phone))
	assert.Contains(t, sender.last(), "TESTE RECUSADO")
}

func TestMainMenuRouteTable(t *testing.T) {
	cases := []struct {
		input string
		state string
	}{
		{"0", models.StateMainMenu},
		{"menu", models.StateMainMenu},
		{"voltar", models.StateMainMenu},
		{"1", models.StateTestName},
		{"quero um teste", models.StateTestName},
		{"2", models.StatePlanChoice},
		{"ver planos", models.StatePlanChoice},
		{"3", models.StateRenewalLogin},
		{"renovar minha conta", models.StateRenewalLogin},
		{"4", models.StateSupportProblem},
		{"suporte", models.StateSupportProblem},
		{"5", models.StateAwaitingAttendant},
		{"atendente", models.StateAwaitingAttendant},
		{"abc", models.StateMainMenu},
		{"6", models.StateMainMenu},
	}

	for _, tc := range cases {
		b, store, _, _ := newTestBot(t)
		send(t, b, "oi")

		send(t, b, tc.input)
		assert.Equal(t, tc.state, store.users[phone].CurrentState, "input %q", tc.input)
	}
}

func mustParse(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("02/01/2006 15:04", value)
	require.NoError(t, err)
	return parsed
}
