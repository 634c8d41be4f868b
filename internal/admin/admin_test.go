package admin

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/iptvbot/internal/models"
)

func TestParseCallback(t *testing.T) {
	cases := []struct {
		data    string
		unique  string
		payload string
	}{
		{"\fdashboard", "dashboard", ""},
		{"\fapprove_test|42", "approve_test", "42"},
		{"\freject_renewal| 7 ", "reject_renewal", "7"},
		{"back_main", "back_main", ""},
	}
	for _, tc := range cases {
		unique, payload := parseCallback(tc.data)
		assert.Equal(t, tc.unique, unique, tc.data)
		assert.Equal(t, tc.payload, payload, tc.data)
	}
}

func TestDashboardTextAlertLine(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

	calm := dashboardText(&models.Stats{Users: 3, ActiveTests: 2, ActiveSubscriptions: 5}, now)
	assert.Contains(t, calm, "✅ *Tudo em dia!*")
	assert.Contains(t, calm, "✅ *Testes ativos:* 2")
	assert.Contains(t, calm, "📺 *Assinaturas ativas:* 5")
	assert.Contains(t, calm, "10/03/2025 14:30")

	busy := dashboardText(&models.Stats{Users: 3, PendingRenewals: 1}, now)
	assert.Contains(t, busy, "🚨 *Atenção:* Existem solicitações pendentes!")
}

func TestPendingTestsText(t *testing.T) {
	empty := pendingTestsText(nil)
	assert.Contains(t, empty, "Nenhum teste pendente")

	tests := []models.FreeTest{{
		ID:        9,
		Name:      "Maria",
		City:      "Recife",
		Device:    "Smart TV",
		CreatedAt: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		Phone:     "5581988887777",
	}}
	text := pendingTestsText(tests)
	assert.Contains(t, text, "1. 📱 *5581988887777*")
	assert.Contains(t, text, "Recife")
	assert.Contains(t, text, "Smart TV")
}

func TestPendingRenewalsTextShowsProofMarker(t *testing.T) {
	renewal := models.Renewal{
		ID:           3,
		CurrentLogin: "cliente01",
		Plan:         "Anual",
		Price:        399,
		Phone:        "5511999998888",
		CreatedAt:    time.Now(),
	}

	without := pendingRenewalsText([]models.Renewal{renewal})
	assert.NotContains(t, without, "Comprovante enviado")

	renewal.PaymentProof = sql.NullString{String: "[Imagem]", Valid: true}
	with := pendingRenewalsText([]models.Renewal{renewal})
	assert.Contains(t, with, "💳 Comprovante enviado")
}

func TestLogsTextIconsPerDirection(t *testing.T) {
	now := time.Date(2025, 3, 10, 16, 0, 0, 0, time.UTC)
	messages := []models.MessageLog{
		{
			Message: models.Message{MessageContent: "oi", MessageType: models.MessageReceived, CreatedAt: now},
			Phone:   "5511999998888",
		},
		{
			Message: models.Message{MessageContent: "Bem-vindo!", MessageType: models.MessageSent, CreatedAt: now},
			Phone:   "5511999998888",
			Name:    sql.NullString{String: "João", Valid: true},
		},
	}

	text := logsText(messages, now)
	assert.Contains(t, text, "1. 📨 5511999998888")
	assert.Contains(t, text, "2. 📤 5511999998888")
	assert.Contains(t, text, "👤 João")
	assert.Contains(t, text, "⏰ *Gerado em:* 10/03/2025 16:00")
}

func TestDecisionMarkupEncodesKindAndID(t *testing.T) {
	rm := decisionMarkup("plan", 42)
	require.Len(t, rm.InlineKeyboard, 2)
	require.Len(t, rm.InlineKeyboard[0], 2)

	assert.Equal(t, "approve_plan", rm.InlineKeyboard[0][0].Unique)
	assert.Equal(t, "42", rm.InlineKeyboard[0][0].Data)
	assert.Equal(t, "reject_plan", rm.InlineKeyboard[0][1].Unique)
	assert.Equal(t, "42", rm.InlineKeyboard[0][1].Data)
}

func TestPendingMarkupOneRowPerRequest(t *testing.T) {
	rm := pendingMarkup("test", []int64{5, 8})
	require.Len(t, rm.InlineKeyboard, 3)

	assert.Equal(t, "approve_test", rm.InlineKeyboard[1][0].Unique)
	assert.Equal(t, "8", rm.InlineKeyboard[1][0].Data)
	assert.Equal(t, "back_main", rm.InlineKeyboard[2][1].Unique)
}
