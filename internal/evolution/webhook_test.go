package evolution

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) WebhookEvent {
	t.Helper()
	var ev WebhookEvent
	require.NoError(t, json.Unmarshal([]byte(raw), &ev))
	return ev
}

func TestExtractPlainText(t *testing.T) {
	ev := decode(t, `{
		"event": "messages.upsert",
		"instance": "default",
		"data": {
			"key": {"remoteJid": "5511999999999@s.whatsapp.net", "fromMe": false, "id": "ABC"},
			"pushName": "Maria",
			"message": {"conversation": "  oi, quero um teste  "}
		}
	}`)

	in, ok := ev.Extract()
	require.True(t, ok)
	assert.Equal(t, "5511999999999", in.Phone)
	assert.Equal(t, "oi, quero um teste", in.Text)
	assert.Equal(t, "Maria", in.PushName)
}

func TestExtractExtendedText(t *testing.T) {
	ev := decode(t, `{
		"event": "messages.upsert",
		"data": {
			"key": {"remoteJid": "5511999999999@c.us", "fromMe": false},
			"message": {"extendedTextMessage": {"text": "2"}}
		}
	}`)

	in, ok := ev.Extract()
	require.True(t, ok)
	assert.Equal(t, "5511999999999", in.Phone)
	assert.Equal(t, "2", in.Text)
}

func TestExtractMediaPlaceholders(t *testing.T) {
	cases := []struct {
		message string
		want    string
	}{
		{`{"imageMessage": {}}`, "[Imagem]"},
		{`{"imageMessage": {"caption": "comprovante pix"}}`, "comprovante pix"},
		{`{"videoMessage": {}}`, "[Vídeo]"},
		{`{"documentMessage": {"caption": "ignored"}}`, "[Documento]"},
		{`{"audioMessage": {}}`, "[Áudio]"},
		{`{"stickerMessage": {}}`, "[Sticker]"},
		{`{}`, "[Mensagem não suportada]"},
	}
	for _, tc := range cases {
		ev := decode(t, `{
			"event": "messages.upsert",
			"data": {
				"key": {"remoteJid": "5511999999999@s.whatsapp.net", "fromMe": false},
				"message": `+tc.message+`
			}
		}`)
		in, ok := ev.Extract()
		require.True(t, ok, tc.message)
		assert.Equal(t, tc.want, in.Text, tc.message)
	}
}

func TestExtractSkips(t *testing.T) {
	fromMe := decode(t, `{
		"event": "messages.upsert",
		"data": {
			"key": {"remoteJid": "5511999999999@s.whatsapp.net", "fromMe": true},
			"message": {"conversation": "resposta do bot"}
		}
	}`)
	_, ok := fromMe.Extract()
	assert.False(t, ok, "own messages must be ignored")

	group := decode(t, `{
		"event": "messages.upsert",
		"data": {
			"key": {"remoteJid": "123456-789@g.us", "fromMe": false},
			"message": {"conversation": "oi"}
		}
	}`)
	_, ok = group.Extract()
	assert.False(t, ok, "group chats must be ignored")

	otherEvent := decode(t, `{
		"event": "messages.update",
		"data": {
			"key": {"remoteJid": "5511999999999@s.whatsapp.net", "fromMe": false},
			"message": {"conversation": "oi"}
		}
	}`)
	_, ok = otherEvent.Extract()
	assert.False(t, ok, "non-upsert events must be ignored")

	noMessage := decode(t, `{
		"event": "messages.upsert",
		"data": {"key": {"remoteJid": "5511999999999@s.whatsapp.net", "fromMe": false}}
	}`)
	_, ok = noMessage.Extract()
	assert.False(t, ok, "payloads without a message body must be ignored")
}
