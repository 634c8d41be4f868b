package evolution

import (
	"strings"
)

// WebhookEvent is the envelope Evolution API posts to the webhook endpoint.
type WebhookEvent struct {
	Event    string      `json:"event"`
	Instance string      `json:"instance"`
	Data     WebhookData `json:"data"`
}

// WebhookData carries one message upsert.
type WebhookData struct {
	Key      MessageKey      `json:"key"`
	PushName string          `json:"pushName"`
	Message  *MessageContent `json:"message"`
}

// MessageKey identifies the message and its chat.
type MessageKey struct {
	RemoteJID string `json:"remoteJid"`
	FromMe    bool   `json:"fromMe"`
	ID        string `json:"id"`
}

// MessageContent mirrors the subset of message kinds the bot understands.
type MessageContent struct {
	Conversation        string        `json:"conversation"`
	ExtendedTextMessage *ExtendedText `json:"extendedTextMessage"`
	ImageMessage        *MediaMessage `json:"imageMessage"`
	VideoMessage        *MediaMessage `json:"videoMessage"`
	DocumentMessage     *MediaMessage `json:"documentMessage"`
	AudioMessage        *struct{}     `json:"audioMessage"`
	StickerMessage      *struct{}     `json:"stickerMessage"`
}

// ExtendedText is a quoted or link-bearing text message.
type ExtendedText struct {
	Text string `json:"text"`
}

// MediaMessage is any media kind that may carry a caption.
type MediaMessage struct {
	Caption string `json:"caption"`
}

// Incoming is a decoded inbound message ready for the conversation engine.
type Incoming struct {
	Phone    string
	Text     string
	PushName string
}

// IsMessageUpsert reports whether the event carries an inbound message.
func (e *WebhookEvent) IsMessageUpsert() bool {
	return strings.EqualFold(e.Event, "messages.upsert")
}

// Extract normalizes the webhook payload into phone and text. It returns
// false for events the bot must ignore: own messages, group chats, statuses
// and payloads without a message body.
func (e *WebhookEvent) Extract() (Incoming, bool) {
	if !e.IsMessageUpsert() || e.Data.Key.FromMe || e.Data.Message == nil {
		return Incoming{}, false
	}

	phone, ok := normalizeJID(e.Data.Key.RemoteJID)
	if !ok {
		return Incoming{}, false
	}

	return Incoming{
		Phone:    phone,
		Text:     e.Data.Message.text(),
		PushName: strings.TrimSpace(e.Data.PushName),
	}, true
}

// normalizeJID strips the WhatsApp suffix from an individual chat jid.
// Group and broadcast jids are rejected.
func normalizeJID(jid string) (string, bool) {
	switch {
	case strings.HasSuffix(jid, "@s.whatsapp.net"):
		return strings.TrimSuffix(jid, "@s.whatsapp.net"), true
	case strings.HasSuffix(jid, "@c.us"):
		return strings.TrimSuffix(jid, "@c.us"), true
	default:
		return "", false
	}
}

func (m *MessageContent) text() string {
	if t := strings.TrimSpace(m.Conversation); t != "" {
		return t
	}
	if m.ExtendedTextMessage != nil {
		if t := strings.TrimSpace(m.ExtendedTextMessage.Text); t != "" {
			return t
		}
	}
	if m.ImageMessage != nil {
		if t := strings.TrimSpace(m.ImageMessage.Caption); t != "" {
			return t
		}
		return "[Imagem]"
	}
	if m.VideoMessage != nil {
		if t := strings.TrimSpace(m.VideoMessage.Caption); t != "" {
			return t
		}
		return "[Vídeo]"
	}
	if m.DocumentMessage != nil {
		return "[Documento]"
	}
	if m.AudioMessage != nil {
		return "[Áudio]"
	}
	if m.StickerMessage != nil {
		return "[Sticker]"
	}
	return "[Mensagem não suportada]"
}
