package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

type logFormat int

const (
	formatKV logFormat = iota
	formatJSON
)

// defaultKeyOrder fixes attribute ordering so log lines stay grep-friendly.
var defaultKeyOrder = []string{
	"ts", "level", "component", "event", "status",
	"rid", "phone", "state", "chat_id",
	"request_id", "request_type", "plan", "login",
	"duration_ms", "attempt", "count", "err",
}

type handlerConfig struct {
	level    slog.Leveler
	out      io.Writer
	format   logFormat
	keyOrder []string
}

type structuredHandler struct {
	cfg     handlerConfig
	mu      *sync.Mutex
	attrs   []slog.Attr
	groups  []string
	orderIx map[string]int
}

func newStructuredHandler(cfg handlerConfig) *structuredHandler {
	ix := make(map[string]int, len(cfg.keyOrder))
	for i, k := range cfg.keyOrder {
		ix[k] = i
	}
	return &structuredHandler{
		cfg:     cfg,
		mu:      &sync.Mutex{},
		orderIx: ix,
	}
}

func (h *structuredHandler) Enabled(_ context.Context, level slog.Level) bool {
	min := slog.LevelInfo
	if h.cfg.level != nil {
		min = h.cfg.level.Level()
	}
	return level >= min
}

func (h *structuredHandler) Handle(ctx context.Context, rec slog.Record) error {
	fields := make(map[string]string, rec.NumAttrs()+len(h.attrs)+4)

	fields["ts"] = rec.Time.UTC().Format(time.RFC3339Nano)
	fields["level"] = rec.Level.String()
	if msg := strings.TrimSpace(rec.Message); msg != "" {
		fields["msg"] = msg
	}

	for _, a := range h.attrs {
		h.collect(fields, "", a)
	}
	rec.Attrs(func(a slog.Attr) bool {
		h.collect(fields, strings.Join(h.groups, "."), a)
		return true
	})

	if rid := RIDFrom(ctx); rid != "" && fields["rid"] == "" {
		fields["rid"] = rid
	}
	if phone := PhoneFrom(ctx); phone != "" && fields["phone"] == "" {
		fields["phone"] = phone
	}

	var line []byte
	switch h.cfg.format {
	case formatJSON:
		encoded, err := json.Marshal(fields)
		if err != nil {
			return err
		}
		line = append(encoded, '\n')
	default:
		line = []byte(h.renderKV(fields) + "\n")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.cfg.out.Write(line)
	return err
}

func (h *structuredHandler) collect(fields map[string]string, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			h.collect(fields, key, ga)
		}
		return
	}
	if key == "" {
		return
	}
	fields[key] = formatValue(a.Value)
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return fmt.Sprintf("%d", v.Int64())
	case slog.KindUint64:
		return fmt.Sprintf("%d", v.Uint64())
	case slog.KindFloat64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.3f", v.Float64()), "0"), ".")
	case slog.KindBool:
		return fmt.Sprintf("%t", v.Bool())
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(v.Any())
	}
}

func (h *structuredHandler) renderKV(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		oi, iok := h.orderIx[keys[i]]
		oj, jok := h.orderIx[keys[j]]
		switch {
		case iok && jok:
			return oi < oj
		case iok:
			return true
		case jok:
			return false
		default:
			return keys[i] < keys[j]
		}
	})

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(quoteIfNeeded(fields[k]))
	}
	return b.String()
}

func quoteIfNeeded(s string) string {
	if s == "" {
		return `""`
	}
	if strings.ContainsAny(s, " \t\"=") {
		return fmt.Sprintf("%q", s)
	}
	return s
}

func (h *structuredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *structuredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}
