package eventbus

import (
	"context"
	"log/slog"
)

// LogRecord is the payload of a LogEntry event.
type LogRecord struct {
	Level     string         `json:"level"`
	Message   string         `json:"msg"`
	Component string         `json:"component,omitempty"`
	Attrs     map[string]any `json:"attrs,omitempty"`
}

// SlogHandler writes records to an inner handler and mirrors them onto the
// bus as LogEntry events for the activity panel.
type SlogHandler struct {
	inner slog.Handler
	bus   *Bus
	min   slog.Level
	attrs []slog.Attr
	group string
}

// NewSlogHandler tees inner onto bus. Only records at or above min reach the
// bus; inner applies its own level.
func NewSlogHandler(inner slog.Handler, bus *Bus, min slog.Level) *SlogHandler {
	return &SlogHandler{inner: inner, bus: bus, min: min}
}

func (h *SlogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.min || h.inner.Enabled(ctx, level)
}

func (h *SlogHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= h.min {
		rec := LogRecord{
			Level:   r.Level.String(),
			Message: r.Message,
			Attrs:   make(map[string]any),
		}
		collect := func(a slog.Attr) {
			key := a.Key
			if h.group != "" {
				key = h.group + "." + key
			}
			if a.Key == "component" {
				rec.Component = a.Value.String()
				return
			}
			rec.Attrs[key] = a.Value.Any()
		}
		for _, a := range h.attrs {
			collect(a)
		}
		r.Attrs(func(a slog.Attr) bool {
			collect(a)
			return true
		})
		if len(rec.Attrs) == 0 {
			rec.Attrs = nil
		}
		h.bus.PublishType(LogEntry, rec)
	}

	if !h.inner.Enabled(ctx, r.Level) {
		return nil
	}
	return h.inner.Handle(ctx, r)
}

func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SlogHandler{
		inner: h.inner.WithAttrs(attrs),
		bus:   h.bus,
		min:   h.min,
		attrs: append(append([]slog.Attr(nil), h.attrs...), attrs...),
		group: h.group,
	}
}

func (h *SlogHandler) WithGroup(name string) slog.Handler {
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &SlogHandler{
		inner: h.inner.WithGroup(name),
		bus:   h.bus,
		min:   h.min,
		attrs: h.attrs,
		group: group,
	}
}
