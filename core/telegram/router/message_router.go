package router

import (
	"time"

	tg "github.com/m3rciful/signalbot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// Capturer takes over the next inbound message of a user when a
// multi-step flow is waiting for free input.
type Capturer interface {
	Capturing(c tele.Context) bool
	Capture(c tele.Context) error
}

// MessageOptions controls fallback behaviour for text and media updates.
type MessageOptions struct {
	UnknownText  tele.HandlerFunc
	UnknownMedia tele.HandlerFunc
}

// MessageRoutes builds handlers for plain text and any media message.
// A capturing flow sees every message kind first; text is then matched
// against command aliases and the registry fallback.
func MessageRoutes(capture Capturer, reg *tg.Registry, opts MessageOptions) []tg.Route {
	textHandler := func(c tele.Context) error {
		start := time.Now()
		if capture != nil && capture.Capturing(c) {
			return handleWithSummary(c, "capture", start, func() error { return capture.Capture(c) })
		}
		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(c.Text()); ok && cmd.Handler != nil && !cmd.AdminOnly {
				return handleWithSummary(c, "command."+normalizeHandlerName(key), start, func() error {
					return cmd.Handler(c)
				})
			}
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, func() error { return fb(c) })
			}
		}
		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, func() error { return opts.UnknownText(c) })
		}
		logHandlerSummary(c, "unknown_text", start, "skip", nil)
		return nil
	}

	mediaHandler := func(c tele.Context) error {
		start := time.Now()
		if capture != nil && capture.Capturing(c) {
			return handleWithSummary(c, "capture", start, func() error { return capture.Capture(c) })
		}
		if opts.UnknownMedia != nil {
			return handleWithSummary(c, "unknown_media", start, func() error { return opts.UnknownMedia(c) })
		}
		logHandlerSummary(c, "unknown_media", start, "skip", nil)
		return nil
	}

	return []tg.Route{
		{Endpoint: tele.OnText, Handler: textHandler},
		{Endpoint: tele.OnMedia, Handler: mediaHandler},
	}
}
