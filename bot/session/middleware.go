package session

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/signalbot/core/logger"
	tghelpers "github.com/m3rciful/signalbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

const contextKey = "session_record"

// MiddlewareOptions wires the session middleware.
type MiddlewareOptions struct {
	Store Store
	Clock Clock
	AIIDs []string
}

// Middleware loads the sender's record before the handler runs, creating
// it with defaults on first contact, and saves it afterwards when the
// handler changed it. Updates without a sender pass through untouched.
func Middleware(opts MiddlewareOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return next(c)
			}
			ctx := tghelpers.BuildContext(c)

			created := false
			rec, err := opts.Store.Get(ctx, sender.ID)
			switch {
			case errors.Is(err, ErrNotFound):
				rec = NewRecord(opts.Clock.Today(), opts.AIIDs)
				created = true
			case err != nil:
				logger.Error(ctx, "session", "session.load_failed", slog.Any("err", err))
				return fmt.Errorf("load session: %w", err)
			default:
				rec.Fill(opts.AIIDs)
			}
			before, _ := encode(rec)

			c.Set(contextKey, rec)
			handlerErr := next(c)

			after, err := encode(rec)
			if err != nil {
				logger.Error(ctx, "session", "session.encode_failed", slog.Any("err", err))
				return handlerErr
			}
			if created || !bytes.Equal(before, after) {
				if err := opts.Store.Put(ctx, sender.ID, rec); err != nil {
					logger.Error(ctx, "session", "session.save_failed", slog.Any("err", err))
				} else if created {
					logger.Info(ctx, "session", "session.created", slog.String("tier", rec.Tier))
				}
			}
			return handlerErr
		}
	}
}

// From returns the record loaded by Middleware, or nil outside it.
func From(c tele.Context) *Record {
	rec, _ := c.Get(contextKey).(*Record)
	return rec
}

// Attach stores rec on the context. Tests use it to bypass the middleware.
func Attach(c tele.Context, rec *Record) {
	c.Set(contextKey, rec)
}
