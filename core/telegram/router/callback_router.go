package router

import (
	"log/slog"
	"time"

	tg "github.com/m3rciful/signalbot/core/telegram"
	"github.com/m3rciful/signalbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/signalbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// CallbackRoute returns the OnCallback route dispatching by unique key
// through the registry. Callbacks the handler left unanswered are
// acknowledged afterwards so the client spinner stops.
func CallbackRoute(reg *tg.Registry) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		if c.Callback() == nil {
			return nil
		}
		key, _ := callbacks.ParseCallbackData(c.Callback())
		name := "callback." + normalizeHandlerName(key)
		extras := []slog.Attr{slog.String("cb_key", key)}

		cbHandler, ok := reg.GetCallback(key)
		if !ok {
			cbHandler = reg.CallbackNotFound()
			extras = append(extras, slog.String("reason", "not_found"))
		}
		err := handleWithSummary(c, name, start, func() error {
			if cbHandler == nil {
				return nil
			}
			return cbHandler(c)
		}, extras...)
		if !tghelpers.Answered(c) {
			_ = c.Respond()
		}
		return err
	}
	return tg.Route{Endpoint: tele.OnCallback, Handler: handler}
}
