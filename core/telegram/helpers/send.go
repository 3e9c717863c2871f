package helpers

import (
	tele "gopkg.in/telebot.v4"
)

const answeredKey = "cb_answered"

// Answered reports whether the current callback was already answered.
func Answered(c tele.Context) bool {
	ok, _ := c.Get(answeredKey).(bool)
	return ok
}

func respond(c tele.Context, resp *tele.CallbackResponse) error {
	c.Set(answeredKey, true)
	return c.Respond(resp)
}

func firstMarkup(markup []*tele.ReplyMarkup) *tele.ReplyMarkup {
	if len(markup) > 0 {
		return markup[0]
	}
	return nil
}

// SendText sends raw text (no parse mode) with an optional keyboard.
func SendText(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	if rm := firstMarkup(markup); rm != nil {
		return c.Send(text, &tele.SendOptions{ReplyMarkup: rm})
	}
	return c.Send(text)
}

// SendMD sends a message with Markdown parse mode and optional reply markup.
func SendMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return c.Send(text, &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: firstMarkup(markup)})
}

// EditOrSendMD edits the callback's message or sends a new one for plain messages.
func EditOrSendMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return c.EditOrSend(text, &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: firstMarkup(markup)})
}

// Toast answers the callback with a short non-blocking notice.
func Toast(c tele.Context, text string) error {
	if c.Callback() == nil {
		return nil
	}
	return respond(c, &tele.CallbackResponse{Text: text})
}

// Alert answers the callback with a modal alert. Outside callbacks it
// falls back to a plain message.
func Alert(c tele.Context, text string) error {
	if c.Callback() == nil {
		return c.Send(text)
	}
	return respond(c, &tele.CallbackResponse{Text: text, ShowAlert: true})
}
