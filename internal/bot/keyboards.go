package bot

import (
	"fmt"
	"strconv"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/kropbot/core/telegram/keyboard"
	"github.com/m3rciful/kropbot/internal/board"
)

// Callback uniques. Payload follows after '|' in the telebot encoding.
const (
	cbAdd      = "add"
	cbView     = "view"
	cbMy       = "my"
	cbHelp     = "help"
	cbKind     = "kind"
	cbCat      = "cat"
	cbViewKind = "vkind"
	cbViewCat  = "vcat"
	cbPage     = "page"
	cbMyPage   = "mypage"
	cbEdit     = "edit"
	cbDelete   = "del"
	cbConfirm  = "confirm"
	cbCancel   = "cancel"
	cbSkip     = "skip"
	cbHome     = "home"
	cbBack     = "back"
	cbNoop     = "noop"
)

func backBtn() keyboard.InlineBtn {
	return keyboard.InlineBtn{Text: "⬅️ Back", Unique: cbBack}
}

func homeBtn() keyboard.InlineBtn {
	return keyboard.InlineBtn{Text: "🏠 Menu", Unique: cbHome}
}

func mainMenuMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "➕ Post", Unique: cbAdd}},
		[]keyboard.InlineBtn{{Text: "📋 Browse", Unique: cbView}},
		[]keyboard.InlineBtn{{Text: "🗂 My listings", Unique: cbMy}},
		[]keyboard.InlineBtn{{Text: "ℹ️ Help", Unique: cbHelp}},
	)
}

func helpMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{homeBtn()})
}

func kindMarkup(unique string) *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "💼 Job", Unique: unique, Data: string(board.KindJob)},
			{Text: "🤝 Service", Unique: unique, Data: string(board.KindService)},
		},
		[]keyboard.InlineBtn{backBtn()},
	)
}

func categoryMarkup(unique string, categories []string) *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, len(categories)+1)
	for i, label := range categories {
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   label,
			Unique: unique,
			Data:   strconv.Itoa(i),
		})
	}
	rows := make([][]keyboard.InlineBtn, 0, len(categories)/2+2)
	for i := 0; i < len(buttons); i += 2 {
		end := i + 2
		if end > len(buttons) {
			end = len(buttons)
		}
		rows = append(rows, buttons[i:end])
	}
	rows = append(rows, []keyboard.InlineBtn{backBtn()})
	return keyboard.InlineButtonsRows(rows...)
}

func textInputMarkup() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	cancel := keyboard.CancelButton(markup, cbCancel)
	markup.InlineKeyboard = [][]tele.InlineButton{
		{*markup.Data("⬅️ Back", cbBack).Inline()},
		{*cancel.Inline()},
	}
	return markup
}

func contactMarkup() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	cancel := keyboard.CancelButton(markup, cbCancel)
	markup.InlineKeyboard = [][]tele.InlineButton{
		{*markup.Data("⏭ Skip", cbSkip).Inline()},
		{*markup.Data("⬅️ Back", cbBack).Inline()},
		{*cancel.Inline()},
	}
	return markup
}

func confirmMarkup() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	cancel := keyboard.CancelButton(markup, cbCancel)
	markup.InlineKeyboard = [][]tele.InlineButton{
		{*markup.Data("✅ Publish", cbConfirm).Inline()},
		{*markup.Data("⬅️ Back", cbBack).Inline()},
		{*cancel.Inline()},
	}
	return markup
}

// pagerRow builds prev / position / next for the given page. The position
// button is inert.
func pagerRow(markup *tele.ReplyMarkup, unique string, p board.Page) []tele.InlineButton {
	row := make([]tele.InlineButton, 0, 3)
	if p.HasPrev {
		row = append(row, *markup.Data("◀️", unique, strconv.FormatInt(p.PrevOffset, 10)).Inline())
	}
	row = append(row, *markup.Data(fmt.Sprintf("%d/%d", p.Current, p.Pages), cbNoop).Inline())
	if p.HasNext {
		row = append(row, *markup.Data("▶️", unique, strconv.FormatInt(p.NextOffset, 10)).Inline())
	}
	return row
}

func boardPageMarkup(p board.Page) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	var rows [][]tele.InlineButton
	if p.Pages > 1 {
		rows = append(rows, pagerRow(markup, cbPage, p))
	}
	rows = append(rows, []tele.InlineButton{
		*markup.Data("⬅️ Back", cbBack).Inline(),
		*markup.Data("🏠 Menu", cbHome).Inline(),
	})
	markup.InlineKeyboard = rows
	return markup
}

func myPageMarkup(p board.Page, items []board.Listing, editable func(board.Listing) bool) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	var rows [][]tele.InlineButton
	for _, l := range items {
		id := strconv.FormatInt(l.ID, 10)
		row := make([]tele.InlineButton, 0, 2)
		if editable(l) {
			row = append(row, *markup.Data(fmt.Sprintf("✏️ #%d", l.ID), cbEdit, id).Inline())
		}
		row = append(row, *markup.Data(fmt.Sprintf("🗑 #%d", l.ID), cbDelete, id).Inline())
		rows = append(rows, row)
	}
	if p.Pages > 1 {
		rows = append(rows, pagerRow(markup, cbMyPage, p))
	}
	rows = append(rows, []tele.InlineButton{
		*markup.Data("🏠 Menu", cbHome).Inline(),
	})
	markup.InlineKeyboard = rows
	return markup
}

func deleteConfirmMarkup() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.InlineKeyboard = [][]tele.InlineButton{
		{*markup.Data("🗑 Yes, delete", cbConfirm).Inline()},
		{*markup.Data("⬅️ Back", cbBack).Inline()},
	}
	return markup
}
