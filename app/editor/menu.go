package editor

import (
	"github.com/Sambhram1/tele-bot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// Callback keys for the operation menu.
const (
	cbRemoveBackground = "op_removebg"
	cbGrayscale        = "op_grayscale"
	cbResize           = "op_resize"
	cbRotate           = "op_rotate"
	cbOverlayText      = "op_text"
	cbUpscale          = "op_upscale"
	cbRotateQuick      = "op_rotate_quick"
	cbNewImage         = "edit_new"
	cbCancel           = "edit_cancel"
)

// OperationsMenu builds the inline keyboard shown once an image is loaded:
// six operations plus "new image" and "cancel".
func OperationsMenu() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "🪄 Remove background", Unique: cbRemoveBackground},
			{Text: "🎞 Grayscale", Unique: cbGrayscale},
		},
		[]keyboard.InlineBtn{
			{Text: "📐 Resize", Unique: cbResize},
			{Text: "🔄 Rotate", Unique: cbRotate},
		},
		[]keyboard.InlineBtn{
			{Text: "✍️ Add text", Unique: cbOverlayText},
			{Text: "🔍 Upscale", Unique: cbUpscale},
		},
		[]keyboard.InlineBtn{
			{Text: "🖼 New image", Unique: cbNewImage},
			{Text: "❌ Cancel", Unique: cbCancel},
		},
	)
}

// RotationMenu offers the common quarter turns as shortcuts; any other angle
// can still be typed as text.
func RotationMenu() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "90°", Unique: cbRotateQuick, Data: "90"},
			{Text: "180°", Unique: cbRotateQuick, Data: "180"},
			{Text: "-90°", Unique: cbRotateQuick, Data: "-90"},
		},
		[]keyboard.InlineBtn{
			{Text: "❌ Cancel", Unique: cbCancel},
		},
	)
}
