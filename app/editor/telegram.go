package editor

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Sambhram1/tele-bot/app/imageops"
	tg "github.com/Sambhram1/tele-bot/core/telegram"
	"github.com/Sambhram1/tele-bot/core/telegram/callbacks"
	"github.com/Sambhram1/tele-bot/core/telegram/commands"
	"github.com/Sambhram1/tele-bot/core/telegram/format"
	tghelpers "github.com/Sambhram1/tele-bot/core/telegram/helpers"
	"github.com/Sambhram1/tele-bot/core/telegram/keyboard"
	"github.com/Sambhram1/tele-bot/core/telegram/middleware"
	"github.com/Sambhram1/tele-bot/core/telegram/state"

	tele "gopkg.in/telebot.v4"
)

const welcomeText = `Hi! I edit images.

Send me a photo (or an image file) and pick an operation from the menu.
Use /new to start over and /help for details.`

const helpText = `Send an image, then choose an operation:

• Remove background - cuts the subject out (PNG with transparency)
• Grayscale - drops the colors
• Resize - you will be asked for WIDTHxHEIGHT
• Rotate - you will be asked for degrees (-360..360)
• Add text - you will be asked for a caption to draw
• Upscale - enlarges the image

Operations chain: each result becomes the image for the next one.
/new starts a fresh round, Cancel aborts a pending question.`

// Handlers binds the editor to Telegram updates. It also serves as the
// fallback provider for updates that match no route.
type Handlers struct {
	editor    *Editor
	caps      imageops.Capabilities
	startedAt time.Time
}

// NewHandlers constructs the Telegram-facing handler set.
func NewHandlers(editor *Editor, caps imageops.Capabilities) *Handlers {
	return &Handlers{editor: editor, caps: caps, startedAt: time.Now()}
}

// Register wires commands, menu callbacks, and conversation states into the
// registry. Call once during bootstrap, before routes are built.
func (h *Handlers) Register(reg *tg.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     h.handleStart,
		Description: "Start the bot",
	})
	reg.RegisterCommand("/new", commands.Command{
		Handler:     h.handleNew,
		Description: "Start a new editing round",
		Aliases:     []string{"reset"},
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     h.handleHelp,
		Description: "How to use the bot",
	})
	reg.RegisterCommand("/status", commands.Command{
		Handler:     h.handleStatus,
		Description: "Runtime diagnostics",
		AdminOnly:   true,
		Hidden:      true,
	})

	_ = reg.RegisterCallback(cbRemoveBackground, h.opCallback(imageops.OpRemoveBackground))
	_ = reg.RegisterCallback(cbGrayscale, h.opCallback(imageops.OpGrayscale))
	_ = reg.RegisterCallback(cbResize, h.opCallback(imageops.OpResize))
	_ = reg.RegisterCallback(cbRotate, h.opCallback(imageops.OpRotate))
	_ = reg.RegisterCallback(cbOverlayText, h.opCallback(imageops.OpOverlayText))
	_ = reg.RegisterCallback(cbUpscale, h.opCallback(imageops.OpUpscale))
	_ = reg.RegisterCallback(cbRotateQuick, h.handleRotateQuick)
	_ = reg.RegisterCallback(cbNewImage, h.handleNewImage)
	_ = reg.RegisterCallback(cbCancel, h.handleCancel)

	state.RegisterHandler(StateAwaitingDimensions, h.handleAwaitedInput)
	state.RegisterHandler(StateAwaitingRotation, h.handleAwaitedInput)
	state.RegisterHandler(StateAwaitingText, h.handleAwaitedInput)
}

// PhotoRoute returns the route handling photo uploads. Document uploads reach
// the editor through the text router's document fallback.
func (h *Handlers) PhotoRoute() tg.Route {
	return tg.Route{
		Endpoint: tele.OnPhoto,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(h.handleUpload)),
	}
}

func (h *Handlers) handleStart(c tele.Context) error {
	h.editor.StartRound(c.Sender().ID)
	return tghelpers.SendText(c, welcomeText)
}

func (h *Handlers) handleNew(c tele.Context) error {
	h.editor.StartRound(c.Sender().ID)
	return tghelpers.SendText(c, "Fresh round. Send me an image.")
}

func (h *Handlers) handleHelp(c tele.Context) error {
	return tghelpers.SendText(c, helpText)
}

func (h *Handlers) handleStatus(c tele.Context) error {
	toolState := func(t imageops.Capability) string {
		if t.Available {
			return t.Path
		}
		return "not found"
	}
	text := fmt.Sprintf(
		"Uptime: %s\nActive sessions: %d\nrembg: %s\nrealesrgan: %s",
		time.Since(h.startedAt).Round(time.Second),
		h.editor.Sessions().Count(),
		toolState(h.caps.Rembg),
		toolState(h.caps.Realesrgan),
	)
	return tghelpers.SendText(c, text)
}

// handleUpload downloads the attached image and makes it the session's
// working copy.
func (h *Handlers) handleUpload(c tele.Context) error {
	in, ok := tghelpers.IncomingImage(c)
	if !ok {
		return tghelpers.SendText(c, "I can only work with images.")
	}

	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	rc, err := c.Bot().File(&in.File)
	if err != nil {
		derr := newError(KindDownloadFailure, "Could not download the image. Please try again.", err)
		_ = c.Send(UserMessage(derr))
		return derr
	}
	defer rc.Close()

	if err := h.editor.AttachUpload(ctx, userID, rc, in.Ext()); err != nil {
		_ = c.Send(UserMessage(err))
		return err
	}

	return c.Send("Got it. What should I do with this image?", OperationsMenu())
}

// opCallback builds the handler for one operation button.
func (h *Handlers) opCallback(op imageops.Op) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		prompt, res, err := h.editor.SelectOperation(ctx, c.Sender().ID, op)
		if err != nil {
			_ = c.Send(UserMessage(err))
			return err
		}
		if prompt != "" {
			if op == imageops.OpRotate {
				return c.Send(prompt, RotationMenu())
			}
			return c.Send(prompt, cancelMarkup())
		}
		return h.sendResult(c, res)
	}
}

// handleRotateQuick applies a preset angle from the rotation shortcut row.
// The angle travels as the callback payload and goes through the same input
// path as a typed answer.
func (h *Handlers) handleRotateQuick(c tele.Context) error {
	deg, err := callbacks.PayloadInt(c)
	if err != nil {
		return tghelpers.SendText(c, "That button looks broken; type the degrees instead.")
	}
	ctx := tghelpers.BuildContext(c)
	res, err := h.editor.SubmitInput(ctx, c.Sender().ID, strconv.Itoa(deg))
	if err != nil {
		_ = c.Send(UserMessage(err))
		return err
	}
	if res == nil {
		return tghelpers.SendText(c, "Pick Rotate from the menu first.")
	}
	return h.sendResult(c, res)
}

func (h *Handlers) handleNewImage(c tele.Context) error {
	h.editor.StartRound(c.Sender().ID)
	return c.Send("Send me the next image.")
}

func (h *Handlers) handleCancel(c tele.Context) error {
	h.editor.Cancel(c.Sender().ID)
	return c.Send("Cancelled. Send /new when you want to edit another image.")
}

// handleAwaitedInput consumes the free-text answer to a pending parameter
// question. Dispatched by the session manager for every awaiting state.
func (h *Handlers) handleAwaitedInput(c tele.Context) error {
	// An image sent instead of an answer supersedes the pending question:
	// it becomes the new working copy and the session returns to idle.
	if _, ok := tghelpers.IncomingImage(c); ok {
		return h.handleUpload(c)
	}

	ctx := tghelpers.BuildContext(c)
	res, err := h.editor.SubmitInput(ctx, c.Sender().ID, c.Text())
	if err != nil {
		_ = c.Send(UserMessage(err))
		if KindOf(err) == KindInvalidParameters {
			// The user can just answer again; not a handler failure.
			return nil
		}
		return err
	}
	if res == nil {
		return nil
	}
	return h.sendResult(c, res)
}

/// sendResult delivers an operation output. Sending happens synchronously:
// the artifact may be released by the next operation, so the upload must
// finish before the handler returns.
func (h *Handlers) sendResult(c tele.Context, res *Result) error {
	if res == nil || res.File == nil {
		return nil
	}
	var err error
	if res.AsDocument {
		err = c.Send(&tele.Document{
			File:     tele.FromDisk(res.File.Path()),
			FileName: filepath.Base(res.File.Path()),
			Caption:  res.Caption,
		})
	} else {
		err = c.Send(&tele.Photo{
			File:    tele.FromDisk(res.File.Path()),
			Caption: res.Caption,
		})
	}
	if err != nil {
		return err
	}
	return c.Send("Anything else?", OperationsMenu())
}

// UnknownText answers text that maps to no command while nothing is awaited.
func (h *Handlers) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		text := strings.TrimSpace(c.Text())
		if strings.HasPrefix(text, "/") {
			token := strings.Fields(text)[0]
			if esc, err := format.EscapeMarkdown(token, format.MarkdownV1); err == nil {
				return tghelpers.SendMD(c, fmt.Sprintf("Unknown command *%s*. Try /help.", esc))
			}
			return tghelpers.SendText(c, "Unknown command. Try /help.")
		}
		return tghelpers.SendText(c, "Send me an image to edit, or /help for instructions.")
	}
}

// UnknownDocument treats stray documents as upload attempts.
func (h *Handlers) UnknownDocument() tele.HandlerFunc {
	return h.handleUpload
}

// UnknownCallback answers stale menu presses after a restart.
func (h *Handlers) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		_ = c.Respond(&tele.CallbackResponse{Text: "That menu has expired."})
		return c.Send("Send me an image to start editing.")
	}
}

func cancelMarkup() *tele.ReplyMarkup {
	return keyboard.SingleCancelMarkup(cbCancel)
}
