package editor

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sambhram1/tele-bot/app/artifact"
	"github.com/Sambhram1/tele-bot/app/imageops"
	"github.com/Sambhram1/tele-bot/core/telegram/state"
	tele "gopkg.in/telebot.v4"
)

// fakeAPI serves file downloads from an in-memory payload.
type fakeAPI struct {
	tele.API
	payload []byte
}

func (a *fakeAPI) File(_ *tele.File) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(a.payload)), nil
}

// fakeTeleContext covers the context surface the handlers touch.
type fakeTeleContext struct {
	tele.Context
	api  tele.API
	msg  *tele.Message
	kv   map[string]interface{}
	sent []interface{}
}

func newFakeTeleContext(msg *tele.Message, payload []byte) *fakeTeleContext {
	return &fakeTeleContext{
		api: &fakeAPI{payload: payload},
		msg: msg,
		kv:  map[string]interface{}{},
	}
}

func (f *fakeTeleContext) Bot() tele.API { return f.api }

func (f *fakeTeleContext) Message() *tele.Message { return f.msg }

func (f *fakeTeleContext) Update() tele.Update { return tele.Update{ID: 1} }

func (f *fakeTeleContext) Sender() *tele.User { return &tele.User{ID: testUser} }

func (f *fakeTeleContext) Chat() *tele.Chat { return &tele.Chat{ID: testUser} }

func (f *fakeTeleContext) Text() string {
	if f.msg == nil {
		return ""
	}
	return f.msg.Text
}

func (f *fakeTeleContext) Get(key string) interface{} { return f.kv[key] }

func (f *fakeTeleContext) Set(key string, val interface{}) { f.kv[key] = val }

func (f *fakeTeleContext) Send(what interface{}, _ ...interface{}) error {
	f.sent = append(f.sent, what)
	return nil
}

func newTestHandlers(t *testing.T) (*Handlers, *Editor) {
	t.Helper()
	e, _ := newTestEditor(t)
	return NewHandlers(e, imageops.Capabilities{}), e
}

// An image sent as a document while the editor is waiting for parameter
// input must become the new working copy, not be parsed as the answer.
func TestDocumentImageSupersedesPendingQuestion(t *testing.T) {
	h, e := newTestHandlers(t)
	prev := attachImage(t, e)

	_, _, err := e.SelectOperation(context.Background(), testUser, imageops.OpResize)
	require.NoError(t, err)
	require.Equal(t, StateAwaitingDimensions, e.Sessions().GetState(testUser))

	msg := &tele.Message{
		Document: &tele.Document{
			File:     tele.File{FileID: "doc-1"},
			FileName: "scan.jpg",
			MIME:     "image/jpeg",
		},
	}
	c := newFakeTeleContext(msg, []byte("fresh image bytes"))

	require.NoError(t, h.handleAwaitedInput(c))

	assert.Equal(t, state.StateIdle, e.Sessions().GetState(testUser))
	current, ok := e.Sessions().Resource(testUser)
	require.True(t, ok)
	require.IsType(t, (*artifact.File)(nil), current)
	assert.NotEqual(t, prev.ID(), current.(*artifact.File).ID())

	// The operations menu is offered for the new image.
	require.NotEmpty(t, c.sent)
	assert.Equal(t, "Got it. What should I do with this image?", c.sent[len(c.sent)-1])
}

func TestAwaitedTextStillAnswersQuestion(t *testing.T) {
	h, e := newTestHandlers(t)
	attachImage(t, e)

	_, _, err := e.SelectOperation(context.Background(), testUser, imageops.OpResize)
	require.NoError(t, err)

	c := newFakeTeleContext(&tele.Message{Text: "800x600"}, nil)
	require.NoError(t, h.handleAwaitedInput(c))
	assert.Equal(t, state.StateIdle, e.Sessions().GetState(testUser))
}
