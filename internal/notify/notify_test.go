package notify_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartdiet/smartdiet/internal/notify"
)

type recorder struct {
	got []notify.Message
	err error
}

func (r *recorder) Notify(_ context.Context, msg notify.Message) error {
	r.got = append(r.got, msg)
	return r.err
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewLogNotifier(zerolog.New(&buf))

	require.NoError(t, n.Notify(context.Background(), notify.Message{Title: "Ketosis (Mild)", Body: "12h in", Kind: "stage_change"}))

	assert.Contains(t, buf.String(), `"title":"Ketosis (Mild)"`)
	assert.Contains(t, buf.String(), `"kind":"stage_change"`)
}

func TestDesktopNotifier(t *testing.T) {
	n := notify.NewDesktopNotifier("icon.png")
	var title, body, icon string
	n.SetSend(func(tt, b, i string) error {
		title, body, icon = tt, b, i
		return nil
	})

	require.NoError(t, n.Notify(context.Background(), notify.Message{Title: "Reset", Body: "8h in"}))
	assert.Equal(t, "Reset", title)
	assert.Equal(t, "8h in", body)
	assert.Equal(t, "icon.png", icon)
}

func TestDesktopNotifier_CanceledContext(t *testing.T) {
	n := notify.NewDesktopNotifier("")
	called := false
	n.SetSend(func(string, string, string) error {
		called = true
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, n.Notify(ctx, notify.Message{}), context.Canceled)
	assert.False(t, called)
}

func TestMulti_DeliversToAllAndJoinsErrors(t *testing.T) {
	failing := &recorder{err: errors.New("no display")}
	ok := &recorder{}

	err := notify.Multi{failing, nil, ok}.Notify(context.Background(), notify.Message{Title: "x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no display")
	assert.Len(t, failing.got, 1)
	assert.Len(t, ok.got, 1)
}
