package app

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/pollchat/internal/chat"
	"github.com/vovakirdan/pollchat/internal/config"
	applog "github.com/vovakirdan/pollchat/internal/log"
	"github.com/vovakirdan/pollchat/internal/remotetest"
)

func newTestApp(t *testing.T, name string) (*App, *remotetest.Server) {
	t.Helper()

	srv := remotetest.NewServer(t)
	cfg := config.Default()
	cfg.Endpoint = srv.MessagesURL()
	cfg.Name = name
	cfg.Timezone = "UTC"
	cfg.PollInterval = 20 * time.Millisecond

	a, err := New(cfg, applog.Nop())
	require.NoError(t, err)
	return a, srv
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.PollInterval = 0

	_, err := New(cfg, applog.Nop())
	require.ErrorIs(t, err, config.ErrInvalid)
}

func TestListPrintsPanel(t *testing.T) {
	a, srv := newTestApp(t, "Alice")
	srv.Seed(t,
		chat.Message{Text: "hi", Sender: "Alice", Timestamp: 0},
		chat.Message{Text: "yo", Sender: "Bob", Timestamp: 13*3600*1000 + 5*60*1000},
	)

	var out bytes.Buffer
	require.NoError(t, a.List(context.Background(), &out, false))
	require.Equal(t, "> hi\nyo\n  Bob 1:05PM\n", out.String())
}

func TestListReportsFailure(t *testing.T) {
	a, srv := newTestApp(t, "Alice")
	srv.FailWith(http.StatusInternalServerError)

	var out bytes.Buffer
	require.Error(t, a.List(context.Background(), &out, false))
	require.Empty(t, out.String())
}

func TestSendPostsAndPrints(t *testing.T) {
	a, srv := newTestApp(t, "Alice")

	var out bytes.Buffer
	require.NoError(t, a.Send(context.Background(), " hello ", &out, false))

	posts := srv.Posts()
	require.Len(t, posts, 1)
	require.Equal(t, "Alice", posts[0].Sender)
	require.Equal(t, "hello", posts[0].Text)
	require.InDelta(t, time.Now().UnixMilli(), posts[0].Timestamp, float64(time.Minute.Milliseconds()))
	require.Equal(t, "> hello\n", out.String())
}

func TestSendWithoutNameIsRejectedLocally(t *testing.T) {
	a, srv := newTestApp(t, "")

	err := a.Send(context.Background(), "hello", &bytes.Buffer{}, false)
	require.ErrorIs(t, err, ErrNothingToSend)
	require.Empty(t, srv.Posts())
	require.Zero(t, srv.Gets())
}

func TestRunConsolePollsUntilInputCloses(t *testing.T) {
	a, srv := newTestApp(t, "Alice")
	srv.Seed(t, chat.Message{Text: "hi", Sender: "Bob", Timestamp: 0})

	pr, pw := io.Pipe()
	var out bytes.Buffer
	done := make(chan error, 1)
	go func() { done <- a.RunConsole(context.Background(), pr, &out, false) }()

	require.Eventually(t, func() bool { return srv.Gets() >= 2 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, pw.Close())

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("console did not return after input closed")
	}

	gets := srv.Gets()
	time.Sleep(60 * time.Millisecond)
	require.Equal(t, gets, srv.Gets(), "poller kept running after RunConsole returned")
	require.Contains(t, out.String(), "hi\n  Bob 12:00AM\n")
}
