package console

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/pollchat/internal/chat"
	applog "github.com/vovakirdan/pollchat/internal/log"
	"github.com/vovakirdan/pollchat/internal/remote"
	"github.com/vovakirdan/pollchat/internal/remotetest"
	"github.com/vovakirdan/pollchat/internal/render"
	"github.com/vovakirdan/pollchat/internal/session"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type countingRefresher struct{ n atomic.Int32 }

func (r *countingRefresher) Trigger() { r.n.Add(1) }

var fixedNow = time.Date(2024, time.March, 1, 13, 5, 0, 0, time.UTC)

func setup(t *testing.T, input string) (*Console, *session.Session, *syncBuffer, *remotetest.Server) {
	t.Helper()

	srv := remotetest.NewServer(t)
	out := &syncBuffer{}
	c := New(strings.NewReader(input), out, false, applog.Nop())
	client := remote.NewClient(srv.MessagesURL(), time.Second, applog.Nop())
	s := session.New(client, c, session.Options{
		Location: time.UTC,
		Now:      func() time.Time { return fixedNow },
	}, applog.Nop())
	return c, s, out, srv
}

func TestReplacePrintsSnapshot(t *testing.T) {
	out := &syncBuffer{}
	c := New(strings.NewReader(""), out, false, applog.Nop())

	c.Replace([]render.Unit{
		{Mine: true, Text: "hi"},
		{Text: "hey", Caption: "Bob 1:05PM"},
	})
	c.ScrollToBottom()

	require.Equal(t, "---- 2 messages ----\n> hi\nhey\n  Bob 1:05PM\n", out.String())
}

func TestRunSendsLinesAndRefreshes(t *testing.T) {
	c, s, out, srv := setup(t, "hello\n   \n")
	s.SetName("Alice")

	require.NoError(t, c.Run(context.Background(), s, nil))

	require.Equal(t, []chat.Draft{{Sender: "Alice", Text: "hello", Timestamp: fixedNow.UnixMilli()}}, srv.Posts())
	require.Equal(t, 1, srv.Gets())
	require.Contains(t, out.String(), "---- 1 messages ----\n> hello\n")
}

func TestRunNameCommandAndBlankName(t *testing.T) {
	c, s, out, srv := setup(t, "ignored\n/name Bob\nnow sent\n")

	require.NoError(t, c.Run(context.Background(), s, nil))

	require.Equal(t, "Bob", s.Name())
	posts := srv.Posts()
	require.Len(t, posts, 1)
	require.Equal(t, "now sent", posts[0].Text)
	require.Contains(t, out.String(), `name set to "Bob"`)
}

func TestRunRefreshAndQuit(t *testing.T) {
	c, s, _, srv := setup(t, "/refresh\n/quit\nnever\n")
	s.SetName("Alice")
	r := &countingRefresher{}

	require.NoError(t, c.Run(context.Background(), s, r))
	require.EqualValues(t, 1, r.n.Load())
	require.Empty(t, srv.Posts())
}

func TestRunStopsOnCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	srv := remotetest.NewServer(t)
	c := New(pr, &syncBuffer{}, false, applog.Nop())
	s := session.New(remote.NewClient(srv.MessagesURL(), time.Second, applog.Nop()), c, session.Options{}, applog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, s, nil) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("console did not stop after cancel")
	}
}
