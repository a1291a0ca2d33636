package session

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/pollchat/internal/chat"
	applog "github.com/vovakirdan/pollchat/internal/log"
	"github.com/vovakirdan/pollchat/internal/remote"
	"github.com/vovakirdan/pollchat/internal/remotetest"
	"github.com/vovakirdan/pollchat/internal/render"
)

var fixedNow = time.Date(2024, time.March, 1, 13, 5, 0, 0, time.UTC)

func newTestSession(t *testing.T) (*Session, *MemoryPanel, *remotetest.Server) {
	t.Helper()

	srv := remotetest.NewServer(t)
	client := remote.NewClient(srv.MessagesURL(), time.Second, applog.Nop())
	panel := NewMemoryPanel()
	s := New(client, panel, Options{
		Location: time.UTC,
		Now:      func() time.Time { return fixedNow },
	}, applog.Nop())
	return s, panel, srv
}

func TestUpdateMessagesOwnMessageHasNoCaption(t *testing.T) {
	s, panel, srv := newTestSession(t)
	srv.Seed(t, chat.Message{ID: 1, Text: "hi", Sender: "Alice", Timestamp: 1700000000000})
	s.SetName("Alice")
	s.SetDraft("hi")

	res := s.UpdateMessages(context.Background())
	require.NoError(t, res.Err)
	require.Equal(t, 1, res.Count)
	require.Equal(t, []render.Unit{{ID: 1, Mine: true, Text: "hi"}}, panel.Units())
	require.Equal(t, 0, panel.Offset())
}

func TestUpdateMessagesOneUnitPerMessageInServerOrder(t *testing.T) {
	s, panel, srv := newTestSession(t)
	srv.RespondRaw(`[
		{"id":9,"text":"late","sender":"Bob","timestamp":0},
		{"id":2,"text":"early","sender":"Alice","timestamp":46980000},
		{"id":5,"text":"mid","sender":"Carol","timestamp":82740000}
	]`)
	s.SetName("Alice")

	res := s.UpdateMessages(context.Background())
	require.NoError(t, res.Err)

	units := panel.Units()
	require.Len(t, units, 3)
	require.Equal(t, []int64{9, 2, 5}, []int64{units[0].ID, units[1].ID, units[2].ID})
	require.Equal(t, "Bob 12:00AM", units[0].Caption)
	require.True(t, units[1].Mine)
	require.Empty(t, units[1].Caption)
	require.Equal(t, "Carol 10:59PM", units[2].Caption)
	require.Equal(t, 2, panel.Offset())
}

func TestUpdateMessagesFailureDrawsEmptyPanel(t *testing.T) {
	s, panel, srv := newTestSession(t)
	srv.Seed(t, chat.Message{Text: "hi", Sender: "Bob", Timestamp: 1})

	require.NoError(t, s.UpdateMessages(context.Background()).Err)
	require.Len(t, panel.Units(), 1)

	srv.FailWith(http.StatusInternalServerError)
	res := s.UpdateMessages(context.Background())

	require.ErrorIs(t, res.Err, remote.ErrBadStatus)
	require.Zero(t, res.Count)
	require.Empty(t, panel.Units())
	require.Equal(t, 2, panel.Redraws())
}

func TestUpdateMessagesReclassifiesAfterRename(t *testing.T) {
	s, panel, srv := newTestSession(t)
	srv.Seed(t, chat.Message{Text: "hi", Sender: "Alice", Timestamp: 1})

	s.SetName("Alice")
	s.UpdateMessages(context.Background())
	require.True(t, panel.Units()[0].Mine)

	s.SetName("Alicia")
	s.UpdateMessages(context.Background())
	require.False(t, panel.Units()[0].Mine)
	require.Contains(t, panel.Units()[0].Caption, "Alice ")
}

func TestSendSkipsBlankInputs(t *testing.T) {
	tests := []struct {
		name  string
		user  string
		draft string
	}{
		{name: "empty name", user: "", draft: "hi"},
		{name: "whitespace name", user: "   ", draft: "hi"},
		{name: "empty text", user: "Alice", draft: ""},
		{name: "whitespace text", user: "Alice", draft: " \t\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, panel, srv := newTestSession(t)
			s.SetName(tt.user)
			s.SetDraft(tt.draft)

			res := s.Send(context.Background())
			require.True(t, res.Skipped)
			require.Empty(t, srv.Posts())
			require.Zero(t, srv.Gets())
			require.Equal(t, tt.draft, s.Draft())
			require.Zero(t, panel.Redraws())
		})
	}
}

func TestSendPostsTrimmedAndRefreshes(t *testing.T) {
	s, panel, srv := newTestSession(t)
	s.SetName("  Alice ")
	s.SetDraft(" hi there\n")

	res := s.Send(context.Background())
	require.False(t, res.Skipped)
	require.NoError(t, res.Err)
	require.NoError(t, res.Refresh.Err)

	want := chat.Draft{Sender: "Alice", Text: "hi there", Timestamp: fixedNow.UnixMilli()}
	require.Equal(t, want, res.Draft)
	require.Equal(t, []chat.Draft{want}, srv.Posts())
	require.Empty(t, s.Draft())
	require.Equal(t, 1, srv.Gets())

	// The stored sender is trimmed but the live name is not, so the echo reads as someone else's.
	units := panel.Units()
	require.Len(t, units, 1)
	require.False(t, units[0].Mine)
	require.Equal(t, "Alice 1:05PM", units[0].Caption)
}

func TestSendFailureStillClearsDraftAndRefreshes(t *testing.T) {
	s, panel, srv := newTestSession(t)
	s.SetName("Alice")
	s.SetDraft("hi")
	srv.FailWith(http.StatusBadGateway)

	res := s.Send(context.Background())
	require.False(t, res.Skipped)
	require.ErrorIs(t, res.Err, remote.ErrBadStatus)
	require.Error(t, res.Refresh.Err)
	require.Empty(t, s.Draft())
	require.Len(t, srv.Posts(), 1)
	require.Equal(t, 1, srv.Gets())
	require.Empty(t, panel.Units())
}

func TestPrepareSend(t *testing.T) {
	draft, ok := PrepareSend(" Bob ", " yo ", fixedNow)
	require.True(t, ok)
	require.Equal(t, chat.Draft{Sender: "Bob", Text: "yo", Timestamp: fixedNow.UnixMilli()}, draft)

	_, ok = PrepareSend("Bob", "   ", fixedNow)
	require.False(t, ok)
}
