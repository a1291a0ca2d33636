// Package chat holds the wire records exchanged with the messages endpoint.
package chat

import "time"

// Message is one chat record as the remote service returns it.
// Timestamp is epoch milliseconds.
type Message struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Sender    string `json:"sender"`
	Timestamp int64  `json:"timestamp"`
}

// Time converts the timestamp into the viewer's location.
func (m Message) Time(loc *time.Location) time.Time {
	t := time.UnixMilli(m.Timestamp)
	if loc == nil {
		return t
	}
	return t.In(loc)
}

// Draft is the payload posted for a new message. The id is assigned server-side.
type Draft struct {
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// NewDraft stamps a payload with now in epoch milliseconds.
func NewDraft(sender, text string, now time.Time) Draft {
	return Draft{
		Sender:    sender,
		Text:      text,
		Timestamp: now.UnixMilli(),
	}
}
