// Package render turns message records into display units and draws them.
//
// Classification and formatting are pure functions of their inputs: the current name is
// passed in on every call rather than read from any UI state.
package render

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/vovakirdan/pollchat/internal/chat"
)

// Unit is one rendered message: a bubble, plus a caption line for other people's messages.
type Unit struct {
	ID      int64
	Mine    bool
	Text    string
	Caption string
}

// IsMine reports whether msg was authored by currentName. Exact match: no trimming, no case folding.
func IsMine(msg chat.Message, currentName string) bool {
	return msg.Sender == currentName
}

// FormatClock renders t on a 12-hour clock as H:MMAM or H:MMPM.
func FormatClock(t time.Time) string {
	hour := t.Hour()
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	hour %= 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d%s", hour, t.Minute(), suffix)
}

// FormatMessage builds the display unit for msg as seen by currentName in loc.
func FormatMessage(msg chat.Message, currentName string, loc *time.Location) Unit {
	unit := Unit{
		ID:   msg.ID,
		Mine: IsMine(msg, currentName),
		Text: msg.Text,
	}
	if !unit.Mine {
		unit.Caption = msg.Sender + " " + FormatClock(msg.Time(loc))
	}
	return unit
}

// FormatAll formats every message, keeping server order.
func FormatAll(msgs []chat.Message, currentName string, loc *time.Location) []Unit {
	return lo.Map(msgs, func(m chat.Message, _ int) Unit {
		return FormatMessage(m, currentName, loc)
	})
}
