package ui

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

// SessionSummary is the recap printed after a session ends.
type SessionSummary struct {
	RoomID    string
	Status    string
	Duration  time.Duration
	ChatLines int
}

// RenderSessionSummary prints the post-session recap table.
func RenderSessionSummary(summary SessionSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"Room", summary.RoomID},
		{"Status", summary.Status},
		{"Duration", summary.Duration.Round(time.Second).String()},
		{"Chat messages", summary.ChatLines},
	})
	t.Render()
}

// RenderRoomInfo prints the room banner shown before the peer joins.
func RenderRoomInfo(roomID, serverURL string) {
	content := fmt.Sprintf("%s Ready to share!\n\n%s Room ID:  %s\n%s Server:   %s",
		IconSuccess,
		IconRoom, BoldStyle.Foreground(Primary).Render(roomID),
		IconConnect, MutedStyle.Render(serverURL),
	)
	fmt.Println(SuccessBoxStyle.Render(content))
}
