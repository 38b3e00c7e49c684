package ui

import (
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestChatLinesCountsConcurrentAdds(t *testing.T) {
	screen := NewSessionUI("room-1", SessionHooks{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				screen.AddChat("peer: hi")
			}
		}()
	}
	wg.Wait()

	if got := screen.ChatLines(); got != 200 {
		t.Errorf("chat lines = %d, want 200", got)
	}
}

func TestChatLinesCountsSentMessages(t *testing.T) {
	var sent []string
	screen := NewSessionUI("room-1", SessionHooks{
		SendChat: func(text string) error {
			sent = append(sent, text)
			return nil
		},
	})

	m := screen.model
	m.typing = true
	m.input.Focus()
	m.input.SetValue("hello there")
	m.updateTyping(tea.KeyMsg{Type: tea.KeyEnter})

	if len(sent) != 1 || sent[0] != "hello there" {
		t.Fatalf("sent = %v, want [hello there]", sent)
	}
	if got := screen.ChatLines(); got != 1 {
		t.Errorf("chat lines = %d, want 1", got)
	}
	if m.typing {
		t.Error("compose mode should end after send")
	}
}
