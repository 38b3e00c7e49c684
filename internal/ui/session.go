package ui

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const chatHistory = 8

// SessionHooks are the controls the session screen drives. Each hook runs on
// the UI goroutine, so implementations should return quickly.
type SessionHooks struct {
	StartCapture func() error
	StopCapture  func()
	ToggleAudio  func(enable bool) error
	ToggleVideo  func(enable bool) error
	SendChat     func(text string) error
}

type sessionUpdate struct {
	status    string
	connected *bool
	capture   string
	chat      string
	errMsg    string
}

// SessionUI is the live session screen: status, chat and capture controls.
type SessionUI struct {
	program    *tea.Program
	model      *sessionModel
	updateChan chan sessionUpdate
	chatLines  *atomic.Int64
	wg         sync.WaitGroup
}

// NewSessionUI builds the screen for one room.
func NewSessionUI(roomID string, hooks SessionHooks) *SessionUI {
	updateChan := make(chan sessionUpdate, 100)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	input := textinput.New()
	input.Placeholder = "Type a message"
	input.CharLimit = 256
	input.Width = 40

	chatLines := new(atomic.Int64)
	model := &sessionModel{
		roomID:     roomID,
		hooks:      hooks,
		status:     "Connecting...",
		audioOn:    true,
		videoOn:    true,
		spinner:    s,
		input:      input,
		updateChan: updateChan,
		chatLines:  chatLines,
		startTime:  time.Now(),
	}

	return &SessionUI{model: model, updateChan: updateChan, chatLines: chatLines}
}

// Run blocks until the user quits the session screen.
func (ui *SessionUI) Run() error {
	ui.program = tea.NewProgram(ui.model)
	_, err := ui.program.Run()
	return err
}

// Quit stops the screen from outside the UI goroutine.
func (ui *SessionUI) Quit() {
	if ui.program != nil {
		ui.program.Quit()
	}
}

func (ui *SessionUI) push(update sessionUpdate) {
	select {
	case ui.updateChan <- update:
	default:
	}
}

func (ui *SessionUI) SetStatus(status string)  { ui.push(sessionUpdate{status: status}) }
func (ui *SessionUI) SetCapture(status string) { ui.push(sessionUpdate{capture: status}) }
func (ui *SessionUI) ReportError(msg string)   { ui.push(sessionUpdate{errMsg: msg}) }

// AddChat appends a received chat line. Safe from any goroutine.
func (ui *SessionUI) AddChat(line string) {
	ui.chatLines.Add(1)
	ui.push(sessionUpdate{chat: line})
}

// ChatLines reports how many chat messages were exchanged, received and sent.
func (ui *SessionUI) ChatLines() int {
	return int(ui.chatLines.Load())
}

func (ui *SessionUI) SetConnected(connected bool) {
	ui.push(sessionUpdate{connected: &connected})
}

// Elapsed reports how long the session screen has been up.
func (ui *SessionUI) Elapsed() time.Duration {
	return time.Since(ui.model.startTime)
}

type sessionModel struct {
	roomID string
	hooks  SessionHooks

	status    string
	connected bool
	capturing bool
	audioOn   bool
	videoOn   bool
	chat      []string
	lastErr   string

	spinner    spinner.Model
	input      textinput.Model
	typing     bool
	updateChan chan sessionUpdate
	chatLines  *atomic.Int64
	startTime  time.Time
	quitting   bool
}

func (m *sessionModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForUpdates())
}

func (m *sessionModel) listenForUpdates() tea.Cmd {
	return func() tea.Msg {
		return <-m.updateChan
	}
}

func (m *sessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.typing {
			return m.updateTyping(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "s":
			m.toggleCapture()
		case "a":
			if m.hooks.ToggleAudio != nil {
				if err := m.hooks.ToggleAudio(!m.audioOn); err == nil {
					m.audioOn = !m.audioOn
				} else {
					m.lastErr = err.Error()
				}
			}
		case "v":
			if m.hooks.ToggleVideo != nil {
				if err := m.hooks.ToggleVideo(!m.videoOn); err == nil {
					m.videoOn = !m.videoOn
				} else {
					m.lastErr = err.Error()
				}
			}
		case "m":
			m.typing = true
			m.input.Focus()
			return m, textinput.Blink
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case sessionUpdate:
		m.apply(msg)
		cmds = append(cmds, m.listenForUpdates())
	}

	return m, tea.Batch(cmds...)
}

func (m *sessionModel) updateTyping(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if text != "" && m.hooks.SendChat != nil {
			if err := m.hooks.SendChat(text); err != nil {
				m.lastErr = err.Error()
			} else {
				m.chatLines.Add(1)
				m.addChat("you: " + text)
			}
		}
		m.input.Reset()
		m.input.Blur()
		m.typing = false
		return m, nil
	case "esc":
		m.input.Reset()
		m.input.Blur()
		m.typing = false
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *sessionModel) toggleCapture() {
	if m.capturing {
		if m.hooks.StopCapture != nil {
			m.hooks.StopCapture()
		}
		m.capturing = false
		return
	}
	if m.hooks.StartCapture != nil {
		if err := m.hooks.StartCapture(); err != nil {
			m.lastErr = err.Error()
			return
		}
	}
	m.capturing = true
	m.audioOn = true
	m.videoOn = true
}

func (m *sessionModel) apply(update sessionUpdate) {
	if update.status != "" {
		m.status = update.status
	}
	if update.connected != nil {
		m.connected = *update.connected
	}
	if update.capture != "" {
		m.addChat(MutedStyle.Render("· " + update.capture))
	}
	if update.chat != "" {
		m.addChat(update.chat)
	}
	if update.errMsg != "" {
		m.lastErr = update.errMsg
	}
}

func (m *sessionModel) addChat(line string) {
	m.chat = append(m.chat, line)
	if len(m.chat) > chatHistory {
		m.chat = m.chat[len(m.chat)-chatHistory:]
	}
}

func (m *sessionModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(fmt.Sprintf("\n%s %s %s\n\n",
		IconScreen,
		TitleStyle.Render("ScreenBeam Session"),
		MutedStyle.Render(IconRoom+" "+m.roomID),
	))

	statusIcon := m.spinner.View()
	if m.connected {
		statusIcon = SuccessStyle.Render(IconConnect)
	}
	b.WriteString(fmt.Sprintf("%s %s\n", statusIcon, m.status))

	b.WriteString(fmt.Sprintf("   %s  %s  %s\n\n",
		indicator(IconScreen+" share", m.capturing),
		indicator(IconMic+" mic", m.capturing && m.audioOn),
		indicator("video", m.capturing && m.videoOn),
	))

	if len(m.chat) > 0 {
		b.WriteString(BoldStyle.Render(IconChat+" Chat") + "\n")
		for _, line := range m.chat {
			b.WriteString("  " + line + "\n")
		}
		b.WriteString("\n")
	}

	if m.lastErr != "" {
		b.WriteString(ErrorStyle.Render(IconError+" "+m.lastErr) + "\n\n")
	}

	if m.typing {
		b.WriteString(m.input.View() + "\n")
		b.WriteString(MutedStyle.Render("enter to send, esc to cancel"))
	} else {
		b.WriteString(MutedStyle.Render("s share · a mic · v video · m message · q quit"))
	}

	return b.String()
}

func indicator(label string, on bool) string {
	if on {
		return SuccessStyle.Render("● " + label)
	}
	return MutedStyle.Render("○ " + label)
}
