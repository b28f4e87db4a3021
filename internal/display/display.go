// Package display provides the terminal UI using Bubble Tea.
//
// The [UI] type renders a status bar for the cooking session and an
// input prompt at the bottom of the terminal. All application output is
// printed above the rendered area via Program.Println / Printf, ensuring
// concurrent writes never garble the display.
package display

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ahmedmed7t/smartcookly/internal/domain"
	"github.com/ahmedmed7t/smartcookly/internal/timer"
)

// ── Styles ───────────────────────────────────────────────────────

var (
	barBg = lipgloss.NewStyle().
		Background(lipgloss.Color("#27272a")).
		Foreground(lipgloss.Color("#a1a1aa"))

	timerRunStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a"))

	timerDoneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5"))

	timerPendingStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#71717a")).
				Italic(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa"))

	sepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#52525b"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// BannerStyle is the muted slate used for the startup banner.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	chatStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	stepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0"))

	primaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	secondaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	urgentOutputStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#fca5a5"))

	userInputEchoStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a1a1aa"))
)

const promptText = "cook> "

// StateSource is what the UI observes. *engine.Controller satisfies it.
type StateSource interface {
	Subscribe() (<-chan domain.SessionState, func())
}

// ── UI ───────────────────────────────────────────────────────────

// UI manages the terminal through Bubble Tea.
//
// Call [NewUI] then [UI.Run] (blocking). Other goroutines may
// safely call [UI.Println], [UI.Printf], and read from
// [UI.InputChan] at any time after [UI.WaitReady] returns.
type UI struct {
	program *tea.Program
	source  StateSource
	inputCh chan string
	readyCh chan struct{}
	quitCh  chan struct{}
	done    atomic.Bool
}

// NewUI creates the display. Call Run() to start.
func NewUI(source StateSource) *UI {
	return &UI{
		source:  source,
		inputCh: make(chan string, 16),
		readyCh: make(chan struct{}),
		quitCh:  make(chan struct{}),
	}
}

// Println prints a line above the prompt. Thread-safe.
// If the program hasn't started yet, falls back to fmt.Println.
func (u *UI) Println(a ...interface{}) {
	if u.program != nil && !u.done.Load() {
		u.program.Println(a...)
	} else {
		fmt.Println(a...)
	}
}

// Printf prints formatted text above the prompt. Thread-safe.
// The output is printed on its own line.
func (u *UI) Printf(format string, a ...interface{}) {
	if u.program != nil && !u.done.Load() {
		u.program.Printf(format, a...)
	} else {
		fmt.Printf(format+"\n", a...)
	}
}

// InputChan returns completed user-input lines. Key shortcuts arrive here
// as the equivalent typed command.
func (u *UI) InputChan() <-chan string { return u.inputCh }

// PrintChat prints a conversational assistant line.
func (u *UI) PrintChat(text string) {
	u.Println(chatStyle.Render("  " + text))
}

// PrintStep prints a step header like "Step 2/8 (~5m)".
func (u *UI) PrintStep(text string) {
	u.Println(stepStyle.Render("  " + text))
}

// PrintInstruction prints the step's main instruction text.
func (u *UI) PrintInstruction(text string) {
	u.Println(primaryStyle.Render("  " + text))
}

// PrintHint prints a secondary/dimmed line.
func (u *UI) PrintHint(text string) {
	u.Println(secondaryStyle.Render("  " + text))
}

// PrintUrgent prints an urgent/error line.
func (u *UI) PrintUrgent(text string) {
	u.Println(urgentOutputStyle.Render("  " + text))
}

// PrintUserInput echoes the user's typed command into the scrollback.
func (u *UI) PrintUserInput(text string) {
	u.Println(promptStyle.Render(strings.TrimSpace(promptText)) + " " + userInputEchoStyle.Render(text))
}

// WaitReady blocks until the Bubble Tea event loop is running.
func (u *UI) WaitReady() { <-u.readyCh }

// Quit tells Bubble Tea to exit.
func (u *UI) Quit() {
	if u.program != nil {
		u.program.Quit()
	}
}

// QuitChan is closed when Run returns.
func (u *UI) QuitChan() <-chan struct{} { return u.quitCh }

// Run starts the Bubble Tea event loop. Blocks until quit.
func (u *UI) Run() error {
	states, cancel := u.source.Subscribe()
	defer cancel()

	m := newModel(states, u.inputCh, u.readyCh, u.PrintUserInput)
	u.program = tea.NewProgram(m)
	_, err := u.program.Run()
	u.done.Store(true)
	close(u.quitCh)
	return err
}

// ── Key bindings ─────────────────────────────────────────────────

type keyMap struct {
	Quit     key.Binding
	Submit   key.Binding
	Next     key.Binding
	Previous key.Binding
	Timer    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Next: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "next"),
		),
		Previous: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("ctrl+b", "back"),
		),
		Timer: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "timer"),
		),
	}
}

func (k keyMap) shortcuts() []key.Binding {
	return []key.Binding{k.Next, k.Previous, k.Timer, k.Quit}
}

// ── Bubble Tea model ─────────────────────────────────────────────

// stateMsg carries a session state from the subscription.
type stateMsg struct{ state domain.SessionState }

// closedMsg reports that the subscription ended.
type closedMsg struct{}

type model struct {
	states   <-chan domain.SessionState
	state    domain.SessionState
	input    textinput.Model
	spinner  spinner.Model
	progress progress.Model
	keys     keyMap
	inputCh  chan<- string
	readyCh  chan struct{}
	echoFn   func(string) // prints user input into scrollback
	width    int
}

func newModel(states <-chan domain.SessionState, inputCh chan<- string, readyCh chan struct{}, echoFn func(string)) model {
	ti := textinput.New()
	// Use a plain-text prompt so the textinput width math stays correct.
	// Lipgloss-styled prompts add invisible ANSI bytes that break the
	// internal offset/scroll calculations for long input.
	ti.Prompt = promptText
	ti.PromptStyle = promptStyle
	ti.TextStyle = userInputEchoStyle
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60 // updated on first WindowSizeMsg

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = timerRunStyle

	pb := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	pb.Width = 20

	if echoFn == nil {
		echoFn = func(string) {}
	}

	return model{
		states:   states,
		state:    domain.Idle{},
		input:    ti,
		spinner:  sp,
		progress: pb,
		keys:     defaultKeyMap(),
		inputCh:  inputCh,
		readyCh:  readyCh,
		echoFn:   echoFn,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		signalReady(m.readyCh),
		waitForState(m.states),
	)
}

func signalReady(ch chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		close(ch)
		return nil
	}
}

// waitForState blocks on the subscription until the next state.
func waitForState(ch <-chan domain.SessionState) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return closedMsg{}
		}
		return stateMsg{state: s}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Submit):
			v := m.input.Value()
			m.input.Reset()
			if strings.TrimSpace(v) == "" {
				return m, nil
			}
			m.inputCh <- v
			// Echo runs outside Update so it won't deadlock on msgs.
			echoFn := m.echoFn
			return m, func() tea.Msg {
				echoFn(v)
				return nil
			}
		case key.Matches(msg, m.keys.Next):
			return m, m.send("next")
		case key.Matches(msg, m.keys.Previous):
			return m, m.send("back")
		case key.Matches(msg, m.keys.Timer):
			return m, m.send(m.timerShortcut())
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		// Let the text input use the full width minus the prompt.
		if msg.Width > len(promptText) {
			m.input.Width = msg.Width - len(promptText)
		}
		if w := msg.Width / 4; w > 10 {
			m.progress.Width = w
		}
		return m, nil

	case stateMsg:
		m.state = msg.state
		return m, tea.Batch(waitForState(m.states), tea.SetWindowTitle(m.titleStr()))

	case closedMsg:
		m.states = nil
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// send queues a shortcut command without echoing it.
func (m model) send(text string) tea.Cmd {
	if text == "" {
		return nil
	}
	select {
	case m.inputCh <- text:
	default:
	}
	return nil
}

// timerShortcut picks the timer action that makes sense right now.
func (m model) timerShortcut() string {
	r, ok := m.state.(domain.Ready)
	if !ok {
		return ""
	}
	switch {
	case r.Timer.Running:
		return "pause"
	case r.Timer.RemainingSeconds > 0:
		return "resume"
	case currentHasTimer(r):
		return "start timer"
	default:
		return ""
	}
}

func (m model) titleStr() string {
	switch s := m.state.(type) {
	case domain.Ready:
		title := fmt.Sprintf("SmartCookly | %s %d/%d", s.RecipeName, s.Index+1, len(s.Steps))
		switch {
		case s.Timer.Finished:
			title += " | DONE!"
		case s.Timer.Running || s.Timer.RemainingSeconds > 0:
			title += " | " + timer.FormatClock(s.Timer.RemainingSeconds)
		}
		return title
	case domain.Loading:
		return "SmartCookly | loading " + s.RecipeName
	default:
		return "SmartCookly"
	}
}

func (m model) View() string {
	var b strings.Builder

	if bar := m.renderBar(); bar != "" {
		b.WriteString(bar)
		b.WriteByte('\n')
	}

	// Blank line before prompt for visual separation.
	b.WriteByte('\n')
	b.WriteString(m.input.View())
	return b.String()
}

func (m model) renderBar() string {
	var parts []string

	switch s := m.state.(type) {
	case domain.Idle:
		return ""
	case domain.Loading:
		parts = append(parts, m.spinner.View()+labelStyle.Render(" Preparing steps for "+s.RecipeName))
	case domain.Failed:
		parts = append(parts,
			timerDoneStyle.Render(s.Message),
			timerPendingStyle.Render("type 'retry' to try again"))
	case domain.Empty:
		parts = append(parts, timerPendingStyle.Render("No steps for "+s.RecipeName))
	case domain.Complete:
		parts = append(parts, timerRunStyle.Render(fmt.Sprintf("%s complete (%d steps)", s.RecipeName, s.StepCount)))
	case domain.Ready:
		parts = append(parts,
			labelStyle.Render(fmt.Sprintf("%s  Step %d/%d ", s.RecipeName, s.Index+1, len(s.Steps)))+
				m.progress.ViewAs(s.Progress()))
		if t := renderTimer(s); t != "" {
			parts = append(parts, t)
		}
		parts = append(parts, timerPendingStyle.Render(m.hints(s)))
	}

	content := " " + strings.Join(parts, sepStyle.Render("  │  ")) + " "

	w := m.width
	if w <= 0 {
		w = 80
	}
	return barBg.Width(w).Render(content)
}

func currentHasTimer(r domain.Ready) bool {
	step, ok := r.CurrentStep()
	return ok && step.HasTimer()
}

func renderTimer(s domain.Ready) string {
	step, _ := s.CurrentStep()
	switch {
	case s.Timer.Finished:
		return timerDoneStyle.Render("Timer: DONE!")
	case s.Timer.Running:
		return labelStyle.Render("Timer: ") + timerRunStyle.Render(timer.FormatClock(s.Timer.RemainingSeconds))
	case s.Timer.RemainingSeconds > 0:
		return labelStyle.Render("Timer: ") + timerPendingStyle.Render(timer.FormatClock(s.Timer.RemainingSeconds)+" paused")
	case step.HasTimer():
		return timerPendingStyle.Render(fmt.Sprintf("%d min timer available", step.TimeMinutes))
	default:
		return ""
	}
}

func (m model) hints(s domain.Ready) string {
	var h []string
	for _, b := range m.keys.shortcuts() {
		help := b.Help()
		desc := help.Desc
		if b.Help().Key == m.keys.Next.Help().Key && s.IsLast() {
			desc = "finish"
		}
		h = append(h, help.Key+" "+desc)
	}
	return strings.Join(h, " · ")
}
