// Package tui provides the interactive terminal list.
package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"todont/internal/controller"
	"todont/internal/output"
	"todont/internal/service"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	doneStyle   = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	footerStyle = lipgloss.NewStyle().Faint(true)
)

const (
	inputHelp = "enter: add  tab: list  esc: quit"
	listHelp  = "space: toggle  d: delete  r: refresh  a/tab: new item  q: quit"
)

// Run starts the terminal UI over svc. Controller options are applied after
// the UI's own change hook. Controller methods must only be called from
// commands, never from Update, since the hook sends to the program.
func Run(ctx context.Context, svc service.Service, opts ...controller.Option) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	var program *tea.Program
	hook := controller.WithOnChange(func(st controller.State) {
		program.Send(stateMsg(st))
	})
	ctrl := controller.New(svc, append([]controller.Option{hook}, opts...)...)

	program = tea.NewProgram(New(ctx, ctrl), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// stateMsg carries a controller snapshot into the update loop.
type stateMsg controller.State

// Model is the bubbletea model for the list.
type Model struct {
	ctx    context.Context
	ctrl   *controller.ListController
	input  textinput.Model
	state  controller.State
	cursor int

	// pending is the input submitted by the last enter; the input is
	// cleared once the controller accepts it.
	pending string
}

// New creates a model over ctrl with the input focused.
func New(ctx context.Context, ctrl *controller.ListController) *Model {
	in := textinput.New()
	in.Placeholder = "What needs doing?"
	in.CharLimit = 200
	in.Prompt = "+ "
	in.Focus()
	return &Model{
		ctx:   ctx,
		ctrl:  ctrl,
		input: in,
		state: ctrl.State(),
	}
}

// Init starts the controller's initial fetch.
func (m *Model) Init() tea.Cmd {
	done := m.ctrl.Start(m.ctx)
	return tea.Batch(textinput.Blink, func() tea.Msg {
		<-done
		return stateMsg(m.ctrl.State())
	})
}

// run executes op off the update loop and reports the resulting state.
func (m *Model) run(op func(context.Context)) tea.Cmd {
	return func() tea.Msg {
		op(m.ctx)
		return stateMsg(m.ctrl.State())
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		m.setState(controller.State(msg))
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.input.Focused() {
			return m.updateInput(msg)
		}
		return m.updateList(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "tab":
		m.input.Blur()
		return m, nil
	case "enter":
		desc := m.input.Value()
		if strings.TrimSpace(desc) == "" {
			return m, nil
		}
		m.pending = desc
		return m, m.run(func(ctx context.Context) {
			m.ctrl.SetNewItem(desc)
			m.ctrl.AddItem(ctx)
		})
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.state.Items)-1 {
			m.cursor++
		}
	case " ", "space", "x":
		if item, ok := m.selected(); ok {
			return m, m.run(func(ctx context.Context) { m.ctrl.CompleteItem(ctx, item) })
		}
	case "d":
		if item, ok := m.selected(); ok {
			return m, m.run(func(ctx context.Context) { m.ctrl.DeleteItem(ctx, item) })
		}
	case "r":
		return m, m.run(m.ctrl.GetItems)
	case "a", "tab":
		return m, m.input.Focus()
	}
	return m, nil
}

func (m *Model) selected() (service.Item, bool) {
	if m.cursor < 0 || m.cursor >= len(m.state.Items) {
		return service.Item{}, false
	}
	return m.state.Items[m.cursor], true
}

func (m *Model) setState(st controller.State) {
	m.state = st
	if m.pending != "" && st.NewItem == "" && !st.HasError() {
		if m.input.Value() == m.pending {
			m.input.SetValue("")
		}
		m.pending = ""
	}
	if m.cursor >= len(st.Items) {
		m.cursor = len(st.Items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// State returns the last state the model rendered.
func (m *Model) State() controller.State {
	return m.state
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("ToDont"))
	b.WriteString("\n\n")

	if m.state.HasError() {
		b.WriteString(errorStyle.Render("error: " + m.state.ErrorMsg))
		b.WriteString("\n\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if len(m.state.Items) == 0 {
		b.WriteString(footerStyle.Render("no items"))
		b.WriteString("\n")
	}
	for i, it := range m.state.Items {
		pointer := "  "
		if !m.input.Focused() && i == m.cursor {
			pointer = cursorStyle.Render("> ")
		}
		desc := output.NormalizeDesc(it.Desc)
		if it.Complete {
			desc = doneStyle.Render(desc)
		}
		fmt.Fprintf(&b, "%s%s %s\n", pointer, output.Mark(it.Complete), desc)
	}

	b.WriteString("\n")
	help := listHelp
	if m.input.Focused() {
		help = inputHelp
	}
	b.WriteString(footerStyle.Render(help))
	b.WriteString("\n")
	return b.String()
}
