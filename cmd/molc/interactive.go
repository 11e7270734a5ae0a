package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/molecule/codec"
	"github.com/wippyai/molecule/schema"
)

type modelState int

const (
	stateSelectType modelState = iota
	stateInputBuffer
	stateBrowse
)

// frame is one level of the browse path.
type frame struct {
	label    string
	view     codec.View
	selected int
}

type inspectModel struct {
	err        error
	schema     *schema.Schema
	compiler   *codec.Compiler
	current    *codec.CompiledType
	types      []string
	stack      []frame
	input      textinput.Model
	st         styles
	selected   int
	state      modelState
	compatible bool
}

func newInspectModel(s *schema.Schema, c *codec.Compiler, st styles, compatible bool) *inspectModel {
	m := &inspectModel{
		schema:     s,
		compiler:   c,
		st:         st,
		compatible: compatible,
		state:      stateSelectType,
	}
	for _, t := range s.Types() {
		m.types = append(m.types, t.Name())
	}
	ti := textinput.New()
	ti.Placeholder = "hex bytes"
	ti.Prompt = "buffer: "
	ti.Width = 64
	m.input = ti
	return m
}

// preselect jumps past the screens whose answers were given as flags.
func (m *inspectModel) preselect(typeName string, buf []byte) error {
	if typeName == "" {
		if buf != nil {
			return fmt.Errorf("a buffer needs --type")
		}
		return nil
	}
	found := false
	for i, name := range m.types {
		if name == typeName {
			m.selected = i
			found = true
		}
	}
	if !found {
		return fmt.Errorf("type %q not declared", typeName)
	}
	if err := m.chooseType(); err != nil {
		return err
	}
	if buf != nil {
		m.input.SetValue(hex.EncodeToString(buf))
		m.decode()
		if m.err != nil {
			return m.err
		}
	}
	return nil
}

func (m *inspectModel) chooseType() error {
	ct, err := m.compiler.CompileNamed(m.schema, m.types[m.selected])
	if err != nil {
		return err
	}
	m.current = ct
	m.state = stateInputBuffer
	m.input.Focus()
	return nil
}

func (m *inspectModel) decode() {
	buf, err := parseHex(m.input.Value())
	if err != nil {
		m.err = err
		return
	}
	v, err := codec.Decode(m.current, buf, m.compatible)
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.stack = []frame{{label: m.current.Name, view: v}}
	m.state = stateBrowse
	m.input.Blur()
}

func (m *inspectModel) top() *frame {
	return &m.stack[len(m.stack)-1]
}

func (m *inspectModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		if done, cmd := m.handleKey(key); done {
			return m, cmd
		}
	}

	if m.state == stateInputBuffer {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKey applies navigation keys. It reports whether the key was consumed.
func (m *inspectModel) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return true, tea.Quit

	case "q":
		if m.state != stateInputBuffer {
			return true, tea.Quit
		}

	case "up", "k":
		if msg.String() == "k" && m.state == stateInputBuffer {
			return false, nil
		}
		m.move(-1)
		return true, nil

	case "down", "j":
		if msg.String() == "j" && m.state == stateInputBuffer {
			return false, nil
		}
		m.move(1)
		return true, nil

	case "ctrl+d":
		if m.state == stateInputBuffer {
			m.input.SetValue(hex.EncodeToString(codec.Default(m.current)))
			return true, nil
		}

	case "enter":
		switch m.state {
		case stateSelectType:
			if len(m.types) > 0 {
				m.err = m.chooseType()
			}
		case stateInputBuffer:
			m.decode()
		case stateBrowse:
			kids := children(m.top().view)
			if sel := m.top().selected; sel < len(kids) {
				m.stack = append(m.stack, frame{label: kids[sel].label, view: kids[sel].view})
			}
		}
		return true, nil

	case "esc":
		switch m.state {
		case stateInputBuffer:
			m.state = stateSelectType
			m.input.Blur()
			m.err = nil
		case stateBrowse:
			if len(m.stack) > 1 {
				m.stack = m.stack[:len(m.stack)-1]
			} else {
				m.state = stateInputBuffer
				m.input.Focus()
			}
		}
		return true, nil
	}
	return false, nil
}

func (m *inspectModel) move(delta int) {
	switch m.state {
	case stateSelectType:
		m.selected = clamp(m.selected+delta, len(m.types))
	case stateBrowse:
		f := m.top()
		f.selected = clamp(f.selected+delta, len(children(f.view)))
	}
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func (m *inspectModel) View() string {
	var b strings.Builder

	b.WriteString(m.st.title.Render("Molecule Inspector"))
	if m.schema.Namespace != "" {
		b.WriteString(" ")
		b.WriteString(m.schema.Namespace)
	}
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectType:
		b.WriteString("Select a type:\n\n")
		for i, name := range m.types {
			if i == m.selected {
				b.WriteString(m.st.selected.Render("> " + name))
			} else {
				b.WriteString("  " + m.st.name.Render(name))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(m.st.help.Render("↑/↓ select • enter choose • q quit"))

	case stateInputBuffer:
		fmt.Fprintf(&b, "Buffer for %s %s\n\n", m.st.name.Render(m.current.Name), m.st.kind.Render(m.current.Kind.String()))
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		if m.err != nil {
			b.WriteString(m.st.err.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n\n")
		}
		b.WriteString(m.st.help.Render("enter decode • ctrl+d default value • esc back"))

	case stateBrowse:
		labels := make([]string, len(m.stack))
		for i, f := range m.stack {
			labels[i] = f.label
		}
		b.WriteString(m.st.kind.Render(strings.Join(labels, " › ")))
		b.WriteString("\n")
		f := m.top()
		b.WriteString(m.st.ok.Render(summary(f.view)))
		b.WriteString("\n\n")

		kids := children(f.view)
		if len(kids) == 0 {
			b.WriteString(m.st.help.Render("(no members)"))
			b.WriteString("\n")
		}
		for i, c := range kids {
			line := c.label + ": " + summary(c.view)
			if i == f.selected {
				b.WriteString(m.st.selected.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(m.st.help.Render("↑/↓ select • enter open • esc up • q quit"))
	}

	return b.String()
}

func runInspect(m *inspectModel) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
