package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/shipsim/internal/sim"
)

// Builder creates a ready-to-step simulator for a named scenario.
type Builder func(name string) (*sim.Simulator, error)

// Menu lists scenarios and opens the live view for the chosen one.
type Menu struct {
	items         []string
	info          map[string]string
	cursor        int
	build         Builder
	live          *Model
	err           error
	width, height int
}

func NewMenu(items []string, info map[string]string, build Builder) Menu {
	return Menu{items: items, info: info, build: build}
}

func (m Menu) Init() tea.Cmd { return nil }

func (m Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = size.Width, size.Height
	}
	if m.live != nil {
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
			m.live = nil
			return m, nil
		}
		next, cmd := m.live.Update(msg)
		live := next.(Model)
		m.live = &live
		return m, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "enter":
		if len(m.items) == 0 {
			return m, nil
		}
		name := m.items[m.cursor]
		s, err := m.build(name)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		live := NewModel(s, name)
		if m.width > 0 {
			next, _ := live.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
			live = next.(Model)
		}
		m.live = &live
		return m, live.Init()
	}
	return m, nil
}

func (m Menu) View() string {
	if m.live != nil {
		return m.live.View()
	}
	var s strings.Builder
	s.WriteString(headerStyle.Render("SHIPSIM SCENARIOS") + "\n")
	for i, name := range m.items {
		line := fmt.Sprintf("%-18s", name)
		if info := m.info[name]; info != "" {
			line += menuInfo.Render(info)
		}
		if i == m.cursor {
			s.WriteString(menuCursor.Render("> ") + menuItem.Render(line) + "\n")
		} else {
			s.WriteString("  " + line + "\n")
		}
	}
	if m.err != nil {
		s.WriteString("\n" + StatusError.Render(m.err.Error()) + "\n")
	}
	s.WriteString(helpStyle.Render("↑↓:Select Enter:Run Esc:Back Q:Quit"))
	return s.String()
}
