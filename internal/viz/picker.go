package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Picker lists systems by name and opens a Live view for the chosen one.
type Picker struct {
	names  []string
	cursor int
	open   func(name string) (Live, error)
	live   *Live
	err    error
}

func NewPicker(names []string, open func(name string) (Live, error)) Picker {
	return Picker{names: names, open: open}
}

func (p Picker) Init() tea.Cmd { return nil }

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.live != nil {
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
			p.live = nil
			return p, nil
		}
		next, cmd := p.live.Update(msg)
		live := next.(Live)
		p.live = &live
		return p, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.names)-1 {
			p.cursor++
		}
	case "enter":
		if len(p.names) == 0 {
			return p, nil
		}
		live, err := p.open(p.names[p.cursor])
		if err != nil {
			p.err = err
			return p, nil
		}
		p.err = nil
		p.live = &live
		return p, live.Init()
	}
	return p, nil
}

// Selected is the name under the cursor.
func (p Picker) Selected() string {
	if len(p.names) == 0 {
		return ""
	}
	return p.names[p.cursor]
}

// Active reports whether a Live view is open.
func (p Picker) Active() bool { return p.live != nil }

func (p Picker) View() string {
	if p.live != nil {
		return p.live.View() + "\n" + KeyHint.Render("esc back to list")
	}

	var b strings.Builder
	b.WriteString("\n  " + Title.Render("LTISIM") + "\n  " + Subtle.Render("state-space simulator") + "\n\n")
	for i, name := range p.names {
		if i == p.cursor {
			b.WriteString(fmt.Sprintf("  %s %s\n", Selected.Render("▸"), Selected.Render(name)))
		} else {
			b.WriteString(fmt.Sprintf("    %s\n", Subtle.Render(name)))
		}
	}
	if p.err != nil {
		b.WriteString("\n  " + StatusError.Render(p.err.Error()) + "\n")
	}
	b.WriteString("\n  " + KeyHint.Render("j/k navigate  enter open  q quit") + "\n")
	return b.String()
}
