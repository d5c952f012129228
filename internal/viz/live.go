package viz

import (
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/ltisim/internal/sim"
)

const (
	historyCapacity = 600
	tickInterval    = time.Second / 30
	tuneStep        = 1.05
	targetStep      = 0.1
)

// Tunable controllers expose parameters for live adjustment.
type Tunable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64)
}

type resetter interface {
	Reset()
}

type TickMsg time.Time

// Live steps a plant once per tick and renders its output history.
type Live struct {
	name       string
	plant      sim.Plant
	controller sim.Controller

	t       float64
	steps   int
	running bool
	err     error

	outputs [][]float64
	states  [][]float64
	inputs  [][]float64

	params        map[string]float64
	initialParams map[string]float64
	paramKeys     []string
	selected      int

	canvas *Canvas
}

func NewLive(name string, plant sim.Plant, controller sim.Controller) Live {
	params := make(map[string]float64)
	if t, ok := controller.(Tunable); ok {
		for k, v := range t.GetParams() {
			params[k] = v
		}
	}
	keys := make([]string, 0, len(params))
	initialParams := make(map[string]float64, len(params))
	for k, v := range params {
		keys = append(keys, k)
		initialParams[k] = v
	}
	slices.Sort(keys)

	return Live{
		name:          name,
		plant:         plant,
		controller:    controller,
		running:       true,
		outputs:       make([][]float64, 0, historyCapacity),
		states:        make([][]float64, 0, historyCapacity),
		inputs:        make([][]float64, 0, historyCapacity),
		params:        params,
		initialParams: initialParams,
		paramKeys:     keys,
		canvas:        NewCanvas(30, 10),
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Live) Init() tea.Cmd { return tick() }

func (m Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "s":
			if !m.running {
				m.step()
			}
		case "r":
			m.reset()
		case "tab":
			if len(m.paramKeys) > 0 {
				m.selected = (m.selected + 1) % len(m.paramKeys)
			}
		case "up", "k":
			m.adjustParam(true)
		case "down", "j":
			m.adjustParam(false)
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Live) step() {
	if m.err != nil {
		return
	}

	u := m.controller.Compute(m.plant.State(), m.plant.Output(), m.t)
	if err := m.plant.SetInput(u); err != nil {
		m.err = err
		m.running = false
		return
	}
	m.plant.Advance()
	m.steps++
	m.t = float64(m.steps) * m.plant.Dt()

	m.outputs = pushBounded(m.outputs, m.plant.Output())
	m.states = pushBounded(m.states, m.plant.State())
	m.inputs = pushBounded(m.inputs, m.plant.Input())
}

func pushBounded(hist [][]float64, v []float64) [][]float64 {
	hist = append(hist, v)
	if len(hist) > historyCapacity {
		hist = hist[1:]
	}
	return hist
}

// adjustParam scales gains by tuneStep and moves the setpoint by
// targetStep, so Target can cross zero.
func (m *Live) adjustParam(up bool) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	val := m.params[key]
	switch {
	case key == "Target" && up:
		val += targetStep
	case key == "Target":
		val -= targetStep
	case val == 0 && up:
		val = 1e-3
	case val == 0:
		val = -1e-3
	case up:
		val *= tuneStep
	default:
		val /= tuneStep
	}
	m.params[key] = val
	if t, ok := m.controller.(Tunable); ok {
		t.SetParam(key, val)
	}
}

func (m *Live) reset() {
	m.plant.Reset()
	if r, ok := m.controller.(resetter); ok {
		r.Reset()
	}
	m.t, m.steps, m.err = 0, 0, nil
	m.outputs = m.outputs[:0]
	m.states = m.states[:0]
	m.inputs = m.inputs[:0]
	for k, v := range m.initialParams {
		m.params[k] = v
		if t, ok := m.controller.(Tunable); ok {
			t.SetParam(k, v)
		}
	}
}

func (m Live) Steps() int           { return m.steps }
func (m Live) Time() float64        { return m.t }
func (m Live) Running() bool        { return m.running }
func (m Live) Err() error           { return m.err }
func (m Live) Outputs() [][]float64 { return m.outputs }

func (m Live) View() string {
	var s strings.Builder
	s.WriteString(Title.Render(strings.ToUpper(m.name)) + "  ")
	switch {
	case m.err != nil:
		s.WriteString(StatusError.Render("ERROR: " + m.err.Error()))
	case m.running:
		s.WriteString(StatusRunning.Render("RUNNING"))
	default:
		s.WriteString(StatusPaused.Render("PAUSED"))
	}
	s.WriteString("\n\n")

	var chart string
	if len(m.outputs) > 1 {
		cols := Columns(m.outputs)
		chart = asciigraph.PlotMany(cols,
			asciigraph.Height(10),
			asciigraph.Width(50),
			asciigraph.Caption("y(t)"),
		)
	}

	var stats strings.Builder
	stats.WriteString(MetricLabel.Render("time") + MetricValue.Render(fmt.Sprintf("%.3fs", m.t)) + "\n")
	stats.WriteString(MetricLabel.Render("step") + MetricValue.Render(fmt.Sprintf("%d", m.steps)) + "\n")
	writeVector(&stats, "u", m.plant.Input())
	writeVector(&stats, "x", m.plant.State())
	writeVector(&stats, "y", m.plant.Output())

	if len(m.paramKeys) > 0 {
		stats.WriteString("\nPARAMETERS\n")
		for i, k := range m.paramKeys {
			line := fmt.Sprintf("%-8s %.4g", k, m.params[k])
			if i == m.selected {
				stats.WriteString(Selected.Render("> "+line) + "\n")
			} else {
				stats.WriteString("  " + Subtle.Render(line) + "\n")
			}
		}
	}

	if shape := m.plant.Shape(); shape.NX >= 2 && len(m.states) > 1 {
		m.canvas.Clear()
		xs, ys := make([]float64, len(m.states)), make([]float64, len(m.states))
		for i, x := range m.states {
			xs[i], ys[i] = x[0], x[1]
		}
		m.canvas.Trace(xs, ys)
		stats.WriteString("\nx1 vs x0\n" + m.canvas.String())
	}

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, chart, "  ", Panel.Render(strings.TrimRight(stats.String(), "\n"))))
	s.WriteString("\n\n" + KeyHint.Render("space pause  s step  r reset  tab/↑/↓ tune  q quit"))
	return s.String()
}

func writeVector(b *strings.Builder, name string, v []float64) {
	for i, val := range v {
		b.WriteString(MetricLabel.Render(fmt.Sprintf("%s%d", name, i)) + fmt.Sprintf("%.5g", val) + "\n")
	}
}
