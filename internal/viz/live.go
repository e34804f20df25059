package viz

import (
	"errors"
	"fmt"
	"image"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/shipsim/internal/dynamo"
	"github.com/san-kum/shipsim/internal/guidance"
	"github.com/san-kum/shipsim/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 300
	trailCapacity   = 2000
	maxSpeed        = 64
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model steps a simulator live and draws it. Gains are tuned through the
// tracker's GetParams/SetParam.
type Model struct {
	sim           *sim.Simulator
	name          string
	width, height int
	canvas        *Canvas
	view          Viewport
	trail         []dynamo.Point
	last          dynamo.Sample
	running       bool
	err           error
	speed         int // simulator steps per frame
	params        map[string]float64
	initialParams map[string]float64
	initialGains  guidance.Params
	paramKeys     []string
	selected      int
	rudderHist    []float64
	xteHist       []float64
	recording     bool
	frames        []*image.Paletted
	gifPath       string
	message       string
	showHelp      bool
}

func NewModel(s *sim.Simulator, name string) Model {
	var tunable dynamo.Configurable = s.Tracker()
	params := tunable.GetParams()
	initialParams := make(map[string]float64, len(params))
	keys := make([]string, 0, len(params))
	for k, v := range params {
		keys = append(keys, k)
		initialParams[k] = v
	}
	sort.Strings(keys)

	c := NewCanvas(width, height)
	pts := append(dynamo.Path(nil), s.Path()...)
	pts = append(pts, s.Vessel().State.Pose().Point())

	return Model{
		sim:           s,
		name:          name,
		width:         width,
		height:        height,
		canvas:        c,
		view:          FitViewport(c, 0.08, pts...),
		trail:         make([]dynamo.Point, 0, trailCapacity),
		last:          s.Snapshot(),
		running:       true,
		speed:         2,
		params:        params,
		initialParams: initialParams,
		initialGains:  s.Tracker().Params,
		paramKeys:     keys,
		rudderHist:    make([]float64, 0, historyCapacity),
		xteHist:       make([]float64, 0, historyCapacity),
		gifPath:       "shipsim.gif",
	}
}

// SetGIFPath sets where the g key saves recordings.
func (m *Model) SetGIFPath(path string) { m.gifPath = path }

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "tab":
			m.cycleParam()
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		case "+", "=":
			m.speed = min(m.speed*2, maxSpeed)
		case "-", "_":
			m.speed = max(m.speed/2, 1)
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		// leave room for the stats panel
		w := max(msg.Width-52, 20)
		h := max(msg.Height-4, 8)
		if w != m.width || h != m.height {
			m.width, m.height = w, h
			m.canvas = NewCanvas(w, h)
			pts := append(dynamo.Path(nil), m.sim.Path()...)
			m.view = FitViewport(m.canvas, 0.08, append(pts, m.trail...)...)
		}
	case TickMsg:
		if m.running {
			m.advance()
		}
		m.draw()
		if m.recording {
			m.captureFrame()
		}
		return m, tick()
	}
	return m, nil
}

// advance runs up to speed simulator steps and pauses at the end of the
// path or on error.
func (m *Model) advance() {
	for i := 0; i < m.speed; i++ {
		if m.sim.Time() >= m.sim.Config().Duration {
			m.running = false
			m.message = "duration reached"
			return
		}
		sample, err := m.sim.Step()
		if errors.Is(err, dynamo.ErrPathExhausted) {
			m.running = false
			m.message = "path complete"
			return
		}
		if err != nil {
			m.running, m.err = false, err
			return
		}
		m.record(sample)
	}
}

func (m *Model) record(s dynamo.Sample) {
	m.last = s
	m.trail = appendCapped(m.trail, dynamo.Point{X: s.X, Y: s.Y}, trailCapacity)
	m.rudderHist = appendCapped(m.rudderHist, dynamo.Degrees(s.Rudder), historyCapacity)
	m.xteHist = appendCapped(m.xteHist, s.CrossTrack, historyCapacity)
}

func appendCapped[T any](s []T, v T, capacity int) []T {
	s = append(s, v)
	if len(s) > capacity {
		s = s[1:]
	}
	return s
}

func (m *Model) cycleParam() {
	if len(m.paramKeys) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.paramKeys)
}

// adjustParam scales the selected gain. Rejected values leave it unchanged.
func (m *Model) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	val := m.params[key] * factor
	if err := m.sim.Tracker().SetParam(key, val); err != nil {
		m.message = err.Error()
		return
	}
	m.params[key] = val
	m.message = ""
}

// reset restores the initial vessel, gains and history.
func (m *Model) reset() {
	for k, v := range m.initialParams {
		m.params[k] = v
	}
	m.sim.Tracker().Params = m.initialGains
	m.sim.Reset()
	m.trail = m.trail[:0]
	m.rudderHist = m.rudderHist[:0]
	m.xteHist = m.xteHist[:0]
	m.last = m.sim.Snapshot()
	m.err, m.message = nil, ""
	m.running = true
}

func (m *Model) draw() {
	m.canvas.Clear()
	m.canvas.DrawPolyline(m.view, m.sim.Path())
	for _, p := range m.trail {
		m.canvas.Set(m.view.Project(p))
	}
	if t := m.last.Target; t < len(m.sim.Path()) {
		x, y := m.view.Project(m.sim.Path()[t])
		m.canvas.Unset(x, y)
		m.canvas.Set(x+1, y)
		m.canvas.Set(x-1, y)
		m.canvas.Set(x, y+1)
		m.canvas.Set(x, y-1)
	}
	pose := dynamo.Pose{X: m.last.X, Y: m.last.Y, Heading: m.last.Heading}
	m.canvas.DrawVessel(m.view, pose, 8/m.view.Scale)
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return StatusError.Render("ERROR")
	case m.running:
		return StatusRunning.Render("RUNNING")
	case m.message == "path complete":
		return StatusRunning.Render("COMPLETE")
	}
	return StatusPaused.Render("PAUSED")
}

func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(m.status())
	if m.recording {
		s.WriteString(" " + StatusRecording.Render("REC"))
	}
	s.WriteString(fmt.Sprintf("  x%d\n\n", m.speed))

	if len(m.xteHist) > 1 {
		chart := asciigraph.Plot(m.xteHist, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Cross-track (m)"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	if len(m.rudderHist) > 1 {
		chart := asciigraph.Plot(m.rudderHist, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Rudder (deg)"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	mode := "tracking"
	if m.last.Turning {
		mode = "turning"
	}
	rows := [][2]string{
		{"Time", fmt.Sprintf("%.1fs", m.last.Time)},
		{"Position", fmt.Sprintf("%.1f, %.1f", m.last.X, m.last.Y)},
		{"Heading", fmt.Sprintf("%.1f°", dynamo.Degrees(m.last.Heading))},
		{"Desired", fmt.Sprintf("%.1f°", dynamo.Degrees(m.last.DesiredHeading))},
		{"Rudder", fmt.Sprintf("%+.1f°", dynamo.Degrees(m.last.Rudder))},
		{"XTE", fmt.Sprintf("%+.2f m", m.last.CrossTrack)},
		{"Mode", mode},
		{"Waypoint", fmt.Sprintf("%d/%d", m.last.Target, len(m.sim.Path())-1)},
	}
	for _, r := range rows {
		s.WriteString(labelStyle.Render(r[0]) + valueStyle.Render(r[1]) + "\n")
	}

	s.WriteString("\nGAINS\n")
	for i, k := range m.paramKeys {
		line := fmt.Sprintf("%-14s %.4g", k, m.params[k])
		if i == m.selected {
			s.WriteString(activeParamStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + labelStyle.Render(line) + "\n")
		}
	}
	if m.err != nil {
		s.WriteString("\n" + StatusError.Render(m.err.Error()) + "\n")
	} else if m.message != "" {
		s.WriteString("\n" + valueStyle.Render(m.message) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause R:Reset Q:Quit\nTab/↑↓:Tune +/-:Speed\nG:Record ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

const helpOverlay = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Reset vessel and gains   ║
║  Q        - Quit                     ║
║  Tab      - Cycle gains              ║
║  Up/K     - Increase gain (+5%)      ║
║  Down/J   - Decrease gain (-5%)      ║
║  +/-      - Simulation speed         ║
║  G        - Toggle GIF recording     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`
