package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// focus represents which panel/mode has keyboard input.
type focus int

const (
	focusState focus = iota
	focusMenu
	focusSelectTarget
	focusSelectControls
	focusInputParam
)

const exportPath = "circuit.qasm"

// keyMap is the main-view key bindings.
type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	Gate        key.Binding
	Rotate      key.Binding
	CNOT        key.Binding
	Toffoli     key.Binding
	Swap        key.Binding
	Measure     key.Binding
	AddQubit    key.Binding
	RemoveQubit key.Binding
	BitFlip     key.Binding
	PhaseFlip   key.Binding
	ToggleEC    key.Binding
	Correct     key.Binding
	Undo        key.Binding
	Reset       key.Binding
	Menu        key.Binding
	Custom      key.Binding
	Save        key.Binding
	Load        key.Binding
	Export      key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "prev qubit")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next qubit")),
		Gate:        key.NewBinding(key.WithKeys("h", "x", "y", "z", "s", "t"), key.WithHelp("h x y z s t", "gate")),
		Rotate:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rotation")),
		CNOT:        key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "CNOT")),
		Toffoli:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "Toffoli")),
		Swap:        key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "swap")),
		Measure:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "measure")),
		AddQubit:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "add qubit")),
		RemoveQubit: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "remove qubit")),
		BitFlip:     key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "bit flip")),
		PhaseFlip:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "phase flip")),
		ToggleEC:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "toggle correction")),
		Correct:     key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "correct")),
		Undo:        key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
		Reset:       key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("^R", "reset")),
		Menu:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "gate menu")),
		Custom:      key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "new custom gate")),
		Save:        key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("^S", "save session")),
		Load:        key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("^O", "load last session")),
		Export:      key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("^E", "export "+exportPath)),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Gate, k.Menu, k.Measure, k.Undo, k.Save, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.AddQubit, k.RemoveQubit},
		{k.Gate, k.Rotate, k.CNOT, k.Toffoli, k.Swap, k.Measure},
		{k.BitFlip, k.PhaseFlip, k.ToggleEC, k.Correct},
		{k.Undo, k.Reset, k.Menu, k.Custom},
		{k.Save, k.Load, k.Export, k.Help, k.Quit},
	}
}

type sessionSavedMsg struct {
	sess Session
	err  error
}

type sessionLoadedMsg struct {
	sess Session
	err  error
}

// Model represents the TUI application state. The engine owns the quantum
// state; the model keeps a copy of the latest snapshot for rendering.
type Model struct {
	engine    *Engine
	store     *SessionStore
	logger    *log.Logger
	state     QuantumState
	sessionID string

	// Circuit recorded from the gates applied so far.
	circuit Circuit
	marks   []int // circuit length before each applied transition

	cursorQubit int
	width       int
	height      int
	focus       focus
	keys        keyMap
	help        help.Model
	input       textinput.Model
	statusMsg   string

	// Menu state
	menuCat  int
	menuItem int

	// Target-selection state (for multi-qubit gates)
	pendingGate   string
	targetQubit   int
	controlQubits []int
}

// newModel builds the TUI around an engine. store may be nil, in which case
// session keys report that persistence is unavailable.
func newModel(engine *Engine, store *SessionStore, logger *log.Logger) Model {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.CharLimit = 120
	ti.Width = 40

	if logger == nil {
		logger = log.New(io.Discard)
	}

	m := Model{
		engine: engine,
		store:  store,
		logger: logger,
		state:  engine.State(),
		focus:  focusState,
		keys:   defaultKeyMap(),
		help:   help.New(),
		input:  ti,
	}
	m.syncCircuit()
	return m
}

// apply dispatches an intent and keeps the recorded circuit in step with the engine.
func (m *Model) apply(in Intent) {
	before := len(m.circuit.Gates)
	exact := m.engine.HasSnapshot()
	next, outcome := m.engine.Dispatch(in)
	m.state = next

	switch in.(type) {
	case UndoIntent:
		if outcome == OutcomeOK && !exact {
			// fallback reset every qubit; no recorded gate survives
			m.circuit = Circuit{}
			m.marks = nil
		} else if outcome == OutcomeOK && len(m.marks) > 0 {
			n := m.marks[len(m.marks)-1]
			m.marks = m.marks[:len(m.marks)-1]
			m.circuit.Gates = m.circuit.Gates[:n]
			m.circuit.Steps = n
		}
	case ResetIntent:
		m.circuit = Circuit{}
		m.marks = nil
	default:
		if outcome == OutcomeOK {
			m.marks = append(m.marks, before)
			m.record(in)
		}
	}
	m.syncCircuit()

	if outcome != OutcomeOK {
		m.statusMsg = fmt.Sprintf("No change: %s", outcome)
	}
	m.cursorQubit = min(m.cursorQubit, m.state.NumQubits()-1)
}

// record appends the circuit gate matching an applied intent. Custom gates,
// injected errors and correction have no QASM form and are not recorded.
func (m *Model) record(in Intent) {
	t := m.circuit.Steps
	switch in := in.(type) {
	case ApplyGateIntent:
		if kind, ok := ParseGateKind(in.Gate); ok {
			m.circuit.AddGate(kind.String(), in.Qubit, t)
		}
	case ApplyRotationIntent:
		m.circuit.AddRotation(in.Axis, in.Theta, in.Qubit, t)
	case ApplyCNOTIntent:
		m.circuit.AddControlled(in.Target, t, in.Control)
	case ApplyToffoliIntent:
		m.circuit.AddControlled(in.Target, t, in.Control1, in.Control2)
	case ApplySwapIntent:
		m.circuit.AddSwap(in.Qubit1, in.Qubit2, t)
	case MeasureIntent:
		m.circuit.AddMeasure(in.Qubit, t)
	}
}

// syncCircuit keeps the circuit register wide enough for the state and every recorded gate.
func (m *Model) syncCircuit() {
	n := m.state.NumQubits()
	for _, g := range m.circuit.Gates {
		for _, q := range g.qubits() {
			n = max(n, q+1)
		}
	}
	m.circuit.NumQubits = n
}

// selectMenuItem acts on the chosen gate menu entry.
func (m *Model) selectMenuItem(item menuItem) tea.Cmd {
	switch {
	case item.needsParams:
		return m.beginParamInput(item.gateType, item.paramHint.example)
	case item.gateType == GateTypeCNOT, item.gateType == GateTypeSwap:
		m.beginTargetSelect(item.gateType)
	case item.gateType == GateTypeToffoli:
		m.beginControlSelect()
	case item.gateType == GateTypeMeasure:
		m.apply(MeasureIntent{Qubit: m.cursorQubit})
		m.focus = focusState
	case item.gateType == itemBitFlip:
		m.apply(ApplyErrorIntent{Qubit: m.cursorQubit, Kind: ErrorBitFlip})
		m.focus = focusState
	case item.gateType == itemPhaseFlip:
		m.apply(ApplyErrorIntent{Qubit: m.cursorQubit, Kind: ErrorPhaseFlip})
		m.focus = focusState
	case strings.HasPrefix(item.gateType, customItemPref):
		m.apply(ApplyCustomGateIntent{Gate: strings.TrimPrefix(item.gateType, customItemPref), Qubit: m.cursorQubit})
		m.focus = focusState
	default:
		m.apply(ApplyGateIntent{Gate: item.gateType, Qubit: m.cursorQubit})
		m.focus = focusState
	}
	return nil
}

func (m *Model) beginParamInput(gateType, example string) tea.Cmd {
	m.pendingGate = gateType
	m.input.SetValue("")
	m.input.Placeholder = example
	m.focus = focusInputParam
	return m.input.Focus()
}

// firstFreeQubit returns the first qubit after from that is neither the cursor
// nor an already chosen control, wrapping around; -1 if none.
func (m *Model) firstFreeQubit(from int) int {
	n := m.state.NumQubits()
	for i := 1; i <= n; i++ {
		q := (from + i) % n
		if q != m.cursorQubit && !slicesContains(m.controlQubits, q) {
			return q
		}
	}
	return -1
}

func (m *Model) beginTargetSelect(gateType string) {
	if m.state.NumQubits() < 2 {
		m.statusMsg = fmt.Sprintf("%s needs at least 2 qubits", gateType)
		m.focus = focusState
		return
	}
	m.pendingGate = gateType
	m.controlQubits = nil
	m.targetQubit = m.firstFreeQubit(m.cursorQubit)
	m.focus = focusSelectTarget
}

func (m *Model) beginControlSelect() {
	if m.state.NumQubits() < 3 {
		m.statusMsg = "Toffoli needs at least 3 qubits"
		m.focus = focusState
		return
	}
	m.pendingGate = GateTypeToffoli
	m.controlQubits = nil
	m.targetQubit = m.firstFreeQubit(m.cursorQubit)
	m.focus = focusSelectControls
}

func (m *Model) clearPending() {
	m.pendingGate = ""
	m.controlQubits = nil
	m.input.Blur()
	m.input.SetValue("")
	m.focus = focusState
}

// moveSelection steps targetQubit by dir, skipping the cursor and chosen controls.
func (m *Model) moveSelection(dir int) {
	for next := m.targetQubit + dir; next >= 0 && next < m.state.NumQubits(); next += dir {
		if next != m.cursorQubit && !slicesContains(m.controlQubits, next) {
			m.targetQubit = next
			return
		}
	}
}

// confirmTarget applies the pending multi-qubit gate with the cursor as first operand.
func (m *Model) confirmTarget() {
	switch m.pendingGate {
	case GateTypeCNOT:
		m.apply(ApplyCNOTIntent{Control: m.cursorQubit, Target: m.targetQubit})
	case GateTypeSwap:
		m.apply(ApplySwapIntent{Qubit1: m.cursorQubit, Qubit2: m.targetQubit})
	case GateTypeToffoli:
		if len(m.controlQubits) == 1 {
			m.apply(ApplyToffoliIntent{Control1: m.cursorQubit, Control2: m.controlQubits[0], Target: m.targetQubit})
		}
	}
	m.clearPending()
}

// submitParam handles the text prompt for rotation angles and custom gate definitions.
func (m *Model) submitParam() {
	value := strings.TrimSpace(m.input.Value())
	if value == "" {
		value = m.input.Placeholder
	}
	switch m.pendingGate {
	case itemNewCustom:
		def, err := parseCustomGate(value)
		if err != nil {
			m.statusMsg = fmt.Sprintf("Invalid gate: %v", err)
			return
		}
		m.apply(AddCustomGateIntent{Gate: def})
	default:
		axis, ok := ParseAxis(m.pendingGate)
		if !ok {
			break
		}
		theta, err := parseAngle(value)
		if err != nil {
			m.statusMsg = fmt.Sprintf("Invalid parameter (%v); use numbers or pi expressions like pi/2, 3*pi/4", err)
			return
		}
		m.apply(ApplyRotationIntent{Axis: axis, Theta: theta, Qubit: m.cursorQubit})
	}
	m.clearPending()
}

func sessionName(s QuantumState) string {
	return fmt.Sprintf("%s · %d qubits", time.Now().Format("2006-01-02 15:04"), s.NumQubits())
}

// saveSessionCmd updates the current session, or creates one on first save.
func saveSessionCmd(store *SessionStore, id string, state QuantumState) tea.Cmd {
	return func() tea.Msg {
		if id != "" {
			err := store.Update(id, state)
			if err == nil {
				return sessionSavedMsg{sess: Session{ID: id, NumQubits: state.NumQubits(), State: state}}
			}
			if !errors.Is(err, ErrSessionNotFound) {
				return sessionSavedMsg{err: err}
			}
		}
		sess, err := store.Save(sessionName(state), state)
		return sessionSavedMsg{sess: sess, err: err}
	}
}

func loadLatestSessionCmd(store *SessionStore) tea.Cmd {
	return func() tea.Msg {
		sess, err := store.Latest()
		return sessionLoadedMsg{sess: sess, err: err}
	}
}

// ──────────────────────────── Init / Update ────────────────────────────

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width - 4

	case sessionSavedMsg:
		if msg.err != nil {
			m.logger.Error("save session", "err", msg.err)
			m.statusMsg = fmt.Sprintf("Save error: %v", msg.err)
			break
		}
		m.sessionID = msg.sess.ID
		m.logger.Info("session saved", "id", msg.sess.ID, "qubits", msg.sess.NumQubits)
		m.statusMsg = "Saved session " + shortID(msg.sess.ID)

	case sessionLoadedMsg:
		if msg.err != nil {
			m.logger.Warn("load session", "err", msg.err)
			m.statusMsg = fmt.Sprintf("Load error: %v", msg.err)
			break
		}
		m.engine.Restore(msg.sess.State)
		m.state = m.engine.State()
		m.sessionID = msg.sess.ID
		m.circuit = Circuit{}
		m.marks = nil
		m.cursorQubit = min(m.cursorQubit, m.state.NumQubits()-1)
		m.syncCircuit()
		m.logger.Info("session loaded", "id", msg.sess.ID, "qubits", m.state.NumQubits())
		m.statusMsg = fmt.Sprintf("Loaded session %s (%s)", shortID(msg.sess.ID), msg.sess.Name)

	case tea.KeyMsg:
		k := msg.String()
		m.statusMsg = ""

		if k == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.focus {
		case focusState:
			switch {
			case key.Matches(msg, m.keys.Quit):
				return m, tea.Quit
			case key.Matches(msg, m.keys.Up):
				if m.cursorQubit > 0 {
					m.cursorQubit--
				}
			case key.Matches(msg, m.keys.Down):
				if m.cursorQubit < m.state.NumQubits()-1 {
					m.cursorQubit++
				}
			case key.Matches(msg, m.keys.Gate):
				m.apply(ApplyGateIntent{Gate: strings.ToUpper(k), Qubit: m.cursorQubit})
			case key.Matches(msg, m.keys.Rotate):
				m.focus = focusMenu
				m.menuCat = 1
				m.menuItem = 0
			case key.Matches(msg, m.keys.CNOT):
				m.beginTargetSelect(GateTypeCNOT)
			case key.Matches(msg, m.keys.Toffoli):
				m.beginControlSelect()
			case key.Matches(msg, m.keys.Swap):
				m.beginTargetSelect(GateTypeSwap)
			case key.Matches(msg, m.keys.Measure):
				m.apply(MeasureIntent{Qubit: m.cursorQubit})
			case key.Matches(msg, m.keys.AddQubit):
				m.apply(AddQubitIntent{})
			case key.Matches(msg, m.keys.RemoveQubit):
				m.apply(RemoveQubitIntent{})
			case key.Matches(msg, m.keys.BitFlip):
				m.apply(ApplyErrorIntent{Qubit: m.cursorQubit, Kind: ErrorBitFlip})
			case key.Matches(msg, m.keys.PhaseFlip):
				m.apply(ApplyErrorIntent{Qubit: m.cursorQubit, Kind: ErrorPhaseFlip})
			case key.Matches(msg, m.keys.ToggleEC):
				m.apply(ToggleErrorCorrectionIntent{Enabled: !m.state.ErrorCorrectionEnabled})
			case key.Matches(msg, m.keys.Correct):
				m.apply(CorrectErrorsIntent{})
			case key.Matches(msg, m.keys.Undo):
				m.apply(UndoIntent{})
			case key.Matches(msg, m.keys.Reset):
				m.apply(ResetIntent{})
				m.cursorQubit = 0
			case key.Matches(msg, m.keys.Menu):
				m.focus = focusMenu
				m.menuCat = 0
				m.menuItem = 0
			case key.Matches(msg, m.keys.Custom):
				cmds = append(cmds, m.beginParamInput(itemNewCustom, "V 0 1 1 0"))
			case key.Matches(msg, m.keys.Save):
				if m.store == nil {
					m.statusMsg = "Session store unavailable"
					break
				}
				cmds = append(cmds, saveSessionCmd(m.store, m.sessionID, m.state))
			case key.Matches(msg, m.keys.Load):
				if m.store == nil {
					m.statusMsg = "Session store unavailable"
					break
				}
				cmds = append(cmds, loadLatestSessionCmd(m.store))
			case key.Matches(msg, m.keys.Export):
				if err := SaveCircuitFile(exportPath, &m.circuit); err != nil {
					m.statusMsg = fmt.Sprintf("Export error: %v", err)
				} else {
					m.statusMsg = "Saved " + exportPath
				}
			case key.Matches(msg, m.keys.Help):
				m.help.ShowAll = !m.help.ShowAll
			}

		case focusMenu:
			cats := menuCategories(m.state)
			switch k {
			case "esc":
				m.focus = focusState
			case "up", "k":
				if m.menuItem > 0 {
					m.menuItem--
				}
			case "down", "j":
				if m.menuItem < len(cats[m.menuCat].items)-1 {
					m.menuItem++
				}
			case "left", "h":
				if m.menuCat > 0 {
					m.menuCat--
					m.menuItem = 0
				}
			case "right", "l":
				if m.menuCat < len(cats)-1 {
					m.menuCat++
					m.menuItem = 0
				}
			case "enter":
				cmds = append(cmds, m.selectMenuItem(cats[m.menuCat].items[m.menuItem]))
			}

		case focusSelectTarget:
			switch k {
			case "esc":
				m.clearPending()
			case "up", "k":
				m.moveSelection(-1)
			case "down", "j":
				m.moveSelection(1)
			case "enter":
				m.confirmTarget()
			}

		case focusSelectControls:
			switch k {
			case "esc":
				m.clearPending()
			case "up", "k":
				m.moveSelection(-1)
			case "down", "j":
				m.moveSelection(1)
			case "enter":
				m.controlQubits = append(m.controlQubits, m.targetQubit)
				m.targetQubit = m.firstFreeQubit(m.targetQubit)
				m.focus = focusSelectTarget
			}

		case focusInputParam:
			switch k {
			case "esc":
				m.clearPending()
			case "enter":
				m.submitParam()
			default:
				var cmd tea.Cmd
				m.input, cmd = m.input.Update(msg)
				cmds = append(cmds, cmd)
			}
		}
	}

	return m, tea.Batch(cmds...)
}

// Helper function
func slicesContains(slice []int, val int) bool {
	for _, item := range slice {
		if item == val {
			return true
		}
	}
	return false
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	qasmWidth := max(m.width/3, 30)
	stateWidth := max(m.width-qasmWidth-4, 40)

	statePanel := m.renderStatePanel(stateWidth)
	qasmPanel := m.renderQASMPanel(qasmWidth, lipgloss.Height(statePanel)-2)
	circuitPanel := m.renderCircuitPanel(m.width - 2)
	infoPanel := m.renderInfoPanel(m.width - 2)
	controlsPanel := m.renderControlsPanel(m.width - 2)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, statePanel, qasmPanel)
	frame := lipgloss.JoinVertical(lipgloss.Left, topRow, circuitPanel, infoPanel, controlsPanel)

	switch m.focus {
	case focusMenu:
		frame = overlayAt(frame, m.renderMenu(), 2, 2)
	case focusInputParam:
		frame = overlayAt(frame, m.renderParamInput(), 2, 2)
	}

	return frame
}

// renderParamInput renders the text prompt overlay.
func (m Model) renderParamInput() string {
	var sb strings.Builder
	if m.pendingGate == itemNewCustom {
		sb.WriteString(titleStyle.Render("New Custom Gate"))
		sb.WriteString("\n\n")
		sb.WriteString(m.input.View())
		sb.WriteString("\n\n")
		sb.WriteString(dimStyle.Render("NAME a b c d, e.g. V 0 1 1 0 or SX 0.5+0.5i 0.5-0.5i 0.5-0.5i 0.5+0.5i"))
	} else {
		fmt.Fprintf(&sb, "%s", titleStyle.Render(fmt.Sprintf("%s angle for q[%d]", m.pendingGate, m.cursorQubit)))
		sb.WriteString("\n\n")
		sb.WriteString(m.input.View())
		sb.WriteString("\n\n")
		sb.WriteString(dimStyle.Render("Examples: pi/2, 3*pi/4, 1.57"))
	}
	return menuBorderStyle.Render(sb.String())
}
