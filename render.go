package main

import (
	"fmt"
	"math"
	"strings"
)

// ──────────────────────────── Rendering helpers ────────────────────────────

// padCenter centres a string within the given width.
func padCenter(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return string([]rune(s)[:width])
	}
	total := width - n
	left := total / 2
	right := total - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

// gateDisplayName returns a short display name for a gate type.
func gateDisplayName(gateType string) string {
	switch gateType {
	case GateTypeMeasure:
		return "M"
	default:
		return gateType
	}
}

// targetSymbol returns the wire symbol for the target qubit of a multi-qubit gate.
func targetSymbol(gateType string) string {
	if gateType == GateTypeSwap {
		return "×"
	}
	return "⊕"
}

// probBar draws P(0) in one colour and P(1) in another.
func probBar(prob0 float64) string {
	n0 := int(math.Round(prob0 * probBarW))
	n0 = min(max(n0, 0), probBarW)
	return probZeroStyle.Render(strings.Repeat("█", n0)) + probOneStyle.Render(strings.Repeat("█", probBarW-n0))
}

// ──────────────────────────── Cell rendering ────────────────────────────

// cellInfo describes what a circuit cell shows for one qubit at one step.
type cellInfo struct {
	gate        *CircuitGate
	isControl   bool
	isTarget    bool
	passThrough bool
	vertAbove   bool
	vertBelow   bool
}

// cellAt finds the gate, if any, drawn at (step, qubit).
func (c *Circuit) cellAt(step, qubit int) cellInfo {
	var info cellInfo
	for i := range c.Gates {
		g := &c.Gates[i]
		if g.Time != step {
			continue
		}
		qs := g.qubits()
		if len(qs) == 1 {
			if g.Qubit == qubit {
				info.gate = g
			}
			continue
		}
		lo, hi := qs[0], qs[0]
		for _, q := range qs {
			lo, hi = min(lo, q), max(hi, q)
		}
		if qubit < lo || qubit > hi {
			continue
		}
		info.gate = g
		info.vertAbove = qubit > lo
		info.vertBelow = qubit < hi
		switch {
		case slicesContains(g.Controls, qubit):
			info.isControl = true
		case qubit == g.Qubit, slicesContains(g.Targets, qubit):
			info.isTarget = true
		default:
			info.passThrough = true
		}
	}
	return info
}

// renderCell returns 3 lines (top, mid, bot) for a single cell.
// Each line is exactly cellW visual characters wide.
func renderCell(info cellInfo) (top, mid, bot string) {
	emptyRow := strings.Repeat(" ", cellW)
	halfW := cellW / 2
	vertRow := strings.Repeat(" ", halfW) + "│" + strings.Repeat(" ", cellW-halfW-1)
	dashL := (cellW - 1) / 2
	dashR := cellW - dashL - 1

	top, bot = emptyRow, emptyRow
	if info.vertAbove {
		top = vertRow
	}
	if info.vertBelow {
		bot = vertRow
	}

	switch {
	case info.gate == nil:
		mid = strings.Repeat("─", cellW)

	case info.passThrough:
		mid = strings.Repeat("─", dashL) + "┼" + strings.Repeat("─", dashR)

	case info.isControl:
		mid = strings.Repeat("─", dashL) + gateStyle.Render("●") + strings.Repeat("─", dashR)

	case info.isTarget:
		mid = strings.Repeat("─", dashL) + gateStyle.Render(targetSymbol(info.gate.Type)) + strings.Repeat("─", dashR)

	default:
		margin := (cellW - gateBoxW) / 2
		rightMargin := cellW - margin - gateBoxW
		name := padCenter(gateDisplayName(info.gate.Type), gateNameW)
		top = strings.Repeat(" ", margin) + gateStyle.Render("┌"+strings.Repeat("─", gateNameW)+"┐") + strings.Repeat(" ", rightMargin)
		mid = strings.Repeat("─", margin) + gateStyle.Render("┤"+name+"├") + strings.Repeat("─", rightMargin)
		bot = strings.Repeat(" ", margin) + gateStyle.Render("└"+strings.Repeat("─", gateNameW)+"┘") + strings.Repeat(" ", rightMargin)
	}
	return
}

// ──────────────────────────── Panel rendering ────────────────────────────

// qubitLabel renders q[i] with the cursor or selection highlight.
func (m Model) qubitLabel(qubit int) string {
	label := fmt.Sprintf("%-5s", fmt.Sprintf("q[%d]", qubit))
	selecting := m.focus == focusSelectTarget || m.focus == focusSelectControls
	switch {
	case qubit == m.cursorQubit:
		return cursorStyle.Render(label)
	case selecting && qubit == m.targetQubit:
		return targetSelectStyle.Render(label)
	case selecting && slicesContains(m.controlQubits, qubit):
		return activeGateStyle.Render(label)
	}
	return qubitLabelStyle.Render(label)
}

// renderStatePanel lists every qubit with its amplitudes, probabilities and Bloch vector.
func (m Model) renderStatePanel(width int) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Quantum State"))
	if m.state.ErrorCorrectionEnabled {
		sb.WriteString("  " + okTagStyle.Render("error correction on"))
	} else {
		sb.WriteString("  " + dimStyle.Render("error correction off"))
	}
	sb.WriteString("\n\n")

	for i, q := range m.state.Qubits {
		marker := "  "
		if i == m.cursorQubit {
			marker = cursorStyle.Render("▸ ")
		}
		fmt.Fprintf(&sb, "%s%s α=%-14s β=%-14s", marker, m.qubitLabel(i), formatComplex(q.Alpha), formatComplex(q.Beta))
		if q.Error != ErrorNone {
			sb.WriteString(errorTagStyle.Render("[" + q.Error.String() + "]"))
		}
		sb.WriteString("\n")

		p0, p1 := q.Probabilities()
		b := q.Bloch()
		fmt.Fprintf(&sb, "        %s %5.1f%% |0⟩ %5.1f%% |1⟩  %s\n",
			probBar(p0), p0*100, p1*100,
			dimStyle.Render(fmt.Sprintf("Bloch (%.2f, %.2f, %.2f)", cleanFloat(b.X), cleanFloat(b.Y), cleanFloat(b.Z))))
	}

	switch m.focus {
	case focusSelectTarget:
		fmt.Fprintf(&sb, "\n  %s  Select target qubit: %s", activeGateStyle.Render(m.pendingGate),
			targetSelectStyle.Render(fmt.Sprintf("q[%d]", m.targetQubit)))
		sb.WriteString(dimStyle.Render("   ↑↓ Move  Enter Confirm  Esc Cancel"))
	case focusSelectControls:
		fmt.Fprintf(&sb, "\n  %s  Select second control: %s", activeGateStyle.Render(m.pendingGate),
			targetSelectStyle.Render(fmt.Sprintf("q[%d]", m.targetQubit)))
		sb.WriteString(dimStyle.Render("   ↑↓ Move  Enter Confirm  Esc Cancel"))
	}

	return statePanelStyle.Width(width).Render(sb.String())
}

// renderCircuitPanel draws the gates recorded this session as a circuit grid,
// scrolled so the latest steps stay visible.
func (m Model) renderCircuitPanel(width int) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Circuit"))
	sb.WriteString("\n")

	if len(m.circuit.Gates) == 0 {
		sb.WriteString(dimStyle.Render("No gates recorded yet."))
		return circuitStyle.Width(width).Render(sb.String())
	}

	availWidth := width - labelVisualW - 4
	maxSteps := max(availWidth/cellW, 1)
	startStep := max(m.circuit.Steps-maxSteps, 0)
	endStep := min(startStep+maxSteps, m.circuit.Steps)

	if startStep > 0 {
		fmt.Fprintf(&sb, "  ◀ showing steps %d–%d\n", startStep, endStep-1)
	}

	// Step number header
	header := strings.Repeat(" ", labelVisualW)
	for step := startStep; step < endStep; step++ {
		header += dimStyle.Render(padCenter(fmt.Sprintf("%d", step), cellW))
	}
	sb.WriteString(header + "\n")

	for qubit := range m.circuit.NumQubits {
		topLine := strings.Repeat(" ", labelVisualW)
		midLine := m.qubitLabel(qubit) + "──"
		botLine := strings.Repeat(" ", labelVisualW)

		for step := startStep; step < endStep; step++ {
			top, mid, bot := renderCell(m.circuit.cellAt(step, qubit))
			topLine += top
			midLine += mid
			botLine += bot
		}

		sb.WriteString(topLine + "\n")
		sb.WriteString(midLine + "\n")
		sb.WriteString(botLine + "\n")
	}

	return circuitStyle.Width(width).Render(strings.TrimRight(sb.String(), "\n"))
}

// renderQASMPanel renders the QASM export of the recorded circuit.
func (m Model) renderQASMPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("OpenQASM"))
	sb.WriteString("\n\n")

	lines := strings.Split(strings.TrimRight(m.circuit.ToQASM(), "\n"), "\n")
	if room := height - 2; room > 0 && len(lines) > room {
		lines = append([]string{dimStyle.Render("…")}, lines[len(lines)-room+1:]...)
	}
	sb.WriteString(strings.Join(lines, "\n"))

	return qasmStyle.Width(width).Height(height).Render(sb.String())
}

// renderInfoPanel shows the explanation of the last action, recent history and suggestions.
func (m Model) renderInfoPanel(width int) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Explanation"))
	sb.WriteString("\n")
	sb.WriteString(Explain(m.state.LastAction()))
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "%s %s\n", titleStyle.Render("History"), dimStyle.Render(fmt.Sprintf("(%d)", len(m.state.History))))
	start := max(len(m.state.History)-historyLines, 0)
	for i := start; i < len(m.state.History); i++ {
		fmt.Fprintf(&sb, "%s %s\n", dimStyle.Render(fmt.Sprintf("%3d.", i+1)), m.state.History[i])
	}

	if tips := m.circuit.Suggestions(); len(tips) > 0 {
		sb.WriteString("\n")
		sb.WriteString(titleStyle.Render("Suggestions"))
		sb.WriteString("\n")
		for _, tip := range tips {
			sb.WriteString(activeGateStyle.Render("• " + tip))
			sb.WriteString("\n")
		}
	}

	return controlsStyle.Width(width).Render(strings.TrimRight(sb.String(), "\n"))
}

// renderControlsPanel renders the bottom help bar and the status line.
func (m Model) renderControlsPanel(width int) string {
	var sb strings.Builder

	sb.WriteString(m.help.View(m.keys))
	status := fmt.Sprintf("Qubit %d of %d", m.cursorQubit, m.state.NumQubits())
	if m.sessionID != "" {
		status += "  │  session " + shortID(m.sessionID)
	}
	if m.statusMsg != "" {
		status += "  │  " + activeGateStyle.Render(m.statusMsg)
	}
	sb.WriteString("\n")
	sb.WriteString(status)

	return controlsStyle.Width(width).Render(sb.String())
}

// ──────────────────────────── Overlay helpers ────────────────────────────

// overlayAt composites the overlay string on top of the background at position (x, y).
// It handles ANSI escape sequences by tracking visible column positions.
func overlayAt(bg, overlay string, x, y int) string {
	bgLines := strings.Split(bg, "\n")
	for i, ovLine := range strings.Split(overlay, "\n") {
		row := y + i
		if row < 0 || row >= len(bgLines) {
			continue
		}
		bgLines[row] = spliceLineAt(bgLines[row], ovLine, x)
	}
	return strings.Join(bgLines, "\n")
}

// isEscFinal reports whether r terminates a CSI escape sequence.
func isEscFinal(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

// escEnd returns the index just past the escape sequence starting at runes[i].
func escEnd(runes []rune, i int) int {
	for j := i + 1; j < len(runes); j++ {
		if runes[j] != '[' && isEscFinal(runes[j]) {
			return j + 1
		}
	}
	return len(runes)
}

// spliceLineAt replaces visible columns starting at position x in bgLine with overlay content.
// Escape sequences in the background prefix are preserved.
func spliceLineAt(bgLine, overlay string, x int) string {
	runes := []rune(bgLine)
	var prefix strings.Builder

	col, i := 0, 0
	for i < len(runes) && col < x {
		if runes[i] == '\x1b' {
			end := escEnd(runes, i)
			prefix.WriteString(string(runes[i:end]))
			i = end
			continue
		}
		prefix.WriteRune(runes[i])
		col++
		i++
	}
	for ; col < x; col++ {
		prefix.WriteRune(' ')
	}

	// Skip the background columns the overlay covers.
	for skipped, width := 0, visibleLen(overlay); i < len(runes) && skipped < width; {
		if runes[i] == '\x1b' {
			i = escEnd(runes, i)
			continue
		}
		skipped++
		i++
	}

	return prefix.String() + overlay + string(runes[i:])
}

// visibleLen returns the number of visible (non-ANSI-escape) characters in a string.
func visibleLen(s string) int {
	n := 0
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc:
			if isEscFinal(r) {
				inEsc = false
			}
		default:
			n++
		}
	}
	return n
}
