package main

import (
	"fmt"
	"strings"
)

// parameterHint provides a hint for parameter input
type parameterHint struct {
	required bool
	example  string
}

// menuItem represents a single choice in the gate menu.
type menuItem struct {
	name        string
	gateType    string
	symbol      string
	needsTarget bool
	needsParams bool
	paramHint   parameterHint
}

// menuCategory groups related menu items under a tab.
type menuCategory struct {
	name  string
	items []menuItem
}

// Menu item types that are not gate names.
const (
	itemBitFlip    = "BIT_FLIP"
	itemPhaseFlip  = "PHASE_FLIP"
	itemNewCustom  = "NEW_CUSTOM"
	customItemPref = "CUSTOM:"
)

// gateMenu defines the fixed gate picker categories.
var gateMenu = []menuCategory{
	{
		name: "Single Qubit",
		items: []menuItem{
			{name: "Hadamard", gateType: "H", symbol: "H"},
			{name: "Pauli-X (NOT)", gateType: "X", symbol: "X"},
			{name: "Pauli-Y", gateType: "Y", symbol: "Y"},
			{name: "Pauli-Z", gateType: "Z", symbol: "Z"},
			{name: "Phase (S)", gateType: "S", symbol: "S"},
			{name: "T Gate", gateType: "T", symbol: "T"},
		},
	},
	{
		name: "Rotation",
		items: []menuItem{
			{name: "Rotate X", gateType: "RX", symbol: "RX", needsParams: true, paramHint: parameterHint{required: true, example: "pi/2"}},
			{name: "Rotate Y", gateType: "RY", symbol: "RY", needsParams: true, paramHint: parameterHint{required: true, example: "pi/2"}},
			{name: "Rotate Z", gateType: "RZ", symbol: "RZ", needsParams: true, paramHint: parameterHint{required: true, example: "pi/4"}},
		},
	},
	{
		name: "Multi Qubit",
		items: []menuItem{
			{name: "CNOT", gateType: GateTypeCNOT, symbol: "●─⊕", needsTarget: true},
			{name: "SWAP", gateType: GateTypeSwap, symbol: "×─×", needsTarget: true},
			{name: "Toffoli (CCX)", gateType: GateTypeToffoli, symbol: "●─●─⊕", needsTarget: true},
		},
	},
	{
		name: "Measure",
		items: []menuItem{
			{name: "Measure", gateType: GateTypeMeasure, symbol: "M"},
		},
	},
	{
		name: "Noise",
		items: []menuItem{
			{name: "Bit flip", gateType: itemBitFlip, symbol: "X!"},
			{name: "Phase flip", gateType: itemPhaseFlip, symbol: "Z!"},
		},
	},
}

// menuCategories appends the registered custom gates to the fixed menu.
func menuCategories(s QuantumState) []menuCategory {
	custom := menuCategory{name: "Custom"}
	for _, name := range s.sortedGateNames() {
		custom.items = append(custom.items, menuItem{name: name, gateType: customItemPref + name, symbol: "U"})
	}
	custom.items = append(custom.items, menuItem{
		name: "New gate…", gateType: itemNewCustom, symbol: "+",
		needsParams: true, paramHint: parameterHint{required: true, example: "V 0 1 1 0"},
	})
	cats := make([]menuCategory, 0, len(gateMenu)+1)
	cats = append(cats, gateMenu...)
	return append(cats, custom)
}

// menuDescription describes the selected item for the menu footer.
func menuDescription(item menuItem, s QuantumState) string {
	switch {
	case item.gateType == itemBitFlip:
		return "Injects an X error on the qubit and tags it for correction."
	case item.gateType == itemPhaseFlip:
		return "Injects a Z error on the qubit and tags it for correction."
	case item.gateType == itemNewCustom:
		return "Define a 2×2 matrix: NAME a b c d (row-major, complex allowed)."
	case strings.HasPrefix(item.gateType, customItemPref):
		if g, ok := s.CustomGates[strings.TrimPrefix(item.gateType, customItemPref)]; ok && g.Description != "" {
			return g.Description
		}
		return "A user defined single-qubit gate."
	case item.gateType == GateTypeMeasure:
		return "Collapses the qubit to |0⟩ or |1⟩ with the Born-rule probabilities."
	case item.needsParams:
		return gateDescription(item.gateType + "(θ)")
	}
	return gateDescription(item.gateType)
}

// renderMenu renders the floating gate-picker popup.
func (m Model) renderMenu() string {
	var sb strings.Builder
	cats := menuCategories(m.state)

	sb.WriteString(titleStyle.Render("Apply Gate"))
	sb.WriteString("\n")

	// Category tabs
	for i, cat := range cats {
		name := " " + cat.name + " "
		if i == m.menuCat {
			sb.WriteString(activeGateStyle.Render(name))
		} else {
			sb.WriteString(dimStyle.Render(name))
		}
		if i < len(cats)-1 {
			sb.WriteString(dimStyle.Render("│"))
		}
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(strings.Repeat("─", 52)))
	sb.WriteString("\n")

	cat := cats[min(m.menuCat, len(cats)-1)]
	for i, item := range cat.items {
		if i == m.menuItem {
			sb.WriteString(menuSelectedStyle.Render(" ▸ "))
			sb.WriteString(menuSelectedStyle.Render(fmt.Sprintf("%-18s", item.name)))
			sb.WriteString(gateStyle.Render(item.symbol))
		} else {
			sb.WriteString("   ")
			sb.WriteString(menuNormalStyle.Render(fmt.Sprintf("%-18s", item.name)))
			sb.WriteString(dimStyle.Render(item.symbol))
		}
		if item.needsTarget {
			sb.WriteString(dimStyle.Render(" →target"))
		}
		if item.needsParams {
			sb.WriteString(dimStyle.Render(fmt.Sprintf(" (%s)", item.paramHint.example)))
		}
		sb.WriteString("\n")
	}
	if m.menuItem < len(cat.items) {
		sb.WriteString("\n")
		sb.WriteString(dimStyle.Width(52).Render(menuDescription(cat.items[m.menuItem], m.state)))
		sb.WriteString("\n")
	}
	sb.WriteString(dimStyle.Render(" ↑↓ Select  ←→ Cat  ⏎ Ok  Esc ✕"))

	return menuBorderStyle.Render(sb.String())
}
