// Package render formats coordinator output for a terminal using static
// (non-interactive) lipgloss styling. Nothing here drives an event loop;
// every function produces a string for a single fmt.Println.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-tyler/ken/internal/ken"
)

var (
	statusStyles = map[ken.Status]lipgloss.Style{
		ken.StatusPending:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		ken.StatusActive:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		ken.StatusSleeping: lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		ken.StatusComplete: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		ken.StatusFailed:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
	idStyle     = lipgloss.NewStyle().Faint(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func styledStatus(s ken.Status) string {
	style, ok := statusStyles[s]
	if !ok {
		return string(s)
	}
	return style.Render(string(s))
}

// Tree renders sessions depth-first from their roots, annotated with status,
// ken label, task and — for sleeping sessions — the trigger that will wake
// them.
func Tree(sessions []*ken.Session) string {
	byParent := map[string][]*ken.Session{}
	var roots []*ken.Session
	for _, s := range sessions {
		if s.ParentID == nil {
			roots = append(roots, s)
			continue
		}
		byParent[*s.ParentID] = append(byParent[*s.ParentID], s)
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("sessions"))
	b.WriteString("\n")

	var walk func(s *ken.Session, depth int)
	walk = func(s *ken.Session, depth int) {
		indent := strings.Repeat("  ", depth)
		line := fmt.Sprintf("%s%s %s  ken=%s task=%q", indent, idStyle.Render(shortID(s.ID)), styledStatus(s.Status), s.Ken, s.Task)
		if s.Status == ken.StatusSleeping && s.Trigger != nil {
			line += fmt.Sprintf("  trigger=%s", *s.Trigger)
		}
		b.WriteString(line)
		b.WriteString("\n")
		for _, c := range byParent[s.ID] {
			walk(c, depth+1)
		}
	}
	for _, r := range roots {
		walk(r, 0)
	}
	return b.String()
}

// Spawn renders the process command's "spawn" action for humans; the
// machine-readable form is the raw JSON that the command also prints.
func Spawn(s *ken.Session) string {
	return fmt.Sprintf("%s spawn %s  ken=%s task=%q", headerStyle.Render("→"), shortID(s.ID), s.Ken, s.Task)
}

// None renders the process command's "no session to spawn" action.
func None() string {
	return headerStyle.Render("→") + " none"
}
