package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"pnr-tracker/internal/domain/model"
	"pnr-tracker/internal/domain/ports/repository"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
	confirmedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))
	racStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
	waitlistStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))
)

const timeLayout = "2006-01-02 15:04"

func renderReport(pnr model.PNR, r *model.StatusReport) string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("PNR "+pnr.String()) + "\n")
	if r.Train != "" {
		s.WriteString(r.Train + "\n")
	}
	field := func(label, value string) {
		if value == "" {
			value = "-"
		}
		s.WriteString(labelStyle.Render(fmt.Sprintf("%-10s", label)) + value + "\n")
	}
	field("From", strings.TrimSpace(r.From.Station+" "+r.From.Time))
	field("To", strings.TrimSpace(r.To.Station+" "+r.To.Time))
	field("Boarding", r.BoardingDay)
	field("Class", r.Class)
	field("Platform", r.Platform)

	if len(r.Passengers) == 0 {
		s.WriteString(dimStyle.Render("no passenger rows"))
		return s.String()
	}
	s.WriteString("\n" + headerStyle.Render("Passengers") + "\n")
	for i, p := range r.Passengers {
		s.WriteString(fmt.Sprintf("  %d. %s -> %s  %s\n",
			i+1, p.BookingStatus, statusStyle(p.CurrentStatus).Render(p.CurrentStatus), labelStyle.Render(string(p.Probability))))
	}
	return strings.TrimRight(s.String(), "\n")
}

func statusStyle(status string) lipgloss.Style {
	upper := strings.ToUpper(strings.TrimSpace(status))
	switch {
	case strings.HasPrefix(upper, "CNF"), strings.HasPrefix(upper, "CONFIRM"):
		return confirmedStyle
	case strings.HasPrefix(upper, "RAC"):
		return racStyle
	case strings.Contains(upper, "WL"):
		return waitlistStyle
	default:
		return lipgloss.NewStyle()
	}
}

func renderChange(policy string, change model.Change) string {
	style := dimStyle
	if change == model.Changed {
		style = confirmedStyle
	}
	return labelStyle.Render(policy+" policy: ") + style.Render(change.String())
}

func renderSessions(sessions []*model.Session) string {
	if len(sessions) == 0 {
		return "No sessions found"
	}
	var s strings.Builder
	s.WriteString(headerStyle.Render(fmt.Sprintf("Sessions (%d)", len(sessions))) + "\n")
	for _, sess := range sessions {
		checked := dimStyle.Render("never checked")
		if sess.HasBaseline {
			checked = "checked " + sess.CheckedAt.Format(timeLayout)
		}
		s.WriteString(fmt.Sprintf("%-14d %s  %s  %s\n",
			sess.ChatID, sess.PNR, labelStyle.Render("since "+sess.RegisteredAt.Format(timeLayout)), checked))
		for i, st := range sess.LastPassengerStatuses {
			s.WriteString(fmt.Sprintf("    %d. %s\n", i+1, statusStyle(st).Render(st)))
		}
	}
	return strings.TrimRight(s.String(), "\n")
}

func renderHistory(chatID int64, entries []*repository.NotificationEntry) string {
	if len(entries) == 0 {
		return fmt.Sprintf("No notifications found for chat %d", chatID)
	}
	var s strings.Builder
	s.WriteString(headerStyle.Render(fmt.Sprintf("Notifications for chat %d", chatID)) + "\n")
	for _, e := range entries {
		delivery := confirmedStyle.Render("delivered")
		if !e.Delivered {
			delivery = waitlistStyle.Render("failed")
		}
		s.WriteString(fmt.Sprintf("%s  %-14s %s  %s\n",
			e.CreatedAt.Format(timeLayout), e.Kind, e.PNR, delivery))
		firstLine, _, _ := strings.Cut(e.Text, "\n")
		s.WriteString("    " + dimStyle.Render(firstLine) + "\n")
	}
	return strings.TrimRight(s.String(), "\n")
}

func splitStatuses(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}
