package status

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/blum-farm-cli/internal/application"
	"github.com/bnema/blum-farm-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const barWidth = 24

type RenderOptions struct {
	Now        time.Time
	StaleAfter time.Duration
}

func renderView(statuses []application.AccountStatus, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Blum Farm Status"),
		s.header.Render(fmt.Sprintf("accounts: %d", len(statuses))),
	}

	if len(statuses) == 0 {
		lines = append(lines, s.empty.Render("No accounts configured. Add one with `bfarm account add`."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, status := range statuses {
		lines = append(lines, s.section.Render(renderAccount(status, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderAccount(status application.AccountStatus, opts RenderOptions, s styles) string {
	parts := []string{
		s.account.Render(accountTitle(status.Account)),
	}

	if status.Err != nil {
		parts = append(parts, s.warning.Render("error: "+status.Err.Error()))
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	balance := fmt.Sprintf("balance: %s  play passes: %d", orNA(status.Balance.Available), status.Balance.PlayPasses)
	if isStale(status.CapturedAt, opts) {
		balance += " " + s.warning.Render("[stale]")
	}
	parts = append(parts,
		s.detail.Render(balance),
		farmingLine(status.Balance, opts.Now, s),
		s.detail.Render(referralLine(status.Referral, opts.Now)),
	)
	if !status.TokenExpiry.IsZero() {
		parts = append(parts, s.meta.Render("token valid until "+formatClock(status.TokenExpiry, opts.Now)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func farmingLine(balance domain.BalanceSnapshot, now time.Time, s styles) string {
	label := s.key.Render("farming:")
	if balance.Farming == nil {
		return lipgloss.JoinHorizontal(lipgloss.Top, label, " ", s.meta.Render("not started"))
	}

	farming := balance.Farming
	if now.IsZero() {
		now = balance.Timestamp
	}

	percent := farmingPercent(farming.StartTime, farming.EndTime, now)
	bar := renderProgressBar(percent, barWidth, s)
	percentStyle := lipgloss.NewStyle().Foreground(interpolateColor(percent, 0, 100))
	meta := percentStyle.Render(fmt.Sprintf("%3.0f%%", percent))

	var state string
	if balance.FarmingRemaining(now) <= 0 {
		state = s.ready.Render("ready to claim")
	} else {
		hours, minutes := balance.RemainingHoursMinutes(now)
		state = s.meta.Render(fmt.Sprintf("(ends in %dh %dm, %s)", hours, minutes, formatClock(farming.EndTime, now)))
	}

	line := lipgloss.JoinHorizontal(lipgloss.Top, label, " ", bar, " ", meta, " ", state)
	if farming.Balance != "" {
		line += " " + s.meta.Render("earned "+farming.Balance)
	}
	return line
}

func referralLine(referral *domain.ReferralBalance, now time.Time) string {
	if referral == nil {
		return "referrals: n/a"
	}

	invites := ""
	if referral.Limit > 0 {
		invites = fmt.Sprintf(" (%d/%d invites)", referral.UsedInvitation, referral.Limit)
	}

	if referral.CanClaim {
		return fmt.Sprintf("referrals: %s claimable%s", orNA(referral.AmountForClaim), invites)
	}
	if hours, minutes, ok := referral.NextClaimIn(now); ok && (hours > 0 || minutes > 0) {
		return fmt.Sprintf("referrals: next claim in %dh %dm%s", hours, minutes, invites)
	}
	return "referrals: nothing to claim" + invites
}

// farmingPercent is the elapsed share of the farming period in [0, 100].
func farmingPercent(start, end, now time.Time) float64 {
	total := end.Sub(start)
	if total <= 0 {
		return 100
	}
	return clampPercent(float64(now.Sub(start)) / float64(total) * 100)
}

func renderProgressBar(percent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * clampPercent(percent) / 100))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func isStale(capturedAt time.Time, opts RenderOptions) bool {
	if opts.Now.IsZero() || opts.StaleAfter <= 0 || capturedAt.IsZero() {
		return false
	}
	return opts.Now.Sub(capturedAt) > opts.StaleAfter
}

func formatClock(at, now time.Time) string {
	if at.IsZero() {
		return "unknown"
	}
	if now.IsZero() {
		return at.Format(time.RFC3339)
	}

	yearA, monthA, dayA := now.Date()
	yearB, monthB, dayB := at.Date()
	if yearA == yearB && monthA == monthB && dayA == dayB {
		return at.Format("15:04")
	}

	return at.Format("15:04 on 02 Jan")
}

func accountTitle(account domain.Account) string {
	name := strings.TrimSpace(account.Name)
	if name == "" || name == string(account.ID) {
		return string(account.ID)
	}
	return fmt.Sprintf("%s (%s)", name, account.ID)
}

func orNA(value string) string {
	if strings.TrimSpace(value) == "" {
		return "n/a"
	}
	return value
}

func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	// ANSI 256 greyscale ramp, 240 (faded) at min to 255 (bright) at max.
	interpolated := 240.0 + 15.0*normalized
	return lipgloss.Color(fmt.Sprintf("%d", int(interpolated)))
}
