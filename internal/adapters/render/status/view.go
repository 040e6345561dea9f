package status

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/isnadmansour/IsnadTasks/internal/application"
)

func renderView(pool application.PoolStatus, s styles) string {
	lines := []string{
		s.title.Render("Isnad Pool Status"),
		s.header.Render(batchHeader(pool)),
	}

	lines = append(lines, s.section.Render(renderTaskPool(pool, s)))

	if len(pool.Accounts) == 0 {
		lines = append(lines, s.section.Render(s.empty.Render("No target accounts loaded.")))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	lines = append(lines, s.section.Render(renderAccountPools(pool.Accounts, s)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func batchHeader(pool application.PoolStatus) string {
	if pool.Batch == "" {
		return "batch: none"
	}
	return fmt.Sprintf("batch: %s", pool.Batch)
}

func renderTaskPool(pool application.PoolStatus, s styles) string {
	if pool.TaskTotal == 0 {
		return lipgloss.JoinVertical(
			lipgloss.Left,
			s.pool.Render("Tasks"),
			s.empty.Render("No tasks loaded."),
		)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		s.pool.Render("Tasks"),
		poolLine("pool", pool.TaskUsed, pool.TaskTotal, s),
	)
}

func renderAccountPools(accounts []application.TypeStatus, s styles) string {
	parts := []string{s.pool.Render("Target accounts")}
	for _, entry := range accounts {
		parts = append(parts, poolLine(typeLabel(entry.Type), entry.Used, entry.Total, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func poolLine(label string, used, total int, s styles) string {
	usedPercent := 0.0
	if total > 0 {
		usedPercent = float64(used) / float64(total) * 100
	}

	key := s.poolKey.Render(fmt.Sprintf("%-8s", label+":"))
	bar := renderProgressBar(usedPercent, 24, s)
	meta := s.detail.Render(fmt.Sprintf("%d/%d remaining", total-used, total))

	return lipgloss.JoinHorizontal(lipgloss.Top, key, " ", bar, " ", meta)
}

func typeLabel(accountType string) string {
	if strings.TrimSpace(accountType) == "" {
		return "untyped"
	}
	return "type " + accountType
}

// renderProgressBar draws the remaining share of a pool, so a fully used
// pool shows an empty bar right before it recycles.
func renderProgressBar(usedPercent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	used := clampPercent(usedPercent)
	leftFraction := (100.0 - used) / 100.0
	filled := int(math.Round(float64(width) * leftFraction))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	empty := width - filled
	fillSegment := s.barFill.Render(strings.Repeat("=", filled))
	emptySegment := s.barEmpty.Render(strings.Repeat("-", empty))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		fillSegment,
		emptySegment,
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
