package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/holps-7/striko/pkg/model"
)

// View renders the entire TUI to a string.
// This is called by Bubble Tea on every update.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder

	b.WriteString(m.renderRequestLine())
	b.WriteString("\n\n")

	bodyHeight := m.viewport.Height
	sidebar := SidebarStyle.Height(bodyHeight).Width(sidebarWidth - 2).Render(m.renderSidebar(bodyHeight))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", m.viewport.View()))
	b.WriteString("\n")

	b.WriteString(m.renderPromptLine())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

// updateViewportContent re-renders the response into the viewport.
func (m *Model) updateViewportContent() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderResponse())
	m.viewport.GotoTop()
}

func (m Model) renderRequestLine() string {
	method := MethodStyle.Render(model.NormalizeMethod(m.request.Method))
	input := InputAreaStyle.Width(m.urlInput.Width + 2).Render(m.urlInput.View())
	line := method + " " + input
	if name := m.request.Name; name != "" && name != "New Request" {
		line += " " + NameStyle.Render(name)
	}
	return line
}

// renderResponse renders status, timing, headers and body of the last
// response.
func (m Model) renderResponse() string {
	if m.sending {
		return MetaStyle.Render("sending " + model.NormalizeMethod(m.request.Method) + " " + m.request.URL + " ...")
	}
	if m.response == nil {
		return HelpStyle.Render("Type a URL and press enter to send.\ntab switches the method, ctrl+s saves to a collection.")
	}

	resp := m.response
	var b strings.Builder

	if resp.Failed() {
		b.WriteString(StatusErrorStyle.Render(resp.StatusText))
		b.WriteString(MetaStyle.Render(fmt.Sprintf("  %d ms", resp.Time)))
		b.WriteString("\n\n")
		b.WriteString(ErrorStyle.Render(resp.ErrorMessage()))
		return b.String()
	}

	b.WriteString(statusStyle(resp.Status).Render(fmt.Sprintf("%d %s", resp.Status, resp.StatusText)))
	b.WriteString(MetaStyle.Render(fmt.Sprintf("  %d ms  %s", resp.Time, humanize.Bytes(uint64(resp.Size)))))
	b.WriteString("\n\n")

	keys := make([]string, 0, len(resp.Headers))
	for k := range resp.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(HeaderKeyStyle.Render(k))
		b.WriteString(MetaStyle.Render(": " + resp.Headers[k]))
		b.WriteString("\n")
	}
	if len(keys) > 0 {
		b.WriteString("\n")
	}

	body := bodyText(resp.Data)
	if _, isText := resp.Data.(string); isText {
		b.WriteString(body)
	} else {
		b.WriteString(HighlightJSON(body, m.renderer))
	}
	return b.String()
}

func statusStyle(status int) lipgloss.Style {
	switch {
	case status >= 500:
		return StatusErrorStyle
	case status >= 400:
		return StatusWarnStyle
	default:
		return StatusOKStyle
	}
}

// renderSidebar renders the activity list and saved record counts.
func (m Model) renderSidebar(height int) string {
	var lines []string
	lines = append(lines, SidebarTitleStyle.Render("Activity"))

	if len(m.activity) == 0 {
		lines = append(lines, HelpStyle.Render("no recent requests"))
	}
	itemWidth := sidebarWidth - 10
	for i, req := range m.activity {
		name := truncate(req.DisplayName(), itemWidth)
		line := SidebarMethodStyle.Render(model.NormalizeMethod(req.Method)) + name
		if i == m.selected {
			lines = append(lines, SidebarSelectedStyle.Render(line))
		} else {
			lines = append(lines, SidebarItemStyle.Render(line))
		}
	}

	lines = append(lines, "", SidebarTitleStyle.Render(fmt.Sprintf("Collections (%d)", len(m.collections))))
	for _, c := range m.collections {
		lines = append(lines, SidebarItemStyle.Render(truncate(c.Name, sidebarWidth-4)+MetaStyle.Render(fmt.Sprintf(" %d", len(c.Requests)))))
	}
	lines = append(lines, "", SidebarTitleStyle.Render(fmt.Sprintf("Environments (%d)", m.envCount)))

	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderPromptLine() string {
	switch {
	case m.saving:
		return m.saveInput.View()
	case m.errMsg != "":
		return ErrorStyle.Render("error: " + m.errMsg)
	case m.notice != "":
		return NoticeStyle.Render(m.notice)
	default:
		return ""
	}
}

// renderFooter renders the status on the left and shortcuts on the right.
func (m Model) renderFooter() string {
	var left string
	if m.sending {
		dot := lipgloss.NewStyle().Foreground(m.pulseColor()).Render("●")
		left = dot + " " + ShortcutDescStyle.Render("sending") + "  " + ShortcutKeyStyle.Render("esc") + ShortcutDescStyle.Render(" cancel")
	} else {
		left = FooterAppNameStyle.Render("striko") + ShortcutDescStyle.Render(fmt.Sprintf("%d recent", len(m.activity)))
	}

	hints := [][2]string{
		{"enter", "send"},
		{"tab", "method"},
		{"ctrl+↑↓", "select"},
		{"ctrl+o", "open"},
		{"ctrl+d", "delete"},
		{"ctrl+n", "new"},
		{"ctrl+s", "save"},
		{"ctrl+y", "copy"},
	}
	var parts []string
	for _, h := range hints {
		parts = append(parts, ShortcutKeyStyle.Render(h[0])+ShortcutDescStyle.Render(" "+h[1]))
	}
	right := strings.Join(parts, "  ")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		gap = 2
	}
	return FooterStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

// pulseColor maps the spring position onto the pulse palette.
func (m Model) pulseColor() lipgloss.Color {
	i := int(m.animPos * float64(len(pulseColors)-1))
	if i < 0 {
		i = 0
	}
	if i >= len(pulseColors) {
		i = len(pulseColors) - 1
	}
	return pulseColors[i]
}

func truncate(s string, n int) string {
	if n <= 1 || lipgloss.Width(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) > n-1 {
		r = r[:n-1]
	}
	return string(r) + "…"
}
