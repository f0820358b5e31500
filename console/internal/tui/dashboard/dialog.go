package dashboard

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/anavsan/anavsan/console/internal/billing"
	"github.com/anavsan/anavsan/console/internal/team"
	"github.com/anavsan/anavsan/console/internal/tui"
)

type dialogKind int

const (
	dialogConfirm dialogKind = iota
	dialogInfo
	dialogInvite
)

// dialogAction is what accepting a dialog does.
type dialogAction int

const (
	actNone dialogAction = iota
	actDowngrade
	actCycleSwitch
	actRemoveMember
	actInvite
)

type outcome int

const (
	pending outcome = iota
	accepted
	dismissed
)

type dialog struct {
	kind    dialogKind
	action  dialogAction
	title   string
	body    string
	rows    [][2]string
	actions []string
	cursor  int
	err     string

	plan     billing.Plan
	cycle    billing.Cycle
	memberID string

	inputs []textinput.Model
	focus  int
	roles  []team.Role
	role   int
}

func newConfirmDialog(action dialogAction, title, body, confirm string) *dialog {
	return &dialog{
		kind:    dialogConfirm,
		action:  action,
		title:   title,
		body:    body,
		actions: []string{confirm, "Cancel"},
	}
}

func newInfoDialog(title, body string) *dialog {
	return &dialog{kind: dialogInfo, title: title, body: body, actions: []string{"Close"}}
}

func newInviteDialog(note string) *dialog {
	name := textinput.New()
	name.Placeholder = "Ada Lovelace"
	name.CharLimit = 64
	name.Width = 40
	name.Focus()

	email := textinput.New()
	email.Placeholder = "ada@example.com"
	email.CharLimit = 128
	email.Width = 40

	return &dialog{
		kind:   dialogInvite,
		action: actInvite,
		title:  "Invite a team member",
		body:   note,
		inputs: []textinput.Model{name, email},
		roles:  []team.Role{team.Member, team.Admin},
	}
}

func (d *dialog) name() string  { return strings.TrimSpace(d.inputs[0].Value()) }
func (d *dialog) email() string { return strings.TrimSpace(d.inputs[1].Value()) }

func (d *dialog) selectedRole() team.Role { return d.roles[d.role] }

// Update handles a key and reports whether the dialog was accepted or
// dismissed. An accepted dialog stays on screen until the caller closes it,
// so a failed action can show its error in place.
func (d *dialog) Update(msg tea.KeyMsg) (outcome, tea.Cmd) {
	if d.kind == dialogInvite {
		return d.updateInvite(msg)
	}
	switch msg.String() {
	case "left", "h", "up", "k", "shift+tab":
		if d.cursor > 0 {
			d.cursor--
		}
	case "right", "l", "down", "j", "tab":
		if d.cursor < len(d.actions)-1 {
			d.cursor++
		}
	case "y":
		if d.kind == dialogConfirm {
			return accepted, nil
		}
	case "n", "esc":
		return dismissed, nil
	case "enter":
		if d.kind == dialogConfirm && d.cursor == 0 {
			return accepted, nil
		}
		return dismissed, nil
	}
	return pending, nil
}

func (d *dialog) updateInvite(msg tea.KeyMsg) (outcome, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return dismissed, nil
	case "tab", "down":
		d.focusInput(d.focus + 1)
		return pending, nil
	case "shift+tab", "up":
		d.focusInput(d.focus - 1)
		return pending, nil
	case "ctrl+r":
		d.role = (d.role + 1) % len(d.roles)
		return pending, nil
	case "enter":
		if d.focus < len(d.inputs)-1 {
			d.focusInput(d.focus + 1)
			return pending, nil
		}
		if d.email() == "" {
			d.err = "Email is required"
			return pending, nil
		}
		return accepted, nil
	}
	var cmd tea.Cmd
	d.inputs[d.focus], cmd = d.inputs[d.focus].Update(msg)
	d.err = ""
	return pending, cmd
}

func (d *dialog) focusInput(i int) {
	n := len(d.inputs)
	i = (i%n + n) % n
	d.inputs[d.focus].Blur()
	d.focus = i
	d.inputs[i].Focus()
}

func (d *dialog) View() string {
	s := tui.Subtitle.Render(d.title) + "\n\n"
	if d.body != "" {
		s += lipgloss.NewStyle().Width(56).Render(d.body) + "\n\n"
	}
	for _, r := range d.rows {
		s += renderRow(r[0], r[1])
	}
	if len(d.rows) > 0 {
		s += "\n"
	}

	if d.kind == dialogInvite {
		s += "  " + tui.Description.Render("Name") + "\n  " + d.inputs[0].View() + "\n"
		s += "  " + tui.Description.Render("Email") + "\n  " + d.inputs[1].View() + "\n"
		s += renderRow("Role", string(d.selectedRole())+tui.Dimmed.Render("  (ctrl+r to change)"))
		if d.err != "" {
			s += "\n  " + tui.ErrorStyle.Render(d.err) + "\n"
		}
		s += "\n" + tui.Help.Render("  tab next field • enter send invite • esc cancel")
		return tui.Modal.Render(s)
	}

	if d.err != "" {
		s += "  " + tui.ErrorStyle.Render("Error: "+d.err) + "\n\n"
	}
	var buttons []string
	for i, a := range d.actions {
		style := tui.Dimmed.Padding(0, 1)
		if i == d.cursor {
			style = tui.Badge.Background(tui.ColorPrimary)
		}
		buttons = append(buttons, style.Render(a))
	}
	s += "  " + strings.Join(buttons, "  ") + "\n"
	help := "  ←/→ choose • enter select • esc close"
	if d.kind == dialogConfirm {
		help = "  ←/→ choose • enter select • y confirm • esc cancel"
	}
	s += "\n" + tui.Help.Render(help)
	return tui.Modal.Render(s)
}

func renderRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Foreground(tui.ColorSubtle).
		Width(16)
	return "  " + labelStyle.Render(label) + value + "\n"
}
