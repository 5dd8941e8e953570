// internal/ui/component/form.go
package component

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/dex2k/internal/ui/style"
)

// FieldType represents the type of form field
type FieldType int

const (
	FieldTypeText FieldType = iota
	FieldTypeNumber
	FieldTypeSelect
	FieldTypeCheckbox
)

// FormField represents a single form field
type FormField struct {
	Name        string
	Label       string
	Type        FieldType
	Value       string
	Options     []string // select only
	Placeholder string
	Required    bool
	Validation  func(string) error
	Error       string

	textInput   textinput.Model
	selectedIdx int
}

func (f *FormField) isText() bool {
	return f.Type == FieldTypeText || f.Type == FieldTypeNumber
}

// Form is a vertical list of fields with tab focus.
type Form struct {
	title      string
	fields     []FormField
	focusIndex int
	width      int

	titleStyle    lipgloss.Style
	labelStyle    lipgloss.Style
	inputStyle    lipgloss.Style
	focusedStyle  lipgloss.Style
	errorStyle    lipgloss.Style
	checkboxStyle lipgloss.Style
}

// NewForm creates a new form component
func NewForm() *Form {
	palette := style.DefaultPalette()

	return &Form{
		titleStyle: lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true).
			MarginBottom(1),

		labelStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Bold(true),

		inputStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted),

		focusedStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Primary),

		errorStyle: lipgloss.NewStyle().
			Foreground(palette.Error),

		checkboxStyle: lipgloss.NewStyle().
			Foreground(palette.Secondary),
	}
}

// SetTitle sets the heading rendered above the fields.
func (f *Form) SetTitle(title string) *Form {
	f.title = title
	return f
}

// AddField adds a field to the form
func (f *Form) AddField(name string, fieldType FieldType, label string, required bool, placeholder string) *Form {
	ti := textinput.New()
	ti.Width = 40
	ti.Placeholder = placeholder
	ti.Prompt = ""
	if fieldType == FieldTypeNumber && placeholder == "" {
		ti.Placeholder = "0"
	}

	field := FormField{
		Name:        name,
		Label:       label,
		Type:        fieldType,
		Placeholder: placeholder,
		Required:    required,
		textInput:   ti,
	}
	if fieldType == FieldTypeCheckbox {
		field.Value = "false"
	}

	f.fields = append(f.fields, field)

	if len(f.fields) == 1 {
		f.focus(0)
	}

	return f
}

func (f *Form) field(name string) *FormField {
	for i := range f.fields {
		if f.fields[i].Name == name {
			return &f.fields[i]
		}
	}
	return nil
}

// SetFieldValue sets the value of a field
func (f *Form) SetFieldValue(name, value string) *Form {
	field := f.field(name)
	if field == nil {
		return f
	}
	field.Value = value
	field.textInput.SetValue(value)
	if field.Type == FieldTypeSelect {
		for i, opt := range field.Options {
			if opt == value {
				field.selectedIdx = i
			}
		}
	}
	return f
}

// SetSelectOptions sets options for a select field and selects the first.
func (f *Form) SetSelectOptions(name string, options []string) *Form {
	field := f.field(name)
	if field == nil || field.Type != FieldTypeSelect {
		return f
	}
	field.Options = options
	field.selectedIdx = 0
	if len(options) > 0 {
		field.Value = options[0]
	}
	return f
}

// SetFieldValidation sets a validation function for a field
func (f *Form) SetFieldValidation(name string, validation func(string) error) *Form {
	if field := f.field(name); field != nil {
		field.Validation = validation
	}
	return f
}

// SetWidth sets the form width
func (f *Form) SetWidth(width int) *Form {
	f.width = width
	inputWidth := width - 6
	if inputWidth > 10 {
		for i := range f.fields {
			f.fields[i].textInput.Width = inputWidth
		}
	}
	return f
}

// Init satisfies the tea.Model shape.
func (f *Form) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles form input and updates
func (f *Form) Update(msg tea.Msg) (*Form, tea.Cmd) {
	if len(f.fields) == 0 {
		return f, nil
	}

	field := &f.fields[f.focusIndex]

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "tab", "down":
			if msg.String() == "down" && field.Type == FieldTypeSelect {
				f.cycleSelect(1)
			} else {
				f.move(1)
			}
			return f, nil
		case "shift+tab", "up":
			if msg.String() == "up" && field.Type == FieldTypeSelect {
				f.cycleSelect(-1)
			} else {
				f.move(-1)
			}
			return f, nil
		case "left":
			if field.Type == FieldTypeSelect {
				f.cycleSelect(-1)
				return f, nil
			}
		case "right":
			if field.Type == FieldTypeSelect {
				f.cycleSelect(1)
				return f, nil
			}
		case " ":
			if field.Type == FieldTypeCheckbox {
				f.toggleCheckbox()
				return f, nil
			}
		}
	}

	if !field.isText() {
		return f, nil
	}

	var cmd tea.Cmd
	field.textInput, cmd = field.textInput.Update(msg)
	field.Value = field.textInput.Value()
	field.Error = ""
	return f, cmd
}

// View renders the form
func (f *Form) View() string {
	var content strings.Builder

	if f.title != "" {
		content.WriteString(f.titleStyle.Render(f.title))
		content.WriteString("\n")
	}

	for i, field := range f.fields {
		fieldStyle := f.inputStyle
		if i == f.focusIndex {
			fieldStyle = f.focusedStyle
		}

		switch field.Type {
		case FieldTypeCheckbox:
			box := "[ ]"
			if field.Value == "true" {
				box = "[x]"
			}
			text := box + " " + field.Label
			if i == f.focusIndex {
				content.WriteString(f.labelStyle.Render("> " + text))
			} else {
				content.WriteString(f.checkboxStyle.Render("  " + text))
			}
			content.WriteString("\n")

		case FieldTypeSelect:
			content.WriteString(f.renderLabel(field))
			text := field.Value
			if i == f.focusIndex {
				text = "◀ " + text + " ▶"
			}
			content.WriteString(fieldStyle.Render(text))
			content.WriteString("\n")

		default:
			content.WriteString(f.renderLabel(field))
			content.WriteString(fieldStyle.Render(field.textInput.View()))
			content.WriteString("\n")
		}

		if field.Error != "" {
			content.WriteString(f.errorStyle.Render("⚠ " + field.Error))
			content.WriteString("\n")
		}
	}

	return strings.TrimRight(content.String(), "\n")
}

func (f *Form) renderLabel(field FormField) string {
	label := field.Label
	if field.Required {
		label += " *"
	}
	return f.labelStyle.Render(label) + "\n"
}

func (f *Form) focus(i int) {
	for j := range f.fields {
		f.fields[j].textInput.Blur()
	}
	f.focusIndex = i
	if f.fields[i].isText() {
		f.fields[i].textInput.Focus()
	}
}

func (f *Form) move(delta int) {
	n := len(f.fields)
	f.focus(((f.focusIndex+delta)%n + n) % n)
}

func (f *Form) cycleSelect(delta int) {
	field := &f.fields[f.focusIndex]
	n := len(field.Options)
	if n == 0 {
		return
	}
	field.selectedIdx = ((field.selectedIdx+delta)%n + n) % n
	field.Value = field.Options[field.selectedIdx]
}

func (f *Form) toggleCheckbox() {
	field := &f.fields[f.focusIndex]
	if field.Value == "true" {
		field.Value = "false"
	} else {
		field.Value = "true"
	}
}

// Focused returns the name of the focused field.
func (f *Form) Focused() string {
	if len(f.fields) == 0 {
		return ""
	}
	return f.fields[f.focusIndex].Name
}

// Validate runs required checks and field validators, storing errors on
// the fields. It reports whether every field passed.
func (f *Form) Validate() bool {
	valid := true

	for i := range f.fields {
		field := &f.fields[i]
		field.Error = ""

		if field.Required && strings.TrimSpace(field.Value) == "" {
			field.Error = "This field is required"
			valid = false
			continue
		}

		if field.Validation != nil {
			if err := field.Validation(field.Value); err != nil {
				field.Error = err.Error()
				valid = false
			}
		}
	}

	return valid
}

// SetError attaches an error to a field from outside validation.
func (f *Form) SetError(name, msg string) {
	if field := f.field(name); field != nil {
		field.Error = msg
	}
}

// GetValue returns the value of a specific field
func (f *Form) GetValue(name string) string {
	if field := f.field(name); field != nil {
		return field.Value
	}
	return ""
}

// Checked reports whether a checkbox field is set.
func (f *Form) Checked(name string) bool {
	return f.GetValue(name) == "true"
}

// GetValues returns all form field values as a map
func (f *Form) GetValues() map[string]string {
	values := make(map[string]string, len(f.fields))
	for _, field := range f.fields {
		values[field.Name] = field.Value
	}
	return values
}
