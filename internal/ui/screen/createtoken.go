// internal/ui/screen/createtoken.go
package screen

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/rovshanmuradov/dex2k/internal/events"
	"github.com/rovshanmuradov/dex2k/internal/quote"
	"github.com/rovshanmuradov/dex2k/internal/token"
	"github.com/rovshanmuradov/dex2k/internal/ui"
	"github.com/rovshanmuradov/dex2k/internal/ui/component"
	"github.com/rovshanmuradov/dex2k/internal/ui/router"
	"github.com/rovshanmuradov/dex2k/internal/ui/style"
	"go.uber.org/zap"
)

// CreateTokenStep is the current step of the wizard.
type CreateTokenStep int

const (
	StepBasic CreateTokenStep = iota
	StepHook
	StepLiquidity
	StepReview
	StepDone
)

const hookNotWhitelisted = "This hook program is not whitelisted!"

// pools created by the wizard are quoted against this token
const poolQuoteSymbol = "USDC"

// CreateTokenWizard walks through launching a Token-2022 token.
type CreateTokenWizard struct {
	deps   *Deps
	width  int
	height int
	keyMap ui.KeyMap

	helpBar       *component.HelpBar
	basicForm     *component.Form
	hookForm      *component.Form
	liquidityForm *component.Form
	previewTable  *component.Table

	currentStep CreateTokenStep
	draft       token.Draft
	errors      []string
	hookWarning string

	stepStyle    lipgloss.Style
	errorStyle   lipgloss.Style
	warningStyle lipgloss.Style
	successStyle lipgloss.Style
}

// NewCreateTokenWizard creates the wizard on its first step.
func NewCreateTokenWizard(deps *Deps) *CreateTokenWizard {
	palette := style.DefaultPalette()
	keyMap := ui.DefaultKeyMap()

	w := &CreateTokenWizard{
		deps:        deps,
		keyMap:      keyMap,
		currentStep: StepBasic,
		draft:       token.NewDraft(),

		stepStyle:    lipgloss.NewStyle().Foreground(palette.Secondary).Bold(true),
		errorStyle:   lipgloss.NewStyle().Foreground(palette.Error).Bold(true),
		warningStyle: lipgloss.NewStyle().Foreground(palette.Warning).Bold(true),
		successStyle: lipgloss.NewStyle().Foreground(palette.Success).Bold(true),

		helpBar: component.NewHelpBar().SetKeyBindings(keyMap.ContextualHelp(ui.RouteCreateToken)),
		previewTable: component.NewTable().
			AddColumn("Field", 20, lipgloss.Left).
			AddColumn("Value", 44, lipgloss.Left).
			SetShowBorder(true).
			SetSelectable(false),
	}
	w.initializeForms()
	return w
}

func (w *CreateTokenWizard) initializeForms() {
	w.basicForm = component.NewForm().
		SetTitle("Token Details").
		AddField("name", component.FieldTypeText, "Token Name", true, "My Token").
		AddField("symbol", component.FieldTypeText, "Symbol", true, "MTK").
		AddField("decimals", component.FieldTypeNumber, "Decimals", true, "9").
		AddField("supply", component.FieldTypeNumber, "Total Supply", true, "1000000").
		AddField("description", component.FieldTypeText, "Description", false, "What is this token for?").
		SetFieldValue("decimals", strconv.Itoa(w.draft.Decimals))

	w.hookForm = component.NewForm().
		SetTitle("Transfer Hook").
		AddField("enabled", component.FieldTypeCheckbox, "Enable transfer hook", false, "").
		AddField("whitelist", component.FieldTypeCheckbox, "Whitelist only", false, "").
		AddField("kyc", component.FieldTypeCheckbox, "Require KYC", false, "").
		AddField("min", component.FieldTypeNumber, "Min Transfer Amount", false, "").
		AddField("max", component.FieldTypeNumber, "Max Transfer Amount", false, "").
		AddField("fee", component.FieldTypeNumber, "Transfer Fee %", false, "").
		AddField("program", component.FieldTypeText, "Hook Program ID", false, "Program address")

	w.liquidityForm = component.NewForm().
		SetTitle("Initial Liquidity").
		AddField("liquidity", component.FieldTypeNumber, "Liquidity Amount", true, "").
		AddField("price", component.FieldTypeNumber, "Initial Price (USD)", true, "").
		AddField("pool_fee", component.FieldTypeSelect, "Pool Fee", true, "").
		SetSelectOptions("pool_fee", token.PoolFeeOptions).
		SetFieldValue("pool_fee", w.draft.PoolFee)
}

func (w *CreateTokenWizard) Route() ui.Route { return ui.RouteCreateToken }

func (w *CreateTokenWizard) Init() tea.Cmd {
	return w.basicForm.Init()
}

func (w *CreateTokenWizard) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return w, nil
	}

	switch {
	case key.Matches(keyMsg, w.keyMap.Back):
		if w.currentStep == StepBasic || w.currentStep == StepDone {
			return w, ui.Back()
		}
		w.errors = nil
		w.currentStep--
		return w, nil

	case key.Matches(keyMsg, w.keyMap.Enter):
		switch w.currentStep {
		case StepReview:
			return w, w.confirm()
		case StepDone:
			return w, ui.Back()
		default:
			if w.validateCurrentStep() {
				w.currentStep++
			}
			return w, nil
		}
	}

	form := w.currentForm()
	if form == nil {
		return w, nil
	}
	_, cmd := form.Update(msg)
	if w.currentStep == StepHook {
		w.updateHookWarning()
	}
	return w, cmd
}

func (w *CreateTokenWizard) currentForm() *component.Form {
	switch w.currentStep {
	case StepBasic:
		return w.basicForm
	case StepHook:
		return w.hookForm
	case StepLiquidity:
		return w.liquidityForm
	default:
		return nil
	}
}

// updateHookWarning re-checks the program id as it is typed.
func (w *CreateTokenWizard) updateHookWarning() {
	err := token.CheckHookProgram(w.hookForm.GetValue("program"), w.deps.Hooks)
	switch {
	case err == nil:
		w.hookWarning = ""
	case errors.Is(err, token.ErrHookNotWhitelisted):
		w.hookWarning = hookNotWhitelisted
	default:
		w.hookWarning = err.Error()
	}
}

// validateCurrentStep copies the step's form into the draft and checks it.
func (w *CreateTokenWizard) validateCurrentStep() bool {
	w.errors = nil

	form := w.currentForm()
	if form != nil && !form.Validate() {
		w.errors = append(w.errors, "Please fill in all required fields correctly.")
		return false
	}

	var err error
	switch w.currentStep {
	case StepBasic:
		if err = w.readBasics(); err == nil {
			err = w.draft.ValidateBasics()
		}
		if err == nil {
			if _, getErr := w.deps.Catalog.Get(w.draft.Symbol); getErr == nil {
				err = fmt.Errorf("token %s already exists", w.draft.Symbol)
			}
		}
	case StepHook:
		if err = w.readHook(); err == nil {
			err = w.draft.Hook.Validate(w.deps.Hooks)
		}
		if errors.Is(err, token.ErrHookNotWhitelisted) {
			w.hookWarning = hookNotWhitelisted
		}
	case StepLiquidity:
		if err = w.readLiquidity(); err == nil {
			err = w.draft.ValidateLiquidity()
		}
	}

	if err != nil {
		w.errors = append(w.errors, err.Error())
		return false
	}
	return true
}

func (w *CreateTokenWizard) readBasics() error {
	w.draft.Name = strings.TrimSpace(w.basicForm.GetValue("name"))
	w.draft.Symbol = token.NormalizeSymbol(w.basicForm.GetValue("symbol"))
	w.draft.Description = strings.TrimSpace(w.basicForm.GetValue("description"))

	decimals, err := strconv.Atoi(strings.TrimSpace(w.basicForm.GetValue("decimals")))
	if err != nil {
		return errors.New("decimals must be a whole number")
	}
	w.draft.Decimals = decimals

	supply, err := quote.ParseAmount(w.basicForm.GetValue("supply"))
	if err != nil {
		return errors.New("supply must be a number")
	}
	w.draft.Supply = supply
	return nil
}

func (w *CreateTokenWizard) readHook() error {
	hook := token.TransferHookConfig{
		Enabled:          w.hookForm.Checked("enabled"),
		WhitelistEnabled: w.hookForm.Checked("whitelist"),
		KYCEnabled:       w.hookForm.Checked("kyc"),
		HookProgramID:    strings.TrimSpace(w.hookForm.GetValue("program")),
	}

	var err error
	if hook.MinTransferAmount, err = optionalAmount(w.hookForm.GetValue("min")); err != nil {
		return fmt.Errorf("min transfer amount: %w", err)
	}
	if hook.MaxTransferAmount, err = optionalAmount(w.hookForm.GetValue("max")); err != nil {
		return fmt.Errorf("max transfer amount: %w", err)
	}
	if hook.TransferFeePercent, err = optionalAmount(w.hookForm.GetValue("fee")); err != nil {
		return fmt.Errorf("transfer fee: %w", err)
	}
	w.draft.Hook = hook
	return nil
}

func (w *CreateTokenWizard) readLiquidity() error {
	var err error
	if w.draft.Liquidity, err = quote.ParseAmount(w.liquidityForm.GetValue("liquidity")); err != nil {
		return errors.New("liquidity amount must be a number")
	}
	if w.draft.InitialPrice, err = quote.ParseAmount(w.liquidityForm.GetValue("price")); err != nil {
		return errors.New("initial price must be a number")
	}
	w.draft.PoolFee = w.liquidityForm.GetValue("pool_fee")
	return nil
}

// optionalAmount reads an optional numeric field. Blank is zero.
func optionalAmount(s string) (float64, error) {
	v, err := quote.ParseAmount(s)
	if errors.Is(err, quote.ErrEmptyAmount) {
		return 0, nil
	}
	return v, err
}

// confirm validates the whole draft and registers the token and its pool.
func (w *CreateTokenWizard) confirm() tea.Cmd {
	w.errors = nil
	d := w.draft

	if err := d.Validate(w.deps.Hooks); err != nil {
		w.errors = append(w.errors, err.Error())
		return nil
	}

	t := token.Token{
		Symbol:  d.Symbol,
		Name:    d.Name,
		Price:   d.InitialPrice,
		Balance: d.Supply,
	}
	if err := w.deps.Catalog.Add(t, token.VariantSwap, token.VariantHome); err != nil {
		w.errors = append(w.errors, err.Error())
		return nil
	}

	value := d.Liquidity * d.InitialPrice
	w.deps.Catalog.AddPool(token.Pool{
		ID:        uuid.New().String(),
		Base:      d.Symbol,
		Quote:     poolQuoteSymbol,
		Liquidity: value,
		Share:     100,
		Value:     value,
		Mine:      true,
	})

	w.deps.log().Info("Token drafted",
		zap.String("symbol", d.Symbol),
		zap.Float64("supply", d.Supply),
		zap.Bool("hook", d.Hook.Enabled),
		zap.String("pool_fee", d.PoolFee))

	w.deps.publish(events.TokenDraftedEvent{
		BaseEvent:   events.NewBase(events.TokenDrafted),
		Symbol:      d.Symbol,
		HookEnabled: d.Hook.Enabled,
	})
	w.deps.publish(events.Notify(events.LevelSuccess, "Token created",
		fmt.Sprintf("%s is live with a %s/%s pool", d.Symbol, d.Symbol, poolQuoteSymbol)))

	w.currentStep = StepDone
	return nil
}

// Step returns the current wizard step.
func (w *CreateTokenWizard) Step() CreateTokenStep { return w.currentStep }

// Draft returns the draft collected so far.
func (w *CreateTokenWizard) Draft() token.Draft { return w.draft }

// HookWarning returns the inline hook program warning, if any.
func (w *CreateTokenWizard) HookWarning() string { return w.hookWarning }

// Errors returns the errors of the last step transition.
func (w *CreateTokenWizard) Errors() []string { return w.errors }

func (w *CreateTokenWizard) View() string {
	var content strings.Builder

	content.WriteString(style.Title().Render(fmt.Sprintf("Create Token-2022 Token - Step %d/4", min(int(w.currentStep), int(StepReview))+1)))
	content.WriteString("\n\n")
	content.WriteString(w.renderStepIndicator())
	content.WriteString("\n\n")

	for _, err := range w.errors {
		content.WriteString(w.errorStyle.Render("✗ " + err))
		content.WriteString("\n")
	}
	if len(w.errors) > 0 {
		content.WriteString("\n")
	}

	content.WriteString(style.Panel().Render(w.renderCurrentStep()))
	content.WriteString("\n")
	content.WriteString(w.helpBar.SetWidth(w.width).View())
	return content.String()
}

func (w *CreateTokenWizard) renderStepIndicator() string {
	palette := style.DefaultPalette()
	steps := []string{"Basics", "Hook", "Liquidity", "Review"}

	indicators := make([]string, len(steps))
	for i, name := range steps {
		switch {
		case i == int(w.currentStep):
			indicators[i] = lipgloss.NewStyle().
				Foreground(palette.Background).
				Background(palette.Primary).
				Bold(true).
				Padding(0, 1).
				Render(fmt.Sprintf("%d. %s", i+1, name))
		case i < int(w.currentStep):
			indicators[i] = lipgloss.NewStyle().Foreground(palette.Success).Render("✓ " + name)
		default:
			indicators[i] = style.Muted().Render(fmt.Sprintf("%d. %s", i+1, name))
		}
	}
	return strings.Join(indicators, " → ")
}

func (w *CreateTokenWizard) renderCurrentStep() string {
	switch w.currentStep {
	case StepHook:
		view := w.hookForm.View()
		if w.hookWarning != "" {
			view += "\n\n" + w.warningStyle.Render("⚠ "+w.hookWarning)
		}
		return view
	case StepReview:
		return w.renderReview()
	case StepDone:
		return w.renderDone()
	default:
		return w.currentForm().View()
	}
}

func (w *CreateTokenWizard) renderReview() string {
	d := w.draft

	hook := "disabled"
	if d.Hook.Enabled {
		var flags []string
		if d.Hook.WhitelistEnabled {
			flags = append(flags, "whitelist")
		}
		if d.Hook.KYCEnabled {
			flags = append(flags, "KYC")
		}
		if d.Hook.TransferFeePercent > 0 {
			flags = append(flags, fmt.Sprintf("fee %g%%", d.Hook.TransferFeePercent))
		}
		hook = "enabled"
		if len(flags) > 0 {
			hook += " (" + strings.Join(flags, ", ") + ")"
		}
	}
	program := d.Hook.HookProgramID
	if program == "" {
		program = "-"
	}

	w.previewTable.SetRows([][]string{
		{"Name", d.Name},
		{"Symbol", d.Symbol},
		{"Decimals", strconv.Itoa(d.Decimals)},
		{"Supply", quote.Format(d.Supply)},
		{"Transfer Hook", hook},
		{"Hook Program", program},
		{"Liquidity", quote.Format(d.Liquidity)},
		{"Initial Price", "$" + quote.Format(d.InitialPrice)},
		{"Pool Fee", d.PoolFee},
		{"Market Cap", "$" + quote.FormatPlaces(d.MarketCap(), 2)},
	})

	var content strings.Builder
	content.WriteString(w.stepStyle.Render("Review"))
	content.WriteString("\n\n")
	content.WriteString(w.previewTable.View())
	content.WriteString("\n\n")
	content.WriteString(style.Muted().Render("Press Enter to create the token, or Esc to go back."))
	return content.String()
}

func (w *CreateTokenWizard) renderDone() string {
	var content strings.Builder
	content.WriteString(w.successStyle.Render("✓ Token Created Successfully!"))
	content.WriteString("\n\n")
	content.WriteString(fmt.Sprintf("%s (%s) is now listed with a %s/%s pool.", w.draft.Name, w.draft.Symbol, w.draft.Symbol, poolQuoteSymbol))
	content.WriteString("\n\n")
	content.WriteString(style.Muted().Render("Press Enter to return."))
	return content.String()
}

func (w *CreateTokenWizard) SetSize(width, height int) {
	w.width = width
	w.height = height

	formWidth := width - 8
	w.basicForm.SetWidth(formWidth)
	w.hookForm.SetWidth(formWidth)
	w.liquidityForm.SetWidth(formWidth)
}
