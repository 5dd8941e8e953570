// internal/ui/screen/welcome.go
package screen

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/dex2k/internal/ui"
	"github.com/rovshanmuradov/dex2k/internal/ui/component"
	"github.com/rovshanmuradov/dex2k/internal/ui/router"
	"github.com/rovshanmuradov/dex2k/internal/ui/style"
	"go.uber.org/zap"
)

type slide struct {
	title string
	body  string
}

var welcomeSlides = []slide{
	{
		title: "Welcome to the Future",
		body:  "Experience the next generation of decentralized trading with Token-2022 transfer hooks.",
	},
	{
		title: "Secure Trading",
		body:  "Every hook program is checked against a whitelist before a token can use it.",
	},
	{
		title: "Lightning Fast",
		body:  "Live prices, instant quotes and a swap form that never shows a stale price.",
	},
	{
		title: "Advanced Features",
		body:  "Create Token-2022 tokens with KYC, transfer limits and fees, then seed a pool.",
	},
}

type onboardedMsg struct {
	err error
}

// WelcomeScreen is the first-run onboarding flow.
type WelcomeScreen struct {
	deps   *Deps
	keyMap ui.KeyMap
	width  int
	height int
	page   int

	helpBar *component.HelpBar
}

// NewWelcomeScreen creates the onboarding screen.
func NewWelcomeScreen(deps *Deps) *WelcomeScreen {
	keyMap := ui.DefaultKeyMap()
	return &WelcomeScreen{
		deps:    deps,
		keyMap:  keyMap,
		helpBar: component.NewHelpBar().SetKeyBindings(keyMap.ContextualHelp(ui.RouteWelcome)),
	}
}

func (s *WelcomeScreen) Route() ui.Route { return ui.RouteWelcome }

func (s *WelcomeScreen) Init() tea.Cmd { return nil }

func (s *WelcomeScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keyMap.Right):
			if s.page < len(welcomeSlides)-1 {
				s.page++
			}
		case key.Matches(msg, s.keyMap.Left):
			if s.page > 0 {
				s.page--
			}
		case key.Matches(msg, s.keyMap.Enter):
			if s.page < len(welcomeSlides)-1 {
				s.page++
				return s, nil
			}
			return s, s.complete()
		}

	case onboardedMsg:
		cmds := []tea.Cmd{func() tea.Msg { return ui.RouterMsg{To: ui.RouteHome, Replace: true} }}
		if msg.err != nil {
			// the flow still continues, the flag is just asked for again next start
			s.deps.log().Warn("Failed to persist onboarding", zap.Error(msg.err))
			err := msg.err
			cmds = append(cmds, func() tea.Msg { return ui.ErrorMsg{Title: "Onboarding", Error: err} })
		}
		return s, tea.Batch(cmds...)
	}
	return s, nil
}

func (s *WelcomeScreen) complete() tea.Cmd {
	state := s.deps.State
	ctx := s.deps.ctx()
	return func() tea.Msg {
		if state == nil {
			return onboardedMsg{}
		}
		return onboardedMsg{err: state.CompleteOnboarding(ctx)}
	}
}

// Page returns the current slide index.
func (s *WelcomeScreen) Page() int { return s.page }

func (s *WelcomeScreen) View() string {
	palette := style.DefaultPalette()
	sl := welcomeSlides[s.page]

	logo := lipgloss.NewStyle().Foreground(palette.Primary).Bold(true).Render("Dex2.0K")
	sub := style.Muted().Render("Token-2022 AMM Platform")

	title := lipgloss.NewStyle().Foreground(palette.Text).Bold(true).MarginTop(1).Render(sl.title)
	body := lipgloss.NewStyle().Foreground(palette.TextSecondary).Width(50).Render(sl.body)

	dots := make([]string, len(welcomeSlides))
	for i := range welcomeSlides {
		if i == s.page {
			dots[i] = lipgloss.NewStyle().Foreground(palette.Primary).Render("●")
		} else {
			dots[i] = style.Muted().Render("○")
		}
	}

	cta := "next →"
	if s.page == len(welcomeSlides)-1 {
		cta = "Get started"
	}
	button := lipgloss.NewStyle().
		Foreground(palette.Background).
		Background(palette.Primary).
		Bold(true).
		Padding(0, 3).
		MarginTop(1).
		Render(cta)

	content := lipgloss.JoinVertical(lipgloss.Center,
		logo, sub, title, body,
		"", strings.Join(dots, " "),
		button,
		style.Muted().Render(fmt.Sprintf("%d/%d", s.page+1, len(welcomeSlides))),
	)
	panel := style.Panel().Render(content)

	view := lipgloss.JoinVertical(lipgloss.Center, panel, s.helpBar.SetWidth(s.width).View())
	if s.width > 0 && s.height > 0 {
		return lipgloss.Place(s.width, s.height, lipgloss.Center, lipgloss.Center, view)
	}
	return view
}

func (s *WelcomeScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
}
