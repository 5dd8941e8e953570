// internal/ui/recovery.go
package ui

import (
	"fmt"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// SafeModel wraps a tea.Model so a panic in a screen shows an error toast
// instead of tearing down the terminal.
type SafeModel struct {
	model  tea.Model
	logger *zap.Logger
	panics int
}

// NewSafeModel wraps model.
func NewSafeModel(model tea.Model, logger *zap.Logger) *SafeModel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SafeModel{model: model, logger: logger}
}

// Init wraps the Init method with panic recovery
func (sm *SafeModel) Init() (cmd tea.Cmd) {
	defer sm.recoverFromPanic("Init", &cmd)
	return sm.model.Init()
}

// Update wraps the Update method with panic recovery. A panicking update
// keeps the previous model.
func (sm *SafeModel) Update(msg tea.Msg) (model tea.Model, cmd tea.Cmd) {
	model = sm
	defer sm.recoverFromPanic("Update", &cmd)

	next, c := sm.model.Update(msg)
	sm.model = next
	return sm, c
}

// View wraps the View method with panic recovery
func (sm *SafeModel) View() (view string) {
	defer func() {
		if r := recover(); r != nil {
			sm.panics++
			sm.logger.Error("View panic recovered",
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())))
			view = "UI error: view crashed. Press ctrl+c to exit."
		}
	}()
	return sm.model.View()
}

// Panics returns how many panics were recovered.
func (sm *SafeModel) Panics() int {
	return sm.panics
}

// Unwrap returns the wrapped model.
func (sm *SafeModel) Unwrap() tea.Model {
	return sm.model
}

func (sm *SafeModel) recoverFromPanic(method string, cmd *tea.Cmd) {
	if r := recover(); r != nil {
		sm.panics++
		sm.logger.Error("UI method panic recovered",
			zap.String("method", method),
			zap.Any("panic", r),
			zap.String("stack", string(debug.Stack())))
		*cmd = func() tea.Msg {
			return ErrorMsg{Title: "Internal error", Error: fmt.Errorf("%s: %v", method, r)}
		}
	}
}
