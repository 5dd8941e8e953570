package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type panickyModel struct {
	panicOnInit   bool
	panicOnUpdate bool
	panicOnView   bool
	updates       int
}

func (m *panickyModel) Init() tea.Cmd {
	if m.panicOnInit {
		panic("init panic test")
	}
	return nil
}

func (m *panickyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.panicOnUpdate {
		panic("update panic test")
	}
	m.updates++
	return m, nil
}

func (m *panickyModel) View() string {
	if m.panicOnView {
		panic("view panic test")
	}
	return "ok"
}

func TestSafeModelPassesThrough(t *testing.T) {
	inner := &panickyModel{}
	sm := NewSafeModel(inner, zap.NewNop())

	assert.Nil(t, sm.Init())
	next, cmd := sm.Update(BackMsg{})
	assert.Same(t, sm, next)
	assert.Nil(t, cmd)
	assert.Equal(t, 1, inner.updates)
	assert.Equal(t, "ok", sm.View())
	assert.Equal(t, 0, sm.Panics())
}

func TestSafeModelRecoversUpdatePanic(t *testing.T) {
	inner := &panickyModel{panicOnUpdate: true}
	sm := NewSafeModel(inner, zap.NewNop())

	next, cmd := sm.Update(BackMsg{})
	assert.Same(t, sm, next)
	require.NotNil(t, cmd)

	msg, ok := cmd().(ErrorMsg)
	require.True(t, ok)
	assert.Contains(t, msg.Error.Error(), "update panic test")
	assert.Same(t, inner, sm.Unwrap(), "the previous model is kept")
	assert.Equal(t, 1, sm.Panics())

	// the loop keeps working once the screen behaves again
	inner.panicOnUpdate = false
	_, cmd = sm.Update(BackMsg{})
	assert.Nil(t, cmd)
	assert.Equal(t, 1, inner.updates)
}

func TestSafeModelRecoversInitAndViewPanics(t *testing.T) {
	sm := NewSafeModel(&panickyModel{panicOnInit: true, panicOnView: true}, nil)

	cmd := sm.Init()
	require.NotNil(t, cmd)
	_, ok := cmd().(ErrorMsg)
	assert.True(t, ok)

	assert.Contains(t, sm.View(), "UI error")
	assert.Equal(t, 2, sm.Panics())
}
