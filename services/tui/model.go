// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tui is the terminal front end: a bubbletea model that shows the
// player's current frame beside its pseudocode and lets the learner ask
// the tutor about it.
//
// # Description
//
// The model never owns playback state. It drives a *player.Player through
// key presses and re-reads the player's State after every change. Timed
// ticks happen on the player's clock goroutine, so the model listens for
// them on a channel fed by a player observer. Chat answers stream the same
// way: chat.Session.Send runs inside a tea.Cmd and pushes partial replies
// onto a per-request channel.
//
// # Thread Safety
//
// Model is used from the bubbletea event loop only. The player and the
// chat session it points at are safe for concurrent use.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/AleutianAI/AlgoExplorer/pkg/frames"
	"github.com/AleutianAI/AlgoExplorer/services/chat"
	"github.com/AleutianAI/AlgoExplorer/services/generator"
	"github.com/AleutianAI/AlgoExplorer/services/player"
)

// SpeedStep is how much + and - change the playback delay.
const SpeedStep = 100 * time.Millisecond

// transcriptTail is the number of chat messages shown.
const transcriptTail = 4

// ErrNoPlayer is returned by New without a player.
var ErrNoPlayer = errors.New("tui needs a player")

// =============================================================================
// Messages
// =============================================================================

// FrameMsg reports that the player moved or changed state.
type FrameMsg struct{}

type chatChunkMsg struct {
	ch <-chan chat.Message
}

type chatDoneMsg struct {
	reply chat.Message
	err   error
}

// =============================================================================
// Config
// =============================================================================

// DraftStore keeps an unsent question per provider and algorithm.
type DraftStore interface {
	Draft(ctx context.Context, provider string, algo frames.AlgorithmType) (string, error)
	SetDraft(ctx context.Context, provider string, algo frames.AlgorithmType, draft string) error
}

// Options configures New.
type Options struct {
	Algorithm frames.AlgorithmType

	// Player is required. The caller loads the first sequence.
	Player *player.Player

	// Session enables the tutor. Optional.
	Session *chat.Session

	// Drafts keeps a question the user backed out of. Optional.
	Drafts DraftStore

	// Regenerate produces a fresh sequence for the n key. Optional.
	Regenerate func(ctx context.Context) ([]frames.Frame, error)

	// Context bounds chat requests. Default: context.Background().
	Context context.Context

	Logger *slog.Logger
}

// =============================================================================
// Model
// =============================================================================

// Model is the bubbletea model for the player screen.
type Model struct {
	ctx        context.Context
	logger     *slog.Logger
	algo       frames.AlgorithmType
	player     *player.Player
	session    *chat.Session
	drafts     DraftStore
	regenerate func(ctx context.Context) ([]frames.Frame, error)
	code       []string

	events      chan struct{}
	unsubscribe func()

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	input   textinput.Model

	frame frames.Frame
	state player.State

	width     int
	height    int
	asking    bool
	streaming bool
	status    string
	err       error
	quitting  bool
}

// New builds the model and subscribes it to the player.
func New(opts Options) (Model, error) {
	if opts.Player == nil {
		return Model{}, ErrNoPlayer
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	in := textinput.New()
	in.Placeholder = "Ask about this step"
	in.CharLimit = 1000
	in.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = modelStyle

	m := Model{
		ctx:        opts.Context,
		logger:     opts.Logger.With("component", "tui"),
		algo:       opts.Algorithm,
		player:     opts.Player,
		session:    opts.Session,
		drafts:     opts.Drafts,
		regenerate: opts.Regenerate,
		code:       generator.Pseudocode(opts.Algorithm),
		events:     make(chan struct{}, 1),
		keys:       defaultKeys(),
		help:       help.New(),
		spinner:    sp,
		input:      in,
	}
	events := m.events
	m.unsubscribe = opts.Player.Subscribe(func(player.Event) {
		select {
		case events <- struct{}{}:
		default:
		}
	})
	m.refresh()
	return m, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.waitForFrame()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = max(20, msg.Width-6)
		return m, nil

	case FrameMsg:
		m.refresh()
		return m, m.waitForFrame()

	case chatChunkMsg:
		return m, waitForChunk(msg.ch)

	case chatDoneMsg:
		m.streaming = false
		if msg.err != nil {
			m.err = msg.err
		}
		return m, nil

	case spinner.TickMsg:
		if !m.streaming {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.asking {
			return m.handleInput(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderBody())
	b.WriteString("\n")
	if m.frame != nil {
		b.WriteString(descriptionStyle.Render(m.frame.StepInfo().Description))
		b.WriteString("\n")
	}
	b.WriteString(m.renderStatus())

	if m.session != nil {
		b.WriteString("\n\n")
		b.WriteString(m.renderChat())
	}
	if m.asking {
		b.WriteString("\n")
		b.WriteString(m.input.View())
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("error: " + m.err.Error()))
	} else if m.status != "" {
		b.WriteString("\n")
		b.WriteString(statsStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// Close stops the tutor request, saves the transcript and detaches from the
// player. Run calls it on exit.
func (m Model) Close() {
	if m.session != nil {
		m.session.Stop()
		if err := m.session.Save(context.WithoutCancel(m.ctx)); err != nil {
			m.logger.Warn("transcript not saved", "error", err)
		}
	}
	m.player.Pause()
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Run shows the model full screen until the user quits or ctx ends.
func Run(ctx context.Context, m Model) error {
	defer m.Close()
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// =============================================================================
// Key Handling
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Toggle):
		m.player.Toggle()

	case key.Matches(msg, m.keys.Back):
		m.player.StepBack()

	case key.Matches(msg, m.keys.Forward):
		m.player.StepForward()

	case key.Matches(msg, m.keys.Reset):
		m.player.Reset()

	case key.Matches(msg, m.keys.Faster):
		m.player.SetSpeed(m.player.State().Speed - SpeedStep)

	case key.Matches(msg, m.keys.Slower):
		m.player.SetSpeed(m.player.State().Speed + SpeedStep)

	case key.Matches(msg, m.keys.New):
		m.newInput()

	case key.Matches(msg, m.keys.Ask):
		if m.session == nil {
			m.status = "The tutor is not configured."
			break
		}
		m.asking = true
		m.input.SetValue(m.loadDraft())
		m.input.CursorEnd()
		m.refresh()
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Stop):
		if m.session != nil && m.session.Stop() {
			m.streaming = false
			m.status = "Stopped."
		}

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	m.refresh()
	return m, nil
}

func (m Model) handleInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Stop):
		m.saveDraft(m.input.Value())
		m.asking = false
		m.input.Blur()
		m.input.Reset()
		return m, nil

	case key.Matches(msg, m.keys.Send):
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.saveDraft("")
		m.asking = false
		m.input.Blur()
		m.input.Reset()
		return m.ask(text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// newInput swaps in a fresh sequence from Regenerate.
func (m *Model) newInput() {
	if m.regenerate == nil {
		m.status = "This sequence was loaded from a file."
		return
	}
	fs, err := m.regenerate(m.ctx)
	if err != nil {
		m.logger.Warn("regenerate failed", "algorithm", m.algo.Slug(), "error", err)
		m.err = err
		return
	}
	m.err = nil
	m.player.Load(fs)
	m.status = fmt.Sprintf("New input: %d steps.", len(fs))
}

func (m Model) loadDraft() string {
	if m.drafts == nil {
		return ""
	}
	draft, err := m.drafts.Draft(m.ctx, m.session.Provider(), m.algo)
	if err != nil {
		m.logger.Debug("draft not restored", "error", err)
		return ""
	}
	return draft
}

func (m Model) saveDraft(text string) {
	if m.drafts == nil {
		return
	}
	if err := m.drafts.SetDraft(m.ctx, m.session.Provider(), m.algo, strings.TrimSpace(text)); err != nil {
		m.logger.Warn("draft not saved", "error", err)
	}
}

// ask sends text with the current frame as context. The reply streams into
// the session transcript, which View reads directly.
func (m Model) ask(text string) (tea.Model, tea.Cmd) {
	ch := make(chan chat.Message, 1)
	sess, ctx, frame := m.session, m.ctx, m.player.Current()

	send := func() tea.Msg {
		reply, err := sess.Send(ctx, text, frame, func(msg chat.Message) {
			offer(ch, msg)
		})
		close(ch)
		return chatDoneMsg{reply: reply, err: err}
	}

	m.err = nil
	m.streaming = true
	return m, tea.Batch(send, waitForChunk(ch), m.spinner.Tick)
}

// =============================================================================
// Channels
// =============================================================================

func (m Model) waitForFrame() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		<-events
		return FrameMsg{}
	}
}

func waitForChunk(ch <-chan chat.Message) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return chatChunkMsg{ch: ch}
	}
}

// offer keeps only the newest message in a one-slot channel. The session
// delivers the whole reply so far, so older values can be dropped.
func offer(ch chan chat.Message, msg chat.Message) {
	for {
		select {
		case ch <- msg:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// =============================================================================
// View Helpers
// =============================================================================

func (m *Model) refresh() {
	m.state = m.player.State()
	m.frame = m.player.Current()
}

func (m Model) renderHeader() string {
	title := "AlgoExplorer"
	if m.algo.Valid() {
		title = fmt.Sprintf("AlgoExplorer · %s", m.algo)
		return titleStyle.Render(title) + statsStyle.Render("  "+string(m.algo.Category()))
	}
	return titleStyle.Render(title)
}

func (m Model) renderBody() string {
	var codeLine *int
	if m.frame != nil {
		codeLine = m.frame.StepInfo().CodeLine
	}
	code := RenderCode(m.code, codeLine)
	if code == "" {
		return Render(m.frame, m.width)
	}
	pane := paneStyle.Render(code)
	frameWidth := 0
	if m.width > 0 {
		frameWidth = max(20, m.width-lipgloss.Width(pane)-2)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, Render(m.frame, frameWidth), "  ", pane)
}

func (m Model) renderStatus() string {
	if m.state.Len == 0 {
		return statsStyle.Render("empty sequence")
	}
	mode := "paused"
	if m.state.Playing {
		mode = "playing"
	}
	return statsStyle.Render(fmt.Sprintf("step %d/%d · %s · %dms",
		m.state.Index+1, m.state.Len, mode, m.state.Speed.Milliseconds()))
}

func (m Model) renderChat() string {
	msgs := m.session.Messages()
	if len(msgs) > transcriptTail {
		msgs = msgs[len(msgs)-transcriptTail:]
	}
	wrap := lipgloss.NewStyle()
	if m.width > 4 {
		wrap = wrap.Width(m.width - 4)
	}

	var b strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			b.WriteString("\n")
		}
		label := userStyle.Render("you: ")
		if msg.Role == chat.RoleModel {
			label = modelStyle.Render(m.session.Provider() + ": ")
		}
		text := msg.Text
		if m.streaming && i == len(msgs)-1 && msg.Role == chat.RoleModel {
			text += " " + m.spinner.View()
		}
		b.WriteString(wrap.Render(label + text))
	}
	return b.String()
}
