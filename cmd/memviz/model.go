// Command memviz is a bubbletea TUI that live-renders a segalloc heap's
// block map and size-class free lists as the user issues alloc/free
// keystrokes, the way cmd/hiveexplorer renders a registry key tree live as
// the user navigates it.
package main

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lonnb/segalloc/internal/diag"
	"github.com/lonnb/segalloc/internal/mm"
)

// Model is the application state bubbletea drives.
type Model struct {
	heap     *mm.Heap
	live     []int
	rng      *rand.Rand
	status   string
	width    int
	height   int
	quit     bool
	viewport viewport.Model
}

func newModel(cfg mm.Config) (*Model, error) {
	h := &mm.Heap{}
	if err := h.Init(cfg); err != nil {
		return nil, err
	}
	return &Model{heap: h, rng: rand.New(rand.NewSource(1)), status: "ready", viewport: viewport.New(0, 0)}, nil
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = max(40, msg.Width-4)
		m.viewport.Height = max(5, msg.Height-5)
		m.viewport.SetContent(renderHeapMap(m.heap))
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			_ = m.heap.Deinit()
			m.quit = true
			return m, tea.Quit
		case "a":
			m.alloc(64 + m.rng.Intn(512))
		case "A":
			m.alloc(1 + m.rng.Intn(32))
		case "f":
			m.freeRandom()
		case "c":
			m.check()
		case "y":
			if err := copyToClipboard(m.dumpText()); err != nil {
				m.status = fmt.Sprintf("clipboard copy failed: %v", err)
			} else {
				m.status = "heap map copied to clipboard"
			}
		default:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		m.viewport.SetContent(renderHeapMap(m.heap))
	}
	return m, nil
}

func (m *Model) alloc(size int) {
	p, err := m.heap.Malloc(size)
	if err != nil {
		m.status = fmt.Sprintf("malloc(%d) failed: %v", size, err)
		return
	}
	m.live = append(m.live, p)
	m.status = fmt.Sprintf("malloc(%d) -> %d", size, p)
}

func (m *Model) freeRandom() {
	if len(m.live) == 0 {
		m.status = "nothing to free"
		return
	}
	idx := m.rng.Intn(len(m.live))
	p := m.live[idx]
	m.live = append(m.live[:idx], m.live[idx+1:]...)
	if err := m.heap.Free(p); err != nil {
		m.status = fmt.Sprintf("free(%d) failed: %v", p, err)
		return
	}
	m.status = fmt.Sprintf("free(%d)", p)
}

func (m *Model) check() {
	violations := diag.Check(m.heap)
	if len(violations) == 0 {
		m.status = "invariants OK"
		return
	}
	m.status = fmt.Sprintf("%d invariant violation(s): %s", len(violations), violations[0].Error())
}

func (m *Model) dumpText() string {
	var b strings.Builder
	for _, blk := range diag.Walk(m.heap) {
		fmt.Fprintf(&b, "%-9s off=%-8d size=%-6d alloc=%v\n", blk.Kind, blk.Offset, blk.Size, blk.Allocated)
	}
	return b.String()
}

func (m *Model) View() string {
	if m.quit {
		return ""
	}
	header := headerStyle.Render("segalloc heap viewer — a/A alloc, f free, c check, y copy dump, arrows/pgup/pgdn scroll, q quit")
	body := paneStyle.Width(m.viewport.Width).Render(m.viewport.View())
	s := m.heap.Stats()
	status := statusStyle.Render(fmt.Sprintf("live=%d  alloc=%d free=%d split=%d grow=%d  %s",
		len(m.live), s.AllocCalls, s.FreeCalls, s.SplitCount, s.GrowCalls, m.status))
	return header + "\n" + body + "\n" + status
}
