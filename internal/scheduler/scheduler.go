// Package scheduler runs independent repeating tasks on the bubbletea event
// loop. Each task runs to completion inside Update and then arms its next
// tick; nothing runs concurrently and missed ticks are never replayed.
package scheduler

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg fires a single task.
type TickMsg struct {
	Task string
	At   time.Time
}

// Task is a repeating unit of work.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(now time.Time)
}

// Scheduler owns the registered tasks. It is only touched from Update.
type Scheduler struct {
	tasks   map[string]Task
	order   []string
	alive   func() bool
	stopped bool
	runs    map[string]uint64
}

// New returns a scheduler that stops re-arming once alive reports false.
// A nil alive means always alive.
func New(alive func() bool) *Scheduler {
	if alive == nil {
		alive = func() bool { return true }
	}
	return &Scheduler{
		tasks: make(map[string]Task),
		alive: alive,
		runs:  make(map[string]uint64),
	}
}

// Register adds a task; names must be unique and intervals positive.
func (s *Scheduler) Register(t Task) error {
	if t.Name == "" {
		return fmt.Errorf("task name is required")
	}
	if t.Interval <= 0 {
		return fmt.Errorf("task %q: interval must be > 0", t.Name)
	}
	if t.Run == nil {
		return fmt.Errorf("task %q: run func is required", t.Name)
	}
	if _, dup := s.tasks[t.Name]; dup {
		return fmt.Errorf("task %q already registered", t.Name)
	}
	s.tasks[t.Name] = t
	s.order = append(s.order, t.Name)
	return nil
}

// Start fires every task once, right away, in registration order.
func (s *Scheduler) Start() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(s.order))
	for _, name := range s.order {
		name := name
		cmds = append(cmds, func() tea.Msg { return TickMsg{Task: name, At: time.Now()} })
	}
	return tea.Batch(cmds...)
}

// Handle runs the task named by msg and returns the command that arms its
// next tick, or nil when the scheduler is stopped or the surface is gone.
func (s *Scheduler) Handle(msg TickMsg) tea.Cmd {
	t, ok := s.tasks[msg.Task]
	if !ok || !s.live() {
		return nil
	}
	t.Run(msg.At)
	s.runs[t.Name]++
	if !s.live() {
		return nil
	}
	return arm(t)
}

// Stop prevents any further re-arming. In-flight ticks are dropped.
func (s *Scheduler) Stop() { s.stopped = true }

// Runs reports how many times a task has run.
func (s *Scheduler) Runs(name string) uint64 { return s.runs[name] }

// Tasks lists task names in registration order.
func (s *Scheduler) Tasks() []string { return append([]string(nil), s.order...) }

func (s *Scheduler) live() bool { return !s.stopped && s.alive() }

func arm(t Task) tea.Cmd {
	name := t.Name
	return tea.Tick(t.Interval, func(at time.Time) tea.Msg {
		return TickMsg{Task: name, At: at}
	})
}
