// Package selection holds the in-progress state of the "log multiple habits
// at once" form: which actions are picked and, per action, a note and an
// intended completion timestamp.
package selection

import (
	"strings"
	"sync"
	"time"

	"github.com/habitboard/habitboard/services"
)

const (
	dateLayout   = "2006-01-02"
	minuteLayout = "2006-01-02T15:04"
	secondLayout = "2006-01-02T15:04:05"
	timeOfDay    = "15:04"
	// backdateTime is assumed when the user picks a non-today date: if
	// you're back-dating, you probably don't remember the exact time.
	backdateTime = "10:10"
	// SuccessDuration is how long the transient post-submit indicator stays
	// up before auto-clearing.
	SuccessDuration = 2500 * time.Millisecond
)

// Entry is the editable state for one selected action. CompletedAt is a
// combined date+time string at minute precision ("2006-01-02T15:04").
type Entry struct {
	Note        string `json:"note"`
	CompletedAt string `json:"completed_at"`
}

// Model maps action ids to their in-progress entries for one action-type
// tab. It is safe for concurrent use by handlers of the same session.
type Model struct {
	mu           sync.Mutex
	now          func() time.Time
	actionType   int
	entries      map[uint]Entry
	order        []uint
	success      bool
	successTimer *time.Timer
}

// NewModel creates an empty model for the given action type.
func NewModel(actionType int) *Model {
	return &Model{
		now:        time.Now,
		actionType: actionType,
		entries:    map[uint]Entry{},
	}
}

// WithClock overrides the model's clock; tests only.
func (m *Model) WithClock(now func() time.Time) *Model {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
	return m
}

// Toggle selects or deselects an action. Selecting an unselected action
// creates a default entry: empty note, completion timestamp "now" at minute
// precision. Deselecting discards the entry and its edits. Selecting an
// already-selected action is a no-op.
func (m *Model) Toggle(actionID uint, selected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !selected {
		if _, ok := m.entries[actionID]; ok {
			delete(m.entries, actionID)
			for i, id := range m.order {
				if id == actionID {
					m.order = append(m.order[:i], m.order[i+1:]...)
					break
				}
			}
		}
		return
	}
	if _, ok := m.entries[actionID]; ok {
		return
	}
	m.entries[actionID] = Entry{CompletedAt: m.now().Format(minuteLayout)}
	m.order = append(m.order, actionID)
}

// SetNote edits the note of an existing entry. Edits never create entries:
// an unselected action is left untouched and false is returned.
func (m *Model) SetNote(actionID uint, note string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[actionID]
	if !ok {
		return false
	}
	entry.Note = note
	m.entries[actionID] = entry
	return true
}

// SetCompletedAt replaces the full date+time value of an existing entry.
func (m *Model) SetCompletedAt(actionID uint, value string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[actionID]
	if !ok {
		return false
	}
	entry.CompletedAt = value
	m.entries[actionID] = entry
	return true
}

// SetDate changes the date portion of an entry's completion timestamp. The
// time portion resets as a side effect: to the current wall-clock time when
// the new date is today, otherwise to the fixed back-dating default.
func (m *Model) SetDate(actionID uint, date string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[actionID]
	if !ok {
		return false
	}
	now := m.now()
	t := backdateTime
	if date == now.Format(dateLayout) {
		t = now.Format(timeOfDay)
	}
	entry.CompletedAt = date + "T" + t
	m.entries[actionID] = entry
	return true
}

// SetTime changes only the time portion, keeping the entry's current date.
func (m *Model) SetTime(actionID uint, timeValue string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[actionID]
	if !ok {
		return false
	}
	date := entry.CompletedAt
	if i := strings.IndexByte(date, 'T'); i >= 0 {
		date = date[:i]
	}
	entry.CompletedAt = date + "T" + timeValue
	m.entries[actionID] = entry
	return true
}

// SetType switches the action-type tab. The selection map is cleared
// unconditionally: entries from a different type never carry over.
func (m *Model) SetType(actionType int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actionType = actionType
	m.entries = map[uint]Entry{}
	m.order = nil
}

// ActionType returns the current tab.
func (m *Model) ActionType() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.actionType
}

// Entries returns a snapshot of the selection keyed by action id.
func (m *Model) Entries() map[uint]Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[uint]Entry, len(m.entries))
	for id, e := range m.entries {
		out[id] = e
	}
	return out
}

// Count returns the number of selected actions.
func (m *Model) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Rows transforms the selection into mutation rows, in selection order.
// Empty notes become nil; completion timestamps gain a seconds suffix; an
// entry somehow missing its timestamp falls back to the current instant.
func (m *Model) Rows() []services.HabitInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := make([]services.HabitInput, 0, len(m.entries))
	for _, id := range m.order {
		entry := m.entries[id]
		var note *string
		if entry.Note != "" {
			n := entry.Note
			note = &n
		}
		completedAt := m.now()
		if entry.CompletedAt != "" {
			if t, err := time.ParseInLocation(secondLayout, entry.CompletedAt+":00", time.Local); err == nil {
				completedAt = t
			}
		}
		rows = append(rows, services.HabitInput{
			ActionID:    id,
			Note:        note,
			CompletedAt: completedAt,
		})
	}
	return rows
}

// MarkSubmitted records a successful submit: the selection clears and the
// transient success flag raises, auto-clearing after SuccessDuration. A
// pending timer from an earlier submit is cancelled first so it cannot fire
// against the new state.
func (m *Model) MarkSubmitted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = map[uint]Entry{}
	m.order = nil
	m.success = true
	if m.successTimer != nil {
		m.successTimer.Stop()
	}
	m.successTimer = time.AfterFunc(SuccessDuration, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.success = false
	})
}

// Success reports whether the transient post-submit indicator is up.
func (m *Model) Success() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.success
}

// Close cancels any pending success timer. Call on teardown so a stray
// timer never fires against disposed state.
func (m *Model) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.successTimer != nil {
		m.successTimer.Stop()
		m.successTimer = nil
	}
	m.success = false
}
