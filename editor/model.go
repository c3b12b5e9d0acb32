// Package editor implements the mutable state of one editing session: a
// project, its staging registry for deferred track edits, and the undo/redo
// history. It is owned by the single goroutine driving the user interface or
// tool; none of the methods are safe for concurrent use.
package editor

import (
	"fmt"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/aunela/kaiku"
)

type (
	// modelData is the part of the model that can be snapshotted; the undo
	// and redo stacks hold full copies of the Project, which for project
	// files of a desktop editor is cheap enough and keeps the history logic
	// trivially correct.
	modelData struct {
		Project          kaiku.Project
		FilePath         string
		ChangedSinceSave bool

		PrevUndoKind    string
		UndoSkipCounter int
		UndoStack       []kaiku.Project
		RedoStack       []kaiku.Project
	}

	Model struct {
		d       modelData
		pending *kaiku.PendingTracks
	}
)

const maxUndo = 64

// NewModel returns a model with an empty project. The model owns the single
// PendingTracks registry of the session and hands it to collaborators that
// need it; there is no global accessor.
func NewModel() *Model {
	m := new(Model)
	m.d.Project = kaiku.NewProject()
	m.pending = kaiku.NewPendingTracks(&m.d.Project.Tracks)
	return m
}

// Project returns the committed project state. Callers mutate it only through
// the model, so that history stays consistent.
func (m *Model) Project() *kaiku.Project { return &m.d.Project }

// Pending returns the staging registry of the session.
func (m *Model) Pending() *kaiku.PendingTracks { return m.pending }

func (m *Model) FilePath() string           { return m.d.FilePath }
func (m *Model) ChangedSinceSave() bool     { return m.d.ChangedSinceSave }
func (m *Model) SetChangedSinceSave(v bool) { m.d.ChangedSinceSave = v }

// SetProject replaces the whole project, pushing the old one to the undo
// history. Any pending state is discarded; the registry keeps augmenting the
// track list of the new project.
func (m *Model) SetProject(project kaiku.Project) {
	m.saveUndo("SetProject", 0)
	m.setProjectNoUndo(project)
}

func (m *Model) setProjectNoUndo(project kaiku.Project) {
	m.d.Project = project
	m.pending.Clear()
}

// AddWaveTrack appends a committed wave track group of the given channel
// count and returns its identity.
func (m *Model) AddWaveTrack(name string, channels int) kaiku.TrackID {
	m.saveUndo("AddWaveTrack", 0)
	return m.d.Project.Tracks.Add(kaiku.NewWaveTrack(name, channels)...)
}

// AddLabelTrack appends a committed label track and returns its identity.
func (m *Model) AddLabelTrack(name string) kaiku.TrackID {
	m.saveUndo("AddLabelTrack", 0)
	return m.d.Project.Tracks.Add(kaiku.NewLabelTrack(name))
}

// DeleteTrack removes the channel group with the given identity. Reports
// whether anything was removed. A pending changed entry registered for the
// identity is left in place; committing it will then fail and roll back, as
// the original is gone.
func (m *Model) DeleteTrack(id kaiku.TrackID) bool {
	if _, ok := m.d.Project.Tracks.FindLeader(id); !ok {
		return false
	}
	m.saveUndo("DeleteTrack", 0)
	return m.d.Project.Tracks.RemoveGroup(id)
}

// RenameTrack renames every channel of the group with the given identity.
func (m *Model) RenameTrack(id kaiku.TrackID, name string) bool {
	group, ok := m.d.Project.Tracks.Group(id)
	if !ok || group[0].Name() == name {
		return false
	}
	m.saveUndo("RenameTrack", 10)
	for _, t := range group {
		t.SetName(name)
	}
	return true
}

// SortTracksByName reorders the channel groups alphabetically by leader name,
// case-insensitively, keeping each group contiguous.
func (m *Model) SortTracksByName() {
	if m.d.Project.Tracks.NumGroups() < 2 {
		return
	}
	m.saveUndo("SortTracksByName", 0)
	c := collate.New(language.Und, collate.IgnoreCase)
	m.d.Project.Tracks.SortGroups(func(a, b kaiku.Track) bool {
		return c.CompareString(a.Name(), b.Name()) < 0
	})
}

// EditTrack starts a deferred edit of the committed group with the given
// identity, returning the pending leader the caller accumulates changes on.
// See kaiku.PendingTracks.RegisterChanged.
func (m *Model) EditTrack(id kaiku.TrackID, updater kaiku.Updater) (kaiku.Track, error) {
	leader, ok := m.d.Project.Tracks.FindLeader(id)
	if !ok {
		return nil, fmt.Errorf("no track with identity %d", id)
	}
	return m.pending.RegisterChanged(updater, leader)
}

// StageNewTracks stages freshly constructed tracks for addition on the next
// CommitPending.
func (m *Model) StageNewTracks(tracks []kaiku.Track) error {
	return m.pending.RegisterNewTracks(tracks)
}

// RefreshPending re-runs the updaters of all pending changed entries.
func (m *Model) RefreshPending() error {
	return m.pending.Refresh()
}

// CommitPending applies the pending state to the project. An undo step is
// recorded only when the track list really changed, so a no-op commit leaves
// the history alone. On commit failure the project is unchanged and no undo
// step is recorded; the pending state is gone in either case.
func (m *Model) CommitPending() (bool, error) {
	snapshot := m.d.Project.Copy()
	changed, err := m.pending.Apply()
	if changed {
		m.pushUndo(snapshot)
		m.d.ChangedSinceSave = true
	}
	return changed, err
}

// DiscardPending forgets all staged additions and changes.
func (m *Model) DiscardPending() {
	m.pending.Clear()
}

func (m *Model) CanUndo() bool { return len(m.d.UndoStack) > 0 }
func (m *Model) CanRedo() bool { return len(m.d.RedoStack) > 0 }

// Undo restores the latest project state from the undo history. Pending state
// is discarded, as it was staged against the replaced track list.
func (m *Model) Undo() {
	if !m.CanUndo() {
		return
	}
	m.d.RedoStack = append(m.d.RedoStack, m.d.Project.Copy())
	if len(m.d.RedoStack) >= maxUndo {
		copy(m.d.RedoStack, m.d.RedoStack[len(m.d.RedoStack)-maxUndo:])
		m.d.RedoStack = m.d.RedoStack[:maxUndo]
	}
	m.setProjectNoUndo(m.d.UndoStack[len(m.d.UndoStack)-1])
	m.d.UndoStack = m.d.UndoStack[:len(m.d.UndoStack)-1]
	m.d.PrevUndoKind = ""
}

// Redo restores the latest undone project state.
func (m *Model) Redo() {
	if !m.CanRedo() {
		return
	}
	m.d.UndoStack = append(m.d.UndoStack, m.d.Project.Copy())
	if len(m.d.UndoStack) >= maxUndo {
		copy(m.d.UndoStack, m.d.UndoStack[len(m.d.UndoStack)-maxUndo:])
		m.d.UndoStack = m.d.UndoStack[:maxUndo]
	}
	m.setProjectNoUndo(m.d.RedoStack[len(m.d.RedoStack)-1])
	m.d.RedoStack = m.d.RedoStack[:len(m.d.RedoStack)-1]
	m.d.PrevUndoKind = ""
}

// saveUndo pushes the current project to the undo history before a mutation.
// Consecutive mutations of the same kind are coalesced until undoSkipping
// steps have been skipped, so e.g. renaming does not spam the history.
func (m *Model) saveUndo(undoKind string, undoSkipping int) {
	m.d.ChangedSinceSave = true
	if m.d.PrevUndoKind == undoKind && m.d.UndoSkipCounter < undoSkipping {
		m.d.UndoSkipCounter++
		return
	}
	m.d.PrevUndoKind = undoKind
	m.d.UndoSkipCounter = 0
	m.pushUndo(m.d.Project.Copy())
}

func (m *Model) pushUndo(snapshot kaiku.Project) {
	m.d.UndoStack = append(m.d.UndoStack, snapshot)
	m.d.RedoStack = m.d.RedoStack[:0]
	if len(m.d.UndoStack) >= maxUndo {
		copy(m.d.UndoStack, m.d.UndoStack[len(m.d.UndoStack)-maxUndo:])
		m.d.UndoStack = m.d.UndoStack[:maxUndo]
	}
}
