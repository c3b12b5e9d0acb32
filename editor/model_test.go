package editor_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/aunela/kaiku"
	"github.com/aunela/kaiku/editor"
)

type myWriteCloser struct {
	*bytes.Buffer
}

func (mwc *myWriteCloser) Close() error {
	// Noop
	return nil
}

func trackNames(m *editor.Model) []string {
	var ret []string
	for t := range m.Project().Tracks.Iterate {
		ret = append(ret, t.Name())
	}
	return ret
}

func expectTracks(t *testing.T, m *editor.Model, want ...string) {
	t.Helper()
	got := trackNames(m)
	if len(got) != len(want) {
		t.Fatalf("got tracks %v, expected %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("got tracks %v, expected %v", got, want)
		}
	}
}

func TestCommitPendingRecordsOneUndoStep(t *testing.T) {
	m := editor.NewModel()
	id := m.AddWaveTrack("drums", 1)
	pending, err := m.EditTrack(id, nil)
	if err != nil {
		t.Fatalf("EditTrack failed: %v", err)
	}
	pending.SetName("drums (comped)")
	expectTracks(t, m, "drums") // not committed yet
	changed, err := m.CommitPending()
	if err != nil || !changed {
		t.Fatalf("CommitPending got (%v, %v), expected (true, nil)", changed, err)
	}
	expectTracks(t, m, "drums (comped)")
	if !m.ChangedSinceSave() {
		t.Fatal("committing did not mark the project changed")
	}
	m.Undo()
	expectTracks(t, m, "drums")
	m.Redo()
	expectTracks(t, m, "drums (comped)")
}

func TestNoopCommitLeavesHistoryAlone(t *testing.T) {
	m := editor.NewModel()
	m.AddWaveTrack("drums", 1)
	m.Undo() // empty again, no undo steps left
	if m.CanUndo() {
		t.Fatal("expected an empty undo history")
	}
	changed, err := m.CommitPending()
	if changed || err != nil {
		t.Fatalf("CommitPending got (%v, %v), expected (false, nil)", changed, err)
	}
	if m.CanUndo() {
		t.Fatal("a no-op commit recorded an undo step")
	}
}

func TestCommitAfterDeleteRollsBack(t *testing.T) {
	m := editor.NewModel()
	id := m.AddWaveTrack("drums", 1)
	pending, err := m.EditTrack(id, nil)
	if err != nil {
		t.Fatalf("EditTrack failed: %v", err)
	}
	pending.SetName("drums (edited)")
	if !m.DeleteTrack(id) {
		t.Fatal("DeleteTrack did not remove the track")
	}
	changed, err := m.CommitPending()
	if !errors.Is(err, kaiku.ErrCommitFailed) {
		t.Fatalf("got error %v, expected ErrCommitFailed", err)
	}
	if changed {
		t.Fatal("a failed commit reported a change")
	}
	expectTracks(t, m) // still deleted, not resurrected
	m.Undo()
	expectTracks(t, m, "drums")
}

func TestDiscardPending(t *testing.T) {
	m := editor.NewModel()
	id := m.AddWaveTrack("drums", 1)
	pending, _ := m.EditTrack(id, nil)
	pending.SetName("scrapped idea")
	m.DiscardPending()
	if changed, err := m.CommitPending(); changed || err != nil {
		t.Fatalf("CommitPending after discard got (%v, %v), expected (false, nil)", changed, err)
	}
	expectTracks(t, m, "drums")
}

func TestUndoDiscardsPendingState(t *testing.T) {
	m := editor.NewModel()
	id := m.AddWaveTrack("drums", 1)
	m.AddLabelTrack("markers")
	pending, _ := m.EditTrack(id, nil)
	pending.SetName("drums (edited)")
	m.Undo() // back to just the drums; the staged edit is against a stale list
	if changed, err := m.CommitPending(); changed || err != nil {
		t.Fatalf("CommitPending after undo got (%v, %v), expected (false, nil)", changed, err)
	}
	expectTracks(t, m, "drums")
}

func TestRenameCoalescesUndoSteps(t *testing.T) {
	m := editor.NewModel()
	id := m.AddWaveTrack("d", 1)
	for _, name := range []string{"dr", "dru", "drum", "drums"} {
		if !m.RenameTrack(id, name) {
			t.Fatalf("RenameTrack(%q) reported no change", name)
		}
	}
	expectTracks(t, m, "drums")
	m.Undo()
	expectTracks(t, m, "d") // keystroke renames coalesce to one step
	if m.RenameTrack(id, "d") {
		t.Fatal("renaming to the current name reported a change")
	}
}

func TestSortTracksByName(t *testing.T) {
	m := editor.NewModel()
	m.AddWaveTrack("Overheads", 2)
	m.AddLabelTrack("arrangement")
	m.AddWaveTrack("bass", 1)
	m.SortTracksByName()
	expectTracks(t, m, "arrangement", "bass", "Overheads", "Overheads")
	m.Undo()
	expectTracks(t, m, "Overheads", "Overheads", "arrangement", "bass")
}

func TestProjectFileRoundTrip(t *testing.T) {
	m := editor.NewModel()
	id := m.AddWaveTrack("drums", 2)
	group, _ := m.Project().Tracks.Group(id)
	group[0].(*kaiku.WaveTrack).Samples = []float32{0.5, -0.5}
	m.AddLabelTrack("markers")
	m.Project().Title = "demo"

	buf := &myWriteCloser{Buffer: &bytes.Buffer{}}
	if err := m.WriteProject(buf); err != nil {
		t.Fatalf("WriteProject failed: %v", err)
	}
	loaded := editor.NewModel()
	if err := loaded.ReadProject(io.NopCloser(bytes.NewReader(buf.Bytes()))); err != nil {
		t.Fatalf("ReadProject failed: %v", err)
	}
	if loaded.Project().Title != "demo" || loaded.Project().SampleRate != 44100 {
		t.Fatal("project metadata did not survive the round trip")
	}
	expectTracks(t, loaded, "drums", "drums", "markers")
	w, _ := loaded.Project().Tracks.FindLeader(id)
	if samples := w.(*kaiku.WaveTrack).Samples; len(samples) != 2 || samples[0] != 0.5 {
		t.Fatal("wave samples did not survive the round trip")
	}
}

func TestReadProjectRejectsGarbage(t *testing.T) {
	m := editor.NewModel()
	err := m.ReadProject(io.NopCloser(bytes.NewReader([]byte("\x00\x01garbage"))))
	if err == nil {
		t.Fatal("a garbage project file was accepted")
	}
}
