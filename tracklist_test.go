package kaiku

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestTrackListAddAndLookup(t *testing.T) {
	list := &TrackList{}
	drums := list.Add(NewWaveTrack("drums", 2)...)
	bass := list.Add(NewWaveTrack("bass", 1)...)
	if drums == 0 || bass == 0 || drums == bass {
		t.Fatalf("Add handed out identities %d and %d", drums, bass)
	}
	if list.Len() != 3 || list.NumGroups() != 2 {
		t.Fatalf("list has %d tracks in %d groups, expected 3 in 2", list.Len(), list.NumGroups())
	}
	group, ok := list.Group(drums)
	if !ok || len(group) != 2 {
		t.Fatalf("Group(%d) returned %d tracks, expected 2", drums, len(group))
	}
	if group[0].ChannelIndex() != 0 || group[1].ChannelIndex() != 1 {
		t.Fatal("group channels are not in channel order")
	}
	if leader, ok := list.FindLeader(bass); !ok || leader.Name() != "bass" {
		t.Fatalf("FindLeader(%d) did not find the bass track", bass)
	}
	if _, ok := list.FindLeader(0); ok {
		t.Fatal("FindLeader(0) found a track for the unassigned identity")
	}
	if !list.RemoveGroup(drums) {
		t.Fatal("RemoveGroup did not remove the drums group")
	}
	if list.RemoveGroup(drums) {
		t.Fatal("RemoveGroup removed the drums group twice")
	}
	if list.Len() != 1 {
		t.Fatalf("list has %d tracks after removal, expected 1", list.Len())
	}
}

func TestTrackListCopyIsIndependent(t *testing.T) {
	list := &TrackList{}
	list.Add(NewWaveTrack("drums", 1)...)
	leader, _ := list.FindLeader(1)
	leader.(*WaveTrack).Samples = []float32{0.5}
	c := list.Copy()
	leader.SetName("renamed")
	leader.(*WaveTrack).Samples[0] = -1
	copied, _ := c.FindLeader(1)
	if copied.Name() != "drums" || copied.(*WaveTrack).Samples[0] != 0.5 {
		t.Fatal("mutating the original leaked into the copy")
	}
	if c.Add(NewLabelTrack("cues")) != 2 {
		t.Fatal("the copy did not inherit the identity allocator")
	}
}

func TestTrackListSortGroupsKeepsGroupsContiguous(t *testing.T) {
	list := &TrackList{}
	list.Add(NewWaveTrack("cymbals", 2)...)
	list.Add(NewLabelTrack("arrangement"))
	list.Add(NewWaveTrack("bass", 1)...)
	list.SortGroups(func(a, b Track) bool { return a.Name() < b.Name() })
	got := names(list.Iterate)
	expectNames(t, got, []string{"arrangement", "bass", "cymbals", "cymbals"})
	if err := validateTracks(list.tracks); err != nil {
		t.Fatalf("sorting broke the list structure: %v", err)
	}
}

func TestTrackListYamlRoundTrip(t *testing.T) {
	list := &TrackList{}
	list.Add(NewWaveTrack("drums", 2)...)
	leader, _ := list.FindLeader(1)
	leader.(*WaveTrack).Samples = []float32{0, 0.25, -0.5}
	leader.(*WaveTrack).Pan = -0.5
	label := NewLabelTrack("markers")
	label.Labels = []Label{{At: 1.5, Text: "verse"}}
	list.Add(label)

	b, err := yaml.Marshal(list)
	if err != nil {
		t.Fatalf("marshaling failed: %v", err)
	}
	var loaded TrackList
	if err := yaml.Unmarshal(b, &loaded); err != nil {
		t.Fatalf("unmarshaling failed: %v", err)
	}
	expectNames(t, names(loaded.Iterate), []string{"drums", "drums", "markers"})
	w, _ := loaded.FindLeader(1)
	if w.(*WaveTrack).Pan != -0.5 || len(w.(*WaveTrack).Samples) != 3 {
		t.Fatal("wave track contents did not survive the round trip")
	}
	m, _ := loaded.FindLeader(2)
	if labels := m.(*LabelTrack).Labels; len(labels) != 1 || labels[0].Text != "verse" {
		t.Fatal("label track contents did not survive the round trip")
	}
	// identities resume after the largest loaded one
	if loaded.Add(NewLabelTrack("cues")) != 3 {
		t.Fatal("the loaded list did not resume its identity allocator")
	}
}

func TestTrackListJsonRejectsCorruptInput(t *testing.T) {
	var list TrackList
	corrupt := `[{"kind":"wave","id":1,"channels":2,"channel":0},{"kind":"wave","id":2,"channels":2,"channel":1}]`
	if err := json.Unmarshal([]byte(corrupt), &list); err == nil {
		t.Fatal("a malformed channel group was accepted")
	}
	unknown := `[{"kind":"granular","id":1,"channels":1,"channel":0}]`
	if err := json.Unmarshal([]byte(unknown), &list); err == nil {
		t.Fatal("an unknown track kind was accepted")
	}
}
