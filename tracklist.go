package kaiku

import (
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// TrackList is the ordered collection of committed ("actual") tracks of a
// project. Channel groups are stored flat: a leader immediately followed by
// its member channels. The list owns the identity allocator; fresh identities
// are handed out when a group is added or when pending new tracks are
// committed.
type TrackList struct {
	tracks []Track
	nextID TrackID
}

// Len returns the number of channel tracks in the list (not the number of
// groups).
func (l *TrackList) Len() int { return len(l.tracks) }

// Iterate yields every track in list order. Usable with range-over-func:
//
//	for t := range list.Iterate { ... }
func (l *TrackList) Iterate(yield func(Track) bool) {
	for _, t := range l.tracks {
		if !yield(t) {
			return
		}
	}
}

// Add assigns a fresh identity to the group and appends it to the list. The
// group must come from one of the track constructors, so it is a well-formed
// run of channels with unassigned identity.
func (l *TrackList) Add(group ...Track) TrackID {
	id := l.newID()
	for _, t := range group {
		t.SetID(id)
	}
	l.tracks = append(l.tracks, group...)
	return id
}

// FindLeader returns the leader of the channel group with the given identity.
func (l *TrackList) FindLeader(id TrackID) (Track, bool) {
	if i := l.indexOf(id); i >= 0 {
		return l.tracks[i], true
	}
	return nil, false
}

// Group returns the channel tracks of the group with the given identity, in
// channel order. The returned slice aliases the list; callers must not modify
// it.
func (l *TrackList) Group(id TrackID) ([]Track, bool) {
	i := l.indexOf(id)
	if i < 0 {
		return nil, false
	}
	n := l.tracks[i].Channels()
	if i+n > len(l.tracks) {
		return nil, false
	}
	return l.tracks[i : i+n], true
}

// RemoveGroup removes the channel group with the given identity from the
// list. Reports whether anything was removed.
func (l *TrackList) RemoveGroup(id TrackID) bool {
	i := l.indexOf(id)
	if i < 0 {
		return false
	}
	n := l.tracks[i].Channels()
	l.tracks = append(l.tracks[:i], l.tracks[i+n:]...)
	return true
}

func (l *TrackList) indexOf(id TrackID) int {
	if id == 0 {
		return -1
	}
	for i, t := range l.tracks {
		if t.ID() == id && t.IsLeader() {
			return i
		}
	}
	return -1
}

func (l *TrackList) newID() TrackID {
	l.nextID++
	return l.nextID
}

// NumGroups returns the number of channel groups in the list.
func (l *TrackList) NumGroups() int {
	ret := 0
	for _, t := range l.tracks {
		if t.IsLeader() {
			ret++
		}
	}
	return ret
}

// SortGroups reorders the channel groups of the list according to less,
// comparing group leaders. The sort is stable and keeps every group
// contiguous.
func (l *TrackList) SortGroups(less func(a, b Track) bool) {
	var groups [][]Track
	for i := 0; i < len(l.tracks); {
		n := l.tracks[i].Channels()
		groups = append(groups, l.tracks[i:i+n])
		i += n
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return less(groups[i][0], groups[j][0])
	})
	sorted := make([]Track, 0, len(l.tracks))
	for _, group := range groups {
		sorted = append(sorted, group...)
	}
	l.tracks = sorted
}

// Copy makes a deep copy of the TrackList.
func (l *TrackList) Copy() TrackList {
	tracks := make([]Track, len(l.tracks))
	for i, t := range l.tracks {
		tracks[i] = t.Duplicate()
	}
	return TrackList{tracks: tracks, nextID: l.nextID}
}

// validate checks the structural invariants of a flat track slice: every
// track belongs to a well-formed channel group, every group has an assigned
// identity and all identities are unique.
func validateTracks(tracks []Track) error {
	seen := map[TrackID]bool{}
	for i := 0; i < len(tracks); {
		lead := tracks[i]
		if !lead.IsLeader() {
			return fmt.Errorf("track at index %d is not a group leader", i)
		}
		id, n := lead.ID(), lead.Channels()
		if id == 0 {
			return fmt.Errorf("track %q has no identity", lead.Name())
		}
		if seen[id] {
			return fmt.Errorf("duplicate track identity %d", id)
		}
		seen[id] = true
		if i+n > len(tracks) {
			return fmt.Errorf("channel group %d is truncated", id)
		}
		for c := 1; c < n; c++ {
			t := tracks[i+c]
			if t.ID() != id || t.ChannelIndex() != c || t.Channels() != n {
				return fmt.Errorf("channel group %d is malformed at channel %d", id, c)
			}
		}
		i += n
	}
	return nil
}

// trackRecord is the serialized form of one channel track. The polymorphic
// track variants are flattened to a single tagged record so that project
// files stay plain yaml/json.
type trackRecord struct {
	Kind     string    `yaml:"kind" json:"kind"`
	ID       int       `yaml:"id" json:"id"`
	Name     string    `yaml:"name,omitempty" json:"name,omitempty"`
	Channels int       `yaml:"channels" json:"channels"`
	Channel  int       `yaml:"channel" json:"channel"`
	Gain     float32   `yaml:"gain,omitempty" json:"gain,omitempty"`
	Pan      float32   `yaml:"pan,omitempty" json:"pan,omitempty"`
	Muted    bool      `yaml:"muted,omitempty" json:"muted,omitempty"`
	Samples  []float32 `yaml:"samples,omitempty,flow" json:"samples,omitempty"`
	Labels   []Label   `yaml:"labels,omitempty" json:"labels,omitempty"`
}

const (
	waveKind  = "wave"
	labelKind = "label"
)

func (l TrackList) records() ([]trackRecord, error) {
	records := make([]trackRecord, 0, len(l.tracks))
	for _, t := range l.tracks {
		rec := trackRecord{
			ID:       int(t.ID()),
			Name:     t.Name(),
			Channels: t.Channels(),
			Channel:  t.ChannelIndex(),
		}
		switch c := t.(type) {
		case *WaveTrack:
			rec.Kind = waveKind
			rec.Gain = c.Gain
			rec.Pan = c.Pan
			rec.Muted = c.Muted
			rec.Samples = c.Samples
		case *LabelTrack:
			rec.Kind = labelKind
			rec.Labels = c.Labels
		default:
			return nil, fmt.Errorf("cannot serialize track of type %T", t)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (l *TrackList) fromRecords(records []trackRecord) error {
	tracks := make([]Track, 0, len(records))
	nextID := TrackID(0)
	for _, rec := range records {
		base := TrackBase{
			id:       TrackID(rec.ID),
			name:     rec.Name,
			channels: rec.Channels,
			channel:  rec.Channel,
		}
		switch rec.Kind {
		case waveKind:
			tracks = append(tracks, &WaveTrack{TrackBase: base, Samples: rec.Samples, Gain: rec.Gain, Pan: rec.Pan, Muted: rec.Muted})
		case labelKind:
			tracks = append(tracks, &LabelTrack{TrackBase: base, Labels: rec.Labels})
		default:
			return fmt.Errorf("unknown track kind %q", rec.Kind)
		}
		if TrackID(rec.ID) > nextID {
			nextID = TrackID(rec.ID)
		}
	}
	if err := validateTracks(tracks); err != nil {
		return fmt.Errorf("invalid track list: %w", err)
	}
	l.tracks = tracks
	l.nextID = nextID // identities resume after the largest committed one
	return nil
}

func (l TrackList) MarshalYAML() (interface{}, error) {
	return l.records()
}

func (l *TrackList) UnmarshalYAML(value *yaml.Node) error {
	var records []trackRecord
	if err := value.Decode(&records); err != nil {
		return err
	}
	return l.fromRecords(records)
}

func (l TrackList) MarshalJSON() ([]byte, error) {
	records, err := l.records()
	if err != nil {
		return nil, err
	}
	return json.Marshal(records)
}

func (l *TrackList) UnmarshalJSON(data []byte) error {
	var records []trackRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}
	return l.fromRecords(records)
}
