package kaiku

import (
	"github.com/viterin/vek/vek32"
)

type (
	// TrackID is the stable identity of one logical track. It is assigned once,
	// when the track is committed into a TrackList, and preserved across all
	// later edits and replacements of that track. The zero value means the
	// track has not been committed yet.
	TrackID int

	// Track is the capability set the project core needs from a timeline
	// track. Concrete variants (WaveTrack, LabelTrack) embed TrackBase and add
	// their content on top; the core never depends on the variant details.
	//
	// A channel group is a run of Channels() consecutive tracks in a
	// TrackList, all sharing the same identity. The first track of the group
	// is its leader and acts as the addressable handle of the whole group.
	Track interface {
		ID() TrackID
		SetID(id TrackID)
		Name() string
		SetName(name string)
		// Channels returns the size of the channel group this track belongs
		// to. The group size is fixed at creation.
		Channels() int
		// ChannelIndex returns the position of this track within its channel
		// group; the leader has index 0.
		ChannelIndex() int
		IsLeader() bool
		// Erased tells whether the track has been flagged for deletion. The
		// flag matters only on pending tracks: committing a pending group
		// whose leader is erased removes the actual group instead of
		// replacing it.
		Erased() bool
		MarkErased()
		// Duplicate returns a deep copy of the track, preserving its identity
		// and group shape.
		Duplicate() Track
	}

	// TrackBase carries the bookkeeping fields shared by all track variants.
	TrackBase struct {
		id       TrackID
		name     string
		channels int
		channel  int
		erased   bool
	}

	// WaveTrack is one channel of sampled audio. A stereo pair is two
	// WaveTracks in the same channel group.
	WaveTrack struct {
		TrackBase
		Samples []float32
		Gain    float32
		Pan     float32 // -1 full left .. 1 full right; only meaningful on mono tracks
		Muted   bool
	}

	// Label is a single timestamped annotation on a LabelTrack.
	Label struct {
		At   float64 `yaml:"at"` // position in seconds
		Text string  `yaml:"text"`
	}

	// LabelTrack is an annotation track: no audio, just labels on the
	// timeline. Always a single-channel group.
	LabelTrack struct {
		TrackBase
		Labels []Label
	}
)

func (b *TrackBase) ID() TrackID       { return b.id }
func (b *TrackBase) SetID(id TrackID)  { b.id = id }
func (b *TrackBase) Name() string      { return b.name }
func (b *TrackBase) SetName(n string)  { b.name = n }
func (b *TrackBase) Channels() int     { return b.channels }
func (b *TrackBase) ChannelIndex() int { return b.channel }
func (b *TrackBase) IsLeader() bool    { return b.channel == 0 }
func (b *TrackBase) Erased() bool      { return b.erased }
func (b *TrackBase) MarkErased()       { b.erased = true }

// NewWaveTrack constructs a channel group of the given size with unassigned
// identity, ready to be committed through TrackList.Add or staged through
// PendingTracks.RegisterNewTracks.
func NewWaveTrack(name string, channels int) []Track {
	if channels < 1 {
		channels = 1
	}
	group := make([]Track, channels)
	for i := range group {
		group[i] = &WaveTrack{
			TrackBase: TrackBase{name: name, channels: channels, channel: i},
			Gain:      1,
		}
	}
	return group
}

// Duplicate makes a deep copy of the WaveTrack.
func (w *WaveTrack) Duplicate() Track {
	samples := make([]float32, len(w.Samples))
	copy(samples, w.Samples)
	ret := *w
	ret.Samples = samples
	return &ret
}

// Peak returns the largest absolute sample value of the track.
func (w *WaveTrack) Peak() float32 {
	if len(w.Samples) == 0 {
		return 0
	}
	peak := vek32.Max(w.Samples)
	if m := -vek32.Min(w.Samples); m > peak {
		peak = m
	}
	return peak
}

// NewLabelTrack constructs a single-channel label track with unassigned
// identity.
func NewLabelTrack(name string) *LabelTrack {
	return &LabelTrack{TrackBase: TrackBase{name: name, channels: 1}}
}

// Duplicate makes a deep copy of the LabelTrack.
func (l *LabelTrack) Duplicate() Track {
	labels := make([]Label, len(l.Labels))
	copy(labels, l.Labels)
	ret := *l
	ret.Labels = labels
	return &ret
}
