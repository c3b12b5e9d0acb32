package kaiku

import (
	"math"
	"testing"
)

func addWave(list *TrackList, name string, samples []float32) *WaveTrack {
	group := NewWaveTrack(name, 1)
	w := group[0].(*WaveTrack)
	w.Samples = samples
	list.Add(group...)
	return w
}

func expectBuffer(t *testing.T, got, want AudioBuffer) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("buffer has %d frames, expected %d", len(got), len(want))
	}
	for i := range got {
		for c := 0; c < 2; c++ {
			if math.Abs(float64(got[i][c]-want[i][c])) > 1e-6 {
				t.Fatalf("frame %d channel %d is %v, expected %v", i, c, got[i][c], want[i][c])
			}
		}
	}
}

func TestMixdownSumsAndPads(t *testing.T) {
	list := &TrackList{}
	addWave(list, "a", []float32{0.5, 0.5, 0.5})
	addWave(list, "b", []float32{0.25})
	expectBuffer(t, Mixdown(list, nil), AudioBuffer{
		{0.75, 0.75}, {0.5, 0.5}, {0.5, 0.5},
	})
}

func TestMixdownPanAndGain(t *testing.T) {
	list := &TrackList{}
	left := addWave(list, "left", []float32{1})
	left.Pan = -1
	right := addWave(list, "right", []float32{1})
	right.Pan = 1
	right.Gain = 0.5
	expectBuffer(t, Mixdown(list, nil), AudioBuffer{{1, 0.5}})
}

func TestMixdownStereoGroupRoutesByChannel(t *testing.T) {
	list := &TrackList{}
	group := NewWaveTrack("stereo", 2)
	group[0].(*WaveTrack).Samples = []float32{0.5}
	group[1].(*WaveTrack).Samples = []float32{0.25}
	list.Add(group...)
	expectBuffer(t, Mixdown(list, nil), AudioBuffer{{0.5, 0.25}})
}

func TestMixdownSkipsMutedAndEmpty(t *testing.T) {
	list := &TrackList{}
	muted := addWave(list, "muted", []float32{1})
	muted.Muted = true
	addWave(list, "silent", nil)
	list.Add(NewLabelTrack("markers"))
	if buffer := Mixdown(list, nil); buffer != nil {
		t.Fatalf("got a %d frame buffer from an inaudible project", len(buffer))
	}
}

func TestMixdownUsesPendingState(t *testing.T) {
	list := &TrackList{}
	addWave(list, "bass", []float32{0.5})
	p := NewPendingTracks(list)
	pending, err := p.RegisterChanged(nil, mustLeader(t, list, 1))
	if err != nil {
		t.Fatalf("RegisterChanged failed: %v", err)
	}
	pending.(*WaveTrack).Gain = 0.5
	staged := NewWaveTrack("synth", 1)
	staged[0].(*WaveTrack).Samples = []float32{0, 0.25}
	if err := p.RegisterNewTracks(staged); err != nil {
		t.Fatalf("RegisterNewTracks failed: %v", err)
	}
	// the pending gain halves the bass and the staged track extends the mix
	expectBuffer(t, Mixdown(list, p), AudioBuffer{{0.25, 0.25}, {0.25, 0.25}})
	// the committed state alone is unaffected
	expectBuffer(t, Mixdown(list, nil), AudioBuffer{{0.5, 0.5}})
}
