package kaiku

import (
	"github.com/viterin/vek/vek32"
)

// Mixdown renders the audible state of the project into a stereo buffer: all
// actual wave tracks, with pending replacements substituted in and staged new
// tracks appended, exactly as an editor view would show them. pending may be
// nil to mix the committed state only; when it is not nil, it must be the
// registry augmenting list, and iteration goes through its augmented view.
//
// Mono tracks are panned between the channels with their Pan setting; the
// channels of a stereo group are routed hard left/right. Muted tracks and
// non-audio tracks are skipped.
func Mixdown(list *TrackList, pending *PendingTracks) AudioBuffer {
	iterate := list.Iterate
	if pending != nil {
		iterate = pending.Iterate
	}
	var waves []*WaveTrack
	length := 0
	for t := range iterate {
		if pending != nil {
			t = pending.ResolvePending(t)
		}
		w, ok := t.(*WaveTrack)
		if !ok || w.Muted || len(w.Samples) == 0 {
			continue
		}
		waves = append(waves, w)
		if len(w.Samples) > length {
			length = len(w.Samples)
		}
	}
	if length == 0 {
		return nil
	}
	left := make([]float32, length)
	right := make([]float32, length)
	tmp := make([]float32, length)
	for _, w := range waves {
		lg, rg := channelGains(w)
		n := len(w.Samples)
		if lg != 0 {
			vek32.MulNumber_Into(tmp[:n], w.Samples, lg)
			vek32.Add_Inplace(left[:n], tmp[:n])
		}
		if rg != 0 {
			vek32.MulNumber_Into(tmp[:n], w.Samples, rg)
			vek32.Add_Inplace(right[:n], tmp[:n])
		}
	}
	buffer := make(AudioBuffer, length)
	for i := range buffer {
		buffer[i] = [2]float32{left[i], right[i]}
	}
	return buffer
}

// channelGains returns the left and right mix gains of one channel track.
func channelGains(w *WaveTrack) (lg, rg float32) {
	if w.Channels() >= 2 {
		// channels of a multichannel group are routed by position
		if w.ChannelIndex() == 0 {
			return w.Gain, 0
		}
		return 0, w.Gain
	}
	pan := w.Pan
	if pan < -1 {
		pan = -1
	} else if pan > 1 {
		pan = 1
	}
	lg, rg = w.Gain, w.Gain
	if pan > 0 {
		lg *= 1 - pan
	} else if pan < 0 {
		rg *= 1 + pan
	}
	return lg, rg
}
