// Package smfimport builds label tracks from standard MIDI files, so that
// markers and cue points prepared in a sequencer can be brought into a
// project timeline. The imported track has an unassigned identity; it enters
// the project through the pending track registry like any other new track.
package smfimport

import (
	"fmt"
	"io"
	"sort"
	"time"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/aunela/kaiku"
)

// ReadLabels reads the marker, cue point and text meta events of a standard
// MIDI file and returns them as a label track, positions converted to seconds
// using the tempo map of the file. The tempo map is global: in a format 1
// file the tempo events of the first track govern the events of every other
// track. Only metric time format files are supported.
func ReadLabels(r io.Reader, name string) (*kaiku.LabelTrack, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("could not parse midi file: %w", err)
	}
	metric, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("midi file has unsupported time format %v", s.TimeFormat)
	}
	tempo := collectTempoMap(s)
	track := kaiku.NewLabelTrack(name)
	for _, events := range s.Tracks {
		var tick uint64
		for _, ev := range events {
			tick += uint64(ev.Delta)
			var text string
			switch {
			case ev.Message.GetMetaMarker(&text),
				ev.Message.GetMetaCuepoint(&text),
				ev.Message.GetMetaText(&text):
				track.Labels = append(track.Labels, kaiku.Label{At: tempo.seconds(metric, tick), Text: text})
			}
		}
	}
	// events of different midi tracks interleave on the timeline
	sort.SliceStable(track.Labels, func(i, j int) bool {
		return track.Labels[i].At < track.Labels[j].At
	})
	return track, nil
}

type (
	// tempoMap is the tempo changes of the whole file, by absolute tick.
	tempoMap []tempoChange

	tempoChange struct {
		tick uint64
		bpm  float64
	}
)

func collectTempoMap(s *smf.SMF) tempoMap {
	var m tempoMap
	for _, events := range s.Tracks {
		var tick uint64
		for _, ev := range events {
			tick += uint64(ev.Delta)
			var bpm float64
			if ev.Message.GetMetaTempo(&bpm) {
				m = append(m, tempoChange{tick: tick, bpm: bpm})
			}
		}
	}
	sort.SliceStable(m, func(i, j int) bool { return m[i].tick < m[j].tick })
	return m
}

// seconds converts an absolute tick position to seconds, summing the duration
// of every tempo segment before it. Before the first tempo event the midi
// default of 120 bpm applies.
func (m tempoMap) seconds(metric smf.MetricTicks, tick uint64) float64 {
	var at time.Duration
	pos, bpm := uint64(0), 120.0
	for _, c := range m {
		if c.tick >= tick {
			break
		}
		at += metric.Duration(bpm, uint32(c.tick-pos))
		pos, bpm = c.tick, c.bpm
	}
	at += metric.Duration(bpm, uint32(tick-pos))
	return at.Seconds()
}
