package kaiku

import (
	"errors"
	"fmt"
)

// Project is the root of one editing session: the committed track list plus
// the few session-wide settings that belong in the project file. The staging
// layer (PendingTracks) is runtime-only state and deliberately not part of
// the serialized project.
type Project struct {
	Title      string `yaml:",omitempty" json:",omitempty"`
	SampleRate int
	Tracks     TrackList
}

// NewProject returns an empty project with the default sample rate.
func NewProject() Project {
	return Project{SampleRate: 44100}
}

// Copy makes a deep copy of the Project.
func (p *Project) Copy() Project {
	return Project{Title: p.Title, SampleRate: p.SampleRate, Tracks: p.Tracks.Copy()}
}

// Validate checks if the Project looks like a valid project: positive sample
// rate and a structurally sound track list.
func (p *Project) Validate() error {
	if p.SampleRate < 1 {
		return errors.New("sample rate should be > 0")
	}
	if err := validateTracks(p.Tracks.tracks); err != nil {
		return fmt.Errorf("track list is invalid: %w", err)
	}
	return nil
}
