// Package oto implements the kaiku.AudioContext interface on top of the
// ebitengine/oto audio library.
package oto

import (
	"fmt"
	"io"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/aunela/kaiku"
)

type Context struct {
	context *oto.Context
}

const sampleRate = 44100

// NewContext opens the default audio device for 44100 Hz stereo float32
// playback and waits until it is ready.
func NewContext() (*Context, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	}
	context, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &Context{context: context}, nil
}

// Play starts playing audio from the reader and returns a handle to wait for
// the playback to drain or to stop it early.
func (c *Context) Play(r io.Reader) kaiku.CloserWaiter {
	player := c.context.NewPlayer(r)
	player.Play()
	return playerCloserWaiter{player: player}
}

func (c *Context) Close() error {
	// an oto context cannot be closed; it lives until the process exits
	return nil
}

type playerCloserWaiter struct {
	player *oto.Player
}

func (p playerCloserWaiter) Wait() {
	for p.player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
}

func (p playerCloserWaiter) Close() error {
	if err := p.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	return nil
}
