package kaiku

import "io"

type (
	// AudioBuffer is a buffer of interleaved stereo audio samples.
	AudioBuffer [][2]float32

	// AudioContext is the playback device of the application; Play starts
	// playing audio from the reader (little-endian interleaved stereo
	// float32) and returns a handle to wait for or stop the playback.
	AudioContext interface {
		Play(r io.Reader) CloserWaiter
		Close() error
	}

	// CloserWaiter is the handle of one ongoing playback.
	CloserWaiter interface {
		Wait()
		Close() error
	}
)
