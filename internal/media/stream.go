package media

import (
	"errors"
	"fmt"
)

// LocalStream aggregates at most one video track and one audio track. The
// track manager owns at most one LocalStream at a time; a replacement
// requires disposing the previous one first.
type LocalStream struct {
	id    string
	video Track
	audio Track
}

// NewLocalStream creates an empty stream with the given id.
func NewLocalStream(id string) *LocalStream {
	return &LocalStream{id: id}
}

func (s *LocalStream) ID() string { return s.id }

// AddTrack places the track in its kind's slot. A stream holds at most one
// track per kind.
func (s *LocalStream) AddTrack(t Track) error {
	switch t.Kind() {
	case TrackKindVideo:
		if s.video != nil {
			return fmt.Errorf("stream %s already has a video track", s.id)
		}
		s.video = t
	case TrackKindAudio:
		if s.audio != nil {
			return fmt.Errorf("stream %s already has an audio track", s.id)
		}
		s.audio = t
	default:
		return fmt.Errorf("unknown track kind %q", t.Kind())
	}
	return nil
}

// VideoTrack returns the video track, or nil.
func (s *LocalStream) VideoTrack() Track { return s.video }

// AudioTrack returns the audio track, or nil.
func (s *LocalStream) AudioTrack() Track { return s.audio }

// Tracks returns the stream's tracks, video first.
func (s *LocalStream) Tracks() []Track {
	var tracks []Track
	if s.video != nil {
		tracks = append(tracks, s.video)
	}
	if s.audio != nil {
		tracks = append(tracks, s.audio)
	}
	return tracks
}

// Close disposes both tracks.
func (s *LocalStream) Close() error {
	var errs []error
	for _, t := range s.Tracks() {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.video = nil
	s.audio = nil
	return errors.Join(errs...)
}
