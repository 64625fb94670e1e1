package runtime

import "github.com/ofekfell/mediaflow/pkg/filtergraph"

// Streams is the value threaded through evaluation: a Pair or a Single.
type Streams interface {
	streams()
}

// Pair carries a video handle and its audio handle.
type Pair struct {
	Video *filtergraph.Stream
	Audio *filtergraph.Stream
}

// Single carries a video handle with no audio.
type Single struct {
	Video *filtergraph.Stream
}

func (Pair) streams()   {}
func (Single) streams() {}

// pairOf builds a Pair, or a Single when audio is absent.
func pairOf(video, audio *filtergraph.Stream) Streams {
	if audio == nil {
		return Single{Video: video}
	}
	return Pair{Video: video, Audio: audio}
}

func videoOf(s Streams) *filtergraph.Stream {
	switch v := s.(type) {
	case Pair:
		return v.Video
	case Single:
		return v.Video
	}
	return nil
}

func audioOf(s Streams) *filtergraph.Stream {
	if p, ok := s.(Pair); ok {
		return p.Audio
	}
	return nil
}

// mapVideo replaces the video handle and keeps the shape.
func mapVideo(s Streams, f func(*filtergraph.Stream) *filtergraph.Stream) Streams {
	return pairOf(f(videoOf(s)), audioOf(s))
}

// mapAudio transforms the audio handle when present. A Single passes through.
func mapAudio(s Streams, f func(*filtergraph.Stream) *filtergraph.Stream) Streams {
	a := audioOf(s)
	if a == nil {
		return s
	}
	return pairOf(videoOf(s), f(a))
}
