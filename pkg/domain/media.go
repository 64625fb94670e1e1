package domain

// MediaInfo is the subset of engine probe output the compiler cares about.
type MediaInfo struct {
	Path       string  `json:"path"`
	Duration   float64 `json:"duration"` // seconds
	Width      int     `json:"width,omitempty"`
	Height     int     `json:"height,omitempty"`
	VideoCodec string  `json:"video_codec,omitempty"`
	AudioCodec string  `json:"audio_codec,omitempty"`
	Format     string  `json:"format"`
	HasVideo   bool    `json:"has_video"`
	HasAudio   bool    `json:"has_audio"`
}
