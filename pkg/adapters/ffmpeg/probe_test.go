package ffmpeg

import (
	"testing"

	"github.com/ofekfell/mediaflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleProbe = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1280, "height": 720, "duration": "10.000000"},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "sample_rate": "44100", "duration": "10.023220"},
    {"index": 2, "codec_name": "mjpeg", "codec_type": "video", "width": 320, "height": 240}
  ],
  "format": {"filename": "clip.mp4", "format_name": "mov,mp4,m4a,3gp,3g2,mj2", "duration": "10.023220"}
}`

func TestParseProbe(t *testing.T) {
	info, err := parseProbe("clip.mp4", []byte(sampleProbe))
	require.NoError(t, err)

	assert.Equal(t, &domain.MediaInfo{
		Path:       "clip.mp4",
		Duration:   10.02322,
		Width:      1280,
		Height:     720,
		VideoCodec: "h264",
		AudioCodec: "aac",
		Format:     "mov,mp4,m4a,3gp,3g2,mj2",
		HasVideo:   true,
		HasAudio:   true,
	}, info)
}

func TestParseProbe_DurationFallsBackToStreams(t *testing.T) {
	data := `{"streams": [
		{"codec_type": "audio", "codec_name": "mp3", "duration": "3.5"},
		{"codec_type": "audio", "codec_name": "aac", "duration": "4.25"}
	], "format": {"format_name": "mp3", "duration": "N/A"}}`

	info, err := parseProbe("a.mp3", []byte(data))
	require.NoError(t, err)
	assert.Equal(t, 4.25, info.Duration)
	assert.Equal(t, "mp3", info.AudioCodec)
	assert.False(t, info.HasVideo)
}

func TestParseProbe_Garbage(t *testing.T) {
	_, err := parseProbe("x", []byte("not json"))
	assert.ErrorIs(t, err, domain.ErrProbe)
}
