package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/ofekfell/mediaflow/pkg/domain"
)

type probeStream struct {
	CodecType string `json:"codec_type"`
	CodecName string `json:"codec_name"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Duration  string `json:"duration"`
}

type probeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

// Probe reads the container and stream metadata of path with ffprobe.
func (e *Engine) Probe(ctx context.Context, path string) (*domain.MediaInfo, error) {
	if e.ffprobe == "" {
		return nil, fmt.Errorf("%w: ffprobe not available", domain.ErrProbe)
	}

	cmd := exec.CommandContext(ctx, e.ffprobe,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	cmd.Dir = e.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("%w: %s: %s", domain.ErrProbe, path, msg)
	}
	return parseProbe(path, stdout.Bytes())
}

// parseProbe maps ffprobe JSON onto MediaInfo. The first stream of each
// type wins. Duration comes from the container, falling back to the
// longest stream.
func parseProbe(path string, data []byte) (*domain.MediaInfo, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %s: decode ffprobe output: %v", domain.ErrProbe, path, err)
	}

	info := &domain.MediaInfo{
		Path:     path,
		Format:   out.Format.FormatName,
		Duration: parseSeconds(out.Format.Duration),
	}

	var longest float64
	for _, s := range out.Streams {
		if d := parseSeconds(s.Duration); d > longest {
			longest = d
		}
		switch s.CodecType {
		case "video":
			if !info.HasVideo {
				info.HasVideo = true
				info.VideoCodec = s.CodecName
				info.Width = s.Width
				info.Height = s.Height
			}
		case "audio":
			if !info.HasAudio {
				info.HasAudio = true
				info.AudioCodec = s.CodecName
			}
		}
	}
	if info.Duration == 0 {
		info.Duration = longest
	}
	return info, nil
}

func parseSeconds(s string) float64 {
	if s == "" || s == "N/A" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
