package audio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// Tags holds the container metadata ffprobe reports for a recording.
type Tags struct {
	Title       string
	Artist      string
	DurationSec float64
	Format      string
}

// DisplayTitle returns "Artist - Title", the bare title, or "" when the
// recording carries no title tag.
func (t *Tags) DisplayTitle() string {
	switch {
	case t.Title == "":
		return ""
	case t.Artist == "":
		return t.Title
	default:
		return t.Artist + " - " + t.Title
	}
}

type ffprobeOutput struct {
	Format struct {
		Duration string            `json:"duration"`
		Name     string            `json:"format_name"`
		Tags     map[string]string `json:"tags"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
	} `json:"streams"`
}

// ReadTags runs ffprobe on path. Without a deadline on ctx it gives up after
// five seconds.
func ReadTags(ctx context.Context, path string) (*Tags, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}

	out, err := exec.CommandContext(ctx,
		"ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	).Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return parseTags(out)
}

func parseTags(out []byte) (*Tags, error) {
	var doc ffprobeOutput
	if err := json.Unmarshal(out, &doc); err != nil {
		return nil, fmt.Errorf("decoding ffprobe output: %w", err)
	}

	hasAudio := false
	for _, s := range doc.Streams {
		if s.CodecType == "audio" {
			hasAudio = true
			break
		}
	}
	if !hasAudio {
		return nil, errors.New("no audio stream found")
	}

	duration, _ := strconv.ParseFloat(doc.Format.Duration, 64)
	tags := &Tags{DurationSec: duration, Format: doc.Format.Name}
	for k, v := range doc.Format.Tags {
		// ffprobe keeps the container's casing (TITLE in FLAC/Vorbis).
		switch k {
		case "title", "TITLE", "Title":
			tags.Title = v
		case "artist", "ARTIST", "Artist":
			tags.Artist = v
		}
	}
	return tags, nil
}
