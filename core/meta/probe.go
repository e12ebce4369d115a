// Package meta extracts display metadata and playing time from audio files.
package meta

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/go-audio/wav"
	"github.com/mewkiz/flac"
	"github.com/tcolgate/mp3"

	"melodex/logger"
)

// Info is what a probe recovers from an audio file. Missing tags come back
// as empty strings; a duration of zero means it could not be determined.
type Info struct {
	Title           string
	Artist          string
	Album           string
	Genre           string
	DurationSeconds int
}

// Probe reads the file's tags and measures its duration. Tag errors are not
// fatal: a file with no tags still probes, falling back to the bare filename
// for its title.
func Probe(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info := &Info{}

	if m, err := tag.ReadFrom(f); err == nil {
		info.Title = strings.TrimSpace(m.Title())
		info.Artist = strings.TrimSpace(m.Artist())
		info.Album = strings.TrimSpace(m.Album())
		info.Genre = strings.TrimSpace(m.Genre())
	} else {
		logger.Debug("no readable tags", logger.String("path", path), logger.ErrorField(err))
	}
	if info.Title == "" {
		base := filepath.Base(path)
		info.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind %s: %w", path, err)
	}

	secs, err := duration(path, f)
	if err != nil {
		logger.Warn("failed to measure duration",
			logger.String("path", path), logger.ErrorField(err))
	}
	info.DurationSeconds = secs

	return info, nil
}

// duration dispatches on the file extension to the right decoder.
func duration(path string, f *os.File) (int, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return mp3Duration(f)
	case ".flac":
		return flacDuration(f)
	case ".wav":
		return wavDuration(f)
	default:
		return 0, fmt.Errorf("unsupported audio format %s", filepath.Ext(path))
	}
}

// mp3Duration walks every frame and sums their play time. MP3 carries no
// duration header, so a full scan is the only reliable measure for VBR
// files. A file whose frames cannot be decoded at all falls back to a size
// estimate at an assumed 192 kbps.
func mp3Duration(f *os.File) (int, error) {
	dec := mp3.NewDecoder(f)
	var frame mp3.Frame
	var skipped int
	var total time.Duration
	frames := 0

	for {
		if err := dec.Decode(&frame, &skipped); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if frames == 0 {
				return estimateFromSize(f, 192000)
			}
			break // partial decode, use what we have
		}
		total += frame.Duration()
		frames++
	}
	return int(total.Seconds() + 0.5), nil
}

// estimateFromSize guesses duration from file size at an assumed constant
// bitrate, in bits per second.
func estimateFromSize(f *os.File, bitrate int64) (int, error) {
	st, err := f.Stat()
	if err != nil {
		return 0, err
	}
	if bitrate <= 0 {
		return 0, fmt.Errorf("invalid bitrate %d", bitrate)
	}
	return int(st.Size() * 8 / bitrate), nil
}

// flacDuration reads the STREAMINFO block; no sample data is decoded.
func flacDuration(r io.Reader) (int, error) {
	stream, err := flac.Parse(r)
	if err != nil {
		return 0, fmt.Errorf("failed to parse flac stream: %w", err)
	}
	si := stream.Info
	if si == nil || si.NSamples == 0 || si.SampleRate == 0 {
		return 0, fmt.Errorf("flac stream missing sample info")
	}
	return int(float64(si.NSamples)/float64(si.SampleRate) + 0.5), nil
}

// wavDuration reads the RIFF header.
func wavDuration(f *os.File) (int, error) {
	dec := wav.NewDecoder(f)
	d, err := dec.Duration()
	if err != nil {
		return 0, fmt.Errorf("failed to read wav duration: %w", err)
	}
	return int(d.Seconds() + 0.5), nil
}
