package video

import (
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Binaries names the ffmpeg tools. Empty fields use the default name from PATH.
type Binaries struct {
	FFmpeg  string
	FFprobe string
	FFplay  string
}

// FileMetadata contains metadata extracted from a media file
type FileMetadata struct {
	Title    string
	Artist   string
	Album    string
	Duration float64 // seconds
}

// FFmpeg launches ffmpeg for frames, ffplay for audio and ffprobe for queries.
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
	ffplayPath  string
	missing     []string
}

// NewFFmpeg resolves the tools in PATH. Tools that cannot be found keep their
// configured name so that spawning fails later (and is logged) instead of
// preventing startup; Missing reports them.
func NewFFmpeg(bins Binaries) *FFmpeg {
	f := &FFmpeg{}
	f.ffmpegPath = f.resolve(bins.FFmpeg, "ffmpeg")
	f.ffprobePath = f.resolve(bins.FFprobe, "ffprobe")
	f.ffplayPath = f.resolve(bins.FFplay, "ffplay")
	return f
}

func (f *FFmpeg) resolve(configured, fallback string) string {
	name := configured
	if name == "" {
		name = fallback
	}
	path, err := exec.LookPath(name)
	if err != nil {
		f.missing = append(f.missing, name)
		return name
	}
	return path
}

// Missing lists the tools that were not found in PATH.
func (f *FFmpeg) Missing() []string {
	return f.missing
}

func formatSeek(seek float64) string {
	return fmt.Sprintf("%.2f", seek)
}

// decoderArgs builds the ffmpeg command line emitting raw gray frames in real time.
func decoderArgs(source string, width, height int, seek float64) []string {
	return []string{
		"-ss", formatSeek(seek),
		"-re",
		"-i", source,
		"-f", "rawvideo",
		"-pix_fmt", "gray",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-v", "quiet",
		"-",
	}
}

// audioArgs builds the ffplay command line with minimal startup latency and no window.
func audioArgs(source string, seek float64) []string {
	return []string{
		"-ss", formatSeek(seek),
		"-nodisp",
		"-autoexit",
		"-hide_banner",
		"-loglevel", "panic",
		"-fflags", "nobuffer",
		"-flags", "low_delay",
		"-analyzeduration", "0",
		"-probesize", "32",
		source,
	}
}

// LaunchDecoder implements Launcher.
func (f *FFmpeg) LaunchDecoder(source string, width, height int, seek float64) (Process, io.Reader, error) {
	cmd := exec.Command(f.ffmpegPath, decoderArgs(source, width, height, seek)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	return &execProcess{cmd: cmd}, stdout, nil
}

// LaunchAudio implements Launcher.
func (f *FFmpeg) LaunchAudio(source string, seek float64) (Process, error) {
	cmd := exec.Command(f.ffplayPath, audioArgs(source, seek)...)
	// nil stdio is /dev/null, so ffplay cannot steal terminal input

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffplay: %w", err)
	}

	return &execProcess{cmd: cmd}, nil
}

// Duration returns the duration of a media file in seconds
func (f *FFmpeg) Duration(source string) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		source,
	}

	output, err := exec.Command(f.ffprobePath, args...).Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseDuration(string(output))
}

func parseDuration(s string) (float64, error) {
	seconds, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}
	if seconds < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return seconds, nil
}

// Metadata extracts tags from a media file using ffprobe
func (f *FFmpeg) Metadata(source string) (*FileMetadata, error) {
	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		source,
	}

	output, err := exec.Command(f.ffprobePath, args...).Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseMetadata(source, output)
}

func parseMetadata(source string, output []byte) (*FileMetadata, error) {
	var probeResult struct {
		Format struct {
			Duration string            `json:"duration"`
			Tags     map[string]string `json:"tags"`
		} `json:"format"`
	}

	if err := json.Unmarshal(output, &probeResult); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	meta := &FileMetadata{}

	// Tag keys differ in case between containers
	for key, value := range probeResult.Format.Tags {
		switch strings.ToLower(key) {
		case "title":
			meta.Title = value
		case "artist":
			meta.Artist = value
		case "album":
			meta.Album = value
		case "album_artist":
			if meta.Artist == "" {
				meta.Artist = value
			}
		}
	}

	if probeResult.Format.Duration != "" {
		if d, err := parseDuration(probeResult.Format.Duration); err == nil {
			meta.Duration = d
		}
	}

	if meta.Title == "" {
		base := filepath.Base(source)
		meta.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return meta, nil
}
