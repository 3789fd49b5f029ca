// Package media scans the attachment folders of a chat export: it finds
// the most repeated sticker and ranks audio files by size.
package media

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/otherjamesbrown/conversa/pkg/logging"
)

// Default scan settings.
var (
	DefaultStickerExtensions = []string{".webp"}
	DefaultAudioExtensions   = []string{".opus"}
)

// DefaultAudioLimit is how many audio files are ranked.
const DefaultAudioLimit = 10

// NoticeKind classifies a non-fatal scan problem.
type NoticeKind string

const (
	// NoticeMissingDir means the folder does not exist.
	NoticeMissingDir NoticeKind = "missing_dir"

	// NoticeFileError means one file could not be read.
	NoticeFileError NoticeKind = "file_error"
)

// Notice is a scan problem reported in place of, or next to, a result.
type Notice struct {
	Kind  NoticeKind `json:"kind" yaml:"kind"`
	Path  string     `json:"path" yaml:"path"`
	Error string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// StickerResult is the most repeated sticker of a folder. Skipped is
// true when no folder was configured. Path is the first file seen with
// the winning fingerprint.
type StickerResult struct {
	Dir     string   `json:"dir" yaml:"dir"`
	Skipped bool     `json:"skipped" yaml:"skipped"`
	Found   bool     `json:"found" yaml:"found"`
	Path    string   `json:"path,omitempty" yaml:"path,omitempty"`
	Count   int      `json:"count" yaml:"count"`
	Scanned int      `json:"scanned" yaml:"scanned"`
	Notices []Notice `json:"notices,omitempty" yaml:"notices,omitempty"`
}

// AudioFile is an audio attachment and its size in bytes.
type AudioFile struct {
	Name string `json:"name" yaml:"name"`
	Size int64  `json:"size" yaml:"size"`
}

// AudioResult ranks the largest audio files of a folder.
type AudioResult struct {
	Dir     string      `json:"dir" yaml:"dir"`
	Skipped bool        `json:"skipped" yaml:"skipped"`
	Files   []AudioFile `json:"files" yaml:"files"`
	Notices []Notice    `json:"notices,omitempty" yaml:"notices,omitempty"`
}

// Options configures a Scanner. Zero values fall back to the defaults.
type Options struct {
	StickerExtensions []string
	AudioExtensions   []string
	AudioLimit        int
	Fingerprinter     Fingerprinter
}

// Scanner performs one-shot scans of attachment folders.
type Scanner struct {
	opts   Options
	logger logging.Logger
}

// NewScanner creates a Scanner.
func NewScanner(opts Options, logger logging.Logger) *Scanner {
	if len(opts.StickerExtensions) == 0 {
		opts.StickerExtensions = DefaultStickerExtensions
	}
	if len(opts.AudioExtensions) == 0 {
		opts.AudioExtensions = DefaultAudioExtensions
	}
	if opts.AudioLimit <= 0 {
		opts.AudioLimit = DefaultAudioLimit
	}
	if opts.Fingerprinter == nil {
		opts.Fingerprinter = ByteFingerprinter{}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Scanner{opts: opts, logger: logger.With(logging.F("component", "media_scanner"))}
}

// Stickers fingerprints every sticker file in dir and returns the one
// seen most often. Equal counts keep the fingerprint seen first. Files
// that cannot be read are reported as notices and skipped.
func (s *Scanner) Stickers(dir string) StickerResult {
	res := StickerResult{Dir: dir}
	if dir == "" {
		res.Skipped = true
		return res
	}

	entries, notice, ok := s.list(dir)
	if !ok {
		res.Notices = append(res.Notices, notice)
		return res
	}

	counts := make(map[string]int)
	firstPath := make(map[string]string)
	var order []string
	for _, entry := range entries {
		if entry.IsDir() || !hasExtension(entry.Name(), s.opts.StickerExtensions) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		key, err := s.opts.Fingerprinter.Fingerprint(path)
		if err != nil {
			s.logger.Debug("Sticker skipped", logging.F("file", entry.Name()), logging.Err(err))
			res.Notices = append(res.Notices, Notice{Kind: NoticeFileError, Path: entry.Name(), Error: err.Error()})
			continue
		}
		res.Scanned++
		if _, seen := counts[key]; !seen {
			order = append(order, key)
			firstPath[key] = path
		}
		counts[key]++
	}

	for _, key := range order {
		if counts[key] > res.Count {
			res.Found, res.Path, res.Count = true, firstPath[key], counts[key]
		}
	}

	s.logger.Info("Stickers scanned",
		logging.F("dir", dir),
		logging.F("files", res.Scanned),
		logging.F("distinct", len(order)),
		logging.F("top_count", res.Count))
	return res
}

// Audio returns the largest audio files in dir, biggest first. Equal
// sizes keep directory order.
func (s *Scanner) Audio(dir string) AudioResult {
	res := AudioResult{Dir: dir}
	if dir == "" {
		res.Skipped = true
		return res
	}

	entries, notice, ok := s.list(dir)
	if !ok {
		res.Notices = append(res.Notices, notice)
		return res
	}

	var total int64
	for _, entry := range entries {
		if entry.IsDir() || !hasExtension(entry.Name(), s.opts.AudioExtensions) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			res.Notices = append(res.Notices, Notice{Kind: NoticeFileError, Path: entry.Name(), Error: err.Error()})
			continue
		}
		res.Files = append(res.Files, AudioFile{Name: entry.Name(), Size: info.Size()})
		total += info.Size()
	}

	sort.SliceStable(res.Files, func(i, j int) bool {
		return res.Files[i].Size > res.Files[j].Size
	})

	s.logger.Info("Audio scanned",
		logging.F("dir", dir),
		logging.F("files", len(res.Files)),
		logging.F("total_size", humanize.Bytes(uint64(total))))

	if len(res.Files) > s.opts.AudioLimit {
		res.Files = res.Files[:s.opts.AudioLimit]
	}
	return res
}

// list reads dir. A missing folder and any other listing failure become
// a notice.
func (s *Scanner) list(dir string) ([]os.DirEntry, Notice, bool) {
	entries, err := os.ReadDir(dir)
	if err == nil {
		return entries, Notice{}, true
	}
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("Media folder does not exist", logging.F("dir", dir))
		return nil, Notice{Kind: NoticeMissingDir, Path: dir}, false
	}
	s.logger.Warn("Media folder unreadable", logging.F("dir", dir), logging.Err(err))
	return nil, Notice{Kind: NoticeFileError, Path: dir, Error: err.Error()}, false
}

func hasExtension(name string, exts []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}
