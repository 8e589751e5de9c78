package infrastructure

import (
	"io/fs"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yourusername/audio-extract-go/internal/domain"
)

// codecExtensions maps an audio codec to the file extension yt-dlp writes
var codecExtensions = map[string][]string{
	"mp3":    {".mp3"},
	"wav":    {".wav"},
	"flac":   {".flac"},
	"m4a":    {".m4a"},
	"aac":    {".m4a"},
	"alac":   {".m4a"},
	"opus":   {".opus"},
	"vorbis": {".ogg"},
	"best":   {".mp3", ".wav", ".flac", ".m4a", ".opus", ".ogg", ".aac", ".webm"},
}

// minMatchLength keeps short titles, IDs and URL segments like "1" from
// matching every file that happens to contain them
const minMatchLength = 4

// AudioLibrary answers whether a URL's audio is already in the output directory
type AudioLibrary struct {
	root  string
	codec string
}

// NewAudioLibrary creates a library view over outputDir for files of codec
func NewAudioLibrary(outputDir, codec string) *AudioLibrary {
	return &AudioLibrary{root: outputDir, codec: codec}
}

// FindExisting looks for a file matching the probed title, then the media ID,
// then the last path segment of the URL. Matching ignores case and punctuation.
func (l *AudioLibrary) FindExisting(rawURL string, info *domain.MediaInfo) (string, bool) {
	var candidates []string
	if info != nil {
		candidates = append(candidates, info.Title, info.ID)
	}
	candidates = append(candidates, urlSlug(rawURL))

	for _, c := range candidates {
		needle := normalizeName(c)
		if utf8.RuneCountInString(needle) < minMatchLength {
			continue
		}
		if found, ok := l.find(needle); ok {
			return found, true
		}
	}
	return "", false
}

func (l *AudioLibrary) find(needle string) (string, bool) {
	if needle == "" {
		return "", false
	}
	exts, ok := codecExtensions[l.codec]
	if !ok {
		exts = []string{"." + l.codec}
	}

	var found string
	filepath.WalkDir(l.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		name := d.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if !containsString(exts, ext) {
			return nil
		}
		if strings.Contains(normalizeName(strings.TrimSuffix(name, filepath.Ext(name))), needle) {
			found = p
			return fs.SkipAll
		}
		return nil
	})
	return found, found != ""
}

// urlSlug returns the last path segment of rawURL, or the v= query value
func urlSlug(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	if v := u.Query().Get("v"); v != "" {
		return v
	}
	return path.Base(strings.TrimRight(u.Path, "/"))
}

// normalizeName lowercases s and drops everything but letters and digits,
// since yt-dlp substitutes characters that are unsafe in file names
func normalizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
