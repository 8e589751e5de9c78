package infrastructure

import (
	"bytes"
	"os"
	"strings"

	"github.com/yourusername/audio-extract-go/internal/domain"
)

const (
	utf8BOM        = "\ufeff"
	saveAttempts   = 2
	linkFilePerm   = 0644
	linksFileLabel = "links file"
)

// linkLine is one physical line; entry is nil for blank lines and plain comments
type linkLine struct {
	raw   string
	entry *domain.LinkEntry
}

// LinkFileStore owns the parsed link file and writes it back atomically
type LinkFileStore struct {
	path        string
	lines       []linkLine
	entries     []*domain.LinkEntry
	bom         bool
	crlf        bool
	trailingEOL bool
}

// LoadLinkFile reads and parses the link file at path.
// A missing or unreadable file is a configuration error.
func LoadLinkFile(path string) (*LinkFileStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewConfigurationError(linksFileLabel, err)
	}
	return ParseLinkFile(path, data), nil
}

// ParseLinkFile parses link file content already in memory
func ParseLinkFile(path string, data []byte) *LinkFileStore {
	text := string(data)
	store := &LinkFileStore{path: path}

	if strings.HasPrefix(text, utf8BOM) {
		store.bom = true
		text = strings.TrimPrefix(text, utf8BOM)
	}
	store.crlf = strings.Contains(text, "\r\n")
	store.trailingEOL = strings.HasSuffix(text, "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return store
	}

	for i, raw := range strings.Split(text, "\n") {
		raw = strings.TrimSuffix(raw, "\r")
		entry := domain.ParseLine(i+1, raw)
		store.lines = append(store.lines, linkLine{raw: raw, entry: entry})
		if entry != nil {
			store.entries = append(store.entries, entry)
		}
	}
	return store
}

// Path returns the file the store was loaded from
func (s *LinkFileStore) Path() string {
	return s.path
}

// Entries returns all entries in file order
func (s *LinkFileStore) Entries() []*domain.LinkEntry {
	return s.entries
}

// Pending returns the entries that should be attempted in this run
func (s *LinkFileStore) Pending() []*domain.LinkEntry {
	var pending []*domain.LinkEntry
	for _, e := range s.entries {
		if e.IsEligible() {
			pending = append(pending, e)
		}
	}
	return pending
}

// URLs returns the URL of every entry in file order
func (s *LinkFileStore) URLs() []string {
	urls := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		if e.URL != "" {
			urls = append(urls, e.URL)
		}
	}
	return urls
}

// Mark records the outcome of an attempt on entry
func (s *LinkFileStore) Mark(entry *domain.LinkEntry, result *domain.RunResult) {
	entry.Apply(result)
}

// Render returns the file content with current annotations
func (s *LinkFileStore) Render() []byte {
	eol := "\n"
	if s.crlf {
		eol = "\r\n"
	}

	var buf bytes.Buffer
	if s.bom {
		buf.WriteString(utf8BOM)
	}
	for i, line := range s.lines {
		if line.entry != nil {
			buf.WriteString(line.entry.Render())
		} else {
			buf.WriteString(line.raw)
		}
		if i < len(s.lines)-1 || s.trailingEOL {
			buf.WriteString(eol)
		}
	}
	return buf.Bytes()
}

// Save atomically rewrites the file at path. One failed attempt is retried;
// on final failure the previous file content is left untouched.
func (s *LinkFileStore) Save(path string) error {
	data := s.Render()

	var err error
	for attempt := 0; attempt < saveAttempts; attempt++ {
		if err = WriteFileAtomic(path, data, linkFilePerm); err == nil {
			return nil
		}
	}
	return &domain.LinkFileError{Path: path, Op: "save", Err: err}
}
