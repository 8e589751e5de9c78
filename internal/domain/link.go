package domain

import (
	"net/url"
	"strings"
)

// LinkStatus represents the processing status of a link file entry
type LinkStatus string

const (
	StatusPending LinkStatus = "pending"
	StatusDone    LinkStatus = "done"
	StatusSkipped LinkStatus = "skipped"
	StatusFailed  LinkStatus = "failed"
)

// Annotation keywords written after the URL of a processed line:
//
//	# https://example.com/track # downloaded: Track Title
//	# https://example.com/track # skipped: exists (Track Title.mp3)
//	# https://example.com/track # failed: not found (404)
const (
	NoteDownloaded = "downloaded"
	NoteSkipped    = "skipped"
	NoteFailed     = "failed"

	annotationSep = " # "
	maxNoteLength = 200
)

// LinkEntry is one logical line of the link file that refers to a URL
type LinkEntry struct {
	Line   int        // 1-based line number in the file
	Raw    string     // original line text
	URL    string     // empty when the line carries no URL
	Status LinkStatus // status recorded in the file or set during this run
	Note   string     // trailing annotation, e.g. "downloaded: Title"

	changed bool
}

// ParseLine parses one line of the link file. It returns nil for blank lines
// and plain comments, which are not entries.
func ParseLine(lineNo int, raw string) *LinkEntry {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	if strings.HasPrefix(trimmed, "#") {
		return parseAnnotated(lineNo, raw, strings.TrimSpace(trimmed[1:]))
	}

	return &LinkEntry{
		Line:   lineNo,
		Raw:    raw,
		URL:    ExtractURL(trimmed),
		Status: StatusPending,
	}
}

// parseAnnotated recognizes "<url> # <note>" after the leading '#'.
// Anything else is an ordinary comment.
func parseAnnotated(lineNo int, raw, body string) *LinkEntry {
	end := strings.IndexAny(body, " \t")
	if end <= 0 {
		return nil
	}
	link := body[:end]
	if !IsHTTPURL(link) {
		return nil
	}

	rest := strings.TrimSpace(body[end:])
	if !strings.HasPrefix(rest, "#") {
		return nil
	}
	note := strings.TrimSpace(rest[1:])
	if note == "" {
		return nil
	}

	return &LinkEntry{
		Line:   lineNo,
		Raw:    raw,
		URL:    link,
		Status: statusFromNote(note),
		Note:   note,
	}
}

// statusFromNote maps an annotation to a status. Notes written by older
// versions ("ERROR: ...", "SKIPPED (...)", a bare title) are understood too.
func statusFromNote(note string) LinkStatus {
	lower := strings.ToLower(note)
	switch {
	case strings.HasPrefix(lower, NoteFailed+":"), strings.HasPrefix(lower, "error:"):
		return StatusFailed
	case strings.HasPrefix(lower, NoteSkipped+":"), strings.HasPrefix(lower, NoteSkipped+" ("):
		return StatusSkipped
	default:
		return StatusDone
	}
}

// Render returns the text to write back for this entry
func (e *LinkEntry) Render() string {
	if !e.changed || e.Note == "" {
		return e.Raw
	}
	return "# " + e.URL + annotationSep + e.Note
}

// Apply records the outcome of an attempt on the entry
func (e *LinkEntry) Apply(result *RunResult) {
	e.Status = result.Status
	e.Note = result.Annotation()
	e.changed = true
}

// IsProcessed reports whether a previous run already handled the entry
func (e *LinkEntry) IsProcessed() bool {
	return e.Status == StatusDone || e.Status == StatusSkipped
}

// IsEligible reports whether the entry should be attempted
func (e *LinkEntry) IsEligible() bool {
	return e.URL != "" && !e.IsProcessed()
}

// ExtractURL returns the first whitespace-separated token that is an
// absolute http(s) URL, or an empty string
func ExtractURL(line string) string {
	for _, field := range strings.Fields(line) {
		if IsHTTPURL(field) {
			return field
		}
	}
	return ""
}

// IsHTTPURL checks if s is an absolute http or https URL
func IsHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// sanitizeNote keeps an annotation on a single line
func sanitizeNote(note string) string {
	note = strings.Join(strings.Fields(note), " ")
	if runes := []rune(note); len(runes) > maxNoteLength {
		note = string(runes[:maxNoteLength-3]) + "..."
	}
	return note
}
