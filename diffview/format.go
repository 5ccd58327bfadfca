// Package diffview turns unified diffs into numbered lines for a two column diff view.
package diffview

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// headerLines is the number of lines before the first hunk: "diff --git", "index", "---" and "+++".
const headerLines = 4

const (
	// Ellipsis is shown in place of line numbers on hunk markers.
	Ellipsis = "..."
	// Blank is shown on the left of additions. It is a single space, not an empty string, so that
	// the left column keeps its width.
	Blank = " "
)

// ErrMalformedHunk is returned when a hunk marker has no readable start lines.
var ErrMalformedHunk = errors.New("malformed hunk header")

// Class is the kind of a diff line.
type Class int

const (
	Context Class = iota
	Addition
	Deletion
	HunkMarker
)

func (c Class) String() string {
	switch c {
	case Addition:
		return "addition"
	case Deletion:
		return "deletion"
	case HunkMarker:
		return "hunk"
	default:
		return "context"
	}
}

func (c Class) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// CSSClass returns the class name diff views have traditionally used for the line.
func (c Class) CSSClass() string {
	switch c {
	case Addition:
		return "gi"
	case Deletion:
		return "gd"
	case HunkMarker:
		return "gc"
	default:
		return ""
	}
}

// Line is one displayable line of a diff. Left and Right hold the line's number in the old and
// new file, Ellipsis for hunk markers, and Blank or "" when the line isn't on that side.
type Line struct {
	Text     string    `json:"text"`
	Left     string    `json:"left"`
	Right    string    `json:"right"`
	Class    Class     `json:"class"`
	Segments []Segment `json:"segments,omitempty"`
}

// classes maps line prefixes onto classes, checked in order. Anything else is context.
var classes = []struct {
	prefix string
	class  Class
}{
	{"@@", HunkMarker},
	{"-", Deletion},
	{"+", Addition},
}

// Classify returns the class of a raw diff line.
func Classify(line string) Class {
	for _, c := range classes {
		if strings.HasPrefix(line, c.prefix) {
			return c.class
		}
	}
	return Context
}

var (
	hunkLeft  = regexp.MustCompile(`-(\d+)`)
	hunkRight = regexp.MustCompile(`\+(\d+)`)
)

// counters tracks the next line number on each side of the diff.
type counters struct {
	left, right int
}

// reset starts a new hunk from a "@@ -a,b +c,d @@" marker.
func (c *counters) reset(marker string) error {
	l := hunkLeft.FindStringSubmatch(marker)
	r := hunkRight.FindStringSubmatch(marker)
	if l == nil || r == nil {
		return fmt.Errorf("%w: %q", ErrMalformedHunk, marker)
	}
	// Both matched \d+, so only overflow can fail here.
	left, err := strconv.Atoi(l[1])
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrMalformedHunk, marker, err)
	}
	right, err := strconv.Atoi(r[1])
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrMalformedHunk, marker, err)
	}
	c.left, c.right = left, right
	return nil
}

func (c *counters) nextLeft() string {
	n := c.left
	c.left++
	return strconv.Itoa(n)
}

func (c *counters) nextRight() string {
	n := c.right
	c.right++
	return strconv.Itoa(n)
}

// label numbers a line of the given class, advancing the counters for the sides it appears on.
func (c *counters) label(class Class, text string) (string, string, error) {
	switch class {
	case HunkMarker:
		if err := c.reset(text); err != nil {
			return "", "", err
		}
		return Ellipsis, Ellipsis, nil
	case Deletion:
		return c.nextLeft(), "", nil
	case Addition:
		return Blank, c.nextRight(), nil
	default:
		return c.nextLeft(), c.nextRight(), nil
	}
}

// Format parses a unified diff of a single file into display lines. The four header lines are
// skipped unconditionally, as are "\ No newline at end of file" markers.
func Format(raw string) ([]Line, error) {
	lines := strings.Split(raw, "\n")
	if n := len(lines); lines[n-1] == "" {
		lines = lines[:n-1]
	}
	if len(lines) <= headerLines {
		return []Line{}, nil
	}

	var c counters
	res := make([]Line, 0, len(lines)-headerLines)
	for _, text := range lines[headerLines:] {
		if strings.HasPrefix(text, `\`) {
			continue
		}
		class := Classify(text)
		left, right, err := c.label(class, text)
		if err != nil {
			return nil, err
		}
		res = append(res, Line{
			Text:  text,
			Left:  left,
			Right: right,
			Class: class,
		})
	}
	return res, nil
}
