package diffview

import (
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Segment is a run of text within a line, flagged if it differs from the paired line on the other
// side of the diff.
type Segment struct {
	Text    string `json:"text"`
	Changed bool   `json:"changed,omitempty"`
}

// Highlight pairs each run of deletions with the run of additions that immediately follows it,
// line by line, and fills in Segments on both so the changed words can be emphasised. Lines
// without a partner are left untouched. The input slice is modified and returned.
func Highlight(lines []Line) []Line {
	dmp := diffmatchpatch.New()

	for i := 0; i < len(lines); {
		if lines[i].Class != Deletion {
			i++
			continue
		}

		delStart := i
		for i < len(lines) && lines[i].Class == Deletion {
			i++
		}
		addStart := i
		for i < len(lines) && lines[i].Class == Addition {
			i++
		}

		dels := lines[delStart:addStart]
		adds := lines[addStart:i]
		for j := 0; j < len(dels) && j < len(adds); j++ {
			dels[j].Segments, adds[j].Segments = segments(dmp, dels[j].Text[1:], adds[j].Text[1:])
		}
	}

	return lines
}

// segments diffs the content of a deleted and an added line, returning the segments of each.
func segments(dmp *diffmatchpatch.DiffMatchPatch, was, now string) ([]Segment, []Segment) {
	diffs := dmp.DiffMain(was, now, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var before, after []Segment
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			before = append(before, Segment{Text: d.Text})
			after = append(after, Segment{Text: d.Text})
		case diffmatchpatch.DiffDelete:
			before = append(before, Segment{Text: d.Text, Changed: true})
		case diffmatchpatch.DiffInsert:
			after = append(after, Segment{Text: d.Text, Changed: true})
		}
	}
	return before, after
}
