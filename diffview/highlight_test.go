package diffview

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func join(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Text)
	}
	return b.String()
}

func changed(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		if s.Changed {
			b.WriteString(s.Text)
		}
	}
	return b.String()
}

func TestHighlight(t *testing.T) {
	lines, err := Format(header +
		"@@ -1,4 +1,4 @@\n" +
		" same\n" +
		"-the quick fox\n" +
		"+the slow fox\n" +
		"-only deleted\n" +
		" tail\n")
	if err != nil {
		t.Fatal(err)
	}

	got := Highlight(lines)

	del, add := got[2], got[3]
	if join(del.Segments) != "the quick fox" || join(add.Segments) != "the slow fox" {
		t.Errorf("segments don't rebuild their lines: %+v / %+v", del.Segments, add.Segments)
	}
	if changed(del.Segments) != "quick" || changed(add.Segments) != "slow" {
		t.Errorf("changed text = %q / %q, want quick / slow", changed(del.Segments), changed(add.Segments))
	}

	for _, i := range []int{0, 1, 4, 5} {
		if got[i].Segments != nil {
			t.Errorf("line %d (%q) should not be highlighted, got %+v", i, got[i].Text, got[i].Segments)
		}
	}
}

func TestHighlight_pairsRunsInOrder(t *testing.T) {
	lines := []Line{
		{Text: "-a1", Class: Deletion},
		{Text: "-b1", Class: Deletion},
		{Text: "+a2", Class: Addition},
		{Text: "+b2", Class: Addition},
		{Text: "+c2", Class: Addition},
	}

	got := Highlight(lines)

	want := [][]Segment{
		{{Text: "a"}, {Text: "1", Changed: true}},
		{{Text: "b"}, {Text: "1", Changed: true}},
		{{Text: "a"}, {Text: "2", Changed: true}},
		{{Text: "b"}, {Text: "2", Changed: true}},
		nil,
	}
	for i := range want {
		if d := cmp.Diff(want[i], got[i].Segments); d != "" {
			t.Errorf("line %d segments mismatch (-want +got):\n%s", i, d)
		}
	}
}
