package subtitle

import (
	"testing"
)

func TestParseTwoBlocks(t *testing.T) {
	raw := "1\n00:00:01,000 --> 00:00:03,500\nHello world\n\n2\n00:00:03,500 --> 00:00:05,000\nSecond line\n\n"

	segments := Parse(raw, SourceNone)
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}

	want := []Segment{
		{Index: 1, StartMs: 1000, EndMs: 3500, StartTimecode: "00:00:01,000", EndTimecode: "00:00:03,500", Text: "Hello world"},
		{Index: 2, StartMs: 3500, EndMs: 5000, StartTimecode: "00:00:03,500", EndTimecode: "00:00:05,000", Text: "Second line"},
	}
	for i, w := range want {
		got := segments[i]
		if got.Index != w.Index || got.StartMs != w.StartMs || got.EndMs != w.EndMs {
			t.Errorf("segment %d: got index=%d start=%d end=%d", i, got.Index, got.StartMs, got.EndMs)
		}
		if got.StartTimecode != w.StartTimecode || got.EndTimecode != w.EndTimecode {
			t.Errorf("segment %d: got timecodes %q --> %q", i, got.StartTimecode, got.EndTimecode)
		}
		if got.Text != w.Text {
			t.Errorf("segment %d: got text %q, want %q", i, got.Text, w.Text)
		}
		if got.SourceType != SourceNone {
			t.Errorf("segment %d: got source type %q", i, got.SourceType)
		}
		if got.Mood != "" || got.SuggestedReason != "" || got.GeneratedAssetURL != "" {
			t.Errorf("segment %d: advisory fields should be empty", i)
		}
		if got.ReferenceLinks == nil || len(got.ReferenceLinks) != 0 {
			t.Errorf("segment %d: expected empty reference list, got %#v", i, got.ReferenceLinks)
		}
	}
}

func TestParseSkipsTruncatedTrailingBlock(t *testing.T) {
	raw := "1\n00:00:01,000 --> 00:00:02,000\nComplete block\n\n2\nno timing line here"

	segments := Parse(raw, SourceNone)
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	if segments[0].Text != "Complete block" {
		t.Errorf("unexpected text %q", segments[0].Text)
	}
}

func TestParseFlattensMultilineText(t *testing.T) {
	raw := "7\n00:00:05,500 --> 00:00:08,200\n  This is a test.\nWith multiple lines.  \n"

	segments := Parse(raw, SourcePhoto)
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	if got := segments[0].Text; got != "This is a test. With multiple lines." {
		t.Errorf("unexpected text %q", got)
	}
	if segments[0].SourceType != SourcePhoto {
		t.Errorf("default classification not applied: %q", segments[0].SourceType)
	}
}

func TestParseLineEndingsAndSeparators(t *testing.T) {
	raw := "\ufeff1\r\n00:00:01.250 --> 00:00:02.000\r\nDot separated\r\n\r\n2\r00:00:02,000 --> 00:00:03,000\rOld mac\r"

	segments := Parse(raw, SourceNone)
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].StartMs != 1250 || segments[0].StartTimecode != "00:00:01,250" {
		t.Errorf("dot separator not normalized: %+v", segments[0])
	}
	if segments[1].Text != "Old mac" {
		t.Errorf("unexpected text %q", segments[1].Text)
	}
}

func TestParseEmptyInput(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\n\r\n\t"} {
		segments := Parse(raw, SourceNone)
		if segments == nil || len(segments) != 0 {
			t.Errorf("Parse(%q) = %#v, want empty slice", raw, segments)
		}
	}
}

func TestParseSkipsMalformedBlocks(t *testing.T) {
	raw := `1
00:00:01,000 --> 00:00:02,000
First

x
00:00:02,000 --> 00:00:03,000
Bad index

3
00:75:00,000 --> 00:76:00,000
Bad minutes

4
00:00:04,000 -> 00:00:05,000
Bad arrow

5
00:00:05,000 --> 00:00:06,000

6
00:00:06,000 --> 00:00:07,000
Last`

	segments := Parse(raw, SourceNone)
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d: %+v", len(segments), segments)
	}
	if segments[0].Index != 1 || segments[1].Index != 6 {
		t.Errorf("unexpected indices %d, %d", segments[0].Index, segments[1].Index)
	}
}

func TestParseSkipsZeroIndex(t *testing.T) {
	raw := "0\n00:00:00,000 --> 00:00:01,000\nPreroll\n\n" +
		"00\n00:00:00,500 --> 00:00:01,000\nPadded zero\n\n" +
		"1\n00:00:01,000 --> 00:00:02,000\nFirst\n"

	segments := Parse(raw, SourceNone)
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d: %+v", len(segments), segments)
	}
	if segments[0].Index != 1 || segments[0].Text != "First" {
		t.Errorf("unexpected segment %+v", segments[0])
	}
}

func TestParseKeepsTextualOrder(t *testing.T) {
	raw := "3\n00:00:03,000 --> 00:00:04,000\nthree\n\n1\n00:00:01,000 --> 00:00:02,000\none\n\n3\n00:00:05,000 --> 00:00:06,000\nthree again"

	segments := Parse(raw, SourceNone)
	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segments))
	}
	gotOrder := []int{segments[0].Index, segments[1].Index, segments[2].Index}
	wantOrder := []int{3, 1, 3}
	for i := range wantOrder {
		if gotOrder[i] != wantOrder[i] {
			t.Fatalf("order = %v, want %v", gotOrder, wantOrder)
		}
	}
}

func TestParseReconstructRoundTrip(t *testing.T) {
	raw := "1\n00:00:01,000 --> 00:00:03,500\nHello world\n\n2\n00:00:03,500 --> 00:00:05,000\nSecond line\n\n10\n01:00:00,000 --> 01:00:02,123\nTenth\n\n"

	got := FormatTranscript(Parse(raw, SourceNone))
	if got != raw {
		t.Errorf("reconstructed transcript differs:\ngot  %q\nwant %q", got, raw)
	}
}

func TestParseReconstructFlattensLineBreaks(t *testing.T) {
	raw := "1\n00:00:01,000 --> 00:00:02,000\nline one\nline two\n\n"
	want := "1\n00:00:01,000 --> 00:00:02,000\nline one line two\n\n"

	if got := FormatTranscript(Parse(raw, SourceNone)); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
