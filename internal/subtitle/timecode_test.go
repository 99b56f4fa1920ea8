package subtitle

import (
	"errors"
	"math"
	"testing"
)

func TestFormatTimecode(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "00:00:00,000"},
		{1000, "00:00:01,000"},
		{3500, "00:00:03,500"},
		{61001, "00:01:01,001"},
		{3599999, "00:59:59,999"},
		{3600000, "01:00:00,000"},
		{99*3600000 + 59*60000 + 59*1000 + 999, "99:59:59,999"},
		{100 * 3600000, "100:00:00,000"},
		{-5, "00:00:00,000"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatTimecode(tt.ms); got != tt.want {
				t.Errorf("FormatTimecode(%d) = %q, want %q", tt.ms, got, tt.want)
			}
		})
	}
}

func TestParseTimecode(t *testing.T) {
	tests := []struct {
		text    string
		want    int64
		wantErr bool
	}{
		{text: "00:00:01,000", want: 1000},
		{text: "00:00:01.000", want: 1000},
		{text: "01:02:03,004", want: 3723004},
		{text: "123:00:00,001", want: 123*3600000 + 1},
		{text: "00:00:01", wantErr: true},
		{text: "0:00:01,000", wantErr: true},
		{text: "00:00:01;000", wantErr: true},
		{text: "00:60:00,000", wantErr: true},
		{text: "00:00:60,000", wantErr: true},
		{text: "aa:bb:cc,ddd", wantErr: true},
		{text: " 00:00:01,000", wantErr: true},
		{text: "", wantErr: true},
		{text: "99999999999999999999:00:00,000", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := ParseTimecode(tt.text)
			if tt.wantErr {
				var fe *FormatError
				if !errors.As(err, &fe) {
					t.Fatalf("expected *FormatError, got %v", err)
				}
				if fe.Text != tt.text {
					t.Errorf("FormatError.Text = %q, want %q", fe.Text, tt.text)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseTimecode(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestTimecodeRoundTrip(t *testing.T) {
	values := []int64{
		0, 1, 999, 1000, 59999, 60000, 3599999, 3600000,
		86399999, 360000000, 123456789, math.MaxInt64,
	}
	for ms := int64(0); ms < 5000; ms += 7 {
		values = append(values, ms)
	}

	for _, ms := range values {
		got, err := ParseTimecode(FormatTimecode(ms))
		if err != nil {
			t.Fatalf("round trip of %d failed: %v", ms, err)
		}
		if got != ms {
			t.Errorf("round trip of %d = %d", ms, got)
		}
	}
}

func TestTimecodeNormalizesSeparator(t *testing.T) {
	inputs := map[string]string{
		"00:00:03.500":  "00:00:03,500",
		"00:00:03,500":  "00:00:03,500",
		"12:34:56.789":  "12:34:56,789",
		"100:00:00.000": "100:00:00,000",
	}

	for in, want := range inputs {
		ms, err := ParseTimecode(in)
		if err != nil {
			t.Fatalf("ParseTimecode(%q): %v", in, err)
		}
		if got := FormatTimecode(ms); got != want {
			t.Errorf("FormatTimecode(ParseTimecode(%q)) = %q, want %q", in, got, want)
		}
	}
}

func TestNumberingToken(t *testing.T) {
	tests := []struct {
		start, end int64
		want       string
	}{
		{0, 0, "00_00_00_000"},
		{1000, 3500, "00_00_01_000"},
		{3723004, 3724000, "01_02_03_004"},
		{100 * 3600000, 0, "100_00_00_000"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := NumberingToken(tt.start, tt.end); got != tt.want {
				t.Errorf("NumberingToken(%d, %d) = %q, want %q", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestNumberingTokenIgnoresEnd(t *testing.T) {
	if NumberingToken(500, 999999) != NumberingToken(500, 1) {
		t.Error("numbering token must depend on the start offset only")
	}
}
