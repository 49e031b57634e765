package englishtime

import "testing"

func TestDescribeInterval(t *testing.T) {
	cases := []struct {
		seconds int64
		want    string
	}{
		{0, "0 seconds"},
		{1, "1 second"},
		{59, "59 seconds"},
		{60, "1 minute"},
		{3661, "1 hour, 1 minute, 1 second"},
		{86400, "1 day"},
		{90000, "1 day, 1 hour"},
		{31536000, "1 year"},
		{31536000 + 86400, "1 year, 1 day"},
	}
	for _, c := range cases {
		got := DescribeInterval(c.seconds)
		if got != c.want {
			t.Errorf("DescribeInterval(%d) = %q, want %q", c.seconds, got, c.want)
		}
	}
}

func TestParseInterval(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"1 second", 1},
		{"2 seconds", 2},
		{"1 minute", 60},
		{"1 hour, 1 minute, 1 second", 3661},
		{"1 day, 1 hour", 90000},
		{"1 year", 31536000},
	}
	for _, c := range cases {
		got, err := ParseInterval(c.in)
		if err != nil {
			t.Fatalf("ParseInterval(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ParseInterval(%q) = %d, want %d", c.in, got, c.want)
		}
	}

	if _, err := ParseInterval("bogus"); err == nil {
		t.Fatalf("expected error for malformed interval")
	}
	if _, err := ParseInterval("1 fortnight"); err == nil {
		t.Fatalf("expected error for unknown unit")
	}
}

func TestRoundTripProperty(t *testing.T) {
	for _, seconds := range []int64{0, 1, 59, 60, 3599, 3600, 86399, 86400, 31535999, 31536000, 123456789} {
		described := DescribeInterval(seconds)
		parsed, err := ParseInterval(described)
		if err != nil {
			t.Fatalf("ParseInterval(%q): %v", described, err)
		}
		if parsed != seconds {
			t.Errorf("round trip failed for %d: described %q parsed back to %d", seconds, described, parsed)
		}
	}
}
