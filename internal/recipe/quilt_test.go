package recipe

import (
	"testing"
)

func TestParseSeries(t *testing.T) {
	series := `# applied upstream in 1.3
0001-fix-crc.patch
0002-big-endian.patch -p0


subdir/0003-tests.patch
`
	entries := ParseSeries(series)

	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}

	if entries[0].Name != "0001-fix-crc.patch" || entries[0].StripLevel != QuiltDefaultStrip {
		t.Errorf("Unexpected first entry %+v", entries[0])
	}
	if entries[1].Name != "0002-big-endian.patch" || entries[1].StripLevel != 0 {
		t.Errorf("Expected -p0 override, got %+v", entries[1])
	}
	if entries[2].Name != "subdir/0003-tests.patch" || entries[2].StripLevel != 1 {
		t.Errorf("Unexpected nested entry %+v", entries[2])
	}

	for _, e := range entries {
		if e.Number != -1 {
			t.Errorf("Series entries are unnumbered, got %d for %s", e.Number, e.Name)
		}
	}
}

func TestParseSeriesEmpty(t *testing.T) {
	if entries := ParseSeries(""); entries != nil {
		t.Errorf("Expected nil for empty series, got %v", entries)
	}
	if entries := ParseSeries("# only comments\n\n"); entries != nil {
		t.Errorf("Expected nil for comment-only series, got %v", entries)
	}
}

func TestParseSeriesMalformedOption(t *testing.T) {
	entries := ParseSeries("fix.patch -pX\n")
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries[0].StripLevel != QuiltDefaultStrip {
		t.Errorf("Unparseable -p option must keep the default, got %d", entries[0].StripLevel)
	}
}
