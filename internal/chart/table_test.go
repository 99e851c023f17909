package chart

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Seat", "Name", "Power"}
	rows := [][]string{
		{"1", "Ada Lane", "205.3"},
		{"8", "Zoë", "-"},
	}
	lines := FormatTable(headers, rows, map[int]bool{0: true, 2: true})
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Seat  Name      Power" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "   1  Ada Lane  205.3" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "   8  Zoë           -" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableEmpty(t *testing.T) {
	if lines := FormatTable(nil, nil, nil); lines != nil {
		t.Fatalf("expected nil, got %v", lines)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("Morning outing", 8); got != "Morning…" {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := Truncate("short", 8); got != "short" {
		t.Fatalf("unexpected truncation %q", got)
	}
}
