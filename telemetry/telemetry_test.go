package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestFromContext_DefaultsToNoop(t *testing.T) {
	c := FromContext(context.Background())
	span := c.Start("anything")
	span.Child("nested").End()
	span.End()

	var buf bytes.Buffer
	c.Report(&buf)
	if buf.Len() != 0 {
		t.Errorf("noop collector wrote a report: %q", buf.String())
	}
}

func TestFromContext_RoundTrip(t *testing.T) {
	collector := NewTimingCollector()
	ctx := WithCollector(context.Background(), collector)
	if FromContext(ctx) != Collector(collector) {
		t.Error("collector did not round-trip through context")
	}
}

func TestTimingCollector_ReportTree(t *testing.T) {
	collector := NewTimingCollector()

	root := collector.Start("Total")
	load := root.Child("Load")
	load.Child("Parse main.bean").End()
	load.End()
	root.Child("Book").End()
	root.End()

	var buf bytes.Buffer
	collector.Report(&buf)
	out := buf.String()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 report lines, got %d:\n%s", len(lines), out)
	}
	for i, want := range []string{"Total", "Load", "Parse main.bean", "Book"} {
		if !strings.Contains(lines[i], want) {
			t.Errorf("line %d = %q, expected it to mention %q", i, lines[i], want)
		}
	}
	// Load nests one level deep, its parse child two.
	if !strings.Contains(lines[1], "├─") {
		t.Errorf("expected a branch on line 1, got %q", lines[1])
	}
	if !strings.Contains(lines[3], "└─") {
		t.Errorf("expected the last child to close the tree, got %q", lines[3])
	}
}

func TestTimingCollector_EmptyReport(t *testing.T) {
	var buf bytes.Buffer
	NewTimingCollector().Report(&buf)
	if buf.Len() != 0 {
		t.Errorf("empty collector wrote a report: %q", buf.String())
	}
}

func TestTimingCollector_NestedStart(t *testing.T) {
	collector := NewTimingCollector()

	root := collector.Start("Total")
	inner := collector.Start("Inner")
	inner.End()
	root.End()

	var buf bytes.Buffer
	collector.Report(&buf)
	if !strings.Contains(buf.String(), "Inner") {
		t.Errorf("span started while another was current did not nest:\n%s", buf.String())
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{d: 45 * time.Millisecond, want: "45ms"},
		{d: 999 * time.Millisecond, want: "999ms"},
		{d: 1500 * time.Millisecond, want: "1.50s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%s) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
