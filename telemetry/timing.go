package telemetry

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// TimingCollector builds a tree of timed spans and renders it as a nested
// report. It is safe for use from multiple goroutines, though spans started
// concurrently nest under whichever span was current at the time.
type TimingCollector struct {
	mu      sync.Mutex
	root    *spanNode
	current *spanNode
}

type spanNode struct {
	name     string
	start    time.Time
	end      time.Time
	parent   *spanNode
	children []*spanNode
}

// NewTimingCollector returns an empty collector.
func NewTimingCollector() *TimingCollector {
	return &TimingCollector{}
}

// Start opens a span. The first span becomes the report root.
func (c *TimingCollector) Start(name string) Span {
	c.mu.Lock()
	defer c.mu.Unlock()

	node := &spanNode{name: name, start: time.Now()}
	if c.root == nil {
		c.root = node
	} else {
		node.parent = c.current
		c.current.children = append(c.current.children, node)
	}
	c.current = node
	return &timingSpan{collector: c, node: node}
}

type timingSpan struct {
	collector *TimingCollector
	node      *spanNode
}

func (s *timingSpan) End() {
	s.collector.mu.Lock()
	defer s.collector.mu.Unlock()

	s.node.end = time.Now()
	if s.node.parent != nil {
		s.collector.current = s.node.parent
	}
}

func (s *timingSpan) Child(name string) Span {
	s.collector.mu.Lock()
	defer s.collector.mu.Unlock()

	node := &spanNode{name: name, start: time.Now(), parent: s.node}
	s.node.children = append(s.node.children, node)
	return &timingSpan{collector: s.collector, node: node}
}

var (
	dimStyle  = lipgloss.NewStyle().Faint(true)
	slowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	nameStyle = lipgloss.NewStyle().Bold(true)
)

// Report renders the span tree:
//
//	Total: 125ms
//	├─ Load: 85ms
//	│  └─ Parse main.bean: 45ms
//	└─ Book: 40ms
func (c *TimingCollector) Report(w io.Writer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.root == nil {
		return
	}
	fmt.Fprintf(w, "%s: %s\n", nameStyle.Render(c.root.name), formatDuration(c.root.duration()))
	for i, child := range c.root.children {
		reportNode(w, child, "", i == len(c.root.children)-1)
	}
}

func reportNode(w io.Writer, node *spanNode, prefix string, last bool) {
	branch, extension := "├─ ", "│  "
	if last {
		branch, extension = "└─ ", "   "
	}

	d := node.duration()
	timing := formatDuration(d)
	if d >= 100*time.Millisecond {
		timing = slowStyle.Render(timing)
	} else {
		timing = dimStyle.Render(timing)
	}
	fmt.Fprintf(w, "%s%s: %s\n", dimStyle.Render(prefix+branch), node.name, timing)

	for i, child := range node.children {
		reportNode(w, child, prefix+extension, i == len(node.children)-1)
	}
}

func (n *spanNode) duration() time.Duration {
	end := n.end
	if end.IsZero() {
		end = time.Now()
	}
	return end.Sub(n.start)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.2fs", float64(d)/float64(time.Second))
}
