package progress

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// Bar renders batch progress on one terminal line. It is safe for use
// from several goroutines; a nil *Bar does nothing.
type Bar struct {
	total      int64
	current    int64
	failed     int64
	width      int
	writer     io.Writer
	mu         sync.Mutex
	active     map[string]bool
	enabled    bool
	lastUpdate time.Time
}

// New returns a bar writing to stdout, drawn only when stdout is a terminal.
func New(total int64) *Bar {
	return NewWithWriter(total, os.Stdout, isTerminal())
}

func NewWithWriter(total int64, w io.Writer, enabled bool) *Bar {
	return &Bar{
		total:      total,
		width:      40,
		writer:     w,
		active:     make(map[string]bool),
		enabled:    enabled,
		lastUpdate: time.Now(),
	}
}

func isTerminal() bool {
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	// Check if stdout is a terminal (character device)
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// Start marks path as being converted.
func (b *Bar) Start(path string) {
	if b == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.active[path] = true
	b.render()
}

// Done marks path finished; failed conversions are counted separately.
func (b *Bar) Done(path string, err error) {
	if b == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.active, path)
	b.current++
	if err != nil {
		b.failed++
	}

	// Update at most every 100ms to reduce flickering
	now := time.Now()
	if now.Sub(b.lastUpdate) > 100*time.Millisecond || b.current == b.total {
		b.lastUpdate = now
		b.render()
	}
}

// Counts returns finished and failed totals.
func (b *Bar) Counts() (done, failed int64) {
	if b == nil {
		return 0, 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current, b.failed
}

// render expects mu held.
func (b *Bar) render() {
	if !b.enabled || b.total == 0 {
		return
	}

	percent := float64(b.current) / float64(b.total) * 100
	filledWidth := int(float64(b.width) * float64(b.current) / float64(b.total))

	if filledWidth > b.width {
		filledWidth = b.width
	}

	bar := strings.Repeat("█", filledWidth) + strings.Repeat("░", b.width-filledWidth)

	names := make([]string, 0, len(b.active))
	for path := range b.active {
		names = append(names, filepath.Base(path))
	}

	slices.Sort(names)

	var display string
	if n := len(names); n > 3 {
		display = fmt.Sprintf(" | %s +%d more", strings.Join(names[:3], ", "), n-3)
	} else if n > 0 {
		display = " | " + strings.Join(names, ", ")
	}

	var failed string
	if b.failed > 0 {
		failed = fmt.Sprintf(" %d failed", b.failed)
	}

	fmt.Fprintf(b.writer, "\r\033[K[%s] %3d%% (%d/%d)%s%s",
		bar, int(percent), b.current, b.total, failed, display)
}

func (b *Bar) Finish() {
	if b == nil || !b.enabled {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.render()
	fmt.Fprintf(b.writer, "\n")
}
