// Package filename expands capture filename templates.
//
// Supported tokens:
//
//	%N, %NN, ...  capture counter, zero padded to the number of Ns
//	%w, %h        image width and height
//	%y, %m, %d    year, month and day
//	%t            time as hh-mm-ss
//
// Unknown tokens are kept as written.
package filename

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// DefaultTemplate is used when the configured template is empty.
const DefaultTemplate = "%NN"

// Expand replaces the tokens of tmpl.
func Expand(tmpl string, counter int, size image.Point, now time.Time) string {
	if strings.TrimSpace(tmpl) == "" {
		tmpl = DefaultTemplate
	}
	var sb strings.Builder
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		if c != '%' || i+1 >= len(tmpl) {
			sb.WriteByte(c)
			continue
		}
		next := tmpl[i+1]
		switch next {
		case 'N':
			j := i + 1
			for j < len(tmpl) && tmpl[j] == 'N' {
				j++
			}
			fmt.Fprintf(&sb, "%0*d", j-i-1, counter)
			i = j - 1
			continue
		case 'w':
			fmt.Fprintf(&sb, "%d", size.X)
		case 'h':
			fmt.Fprintf(&sb, "%d", size.Y)
		case 'y':
			sb.WriteString(now.Format("2006"))
		case 'm':
			sb.WriteString(now.Format("01"))
		case 'd':
			sb.WriteString(now.Format("02"))
		case 't':
			sb.WriteString(now.Format("15-04-05"))
		default:
			sb.WriteByte(c)
			continue
		}
		i++
	}
	return sb.String()
}

// Generator hands out unused file paths in Dir.
type Generator struct {
	Dir      string
	Template string
	// Ext is the file extension without the leading dot.
	Ext string

	mu      sync.Mutex
	counter int
	now     func() time.Time
	exists  func(string) bool
}

// NewGenerator returns a generator whose counter starts at 1.
func NewGenerator(dir, tmpl, ext string) *Generator {
	return &Generator{Dir: dir, Template: tmpl, Ext: strings.TrimPrefix(ext, ".")}
}

// Next expands the template for an image of size and returns a path that does
// not exist yet. A template with a counter skips counter values whose file
// already exists. Other templates get a "-1", "-2", ... suffix before the
// extension.
func (g *Generator) Next(size image.Point) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := time.Now
	if g.now != nil {
		now = g.now
	}
	exists := fileExists
	if g.exists != nil {
		exists = g.exists
	}
	ext := ""
	if g.Ext != "" {
		ext = "." + strings.ToLower(g.Ext)
	}
	t := now()

	g.counter++
	base := Expand(g.Template, g.counter, size, t)
	path := filepath.Join(g.Dir, base+ext)
	if HasCounter(g.Template) {
		for exists(path) {
			g.counter++
			path = filepath.Join(g.Dir, Expand(g.Template, g.counter, size, t)+ext)
		}
		return path
	}
	for idx := 1; exists(path); idx++ {
		path = filepath.Join(g.Dir, fmt.Sprintf("%s-%d%s", base, idx, ext))
	}
	return path
}

// HasCounter reports whether tmpl expands a %N token.
func HasCounter(tmpl string) bool {
	if strings.TrimSpace(tmpl) == "" {
		tmpl = DefaultTemplate
	}
	return strings.Contains(tmpl, "%N")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
