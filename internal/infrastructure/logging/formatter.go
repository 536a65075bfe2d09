// Package logging builds the per-run console logger.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/sirupsen/logrus"
)

const (
	commandPrefix = "$ "
	dryRunPrefix  = "[DRY-RUN]"
	debugEnv      = "DEBUG"
)

// Options controls how a run's logger renders.
type Options struct {
	Verbose bool // Raise the level to debug
	NoColor bool // Force plain output even on a terminal
}

// NewLogger creates a logger writing to out. Nothing is shared with other loggers, so
// concurrent runs keep their output apart.
func NewLogger(out io.Writer, opts Options) *logrus.Logger {
	renderer := lipgloss.NewRenderer(out)
	if opts.NoColor {
		renderer.SetColorProfile(termenv.Ascii)
	}

	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(NewFormatter(renderer))
	if opts.Verbose || os.Getenv(debugEnv) == "true" {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

// Formatter renders entries as single console lines styled with lipgloss.
type Formatter struct {
	levels  map[logrus.Level]lipgloss.Style
	labels  map[logrus.Level]string
	command lipgloss.Style
	dryRun  lipgloss.Style
	field   lipgloss.Style
}

// NewFormatter creates a formatter whose colors follow the renderer's profile.
func NewFormatter(renderer *lipgloss.Renderer) *Formatter {
	return &Formatter{
		levels: map[logrus.Level]lipgloss.Style{
			logrus.PanicLevel: renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
			logrus.FatalLevel: renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
			logrus.ErrorLevel: renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
			logrus.WarnLevel:  renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
			logrus.DebugLevel: renderer.NewStyle().Faint(true),
			logrus.TraceLevel: renderer.NewStyle().Faint(true),
		},
		labels: map[logrus.Level]string{
			logrus.PanicLevel: "PANIC",
			logrus.FatalLevel: "FATAL",
			logrus.ErrorLevel: "ERROR",
			logrus.WarnLevel:  "WARN",
			logrus.DebugLevel: "DEBUG",
			logrus.TraceLevel: "TRACE",
		},
		command: renderer.NewStyle().Foreground(lipgloss.Color("14")),
		dryRun:  renderer.NewStyle().Foreground(lipgloss.Color("13")),
		field:   renderer.NewStyle().Faint(true),
	}
}

// Format implements logrus.Formatter.
func (f *Formatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer

	if label, ok := f.labels[entry.Level]; ok {
		b.WriteString(f.levels[entry.Level].Render(label))
		b.WriteByte(' ')
	}

	message := strings.TrimRight(entry.Message, "\n")
	switch {
	case entry.Level != logrus.InfoLevel:
		b.WriteString(message)
	case strings.HasPrefix(message, commandPrefix):
		b.WriteString(f.command.Render(message))
	case strings.HasPrefix(message, dryRunPrefix):
		b.WriteString(f.dryRun.Render(message))
	default:
		b.WriteString(message)
	}

	keys := make([]string, 0, len(entry.Data))
	for key := range entry.Data {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		b.WriteByte(' ')
		b.WriteString(f.field.Render(fmt.Sprintf("%s=%v", key, entry.Data[key])))
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}
