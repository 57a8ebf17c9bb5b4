package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	sectionRuleCharacterConstant = "="
	sectionRuleWidthConstant     = 60
)

// Reporter emits formatted progress text to an underlying sink.
type Reporter interface {
	Printf(format string, args ...any)
	Section(title string)
	Colorize() bool
}

type writerReporter struct {
	writer   io.Writer
	colorize bool
}

// NewWriterReporter constructs a Reporter that writes to the provided io.Writer.
func NewWriterReporter(writer io.Writer) Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return writerReporter{writer: writer, colorize: ShouldColorize(writer)}
}

// Printf writes formatted text to the sink.
func (reporter writerReporter) Printf(format string, args ...any) {
	fmt.Fprintf(reporter.writer, format, args...)
}

// Section writes a ruled heading.
func (reporter writerReporter) Section(title string) {
	rule := strings.Repeat(sectionRuleCharacterConstant, sectionRuleWidthConstant)
	fmt.Fprintf(reporter.writer, "\n%s\n%s\n%s\n", rule, title, rule)
}

// Colorize reports whether the sink is a terminal.
func (reporter writerReporter) Colorize() bool {
	return reporter.colorize
}
