package execution

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
)

// lineLogger writes each complete line it receives to the logger.
// A trailing partial line is kept until the next write or Flush.
type lineLogger struct {
	logger  *slog.Logger
	stream  string
	pending bytes.Buffer
}

func newLineLogger(logger *slog.Logger, stream string) *lineLogger {
	return &lineLogger{logger: logger, stream: stream}
}

func (l *lineLogger) Write(p []byte) (int, error) {
	l.pending.Write(p)
	for {
		line, err := l.pending.ReadString('\n')
		if err != nil {
			// Put the partial line back for the next write.
			l.pending.Reset()
			l.pending.WriteString(line)
			break
		}
		l.emit(line)
	}
	return len(p), nil
}

// Flush logs whatever is left after the stream closed.
func (l *lineLogger) Flush() {
	if l.pending.Len() == 0 {
		return
	}
	l.emit(l.pending.String())
	l.pending.Reset()
}

func (l *lineLogger) emit(line string) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return
	}
	l.logger.Info("Process output", "stream", l.stream, "line", line)
}

// destination returns the writer a stream is copied into: the capture
// buffer alone, or the buffer plus a line logger when streaming.
func destination(capture io.Writer, stream *lineLogger) io.Writer {
	if stream == nil {
		return capture
	}
	return io.MultiWriter(capture, stream)
}
