// Package notify delivers user-facing messages from the core to whatever
// host is presenting it.
package notify

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// Level is the severity of a notification
type Level int

const (
	LevelInfo Level = iota
	LevelError
)

func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "info"
}

// Notifier receives info and error messages meant for the user
type Notifier interface {
	Info(msg string)
	Error(msg string)
}

// Discard drops every message
var Discard Notifier = discard{}

type discard struct{}

func (discard) Info(string)  {}
func (discard) Error(string) {}

// LogNotifier writes notifications to a charmbracelet logger
type LogNotifier struct {
	logger *log.Logger
}

// NewLogNotifier creates a notifier backed by logger
func NewLogNotifier(logger *log.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.WithPrefix("notify")}
}

func (n *LogNotifier) Info(msg string)  { n.logger.Info(msg) }
func (n *LogNotifier) Error(msg string) { n.logger.Error(msg) }

// Message is one recorded notification
type Message struct {
	Level Level
	Text  string
	Time  time.Time
}

func (m Message) String() string {
	return fmt.Sprintf("[%s] %s", m.Level, m.Text)
}

// Recorder keeps notifications in memory, newest last. The UI reads the
// latest one for its status line; tests inspect all of them.
type Recorder struct {
	Messages []Message
	now      func() time.Time
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

func (r *Recorder) add(level Level, msg string) {
	now := time.Now
	if r.now != nil {
		now = r.now
	}
	r.Messages = append(r.Messages, Message{Level: level, Text: msg, Time: now()})
}

func (r *Recorder) Info(msg string)  { r.add(LevelInfo, msg) }
func (r *Recorder) Error(msg string) { r.add(LevelError, msg) }

// Last returns the most recent message
func (r *Recorder) Last() (Message, bool) {
	if len(r.Messages) == 0 {
		return Message{}, false
	}
	return r.Messages[len(r.Messages)-1], true
}

// Errors returns the text of every error message
func (r *Recorder) Errors() []string {
	var out []string
	for _, m := range r.Messages {
		if m.Level == LevelError {
			out = append(out, m.Text)
		}
	}
	return out
}

// Tee fans every message out to all notifiers in order
func Tee(notifiers ...Notifier) Notifier {
	return tee(notifiers)
}

type tee []Notifier

func (t tee) Info(msg string) {
	for _, n := range t {
		n.Info(msg)
	}
}

func (t tee) Error(msg string) {
	for _, n := range t {
		n.Error(msg)
	}
}
