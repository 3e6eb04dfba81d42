package ui

import (
	"fmt"
	"slices"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const maxLogLines = 1000

// Logger is a minimal interface for sending messages about documents to the
// UI. An empty document ID marks a message not tied to a document.
type Logger interface {
	Infof(documentID, format string, args ...any)
	Warningf(documentID, format string, args ...any)
	Errorf(documentID, format string, args ...any)
}

type LogLevel uint8

const (
	// LogLevelInfo is the default log level.
	LogLevelInfo LogLevel = iota
	// LogLevelWarning is the warning log level.
	LogLevelWarning
	// LogLevelError is the error log level.
	LogLevelError
)

type LogMsg struct {
	Time     time.Time
	Level    LogLevel
	Document string
	Text     string
}

type UILogger struct {
	program *tea.Program

	mutex          sync.Mutex
	unreadPerLevel map[LogLevel]int
	globalUnread   int

	messages []LogMsg
}

func NewUILogger() *UILogger {
	return &UILogger{
		unreadPerLevel: make(map[LogLevel]int),
	}
}

func (l *UILogger) Attach(p *tea.Program) {
	l.program = p
}

func (l *UILogger) send(level LogLevel, documentID, text string) {
	msg := LogMsg{
		Time:     time.Now(),
		Level:    level,
		Document: documentID,
		Text:     text,
	}

	l.mutex.Lock()
	if len(l.messages) >= maxLogLines {
		copy(l.messages, l.messages[1:])
		l.messages[len(l.messages)-1] = msg
	} else {
		l.messages = append(l.messages, msg)
	}
	l.unreadPerLevel[level]++
	l.globalUnread++
	l.mutex.Unlock()

	if l.program != nil {
		l.program.Send(msg)
	}
}

func (l *UILogger) Infof(documentID, format string, args ...any) {
	l.send(LogLevelInfo, documentID, fmt.Sprintf(format, args...))
}

func (l *UILogger) Warningf(documentID, format string, args ...any) {
	l.send(LogLevelWarning, documentID, fmt.Sprintf(format, args...))
}

func (l *UILogger) Errorf(documentID, format string, args ...any) {
	l.send(LogLevelError, documentID, fmt.Sprintf(format, args...))
}

// peekUnread returns the number of unread messages per level and marks them
// as read if [reset] is set.
func (l *UILogger) peekUnread(reset bool) (info, warn, errors int) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	info = l.unreadPerLevel[LogLevelInfo]
	warn = l.unreadPerLevel[LogLevelWarning]
	errors = l.unreadPerLevel[LogLevelError]

	if reset {
		clear(l.unreadPerLevel)
		l.globalUnread = 0
	}
	return info, warn, errors
}

// Messages returns a copy of the buffered messages, oldest first.
func (l *UILogger) Messages() []LogMsg {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return slices.Clone(l.messages)
}
