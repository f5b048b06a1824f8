// Package record defines the structured log record and renders it into the
// single-line strings written to log files and the console.
package record

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Kind identifies which payload a Record carries.
type Kind uint8

const (
	KindMessage Kind = iota + 1
	KindRequest
	KindResponse
)

func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindRequest:
		return "request"
	case KindResponse:
		return "response"
	default:
		return "invalid"
	}
}

// Level is the severity tag printed in brackets. The zero value is unset.
type Level string

const (
	LevelUnset Level = ""
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
	LevelDebug Level = "DEBUG"
	LevelTrace Level = "TRACE"
	LevelFatal Level = "FATAL"
	LevelOff   Level = "OFF"

	unsetText = "UNSET"
)

// ErrInvalidLevel is returned by ParseLevel for unknown names.
var ErrInvalidLevel = errors.New("invalid log level")

func (l Level) String() string {
	if l == LevelUnset {
		return unsetText
	}
	return string(l)
}

// ParseLevel accepts a level name in any case. "UNSET" and "" map to LevelUnset.
func ParseLevel(s string) (Level, error) {
	switch l := Level(strings.ToUpper(strings.TrimSpace(s))); l {
	case LevelInfo, LevelWarn, LevelError, LevelDebug, LevelTrace, LevelFatal, LevelOff:
		return l, nil
	case LevelUnset, unsetText:
		return LevelUnset, nil
	default:
		return LevelUnset, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
}

// Record is one of Message, Request or Response.
type Record interface {
	Kind() Kind
	record()
}

// Message is a free-text application log line.
type Message struct {
	Time  time.Time
	Level Level
	Text  string
}

// HTTP holds the request fields shared by Request and Response records.
// Only Method, URL and IP are rendered; the rest is captured for callers
// inspecting records.
type HTTP struct {
	Method  string
	URL     string
	IP      string
	Headers http.Header
	Body    []byte
	Query   url.Values
	Params  map[string]string
}

// Request is emitted when a request arrives.
type Request struct {
	Time  time.Time
	Level Level
	HTTP
}

// Response is emitted when the handler chain has produced a response.
// ResponseTime is in milliseconds and may be negative.
type Response struct {
	Time         time.Time
	Level        Level
	HTTP
	Status       int
	ResponseTime int64
}

func (Message) Kind() Kind  { return KindMessage }
func (Request) Kind() Kind  { return KindRequest }
func (Response) Kind() Kind { return KindResponse }

func (Message) record()  {}
func (Request) record()  {}
func (Response) record() {}
