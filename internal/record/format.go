package record

import (
	"errors"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"daylog/internal/clock"
)

// Target selects the rendering variant.
type Target uint8

const (
	File Target = iota
	Console
)

const sep = " - "

// ErrInvalidKind is the panic value for records outside the closed set.
var ErrInvalidKind = errors.New("invalid log kind")

var (
	green  = forced(color.FgGreen)
	blue   = forced(color.FgBlue)
	yellow = forced(color.FgYellow)
	red    = forced(color.FgRed)
	white  = forced(color.FgWhite)
)

// forced returns a palette entry that emits escape codes regardless of
// whether stdout is a terminal, keeping console rendering a pure function of
// the method.
func forced(attr color.Attribute) *color.Color {
	c := color.New(attr)
	c.EnableColor()
	return c
}

// Renderer renders records. Colors controls whether the Console target wraps
// the HTTP method in escape codes; the File target never does.
type Renderer struct {
	Colors bool
}

// Render renders r with a coloring Renderer.
func Render(r Record, target Target) string {
	return Renderer{Colors: true}.Render(r, target)
}

// Render returns the single-line form of r, without a trailing newline.
// It panics with ErrInvalidKind when r is nil or not one of the record types.
func (rd Renderer) Render(r Record, target Target) string {
	var b strings.Builder
	switch v := r.(type) {
	case Message:
		writeHead(&b, v.Time.Format(clock.Layout), v.Level)
		b.WriteString(sep)
		b.WriteString(v.Text)
	case *Message:
		if v == nil {
			panic(ErrInvalidKind)
		}
		return rd.Render(*v, target)
	case Request:
		writeHead(&b, v.Time.Format(clock.Layout), v.Level)
		rd.writeHTTP(&b, v.HTTP, target)
	case *Request:
		if v == nil {
			panic(ErrInvalidKind)
		}
		return rd.Render(*v, target)
	case Response:
		writeHead(&b, v.Time.Format(clock.Layout), v.Level)
		rd.writeHTTP(&b, v.HTTP, target)
		b.WriteString(sep)
		b.WriteString(strconv.Itoa(v.Status))
		b.WriteString(sep)
		b.WriteString(strconv.FormatInt(v.ResponseTime, 10))
		b.WriteString("ms")
	case *Response:
		if v == nil {
			panic(ErrInvalidKind)
		}
		return rd.Render(*v, target)
	default:
		panic(ErrInvalidKind)
	}
	return b.String()
}

func writeHead(b *strings.Builder, ts string, level Level) {
	b.WriteString(ts)
	b.WriteString(sep)
	b.WriteByte('[')
	b.WriteString(level.String())
	b.WriteByte(']')
}

func (rd Renderer) writeHTTP(b *strings.Builder, h HTTP, target Target) {
	b.WriteString(sep)
	b.WriteByte('[')
	if target == Console && rd.Colors {
		b.WriteString(MethodColor(h.Method).Sprint(h.Method))
	} else {
		b.WriteString(h.Method)
	}
	b.WriteString("] ")
	b.WriteString(h.URL)
	b.WriteString(sep)
	b.WriteString(h.IP)
}

// MethodColor returns the console color for an HTTP method.
func MethodColor(method string) *color.Color {
	switch method {
	case "GET":
		return green
	case "POST":
		return blue
	case "PUT":
		return yellow
	case "DELETE":
		return red
	default:
		return white
	}
}
