package observability

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger reports daylog's own diagnostics: failures that cannot be returned to
// a caller, watcher activity, and process lifecycle. It is not the log sink
// that application records go to.
var Logger = zerolog.New(os.Stderr).Level(zerolog.InfoLevel).With().Timestamp().Logger()

// Common field names for structured logs.
const (
	FieldAddress = "addr"
	FieldPath    = "path"
	FieldError   = "err"
	FieldKind    = "kind"
	FieldOp      = "op"
	FieldConfig  = "config"
)

// SetOutput redirects diagnostics to w.
func SetOutput(w io.Writer) {
	Logger = Logger.Output(w)
}
