package errs

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// New returns a new error carrying a stack trace.
func New(msg string) error {
	return errors.New(msg)
}

// Wrap annotates err with a stack trace without changing its message.
func Wrap(err error) error {
	return errors.WithStack(err)
}

// WrapMsg annotates err with msg plus optional key/value pairs:
// WrapMsg(err, "mongo connect failed", "URI", uri).
func WrapMsg(err error, msg string, kv ...any) error {
	if err == nil {
		return nil
	}
	if len(kv) > 0 {
		msg = msg + " " + kvString(kv)
	}
	return errors.WithMessage(errors.WithStack(err), msg)
}

func kvString(kv []any) string {
	pairs := make([]string, 0, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		if i+1 < len(kv) {
			pairs = append(pairs, fmt.Sprintf("%v=%v", kv[i], kv[i+1]))
		} else {
			pairs = append(pairs, fmt.Sprintf("%v", kv[i]))
		}
	}
	return strings.Join(pairs, ", ")
}
