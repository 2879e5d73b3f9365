package logerr

import (
	"fmt"
	"runtime"
)

type stackError struct {
	err   error
	stack string
}

func (e *stackError) Error() string {
	return fmt.Sprintf("%v\n%s", e.err, e.stack)
}

func (e *stackError) Unwrap() error {
	return e.err
}

// Fatal attaches the calling goroutine's stack to err. The result still
// matches err with errors.Is and errors.As.
func Fatal(err error) error {
	if err == nil {
		return nil
	}

	stack := make([]byte, 1024)

	len := runtime.Stack(stack, false)

	return &stackError{err: err, stack: string(stack[0:len])}
}
