// Package scribeerr classifies the failures of a gitscribe run.
//
// Every fatal error carries exactly one kind marker. Callers check the kind
// with errors.Is and print user hints with errors.FlattenHints.
package scribeerr

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrConfiguration marks a missing or invalid credential or setting.
	ErrConfiguration = errors.New("configuration error")
	// ErrSubprocess marks a failed git invocation.
	ErrSubprocess = errors.New("subprocess error")
	// ErrGeneration marks a failed call to the model provider.
	ErrGeneration = errors.New("generation error")
	// ErrIO marks a file read or write failure.
	ErrIO = errors.New("io error")
)

// Configuration marks err as a configuration error with an optional hint.
func Configuration(err error, hint string) error {
	return mark(err, ErrConfiguration, hint)
}

// Subprocess marks err as a subprocess error.
func Subprocess(err error) error {
	return mark(err, ErrSubprocess, "")
}

// Generation marks err as a generation error.
func Generation(err error) error {
	return mark(err, ErrGeneration, "")
}

// IO marks err as an IO error.
func IO(err error, hint string) error {
	return mark(err, ErrIO, hint)
}

func mark(err, kind error, hint string) error {
	if err == nil {
		return nil
	}
	err = errors.Mark(err, kind)
	if hint != "" {
		err = errors.WithHint(err, hint)
	}
	return err
}

// Kind returns the kind marker carried by err, or nil.
func Kind(err error) error {
	for _, k := range []error{ErrConfiguration, ErrSubprocess, ErrGeneration, ErrIO} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
