// util/json.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// JSONError is a JSON decoding error along with where in the input it
// happened.
type JSONError struct {
	Line, Char int
	Err        error
}

func (e *JSONError) Error() string {
	return fmt.Sprintf("line %d, character %d: %v", e.Line, e.Char, e.Err)
}

func (e *JSONError) Unwrap() error { return e.Err }

func UnmarshalJSON[T any](r io.Reader, out *T) error {
	// The contents are needed as bytes to locate errors.
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return UnmarshalJSONBytes(b, out)
}

// UnmarshalJSONBytes unmarshals b into out; syntax and type errors are
// returned as a *JSONError giving the line and character.
func UnmarshalJSONBytes[T any](b []byte, out *T) error {
	err := json.Unmarshal(b, out)
	if err == nil {
		return nil
	}

	at := func(offset int64) *JSONError {
		je := &JSONError{Line: 1, Char: 1, Err: err}
		for i := 0; i < int(offset) && i < len(b); i++ {
			if b[i] == '\n' {
				je.Line++
				je.Char = 1
			} else {
				je.Char++
			}
		}
		return je
	}

	var serr *json.SyntaxError
	var terr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &serr):
		return at(serr.Offset)
	case errors.As(err, &terr):
		je := at(terr.Offset)
		je.Err = fmt.Errorf("%s value for %q invalid for type %s", terr.Value, terr.Field, terr.Type)
		return je
	default:
		return err
	}
}
