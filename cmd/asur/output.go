package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Output formats
const (
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
)

type encoder interface {
	Encode(v interface{}) error
}

func newEncoder(w io.Writer, format string) (encoder, error) {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc, nil
	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		enc.SetCustomStructTag("json")
		return enc, nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}
