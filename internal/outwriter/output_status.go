package outwriter

import (
	"io"

	"github.com/mccforecast/fcst/internal/contract"
	"github.com/mccforecast/fcst/schema"
)

// PrintStatus writes a store status as JSON when requested and otherwise
// through the given text printer.
func PrintStatus[T any](status T, cfg *contract.Config, printText func(io.Writer, T)) error {
	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, status)
		}, "Wrote JSON")
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		printText(w, status)
		return nil
	}, "Wrote status")
}
