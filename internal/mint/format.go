package mint

import (
	"fmt"

	"github.com/mantono/flakeid/pkg/flake"
)

// Formats lists the text representations accepted by Format.
var Formats = []string{"base64", "hex", "HEX", "bin", "dec"}

// Format renders id in the named representation.
func Format(id flake.ID, format string) (string, error) {
	switch format {
	case "", "base64":
		return id.String(), nil
	case "hex":
		return fmt.Sprintf("%x", id), nil
	case "HEX":
		return fmt.Sprintf("%X", id), nil
	case "bin":
		return fmt.Sprintf("%b", id), nil
	case "dec":
		return fmt.Sprintf("%d", id), nil
	default:
		return "", fmt.Errorf("unknown format %q, want one of %v", format, Formats)
	}
}
