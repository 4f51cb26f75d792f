// Package lint holds small file hygiene checks that run alongside the lifecycle checker.
package lint

import (
	"fmt"
	"io"
	"os"

	"mlccheck/internal/logging"
)

// CheckFinalNewline reports whether path is empty or ends with '\n'.
func CheckFinalNewline(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() == 0 {
		logging.LintDebug("%s: empty file", path)
		return true, nil
	}

	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read last byte of %s: %w", path, err)
	}
	return last[0] == '\n', nil
}

// MissingFinalNewline returns the paths that do not end with a newline, in input order.
// It stops at the first unreadable file.
func MissingFinalNewline(paths []string) ([]string, error) {
	var missing []string
	for _, p := range paths {
		ok, err := CheckFinalNewline(p)
		if err != nil {
			return missing, err
		}
		if !ok {
			missing = append(missing, p)
		}
	}
	return missing, nil
}
