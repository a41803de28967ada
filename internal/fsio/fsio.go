package fsio

import (
	"fmt"
	"os"
)

// PrepareOutput fails fast on output path problems before any long
// computation starts. An existing file is an error unless overwrite is set,
// and the location must accept a probe write. On success the path does not
// exist and is writable.
func PrepareOutput(path string, overwrite bool) error {
	if _, err := os.Stat(path); err == nil {
		if !overwrite {
			return fmt.Errorf("output file %s exists; use --overwrite to replace it", path)
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove existing output file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat output file %s: %w", path, err)
	}

	probe, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output location %s is not writable: %w", path, err)
	}
	if err := probe.Close(); err != nil {
		return fmt.Errorf("close output probe: %w", err)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove output probe: %w", err)
	}
	return nil
}
