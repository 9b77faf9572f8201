// write.go - Crash-safe file writer.
package generator

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile writes data next to output under a temporary name and renames
// it into place, so a failed export never leaves a truncated image behind.
func WriteFile(output string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(output), filepath.Base(output)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	tmpName := f.Name()
	var success bool
	defer func() {
		if !success {
			os.Remove(tmpName)
		}
	}()

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", output, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", output, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", output, err)
	}
	if err := os.Rename(tmpName, output); err != nil {
		return fmt.Errorf("rename %s: %w", output, err)
	}
	success = true
	return nil
}
