package report

import (
	"fmt"
	"os"
	"path/filepath"

	cverrors "github.com/otherjamesbrown/conversa/pkg/errors"
)

// WriteFile writes data to path through a temporary file in the same
// directory and a rename, so a failed write never leaves a partial
// report behind.
func WriteFile(path string, data []byte) error {
	if err := writeFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %s: %v", cverrors.ErrOutputUnavailable, path, err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".conversa_report_*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
