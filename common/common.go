package common

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
)

const dataDirName = "txsign_data"

// DirExists checks if destination dir exists
func DirExists(path string) bool {
	info, ok := stat(path)
	return ok && info.IsDir()
}

// FileExists checks if destination file exists
func FileExists(path string) bool {
	info, ok := stat(path)
	return ok && !info.IsDir()
}

func stat(path string) (os.FileInfo, bool) {
	info, err := os.Stat(path)
	return info, err == nil
}

// CreateDirectory creates a directory and its parents, readable only by the owner.
// An existing directory is left untouched.
func CreateDirectory(path string) error {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(path, 0o700); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("failed to stat directory: %w", err)
	case !info.IsDir():
		return errors.New("path is a file")
	}
	return nil
}

// WriteToFile writes data to a new file which is readable only by the owner.
// Missing parent directories are created. An existing file is never overwritten.
func WriteToFile(data []byte, filePath string) (string, error) {
	if err := CreateDirectory(filepath.Dir(filePath)); err != nil {
		return "", err
	}
	file, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(data); err != nil {
		return "", fmt.Errorf("failed to write data to file: %w", err)
	}
	return filePath, nil
}

// ReadFirstLine returns a copy of the first line of a file without its line ending.
// The buffer holding the rest of the file is zeroed.
func ReadFirstLine(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	line, _, _ := bytes.Cut(data, []byte("\n"))
	out := bytes.Clone(bytes.TrimSuffix(line, []byte("\r")))
	for i := range data {
		data[i] = 0
	}
	return out, nil
}

// DefaultDataDir returns the per-OS default data directory.
func DefaultDataDir() string {
	home := HomeDir()
	if home == "" {
		return ""
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", dataDirName)
	case "windows":
		return filepath.Join(home, "AppData", "Roaming", dataDirName)
	default:
		return filepath.Join(home, "."+dataDirName)
	}
}

// HomeDir returns the home directory.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}
