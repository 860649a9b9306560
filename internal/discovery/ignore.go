package discovery

import (
	"os"
	"path/filepath"

	"github.com/moby/patternmatcher/ignorefile"
)

// IgnoreFileName holds exclude patterns for a directory argument, in
// .dockerignore syntax.
const IgnoreFileName = ".pinscanignore"

// LoadIgnoreFile reads the patterns of dir's ignore file. Returns nil if no
// ignore file exists. An empty file yields no patterns and no error.
func LoadIgnoreFile(dir string) ([]string, error) {
	f, err := os.Open(filepath.Join(dir, IgnoreFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	return ignorefile.ReadAll(f)
}
