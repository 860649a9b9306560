package shell

import (
	"path"
	"slices"
	"strings"
)

// ArchiveExtensions lists archive file extensions.
// Sorted longest-first so suffix matching is greedy
// (e.g. ".tar.gz" is checked before ".gz").
var ArchiveExtensions = []string{
	".tar.lzma",
	".tar.bz2",
	".tar.gz",
	".tar.xz",
	".tar.zst",
	".tar.lz",
	".tar.Z",
	".lzma",
	".tbz2",
	".tzst",
	".tar",
	".zip",
	".tbz",
	".tb2",
	".tgz",
	".tlz",
	".tpz",
	".txz",
	".bz2",
	".tZ",
	".gz",
	".lz",
	".xz",
	".Z",
}

// DownloadCommands lists commands that download remote files.
var DownloadCommands = []string{"curl", "wget"}

// IsDownloadCommand reports whether word names one of the given download
// commands. With no commands, DownloadCommands is used.
func IsDownloadCommand(word string, commands ...string) bool {
	if len(commands) == 0 {
		commands = DownloadCommands
	}
	return slices.Contains(commands, word)
}

// IsArchiveFilename checks if a filename has a recognized archive extension.
// Extensions are case-sensitive (e.g. .Z and .tZ use uppercase Z for Unix
// compress format).
func IsArchiveFilename(name string) bool {
	for _, ext := range ArchiveExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// IsArchiveURL checks if a URL string points to an archive file.
// Strips query/fragment before checking extension. Requires http/https/ftp scheme.
func IsArchiveURL(s string) bool {
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") &&
		!strings.HasPrefix(s, "ftp://") {
		return false
	}
	u := s
	if i := strings.IndexByte(u, '?'); i >= 0 {
		u = u[:i]
	}
	if i := strings.IndexByte(u, '#'); i >= 0 {
		u = u[:i]
	}
	return IsArchiveFilename(path.Base(u))
}
