package ftpd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// listEntries resolves a LIST/NLST target: a directory lists its sorted
// contents, a plain file lists just itself.
func listEntries(fs afero.Fs, backendPath string) ([]os.FileInfo, error) {
	info, err := fs.Stat(backendPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return []os.FileInfo{info}, nil
	}

	entries, err := afero.ReadDir(fs, backendPath)
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	return entries, nil
}

// formatListLine renders one os.FileInfo as a LIST line in the UNIX
// "ls -l" style real clients parse:
//
//	-rw-r--r-- 1 ftp ftp 11 Jan 05 14:23 test_file.txt
//	drwxr-xr-x 1 ftp ftp 0 Jan 05 14:23 test_dir
//
// Month names are locale-independent English abbreviations and the day is
// zero-padded, regardless of host OS or locale.
func formatListLine(info os.FileInfo) string {
	perm := "-rw-r--r--"
	if info.IsDir() {
		perm = "drwxr-xr-x"
	}

	return fmt.Sprintf(
		"%s 1 ftp ftp %d %s %s",
		perm,
		sizeOf(info),
		info.ModTime().Format("Jan 02 15:04"),
		info.Name(),
	)
}

// sizeOf reports 0 for directories even if the backend's FileInfo.Size()
// returns something else (e.g. 4096 on some filesystems).
func sizeOf(info os.FileInfo) int64 {
	if info.IsDir() {
		return 0
	}

	return info.Size()
}

// formatList renders a full LIST response body: one formatListLine per
// entry, CRLF-terminated.
func formatList(entries []os.FileInfo) string {
	var b strings.Builder

	for _, entry := range entries {
		b.WriteString(formatListLine(entry))
		b.WriteString("\r\n")
	}

	return b.String()
}

// formatNLST renders an NLST response body: bare names only, one per line.
func formatNLST(entries []os.FileInfo) string {
	var b strings.Builder

	for _, entry := range entries {
		b.WriteString(entry.Name())
		b.WriteString("\r\n")
	}

	return b.String()
}
