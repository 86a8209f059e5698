package system

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// BackgroundExtensions are the files FindLatestImage considers.
var BackgroundExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".pdf"}

// FindLatestImage returns the most recently modified background file. A file path
// is searched in its own directory.
func FindLatestImage(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	searchDir := path
	if !fi.IsDir() {
		searchDir = filepath.Dir(path)
	}

	files, err := os.ReadDir(searchDir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !hasExtension(f.Name(), BackgroundExtensions) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(searchDir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no background images found in %s", searchDir)
	}

	return latestFile, nil
}

func hasExtension(name string, extensions []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// WriteFileAtomic streams write into a temporary file next to path and renames it
// into place, so readers never observe a partial file. Concurrent writers to the
// same path: the last rename wins.
func WriteFileAtomic(path string, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// ProcessStats is a snapshot of this process' resource usage.
type ProcessStats struct {
	RSSBytes   uint64
	CPUPercent float64
	NumThreads int32
}

// CurrentProcessStats samples the running process through gopsutil.
func CurrentProcessStats() (ProcessStats, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return ProcessStats{}, err
	}

	var stats ProcessStats
	mem, err := p.MemoryInfo()
	if err != nil {
		return ProcessStats{}, err
	}
	stats.RSSBytes = mem.RSS

	if cpu, err := p.CPUPercent(); err == nil {
		stats.CPUPercent = cpu
	}
	if n, err := p.NumThreads(); err == nil {
		stats.NumThreads = n
	}
	return stats, nil
}

// FormatBytes renders a byte count with a binary unit.
func FormatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
