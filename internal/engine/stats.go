package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ivlev/alertkit/internal/system"
)

func (p *Project) report(res *Result) {
	stats, err := system.CurrentProcessStats()
	if err != nil {
		p.logger().Debug("process stats unavailable", "error", err)
	}

	t := res.Timings
	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Total Time: %.2fs\n"+
			"Animation: %.2fs\n"+
			"Video: %.2fs\n"+
			"Static: %.2fs\n"+
			"Outputs: %d\n"+
			"Memory (RSS): %s | CPU: %.1f%% | Threads: %d\n"+
			"----------------------------\n",
		p.Config.BuildVersion, t.Total.Seconds(), t.Animation.Seconds(), t.Video.Seconds(), t.Static.Seconds(),
		len(res.Outputs), system.FormatBytes(stats.RSSBytes), stats.CPUPercent, stats.NumThreads,
	)
	fmt.Fprint(p.out(), report)

	logEntry := fmt.Sprintf("[%s] Build: %s | Background: %s | Outputs: %d | Total: %.2fs | Animation: %.2fs | Static: %.2fs | RSS: %s\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.Config.BuildVersion,
		filepath.Base(p.Config.Background),
		len(res.Outputs),
		t.Total.Seconds(),
		t.Animation.Seconds(),
		t.Static.Seconds(),
		system.FormatBytes(stats.RSSBytes),
	)

	path := p.StatsLog
	if path == "" {
		path = DefaultStatsLog
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(p.out(), "[!] Could not write %s: %v\n", path, err)
		return
	}
	defer f.Close()
	if _, err := f.WriteString(logEntry); err != nil {
		fmt.Fprintf(p.out(), "[!] Could not write %s: %v\n", path, err)
	}
}
