// Package metrics captures a small host snapshot for health reporting.
package metrics

import (
	"fmt"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Snapshot represents host and process state at one moment
type Snapshot struct {
	Timestamp     time.Time     `json:"timestamp"`
	HostUptime    time.Duration `json:"host_uptime"`
	MemoryPercent float64       `json:"memory_percent"`
	ProcessRSS    uint64        `json:"process_rss"`
	DiskPath      string        `json:"disk_path"`
	DiskFree      uint64        `json:"disk_free"`
	DiskPercent   float64       `json:"disk_percent"`
}

// Gather collects current metrics. Disk usage is measured for the
// filesystem holding dir, which should be where entries are written.
func Gather(dir string) (*Snapshot, error) {
	memInfo, err := mem.VirtualMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to read memory stats: %w", err)
	}

	uptimeSeconds, err := host.Uptime()
	if err != nil {
		return nil, fmt.Errorf("failed to read uptime: %w", err)
	}

	diskInfo, err := disk.Usage(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read disk usage for %s: %w", dir, err)
	}

	// rss is best effort; some platforms restrict process introspection
	var rss uint64
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if info, err := p.MemoryInfo(); err == nil {
			rss = info.RSS
		}
	}

	return &Snapshot{
		Timestamp:     time.Now(),
		HostUptime:    time.Duration(uptimeSeconds) * time.Second,
		MemoryPercent: memInfo.UsedPercent,
		ProcessRSS:    rss,
		DiskPath:      dir,
		DiskFree:      diskInfo.Free,
		DiskPercent:   diskInfo.UsedPercent,
	}, nil
}

// LowDisk reports whether the data filesystem is nearly full
func (s *Snapshot) LowDisk() bool {
	return s.DiskPercent >= 95
}

// Bytes formats n using binary units
func Bytes(n uint64) string {
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
