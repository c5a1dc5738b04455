package supervisor

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/process"
)

// ProcStats is a point-in-time sample of the child's resource usage,
// surfaced on the admin /status endpoint. Sampling is best effort and
// never fatal to supervision.
type ProcStats struct {
	Pid        int     `json:"pid"`
	CPUPercent float64 `json:"cpu_percent"`
	RSSBytes   uint64  `json:"rss_bytes"`
	NumThreads int32   `json:"num_threads"`
}

// SampleStats reads resource usage for the given pid
func SampleStats(pid int) (*ProcStats, error) {
	if pid <= 0 {
		return nil, fmt.Errorf("no child process to sample")
	}

	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return nil, fmt.Errorf("failed to open pid %d: %w", pid, err)
	}

	stats := &ProcStats{Pid: pid}

	if cpu, err := proc.CPUPercent(); err == nil {
		stats.CPUPercent = cpu
	}
	if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
		stats.RSSBytes = mem.RSS
	}
	if threads, err := proc.NumThreads(); err == nil {
		stats.NumThreads = threads
	}

	return stats, nil
}
