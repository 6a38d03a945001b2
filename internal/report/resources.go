package report

import (
	"os"
	"runtime"
	"strconv"
	"strings"
	"syscall"
)

// Resources records process cost around a benchmark run.
type Resources struct {
	CPUUserMs    float64 `json:"cpu_user_ms"`
	CPUSysMs     float64 `json:"cpu_sys_ms"`
	RSSBeforeKb  int64   `json:"rss_before_kb"`
	RSSAfterKb   int64   `json:"rss_after_kb"`
	HeapBeforeKb int64   `json:"heap_before_kb"`
	HeapAfterKb  int64   `json:"heap_after_kb"`
	BytesWritten int64   `json:"bytes_written"`
	Frames       int64   `json:"frames,omitempty"`
}

type cpuUsage struct {
	userMs   float64
	systemMs float64
}

type memorySnapshot struct {
	rssKb      int64
	heapUsedKb int64
}

// Meter captures CPU and memory when created; Finish diffs against it.
type Meter struct {
	cpu cpuUsage
	mem memorySnapshot
}

func StartMeter() *Meter {
	runtime.GC()
	return &Meter{cpu: takeCPU(), mem: takeMemory()}
}

func (m *Meter) Finish(bytesWritten, frames int64) *Resources {
	cpu := takeCPU()
	mem := takeMemory()
	return &Resources{
		CPUUserMs:    cpu.userMs - m.cpu.userMs,
		CPUSysMs:     cpu.systemMs - m.cpu.systemMs,
		RSSBeforeKb:  m.mem.rssKb,
		RSSAfterKb:   mem.rssKb,
		HeapBeforeKb: m.mem.heapUsedKb,
		HeapAfterKb:  mem.heapUsedKb,
		BytesWritten: bytesWritten,
		Frames:       frames,
	}
}

func takeCPU() cpuUsage {
	var ru syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &ru); err != nil {
		return cpuUsage{}
	}
	return cpuUsage{
		userMs:   float64(ru.Utime.Sec)*1000 + float64(ru.Utime.Usec)/1000,
		systemMs: float64(ru.Stime.Sec)*1000 + float64(ru.Stime.Usec)/1000,
	}
}

func readRSSKb() int64 {
	data, err := os.ReadFile("/proc/self/status")
	if err != nil {
		return 0
	}
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "VmRSS:") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 2 {
			return 0
		}
		n, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

func takeMemory() memorySnapshot {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return memorySnapshot{
		rssKb:      readRSSKb(),
		heapUsedKb: int64(ms.HeapAlloc / 1024),
	}
}
