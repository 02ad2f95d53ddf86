package api

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"
)

// ServerMetrics собирает сведения о процессе стенда
type ServerMetrics struct {
	StartTime time.Time
	proc      *process.Process
}

// ServerInfo - ответ /api/server
type ServerInfo struct {
	Name       string  `json:"name"`
	Status     string  `json:"status"`
	Uptime     string  `json:"uptime"`
	MemoryMB   float64 `json:"memory_mb"`
	RSSMB      float64 `json:"rss_mb"`
	CPUPercent float64 `json:"cpu_percent"`
	Goroutines int     `json:"goroutines"`
	NumGC      uint32  `json:"num_gc"`
	Frames     uint64  `json:"frames"`
	Viewers    int     `json:"viewers"`
}

// NewServerMetrics создает новый экземпляр метрик
func NewServerMetrics() *ServerMetrics {
	sm := &ServerMetrics{StartTime: time.Now()}
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		sm.proc = proc
	}
	return sm
}

// GetUptime возвращает время работы сервера
func (sm *ServerMetrics) GetUptime() string {
	uptime := time.Since(sm.StartTime)

	days := int(uptime.Hours()) / 24
	hours := int(uptime.Hours()) % 24
	minutes := int(uptime.Minutes()) % 60
	seconds := int(uptime.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dд %dч %dм %dс", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dч %dм %dс", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dм %dс", minutes, seconds)
	default:
		return fmt.Sprintf("%dс", seconds)
	}
}

// GetCPUUsage возвращает использование CPU процессом в процентах.
// Если метрика процесса недоступна, возвращает системную.
func (sm *ServerMetrics) GetCPUUsage() (float64, error) {
	if sm.proc != nil {
		if pct, err := sm.proc.CPUPercent(); err == nil {
			return pct, nil
		}
	}
	cpuPercents, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil || len(cpuPercents) == 0 {
		return 0, err
	}
	return cpuPercents[0], nil
}

// GetRSS возвращает резидентную память процесса в MB
func (sm *ServerMetrics) GetRSS() (float64, error) {
	if sm.proc == nil {
		return 0, fmt.Errorf("процесс недоступен")
	}
	mem, err := sm.proc.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return float64(mem.RSS) / 1024 / 1024, nil
}

// Snapshot собирает ServerInfo. Недоступные метрики остаются нулевыми.
func (sm *ServerMetrics) Snapshot() ServerInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	info := ServerInfo{
		Name:       "Voxel Pathfinding Lab",
		Status:     "running",
		Uptime:     sm.GetUptime(),
		MemoryMB:   float64(m.Alloc) / 1024 / 1024,
		Goroutines: runtime.NumGoroutine(),
		NumGC:      m.NumGC,
	}
	info.CPUPercent, _ = sm.GetCPUUsage()
	info.RSSMB, _ = sm.GetRSS()
	return info
}
