// Package benchmark wraps a command to measure its runtime, memory usage and
// the host it ran on.
package benchmark

import (
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

const mb = 1024.0 * 1024.0

// Host identifies the machine a run was measured on.
type Host struct {
	Hostname      string  `json:"hostname"`
	Platform      string  `json:"platform"`
	KernelVersion string  `json:"kernel_version"`
	CPUModel      string  `json:"cpu_model"`
	PhysicalCores int     `json:"physical_cores"`
	TotalMemoryMB float64 `json:"total_memory_mb"`
	MemoryUsedPct float64 `json:"memory_used_pct"`
}

// Report is the resource usage of one wrapped run.
type Report struct {
	Label           string        `json:"label"`
	Started         time.Time     `json:"started"`
	Elapsed         time.Duration `json:"elapsed"`
	AllocDeltaMB    float64       `json:"alloc_delta_mb"`
	TotalAllocMB    float64       `json:"total_alloc_mb"`
	HeapMB          float64       `json:"heap_mb"`
	SysMB           float64       `json:"sys_mb"`
	GCCycles        uint32        `json:"gc_cycles"`
	LogicalCPUs     int           `json:"logical_cpus"`
	GoroutinesStart int           `json:"goroutines_start"`
	GoroutinesEnd   int           `json:"goroutines_end"`
	GoVersion       string        `json:"go_version"`
	OSArch          string        `json:"os_arch"`
	Host            Host          `json:"host"`
}

// Run wraps f to measure its runtime and memory usage. The report is logged at
// info level and returned along with f's error.
func Run(label string, log zerolog.Logger, f func() error) (Report, error) {
	rep := Report{
		Label:       label,
		Started:     time.Now(),
		LogicalCPUs: runtime.NumCPU(),
		GoVersion:   runtime.Version(),
		OSArch:      runtime.GOOS + "/" + runtime.GOARCH,
		Host:        probeHost(log),
	}

	// Prepare for benchmark
	runtime.GC()
	var memStart, memEnd runtime.MemStats
	runtime.ReadMemStats(&memStart)
	rep.GoroutinesStart = runtime.NumGoroutine()
	start := time.Now()

	err := f()

	rep.Elapsed = time.Since(start)
	runtime.ReadMemStats(&memEnd)
	rep.GoroutinesEnd = runtime.NumGoroutine()

	rep.AllocDeltaMB = (float64(memEnd.Alloc) - float64(memStart.Alloc)) / mb
	rep.TotalAllocMB = float64(memEnd.TotalAlloc-memStart.TotalAlloc) / mb
	rep.HeapMB = float64(memEnd.HeapAlloc) / mb
	rep.SysMB = float64(memEnd.Sys) / mb
	rep.GCCycles = memEnd.NumGC - memStart.NumGC

	log.Info().
		Str("label", rep.Label).
		Dur("elapsed", rep.Elapsed).
		Float64("alloc_delta_mb", rep.AllocDeltaMB).
		Float64("total_alloc_mb", rep.TotalAllocMB).
		Float64("heap_mb", rep.HeapMB).
		Uint32("gc_cycles", rep.GCCycles).
		Int("goroutines_end", rep.GoroutinesEnd).
		Str("host", rep.Host.Hostname).
		Err(err).
		Msg("Benchmark completed")

	return rep, err
}

// probeHost collects host details. Probes that fail on this platform are left empty.
func probeHost(log zerolog.Logger) Host {
	var h Host
	if info, err := host.Info(); err == nil {
		h.Hostname = info.Hostname
		h.Platform = info.Platform + " " + info.PlatformVersion
		h.KernelVersion = info.KernelVersion
	} else {
		log.Debug().Err(err).Msg("Host info unavailable")
	}
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		h.CPUModel = infos[0].ModelName
	}
	if n, err := cpu.Counts(false); err == nil {
		h.PhysicalCores = n
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		h.TotalMemoryMB = float64(vm.Total) / mb
		h.MemoryUsedPct = vm.UsedPercent
	} else {
		log.Debug().Err(err).Msg("Memory info unavailable")
	}
	return h
}

// Print writes rep in the plain "[Benchmark]" layout.
func Print(w io.Writer, rep Report) {
	fmt.Fprintf(w, "[Benchmark] Running: %s\n", rep.Label)
	fmt.Fprintln(w, "[Benchmark] Timestamp:", rep.Started.Format(time.RFC1123))
	if rep.Host.Hostname != "" {
		fmt.Fprintln(w, "[Benchmark] Hostname:", rep.Host.Hostname)
	}
	if rep.Host.Platform != "" {
		fmt.Fprintf(w, "[Benchmark] Platform: %s (kernel %s)\n", rep.Host.Platform, rep.Host.KernelVersion)
	}
	if rep.Host.CPUModel != "" {
		fmt.Fprintln(w, "[Benchmark] CPU:", rep.Host.CPUModel)
	}
	fmt.Fprintln(w, "[Benchmark] Go Version:", rep.GoVersion)
	fmt.Fprintln(w, "[Benchmark] OS/Arch:", rep.OSArch)
	fmt.Fprintf(w, "[Benchmark] Time Elapsed: %v\n", rep.Elapsed)
	fmt.Fprintf(w, "[Benchmark] Memory Used: %.2f MB\n", rep.AllocDeltaMB)
	fmt.Fprintf(w, "[Benchmark] Total Allocated: %.2f MB\n", rep.TotalAllocMB)
	fmt.Fprintf(w, "[Benchmark] Heap In Use: %.2f MB\n", rep.HeapMB)
	fmt.Fprintf(w, "[Benchmark] Total System Memory Allocated: %.2f MB\n", rep.SysMB)
	fmt.Fprintf(w, "[Benchmark] GC Cycles: %d\n", rep.GCCycles)
	fmt.Fprintf(w, "[Benchmark] CPU Cores: %d logical, %d physical\n", rep.LogicalCPUs, rep.Host.PhysicalCores)
	if rep.Host.TotalMemoryMB > 0 {
		fmt.Fprintf(w, "[Benchmark] Host Memory: %.0f MB (%.1f%% used)\n", rep.Host.TotalMemoryMB, rep.Host.MemoryUsedPct)
	}
	fmt.Fprintf(w, "[Benchmark] Goroutines: %d -> %d\n", rep.GoroutinesStart, rep.GoroutinesEnd)
	fmt.Fprintln(w, "[Benchmark] ----------------------------------------")
}
