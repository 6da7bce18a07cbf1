package kernel

import (
	"runtime"
	"sync"
	"time"
)

// ResourceGovernor gates whether the accelerator-dispatch path is even
// attempted based on host resource thresholds, grounded on the
// teacher's resourcegovernor.go.
type ResourceGovernor struct {
	mu sync.RWMutex

	maxCPUPercent    float64
	maxMemoryPercent float64
	checkInterval    time.Duration
	metrics          *KernelMetrics
	lastCheck        time.Time

	currentCPU    float64
	currentMemory float64
}

// NewResourceGovernor constructs a governor with the given thresholds.
func NewResourceGovernor(maxCPUPercent, maxMemoryPercent float64, checkInterval time.Duration) *ResourceGovernor {
	return &ResourceGovernor{
		maxCPUPercent:    maxCPUPercent,
		maxMemoryPercent: maxMemoryPercent,
		checkInterval:    checkInterval,
		lastCheck:        time.Now(),
	}
}

func (rg *ResourceGovernor) Observe(metrics *KernelMetrics) {
	rg.mu.Lock()
	defer rg.mu.Unlock()
	rg.metrics = metrics
	rg.updateResourceUsage()
}

func (rg *ResourceGovernor) Limit() bool {
	rg.mu.RLock()
	defer rg.mu.RUnlock()
	return rg.currentCPU >= rg.maxCPUPercent || rg.currentMemory >= rg.maxMemoryPercent
}

func (rg *ResourceGovernor) Renormalize() {
	rg.mu.Lock()
	defer rg.mu.Unlock()
	rg.updateResourceUsage()
}

func (rg *ResourceGovernor) updateResourceUsage() {
	if rg.metrics != nil && rg.metrics.ResourceUtilization > 0 {
		rg.currentCPU = rg.metrics.ResourceUtilization
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	totalMemory := float64(memStats.Sys)
	usedMemory := float64(memStats.Alloc)
	if totalMemory > 0 {
		rg.currentMemory = usedMemory / totalMemory
	}
}

// Usage returns the current resource utilization snapshot.
func (rg *ResourceGovernor) Usage() (cpu, memory float64) {
	rg.mu.RLock()
	defer rg.mu.RUnlock()
	return rg.currentCPU, rg.currentMemory
}
