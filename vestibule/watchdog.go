package vestibule

import (
	"fmt"
	"sync"
	"time"

	"github.com/vestalabs/habitat/logging"
)

// Runtime safety limits for spawned agent processes.
const (
	MaxCPUPercent = 85.0
	MaxMemoryMB   = 2048.0
)

// AgentVitals is the monitored state of one running agent.
type AgentVitals struct {
	PID       int       `json:"pid"`
	Name      string    `json:"name"`
	SpawnTime time.Time `json:"spawn_time"`
	LastCheck time.Time `json:"last_check"`
	CPUUsage  float64   `json:"cpu_usage"`
	MemoryMB  float64   `json:"memory_mb"`
	Status    string    `json:"status"`
}

// Watchdog tracks spawned agent processes and flags runaways. Metrics
// are pushed in by the monitoring loop; the watchdog itself never
// samples the OS.
type Watchdog struct {
	mu     sync.Mutex
	agents map[string]*AgentVitals
}

func NewWatchdog() *Watchdog {
	return &Watchdog{agents: make(map[string]*AgentVitals)}
}

// RegisterAgent starts tracking a spawned process.
func (w *Watchdog) RegisterAgent(entityID string, pid int, name string) {
	now := time.Now().UTC()
	w.mu.Lock()
	defer w.mu.Unlock()
	w.agents[entityID] = &AgentVitals{
		PID:       pid,
		Name:      name,
		SpawnTime: now,
		LastCheck: now,
		Status:    "healthy",
	}
}

// UpdateMetrics records the latest resource sample for an agent.
// Unknown agents are ignored.
func (w *Watchdog) UpdateMetrics(entityID string, cpuUsage, memoryMB float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if vitals, ok := w.agents[entityID]; ok {
		vitals.CPUUsage = cpuUsage
		vitals.MemoryMB = memoryMB
	}
}

// CheckVitals reports whether an agent is within safety limits. Agents
// never registered count as healthy. A non-empty reason means the agent
// should be terminated.
func (w *Watchdog) CheckVitals(entityID string) (healthy bool, reason string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	vitals, ok := w.agents[entityID]
	if !ok {
		return true, ""
	}
	vitals.LastCheck = time.Now().UTC()

	if vitals.CPUUsage > MaxCPUPercent {
		return false, fmt.Sprintf("CPU Critical (%.1f%%)", vitals.CPUUsage)
	}
	if vitals.MemoryMB > MaxMemoryMB {
		return false, fmt.Sprintf("Memory Overflow (%.0fMB)", vitals.MemoryMB)
	}

	vitals.Status = "healthy"
	return true, ""
}

// TerminateAgent marks a runaway agent as terminated and logs the
// incident. Returns false when the agent was never registered.
func (w *Watchdog) TerminateAgent(entityID, reason string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	vitals, ok := w.agents[entityID]
	if !ok {
		return false
	}

	logging.Default().Warn("terminating runaway agent",
		"entity_id", entityID,
		"name", vitals.Name,
		"pid", vitals.PID,
		"reason", reason,
		"cpu_usage", vitals.CPUUsage,
		"memory_mb", vitals.MemoryMB,
	)

	vitals.Status = "terminated"
	return true
}

// Vitals returns a snapshot of one agent's monitored state.
func (w *Watchdog) Vitals(entityID string) (AgentVitals, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if vitals, ok := w.agents[entityID]; ok {
		return *vitals, true
	}
	return AgentVitals{}, false
}
