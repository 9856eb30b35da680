package vestibule_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/vestalabs/habitat/vestibule"
)

func TestWatchdogVitals(t *testing.T) {
	w := vestibule.NewWatchdog()
	w.RegisterAgent("ent-1", 4242, "NovaGarden")

	healthy, reason := w.CheckVitals("ent-1")
	gt.True(t, healthy)
	gt.Equal(t, reason, "")

	w.UpdateMetrics("ent-1", 92.5, 100)
	healthy, reason = w.CheckVitals("ent-1")
	gt.False(t, healthy)
	gt.Equal(t, reason, "CPU Critical (92.5%)")

	w.UpdateMetrics("ent-1", 10, 3000)
	healthy, reason = w.CheckVitals("ent-1")
	gt.False(t, healthy)
	gt.Equal(t, reason, "Memory Overflow (3000MB)")
}

func TestWatchdogUnknownAgentIsHealthy(t *testing.T) {
	w := vestibule.NewWatchdog()
	healthy, reason := w.CheckVitals("ghost")
	gt.True(t, healthy)
	gt.Equal(t, reason, "")
}

func TestWatchdogTerminate(t *testing.T) {
	w := vestibule.NewWatchdog()
	w.RegisterAgent("ent-2", 777, "Runaway")

	gt.True(t, w.TerminateAgent("ent-2", "CPU Critical (99.0%)"))
	vitals, ok := w.Vitals("ent-2")
	gt.True(t, ok)
	gt.Equal(t, vitals.Status, "terminated")

	gt.False(t, w.TerminateAgent("ghost", "whatever"))
}

func TestVestibuleMonitorPassthrough(t *testing.T) {
	v := vestibule.New()
	v.MonitorAgent("ent-3", 901, "Watched")

	v.Watchdog().UpdateMetrics("ent-3", 50, 512)
	healthy, _ := v.CheckAgentHealth("ent-3")
	gt.True(t, healthy)
}
