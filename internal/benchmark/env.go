package benchmark

import (
	"fmt"
	"runtime"

	"serbench/internal/telemetry"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"
)

const unknownFact = "unknown"

// CaptureEnvironment reads the host facts stored with a run. Facts the host
// refuses to report are recorded as "unknown".
func CaptureEnvironment() Environment {
	env := Environment{
		RuntimeVersion: runtime.Version(),
		Platform:       runtime.GOOS + "/" + runtime.GOARCH,
		CPU:            unknownFact,
		Memory:         unknownFact,
	}

	if infos, err := cpu.Info(); err != nil {
		telemetry.LogDebug("CPU info unavailable", zap.Error(err))
	} else if len(infos) > 0 && infos[0].ModelName != "" {
		env.CPU = infos[0].ModelName
	}

	if vm, err := mem.VirtualMemory(); err != nil {
		telemetry.LogDebug("Memory info unavailable", zap.Error(err))
	} else {
		env.Memory = FormatMemory(vm.Total)
	}
	return env
}

// FormatMemory renders a byte count in gigabytes.
func FormatMemory(total uint64) string {
	return fmt.Sprintf("%.1f GB", float64(total)/(1<<30))
}
