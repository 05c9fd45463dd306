package benchmark

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCaptureEnvironment(t *testing.T) {
	env := CaptureEnvironment()
	assert.Equal(t, runtime.Version(), env.RuntimeVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, env.Platform)
	assert.NotEmpty(t, env.CPU)
	assert.NotEmpty(t, env.Memory)
}

func TestFormatMemory(t *testing.T) {
	assert.Equal(t, "16.0 GB", FormatMemory(16<<30))
	assert.Equal(t, "0.5 GB", FormatMemory(512<<20))
}
