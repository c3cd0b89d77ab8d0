package bootstrap

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	cfgpkg "github.com/taoyao-code/serial-sim/internal/config"
	"github.com/taoyao-code/serial-sim/internal/simulation"
)

func testConfig(t *testing.T) *cfgpkg.Config {
	t.Helper()
	chdir(t, t.TempDir())
	cfg, err := cfgpkg.Load("")
	require.NoError(t, err)
	cfg.Simulation.Duration = 300 * time.Millisecond
	cfg.Simulation.Seed = 11
	cfg.Controller.Idle = 20 * time.Millisecond
	return cfg
}

func TestRun_ReportsPrimedPid(t *testing.T) {
	cfg := testConfig(t)

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), cfg, zap.NewNop(), &out))

	var rep simulation.Report
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &rep))
	assert.NotEmpty(t, rep.RunID)
	require.NotNil(t, rep.Controller.LastPidAck)
	assert.Equal(t, float32(1.0), rep.Controller.LastPidAck.Kp)
	assert.Equal(t, float32(0.1), rep.Controller.LastPidAck.Ki)
	assert.Equal(t, float32(0.01), rep.Controller.LastPidAck.Kd)
	assert.Positive(t, rep.Link.AtoB.Sent)
	assert.Zero(t, rep.Controller.Counters.DecodeErrors)
}

func TestRun_WithNoiseKeepsRunning(t *testing.T) {
	cfg := testConfig(t)
	cfg.Simulation.Priming.Enable = false
	cfg.Noise.Probability = 1

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), cfg, zap.NewNop(), &out))

	var rep simulation.Report
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &rep))
	// 每条消息都被破坏：设备只会解码失败，不会应答
	assert.Positive(t, rep.Peripheral.Counters.DecodeErrors)
	assert.Zero(t, rep.Link.BtoA.Sent)
}

func TestRun_CancelledContextStopsEarly(t *testing.T) {
	cfg := testConfig(t)
	cfg.Simulation.Duration = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	require.NoError(t, Run(ctx, cfg, zap.NewNop(), nil))
	assert.Less(t, time.Since(start), 10*time.Second)
}
