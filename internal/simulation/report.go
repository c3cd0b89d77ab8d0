package simulation

import (
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/taoyao-code/serial-sim/internal/device"
	"github.com/taoyao-code/serial-sim/internal/link"
)

// Report 一次运行结束后的汇总
type Report struct {
	RunID      string                    `yaml:"run_id"`
	Duration   string                    `yaml:"duration"`
	Link       link.Stats                `yaml:"link"`
	Controller device.ControllerSnapshot `yaml:"controller"`
	Peripheral device.PeripheralSnapshot `yaml:"peripheral"`
}

func NewReport(r *Runner, ch *link.Channel, a *device.Controller, b *device.Peripheral) Report {
	return Report{
		RunID:      r.RunID(),
		Duration:   r.Elapsed().Round(time.Millisecond).String(),
		Link:       ch.Stats(),
		Controller: a.Snapshot(),
		Peripheral: b.Snapshot(),
	}
}

// WriteYAML 以 YAML 输出报告
func (rep Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rep); err != nil {
		return err
	}
	return enc.Close()
}
