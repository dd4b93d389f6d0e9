// Package report implements the run summary sinks.
package report

import (
	"github.com/kilianp07/loadplan/core/factory"
	corereport "github.com/kilianp07/loadplan/core/report"
)

// init registers built-in sinks.
func init() {
	_ = corereport.RegisterSink("nop", func(map[string]any) (corereport.Sink, error) {
		return corereport.NopSink{}, nil
	})

	_ = corereport.RegisterSink("influx", func(conf map[string]any) (corereport.Sink, error) {
		var c InfluxConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.HealthCheck {
			return NewInfluxSinkWithFallback(c), nil
		}
		return NewInfluxSink(c), nil
	})

	_ = corereport.RegisterSink("mqtt", func(conf map[string]any) (corereport.Sink, error) {
		var c MQTTConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewMQTTSink(c)
	})
}
