package report

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	corereport "github.com/kilianp07/loadplan/core/report"
	"github.com/kilianp07/loadplan/infra/logger"
)

// InfluxConfig locates the bucket receiving plan points.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
	// HealthCheck pings the server first and falls back to a NopSink when
	// it is unhealthy.
	HealthCheck bool `json:"health_check"`
}

// InfluxSink writes one point per planned period and one per run.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) corereport.Sink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return corereport.NopSink{}
	}
	return sink
}

// Publish writes the run and its periods in a single request.
func (s *InfluxSink) Publish(ctx context.Context, sum corereport.Summary) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	points := periodPoints(sum)
	points = append(points, runPoint(sum))
	if err := s.writeAPI.WritePoint(ctx, points...); err != nil {
		s.log.Errorf("influx write for run %s failed: %v", sum.RunID, err)
		return err
	}
	return nil
}

func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func runPoint(sum corereport.Summary) *write.Point {
	res := sum.Result
	p := write.NewPointWithMeasurement("loadplan_run").
		AddTag("run_id", sum.RunID).
		AddTag("method", res.Method).
		AddTag("outcome", sum.Outcome).
		AddField("total_ramp", res.TotalRamp).
		AddField("out_of_band", len(res.OutOfBand)).
		AddField("evaluations", res.Evaluations).
		AddField("iterations", res.Iterations).
		AddField("duration_ms", round3(float64(res.Duration)/float64(time.Millisecond)))
	if f := sum.Financials; f != nil {
		p = p.AddField("revenue", round3(f.Revenue)).
			AddField("capex", round3(f.Capex)).
			AddField("net", round3(f.Net))
	}
	return p.SetTime(sum.Timestamp)
}

// periodPoints are stamped one nanosecond apart so they stay distinct even
// when labels repeat.
func periodPoints(sum corereport.Summary) []*write.Point {
	res := sum.Result
	if sum.Scenario == nil {
		return nil
	}
	points := make([]*write.Point, 0, len(res.Periods))
	for _, st := range res.Periods {
		per := sum.Scenario.Periods[st.Period]
		p := write.NewPointWithMeasurement("loadplan_period").
			AddTag("run_id", sum.RunID).
			AddTag("method", res.Method).
			AddTag("period", strconv.Itoa(st.Period)).
			AddTag("label", per.Label).
			AddField("output", round3(st.Output)).
			AddField("demand", per.Demand).
			AddField("deficit", round3(st.Deficit)).
			AddField("in_band", st.InBand)
		for _, n := range sum.Scenario.Nodes {
			p = p.AddField("load_"+n.ID, res.Plan[st.Period][n.ID])
		}
		if f := sum.Financials; f != nil && st.Period < len(f.Periods) {
			fp := f.Periods[st.Period]
			p = p.AddField("revenue", round3(fp.Revenue)).AddField("capex", round3(fp.Capex))
		}
		points = append(points, p.SetTime(sum.Timestamp.Add(time.Duration(st.Period))))
	}
	return points
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
