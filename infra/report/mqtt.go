package report

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	corereport "github.com/kilianp07/loadplan/core/report"
	"github.com/kilianp07/loadplan/infra/logger"
)

// MQTTConfig defines the broker connection and publish behaviour.
type MQTTConfig struct {
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	TopicPrefix string `json:"topic_prefix"`
	QoS         byte   `json:"qos"`
	Retain      bool   `json:"retain"`
	UseTLS      bool   `json:"use_tls"`
	ClientCert  string `json:"client_cert"`
	ClientKey   string `json:"client_key"`
	CABundle    string `json:"ca_bundle"`
	MaxRetries  int    `json:"max_retries"`
	BackoffMS   int    `json:"backoff_ms"`
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// MQTTSink publishes each plan as a retained JSON message per method, so
// plant-floor consumers always see the latest plan.
type MQTTSink struct {
	cli        pahoClient
	cfg        MQTTConfig
	log        logger.Logger
	maxRetries int
	backoff    time.Duration
}

// NewMQTTSink connects to the broker.
func NewMQTTSink(cfg MQTTConfig) (*MQTTSink, error) {
	opts, err := newClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt-sink")
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	s := &MQTTSink{
		cli:        c,
		cfg:        cfg,
		log:        log,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
	}
	if s.maxRetries <= 0 {
		s.maxRetries = 3
	}
	if s.backoff <= 0 {
		s.backoff = 100 * time.Millisecond
	}
	if s.cfg.TopicPrefix == "" {
		s.cfg.TopicPrefix = "loadplan"
	}
	return s, nil
}

func newClientOptions(cfg MQTTConfig) (*paho.ClientOptions, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("mqtt broker required")
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "loadplan-" + uuid.NewString()[:8]
	}
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(clientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.loadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	return opts, nil
}

func (c MQTTConfig) loadTLSConfig() (*tls.Config, error) {
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

type periodMessage struct {
	Period  int            `json:"period"`
	Label   string         `json:"label"`
	Loading map[string]int `json:"loading"`
	Output  float64        `json:"output"`
	InBand  bool           `json:"in_band"`
}

type planMessage struct {
	MessageID string          `json:"message_id"`
	RunID     string          `json:"run_id"`
	Method    string          `json:"method"`
	Outcome   string          `json:"outcome"`
	Error     string          `json:"error,omitempty"`
	Timestamp int64           `json:"timestamp"`
	TotalRamp int             `json:"total_ramp"`
	Periods   []periodMessage `json:"periods,omitempty"`
	Net       *float64        `json:"net,omitempty"`
}

// Topic returns the topic a method's plans are published on.
func (s *MQTTSink) Topic(method string) string {
	return fmt.Sprintf("%s/%s/plan", s.cfg.TopicPrefix, method)
}

// Publish sends the plan, retrying with exponential backoff.
func (s *MQTTSink) Publish(ctx context.Context, sum corereport.Summary) error {
	msg := planMessage{
		MessageID: uuid.NewString(),
		RunID:     sum.RunID,
		Method:    sum.Result.Method,
		Outcome:   sum.Outcome,
		Error:     sum.Error,
		Timestamp: sum.Timestamp.UnixMilli(),
		TotalRamp: sum.Result.TotalRamp,
	}
	for _, st := range sum.Result.Periods {
		pm := periodMessage{Period: st.Period, Loading: sum.Result.Plan[st.Period], Output: st.Output, InBand: st.InBand}
		if sum.Scenario != nil {
			pm.Label = sum.Scenario.Periods[st.Period].Label
		}
		msg.Periods = append(msg.Periods, pm)
	}
	if sum.Financials != nil {
		net := sum.Financials.Net
		msg.Net = &net
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	topic := s.Topic(msg.Method)
	var publishErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		token := s.cli.Publish(topic, s.cfg.QoS, s.cfg.Retain, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			s.log.Infof("published plan %s to %s", msg.MessageID, topic)
			return nil
		}
		s.log.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.backoff * time.Duration(1<<attempt)):
		}
	}
	return fmt.Errorf("publish %s: %w", topic, publishErr)
}

// Close gracefully closes the MQTT connection.
func (s *MQTTSink) Close() error {
	if s.cli != nil && s.cli.IsConnected() {
		s.cli.Disconnect(250)
	}
	return nil
}
