package cluster

import (
	"bytes"
	"math"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/elastic-sim/sim"
	"github.com/inference-sim/elastic-sim/sim/price"
	"github.com/inference-sim/elastic-sim/sim/trace"
	"github.com/inference-sim/elastic-sim/sim/workload"
)

// Config describes one simulation run. Time is measured in abstract units
// (the source model uses hours); rates are per unit.
type Config struct {
	Seed    int64   `yaml:"seed"`
	Horizon float64 `yaml:"horizon"`

	// Workload
	Lambda       float64 `yaml:"lambda"`        // session arrival rate; 0 means no arrivals
	Mu           float64 `yaml:"mu"`            // session service rate
	ServiceModel string  `yaml:"service_model"` // "exponential" (default) or "fixed"

	// Admission
	AdmissionPolicy string  `yaml:"admission_policy"` // "fair-share" (default) or "always-admit"
	QMin            float64 `yaml:"qmin"`
	LoadCeiling     float64 `yaml:"load_ceiling"` // max projected users per server

	// Servers and autoscaling
	InitialServers     int     `yaml:"initial_servers"`
	MinServers         int     `yaml:"min_servers"`
	MaxServers         int     `yaml:"max_servers"`
	ResourcesPerServer int     `yaml:"resources_per_server"`
	ScaleUpThreshold   int     `yaml:"scale_up_threshold"`   // users per server at or above which to grow
	ScaleDownThreshold int     `yaml:"scale_down_threshold"` // users per server below which to shrink
	AutoscaleTick      float64 `yaml:"autoscale_tick"`       // fallback wakeup period

	// Energy
	EnergyPerUser float64      `yaml:"energy_per_user"`
	Price         price.Config `yaml:"price"`

	// Reporting
	MOSWindow       float64 `yaml:"mos_window"`       // windowed MOS period; 0 disables
	MonitorInterval float64 `yaml:"monitor_interval"` // periodic series sampling; 0 disables
	TraceLevel      string  `yaml:"trace_level"`      // "none" (default) or "decisions"
}

// DefaultConfig returns the reference parameters of the elastic data center
// model: 3 of at most 10 servers with 5 resource units each, 60 arrivals and
// a mean holding time of 1 per unit, and the cyclic price schedule.
func DefaultConfig() Config {
	return Config{
		Seed:               42,
		Horizon:            10,
		Lambda:             60,
		Mu:                 1,
		ServiceModel:       workload.ServiceExponential,
		AdmissionPolicy:    AdmissionFairShare,
		QMin:               0.5,
		LoadCeiling:        4.5,
		InitialServers:     3,
		MinServers:         2,
		MaxServers:         10,
		ResourcesPerServer: 5,
		ScaleUpThreshold:   3,
		ScaleDownThreshold: 3,
		AutoscaleTick:      1,
		EnergyPerUser:      200,
		Price:              price.DefaultConfig(),
		MOSWindow:          60,
		TraceLevel:         string(trace.TraceLevelNone),
	}
}

// LoadConfig reads a YAML file over DefaultConfig. Unknown keys are errors.
// The result is not validated.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config %s", path)
	}
	if err := DecodeConfig(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %s", path)
	}
	return cfg, nil
}

// DecodeConfig strictly decodes YAML into cfg, keeping fields the document
// does not mention.
func DecodeConfig(data []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return err
	}
	return nil
}

// YAML renders c as a YAML document that LoadConfig accepts.
func (c Config) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Validate checks every parameter and returns all problems as a single
// *sim.ConfigError, or nil.
func (c Config) Validate() error {
	var errs *multierror.Error
	add := func(format string, args ...any) {
		errs = multierror.Append(errs, errors.Errorf(format, args...))
	}

	for _, f := range []struct {
		name  string
		value float64
	}{
		{"horizon", c.Horizon},
		{"lambda", c.Lambda},
		{"mu", c.Mu},
		{"qmin", c.QMin},
		{"load_ceiling", c.LoadCeiling},
		{"autoscale_tick", c.AutoscaleTick},
		{"energy_per_user", c.EnergyPerUser},
		{"mos_window", c.MOSWindow},
		{"monitor_interval", c.MonitorInterval},
	} {
		// NaN fails every ordered comparison below, so it is caught here
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			add("%s must be finite, got %v", f.name, f.value)
		}
	}
	if c.Horizon <= 0 {
		add("horizon must be > 0, got %v", c.Horizon)
	}
	if c.Lambda < 0 {
		add("lambda must be >= 0, got %v", c.Lambda)
	}
	if c.Mu <= 0 {
		add("mu must be > 0, got %v", c.Mu)
	}
	if !workload.IsValidServiceModel(c.ServiceModel) {
		add("unknown service_model %q; valid: %v", c.ServiceModel, workload.ServiceModelNames())
	}
	if !IsValidAdmissionPolicy(c.AdmissionPolicy) {
		add("unknown admission_policy %q; valid: %v", c.AdmissionPolicy, AdmissionPolicyNames())
	}
	if c.QMin < 0 || c.QMin >= 1 {
		add("qmin must be in [0, 1), got %v", c.QMin)
	}
	if c.LoadCeiling <= 0 {
		add("load_ceiling must be > 0, got %v", c.LoadCeiling)
	}
	if c.MinServers < 1 {
		add("min_servers must be >= 1, got %d", c.MinServers)
	}
	if c.MinServers > c.MaxServers {
		add("min_servers (%d) must not exceed max_servers (%d)", c.MinServers, c.MaxServers)
	}
	if c.InitialServers < c.MinServers || c.InitialServers > c.MaxServers {
		add("initial_servers (%d) must be within [%d, %d]", c.InitialServers, c.MinServers, c.MaxServers)
	}
	if c.ResourcesPerServer < 1 {
		add("resources_per_server must be >= 1, got %d", c.ResourcesPerServer)
	}
	if c.ScaleUpThreshold < 0 || c.ScaleDownThreshold < 0 {
		add("scale thresholds must be >= 0, got up=%d down=%d", c.ScaleUpThreshold, c.ScaleDownThreshold)
	}
	if c.AutoscaleTick <= 0 {
		add("autoscale_tick must be > 0, got %v", c.AutoscaleTick)
	}
	if c.EnergyPerUser < 0 {
		add("energy_per_user must be >= 0, got %v", c.EnergyPerUser)
	}
	if c.MOSWindow < 0 {
		add("mos_window must be >= 0, got %v", c.MOSWindow)
	}
	if c.MonitorInterval < 0 {
		add("monitor_interval must be >= 0, got %v", c.MonitorInterval)
	}
	if !trace.IsValidTraceLevel(c.TraceLevel) {
		add("unknown trace_level %q", c.TraceLevel)
	}
	if err := c.Price.Validate(); err != nil {
		errs = multierror.Append(errs, err)
	}

	if err := errs.ErrorOrNil(); err != nil {
		return &sim.ConfigError{Err: err}
	}
	return nil
}
