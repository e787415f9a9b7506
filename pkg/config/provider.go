// Package config loads and validates suntracker configuration.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/chrissnell/suntracker/internal/agents"
	"github.com/chrissnell/suntracker/internal/cloud"
	"github.com/chrissnell/suntracker/internal/reward"
	"github.com/chrissnell/suntracker/internal/sim"
	"github.com/chrissnell/suntracker/pkg/panel"
	"github.com/chrissnell/suntracker/pkg/solar"
)

// ErrInvalidConfig is returned when a configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetStorageConfig() (*StorageData, error)
	GetRESTConfig() (*RESTServerData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Experiment ExperimentData  `json:"experiment" yaml:"experiment"`
	Location   LocationData    `json:"location" yaml:"location"`
	Panel      panel.Spec      `json:"panel" yaml:"panel"`
	Reward     RewardData      `json:"reward" yaml:"reward"`
	Clouds     cloud.Config    `json:"clouds" yaml:"clouds"`
	Storage    StorageData     `json:"storage,omitempty" yaml:"storage,omitempty"`
	Plot       PlotData        `json:"plot,omitempty" yaml:"plot,omitempty"`
	REST       *RESTServerData `json:"rest,omitempty" yaml:"rest,omitempty"`
}

// ExperimentData controls what is run and how often.
type ExperimentData struct {
	Name             string   `json:"name" yaml:"name"`
	Agents           []string `json:"agents" yaml:"agents"`
	Instances        int      `json:"instances" yaml:"instances"`
	Episodes         int      `json:"episodes" yaml:"episodes"`
	Days             int      `json:"days" yaml:"days"`
	Steps            int      `json:"steps,omitempty" yaml:"steps,omitempty"` // overrides days when set
	TimestepMinutes  float64  `json:"timestep_minutes" yaml:"timestep-minutes"`
	PanelStepDegrees float64  `json:"panel_step_degrees" yaml:"panel-step-degrees"`
	DualAxis         bool     `json:"dual_axis" yaml:"dual-axis"`
	CompareAxes      bool     `json:"compare_axes" yaml:"compare-axes"`
	Concurrency      int      `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
	Seed             uint64   `json:"seed" yaml:"seed"`
	Cumulative       bool     `json:"cumulative" yaml:"cumulative"`
	EnergyBreakdown  bool     `json:"energy_breakdown" yaml:"energy-breakdown"`
	Algorithm        string   `json:"algorithm,omitempty" yaml:"algorithm,omitempty"`
	StrictIrradiance bool     `json:"strict_irradiance" yaml:"strict-irradiance"`
	Percept          string   `json:"percept,omitempty" yaml:"percept,omitempty"`
	CloudMode        bool     `json:"cloud_mode" yaml:"cloud-mode"`
}

// LocationData names a preset or gives an explicit site and start time.
type LocationData struct {
	Preset    string  `json:"preset,omitempty" yaml:"preset,omitempty"`
	Latitude  float64 `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty" yaml:"longitude,omitempty"`
	Timezone  string  `json:"timezone,omitempty" yaml:"timezone,omitempty"`
	Start     string  `json:"start,omitempty" yaml:"start,omitempty"` // local wall clock, 2006-01-02T15:04
	Year      int     `json:"year,omitempty" yaml:"year,omitempty"`   // preset year
}

// RewardData selects the reward mode and its units.
type RewardData struct {
	Mode            string  `json:"mode" yaml:"mode"`
	Units           string  `json:"units" yaml:"units"`
	FlatPenalty     float64 `json:"flat_penalty" yaml:"flat-penalty"`
	ReflectiveIndex float64 `json:"reflective_index" yaml:"reflective-index"`
}

// StorageData holds the configuration for the result storage backends
type StorageData struct {
	SQLite      *SQLiteData      `json:"sqlite,omitempty" yaml:"sqlite,omitempty"`
	TimescaleDB *TimescaleDBData `json:"timescaledb,omitempty" yaml:"timescaledb,omitempty"`
	CSV         *CSVData         `json:"csv,omitempty" yaml:"csv,omitempty"`
}

type SQLiteData struct {
	Path string `json:"path" yaml:"path"`
}

type TimescaleDBData struct {
	ConnectionString string `json:"connection_string" yaml:"connection-string"`
}

type CSVData struct {
	Path string `json:"path" yaml:"path"`
}

// PlotData enables the HTML reward chart.
type PlotData struct {
	Output string `json:"output,omitempty" yaml:"output,omitempty"`
	Title  string `json:"title,omitempty" yaml:"title,omitempty"`
}

type RESTServerData struct {
	Cert       string `json:"cert,omitempty" yaml:"cert,omitempty"`
	Key        string `json:"key,omitempty" yaml:"key,omitempty"`
	Port       int    `json:"port,omitempty" yaml:"port,omitempty"`
	ListenAddr string `json:"listen_addr,omitempty" yaml:"listen-addr,omitempty"`
}

// Default returns the configuration used for anything a file leaves out.
func Default() ConfigData {
	return ConfigData{
		Experiment: ExperimentData{
			Name:             "suntracker",
			Agents:           []string{agents.NameGrenaTracker, agents.NameFixedPanel},
			Instances:        50,
			Episodes:         1,
			Days:             1,
			TimestepMinutes:  20,
			PanelStepDegrees: 20,
			DualAxis:         true,
			Seed:             1,
			Cumulative:       true,
			Algorithm:        string(solar.AlgorithmNOAA),
			Percept:          string(sim.PerceptAngles),
		},
		Location: LocationData{Preset: "nola"},
		Panel:    panel.DefaultSpec(),
		Reward: RewardData{
			Mode:            string(reward.ModePhysical),
			Units:           string(reward.Watts),
			FlatPenalty:     reward.DefaultFlatPenalty,
			ReflectiveIndex: 0.55,
		},
		Clouds: cloud.DefaultConfig(),
	}
}

// StepsPerEpisode is the explicit step count, or whole days at the timestep.
func (e ExperimentData) StepsPerEpisode() int {
	if e.Steps > 0 {
		return e.Steps
	}
	return int(float64(e.Days) * 24 * 60 / e.TimestepMinutes)
}

// ChunkSteps is the number of steps in one hour of simulated time, at least one.
func (e ExperimentData) ChunkSteps() int {
	n := int(60 / e.TimestepMinutes)
	if n < 1 {
		return 1
	}
	return n
}

// Validate checks every section and returns the first problem found.
func (c *ConfigData) Validate() error {
	e := c.Experiment
	switch {
	case len(e.Agents) == 0:
		return fmt.Errorf("%w: experiment.agents is empty", ErrInvalidConfig)
	case e.Instances < 1 || e.Episodes < 1:
		return fmt.Errorf("%w: experiment instances and episodes must be positive", ErrInvalidConfig)
	case !(e.TimestepMinutes > 0):
		return fmt.Errorf("%w: experiment.timestep-minutes must be positive", ErrInvalidConfig)
	case !(e.PanelStepDegrees > 0):
		return fmt.Errorf("%w: experiment.panel-step-degrees must be positive", ErrInvalidConfig)
	case e.Steps < 0 || e.Days < 0:
		return fmt.Errorf("%w: experiment steps and days must not be negative", ErrInvalidConfig)
	case e.StepsPerEpisode() < 1:
		return fmt.Errorf("%w: an episode must have at least one step", ErrInvalidConfig)
	case e.Concurrency < 0:
		return fmt.Errorf("%w: experiment.concurrency must not be negative", ErrInvalidConfig)
	}
	for _, name := range e.Agents {
		if !agents.Known(name) {
			return fmt.Errorf("%w: unknown agent %q, want one of %v", ErrInvalidConfig, name, agents.Names())
		}
	}
	if _, err := solar.ParseAlgorithm(e.Algorithm); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	percept, err := sim.ParsePerceptMode(e.Percept)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if e.CloudMode && percept != sim.PerceptImage {
		return fmt.Errorf("%w: cloud mode requires the image percept", ErrInvalidConfig)
	}

	if _, err := c.Location.Resolve(); err != nil {
		return err
	}
	if err := c.Panel.Validate(); err != nil {
		return fmt.Errorf("%w: panel: %v", ErrInvalidConfig, err)
	}
	if _, err := reward.ParseMode(c.Reward.Mode); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := reward.ParseUnits(c.Reward.Units); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Reward.FlatPenalty < 0 {
		return fmt.Errorf("%w: reward.flat-penalty must not be negative", ErrInvalidConfig)
	}
	if c.Reward.ReflectiveIndex < 0 || c.Reward.ReflectiveIndex > 1 {
		return fmt.Errorf("%w: reward.reflective-index must be within [0, 1]", ErrInvalidConfig)
	}
	if e.CloudMode {
		if err := c.Clouds.Validate(); err != nil {
			return fmt.Errorf("%w: clouds: %v", ErrInvalidConfig, err)
		}
	}

	if c.Storage.SQLite != nil && c.Storage.SQLite.Path == "" {
		return fmt.Errorf("%w: storage.sqlite.path is empty", ErrInvalidConfig)
	}
	if c.Storage.TimescaleDB != nil && c.Storage.TimescaleDB.ConnectionString == "" {
		return fmt.Errorf("%w: storage.timescaledb.connection-string is empty", ErrInvalidConfig)
	}
	if c.Storage.CSV != nil && c.Storage.CSV.Path == "" {
		return fmt.Errorf("%w: storage.csv.path is empty", ErrInvalidConfig)
	}
	if c.REST != nil && (c.REST.Port < 0 || c.REST.Port > 65535) {
		return fmt.Errorf("%w: rest.port %d out of range", ErrInvalidConfig, c.REST.Port)
	}
	return nil
}

// Site is a resolved location and simulation start.
type Site struct {
	Name     string
	Location solar.Location
	Start    time.Time // UTC

	// RandomLocation asks for a fresh location per instance drawn from
	// LatRange and LonRange.
	RandomLocation bool
	LatRange       [2]float64
	LonRange       [2]float64
}
