// Package experiment runs agents over many independent simulation
// instances in parallel and summarizes their rewards.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chrissnell/suntracker/internal/agents"
	"github.com/chrissnell/suntracker/internal/reward"
	"github.com/chrissnell/suntracker/internal/sim"
	"github.com/chrissnell/suntracker/internal/types"
)

// ErrInvalidConfig is returned for an unusable experiment configuration.
var ErrInvalidConfig = errors.New("invalid experiment configuration")

// InstanceConfig is everything one simulation instance needs.
type InstanceConfig struct {
	Sim    sim.Config
	Reward reward.Config
}

// Setup returns the configuration of instance i. It is called from many
// goroutines at once.
type Setup func(instance int) (InstanceConfig, error)

// Config controls an experiment run.
type Config struct {
	Name        string
	Agents      []string
	Instances   int
	Episodes    int
	Steps       int // per episode
	ChunkSteps  int // steps summed into one reward chunk
	Concurrency int // instances run at once; 0 means one per instance
	Seed        uint64
	Cumulative  bool // summarize cumulative rather than per-chunk reward
	Breakdown   bool // track direct, diffuse, reflective and motion energy
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch {
	case len(c.Agents) == 0:
		return fmt.Errorf("%w: no agents", ErrInvalidConfig)
	case c.Instances < 1, c.Episodes < 1, c.Steps < 1:
		return fmt.Errorf("%w: instances, episodes and steps must be positive", ErrInvalidConfig)
	case c.ChunkSteps < 1:
		return fmt.Errorf("%w: chunk steps must be positive", ErrInvalidConfig)
	case c.Concurrency < 0:
		return fmt.Errorf("%w: concurrency must not be negative", ErrInvalidConfig)
	}
	for _, name := range c.Agents {
		if !agents.Known(name) {
			return fmt.Errorf("%w: unknown agent %q", ErrInvalidConfig, name)
		}
	}
	return nil
}

// Energy is the mean energy per run, in Wh, split by source.
type Energy struct {
	Direct     float64 `json:"direct_wh"`
	Diffuse    float64 `json:"diffuse_wh"`
	Reflective float64 `json:"reflective_wh"`
	Motion     float64 `json:"motion_wh"`
}

// Result is the outcome of a run.
type Result struct {
	RunID    string            `json:"run_id"`
	Name     string            `json:"name"`
	DualAxis bool              `json:"dual_axis"`
	Started  time.Time         `json:"started"`
	Finished time.Time         `json:"finished"`
	Agents   []string          `json:"agents"`
	Series   map[string]Series `json:"series"`
	Energy   map[string]Energy `json:"energy,omitempty"`
}

// Runner executes an experiment.
type Runner struct {
	cfg    Config
	setup  Setup
	sink   chan<- types.Record
	logger *zap.SugaredLogger
	runID  string
}

// NewRunner validates cfg and returns a Runner. Chunk records go to sink
// when it is not nil.
func NewRunner(cfg Config, setup Setup, sink chan<- types.Record, logger *zap.SugaredLogger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if setup == nil {
		return nil, fmt.Errorf("%w: no instance setup", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Runner{
		cfg:    cfg,
		setup:  setup,
		sink:   sink,
		logger: logger,
		runID:  uuid.NewString(),
	}, nil
}

// RunID identifies this run in stored records.
func (r *Runner) RunID() string {
	return r.runID
}

// Run executes every agent on every instance and summarizes the rewards.
// The first error cancels the remaining instances.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	res := &Result{
		RunID:   r.runID,
		Name:    r.cfg.Name,
		Started: time.Now(),
		Agents:  append([]string(nil), r.cfg.Agents...),
		Series:  make(map[string]Series, len(r.cfg.Agents)),
	}
	if r.cfg.Breakdown {
		res.Energy = make(map[string]Energy, len(r.cfg.Agents))
	}

	for _, name := range r.cfg.Agents {
		start := time.Now()
		runs, energy, dual, err := r.runAgent(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("agent %s: %w", name, err)
		}
		res.DualAxis = dual
		res.Series[name] = Summarize(name, runs, r.cfg.Cumulative)
		if r.cfg.Breakdown {
			res.Energy[name] = energy
		}

		mean, ci := res.Series[name].Final()
		r.logger.Infow("agent finished", "run", r.runID, "agent", name,
			"final_mean", mean, "final_ci95", ci, "elapsed", time.Since(start).String())
	}

	res.Finished = time.Now()
	return res, nil
}

// runAgent runs one agent on all instances. Each goroutine writes only its
// own slots of runs and energies.
func (r *Runner) runAgent(ctx context.Context, name string) ([][]float64, Energy, bool, error) {
	runs := make([][]float64, r.cfg.Instances*r.cfg.Episodes)
	energies := make([]Energy, r.cfg.Instances)
	dual := make([]bool, r.cfg.Instances)

	g, ctx := errgroup.WithContext(ctx)
	if r.cfg.Concurrency > 0 {
		g.SetLimit(r.cfg.Concurrency)
	}

	for i := 0; i < r.cfg.Instances; i++ {
		g.Go(func() error {
			ic, err := r.setup(i)
			if err != nil {
				return fmt.Errorf("instance %d setup: %w", i, err)
			}
			dual[i] = ic.Sim.DualAxis
			e, err := r.runInstance(ctx, name, i, ic, runs[i*r.cfg.Episodes:(i+1)*r.cfg.Episodes])
			if err != nil {
				return fmt.Errorf("instance %d: %w", i, err)
			}
			energies[i] = e
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, Energy{}, false, err
	}

	var mean Energy
	n := float64(len(energies))
	for _, e := range energies {
		mean.Direct += e.Direct / n
		mean.Diffuse += e.Diffuse / n
		mean.Reflective += e.Reflective / n
		mean.Motion += e.Motion / n
	}
	return runs, mean, dual[0], nil
}

// recorder keeps the breakdown of the last scored transition.
type recorder struct {
	assembler *reward.Assembler
	last      reward.Breakdown
}

func (rec *recorder) Reward(tr sim.Transition) (float64, error) {
	b, err := rec.assembler.Breakdown(tr)
	if err != nil {
		return 0, err
	}
	rec.last = b
	return b.Reward, nil
}

// runInstance plays every episode of one instance, filling out with one
// slice of chunk rewards per episode. It returns the instance's energy per
// episode.
func (r *Runner) runInstance(ctx context.Context, name string, instance int, ic InstanceConfig, out [][]float64) (Energy, error) {
	assembler, err := reward.NewAssembler(ic.Reward)
	if err != nil {
		return Energy{}, err
	}
	rec := &recorder{assembler: assembler}

	ic.Sim.Seed = r.cfg.Seed + uint64(instance)
	env, err := sim.NewEnvironment(ic.Sim, rec, ic.Reward.Sun)
	if err != nil {
		return Energy{}, err
	}
	agent, err := agents.New(name, env, ic.Reward.Sun, r.cfg.Seed+uint64(instance))
	if err != nil {
		return Energy{}, err
	}

	model := ic.Reward.Panel
	stepHours := env.Clock().StepMinutes() / 60
	var total Energy

	for ep := range out {
		env.Reset()
		agent.Reset()

		chunks := make([]float64, 0, (r.cfg.Steps+r.cfg.ChunkSteps-1)/r.cfg.ChunkSteps)
		rec0 := types.Record{
			RunID:      r.runID,
			Experiment: r.cfg.Name,
			Agent:      name,
			DualAxis:   ic.Sim.DualAxis,
			Latitude:   ic.Sim.Location.Latitude,
			Longitude:  ic.Sim.Location.Longitude,
			Instance:   instance,
			Episode:    ep,
		}
		cur := rec0

		for step := 0; step < r.cfg.Steps; step++ {
			if step%r.cfg.ChunkSteps == 0 {
				if err := ctx.Err(); err != nil {
					return Energy{}, err
				}
				cur = rec0
				cur.Chunk = len(chunks)
				cur.Time = env.Clock().Now
			}

			gained, _, err := env.Step(agent.Act(env.State()))
			if err != nil {
				return Energy{}, err
			}
			cur.Reward += gained

			if r.cfg.Breakdown {
				b := rec.last
				cur.DirectWh += model.ElectricalPower(b.Irradiance.Direct*b.Tilt.Direct) * stepHours
				cur.DiffuseWh += model.ElectricalPower(b.Irradiance.Diffuse*b.Tilt.Diffuse) * stepHours
				cur.ReflectWh += model.ElectricalPower(b.Irradiance.Reflective*b.Tilt.Reflective) * stepHours
				cur.MotionWh += b.MotionCost * stepHours
			}

			if (step+1)%r.cfg.ChunkSteps == 0 || step == r.cfg.Steps-1 {
				chunks = append(chunks, cur.Reward)
				total.Direct += cur.DirectWh
				total.Diffuse += cur.DiffuseWh
				total.Reflective += cur.ReflectWh
				total.Motion += cur.MotionWh
				if err := r.emit(ctx, cur); err != nil {
					return Energy{}, err
				}
			}
		}
		out[ep] = chunks
	}

	n := float64(len(out))
	total.Direct /= n
	total.Diffuse /= n
	total.Reflective /= n
	total.Motion /= n
	return total, nil
}

func (r *Runner) emit(ctx context.Context, rec types.Record) error {
	if r.sink == nil {
		return nil
	}
	select {
	case r.sink <- rec:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CompareAxes returns, per agent present in both results, the dual-axis
// advantage over the single-axis run.
func CompareAxes(single, dual *Result) (map[string]Series, error) {
	out := make(map[string]Series)
	for _, name := range dual.Agents {
		s, ok := single.Series[name]
		if !ok {
			continue
		}
		d, err := AxisDiff(s, dual.Series[name])
		if err != nil {
			return nil, err
		}
		out[name] = d
	}
	return out, nil
}
