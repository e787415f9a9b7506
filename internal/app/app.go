package app

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/chrissnell/suntracker/internal/controllers/restserver"
	"github.com/chrissnell/suntracker/internal/experiment"
	"github.com/chrissnell/suntracker/internal/managers"
	"github.com/chrissnell/suntracker/internal/plot"
	"github.com/chrissnell/suntracker/internal/reward"
	"github.com/chrissnell/suntracker/internal/sim"
	"github.com/chrissnell/suntracker/internal/types"
	"github.com/chrissnell/suntracker/pkg/config"
	"github.com/chrissnell/suntracker/pkg/panel"
	"github.com/chrissnell/suntracker/pkg/solar"
)

// Options change how the application runs.
type Options struct {
	// Serve keeps the REST server up after the experiment until a signal
	// arrives. The server also needs a rest section in the configuration.
	Serve bool
}

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
	opts           Options
	results        *restserver.Results
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger, opts Options) *App {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &App{
		configProvider: configProvider,
		logger:         logger,
		opts:           opts,
		results:        &restserver.Results{},
	}
}

// Results returns the holder of the latest experiment result.
func (a *App) Results() *restserver.Results {
	return a.results
}

// Run runs the configured experiment, stores and plots its results, and
// serves them when asked to. It blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return err
	}
	site, err := cfg.Location.Resolve()
	if err != nil {
		return err
	}
	model, err := panel.New(cfg.Panel)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Storage engines stop once the distributor is closed; controllers stop
	// on cancel. They wait separately so records are flushed before serving.
	var storageWG, serveWG sync.WaitGroup

	storageManager, err := managers.NewStorageManager(ctx, &storageWG, a.configProvider)
	if err != nil {
		if storageManager != nil {
			// Stop the engines that did start.
			storageManager.Start(ctx, &storageWG)
			storageManager.CloseDistributor()
			storageWG.Wait()
			storageManager.Close()
		}
		return err
	}
	defer storageManager.Close()
	storageManager.Start(ctx, &storageWG)
	stopStorage := func() {
		storageManager.CloseDistributor()
		storageWG.Wait()
	}

	var sink chan<- types.Record
	if len(storageManager.Engines) > 0 {
		sink = storageManager.GetRecordDistributor()
	}

	var cm managers.ControllerManager
	if a.opts.Serve {
		svc := a.service(cfg, site, model, storageManager)
		if cm, err = managers.NewControllerManager(ctx, &serveWG, a.configProvider, svc, a.logger); err != nil {
			stopStorage()
			return err
		}
		if cm.Len() == 0 {
			a.logger.Warn("serving was requested but no rest section is configured")
		}
		if err := cm.StartControllers(); err != nil {
			cancel()
			stopStorage()
			serveWG.Wait()
			return err
		}
	}

	runErr := a.runExperiments(ctx, cfg, site, model, sink)
	a.logger.Info("waiting for storage engines to flush...")
	stopStorage()
	if runErr != nil {
		cancel()
		serveWG.Wait()
		return runErr
	}

	if cm != nil && cm.Len() > 0 {
		a.logger.Info("experiment finished; serving results until interrupted")
		<-ctx.Done()
	}
	cancel()
	serveWG.Wait()
	a.logger.Info("shutdown complete")
	return nil
}

func (a *App) runExperiments(ctx context.Context, cfg *config.ConfigData, site config.Site, model *panel.Model, sink chan<- types.Record) error {
	ecfg := ExperimentConfig(cfg)

	primary, err := a.runOne(ctx, ecfg, NewSetup(cfg, site, model, cfg.Experiment.DualAxis), sink)
	if err != nil {
		return err
	}

	var comparison map[string]experiment.Series
	if cfg.Experiment.CompareAxes {
		other, err := a.runOne(ctx, ecfg, NewSetup(cfg, site, model, !cfg.Experiment.DualAxis), sink)
		if err != nil {
			return err
		}
		single, dual := other, primary
		if !cfg.Experiment.DualAxis {
			single, dual = primary, other
		}
		if comparison, err = experiment.CompareAxes(single, dual); err != nil {
			return err
		}
		for _, name := range cfg.Experiment.Agents {
			mean, ci := comparison[name].Final()
			a.logger.Infof("%s: dual minus single axis reward %.4g ± %.2g", name, mean, ci)
		}
	}
	a.results.Set(primary, comparison)

	if cfg.Plot.Output != "" {
		title := cfg.Plot.Title
		if title == "" {
			title = fmt.Sprintf("%s at %s", cfg.Experiment.Name, site.Name)
		}
		if err := plot.WriteFile(cfg.Plot.Output, primary, plot.Options{Title: title, Comparison: comparison}); err != nil {
			return err
		}
		a.logger.Infof("wrote reward chart to %s", cfg.Plot.Output)
	}
	return nil
}

func (a *App) runOne(ctx context.Context, ecfg experiment.Config, setup experiment.Setup, sink chan<- types.Record) (*experiment.Result, error) {
	runner, err := experiment.NewRunner(ecfg, setup, sink, a.logger)
	if err != nil {
		return nil, err
	}
	res, err := runner.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("experiment %s: %w", runner.RunID(), err)
	}

	a.logger.Infow("experiment finished", "run", res.RunID, "dual_axis", res.DualAxis,
		"elapsed", res.Finished.Sub(res.Started).String())
	return res, nil
}

// service builds what the REST server computes with from the configuration.
func (a *App) service(cfg *config.ConfigData, site config.Site, model *panel.Model, sm *managers.StorageManager) restserver.Service {
	svc := restserver.Service{
		Location:     site.Location,
		Algorithm:    solar.Algorithm(cfg.Experiment.Algorithm),
		Reward:       rewardConfig(cfg, site.Location, model),
		PanelStepDeg: cfg.Experiment.PanelStepDegrees,
		DualAxis:     cfg.Experiment.DualAxis,
		Results:      a.results,
		Health:       sm.Health,
	}
	if src := sm.RecordSource(); src != nil {
		svc.Records = src
	}
	return svc
}

// ExperimentConfig maps the experiment section onto a runner configuration.
func ExperimentConfig(cfg *config.ConfigData) experiment.Config {
	e := cfg.Experiment
	return experiment.Config{
		Name:        e.Name,
		Agents:      e.Agents,
		Instances:   e.Instances,
		Episodes:    e.Episodes,
		Steps:       e.StepsPerEpisode(),
		ChunkSteps:  e.ChunkSteps(),
		Concurrency: e.Concurrency,
		Seed:        e.Seed,
		Cumulative:  e.Cumulative,
		Breakdown:   e.EnergyBreakdown,
	}
}

// NewSetup returns the per-instance configuration for a site. Sites with a
// random location draw one per instance from a generator seeded with the
// experiment seed and the instance number.
func NewSetup(cfg *config.ConfigData, site config.Site, model *panel.Model, dualAxis bool) experiment.Setup {
	e := cfg.Experiment
	return func(instance int) (experiment.InstanceConfig, error) {
		loc := site.Location
		if site.RandomLocation {
			rng := rand.New(rand.NewPCG(e.Seed, uint64(instance)))
			lat := site.LatRange[0] + rng.Float64()*(site.LatRange[1]-site.LatRange[0])
			lon := site.LonRange[0] + rng.Float64()*(site.LonRange[1]-site.LonRange[0])
			var err error
			if loc, err = solar.NewLocation(lat, lon); err != nil {
				return experiment.InstanceConfig{}, err
			}
		}

		return experiment.InstanceConfig{
			Sim: sim.Config{
				Start:           site.Start,
				Location:        loc,
				TimestepMinutes: e.TimestepMinutes,
				PanelStepDeg:    e.PanelStepDegrees,
				DualAxis:        dualAxis,
				Percept:         sim.PerceptMode(e.Percept),
				CloudMode:       e.CloudMode,
				Clouds:          cfg.Clouds,
				PanelBounds:     model.Spec().Bounds,
			},
			Reward: rewardConfig(cfg, loc, model),
		}, nil
	}
}

func rewardConfig(cfg *config.ConfigData, loc solar.Location, model *panel.Model) reward.Config {
	var irr solar.Irradiance
	if cfg.Experiment.StrictIrradiance {
		irr = solar.StrictIrradiance()
	}
	algorithm, err := solar.ParseAlgorithm(cfg.Experiment.Algorithm)
	if err != nil {
		// Validated with the configuration.
		algorithm = solar.AlgorithmNOAA
	}
	return reward.Config{
		Location:        loc,
		Panel:           model,
		Irradiance:      irr,
		ReflectiveIndex: cfg.Reward.ReflectiveIndex,
		Mode:            reward.Mode(cfg.Reward.Mode),
		FlatPenalty:     cfg.Reward.FlatPenalty,
		Units:           reward.Units(cfg.Reward.Units),
		TimestepMinutes: cfg.Experiment.TimestepMinutes,
		Sun:             algorithm.Func(),
	}
}
