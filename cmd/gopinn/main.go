// Package main provides the gopinn CLI.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/gopinn/gopinn/autodiff"
	"github.com/gopinn/gopinn/backend/cpu"
	"github.com/gopinn/gopinn/checkpoint"
	"github.com/gopinn/gopinn/curriculum"
	"github.com/gopinn/gopinn/data"
	"github.com/gopinn/gopinn/nn"
	"github.com/gopinn/gopinn/optim"
	"github.com/gopinn/gopinn/pinn"
	"github.com/gopinn/gopinn/tensor"
)

const version = "v0.1.0-dev"

type ad = *autodiff.Backend[*cpu.Backend]

type ts = tensor.Tensor[float32, ad]

var (
	configFile    string
	scheduleFile  string
	layersSpec    string
	optimizerName string
	lr            float64
	iters         int
	batchSize     int
	nt            int
	tmin          float64
	tmax          float64
	alpha         float64
	u0            float64
	seed          int64
	checkpointOut string
	verbose       bool
	noPlot        bool

	logger *zap.Logger
)

// trainConfig mirrors the train command flags for YAML files. Flags set
// on the command line win over file values.
type trainConfig struct {
	Layers    []int   `yaml:"layers"`
	Optimizer string  `yaml:"optimizer"`
	LR        float64 `yaml:"lr"`
	Iters     int     `yaml:"iters"`
	BatchSize int     `yaml:"batch_size"`
	NT        int     `yaml:"nt"`
	TMin      float64 `yaml:"tmin"`
	TMax      float64 `yaml:"tmax"`
	Alpha     float64 `yaml:"alpha"`
	U0        float64 `yaml:"u0"`
	Seed      int64   `yaml:"seed"`
	Schedule  string  `yaml:"schedule"`
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "gopinn",
		Short: "physics-informed loss composition for neural networks",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := zap.NewProductionConfig()
			if verbose {
				cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = cfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	trainCmd := &cobra.Command{
		Use:   "train",
		Short: "train a network on the exponential decay equation",
		RunE:  runTrain,
	}
	trainCmd.Flags().StringVar(&configFile, "config", "", "training config file (yaml)")
	trainCmd.Flags().StringVar(&scheduleFile, "schedule", "", "curriculum schedule file (yaml)")
	trainCmd.Flags().StringVar(&layersSpec, "layers", "1,16,16,1", "layer widths")
	trainCmd.Flags().StringVar(&optimizerName, "optimizer", "adam", "optimizer (adam, sgd)")
	trainCmd.Flags().Float64Var(&lr, "lr", 1e-3, "learning rate")
	trainCmd.Flags().IntVar(&iters, "iters", 2000, "training iterations")
	trainCmd.Flags().IntVar(&batchSize, "batch", 32, "collocation batch size")
	trainCmd.Flags().IntVar(&nt, "nt", 256, "collocation points in the window")
	trainCmd.Flags().Float64Var(&tmin, "tmin", 0.0, "window start")
	trainCmd.Flags().Float64Var(&tmax, "tmax", 1.0, "window end")
	trainCmd.Flags().Float64Var(&alpha, "alpha", 2.0, "decay rate")
	trainCmd.Flags().Float64Var(&u0, "u0", 1.0, "initial value u(0)")
	trainCmd.Flags().Int64Var(&seed, "seed", 42, "random seed")
	trainCmd.Flags().StringVar(&checkpointOut, "checkpoint", "", "write final parameters to this file")
	trainCmd.Flags().BoolVar(&noPlot, "no-plot", false, "skip the terminal loss plot")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("gopinn %s\n", version)
		},
	}

	rootCmd.AddCommand(trainCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runTrain(cmd *cobra.Command, args []string) error {
	if configFile != "" {
		raw, err := os.ReadFile(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		var cfg trainConfig
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
		applyConfig(cmd, cfg)
	}

	sizes, err := parseLayers(layersSpec)
	if err != nil {
		return err
	}

	runID := uuid.New().String()[:8]
	log := logger.With(zap.String("run_id", runID))
	log.Info("starting training run",
		zap.Ints("layers", sizes),
		zap.String("optimizer", optimizerName),
		zap.Float64("lr", lr),
		zap.Int("iters", iters),
		zap.Float64("alpha", alpha),
	)

	backend := autodiff.New(cpu.New())
	rng := rand.New(rand.NewSource(seed))

	model, err := nn.NewMLP(backend, sizes)
	if err != nil {
		return err
	}

	tree := pinn.ParamTree[ad]{
		NN: model.Init(rng),
		Eq: map[string]*ts{
			"alpha": tensor.Full(tensor.Shape{1, 1}, float32(alpha), backend),
		},
	}

	loss, err := pinn.NewEquationLoss(pinn.EquationConfig[ad]{
		Approximator: model,
		Dynamic:      decayResidual(1e-3),
		Initial: &pinn.InitialCondition[ad]{
			T0: 0,
			U0: tensor.Full(tensor.Shape{1, 1}, float32(u0), backend),
		},
	})
	if err != nil {
		return err
	}

	gen, err := data.NewODEGenerator(backend, tmin, tmax, nt, batchSize, rng)
	if err != nil {
		return err
	}

	var sched curriculum.Schedule
	var state curriculum.State
	if scheduleFile != "" {
		sched, err = curriculum.Load(scheduleFile)
		if err != nil {
			return err
		}
		state, err = curriculum.Start(sched, tmin)
		if err != nil {
			return err
		}
		gen, err = gen.WithWindow(state.TMin, state.TMax)
		if err != nil {
			return err
		}
		log.Info("curriculum enabled",
			zap.Int("phases", sched.Phases()),
			zap.Float64("tmax", state.TMax),
		)
	}

	opt, err := newOptimizer(optimizerName, lr)
	if err != nil {
		return err
	}

	tape := backend.Tape()
	tape.StartRecording()

	history := make([]float64, 0, iters)
	logEvery := iters / 20
	if logEvery < 1 {
		logEvery = 1
	}

	for iter := 0; iter < iters; iter++ {
		if scheduleFile != "" {
			phase := sched.PhaseAt(iter)
			if phase != state.Phase {
				state, err = curriculum.Advance(state, sched, phase)
				if err != nil {
					return err
				}
				gen, err = gen.WithWindow(state.TMin, state.TMax)
				if err != nil {
					return err
				}
				log.Info("advancing curriculum phase",
					zap.Int("iter", iter),
					zap.Int("phase", phase),
					zap.Float64("tmax", state.TMax),
				)
			}
		}

		batch, err := gen.Next()
		if err != nil {
			return err
		}

		tape.Clear()
		total, breakdown, err := loss.Evaluate(tree, batch)
		if err != nil {
			return err
		}

		grads, err := autodiff.Backward(total, backend)
		if err != nil {
			return err
		}
		opt.Step(tree, grads)

		totalVal := float64(total.Data()[0])
		history = append(history, totalVal)

		if iter%logEvery == 0 {
			log.Info("training step",
				zap.Int("iter", iter),
				zap.Float64("loss", totalVal),
				zap.Float64("dyn_loss", float64(breakdown[pinn.TermDynamic].Data()[0])),
				zap.Float64("initial_condition", float64(breakdown[pinn.TermInitial].Data()[0])),
			)
		}
	}

	log.Info("training complete", zap.Float64("final_loss", history[len(history)-1]))

	if checkpointOut != "" {
		meta := map[string]string{
			"run_id":    runID,
			"optimizer": optimizerName,
		}
		if err := checkpoint.Save(checkpointOut, tree, meta); err != nil {
			return err
		}
		log.Info("checkpoint written", zap.String("path", checkpointOut))
	}

	if !noPlot {
		graph := asciigraph.Plot(history,
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("training loss (run %s)", runID)),
		)
		fmt.Println(graph)
	}

	return nil
}

// decayResidual builds the residual of du/dt + alpha*u = 0 using a
// forward difference of width h for the time derivative.
func decayResidual(h float64) pinn.DynamicFunc[ad] {
	return func(inputs []*ts, u pinn.Approximator[ad], tree pinn.ParamTree[ad]) (*ts, error) {
		t := inputs[0]
		ut, err := u.Eval([]*ts{t}, tree)
		if err != nil {
			return nil, err
		}
		uh, err := u.Eval([]*ts{t.AddScalar(h)}, tree)
		if err != nil {
			return nil, err
		}
		a, ok := tree.Eq["alpha"]
		if !ok {
			return nil, fmt.Errorf("%w: missing eq param %q", pinn.ErrKeyMismatch, "alpha")
		}
		du := uh.Sub(ut).DivScalar(h)
		return du.Add(ut.Mul(a)), nil
	}
}

func newOptimizer(name string, lr float64) (optim.Optimizer[ad], error) {
	switch name {
	case "adam":
		return optim.NewAdam[ad](optim.AdamConfig{LR: float32(lr)}), nil
	case "sgd":
		return optim.NewSGD[ad](optim.SGDConfig{LR: float32(lr)}), nil
	default:
		return nil, fmt.Errorf("unknown optimizer: %s", name)
	}
}

func parseLayers(spec string) ([]int, error) {
	parts := strings.Split(spec, ",")
	sizes := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("bad layer spec %q: %w", spec, err)
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}

func applyConfig(cmd *cobra.Command, cfg trainConfig) {
	if len(cfg.Layers) > 0 && !cmd.Flags().Changed("layers") {
		parts := make([]string, len(cfg.Layers))
		for i, n := range cfg.Layers {
			parts[i] = strconv.Itoa(n)
		}
		layersSpec = strings.Join(parts, ",")
	}
	if cfg.Optimizer != "" && !cmd.Flags().Changed("optimizer") {
		optimizerName = cfg.Optimizer
	}
	if cfg.LR != 0 && !cmd.Flags().Changed("lr") {
		lr = cfg.LR
	}
	if cfg.Iters != 0 && !cmd.Flags().Changed("iters") {
		iters = cfg.Iters
	}
	if cfg.BatchSize != 0 && !cmd.Flags().Changed("batch") {
		batchSize = cfg.BatchSize
	}
	if cfg.NT != 0 && !cmd.Flags().Changed("nt") {
		nt = cfg.NT
	}
	if !cmd.Flags().Changed("tmin") {
		tmin = cfg.TMin
	}
	if cfg.TMax != 0 && !cmd.Flags().Changed("tmax") {
		tmax = cfg.TMax
	}
	if cfg.Alpha != 0 && !cmd.Flags().Changed("alpha") {
		alpha = cfg.Alpha
	}
	if cfg.U0 != 0 && !cmd.Flags().Changed("u0") {
		u0 = cfg.U0
	}
	if cfg.Seed != 0 && !cmd.Flags().Changed("seed") {
		seed = cfg.Seed
	}
	if cfg.Schedule != "" && !cmd.Flags().Changed("schedule") {
		scheduleFile = cfg.Schedule
	}
}
