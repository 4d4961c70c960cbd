package evo

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"

	"auxesis/internal/genome"
	"auxesis/internal/model"
	"auxesis/internal/network"
	"auxesis/internal/stats"
	"auxesis/internal/task"
)

// Command steers a running evolution loop from outside.
type Command int

const (
	CommandPause Command = iota + 1
	CommandContinue
	CommandStop
)

// Config assembles an evolution run. Zero-valued strategy fields take the
// package defaults; Workers below 1 resolves to the logical CPU count.
type Config struct {
	Scheme         task.EvaluationScheme
	Meta           model.Meta
	PopulationSize int

	Settings     EvolutionSettings
	Asexual      AsexualSettings
	WeightScheme WeightMutationScheme
	Sexual       SexualSettings
	Regulation   RegulationStrategy
	Metric       DistanceMetric

	// InitialInterconnections applies when no initial population is given.
	InitialInterconnections float64
	Initial                 []model.Genome

	KMeansIterations int
	Workers          int
	Seed             int64
	Control          <-chan Command
}

// RunResult captures a completed (or stopped) run.
type RunResult struct {
	BestByGeneration []float64
	Diagnostics      []model.GenerationDiagnostics
	SpeciesHistory   []model.SpeciesGeneration
	FinalPopulation  []model.Genome
	Best             ScoredGenome
	Solved           bool
	Generations      int
}

// EvolutionAlgorithm drives the generational loop: parallel evaluation,
// k-means speciation, stop testing, quota allocation, reproduction, and
// complexity regulation. Instances are single-use per run and not safe for
// concurrent use; only the evaluation phase fans out internally.
type EvolutionAlgorithm struct {
	cfg Config
	rng *rand.Rand

	tracker   *genome.InnovationTracker
	genomeSeq *genome.Sequence
	asexual   *AsexualReproduction
	sexual    *SexualReproduction
	speciator *Speciator

	pool   *task.EvaluatorPool
	shared task.Evaluator

	complexityMA     *stats.MovingAverage
	mode             RegulationMode
	effectiveAsexual AsexualSettings

	population []model.Genome
	units      []ScoredGenome
	species    []*Species
	generation int
}

func NewEvolutionAlgorithm(cfg Config) (*EvolutionAlgorithm, error) {
	if cfg.Scheme == nil {
		return nil, fmt.Errorf("evaluation scheme is required")
	}
	if cfg.PopulationSize <= 0 {
		return nil, fmt.Errorf("population size must be > 0, got %d", cfg.PopulationSize)
	}
	if cfg.Meta.InputCount < 1 || cfg.Meta.OutputCount < 1 {
		return nil, fmt.Errorf("meta model needs at least one input (bias) and one output")
	}
	if cfg.Meta.WeightScale <= 0 {
		return nil, fmt.Errorf("connection weight scale must be > 0, got %v", cfg.Meta.WeightScale)
	}
	if _, err := network.GetActivation(cfg.Meta.Activation); err != nil {
		return nil, err
	}
	if cfg.Settings == (EvolutionSettings{}) {
		cfg.Settings = DefaultEvolutionSettings()
	}
	if err := cfg.Settings.Validate(); err != nil {
		return nil, err
	}
	if cfg.Asexual == (AsexualSettings{}) {
		cfg.Asexual = DefaultAsexualSettings()
	}
	if err := cfg.Asexual.Validate(); err != nil {
		return nil, err
	}
	if cfg.WeightScheme == nil {
		cfg.WeightScheme = DefaultWeightMutationScheme()
	}
	if err := cfg.WeightScheme.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Sexual.Validate(); err != nil {
		return nil, err
	}
	if cfg.Regulation == nil {
		reg, err := NewAbsoluteRegulation(60, 10)
		if err != nil {
			return nil, err
		}
		cfg.Regulation = reg
	}
	if cfg.Metric == nil {
		cfg.Metric = DefaultDistanceMetric()
	}
	if cfg.KMeansIterations < 1 {
		cfg.KMeansIterations = 6
	}
	if cfg.Workers < 1 {
		cfg.Workers = runtime.NumCPU()
	}

	a := &EvolutionAlgorithm{
		cfg:              cfg,
		rng:              rand.New(rand.NewSource(cfg.Seed)),
		speciator:        NewSpeciator(cfg.Metric, cfg.KMeansIterations),
		complexityMA:     stats.NewMovingAverage(cfg.Settings.StatisticsMovingAverageLength),
		effectiveAsexual: cfg.Asexual,
	}

	if len(cfg.Initial) > 0 {
		maxGenomeID, maxInnovationID := 0, cfg.Meta.InputCount+cfg.Meta.OutputCount
		for _, g := range cfg.Initial {
			if err := genome.Validate(g, cfg.Meta); err != nil {
				return nil, err
			}
			if g.ID >= maxGenomeID {
				maxGenomeID = g.ID + 1
			}
			for _, gene := range g.Conns {
				if gene.ID >= maxInnovationID {
					maxInnovationID = gene.ID + 1
				}
				for _, node := range [2]int{gene.Source, gene.Target} {
					if node >= maxInnovationID {
						maxInnovationID = node + 1
					}
				}
			}
		}
		a.genomeSeq = genome.NewSequence(maxGenomeID)
		a.tracker = genome.NewInnovationTrackerFrom(cfg.Meta, maxInnovationID)
		a.population = append([]model.Genome(nil), cfg.Initial...)
	} else {
		a.genomeSeq = genome.NewSequence(0)
		a.tracker = genome.NewInnovationTracker(cfg.Meta)
		factory := genome.NewFactory(cfg.Meta, a.tracker, a.genomeSeq)
		initial, err := factory.CreatePopulation(cfg.PopulationSize, cfg.InitialInterconnections, a.rng)
		if err != nil {
			return nil, err
		}
		a.population = initial
	}
	if len(a.population) != cfg.PopulationSize {
		return nil, fmt.Errorf("initial population mismatch: got=%d want=%d", len(a.population), cfg.PopulationSize)
	}

	a.asexual = NewAsexualReproduction(cfg.Meta, cfg.WeightScheme, a.tracker, a.genomeSeq)
	a.sexual = NewSexualReproduction(cfg.Meta, a.genomeSeq)
	if cfg.Scheme.EvaluatorsHaveState() {
		a.pool = task.NewEvaluatorPool(cfg.Scheme)
	} else {
		a.shared = cfg.Scheme.CreateEvaluator()
	}
	return a, nil
}

// Run executes up to maxGenerations generations, returning early when the
// stop condition is met, a stop command arrives, or the context is cancelled.
func (a *EvolutionAlgorithm) Run(ctx context.Context, maxGenerations int) (RunResult, error) {
	result := RunResult{}
	for gen := 0; gen < maxGenerations; gen++ {
		stopped, err := a.checkControl(ctx)
		if err != nil {
			return result, err
		}
		if stopped {
			break
		}

		solved, stopped, err := a.runGeneration(ctx, &result)
		if err != nil {
			return result, err
		}
		result.Generations = gen + 1
		if solved {
			result.Solved = true
		}
		if solved || stopped {
			break
		}
	}
	result.FinalPopulation = append([]model.Genome(nil), a.population...)
	return result, nil
}

func (a *EvolutionAlgorithm) runGeneration(ctx context.Context, result *RunResult) (solved, stopped bool, err error) {
	a.tracker.Reset()

	units, evaluated, nonViable, err := a.evaluatePopulation(ctx)
	if err != nil {
		return false, false, err
	}
	a.units = units

	best := 0
	for i := range a.units {
		if a.cfg.Scheme.Compare(a.units[i].Fitness, a.units[best].Fitness) > 0 {
			best = i
		}
	}
	if len(result.BestByGeneration) == 0 || a.cfg.Scheme.Compare(a.units[best].Fitness, result.Best.Fitness) > 0 {
		result.Best = a.units[best]
	}

	if a.species == nil {
		a.species = a.speciator.SpeciateAll(a.units, a.cfg.Settings.SpeciesCount, a.rng)
	} else {
		a.speciator.SpeciateAdd(a.species, a.units)
	}

	meanComplexity, maxComplexity := complexityOf(a.population)
	complexityMA := a.complexityMA.Add(meanComplexity)

	diag := a.summarize(evaluated, nonViable, meanComplexity, maxComplexity)
	result.Diagnostics = append(result.Diagnostics, diag)
	result.BestByGeneration = append(result.BestByGeneration, a.units[best].Fitness.Primary)
	result.SpeciesHistory = append(result.SpeciesHistory, a.speciesGeneration())

	if a.cfg.Scheme.TestForStopCondition(a.units[best].Fitness) {
		return true, false, nil
	}

	stopped, err = a.checkControl(ctx)
	if err != nil || stopped {
		return false, stopped, err
	}

	quotas := allocateQuotas(a.species, a.units, a.cfg.PopulationSize, a.cfg.Settings)
	a.population = a.reproduce(quotas)
	a.generation++

	a.mode = a.cfg.Regulation.UpdateMode(ComplexityStats{
		Generation:       a.generation,
		MeanComplexity:   meanComplexity,
		MeanComplexityMA: complexityMA,
		BestFitness:      a.units[best].Fitness.Primary,
	})
	if a.mode == ModeSimplify {
		a.effectiveAsexual = a.cfg.Asexual.Simplify()
	} else {
		a.effectiveAsexual = a.cfg.Asexual
	}
	return false, false, nil
}

type partRange struct {
	start int
	end   int
}

// partitions splits n items into at most workers contiguous ranges.
func partitions(n, workers int) []partRange {
	if workers > n {
		workers = n
	}
	parts := make([]partRange, 0, workers)
	base, extra := n/workers, n%workers
	start := 0
	for w := 0; w < workers; w++ {
		size := base
		if w < extra {
			size++
		}
		parts = append(parts, partRange{start: start, end: start + size})
		start += size
	}
	return parts
}

// evaluatePopulation decodes and evaluates every genome, one worker per
// contiguous partition. Stateful evaluators come from the pool, one per
// partition; a stateless evaluator is shared by all workers. Non-viable
// genomes receive the scheme's null fitness, and cancellation is observed at
// partition boundaries.
func (a *EvolutionAlgorithm) evaluatePopulation(ctx context.Context) ([]ScoredGenome, int, int, error) {
	units := make([]ScoredGenome, len(a.population))
	var nonViable atomic.Int64

	var wg sync.WaitGroup
	for _, part := range partitions(len(a.population), a.cfg.Workers) {
		wg.Add(1)
		go func(part partRange) {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}

			ev := a.shared
			if a.pool != nil {
				ev = a.pool.Get()
				defer a.pool.Release(ev)
			}

			for i := part.start; i < part.end; i++ {
				g := a.population[i]
				box, ok, err := network.Decode(g, a.cfg.Meta)
				if err != nil || !ok {
					units[i] = ScoredGenome{Genome: g, Fitness: a.cfg.Scheme.NullFitness()}
					nonViable.Add(1)
					continue
				}
				units[i] = ScoredGenome{Genome: g, Fitness: ev.Evaluate(box), Viable: true}
			}
		}(part)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, 0, 0, err
	}
	return units, len(units), int(nonViable.Load()), nil
}

// reproduce builds the next population from the species quotas: elites are
// preserved verbatim, asexual offspring mutate a selected parent, and sexual
// offspring cross two parents, the second drawn from another species with
// the interspecies mating probability. Reproduction runs serially, so a
// fixed seed yields a deterministic next generation.
func (a *EvolutionAlgorithm) reproduce(quotas []SpeciesQuota) []model.Genome {
	compare := func(x, y ScoredGenome) int { return a.cfg.Scheme.Compare(x.Fitness, y.Fitness) }
	for _, sp := range a.species {
		sortMembersByFitness(sp.Members, a.units, compare)
	}

	birth := a.generation + 1
	next := make([]model.Genome, 0, a.cfg.PopulationSize)
	for _, q := range quotas {
		sp := a.species[q.SpeciesIdx]

		for i := 0; i < q.Elites; i++ {
			next = append(next, a.units[sp.Members[i]].Genome)
		}

		for i := 0; i < q.Asexual; i++ {
			parent := a.units[pickParent(sp.Members, a.units, a.cfg.Settings.SelectionProportion, a.rng)].Genome
			next = append(next, a.asexual.CreateChild(parent, a.effectiveAsexual, a.rng, birth))
		}

		for i := 0; i < q.Sexual; i++ {
			p1 := pickParent(sp.Members, a.units, a.cfg.Settings.SelectionProportion, a.rng)
			p2, ok := a.pickMate(sp, p1)
			if !ok {
				parent := a.units[p1].Genome
				next = append(next, a.asexual.CreateChild(parent, a.effectiveAsexual, a.rng, birth))
				continue
			}
			next = append(next, a.sexual.CreateChild(a.units[p1].Genome, a.units[p2].Genome, a.cfg.Sexual, a.rng, birth))
		}
	}
	return next
}

// pickMate draws the second crossover parent: from a different species with
// the configured interspecies probability, otherwise from the same species,
// retrying a few times for a partner distinct from p1.
func (a *EvolutionAlgorithm) pickMate(sp *Species, p1 int) (int, bool) {
	if a.rng.Float64() < a.cfg.Settings.InterspeciesMatingProportion {
		others := make([]*Species, 0, len(a.species))
		for _, other := range a.species {
			if other != sp && len(other.Members) > 0 {
				others = append(others, other)
			}
		}
		if len(others) > 0 {
			other := others[a.rng.Intn(len(others))]
			return pickParent(other.Members, a.units, a.cfg.Settings.SelectionProportion, a.rng), true
		}
	}
	if len(sp.Members) < 2 {
		return 0, false
	}
	for attempt := 0; attempt < 3; attempt++ {
		p2 := pickParent(sp.Members, a.units, a.cfg.Settings.SelectionProportion, a.rng)
		if p2 != p1 {
			return p2, true
		}
	}
	return 0, false
}

func (a *EvolutionAlgorithm) summarize(evaluated, nonViable int, meanComplexity float64, maxComplexity int) model.GenerationDiagnostics {
	bestFitness, meanFitness := 0.0, 0.0
	minFitness := a.units[0].Fitness.Primary
	for i, u := range a.units {
		f := u.Fitness.Primary
		meanFitness += f
		if f < minFitness {
			minFitness = f
		}
		if i == 0 || f > bestFitness {
			bestFitness = f
		}
	}
	meanFitness /= float64(len(a.units))

	speciesCount := 0
	for _, sp := range a.species {
		if len(sp.Members) > 0 {
			speciesCount++
		}
	}

	return model.GenerationDiagnostics{
		Generation:     a.generation,
		BestFitness:    bestFitness,
		MeanFitness:    meanFitness,
		MinFitness:     minFitness,
		SpeciesCount:   speciesCount,
		MeanComplexity: meanComplexity,
		MaxComplexity:  maxComplexity,
		RegulationMode: a.mode.String(),
		Evaluations:    evaluated,
		NonViable:      nonViable,
	}
}

func (a *EvolutionAlgorithm) speciesGeneration() model.SpeciesGeneration {
	out := model.SpeciesGeneration{Generation: a.generation}
	for _, sp := range a.species {
		if len(sp.Members) == 0 {
			continue
		}
		m := model.SpeciesMetrics{ID: sp.ID, Size: len(sp.Members)}
		for i, unit := range sp.Members {
			f := a.units[unit].Fitness.Primary
			m.MeanFitness += f
			if i == 0 || f > m.BestFitness {
				m.BestFitness = f
			}
		}
		m.MeanFitness /= float64(len(sp.Members))
		out.Species = append(out.Species, m)
	}
	return out
}

func complexityOf(population []model.Genome) (mean float64, max int) {
	for _, g := range population {
		c := g.Complexity()
		mean += float64(c)
		if c > max {
			max = c
		}
	}
	if len(population) > 0 {
		mean /= float64(len(population))
	}
	return mean, max
}

// checkControl polls the control channel without blocking; a pause command
// blocks until continue, stop, or context cancellation.
func (a *EvolutionAlgorithm) checkControl(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if a.cfg.Control == nil {
		return false, nil
	}
	select {
	case cmd := <-a.cfg.Control:
		return a.handleCommand(ctx, cmd)
	default:
		return false, nil
	}
}

func (a *EvolutionAlgorithm) handleCommand(ctx context.Context, cmd Command) (bool, error) {
	switch cmd {
	case CommandStop:
		return true, nil
	case CommandPause:
		for {
			select {
			case next := <-a.cfg.Control:
				switch next {
				case CommandContinue:
					return false, nil
				case CommandStop:
					return true, nil
				}
			case <-ctx.Done():
				return false, ctx.Err()
			}
		}
	default:
		return false, nil
	}
}
