package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// ConnectionGene is one heritable connection. ID is the innovation id: the
// first creation of a (Source, Target) pair anywhere in the population mints
// a new id, and every later creation of the same pair within a generation
// reuses it.
type ConnectionGene struct {
	ID     int     `json:"id"`
	Source int     `json:"source"`
	Target int     `json:"target"`
	Weight float64 `json:"weight"`
}

// Genome is an ordered list of connection genes. Conns is sorted ascending by
// innovation id with no duplicates. Node ids are implicit: inputs occupy
// [0, Meta.InputCount), outputs [Meta.InputCount, Meta.InputCount+OutputCount),
// and hidden node ids are whatever other ids appear as a gene endpoint.
type Genome struct {
	VersionedRecord
	ID    int              `json:"id"`
	Birth int              `json:"birth"`
	Conns []ConnectionGene `json:"conns"`
}

// Complexity is the scalar size proxy used by complexity regulation.
func (g Genome) Complexity() int {
	return len(g.Conns)
}

// Clone returns a deep copy with a new id and birth generation.
func (g Genome) Clone(id, birth int) Genome {
	return Genome{
		VersionedRecord: g.VersionedRecord,
		ID:              id,
		Birth:           birth,
		Conns:           append([]ConnectionGene(nil), g.Conns...),
	}
}

// Meta holds the population-wide constants fixed for the lifetime of a run.
// InputCount includes the bias node, which is always node 0.
type Meta struct {
	InputCount          int     `json:"input_count"`
	OutputCount         int     `json:"output_count"`
	Acyclic             bool    `json:"acyclic"`
	CyclesPerActivation int     `json:"cycles_per_activation"`
	Activation          string  `json:"activation"`
	WeightScale         float64 `json:"weight_scale"`
}

// CompatibleWith reports whether a loaded population can be evolved under
// this meta model.
func (m Meta) CompatibleWith(other Meta) bool {
	return m.InputCount == other.InputCount &&
		m.OutputCount == other.OutputCount &&
		m.Acyclic == other.Acyclic &&
		m.WeightScale == other.WeightScale
}

// PopulationSnapshot is the persisted form of a population at generation end.
type PopulationSnapshot struct {
	VersionedRecord
	ID         string   `json:"id"`
	Experiment string   `json:"experiment"`
	Generation int      `json:"generation"`
	Meta       Meta     `json:"meta"`
	Genomes    []Genome `json:"genomes"`
}

// GenerationDiagnostics summarises one generation for artifacts and storage.
type GenerationDiagnostics struct {
	Generation     int     `json:"generation"`
	BestFitness    float64 `json:"best_fitness"`
	MeanFitness    float64 `json:"mean_fitness"`
	MinFitness     float64 `json:"min_fitness"`
	SpeciesCount   int     `json:"species_count"`
	MeanComplexity float64 `json:"mean_complexity"`
	MaxComplexity  int     `json:"max_complexity"`
	RegulationMode string  `json:"regulation_mode"`
	Evaluations    int     `json:"evaluations"`
	NonViable      int     `json:"non_viable"`
}

type SpeciesMetrics struct {
	ID          int     `json:"id"`
	Size        int     `json:"size"`
	MeanFitness float64 `json:"mean_fitness"`
	BestFitness float64 `json:"best_fitness"`
}

type SpeciesGeneration struct {
	Generation int              `json:"generation"`
	Species    []SpeciesMetrics `json:"species"`
}

type TopGenomeRecord struct {
	Rank    int     `json:"rank"`
	Fitness float64 `json:"fitness"`
	Genome  Genome  `json:"genome"`
}

// ExperimentSummary tracks the best observed fitness per experiment.
type ExperimentSummary struct {
	VersionedRecord
	Name        string  `json:"name"`
	Description string  `json:"description"`
	BestFitness float64 `json:"best_fitness"`
}
