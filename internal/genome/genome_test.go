package genome

import (
	"math/rand"
	"testing"

	"auxesis/internal/model"
)

func testMeta() model.Meta {
	return model.Meta{InputCount: 3, OutputCount: 1, Acyclic: true, Activation: "leaky-relu", WeightScale: 5}
}

func TestInnovationTrackerReusesIDsWithinGeneration(t *testing.T) {
	tracker := NewInnovationTracker(testMeta())

	a := tracker.ConnectionID(0, 3)
	b := tracker.ConnectionID(1, 3)
	if a == b {
		t.Fatalf("distinct pairs must get distinct ids, both got %d", a)
	}
	if again := tracker.ConnectionID(0, 3); again != a {
		t.Fatalf("same pair must reuse id %d within a generation, got %d", a, again)
	}

	add := tracker.AddNode(0, 3)
	if again := tracker.AddNode(0, 3); again != add {
		t.Fatalf("same split must reuse node addition %+v, got %+v", add, again)
	}
	if add.NodeID == add.InID || add.InID == add.OutID {
		t.Fatalf("node addition ids must be distinct: %+v", add)
	}

	tracker.Reset()
	if after := tracker.ConnectionID(0, 3); after == a {
		t.Fatalf("id %d must not be reissued after reset", a)
	}
}

func TestInnovationIDsStartPastNodeIDSpace(t *testing.T) {
	meta := testMeta()
	tracker := NewInnovationTracker(meta)
	if id := tracker.ConnectionID(0, 3); id < meta.InputCount+meta.OutputCount {
		t.Fatalf("innovation id %d collides with input/output node ids", id)
	}
}

func TestGeneListBuilderRejectsDuplicates(t *testing.T) {
	b := NewGeneListBuilder(false)
	if !b.Add(model.ConnectionGene{ID: 7, Source: 0, Target: 3, Weight: 1}) {
		t.Fatal("first add must succeed")
	}
	if b.Add(model.ConnectionGene{ID: 9, Source: 0, Target: 3, Weight: 2}) {
		t.Fatal("duplicate pair must be rejected")
	}
	genes := b.End()
	if len(genes) != 1 || genes[0].ID != 7 {
		t.Fatalf("unexpected gene list: %+v", genes)
	}
}

func TestGeneListBuilderGuardsCycles(t *testing.T) {
	b := NewGeneListBuilder(true)
	b.Add(model.ConnectionGene{ID: 4, Source: 0, Target: 5})
	b.Add(model.ConnectionGene{ID: 5, Source: 5, Target: 6})
	b.Add(model.ConnectionGene{ID: 6, Source: 6, Target: 3})

	if b.TryAddGuarded(model.ConnectionGene{ID: 8, Source: 6, Target: 5}) {
		t.Fatal("guarded gene closing a cycle must be rejected")
	}
	if !b.TryAddGuarded(model.ConnectionGene{ID: 9, Source: 0, Target: 6}) {
		t.Fatal("acyclic guarded gene must be admitted")
	}

	genes := b.End()
	for i := 1; i < len(genes); i++ {
		if genes[i].ID <= genes[i-1].ID {
			t.Fatalf("genes not sorted by innovation id: %+v", genes)
		}
	}
	if len(genes) != 4 {
		t.Fatalf("expected 4 genes, got %d", len(genes))
	}

	// Builder must be clean after End.
	if !b.TryAddGuarded(model.ConnectionGene{ID: 8, Source: 6, Target: 5}) {
		t.Fatal("builder state leaked across End")
	}
}

func TestFactoryAlignsInitialInnovationIDs(t *testing.T) {
	meta := testMeta()
	tracker := NewInnovationTracker(meta)
	factory := NewFactory(meta, tracker, NewSequence(0))

	genomes, err := factory.CreatePopulation(20, 1.0, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("create population: %v", err)
	}
	if len(genomes) != 20 {
		t.Fatalf("expected 20 genomes, got %d", len(genomes))
	}

	idByPair := map[[2]int]int{}
	for _, g := range genomes {
		if err := Validate(g, meta); err != nil {
			t.Fatalf("invalid genome: %v", err)
		}
		for _, gene := range g.Conns {
			key := [2]int{gene.Source, gene.Target}
			if prev, ok := idByPair[key]; ok && prev != gene.ID {
				t.Fatalf("pair %v has ids %d and %d", key, prev, gene.ID)
			}
			idByPair[key] = gene.ID
		}
	}
}

func TestFactoryPartialInterconnections(t *testing.T) {
	meta := testMeta()
	factory := NewFactory(meta, NewInnovationTracker(meta), NewSequence(0))

	genomes, err := factory.CreatePopulation(10, 0.0, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("create population: %v", err)
	}
	for _, g := range genomes {
		if len(g.Conns) != 1 {
			t.Fatalf("proportion 0 must still yield one connection, got %d", len(g.Conns))
		}
	}
}

func TestValidateRejectsUnsortedGenes(t *testing.T) {
	meta := testMeta()
	bad := model.Genome{ID: 1, Conns: []model.ConnectionGene{
		{ID: 9, Source: 0, Target: 3, Weight: 1},
		{ID: 4, Source: 1, Target: 3, Weight: 1},
	}}
	if err := Validate(bad, meta); err == nil {
		t.Fatal("expected order violation")
	}

	overweight := model.Genome{ID: 2, Conns: []model.ConnectionGene{
		{ID: 4, Source: 0, Target: 3, Weight: 50},
	}}
	if err := Validate(overweight, meta); err == nil {
		t.Fatal("expected weight-scale violation")
	}
}

func TestHiddenNodesDerived(t *testing.T) {
	meta := testMeta()
	conns := []model.ConnectionGene{
		{ID: 4, Source: 0, Target: 12},
		{ID: 5, Source: 12, Target: 3},
		{ID: 6, Source: 1, Target: 3},
	}
	hidden := HiddenNodes(conns, meta)
	if len(hidden) != 1 || hidden[0] != 12 {
		t.Fatalf("expected hidden node 12, got %v", hidden)
	}
}
