package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"auxesis/internal/stats"
	"auxesis/internal/storage"
	auxesis "auxesis/pkg/auxesis"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "reset":
		return runReset(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "experiments":
		return runExperiments(args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "fitness":
		return runFitness(ctx, args[1:])
	case "diagnostics":
		return runDiagnostics(ctx, args[1:])
	case "species":
		return runSpecies(ctx, args[1:])
	case "top":
		return runTop(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	case "profiles":
		return runProfiles(args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf(`%s

usage: auxesisctl <command> [flags]

commands:
  init         initialize the artifact store
  reset        drop all persisted state
  run          run an experiment
  experiments  list registered experiments
  runs         list persisted runs
  fitness      print a run's best-fitness history
  diagnostics  print a run's generation diagnostics
  species      print a run's species history
  top          print a run's best genomes
  export       export run artifacts (csv, json, xlsx)
  profiles     list run profiles from an INI file`, msg)
}

func storeFlags(fs *flag.FlagSet) (storeKind, dbPath, artifactsDir *string) {
	storeKind = fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath = fs.String("db-path", "auxesis.db", "sqlite database path")
	artifactsDir = fs.String("artifacts-dir", "artifacts", "artifact output directory")
	return
}

func newClient(ctx context.Context, storeKind, dbPath, artifactsDir string) (*auxesis.Client, error) {
	return auxesis.NewClient(ctx, auxesis.Options{
		StoreKind:    storeKind,
		DBPath:       dbPath,
		ArtifactsDir: artifactsDir,
	})
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind, dbPath, artifactsDir := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(ctx, *storeKind, *dbPath, *artifactsDir)
	if err != nil {
		return err
	}
	defer client.Close()

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runReset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	storeKind, dbPath, artifactsDir := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(ctx, *storeKind, *dbPath, *artifactsDir)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Lab().Reset(ctx); err != nil {
		return err
	}
	fmt.Println("store reset")
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	storeKind, dbPath, artifactsDir := storeFlags(fs)
	experimentID := fs.String("experiment", "", "experiment id (see the experiments command)")
	configPath := fs.String("config", "", "experiment config JSON path")
	requestPath := fs.String("request", "", "full run-request JSON path")
	profilesPath := fs.String("profiles", "", "profiles INI path")
	profileName := fs.String("profile", "", "profile name within -profiles")
	runID := fs.String("run-id", "", "run id (uuid assigned when empty)")
	generations := fs.Int("generations", 500, "maximum generations")
	seed := fs.Int64("seed", 0, "master random seed")
	continueFrom := fs.String("continue-from", "", "population snapshot id to resume")
	writeArtifacts := fs.Bool("write-artifacts", true, "write csv/json artifacts")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// Precedence: request file < profile < flags the user actually set.
	visited := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { visited[f.Name] = true })

	var req auxesis.RunRequest
	if *requestPath != "" {
		loaded, err := loadRunRequest(*requestPath)
		if err != nil {
			return err
		}
		req = mergeRunRequests(req, loaded)
	}
	if *profilesPath != "" && *profileName != "" {
		profile, err := loadProfile(*profilesPath, *profileName)
		if err != nil {
			return err
		}
		req = mergeRunRequests(req, profile.runRequest())
	}
	if visited["experiment"] || req.Experiment == "" {
		req.Experiment = *experimentID
	}
	if visited["config"] || req.ConfigPath == "" {
		req.ConfigPath = *configPath
	}
	if visited["run-id"] || req.RunID == "" {
		req.RunID = *runID
	}
	if visited["generations"] || req.MaxGenerations == 0 {
		req.MaxGenerations = *generations
	}
	if visited["seed"] {
		req.Seed = *seed
	}
	if visited["continue-from"] || req.ContinueFrom == "" {
		req.ContinueFrom = *continueFrom
	}
	if visited["write-artifacts"] || (*requestPath == "" && *profilesPath == "") {
		req.WriteArtifacts = *writeArtifacts
	}
	if req.Experiment == "" {
		return usageError("run requires -experiment, -request, or -profile")
	}

	client, err := newClient(ctx, *storeKind, *dbPath, *artifactsDir)
	if err != nil {
		return err
	}
	defer client.Close()

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}

	diagnostics, err := client.Diagnostics(ctx, summary.RunID)
	if err != nil {
		return err
	}
	return stats.RenderRunReport(os.Stdout, summary.RunID, diagnostics, summary.Solved)
}

func runExperiments(args []string) error {
	fs := flag.NewFlagSet("experiments", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	for _, id := range experimentList() {
		fmt.Println(id)
	}
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	storeKind, dbPath, artifactsDir := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(ctx, *storeKind, *dbPath, *artifactsDir)
	if err != nil {
		return err
	}
	defer client.Close()

	runs, err := client.ListRuns(ctx)
	if err != nil {
		return err
	}
	for _, runID := range runs {
		fmt.Println(runID)
	}
	return nil
}

func runFitness(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fitness", flag.ContinueOnError)
	storeKind, dbPath, artifactsDir := storeFlags(fs)
	runID := fs.String("run-id", "", "run id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("fitness requires -run-id")
	}

	client, err := newClient(ctx, *storeKind, *dbPath, *artifactsDir)
	if err != nil {
		return err
	}
	defer client.Close()

	history, err := client.FitnessHistory(ctx, *runID)
	if err != nil {
		return err
	}
	return stats.WriteFitnessHistoryCSV(os.Stdout, history)
}

func runDiagnostics(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("diagnostics", flag.ContinueOnError)
	storeKind, dbPath, artifactsDir := storeFlags(fs)
	runID := fs.String("run-id", "", "run id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("diagnostics requires -run-id")
	}

	client, err := newClient(ctx, *storeKind, *dbPath, *artifactsDir)
	if err != nil {
		return err
	}
	defer client.Close()

	diagnostics, err := client.Diagnostics(ctx, *runID)
	if err != nil {
		return err
	}
	return stats.WriteDiagnosticsCSV(os.Stdout, diagnostics)
}

func runSpecies(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("species", flag.ContinueOnError)
	storeKind, dbPath, artifactsDir := storeFlags(fs)
	runID := fs.String("run-id", "", "run id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("species requires -run-id")
	}

	client, err := newClient(ctx, *storeKind, *dbPath, *artifactsDir)
	if err != nil {
		return err
	}
	defer client.Close()

	history, err := client.SpeciesHistory(ctx, *runID)
	if err != nil {
		return err
	}
	return stats.WriteJSON(os.Stdout, history)
}

func runTop(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("top", flag.ContinueOnError)
	storeKind, dbPath, artifactsDir := storeFlags(fs)
	runID := fs.String("run-id", "", "run id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("top requires -run-id")
	}

	client, err := newClient(ctx, *storeKind, *dbPath, *artifactsDir)
	if err != nil {
		return err
	}
	defer client.Close()

	top, err := client.TopGenomes(ctx, *runID)
	if err != nil {
		return err
	}
	return stats.WriteJSON(os.Stdout, top)
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	storeKind, dbPath, artifactsDir := storeFlags(fs)
	runID := fs.String("run-id", "", "run id")
	format := fs.String("format", "csv", "export format: csv|json|xlsx")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("export requires -run-id")
	}

	client, err := newClient(ctx, *storeKind, *dbPath, *artifactsDir)
	if err != nil {
		return err
	}
	defer client.Close()

	path, err := client.Export(ctx, *runID, *format)
	if err != nil {
		return err
	}
	fmt.Printf("exported %s\n", path)
	return nil
}

func runProfiles(args []string) error {
	fs := flag.NewFlagSet("profiles", flag.ContinueOnError)
	profilesPath := fs.String("profiles", "profiles.ini", "profiles INI path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	profiles, err := loadProfiles(*profilesPath)
	if err != nil {
		return err
	}
	for _, p := range profiles {
		fmt.Printf("%s: experiment=%s generations=%d seed=%d\n", p.Name, p.Experiment, p.Generations, p.Seed)
	}
	return nil
}
