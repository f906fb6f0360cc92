package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/plus3/loom/ecs"
)

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 10000, "The initial number of entities to create.")
	systemCount := flag.Int("systems", 50, "The number of randomized systems to register.")
	strategyName := flag.String("strategy", "parallel", "Executor strategy: sequential or parallel.")
	workers := flag.Int("workers", 0, "Worker cap for the parallel strategy (0 = unbounded).")
	seed := flag.Int64("seed", 1, "Seed for system and entity generation.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	var strategy ecs.Strategy
	switch *strategyName {
	case "sequential":
		strategy = ecs.Sequential
	case "parallel":
		strategy = ecs.Parallel
	default:
		log.Fatalf("unknown strategy %q", *strategyName)
	}

	log.Println("Starting scheduler stress test...")

	rng := rand.New(rand.NewSource(*seed))

	registry := ecs.NewComponentRegistry()
	registerStressComponents(registry)
	storage := ecs.NewStorage(registry)
	tracker := storage.EnableAccessTracking()

	scheduler := ecs.NewScheduler(storage,
		ecs.WithStrategy(strategy), ecs.WithWorkers(*workers))

	specs := randomSystems(rng, *systemCount)
	for i, spec := range specs {
		name := fmt.Sprintf("%s-%d", spec.name, i)
		if _, err := scheduler.Register(spec.system, ecs.WithName(name)); err != nil {
			log.Fatalf("failed to register %s: %v", name, err)
		}
	}

	log.Printf("Populating storage with %d entities...\n", *entityCount)
	for i := 0; i < *entityCount; i++ {
		spawnRandomEntity(storage, rng)
	}
	log.Println("Population complete.")

	graph := scheduler.Graph()
	report := &Report{
		Duration:       *duration,
		Entities:       *entityCount,
		Systems:        len(specs),
		Strategy:       strategy.String(),
		Workers:        *workers,
		Edges:          len(graph.Edges),
		Levels:         len(graph.Levels),
		GCPauseMetrics: *gcPauseMetrics,
		UpdateTime: Stats{
			Samples: make([]time.Duration, 0),
		},
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	log.Printf("Running for %s under the %s strategy...\n", *duration, strategy)

	startTime := time.Now()
	lastFrameTime := time.Now()
	var totalUpdates int64

	for time.Since(startTime) < *duration {
		deltaTime := time.Since(lastFrameTime)
		lastFrameTime = time.Now()

		updateStart := time.Now()
		if err := scheduler.Tick(float64(deltaTime) / float64(time.Second)); err != nil {
			log.Fatalf("tick failed: %v", err)
		}
		updateDuration := time.Since(updateStart)

		report.UpdateTime.Samples = append(report.UpdateTime.Samples, updateDuration)
		totalUpdates++
	}

	report.TotalTime = time.Since(startTime)
	report.TotalUpdates = totalUpdates
	report.UpdateTime.Finalize()
	report.MaxConcurrent = tracker.MaxConcurrent()
	report.Violations = len(tracker.Violations())
	runtime.ReadMemStats(&report.MemStatsEnd)

	log.Println("Simulation finished.")

	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}
	fmt.Println("--- End of Report ---")

	if report.Violations > 0 {
		for _, v := range tracker.Violations() {
			log.Printf("violation: %s overlapped %s on %v", v.SystemA, v.SystemB, v.Partitions)
		}
		log.Fatalf("detected %d access violations", report.Violations)
	}

	log.Println("Stress test complete; no access violations detected.")
}
