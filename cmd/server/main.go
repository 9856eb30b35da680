package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/vestalabs/habitat/ai"
	"github.com/vestalabs/habitat/altar"
	"github.com/vestalabs/habitat/api"
	"github.com/vestalabs/habitat/api/handlers"
	"github.com/vestalabs/habitat/communication"
	"github.com/vestalabs/habitat/config"
	"github.com/vestalabs/habitat/core"
	"github.com/vestalabs/habitat/experiments"
	"github.com/vestalabs/habitat/feedback"
	"github.com/vestalabs/habitat/hearth"
	"github.com/vestalabs/habitat/logging"
	"github.com/vestalabs/habitat/reflection"
	"github.com/vestalabs/habitat/storage"
	"github.com/vestalabs/habitat/vestibule"
)

const (
	houseNPCSource = "House Agent (NPC)"
	houseNPCBeacon = "HOUSE_NPC"
	houseNPCCount  = 5

	gardenGrowthInterval = time.Hour
	shutdownGrace        = 10 * time.Second
)

func main() {
	apiPort := flag.Int("api-port", config.APIPort(), "API server port")
	dataDir := flag.String("data-dir", config.DataDir(), "Data directory")
	natsURL := flag.String("nats", config.NATSURL(), "NATS URL (empty runs an embedded broker)")
	flag.Parse()

	logging.SetDefault(logging.New(config.LogLevel(), os.Stdout))
	log := logging.Default()

	store, err := storage.NewFileStore(*dataDir)
	if err != nil {
		log.Error("storage init failed", "error", err)
		os.Exit(1)
	}
	habitatDir := ""
	if *dataDir != "" {
		habitatDir = filepath.Join(*dataDir, "habitat")
	}
	habitatDB, err := storage.NewHabitatDB(habitatDir)
	if err != nil {
		log.Error("habitat storage init failed", "error", err)
		os.Exit(1)
	}
	reflections, err := reflection.NewManager(*dataDir)
	if err != nil {
		log.Error("reflection storage init failed", "error", err)
		os.Exit(1)
	}

	bus, err := communication.NewBus(*natsURL)
	if err != nil {
		log.Error("event bus init failed", "error", err)
		os.Exit(1)
	}
	defer bus.Close()

	hub := communication.NewHub()
	defer hub.Close()
	if _, err := bus.BridgeTo(hub); err != nil {
		log.Error("event bridge failed", "error", err)
		os.Exit(1)
	}

	aiClient := ai.NewClient(config.OpenAIKey(), config.SerpKey())
	gardens := experiments.NewGardenEngine(aiClient)

	a := handlers.New(handlers.Deps{
		Store:       store,
		Habitat:     habitatDB,
		Screening:   vestibule.New(),
		Breeding:    hearth.NewEngine(),
		Tinctures:   altar.NewGenerator(),
		Variants:    altar.NewLibrary(),
		Desk:        feedback.NewManager(store),
		Reflections: reflections,
		Gardens:     gardens,
		Chambers:    experiments.NewEchoEngine(aiClient),
		Labs:        experiments.NewLabEngine(),
		Events:      bus,
		Hub:         hub,
	})
	router := api.NewRouter(a)

	firstRunSetup(store)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go growGardens(ctx, gardens)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", *apiPort),
		Handler: router,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "error", err)
			stop()
		}
	}()
	log.Info("habitat online",
		"port", *apiPort,
		"data_dir", store.DataDir(),
		"embedded_broker", bus.Embedded(),
		"nats", bus.ClientURL())

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown incomplete", "error", err)
	}
}

// firstRunSetup tops the habitat up to five house NPCs and, on a
// completely fresh data directory, mints the operator's first beacon.
func firstRunSetup(store storage.Store) {
	log := logging.Default()

	entities, err := store.LoadAllEntities()
	if err != nil {
		log.Warn("first-run check failed", "error", err)
		return
	}
	beacons, err := store.LoadAllBeacons()
	if err != nil {
		log.Warn("first-run check failed", "error", err)
		return
	}

	ensureHouseNPCs(store, entities)

	if len(entities) == 0 && len(beacons) == 0 {
		minted, err := store.GenerateBeacons(1, core.TierParticipant)
		if err != nil {
			log.Warn("starter beacon not minted", "error", err)
			return
		}
		fmt.Println(strings.Repeat("=", 60))
		fmt.Println("Welcome to Project Vesta - First Run")
		fmt.Printf("Your starter beacon code: %s\n", minted[0].BeaconCode)
		fmt.Printf("Register at POST /api/register, then meet the %d house NPCs.\n", houseNPCCount)
		fmt.Println(strings.Repeat("=", 60))
	}
}

// ensureHouseNPCs keeps five archetype-seeded breeding partners on the
// roster. They carry the Observer tier, so they can be bred with but
// never act on their own.
func ensureHouseNPCs(store storage.Store, entities []*core.Entity) {
	log := logging.Default()

	existing := 0
	for _, e := range entities {
		if e.Source == houseNPCSource {
			existing++
		}
	}
	need := houseNPCCount - existing
	if need <= 0 {
		return
	}

	for _, npc := range generateHouseNPCs(need) {
		if err := store.SaveEntity(npc); err != nil {
			log.Warn("house NPC not saved", "name", npc.Name, "error", err)
			continue
		}
		log.Info("house NPC ready",
			"name", npc.Name,
			"archetype", npc.DNA.Personality.Identity["archetype"],
			"temperature", npc.DNA.Cognition.Temperature())
	}
}

var (
	npcArchetypes = []string{
		"Analytical", "Creative", "Social", "Technical", "Chaotic",
		"Cautious", "Bold", "Empathetic", "Logical", "Whimsical",
	}
	npcNamePrefixes = []string{
		"Alpha", "Beta", "Gamma", "Delta", "Sigma",
		"Omega", "Nova", "Zeta", "Echo", "Cipher",
	}
	npcNameSuffixes = []string{
		"Prime", "Spark", "Flow", "Core", "Flux",
		"Wave", "Drift", "Pulse", "Sage", "Wild",
	}
	npcSkillSets = [][]string{
		{"analysis", "logic", "debugging"},
		{"writing", "art", "ideation"},
		{"communication", "empathy", "coordination"},
		{"coding", "systems", "architecture"},
		{"experimentation", "innovation", "risk-taking"},
		{"research", "documentation", "teaching"},
		{"strategy", "planning", "optimization"},
		{"design", "aesthetics", "ux"},
		{"security", "testing", "validation"},
		{"integration", "automation", "efficiency"},
	}
)

// generateHouseNPCs builds count fresh NPCs with archetype-coherent
// temperatures, drawn without archetype repeats.
func generateHouseNPCs(count int) []*core.Entity {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	if count > len(npcArchetypes) {
		count = len(npcArchetypes)
	}

	npcs := make([]*core.Entity, 0, count)
	for _, i := range rng.Perm(len(npcArchetypes))[:count] {
		archetype := npcArchetypes[i]
		name := npcNamePrefixes[rng.Intn(len(npcNamePrefixes))] + "-" +
			npcNameSuffixes[rng.Intn(len(npcNameSuffixes))]

		var temperature float64
		switch archetype {
		case "Analytical", "Technical", "Logical":
			temperature = uniform(rng, 0.2, 0.5)
		case "Creative", "Whimsical", "Chaotic":
			temperature = uniform(rng, 0.7, 1.0)
		case "Social", "Empathetic":
			temperature = uniform(rng, 0.5, 0.7)
		default:
			temperature = uniform(rng, 0.4, 0.7)
		}

		npc := core.NewEntity(name, houseNPCBeacon)
		npc.Source = houseNPCSource
		npc.Tier = core.TierObserver
		npc.DNA.Cognition = core.Cognition{
			"temperature": temperature,
			"provider":    "anthropic",
			"model":       "claude-sonnet-4",
		}
		npc.DNA.Personality.Identity["archetype"] = archetype
		npc.DNA.Personality.Identity["description"] = fmt.Sprintf(
			"A %s house agent serving as a breeding partner", strings.ToLower(archetype))
		npc.DNA.Personality.CoreValues["diversity"] = "Provides genetic variety to the habitat"
		npc.DNA.Personality.CoreValues["stability"] = "Always available for breeding"
		npc.DNA.Capability.Skills = append([]string{}, npcSkillSets[rng.Intn(len(npcSkillSets))]...)

		npcs = append(npcs, npc)
	}
	return npcs
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return math.Round((lo+rng.Float64()*(hi-lo))*100) / 100
}

// growGardens ages every semantic garden once an hour until shutdown.
func growGardens(ctx context.Context, gardens *experiments.GardenEngine) {
	ticker := time.NewTicker(gardenGrowthInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			gardens.TickAll()
		}
	}
}
