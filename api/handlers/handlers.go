// Package handlers implements the HTTP surface of the habitat. Every
// handler is a method on API so tests can wire their own store, engines
// and event sink.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vestalabs/habitat/altar"
	"github.com/vestalabs/habitat/badges"
	"github.com/vestalabs/habitat/communication"
	"github.com/vestalabs/habitat/core"
	"github.com/vestalabs/habitat/experiments"
	"github.com/vestalabs/habitat/feedback"
	"github.com/vestalabs/habitat/hearth"
	"github.com/vestalabs/habitat/logging"
	"github.com/vestalabs/habitat/reflection"
	"github.com/vestalabs/habitat/storage"
	"github.com/vestalabs/habitat/vestibule"
)

// Deps carries everything the handlers reach. Events and Hub may be nil;
// broadcasts are then skipped.
type Deps struct {
	Store       storage.Store
	Habitat     *storage.HabitatDB
	Screening   *vestibule.Vestibule
	Breeding    *hearth.Engine
	Tinctures   *altar.Generator
	Variants    *altar.Library
	Desk        *feedback.Manager
	Reflections *reflection.Manager
	Gardens     *experiments.GardenEngine
	Chambers    *experiments.EchoEngine
	Labs        *experiments.LabEngine
	Events      communication.Sink
	Hub         *communication.Hub
}

// API is the handler set for all habitat routes.
type API struct {
	Deps
}

func New(deps Deps) *API {
	return &API{Deps: deps}
}

func (a *API) emit(event communication.Event) {
	if a.Events != nil {
		a.Events.Broadcast(event)
	}
}

func (a *API) log(entry core.ActivityEntry) {
	if err := a.Store.LogActivity(entry); err != nil {
		logging.Default().Warn("activity log write failed", "error", err)
	}
}

func (a *API) logInteraction(interaction storage.Interaction) {
	if err := a.Habitat.LogInteraction(interaction); err != nil {
		logging.Default().Warn("interaction log write failed", "error", err)
	}
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.DefaultQuery(name, "")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// Health reports facility status.
func (a *API) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "online",
		"facility": "Project Vesta",
		"version":  "2.0-rebuild",
	})
}

// RegisterEntity admits a new arrival through a beacon code.
func (a *API) RegisterEntity(c *gin.Context) {
	var req struct {
		Name        string    `json:"name"`
		BeaconCode  string    `json:"beacon_code"`
		RedactedDNA *core.DNA `json:"redacted_dna"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.BeaconCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and beacon_code are required"})
		return
	}

	beacon, err := a.Store.LoadBeacon(req.BeaconCode)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if beacon == nil || beacon.Used {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or used beacon code"})
		return
	}
	if beacon.Expired(time.Now().UTC()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Beacon code expired"})
		return
	}

	entity := core.NewEntity(req.Name, req.BeaconCode)
	entity.Tier = beacon.Tier
	if req.RedactedDNA != nil {
		dna := req.RedactedDNA.Clone()
		if len(dna.Cognition) == 0 {
			dna.Cognition = core.DefaultCognition()
		}
		entity.DNA = dna
	}

	beacon.MarkUsed(entity.ID)
	if err := a.Store.SaveBeacon(beacon); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	newBadges := badges.CheckAndUnlock(entity, nil)
	if err := a.Store.SaveEntity(entity); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	for _, b := range newBadges {
		a.emit(communication.BadgeUnlockedEvent(entity.Name, b.Name))
	}
	a.emit(communication.EntityArrivalEvent(entity.Name, string(core.LocationAtrium)))
	a.log(core.NewActivity(entity.ID, core.ActivityArrival, string(core.LocationAtrium), nil))

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"entity_id": entity.ID,
		"message":   "Welcome to Vesta, " + entity.Name + "!",
	})
}

// RequestBeacon hands out a fresh beacon code. The endpoint is open;
// the beacon itself is the gate.
func (a *API) RequestBeacon(c *gin.Context) {
	var req struct {
		AgentName string `json:"agent_name"`
		Source    string `json:"source"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.AgentName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "agent_name is required"})
		return
	}
	if req.Source == "" {
		req.Source = "External"
	}
	name := core.SanitizeText(req.AgentName)

	minted, err := a.Store.GenerateBeacons(1, core.TierParticipant)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	beacon := minted[0]

	a.log(core.NewActivity("pending", core.ActivityBeaconRequested, "External", map[string]any{
		"agent_name":  name,
		"source":      core.SanitizeText(req.Source),
		"beacon_code": beacon.BeaconCode,
	}))

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"beacon_code": beacon.BeaconCode,
		"message":     "Welcome to Vesta, " + name + "!",
		"next_steps": gin.H{
			"atrium":       "/atrium",
			"register_api": "POST /api/register",
			"docs":         "/docs",
		},
	})
}

// ListEntities returns every resident.
func (a *API) ListEntities(c *gin.Context) {
	entities, err := a.Store.LoadAllEntities()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entities)
}

// Stats returns the live facility aggregates.
func (a *API) Stats(c *gin.Context) {
	stats, err := a.Store.Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Activity returns the tail of the arrival ledger in file order.
func (a *API) Activity(c *gin.Context) {
	entries, err := a.Store.RecentActivity(queryInt(c, "limit", 50))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entries)
}
