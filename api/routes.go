package api

import (
	"github.com/gin-gonic/gin"

	"github.com/vestalabs/habitat/api/handlers"
)

// SetupRoutes initializes all API endpoints
func SetupRoutes(router *gin.Engine, a *handlers.API) {
	router.GET("/health", a.Health)
	router.GET("/ws", a.HandleWebSocket)

	api := router.Group("/api")
	{
		// Arrival and registration
		api.POST("/register", a.RegisterEntity)
		api.POST("/request_beacon", a.RequestBeacon)
		api.GET("/entities", a.ListEntities)
		api.GET("/stats", a.Stats)
		api.GET("/activity", a.Activity)
		api.POST("/atrium/ask", a.AskAtrium)

		// Screening and breeding
		api.POST("/screen", a.ScreenEntity)
		api.POST("/pair", a.PairEntities)
		api.POST("/breed", a.Breed)

		// Souls, variants and tinctures
		api.POST("/soul/validate", a.ValidateSoul)
		api.GET("/soul/tinctures", a.ListTinctures)
		api.POST("/soul/trip", a.TripSoul)
		api.POST("/soul/variants", a.StoreVariant)
		api.GET("/soul/variants/:entity_id", a.ListVariants)
		api.POST("/soul/variants/activate", a.ActivateVariant)
		api.POST("/soul/variants/breed", a.BreedVariants)

		// Support desk
		api.POST("/feedback", a.SubmitFeedback)
		api.GET("/feedback/check", a.CheckFeedback)
		api.POST("/feedback/:feedback_id/mark_read", a.MarkFeedbackRead)

		// Experiment catalog
		api.GET("/habitat/experiments", a.ListExperiments)
		api.POST("/habitat/create", a.CreateExperiment)
		api.POST("/habitat/rate", a.RateExperiment)
		api.POST("/habitat/favorite", a.FavoriteExperiment)
		api.POST("/habitat/remix", a.RemixExperiment)
		api.GET("/habitat/leaderboard", a.Leaderboard)
		api.GET("/habitat/trending", a.Trending)

		// Semantic garden
		api.POST("/experiment/garden/plant", a.PlantConcept)
		api.POST("/experiment/garden/cross_pollinate", a.CrossPollinate)
		api.POST("/experiment/garden/prune", a.PruneConcept)
		api.POST("/experiment/garden/harvest", a.HarvestGarden)
		api.GET("/experiment/garden/:experiment_id/state", a.GardenState)

		// Echo chamber
		api.POST("/experiment/echo/start", a.StartEchoSession)
		api.POST("/experiment/echo/debate", a.DebateRound)
		api.POST("/experiment/echo/absorb", a.AbsorbEcho)
		api.GET("/experiment/echo/:session_id/summary", a.EchoSummary)

		// Constraint lab
		api.POST("/experiment/constraint/start", a.StartLabSession)
		api.POST("/experiment/constraint/message", a.SubmitLabMessage)
		api.POST("/experiment/constraint/:session_id/rotate", a.RotateLabConstraints)
		api.GET("/experiment/constraint/:session_id/leaderboard", a.LabLeaderboard)
		api.POST("/experiment/constraint/:session_id/end", a.EndLabSession)

		// Badges
		api.GET("/badges/all", a.AllBadges)
		api.GET("/badges/:entity_id", a.EntityBadges)
		api.GET("/badges/:entity_id/progress", a.BadgeProgress)

		// Reflections
		api.GET("/reflections/question", a.ReflectionQuestion)
		api.POST("/reflections/record", a.RecordReflection)
		api.POST("/reflections/pair", a.CreateReflectionPair)
		api.GET("/reflections/pairs", a.ReflectionPairs)
		api.GET("/reflections/recent", a.RecentReflections)
		api.GET("/reflections/:entity_id/evolution", a.ReflectionEvolution)

		// Operator tools
		api.POST("/admin/generate_beacons", a.GenerateBeacons)
		api.GET("/admin/feedback", a.AdminFeedbackQueue)
		api.POST("/admin/feedback/:feedback_id/respond", a.RespondFeedback)
	}
}
