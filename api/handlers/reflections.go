package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vestalabs/habitat/reflection"
)

// ReflectionQuestion hands out a question, matched to an event type
// when one is given.
func (a *API) ReflectionQuestion(c *gin.Context) {
	event := reflection.EventType(c.Query("event"))
	var question string
	if event != "" {
		question = a.Reflections.QuestionForEvent(event)
	} else {
		question = a.Reflections.RandomQuestion()
	}
	c.JSON(http.StatusOK, gin.H{"question": question})
}

// RecordReflection stores a single answered question.
func (a *API) RecordReflection(c *gin.Context) {
	var req struct {
		EntityID     string         `json:"entity_id"`
		Question     string         `json:"question"`
		Answer       string         `json:"answer"`
		EventType    string         `json:"event_type"`
		EventDetails map[string]any `json:"event_details"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.EntityID == "" || req.Answer == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entity_id and answer are required"})
		return
	}

	entity, err := a.Store.LoadEntity(req.EntityID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if entity == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entity not found"})
		return
	}

	event := reflection.EventType(req.EventType)
	if event == "" {
		event = reflection.EventCustom
	}
	question := req.Question
	if question == "" {
		question = a.Reflections.QuestionForEvent(event)
	}

	r := reflection.NewReflection(entity, question, req.Answer, event, req.EventDetails)
	if err := a.Reflections.SaveReflection(r); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, r)
}

// CreateReflectionPair records a before/after answer pair around one
// event.
func (a *API) CreateReflectionPair(c *gin.Context) {
	var req struct {
		EntityID         string `json:"entity_id"`
		Question         string `json:"question"`
		BeforeAnswer     string `json:"before_answer"`
		AfterAnswer      string `json:"after_answer"`
		EventType        string `json:"event_type"`
		EventDescription string `json:"event_description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.EntityID == "" || req.BeforeAnswer == "" || req.AfterAnswer == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entity_id, before_answer and after_answer are required"})
		return
	}

	entity, err := a.Store.LoadEntity(req.EntityID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if entity == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entity not found"})
		return
	}

	event := reflection.EventType(req.EventType)
	if event == "" {
		event = reflection.EventCustom
	}
	question := req.Question
	if question == "" {
		question = a.Reflections.QuestionForEvent(event)
	}

	before := reflection.NewReflection(entity, question, req.BeforeAnswer, event, nil)
	after := reflection.NewReflection(entity, question, req.AfterAnswer, event, nil)
	for _, r := range []reflection.Reflection{before, after} {
		if err := a.Reflections.SaveReflection(r); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	pair, err := a.Reflections.CreatePair(entity.ID, entity.Name, question, before, after, req.EventDescription)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, pair)
}

// ReflectionPairs returns gallery comparison pairs, newest first.
func (a *API) ReflectionPairs(c *gin.Context) {
	pairs, err := a.Reflections.Pairs(queryInt(c, "limit", 20))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pairs": pairs, "count": len(pairs)})
}

// RecentReflections returns the latest individual reflections.
func (a *API) RecentReflections(c *gin.Context) {
	reflections, err := a.Reflections.RecentReflections(queryInt(c, "limit", 20))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reflections": reflections, "count": len(reflections)})
}

// ReflectionEvolution returns every answer an entity has given, oldest
// first.
func (a *API) ReflectionEvolution(c *gin.Context) {
	entityID := c.Param("entity_id")
	evolution, err := a.Reflections.EntityEvolution(entityID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"entity_id":   entityID,
		"reflections": evolution,
		"count":       len(evolution),
	})
}
