package journeystub

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"github.com/journeyqa/journey-contract-tests/contract"
	"github.com/journeyqa/journey-contract-tests/servicedef"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

var idPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

type Handler struct {
	config Config
}

func NewHandler(config Config) *Handler {
	return &Handler{config: config.withDefaults()}
}

// CreateJourney validates a complete journey and stores it under a new identifier.
func (h *Handler) CreateJourney(c *gin.Context) {
	doc, ok := h.readObject(c)
	if !ok {
		return
	}
	if violations := h.config.Contract.Check(doc, false); len(violations) != 0 {
		rejectViolations(c, violations)
		return
	}
	id := newID()
	record, err := contract.With(doc, h.config.IDField, ldvalue.String(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.config.Store.Put(id, record)
	writeValue(c, h.config.CreatedStatus, record)
}

// UpdateJourney applies the fields that are present in the body to an existing journey.
func (h *Handler) UpdateJourney(c *gin.Context) {
	doc, ok := h.readObject(c)
	if !ok {
		return
	}
	idValue := doc.GetByKey(servicedef.PatchJourneyIDKey)
	if !idValue.IsString() || !idPattern.MatchString(idValue.StringValue()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "journey_id must be a 24-character hexadecimal identifier"})
		return
	}
	id := idValue.StringValue()
	existing, err := h.config.Store.Get(id)
	if err != nil {
		c.JSON(h.config.NotFoundStatus, gin.H{"error": err.Error()})
		return
	}

	patch := contract.Without(doc, servicedef.PatchJourneyIDKey)
	if violations := h.config.Contract.Check(patch, true); len(violations) != 0 {
		rejectViolations(c, violations)
		return
	}
	updated := contract.Merge(existing, patch)
	if violations := h.config.Contract.Check(updated, false); len(violations) != 0 {
		rejectViolations(c, violations)
		return
	}
	h.config.Store.Put(id, updated)
	writeValue(c, http.StatusOK, updated)
}

func (h *Handler) GetJourney(c *gin.Context) {
	id := c.Param(servicedef.JourneyIDParam)
	if !idPattern.MatchString(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid journey id"})
		return
	}
	record, err := h.config.Store.Get(id)
	if err != nil {
		c.JSON(h.config.NotFoundStatus, gin.H{"error": err.Error()})
		return
	}
	writeValue(c, http.StatusOK, record)
}

func (h *Handler) readObject(c *gin.Context) (ldvalue.Value, bool) {
	data, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return ldvalue.Null(), false
	}
	var doc ldvalue.Value
	if err := json.Unmarshal(data, &doc); err != nil || doc.Type() != ldvalue.ObjectType {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object"})
		return ldvalue.Null(), false
	}
	return doc, true
}

func rejectViolations(c *gin.Context, violations []contract.Violation) {
	messages := make([]string, 0, len(violations))
	for _, v := range violations {
		messages = append(messages, v.String())
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "violations": messages})
}

func writeValue(c *gin.Context, status int, v ldvalue.Value) {
	c.Data(status, "application/json; charset=utf-8", []byte(v.JSONString()))
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:servicedef.JourneyIDLength]
}
