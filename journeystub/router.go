// Package journeystub is an in-process implementation of the Journey API that follows a
// contract exactly. It is what the suite's own tests run against, and it can be served
// locally to try out a contract before pointing the suite at a real deployment.
package journeystub

import (
	"net/http"
	"time"

	"github.com/journeyqa/journey-contract-tests/contract"
	"github.com/journeyqa/journey-contract-tests/framework"
	"github.com/journeyqa/journey-contract-tests/servicedef"

	"github.com/gin-gonic/gin"
)

type Config struct {
	BasePath       string // such as "/api"; empty means the routes are at the root
	NotFoundStatus int
	CreatedStatus  int
	IDField        string
	Contract       *contract.EntityContract
	Store          Store
	Logger         framework.Logger
}

func (c Config) withDefaults() Config {
	if c.NotFoundStatus == 0 {
		c.NotFoundStatus = http.StatusBadRequest
	}
	if c.CreatedStatus == 0 {
		c.CreatedStatus = servicedef.DefaultCreatedCode
	}
	if c.IDField == "" {
		c.IDField = servicedef.DefaultIDField
	}
	if c.Contract == nil {
		c.Contract = contract.Journey()
	}
	if c.Store == nil {
		c.Store = NewMemoryStore()
	}
	if c.Logger == nil {
		c.Logger = framework.NullLogger()
	}
	return c
}

type Router struct {
	engine  *gin.Engine
	handler *Handler
}

func NewRouter(config Config) *Router {
	gin.SetMode(gin.ReleaseMode)
	config = config.withDefaults()

	r := &Router{
		engine:  gin.New(),
		handler: NewHandler(config),
	}
	r.engine.Use(gin.Recovery())
	r.engine.Use(requestLogger(config.Logger))

	group := r.engine.Group(config.BasePath)
	{
		group.POST(servicedef.JourneysPath, r.handler.CreateJourney)
		group.PATCH(servicedef.JourneysPath, r.handler.UpdateJourney)
		group.GET(servicedef.JourneysPath+"/:"+servicedef.JourneyIDParam, r.handler.GetJourney)
	}
	return r
}

func (r *Router) Handler() http.Handler {
	return r.engine
}

func requestLogger(logger framework.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Printf("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(),
			time.Since(start).Round(time.Microsecond))
	}
}
