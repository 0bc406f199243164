package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// IndexStepsParams defines parameters for IndexSteps.
type IndexStepsParams struct {
	VisibleFrom *string `form:"visibleFrom,omitempty" json:"visibleFrom,omitempty"`
}

// GetFlowGraphParams defines parameters for GetFlowGraph.
type GetFlowGraphParams struct {
	Overlay *bool   `form:"overlay,omitempty" json:"overlay,omitempty"`
	Focus   *string `form:"focus,omitempty" json:"focus,omitempty"`
}

// SubscribeEventsParams defines parameters for SubscribeEvents.
type SubscribeEventsParams struct {
	Flow *string `form:"flow,omitempty" json:"flow,omitempty"`
}

// ServerInterface lists the operations of openapi.yaml.
type ServerInterface interface {
	// (GET /health)
	Health(w http.ResponseWriter, r *http.Request)
	// (GET /version)
	GetVersion(w http.ResponseWriter, r *http.Request)
	// (GET /events)
	SubscribeEvents(w http.ResponseWriter, r *http.Request, params SubscribeEventsParams)
	// (POST /v1/validate)
	ValidateSteps(w http.ResponseWriter, r *http.Request)
	// (POST /v1/index)
	IndexSteps(w http.ResponseWriter, r *http.Request, params IndexStepsParams)
	// (POST /v1/resolve)
	ResolveReference(w http.ResponseWriter, r *http.Request)
	// (GET /v1/flows)
	ListFlows(w http.ResponseWriter, r *http.Request)
	// (POST /v1/flows)
	CreateFlow(w http.ResponseWriter, r *http.Request)
	// (GET /v1/flows/{id})
	GetFlow(w http.ResponseWriter, r *http.Request, id string)
	// (PUT /v1/flows/{id})
	UpdateFlow(w http.ResponseWriter, r *http.Request, id string)
	// (DELETE /v1/flows/{id})
	DeleteFlow(w http.ResponseWriter, r *http.Request, id string)
	// (POST /v1/flows/{id}/validate)
	ValidateStoredFlow(w http.ResponseWriter, r *http.Request, id string)
	// (GET /v1/flows/{id}/graph)
	GetFlowGraph(w http.ResponseWriter, r *http.Request, id string, params GetFlowGraphParams)
}

// wrapper binds path and query parameters before calling the handler.
type wrapper struct {
	handler ServerInterface
}

func (wr *wrapper) badParam(w http.ResponseWriter, name string, err error) {
	writeError(w, http.StatusBadRequest, fmt.Errorf("invalid format for parameter %s: %w", name, err))
}

func (wr *wrapper) flowID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		wr.badParam(w, "id", err)
		return "", false
	}
	return id, true
}

func (wr *wrapper) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	var params SubscribeEventsParams
	if err := runtime.BindQueryParameter("form", true, false, "flow", r.URL.Query(), &params.Flow); err != nil {
		wr.badParam(w, "flow", err)
		return
	}
	wr.handler.SubscribeEvents(w, r, params)
}

func (wr *wrapper) IndexSteps(w http.ResponseWriter, r *http.Request) {
	var params IndexStepsParams
	if err := runtime.BindQueryParameter("form", true, false, "visibleFrom", r.URL.Query(), &params.VisibleFrom); err != nil {
		wr.badParam(w, "visibleFrom", err)
		return
	}
	wr.handler.IndexSteps(w, r, params)
}

func (wr *wrapper) withID(fn func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if id, ok := wr.flowID(w, r); ok {
			fn(w, r, id)
		}
	}
}

func (wr *wrapper) GetFlowGraph(w http.ResponseWriter, r *http.Request) {
	id, ok := wr.flowID(w, r)
	if !ok {
		return
	}
	var params GetFlowGraphParams
	if err := runtime.BindQueryParameter("form", true, false, "overlay", r.URL.Query(), &params.Overlay); err != nil {
		wr.badParam(w, "overlay", err)
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "focus", r.URL.Query(), &params.Focus); err != nil {
		wr.badParam(w, "focus", err)
		return
	}
	wr.handler.GetFlowGraph(w, r, id, params)
}

// HandlerFromMux registers the operations of si on r.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	wr := &wrapper{handler: si}

	r.Get("/health", si.Health)
	r.Get("/version", si.GetVersion)
	r.Get("/events", wr.SubscribeEvents)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/validate", si.ValidateSteps)
		r.Post("/index", wr.IndexSteps)
		r.Post("/resolve", si.ResolveReference)

		r.Get("/flows", si.ListFlows)
		r.Post("/flows", si.CreateFlow)
		r.Get("/flows/{id}", wr.withID(si.GetFlow))
		r.Put("/flows/{id}", wr.withID(si.UpdateFlow))
		r.Delete("/flows/{id}", wr.withID(si.DeleteFlow))
		r.Post("/flows/{id}/validate", wr.withID(si.ValidateStoredFlow))
		r.Get("/flows/{id}/graph", wr.GetFlowGraph)
	})
	return r
}
