package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/domain/aggregates/request"
	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/domain/entities/recipientconfig"
	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/domain/entities/transitionlog"
	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/services"
	"github.com/fatimahitawala/Transition-Services-sub002/pkg/application"
	"github.com/fatimahitawala/Transition-Services-sub002/pkg/middleware"
)

type TransitionAPIController struct {
	app       application.Application
	lifecycle *services.LifecycleService
	resolver  *services.RecipientResolver
	configs   *services.RecipientConfigService
	basePath  string
}

func NewTransitionAPIController(app application.Application) application.Controller {
	return &TransitionAPIController{
		app:       app,
		lifecycle: app.Service(services.LifecycleService{}).(*services.LifecycleService),
		resolver:  app.Service(services.RecipientResolver{}).(*services.RecipientResolver),
		configs:   app.Service(services.RecipientConfigService{}).(*services.RecipientConfigService),
		basePath:  "/transition/api",
	}
}

func (c *TransitionAPIController) Key() string {
	return c.basePath
}

func (c *TransitionAPIController) Register(r *mux.Router) {
	readRouter := r.PathPrefix(c.basePath).Subrouter()
	readRouter.Use(middleware.WithTransaction())
	readRouter.HandleFunc("/requests", c.List).Methods(http.MethodGet)
	readRouter.HandleFunc("/requests/{id}", c.GetByID).Methods(http.MethodGet)
	readRouter.HandleFunc("/requests/{id}/history", c.History).Methods(http.MethodGet)
	readRouter.HandleFunc("/recipients:preview", c.PreviewRecipients).Methods(http.MethodGet)
	readRouter.HandleFunc("/recipient-config", c.GetRecipientConfig).Methods(http.MethodGet)
	readRouter.HandleFunc("/recipient-config/history", c.RecipientConfigHistory).Methods(http.MethodGet)

	writeRouter := r.PathPrefix(c.basePath).Subrouter()
	writeRouter.Use(middleware.WithTransaction())
	writeRouter.HandleFunc("/requests", c.Submit).Methods(http.MethodPost)
	writeRouter.HandleFunc("/requests/{id}/transition", c.Transition).Methods(http.MethodPost)
	writeRouter.HandleFunc("/requests/{id}/detail", c.AmendDetail).Methods(http.MethodPut)
	writeRouter.HandleFunc("/recipient-config", c.UpsertRecipientConfig).Methods(http.MethodPut)
}

type scopePayload struct {
	MasterCommunityID uuid.UUID `json:"master_community_id"`
	CommunityID       uuid.UUID `json:"community_id"`
	TowerID           uuid.UUID `json:"tower_id"`
}

func (p scopePayload) toScope() recipientconfig.Scope {
	return recipientconfig.Scope{
		MasterCommunityID: p.MasterCommunityID,
		CommunityID:       p.CommunityID,
		TowerID:           p.TowerID,
	}
}

type submitPayload struct {
	Kind           request.Kind     `json:"kind"`
	Category       request.Category `json:"category"`
	UnitID         uuid.UUID        `json:"unit_id"`
	RequesterID    uuid.UUID        `json:"requester_id"`
	Scope          scopePayload     `json:"scope"`
	PriorRequestID uuid.UUID        `json:"prior_request_id"`
	Detail         json.RawMessage  `json:"detail"`
}

type transitionPayload struct {
	Status    request.Status    `json:"status"`
	ActorID   uuid.UUID         `json:"actor_id"`
	ActorType request.ActorType `json:"actor_type"`
	Remark    string            `json:"remark"`
}

type amendPayload struct {
	Category  request.Category  `json:"category"`
	ActorID   uuid.UUID         `json:"actor_id"`
	ActorType request.ActorType `json:"actor_type"`
	Detail    json.RawMessage   `json:"detail"`
}

func decodeDetail(category request.Category, raw json.RawMessage) (request.Detail, error) {
	if len(raw) == 0 {
		return nil, request.NewValidationError("detail", "detail payload is required")
	}
	envelope, err := json.Marshal(map[string]json.RawMessage{
		"category": json.RawMessage(strconv.Quote(string(category))),
		"data":     raw,
	})
	if err != nil {
		return nil, err
	}
	return request.UnmarshalDetail(envelope)
}

func (c *TransitionAPIController) Submit(w http.ResponseWriter, r *http.Request) {
	var payload submitPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "TRANSITION_INVALID_JSON", "invalid json")
		return
	}
	if !payload.Kind.IsValid() {
		writeValidationError(w, r, "kind must be move-in, move-out or account-renewal", map[string]string{"kind": "invalid"})
		return
	}
	if payload.UnitID == uuid.Nil || payload.RequesterID == uuid.Nil || payload.Scope.MasterCommunityID == uuid.Nil {
		writeValidationError(w, r, "unit_id, requester_id and scope.master_community_id are required", nil)
		return
	}

	detail, err := decodeDetail(payload.Category, payload.Detail)
	if err != nil {
		writeValidationError(w, r, err.Error(), nil)
		return
	}

	created, err := c.lifecycle.Submit(r.Context(), &services.SubmitDTO{
		Kind:           payload.Kind,
		UnitID:         payload.UnitID,
		RequesterID:    payload.RequesterID,
		Scope:          payload.Scope.toScope(),
		Detail:         detail,
		PriorRequestID: payload.PriorRequestID,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, requestToResponse(created))
}

func (c *TransitionAPIController) List(w http.ResponseWriter, r *http.Request) {
	params := &request.FindParams{Limit: 20}
	q := r.URL.Query()
	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 100 {
			params.Limit = parsed
		}
	}
	if v := strings.TrimSpace(q.Get("offset")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			params.Offset = parsed
		}
	}
	if v := strings.TrimSpace(q.Get("status")); v != "" {
		status, ok := request.NormalizeStatus(v)
		if !ok {
			writeValidationError(w, r, "unknown status filter", map[string]string{"status": "invalid"})
			return
		}
		params.Status = status
	}
	if v := strings.TrimSpace(q.Get("kind")); v != "" {
		params.Kind = request.Kind(v)
	}
	if v := strings.TrimSpace(q.Get("unit_id")); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeValidationError(w, r, "unit_id must be a uuid", map[string]string{"unit_id": "invalid"})
			return
		}
		params.UnitID = id
	}

	items, err := c.lifecycle.GetPaginated(r.Context(), params)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	total, err := c.lifecycle.Count(r.Context(), params)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, requestToResponse(item))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": out,
		"total": total,
	})
}

func (c *TransitionAPIController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDVar(w, r)
	if !ok {
		return
	}
	entity, err := c.lifecycle.GetByID(r.Context(), id)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requestToResponse(entity))
}

func (c *TransitionAPIController) Transition(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDVar(w, r)
	if !ok {
		return
	}

	var payload transitionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "TRANSITION_INVALID_JSON", "invalid json")
		return
	}
	status, okStatus := request.NormalizeStatus(string(payload.Status))
	if !okStatus {
		writeValidationError(w, r, "unknown requested status", map[string]string{"status": "invalid"})
		return
	}

	updated, err := c.lifecycle.Transition(r.Context(), id, status, request.Actor{
		ID:   payload.ActorID,
		Type: payload.ActorType,
	}, payload.Remark)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requestToResponse(updated))
}

func (c *TransitionAPIController) AmendDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDVar(w, r)
	if !ok {
		return
	}

	var payload amendPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "TRANSITION_INVALID_JSON", "invalid json")
		return
	}
	detail, err := decodeDetail(payload.Category, payload.Detail)
	if err != nil {
		writeValidationError(w, r, err.Error(), nil)
		return
	}

	actorType := payload.ActorType
	if actorType == "" {
		actorType = request.ActorUser
	}
	updated, err := c.lifecycle.AmendDetail(r.Context(), id, detail, request.Actor{
		ID:   payload.ActorID,
		Type: actorType,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requestToResponse(updated))
}

func (c *TransitionAPIController) History(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDVar(w, r)
	if !ok {
		return
	}
	entries, err := c.lifecycle.History(r.Context(), id)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	out := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		out = append(out, logEntryToResponse(entry))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (c *TransitionAPIController) PreviewRecipients(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category := request.Category(strings.TrimSpace(q.Get("category")))
	kind := request.Kind(strings.TrimSpace(q.Get("kind")))
	if !kind.IsValid() {
		writeValidationError(w, r, "kind must be move-in, move-out or account-renewal", map[string]string{"kind": "invalid"})
		return
	}

	scope, ok := parseScopeQuery(w, r)
	if !ok {
		return
	}
	var unitID uuid.UUID
	if v := strings.TrimSpace(q.Get("unit_id")); v != "" {
		parsed, err := uuid.Parse(v)
		if err != nil {
			writeValidationError(w, r, "unit_id must be a uuid", map[string]string{"unit_id": "invalid"})
			return
		}
		unitID = parsed
	}

	recipients, err := c.resolver.Resolve(r.Context(), &services.ResolveQuery{
		Category:       category,
		Scope:          scope,
		Kind:           kind,
		RequesterEmail: strings.TrimSpace(q.Get("requester_email")),
		UnitID:         unitID,
	})
	if err != nil {
		if errors.Is(err, services.ErrNoRecipientsConfigured) {
			writeAPIError(w, r, http.StatusNotFound, "TRANSITION_NO_RECIPIENTS", "no recipients configured for scope")
			return
		}
		c.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"primary": recipients.Primary,
		"cc":      recipients.CC,
	})
}

func (c *TransitionAPIController) UpsertRecipientConfig(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Scope scopePayload `json:"scope"`
		MIP   []string     `json:"mip"`
		MOP   []string     `json:"mop"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "TRANSITION_INVALID_JSON", "invalid json")
		return
	}
	dto := services.UpsertRecipientConfigDTO{
		MasterCommunityID: payload.Scope.MasterCommunityID,
		CommunityID:       payload.Scope.CommunityID,
		TowerID:           payload.Scope.TowerID,
		MIP:               payload.MIP,
		MOP:               payload.MOP,
	}

	if errs, ok := dto.Ok(); !ok {
		writeValidationError(w, r, "validation failed", errs.Fields())
		return
	}

	saved, err := c.configs.Upsert(r.Context(), &dto)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, configToResponse(saved))
}

func (c *TransitionAPIController) GetRecipientConfig(w http.ResponseWriter, r *http.Request) {
	scope, ok := parseScopeQuery(w, r)
	if !ok {
		return
	}
	cfg, err := c.configs.GetByScope(r.Context(), scope)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, configToResponse(cfg))
}

func (c *TransitionAPIController) RecipientConfigHistory(w http.ResponseWriter, r *http.Request) {
	scope, ok := parseScopeQuery(w, r)
	if !ok {
		return
	}
	templateType := recipientconfig.TemplateType(strings.TrimSpace(r.URL.Query().Get("template_type")))
	if templateType == "" {
		templateType = recipientconfig.TemplateRecipientMail
	}

	snapshots, err := c.configs.HistoryForScope(r.Context(), scope, templateType)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	out := make([]map[string]any, 0, len(snapshots))
	for _, s := range snapshots {
		out = append(out, map[string]any{
			"id":            s.ID,
			"template_type": s.TemplateType,
			"mip":           s.MIP,
			"mop":           s.MOP,
			"created_at":    s.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (c *TransitionAPIController) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *request.ValidationError
	var itErr *request.InvalidTransitionError
	switch {
	case errors.As(err, &vErr):
		writeValidationError(w, r, vErr.Message, map[string]string{vErr.Field: vErr.Message})
	case errors.As(err, &itErr):
		writeAPIError(w, r, http.StatusConflict, "TRANSITION_INVALID_TRANSITION", itErr.Error())
	case errors.Is(err, request.ErrConcurrentModification):
		writeAPIError(w, r, http.StatusConflict, "TRANSITION_CONFLICT_RETRY", "request was modified concurrently, retry")
	case errors.Is(err, request.ErrNotFound):
		writeAPIError(w, r, http.StatusNotFound, "TRANSITION_NOT_FOUND", "transition request not found")
	case errors.Is(err, recipientconfig.ErrNotFound):
		writeAPIError(w, r, http.StatusNotFound, "TRANSITION_CONFIG_NOT_FOUND", "recipient configuration not found")
	default:
		writeAPIError(w, r, http.StatusInternalServerError, "TRANSITION_INTERNAL", "internal error")
	}
}

func parseIDVar(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusNotFound, "TRANSITION_NOT_FOUND", "transition request not found")
		return uuid.Nil, false
	}
	return id, true
}

func parseScopeQuery(w http.ResponseWriter, r *http.Request) (recipientconfig.Scope, bool) {
	q := r.URL.Query()
	var scope recipientconfig.Scope

	master := strings.TrimSpace(q.Get("master_community_id"))
	if master == "" {
		writeValidationError(w, r, "master_community_id is required", map[string]string{"master_community_id": "required"})
		return scope, false
	}
	parsed, err := uuid.Parse(master)
	if err != nil {
		writeValidationError(w, r, "master_community_id must be a uuid", map[string]string{"master_community_id": "invalid"})
		return scope, false
	}
	scope.MasterCommunityID = parsed

	for param, target := range map[string]*uuid.UUID{
		"community_id": &scope.CommunityID,
		"tower_id":     &scope.TowerID,
	} {
		if v := strings.TrimSpace(q.Get(param)); v != "" {
			parsed, err := uuid.Parse(v)
			if err != nil {
				writeValidationError(w, r, param+" must be a uuid", map[string]string{param: "invalid"})
				return scope, false
			}
			*target = parsed
		}
	}
	return scope, true
}

func requestToResponse(entity *request.Request) map[string]any {
	scope := entity.Scope()
	out := map[string]any{
		"id":            entity.ID(),
		"kind":          entity.Kind(),
		"category":      entity.Category(),
		"unit_id":       entity.UnitID(),
		"requester_id":  entity.RequesterID(),
		"status":        entity.Status(),
		"auto_approved": entity.AutoApproved(),
		"scope": map[string]any{
			"master_community_id": scope.MasterCommunityID,
			"community_id":        nilIfZero(scope.CommunityID),
			"tower_id":            nilIfZero(scope.TowerID),
		},
		"detail":     entity.Detail(),
		"created_at": entity.CreatedAt().Format(time.RFC3339),
		"updated_at": entity.UpdatedAt().Format(time.RFC3339),
	}
	if entity.HasPriorRequest() {
		out["prior_request_id"] = entity.PriorRequestID()
	}
	return out
}

func logEntryToResponse(entry *transitionlog.Entry) map[string]any {
	out := map[string]any{
		"id":         entry.ID,
		"request_id": entry.RequestID,
		"to":         entry.ToStatus,
		"actor_type": entry.ActorType,
		"remark":     entry.Remark,
		"created_at": entry.CreatedAt.Format(time.RFC3339Nano),
	}
	if entry.FromStatus != "" {
		out["from"] = entry.FromStatus
	}
	if entry.ActorID != uuid.Nil {
		out["actor_id"] = entry.ActorID
	}
	return out
}

func configToResponse(cfg recipientconfig.Config) map[string]any {
	scope := cfg.Scope()
	return map[string]any{
		"id":                  cfg.ID(),
		"master_community_id": scope.MasterCommunityID,
		"community_id":        nilIfZero(scope.CommunityID),
		"tower_id":            nilIfZero(scope.TowerID),
		"mip":                 cfg.MIP(),
		"mop":                 cfg.MOP(),
		"updated_at":          cfg.UpdatedAt().Format(time.RFC3339),
	}
}

func nilIfZero(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id
}
