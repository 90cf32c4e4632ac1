package services_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/domain/aggregates/request"
	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/domain/entities/recipientconfig"
	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/domain/entities/transitionlog"
	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/services"
	"github.com/fatimahitawala/Transition-Services-sub002/pkg/composables"
	"github.com/fatimahitawala/Transition-Services-sub002/pkg/outbox"
	"github.com/fatimahitawala/Transition-Services-sub002/pkg/repo"
)

// stubTx satisfies pgx.Tx through embedding; no method is ever called
// because the repositories under test are in-memory. Placing it in the
// context makes the transaction composables run callbacks directly.
type stubTx struct {
	pgx.Tx
}

var testTenantID = uuid.MustParse("0e7c180f-1f2d-4f72-9c1a-6c50d06a62b1")

func testContext() context.Context {
	ctx := composables.WithTx(context.Background(), stubTx{})
	return composables.WithTenantID(ctx, testTenantID)
}

func testScope() recipientconfig.Scope {
	return recipientconfig.Scope{
		MasterCommunityID: uuid.MustParse("6a0c4a44-93dc-4dbb-88a7-8c5acf7de2de"),
		CommunityID:       uuid.MustParse("b01cbb16-87b1-43aa-bf77-3a2a9eb72d37"),
		TowerID:           uuid.MustParse("a5f1f9e8-0a5c-4f7f-94a2-5e3b3a0afbcf"),
	}
}

type mockRequestRepo struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*request.Request

	createErr error
	updateErr error
}

func newMockRequestRepo() *mockRequestRepo {
	return &mockRequestRepo{requests: make(map[uuid.UUID]*request.Request)}
}

func (m *mockRequestRepo) put(req *request.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[req.ID()] = req
}

func (m *mockRequestRepo) Count(ctx context.Context, params *request.FindParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.requests)), nil
}

func (m *mockRequestRepo) GetPaginated(ctx context.Context, params *request.FindParams) ([]*request.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*request.Request, 0, len(m.requests))
	for _, req := range m.requests {
		if params != nil && params.Status != "" && req.Status() != params.Status {
			continue
		}
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt().Before(out[j].CreatedAt())
	})
	return out, nil
}

func (m *mockRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*request.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return nil, request.ErrNotFound
	}
	return req, nil
}

func (m *mockRequestRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*request.Request, error) {
	return m.GetByID(ctx, id)
}

func (m *mockRequestRepo) Create(ctx context.Context, req *request.Request) (*request.Request, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.put(req)
	return req, nil
}

func (m *mockRequestRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to request.Status, autoApproved bool) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return request.ErrNotFound
	}
	if req.Status() != from {
		return request.ErrConcurrentModification
	}
	updated := req.WithStatus(to)
	if autoApproved {
		updated = updated.MarkAutoApproved()
	}
	m.requests[id] = updated
	return nil
}

func (m *mockRequestRepo) UpdateDetail(ctx context.Context, id uuid.UUID, detail request.Detail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return request.ErrNotFound
	}
	m.requests[id] = req.WithDetail(detail)
	return nil
}

type mockLogRepo struct {
	mu      sync.Mutex
	entries []*transitionlog.Entry
	seq     int64

	// now overrides the append timestamp so ordering under created-at
	// collisions can be exercised.
	now func() time.Time
}

func (m *mockLogRepo) Append(ctx context.Context, entry *transitionlog.Entry) (*transitionlog.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	stored := *entry
	stored.ID = uuid.New()
	stored.Sequence = m.seq
	stored.CreatedAt = time.Now()
	if m.now != nil {
		stored.CreatedAt = m.now()
	}
	m.entries = append(m.entries, &stored)
	return &stored, nil
}

func (m *mockLogRepo) History(ctx context.Context, requestID uuid.UUID) ([]*transitionlog.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*transitionlog.Entry
	for _, e := range m.entries {
		if e.RequestID == requestID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Sequence < out[j].Sequence
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *mockLogRepo) Count(ctx context.Context, requestID uuid.UUID) (int64, error) {
	entries, _ := m.History(ctx, requestID)
	return int64(len(entries)), nil
}

func (m *mockLogRepo) forRequest(requestID uuid.UUID) []*transitionlog.Entry {
	entries, _ := m.History(context.Background(), requestID)
	return entries
}

type mockConfigRepo struct {
	mu      sync.Mutex
	configs map[recipientconfig.Scope]recipientconfig.Config
}

func newMockConfigRepo() *mockConfigRepo {
	return &mockConfigRepo{configs: make(map[recipientconfig.Scope]recipientconfig.Config)}
}

func (m *mockConfigRepo) GetByScope(ctx context.Context, scope recipientconfig.Scope) (recipientconfig.Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, ok := m.configs[scope]
	if !ok {
		return recipientconfig.Config{}, recipientconfig.ErrNotFound
	}
	return cfg, nil
}

func (m *mockConfigRepo) Upsert(ctx context.Context, c recipientconfig.Config) (recipientconfig.Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := recipientconfig.Hydrate(uuid.New(), c.TenantID(), c.Scope(), c.MIP(), c.MOP(), time.Now(), time.Now())
	m.configs[c.Scope()] = stored
	return stored, nil
}

type mockHistoryRepo struct {
	mu        sync.Mutex
	snapshots []*recipientconfig.Snapshot
}

func (m *mockHistoryRepo) Append(ctx context.Context, snapshot *recipientconfig.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *snapshot
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	m.snapshots = append(m.snapshots, &stored)
	return nil
}

func (m *mockHistoryRepo) ListForScope(
	ctx context.Context,
	scope recipientconfig.Scope,
	templateType recipientconfig.TemplateType,
) ([]*recipientconfig.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*recipientconfig.Snapshot
	for i := len(m.snapshots) - 1; i >= 0; i-- {
		s := m.snapshots[i]
		if s.Scope == scope && s.TemplateType == templateType {
			out = append(out, s)
		}
	}
	return out, nil
}

type mockOwnership struct {
	emails map[uuid.UUID]string
	err    error
}

func (m *mockOwnership) OwnerEmail(ctx context.Context, unitID uuid.UUID) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.emails[unitID], nil
}

type mockRenderer struct {
	err      error
	rendered []recipientconfig.TemplateType
}

func (m *mockRenderer) Render(
	ctx context.Context,
	templateType recipientconfig.TemplateType,
	data map[string]string,
) (*services.Artifact, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.rendered = append(m.rendered, templateType)
	return &services.Artifact{
		Subject:     "Occupancy update " + data["request_id"],
		Body:        []byte("rendered " + string(templateType)),
		ContentType: "text/html",
	}, nil
}

type mockOutboxPublisher struct {
	mu       sync.Mutex
	messages []outbox.Message
	err      error
}

func (m *mockOutboxPublisher) Enqueue(
	ctx context.Context,
	tx repo.Tx,
	table pgx.Identifier,
	msg outbox.Message,
) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return int64(len(m.messages)), nil
}

type mockNotifier struct {
	mu     sync.Mutex
	events []*request.TransitionedEvent
	result *services.DispatchResult
	err    error
}

func (m *mockNotifier) Notify(ctx context.Context, ev *request.TransitionedEvent) (*services.DispatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &services.DispatchResult{}, nil
}
