package models

import (
	"time"

	"github.com/google/uuid"
)

type TransitionRequest struct {
	ID                uuid.UUID
	TenantID          uuid.UUID
	Kind              string
	Category          string
	UnitID            uuid.UUID
	RequesterID       uuid.UUID
	MasterCommunityID uuid.UUID
	CommunityID       uuid.NullUUID
	TowerID           uuid.NullUUID
	Status            string
	AutoApproved      bool
	PriorRequestID    uuid.NullUUID
	Detail            []byte
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type TransitionLog struct {
	ID         uuid.UUID
	Sequence   int64
	TenantID   uuid.UUID
	RequestID  uuid.UUID
	FromStatus string
	ToStatus   string
	ActorID    uuid.NullUUID
	ActorType  string
	Remark     string
	CreatedAt  time.Time
}

type RecipientConfiguration struct {
	ID                uuid.UUID
	TenantID          uuid.UUID
	MasterCommunityID uuid.UUID
	CommunityID       uuid.NullUUID
	TowerID           uuid.NullUUID
	MIP               []string
	MOP               []string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type TemplateHistory struct {
	ID                uuid.UUID
	TenantID          uuid.UUID
	TemplateType      string
	MasterCommunityID uuid.UUID
	CommunityID       uuid.NullUUID
	TowerID           uuid.NullUUID
	MIP               []string
	MOP               []string
	CreatedAt         time.Time
}
