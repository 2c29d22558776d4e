package domain

import (
	"strings"
	"time"

	"github.com/atelier-arq/atelier-backend/internal/apperr"
	"github.com/atelier-arq/atelier-backend/internal/patch"
	taskdomain "github.com/atelier-arq/atelier-backend/internal/tasks/domain"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusOnHold    Status = "on_hold"
	StatusCancelled Status = "cancelled"
)

var Statuses = []Status{StatusActive, StatusCompleted, StatusOnHold, StatusCancelled}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

func (s Status) Label() string {
	switch s {
	case StatusActive:
		return "Ativo"
	case StatusCompleted:
		return "Concluído"
	case StatusOnHold:
		return "Em espera"
	case StatusCancelled:
		return "Cancelado"
	}
	return string(s)
}

type Type string

const (
	TypeRealEstateStand Type = "stand_imobiliario"
	TypeArchitecture    Type = "projeto_arquitetura"
	TypeStructural      Type = "projeto_estrutural"
	TypeRenovation      Type = "reforma"
	TypeMaintenance     Type = "manutencao"
)

var Types = []Type{TypeRealEstateStand, TypeArchitecture, TypeStructural, TypeRenovation, TypeMaintenance}

func (t Type) Valid() bool {
	for _, v := range Types {
		if v == t {
			return true
		}
	}
	return false
}

func (t Type) Label() string {
	switch t {
	case TypeRealEstateStand:
		return "Stand imobiliário"
	case TypeArchitecture:
		return "Projeto de arquitetura"
	case TypeStructural:
		return "Projeto estrutural"
	case TypeRenovation:
		return "Reforma"
	case TypeMaintenance:
		return "Manutenção"
	}
	return string(t)
}

// Stage is advisory metadata. Any stage may follow any other.
type Stage string

const (
	StageBriefing   Stage = "briefing"
	StageConcept    Stage = "conceito"
	StageDesign     Stage = "projeto"
	StageApproval   Stage = "aprovacao"
	StageBudget     Stage = "orcamento"
	StageProduction Stage = "producao"
	StageDelivery   Stage = "entrega"
)

var Stages = []Stage{StageBriefing, StageConcept, StageDesign, StageApproval, StageBudget, StageProduction, StageDelivery}

func (s Stage) Valid() bool {
	for _, v := range Stages {
		if v == s {
			return true
		}
	}
	return false
}

var ErrProjectNotFound = &apperr.Error{Kind: apperr.KindNotFound, Message: "project not found"}

type Project struct {
	ID             int64               `json:"id"`
	Name           string              `json:"name"`
	Description    string              `json:"description"`
	Status         Status              `json:"status"`
	Type           Type                `json:"type"`
	Stage          Stage               `json:"stage"`
	Priority       taskdomain.Priority `json:"priority"`
	StartDate      *time.Time          `json:"startDate"`
	EndDate        *time.Time          `json:"endDate"`
	ClientName     string              `json:"clientName"`
	ClientEmail    string              `json:"clientEmail"`
	ClientPhone    string              `json:"clientPhone"`
	Budget         *float64            `json:"budget"`
	EstimatedHours *float64            `json:"estimatedHours"`
	ActualHours    *float64            `json:"actualHours"`
	Location       string              `json:"location"`
	Area           *float64            `json:"area"`
	CreatedUserID  string              `json:"createdUserId"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

type ProjectWithTasks struct {
	Project
	Tasks    []taskdomain.Task `json:"tasks"`
	Progress int               `json:"progress"`
}

type CreateInput struct {
	Name           string              `json:"name" validate:"required,max=255"`
	Description    string              `json:"description"`
	Status         Status              `json:"status" validate:"omitempty,oneof=active completed on_hold cancelled"`
	Type           Type                `json:"type" validate:"omitempty,oneof=stand_imobiliario projeto_arquitetura projeto_estrutural reforma manutencao"`
	Stage          Stage               `json:"stage" validate:"omitempty,oneof=briefing conceito projeto aprovacao orcamento producao entrega"`
	Priority       taskdomain.Priority `json:"priority" validate:"omitempty,oneof=baixa media alta critica"`
	StartDate      *time.Time          `json:"startDate"`
	EndDate        *time.Time          `json:"endDate"`
	ClientName     string              `json:"clientName"`
	ClientEmail    string              `json:"clientEmail" validate:"omitempty,email"`
	ClientPhone    string              `json:"clientPhone"`
	Budget         *float64            `json:"budget" validate:"omitempty,min=0"`
	EstimatedHours *float64            `json:"estimatedHours" validate:"omitempty,min=0"`
	Location       string              `json:"location"`
	Area           *float64            `json:"area" validate:"omitempty,min=0"`
}

type Patch struct {
	Name           *string                `json:"name"`
	Description    *string                `json:"description"`
	Status         *Status                `json:"status"`
	Type           *Type                  `json:"type"`
	Stage          *Stage                 `json:"stage"`
	Priority       *taskdomain.Priority   `json:"priority"`
	StartDate      patch.Field[time.Time] `json:"startDate"`
	EndDate        patch.Field[time.Time] `json:"endDate"`
	ClientName     *string                `json:"clientName"`
	ClientEmail    *string                `json:"clientEmail"`
	ClientPhone    *string                `json:"clientPhone"`
	Budget         patch.Field[float64]   `json:"budget"`
	EstimatedHours patch.Field[float64]   `json:"estimatedHours"`
	ActualHours    patch.Field[float64]   `json:"actualHours"`
	Location       *string                `json:"location"`
	Area           patch.Field[float64]   `json:"area"`
}

func (p Patch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return apperr.Validation("name", "must not be empty")
	}
	if p.Status != nil && !p.Status.Valid() {
		return apperr.Validation("status", "invalid status %q", *p.Status)
	}
	if p.Type != nil && !p.Type.Valid() {
		return apperr.Validation("type", "invalid type %q", *p.Type)
	}
	if p.Stage != nil && !p.Stage.Valid() {
		return apperr.Validation("stage", "invalid stage %q", *p.Stage)
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return apperr.Validation("priority", "invalid priority %q", *p.Priority)
	}
	for field, v := range map[string]patch.Field[float64]{
		"budget":         p.Budget,
		"estimatedHours": p.EstimatedHours,
		"actualHours":    p.ActualHours,
		"area":           p.Area,
	} {
		if v.Set && !v.Null && v.Value < 0 {
			return apperr.Validation(field, "must not be negative")
		}
	}
	return nil
}

// Apply returns a copy of p with the patch applied.
func (pt Patch) Apply(p Project) Project {
	if pt.Name != nil {
		p.Name = strings.TrimSpace(*pt.Name)
	}
	if pt.Description != nil {
		p.Description = *pt.Description
	}
	if pt.Status != nil {
		p.Status = *pt.Status
	}
	if pt.Type != nil {
		p.Type = *pt.Type
	}
	if pt.Stage != nil {
		p.Stage = *pt.Stage
	}
	if pt.Priority != nil {
		p.Priority = *pt.Priority
	}
	p.StartDate = pt.StartDate.Ptr(p.StartDate)
	p.EndDate = pt.EndDate.Ptr(p.EndDate)
	if pt.ClientName != nil {
		p.ClientName = *pt.ClientName
	}
	if pt.ClientEmail != nil {
		p.ClientEmail = *pt.ClientEmail
	}
	if pt.ClientPhone != nil {
		p.ClientPhone = *pt.ClientPhone
	}
	p.Budget = pt.Budget.Ptr(p.Budget)
	p.EstimatedHours = pt.EstimatedHours.Ptr(p.EstimatedHours)
	p.ActualHours = pt.ActualHours.Ptr(p.ActualHours)
	if pt.Location != nil {
		p.Location = *pt.Location
	}
	p.Area = pt.Area.Ptr(p.Area)
	return p
}
