package domain

import (
	"context"
)

type PlanRepository interface {
	Save(ctx context.Context, plan *SharedPlan) error
	GetByID(ctx context.Context, id string) (*SharedPlan, error)
	Recent(ctx context.Context, limit int) ([]SharedPlan, error)
}

type PlanService interface {
	CreatePlan(ctx context.Context, req *PlanRequest) (*PlanResponse, error)
}
