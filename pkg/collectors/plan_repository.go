package collectors

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hiddenday/planner/pkg/domain"
	_ "github.com/mattn/go-sqlite3"
)

// PlanRepository persists shared plans so a response can be reopened later
// from a short URL.
type PlanRepository struct {
	db *sql.DB
}

func NewPlanRepository(db *sql.DB) (*PlanRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	repo := &PlanRepository{db: db}
	if err := repo.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return repo, nil
}

func (r *PlanRepository) createTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS plans (
		id TEXT PRIMARY KEY,
		location TEXT NOT NULL,
		response TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_plans_created_at ON plans(created_at);
	`

	_, err := r.db.Exec(query)
	return err
}

// Save stores the plan and assigns it a fresh ID.
func (r *PlanRepository) Save(ctx context.Context, plan *domain.SharedPlan) error {
	if plan == nil {
		return fmt.Errorf("plan cannot be nil")
	}

	id, err := newPlanID()
	if err != nil {
		return fmt.Errorf("failed to generate plan id: %w", err)
	}
	plan.ID = id
	plan.CreatedAt = time.Now()

	response, err := json.Marshal(plan.Response)
	if err != nil {
		return fmt.Errorf("failed to encode plan response: %w", err)
	}

	query := `
	INSERT INTO plans (id, location, response, created_at)
	VALUES (?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		plan.ID,
		plan.Response.Location,
		string(response),
		plan.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}

	return nil
}

func (r *PlanRepository) GetByID(ctx context.Context, id string) (*domain.SharedPlan, error) {
	query := `
	SELECT id, response, created_at
	FROM plans
	WHERE id = ?
	`

	var plan domain.SharedPlan
	var response string

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&plan.ID,
		&response,
		&plan.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, domain.ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan by id: %w", err)
	}

	if err := json.Unmarshal([]byte(response), &plan.Response); err != nil {
		return nil, fmt.Errorf("failed to decode plan response: %w", err)
	}

	return &plan, nil
}

func (r *PlanRepository) Recent(ctx context.Context, limit int) ([]domain.SharedPlan, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	query := `
	SELECT id, response, created_at
	FROM plans
	ORDER BY created_at DESC
	LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent plans: %w", err)
	}
	defer rows.Close()

	var plans []domain.SharedPlan
	for rows.Next() {
		var plan domain.SharedPlan
		var response string

		if err := rows.Scan(&plan.ID, &response, &plan.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		if err := json.Unmarshal([]byte(response), &plan.Response); err != nil {
			return nil, fmt.Errorf("failed to decode plan response: %w", err)
		}

		plans = append(plans, plan)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return plans, nil
}

func newPlanID() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
