package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/service-window/backend/internal/domain"
)

func (r *Repository) InsertOptimizationRun(run *domain.OptimizationRun) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO optimization_runs (created_by, window_count, population_size, generations, mutation_rate, seed, fitness, lower_bound)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, version
	`

	args := []any{run.CreatedBy, run.WindowCount, run.PopulationSize, run.Generations, run.MutationRate, run.Seed, run.Fitness, run.LowerBound}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&run.ID, &run.CreatedAt, &run.Version); err != nil {
		return err
	}

	for _, c := range run.Customers {
		query := `
			INSERT INTO optimization_run_customers (optimization_run_id, position, customer_id, duration, window_index)
			VALUES ($1, $2, $3, $4, $5)
		`

		if _, err := tx.ExecContext(ctx, query, run.ID, c.Position, c.CustomerID, c.Duration, c.WindowIndex); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetOptimizationRunByID(id int64) (*domain.OptimizationRun, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			r.created_by,
			r.window_count,
			r.population_size,
			r.generations,
			r.mutation_rate,
			r.seed,
			r.fitness,
			r.lower_bound,
			r.created_at,
			r.version,
			c.position,
			c.customer_id,
			c.duration,
			c.window_index
		FROM optimization_runs r
		LEFT JOIN optimization_run_customers c ON r.id = c.optimization_run_id
		WHERE r.id = $1
		ORDER BY c.position
	`

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	run := &domain.OptimizationRun{
		ID:        id,
		Customers: make([]domain.OptimizationRunCustomer, 0),
	}
	found := false

	for rows.Next() {
		var row struct {
			seed        sql.NullInt64
			position    sql.NullInt32
			customerID  sql.NullInt64
			duration    sql.NullInt64
			windowIndex sql.NullInt32
		}

		dst := []any{
			&run.CreatedBy,
			&run.WindowCount,
			&run.PopulationSize,
			&run.Generations,
			&run.MutationRate,
			&row.seed,
			&run.Fitness,
			&run.LowerBound,
			&run.CreatedAt,
			&run.Version,
			&row.position,
			&row.customerID,
			&row.duration,
			&row.windowIndex,
		}

		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		found = true

		if row.seed.Valid {
			seed := row.seed.Int64
			run.Seed = &seed
		}

		if !row.position.Valid {
			// 没有任何顾客的记录，业务上不会出现
			continue
		}

		run.Customers = append(run.Customers, domain.OptimizationRunCustomer{
			Position:    row.position.Int32,
			CustomerID:  row.customerID.Int64,
			Duration:    row.duration.Int64,
			WindowIndex: row.windowIndex.Int32,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !found {
		return nil, sql.ErrNoRows
	}

	return run, nil
}

// GetOptimizationRunsByUserID 只返回元数据，不包含顾客明细
func (r *Repository) GetOptimizationRunsByUserID(userID int64) ([]*domain.OptimizationRun, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, window_count, population_size, generations, mutation_rate, seed, fitness, lower_bound, created_at, version
		FROM optimization_runs
		WHERE created_by = $1
		ORDER BY created_at DESC
	`

	rows, err := r.dbpool.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]*domain.OptimizationRun, 0)
	for rows.Next() {
		run := &domain.OptimizationRun{CreatedBy: userID}
		var seed sql.NullInt64

		dst := []any{&run.ID, &run.WindowCount, &run.PopulationSize, &run.Generations, &run.MutationRate, &seed, &run.Fitness, &run.LowerBound, &run.CreatedAt, &run.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		if seed.Valid {
			s := seed.Int64
			run.Seed = &s
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return runs, nil
}

func (r *Repository) DeleteOptimizationRun(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	// optimization_run_customers 通过外键级联删除
	query := `
		DELETE FROM optimization_runs WHERE id = $1
	`

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
