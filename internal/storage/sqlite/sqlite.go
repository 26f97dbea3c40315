package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/slok/taskmgr/internal/log"
	"github.com/slok/taskmgr/internal/model"
	"github.com/slok/taskmgr/internal/storage/sqlite/migrations"
)

// RepositoryConfig is the configuration for the SQLite repository.
type RepositoryConfig struct {
	DBPath string
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	return nil
}

// Repository is a SQLite implementation of storage.Repository.
type Repository struct {
	db     *sql.DB
	logger log.Logger
}

// NewRepository creates a new SQLite repository.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	migrator, err := migrations.NewMigrator(migrations.MigratorConfig{DB: db, Logger: cfg.Logger})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	if _, err := migrator.Up(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.Debugf("SQLite repository initialized at %s", cfg.DBPath)

	return &Repository{db: db, logger: cfg.Logger}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error { return r.db.Close() }

// CreateProject creates a new project in the repository.
func (r *Repository) CreateProject(ctx context.Context, p model.Project) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid project: %w", err)
	}

	err := r.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO projects (id, name, path, created_at) VALUES (?, ?, ?, ?)`,
			p.ID, p.Name, p.Path, p.CreatedAt.Unix(),
		)
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed: projects.") {
				return fmt.Errorf("project already exists: %w", model.ErrAlreadyExists)
			}
			return fmt.Errorf("could not insert project: %w", err)
		}

		return insertFavorites(ctx, tx, p.ID, p.FavoriteCommands)
	})
	if err != nil {
		return err
	}

	r.logger.Debugf("Created project in repository: %s", p.ID)
	return nil
}

// GetProject retrieves a project by ID.
func (r *Repository) GetProject(ctx context.Context, id string) (*model.Project, error) {
	p, err := r.getOne(ctx, `SELECT id, name, path, created_at FROM projects WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("project %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query project: %w", err)
	}

	return p, nil
}

// GetProjectByName retrieves a project by name.
func (r *Repository) GetProjectByName(ctx context.Context, name string) (*model.Project, error) {
	p, err := r.getOne(ctx, `SELECT id, name, path, created_at FROM projects WHERE name = ?`, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("project with name %s: %w", name, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query project: %w", err)
	}

	return p, nil
}

// ListProjects returns all projects, newest first.
func (r *Repository) ListProjects(ctx context.Context) ([]model.Project, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, path, created_at FROM projects ORDER BY created_at DESC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("could not query projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	for i := range projects {
		favs, err := r.favorites(ctx, projects[i].ID)
		if err != nil {
			return nil, err
		}
		projects[i].FavoriteCommands = favs
	}

	return projects, nil
}

// UpdateProject updates an existing project and replaces its favorites.
func (r *Repository) UpdateProject(ctx context.Context, p model.Project) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid project: %w", err)
	}

	err := r.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE projects SET name = ?, path = ?, created_at = ? WHERE id = ?`,
			p.Name, p.Path, p.CreatedAt.Unix(), p.ID,
		)
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed: projects.") {
				return fmt.Errorf("project with name %s: %w", p.Name, model.ErrAlreadyExists)
			}
			return fmt.Errorf("could not update project: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("could not get rows affected: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("project %s: %w", p.ID, model.ErrNotFound)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM project_favorites WHERE project_id = ?`, p.ID); err != nil {
			return fmt.Errorf("could not delete favorites: %w", err)
		}

		return insertFavorites(ctx, tx, p.ID, p.FavoriteCommands)
	})
	if err != nil {
		return err
	}

	r.logger.Debugf("Updated project in repository: %s", p.ID)
	return nil
}

// DeleteProject deletes a project and its favorites.
func (r *Repository) DeleteProject(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("could not delete project: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("project %s: %w", id, model.ErrNotFound)
	}

	r.logger.Debugf("Deleted project from repository: %s", id)
	return nil
}

func (r *Repository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}

func (r *Repository) getOne(ctx context.Context, query string, arg any) (*model.Project, error) {
	p, err := scanProject(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, err
	}

	favs, err := r.favorites(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.FavoriteCommands = favs

	return &p, nil
}

func (r *Repository) favorites(ctx context.Context, projectID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT command FROM project_favorites WHERE project_id = ? ORDER BY position ASC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("could not query favorites: %w", err)
	}
	defer rows.Close()

	favs := []string{}
	for rows.Next() {
		var cmd string
		if err := rows.Scan(&cmd); err != nil {
			return nil, fmt.Errorf("could not scan favorite: %w", err)
		}
		favs = append(favs, cmd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating favorites: %w", err)
	}

	return favs, nil
}

func insertFavorites(ctx context.Context, tx *sql.Tx, projectID string, favs []string) error {
	for i, cmd := range favs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO project_favorites (project_id, position, command) VALUES (?, ?, ?)`,
			projectID, i, cmd,
		)
		if err != nil {
			return fmt.Errorf("could not insert favorite: %w", err)
		}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (model.Project, error) {
	var p model.Project
	var createdAt int64

	if err := s.Scan(&p.ID, &p.Name, &p.Path, &createdAt); err != nil {
		return model.Project{}, err
	}
	p.CreatedAt = timeFromUnix(createdAt)

	return p, nil
}

func timeFromUnix(unix int64) time.Time { return time.Unix(unix, 0).UTC() }
