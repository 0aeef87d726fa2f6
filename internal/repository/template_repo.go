package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"choreshare/internal/database"
	"choreshare/internal/models"
)

// TemplateRepository reads the task template catalog
type TemplateRepository struct {
	db *database.DB
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(db *database.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// ListTemplates returns all templates ordered by category and name
func (r *TemplateRepository) ListTemplates() ([]models.TaskTemplate, error) {
	query := `
		SELECT id, name, category, suggested_difficulty, estimated_days
		FROM task_templates
		ORDER BY category, name
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query task templates: %w", err)
	}
	defer rows.Close()

	templates := []models.TaskTemplate{}
	for rows.Next() {
		var tt models.TaskTemplate
		if err := rows.Scan(&tt.ID, &tt.Name, &tt.Category, &tt.SuggestedDifficulty, &tt.EstimatedDays); err != nil {
			return nil, fmt.Errorf("failed to scan task template: %w", err)
		}
		templates = append(templates, tt)
	}
	return templates, rows.Err()
}

// GetTemplate retrieves a template by ID
func (r *TemplateRepository) GetTemplate(id int64) (*models.TaskTemplate, error) {
	query := "SELECT id, name, category, suggested_difficulty, estimated_days FROM task_templates WHERE id = ?"
	var tt models.TaskTemplate
	err := r.db.QueryRow(query, id).Scan(&tt.ID, &tt.Name, &tt.Category, &tt.SuggestedDifficulty, &tt.EstimatedDays)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task template: %w", err)
	}
	return &tt, nil
}
