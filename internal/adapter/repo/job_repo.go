package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storybook/internal/domain"
)

// JobRepositoryPG implements domain.JobRepository on PostgreSQL.
type JobRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewJobRepository creates a new job repository backed by PostgreSQL.
func NewJobRepository(pool *pgxpool.Pool) *JobRepositoryPG {
	return &JobRepositoryPG{pool: pool}
}

// CreateJob inserts a new job record.
func (r *JobRepositoryPG) CreateJob(ctx context.Context, job *domain.Job) error {
	query := `
INSERT INTO jobs (id, character_name, character_description, character_image, story_type, plot_points, status)
VALUES ($1, $2, $3, $4, $5, $6, $7);
`
	_, err := r.pool.Exec(ctx, query,
		job.ID,
		job.CharacterName,
		job.CharacterDescription,
		job.CharacterImage,
		string(job.StoryType),
		job.PlotPoints,
		string(job.Status),
	)
	return err
}

// SaveScenes inserts the full scene batch inside one transaction so a
// failure leaves no partial scene set visible.
func (r *JobRepositoryPG) SaveScenes(ctx context.Context, jobID string, scenes []domain.Scene) error {
	query := `
INSERT INTO scenes (job_id, scene_number, story_text, image_prompt)
VALUES ($1, $2, $3, $4);
`
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	batch := &pgx.Batch{}
	for _, scene := range scenes {
		batch.Queue(query, jobID, scene.SceneNumber, scene.StoryText, scene.ImagePrompt)
	}
	results := tx.SendBatch(ctx, batch)
	for range scenes {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("insert scene batch: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// UpdateJobStatus advances the status. The rank comparison keeps the
// transition monotonic even when invocations race.
func (r *JobRepositoryPG) UpdateJobStatus(ctx context.Context, jobID string, status domain.JobStatus) error {
	query := `
UPDATE jobs
SET status = $2
WHERE id = $1
  AND array_position(ARRAY['pending','generating','complete'], status)
    < array_position(ARRAY['pending','generating','complete'], $2::text);
`
	_, err := r.pool.Exec(ctx, query, jobID, string(status))
	return err
}

// GetJob fetches a job by its identifier.
func (r *JobRepositoryPG) GetJob(ctx context.Context, jobID string) (*domain.Job, error) {
	query := `
SELECT id, character_name, character_description, character_image, story_type, plot_points, status, created_at
FROM jobs
WHERE id = $1;
`
	row := r.pool.QueryRow(ctx, query, jobID)
	var job domain.Job
	if err := row.Scan(
		&job.ID,
		&job.CharacterName,
		&job.CharacterDescription,
		&job.CharacterImage,
		&job.StoryType,
		&job.PlotPoints,
		&job.Status,
		&job.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// GetScenes returns the job's scenes ordered by scene number.
func (r *JobRepositoryPG) GetScenes(ctx context.Context, jobID string) ([]domain.Scene, error) {
	query := `
SELECT job_id, scene_number, story_text, image_prompt, COALESCE(image_data, '')
FROM scenes
WHERE job_id = $1
ORDER BY scene_number;
`
	rows, err := r.pool.Query(ctx, query, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scenes []domain.Scene
	for rows.Next() {
		var scene domain.Scene
		if err := rows.Scan(&scene.JobID, &scene.SceneNumber, &scene.StoryText, &scene.ImagePrompt, &scene.ImageData); err != nil {
			return nil, err
		}
		scenes = append(scenes, scene)
	}
	return scenes, rows.Err()
}

// GetScene fetches a single scene by composite identity.
func (r *JobRepositoryPG) GetScene(ctx context.Context, jobID string, sceneNumber int) (*domain.Scene, error) {
	query := `
SELECT job_id, scene_number, story_text, image_prompt, COALESCE(image_data, '')
FROM scenes
WHERE job_id = $1 AND scene_number = $2;
`
	row := r.pool.QueryRow(ctx, query, jobID, sceneNumber)
	var scene domain.Scene
	if err := row.Scan(&scene.JobID, &scene.SceneNumber, &scene.StoryText, &scene.ImagePrompt, &scene.ImageData); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &scene, nil
}

// SetSceneImage stores a rendered page. The NULL guard makes the write-once
// invariant a store property: a second writer's update matches zero rows and
// is a harmless no-op.
func (r *JobRepositoryPG) SetSceneImage(ctx context.Context, jobID string, sceneNumber int, imageData string) error {
	query := `
UPDATE scenes
SET image_data = $3
WHERE job_id = $1 AND scene_number = $2 AND image_data IS NULL;
`
	_, err := r.pool.Exec(ctx, query, jobID, sceneNumber, imageData)
	return err
}

var _ domain.JobRepository = (*JobRepositoryPG)(nil)
