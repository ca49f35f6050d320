package domain

import "context"

// JobRepository is the single owner of job and scene persistence. All other
// components read and write through it and hold no copies beyond
// request-scoped working memory.
type JobRepository interface {
	// CreateJob inserts a new job record.
	CreateJob(ctx context.Context, job *Job) error
	// SaveScenes inserts all scenes of a job in one atomic batch. On failure
	// no scene of the batch is visible to readers.
	SaveScenes(ctx context.Context, jobID string, scenes []Scene) error
	// UpdateJobStatus advances the job status. Regressions are ignored so the
	// transition stays monotonic under concurrent writers.
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus) error
	// GetJob fetches a job by id, returning ErrNotFound when absent.
	GetJob(ctx context.Context, jobID string) (*Job, error)
	// GetScenes returns all scenes of a job ordered by scene number.
	GetScenes(ctx context.Context, jobID string) ([]Scene, error)
	// GetScene fetches a single scene, returning ErrNotFound when absent.
	GetScene(ctx context.Context, jobID string, sceneNumber int) (*Scene, error)
	// SetSceneImage stores the rendered page for a scene, first write wins.
	// Setting an already-set image is a no-op, not an error.
	SetSceneImage(ctx context.Context, jobID string, sceneNumber int, imageData string) error
}
