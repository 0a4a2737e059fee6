package db

import (
	"context"
	"database/sql"
)

const createDomain = `-- name: CreateDomain :one
INSERT INTO domains (name) VALUES (?)
RETURNING id, name, created_at
`

func (q *Queries) CreateDomain(ctx context.Context, name string) (Domain, error) {
	row := q.db.QueryRowContext(ctx, createDomain, name)
	var i Domain
	err := row.Scan(&i.ID, &i.Name, &i.CreatedAt)
	return i, err
}

const getDomainByName = `-- name: GetDomainByName :one
SELECT id, name, created_at FROM domains WHERE name = ?
`

func (q *Queries) GetDomainByName(ctx context.Context, name string) (Domain, error) {
	row := q.db.QueryRowContext(ctx, getDomainByName, name)
	var i Domain
	err := row.Scan(&i.ID, &i.Name, &i.CreatedAt)
	return i, err
}

const listDomains = `-- name: ListDomains :many
SELECT id, name, created_at FROM domains ORDER BY id
`

func (q *Queries) ListDomains(ctx context.Context) ([]Domain, error) {
	rows, err := q.db.QueryContext(ctx, listDomains)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Domain
	for rows.Next() {
		var i Domain
		if err := rows.Scan(&i.ID, &i.Name, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createModel = `-- name: CreateModel :one
INSERT INTO models (name, text_output, image_output) VALUES (?, ?, ?)
RETURNING id, name, text_output, image_output, created_at
`

type CreateModelParams struct {
	Name        string
	TextOutput  bool
	ImageOutput bool
}

func (q *Queries) CreateModel(ctx context.Context, arg CreateModelParams) (Model, error) {
	row := q.db.QueryRowContext(ctx, createModel, arg.Name, arg.TextOutput, arg.ImageOutput)
	var i Model
	err := row.Scan(&i.ID, &i.Name, &i.TextOutput, &i.ImageOutput, &i.CreatedAt)
	return i, err
}

const getModel = `-- name: GetModel :one
SELECT id, name, text_output, image_output, created_at FROM models WHERE id = ?
`

func (q *Queries) GetModel(ctx context.Context, id int64) (Model, error) {
	row := q.db.QueryRowContext(ctx, getModel, id)
	var i Model
	err := row.Scan(&i.ID, &i.Name, &i.TextOutput, &i.ImageOutput, &i.CreatedAt)
	return i, err
}

const getModelByName = `-- name: GetModelByName :one
SELECT id, name, text_output, image_output, created_at FROM models WHERE name = ?
`

func (q *Queries) GetModelByName(ctx context.Context, name string) (Model, error) {
	row := q.db.QueryRowContext(ctx, getModelByName, name)
	var i Model
	err := row.Scan(&i.ID, &i.Name, &i.TextOutput, &i.ImageOutput, &i.CreatedAt)
	return i, err
}

const listModelsByCapability = `-- name: ListModelsByCapability :many
SELECT id, name, text_output, image_output, created_at FROM models
WHERE (? = 0 OR text_output = 1)
  AND (? = 0 OR image_output = 1)
  AND retired_at IS NULL
ORDER BY id
`

type ListModelsByCapabilityParams struct {
	TextOutput  bool
	ImageOutput bool
}

// ListModelsByCapability returns active models supporting every requested
// capability. With both flags false it returns all active models.
func (q *Queries) ListModelsByCapability(ctx context.Context, arg ListModelsByCapabilityParams) ([]Model, error) {
	rows, err := q.db.QueryContext(ctx, listModelsByCapability, arg.TextOutput, arg.ImageOutput)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Model
	for rows.Next() {
		var i Model
		if err := rows.Scan(&i.ID, &i.Name, &i.TextOutput, &i.ImageOutput, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const retireModel = `-- name: RetireModel :execrows
UPDATE models SET retired_at = CURRENT_TIMESTAMP
WHERE id = ? AND retired_at IS NULL
`

// RetireModel hides a model from selection. Its outputs and feedback are
// kept. Returns the number of rows changed.
func (q *Queries) RetireModel(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, retireModel, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const createPrompt = `-- name: CreatePrompt :one
INSERT INTO prompts (text, prompt_type, domain_id, parent_id) VALUES (?, ?, ?, ?)
RETURNING id, text, prompt_type, domain_id, parent_id, created_at
`

type CreatePromptParams struct {
	Text       string
	PromptType string
	DomainID   sql.NullInt64
	ParentID   sql.NullInt64
}

func (q *Queries) CreatePrompt(ctx context.Context, arg CreatePromptParams) (Prompt, error) {
	row := q.db.QueryRowContext(ctx, createPrompt, arg.Text, arg.PromptType, arg.DomainID, arg.ParentID)
	var i Prompt
	err := row.Scan(&i.ID, &i.Text, &i.PromptType, &i.DomainID, &i.ParentID, &i.CreatedAt)
	return i, err
}

const getPrompt = `-- name: GetPrompt :one
SELECT id, text, prompt_type, domain_id, parent_id, created_at FROM prompts WHERE id = ?
`

func (q *Queries) GetPrompt(ctx context.Context, id int64) (Prompt, error) {
	row := q.db.QueryRowContext(ctx, getPrompt, id)
	var i Prompt
	err := row.Scan(&i.ID, &i.Text, &i.PromptType, &i.DomainID, &i.ParentID, &i.CreatedAt)
	return i, err
}

const listPrompts = `-- name: ListPrompts :many
SELECT id, text, prompt_type, domain_id, parent_id, created_at FROM prompts
WHERE (? = '' OR prompt_type = ?)
  AND (? IS NULL OR domain_id = ?)
  AND retired_at IS NULL
ORDER BY id
`

type ListPromptsParams struct {
	PromptType string
	DomainID   sql.NullInt64
}

// ListPrompts returns active prompts matching the optional type and domain
// filters.
func (q *Queries) ListPrompts(ctx context.Context, arg ListPromptsParams) ([]Prompt, error) {
	rows, err := q.db.QueryContext(ctx, listPrompts,
		arg.PromptType, arg.PromptType,
		arg.DomainID, arg.DomainID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Prompt
	for rows.Next() {
		var i Prompt
		if err := rows.Scan(&i.ID, &i.Text, &i.PromptType, &i.DomainID, &i.ParentID, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const retirePrompt = `-- name: RetirePrompt :execrows
UPDATE prompts SET retired_at = CURRENT_TIMESTAMP
WHERE id = ? AND retired_at IS NULL
`

// RetirePrompt hides a prompt from selection. Its outputs and feedback are
// kept. Returns the number of rows changed.
func (q *Queries) RetirePrompt(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, retirePrompt, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countPrompts = `-- name: CountPrompts :one
SELECT COUNT(*) FROM prompts
`

func (q *Queries) CountPrompts(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countPrompts)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createOutput = `-- name: CreateOutput :one
INSERT INTO outputs (text, prompt_id, model_id) VALUES (?, ?, ?)
RETURNING id, text, prompt_id, model_id, created_at
`

type CreateOutputParams struct {
	Text     string
	PromptID int64
	ModelID  int64
}

func (q *Queries) CreateOutput(ctx context.Context, arg CreateOutputParams) (Output, error) {
	row := q.db.QueryRowContext(ctx, createOutput, arg.Text, arg.PromptID, arg.ModelID)
	var i Output
	err := row.Scan(&i.ID, &i.Text, &i.PromptID, &i.ModelID, &i.CreatedAt)
	return i, err
}

const getOutput = `-- name: GetOutput :one
SELECT id, text, prompt_id, model_id, created_at FROM outputs WHERE id = ?
`

func (q *Queries) GetOutput(ctx context.Context, id int64) (Output, error) {
	row := q.db.QueryRowContext(ctx, getOutput, id)
	var i Output
	err := row.Scan(&i.ID, &i.Text, &i.PromptID, &i.ModelID, &i.CreatedAt)
	return i, err
}

const countOutputs = `-- name: CountOutputs :one
SELECT COUNT(*) FROM outputs
`

func (q *Queries) CountOutputs(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countOutputs)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createFeedback = `-- name: CreateFeedback :one
INSERT INTO feedback (output_id, score, comment) VALUES (?, ?, ?)
RETURNING id, output_id, score, comment, created_at
`

type CreateFeedbackParams struct {
	OutputID int64
	Score    int64
	Comment  sql.NullString
}

func (q *Queries) CreateFeedback(ctx context.Context, arg CreateFeedbackParams) (Feedback, error) {
	row := q.db.QueryRowContext(ctx, createFeedback, arg.OutputID, arg.Score, arg.Comment)
	var i Feedback
	err := row.Scan(&i.ID, &i.OutputID, &i.Score, &i.Comment, &i.CreatedAt)
	return i, err
}

const listFeedbackForOutput = `-- name: ListFeedbackForOutput :many
SELECT id, output_id, score, comment, created_at FROM feedback
WHERE output_id = ?
ORDER BY id
`

func (q *Queries) ListFeedbackForOutput(ctx context.Context, outputID int64) ([]Feedback, error) {
	rows, err := q.db.QueryContext(ctx, listFeedbackForOutput, outputID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Feedback
	for rows.Next() {
		var i Feedback
		if err := rows.Scan(&i.ID, &i.OutputID, &i.Score, &i.Comment, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countFeedback = `-- name: CountFeedback :one
SELECT COUNT(*) FROM feedback
`

func (q *Queries) CountFeedback(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countFeedback)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const sumFeedbackByPrompt = `-- name: SumFeedbackByPrompt :many
SELECT p.id, CAST(COALESCE(SUM(f.score), 0) AS INTEGER) AS score
FROM prompts p
LEFT JOIN outputs o ON o.prompt_id = p.id
LEFT JOIN feedback f ON f.output_id = o.id
GROUP BY p.id
ORDER BY p.id
`

type SumFeedbackByPromptRow struct {
	ID    int64
	Score int64
}

// SumFeedbackByPrompt totals feedback across each prompt's outputs.
// Prompts without feedback report zero.
func (q *Queries) SumFeedbackByPrompt(ctx context.Context) ([]SumFeedbackByPromptRow, error) {
	rows, err := q.db.QueryContext(ctx, sumFeedbackByPrompt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SumFeedbackByPromptRow
	for rows.Next() {
		var i SumFeedbackByPromptRow
		if err := rows.Scan(&i.ID, &i.Score); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const sumFeedbackByModel = `-- name: SumFeedbackByModel :many
SELECT m.id, CAST(COALESCE(SUM(f.score), 0) AS INTEGER) AS score
FROM models m
LEFT JOIN outputs o ON o.model_id = m.id
LEFT JOIN feedback f ON f.output_id = o.id
GROUP BY m.id
ORDER BY m.id
`

type SumFeedbackByModelRow struct {
	ID    int64
	Score int64
}

// SumFeedbackByModel totals feedback across each model's outputs.
// Models without feedback report zero.
func (q *Queries) SumFeedbackByModel(ctx context.Context) ([]SumFeedbackByModelRow, error) {
	rows, err := q.db.QueryContext(ctx, sumFeedbackByModel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SumFeedbackByModelRow
	for rows.Next() {
		var i SumFeedbackByModelRow
		if err := rows.Scan(&i.ID, &i.Score); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listPromptFeedback = `-- name: ListPromptFeedback :many
SELECT o.id, o.text, f.comment
FROM outputs o
JOIN feedback f ON f.output_id = o.id
WHERE o.prompt_id = ?
  AND f.comment IS NOT NULL
  AND TRIM(f.comment) <> ''
ORDER BY o.id, f.id
`

type ListPromptFeedbackRow struct {
	OutputID   int64
	OutputText string
	Comment    string
}

// ListPromptFeedback returns every commented feedback entry on the prompt's outputs.
func (q *Queries) ListPromptFeedback(ctx context.Context, promptID int64) ([]ListPromptFeedbackRow, error) {
	rows, err := q.db.QueryContext(ctx, listPromptFeedback, promptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListPromptFeedbackRow
	for rows.Next() {
		var i ListPromptFeedbackRow
		if err := rows.Scan(&i.OutputID, &i.OutputText, &i.Comment); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createPost = `-- name: CreatePost :one
INSERT INTO posts (text, platform, platform_post_id, post_url, output_id)
VALUES (?, ?, ?, ?, ?)
RETURNING id, text, platform, platform_post_id, post_url, output_id, created_at
`

type CreatePostParams struct {
	Text           string
	Platform       string
	PlatformPostID string
	PostUrl        sql.NullString
	OutputID       sql.NullInt64
}

func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) (Post, error) {
	row := q.db.QueryRowContext(ctx, createPost,
		arg.Text,
		arg.Platform,
		arg.PlatformPostID,
		arg.PostUrl,
		arg.OutputID,
	)
	var i Post
	err := row.Scan(&i.ID, &i.Text, &i.Platform, &i.PlatformPostID, &i.PostUrl, &i.OutputID, &i.CreatedAt)
	return i, err
}

const listRecentPosts = `-- name: ListRecentPosts :many
SELECT id, text, platform, platform_post_id, post_url, output_id, created_at FROM posts
ORDER BY created_at DESC, id DESC
LIMIT ?
`

func (q *Queries) ListRecentPosts(ctx context.Context, limit int64) ([]Post, error) {
	rows, err := q.db.QueryContext(ctx, listRecentPosts, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Post
	for rows.Next() {
		var i Post
		if err := rows.Scan(&i.ID, &i.Text, &i.Platform, &i.PlatformPostID, &i.PostUrl, &i.OutputID, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countPosts = `-- name: CountPosts :one
SELECT COUNT(*) FROM posts
`

func (q *Queries) CountPosts(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countPosts)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countPostsToday = `-- name: CountPostsToday :one
SELECT COUNT(*) FROM posts
WHERE platform = ? AND created_at >= date('now')
`

func (q *Queries) CountPostsToday(ctx context.Context, platform string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countPostsToday, platform)
	var count int64
	err := row.Scan(&count)
	return count, err
}
