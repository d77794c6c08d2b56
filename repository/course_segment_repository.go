package repository

import (
	"context"
	"fmt"

	"derby/database"
	"derby/models"
)

// CourseSegmentRepository implements the CourseSegmentRepository interface
type CourseSegmentRepository struct {
	q Queryable
}

// NewCourseSegmentRepository creates a new course segment repository
func NewCourseSegmentRepository(db *database.DB) *CourseSegmentRepository {
	return &CourseSegmentRepository{q: db.Pool}
}

// newCourseSegmentRepositoryWithTx creates a new course segment repository with a transaction
func newCourseSegmentRepositoryWithTx(tx Queryable) *CourseSegmentRepository {
	return &CourseSegmentRepository{q: tx}
}

// Create creates a new course segment and fills in its assigned ID
func (r *CourseSegmentRepository) Create(ctx context.Context, segment *models.CourseSegment) error {
	query := `
		INSERT INTO course_segments (race_id, position, description)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := r.q.QueryRow(ctx, query,
		segment.RaceID,
		segment.Position,
		segment.Description,
	).Scan(&segment.ID)

	if err != nil {
		return fmt.Errorf("failed to create course segment for race %d: %w", segment.RaceID, err)
	}

	return nil
}

// GetByRace returns a race's segments ordered by position
func (r *CourseSegmentRepository) GetByRace(ctx context.Context, raceID int64) ([]*models.CourseSegment, error) {
	query := `
		SELECT id, race_id, position, description
		FROM course_segments
		WHERE race_id = $1
		ORDER BY position
	`

	rows, err := r.q.Query(ctx, query, raceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course segments for race %d: %w", raceID, err)
	}
	defer rows.Close()

	var segments []*models.CourseSegment
	for rows.Next() {
		var segment models.CourseSegment
		err := rows.Scan(
			&segment.ID,
			&segment.RaceID,
			&segment.Position,
			&segment.Description,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course segment: %w", err)
		}
		segments = append(segments, &segment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate course segments: %w", err)
	}

	return segments, nil
}

// DeleteByRace removes all segments for a race
func (r *CourseSegmentRepository) DeleteByRace(ctx context.Context, raceID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM course_segments WHERE race_id = $1`, raceID); err != nil {
		return fmt.Errorf("failed to delete course segments for race %d: %w", raceID, err)
	}

	return nil
}
