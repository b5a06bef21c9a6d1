package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirphl/cereal-box/models"
	"github.com/amirphl/cereal-box/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrVisitorCounterMissing is returned when the singleton row is absent at increment time
var ErrVisitorCounterMissing = errors.New("visitor counter row missing")

const createVisitorCounterTableSQL = `
CREATE TABLE IF NOT EXISTS visitor_counter (
	id SERIAL PRIMARY KEY,
	count INTEGER NOT NULL DEFAULT 0,
	last_visit TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
)`

// Single statement so concurrent increments can never lose an update
const incrementVisitorCounterSQL = `
UPDATE visitor_counter
SET count = count + 1, last_visit = CURRENT_TIMESTAMP
WHERE id = ?
RETURNING id, count, last_visit`

// VisitorCounterRepositoryImpl implements VisitorCounterRepository
type VisitorCounterRepositoryImpl struct {
	*BaseRepository[models.VisitorCounter, models.VisitorCounterFilter]
}

func NewVisitorCounterRepository(db *gorm.DB) VisitorCounterRepository {
	return &VisitorCounterRepositoryImpl{
		BaseRepository: NewBaseRepository[models.VisitorCounter, models.VisitorCounterFilter](db),
	}
}

// Bootstrap is idempotent: the table is created only if absent and the singleton row
// is inserted only when it is missing. Other rows are left alone.
func (r *VisitorCounterRepositoryImpl) Bootstrap(ctx context.Context) error {
	return WithTransaction(ctx, r.DB, func(txCtx context.Context) error {
		db := r.getDB(txCtx)

		if err := db.Exec(createVisitorCounterTableSQL).Error; err != nil {
			return fmt.Errorf("failed to create visitor_counter table: %w", err)
		}

		id := uint(utils.VisitorCounterRowID)
		exists, err := r.Exists(txCtx, models.VisitorCounterFilter{ID: &id})
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		row := &models.VisitorCounter{ID: utils.VisitorCounterRowID, Count: 0}
		err = db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).Create(row).Error
		if err != nil {
			return fmt.Errorf("failed to seed visitor counter: %w", err)
		}

		return nil
	})
}

func (r *VisitorCounterRepositoryImpl) IncrementAndFetch(ctx context.Context) (*models.VisitorCounter, error) {
	db := r.getDB(ctx)

	var row models.VisitorCounter
	result := db.Raw(incrementVisitorCounterSQL, utils.VisitorCounterRowID).Scan(&row)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to increment visitor counter: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrVisitorCounterMissing
	}

	row.LastVisit = row.LastVisit.UTC()
	return &row, nil
}

func (r *VisitorCounterRepositoryImpl) Count(ctx context.Context, filter models.VisitorCounterFilter) (int64, error) {
	db := r.getDB(ctx)

	query := db.Model(&models.VisitorCounter{})
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count visitor counters: %w", err)
	}
	return count, nil
}

func (r *VisitorCounterRepositoryImpl) Exists(ctx context.Context, filter models.VisitorCounterFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
