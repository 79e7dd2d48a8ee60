package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/nekoden/nekoden/internal/domain/pet"
	"github.com/nekoden/nekoden/internal/gateways/database/models"
)

type petStateRepository struct {
	db *bun.DB
}

func NewPetStateRepository(db *bun.DB) pet.Repository {
	return &petStateRepository{db: db}
}

func (r *petStateRepository) EnsureState(ctx context.Context, initial pet.State) error {
	row := toGlobalStateModel(initial)
	_, err := r.db.NewInsert().
		Model(row).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx)
	return err
}

func (r *petStateRepository) GetState(ctx context.Context) (*pet.State, error) {
	row := new(models.GlobalState)
	err := r.db.NewSelect().
		Model(row).
		Where("id = ?", models.GlobalStateID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pet.ErrStateNotFound
		}
		return nil, err
	}
	return toPetState(row)
}

func (r *petStateRepository) AcquireRest(ctx context.Context, claim pet.RestClaim) (bool, error) {
	res, err := r.db.NewUpdate().
		Model((*models.GlobalState)(nil)).
		Set("current = ?", pet.Sleeping.String()).
		Set("previous = ?", claim.Previous.String()).
		Set("is_resting = TRUE").
		Set("rest_end_time = ?", claim.Until).
		Set("rested_by = ?", claim.Actor.ID).
		Set("rested_by_name = ?", claim.Actor.Name).
		Set("last_updated = ?", claim.At).
		Where("id = ?", models.GlobalStateID).
		Where("is_resting = FALSE").
		Exec(ctx)
	return applied(res, err)
}

func (r *petStateRepository) EndRest(ctx context.Context, at time.Time) (bool, error) {
	res, err := r.db.NewUpdate().
		Model((*models.GlobalState)(nil)).
		Set("current = ?", pet.Waking.String()).
		Set("is_resting = FALSE").
		Set("rest_end_time = NULL").
		Set("rested_by = NULL").
		Set("rested_by_name = NULL").
		Set("last_updated = ?", at).
		Where("id = ?", models.GlobalStateID).
		Where("is_resting = TRUE").
		Where("rest_end_time <= ?", at).
		Exec(ctx)
	return applied(res, err)
}

func (r *petStateRepository) SetMood(ctx context.Context, from, next, previous pet.Mood, at time.Time) (bool, error) {
	res, err := r.db.NewUpdate().
		Model((*models.GlobalState)(nil)).
		Set("current = ?", next.String()).
		Set("previous = ?", previous.String()).
		Set("last_updated = ?", at).
		Where("id = ?", models.GlobalStateID).
		Where("is_resting = FALSE").
		Where("current = ?", from.String()).
		Exec(ctx)
	return applied(res, err)
}

// applied reports whether a conditional update matched its row.
func applied(res sql.Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

func toGlobalStateModel(s pet.State) *models.GlobalState {
	row := &models.GlobalState{
		ID:          models.GlobalStateID,
		Current:     s.Current.String(),
		Previous:    s.Previous.String(),
		IsResting:   s.IsResting,
		RestEndTime: s.RestEndTime,
		LastUpdated: s.LastUpdated,
	}
	if s.RestedBy != "" {
		row.RestedBy = &s.RestedBy
	}
	if s.RestedByName != "" {
		row.RestedByName = &s.RestedByName
	}
	return row
}

func toPetState(row *models.GlobalState) (*pet.State, error) {
	current, err := pet.ParseMood(row.Current)
	if err != nil {
		return nil, err
	}
	s := &pet.State{
		Current:     current,
		Previous:    pet.Mood(row.Previous),
		IsResting:   row.IsResting,
		RestEndTime: row.RestEndTime,
		LastUpdated: row.LastUpdated,
	}
	if row.RestedBy != nil {
		s.RestedBy = *row.RestedBy
	}
	if row.RestedByName != nil {
		s.RestedByName = *row.RestedByName
	}
	return s, nil
}
