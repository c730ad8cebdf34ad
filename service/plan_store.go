package service

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"praytogether-backend/kvstore"
	"praytogether-backend/logger"
	"praytogether-backend/models"
	"praytogether-backend/requestctx"

	"github.com/google/uuid"
)

const savedPlansKeyPrefix = "prayTogether_savedPlans"

// planLockStripes bounds the number of mutexes regardless of user count
const planLockStripes = 64

// PlanStore keeps each user's saved plans as one JSON list, newest first
type PlanStore struct {
	store kvstore.Store
	log   *logger.Logger
	now   func() time.Time

	locks [planLockStripes]sync.Mutex
}

// PlanStoreOption is a functional option for PlanStore
type PlanStoreOption func(*PlanStore)

// PlanStoreWithLogger sets the logger
func PlanStoreWithLogger(log *logger.Logger) PlanStoreOption {
	return func(s *PlanStore) {
		s.log = log
	}
}

// PlanStoreWithClock overrides the time source used for ids and savedAt
func PlanStoreWithClock(now func() time.Time) PlanStoreOption {
	return func(s *PlanStore) {
		s.now = now
	}
}

// NewPlanStore creates a plan store on top of a kv store
func NewPlanStore(store kvstore.Store, opts ...PlanStoreOption) *PlanStore {
	s := &PlanStore{
		store: store,
		log:   logger.NewNop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func savedPlansKey(uid uuid.UUID) string {
	return savedPlansKeyPrefix + ":" + uid.String()
}

// lockFor maps a user onto a fixed stripe. Users sharing a stripe serialize
// against each other, which only costs throughput.
func (s *PlanStore) lockFor(uid uuid.UUID) *sync.Mutex {
	return &s.locks[binary.BigEndian.Uint64(uid[8:])%planLockStripes]
}

func (s *PlanStore) lock(uid uuid.UUID) func() {
	l := s.lockFor(uid)
	l.Lock()
	return l.Unlock
}

// List returns the user's saved plans, newest first. A corrupt document reads
// as an empty list.
func (s *PlanStore) List(ctx context.Context, uid uuid.UUID) ([]models.SavedPlan, error) {
	return s.read(ctx, uid)
}

// Save assigns an id and timestamp to plan and prepends it to the list
func (s *PlanStore) Save(ctx context.Context, uid uuid.UUID, plan models.PrayerPlanResult) (*models.SavedPlan, error) {
	if err := validateStruct(requestctx.Locale(ctx), plan); err != nil {
		return nil, err
	}

	unlock := s.lock(uid)
	defer unlock()

	plans, err := s.read(ctx, uid)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	id := now.UnixMilli()
	for _, p := range plans {
		if existing, err := strconv.ParseInt(p.ID, 10, 64); err == nil && existing >= id {
			id = existing + 1
		}
	}

	saved := models.SavedPlan{
		PrayerPlanResult: plan,
		ID:               strconv.FormatInt(id, 10),
		SavedAt:          now.Format(time.RFC3339),
	}

	plans = append([]models.SavedPlan{saved}, plans...)
	if err := s.write(ctx, uid, plans); err != nil {
		return nil, err
	}

	s.log.Info("plan saved", "user_id", uid, "plan_id", saved.ID, "total", len(plans))
	return &saved, nil
}

// Delete removes the plan with id. Unknown ids are ignored. Removing the last
// plan drops the user's key entirely.
func (s *PlanStore) Delete(ctx context.Context, uid uuid.UUID, id string) error {
	unlock := s.lock(uid)
	defer unlock()

	plans, err := s.read(ctx, uid)
	if err != nil {
		return err
	}

	kept := make([]models.SavedPlan, 0, len(plans))
	for _, p := range plans {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(plans) {
		return nil
	}
	if len(kept) == 0 {
		if err := s.store.RemoveItem(ctx, savedPlansKey(uid)); err != nil {
			s.log.Error("saved plans remove failed", "user_id", uid, "error", err)
			return storageErr("remove saved plans", err)
		}
		return nil
	}

	return s.write(ctx, uid, kept)
}

func (s *PlanStore) read(ctx context.Context, uid uuid.UUID) ([]models.SavedPlan, error) {
	data, ok, err := s.store.GetItem(ctx, savedPlansKey(uid))
	if err != nil {
		return nil, storageErr("read saved plans", err)
	}
	if !ok || len(data) == 0 {
		return []models.SavedPlan{}, nil
	}

	var plans []models.SavedPlan
	if err := json.Unmarshal(data, &plans); err != nil {
		s.log.Warn("saved plans unreadable, starting empty", "user_id", uid, "error", err)
		return []models.SavedPlan{}, nil
	}
	if plans == nil {
		plans = []models.SavedPlan{}
	}
	return plans, nil
}

func (s *PlanStore) write(ctx context.Context, uid uuid.UUID, plans []models.SavedPlan) error {
	data, err := json.Marshal(plans)
	if err != nil {
		return fmt.Errorf("failed to encode saved plans: %w", err)
	}
	if err := s.store.SetItem(ctx, savedPlansKey(uid), data); err != nil {
		s.log.Error("saved plans write failed", "user_id", uid, "error", err)
		return storageErr("write saved plans", err)
	}
	return nil
}

func storageErr(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}
