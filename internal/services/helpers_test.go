package services

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wshinigamic/wtg-backend/internal/clients/scoring"
	"github.com/wshinigamic/wtg-backend/internal/data/repos"
	"github.com/wshinigamic/wtg-backend/internal/data/repos/testutil"
	types "github.com/wshinigamic/wtg-backend/internal/domain"
	"github.com/wshinigamic/wtg-backend/internal/platform/logger"
)

// fakeDeltas answers every disliked id with -1 and every neutral id with
// 0.25 unless fn overrides it.
type fakeDeltas struct {
	mu    sync.Mutex
	calls int
	fn    func(disliked, neutral []uuid.UUID) (scoring.DeltaResult, error)
}

func (f *fakeDeltas) RequestScoreDeltas(_ context.Context, disliked, neutral []uuid.UUID) (scoring.DeltaResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(disliked, neutral)
	}
	out := scoring.DeltaResult{
		DislikedIDs:    append([]uuid.UUID{}, disliked...),
		NeutralIDs:     append([]uuid.UUID{}, neutral...),
		DislikedDeltas: make([]float64, len(disliked)),
		NeutralDeltas:  make([]float64, len(neutral)),
	}
	for i := range out.DislikedDeltas {
		out.DislikedDeltas[i] = -1
	}
	for i := range out.NeutralDeltas {
		out.NeutralDeltas[i] = 0.25
	}
	return out, nil
}

type testEnv struct {
	ctx    context.Context
	db     *gorm.DB
	log    *logger.Logger
	repos  repos.Repos
	deltas *fakeDeltas
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	return &testEnv{
		ctx:    context.Background(),
		db:     db,
		log:    log,
		repos:  repos.New(db, log),
		deltas: &fakeDeltas{},
	}
}

func (e *testEnv) engine(opts ScoreUpdateOptions) ScoreUpdateEngine {
	return NewScoreUpdateEngine(e.db, e.log, e.repos.Score, e.repos.ProductColor, e.deltas, nil, opts)
}

func (e *testEnv) colorScore(t *testing.T, id uuid.UUID) types.ProductColorScore {
	t.Helper()
	var row types.ProductColorScore
	if err := e.db.WithContext(e.ctx).First(&row, "id = ?", id).Error; err != nil {
		t.Fatalf("load color score %s: %v", id, err)
	}
	return row
}

func (e *testEnv) productScore(t *testing.T, profileID, productID uuid.UUID) types.ProductScore {
	t.Helper()
	var row types.ProductScore
	if err := e.db.WithContext(e.ctx).First(&row, "profile_id = ? AND product_id = ?", profileID, productID).Error; err != nil {
		t.Fatalf("load product score: %v", err)
	}
	return row
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
