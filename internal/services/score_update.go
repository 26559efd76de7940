package services

import (
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/wshinigamic/wtg-backend/internal/clients/scoring"
	"github.com/wshinigamic/wtg-backend/internal/data/repos"
	types "github.com/wshinigamic/wtg-backend/internal/domain"
	"github.com/wshinigamic/wtg-backend/internal/domain/errs"
	"github.com/wshinigamic/wtg-backend/internal/observability"
	"github.com/wshinigamic/wtg-backend/internal/platform/dbctx"
	"github.com/wshinigamic/wtg-backend/internal/platform/logger"
)

// UpdateCounts reports how many score rows an update wrote.
type UpdateCounts struct {
	ColorScores   int `json:"count_color_scores"`
	ProductScores int `json:"count_product_scores"`
}

type ScoreUpdateOptions struct {
	// CreateMissing zero-initialises score rows for catalog colors the
	// profile has never been scored on before deltas are applied.
	CreateMissing bool
}

type ScoreUpdateEngine interface {
	// ApplyDeltas fetches deltas for the given colors from the scoring
	// service and applies them to the profile's color scores, then resets
	// each touched product score to the min of its touched color scores.
	// It runs in dbc.Tx when set, otherwise in its own transaction.
	ApplyDeltas(dbc dbctx.Context, profileID uuid.UUID, disliked, neutral []uuid.UUID) (UpdateCounts, error)
}

type scoreUpdateEngine struct {
	db      *gorm.DB
	log     *logger.Logger
	scores  repos.ScoreRepo
	colors  repos.ProductColorRepo
	deltas  scoring.Client
	metrics *observability.Metrics
	opts    ScoreUpdateOptions
}

func NewScoreUpdateEngine(
	db *gorm.DB,
	log *logger.Logger,
	scores repos.ScoreRepo,
	colors repos.ProductColorRepo,
	deltas scoring.Client,
	metrics *observability.Metrics,
	opts ScoreUpdateOptions,
) ScoreUpdateEngine {
	return &scoreUpdateEngine{
		db:      db,
		log:     log.With("service", "ScoreUpdateEngine"),
		scores:  scores,
		colors:  colors,
		deltas:  deltas,
		metrics: metrics,
		opts:    opts,
	}
}

func (e *scoreUpdateEngine) ApplyDeltas(dbc dbctx.Context, profileID uuid.UUID, disliked, neutral []uuid.UUID) (UpdateCounts, error) {
	const op = "score_update.apply_deltas"
	if profileID == uuid.Nil {
		return UpdateCounts{}, errs.Validation(op, "profile id required")
	}
	ctx, span := observability.Tracer().Start(dbctx.Background(dbc.Ctx).Ctx, "ScoreUpdateEngine.ApplyDeltas")
	defer span.End()
	span.SetAttributes(
		attribute.Int("scores.disliked", len(disliked)),
		attribute.Int("scores.neutral", len(neutral)),
	)
	dbc = dbctx.Context{Ctx: ctx, Tx: dbc.Tx}

	var counts UpdateCounts
	var err error
	if dbc.Tx != nil {
		counts, err = e.apply(dbc, profileID, disliked, neutral)
	} else {
		err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var inner error
			counts, inner = e.apply(dbc.WithTx(tx), profileID, disliked, neutral)
			return inner
		})
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.metrics.ObserveScoreUpdate(failureOutcome(err), 0, 0)
		e.log.Warn("Score update failed", "profile_id", profileID, "code", errs.CodeOf(err), "error", err)
		return UpdateCounts{}, err
	}
	span.SetAttributes(
		attribute.Int("scores.color_rows", counts.ColorScores),
		attribute.Int("scores.product_rows", counts.ProductScores),
	)
	e.metrics.ObserveScoreUpdate("ok", counts.ColorScores, counts.ProductScores)
	e.log.Debug("Score update applied", "profile_id", profileID, "color_rows", counts.ColorScores, "product_rows", counts.ProductScores)
	return counts, nil
}

func (e *scoreUpdateEngine) apply(dbc dbctx.Context, profileID uuid.UUID, disliked, neutral []uuid.UUID) (UpdateCounts, error) {
	result, err := e.deltas.RequestScoreDeltas(dbc.Ctx, disliked, neutral)
	if err != nil {
		return UpdateCounts{}, err
	}
	acc := accumulateDeltas(result)
	if len(acc.order) == 0 {
		return UpdateCounts{}, nil
	}

	if e.opts.CreateMissing {
		colors, err := e.colors.GetByIDs(dbc, acc.order)
		if err != nil {
			return UpdateCounts{}, err
		}
		created, err := e.scores.EnsureColorScores(dbc, profileID, colors)
		if err != nil {
			return UpdateCounts{}, err
		}
		if created > 0 {
			e.log.Debug("Created missing color scores", "profile_id", profileID, "created", created)
		}
	}

	rows, keys, err := e.scores.FetchColorScores(dbc, profileID, acc.order)
	if err != nil {
		return UpdateCounts{}, err
	}

	colorRows := make([]*types.ProductColorScore, 0, len(keys))
	productRows := make([]*types.ProductScore, 0)
	lowest := map[uuid.UUID]float64{}
	for _, colorID := range keys {
		row := rows[colorID]
		row.ColorScore.Score += acc.delta[colorID]
		colorRows = append(colorRows, row.ColorScore)

		parentID := row.ProductScore.ID
		cur, seen := lowest[parentID]
		if !seen {
			productRows = append(productRows, row.ProductScore)
			lowest[parentID] = row.ColorScore.Score
			continue
		}
		if row.ColorScore.Score < cur {
			lowest[parentID] = row.ColorScore.Score
		}
	}
	for _, ps := range productRows {
		ps.Score = lowest[ps.ID]
	}

	if err := e.scores.UpdateColorScores(dbc, colorRows); err != nil {
		return UpdateCounts{}, err
	}
	if err := e.scores.UpdateProductScores(dbc, productRows); err != nil {
		return UpdateCounts{}, err
	}
	return UpdateCounts{ColorScores: len(colorRows), ProductScores: len(productRows)}, nil
}

type deltaSums struct {
	delta map[uuid.UUID]float64
	order []uuid.UUID
}

// accumulateDeltas sums every delta per color id, across and within the
// disliked and neutral lists, keeping first-seen order.
func accumulateDeltas(r scoring.DeltaResult) deltaSums {
	out := deltaSums{delta: make(map[uuid.UUID]float64, r.Len())}
	add := func(ids []uuid.UUID, deltas []float64) {
		for i, id := range ids {
			if i >= len(deltas) {
				return
			}
			if _, ok := out.delta[id]; !ok {
				out.order = append(out.order, id)
			}
			out.delta[id] += deltas[i]
		}
	}
	add(r.DislikedIDs, r.DislikedDeltas)
	add(r.NeutralIDs, r.NeutralDeltas)
	return out
}

// failureOutcome labels a failed operation by its error code.
func failureOutcome(err error) string {
	if code := errs.CodeOf(err); code != "" {
		return string(code)
	}
	return string(errs.CodeInternal)
}
