package services

import (
	"context"
	"math/rand/v2"
	"sort"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wshinigamic/wtg-backend/internal/data/repos"
	types "github.com/wshinigamic/wtg-backend/internal/domain"
	"github.com/wshinigamic/wtg-backend/internal/domain/errs"
	"github.com/wshinigamic/wtg-backend/internal/modules/feed"
	"github.com/wshinigamic/wtg-backend/internal/observability"
	"github.com/wshinigamic/wtg-backend/internal/platform/dbctx"
	"github.com/wshinigamic/wtg-backend/internal/platform/logger"
)

// FeedQuery selects products for a profile. With IDs set, those products
// are ranked by the profile's scores; otherwise a diversified sample is
// drawn from the channel's catalog.
type FeedQuery struct {
	First       int
	ChannelSlug string
	IDs         []uuid.UUID
}

type FeedPage struct {
	Products    []*types.Product
	HasNextPage bool
}

type FeedConfig struct {
	CandidateLimit int
	MaxPageSize    int
	Params         feed.Params
}

type FeedService interface {
	ProductsByScore(ctx context.Context, profileID uuid.UUID, q FeedQuery) (FeedPage, error)
	SampleFeed(ctx context.Context, profileID uuid.UUID, candidateIDs []uuid.UUID, n int) ([]*types.Product, error)
	SampleFeedWithRand(ctx context.Context, rng *rand.Rand, profileID uuid.UUID, candidateIDs []uuid.UUID, n int) ([]*types.Product, error)
	ProductColorsWithPreference(ctx context.Context, profileID, productID uuid.UUID, channelSlug string) ([]ColorWithScore, error)
}

// ColorWithScore is a product color with the profile's score, nil when the
// profile never scored it.
type ColorWithScore struct {
	Color *types.ProductColor
	Score *float64
}

type feedService struct {
	log     *logger.Logger
	repos   repos.Repos
	sampler feed.Sampler
	cfg     FeedConfig
	metrics *observability.Metrics
}

func NewFeedService(log *logger.Logger, r repos.Repos, metrics *observability.Metrics, cfg FeedConfig) FeedService {
	if cfg.CandidateLimit <= 0 {
		cfg.CandidateLimit = 2000
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}
	return &feedService{
		log:     log.With("service", "FeedService"),
		repos:   r,
		sampler: feed.NewSampler(cfg.Params),
		cfg:     cfg,
		metrics: metrics,
	}
}

func (s *feedService) ProductsByScore(ctx context.Context, profileID uuid.UUID, q FeedQuery) (FeedPage, error) {
	const op = "feed.products_by_score"
	switch {
	case profileID == uuid.Nil:
		return FeedPage{}, errs.Validation(op, "profile id required")
	case q.First < 0:
		return FeedPage{}, errs.Validation(op, "first must not be negative")
	case q.First > s.cfg.MaxPageSize:
		return FeedPage{}, errs.Validation(op, "first must not exceed %d", s.cfg.MaxPageSize)
	}

	if len(q.IDs) > 0 {
		ids, err := s.repos.Product.FilterVisibleIDs(dbctx.Context{Ctx: ctx}, q.IDs, q.ChannelSlug)
		if err != nil {
			return FeedPage{}, err
		}
		return s.rankByScore(ctx, profileID, ids, q.First)
	}

	if q.First == 0 {
		return FeedPage{Products: []*types.Product{}}, nil
	}
	candidates, err := s.repos.Product.ListCandidateIDs(dbctx.Context{Ctx: ctx}, q.ChannelSlug, s.cfg.CandidateLimit)
	if err != nil {
		return FeedPage{}, err
	}
	products, err := s.SampleFeed(ctx, profileID, candidates, q.First)
	if err != nil {
		return FeedPage{}, err
	}
	// sampled pages never paginate
	return FeedPage{Products: products}, nil
}

// rankByScore orders ids by the profile's product score, highest first,
// unscored products last, keeping input order among equals.
func (s *feedService) rankByScore(ctx context.Context, profileID uuid.UUID, ids []uuid.UUID, n int) (FeedPage, error) {
	scores, err := s.repos.Score.ProductScoresByProducts(dbctx.Context{Ctx: ctx}, profileID, ids)
	if err != nil {
		return FeedPage{}, err
	}
	ranked := append([]uuid.UUID(nil), ids...)
	sort.SliceStable(ranked, func(i, j int) bool {
		si, okI := scores[ranked[i]]
		sj, okJ := scores[ranked[j]]
		if okI != okJ {
			return okI
		}
		return si > sj
	})
	page := FeedPage{HasNextPage: len(ranked) > n}
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	products, err := s.productsInOrder(ctx, ranked)
	if err != nil {
		return FeedPage{}, err
	}
	page.Products = products
	return page, nil
}

func (s *feedService) SampleFeed(ctx context.Context, profileID uuid.UUID, candidateIDs []uuid.UUID, n int) ([]*types.Product, error) {
	return s.SampleFeedWithRand(ctx, nil, profileID, candidateIDs, n)
}

func (s *feedService) SampleFeedWithRand(ctx context.Context, rng *rand.Rand, profileID uuid.UUID, candidateIDs []uuid.UUID, n int) ([]*types.Product, error) {
	if n <= 0 {
		return []*types.Product{}, nil
	}
	ctx, span := observability.Tracer().Start(ctx, "FeedService.SampleFeed")
	defer span.End()
	span.SetAttributes(
		attribute.Int("feed.candidates", len(candidateIDs)),
		attribute.Int("feed.n", n),
	)

	outcome, products, err := s.sample(ctx, rng, profileID, candidateIDs, n)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.ObserveFeed(failureOutcome(err), 0)
		return nil, err
	}
	span.SetAttributes(attribute.String("feed.outcome", outcome), attribute.Int("feed.size", len(products)))
	s.metrics.ObserveFeed(outcome, len(products))
	return products, nil
}

func (s *feedService) sample(ctx context.Context, rng *rand.Rand, profileID uuid.UUID, candidateIDs []uuid.UUID, n int) (string, []*types.Product, error) {
	dbc := dbctx.Context{Ctx: ctx}
	clusters, err := s.repos.ProductColor.ClustersForProducts(dbc, candidateIDs)
	if err != nil {
		return "", nil, err
	}
	if len(clusters) == 0 {
		return "unclustered", []*types.Product{}, nil
	}

	rows, err := s.repos.Score.History(dbc, profileID, candidateIDs)
	if err != nil {
		return "", nil, err
	}
	if len(rows) == 0 {
		s.log.Debug("No score history over candidates", "profile_id", profileID, "candidates", len(candidateIDs))
		return "cold_start", []*types.Product{}, nil
	}
	history := make([]feed.Observation, 0, len(rows))
	for _, r := range rows {
		history = append(history, feed.Observation{
			ColorScoreID:   r.ColorScoreID,
			ProductColorID: r.ProductColorID,
			ProductID:      r.ProductID,
			Cluster:        r.Cluster,
			Score:          r.Score,
		})
	}

	if rng == nil {
		rng = feed.NewRand()
	}
	ids := s.sampler.Sample(rng, history, clusters, n)
	products, err := s.productsInOrder(ctx, ids)
	if err != nil {
		return "", nil, err
	}
	return "sampled", products, nil
}

func (s *feedService) productsInOrder(ctx context.Context, ids []uuid.UUID) ([]*types.Product, error) {
	if len(ids) == 0 {
		return []*types.Product{}, nil
	}
	found, err := s.repos.Product.GetByIDs(dbctx.Context{Ctx: ctx}, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*types.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]*types.Product, 0, len(ids))
	for _, id := range ids {
		if p := byID[id]; p != nil {
			out = append(out, p)
		}
	}
	return out, nil
}

// ProductColorsWithPreference lists the product's colors offered on the
// channel, highest scored first and unscored colors last.
func (s *feedService) ProductColorsWithPreference(ctx context.Context, profileID, productID uuid.UUID, channelSlug string) ([]ColorWithScore, error) {
	const op = "feed.product_colors"
	if productID == uuid.Nil {
		return nil, errs.Validation(op, "product id required")
	}
	dbc := dbctx.Context{Ctx: ctx}
	products, err := s.repos.Product.GetByIDs(dbc, []uuid.UUID{productID})
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, errs.NotFound(op, "product %s not found", productID)
	}
	colors, err := s.repos.ProductColor.ListByProduct(dbc, productID, channelSlug)
	if err != nil {
		return nil, err
	}
	colorIDs := make([]uuid.UUID, 0, len(colors))
	for _, c := range colors {
		colorIDs = append(colorIDs, c.ID)
	}
	scores, err := s.repos.Score.ColorScoresByColors(dbc, profileID, colorIDs)
	if err != nil {
		return nil, err
	}

	out := make([]ColorWithScore, 0, len(colors))
	for _, c := range colors {
		cw := ColorWithScore{Color: c}
		if score, ok := scores[c.ID]; ok {
			cw.Score = &score
		}
		out = append(out, cw)
	}
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := out[i].Score, out[j].Score
		if (si != nil) != (sj != nil) {
			return si != nil
		}
		return si != nil && *si > *sj
	})
	return out, nil
}
