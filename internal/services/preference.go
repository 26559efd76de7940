package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wshinigamic/wtg-backend/internal/data/repos"
	types "github.com/wshinigamic/wtg-backend/internal/domain"
	"github.com/wshinigamic/wtg-backend/internal/domain/errs"
	"github.com/wshinigamic/wtg-backend/internal/platform/dbctx"
	"github.com/wshinigamic/wtg-backend/internal/platform/logger"
)

const (
	maxBulkColorIDs     = 500
	defaultDislikeLimit = 50
	maxDislikeLimit     = 200
)

// Identity is who a request acts for. A preference token always wins over
// the user id.
type Identity struct {
	UserID uuid.UUID
	Token  uuid.UUID
}

type PreferenceService interface {
	ResolveProfile(ctx context.Context, id Identity) (*types.PreferenceProfile, error)
	CreateAnonymous(ctx context.Context) (*types.PreferenceProfile, error)
	LinkToken(ctx context.Context, userID, token uuid.UUID) (*types.PreferenceProfile, error)
	DeleteProfile(ctx context.Context, profileID uuid.UUID) error

	BulkPreferenceUpdate(ctx context.Context, profileID uuid.UUID, disliked, neutral []uuid.UUID) (UpdateCounts, error)
	ListDislikes(ctx context.Context, profileID uuid.UUID, limit, offset int) ([]*types.DislikedProductColor, int64, error)
	GetDislike(ctx context.Context, profileID, id uuid.UUID) (*types.DislikedProductColor, error)

	AddWishlist(ctx context.Context, profileID, variantID uuid.UUID) (*types.WishlistVariant, error)
	RemoveWishlist(ctx context.Context, profileID, variantID uuid.UUID) error
	ListWishlist(ctx context.Context, profileID uuid.UUID) ([]*types.WishlistVariant, error)
}

type preferenceService struct {
	db     *gorm.DB
	log    *logger.Logger
	repos  repos.Repos
	engine ScoreUpdateEngine
}

func NewPreferenceService(db *gorm.DB, log *logger.Logger, r repos.Repos, engine ScoreUpdateEngine) PreferenceService {
	return &preferenceService{
		db:     db,
		log:    log.With("service", "PreferenceService"),
		repos:  r,
		engine: engine,
	}
}

func (s *preferenceService) ResolveProfile(ctx context.Context, id Identity) (*types.PreferenceProfile, error) {
	switch {
	case id.Token != uuid.Nil:
		return s.repos.Profile.GetByToken(dbctx.Context{Ctx: ctx}, id.Token)
	case id.UserID != uuid.Nil:
		return s.repos.Profile.GetOrCreateByUser(dbctx.Context{Ctx: ctx}, id.UserID)
	default:
		return nil, errs.Validation("preference.resolve_profile", "a user or preference token is required")
	}
}

func (s *preferenceService) CreateAnonymous(ctx context.Context) (*types.PreferenceProfile, error) {
	p, err := s.repos.Profile.CreateAnonymous(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, err
	}
	s.log.Info("Anonymous profile created", "profile_id", p.ID)
	return p, nil
}

func (s *preferenceService) LinkToken(ctx context.Context, userID, token uuid.UUID) (*types.PreferenceProfile, error) {
	const op = "preference.link_token"
	if userID == uuid.Nil {
		return nil, errs.Validation(op, "user id required")
	}
	if token == uuid.Nil {
		return nil, errs.Validation(op, "token required")
	}
	var linked *types.PreferenceProfile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := s.repos.Profile.GetByToken(dbctx.Context{Ctx: ctx, Tx: tx}, token)
		if err != nil {
			return err
		}
		linked, err = s.repos.Profile.LinkUser(dbctx.Context{Ctx: ctx, Tx: tx}, p.ID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Profile linked", "profile_id", linked.ID, "user_id", userID)
	return linked, nil
}

func (s *preferenceService) DeleteProfile(ctx context.Context, profileID uuid.UUID) error {
	if profileID == uuid.Nil {
		return errs.Validation("preference.delete_profile", "profile id required")
	}
	if err := s.repos.Profile.Delete(dbctx.Context{Ctx: ctx}, profileID); err != nil {
		return err
	}
	s.log.Info("Profile deleted", "profile_id", profileID)
	return nil
}

// BulkPreferenceUpdate records the dislikes and applies the resulting score
// deltas atomically. Every id must name an existing color, otherwise nothing
// is written.
func (s *preferenceService) BulkPreferenceUpdate(ctx context.Context, profileID uuid.UUID, disliked, neutral []uuid.UUID) (UpdateCounts, error) {
	const op = "preference.bulk_update"
	if profileID == uuid.Nil {
		return UpdateCounts{}, errs.Validation(op, "profile id required")
	}
	disliked, neutral = uniqueIDs(disliked), uniqueIDs(neutral)
	all := uniqueIDs(append(append([]uuid.UUID{}, disliked...), neutral...))
	if len(all) > maxBulkColorIDs {
		return UpdateCounts{}, errs.Validation(op, "at most %d product colors per update", maxBulkColorIDs)
	}
	if err := s.requireColors(ctx, op, all); err != nil {
		return UpdateCounts{}, err
	}

	var counts UpdateCounts
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.repos.Dislike.Record(dbctx.Context{Ctx: ctx, Tx: tx}, profileID, disliked); err != nil {
			return err
		}
		var err error
		counts, err = s.engine.ApplyDeltas(dbctx.Context{Ctx: ctx, Tx: tx}, profileID, disliked, neutral)
		return err
	})
	if err != nil {
		return UpdateCounts{}, err
	}
	s.log.Info("Preferences updated",
		"profile_id", profileID,
		"disliked", len(disliked),
		"neutral", len(neutral),
		"color_rows", counts.ColorScores,
		"product_rows", counts.ProductScores,
	)
	return counts, nil
}

func (s *preferenceService) requireColors(ctx context.Context, op string, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := s.repos.ProductColor.GetByIDs(dbctx.Context{Ctx: ctx}, ids)
	if err != nil {
		return err
	}
	if len(found) == len(ids) {
		return nil
	}
	have := make(map[uuid.UUID]bool, len(found))
	for _, c := range found {
		have[c.ID] = true
	}
	missing := make([]string, 0, len(ids)-len(found))
	for _, id := range ids {
		if !have[id] {
			missing = append(missing, id.String())
		}
	}
	return errs.NotFound(op, "product colors not found: %s", strings.Join(missing, ","))
}

func (s *preferenceService) ListDislikes(ctx context.Context, profileID uuid.UUID, limit, offset int) ([]*types.DislikedProductColor, int64, error) {
	const op = "preference.list_dislikes"
	if limit <= 0 {
		limit = defaultDislikeLimit
	}
	if limit > maxDislikeLimit {
		return nil, 0, errs.Validation(op, "limit must not exceed %d", maxDislikeLimit)
	}
	if offset < 0 {
		return nil, 0, errs.Validation(op, "offset must not be negative")
	}
	items, err := s.repos.Dislike.ListByProfile(dbctx.Context{Ctx: ctx}, profileID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repos.Dislike.CountByProfile(dbctx.Context{Ctx: ctx}, profileID)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *preferenceService) GetDislike(ctx context.Context, profileID, id uuid.UUID) (*types.DislikedProductColor, error) {
	return s.repos.Dislike.GetByID(dbctx.Context{Ctx: ctx}, profileID, id)
}

func (s *preferenceService) AddWishlist(ctx context.Context, profileID, variantID uuid.UUID) (*types.WishlistVariant, error) {
	const op = "preference.add_wishlist"
	if variantID == uuid.Nil {
		return nil, errs.Validation(op, "variant id required")
	}
	found, err := s.repos.Variant.GetByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{variantID})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, errs.NotFound(op, "variant %s not found", variantID)
	}
	return s.repos.Wishlist.Add(dbctx.Context{Ctx: ctx}, profileID, variantID)
}

func (s *preferenceService) RemoveWishlist(ctx context.Context, profileID, variantID uuid.UUID) error {
	const op = "preference.remove_wishlist"
	removed, err := s.repos.Wishlist.Remove(dbctx.Context{Ctx: ctx}, profileID, variantID)
	if err != nil {
		return err
	}
	if !removed {
		return errs.NotFound(op, "variant %s is not in the wishlist", variantID)
	}
	return nil
}

func (s *preferenceService) ListWishlist(ctx context.Context, profileID uuid.UUID) ([]*types.WishlistVariant, error) {
	return s.repos.Wishlist.ListByProfile(dbctx.Context{Ctx: ctx}, profileID)
}

// uniqueIDs drops nil and repeated ids, keeping first-seen order.
func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
