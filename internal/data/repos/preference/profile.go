package preference

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wshinigamic/wtg-backend/internal/data/dberr"
	types "github.com/wshinigamic/wtg-backend/internal/domain"
	"github.com/wshinigamic/wtg-backend/internal/domain/errs"
	"github.com/wshinigamic/wtg-backend/internal/platform/dbctx"
	"github.com/wshinigamic/wtg-backend/internal/platform/logger"
)

type ProfileRepo interface {
	CreateAnonymous(dbc dbctx.Context) (*types.PreferenceProfile, error)
	GetByID(dbc dbctx.Context, profileID uuid.UUID) (*types.PreferenceProfile, error)
	GetByToken(dbc dbctx.Context, token uuid.UUID) (*types.PreferenceProfile, error)
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.PreferenceProfile, error)
	GetOrCreateByUser(dbc dbctx.Context, userID uuid.UUID) (*types.PreferenceProfile, error)
	LinkUser(dbc dbctx.Context, profileID, userID uuid.UUID) (*types.PreferenceProfile, error)
	Delete(dbc dbctx.Context, profileID uuid.UUID) error
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return &profileRepo{db: db, log: baseLog.With("repo", "ProfileRepo")}
}

func (r *profileRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *profileRepo) CreateAnonymous(dbc dbctx.Context) (*types.PreferenceProfile, error) {
	p := &types.PreferenceProfile{Token: uuid.New()}
	if err := r.tx(dbc).WithContext(dbc.Ctx).Create(p).Error; err != nil {
		return nil, dberr.Map("profile.create_anonymous", err)
	}
	return p, nil
}

func (r *profileRepo) getOne(dbc dbctx.Context, op, query string, arg any) (*types.PreferenceProfile, error) {
	var p types.PreferenceProfile
	err := r.tx(dbc).WithContext(dbc.Ctx).Where(query, arg).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound(op, "preference profile not found")
		}
		return nil, dberr.Map(op, err)
	}
	return &p, nil
}

func (r *profileRepo) GetByID(dbc dbctx.Context, profileID uuid.UUID) (*types.PreferenceProfile, error) {
	if profileID == uuid.Nil {
		return nil, errs.Validation("profile.get", "profile id is required")
	}
	return r.getOne(dbc, "profile.get", "id = ?", profileID)
}

func (r *profileRepo) GetByToken(dbc dbctx.Context, token uuid.UUID) (*types.PreferenceProfile, error) {
	if token == uuid.Nil {
		return nil, errs.Validation("profile.get_by_token", "token is required")
	}
	return r.getOne(dbc, "profile.get_by_token", "token = ?", token)
}

func (r *profileRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.PreferenceProfile, error) {
	if userID == uuid.Nil {
		return nil, errs.Validation("profile.get_by_user", "user id is required")
	}
	return r.getOne(dbc, "profile.get_by_user", "user_id = ?", userID)
}

// GetOrCreateByUser is idempotent: concurrent callers converge on the one
// row the user_id unique index admits.
func (r *profileRepo) GetOrCreateByUser(dbc dbctx.Context, userID uuid.UUID) (*types.PreferenceProfile, error) {
	p, err := r.GetByUserID(dbc, userID)
	if err == nil || !errs.IsCode(err, errs.CodeNotFound) {
		return p, err
	}
	row := &types.PreferenceProfile{Token: uuid.New(), UserID: &userID}
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(row).Error; err != nil {
		return nil, dberr.Map("profile.get_or_create", err)
	}
	return r.GetByUserID(dbc, userID)
}

// LinkUser attaches userID to an anonymous profile. The link is set once;
// linking to a second user, or a user that already owns another profile,
// is a conflict.
func (r *profileRepo) LinkUser(dbc dbctx.Context, profileID, userID uuid.UUID) (*types.PreferenceProfile, error) {
	const op = "profile.link_user"
	if profileID == uuid.Nil || userID == uuid.Nil {
		return nil, errs.Validation(op, "profile id and user id are required")
	}
	owned, err := r.GetByUserID(dbc, userID)
	switch {
	case err == nil && owned.ID != profileID:
		return nil, errs.Conflict(op, "user already owns a preference profile")
	case err == nil:
		return owned, nil
	case !errs.IsCode(err, errs.CodeNotFound):
		return nil, err
	}

	res := r.tx(dbc).WithContext(dbc.Ctx).
		Model(&types.PreferenceProfile{}).
		Where("id = ? AND user_id IS NULL", profileID).
		Updates(map[string]any{"user_id": userID, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return nil, dberr.Map(op, res.Error)
	}
	p, err := r.GetByID(dbc, profileID)
	if err != nil {
		return nil, err
	}
	if p.UserID == nil || *p.UserID != userID {
		return nil, errs.Conflict(op, "preference profile is linked to another user")
	}
	return p, nil
}

// Delete removes the profile with every score, dislike and wishlist row it
// owns, in one transaction.
func (r *profileRepo) Delete(dbc dbctx.Context, profileID uuid.UUID) error {
	const op = "profile.delete"
	if profileID == uuid.Nil {
		return errs.Validation(op, "profile id is required")
	}
	return r.tx(dbc).WithContext(dbc.Ctx).Transaction(func(txx *gorm.DB) error {
		parents := txx.Model(&types.ProductScore{}).Select("id").Where("profile_id = ?", profileID)
		if err := txx.Where("product_score_id IN (?)", parents).Delete(&types.ProductColorScore{}).Error; err != nil {
			return dberr.Map(op, err)
		}
		if err := txx.Where("profile_id = ?", profileID).Delete(&types.ProductScore{}).Error; err != nil {
			return dberr.Map(op, err)
		}
		if err := txx.Where("profile_id = ?", profileID).Delete(&types.DislikedProductColor{}).Error; err != nil {
			return dberr.Map(op, err)
		}
		if err := txx.Where("profile_id = ?", profileID).Delete(&types.WishlistVariant{}).Error; err != nil {
			return dberr.Map(op, err)
		}
		res := txx.Where("id = ?", profileID).Delete(&types.PreferenceProfile{})
		if res.Error != nil {
			return dberr.Map(op, res.Error)
		}
		if res.RowsAffected == 0 {
			return errs.NotFound(op, "preference profile not found")
		}
		return nil
	})
}
