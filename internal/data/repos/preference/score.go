package preference

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wshinigamic/wtg-backend/internal/data/dberr"
	types "github.com/wshinigamic/wtg-backend/internal/domain"
	"github.com/wshinigamic/wtg-backend/internal/domain/errs"
	"github.com/wshinigamic/wtg-backend/internal/platform/dbctx"
	"github.com/wshinigamic/wtg-backend/internal/platform/logger"
)

// ColorScoreRow is a color score loaded together with its parent product score.
type ColorScoreRow struct {
	ColorScore   *types.ProductColorScore
	ProductScore *types.ProductScore
}

// HistoryRow is one scored, clustered color of a profile.
type HistoryRow struct {
	ColorScoreID   uuid.UUID
	ProductColorID uuid.UUID
	ProductID      uuid.UUID
	Cluster        int
	Score          float64
}

// scoreBatchSize bounds the rows written by one UPDATE statement.
const scoreBatchSize = 1000

type ScoreRepo interface {
	// FetchColorScores returns the profile's existing color score rows for
	// colorIDs keyed by color id, and the keys in primary key order.
	FetchColorScores(dbc dbctx.Context, profileID uuid.UUID, colorIDs []uuid.UUID) (map[uuid.UUID]*ColorScoreRow, []uuid.UUID, error)
	EnsureColorScores(dbc dbctx.Context, profileID uuid.UUID, colors []*types.ProductColor) (int, error)
	UpdateColorScores(dbc dbctx.Context, rows []*types.ProductColorScore) error
	UpdateProductScores(dbc dbctx.Context, rows []*types.ProductScore) error
	// History returns the profile's scored colors that carry a cluster,
	// restricted to colors of productIDs.
	History(dbc dbctx.Context, profileID uuid.UUID, productIDs []uuid.UUID) ([]HistoryRow, error)
	ProductScoresByProducts(dbc dbctx.Context, profileID uuid.UUID, productIDs []uuid.UUID) (map[uuid.UUID]float64, error)
	ColorScoresByColors(dbc dbctx.Context, profileID uuid.UUID, colorIDs []uuid.UUID) (map[uuid.UUID]float64, error)
}

type scoreRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScoreRepo(db *gorm.DB, baseLog *logger.Logger) ScoreRepo {
	return &scoreRepo{db: db, log: baseLog.With("repo", "ScoreRepo")}
}

func (r *scoreRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *scoreRepo) FetchColorScores(dbc dbctx.Context, profileID uuid.UUID, colorIDs []uuid.UUID) (map[uuid.UUID]*ColorScoreRow, []uuid.UUID, error) {
	const op = "scores.fetch_color_scores"
	out := map[uuid.UUID]*ColorScoreRow{}
	ids := dedupe(colorIDs)
	if len(ids) == 0 {
		return out, []uuid.UUID{}, nil
	}
	t := r.tx(dbc).WithContext(dbc.Ctx)

	var colorRows []*types.ProductColorScore
	if err := t.Model(&types.ProductColorScore{}).
		Select("product_color_score.*").
		Joins("JOIN product_score ON product_score.id = product_color_score.product_score_id").
		Where("product_score.profile_id = ? AND product_color_score.product_color_id IN ?", profileID, ids).
		Order("product_color_score.id ASC").
		Find(&colorRows).Error; err != nil {
		return nil, nil, dberr.Map(op, err)
	}
	if len(colorRows) == 0 {
		return out, []uuid.UUID{}, nil
	}

	parentIDs := make([]uuid.UUID, 0, len(colorRows))
	seen := map[uuid.UUID]bool{}
	for _, cs := range colorRows {
		if !seen[cs.ProductScoreID] {
			seen[cs.ProductScoreID] = true
			parentIDs = append(parentIDs, cs.ProductScoreID)
		}
	}
	var parents []*types.ProductScore
	if err := t.Where("id IN ?", parentIDs).Find(&parents).Error; err != nil {
		return nil, nil, dberr.Map(op, err)
	}
	byID := make(map[uuid.UUID]*types.ProductScore, len(parents))
	for _, p := range parents {
		byID[p.ID] = p
	}

	keys := make([]uuid.UUID, 0, len(colorRows))
	for _, cs := range colorRows {
		parent := byID[cs.ProductScoreID]
		if parent == nil {
			return nil, nil, errs.Consistency(op, "color score %s has no parent product score", cs.ID)
		}
		out[cs.ProductColorID] = &ColorScoreRow{ColorScore: cs, ProductScore: parent}
		keys = append(keys, cs.ProductColorID)
	}
	return out, keys, nil
}

// EnsureColorScores creates zero-valued product and color score rows the
// profile is missing for colors. Existing rows are left alone. It returns
// the number of color score rows created.
func (r *scoreRepo) EnsureColorScores(dbc dbctx.Context, profileID uuid.UUID, colors []*types.ProductColor) (int, error) {
	const op = "scores.ensure_color_scores"
	if len(colors) == 0 {
		return 0, nil
	}
	t := r.tx(dbc).WithContext(dbc.Ctx)

	productIDs := make([]uuid.UUID, 0, len(colors))
	seen := map[uuid.UUID]bool{}
	for _, c := range colors {
		if c != nil && !seen[c.ProductID] {
			seen[c.ProductID] = true
			productIDs = append(productIDs, c.ProductID)
		}
	}
	parents := make([]*types.ProductScore, 0, len(productIDs))
	for _, pid := range productIDs {
		parents = append(parents, &types.ProductScore{ProfileID: profileID, ProductID: pid})
	}
	if err := t.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "profile_id"}, {Name: "product_id"}},
		DoNothing: true,
	}).Create(&parents).Error; err != nil {
		return 0, dberr.Map(op, err)
	}

	var stored []*types.ProductScore
	if err := t.Where("profile_id = ? AND product_id IN ?", profileID, productIDs).Find(&stored).Error; err != nil {
		return 0, dberr.Map(op, err)
	}
	parentByProduct := make(map[uuid.UUID]uuid.UUID, len(stored))
	for _, p := range stored {
		parentByProduct[p.ProductID] = p.ID
	}

	rows := make([]*types.ProductColorScore, 0, len(colors))
	for _, c := range colors {
		if c == nil {
			continue
		}
		parentID, ok := parentByProduct[c.ProductID]
		if !ok {
			return 0, errs.Consistency(op, "product score for product %s vanished", c.ProductID)
		}
		rows = append(rows, &types.ProductColorScore{ProductScoreID: parentID, ProductColorID: c.ID})
	}
	if len(rows) == 0 {
		return 0, nil
	}
	res := t.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_score_id"}, {Name: "product_color_id"}},
		DoNothing: true,
	}).Create(&rows)
	if res.Error != nil {
		return 0, dberr.Map(op, res.Error)
	}
	return int(res.RowsAffected), nil
}

type versionedScore struct {
	id      uuid.UUID
	score   float64
	version int64
}

// updateVersioned writes scores to table in one statement per batch. Each
// row only matches while its stored version equals the version it was read
// at; any row that does not match fails the call with a consistency error.
func updateVersioned(t *gorm.DB, op, table string, rows []versionedScore) error {
	for start := 0; start < len(rows); start += scoreBatchSize {
		end := start + scoreBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]

		ids := make([]uuid.UUID, 0, len(batch))
		args := make([]any, 0, len(batch)*5)
		var sql strings.Builder
		sql.WriteString("UPDATE " + table + " SET score = CASE id")
		for _, row := range batch {
			sql.WriteString(" WHEN ? THEN CAST(? AS DOUBLE PRECISION)")
			args = append(args, row.id, row.score)
			ids = append(ids, row.id)
		}
		sql.WriteString(" ELSE score END, version = version + 1 WHERE id IN ? AND version = CASE id")
		args = append(args, ids)
		for _, row := range batch {
			sql.WriteString(" WHEN ? THEN CAST(? AS BIGINT)")
			args = append(args, row.id, row.version)
		}
		sql.WriteString(" END")

		res := t.Exec(sql.String(), args...)
		if res.Error != nil {
			return dberr.Map(op, res.Error)
		}
		if res.RowsAffected != int64(len(batch)) {
			return errs.Consistency(op, "%d of %d %s rows were modified concurrently", int64(len(batch))-res.RowsAffected, len(batch), table)
		}
	}
	return nil
}

// UpdateColorScores writes every row's score guarded by its version.
func (r *scoreRepo) UpdateColorScores(dbc dbctx.Context, rows []*types.ProductColorScore) error {
	batch := make([]versionedScore, 0, len(rows))
	for _, row := range rows {
		if row != nil {
			batch = append(batch, versionedScore{id: row.ID, score: row.Score, version: row.Version})
		}
	}
	if len(batch) == 0 {
		return nil
	}
	if err := updateVersioned(r.tx(dbc).WithContext(dbc.Ctx), "scores.update_color_scores", "product_color_score", batch); err != nil {
		return err
	}
	for _, row := range rows {
		if row != nil {
			row.Version++
		}
	}
	return nil
}

func (r *scoreRepo) UpdateProductScores(dbc dbctx.Context, rows []*types.ProductScore) error {
	batch := make([]versionedScore, 0, len(rows))
	for _, row := range rows {
		if row != nil {
			batch = append(batch, versionedScore{id: row.ID, score: row.Score, version: row.Version})
		}
	}
	if len(batch) == 0 {
		return nil
	}
	if err := updateVersioned(r.tx(dbc).WithContext(dbc.Ctx), "scores.update_product_scores", "product_score", batch); err != nil {
		return err
	}
	for _, row := range rows {
		if row != nil {
			row.Version++
		}
	}
	return nil
}

func (r *scoreRepo) History(dbc dbctx.Context, profileID uuid.UUID, productIDs []uuid.UUID) ([]HistoryRow, error) {
	ids := dedupe(productIDs)
	if len(ids) == 0 {
		return []HistoryRow{}, nil
	}
	var rows []HistoryRow
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Table("product_color_score").
		Select("product_color_score.id AS color_score_id, product_color_score.product_color_id, product_color.product_id, product_color.cluster, product_color_score.score").
		Joins("JOIN product_score ON product_score.id = product_color_score.product_score_id").
		Joins("JOIN product_color ON product_color.id = product_color_score.product_color_id").
		Where("product_score.profile_id = ? AND product_color.product_id IN ? AND product_color.cluster IS NOT NULL", profileID, ids).
		Order("product_color_score.id ASC").
		Scan(&rows).Error; err != nil {
		return nil, dberr.Map("scores.history", err)
	}
	return rows, nil
}

func (r *scoreRepo) ProductScoresByProducts(dbc dbctx.Context, profileID uuid.UUID, productIDs []uuid.UUID) (map[uuid.UUID]float64, error) {
	out := map[uuid.UUID]float64{}
	ids := dedupe(productIDs)
	if len(ids) == 0 {
		return out, nil
	}
	var rows []*types.ProductScore
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Where("profile_id = ? AND product_id IN ?", profileID, ids).
		Find(&rows).Error; err != nil {
		return nil, dberr.Map("scores.product_scores", err)
	}
	for _, row := range rows {
		out[row.ProductID] = row.Score
	}
	return out, nil
}

// ColorScoresByColors returns the profile's score per color id; colors the
// profile never scored are absent.
func (r *scoreRepo) ColorScoresByColors(dbc dbctx.Context, profileID uuid.UUID, colorIDs []uuid.UUID) (map[uuid.UUID]float64, error) {
	out := map[uuid.UUID]float64{}
	ids := dedupe(colorIDs)
	if len(ids) == 0 || profileID == uuid.Nil {
		return out, nil
	}
	var rows []struct {
		ProductColorID uuid.UUID
		Score          float64
	}
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Table("product_color_score").
		Select("product_color_score.product_color_id, product_color_score.score").
		Joins("JOIN product_score ON product_score.id = product_color_score.product_score_id").
		Where("product_score.profile_id = ? AND product_color_score.product_color_id IN ?", profileID, ids).
		Scan(&rows).Error; err != nil {
		return nil, dberr.Map("scores.color_scores", err)
	}
	for _, row := range rows {
		out[row.ProductColorID] = row.Score
	}
	return out, nil
}
