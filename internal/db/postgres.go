package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/XSAM/otelsql"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/patrickwarner/adslots/internal/models"
)

// Postgres wraps a postgres DB connection.
type Postgres struct {
	DB *sql.DB
}

// schemaSQL sets up the necessary tables if they don't exist.
const schemaSQL = `CREATE TABLE IF NOT EXISTS ads (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    image_url TEXT NOT NULL,
    popup_image_url TEXT,
    redirect_url TEXT,
    action_type TEXT NOT NULL,
    popup_description TEXT,
    pages TEXT[] NOT NULL DEFAULT '{}',
    placement TEXT NOT NULL,
    position INT NOT NULL DEFAULT 0,
    target_state TEXT,
    target_city TEXT,
    target_pincode TEXT,
    start_date DATE,
    end_date DATE,
    status TEXT NOT NULL DEFAULT 'ACTIVE',
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Page reads filter on status and page membership
CREATE INDEX IF NOT EXISTS idx_ads_status ON ads (status);
CREATE INDEX IF NOT EXISTS idx_ads_pages ON ads USING GIN (pages);
`

const adColumns = `id, title, image_url, popup_image_url, redirect_url, action_type, popup_description, pages, placement, position, target_state, target_city, target_pincode, start_date, end_date, status`

// InitPostgres connects to Postgres with connection pooling configuration.
func InitPostgres(dsn string, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (*Postgres, error) {
	// Register the otelsql wrapper for postgres
	driverName, err := otelsql.Register("postgres",
		otelsql.WithAttributes(
			attribute.String("db.system", "postgresql"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("register otelsql: %w", err)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	p := &Postgres{DB: db}
	if err := p.ensureSchema(); err != nil {
		return nil, err
	}
	zap.L().Info("Connected to Postgres with connection pooling",
		zap.Int("max_open_conns", maxOpenConns),
		zap.Int("max_idle_conns", maxIdleConns),
		zap.Duration("conn_max_lifetime", connMaxLifetime))
	return p, nil
}

// Close terminates the Postgres connection.
func (p *Postgres) Close() {
	if p != nil && p.DB != nil {
		if err := p.DB.Close(); err != nil {
			zap.L().Error("postgres close", zap.Error(err))
		}
	}
}

// ensureSchema creates the required tables if they do not exist.
func (p *Postgres) ensureSchema() error {
	ctx := context.Background()
	if _, err := p.DB.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// adRow mirrors one row of the ads table with its nullable columns.
type adRow struct {
	ID               string
	Title            string
	ImageURL         string
	PopupImageURL    sql.NullString
	RedirectURL      sql.NullString
	ActionType       string
	PopupDescription sql.NullString
	Pages            []string
	Placement        string
	Position         int
	TargetState      sql.NullString
	TargetCity       sql.NullString
	TargetPincode    sql.NullString
	StartDate        sql.NullTime
	EndDate          sql.NullTime
	Status           string
}

func (r *adRow) dest() []any {
	return []any{
		&r.ID, &r.Title, &r.ImageURL, &r.PopupImageURL, &r.RedirectURL,
		&r.ActionType, &r.PopupDescription, pq.Array(&r.Pages), &r.Placement,
		&r.Position, &r.TargetState, &r.TargetCity, &r.TargetPincode,
		&r.StartDate, &r.EndDate, &r.Status,
	}
}

// record converts the row to an AdRecord. Enum values are copied as stored so
// the resolver can report unknown placements instead of losing them here.
func (r adRow) record() models.AdRecord {
	return models.AdRecord{
		ID:               r.ID,
		Title:            r.Title,
		ImageURL:         r.ImageURL,
		PopupImageURL:    nullString(r.PopupImageURL),
		RedirectURL:      nullString(r.RedirectURL),
		ActionType:       models.ActionType(r.ActionType),
		PopupDescription: nullString(r.PopupDescription),
		Pages:            r.Pages,
		Placement:        models.Placement(r.Placement),
		Position:         r.Position,
		TargetState:      nullString(r.TargetState),
		TargetCity:       nullString(r.TargetCity),
		TargetPincode:    nullString(r.TargetPincode),
		StartDate:        nullDate(r.StartDate),
		EndDate:          nullDate(r.EndDate),
		Status:           models.Status(r.Status),
	}
}

// nullString maps NULL and empty text to nil; an empty target column means
// "not targeted", not "matches only the empty value".
func nullString(ns sql.NullString) *string {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	s := ns.String
	return &s
}

func nullDate(nt sql.NullTime) *models.Date {
	if !nt.Valid {
		return nil
	}
	d := models.DateOf(nt.Time)
	return &d
}

// args returns the column values of ad in adColumns order.
func args(ad models.AdRecord) []any {
	return []any{
		ad.ID, ad.Title, ad.ImageURL, ad.PopupImageURL, ad.RedirectURL,
		string(ad.ActionType), ad.PopupDescription, pq.Array(ad.Pages), string(ad.Placement),
		ad.Position, ad.TargetState, ad.TargetCity, ad.TargetPincode,
		ad.StartDate, ad.EndDate, string(ad.Status),
	}
}

func (p *Postgres) queryAds(ctx context.Context, query string, params ...any) ([]models.AdRecord, error) {
	rows, err := p.DB.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query ads: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ads []models.AdRecord
	for rows.Next() {
		var r adRow
		if err := rows.Scan(r.dest()...); err != nil {
			return nil, fmt.Errorf("scan ad: %w", err)
		}
		ads = append(ads, r.record())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return ads, nil
}

// LoadAds retrieves every ad record regardless of status.
func (p *Postgres) LoadAds(ctx context.Context) ([]models.AdRecord, error) {
	return p.queryAds(ctx, `SELECT `+adColumns+` FROM ads ORDER BY id`)
}

// LoadActiveAdsForPage returns ACTIVE ads whose pages contain pageKey.
func (p *Postgres) LoadActiveAdsForPage(ctx context.Context, pageKey string) ([]models.AdRecord, error) {
	return p.queryAds(ctx, `SELECT `+adColumns+` FROM ads WHERE status = 'ACTIVE' AND $1 = ANY(pages) ORDER BY id`, pageKey)
}

// GetAd fetches a single ad by ID, returning models.ErrNotFound when absent.
func (p *Postgres) GetAd(ctx context.Context, id string) (models.AdRecord, error) {
	var r adRow
	err := p.DB.QueryRowContext(ctx, `SELECT `+adColumns+` FROM ads WHERE id=$1`, id).Scan(r.dest()...)
	if errors.Is(err, sql.ErrNoRows) {
		return models.AdRecord{}, models.ErrNotFound
	}
	if err != nil {
		return models.AdRecord{}, fmt.Errorf("get ad %s: %w", id, err)
	}
	return r.record(), nil
}

// InsertAd persists a new ad record.
func (p *Postgres) InsertAd(ctx context.Context, ad models.AdRecord) error {
	_, err := p.DB.ExecContext(ctx, `INSERT INTO ads (`+adColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`, args(ad)...)
	if err != nil {
		return fmt.Errorf("insert ad: %w", err)
	}
	return nil
}

// UpdateAd overwrites every column of an existing ad.
func (p *Postgres) UpdateAd(ctx context.Context, ad models.AdRecord) error {
	res, err := p.DB.ExecContext(ctx, `UPDATE ads SET title=$2, image_url=$3, popup_image_url=$4, redirect_url=$5, action_type=$6, popup_description=$7, pages=$8, placement=$9, position=$10, target_state=$11, target_city=$12, target_pincode=$13, start_date=$14, end_date=$15, status=$16, updated_at=CURRENT_TIMESTAMP WHERE id=$1`, args(ad)...)
	if err != nil {
		return fmt.Errorf("update ad: %w", err)
	}
	return expectRow(res)
}

// DeleteAd permanently removes an ad.
func (p *Postgres) DeleteAd(ctx context.Context, id string) error {
	res, err := p.DB.ExecContext(ctx, `DELETE FROM ads WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete ad: %w", err)
	}
	return expectRow(res)
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}
