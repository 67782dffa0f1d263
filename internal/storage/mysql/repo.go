package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql"
	drv "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/SkanderGasmi/xrwvm-fullstack-developer-capstone/internal/domain"
)

// MySQL server error numbers mapped to domain errors.
const (
	errDupEntry        = 1062
	errNoReferencedRow = 1452
	errCheckViolated   = 3819
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

// mapErr turns driver errors into domain errors; others pass through.
func mapErr(err error) error {
	var me *drv.MySQLError
	if !errors.As(err, &me) {
		return err
	}
	switch me.Number {
	case errDupEntry:
		return fmt.Errorf("%w: %s", domain.ErrConflict, me.Message)
	case errNoReferencedRow:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, me.Message)
	case errCheckViolated:
		return &domain.ValidationError{Fields: map[string]string{"row": "check"}}
	}
	return err
}

type Repo struct {
	db *sqlx.DB
	gq goqu.DialectWrapper
}

func New(db *sqlx.DB) *Repo { return &Repo{db: db, gq: goqu.Dialect("mysql")} }

// Open connects, sizes the pool and pings once.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (r *Repo) InsertMake(ctx context.Context, m domain.CarMake) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertMakeSQL,
		m.Name, m.Description, valStr(m.CountryOfOrigin), valInt(m.FoundedYear), valStr(m.Website), m.IsPopular)
	if err != nil {
		return 0, mapErr(err)
	}
	return res.LastInsertId()
}

func (r *Repo) InsertModel(ctx context.Context, m domain.CarModel) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertModelSQL,
		m.MakeID, m.DealerID, m.Name, m.Type, m.Year,
		valStr(m.EngineSize), valStr(m.Transmission), valStr(m.FuelType),
		valStr(m.Price), valStr(m.ColorOptions), m.IsAvailable)
	if err != nil {
		return 0, mapErr(err)
	}
	return res.LastInsertId()
}

// SeedIfAbsent writes the whole dataset in one transaction. Existing makes and
// models are left untouched, so concurrent or repeated seeding cannot duplicate rows.
func (r *Repo) SeedIfAbsent(ctx context.Context, seed []domain.SeedMake) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, sm := range seed {
		mk := sm.Make
		if _, err = tx.ExecContext(ctx, insertMakeIgnoreSQL,
			mk.Name, mk.Description, valStr(mk.CountryOfOrigin), valInt(mk.FoundedYear), valStr(mk.Website), mk.IsPopular); err != nil {
			return mapErr(err)
		}
		var makeID int64
		if err = tx.GetContext(ctx, &makeID, makeIDByNameSQL, mk.Name); err != nil {
			return fmt.Errorf("seed make %q: %w", mk.Name, err)
		}
		if len(sm.Models) == 0 {
			continue
		}

		rows := make([]any, 0, len(sm.Models))
		for _, m := range sm.Models {
			rows = append(rows, goqu.Record{
				"car_make_id":   makeID,
				"dealer_id":     m.DealerID,
				"name":          m.Name,
				"type":          m.Type,
				"year":          m.Year,
				"engine_size":   valStr(m.EngineSize),
				"transmission":  valStr(m.Transmission),
				"fuel_type":     valStr(m.FuelType),
				"price":         valStr(m.Price),
				"color_options": valStr(m.ColorOptions),
				"is_available":  m.IsAvailable,
			})
		}
		q, args, qerr := r.gq.Insert("car_models").Rows(rows...).OnConflict(goqu.DoNothing()).Prepared(true).ToSQL()
		if qerr != nil {
			return qerr
		}
		if _, err = tx.ExecContext(ctx, q, args...); err != nil {
			return mapErr(err)
		}
	}
	return tx.Commit()
}

func (r *Repo) CountMakes(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.GetContext(ctx, &n, countMakesSQL)
	return n, err
}

type makeRow struct {
	ID              int64          `db:"id"`
	Name            string         `db:"name"`
	Description     string         `db:"description"`
	CountryOfOrigin sql.NullString `db:"country_of_origin"`
	FoundedYear     sql.NullInt64  `db:"founded_year"`
	Website         sql.NullString `db:"website"`
	IsPopular       bool           `db:"is_popular"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

func (r *Repo) MakeByName(ctx context.Context, name string) (domain.CarMake, error) {
	var row makeRow
	if err := r.db.GetContext(ctx, &row, makeByNameSQL, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CarMake{}, domain.ErrNotFound
		}
		return domain.CarMake{}, err
	}
	m := domain.CarMake{
		ID:              row.ID,
		Name:            row.Name,
		Description:     row.Description,
		CountryOfOrigin: strPtr(row.CountryOfOrigin),
		Website:         strPtr(row.Website),
		IsPopular:       row.IsPopular,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
	if row.FoundedYear.Valid {
		y := int(row.FoundedYear.Int64)
		m.FoundedYear = &y
	}
	return m, nil
}

func (r *Repo) ListCars(ctx context.Context) ([]domain.CarListing, error) {
	var rows []struct {
		Model string `db:"model_name"`
		Make  string `db:"make_name"`
	}
	if err := r.db.SelectContext(ctx, &rows, listCarsSQL); err != nil {
		return nil, err
	}
	out := make([]domain.CarListing, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.CarListing{CarModel: row.Model, CarMake: row.Make})
	}
	return out, nil
}

func (r *Repo) CreateUser(ctx context.Context, u domain.User) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertUserSQL,
		u.Username, u.PasswordHash, u.FirstName, u.LastName, u.Email, u.CreatedAt)
	if err != nil {
		return 0, mapErr(err)
	}
	return res.LastInsertId()
}

type userRow struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	Email        string    `db:"email"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r *Repo) UserByUsername(ctx context.Context, username string) (domain.User, error) {
	var row userRow
	if err := r.db.GetContext(ctx, &row, userByUsernameSQL, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	return domain.User(row), nil
}
