package mysql

const insertMakeSQL = `
INSERT INTO car_makes
  (name, description, country_of_origin, founded_year, website, is_popular)
VALUES
  (?, ?, ?, ?, ?, ?)
`

const insertModelSQL = `
INSERT INTO car_models
  (car_make_id, dealer_id, name, type, year, engine_size, transmission, fuel_type, price, color_options, is_available)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// Seeding never overwrites: rows whose unique key exists are skipped.
const insertMakeIgnoreSQL = `
INSERT IGNORE INTO car_makes
  (name, description, country_of_origin, founded_year, website, is_popular)
VALUES
  (?, ?, ?, ?, ?, ?)
`

const makeIDByNameSQL = `SELECT id FROM car_makes WHERE name = ?`

const countMakesSQL = `SELECT COUNT(*) FROM car_makes`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const makeByNameSQL = `
SELECT id, name, description, country_of_origin, founded_year, website, is_popular, created_at, updated_at
FROM car_makes
WHERE name = ?
`

// Make ordering (name), then model ordering (name, newest year first).
const listCarsSQL = `
SELECT m.name AS model_name, k.name AS make_name
FROM car_models m
JOIN car_makes k ON k.id = m.car_make_id
ORDER BY k.name, m.name, m.year DESC, m.id
`

// -----------------------------------------------------------------------------
// USERS
// -----------------------------------------------------------------------------

const insertUserSQL = `
INSERT INTO users (username, password_hash, first_name, last_name, email, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`

const userByUsernameSQL = `
SELECT id, username, password_hash, first_name, last_name, email, created_at
FROM users
WHERE username = ?
`
