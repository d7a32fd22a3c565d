package mysql

// schemaSQL is applied statement by statement so the DSN does not need
// multiStatements=true.
var schemaSQL = []string{`
CREATE TABLE IF NOT EXISTS dataset_columns (
  position INT          NOT NULL PRIMARY KEY,
  name     VARCHAR(255) NOT NULL
)`, `
CREATE TABLE IF NOT EXISTS listings (
  row_idx     INT       NOT NULL PRIMARY KEY,
  price       DOUBLE    NOT NULL,
  bedrooms    INT       NOT NULL,
  bathrooms   INT       NOT NULL,
  square_feet DOUBLE    NOT NULL,
  latitude    DOUBLE    NOT NULL,
  longitude   DOUBLE    NOT NULL,
  extra       JSON      NULL,
  imported_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
  INDEX idx_listings_price (price),
  INDEX idx_listings_rooms (bedrooms, bathrooms),
  INDEX idx_listings_sqft (square_feet)
)`, `
CREATE TABLE IF NOT EXISTS dataset_imports (
  id           TINYINT   NOT NULL PRIMARY KEY,
  row_count    INT       NOT NULL,
  completed_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
}

const truncateImportsSQL = `DELETE FROM dataset_imports`

const truncateColumnsSQL = `DELETE FROM dataset_columns`

const truncateListingsSQL = `DELETE FROM listings`

const insertColumnSQL = `
INSERT INTO dataset_columns (position, name)
VALUES (?, ?)
ON DUPLICATE KEY UPDATE name = VALUES(name)
`

// A single marker row; present only after every batch of an import landed.
const markImportSQL = `
INSERT INTO dataset_imports (id, row_count)
VALUES (1, ?)
ON DUPLICATE KEY UPDATE row_count = VALUES(row_count), completed_at = CURRENT_TIMESTAMP
`

const insertListingsPrefix = "INSERT INTO listings\n  (row_idx, price, bedrooms, bathrooms, square_feet, latitude, longitude, extra)\nVALUES "

// Re-importing the same row index overwrites it.
const insertListingsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  price       = VALUES(price),\n" +
	"  bedrooms    = VALUES(bedrooms),\n" +
	"  bathrooms   = VALUES(bathrooms),\n" +
	"  square_feet = VALUES(square_feet),\n" +
	"  latitude    = VALUES(latitude),\n" +
	"  longitude   = VALUES(longitude),\n" +
	"  extra       = VALUES(extra),\n" +
	"  imported_at = CURRENT_TIMESTAMP\n"

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const selectColumnsSQL = `SELECT name FROM dataset_columns ORDER BY position`

// Row order of the source file is the row_idx order.
const selectListingsSQL = `
SELECT row_idx, price, bedrooms, bathrooms, square_feet, latitude, longitude, extra
FROM listings
ORDER BY row_idx
`

const countListingsSQL = `SELECT COUNT(*) FROM listings`

const selectImportSQL = `SELECT row_count FROM dataset_imports WHERE id = 1`
