package dataset

import (
	"fmt"
	"log"
	"strings"

	"github.com/pivolan/go_utils"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pivolan/readstats_dashboard/domain/models"
)

// OpenClickHouse connects through ClickHouse's MySQL protocol port.
func OpenClickHouse(dsn string) (*gorm.DB, error) {
	return gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
}

func getColumnAndTypeList(db *gorm.DB, tableName models.ClickhouseTableName) ([]models.ColumnInfo, error) {
	query := fmt.Sprintf("DESCRIBE TABLE %s", tableName)
	tx := db.Raw(query)
	if tx.Error != nil {
		return nil, tx.Error
	}

	var columns []models.ColumnInfo
	if err := tx.Scan(&columns).Error; err != nil {
		return nil, err
	}
	return columns, nil
}

func missingColumns(columns []models.ColumnInfo) []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = strings.ToLower(c.Name)
	}
	var missing []string
	for _, required := range RequiredColumns {
		if !go_utils.InArray(required, names) {
			missing = append(missing, required)
		}
	}
	return missing
}

// selectColumns casts every column so that the table may store numbers
// where Record carries strings.
func selectColumns() []string {
	fields := make([]string, 0, len(RequiredColumns))
	for _, c := range RequiredColumns {
		switch c {
		case "read_length":
			fields = append(fields, "toInt64(read_length) AS read_length")
		case "mean_quality":
			fields = append(fields, "toFloat64(mean_quality) AS mean_quality")
		default:
			fields = append(fields, fmt.Sprintf("toString(%s) AS %s", c, c))
		}
	}
	return fields
}

// LoadFromClickHouse reads a per-read stats table that was imported into
// ClickHouse. Rows are ordered by start_time then read_id.
func LoadFromClickHouse(db *gorm.DB, tableName models.ClickhouseTableName) (*models.Dataset, error) {
	if !validTableName(string(tableName)) {
		return nil, fmt.Errorf("invalid table name %q", tableName)
	}
	columns, err := getColumnAndTypeList(db, tableName)
	if err != nil {
		return nil, fmt.Errorf("describing %s: %w", tableName, err)
	}
	if missing := missingColumns(columns); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	var records []models.Record
	tx := db.Table(string(tableName)).
		Select(selectColumns()).
		Order("start_time, read_id").
		Scan(&records)
	if tx.Error != nil {
		return nil, fmt.Errorf("reading %s: %w", tableName, tx.Error)
	}
	for i, r := range records {
		if r.ReadLength < 0 {
			return nil, fmt.Errorf("row %d: read_length %d is negative", i+1, r.ReadLength)
		}
	}
	log.Printf("loaded %d reads from clickhouse table %s", len(records), tableName)
	return models.NewDataset(records, nil), nil
}

func validTableName(name string) bool {
	if name == "" {
		return false
	}
	for _, part := range strings.Split(name, ".") {
		if part == "" || replaceSpecialSymbols(part) != part {
			return false
		}
	}
	return true
}
