package inventory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"medifinder-ingestor/core/database"
	"medifinder-ingestor/core/metrics"
	"medifinder-ingestor/core/storage"
	"medifinder-ingestor/core/storage/mocks"
	"medifinder-ingestor/feature/inventory/etl"
	"medifinder-ingestor/feature/inventory/models"
	"medifinder-ingestor/feature/inventory/store"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupStore(t *testing.T) (*store.Store, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))

	pool := database.NewPool(db, database.Config{Retries: 1}, zap.NewNop())
	return store.New(pool, zap.NewNop()), db
}

// line builds a 25-field extract line, overriding positions from the map.
func line(overrides map[int]string) string {
	fields := []string{
		"HOSPITAL REGIONAL", "LIMA", "II-2", "00012345", "JUAN PEREZ", "S",
		"01234", "PARACETAMOL 500MG TAB", "M", "120", "30,5", "122", "1",
		"2024-03-15", "ACTIVO", "MINSA", "F", "28", "150", "Normostock",
		"25", "20", "18", "360", "X",
	}
	for i, v := range overrides {
		fields[i] = v
	}
	return strings.Join(fields, "|")
}

func writeExtract(t *testing.T, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func newService(st etl.Store, client storage.Client, opts Options) *Service {
	svc := NewService(st, client, opts, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 3, 16, 8, 0, 0, 0, time.UTC) }
	return svc
}

func TestIngest_LocalExtract(t *testing.T) {
	st, db := setupStore(t)
	textfile := filepath.Join(t.TempDir(), "ingest.prom")
	svc := newService(st, nil, Options{ETL: etl.Config{BatchSize: 2}, Metrics: metrics.Config{TextfilePath: textfile}})

	path := writeExtract(t, "ICI_20240315.txt",
		line(nil),
		line(map[int]string{6: "05678", 7: "JERINGA 5ML", 8: "I", 9: "40"}),
		line(map[int]string{3: "00099999", 8: "X"}),
		line(map[int]string{1: "NULL", 3: "00088888"}),
		line(map[int]string{6: "09999", 9: ""}),
		"too|few|fields",
	)

	res, err := svc.Ingest(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, res.Report)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 5, res.Parsed)
	assert.Equal(t, 1, res.LineErrors)
	assert.Equal(t, etl.StateCompleted, res.Report.State)
	assert.Equal(t, 2, res.Report.Stats.Processed)
	assert.Equal(t, 1, res.Report.Stats.Skipped)
	assert.Equal(t, 2, res.Report.Stats.Errors)
	assert.Equal(t, 1, res.Report.Stats.RegionsCreated)
	assert.Equal(t, 1, res.Report.Stats.CentersCreated)
	assert.Equal(t, 2, res.Report.Stats.ProductsCreated)
	assert.Equal(t, 2, res.Report.Stats.InventoryCreated)
	assert.Empty(t, res.ArchivedAs)

	var regions []models.Region
	require.NoError(t, db.Find(&regions).Error)
	require.Len(t, regions, 1)
	assert.Equal(t, "LIMA", regions[0].Name)

	var centers int64
	require.NoError(t, db.Model(&models.MedicalCenter{}).Count(&centers).Error)
	assert.EqualValues(t, 1, centers)

	prom, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "medifinder_ingest_success 1")
	assert.Contains(t, string(prom), `medifinder_ingest_records{outcome="processed"} 2`)
	assert.Contains(t, string(prom), `medifinder_ingest_records{outcome="line_errors"} 1`)
}

func TestIngest_ReconcilesAgainstNewestExtract(t *testing.T) {
	st, db := setupStore(t)
	svc := newService(st, nil, Options{})
	ctx := context.Background()

	first := writeExtract(t, "ICI_20240301.txt",
		line(map[int]string{13: "2024-03-01"}),
		line(map[int]string{6: "05678", 7: "JERINGA 5ML", 8: "I", 9: "40", 13: "2024-03-01"}),
	)
	res, err := svc.Ingest(ctx, first)
	require.NoError(t, err)
	assert.Zero(t, res.Report.Reconciled)

	second := writeExtract(t, "ICI_20240315.txt", line(map[int]string{9: "80"}))
	res, err = svc.Ingest(ctx, second)
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Report.Reconciled)
	require.NotNil(t, res.Report.LatestReportDate)
	assert.Equal(t, "2024-03-15", res.Report.LatestReportDate.Format("2006-01-02"))

	var stale []models.Inventory
	require.NoError(t, db.Where("report_date < ?", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)).Find(&stale).Error)
	require.Len(t, stale, 2)
	for _, row := range stale {
		assert.True(t, row.CurrentStock.IsZero())
		assert.Equal(t, models.StockOutIndicator, row.StatusIndicator)
	}

	var fresh models.Inventory
	require.NoError(t, db.Where("report_date = ?", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)).First(&fresh).Error)
	assert.True(t, fresh.CurrentStock.Equal(decimal.NewFromInt(80)))
}

func TestIngest_ObjectStorageSource(t *testing.T) {
	st, _ := setupStore(t)
	client := new(mocks.Client)
	svc := newService(st, client, Options{
		Storage: storage.Config{Bucket: "extracts", Archive: true, ArchivePrefix: "archive"},
	})

	content := line(nil) + "\n"
	client.On("GetObject", mock.Anything, "incoming", "2024/ICI_20240315.txt", mock.Anything).
		Return(io.NopCloser(strings.NewReader(content)), nil)
	client.On("BucketExists", mock.Anything, "extracts").Return(true, nil)
	client.On("PutObject", mock.Anything, "extracts",
		mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "archive/2024-03-16/") && strings.HasSuffix(key, "-ICI_20240315.txt")
		}),
		mock.Anything, int64(len(content)), mock.Anything,
	).Return(minio.UploadInfo{}, nil)

	res, err := svc.Ingest(context.Background(), "s3://incoming/2024/ICI_20240315.txt")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Report.Stats.Processed)
	assert.Equal(t, "archive/2024-03-16/"+res.RunID+"-ICI_20240315.txt", res.ArchivedAs)
	client.AssertExpectations(t)
}

func TestIngest_ArchiveFailureIsNotFatal(t *testing.T) {
	st, _ := setupStore(t)
	client := new(mocks.Client)
	svc := newService(st, client, Options{
		Storage: storage.Config{Bucket: "extracts", Archive: true, ArchivePrefix: "archive"},
	})
	client.On("BucketExists", mock.Anything, "extracts").Return(false, errors.New("connection refused"))

	res, err := svc.Ingest(context.Background(), writeExtract(t, "ICI.txt", line(nil)))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Report.Stats.Processed)
	assert.Empty(t, res.ArchivedAs)
}

func TestIngest_ObjectStorageDisabled(t *testing.T) {
	st, _ := setupStore(t)
	svc := newService(st, nil, Options{})

	_, err := svc.Ingest(context.Background(), "s3://incoming/ICI.txt")
	assert.ErrorIs(t, err, ErrStorageDisabled)
}

func TestIngest_MissingSource(t *testing.T) {
	st, _ := setupStore(t)
	textfile := filepath.Join(t.TempDir(), "ingest.prom")
	svc := newService(st, nil, Options{Metrics: metrics.Config{TextfilePath: textfile}})

	res, err := svc.Ingest(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Nil(t, res.Report)

	prom, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "medifinder_ingest_success 0")
}

func TestIngest_InvalidParserConfig(t *testing.T) {
	st, _ := setupStore(t)
	svc := newService(st, nil, Options{})
	svc.opts.Parser.Delimiter = "||"

	_, err := svc.Ingest(context.Background(), writeExtract(t, "ICI.txt", line(nil)))
	assert.ErrorContains(t, err, "invalid parser configuration")
}
