package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mccforecast/fcst/internal/iocache"
	"github.com/mccforecast/fcst/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const transactionsCSV = `id,client_id,amount,mcc,merchant_city,big
1,1556,$-77.00,5499,Beulah,5000000000
2,561,$14.57,5311,Beulah,1
3,1129,$80.00,4829,ONLINE,
4,430,"$1,200.50",5499,ONLINE,2
`

type transactionRow struct {
	ID           *int32   `parquet:"id,optional"`
	ClientID     *int32   `parquet:"client_id,optional"`
	Amount       *float32 `parquet:"amount,optional"`
	MCC          *int32   `parquet:"mcc,optional"`
	MerchantCity *string  `parquet:"merchant_city,optional"`
	Big          *int64   `parquet:"big,optional"`
}

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func columnByName(t *testing.T, profile schema.FileProfile, name string) schema.ColumnProfile {
	t.Helper()
	for _, c := range profile.Columns {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("column %q not found", name)
	return schema.ColumnProfile{}
}

func TestProfile(t *testing.T) {
	profile, err := profileReader(strings.NewReader(transactionsCSV), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, int64(4), profile.Rows)
	require.Len(t, profile.Columns, 6)

	id := columnByName(t, profile, "id")
	assert.Equal(t, schema.IntColumn, id.Kind)
	assert.True(t, id.Narrowed)
	assert.Equal(t, int64(1), id.MinInt)
	assert.Equal(t, int64(4), id.MaxInt)
	assert.False(t, id.Categorical)

	amount := columnByName(t, profile, "amount")
	assert.Equal(t, schema.FloatColumn, amount.Kind)
	assert.True(t, amount.Currency)
	assert.True(t, amount.Narrowed)

	mcc := columnByName(t, profile, "mcc")
	assert.Equal(t, schema.IntColumn, mcc.Kind)
	assert.True(t, mcc.Categorical, "mcc is categorical by default")

	city := columnByName(t, profile, "merchant_city")
	assert.Equal(t, schema.StringColumn, city.Kind)
	assert.Equal(t, 2, city.Distinct)
	assert.True(t, city.Categorical)

	big := columnByName(t, profile, "big")
	assert.Equal(t, schema.IntColumn, big.Kind)
	assert.False(t, big.Narrowed)
	assert.Equal(t, int64(1), big.Nulls)
}

func TestProfile_Options(t *testing.T) {
	opts := DefaultOptions()
	opts.StripCurrency = false
	opts.CategoryRatio = 0.25
	opts.Categorical = nil

	profile, err := profileReader(strings.NewReader(transactionsCSV), opts)
	require.NoError(t, err)

	amount := columnByName(t, profile, "amount")
	assert.Equal(t, schema.StringColumn, amount.Kind)
	assert.False(t, amount.Currency)
	assert.False(t, amount.Categorical)

	assert.False(t, columnByName(t, profile, "mcc").Categorical)
	assert.False(t, columnByName(t, profile, "merchant_city").Categorical)
}

func TestProfile_Inference(t *testing.T) {
	tests := []struct {
		name     string
		csv      string
		wantKind schema.ColumnKind
	}{
		{"ints", "v\n1\n-2\n3\n", schema.IntColumn},
		{"ints then float", "v\n1\n2.5\n", schema.FloatColumn},
		{"float then text", "v\n1.5\nabc\n", schema.StringColumn},
		{"only nulls", "v\n\nNA\n", schema.StringColumn},
		{"nulls ignored", "v\nNaN\n7\n", schema.IntColumn},
		{"scientific", "v\n1e3\n2\n", schema.FloatColumn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile, err := profileReader(strings.NewReader(tt.csv), DefaultOptions())
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, profile.Columns[0].Kind)
		})
	}
}

func TestProfile_BadHeaders(t *testing.T) {
	for _, input := range []string{"", "a,,b\n", "a,a\n1,2\n"} {
		_, err := profileReader(strings.NewReader(input), DefaultOptions())
		assert.Error(t, err, "input %q", input)
	}
}

func TestProfile_StripsBOM(t *testing.T) {
	profile, err := profileReader(strings.NewReader("\ufeffid\n1\n"), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "id", profile.Columns[0].Name)
}

func TestParseFloatCell(t *testing.T) {
	v, currency, err := parseFloatCell(" $1,234.50 ", true)
	require.NoError(t, err)
	assert.True(t, currency)
	assert.InDelta(t, 1234.5, v, 1e-9)

	v, currency, err = parseFloatCell("$-77.00", true)
	require.NoError(t, err)
	assert.True(t, currency)
	assert.InDelta(t, -77.0, v, 1e-9)

	_, _, err = parseFloatCell("$5", false)
	assert.Error(t, err)
}

func TestParquetPath(t *testing.T) {
	assert.Equal(t, "data/x.parquet", ParquetPath("data/x.csv"))
	assert.Equal(t, "data/x.parquet", ParquetPath("data/x.CSV"))
	assert.Equal(t, "data/x.txt.parquet", ParquetPath("data/x.txt"))
}

func TestBuildSchema(t *testing.T) {
	profile, err := profileReader(strings.NewReader(transactionsCSV), DefaultOptions())
	require.NoError(t, err)
	s := BuildSchema(profile)

	tests := []struct {
		column string
		kind   parquet.Kind
	}{
		{"id", parquet.Int32},
		{"amount", parquet.Float},
		{"mcc", parquet.Int32},
		{"merchant_city", parquet.ByteArray},
		{"big", parquet.Int64},
	}
	for _, tt := range tests {
		leaf, ok := s.Lookup(tt.column)
		require.True(t, ok, tt.column)
		assert.Equal(t, tt.kind, leaf.Node.Type().Kind(), tt.column)
		assert.True(t, leaf.Node.Optional(), tt.column)
	}
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeCSV(t, dir, "transactions_data.csv", transactionsCSV)

	var progress bytes.Buffer
	opts := DefaultOptions()
	opts.ChunkSize = 2
	opts.Progress = &progress

	result, err := ConvertFile(context.Background(), csvPath, opts, nil)
	require.NoError(t, err)
	assert.Equal(t, schema.ConvertedStatus, result.Status)
	assert.Equal(t, int64(4), result.Rows)
	assert.Equal(t, filepath.Join(dir, "transactions_data.parquet"), result.ParquetPath)
	assert.Greater(t, result.ParquetSize, int64(0))
	assert.Greater(t, result.CSVBytes, int64(0))
	assert.Len(t, result.Columns, 6)
	assert.Contains(t, progress.String(), "Processed 2 rows")
	assert.NoFileExists(t, result.ParquetPath+".tmp")

	f, err := os.Open(result.ParquetPath)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	reader := parquet.NewGenericReader[transactionRow](f)
	defer func() { _ = reader.Close() }()
	require.Equal(t, int64(4), reader.NumRows())

	rows := make([]transactionRow, 4)
	n, err := reader.Read(rows)
	if err != nil {
		require.ErrorIs(t, err, io.EOF)
	}
	require.Equal(t, 4, n)

	require.NotNil(t, rows[0].Amount)
	assert.InDelta(t, -77.0, *rows[0].Amount, 1e-4)
	assert.InDelta(t, 1200.5, *rows[3].Amount, 1e-3)
	assert.Equal(t, int32(5499), *rows[0].MCC)
	assert.Equal(t, "ONLINE", *rows[2].MerchantCity)
	assert.Equal(t, int64(5000000000), *rows[0].Big)
	assert.Nil(t, rows[2].Big, "empty cells become nulls")
}

func TestConvertFile_SkipMissingForce(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	opts := DefaultOptions()

	result, err := ConvertFile(ctx, filepath.Join(dir, "absent.csv"), opts, nil)
	require.NoError(t, err)
	assert.Equal(t, schema.MissingStatus, result.Status)

	csvPath := writeCSV(t, dir, "users_data.csv", "id,age\n1,30\n2,41\n")
	result, err = ConvertFile(ctx, csvPath, opts, nil)
	require.NoError(t, err)
	assert.Equal(t, schema.ConvertedStatus, result.Status)

	result, err = ConvertFile(ctx, csvPath, opts, nil)
	require.NoError(t, err)
	assert.Equal(t, schema.SkippedStatus, result.Status)
	assert.Greater(t, result.ParquetSize, int64(0))

	opts.Force = true
	result, err = ConvertFile(ctx, csvPath, opts, nil)
	require.NoError(t, err)
	assert.Equal(t, schema.ConvertedStatus, result.Status)
}

func TestConvertFile_Ragged(t *testing.T) {
	csvPath := writeCSV(t, t.TempDir(), "bad.csv", "a,b\n1,2\n3\n")
	result, err := ConvertFile(context.Background(), csvPath, DefaultOptions(), nil)
	require.Error(t, err)
	assert.Equal(t, schema.FailedStatus, result.Status)
	assert.NotEmpty(t, result.Error)
	assert.NoFileExists(t, ParquetPath(csvPath))
}

func TestConvertFile_UsesProfileCache(t *testing.T) {
	csvPath := writeCSV(t, t.TempDir(), "x.csv", "a\n1\n2\n")
	cache := &iocache.MockCacheStore{}
	cache.On("Get", mock.Anything).Return(nil, 0, int64(0), errors.New("miss")).Once()
	cache.On("Set", mock.Anything, mock.Anything, profileCacheVersion, mock.Anything).Return(nil).Once()

	result, err := ConvertFile(context.Background(), csvPath, DefaultOptions(), cache)
	require.NoError(t, err)
	assert.Equal(t, schema.ConvertedStatus, result.Status)
	cache.AssertExpectations(t)
}

func TestCachedProfile_Hit(t *testing.T) {
	csvPath := writeCSV(t, t.TempDir(), "x.csv", "a\n1\n")
	info, err := os.Stat(csvPath)
	require.NoError(t, err)

	cachedValue := schema.FileProfile{Rows: 99, Columns: []schema.ColumnProfile{{Name: "a", Kind: schema.FloatColumn}}}
	data, err := json.Marshal(cachedValue)
	require.NoError(t, err)

	opts := DefaultOptions()
	cache := &iocache.MockCacheStore{}
	cache.On("Get", profileCacheKey(csvPath, info, opts)).Return(data, profileCacheVersion, time.Now().Unix(), nil)

	profile, err := cachedProfile(csvPath, info, opts, cache)
	require.NoError(t, err)
	assert.Equal(t, cachedValue, profile)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCachedProfile_StaleOrOldVersion(t *testing.T) {
	csvPath := writeCSV(t, t.TempDir(), "x.csv", "a\n1\n")
	info, err := os.Stat(csvPath)
	require.NoError(t, err)
	opts := DefaultOptions()
	key := profileCacheKey(csvPath, info, opts)

	stale := time.Now().Add(-2 * profileCacheTTL).Unix()
	for _, entry := range []struct {
		version int
		ts      int64
	}{{profileCacheVersion, stale}, {profileCacheVersion + 1, time.Now().Unix()}} {
		cache := &iocache.MockCacheStore{}
		cache.On("Get", key).Return([]byte(`{"rows":99}`), entry.version, entry.ts, nil)
		cache.On("Set", key, mock.Anything, profileCacheVersion, mock.Anything).Return(nil)

		profile, err := cachedProfile(csvPath, info, opts, cache)
		require.NoError(t, err)
		assert.Equal(t, int64(1), profile.Rows)
		cache.AssertCalled(t, "Set", key, mock.Anything, profileCacheVersion, mock.Anything)
	}
}

func TestProfileCacheKey(t *testing.T) {
	csvPath := writeCSV(t, t.TempDir(), "x.csv", "a\n1\n")
	info, err := os.Stat(csvPath)
	require.NoError(t, err)

	opts := DefaultOptions()
	key := profileCacheKey(csvPath, info, opts)
	assert.Contains(t, key, "|4|", "size is part of the key")

	other := opts
	other.CategoryRatio = 0.9
	assert.NotEqual(t, key, profileCacheKey(csvPath, info, other))
}

func TestConvertAll(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "good.csv", "a,b\n1,x\n")
	writeCSV(t, dir, "bad.csv", "a,b\n1\n")

	results, err := ConvertAll(context.Background(), dir, []string{"good.csv", "missing.csv", "bad.csv"}, DefaultOptions(), nil)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, schema.ConvertedStatus, results[0].Status)
	assert.Equal(t, schema.MissingStatus, results[1].Status)
	assert.Equal(t, schema.FailedStatus, results[2].Status)
}

func TestConvertAll_DefaultFiles(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "data/users_data.csv", "id\n1\n")

	results, err := ConvertAll(context.Background(), dir, nil, DefaultOptions(), nil)
	require.NoError(t, err)
	require.Len(t, results, len(DefaultFiles))
	assert.Equal(t, schema.MissingStatus, results[0].Status)
	assert.Equal(t, schema.ConvertedStatus, results[1].Status)
}

func TestConvertAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := ConvertAll(ctx, t.TempDir(), []string{"a.csv"}, DefaultOptions(), nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}
