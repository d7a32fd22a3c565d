package csvsource_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estate_dashboard/internal/adapters/csvsource"
	"estate_dashboard/internal/domain"
)

func TestLoad_File(t *testing.T) {
	tbl, err := csvsource.New("testdata/listings.csv").Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, append(append([]string{}, domain.RequiredColumns...), "City"), tbl.Columns)
	assert.Equal(t, []string{"City"}, tbl.Extra)
	require.Equal(t, 3, tbl.Len())
	assert.Equal(t, domain.Listing{
		Row: 1, Price: 600000, Bedrooms: 4, Bathrooms: 3, SquareFeet: 2500,
		Latitude: 37.8044, Longitude: -122.2712, Extra: []string{"Oakland"},
	}, tbl.Rows[1])
}

func TestLoad_MissingFile(t *testing.T) {
	l := csvsource.New(filepath.Join(t.TempDir(), "nope.csv"))
	_, err := l.Load(context.Background())
	require.ErrorIs(t, err, domain.ErrDataUnavailable)
	assert.Contains(t, err.Error(), "nope.csv")
}

func TestNew_DefaultPath(t *testing.T) {
	assert.Equal(t, csvsource.DefaultPath, csvsource.New("").Path())
}

func TestParse(t *testing.T) {
	ctx := context.Background()

	t.Run("columns in any order", func(t *testing.T) {
		in := "Longitude,SquareFeet,Price,Latitude,Bathrooms,Bedrooms\n-122.4,900,150000,37.7,1,2\n"
		tbl, err := csvsource.Parse(ctx, strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, tbl.Rows, 1)
		assert.Empty(t, tbl.Extra)
		assert.Equal(t, 150000.0, tbl.Rows[0].Price)
		assert.Equal(t, 2, tbl.Rows[0].Bedrooms)
		assert.Equal(t, -122.4, tbl.Rows[0].Longitude)
	})

	t.Run("byte order mark and padded header", func(t *testing.T) {
		in := "\ufeffPrice, Bedrooms ,Bathrooms,SquareFeet,Latitude,Longitude\n150000,2,1,900,37.7,-122.4\n"
		tbl, err := csvsource.Parse(ctx, strings.NewReader(in))
		require.NoError(t, err)
		assert.Equal(t, domain.RequiredColumns, tbl.Columns)
	})

	t.Run("repeated required header is an extra column", func(t *testing.T) {
		in := "Price,Bedrooms,Bathrooms,SquareFeet,Latitude,Longitude,Price,Size\n150000,2,1,900,37.7,-122.4,149000,small\n"
		tbl, err := csvsource.Parse(ctx, strings.NewReader(in))
		require.NoError(t, err)
		assert.Equal(t, []string{"Price", "Size"}, tbl.Extra)
		assert.Equal(t, 150000.0, tbl.Rows[0].Price)
		assert.Equal(t, []string{"149000", "small"}, tbl.Rows[0].Extra)
	})

	t.Run("integral float counts", func(t *testing.T) {
		in := "Price,Bedrooms,Bathrooms,SquareFeet,Latitude,Longitude\n150000,3.0,2.0,900,37.7,-122.4\n"
		tbl, err := csvsource.Parse(ctx, strings.NewReader(in))
		require.NoError(t, err)
		assert.Equal(t, 3, tbl.Rows[0].Bedrooms)
		assert.Equal(t, 2, tbl.Rows[0].Bathrooms)
	})

	t.Run("header only", func(t *testing.T) {
		tbl, err := csvsource.Parse(ctx, strings.NewReader("Price,Bedrooms,Bathrooms,SquareFeet,Latitude,Longitude\n"))
		require.NoError(t, err)
		assert.NotNil(t, tbl.Rows)
		assert.Equal(t, 0, tbl.Len())
	})

	bad := []struct {
		name, in, want string
	}{
		{"empty", "", "header row required"},
		{"missing columns", "Price,Bedrooms,Latitude\n1,2,3\n", "Bathrooms, SquareFeet, Longitude"},
		{"non-numeric price", "Price,Bedrooms,Bathrooms,SquareFeet,Latitude,Longitude\n150000,2,1,900,37.7,-122.4\nabc,2,1,900,37.7,-122.4\n", "line 3"},
		{"fractional bedrooms", "Price,Bedrooms,Bathrooms,SquareFeet,Latitude,Longitude\n150000,2.5,1,900,37.7,-122.4\n", "Bedrooms"},
		{"NaN square feet", "Price,Bedrooms,Bathrooms,SquareFeet,Latitude,Longitude\n150000,2,1,NaN,37.7,-122.4\n", "SquareFeet"},
		{"short row", "Price,Bedrooms,Bathrooms,SquareFeet,Latitude,Longitude\n150000,2,1\n", "wrong number of fields"},
	}
	for _, tc := range bad {
		t.Run(tc.name, func(t *testing.T) {
			_, err := csvsource.Parse(ctx, strings.NewReader(tc.in))
			require.ErrorIs(t, err, domain.ErrDataUnavailable)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestParse_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := csvsource.Parse(ctx, strings.NewReader("Price,Bedrooms,Bathrooms,SquareFeet,Latitude,Longitude\n1,1,1,1,1,1\n"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestLoad_WrittenFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "l.csv")
	require.NoError(t, os.WriteFile(p, []byte("Price,Bedrooms,Bathrooms,SquareFeet,Latitude,Longitude\n700000,5,3,3400,34.05,-118.24\n"), 0o644))
	tbl, err := csvsource.New(p).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())
}
