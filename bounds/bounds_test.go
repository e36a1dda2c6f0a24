package bounds

import (
	"context"
	gosql "database/sql"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestBox_ToSQL(t *testing.T) {
	tests := []struct {
		name string
		box  *Box
		want string
	}{
		{
			name: "simple",
			box:  &Box{RA: 10, Dec: 5, RAHalfWidth: 1, DecHalfWidth: 0.5},
			want: "ra BETWEEN 9 AND 11 AND decl BETWEEN 4.5 AND 5.5",
		},
		{
			name: "wraps below zero",
			box:  &Box{RA: 0.5, Dec: 0, RAHalfWidth: 1, DecHalfWidth: 1},
			want: "(ra BETWEEN 359.5 AND 360 OR ra BETWEEN 0 AND 1.5) AND decl BETWEEN -1 AND 1",
		},
		{
			name: "wraps above 360",
			box:  &Box{RA: 359, Dec: 0, RAHalfWidth: 2, DecHalfWidth: 1},
			want: "(ra BETWEEN 357 AND 360 OR ra BETWEEN 0 AND 1) AND decl BETWEEN -1 AND 1",
		},
		{
			name: "whole circle",
			box:  &Box{RA: 180, Dec: 0, RAHalfWidth: 200, DecHalfWidth: 1},
			want: "ra BETWEEN 0 AND 360 AND decl BETWEEN -1 AND 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.box.ToSQL("ra", "decl")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := (&Box{RA: 1, Dec: 1, RAHalfWidth: 1, DecHalfWidth: 1}).ToSQL("", "decl")
	assert.Error(t, err)
}

func TestCircle_ToSQL(t *testing.T) {
	circle, err := NewCircle(30, 0, 1)
	require.NoError(t, err)

	got, err := circle.ToSQL("ra", "decl")
	require.NoError(t, err)
	assert.Contains(t, got, "decl BETWEEN -1 AND 1")
	assert.Contains(t, got, "2 * ASIN(SQRT(POWER(SIN(0.5 * (decl - 0) * PI() / 180.0), 2)")
	assert.Contains(t, got, "* POWER(SIN(0.5 * (ra - 30) * PI() / 180.0), 2)))")
	assert.Contains(t, got, fmt.Sprintf("< %s", formatFloat(radians(1))))

	pole, err := NewCircle(10, 90, 2)
	require.NoError(t, err)
	got, err = pole.ToSQL("ra", "decl")
	require.NoError(t, err)
	assert.Contains(t, got, "ra BETWEEN 0 AND 360")

	touchingPole, err := NewCircle(10, 70, 20)
	require.NoError(t, err)
	got, err = touchingPole.ToSQL("ra", "decl")
	require.NoError(t, err)
	assert.Contains(t, got, "ra BETWEEN 0 AND 360")

	high, err := NewCircle(0, 60, 20)
	require.NoError(t, err)
	got, err = high.ToSQL("ra", "decl")
	require.NoError(t, err)
	halfWidth := degrees(math.Asin(math.Sin(radians(20)) / math.Cos(radians(60))))
	assert.Greater(t, halfWidth, 43.0)
	assert.Contains(t, got, fmt.Sprintf("(ra BETWEEN %s AND 360 OR ra BETWEEN 0 AND %s)", formatFloat(360-halfWidth), formatFloat(halfWidth)))

	_, err = circle.ToSQL("ra", "")
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		params  []float64
		want    Bound
		wantErr bool
	}{
		{name: "circle", kind: "circle", params: []float64{370, 10, 0.5}, want: &Circle{RA: 10, Dec: 10, Radius: 0.5}},
		{name: "square box", kind: "box", params: []float64{-10, 10, 0.5}, want: &Box{RA: 350, Dec: 10, RAHalfWidth: 0.5, DecHalfWidth: 0.5}},
		{name: "box", kind: "BOX", params: []float64{1, 2, 3, 4}, want: &Box{RA: 1, Dec: 2, RAHalfWidth: 3, DecHalfWidth: 4}},
		{name: "circle arity", kind: "circle", params: []float64{1, 2}, wantErr: true},
		{name: "negative radius", kind: "circle", params: []float64{1, 2, -1}, wantErr: true},
		{name: "bad declination", kind: "circle", params: []float64{1, 91, 1}, wantErr: true},
		{name: "box arity", kind: "box", params: []float64{1, 2, 3, 4, 5}, wantErr: true},
		{name: "unknown", kind: "polygon", params: []float64{1, 2, 3}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.kind, tt.params)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBounds_Query(t *testing.T) {
	ctx := context.Background()
	db, err := gosql.Open("sqlite", filepath.Join(t.TempDir(), "points.db"))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(ctx, "CREATE TABLE points(id INTEGER, ra REAL, decl REAL)")
	require.NoError(t, err)
	points := []struct {
		id      int
		ra, dec float64
	}{
		{1, 10, 0},
		{2, 10.5, 0.2},
		{3, 11.5, 0},
		{4, 359.8, 0},
		{5, 0.3, 0.1},
		{6, 10, 3},
		{7, 42, 67.2},
	}
	for _, p := range points {
		_, err := db.ExecContext(ctx, "INSERT INTO points VALUES(?, ?, ?)", p.id, p.ra, p.dec)
		require.NoError(t, err)
	}

	tests := []struct {
		name  string
		bound Bound
		want  []int
	}{
		{name: "box", bound: &Box{RA: 10, Dec: 0, RAHalfWidth: 1, DecHalfWidth: 1}, want: []int{1, 2}},
		{name: "box around zero", bound: &Box{RA: 0, Dec: 0, RAHalfWidth: 0.5, DecHalfWidth: 0.5}, want: []int{4, 5}},
		{name: "circle", bound: &Circle{RA: 10, Dec: 0, Radius: 0.6}, want: []int{1, 2}},
		{name: "circle near its widest declination", bound: &Circle{RA: 0, Dec: 60, Radius: 20}, want: []int{7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			predicate, err := tt.bound.ToSQL("ra", "decl")
			require.NoError(t, err)

			rows, err := db.QueryContext(ctx, "SELECT id FROM points WHERE "+predicate)
			require.NoError(t, err)
			defer rows.Close()

			var got []int
			for rows.Next() {
				var id int
				require.NoError(t, rows.Scan(&id))
				got = append(got, id)
			}
			require.NoError(t, rows.Err())
			sort.Ints(got)
			assert.Equal(t, tt.want, got)
		})
	}
}
