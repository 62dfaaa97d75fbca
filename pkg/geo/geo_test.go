package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseComponent(t *testing.T) {
	tests := []struct {
		name    string
		raw     interface{}
		want    float64
		wantErr bool
	}{
		{name: "float64", raw: 55.75, want: 55.75},
		{name: "float32", raw: float32(10), want: 10},
		{name: "int", raw: 42, want: 42},
		{name: "numeric string", raw: "37.61", want: 37.61},
		{name: "negative string", raw: "-12.5", want: -12.5},
		{name: "garbage string", raw: "north", wantErr: true},
		{name: "nil", raw: nil, wantErr: true},
		{name: "bool", raw: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseComponent(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCoordinate)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestDistanceSamePointIsZero(t *testing.T) {
	p := Coordinate{Latitude: 55.7558, Longitude: 37.6173}

	km, err := Distance(p, p)

	require.NoError(t, err)
	assert.InDelta(t, 0, km, 1e-9)
}

func TestDistanceIsSymmetric(t *testing.T) {
	moscow := Coordinate{Latitude: 55.7558, Longitude: 37.6173}
	spb := Coordinate{Latitude: 59.9311, Longitude: 30.3609}

	ab, err := Distance(moscow, spb)
	require.NoError(t, err)
	ba, err := Distance(spb, moscow)
	require.NoError(t, err)

	assert.InDelta(t, ab, ba, 1e-9)
	// Moscow to Saint Petersburg is roughly 635 km.
	assert.InDelta(t, 635, ab, 10)
}

func TestDistanceRejectsOutOfRange(t *testing.T) {
	ok := Coordinate{Latitude: 0, Longitude: 0}

	_, err := Distance(Coordinate{Latitude: 91, Longitude: 0}, ok)
	assert.ErrorIs(t, err, ErrInvalidCoordinate)

	_, err = Distance(ok, Coordinate{Latitude: 0, Longitude: 181})
	assert.ErrorIs(t, err, ErrInvalidCoordinate)

	_, err = Distance(Coordinate{Latitude: -90.0001, Longitude: 0}, ok)
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
}
