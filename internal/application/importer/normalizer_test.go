package importer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohammadpnp/household-import/internal/application/importer"
	domain "github.com/mohammadpnp/household-import/internal/domain/household"
)

func TestNewNormalizerRejectsBadMappings(t *testing.T) {
	t.Parallel()

	_, err := importer.NewNormalizer(nil)
	require.ErrorIs(t, err, domain.ErrEmptyMapping)

	_, err = importer.NewNormalizer(domain.ColumnMapping{"shoeSize": 1})
	require.ErrorIs(t, err, domain.ErrInvalidMapping)

	_, err = importer.NewNormalizer(domain.ColumnMapping{domain.FieldFirstName: -1})
	require.ErrorIs(t, err, domain.ErrInvalidMapping)
}

func TestNormalizeProjectsMappedCells(t *testing.T) {
	t.Parallel()

	n, err := importer.NewNormalizer(domain.ColumnMapping{
		domain.FieldFirstName:           2,
		domain.FieldLastName:            0,
		domain.FieldSSN:                 1,
		domain.FieldMobileNumber:        3,
		domain.FieldExternalHouseholdID: 9,
	})
	require.NoError(t, err)

	row := n.Normalize([]any{" Doe ", "123-45-6789", "Jane", float64(5551234567)})

	assert.Equal(t, "Jane", row.FirstName)
	assert.Equal(t, "Doe", row.LastName)
	assert.Equal(t, "123-45-6789", row.SSN)
	assert.Equal(t, "5551234567", row.MobileNumber)
	assert.Empty(t, row.ExternalHouseholdID, "out of range columns read as empty")
	assert.Empty(t, row.Email, "unmapped fields stay empty")
}

func TestNormalizeDates(t *testing.T) {
	t.Parallel()

	n, err := importer.NewNormalizer(domain.ColumnMapping{domain.FieldDOB: 0})
	require.NoError(t, err)

	jan1 := time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		cell    any
		want    *time.Time
		wantRaw string
	}{
		{name: "iso string", cell: "1990-01-01", want: &jan1},
		{name: "us string", cell: "1/1/1990", want: &jan1},
		{name: "long month", cell: "January 1, 1990", want: &jan1},
		{name: "serial float", cell: float64(32874), want: &jan1},
		{name: "serial with time of day", cell: 32874.75, want: &jan1},
		{name: "serial int", cell: 32874, want: &jan1},
		{name: "time value", cell: time.Date(1990, time.January, 1, 23, 30, 0, 0, time.FixedZone("X", 3600)), want: &jan1},
		{name: "garbage", cell: "someday", wantRaw: "someday"},
		{name: "serial below range", cell: float64(0), wantRaw: "0"},
		{name: "blank", cell: "  "},
		{name: "nil", cell: nil},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			row := n.Normalize([]any{tc.cell})
			if tc.want == nil {
				assert.Nil(t, row.DOB)
			} else {
				require.NotNil(t, row.DOB)
				assert.True(t, tc.want.Equal(*row.DOB), "got %s", row.DOB)
			}
			assert.Equal(t, tc.wantRaw, row.DOBRaw)
		})
	}
}

func TestNormalizerCopiesMapping(t *testing.T) {
	t.Parallel()

	mapping := domain.ColumnMapping{domain.FieldFirstName: 0}
	n, err := importer.NewNormalizer(mapping)
	require.NoError(t, err)

	mapping[domain.FieldFirstName] = 1
	row := n.Normalize([]any{"Jane", "Other"})
	assert.Equal(t, "Jane", row.FirstName)
}
