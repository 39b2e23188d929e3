package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmail(t *testing.T) {
	got, err := Email("  Ana.Silva@Example.PT ")
	require.NoError(t, err)
	assert.Equal(t, "ana.silva@example.pt", got)

	_, err = Email("not-an-email")
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = Email("")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestPhone(t *testing.T) {
	tests := []struct {
		name    string
		number  string
		country string
		wantErr bool
	}{
		{"region code", "912345678", "PT", false},
		{"calling code with plus", "912345678", "+351", false},
		{"calling code digits", "912345678", "351", false},
		{"empty number is allowed", "", "", false},
		{"missing country", "912345678", "", true},
		{"garbage", "abc", "PT", true},
		{"too short", "12", "PT", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Phone(tt.number, tt.country)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalid)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDate(t *testing.T) {
	d, err := Date("2020-02-29")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC), d)

	d, err = Date("2021-06-01T10:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 10, d.Hour())

	_, err = Date("01/06/2021")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestStruct(t *testing.T) {
	type req struct {
		Name  string `validate:"required"`
		Email string `validate:"required,email"`
	}

	assert.NoError(t, Struct(req{Name: "a", Email: "a@b.co"}))

	err := Struct(req{Email: "a@b.co"})
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "Name is required")

	err = Struct(req{Name: "a", Email: "x"})
	assert.Contains(t, err.Error(), "invalid email")
}

func TestNumbers(t *testing.T) {
	n, err := Int("bpm", " 42 ")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	_, err = Int("bpm", "4.2")
	assert.ErrorIs(t, err, ErrInvalid)

	f, err := Float("userBCS", "4.5")
	require.NoError(t, err)
	assert.Equal(t, 4.5, f)

	_, err = ID("horseId", "0")
	assert.ErrorIs(t, err, ErrInvalid)

	b, err := Bool("favorite", "TRUE")
	require.NoError(t, err)
	assert.True(t, b)
}
