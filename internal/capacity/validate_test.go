package capacity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/captrack/internal/errors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		wantErr bool
		field   string
	}{
		{"all zero", State{0, 0, 0}, false, ""},
		{"all max", State{12, 12, 12}, false, ""},
		{"energy high", State{13, 0, 0}, true, "energy"},
		{"attention negative", State{5, -1, 5}, true, "attention"},
		{"physical high", State{5, 5, 99}, true, "physical"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.state)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			var tErr *errors.TrackerError
			require.ErrorAs(t, err, &tErr)
			assert.Equal(t, errors.ErrCapacityOutOfRange, tErr.Code)
			assert.Equal(t, tt.field, tErr.Details["field"])
		})
	}
}

func TestValidateUserKey(t *testing.T) {
	valid := []string{"0xA1B2C3", "0x0", "0xdeadBEEF"}
	for _, key := range valid {
		assert.NoError(t, ValidateUserKey(key), key)
	}

	invalid := []string{"", "0x", "A1B2C3", "0xZZ", "0XABC", " 0xABC", "0xABC/../x"}
	for _, key := range invalid {
		err := ValidateUserKey(key)
		assert.True(t, errors.Is(err, errors.ErrInvalidUserKey), key)
	}
}

func TestValidateRecord(t *testing.T) {
	good := CheckIn{ID: "01J0", Capacity: State{1, 2, 3}, Type: TypeNormal}
	require.NoError(t, ValidateRecord(good))

	missingID := good
	missingID.ID = ""
	assert.True(t, errors.Is(ValidateRecord(missingID), errors.ErrInvalidRequest))

	badType := good
	badType.Type = "spike"
	assert.True(t, errors.Is(ValidateRecord(badType), errors.ErrInvalidRequest))

	badCapacity := good
	badCapacity.Capacity.Energy = 40
	assert.True(t, errors.Is(ValidateRecord(badCapacity), errors.ErrCapacityOutOfRange))
}
