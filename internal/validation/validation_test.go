package validation

import (
	"strings"
	"testing"

	"github.com/aliuyar1234/finhub/internal/apperrors"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTeamName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"trimmed", "  Casa  ", "Casa", nil},
		{"blank", "   ", "", ErrTeamNameRequired},
		{"max length in runes", strings.Repeat("ç", 80), strings.Repeat("ç", 80), nil},
		{"too long", strings.Repeat("a", 81), "", ErrTeamNameTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeTeamName(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.ErrorIs(t, err, apperrors.ErrValidation)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeRoleName(t *testing.T) {
	got, err := NormalizeRoleName(" Gerente ")
	require.NoError(t, err)
	require.Equal(t, "Gerente", got)

	_, err = NormalizeRoleName("")
	require.ErrorIs(t, err, ErrRoleNameRequired)

	_, err = NormalizeRoleName(strings.Repeat("r", 65))
	require.ErrorIs(t, err, ErrRoleNameTooLong)

	for _, reserved := range []string{"Owner", "owner", "Proprietário", "ADMINISTRADOR"} {
		_, err = NormalizeRoleName(reserved)
		require.ErrorIs(t, err, ErrReservedRoleName, reserved)
	}
}

func TestNormalizeColor(t *testing.T) {
	got, err := NormalizeColor("")
	require.NoError(t, err)
	require.Empty(t, got)

	got, err = NormalizeColor("#a1b2c3")
	require.NoError(t, err)
	require.Equal(t, "#A1B2C3", got)

	for _, bad := range []string{"a1b2c3", "#abc", "#GGGGGG", "#a1b2c3d"} {
		_, err = NormalizeColor(bad)
		require.ErrorIs(t, err, ErrInvalidColor, bad)
	}
}

func TestNormalizeEmail(t *testing.T) {
	got, err := NormalizeEmail("  Ana@Example.COM ")
	require.NoError(t, err)
	require.Equal(t, "ana@example.com", got)

	got, err = NormalizeEmail("Ana Souza <ana@example.com>")
	require.NoError(t, err)
	require.Equal(t, "ana@example.com", got)

	_, err = NormalizeEmail("")
	require.ErrorIs(t, err, ErrEmailRequired)

	_, err = NormalizeEmail("not-an-email")
	require.ErrorIs(t, err, ErrInvalidEmail)

	_, err = NormalizeEmail(strings.Repeat("a", 310) + "@example.com")
	require.ErrorIs(t, err, ErrEmailTooLong)
}
