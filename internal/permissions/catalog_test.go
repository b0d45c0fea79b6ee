package permissions

import (
	"encoding/json"
	"testing"

	"github.com/aliuyar1234/finhub/internal/apperrors"
	"github.com/stretchr/testify/require"
)

func TestParseSet_AcceptsCatalogKeysAndCollapsesDuplicates(t *testing.T) {
	s, err := ParseSet([]string{"MANAGE_BUDGET", "MANAGE_EXPENSES", "MANAGE_BUDGET"})
	require.NoError(t, err)
	require.Len(t, s, 2)
	require.True(t, s.Has(ManageBudget))
	require.True(t, s.Has(ManageExpenses))
	require.False(t, s.Has(ManageTeam))
	require.Equal(t, []string{"MANAGE_BUDGET", "MANAGE_EXPENSES"}, s.Strings())
}

func TestParseSet_RejectsUnknownKey(t *testing.T) {
	_, err := ParseSet([]string{"MANAGE_BUDGET", "manage_team"})
	require.ErrorIs(t, err, ErrUnknownPermission)
	require.ErrorIs(t, err, apperrors.ErrValidation)
	require.Contains(t, err.Error(), `"manage_team"`)
}

func TestParseSet_Empty(t *testing.T) {
	s, err := ParseSet(nil)
	require.NoError(t, err)
	require.Empty(t, s)
}

func TestAll_MatchesCatalog(t *testing.T) {
	all := All()
	for _, k := range Catalog() {
		require.True(t, all.Has(k))
		require.True(t, Valid(k))
	}
	require.Len(t, all, len(Catalog()))
	require.False(t, Valid("MANAGE_ROLES"))
}

func TestIsProtectedRoleName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Owner", true},
		{"  owner ", true},
		{"PROPRIETÁRIO", true},
		{"Proprietário", true},
		{"Proprietario", false},
		{"administrador", true},
		{"Gerente", false},
		{"Owners", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsProtectedRoleName(tt.name))
		})
	}
}

func TestSet_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(NewSet(ManageTeam, ManageBudget))
	require.NoError(t, err)
	require.JSONEq(t, `["MANAGE_BUDGET","MANAGE_TEAM"]`, string(b))

	b, err = json.Marshal(NewSet())
	require.NoError(t, err)
	require.JSONEq(t, `[]`, string(b))
}

func TestSet_UnmarshalJSON(t *testing.T) {
	var s Set
	require.NoError(t, json.Unmarshal([]byte(`["MANAGE_TEAM","MANAGE_TEAM"]`), &s))
	require.Equal(t, []Key{ManageTeam}, s.Keys())

	err := json.Unmarshal([]byte(`["MANAGE_EVERYTHING"]`), &s)
	require.ErrorIs(t, err, ErrUnknownPermission)
}
