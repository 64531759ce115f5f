package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/dh/internal/core/domain"
)

func TestNewProfileSet(t *testing.T) {
	set := domain.NewProfileSet("  cross   nocheck\tpkg.foo.bootstrap ")
	assert.True(t, set.Has("cross"))
	assert.True(t, set.Has("nocheck"))
	assert.True(t, set.Has("pkg.foo.bootstrap"))
	assert.False(t, set.Has("nodoc"))

	assert.Empty(t, domain.NewProfileSet(""))
}

func TestEvalRestrictionFormula(t *testing.T) {
	active := domain.NewProfileSet("cross nocheck")

	tests := []struct {
		name    string
		formula string
		want    bool
		wantErr bool
	}{
		{"empty formula is satisfied", "", true, false},
		{"single term match", "<cross>", true, false},
		{"single term miss", "<nodoc>", false, false},
		{"negated miss", "<!nodoc>", true, false},
		{"negated match", "<!cross>", false, false},
		{"conjunction all true", "<cross nocheck>", true, false},
		{"conjunction one false", "<cross nodoc>", false, false},
		{"disjunction second group", "<nodoc> <cross>", true, false},
		{"disjunction none", "<nodoc> <stage1>", false, false},
		{"mixed negation", "<cross !nodoc>", true, false},
		{"missing angle brackets", "cross", false, true},
		{"unclosed group", "<cross", false, true},
		{"empty group", "<>", false, true},
		{"double negation garbage", "<!!cross>", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.EvalRestrictionFormula(tt.formula, active)
			if tt.wantErr {
				require.Error(t, err)
				require.ErrorIs(t, err, domain.ErrBuildProfiles)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
