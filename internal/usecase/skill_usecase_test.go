package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkill_AddSkill(t *testing.T) {
	uc := NewSkillUsecase(newFakeSkillRepo("Go"))
	ctx := context.Background()

	s, err := uc.AddSkill(ctx, "  Machine   Learning ", strPtr("  "))
	require.NoError(t, err)
	assert.Equal(t, "Machine Learning", s.Name)
	assert.Nil(t, s.Category)

	s, err = uc.AddSkill(ctx, "Kubernetes", strPtr(" DevOps "))
	require.NoError(t, err)
	require.NotNil(t, s.Category)
	assert.Equal(t, "DevOps", *s.Category)

	_, err = uc.AddSkill(ctx, "go", nil)
	assert.ErrorIs(t, err, ErrSkillAlreadyExists)

	_, err = uc.AddSkill(ctx, "   ", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.AddSkill(ctx, strings.Repeat("x", 101), nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSkill_SearchSkills(t *testing.T) {
	uc := NewSkillUsecase(newFakeSkillRepo("Go", "Google Cloud", "Rust"))

	items, err := uc.SearchSkills(context.Background(), "  go ", 10)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}
