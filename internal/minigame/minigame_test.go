package minigame

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tatianab/campus-day/internal/models"
)

func TestStatCheckIsDeterministicPerSeed(t *testing.T) {
	cfg := Config{Kind: "bus", Stat: models.StatOrganisation, Stats: models.StatBlock{O: 5}, Hunger: 8}

	a, b := NewStatCheck(42), NewStatCheck(42)
	for i := 0; i < 20; i++ {
		ra, err := a.Play(context.Background(), cfg)
		require.NoError(t, err)
		rb, err := b.Play(context.Background(), cfg)
		require.NoError(t, err)
		assert.Equal(t, ra, rb)
		assert.True(t, ra.Completed)
		if ra.Success {
			assert.Zero(t, ra.ExtraTimePenalty)
		}
	}
}

func TestStatCheckMaxStatAlwaysPasses(t *testing.T) {
	g := NewStatCheck(7)
	strong := Config{Kind: "walk", Stat: models.StatMobility, Stats: models.StatBlock{M: 10}, Hunger: 10}
	for i := 0; i < 50; i++ {
		res, err := g.Play(context.Background(), strong)
		require.NoError(t, err)
		assert.True(t, res.Success, "a maxed stat cannot fail")
	}
}

func TestSuccessChance(t *testing.T) {
	assert.Equal(t, 100, successChance(Config{Stat: models.StatMobility, Stats: models.StatBlock{M: 10}, Hunger: 5}))
	assert.Equal(t, 60, successChance(Config{Stat: models.StatOrganisation, Stats: models.StatBlock{O: 5}, Hunger: 5}))
	assert.Equal(t, 5, successChance(Config{Stat: models.StatSkills, Hunger: 2}))
}

func TestPlayHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStatCheck(1).Play(ctx, Config{})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = Fixed{Success: true}.Play(ctx, Config{})
	assert.ErrorIs(t, err, context.Canceled)
}
