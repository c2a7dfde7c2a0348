package taskdetail

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetailIsImmutableOnceClosed(t *testing.T) {
	now := time.Now()
	d := &TaskDetail{Status: DetailStatusDoing, StartTime: now}

	require.NoError(t, d.Fail(now, "boom"))
	assert.Equal(t, DetailStatusError, d.Status)
	assert.Equal(t, "boom", d.ErrorMessage)
	require.NotNil(t, d.EndTime)

	assert.ErrorIs(t, d.Finish(now), ErrDetailClosed)
	assert.Equal(t, DetailStatusError, d.Status)
}

func TestFailAlwaysCarriesMessage(t *testing.T) {
	d := &TaskDetail{Status: DetailStatusDoing}
	require.NoError(t, d.Fail(time.Now(), ""))
	assert.NotEmpty(t, d.ErrorMessage)
}
