package membership

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Format(t *testing.T) {
	number, err := Generate(context.Background(), func(_ context.Context, _ string) (bool, error) {
		return false, nil
	})
	require.NoError(t, err)

	assert.Len(t, number, 6)
	assert.Equal(t, time.Now().Format("06"), number[:2])
	assert.Regexp(t, `^\d{6}$`, number)
}

func TestGenerate_RetriesUntilFree(t *testing.T) {
	var calls int
	number, err := Generate(context.Background(), func(_ context.Context, _ string) (bool, error) {
		calls++
		return calls < 3, nil
	})
	require.NoError(t, err)
	assert.NotEmpty(t, number)
	assert.Equal(t, 3, calls)
}

func TestGenerate_ExistsError(t *testing.T) {
	_, err := Generate(context.Background(), func(_ context.Context, _ string) (bool, error) {
		return false, errors.New("db down")
	})
	assert.Error(t, err)
}

func TestGenerate_Exhausted(t *testing.T) {
	_, err := Generate(context.Background(), func(_ context.Context, _ string) (bool, error) {
		return true, nil
	})
	assert.Error(t, err)
}
