package testutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunConcurrent(t *testing.T) {
	res := RunConcurrent(10, func(idx int) error {
		if idx%2 == 0 {
			return errors.New("even")
		}
		return nil
	})

	assert.Equal(t, int32(5), res.Successes)
	assert.Len(t, res.Errors, 5)
	assert.Equal(t, int32(10), res.Total())
}
