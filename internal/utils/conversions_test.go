package utils_test

import (
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-employee-console/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestToStringSlice(t *testing.T) {
	require.Equal(t, []string{"ADMIN"}, utils.ToStringSlice("ADMIN"))
	require.Equal(t, []string{"USER", "ADMIN"}, utils.ToStringSlice([]any{"USER", 1.0, "ADMIN"}))
	require.Equal(t, []string{"a"}, utils.ToStringSlice([]string{"a"}))
	require.Nil(t, utils.ToStringSlice(nil))
	require.Nil(t, utils.ToStringSlice(42.0))
}

func TestToIDString(t *testing.T) {
	t.Run("float", func(t *testing.T) {
		id, ok := utils.ToIDString(float64(17))
		require.True(t, ok)
		require.Equal(t, "17", id)
	})
	t.Run("string", func(t *testing.T) {
		id, ok := utils.ToIDString("abc")
		require.True(t, ok)
		require.Equal(t, "abc", id)
	})
	t.Run("number", func(t *testing.T) {
		id, ok := utils.ToIDString(json.Number("9007199254740993"))
		require.True(t, ok)
		require.Equal(t, "9007199254740993", id)
	})
	t.Run("missing", func(t *testing.T) {
		_, ok := utils.ToIDString(nil)
		require.False(t, ok)
		_, ok = utils.ToIDString("")
		require.False(t, ok)
	})
}
