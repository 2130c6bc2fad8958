package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rule(name, pattern string, mt MatchType, severity int) FilterRule {
	return FilterRule{
		GuildID:   "guild-1",
		Name:      name,
		Pattern:   pattern,
		MatchType: mt,
		Action:    ActionDelete,
		Severity:  severity,
		Enabled:   true,
	}
}

func TestCheckFilter(t *testing.T) {
	c := NewCompiler()

	t.Run("exact does not match inside word", func(t *testing.T) {
		r := rule("r1", "bad", MatchExact, 50)
		res, err := c.CheckFilter("badword", &r)
		require.NoError(t, err)
		assert.Nil(t, res)
	})

	t.Run("exact matches whole word", func(t *testing.T) {
		r := rule("r1", "bad", MatchExact, 50)
		res, err := c.CheckFilter("this is bad", &r)
		require.NoError(t, err)
		require.NotNil(t, res)
		assert.Equal(t, ConfidenceHigh, res.Confidence)
		assert.False(t, res.WasObfuscated)
	})

	t.Run("partial matches inside word", func(t *testing.T) {
		r := rule("r1", "bad", MatchPartial, 50)
		res, err := c.CheckFilter("badword", &r)
		require.NoError(t, err)
		require.NotNil(t, res)
	})

	t.Run("obfuscated text matches with medium confidence", func(t *testing.T) {
		r := rule("r1", "badword", MatchExact, 50)
		r.CheckObfuscation = true
		res, err := c.CheckFilter("b4dw0rd", &r)
		require.NoError(t, err)
		require.NotNil(t, res)
		assert.Equal(t, ConfidenceMedium, res.Confidence)
		assert.True(t, res.WasObfuscated)
		assert.Equal(t, "badword", res.Variant)
	})

	t.Run("no obfuscation check uses raw lowercase only", func(t *testing.T) {
		r := rule("r1", "badword", MatchExact, 50)
		res, err := c.CheckFilter("b4dw0rd", &r)
		require.NoError(t, err)
		assert.Nil(t, res)
	})

	t.Run("literal match on raw text is high confidence even with obfuscation check", func(t *testing.T) {
		r := rule("r1", "badword", MatchExact, 50)
		r.CheckObfuscation = true
		res, err := c.CheckFilter("BADWORD", &r)
		require.NoError(t, err)
		require.NotNil(t, res)
		assert.Equal(t, ConfidenceHigh, res.Confidence)
		assert.False(t, res.WasObfuscated)
	})
}

func TestCheckFilters(t *testing.T) {
	c := NewCompiler()

	t.Run("higher severity rule wins", func(t *testing.T) {
		low := rule("low", "bad", MatchPartial, 40)
		high := rule("high", "bad", MatchPartial, 80)
		res, err := c.CheckFilters("this is bad", []FilterRule{low, high})
		require.NoError(t, err)
		require.NotNil(t, res)
		assert.Equal(t, "high", res.Rule.Name)
	})

	t.Run("name breaks severity ties", func(t *testing.T) {
		b := rule("bravo", "bad", MatchPartial, 50)
		a := rule("alpha", "bad", MatchPartial, 50)
		res, err := c.CheckFilters("bad", []FilterRule{b, a})
		require.NoError(t, err)
		require.NotNil(t, res)
		assert.Equal(t, "alpha", res.Rule.Name)
	})

	t.Run("disabled rules skipped", func(t *testing.T) {
		r := rule("r1", "bad", MatchPartial, 50)
		r.Enabled = false
		res, err := c.CheckFilters("bad", []FilterRule{r})
		require.NoError(t, err)
		assert.Nil(t, res)
	})

	t.Run("no rules no match", func(t *testing.T) {
		res, err := c.CheckFilters("anything", nil)
		require.NoError(t, err)
		assert.Nil(t, res)
	})
}
