package tracking

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestSeed_CapturesTrackingParams(t *testing.T) {
	s := NewStore()
	s.Seed(mustParse(t, "https://hs-planet.ru/?utm_source=yandex&utm_campaign=spring&yclid=123&unrelated=x"), "https://yandex.ru/search")

	assert.Equal(t, "yandex", s.Get("utm_source"))
	assert.Equal(t, "spring", s.Get("utm_campaign"))
	assert.Equal(t, "123", s.Get("yclid"))
	assert.Equal(t, "https://yandex.ru/search", s.Get("referrer"))
	assert.Empty(t, s.Get("unrelated"))
}

func TestSeed_FirstVisitWins(t *testing.T) {
	s := NewStore()
	s.Seed(mustParse(t, "/?utm_source=yandex"), "")
	// A second page view with different params must not overwrite the
	// original attribution.
	s.Seed(mustParse(t, "/inner.html?utm_source=google"), "")

	assert.Equal(t, "yandex", s.Get("utm_source"))
}

func TestSeed_EmptyLanding(t *testing.T) {
	s := NewStore()
	s.Seed(nil, "")
	assert.Empty(t, s.Snapshot())
}

func TestSnapshot_IsACopy(t *testing.T) {
	s := NewStore()
	s.Seed(mustParse(t, "/?gclid=abc"), "")

	snap := s.Snapshot()
	snap["gclid"] = "mutated"
	assert.Equal(t, "abc", s.Get("gclid"))
}
