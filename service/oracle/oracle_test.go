package oracle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"rtoken/core"
	"rtoken/pkg/number"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func TestPriceServiceLatestPrice(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		switch r.URL.Path {
		case "/api/v2/tickers/DAI-USD":
			fmt.Fprint(w, `{"provider":"test","symbol":"DAI-USD","price":"1.01","timestamp":1700000000}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"msg":"not found"}`)
		}
	}))
	defer srv.Close()

	s := New(core.PriceOracleConfig{EndPoint: srv.URL, CacheTTL: core.Duration(time.Minute)})
	ctx := context.Background()

	price, at, err := s.LatestPrice(ctx, "DAI-USD")
	require.NoError(t, err)
	assert.Equal(t, "1.01", price.String())
	assert.Equal(t, int64(1700000000), at.Unix())

	// cached
	_, _, err = s.LatestPrice(ctx, "DAI-USD")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	_, _, err = s.LatestPrice(ctx, "BTC-USD")
	assert.True(t, errors.Is(err, core.ErrPriceUnavailable))

	assert.NoError(t, s.Prefetch(ctx, []string{"DAI-USD", "BTC-USD"}))
}

func TestMemory(t *testing.T) {
	now := time.Unix(1700000000, 0)
	m := NewMemory(fixedClock{now})
	ctx := context.Background()

	_, _, err := m.LatestPrice(ctx, "COMP-USD")
	assert.Equal(t, core.ErrPriceUnavailable, err)

	m.Set("COMP-USD", number.Decimal("1"))
	price, at, err := m.LatestPrice(ctx, "COMP-USD")
	require.NoError(t, err)
	assert.Equal(t, "1", price.String())
	assert.Equal(t, now.Unix(), at.Unix())

	boom := errors.New("boom")
	m.Fail("COMP-USD", boom)
	_, _, err = m.LatestPrice(ctx, "COMP-USD")
	assert.Equal(t, boom, err)

	rate := NewRateFeed(m, "COMP-USD")
	m.Set("COMP-USD", number.Decimal("2"))
	r, err := rate.ExchangeRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2", r.String())
}

func TestRate(t *testing.T) {
	r := NewRate(number.Decimal("1"))
	ctx := context.Background()

	r.Fail(errors.New("boom"))
	_, err := r.ExchangeRate(ctx)
	assert.Error(t, err)

	r.Set(number.Decimal("1.02"))
	v, err := r.ExchangeRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.02", v.String())
}

func TestPriceServiceRejectsTickerWithoutTimestamp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"symbol":"DAI-USD","price":"1"}`)
	}))
	defer srv.Close()

	s := New(core.PriceOracleConfig{EndPoint: srv.URL})
	ctx := context.Background()

	_, err := s.PullPriceTicker(ctx, "DAI-USD")
	assert.True(t, errors.Is(err, core.ErrPriceUnavailable))

	_, _, err = s.LatestPrice(ctx, "DAI-USD")
	assert.True(t, errors.Is(err, core.ErrPriceUnavailable))
}
