package platform

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukman83/trustrank/internal/models"
)

type stubSource struct{ name string }

func (s stubSource) Name() string { return s.name }
func (stubSource) Search(context.Context, string, int) ([]models.SearchRecord, error) {
	return nil, nil
}
func (stubSource) ItemRatings(context.Context, int64, int64, int) ([]models.ReviewComment, error) {
	return nil, nil
}
func (stubSource) ShopProfile(context.Context, int64) (*models.ShopProfile, error) { return nil, nil }
func (stubSource) ShopDetail(context.Context, int64) (*models.ShopProfile, error)  { return nil, nil }

func TestRegistry(t *testing.T) {
	Register(stubSource{name: "zeta"})
	Register(stubSource{name: "alpha"})

	s, err := Get("alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", s.Name())

	_, err = Get("missing")
	assert.Error(t, err)

	names := List()
	assert.Contains(t, names, "alpha")
	assert.Contains(t, names, "zeta")
	assert.IsNonDecreasing(t, names)
}

func TestAPIErrorMatchesUpstream(t *testing.T) {
	err := fmt.Errorf("fetch shop: %w", &APIError{Endpoint: "shop_detail", Code: 4})

	assert.True(t, errors.Is(err, ErrUpstream))
	assert.False(t, errors.Is(err, ErrTransport))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 4, apiErr.Code)
	assert.Equal(t, "shop_detail: api error 4", apiErr.Error())
}

func TestReportProgress(t *testing.T) {
	var got []string
	ctx := WithProgress(context.Background(), func(msg string) { got = append(got, msg) })

	ReportProgress(ctx, "one")
	ReportProgress(context.Background(), "dropped")

	assert.Equal(t, []string{"one"}, got)
}
