package pagination

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/goleak"

	"github.com/garnizeh/frota/pkg/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestFetch(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23}
	list := func(_ context.Context, p models.PageParams) ([]int, error) {
		start := p.Offset()
		if start > len(items) {
			return nil, nil
		}
		end := min(start+p.Limit, len(items))
		return items[start:end], nil
	}
	count := func(context.Context) (int64, error) { return int64(len(items)), nil }

	tests := []struct {
		name     string
		in       models.PageParams
		wantLen  int
		wantPage int
		wantLim  int
		wantLast int64
	}{
		{"defaults", models.PageParams{}, 10, 1, 10, 3},
		{"last partial page", models.PageParams{Page: 3, Limit: 10}, 3, 3, 10, 3},
		{"limit capped", models.PageParams{Page: 1, Limit: 1000}, 23, 1, models.MaxPageLimit, 1},
		{"past the end", models.PageParams{Page: 9, Limit: 10}, 0, 9, 10, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Fetch(context.Background(), tt.in, list, count)
			if err != nil {
				t.Fatalf("Fetch error: %v", err)
			}
			if len(got.Data) != tt.wantLen {
				t.Fatalf("len(data) = %d, want %d", len(got.Data), tt.wantLen)
			}
			if got.Data == nil {
				t.Fatalf("data must never be nil")
			}
			if got.Meta.Page != tt.wantPage || got.Meta.Limit != tt.wantLim || got.Meta.LastPage != tt.wantLast || got.Meta.Total != 23 {
				t.Fatalf("unexpected meta: %+v", got.Meta)
			}
		})
	}
}

func TestFetch_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	list := func(context.Context, models.PageParams) ([]int, error) { return []int{1}, nil }
	count := func(context.Context) (int64, error) { return 0, boom }

	if _, err := Fetch(context.Background(), models.PageParams{}, list, count); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}
