package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukman83/trustrank/internal/models"
)

func TestResolveKeyword(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		input   string
		want    string
		prompt  bool
		wantErr bool
	}{
		{"from args", []string{"  tai nghe "}, "", "tai nghe", false, false},
		{"prompt", nil, "bàn phím cơ\n", "bàn phím cơ", true, false},
		{"prompt without newline", nil, "chuột", "chuột", true, false},
		{"blank arg falls back to prompt", []string{" "}, "ốp lưng\n", "ốp lưng", true, false},
		{"empty input", nil, "\n", "", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := resolveKeyword(strings.NewReader(tt.input), &out, tt.args)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.Equal(t, tt.prompt, strings.Contains(out.String(), "What do you want to search on shopee: "))
		})
	}
}

func TestFormatPoint(t *testing.T) {
	assert.Equal(t, "10.0", formatPoint(10))
	assert.Equal(t, "0.0", formatPoint(0))
	assert.Equal(t, "3.5", formatPoint(3.5))
	assert.Equal(t, "4.88", formatPoint(4.88))
	assert.Equal(t, "3.3333333333333335", formatPoint(10.0/3.0))
}

func TestPrintRankingTable(t *testing.T) {
	items := []models.Item{
		{Name: "Bình giữ nhiệt", Score: &models.ScoreBreakdown{ShopPoint: 10, UserPoint: 0, FinalPoint: 5}},
		{Name: "Ấm siêu tốc", Score: &models.ScoreBreakdown{ShopPoint: 0, UserPoint: 7, FinalPoint: 3.5},
			Enrichment: models.Enrichment{ShopFailed: true}},
		{Name: "unscored"},
	}

	var buf bytes.Buffer
	printRankingTable(&buf, items, 1500*time.Millisecond)
	out := buf.String()

	assert.Contains(t, out, "10.0 ||| 0.0 ||| 5.0 ||| Bình giữ nhiệt\n")
	assert.Contains(t, out, "0.0 ||| 7.0 ||| 3.5 ||| Ấm siêu tốc  [shop unavailable]\n")
	assert.NotContains(t, out, "unscored")
	assert.Contains(t, out, "The program took 1.50s to finish.")
	assert.Less(t, strings.Index(out, "Bình"), strings.Index(out, "Ấm"))
}

func TestEnrichmentNote(t *testing.T) {
	assert.Equal(t, "", enrichmentNote(models.Enrichment{}))
	assert.Equal(t, "  [shop unavailable, reviews unavailable]",
		enrichmentNote(models.Enrichment{ShopFailed: true, RatingsFailed: true}))
}
