package voice_test

import (
	"testing"

	"github.com/Lauda128109319/food-alert/internal/voice"
)

func TestParseTranscript(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantName string
		wantQty  float64
	}{
		{"name_count_unit", "りんご3個", "りんご", 3},
		{"unit_tsu", "たまご2つ", "たまご", 2},
		{"unit_hon", "にんじん5本", "にんじん", 5},
		{"unit_pack", "納豆1パック", "納豆", 1},
		{"trailing_punctuation", "りんご3個。", "りんご", 3},
		{"no_number", "キャベツ", "キャベツ", 0},
		{"number_only_prefix", "2枚ハム", "ハム", 2},
		{"multi_digit", "卵10個", "卵", 10},
		{"whitespace", "  牛乳 1本 ", "牛乳", 1},
		{"empty", "", "", 0},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			got := voice.ParseTranscript(tt.in)

			if got.Name != tt.wantName {
				t.Fatalf("name = %q, want %q", got.Name, tt.wantName)
			}

			if got.Qty != tt.wantQty {
				t.Fatalf("qty = %v, want %v", got.Qty, tt.wantQty)
			}
		})
	}
}
