package parser

import (
	"testing"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/model"
)

func TestClassifyPeriod(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text string
		want model.Period
	}{
		{"TIME PERIOD: 52 WKS", model.Period52Weeks},
		{"latest 12 weeks ending", model.Period12Weeks},
		{"24wk", model.Period24Weeks},
		{"Time Period 8 Wks", model.PeriodUnknown},
		{"24 Wk", model.Period24Weeks},
		{"4 WKS 52 WKS", model.Period4Weeks},
		{"4 WKS YTD", model.PeriodYTD},
		{"YEAR TO DATE", model.PeriodYTD},
		{"CY_YTD 4 WKS", model.PeriodYTD},
		{"YTD2025", model.PeriodYTD},
		{"Sum of Units ytd", model.PeriodYTD},
		{"TODAY 104 WKS", model.PeriodUnknown},
		{"", model.PeriodUnknown},
	}
	for _, c := range cases {
		if got := ClassifyPeriod(c.text); got != c.want {
			t.Fatalf("ClassifyPeriod(%q)=%q want=%q", c.text, got, c.want)
		}
	}
}

func TestInferPeriod_UsesWindowAboveHeader(t *testing.T) {
	t.Parallel()

	grid := pivotGrid()
	block := model.HeaderBlock{Start: 2, End: 5}

	// 窗口包含 "52 Wks"（第 1 行）与 "4 Wks"（第 3 行），按 4 → 52 顺序取 4
	if got := InferPeriod(grid, block, DefaultPeriodLookback); got != model.Period4Weeks {
		t.Fatalf("period want=4 got=%q", got)
	}

	grid[3] = []string{"", "", "", ""}
	if got := InferPeriod(grid, block, DefaultPeriodLookback); got != model.Period52Weeks {
		t.Fatalf("period want=52 got=%q", got)
	}
	if got := InferPeriod(grid, block, 0); got != model.PeriodUnknown {
		t.Fatalf("period without lookback want=unknown got=%q", got)
	}

	grid[0] = []string{"Year To Date"}
	if got := InferPeriod(grid, block, DefaultPeriodLookback); got != model.PeriodYTD {
		t.Fatalf("period want=YTD got=%q", got)
	}
}
