package stats

import (
	"strings"
	"testing"
	"time"

	"github.com/paiban/nurse-roster/pkg/model"
)

func testStaffing(day, evening, full int) *model.StaffingConstraint {
	return &model.StaffingConstraint{MinNursesPerShift: [model.NumShiftTypes]int{day, evening, full}}
}

func TestCoverageAnalyzer_Analyze(t *testing.T) {
	analyzer := NewCoverageAnalyzer(time.UTC)
	period := model.NewPeriod(2026, time.February)

	a, b := testNurse("Ann"), testNurse("Bea")
	shifts := []*model.Shift{
		testShift(a, 1, model.ShiftFull),
		testShift(b, 1, model.ShiftFull),
		testShift(a, 2, model.ShiftDay),
	}

	metrics := analyzer.Analyze(period, shifts, testStaffing(1, 1, 2))

	if len(metrics.DailyCoverage) != 28 {
		t.Fatalf("expected 28 days, got %d", len(metrics.DailyCoverage))
	}

	// 8 个周末日各 2 人，20 个工作日各 2 人
	if metrics.RequiredSlots != 56 {
		t.Errorf("RequiredSlots = %d, expected 56", metrics.RequiredSlots)
	}
	if metrics.FilledSlots != 3 {
		t.Errorf("FilledSlots = %d, expected 3", metrics.FilledSlots)
	}

	sunday := metrics.DailyCoverage[0]
	if !sunday.Weekend || sunday.Counts[model.ShiftFull] != 2 || sunday.TotalHours != 48 {
		t.Errorf("2026-02-01 = %+v", sunday)
	}

	var mondayEvening *UnderstaffedPeriod
	for i, u := range metrics.Understaffed {
		if u.Date == "2026-02-01" {
			t.Errorf("周日已满足要求，不应出现在人手不足列表: %+v", u)
		}
		if u.Date == "2026-02-02" && u.ShiftType == model.ShiftEvening {
			mondayEvening = &metrics.Understaffed[i]
		}
	}
	if mondayEvening == nil || mondayEvening.Shortage != 1 {
		t.Errorf("2026-02-02 晚班应缺 1 人, got %+v", mondayEvening)
	}
}

func TestCoverageAnalyzer_SurplusAndOutOfPeriod(t *testing.T) {
	analyzer := NewCoverageAnalyzer(time.UTC)
	period := model.NewPeriod(2026, time.February)

	a, b := testNurse("Ann"), testNurse("Bea")
	march := &model.Shift{
		NurseID:   a.ID,
		ShiftType: model.ShiftDay,
		StartDate: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC),
	}
	shifts := []*model.Shift{
		testShift(a, 2, model.ShiftDay),
		testShift(b, 2, model.ShiftDay),
		march,
	}

	metrics := analyzer.Analyze(period, shifts, testStaffing(0, 0, 0))

	if metrics.OverallCoverage != 100 {
		t.Errorf("无人数要求时覆盖率应为 100, got %.1f", metrics.OverallCoverage)
	}
	if metrics.SurplusSlots != 2 {
		t.Errorf("SurplusSlots = %d, expected 2", metrics.SurplusSlots)
	}
	if len(metrics.Understaffed) != 0 {
		t.Errorf("Understaffed = %v", metrics.Understaffed)
	}
}

func TestCoverageAnalyzer_LocalDate(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	analyzer := NewCoverageAnalyzer(loc)
	period := model.NewPeriod(2026, time.February)

	// 本地 2026-02-03 00:30 开始
	a := testNurse("Ann")
	start := time.Date(2026, 2, 2, 21, 30, 0, 0, time.UTC)
	shifts := []*model.Shift{{NurseID: a.ID, ShiftType: model.ShiftDay, StartDate: start, EndDate: start.Add(8 * time.Hour)}}

	metrics := analyzer.Analyze(period, shifts, nil)

	if metrics.DailyCoverage[2].StaffCount != 1 || metrics.DailyCoverage[1].StaffCount != 0 {
		t.Errorf("班次应按本地日期归入 2026-02-03")
	}
}

func TestCoverageAnalyzer_GenerateCoverageReport(t *testing.T) {
	analyzer := NewCoverageAnalyzer(time.UTC)
	metrics := analyzer.Analyze(model.NewPeriod(2026, time.February), nil, testStaffing(1, 0, 0))

	report := analyzer.GenerateCoverageReport(metrics)

	if !strings.Contains(report, "覆盖率: 0.0%") {
		t.Errorf("report missing coverage line:\n%s", report)
	}
	if !strings.Contains(report, "2026-02-02 day (需要1人，仅有0人，缺1人)") {
		t.Errorf("report missing understaffed line:\n%s", report)
	}
}
