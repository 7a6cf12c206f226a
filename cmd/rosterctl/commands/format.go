package commands

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/paiban/nurse-roster/pkg/model"
)

var shiftMarks = [model.NumShiftTypes]byte{'D', 'E', 'F'}

// FormatRoster 以护士×日期表格输出排班，D/E/F 为白班/晚班/全天班
func FormatRoster(period model.Period, shifts []*model.Shift, nurses []*model.Nurse, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	days := period.Days()

	rows := make(map[uuid.UUID][]byte)
	hours := make(map[uuid.UUID]float64)
	for _, s := range shifts {
		row, ok := rows[s.NurseID]
		if !ok {
			row = []byte(strings.Repeat(".", days))
			rows[s.NurseID] = row
		}
		start := s.StartDate.In(loc)
		if period.Contains(start) && s.ShiftType.Valid() {
			row[start.Day()-1] = shiftMarks[s.ShiftType]
		}
		hours[s.NurseID] += s.WorkingHours()
	}

	names := make(map[uuid.UUID]string, len(nurses))
	for _, n := range nurses {
		names[n.ID] = n.FullName()
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for id := range rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	var b strings.Builder
	header := make([]byte, days)
	for d := 0; d < days; d++ {
		header[d] = "MTWTFSS"[(int(period.Date(d, time.UTC).Weekday())+6)%7]
	}
	fmt.Fprintf(&b, "%-20s %s\n", "", header)
	for _, id := range ids {
		name := names[id]
		if name == "" {
			name = id.String()[:8]
		}
		fmt.Fprintf(&b, "%-20s %s %4.0fh\n", name, rows[id], hours[id])
	}
	return b.String()
}
