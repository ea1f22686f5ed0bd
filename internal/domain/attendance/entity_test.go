package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicy_Classify(t *testing.T) {
	p := Policy{LateAfter: 9*time.Hour + 15*time.Minute, Location: time.UTC}

	assert.Equal(t, StatusPresent, p.Classify(time.Date(2024, 6, 3, 9, 5, 0, 0, time.UTC)))
	assert.Equal(t, StatusPresent, p.Classify(time.Date(2024, 6, 3, 9, 15, 0, 0, time.UTC)))
	assert.Equal(t, StatusLate, p.Classify(time.Date(2024, 6, 3, 9, 15, 1, 0, time.UTC)))
}

func TestPolicy_LocalDay(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)
	p := Policy{LateAfter: 9 * time.Hour, Location: jakarta}

	// 01:30 UTC is 08:30 local on the same day
	at := time.Date(2024, 6, 3, 1, 30, 0, 0, time.UTC)
	assert.Equal(t, StatusPresent, p.Classify(at))
	assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), p.WorkDate(at))

	// 20:00 UTC on the 2nd is already the 3rd locally
	assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), p.WorkDate(time.Date(2024, 6, 2, 20, 0, 0, 0, time.UTC)))
}

func TestWorkingMinutes(t *testing.T) {
	in := time.Date(2024, 6, 3, 9, 5, 0, 0, time.UTC)

	m, err := WorkingMinutes(in, time.Date(2024, 6, 3, 18, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 535, m)
	assert.Equal(t, "8h55m", FormatMinutes(m))

	m, err = WorkingMinutes(in, in.Add(59*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 0, m)

	_, err = WorkingMinutes(in, in.Add(-time.Minute))
	assert.ErrorIs(t, err, ErrCheckOutBeforeCheckIn)
}

func TestCheckRecord(t *testing.T) {
	in := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	out := in.Add(8 * time.Hour)
	early := in.Add(-time.Hour)

	assert.NoError(t, CheckRecord(Attendance{Status: StatusAbsent}))
	assert.NoError(t, CheckRecord(Attendance{Status: StatusHalfDay, CheckIn: &in, CheckOut: &out}))
	assert.Error(t, CheckRecord(Attendance{Status: StatusPresent, CheckOut: &out}))
	assert.Error(t, CheckRecord(Attendance{Status: StatusPresent, CheckIn: &in, CheckOut: &early}))
	assert.Error(t, CheckRecord(Attendance{Status: StatusAbsent, CheckIn: &in}))
}

func TestPolicy_CheckShift(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	p := Policy{LateAfter: 9 * time.Hour, Location: jakarta}
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	in := time.Date(2024, 6, 3, 8, 0, 0, 0, jakarta)
	nextMorning := time.Date(2024, 6, 4, 2, 0, 0, 0, jakarta)
	tooLate := in.Add(MaxShift + time.Minute)
	// 2024-06-02 20:00 UTC is already 2024-06-03 in WIB.
	utcEvening := time.Date(2024, 6, 2, 20, 0, 0, 0, time.UTC)
	otherDay := time.Date(2024, 1, 1, 9, 0, 0, 0, jakarta)

	assert.NoError(t, p.CheckShift(Attendance{Date: day}))
	assert.NoError(t, p.CheckShift(Attendance{Date: day, CheckIn: &in, CheckOut: &nextMorning}))
	assert.NoError(t, p.CheckShift(Attendance{Date: day, CheckIn: &utcEvening}))

	err := p.CheckShift(Attendance{Date: day, CheckIn: &otherDay})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check_in_time")

	err = p.CheckShift(Attendance{Date: day, CheckIn: &in, CheckOut: &tooLate})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check_out_time")
}

func TestCreateAttendanceRequest_RejectsWorkingHours(t *testing.T) {
	in := "2024-06-03T09:00:00Z"
	req := CreateAttendanceRequest{
		EmployeeID:   "e1",
		Date:         "2024-06-03",
		CheckInTime:  &in,
		WorkingHours: "9h",
	}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "working_hours")
}
