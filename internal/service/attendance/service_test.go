package attendance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hrm-core/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-core/internal/domain/auth"
	"github.com/cmlabs-hris/hrm-core/internal/domain/employee"
	"github.com/cmlabs-hris/hrm-core/internal/domain/user"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/clock"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/validator"
	"github.com/cmlabs-hris/hrm-core/internal/repository/memory"
)

const testEmployeeID = "emp-1"

var (
	employeeActor = auth.Identity{UserID: "user-1", EmployeeID: testEmployeeID, Role: user.RoleEmployee}
	adminActor    = auth.Identity{UserID: "user-admin", EmployeeID: "emp-admin", Role: user.RoleAdmin}
)

func newTestService(t *testing.T, now time.Time) (*AttendanceServiceImpl, *clock.Fixed) {
	t.Helper()
	employees := memory.NewEmployeeRepository()
	_, err := employees.Create(context.Background(), employee.Employee{ID: testEmployeeID, FirstName: "Ana", Email: "ana@example.com"})
	require.NoError(t, err)

	clk := clock.NewFixed(now)
	policy := attendance.Policy{LateAfter: 9*time.Hour + 15*time.Minute, Location: time.UTC}
	return NewAttendanceService(memory.NewAttendanceRepository(), employees, policy, clk), clk
}

func at(hour, minute int) time.Time {
	return time.Date(2024, 6, 3, hour, minute, 0, 0, time.UTC)
}

func strPtr(s string) *string { return &s }

func TestAttendanceService_CheckInCheckOut(t *testing.T) {
	ctx := context.Background()
	svc, clk := newTestService(t, at(9, 5))

	in, err := svc.CheckIn(ctx, employeeActor, testEmployeeID)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, in.Status)
	assert.Equal(t, "2024-06-03", in.Date)
	assert.Nil(t, in.WorkingHours)

	clk.Set(at(18, 0))
	out, err := svc.CheckOut(ctx, employeeActor, testEmployeeID)
	require.NoError(t, err)
	require.NotNil(t, out.WorkingMinutes)
	assert.Equal(t, 535, *out.WorkingMinutes)
	require.NotNil(t, out.WorkingHours)
	assert.Equal(t, "8h55m", *out.WorkingHours)
	assert.Equal(t, attendance.StatusPresent, out.Status)

	_, err = svc.CheckOut(ctx, employeeActor, testEmployeeID)
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)

	_, err = svc.CheckIn(ctx, employeeActor, testEmployeeID)
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
}

func TestAttendanceService_CheckIn_Late(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want attendance.Status
	}{
		{"on threshold", at(9, 15), attendance.StatusPresent},
		{"one minute past", at(9, 16), attendance.StatusLate},
		{"early", at(7, 30), attendance.StatusPresent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, tt.at)
			resp, err := svc.CheckIn(context.Background(), employeeActor, testEmployeeID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.Status)
		})
	}
}

func TestAttendanceService_CheckOut_NotCheckedIn(t *testing.T) {
	svc, _ := newTestService(t, at(18, 0))
	_, err := svc.CheckOut(context.Background(), employeeActor, testEmployeeID)
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
}

func TestAttendanceService_CheckIn_UnknownEmployee(t *testing.T) {
	svc, _ := newTestService(t, at(9, 0))
	_, err := svc.CheckIn(context.Background(), adminActor, "ghost")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestAttendanceService_CheckIn_ForOtherEmployeeForbidden(t *testing.T) {
	svc, _ := newTestService(t, at(9, 0))
	other := auth.Identity{UserID: "user-2", EmployeeID: "emp-2", Role: user.RoleEmployee}
	_, err := svc.CheckIn(context.Background(), other, testEmployeeID)
	assert.ErrorIs(t, err, auth.ErrForbidden)
}

func TestAttendanceService_CheckIn_ConcurrentOnce(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, at(8, 55))

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.CheckIn(ctx, employeeActor, testEmployeeID); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, successes)
}

func TestAttendanceService_CheckIn_UpgradesAbsentRecord(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, at(10, 0))

	absent, err := svc.Create(ctx, adminActor, attendance.CreateAttendanceRequest{
		EmployeeID: testEmployeeID,
		Date:       "2024-06-03",
	})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusAbsent, absent.Status)

	in, err := svc.CheckIn(ctx, employeeActor, testEmployeeID)
	require.NoError(t, err)
	assert.Equal(t, absent.ID, in.ID)
	assert.Equal(t, attendance.StatusLate, in.Status)
}

func TestAttendanceService_CheckIn_KeepsHalfDay(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, at(9, 0))

	halfDay, err := svc.Create(ctx, adminActor, attendance.CreateAttendanceRequest{
		EmployeeID: testEmployeeID,
		Date:       "2024-06-03",
		Status:     strPtr("HALF_DAY"),
	})
	require.NoError(t, err)

	in, err := svc.CheckIn(ctx, employeeActor, testEmployeeID)
	require.NoError(t, err)
	assert.Equal(t, halfDay.ID, in.ID)
	assert.Equal(t, attendance.StatusHalfDay, in.Status)
	require.NotNil(t, in.CheckInTime)
}

func TestAttendanceService_Create(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, at(20, 0))

	t.Run("half day by admin", func(t *testing.T) {
		resp, err := svc.Create(ctx, adminActor, attendance.CreateAttendanceRequest{
			EmployeeID:   testEmployeeID,
			Date:         "2024-06-04",
			CheckInTime:  strPtr("2024-06-04T09:00:00Z"),
			CheckOutTime: strPtr("2024-06-04T13:30:00Z"),
			Status:       strPtr("HALF_DAY"),
		})
		require.NoError(t, err)
		assert.Equal(t, attendance.StatusHalfDay, resp.Status)
		require.NotNil(t, resp.WorkingHours)
		assert.Equal(t, "4h30m", *resp.WorkingHours)
	})

	t.Run("duplicate day conflicts", func(t *testing.T) {
		_, err := svc.Create(ctx, adminActor, attendance.CreateAttendanceRequest{
			EmployeeID: testEmployeeID,
			Date:       "2024-06-04",
		})
		assert.ErrorIs(t, err, attendance.ErrAttendanceExists)
	})

	t.Run("check-out before check-in", func(t *testing.T) {
		_, err := svc.Create(ctx, adminActor, attendance.CreateAttendanceRequest{
			EmployeeID:   testEmployeeID,
			Date:         "2024-06-05",
			CheckInTime:  strPtr("2024-06-05T18:00:00Z"),
			CheckOutTime: strPtr("2024-06-05T09:00:00Z"),
		})
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs.ToMap(), "check_out_time")
	})

	t.Run("check-in on another day", func(t *testing.T) {
		_, err := svc.Create(ctx, adminActor, attendance.CreateAttendanceRequest{
			EmployeeID:   testEmployeeID,
			Date:         "2024-06-05",
			CheckInTime:  strPtr("2024-01-01T09:00:00Z"),
			CheckOutTime: strPtr("2024-06-05T18:00:00Z"),
		})
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs.ToMap(), "check_in_time")
	})

	t.Run("check-out days after check-in", func(t *testing.T) {
		_, err := svc.Create(ctx, adminActor, attendance.CreateAttendanceRequest{
			EmployeeID:   testEmployeeID,
			Date:         "2024-06-05",
			CheckInTime:  strPtr("2024-06-05T09:00:00Z"),
			CheckOutTime: strPtr("2024-06-08T18:00:00Z"),
		})
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs.ToMap(), "check_out_time")
	})

	t.Run("overnight shift", func(t *testing.T) {
		resp, err := svc.Create(ctx, adminActor, attendance.CreateAttendanceRequest{
			EmployeeID:   testEmployeeID,
			Date:         "2024-06-08",
			CheckInTime:  strPtr("2024-06-08T22:00:00Z"),
			CheckOutTime: strPtr("2024-06-09T06:00:00Z"),
		})
		require.NoError(t, err)
		require.NotNil(t, resp.WorkingHours)
		assert.Equal(t, "8h00m", *resp.WorkingHours)
	})

	t.Run("working hours supplied", func(t *testing.T) {
		_, err := svc.Create(ctx, adminActor, attendance.CreateAttendanceRequest{
			EmployeeID:   testEmployeeID,
			Date:         "2024-06-06",
			WorkingHours: "8h",
		})
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs.ToMap(), "working_hours")
	})

	t.Run("employee cannot classify", func(t *testing.T) {
		_, err := svc.Create(ctx, employeeActor, attendance.CreateAttendanceRequest{
			EmployeeID: testEmployeeID,
			Date:       "2024-06-07",
			Status:     strPtr("HALF_DAY"),
		})
		assert.ErrorIs(t, err, auth.ErrForbidden)
	})
}

func TestAttendanceService_Update_RecomputesHours(t *testing.T) {
	ctx := context.Background()
	svc, clk := newTestService(t, at(9, 0))

	_, err := svc.CheckIn(ctx, employeeActor, testEmployeeID)
	require.NoError(t, err)
	clk.Set(at(17, 0))
	out, err := svc.CheckOut(ctx, employeeActor, testEmployeeID)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, adminActor, attendance.UpdateAttendanceRequest{
		ID:           out.ID,
		CheckOutTime: strPtr("2024-06-03T17:45:00Z"),
		Notes:        strPtr("forgot to check out"),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.WorkingMinutes)
	assert.Equal(t, 8*60+45, *updated.WorkingMinutes)
	assert.Equal(t, attendance.StatusPresent, updated.Status)

	_, err = svc.Update(ctx, adminActor, attendance.UpdateAttendanceRequest{
		ID:           out.ID,
		CheckOutTime: strPtr("2024-06-03T08:00:00Z"),
	})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestAttendanceService_List_ScopesToOwnRecords(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, at(9, 0))

	_, err := svc.CheckIn(ctx, employeeActor, testEmployeeID)
	require.NoError(t, err)

	own, total, err := svc.List(ctx, employeeActor, attendance.AttendanceFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, own, 1)

	other := "emp-2"
	_, _, err = svc.List(ctx, employeeActor, attendance.AttendanceFilter{EmployeeID: &other})
	assert.ErrorIs(t, err, auth.ErrForbidden)
}
