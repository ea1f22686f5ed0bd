package attendance

import (
	"context"

	"github.com/cmlabs-hris/hrm-core/internal/domain/auth"
)

type AttendanceService interface {
	CheckIn(ctx context.Context, actor auth.Identity, employeeID string) (AttendanceResponse, error)
	CheckOut(ctx context.Context, actor auth.Identity, employeeID string) (AttendanceResponse, error)

	// Administrative corrections
	Create(ctx context.Context, actor auth.Identity, req CreateAttendanceRequest) (AttendanceResponse, error)
	Update(ctx context.Context, actor auth.Identity, req UpdateAttendanceRequest) (AttendanceResponse, error)
	Delete(ctx context.Context, actor auth.Identity, id string) error

	Get(ctx context.Context, actor auth.Identity, id string) (AttendanceResponse, error)
	List(ctx context.Context, actor auth.Identity, filter AttendanceFilter) ([]AttendanceResponse, int64, error)
}
