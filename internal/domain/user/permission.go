package user

type Permission string

const (
	// Leave
	PermissionLeaveViewAll Permission = "leave.view_all"
	PermissionLeaveManage  Permission = "leave.manage"
	PermissionLeaveApprove Permission = "leave.approve"

	// Attendance
	PermissionAttendanceViewAll Permission = "attendance.view_all"
	PermissionAttendanceManage  Permission = "attendance.manage"

	// Payroll
	PermissionPayrollViewAll Permission = "payroll.view_all"
	PermissionPayrollManage  Permission = "payroll.manage"

	// Employee directory
	PermissionEmployeeViewAll Permission = "employee.view_all"
	PermissionEmployeeExport  Permission = "employee.export"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionLeaveViewAll,
		PermissionLeaveManage,
		PermissionLeaveApprove,
		PermissionAttendanceViewAll,
		PermissionAttendanceManage,
		PermissionPayrollViewAll,
		PermissionPayrollManage,
		PermissionEmployeeViewAll,
		PermissionEmployeeExport,
	},
	RoleManager: {
		PermissionLeaveViewAll,
		PermissionLeaveApprove,
		PermissionAttendanceViewAll,
		PermissionAttendanceManage,
		PermissionEmployeeViewAll,
	},
	// Employees act only on their own records.
	RoleEmployee: {},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
