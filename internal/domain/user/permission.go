package user

type Permission string

const (
	// Payroll
	PermissionPayrollView     Permission = "payroll.view"
	PermissionPayrollManage   Permission = "payroll.manage"
	PermissionPayrollGenerate Permission = "payroll.generate"
	PermissionPayrollApprove  Permission = "payroll.approve"
	PermissionPayrollPay      Permission = "payroll.pay"
	PermissionPayrollLock     Permission = "payroll.lock"
	PermissionPayrollExport   Permission = "payroll.export"

	// Holiday calendar
	PermissionHolidayView   Permission = "holiday.view"
	PermissionHolidayManage Permission = "holiday.manage"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionPayrollView,
		PermissionPayrollManage,
		PermissionPayrollGenerate,
		PermissionPayrollApprove,
		PermissionPayrollPay,
		PermissionPayrollLock,
		PermissionPayrollExport,
		PermissionHolidayView,
		PermissionHolidayManage,
	},
	RolePayrollOfficer: {
		PermissionPayrollView,
		PermissionPayrollManage,
		PermissionPayrollGenerate,
		PermissionPayrollExport,
		PermissionHolidayView,
		PermissionHolidayManage,
	},
	RoleApprover: {
		PermissionPayrollView,
		PermissionPayrollApprove,
		PermissionPayrollPay,
		PermissionPayrollExport,
		PermissionHolidayView,
	},
	RoleViewer: {
		PermissionPayrollView,
		PermissionHolidayView,
	},
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
