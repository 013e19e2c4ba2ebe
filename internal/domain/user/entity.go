package user

// Role is carried in the access token's "role" claim.
type Role string

const (
	RoleAdmin          Role = "admin"           // Full access, including lock
	RolePayrollOfficer Role = "payroll_officer" // Prepares and generates payroll
	RoleApprover       Role = "approver"        // Reviews, approves and pays
	RoleViewer         Role = "viewer"          // Read-only
)
