package auth

const (
	RoleAdmin  = "admin"
	RoleMaster = "master"
)

const (
	PermEmployeesRead   = "employees.read"
	PermEmployeesWrite  = "employees.write"
	PermEmployeesDelete = "employees.delete"
	PermRecruitment     = "recruitment.write"
	PermTimeTracking    = "timetracking.write"
	PermProcesses       = "processes.write"
	PermTrainings       = "trainings.write"
	PermPerformance     = "performance.write"
	PermReportsRead     = "reports.read"
	PermAuditRead       = "audit.read"
	PermSystemBackup    = "system.backup"
	PermSystemReset     = "system.reset"
)

var DefaultPermissions = []string{
	PermEmployeesRead,
	PermEmployeesWrite,
	PermEmployeesDelete,
	PermRecruitment,
	PermTimeTracking,
	PermProcesses,
	PermTrainings,
	PermPerformance,
	PermReportsRead,
	PermAuditRead,
	PermSystemBackup,
	PermSystemReset,
}

// RolePermissions grants master everything; admin runs day-to-day records
// but cannot back up or wipe the store.
var RolePermissions = map[string][]string{
	RoleAdmin: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermEmployeesDelete,
		PermRecruitment,
		PermTimeTracking,
		PermProcesses,
		PermTrainings,
		PermPerformance,
		PermReportsRead,
		PermAuditRead,
	},
	RoleMaster: DefaultPermissions,
}

func HasPermission(role, permission string) bool {
	for _, perm := range RolePermissions[role] {
		if perm == permission {
			return true
		}
	}
	return false
}
