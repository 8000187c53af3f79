package permission

// Resources of the HR dashboard, in catalog order.
const (
	ResourceEmployee    = "employee"
	ResourceLeave       = "leave"
	ResourcePayroll     = "payroll"
	ResourceAsset       = "asset"
	ResourcePerformance = "performance"
	ResourceSkill       = "skill"
	ResourceRole        = "role"
)

// Frequently referenced keys.
const (
	EmployeeCreate   = "employee:create"
	EmployeeReadAll  = "employee:read_all"
	EmployeeReadSelf = "employee:read_self"
	EmployeeUpdate   = "employee:update"
	EmployeeDelete   = "employee:delete"

	LeaveCreateSelf = "leave:create_self"
	LeaveCreateAll  = "leave:create_all"
	LeaveReadAll    = "leave:read_all"
	LeaveReadSelf   = "leave:read_self"
	LeaveApprove    = "leave:approve"

	PayrollCreate   = "payroll:create"
	PayrollReadAll  = "payroll:read_all"
	PayrollReadSelf = "payroll:read_self"
	PayrollUpdate   = "payroll:update"

	AssetCreate   = "asset:create"
	AssetReadAll  = "asset:read_all"
	AssetReadSelf = "asset:read_self"
	AssetAllot    = "asset:allot"
	AssetReclaim  = "asset:reclaim"
	AssetDelete   = "asset:delete"

	PerformanceCreate   = "performance:create"
	PerformanceReadAll  = "performance:read_all"
	PerformanceReadSelf = "performance:read_self"
	PerformanceUpdate   = "performance:update"
	PerformanceDelete   = "performance:delete"

	SkillCreate   = "skill:create"
	SkillReadAll  = "skill:read_all"
	SkillReadSelf = "skill:read_self"
	SkillUpdate   = "skill:update"
	SkillDelete   = "skill:delete"

	RoleManage = "role:manage"
)

// defaultRequiresRead maps each write key to its prerequisite read.
// role:manage has no read counterpart and maps to itself.
var defaultRequiresRead = map[string]string{
	EmployeeCreate:    EmployeeReadAll,
	EmployeeUpdate:    EmployeeReadAll,
	EmployeeDelete:    EmployeeReadAll,
	LeaveCreateAll:    LeaveReadAll,
	LeaveApprove:      LeaveReadAll,
	PayrollCreate:     PayrollReadAll,
	PayrollUpdate:     PayrollReadAll,
	AssetCreate:       AssetReadAll,
	AssetAllot:        AssetReadAll,
	AssetReclaim:      AssetReadAll,
	AssetDelete:       AssetReadAll,
	PerformanceCreate: PerformanceReadAll,
	PerformanceUpdate: PerformanceReadAll,
	PerformanceDelete: PerformanceReadAll,
	SkillCreate:       SkillReadAll,
	SkillUpdate:       SkillReadAll,
	SkillDelete:       SkillReadAll,
	RoleManage:        RoleManage,
}

var defaultCascadesTo = map[string][]string{
	EmployeeReadAll:    {EmployeeCreate, EmployeeUpdate, EmployeeDelete},
	LeaveReadAll:       {LeaveCreateAll, LeaveApprove},
	PayrollReadAll:     {PayrollCreate, PayrollUpdate},
	AssetReadAll:       {AssetCreate, AssetAllot, AssetReclaim, AssetDelete},
	PerformanceReadAll: {PerformanceCreate, PerformanceUpdate, PerformanceDelete},
	SkillReadAll:       {SkillCreate, SkillUpdate, SkillDelete},
}

var defaultEntries = []Entry{
	{Key: EmployeeCreate, Description: "Can create new employees"},
	{Key: EmployeeReadAll, Description: "Can view all employee profiles"},
	{Key: EmployeeReadSelf, Description: "Can view their own profile"},
	{Key: EmployeeUpdate, Description: "Can update employee information"},
	{Key: EmployeeDelete, Description: "Can delete employees"},
	{Key: LeaveCreateSelf, Description: "Can request leave for self"},
	{Key: LeaveCreateAll, Description: "Can create leave for any employee"},
	{Key: LeaveReadAll, Description: "Can view all leave requests"},
	{Key: LeaveReadSelf, Description: "Can view their own leave requests"},
	{Key: LeaveApprove, Description: "Can approve or reject leave requests"},
	{Key: PayrollCreate, Description: "Can generate payroll slips"},
	{Key: PayrollReadAll, Description: "Can view all payroll records"},
	{Key: PayrollReadSelf, Description: "Can view their own payroll slips"},
	{Key: PayrollUpdate, Description: "Can update payroll records"},
	{Key: AssetCreate, Description: "Can create new assets"},
	{Key: AssetReadAll, Description: "Can view all assets"},
	{Key: AssetReadSelf, Description: "Can view their own assigned assets"},
	{Key: AssetAllot, Description: "Can allot assets to employees"},
	{Key: AssetReclaim, Description: "Can reclaim assets from employees"},
	{Key: AssetDelete, Description: "Can delete assets"},
	{Key: PerformanceCreate, Description: "Can create performance reviews"},
	{Key: PerformanceReadAll, Description: "Can view all performance reviews"},
	{Key: PerformanceReadSelf, Description: "Can view their own performance reviews"},
	{Key: PerformanceUpdate, Description: "Can update performance reviews"},
	{Key: PerformanceDelete, Description: "Can delete performance reviews"},
	{Key: SkillCreate, Description: "Can add skills to employees"},
	{Key: SkillReadAll, Description: "Can view all employee skills"},
	{Key: SkillReadSelf, Description: "Can view their own skills"},
	{Key: SkillUpdate, Description: "Can update employee skills"},
	{Key: SkillDelete, Description: "Can delete employee skills"},
	{Key: RoleManage, Description: "Can create, edit, and delete roles"},
}

var defaultRules = MustRules(defaultRequiresRead, defaultCascadesTo)

// DefaultRules returns the dependency rules for the HR dashboard resources.
func DefaultRules() *Rules {
	return defaultRules
}

// DefaultEntries returns the seeded permission catalog, in the order the
// permission endpoint lists it.
func DefaultEntries() []Entry {
	out := make([]Entry, len(defaultEntries))
	copy(out, defaultEntries)
	return out
}
