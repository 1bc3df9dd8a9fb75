package domain

// IdentityKind tags which identity record a user resolved to.
type IdentityKind int

const (
	IdentityPlainUser IdentityKind = iota
	IdentityEmployee
	IdentityVendor
	IdentityBuyer
)

// String returns a lower-case label for logs.
func (k IdentityKind) String() string {
	switch k {
	case IdentityEmployee:
		return "employee"
	case IdentityVendor:
		return "vendor"
	case IdentityBuyer:
		return "buyer"
	}
	return "user"
}

// Identity is the resolved principal of a request. Exactly one of Employee,
// Vendor or Buyer is set, matching Kind; a PlainUser carries none.
type Identity struct {
	Kind     IdentityKind
	User     User
	Employee *Employee
	Vendor   *Vendor
	Buyer    *Buyer
}

// Role returns the effective role: the employee's own role, VENDOR, BUYER or USER.
func (i Identity) Role() string {
	switch i.Kind {
	case IdentityEmployee:
		if i.Employee != nil && i.Employee.Role != "" {
			return i.Employee.Role
		}
		return RoleSupport
	case IdentityVendor:
		return RoleVendor
	case IdentityBuyer:
		return RoleBuyer
	}
	return RoleUser
}

// HasEmployeeRole reports whether the identity is an employee holding one of roles.
func (i Identity) HasEmployeeRole(roles ...string) bool {
	if i.Kind != IdentityEmployee {
		return false
	}
	r := i.Role()
	for _, want := range roles {
		if r == want {
			return true
		}
	}
	return false
}
