package model

import "time"

// Employee roles.  The role describes what an employee does for the
// business, not their API permissions: all employees authenticate with
// the EMPLOYEE JWT role.
const (
    EmployeeRoleDelivery = "delivery" // delivers newspapers on a route
    EmployeeRoleManager  = "manager"  // manages routes and staff
    EmployeeRoleAdmin    = "admin"    // full back-office access
)

// Employee represents a staff member employed by an owner.  Employees
// authenticate independently of their owner and can be assigned
// deliveries.  This struct corresponds to a row in the `employees` table.
//
// Fields:
//  ID           – primary key identifier.
//  OwnerID      – owning tenant (owners.id).
//  Name         – employee display name.
//  Email        – unique email used to log in.
//  PasswordHash – bcrypt hashed password.
//  Phone        – optional contact number.
//  Role         – one of delivery, manager, admin.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Employee struct {
    ID           uint64    // employees.id
    OwnerID      uint64    // employees.owner_id
    Name         string    // employees.name
    Email        string    // employees.email
    PasswordHash string    // employees.password_hash
    Phone        *string   // employees.phone (nullable)
    Role         string    // employees.role
    CreatedAt    time.Time // employees.created_at
    UpdatedAt    time.Time // employees.updated_at
}

// ValidEmployeeRole reports whether role is one of the accepted
// employee role values.
func ValidEmployeeRole(role string) bool {
    switch role {
    case EmployeeRoleDelivery, EmployeeRoleManager, EmployeeRoleAdmin:
        return true
    }
    return false
}
