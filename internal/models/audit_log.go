package models

// AuditAction names a recorded mutation.
type AuditAction string

const (
	AuditRegister          AuditAction = "REGISTER"
	AuditLogin             AuditAction = "LOGIN"
	AuditCreateBudget      AuditAction = "CREATE_BUDGET"
	AuditUpdateBudget      AuditAction = "UPDATE_BUDGET"
	AuditCreateCategory    AuditAction = "CREATE_CATEGORY"
	AuditUpdateCategory    AuditAction = "UPDATE_CATEGORY"
	AuditDeleteCategory    AuditAction = "DELETE_CATEGORY"
	AuditCreateTransaction AuditAction = "CREATE_TRANSACTION"
	AuditDeleteTransaction AuditAction = "DELETE_TRANSACTION"
	AuditCreateGoal        AuditAction = "CREATE_GOAL"
	AuditContributeGoal    AuditAction = "CONTRIBUTE_GOAL"
	AuditDeleteGoal        AuditAction = "DELETE_GOAL"
	AuditCreateSavings     AuditAction = "CREATE_SAVINGS"
	AuditUpdateSavings     AuditAction = "UPDATE_SAVINGS"
)

// AuditResource is the kind of row an audit entry points at.
type AuditResource string

const (
	AuditResourceUser        AuditResource = "user"
	AuditResourceBudget      AuditResource = "budget"
	AuditResourceCategory    AuditResource = "category"
	AuditResourceTransaction AuditResource = "transaction"
	AuditResourceGoal        AuditResource = "goal"
	AuditResourceSavings     AuditResource = "savings"
)

// AuditLog records user mutations of money-bearing resources.
type AuditLog struct {
	Base
	UserID       string        `gorm:"type:uuid;not null;index" json:"user_id"`
	Action       AuditAction   `gorm:"not null" json:"action"`
	ResourceType AuditResource `gorm:"not null" json:"resource_type"`
	ResourceID   string        `gorm:"type:uuid" json:"resource_id"`
	IPAddress    string        `json:"ip_address"`
	Changes      string        `json:"changes,omitempty"`
}
