package core

import "hallcore/pkg/domain"

type (
	EntityType         = domain.EntityType
	Block              = domain.Block
	Floor              = domain.Floor
	Room               = domain.Room
	Student            = domain.Student
	Notice             = domain.Notice
	StudentInput       = domain.StudentInput
	StudentPatch       = domain.StudentPatch
	NoticePatch        = domain.NoticePatch
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	Severity           = domain.Severity
	Role               = domain.Role
	RulesEngine        = domain.RulesEngine
	Transaction        = domain.Transaction
	TransactionView    = domain.TransactionView
	PersistentStore    = domain.PersistentStore
	RuleViolationError = domain.RuleViolationError
)

const (
	EntityBlock   = domain.EntityBlock
	EntityFloor   = domain.EntityFloor
	EntityRoom    = domain.EntityRoom
	EntityStudent = domain.EntityStudent
	EntityNotice  = domain.EntityNotice
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
	ActionMove   = domain.ActionMove
)

// NewRulesEngine constructs an empty engine instance.
func NewRulesEngine() *RulesEngine {
	return domain.NewRulesEngine()
}

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
func NewDefaultRulesEngine() *RulesEngine {
	engine := NewRulesEngine()
	engine.Register(NewRoomCapacityRule())
	engine.Register(NewRoomIdentityRule())
	return engine
}
