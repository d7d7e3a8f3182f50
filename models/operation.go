package models

import "fmt"

// OperationKind names one of the remote Terraform actions the backend can
// run against a workspace.
type OperationKind string

const (
	OperationValidate   OperationKind = "validate"
	OperationPlan       OperationKind = "plan"
	OperationCompliance OperationKind = "compliance"
	OperationApply      OperationKind = "apply"
	OperationDestroy    OperationKind = "destroy"
)

// OperationKinds lists every kind in display order.
var OperationKinds = []OperationKind{
	OperationValidate,
	OperationPlan,
	OperationCompliance,
	OperationApply,
	OperationDestroy,
}

func ParseOperationKind(s string) (OperationKind, error) {
	for _, kind := range OperationKinds {
		if string(kind) == s {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown operation kind %q", s)
}

// Prerequisites maps each operation to the ordered list of operations that
// must have succeeded before it may run. Destroy validates first for safety.
var Prerequisites = map[OperationKind][]OperationKind{
	OperationValidate:   {},
	OperationPlan:       {OperationValidate},
	OperationCompliance: {OperationValidate, OperationPlan},
	OperationApply:      {OperationValidate, OperationPlan},
	OperationDestroy:    {OperationValidate},
}

type OperationStatus string

const (
	StatusIdle      OperationStatus = "idle"
	StatusRunning   OperationStatus = "running"
	StatusSucceeded OperationStatus = "succeeded"
	StatusFailed    OperationStatus = "failed"
)

// Session-scoped status transitions. Idle reentry happens only through an
// explicit reset or the sweeper cooldown, never on its own.
var validStatusTransitions = map[OperationStatus]map[OperationStatus]bool{
	StatusIdle: {
		StatusRunning: true,
	},
	StatusRunning: {
		StatusSucceeded: true,
		StatusFailed:    true,
	},
	StatusSucceeded: {
		StatusIdle:    true,
		StatusRunning: true,
	},
	StatusFailed: {
		StatusIdle:    true,
		StatusRunning: true,
	},
}

func ValidStatusTransition(from, to OperationStatus) bool {
	return validStatusTransitions[from][to]
}
