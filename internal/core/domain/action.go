package domain

// WorkflowAction names one operation an actor can invoke against a claim.
// The workflow engine's transition table is keyed by (status, action).
type WorkflowAction string

const (
	ActionMedicalApprove    WorkflowAction = "medical-approve"
	ActionReturnToEmployee  WorkflowAction = "return"
	ActionAssignInvoices    WorkflowAction = "assign-invoices"
	ActionFinalApprove      WorkflowAction = "final-approve"
	ActionReturnRejected    WorkflowAction = "return-rejected"
	ActionRejectAll         WorkflowAction = "reject-all"
	ActionCompleteEntry     WorkflowAction = "complete-entry"
	ActionApproveFinal      WorkflowAction = "approve-final"
	ActionRejectFinal       WorkflowAction = "reject-final"
	ActionDirectUpdate      WorkflowAction = "direct-update"
)

// AllWorkflowActions lists every action; used by exhaustiveness checks.
var AllWorkflowActions = []WorkflowAction{
	ActionMedicalApprove,
	ActionReturnToEmployee,
	ActionAssignInvoices,
	ActionFinalApprove,
	ActionReturnRejected,
	ActionRejectAll,
	ActionCompleteEntry,
	ActionApproveFinal,
	ActionRejectFinal,
	ActionDirectUpdate,
}

// IsValid reports whether a is one of the known actions.
func (a WorkflowAction) IsValid() bool {
	for _, action := range AllWorkflowActions {
		if a == action {
			return true
		}
	}
	return false
}

// EntryDecision is a data-entry worker's verdict on a single invoice.
type EntryDecision string

const (
	DecisionValid EntryDecision = "VALID"
	DecisionError EntryDecision = "ERROR"
)

// IsValid reports whether d is a known decision.
func (d EntryDecision) IsValid() bool {
	return d == DecisionValid || d == DecisionError
}
