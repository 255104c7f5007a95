package services

// ServiceContainer bundles the service facades for injection into the HTTP
// layer.
type ServiceContainer struct {
	Claim      ClaimSvcFacade
	Workflow   WorkflowSvcFacade
	Assignment AssignmentSvcFacade
	User       UserSvcFacade
	Auth       AuthSvcFacade
	Analysis   InvoiceAnalysisSvc
}
