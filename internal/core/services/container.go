package services

import (
	portsrepo "github.com/litc-ly/claims_backend/internal/core/ports/repositories"
	portssvc "github.com/litc-ly/claims_backend/internal/core/ports/services"
	"github.com/litc-ly/claims_backend/pkg/config"
)

// NewServiceContainer wires the service layer. The analysis collaborator is
// passed in because it lives behind an adapter with its own construction.
func NewServiceContainer(repos portsrepo.RepositoryProvider, cfg *config.Config, analysis portssvc.InvoiceAnalysisSvc) *portssvc.ServiceContainer {
	userSvc := NewUserService(repos.UserRepo, nil, nil)
	return &portssvc.ServiceContainer{
		Claim:      NewClaimService(repos.ClaimRepo, nil, nil),
		Workflow:   NewWorkflowService(repos.ClaimRepo, nil, nil),
		Assignment: NewAssignmentService(repos.ClaimRepo, userSvc, nil, nil),
		User:       userSvc,
		Auth:       NewAuthService(cfg, userSvc),
		Analysis:   analysis,
	}
}
