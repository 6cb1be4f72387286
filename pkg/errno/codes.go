package errno

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// Common errors shared by every handler.
var (
	ErrBadRequest = NewRequestErr(ServiceCommon, 1, "Bad request")
	ErrNotFound   = NewNotFoundErr(ServiceCommon, 1, "Resource not found")
	ErrInternal   = NewInternalErr(ServiceCommon, 1, "Internal server error")
	ErrDatabase   = NewErrno(ServiceCommon, CategoryDatabase, 1, http.StatusInternalServerError, codes.Internal, "Database error")
)

// Governance service errors. ErrAgentExists intentionally maps to HTTP 404
// rather than 409: that is the wire behavior clients of this API depend on.
var (
	ErrAgentExists = NewErrno(ServiceGovernance, CategoryConflict, 1,
		http.StatusNotFound, codes.AlreadyExists, "Error - agent already exists.")

	ErrAgentNotFound = NewNotFoundErr(ServiceGovernance, 1, "Agent not found.")

	ErrKnowledgeNotFound = NewNotFoundErr(ServiceGovernance, 2, "Knowledge source not found.")

	ErrStorageAccountNotFound = NewNotFoundErr(ServiceGovernance, 3,
		"No storage account found in the agent's resource group.")

	ErrGateway = NewGatewayErr(ServiceGovernance, 1, "Cloud provider request failed")

	ErrCredentialsUnavailable = NewInternalErr(ServiceGovernance, 1,
		"OpenAI credentials or deployment not available.")

	ErrInference = NewInternalErr(ServiceGovernance, 2, "Failed to generate chat completion")

	// Sequence 1 in CategoryConflict belongs to ErrAgentExists above.
	ErrDuplicateLink = NewConflictErr(ServiceGovernance, 2,
		"Knowledge source is already linked to this agent.")
)
