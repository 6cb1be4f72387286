package errno

import (
	"fmt"
	"net/http"
	"sync"

	"google.golang.org/grpc/codes"
)

// Service codes.
const (
	ServiceCommon     = 0
	ServiceGovernance = 20
)

// Category codes.
const (
	CategorySuccess  = 0
	CategoryRequest  = 1
	CategoryResource = 4
	CategoryConflict = 5
	CategoryInternal = 7
	CategoryDatabase = 8
	CategoryGateway  = 10
)

// MakeCode builds an AABBCCC error code from its parts.
func MakeCode(service, category, sequence int) int {
	return service*100000 + category*1000 + sequence
}

var (
	registry   = make(map[int]*Errno)
	registryMu sync.Mutex
)

// register adds an Errno to the registry, panicking on code collision.
// Collisions are programming errors and surface at init time.
func register(e *Errno) *Errno {
	registryMu.Lock()
	defer registryMu.Unlock()

	if existing, ok := registry[e.Code]; ok {
		panic(fmt.Sprintf("errno: code %d already registered: %s", e.Code, existing.Message))
	}
	registry[e.Code] = e
	return e
}

// Lookup returns the registered Errno for a code, if any.
func Lookup(code int) (*Errno, bool) {
	registryMu.Lock()
	defer registryMu.Unlock()
	e, ok := registry[code]
	return e, ok
}

// NewRequestErr registers a request/validation error (HTTP 400).
func NewRequestErr(service, sequence int, msg string) *Errno {
	return newErrno(service, CategoryRequest, sequence, http.StatusBadRequest, codes.InvalidArgument, msg)
}

// NewNotFoundErr registers a resource-not-found error (HTTP 404).
func NewNotFoundErr(service, sequence int, msg string) *Errno {
	return newErrno(service, CategoryResource, sequence, http.StatusNotFound, codes.NotFound, msg)
}

// NewConflictErr registers a conflict error (HTTP 409).
func NewConflictErr(service, sequence int, msg string) *Errno {
	return newErrno(service, CategoryConflict, sequence, http.StatusConflict, codes.AlreadyExists, msg)
}

// NewInternalErr registers an internal error (HTTP 500).
func NewInternalErr(service, sequence int, msg string) *Errno {
	return newErrno(service, CategoryInternal, sequence, http.StatusInternalServerError, codes.Internal, msg)
}

// NewGatewayErr registers a remote-provider error (HTTP 500).
func NewGatewayErr(service, sequence int, msg string) *Errno {
	return newErrno(service, CategoryGateway, sequence, http.StatusInternalServerError, codes.Unavailable, msg)
}

// NewErrno registers a fully custom error.
func NewErrno(service, category, sequence, httpStatus int, grpcCode codes.Code, msg string) *Errno {
	return newErrno(service, category, sequence, httpStatus, grpcCode, msg)
}

func newErrno(service, category, sequence, httpStatus int, grpcCode codes.Code, msg string) *Errno {
	return register(&Errno{
		Code:     MakeCode(service, category, sequence),
		HTTP:     httpStatus,
		GRPCCode: grpcCode,
		Message:  msg,
	})
}
