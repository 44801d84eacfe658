package access

import (
	"net/http"

	"github.com/junaidrashid-git/shop-api/apperr"
	"github.com/junaidrashid-git/shop-api/auth"
	"github.com/pkg/errors"
)

const (
	GroupViewAndEdit        = "ViewAndEdit"
	GroupViewAndDelete      = "ViewAndDelete"
	GroupViewAndDeleteRole3 = "ViewAndDeleteRole3"
)

// Groups lists every permission group, in seeding order.
var Groups = []string{GroupViewAndEdit, GroupViewAndDelete, GroupViewAndDeleteRole3}

type Verb int

const (
	Read Verb = iota
	Create
	Write
	Delete
)

func (v Verb) String() string {
	switch v {
	case Read:
		return "read"
	case Create:
		return "create"
	case Write:
		return "write"
	case Delete:
		return "delete"
	}
	return "unknown"
}

// VerbFor classifies an HTTP method. PUT and PATCH are writes; POST is a create,
// which no group grants, so only superusers create.
func VerbFor(method string) (Verb, bool) {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return Read, true
	case http.MethodPost:
		return Create, true
	case http.MethodPut, http.MethodPatch:
		return Write, true
	case http.MethodDelete:
		return Delete, true
	}
	return 0, false
}

// Predicate decides whether p may perform v.
type Predicate func(p *auth.Principal, v Verb) bool

func ViewAndEdit(p *auth.Principal, v Verb) bool {
	return p.InGroup(GroupViewAndEdit) && (v == Read || v == Write)
}

func ViewAndDelete(p *auth.Principal, v Verb) bool {
	return p.InGroup(GroupViewAndDelete) && (v == Read || v == Delete)
}

func ViewAndDeleteRole3(p *auth.Principal, v Verb) bool {
	return p.InGroup(GroupViewAndDeleteRole3) && (v == Read || v == Delete)
}

var predicates = []Predicate{ViewAndEdit, ViewAndDelete, ViewAndDeleteRole3}

// Allowed reports whether an authenticated principal may perform v on a gated resource.
func Allowed(p *auth.Principal, v Verb) bool {
	if p == nil {
		return false
	}
	if p.IsSuperuser {
		return true
	}
	for _, allow := range predicates {
		if allow(p, v) {
			return true
		}
	}
	return false
}

// Authorize checks a request with the given method against policy. p is nil for anonymous callers.
func Authorize(p *auth.Principal, method string, policy Policy) error {
	verb, ok := VerbFor(method)
	if !ok {
		return errors.Wrapf(apperr.ErrMethodNotAllowed, "method %s", method)
	}
	if verb == Read && policy.PublicRead {
		return nil
	}
	if p == nil {
		return apperr.ErrUnauthorized
	}
	if !Allowed(p, verb) {
		return errors.Wrapf(apperr.ErrForbidden, "%s may not %s", p.Username, verb)
	}
	return nil
}
