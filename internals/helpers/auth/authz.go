package helperAuth

import (
	"github.com/google/uuid"

	"scolaris_backend/internals/apperr"
	"scolaris_backend/internals/constants"
)

type Verb string

const (
	VerbRead   Verb = "read"
	VerbWrite  Verb = "write" // create + update
	VerbDelete Verb = "delete"
)

// Static role → verb table for inventory resources. Unrecognized roles get
// nothing. Teacher reads are additionally restricted to own records, see
// EnsureTeacherReadScope.
var rolePermissions = map[string]map[Verb]bool{
	constants.RoleAdmin:      {VerbRead: true, VerbWrite: true, VerbDelete: true},
	constants.RolePromoter:   {VerbRead: true, VerbWrite: true, VerbDelete: true},
	constants.RoleDirector:   {VerbRead: true, VerbWrite: true},
	constants.RoleAccountant: {VerbRead: true},
	constants.RoleSecretary:  {VerbRead: true},
	constants.RoleTeacher:    {VerbRead: true},
}

func EnsureAllowed(sc *SchoolContext, verb Verb) error {
	perms, ok := rolePermissions[sc.ActorRole]
	if !ok {
		return apperr.New(apperr.KindForbidden, "role %q has no inventory access", sc.ActorRole)
	}
	if !perms[verb] {
		return apperr.New(apperr.KindForbidden, "role %q may not %s inventory resources", sc.ActorRole, verb)
	}
	return nil
}

// EnsureTeacherReadScope rejects a teacher querying anyone else's records.
// Other read-capable roles see the whole tenant.
func EnsureTeacherReadScope(sc *SchoolContext, teacherID uuid.UUID) error {
	if sc.ActorRole != constants.RoleTeacher {
		return nil
	}
	if teacherID == uuid.Nil || teacherID != sc.ActorID {
		return apperr.New(apperr.KindForbidden, "teachers may only view their own records")
	}
	return nil
}
