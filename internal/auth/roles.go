package auth

import (
	"fmt"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleDentist   Role = "dentist"
	RoleAssistant Role = "assistant"
	RolePatient   Role = "patient"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleDentist, RoleAssistant, RolePatient:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

type Action string

const (
	ActionViewSlots          Action = "slots:view"
	ActionBook               Action = "appointments:book"
	ActionViewAppointment    Action = "appointments:view"
	ActionListAppointments   Action = "appointments:list"
	ActionConfirm            Action = "appointments:confirm"
	ActionComplete           Action = "appointments:complete"
	ActionCancel             Action = "appointments:cancel"
	ActionViewAvailability   Action = "availability:view"
	ActionManageAvailability Action = "availability:manage"
	ActionPatientHistory     Action = "patients:history"
)

var permissions = map[Role]map[Action]bool{
	RoleAdmin: {
		ActionViewSlots:          true,
		ActionBook:               true,
		ActionViewAppointment:    true,
		ActionListAppointments:   true,
		ActionConfirm:            true,
		ActionComplete:           true,
		ActionCancel:             true,
		ActionViewAvailability:   true,
		ActionManageAvailability: true,
		ActionPatientHistory:     true,
	},
	RoleAssistant: {
		ActionViewSlots:          true,
		ActionBook:               true,
		ActionViewAppointment:    true,
		ActionListAppointments:   true,
		ActionConfirm:            true,
		ActionCancel:             true,
		ActionViewAvailability:   true,
		ActionManageAvailability: true,
		ActionPatientHistory:     true,
	},
	RoleDentist: {
		ActionViewSlots:          true,
		ActionBook:               true,
		ActionViewAppointment:    true,
		ActionListAppointments:   true,
		ActionConfirm:            true,
		ActionComplete:           true,
		ActionCancel:             true,
		ActionViewAvailability:   true,
		ActionManageAvailability: true,
		ActionPatientHistory:     true,
	},
	RolePatient: {
		ActionViewSlots:        true,
		ActionBook:             true,
		ActionViewAppointment:  true,
		ActionCancel:           true,
		ActionViewAvailability: true,
		ActionPatientHistory:   true,
	},
}

// Can reports whether role may perform action at all. Ownership is checked
// separately with Principal.MayActFor and Principal.MayManageDentist.
func Can(role Role, action Action) bool {
	return permissions[role][action]
}

// Principal is the authenticated caller. ID is the patient id for patients
// and the dentist id for dentists.
type Principal struct {
	ID   uuid.UUID
	Role Role
}

func (p Principal) Can(action Action) bool {
	return Can(p.Role, action)
}

// MayActFor reports whether p may act on records belonging to patientID.
func (p Principal) MayActFor(patientID uuid.UUID) bool {
	if p.Role != RolePatient {
		return true
	}
	return p.ID == patientID
}

// MayManageDentist reports whether p may change dentistID's schedule.
func (p Principal) MayManageDentist(dentistID uuid.UUID) bool {
	if p.Role != RoleDentist {
		return true
	}
	return p.ID == dentistID
}
