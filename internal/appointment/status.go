package appointment

// transitions lists the allowed moves out of each status. Completed and
// cancelled have no entry and are therefore terminal.
var transitions = map[AppointmentStatus][]AppointmentStatus{
	StatusScheduled: {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

func CanTransition(from, to AppointmentStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func InitialStatus() AppointmentStatus {
	return StatusScheduled
}
