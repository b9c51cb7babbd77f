package meetings

const (
	AgendaStatusPending  = "pending"
	AgendaStatusDone     = "done"
	AgendaStatusDeferred = "deferred"
)

var AgendaStatuses = []string{AgendaStatusPending, AgendaStatusDone, AgendaStatusDeferred}
