package hr

// Entity types written to the audit trail.
const (
	EntityEmployee    = "employee"
	EntityCandidate   = "candidate"
	EntityVacancy     = "vacancy"
	EntityTraining    = "training"
	EntityPerformance = "performance"
	EntityTimeEntry   = "timeEntry"
	EntityProcess     = "disciplinaryProcess"
	EntityDocument    = "document"
)

const (
	ActionCreate   = "create"
	ActionUpdate   = "update"
	ActionDelete   = "delete"
	ActionEnroll   = "enroll"
	ActionUnenroll = "unenroll"
	ActionAttach   = "attach"
	ActionDetach   = "detach"
	ActionImport   = "import"
)
