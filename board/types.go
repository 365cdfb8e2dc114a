package board

// Order statuses
const (
	StatusNew        = "NEW"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusCancelled  = "CANCELLED"
)

// Kanban columns. CANCELLED orders are not shown on the board.
var Columns = []string{StatusNew, StatusInProgress, StatusCompleted}

// KnownColumn reports whether the column is one of the three board columns.
func KnownColumn(col string) bool {
	for _, c := range Columns {
		if c == col {
			return true
		}
	}
	return false
}

// validTransitions defines which status transitions are allowed.
var validTransitions = map[string][]string{
	StatusNew:        {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

// IsValidTransition checks if a status transition is allowed.
func IsValidTransition(from, to string) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal returns true if the status is a terminal state.
func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}

// Drop describes a single drag-and-drop gesture on the board.
type Drop struct {
	OrderID      int64  `json:"order_id"`
	SourceColumn string `json:"source_column"`
	DestColumn   string `json:"dest_column"`
	SourceIndex  int    `json:"source_index"`
	DestIndex    int    `json:"dest_index"`
}

// Drop outcomes.
const (
	ActionNone               = "none"
	ActionStatusUpdated      = "status_updated"
	ActionAwaitingAssignment = "awaiting_assignment"
)

// DropResult tells the caller what a drop did. When Action is
// awaiting_assignment, Vehicles carries the currently assignable fleet for
// the selection prompt.
type DropResult struct {
	Action   string          `json:"action"`
	Vehicles []VehicleOption `json:"vehicles,omitempty"`
}

// VehicleOption is one selectable vehicle in the assignment prompt.
type VehicleOption struct {
	ID          int64  `json:"id"`
	PlateNumber string `json:"plate_number"`
	DriverName  string `json:"driver_name"`
}
