package board

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrUnknownColumn is returned for a drop onto a column that is not on
	// the board.
	ErrUnknownColumn = errors.New("unknown board column")

	// ErrNotAwaiting is returned when an assignment is confirmed or
	// cancelled for an order that has no assignment pending.
	ErrNotAwaiting = errors.New("order is not awaiting assignment")
)

// Controller turns drag-and-drop gestures into validated status transitions.
// The NEW to IN_PROGRESS move is gated: the card parks in an
// awaiting-assignment set and nothing is persisted until a vehicle is chosen
// and the assignment call succeeds. Cancelling the prompt leaves the order
// exactly as it was, with no network traffic.
//
// The controller never mutates order rows itself; after any committed change
// the caller re-fetches the authoritative list. No optimistic local state is
// kept, so a failed call cannot leave a stuck card.
type Controller struct {
	statuses OrderStatusService
	assigner AssignmentService
	pool     VehiclePool
	emitter  EventEmitter

	mu       sync.Mutex
	awaiting map[int64]Drop
}

// NewController creates a board controller.
func NewController(statuses OrderStatusService, assigner AssignmentService, pool VehiclePool, emitter EventEmitter) *Controller {
	return &Controller{
		statuses: statuses,
		assigner: assigner,
		pool:     pool,
		emitter:  emitter,
		awaiting: make(map[int64]Drop),
	}
}

// HandleDrop is the single entry point for a drag gesture.
func (c *Controller) HandleDrop(d Drop) (DropResult, error) {
	if !KnownColumn(d.DestColumn) {
		return DropResult{}, fmt.Errorf("%w: %s", ErrUnknownColumn, d.DestColumn)
	}

	// Dropping a card back where it came from does nothing and must not
	// issue any service call.
	if d.SourceColumn == d.DestColumn && d.SourceIndex == d.DestIndex {
		return DropResult{Action: ActionNone}, nil
	}

	if d.SourceColumn == StatusNew && d.DestColumn == StatusInProgress {
		vehicles, err := c.pool.ListAssignable()
		if err != nil {
			return DropResult{}, fmt.Errorf("list assignable vehicles: %w", err)
		}
		c.mu.Lock()
		c.awaiting[d.OrderID] = d
		c.mu.Unlock()
		return DropResult{Action: ActionAwaitingAssignment, Vehicles: vehicles}, nil
	}

	// Ungated move, including same-column reorders: one direct status update.
	if err := c.statuses.UpdateStatus(d.OrderID, d.DestColumn); err != nil {
		return DropResult{}, fmt.Errorf("update order %d status: %w", d.OrderID, err)
	}
	if c.emitter != nil {
		c.emitter.EmitOrderStatusChanged(d.OrderID, d.SourceColumn, d.DestColumn)
	}
	return DropResult{Action: ActionStatusUpdated}, nil
}

// ConfirmAssignment commits a pending NEW to IN_PROGRESS move with the chosen
// vehicle. On failure the order stays in the awaiting set so the prompt can
// stay open and be retried; nothing has been persisted. On success it returns
// the refreshed assignable pool for the next prompt.
func (c *Controller) ConfirmAssignment(orderID, vehicleID int64) ([]VehicleOption, error) {
	c.mu.Lock()
	_, ok := c.awaiting[orderID]
	c.mu.Unlock()
	if !ok {
		return nil, ErrNotAwaiting
	}

	if err := c.assigner.Assign(orderID, vehicleID); err != nil {
		return nil, fmt.Errorf("assign vehicle %d to order %d: %w", vehicleID, orderID, err)
	}

	c.mu.Lock()
	delete(c.awaiting, orderID)
	c.mu.Unlock()

	if c.emitter != nil {
		c.emitter.EmitOrderAssigned(orderID, vehicleID)
		c.emitter.EmitOrderStatusChanged(orderID, StatusNew, StatusInProgress)
	}

	vehicles, err := c.pool.ListAssignable()
	if err != nil {
		return nil, fmt.Errorf("refresh assignable vehicles: %w", err)
	}
	return vehicles, nil
}

// CancelAssignment abandons a pending move. The order was never mutated, so
// there is nothing to roll back and no service call is made.
func (c *Controller) CancelAssignment(orderID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.awaiting[orderID]; !ok {
		return ErrNotAwaiting
	}
	delete(c.awaiting, orderID)
	return nil
}

// Awaiting reports whether an order has an assignment prompt pending.
func (c *Controller) Awaiting(orderID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.awaiting[orderID]
	return ok
}
