package vehicle

import (
	"context"
	"fmt"

	"stocktochain-backend/internal/domain"

	"github.com/ethereum/go-ethereum/common"
)

// SetWorkflowStatus moves the vehicle one step forward. Anything else is rejected.
func (s *Service) SetWorkflowStatus(ctx context.Context, caller common.Address, target domain.WorkflowStatus) error {
	return s.run(ctx, "workflow.set", caller, func(c *call) error {
		if err := c.requireOwner(); err != nil {
			return err
		}
		prev := c.state.Status
		next, ok := prev.Next()
		if !ok || next != target {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, prev, target)
		}
		c.state.Status = target
		return c.emit(domain.EventWorkflowStatusChanged, map[string]interface{}{
			"previous": prev.String(),
			"status":   target.String(),
		})
	})
}

// State returns a snapshot of the vehicle state row.
func (s *Service) State(ctx context.Context) (*domain.VehicleState, error) {
	return loadState(s.DB.WithContext(ctx))
}
