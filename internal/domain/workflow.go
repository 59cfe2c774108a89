package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// WorkflowStatus is the single global phase of the vehicle.
type WorkflowStatus int

const (
	StatusNotStarted WorkflowStatus = iota
	StatusSaleActive
	StatusSaleEnded
	StatusBuybackActive
)

var workflowNames = []string{"NotStarted", "SaleActive", "SaleEnded", "BuybackActive"}

func (s WorkflowStatus) String() string {
	if s < 0 || int(s) >= len(workflowNames) {
		return fmt.Sprintf("WorkflowStatus(%d)", int(s))
	}
	return workflowNames[s]
}

func (s WorkflowStatus) Valid() bool {
	return s >= StatusNotStarted && s <= StatusBuybackActive
}

// Next reports the only status reachable from s.
func (s WorkflowStatus) Next() (WorkflowStatus, bool) {
	if !s.Valid() || s == StatusBuybackActive {
		return s, false
	}
	return s + 1, true
}

// ParseWorkflowStatus accepts a status name (case-insensitive) or its ordinal.
func ParseWorkflowStatus(s string) (WorkflowStatus, error) {
	s = strings.TrimSpace(s)
	for i, name := range workflowNames {
		if strings.EqualFold(s, name) || s == fmt.Sprint(i) {
			return WorkflowStatus(i), nil
		}
	}
	return 0, fmt.Errorf("unknown workflow status %q", s)
}

func (s WorkflowStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *WorkflowStatus) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseWorkflowStatus(fmt.Sprint(raw))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
