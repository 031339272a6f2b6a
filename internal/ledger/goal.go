package ledger

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"finbook/internal/domain"
)

// RecalculateGoal recomputes a parent goal's progress from its children. It
// only acts on goals with AutoCalculate set that actually have children;
// anything else is returned unchanged. The recomputation runs outside the
// ledger unit of work.
func (e *Engine) RecalculateGoal(ctx context.Context, goalID uint) (*domain.Goal, error) {
	goal, err := e.store.GoalByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if !goal.AutoCalculate {
		return goal, nil
	}
	children, err := e.store.ChildGoals(ctx, goal.ID)
	if err != nil {
		return nil, err
	}
	if len(children) == 0 {
		return goal, nil
	}

	sum := decimal.Zero
	for _, child := range children {
		sum = sum.Add(child.CurrentValue)
	}
	goal.CurrentValue = sum

	// Completion ratio: milestone completion wins over value/target when
	// milestones exist
	total, completed, err := e.store.CountGoalMilestones(ctx, goal.ID)
	if err != nil {
		return nil, err
	}
	var ratio decimal.Decimal
	switch {
	case total > 0:
		ratio = decimal.NewFromInt(completed).Div(decimal.NewFromInt(total))
	case goal.TargetValue.IsPositive():
		ratio = sum.Div(goal.TargetValue)
	}

	switch {
	case ratio.GreaterThanOrEqual(decimal.NewFromInt(1)):
		goal.Status = domain.GoalCompleted
	case ratio.IsPositive():
		goal.Status = domain.GoalInProgress
	}
	// at zero the status stays as it was

	if err := e.store.SaveGoal(ctx, goal); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"goal_id":       goal.ID,
		"current_value": goal.CurrentValue.String(),
		"status":        goal.Status,
	}).Info("Goal recalculated")
	return goal, nil
}
